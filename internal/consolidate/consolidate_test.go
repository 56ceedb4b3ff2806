package consolidate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvwizard/internal/api"
)

// fakeGetter returns canned responses in order.
type fakeGetter struct {
	responses []api.Response
	err       error
	calls     []string
}

func (f *fakeGetter) Get(ctx context.Context, endpoint string) (api.Response, error) {
	f.calls = append(f.calls, endpoint)
	if f.err != nil {
		return api.Response{}, f.err
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func respond(status int, body string) api.Response {
	return api.DecodeResponse(status, []byte(body))
}

func enabled(g Getter) *Client {
	c := NewClient(g, "")
	c.SetDisabled(false)
	return c
}

func TestClient_DisabledByDefault(t *testing.T) {
	g := &fakeGetter{responses: []api.Response{respond(200, `{}`)}}
	c := NewClient(g, "")

	_, err := c.Consolidate(context.Background())

	assert.ErrorIs(t, err, ErrDisabled)
	assert.True(t, c.Disabled())
	assert.Empty(t, g.calls, "no request while disabled")
}

func TestClient_Consolidate_Success(t *testing.T) {
	g := &fakeGetter{responses: []api.Response{respond(200, `{"z":1,"a":[1,2],"m":{"k":"v"}}`)}}
	c := enabled(g)

	result, err := c.Consolidate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{DefaultEndpoint}, g.calls)
	assert.JSONEq(t, `{"z":1,"a":[1,2],"m":{"k":"v"}}`, string(result))
	assert.True(t, c.HasResult())
	assert.False(t, c.InFlight())

	rendered, err := c.Render()
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"z\": 1,\n  \"a\": [\n    1,\n    2\n  ],\n  \"m\": {\n    \"k\": \"v\"\n  }\n}", rendered)
}

func TestClient_Consolidate_Failures(t *testing.T) {
	tests := []struct {
		name       string
		resp       api.Response
		err        error
		wantNotice string
		wantStatus int
	}{
		{name: "http error with json body", resp: respond(500, `{"error":"x"}`), wantNotice: MsgFailed, wantStatus: 500},
		{name: "network failure", err: errors.New("dial tcp: refused"), wantNotice: MsgUnreachable},
		{name: "html body", resp: respond(200, `<html>oops</html>`), wantNotice: MsgUnreachable},
		{name: "empty body", resp: respond(200, ``), wantNotice: MsgUnreachable},
		{name: "http error with null body", resp: respond(502, `null`), wantNotice: MsgFailed, wantStatus: 502},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &fakeGetter{responses: []api.Response{respond(200, `{"keep":true}`), tt.resp}, err: nil}
			c := enabled(g)
			_, err := c.Consolidate(context.Background())
			require.NoError(t, err)
			g.err = tt.err

			_, err = c.Consolidate(context.Background())

			require.ErrorIs(t, err, ErrConsolidateFailed)
			var failure *Failure
			require.ErrorAs(t, err, &failure)
			assert.Equal(t, tt.wantNotice, failure.Notice)
			assert.Equal(t, tt.wantStatus, failure.StatusCode)
			assert.JSONEq(t, `{"keep":true}`, string(c.Result()), "previous result is kept")
			assert.False(t, c.InFlight())
		})
	}
}

func TestClient_Consolidate_NullResult(t *testing.T) {
	g := &fakeGetter{responses: []api.Response{respond(200, `{"keep":true}`), respond(200, " null\n")}}
	c := enabled(g)
	_, err := c.Consolidate(context.Background())
	require.NoError(t, err)

	result, err := c.Consolidate(context.Background())

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.False(t, c.HasResult(), "null replaces the previous result")
	_, err = c.Render()
	assert.ErrorIs(t, err, ErrNoResult)
	_, err = c.Download(t.TempDir(), "")
	assert.ErrorIs(t, err, ErrNoResult)
	assert.False(t, c.InFlight())
}

func TestClient_Consolidate_ListResult(t *testing.T) {
	c := enabled(&fakeGetter{responses: []api.Response{respond(200, ` [1, "a"] `)}})

	_, err := c.Consolidate(context.Background())
	require.NoError(t, err)

	out, err := c.Render()
	require.NoError(t, err)
	assert.Equal(t, "[\n  1,\n  \"a\"\n]", out)
}

func TestClient_CustomEndpoint(t *testing.T) {
	g := &fakeGetter{responses: []api.Response{respond(200, `{}`)}}
	c := NewClient(g, "https://consolidator/run")
	c.SetDisabled(false)

	_, err := c.Consolidate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"https://consolidator/run"}, g.calls)
}

func TestClient_NoResult(t *testing.T) {
	c := enabled(&fakeGetter{})

	_, err := c.Render()
	assert.ErrorIs(t, err, ErrNoResult)

	dir := t.TempDir()
	_, err = c.Download(dir, "")
	assert.ErrorIs(t, err, ErrNoResult)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClient_Download(t *testing.T) {
	c := enabled(&fakeGetter{responses: []api.Response{respond(200, `{"b":2,"a":1}`)}})
	_, err := c.Consolidate(context.Background())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	path, err := c.Download(dir, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dados-consolidados.json"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": 2,\n  \"a\": 1\n}\n", string(content))

	// Overwrites in place and leaves no temp files behind.
	path, err = c.Download(dir, "")
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "dados-consolidados.json", entries[0].Name())

	named, err := c.Download(dir, "export.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "export.json"), named)
	assert.NotEqual(t, path, named)
}
