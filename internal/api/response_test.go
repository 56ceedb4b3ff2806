package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeResponse_Kind(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Kind
	}{
		{name: "empty body", body: "", want: KindEmpty},
		{name: "whitespace body", body: "  \n", want: KindEmpty},
		{name: "json null", body: "null", want: KindEmpty},
		{name: "array", body: `["a","b"]`, want: KindList},
		{name: "empty array", body: `[]`, want: KindList},
		{name: "object", body: `{"ok":true}`, want: KindPayload},
		{name: "json string", body: `"done"`, want: KindPayload},
		{name: "plain text", body: "Internal Server Error", want: KindText},
		{name: "trailing garbage", body: `{"a":1} extra`, want: KindText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DecodeResponse(200, []byte(tt.body))
			assert.Equal(t, tt.want, r.Kind)
			assert.Equal(t, tt.body, r.Raw)
		})
	}
}

func TestResponse_ErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   []string
	}{
		{name: "empty array yields no messages", status: 400, body: `[]`, want: []string{}},
		{name: "array of strings passed through", status: 422, body: `["linha 2: CNPJ inválido","linha 5: Nome vazio"]`, want: []string{"linha 2: CNPJ inválido", "linha 5: Nome vazio"}},
		{name: "array of objects encoded", status: 422, body: `[{"row":2}]`, want: []string{`{"row":2}`}},
		{name: "error field", status: 400, body: `{"error":"bad row"}`, want: []string{"bad row"}},
		{name: "message wins over error", status: 400, body: `{"message":"m","error":"e"}`, want: []string{"m"}},
		{name: "empty message falls to error", status: 400, body: `{"message":"","error":"e"}`, want: []string{"e"}},
		{name: "object without fields uses body text", status: 500, body: `{"detail":"x"}`, want: []string{`{"detail":"x"}`}},
		{name: "plain text body", status: 502, body: "Bad Gateway", want: []string{"Bad Gateway"}},
		{name: "empty body", status: 500, body: "", want: []string{"Erro 500"}},
		{name: "json null", status: 404, body: "null", want: []string{"Erro 404"}},
		{name: "json string", status: 400, body: `"arquivo vazio"`, want: []string{"arquivo vazio"}},
		{name: "json empty string", status: 400, body: `""`, want: []string{"Erro 400"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DecodeResponse(tt.status, []byte(tt.body))
			assert.False(t, r.OK())
			assert.Equal(t, tt.want, r.ErrorMessages())
		})
	}
}

func TestResponse_SuccessData(t *testing.T) {
	columns := []string{"Nome", "CNPJ"}

	t.Run("object payload merged with columns", func(t *testing.T) {
		r := DecodeResponse(200, []byte(`{"inserted":3,"columns":"server value"}`))
		data := r.SuccessData(columns)

		assert.Equal(t, json.Number("3"), data["inserted"])
		assert.Equal(t, columns, data["columns"], "local header list overrides the payload")
	})

	t.Run("empty body", func(t *testing.T) {
		r := DecodeResponse(204, nil)
		assert.True(t, r.OK())
		assert.Equal(t, map[string]any{"columns": columns}, r.SuccessData(columns))
	})

	t.Run("non-object payload kept under data", func(t *testing.T) {
		r := DecodeResponse(200, []byte(`[1,2]`))
		data := r.SuccessData(columns)
		assert.Len(t, data["data"], 2)
		assert.Equal(t, columns, data["columns"])
	})

	t.Run("text payload kept under data", func(t *testing.T) {
		r := DecodeResponse(201, []byte(`ok`))
		assert.Equal(t, "ok", r.SuccessData(nil)["data"])
		assert.Equal(t, []string{}, r.SuccessData(nil)["columns"])
	})
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "list", KindList.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
