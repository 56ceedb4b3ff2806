// Package consolidate triggers server-side consolidation of the uploaded
// files and keeps the last successful result for display and download.
package consolidate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"csvwizard/internal/api"
)

// User-facing notices.
const (
	MsgSuccess     = "Dados consolidados com sucesso!"
	MsgFailed      = "Erro ao consolidar dados"
	MsgUnreachable = "Erro ao conectar com o servidor"
	MsgNoData      = "Nenhum dado consolidado retornado"
)

// DefaultEndpoint is the consolidation endpoint when none is configured.
const DefaultEndpoint = "/api/Consolida-dados"

var (
	// ErrConsolidateFailed matches every failed consolidation attempt.
	ErrConsolidateFailed = errors.New("consolidation failed")

	// ErrDisabled is returned while not every upload step is complete.
	ErrDisabled = errors.New("consolidation is disabled")

	// ErrNoResult is returned by Render and Download before any success.
	ErrNoResult = errors.New("no consolidated data")

	// ErrInFlight is returned when a consolidation is already running.
	ErrInFlight = errors.New("consolidation already in progress")
)

// Failure describes a failed attempt. It matches [ErrConsolidateFailed].
type Failure struct {
	// Notice is the message shown to the user.
	Notice string
	// StatusCode is zero when no response was received.
	StatusCode int
	Err        error
}

func (f *Failure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("consolidation failed with status %d", f.StatusCode)
	}
	return fmt.Sprintf("consolidation failed: %v", f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Is reports true for [ErrConsolidateFailed].
func (f *Failure) Is(target error) bool { return target == ErrConsolidateFailed }

// Getter issues GET requests. [api.Client] implements it.
type Getter interface {
	Get(ctx context.Context, endpoint string) (api.Response, error)
}

// Client runs consolidation and owns the last result.
type Client struct {
	getter   Getter
	endpoint string
	logger   *zap.Logger

	mu       sync.Mutex
	disabled bool
	inFlight bool
	result   json.RawMessage
}

// NewClient creates a [Client]. An empty endpoint uses [DefaultEndpoint].
// The client starts disabled.
func NewClient(getter Getter, endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		getter:   getter,
		endpoint: endpoint,
		logger:   zap.NewNop(),
		disabled: true,
	}
}

// SetLogger configures the client's logger.
func (c *Client) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c.logger = logger
}

// SetDisabled enables or disables consolidation.
func (c *Client) SetDisabled(disabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = disabled
}

// Disabled reports whether consolidation is refused.
func (c *Client) Disabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disabled
}

// InFlight reports whether a request is outstanding.
func (c *Client) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Consolidate issues one GET to the consolidation endpoint and stores the
// JSON body on success. On failure the previous result is kept and a
// [*Failure] is returned.
//
// A successful response whose body is JSON null is still a success: the
// stored result is cleared and Consolidate returns (nil, nil), so Render and
// Download report [ErrNoResult]. An empty or non-JSON body is a failure with
// the [MsgUnreachable] notice.
func (c *Client) Consolidate(ctx context.Context) (json.RawMessage, error) {
	c.mu.Lock()
	switch {
	case c.disabled:
		c.mu.Unlock()
		return nil, ErrDisabled
	case c.inFlight:
		c.mu.Unlock()
		return nil, ErrInFlight
	}
	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	resp, err := c.getter.Get(ctx, c.endpoint)
	if err != nil {
		c.logger.Warn("Consolidation request failed", zap.Error(err))
		return nil, &Failure{Notice: MsgUnreachable, Err: err}
	}

	nullBody := isNull(resp)
	switch {
	case resp.Kind == api.KindList, resp.Kind == api.KindPayload, nullBody:
	default:
		c.logger.Warn("Consolidation returned a non-JSON body",
			zap.Int("status", resp.StatusCode),
			zap.Stringer("kind", resp.Kind),
		)
		return nil, &Failure{
			Notice: MsgUnreachable,
			Err:    fmt.Errorf("response is not JSON (status %d, %s body)", resp.StatusCode, resp.Kind),
		}
	}

	if !resp.OK() {
		c.logger.Info("Consolidation rejected", zap.Int("status", resp.StatusCode))
		return nil, &Failure{
			Notice:     MsgFailed,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	if nullBody {
		c.mu.Lock()
		c.result = nil
		c.mu.Unlock()
		c.logger.Info("Data consolidated with no content")
		return nil, nil
	}

	result := json.RawMessage(bytes.TrimSpace([]byte(resp.Raw)))
	c.mu.Lock()
	c.result = result
	c.mu.Unlock()

	c.logger.Info("Data consolidated", zap.Int("bytes", len(result)))
	return result, nil
}

func isNull(resp api.Response) bool {
	return resp.Kind == api.KindEmpty && bytes.Equal(bytes.TrimSpace([]byte(resp.Raw)), []byte("null"))
}

// Result returns the stored JSON, or nil before any success.
func (c *Client) Result() json.RawMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// HasResult reports whether a consolidation has succeeded.
func (c *Client) HasResult() bool {
	return c.Result() != nil
}

// Render returns the stored result pretty-printed with a two-space indent.
// Object keys keep the order the backend sent them in.
func (c *Client) Render() (string, error) {
	b, err := c.pretty()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *Client) pretty() ([]byte, error) {
	result := c.Result()
	if result == nil {
		return nil, ErrNoResult
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, result, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to format consolidated data: %w", err)
	}
	return buf.Bytes(), nil
}
