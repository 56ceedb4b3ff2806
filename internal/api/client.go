package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries a per-request correlation ID to the backend.
const RequestIDHeader = "X-Request-ID"

// Client sends requests to the backend relative to a base URL.
//
// Create with [NewClient]. The zero timeout means requests are bounded only
// by their context.
type Client struct {
	baseURL string
	prefix  string
	hc      *http.Client
	logger  *zap.Logger
}

// NewClient creates a [Client] for baseURL. Endpoints that are neither
// absolute nor rooted get prefix (see [ResolveEndpoint]).
func NewClient(baseURL, prefix string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		prefix:  prefix,
		hc:      &http.Client{Timeout: timeout},
		logger:  zap.NewNop(),
	}
}

// SetLogger configures the logger used for request tracing. A nil logger
// disables logging.
func (c *Client) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c.logger = logger
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.hc = hc
}

// URL returns the full URL a configured endpoint resolves to.
func (c *Client) URL(endpoint string) string {
	return JoinURL(c.baseURL, ResolveEndpoint(endpoint, c.prefix))
}

// PostFile uploads content as a multipart body with a single file field.
//
// A non-2xx status is not an error: it comes back as a [Response] for the
// caller to interpret. Errors are transport or body-read failures only.
func (c *Client) PostFile(ctx context.Context, endpoint, field, filename string, content []byte) (Response, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return Response{}, fmt.Errorf("failed to build upload body: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return Response{}, fmt.Errorf("failed to build upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return Response{}, fmt.Errorf("failed to build upload body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(endpoint), &body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.do(req)
}

// Get issues a GET request to endpoint.
func (c *Client) Get(ctx context.Context, endpoint string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(endpoint), nil)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) (Response, error) {
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	log := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	)
	start := time.Now()

	resp, err := c.hc.Do(req)
	if err != nil {
		log.Warn("Request failed", zap.Error(err))
		return Response{}, fmt.Errorf("request to %s failed: %w", req.URL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("Failed to read response body", zap.Int("status", resp.StatusCode), zap.Error(err))
		return Response{}, fmt.Errorf("failed to read response from %s: %w", req.URL, err)
	}

	decoded := DecodeResponse(resp.StatusCode, raw)
	log.Debug("Request completed",
		zap.Int("status", resp.StatusCode),
		zap.Stringer("kind", decoded.Kind),
		zap.Int("bytes", len(raw)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return decoded, nil
}
