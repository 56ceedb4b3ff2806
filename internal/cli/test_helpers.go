package cli

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"csvwizard/internal/config"
	"csvwizard/internal/output"
)

// MockBackend is a fake processing backend for command tests.
type MockBackend struct {
	mu sync.Mutex

	// Requests records "METHOD /path" for every request in order.
	Requests []string

	// Replies maps a request path to a status code and body. Unlisted paths
	// answer 200 with an empty body.
	Replies map[string]MockReply
}

// MockReply is a canned backend response.
type MockReply struct {
	Status int
	Body   string
}

// ServeHTTP implements http.Handler.
func (m *MockBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.Requests = append(m.Requests, r.Method+" "+r.URL.Path)
	reply, ok := m.Replies[r.URL.Path]
	m.mu.Unlock()

	if !ok {
		reply = MockReply{Status: http.StatusOK}
	}
	w.WriteHeader(reply.Status)
	_, _ = io.WriteString(w, reply.Body)
}

// RequestLog returns a copy of the recorded requests.
func (m *MockBackend) RequestLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Requests...)
}

// newTestApp builds an App pointed at a mock backend with a buffered,
// colorless printer.
func newTestApp(t *testing.T, backend *MockBackend) (*App, *bytes.Buffer) {
	t.Helper()

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.API.BaseURL = srv.URL
	cfg.Output.DownloadDir = t.TempDir()

	buf := &bytes.Buffer{}
	printer := output.NewPrinterWithWriter(buf)
	printer.DisableColor()

	return &App{
		Config:  cfg,
		Printer: printer,
		Logger:  zap.NewNop(),
	}, buf
}

// writeCSVFile creates a CSV file in a temporary directory for testing.
func writeCSVFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write csv file: %v", err)
	}
	return path
}
