// Package upload implements the per-step CSV uploader.
//
// An [Uploader] owns one selected file and an in-flight flag. Submitting
// reads the file, extracts its header row locally, posts the file to the
// step's endpoint, and reports the outcome through the success or error
// handler it was created with. Failed uploads keep the file selected so the
// same step can be resubmitted; nothing is retried automatically.
package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"csvwizard/internal/api"
)

// User-facing messages routed to the error handler.
const (
	MsgNoFile     = "Selecione um arquivo CSV primeiro"
	MsgSendFailed = "Erro ao enviar arquivo"
)

// FileField is the multipart field name the backend reads the upload from.
const FileField = "file"

// AcceptHint lists the extensions offered by file pickers. It is a hint only;
// any file can be selected.
var AcceptHint = []string{".csv", ".txt"}

// Sentinel errors returned by [Uploader.Submit] and [Uploader.Select].
var (
	ErrNoFile     = errors.New("no file selected")
	ErrDisabled   = errors.New("uploader is disabled")
	ErrCompleted  = errors.New("step already completed")
	ErrInFlight   = errors.New("upload already in progress")
	ErrSendFailed = errors.New("failed to send file")
	ErrNotApplied = errors.New("upload accepted but not applied")
)

// RejectedError reports a non-2xx backend response.
type RejectedError struct {
	StatusCode int
	Messages   []string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("upload rejected with status %d (%d messages)", e.StatusCode, len(e.Messages))
}

// Poster sends a file to an endpoint. [api.Client] implements it.
type Poster interface {
	PostFile(ctx context.Context, endpoint, field, filename string, content []byte) (api.Response, error)
}

// SuccessHandler receives the backend payload merged with the parsed headers
// under "columns". A non-nil error means the owner refused to record the
// outcome; Submit then wraps it in [ErrNotApplied].
type SuccessHandler func(data map[string]any) error

// ErrorHandler receives the human-readable failure messages.
type ErrorHandler func(messages []string)

// Options configures an [Uploader].
type Options struct {
	Title       string
	Description string
	Endpoint    string
	Disabled    bool
	Completed   bool
}

// Card is a snapshot of an uploader for rendering.
type Card struct {
	Title       string
	Description string
	FileName    string
	FileSize    int64
	InFlight    bool
	Disabled    bool
	Completed   bool
}

// Uploader owns a selected file and an in-flight flag for one step.
// It is safe for concurrent use; at most one upload is in flight at a time.
type Uploader struct {
	poster    Poster
	onSuccess SuccessHandler
	onError   ErrorHandler
	logger    *zap.Logger

	mu       sync.Mutex
	opts     Options
	file     string
	fileSize int64
	inFlight bool
}

// New creates an [Uploader]. Handlers may be nil.
func New(poster Poster, opts Options, onSuccess SuccessHandler, onError ErrorHandler) *Uploader {
	if onSuccess == nil {
		onSuccess = func(map[string]any) error { return nil }
	}
	if onError == nil {
		onError = func([]string) {}
	}
	return &Uploader{
		poster:    poster,
		opts:      opts,
		onSuccess: onSuccess,
		onError:   onError,
		logger:    zap.NewNop(),
	}
}

// SetLogger configures the uploader's logger. An upload already in flight
// keeps the logger it started with.
func (u *Uploader) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.logger = logger.With(zap.String("endpoint", u.opts.Endpoint))
}

// SetState updates the disabled and completed flags. The owner calls this
// after every step transition.
func (u *Uploader) SetState(disabled, completed bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.opts.Disabled = disabled
	u.opts.Completed = completed
}

// Select replaces the selected file. The extension is not checked.
//
// Locked and completed uploaders refuse a new selection, and so does an
// uploader with a request in flight: the outstanding upload owns the file it
// started with until it finishes.
func (u *Uploader) Select(path string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	switch {
	case u.opts.Completed:
		return ErrCompleted
	case u.opts.Disabled:
		return ErrDisabled
	case u.inFlight:
		return ErrInFlight
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot select %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot select %s: is a directory", path)
	}

	u.file = path
	u.fileSize = info.Size()
	return nil
}

// File returns the selected file path, or "" when none is selected.
func (u *Uploader) File() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.file
}

// InFlight reports whether an upload is outstanding.
func (u *Uploader) InFlight() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.inFlight
}

// Card returns a rendering snapshot.
func (u *Uploader) Card() Card {
	u.mu.Lock()
	defer u.mu.Unlock()
	c := Card{
		Title:       u.opts.Title,
		Description: u.opts.Description,
		FileSize:    u.fileSize,
		InFlight:    u.inFlight,
		Disabled:    u.opts.Disabled,
		Completed:   u.opts.Completed,
	}
	if u.file != "" {
		c.FileName = filepath.Base(u.file)
	}
	return c
}

// Submit uploads the selected file.
//
// Without a selected file no request is made: the error handler receives
// exactly one message and [ErrNoFile] is returned. Disabled, completed and
// already in-flight uploaders refuse with [ErrDisabled], [ErrCompleted] or
// [ErrInFlight] without calling either handler.
//
// Otherwise the uploader is marked in flight, the file is read once and its
// header row extracted locally, and the whole file is posted as the
// multipart field [FileField] to the step's endpoint. Outcomes:
//   - 2xx: the success handler receives the payload plus "columns". Submit
//     returns nil, or wraps [ErrNotApplied] when the handler refuses.
//   - any other status: the error handler receives the messages derived by
//     [api.Response.ErrorMessages] and a [*RejectedError] is returned.
//   - read or transport failure: the error handler receives [MsgSendFailed]
//     and the returned error wraps [ErrSendFailed].
//
// The in-flight flag is cleared before either handler runs, so handlers may
// call back into the uploader. Nothing is retried, and after a failure the
// file stays selected for a later resubmit.
func (u *Uploader) Submit(ctx context.Context) error {
	path, log, err := u.begin()
	if err != nil {
		if errors.Is(err, ErrNoFile) {
			u.onError([]string{MsgNoFile})
		}
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		u.finish()
		log.Warn("Failed to read selected file", zap.String("file", path), zap.Error(err))
		u.onError([]string{MsgSendFailed})
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	headers := ExtractHeaders(string(content))

	resp, err := u.poster.PostFile(ctx, u.opts.Endpoint, FileField, filepath.Base(path), content)
	u.finish()
	if err != nil {
		log.Warn("Upload failed", zap.String("file", path), zap.Error(err))
		u.onError([]string{MsgSendFailed})
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	if resp.OK() {
		if err := u.onSuccess(resp.SuccessData(headers)); err != nil {
			log.Warn("Accepted upload not applied", zap.String("file", path), zap.Error(err))
			return fmt.Errorf("%w: %w", ErrNotApplied, err)
		}
		log.Info("Upload accepted",
			zap.String("file", path),
			zap.Int("status", resp.StatusCode),
			zap.Int("columns", len(headers)),
		)
		return nil
	}

	msgs := resp.ErrorMessages()
	log.Info("Upload rejected",
		zap.String("file", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("messages", len(msgs)),
	)
	u.onError(msgs)
	return &RejectedError{StatusCode: resp.StatusCode, Messages: msgs}
}

// begin checks the guards and marks the upload in flight. It returns the
// file and logger the upload runs with.
func (u *Uploader) begin() (string, *zap.Logger, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	switch {
	case u.opts.Completed:
		return "", nil, ErrCompleted
	case u.opts.Disabled:
		return "", nil, ErrDisabled
	case u.inFlight:
		return "", nil, ErrInFlight
	case u.file == "":
		return "", nil, ErrNoFile
	}

	u.inFlight = true
	return u.file, u.logger, nil
}

func (u *Uploader) finish() {
	u.mu.Lock()
	u.inFlight = false
	u.mu.Unlock()
}
