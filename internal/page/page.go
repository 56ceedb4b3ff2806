// Package page composes one wizard session: the step orchestrator, one
// uploader per step and the consolidation client.
//
// Uploader outcomes flow into the orchestrator's transitions, and after every
// transition each uploader's locked/completed flags and the consolidation
// gate are refreshed from the derived step views. A Page is safe for
// concurrent use; the HTTP front end shares one across requests.
package page

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"csvwizard/internal/api"
	"csvwizard/internal/consolidate"
	"csvwizard/internal/upload"
	"csvwizard/internal/wizard"
)

// Client is the backend the page talks to. [api.Client] implements it.
type Client interface {
	upload.Poster
	consolidate.Getter
}

// Page is one wizard session.
//
// The page is the only writer of wizard state. Each uploader reports back
// through the page's handlers: a success becomes [wizard.Orchestrator.HandleSuccess]
// and stores the step's data, a failure replaces the shared error list.
// After every completion the uploaders' locked/completed flags and the
// consolidation gate are refreshed from the derived views, so a locked step
// can neither select nor submit a file.
//
// A 2xx response for a step the orchestrator will not complete, because an
// earlier step is still open, stores nothing: the refusal goes back to the
// uploader and [Page.UploadStep] returns an error matching
// [upload.ErrNotApplied] and [wizard.ErrStepLocked].
//
// Create with [New]. All methods may be called from multiple goroutines.
type Page struct {
	mu        sync.Mutex
	orch      *wizard.Orchestrator
	uploaders map[string]*upload.Uploader
	data      map[string]map[string]any

	consolidator *consolidate.Client
	logger       *zap.Logger
}

// New creates a page for steps. consolidateEndpoint may be empty.
func New(steps []wizard.UploadStep, client Client, consolidateEndpoint string) (*Page, error) {
	orch, err := wizard.NewOrchestrator(steps)
	if err != nil {
		return nil, err
	}

	p := &Page{
		orch:         orch,
		uploaders:    make(map[string]*upload.Uploader, len(steps)),
		data:         make(map[string]map[string]any),
		consolidator: consolidate.NewClient(client, consolidateEndpoint),
		logger:       zap.NewNop(),
	}

	for _, s := range steps {
		id := s.ID
		p.uploaders[id] = upload.New(client, upload.Options{
			Title:       s.Title,
			Description: s.Description,
			Endpoint:    s.Endpoint,
		}, func(data map[string]any) error {
			return p.handleSuccess(id, data)
		}, p.handleFailure)
	}

	p.refresh()
	return p, nil
}

// SetLogger configures logging for the page and every component it owns.
func (p *Page) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logger = logger
	for _, u := range p.uploaders {
		u.SetLogger(logger)
	}
	p.consolidator.SetLogger(logger)
}

// handleSuccess records a completed upload. A completion the orchestrator
// refuses stores nothing and is returned to the uploader.
func (p *Page) handleSuccess(id string, data map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.orch.HandleSuccess(id); err != nil {
		p.logger.Warn("Refusing out-of-order completion", zap.String("step", id), zap.Error(err))
		return err
	}
	p.data[id] = data
	p.refresh()
	p.logger.Info("Step completed",
		zap.String("step", id),
		zap.Int("completed", p.orch.CompletedCount()),
		zap.Int("total", len(p.uploaders)),
	)
	return nil
}

func (p *Page) handleFailure(messages []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orch.HandleFailure(messages)
}

// refresh pushes the derived views into the uploaders. Caller must hold p.mu
// (or be the constructor).
func (p *Page) refresh() {
	for _, v := range p.orch.Views() {
		p.uploaders[v.ID].SetState(v.Locked, v.Completed)
	}
	p.consolidator.SetDisabled(!p.orch.ConsolidationEnabled())
}

// Views returns the derived status of every step.
func (p *Page) Views() []wizard.StepView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.orch.Views()
}

// View returns the derived status of one step.
func (p *Page) View(id string) (wizard.StepView, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.orch.View(id)
}

// Errors returns the shared error list.
func (p *Page) Errors() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.orch.Errors()
}

// DismissErrors clears the shared error list.
func (p *Page) DismissErrors() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orch.DismissErrors()
}

// ConsolidationEnabled reports whether every step is completed.
func (p *Page) ConsolidationEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.orch.ConsolidationEnabled()
}

// Uploader returns the uploader for a step.
func (p *Page) Uploader(id string) (*upload.Uploader, error) {
	u, ok := p.uploaders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", wizard.ErrUnknownStep, id)
	}
	return u, nil
}

// Cards returns a rendering snapshot of every uploader in step order.
func (p *Page) Cards() []upload.Card {
	views := p.Views()
	cards := make([]upload.Card, len(views))
	for i, v := range views {
		cards[i] = p.uploaders[v.ID].Card()
	}
	return cards
}

// StepData returns the success payload of a completed step.
func (p *Page) StepData(id string) (map[string]any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, ok := p.data[id]
	return d, ok
}

// Columns returns the header row parsed from a completed step's file.
func (p *Page) Columns(id string) []string {
	d, ok := p.StepData(id)
	if !ok {
		return nil
	}
	cols, _ := d["columns"].([]string)
	return cols
}

// UploadStep selects path for the step and submits it. It implements
// [wizard.StepUploader].
func (p *Page) UploadStep(ctx context.Context, stepID, path string) error {
	u, err := p.Uploader(stepID)
	if err != nil {
		return err
	}
	if err := u.Select(path); err != nil {
		return err
	}
	return u.Submit(ctx)
}

// SubmitStep resubmits the file already selected for the step. Without a
// selection the shared error list receives the no-file message.
func (p *Page) SubmitStep(ctx context.Context, stepID string) error {
	u, err := p.Uploader(stepID)
	if err != nil {
		return err
	}
	return u.Submit(ctx)
}

// Consolidate runs consolidation. It is refused until every step is
// completed.
func (p *Page) Consolidate(ctx context.Context) (json.RawMessage, error) {
	result, err := p.consolidator.Consolidate(ctx)
	if errors.Is(err, consolidate.ErrDisabled) {
		return nil, fmt.Errorf("%w: %d of %d steps completed", err, p.completed(), len(p.uploaders))
	}
	return result, err
}

// Consolidator returns the consolidation client.
func (p *Page) Consolidator() *consolidate.Client {
	return p.consolidator
}

func (p *Page) completed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.orch.CompletedCount()
}

// Runner returns a sequential runner over this page.
func (p *Page) Runner() *wizard.Runner {
	return wizard.NewRunner(p, p)
}

var _ Client = (*api.Client)(nil)
