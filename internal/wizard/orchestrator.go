package wizard

// Orchestrator is the state machine over the fixed, ordered step list.
//
// It exclusively owns the completed set, the current step index and the
// shared error list. All writes go through [Orchestrator.HandleSuccess],
// [Orchestrator.HandleFailure] and [Orchestrator.DismissErrors]. An
// Orchestrator is not safe for concurrent use; callers that share one across
// goroutines must serialise access.
type Orchestrator struct {
	steps     []UploadStep
	index     map[string]int
	completed map[string]bool
	current   int
	errors    []string
}

// NewOrchestrator creates an [Orchestrator] for the given steps. The first
// step starts as current and every other step as locked.
func NewOrchestrator(steps []UploadStep) (*Orchestrator, error) {
	if err := ValidateSteps(steps); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		steps:     append([]UploadStep(nil), steps...),
		index:     make(map[string]int, len(steps)),
		completed: make(map[string]bool, len(steps)),
	}
	for i, s := range steps {
		o.index[s.ID] = i
	}
	return o, nil
}

// Steps returns the configured steps in order.
func (o *Orchestrator) Steps() []UploadStep {
	return append([]UploadStep(nil), o.steps...)
}

// Step returns the step with the given ID.
func (o *Orchestrator) Step(id string) (UploadStep, bool) {
	i, ok := o.index[id]
	if !ok {
		return UploadStep{}, false
	}
	return o.steps[i], true
}

// Views derives the completed/current/locked flags for every step.
func (o *Orchestrator) Views() []StepView {
	views := make([]StepView, len(o.steps))
	for i, s := range o.steps {
		completed := o.completed[s.ID]
		views[i] = StepView{
			UploadStep: s,
			Completed:  completed,
			Current:    !completed && i == o.current,
			Locked:     !completed && i > o.current,
		}
	}
	return views
}

// View returns the derived view of a single step.
func (o *Orchestrator) View(id string) (StepView, bool) {
	i, ok := o.index[id]
	if !ok {
		return StepView{}, false
	}
	return o.Views()[i], true
}

// CurrentIndex returns the index of the current step. The boolean is false
// once every step is completed.
func (o *Orchestrator) CurrentIndex() (int, bool) {
	if o.AllCompleted() {
		return 0, false
	}
	return o.current, true
}

// IsCompleted reports whether the step with the given ID is completed.
func (o *Orchestrator) IsCompleted(id string) bool {
	return o.completed[id]
}

// CompletedCount returns the number of completed steps.
func (o *Orchestrator) CompletedCount() int {
	return len(o.completed)
}

// AllCompleted reports whether every step is completed.
func (o *Orchestrator) AllCompleted() bool {
	return len(o.completed) == len(o.steps)
}

// ConsolidationEnabled reports whether the consolidation action may run.
// It is enabled only once every step is completed.
func (o *Orchestrator) ConsolidationEnabled() bool {
	return o.AllCompleted()
}

// HandleSuccess records that the step finished uploading.
//
// The step joins the completed set, the error list is cleared, and the
// current index advances unless the step is the last one. Reporting an
// already completed step again only clears the errors.
//
// Returns [ErrUnknownStep] for IDs outside the sequence and [ErrStepLocked]
// when an earlier step is still incomplete; neither changes any state.
func (o *Orchestrator) HandleSuccess(id string) error {
	i, ok := o.index[id]
	if !ok {
		return ErrUnknownStep
	}

	if o.completed[id] {
		o.errors = nil
		return nil
	}

	if i != o.current {
		return ErrStepLocked
	}

	o.completed[id] = true
	o.errors = nil
	if i < len(o.steps)-1 {
		o.current = i + 1
	}
	return nil
}

// HandleFailure replaces the shared error list. Step statuses are unchanged.
func (o *Orchestrator) HandleFailure(messages []string) {
	o.errors = append([]string{}, messages...)
}

// DismissErrors clears the shared error list.
func (o *Orchestrator) DismissErrors() {
	o.errors = nil
}

// Errors returns a copy of the shared error list.
func (o *Orchestrator) Errors() []string {
	return append([]string(nil), o.errors...)
}
