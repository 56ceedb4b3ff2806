package wizard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvwizard/internal/config"
)

func testSteps(n int) []UploadStep {
	steps := make([]UploadStep, n)
	for i := range steps {
		steps[i] = UploadStep{
			ID:       fmt.Sprintf("step-%d", i+1),
			Title:    fmt.Sprintf("Step %d", i+1),
			Endpoint: fmt.Sprintf("Step%d-csv", i+1),
		}
	}
	return steps
}

func statuses(views []StepView) []Status {
	out := make([]Status, len(views))
	for i, v := range views {
		out[i] = v.Status()
	}
	return out
}

func TestNewOrchestrator_InitialState(t *testing.T) {
	o, err := NewOrchestrator(testSteps(3))
	require.NoError(t, err)

	assert.Equal(t, []Status{StatusCurrent, StatusLocked, StatusLocked}, statuses(o.Views()))
	idx, ok := o.CurrentIndex()
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.False(t, o.ConsolidationEnabled())
	assert.Empty(t, o.Errors())
}

func TestNewOrchestrator_InvalidSteps(t *testing.T) {
	tests := []struct {
		name    string
		steps   []UploadStep
		wantErr string
	}{
		{name: "empty", steps: nil, wantErr: "no upload steps"},
		{name: "missing id", steps: []UploadStep{{Endpoint: "x"}}, wantErr: "id is required"},
		{name: "missing endpoint", steps: []UploadStep{{ID: "a"}}, wantErr: "endpoint is required"},
		{
			name:    "duplicate id",
			steps:   []UploadStep{{ID: "a", Endpoint: "x"}, {ID: "a", Endpoint: "y"}},
			wantErr: "duplicate id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrchestrator(tt.steps)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOrchestrator_HandleSuccess_AdvancesInOrder(t *testing.T) {
	o, err := NewOrchestrator(testSteps(3))
	require.NoError(t, err)

	o.HandleFailure([]string{"previous failure"})
	require.NoError(t, o.HandleSuccess("step-1"))
	assert.Empty(t, o.Errors(), "success clears the error list")
	assert.Equal(t, []Status{StatusCompleted, StatusCurrent, StatusLocked}, statuses(o.Views()))

	require.NoError(t, o.HandleSuccess("step-2"))
	assert.Equal(t, []Status{StatusCompleted, StatusCompleted, StatusCurrent}, statuses(o.Views()))
	assert.False(t, o.ConsolidationEnabled())

	require.NoError(t, o.HandleSuccess("step-3"))
	assert.Equal(t, []Status{StatusCompleted, StatusCompleted, StatusCompleted}, statuses(o.Views()))
	assert.True(t, o.ConsolidationEnabled())

	_, ok := o.CurrentIndex()
	assert.False(t, ok, "no step is current once all are completed")
}

func TestOrchestrator_HandleSuccess_LockedStepRefused(t *testing.T) {
	o, err := NewOrchestrator(testSteps(3))
	require.NoError(t, err)

	err = o.HandleSuccess("step-2")
	assert.ErrorIs(t, err, ErrStepLocked)
	assert.Equal(t, 0, o.CompletedCount())
	assert.Equal(t, []Status{StatusCurrent, StatusLocked, StatusLocked}, statuses(o.Views()))
}

func TestOrchestrator_HandleSuccess_UnknownStep(t *testing.T) {
	o, err := NewOrchestrator(testSteps(2))
	require.NoError(t, err)

	assert.ErrorIs(t, o.HandleSuccess("nope"), ErrUnknownStep)
}

func TestOrchestrator_HandleSuccess_CompletedStepIsIdempotent(t *testing.T) {
	o, err := NewOrchestrator(testSteps(3))
	require.NoError(t, err)
	require.NoError(t, o.HandleSuccess("step-1"))
	require.NoError(t, o.HandleSuccess("step-2"))

	o.HandleFailure([]string{"boom"})
	require.NoError(t, o.HandleSuccess("step-1"))

	assert.Empty(t, o.Errors())
	idx, ok := o.CurrentIndex()
	require.True(t, ok)
	assert.Equal(t, 2, idx, "re-reporting an earlier step never moves the index back")
}

func TestOrchestrator_HandleFailure_ReplacesErrors(t *testing.T) {
	o, err := NewOrchestrator(testSteps(2))
	require.NoError(t, err)

	o.HandleFailure([]string{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, o.Errors())

	o.HandleFailure([]string{"c"})
	assert.Equal(t, []string{"c"}, o.Errors())
	assert.Equal(t, []Status{StatusCurrent, StatusLocked}, statuses(o.Views()), "failure never changes step status")

	o.DismissErrors()
	assert.Empty(t, o.Errors())
}

func TestOrchestrator_Errors_ReturnsCopy(t *testing.T) {
	o, err := NewOrchestrator(testSteps(1))
	require.NoError(t, err)

	msgs := []string{"x"}
	o.HandleFailure(msgs)
	msgs[0] = "mutated"
	got := o.Errors()
	got[0] = "mutated again"

	assert.Equal(t, []string{"x"}, o.Errors())
}

// For every contiguous prefix of completed steps, exactly one step is current
// (unless all are complete) and every step after it is locked.
func TestOrchestrator_ExactlyOneCurrentForEveryPrefix(t *testing.T) {
	for n := 1; n <= 5; n++ {
		for done := 0; done <= n; done++ {
			t.Run(fmt.Sprintf("%d_of_%d", done, n), func(t *testing.T) {
				steps := testSteps(n)
				o, err := NewOrchestrator(steps)
				require.NoError(t, err)
				for i := 0; i < done; i++ {
					require.NoError(t, o.HandleSuccess(steps[i].ID))
				}

				current := 0
				for i, v := range o.Views() {
					flags := 0
					for _, f := range []bool{v.Completed, v.Current, v.Locked} {
						if f {
							flags++
						}
					}
					assert.Equal(t, 1, flags, "step %d must have exactly one status", i)

					switch {
					case i < done:
						assert.True(t, v.Completed)
					case i == done:
						assert.True(t, v.Current)
						current++
					default:
						assert.True(t, v.Locked)
					}
				}

				if done == n {
					assert.Equal(t, 0, current)
				} else {
					assert.Equal(t, 1, current)
				}
			})
		}
	}
}

func TestStepsFromConfig(t *testing.T) {
	steps, err := StepsFromConfig(config.DefaultConfig().Steps)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, "operacoes", steps[1].ID)
	assert.Equal(t, "Operacoes-csv", steps[1].Endpoint)

	_, err = StepsFromConfig(nil)
	assert.ErrorIs(t, err, ErrNoSteps)
}

func TestOrchestrator_StepLookup(t *testing.T) {
	o, err := NewOrchestrator(testSteps(2))
	require.NoError(t, err)

	s, ok := o.Step("step-2")
	require.True(t, ok)
	assert.Equal(t, "Step 2", s.Title)

	v, ok := o.View("step-2")
	require.True(t, ok)
	assert.True(t, v.Locked)

	_, ok = o.Step("missing")
	assert.False(t, ok)
}
