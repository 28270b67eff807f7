package automation

import (
	"context"

	"go.uber.org/zap"

	"github.com/grez-lucas/posthog-filter/internal/browser"
)

// TransitionFunc observes state changes of a run. index is 1-based and 0
// outside of any step.
type TransitionFunc func(index int, step string, state State)

// Runner executes steps in order against one driver.
type Runner struct {
	driver  *browser.Driver
	log     *zap.Logger
	observe TransitionFunc
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the logger for step progress.
func WithRunnerLogger(log *zap.Logger) RunnerOption {
	return func(r *Runner) {
		r.log = log
	}
}

// WithTransitions registers fn to be called on every state change.
func WithTransitions(fn TransitionFunc) RunnerOption {
	return func(r *Runner) {
		r.observe = fn
	}
}

// NewRunner creates a Runner.
func NewRunner(driver *browser.Driver, opts ...RunnerOption) *Runner {
	r := &Runner{
		driver: driver,
		log:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes steps one after another. The first failure ends the run in
// StateFailed; whatever the page looks like at that point is left as is.
func (r *Runner) Run(ctx context.Context, steps []Step) (*Result, error) {
	res := &Result{State: StateNotStarted}
	r.transition(0, "", StateNotStarted)

	for i, step := range steps {
		index := i + 1
		log := r.log.With(zap.Int("step", index), zap.String("name", step.Name))

		var el browser.Element
		if step.Wait != nil {
			r.transition(index, step.Name, StateWaiting)
			log.Debug("waiting")

			found, err := step.Wait(ctx, r.driver)
			if err != nil {
				return r.fail(res, &StepError{Index: index, Step: step.Name, Phase: StateWaiting, Cause: err})
			}
			el = found
		}

		if step.Act != nil {
			r.transition(index, step.Name, StateActing)
			log.Debug("acting")

			if err := step.Act(ctx, r.driver, el); err != nil {
				return r.fail(res, &StepError{Index: index, Step: step.Name, Phase: StateActing, Cause: err})
			}
		}

		res.Completed++
	}

	res.State = StateCompleted
	r.transition(0, "", StateCompleted)
	return res, nil
}

func (r *Runner) fail(res *Result, err *StepError) (*Result, error) {
	res.State = StateFailed
	res.Err = err
	r.transition(err.Index, err.Step, StateFailed)
	return res, err
}

func (r *Runner) transition(index int, step string, state State) {
	if r.observe != nil {
		r.observe(index, step, state)
	}
}
