package automation

import (
	"errors"
	"fmt"
)

// ErrNotActivated is returned when the page does not satisfy a workflow's
// activation gate. No DOM action has been taken.
var ErrNotActivated = errors.New("workflow not activated for this page")

// StepError provides the context of a failed workflow step.
type StepError struct {
	Index int // 1-based position in the step list
	Step  string
	Phase State
	Cause error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s) failed while %s: %v", e.Index, e.Step, e.Phase, e.Cause)
}

func (e *StepError) Unwrap() error {
	return e.Cause
}
