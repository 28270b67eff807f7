package automation

// State is the position of a run in its step sequence.
type State int

const (
	StateNotStarted State = iota
	StateWaiting
	StateActing
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateWaiting:
		return "waiting"
	case StateActing:
		return "acting"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result summarizes a finished run.
type Result struct {
	State State
	// Completed counts the steps that finished both phases.
	Completed int
	// Err is the failing step's error, nil on success.
	Err *StepError
}
