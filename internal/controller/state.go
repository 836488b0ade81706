package controller

import "github.com/sells-group/income-predict/internal/form"

// Status is the lifecycle stage of the last submission.
type Status int

const (
	// StatusIdle means nothing has been submitted yet.
	StatusIdle Status = iota
	// StatusPending means a request is in flight.
	StatusPending
	// StatusSucceeded means the last request produced a result.
	StatusSucceeded
	// StatusFailed means the last request failed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is a prediction ready for display.
type Result struct {
	Message      string       `json:"message"`
	Model        string       `json:"model,omitempty"`
	Inputs       form.Payload `json:"inputs"`
	IncomeChance string       `json:"income_chance"`
}

// State is a snapshot of the submission lifecycle. Result is set only when
// Succeeded; Message and Err only when Failed.
type State struct {
	Status  Status  `json:"status"`
	Result  *Result `json:"result,omitempty"`
	Message string  `json:"error,omitempty"`
	Err     error   `json:"-"`
}

// Idle is the initial state.
func Idle() State { return State{Status: StatusIdle} }

func pending() State { return State{Status: StatusPending} }

func succeeded(r *Result) State { return State{Status: StatusSucceeded, Result: r} }

func failed(err error) State {
	return State{Status: StatusFailed, Message: FailureMessage(err), Err: err}
}
