package graph

import "github.com/loom-ml/loom/internal/tensor"

// Outcome classifies how a step ended. Terminated is deliberately distinct
// from Failed: a training loop that chose to stop is not a broken one.
type Outcome int

// Step outcomes.
const (
	Succeeded Outcome = iota
	Terminated
	Failed
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Terminated:
		return "terminated"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// StepResult reports the end of one step.
// Outputs is populated only for a succeeded step. Err is nil for a
// succeeded step, the TerminatedError for a terminated one, and the
// underlying failure otherwise.
type StepResult struct {
	Outcome Outcome
	Outputs map[string]*tensor.Value
	Err     error
}
