// Package rendezvous implements the per-step handoff between the graph
// execution thread and the external driver thread.
//
// Each training step performs exactly two transfers through one Channel:
// the graph side posts its forward results and blocks, the driver side
// consumes them and posts backward inputs (or a terminate signal), and the
// graph side resumes. Channels are single-use and scoped to one StepID;
// a process-wide Registry maps StepIDs to live channels.
package rendezvous

import (
	"errors"

	"github.com/loom-ml/loom/internal/tensor"
)

// Status is the completion status carried with forward results. A failed
// status means the forward segment did not produce usable values (for
// example the device synchronization barrier failed) and the driver must
// not post backward inputs for the step.
type Status struct {
	OK      bool
	Message string
}

// StatusOK is the success status.
var StatusOK = Status{OK: true}

// FailureStatus builds a failed status from the underlying error.
func FailureStatus(err error) Status {
	return Status{OK: false, Message: err.Error()}
}

// Err returns the status as an error, or nil for a success status.
func (s Status) Err() error {
	if s.OK {
		return nil
	}
	return errors.New(s.Message)
}

// ForwardBatch carries the forward-pass values captured at the suspension
// point, in operator input order, plus the forward segment's completion
// status. When Status is failed, Values is empty.
//
// Produced exactly once per step by the graph side; consumed exactly once
// by the driver side.
type ForwardBatch struct {
	Values []*tensor.Value
	Status Status
}

// BackwardBatch carries the externally computed values that resume the
// graph, in operator output order. When Terminate is true the step is being
// deliberately torn down: Values is unspecified and must not be used.
//
// Produced exactly once per step by the driver side; consumed exactly once
// by the graph side.
type BackwardBatch struct {
	Values    []*tensor.Value
	Terminate bool
}

// TerminateBatch builds the backward batch that tears a step down.
func TerminateBatch() BackwardBatch {
	return BackwardBatch{Terminate: true}
}
