package operators

import (
	"fmt"

	"github.com/loom-ml/loom/internal/rendezvous"
	"github.com/loom-ml/loom/internal/tensor"
)

// TerminatedError unwinds a step whose driver deliberately stopped it
// instead of supplying backward inputs. It is the designed teardown path,
// not a device or protocol failure; callers distinguish it with errors.As
// so a stopped step is never reported as broken.
type TerminatedError struct {
	Step rendezvous.StepID
	// TornDown is true when the step was unblocked by channel teardown
	// (abort/shutdown) rather than an explicit terminate batch.
	TornDown bool
}

func (e *TerminatedError) Error() string {
	if e.TornDown {
		return fmt.Sprintf("step %s torn down while suspended", e.Step)
	}
	return fmt.Sprintf("step %s terminated by driver", e.Step)
}

// handleYield suspends the executing step: it snapshots the node's inputs
// as the step's forward results, hands them to the driver, and blocks until
// the driver posts backward inputs, which become the node's outputs.
//
// This is the sole blocking point in the protocol. The step's state moves
// strictly forward: forward posted, awaiting backward, then either resumed
// with outputs or unwound with a TerminatedError.
func handleYield(ctx *Context, node *Node, inputs []*tensor.Value) ([]*tensor.Value, error) {
	ch, ok := ctx.Rendezvous.Get(ctx.Step)
	if !ok {
		return nil, fmt.Errorf("yield: no rendezvous channel for step %s", ctx.Step)
	}
	graph := ch.GraphSide()

	// The handoff must expose fully materialized values. Any device work
	// still queued behind an input has to complete first; a device failure
	// becomes the step's forward status and no data is handed over.
	for _, v := range inputs {
		if err := v.Materialize(); err != nil {
			graph.PostForward(rendezvous.ForwardBatch{Status: rendezvous.FailureStatus(err)})
			return nil, fmt.Errorf("yield: %w", err)
		}
	}

	snapshot := make([]*tensor.Value, len(inputs))
	copy(snapshot, inputs)
	graph.PostForward(rendezvous.ForwardBatch{Values: snapshot, Status: rendezvous.StatusOK})

	backward, err := graph.AwaitBackward()
	if err != nil {
		// Channel torn down underneath the suspension point.
		return nil, &TerminatedError{Step: ctx.Step, TornDown: true}
	}

	if backward.Terminate {
		return nil, &TerminatedError{Step: ctx.Step}
	}

	if len(backward.Values) != len(node.Outputs) {
		panic(fmt.Sprintf("yield: backward batch has %d values, node %q declares %d outputs",
			len(backward.Values), node.Name, len(node.Outputs)))
	}
	return backward.Values, nil
}
