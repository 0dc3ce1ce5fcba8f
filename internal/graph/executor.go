package graph

import (
	"errors"
	"fmt"

	"github.com/loom-ml/loom/internal/graph/operators"
	"github.com/loom-ml/loom/internal/opconfig"
	"github.com/loom-ml/loom/internal/rendezvous"
	"github.com/loom-ml/loom/internal/tensor"
)

// Executor runs graphs node by node through an operator registry.
// One Executor serves any number of concurrent steps; per-step state lives
// in the rendezvous registry under the step's id.
type Executor struct {
	ops        *operators.Registry
	rendezvous *rendezvous.Registry
	configs    *opconfig.Table
}

// NewExecutor creates an executor dispatching through the given operator
// registry and suspending through the given rendezvous registry.
func NewExecutor(ops *operators.Registry, rv *rendezvous.Registry) *Executor {
	return &Executor{
		ops:        ops,
		rendezvous: rv,
		configs:    opconfig.Builtin(),
	}
}

// WithConfigs replaces the external-operator configuration table.
func (e *Executor) WithConfigs(t *opconfig.Table) *Executor {
	e.configs = t
	return e
}

// Run executes the graph for one step. feeds provides the graph's initial
// named values. Run blocks for the whole step, including the suspension at
// a Yield node, and always returns a StepResult; it never returns a
// half-finished binding state.
func (e *Executor) Run(g *Graph, feeds map[string]*tensor.Value, step rendezvous.StepID) *StepResult {
	values := make(map[string]*tensor.Value, len(feeds))
	for name, v := range feeds {
		values[name] = v
	}

	ctx := &operators.Context{
		Rendezvous: e.rendezvous,
		Step:       step,
		Configs:    e.configs,
	}

	for _, node := range g.Nodes {
		inputs := make([]*tensor.Value, len(node.Inputs))
		for i, name := range node.Inputs {
			v, ok := values[name]
			if !ok {
				return failed(fmt.Errorf("node %q input %q is not bound", node.Name, name))
			}
			inputs[i] = v
		}

		outputs, err := e.ops.Execute(ctx, node, inputs)
		if err != nil {
			var term *operators.TerminatedError
			if errors.As(err, &term) {
				return &StepResult{Outcome: Terminated, Err: err}
			}
			return failed(fmt.Errorf("node %q: %w", node.Name, err))
		}

		if len(outputs) != len(node.Outputs) {
			return failed(fmt.Errorf("node %q produced %d outputs, declares %d", node.Name, len(outputs), len(node.Outputs)))
		}
		for i, name := range node.Outputs {
			values[name] = outputs[i]
		}
	}

	result := &StepResult{
		Outcome: Succeeded,
		Outputs: make(map[string]*tensor.Value, len(g.Outputs)),
	}
	for _, name := range g.Outputs {
		v, ok := values[name]
		if !ok {
			return failed(fmt.Errorf("graph output %q was never bound", name))
		}
		result.Outputs[name] = v
	}
	return result
}

func failed(err error) *StepResult {
	return &StepResult{Outcome: Failed, Err: err}
}
