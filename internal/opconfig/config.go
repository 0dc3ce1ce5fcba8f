// Package opconfig holds the configuration table for externally defined
// operators: how an external operator's arguments, output types, and
// gradient-input wiring map into the graph IR.
//
// The table is data, not code: entries are declared in YAML (see
// configs.yaml) and parsed at load time. The runtime core consults the
// table only to resolve argument defaults; the gradient-graph construction
// stage consumes the wiring fields.
package opconfig

import "fmt"

// BackwardSourceKind says where one input of the backward operator comes
// from in the forward step.
type BackwardSourceKind int

// Backward input sources.
const (
	GradOutput    BackwardSourceKind = iota // i-th output gradient
	ForwardInput                            // i-th forward input
	ForwardOutput                           // i-th forward output
)

func parseBackwardSourceKind(s string) (BackwardSourceKind, error) {
	switch s {
	case "grad_output":
		return GradOutput, nil
	case "forward_input":
		return ForwardInput, nil
	case "forward_output":
		return ForwardOutput, nil
	default:
		return 0, fmt.Errorf("unknown backward input source %q", s)
	}
}

// TypeInferKind says how to infer one forward output's element type.
type TypeInferKind int

// Output type inference rules.
const (
	PropagateFromInput TypeInferKind = iota // copy the i-th input's type
	ConcreteType                            // the type with tag i
)

func parseTypeInferKind(s string) (TypeInferKind, error) {
	switch s {
	case "propagate_from_input":
		return PropagateFromInput, nil
	case "concrete_type":
		return ConcreteType, nil
	default:
		return 0, fmt.Errorf("unknown output type rule %q", s)
	}
}

// Argument is one declared argument of an external operator.
type Argument struct {
	Kind ArgKind
	Name string
}

// BackwardSource wires one backward-operator input to its origin.
type BackwardSource struct {
	Kind  BackwardSourceKind
	Index int
}

// OutputTypeRule describes type inference for one forward output.
type OutputTypeRule struct {
	Kind  TypeInferKind
	Value int
}

// Config describes one external operator pair (forward + backward).
type Config struct {
	// Name is the forward operator name, e.g. "aten::embedding".
	Name string
	// BackwardName is the paired gradient operator name.
	BackwardName string
	// ForwardArgs and BackwardArgs list each operator's declared arguments
	// in call order.
	ForwardArgs  []Argument
	BackwardArgs []Argument
	// BackwardInputSources wires each backward input to a forward-step
	// value, index-aligned with BackwardArgs' tensor arguments.
	BackwardInputSources []BackwardSource
	// OutputTypeRules gives type inference for each forward output.
	OutputTypeRules []OutputTypeRule
	// GradientInputIndices maps the backward operator's outputs to the
	// forward operator's input positions receiving a gradient.
	GradientInputIndices []int
	// Defaults holds per-argument default values keyed by argument name.
	Defaults map[string]Variant
}

// Default returns the default value declared for an argument, ok=false
// when the argument has no default.
func (c *Config) Default(name string) (Variant, bool) {
	v, ok := c.Defaults[name]
	return v, ok
}
