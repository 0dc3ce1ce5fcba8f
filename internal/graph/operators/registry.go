package operators

import (
	"fmt"

	"github.com/loom-ml/loom/internal/opconfig"
	"github.com/loom-ml/loom/internal/rendezvous"
	"github.com/loom-ml/loom/internal/tensor"
)

// OpHandler processes a graph node and returns output values.
type OpHandler func(ctx *Context, node *Node, inputs []*tensor.Value) ([]*tensor.Value, error)

// Context provides per-step execution context for operators.
type Context struct {
	// Rendezvous and Step identify the handoff channel the Yield operator
	// uses for the current step.
	Rendezvous *rendezvous.Registry
	Step       rendezvous.StepID
	// Configs is the external-operator configuration table.
	Configs *opconfig.Table
}

// Registry maps operator types to handler functions.
type Registry struct {
	handlers  map[string]OpHandler
	externals map[string]ExternalFunc
}

// NewRegistry creates an operator registry with all built-in operators.
func NewRegistry() *Registry {
	r := &Registry{
		handlers:  make(map[string]OpHandler),
		externals: make(map[string]ExternalFunc),
	}

	r.registerMathOps()
	r.Register("Yield", handleYield)
	r.Register("BatchNormalizationGrad", handleBatchNormGrad)
	r.Register("External", r.handleExternal)

	return r
}

// Register adds a custom operator handler.
func (r *Registry) Register(opType string, handler OpHandler) {
	r.handlers[opType] = handler
}

// Get returns the handler for an operator type.
func (r *Registry) Get(opType string) (OpHandler, bool) {
	h, ok := r.handlers[opType]
	return h, ok
}

// Execute runs an operator with the given inputs.
func (r *Registry) Execute(ctx *Context, node *Node, inputs []*tensor.Value) ([]*tensor.Value, error) {
	handler, ok := r.handlers[node.OpType]
	if !ok {
		return nil, fmt.Errorf("unsupported operator: %s", node.OpType)
	}
	return handler(ctx, node, inputs)
}

// SupportedOps returns a list of all supported operator types.
func (r *Registry) SupportedOps() []string {
	ops := make([]string, 0, len(r.handlers))
	for op := range r.handlers {
		ops = append(ops, op)
	}
	return ops
}
