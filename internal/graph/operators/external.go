package operators

import (
	"fmt"

	"github.com/loom-ml/loom/internal/opconfig"
	"github.com/loom-ml/loom/internal/tensor"
)

// ExternalFunc evaluates an externally defined operator. The attrs map
// holds every non-tensor argument the operator's configuration declares,
// resolved from node attributes with configured defaults filled in.
type ExternalFunc func(inputs []*tensor.Value, attrs map[string]opconfig.Variant) ([]*tensor.Value, error)

// RegisterExternal binds an implementation to an external operator name,
// e.g. "aten::embedding".
func (r *Registry) RegisterExternal(name string, fn ExternalFunc) {
	r.externals[name] = fn
}

// handleExternal dispatches an "External" node to its registered
// implementation. The node names the target operator in its "operator"
// attribute; the configuration table supplies the argument declaration and
// default values.
func (r *Registry) handleExternal(ctx *Context, node *Node, inputs []*tensor.Value) ([]*tensor.Value, error) {
	name := GetAttrString(node, "operator", "")
	if name == "" {
		return nil, fmt.Errorf("external node %q has no operator attribute", node.Name)
	}

	cfg, ok := ctx.Configs.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("external operator %q has no configuration", name)
	}
	fn, ok := r.externals[name]
	if !ok {
		return nil, fmt.Errorf("external operator %q has no registered implementation", name)
	}

	attrs, err := resolveExternalAttrs(cfg, node)
	if err != nil {
		return nil, fmt.Errorf("external operator %q: %w", name, err)
	}
	return fn(inputs, attrs)
}

// resolveExternalAttrs collects every declared non-tensor argument, taking
// the node's attribute when present and the configured default otherwise.
func resolveExternalAttrs(cfg *opconfig.Config, node *Node) (map[string]opconfig.Variant, error) {
	attrs := make(map[string]opconfig.Variant)
	for _, arg := range cfg.ForwardArgs {
		if arg.Kind == opconfig.ArgTensor {
			continue
		}

		if HasAttr(node, arg.Name) {
			v, err := attrVariant(node, arg)
			if err != nil {
				return nil, err
			}
			attrs[arg.Name] = v
			continue
		}

		if v, ok := cfg.Default(arg.Name); ok {
			attrs[arg.Name] = v
			continue
		}
		return nil, fmt.Errorf("argument %q has no attribute and no default", arg.Name)
	}
	return attrs, nil
}

func attrVariant(node *Node, arg opconfig.Argument) (opconfig.Variant, error) {
	switch arg.Kind {
	case opconfig.ArgInt:
		return opconfig.IntVariant(GetAttrInt(node, arg.Name, 0)), nil
	case opconfig.ArgFloat:
		return opconfig.FloatVariant(float64(GetAttrFloat(node, arg.Name, 0))), nil
	case opconfig.ArgBool:
		return opconfig.BoolVariant(GetAttrInt(node, arg.Name, 0) != 0), nil
	case opconfig.ArgIntList:
		return opconfig.IntListVariant(GetAttrInts(node, arg.Name)), nil
	case opconfig.ArgFloatList:
		fs := GetAttrFloats(node, arg.Name)
		out := make([]float64, len(fs))
		for i, f := range fs {
			out[i] = float64(f)
		}
		return opconfig.FloatListVariant(out), nil
	case opconfig.ArgBoolList:
		is := GetAttrInts(node, arg.Name)
		out := make([]bool, len(is))
		for i, v := range is {
			out[i] = v != 0
		}
		return opconfig.BoolListVariant(out), nil
	default:
		return opconfig.Variant{}, fmt.Errorf("argument %q has unsupported kind %s", arg.Name, arg.Kind)
	}
}
