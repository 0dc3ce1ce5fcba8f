package operators

import (
	"fmt"

	"github.com/loom-ml/loom/internal/tensor"
)

// registerMathOps adds element-wise math operators to the registry.
func (r *Registry) registerMathOps() {
	r.Register("Add", handleAdd)
	r.Register("Sub", handleSub)
	r.Register("Mul", handleMul)
	r.Register("Scale", handleScale)
}

func handleAdd(_ *Context, _ *Node, inputs []*tensor.Value) ([]*tensor.Value, error) {
	return elementwiseBinary("add", inputs, func(a, b float32) float32 { return a + b })
}

func handleSub(_ *Context, _ *Node, inputs []*tensor.Value) ([]*tensor.Value, error) {
	return elementwiseBinary("sub", inputs, func(a, b float32) float32 { return a - b })
}

func handleMul(_ *Context, _ *Node, inputs []*tensor.Value) ([]*tensor.Value, error) {
	return elementwiseBinary("mul", inputs, func(a, b float32) float32 { return a * b })
}

// handleScale multiplies its input by the "alpha" attribute.
func handleScale(_ *Context, node *Node, inputs []*tensor.Value) ([]*tensor.Value, error) {
	if len(inputs) != 1 {
		return nil, fmt.Errorf("scale requires 1 input, got %d", len(inputs))
	}

	in := inputs[0]
	if in.DType() != tensor.Float32 {
		return nil, fmt.Errorf("scale supports float32, got %s", in.DType())
	}

	alpha := GetAttrFloat(node, "alpha", 1.0)
	out, err := tensor.New(in.Shape(), in.DType(), in.Device())
	if err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}

	src := in.AsFloat32()
	dst := out.AsFloat32()
	for i := range src {
		dst[i] = src[i] * alpha
	}
	return []*tensor.Value{out}, nil
}

func elementwiseBinary(name string, inputs []*tensor.Value, f func(a, b float32) float32) ([]*tensor.Value, error) {
	if len(inputs) != 2 {
		return nil, fmt.Errorf("%s requires 2 inputs, got %d", name, len(inputs))
	}

	a, b := inputs[0], inputs[1]
	if a.DType() != tensor.Float32 || b.DType() != tensor.Float32 {
		return nil, fmt.Errorf("%s supports float32, got %s and %s", name, a.DType(), b.DType())
	}
	if !a.Shape().Equal(b.Shape()) {
		return nil, fmt.Errorf("%s shape mismatch: %v vs %v", name, a.Shape(), b.Shape())
	}

	out, err := tensor.New(a.Shape(), tensor.Float32, a.Device())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	av := a.AsFloat32()
	bv := b.AsFloat32()
	dst := out.AsFloat32()
	for i := range av {
		dst[i] = f(av[i], bv[i])
	}
	return []*tensor.Value{out}, nil
}
