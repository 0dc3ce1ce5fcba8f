package operators

import (
	"errors"
	"testing"

	"github.com/loom-ml/loom/internal/opconfig"
	"github.com/loom-ml/loom/internal/tensor"
)

func externalContext() *Context {
	return &Context{Configs: opconfig.Builtin()}
}

func TestExternalDispatchResolvesDefaults(t *testing.T) {
	r := NewRegistry()

	var gotAttrs map[string]opconfig.Variant
	r.RegisterExternal("aten::embedding", func(inputs []*tensor.Value, attrs map[string]opconfig.Variant) ([]*tensor.Value, error) {
		gotAttrs = attrs
		return []*tensor.Value{inputs[0]}, nil
	})

	weight := makeValue(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	node := &Node{
		Name:    "emb",
		OpType:  "External",
		Outputs: []string{"out"},
		Attributes: []Attribute{
			{Name: "operator", S: "aten::embedding"},
			{Name: "padding_idx", I: 5},
		},
	}

	outs, err := r.Execute(externalContext(), node, []*tensor.Value{weight})
	if err != nil {
		t.Fatalf("External failed: %v", err)
	}
	if outs[0] != weight {
		t.Error("external output not passed through")
	}

	// Attribute overrides the configured default.
	pi, ok := gotAttrs["padding_idx"].Int()
	if !ok || pi != 5 {
		t.Errorf("padding_idx: expected 5, got %v (ok=%v)", pi, ok)
	}

	// Unset arguments fall back to configured defaults.
	sparse, ok := gotAttrs["sparse"].Bool()
	if !ok || sparse {
		t.Errorf("sparse: expected default false, got %v (ok=%v)", sparse, ok)
	}
	sgf, ok := gotAttrs["scale_grad_by_freq"].Bool()
	if !ok || sgf {
		t.Errorf("scale_grad_by_freq: expected default false, got %v (ok=%v)", sgf, ok)
	}
}

func TestExternalDispatchListAttrs(t *testing.T) {
	r := NewRegistry()

	var gotAttrs map[string]opconfig.Variant
	r.RegisterExternal("aten::max_pool2d_with_indices", func(inputs []*tensor.Value, attrs map[string]opconfig.Variant) ([]*tensor.Value, error) {
		gotAttrs = attrs
		return []*tensor.Value{inputs[0], inputs[0]}, nil
	})

	in := makeValue(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	node := &Node{
		Name:    "pool",
		OpType:  "External",
		Outputs: []string{"out", "indices"},
		Attributes: []Attribute{
			{Name: "operator", S: "aten::max_pool2d_with_indices"},
			{Name: "kernel_size", Ints: []int64{2, 2}},
			{Name: "stride", Ints: []int64{2, 2}},
		},
	}

	if _, err := r.Execute(externalContext(), node, []*tensor.Value{in}); err != nil {
		t.Fatalf("External failed: %v", err)
	}

	ks, ok := gotAttrs["kernel_size"].IntList()
	if !ok || len(ks) != 2 || ks[0] != 2 {
		t.Errorf("kernel_size: got %v (ok=%v)", ks, ok)
	}
	pad, ok := gotAttrs["padding"].IntList()
	if !ok || len(pad) != 2 || pad[0] != 0 {
		t.Errorf("padding default: got %v (ok=%v)", pad, ok)
	}
}

func TestExternalDispatchErrors(t *testing.T) {
	r := NewRegistry()
	ctx := externalContext()
	in := makeValue(t, []float32{1}, tensor.Shape{1})

	// No operator attribute.
	node := &Node{Name: "x", OpType: "External"}
	if _, err := r.Execute(ctx, node, []*tensor.Value{in}); err == nil {
		t.Error("expected error for missing operator attribute")
	}

	// Configuration lookup miss.
	node = &Node{Name: "x", OpType: "External", Attributes: []Attribute{{Name: "operator", S: "aten::nope"}}}
	if _, err := r.Execute(ctx, node, []*tensor.Value{in}); err == nil {
		t.Error("expected error for unconfigured operator")
	}

	// Configured but no implementation registered.
	node = &Node{Name: "x", OpType: "External", Attributes: []Attribute{{Name: "operator", S: "aten::embedding"}}}
	if _, err := r.Execute(ctx, node, []*tensor.Value{in}); err == nil {
		t.Error("expected error for unregistered implementation")
	}

	// Declared argument with neither attribute nor default.
	r.RegisterExternal("aten::unfold", func([]*tensor.Value, map[string]opconfig.Variant) ([]*tensor.Value, error) {
		return nil, nil
	})
	node = &Node{Name: "x", OpType: "External", Attributes: []Attribute{{Name: "operator", S: "aten::unfold"}}}
	if _, err := r.Execute(ctx, node, []*tensor.Value{in}); err == nil {
		t.Error("expected error for unresolvable argument")
	}
}

func TestExternalImplementationErrorPropagates(t *testing.T) {
	r := NewRegistry()
	cause := errors.New("boom")
	r.RegisterExternal("aten::embedding", func([]*tensor.Value, map[string]opconfig.Variant) ([]*tensor.Value, error) {
		return nil, cause
	})

	in := makeValue(t, []float32{1}, tensor.Shape{1})
	node := &Node{Name: "x", OpType: "External", Attributes: []Attribute{{Name: "operator", S: "aten::embedding"}}}

	_, err := r.Execute(externalContext(), node, []*tensor.Value{in})
	if !errors.Is(err, cause) {
		t.Errorf("expected implementation error, got %v", err)
	}
}
