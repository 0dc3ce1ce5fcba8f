package operators

import (
	"math"
	"testing"

	"github.com/loom-ml/loom/internal/tensor"
)

func TestBatchNormGradSingleChannel(t *testing.T) {
	r := NewRegistry()

	// N=1, C=1, spatial=3: x = [1, 2, 3], mean = 2, var = 2/3.
	invStd := float32(1.0 / math.Sqrt(2.0/3.0))
	x := makeValue(t, []float32{1, 2, 3}, tensor.Shape{1, 1, 3})
	dY := makeValue(t, []float32{1, 0, 0}, tensor.Shape{1, 1, 3})
	scale := makeValue(t, []float32{1}, tensor.Shape{1})
	savedMean := makeValue(t, []float32{2}, tensor.Shape{1})
	savedInvStd := makeValue(t, []float32{invStd}, tensor.Shape{1})

	node := &Node{Name: "bng", OpType: "BatchNormalizationGrad", Outputs: []string{"dX", "dScale", "dBias"}}
	outs, err := r.Execute(&Context{}, node, []*tensor.Value{dY, x, scale, savedMean, savedInvStd})
	if err != nil {
		t.Fatalf("BatchNormalizationGrad failed: %v", err)
	}

	dX, dScale, dBias := outs[0], outs[1], outs[2]

	// xhat = [-invStd, 0, invStd]
	// dBias = sum(dY) = 1; dScale = sum(dY * xhat) = -invStd.
	assertFloat32Slice(t, []float32{1}, dBias.AsFloat32(), "dBias")
	assertFloat32Slice(t, []float32{-invStd}, dScale.AsFloat32(), "dScale")

	// dX[i] = invStd * (dY[i] - dBias/3 - xhat[i]*dScale/3)
	third := float32(1.0 / 3.0)
	expected := []float32{
		invStd * (1 - third - invStd*invStd*third),
		invStd * (0 - third),
		invStd * (0 - third + invStd*invStd*third),
	}
	assertFloat32Slice(t, expected, dX.AsFloat32(), "dX")

	// Gradients through a normalization sum to zero per channel.
	var sum float32
	for _, v := range dX.AsFloat32() {
		sum += v
	}
	if math.Abs(float64(sum)) > 1e-5 {
		t.Errorf("dX should sum to zero per channel, got %v", sum)
	}
}

func TestBatchNormGradScaleApplied(t *testing.T) {
	r := NewRegistry()

	invStd := float32(1.0 / math.Sqrt(2.0/3.0))
	x := makeValue(t, []float32{1, 2, 3}, tensor.Shape{1, 1, 3})
	dY := makeValue(t, []float32{1, 0, 0}, tensor.Shape{1, 1, 3})
	savedMean := makeValue(t, []float32{2}, tensor.Shape{1})
	savedInvStd := makeValue(t, []float32{invStd}, tensor.Shape{1})

	node := &Node{Name: "bng", OpType: "BatchNormalizationGrad", Outputs: []string{"dX", "dScale", "dBias"}}

	one := makeValue(t, []float32{1}, tensor.Shape{1})
	base, err := r.Execute(&Context{}, node, []*tensor.Value{dY, x, one, savedMean, savedInvStd})
	if err != nil {
		t.Fatalf("BatchNormalizationGrad failed: %v", err)
	}

	two := makeValue(t, []float32{2}, tensor.Shape{1})
	doubled, err := r.Execute(&Context{}, node, []*tensor.Value{dY, x, two, savedMean, savedInvStd})
	if err != nil {
		t.Fatalf("BatchNormalizationGrad failed: %v", err)
	}

	// dX scales linearly with the scale parameter; dScale and dBias do not
	// depend on it.
	baseDX := base[0].AsFloat32()
	doubledDX := doubled[0].AsFloat32()
	for i := range baseDX {
		if math.Abs(float64(doubledDX[i]-2*baseDX[i])) > 1e-5 {
			t.Errorf("dX[%d]: expected %v, got %v", i, 2*baseDX[i], doubledDX[i])
		}
	}
	assertFloat32Slice(t, base[1].AsFloat32(), doubled[1].AsFloat32(), "dScale")
	assertFloat32Slice(t, base[2].AsFloat32(), doubled[2].AsFloat32(), "dBias")
}

func TestBatchNormGradMultiChannelBatch(t *testing.T) {
	r := NewRegistry()

	// N=2, C=2, spatial=1. Channel data: c0 = [1, 3], c1 = [0, 2].
	x := makeValue(t, []float32{1, 0, 3, 2}, tensor.Shape{2, 2, 1})
	dY := makeValue(t, []float32{1, 2, 1, 4}, tensor.Shape{2, 2, 1})
	scale := makeValue(t, []float32{1, 1}, tensor.Shape{2})
	savedMean := makeValue(t, []float32{2, 1}, tensor.Shape{2})
	savedInvStd := makeValue(t, []float32{1, 1}, tensor.Shape{2})

	node := &Node{Name: "bng", OpType: "BatchNormalizationGrad", Outputs: []string{"dX", "dScale", "dBias"}}
	outs, err := r.Execute(&Context{}, node, []*tensor.Value{dY, x, scale, savedMean, savedInvStd})
	if err != nil {
		t.Fatalf("BatchNormalizationGrad failed: %v", err)
	}

	// Per-channel reductions over the batch dimension:
	// c0: xhat = [-1, 1], dY = [1, 1]  -> dBias = 2, dScale = 0.
	// c1: xhat = [-1, 1], dY = [2, 4]  -> dBias = 6, dScale = 2.
	assertFloat32Slice(t, []float32{2, 6}, outs[2].AsFloat32(), "dBias")
	assertFloat32Slice(t, []float32{0, 2}, outs[1].AsFloat32(), "dScale")

	// c0: dX = 1*(dY - 2/2 - xhat*0/2) = [0, 0]
	// c1: dX = 1*(dY - 6/2 - xhat*2/2) = [2-3+1, 4-3-1] = [0, 0]
	assertFloat32Slice(t, []float32{0, 0, 0, 0}, outs[0].AsFloat32(), "dX")
}

func TestBatchNormGradValidation(t *testing.T) {
	r := NewRegistry()

	x := makeValue(t, []float32{1, 2}, tensor.Shape{1, 2})
	dY := makeValue(t, []float32{1, 2}, tensor.Shape{1, 2})
	scale := makeValue(t, []float32{1, 1}, tensor.Shape{2})
	mean := makeValue(t, []float32{1, 1}, tensor.Shape{2})
	invStd := makeValue(t, []float32{1, 1}, tensor.Shape{2})

	node := &Node{Name: "bng", OpType: "BatchNormalizationGrad", Outputs: []string{"dX", "dScale", "dBias"}}

	// Wrong input count.
	if _, err := r.Execute(&Context{}, node, []*tensor.Value{dY, x}); err == nil {
		t.Error("expected error for wrong input count")
	}

	// dY shape does not match X.
	badDY := makeValue(t, []float32{1}, tensor.Shape{1, 1})
	if _, err := r.Execute(&Context{}, node, []*tensor.Value{badDY, x, scale, mean, invStd}); err == nil {
		t.Error("expected error for dY/X shape mismatch")
	}

	// Channel-shaped input with wrong length.
	badScale := makeValue(t, []float32{1}, tensor.Shape{1})
	if _, err := r.Execute(&Context{}, node, []*tensor.Value{dY, x, badScale, mean, invStd}); err == nil {
		t.Error("expected error for scale shape mismatch")
	}

	// Rank too small.
	flat := makeValue(t, []float32{1, 2}, tensor.Shape{2})
	if _, err := r.Execute(&Context{}, node, []*tensor.Value{flat, flat, scale, mean, invStd}); err == nil {
		t.Error("expected error for rank < 2")
	}
}
