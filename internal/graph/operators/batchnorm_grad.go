package operators

import (
	"fmt"

	"github.com/loom-ml/loom/internal/parallel"
	"github.com/loom-ml/loom/internal/tensor"
)

// handleBatchNormGrad computes the training-mode batch normalization
// gradient on CPU from the saved forward statistics.
//
// Inputs:  dY, X, scale, saved_mean, saved_inv_std
// Outputs: dX, dScale, dBias
//
// X and dY are [N, C, ...spatial]; scale and the saved statistics are [C].
func handleBatchNormGrad(_ *Context, _ *Node, inputs []*tensor.Value) ([]*tensor.Value, error) {
	if len(inputs) != 5 {
		return nil, fmt.Errorf("batchNormGrad requires 5 inputs, got %d", len(inputs))
	}

	dY, x, scale, savedMean, savedInvStd := inputs[0], inputs[1], inputs[2], inputs[3], inputs[4]
	if err := validateBatchNormGradInputs(dY, x, scale, savedMean, savedInvStd); err != nil {
		return nil, fmt.Errorf("batchNormGrad: %w", err)
	}

	inputShape := x.Shape()
	channelShape := savedMean.Shape()
	channels := channelShape[0]

	dX, err := tensor.New(inputShape, tensor.Float32, x.Device())
	if err != nil {
		return nil, fmt.Errorf("batchNormGrad: %w", err)
	}
	dScale, err := tensor.New(channelShape, tensor.Float32, x.Device())
	if err != nil {
		return nil, fmt.Errorf("batchNormGrad: %w", err)
	}
	dBias, err := tensor.New(channelShape, tensor.Float32, x.Device())
	if err != nil {
		return nil, fmt.Errorf("batchNormGrad: %w", err)
	}

	dYv := dY.AsFloat32()
	xv := x.AsFloat32()
	scaleV := scale.AsFloat32()
	meanV := savedMean.AsFloat32()
	invStdV := savedInvStd.AsFloat32()
	dXv := dX.AsFloat32()
	dScaleV := dScale.AsFloat32()
	dBiasV := dBias.AsFloat32()

	batch := inputShape[0]
	spatial := 1
	for _, dim := range inputShape[2:] {
		spatial *= dim
	}
	perChannel := batch * spatial

	// Channels are independent, so the reduction fans out per channel.
	parallel.For(channels, func(c int) {
		mean := meanV[c]
		invStd := invStdV[c]

		// First pass: per-channel reductions over batch and spatial dims.
		var sumDY, sumDYXHat float32
		for n := 0; n < batch; n++ {
			base := (n*channels + c) * spatial
			for s := 0; s < spatial; s++ {
				i := base + s
				xhat := (xv[i] - mean) * invStd
				sumDY += dYv[i]
				sumDYXHat += dYv[i] * xhat
			}
		}
		dBiasV[c] = sumDY
		dScaleV[c] = sumDYXHat

		// Second pass: input gradient using the reductions.
		m := float32(perChannel)
		k := scaleV[c] * invStd
		for n := 0; n < batch; n++ {
			base := (n*channels + c) * spatial
			for s := 0; s < spatial; s++ {
				i := base + s
				xhat := (xv[i] - mean) * invStd
				dXv[i] = k * (dYv[i] - sumDY/m - xhat*sumDYXHat/m)
			}
		}
	}, parallel.DefaultConfig())

	return []*tensor.Value{dX, dScale, dBias}, nil
}

func validateBatchNormGradInputs(dY, x, scale, savedMean, savedInvStd *tensor.Value) error {
	for name, v := range map[string]*tensor.Value{
		"dY": dY, "X": x, "scale": scale, "saved_mean": savedMean, "saved_inv_std": savedInvStd,
	} {
		if v.DType() != tensor.Float32 {
			return fmt.Errorf("%s must be float32, got %s", name, v.DType())
		}
	}

	inputShape := x.Shape()
	if len(inputShape) < 2 {
		return fmt.Errorf("X must have rank >= 2, got shape %v", inputShape)
	}
	if !dY.Shape().Equal(inputShape) {
		return fmt.Errorf("dY shape %v does not match X shape %v", dY.Shape(), inputShape)
	}

	channelShape := tensor.Shape{inputShape[1]}
	// Bias is absent here, but scale shares its shape, so scale stands in
	// for both when validating the channel dimension.
	for name, v := range map[string]*tensor.Value{
		"scale": scale, "saved_mean": savedMean, "saved_inv_std": savedInvStd,
	} {
		if !v.Shape().Equal(channelShape) {
			return fmt.Errorf("%s shape %v does not match channel shape %v", name, v.Shape(), channelShape)
		}
	}
	return nil
}
