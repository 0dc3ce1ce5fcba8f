// Copyright 2026 Loom ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public value model for the Loom executor:
// typed, shaped, device-resident buffers handed between the graph executor
// and an external driver.
//
// A Value may reference asynchronous device work still in flight; call
// Materialize before reading its buffer. Values in transit through a
// rendezvous channel are shared and never mutated by the channel.
package tensor

import (
	"github.com/loom-ml/loom/internal/tensor"
)

// DataType represents the underlying data type of a value.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Device represents the device where value data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	CUDA   Device = tensor.CUDA
	Vulkan Device = tensor.Vulkan
	Metal  Device = tensor.Metal
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of a value.
// Example: Shape{2, 3, 4} represents a 3D value with dimensions 2×3×4.
type Shape = tensor.Shape

// Value is a handle to a typed, shaped, device-resident buffer.
type Value = tensor.Value

// Pending represents outstanding asynchronous device work producing a
// value's buffer.
type Pending = tensor.Pending

// New creates a Value with the given shape and type.
func New(shape Shape, dtype DataType, device Device) (*Value, error) {
	return tensor.New(shape, dtype, device)
}

// NewAsync creates a Value whose buffer is still being produced by
// asynchronous device work.
func NewAsync(shape Shape, dtype DataType, device Device, pending Pending) (*Value, error) {
	return tensor.NewAsync(shape, dtype, device, pending)
}

// FromFloat32 creates a float32 Value from a Go slice.
func FromFloat32(data []float32, shape Shape, device Device) (*Value, error) {
	return tensor.FromFloat32(data, shape, device)
}
