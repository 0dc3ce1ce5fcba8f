package tensor

import (
	"fmt"
	"sync"
	"unsafe"
)

// Value is a handle to a typed, shaped, device-resident buffer.
//
// Values are produced and owned by the graph executor. While a value is in
// transit between the executor and an external driver it is shared: neither
// side mutates it. A value may reference work still queued on the device;
// call Materialize before reading the buffer.
type Value struct {
	data   []byte
	shape  Shape
	dtype  DataType
	device Device

	mu      sync.Mutex // Protects pending
	pending Pending    // Outstanding device work, nil once complete
}

// New creates a Value with the given shape and type.
// Memory is allocated and zero-initialized.
func New(shape Shape, dtype DataType, device Device) (*Value, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &Value{
		data:   make([]byte, shape.NumElements()*dtype.Size()),
		shape:  shape.Clone(),
		dtype:  dtype,
		device: device,
	}, nil
}

// NewAsync creates a Value whose buffer is still being produced by
// asynchronous device work. The buffer must not be read until Materialize
// has returned nil.
func NewAsync(shape Shape, dtype DataType, device Device, pending Pending) (*Value, error) {
	v, err := New(shape, dtype, device)
	if err != nil {
		return nil, err
	}
	v.pending = pending
	return v, nil
}

// FromFloat32 creates a float32 Value from a Go slice.
// The slice is copied into the value's memory.
func FromFloat32(data []float32, shape Shape, device Device) (*Value, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	v, err := New(shape, Float32, device)
	if err != nil {
		return nil, err
	}
	copy(v.AsFloat32(), data)
	return v, nil
}

// Shape returns the value's shape.
func (v *Value) Shape() Shape {
	return v.shape
}

// DType returns the value's data type.
func (v *Value) DType() DataType {
	return v.dtype
}

// Device returns the value's compute device.
func (v *Value) Device() Device {
	return v.device
}

// NumElements returns the total number of elements.
func (v *Value) NumElements() int {
	return v.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (v *Value) ByteSize() int {
	return v.NumElements() * v.dtype.Size()
}

// Materialize blocks until any outstanding device work producing this value
// has completed. It returns the device's failure if the work did not
// complete cleanly; the buffer must not be read in that case.
//
// Thread-safe: concurrent callers observe completion exactly once.
func (v *Value) Materialize() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.pending == nil {
		return nil
	}
	if err := v.pending.Wait(); err != nil {
		return fmt.Errorf("device work for value %s%v failed: %w", v.dtype, v.shape, err)
	}
	v.pending = nil
	return nil
}

// Materialized reports whether the value's buffer is complete and readable.
func (v *Value) Materialized() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pending == nil
}

// Data returns the raw byte slice.
// Panics if device work producing the value is still outstanding.
func (v *Value) Data() []byte {
	v.requireMaterialized()
	return v.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the value's dtype is not Float32.
func (v *Value) AsFloat32() []float32 {
	v.requireMaterialized()
	if v.dtype != Float32 {
		panic(fmt.Sprintf("value dtype is %s, not float32", v.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&v.data[0])), v.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the value's dtype is not Float64.
func (v *Value) AsFloat64() []float64 {
	v.requireMaterialized()
	if v.dtype != Float64 {
		panic(fmt.Sprintf("value dtype is %s, not float64", v.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float64)(unsafe.Pointer(&v.data[0])), v.NumElements())
}

// AsInt32 interprets the data as []int32.
// Panics if the value's dtype is not Int32.
func (v *Value) AsInt32() []int32 {
	v.requireMaterialized()
	if v.dtype != Int32 {
		panic(fmt.Sprintf("value dtype is %s, not int32", v.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*int32)(unsafe.Pointer(&v.data[0])), v.NumElements())
}

// AsInt64 interprets the data as []int64.
// Panics if the value's dtype is not Int64.
func (v *Value) AsInt64() []int64 {
	v.requireMaterialized()
	if v.dtype != Int64 {
		panic(fmt.Sprintf("value dtype is %s, not int64", v.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*int64)(unsafe.Pointer(&v.data[0])), v.NumElements())
}

func (v *Value) requireMaterialized() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pending != nil {
		panic("value has outstanding device work: call Materialize first")
	}
}
