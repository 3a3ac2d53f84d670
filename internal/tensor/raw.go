package tensor

import (
	"fmt"
)

// RawTensor is the low-level tensor representation: a dense row-major
// float32 buffer plus its shape.
//
// Layers and backends exchange RawTensors; the symbolic graph never holds
// data, only shapes.
type RawTensor struct {
	data   []float32
	shape  Shape
	stride []int
}

// NewRaw creates a zero-filled RawTensor with the given shape.
func NewRaw(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &RawTensor{
		data:   make([]float32, shape.NumElements()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
	}, nil
}

// MustRaw is NewRaw for shapes already validated by the caller.
// Panics on invalid shapes.
func MustRaw(shape Shape) *RawTensor {
	t, err := NewRaw(shape)
	if err != nil {
		panic(err)
	}
	return t
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float32, shape Shape) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	t, err := NewRaw(shape)
	if err != nil {
		return nil, err
	}
	copy(t.data, data)
	return t, nil
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float32) (*RawTensor, error) {
	t, err := NewRaw(shape)
	if err != nil {
		return nil, err
	}
	for i := range t.data {
		t.data[i] = value
	}
	return t, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return len(r.data)
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return 4 * len(r.data)
}

// Data returns the underlying buffer (zero-copy).
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (r *RawTensor) Data() []float32 {
	return r.data
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (r *RawTensor) At(indices ...int) float32 {
	return r.data[r.offset(indices)]
}

// Set sets the element at the given indices.
func (r *RawTensor) Set(value float32, indices ...int) {
	r.data[r.offset(indices)] = value
}

func (r *RawTensor) offset(indices []int) int {
	if len(indices) != len(r.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(r.shape), len(indices)))
	}
	off := 0
	for i, idx := range indices {
		if idx < 0 || idx >= r.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, r.shape[i]))
		}
		off += idx * r.stride[i]
	}
	return off
}

// Clone returns a deep copy of the tensor.
func (r *RawTensor) Clone() *RawTensor {
	data := make([]float32, len(r.data))
	copy(data, r.data)
	return &RawTensor{
		data:   data,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
	}
}

// Reshape returns a view sharing the same buffer with a new shape.
func (r *RawTensor) Reshape(shape Shape) (*RawTensor, error) {
	if shape.NumElements() != len(r.data) {
		return nil, fmt.Errorf("cannot reshape %v to %v", r.shape, shape)
	}
	return &RawTensor{
		data:   r.data,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
	}, nil
}

// String returns a short description, not the contents.
func (r *RawTensor) String() string {
	return fmt.Sprintf("RawTensor%v", r.shape)
}
