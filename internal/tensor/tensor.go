package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Device identifies where a tensor's memory lives.
type Device int

// Supported devices.
const (
	CPU Device = iota
)

// String returns the device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	default:
		return fmt.Sprintf("Device(%d)", int(d))
	}
}

// Tensor is a dense, row-major float64 tensor.
//
// It stands in for the external automatic-differentiation runtime: it carries
// values and a requiresGrad flag marking that the tensor is part of a
// computation history, but it does not record a tape.
//
// Example:
//
//	t := tensor.Zeros(tensor.Shape{3, 4})
//	t.Set(1.5, 0, 2)
//	u := t.Add(t) // element-wise
type Tensor struct {
	shape        Shape
	strides      []int
	data         []float64
	device       Device
	requiresGrad bool
}

// newTensor wraps data without copying. len(data) must match shape.
func newTensor(shape Shape, data []float64) *Tensor {
	return &Tensor{
		shape:   shape,
		strides: shape.ComputeStrides(),
		data:    data,
		device:  CPU,
	}
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	buf := make([]float64, len(data))
	copy(buf, data)
	return newTensor(shape.Clone(), buf), nil
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor.Zeros: %v", err))
	}
	return newTensor(shape.Clone(), make([]float64, shape.NumElements()))
}

// Full creates a tensor filled with a specific value.
func Full(shape Shape, value float64) *Tensor {
	t := Zeros(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Dim returns the size of dimension i (negative indexes count from the end).
func (t *Tensor) Dim(i int) int {
	return t.shape[t.shape.normalizeDim(i)]
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Device returns the tensor's compute device.
func (t *Tensor) Device() Device {
	return t.device
}

// Data returns the underlying row-major data (zero-copy).
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Tensor) Data() []float64 {
	return t.data
}

// Row returns a view of row i of a 2D tensor.
func (t *Tensor) Row(i int) []float64 {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("tensor.Row: expected 2D tensor, got shape %v", t.shape))
	}
	cols := t.shape[1]
	return t.data[i*cols : (i+1)*cols]
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor) At(indices ...int) float64 {
	return t.data[t.offset(indices)]
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor) Set(value float64, indices ...int) {
	t.data[t.offset(indices)] = value
}

func (t *Tensor) offset(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(t.shape), len(indices)))
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, t.shape[i]))
		}
		offset += idx * t.strides[i]
	}
	return offset
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor[float64]%v on %s", t.shape, t.device)
}

// Clone creates a deep copy of the tensor without history.
func (t *Tensor) Clone() *Tensor {
	buf := make([]float64, len(t.data))
	copy(buf, t.data)
	return newTensor(t.shape.Clone(), buf)
}

// Detach returns a tensor that shares the same data but is cut from any
// computation history.
//
// Used by decoder states between truncated backpropagation windows and when
// a state is handed to beam search.
func (t *Tensor) Detach() *Tensor {
	return &Tensor{
		shape:   t.shape,
		strides: t.strides,
		data:    t.data, // Share data (zero-copy)
		device:  t.device,
	}
}

// RequireGrad marks this tensor as part of a computation history.
// Returns the tensor itself for method chaining.
func (t *Tensor) RequireGrad() *Tensor {
	t.requiresGrad = true
	return t
}

// RequiresGrad reports whether the tensor carries computation history.
func (t *Tensor) RequiresGrad() bool {
	return t.requiresGrad
}

// derive creates a result tensor that inherits history from its inputs.
func derive(shape Shape, data []float64, inputs ...*Tensor) *Tensor {
	out := newTensor(shape, data)
	for _, in := range inputs {
		if in.requiresGrad {
			out.requiresGrad = true
			break
		}
	}
	return out
}

// Derived returns a zero tensor of the given shape that inherits history from
// inputs. Layers that compute results element by element write into it.
func Derived(shape Shape, inputs ...*Tensor) *Tensor {
	return derive(shape.Clone(), make([]float64, shape.NumElements()), inputs...)
}

// AllClose reports whether two tensors have equal shapes and element-wise
// values within tol.
func AllClose(a, b *Tensor, tol float64) bool {
	if !a.shape.Equal(b.shape) {
		return false
	}
	return floats.EqualApprox(a.data, b.data, tol)
}
