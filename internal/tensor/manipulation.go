package tensor

import "fmt"

// Reshape returns a view with a new shape. One dimension may be -1 and is
// inferred from the others.
//
// Example:
//
//	x := tensor.Zeros(tensor.Shape{2, 3, 4})
//	y := x.Reshape(6, -1) // Shape: [6, 4]
func (t *Tensor) Reshape(dims ...int) *Tensor {
	shape := make(Shape, len(dims))
	infer := -1
	known := 1
	for i, d := range dims {
		switch {
		case d == -1 && infer < 0:
			infer = i
		case d > 0:
			known *= d
		default:
			panic(fmt.Sprintf("tensor.Reshape: invalid dimension %d in %v", d, dims))
		}
		shape[i] = d
	}
	if infer >= 0 {
		if known == 0 || len(t.data)%known != 0 {
			panic(fmt.Sprintf("tensor.Reshape: cannot infer dimension for %v from %d elements", dims, len(t.data)))
		}
		shape[infer] = len(t.data) / known
	}
	if shape.NumElements() != len(t.data) {
		panic(fmt.Sprintf("tensor.Reshape: shape %v incompatible with %d elements", shape, len(t.data)))
	}
	out := newTensor(shape, t.data)
	out.requiresGrad = t.requiresGrad
	return out
}

// Unsqueeze adds a dimension of size 1 at position dim (0 <= dim <= rank).
// This is a view operation (no data copy).
func (t *Tensor) Unsqueeze(dim int) *Tensor {
	if dim < 0 {
		dim += len(t.shape) + 1
	}
	if dim < 0 || dim > len(t.shape) {
		panic(fmt.Sprintf("tensor.Unsqueeze: dimension %d out of range for shape %v", dim, t.shape))
	}
	dims := make([]int, 0, len(t.shape)+1)
	dims = append(dims, t.shape[:dim]...)
	dims = append(dims, 1)
	dims = append(dims, t.shape[dim:]...)
	return t.Reshape(dims...)
}

// Squeeze removes dimension dim, which must have size 1.
func (t *Tensor) Squeeze(dim int) *Tensor {
	dim = t.shape.normalizeDim(dim)
	if t.shape[dim] != 1 {
		panic(fmt.Sprintf("tensor.Squeeze: dimension %d has size %d, expected 1", dim, t.shape[dim]))
	}
	dims := make([]int, 0, len(t.shape)-1)
	dims = append(dims, t.shape[:dim]...)
	dims = append(dims, t.shape[dim+1:]...)
	if len(dims) == 0 {
		dims = append(dims, 1)
	}
	return t.Reshape(dims...)
}

// Narrow returns a copy of length entries along dim starting at start.
//
// Example:
//
//	x := tensor.Zeros(tensor.Shape{5, 2, 3})
//	y := x.Narrow(0, 1, 2) // Shape: [2, 2, 3]
func (t *Tensor) Narrow(dim, start, length int) *Tensor {
	dim = t.shape.normalizeDim(dim)
	outer, size, inner := t.shape.split(dim)
	if start < 0 || length <= 0 || start+length > size {
		panic(fmt.Sprintf("tensor.Narrow: range [%d, %d) out of bounds for dimension %d (size %d)",
			start, start+length, dim, size))
	}

	out := make([]float64, outer*length*inner)
	for o := 0; o < outer; o++ {
		src := t.data[(o*size+start)*inner : (o*size+start+length)*inner]
		copy(out[o*length*inner:], src)
	}

	shape := t.shape.Clone()
	shape[dim] = length
	return derive(shape, out, t)
}

// Select returns the slice at index along dim, removing that dimension.
func (t *Tensor) Select(dim, index int) *Tensor {
	dim = t.shape.normalizeDim(dim)
	return t.Narrow(dim, index, 1).Squeeze(dim)
}

// IndexSelect gathers the entries listed in indices along dim.
// Indices may repeat.
func (t *Tensor) IndexSelect(dim int, indices []int) *Tensor {
	dim = t.shape.normalizeDim(dim)
	outer, size, inner := t.shape.split(dim)
	n := len(indices)
	if n == 0 {
		panic("tensor.IndexSelect: at least one index required")
	}

	out := make([]float64, outer*n*inner)
	for o := 0; o < outer; o++ {
		for j, idx := range indices {
			if idx < 0 || idx >= size {
				panic(fmt.Sprintf("tensor.IndexSelect: index %d out of bounds for dimension %d (size %d)", idx, dim, size))
			}
			src := t.data[(o*size+idx)*inner : (o*size+idx+1)*inner]
			copy(out[(o*n+j)*inner:], src)
		}
	}

	shape := t.shape.Clone()
	shape[dim] = n
	return derive(shape, out, t)
}

// Repeat tiles the tensor n times along dim: entry k*size+i of the result
// holds entry i of the input.
func (t *Tensor) Repeat(dim, n int) *Tensor {
	dim = t.shape.normalizeDim(dim)
	if n <= 0 {
		panic(fmt.Sprintf("tensor.Repeat: repeat count must be positive, got %d", n))
	}
	outer, size, inner := t.shape.split(dim)
	block := size * inner

	out := make([]float64, outer*n*block)
	for o := 0; o < outer; o++ {
		src := t.data[o*block : (o+1)*block]
		for k := 0; k < n; k++ {
			copy(out[(o*n+k)*block:], src)
		}
	}

	shape := t.shape.Clone()
	shape[dim] = size * n
	return derive(shape, out, t)
}

// Transpose swaps two dimensions and returns a contiguous copy.
//
// Example:
//
//	memory := tensor.Zeros(tensor.Shape{7, 2, 8}) // [src, batch, dim]
//	batchFirst := memory.Transpose(0, 1)         // [batch, src, dim]
func (t *Tensor) Transpose(d0, d1 int) *Tensor {
	d0 = t.shape.normalizeDim(d0)
	d1 = t.shape.normalizeDim(d1)

	shape := t.shape.Clone()
	shape[d0], shape[d1] = shape[d1], shape[d0]
	strides := append([]int(nil), t.strides...)
	strides[d0], strides[d1] = strides[d1], strides[d0]

	out := make([]float64, len(t.data))
	idx := make([]int, len(shape))
	for o := range out {
		off := 0
		for k, i := range idx {
			off += i * strides[k]
		}
		out[o] = t.data[off]

		for k := len(idx) - 1; k >= 0; k-- {
			idx[k]++
			if idx[k] < shape[k] {
				break
			}
			idx[k] = 0
		}
	}
	return derive(shape, out, t)
}

// Cat concatenates tensors along the specified dimension.
//
// All tensors must have the same shape except along the concatenation dimension.
// Supports negative dim indexing (-1 = last dimension).
//
// Example:
//
//	a := tensor.Zeros(tensor.Shape{2, 3})
//	b := tensor.Zeros(tensor.Shape{2, 5})
//	c := tensor.Cat([]*tensor.Tensor{a, b}, 1) // Shape: [2, 8]
func Cat(tensors []*Tensor, dim int) *Tensor {
	if len(tensors) == 0 {
		panic("tensor.Cat: at least one tensor required")
	}
	first := tensors[0].shape
	dim = first.normalizeDim(dim)

	total := 0
	for _, t := range tensors {
		if len(t.shape) != len(first) {
			panic(fmt.Sprintf("tensor.Cat: rank mismatch %v vs %v", first, t.shape))
		}
		for i := range first {
			if i != dim && t.shape[i] != first[i] {
				panic(fmt.Sprintf("tensor.Cat: shape mismatch %v vs %v at dimension %d", first, t.shape, i))
			}
		}
		total += t.shape[dim]
	}

	outer, _, inner := first.split(dim)
	out := make([]float64, outer*total*inner)
	pos := 0
	for o := 0; o < outer; o++ {
		for _, t := range tensors {
			block := t.shape[dim] * inner
			copy(out[pos:pos+block], t.data[o*block:(o+1)*block])
			pos += block
		}
	}

	shape := first.Clone()
	shape[dim] = total
	return derive(shape, out, tensors...)
}

// Stack joins tensors of identical shape along a new dimension.
func Stack(tensors []*Tensor, dim int) *Tensor {
	if len(tensors) == 0 {
		panic("tensor.Stack: at least one tensor required")
	}
	expanded := make([]*Tensor, len(tensors))
	for i, t := range tensors {
		if !t.shape.Equal(tensors[0].shape) {
			panic(fmt.Sprintf("tensor.Stack: shape mismatch %v vs %v", tensors[0].shape, t.shape))
		}
		expanded[i] = t.Unsqueeze(dim)
	}
	return Cat(expanded, dim)
}
