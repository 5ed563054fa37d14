package tensor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MatMul computes t @ other for 2D tensors: [M, K] @ [K, N] -> [M, N].
func (t *Tensor) MatMul(other *Tensor) *Tensor {
	a, b := t.dense("MatMul"), other.dense("MatMul")
	if t.shape[1] != other.shape[0] {
		panic(fmt.Sprintf("tensor.MatMul: inner dimensions differ: %v @ %v", t.shape, other.shape))
	}

	var c mat.Dense
	c.Mul(a, b)
	return derive(Shape{t.shape[0], other.shape[1]}, c.RawMatrix().Data, t, other)
}

// MatMulT computes t @ other^T for 2D tensors: [M, K] @ [N, K]^T -> [M, N].
//
// Linear layers store weights as [out, in], so this is their forward product.
func (t *Tensor) MatMulT(other *Tensor) *Tensor {
	a, b := t.dense("MatMulT"), other.dense("MatMulT")
	if t.shape[1] != other.shape[1] {
		panic(fmt.Sprintf("tensor.MatMulT: inner dimensions differ: %v @ %v^T", t.shape, other.shape))
	}

	var c mat.Dense
	c.Mul(a, b.T())
	return derive(Shape{t.shape[0], other.shape[0]}, c.RawMatrix().Data, t, other)
}

// dense views a 2D tensor as a gonum matrix sharing its data.
func (t *Tensor) dense(op string) *mat.Dense {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("tensor.%s: expected 2D tensor, got shape %v", op, t.shape))
	}
	return mat.NewDense(t.shape[0], t.shape[1], t.data)
}

// Add returns t + other element-wise. Shapes must match.
func (t *Tensor) Add(other *Tensor) *Tensor {
	t.mustMatch("Add", other)
	out := make([]float64, len(t.data))
	floats.AddTo(out, t.data, other.data)
	return derive(t.shape.Clone(), out, t, other)
}

// Sub returns t - other element-wise. Shapes must match.
func (t *Tensor) Sub(other *Tensor) *Tensor {
	t.mustMatch("Sub", other)
	out := make([]float64, len(t.data))
	floats.SubTo(out, t.data, other.data)
	return derive(t.shape.Clone(), out, t, other)
}

// Mul returns t * other element-wise. Shapes must match.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	t.mustMatch("Mul", other)
	out := make([]float64, len(t.data))
	floats.MulTo(out, t.data, other.data)
	return derive(t.shape.Clone(), out, t, other)
}

// Scale returns c * t.
func (t *Tensor) Scale(c float64) *Tensor {
	out := make([]float64, len(t.data))
	floats.ScaleTo(out, c, t.data)
	return derive(t.shape.Clone(), out, t)
}

// Apply returns fn applied to every element.
func (t *Tensor) Apply(fn func(float64) float64) *Tensor {
	out := make([]float64, len(t.data))
	for i, v := range t.data {
		out[i] = fn(v)
	}
	return derive(t.shape.Clone(), out, t)
}

// Tanh applies the hyperbolic tangent element-wise.
func (t *Tensor) Tanh() *Tensor {
	return t.Apply(math.Tanh)
}

// Sigmoid applies the logistic function element-wise.
func (t *Tensor) Sigmoid() *Tensor {
	return t.Apply(Sigmoid)
}

// Sigmoid is the scalar logistic function.
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// Sum returns the sum of all elements.
func (t *Tensor) Sum() float64 {
	return floats.Sum(t.data)
}

func (t *Tensor) mustMatch(op string, other *Tensor) {
	if !t.shape.Equal(other.shape) {
		panic(fmt.Sprintf("tensor.%s: shape mismatch %v vs %v", op, t.shape, other.shape))
	}
}
