package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSlice(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6}
	x, err := FromSlice(data, Shape{2, 3})
	require.NoError(t, err)

	assert.Equal(t, Shape{2, 3}, x.Shape())
	assert.Equal(t, 6.0, x.At(1, 2))

	// Source slice is copied.
	data[0] = 100
	assert.Equal(t, 1.0, x.At(0, 0))

	_, err = FromSlice(data, Shape{4, 2})
	assert.Error(t, err)
}

func TestDetachSharesDataAndDropsHistory(t *testing.T) {
	x := Full(Shape{2, 2}, 3).RequireGrad()
	y := x.Scale(2)
	require.True(t, y.RequiresGrad())

	d := y.Detach()
	assert.False(t, d.RequiresGrad())
	assert.True(t, AllClose(d, y, 0))

	d.Set(7, 0, 0)
	assert.Equal(t, 7.0, y.At(0, 0), "detached tensor must share storage")
}

func TestClone(t *testing.T) {
	x := Full(Shape{3}, 1).RequireGrad()
	c := x.Clone()
	c.Set(5, 0)

	assert.Equal(t, 1.0, x.At(0))
	assert.False(t, c.RequiresGrad())
}

func TestNarrowAndSelect(t *testing.T) {
	x, err := FromSlice([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, Shape{3, 2, 2})
	require.NoError(t, err)

	n := x.Narrow(0, 1, 2)
	assert.Equal(t, Shape{2, 2, 2}, n.Shape())
	assert.Equal(t, []float64{4, 5, 6, 7, 8, 9, 10, 11}, n.Data())

	s := x.Select(1, 1)
	assert.Equal(t, Shape{3, 2}, s.Shape())
	assert.Equal(t, []float64{2, 3, 6, 7, 10, 11}, s.Data())

	assert.Panics(t, func() { x.Narrow(0, 2, 2) })
}

func TestCatAndStack(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2, 3, 4}, Shape{2, 2})
	b, _ := FromSlice([]float64{5, 6}, Shape{2, 1})

	c := Cat([]*Tensor{a, b}, 1)
	assert.Equal(t, Shape{2, 3}, c.Shape())
	assert.Equal(t, []float64{1, 2, 5, 3, 4, 6}, c.Data())

	s := Stack([]*Tensor{a, a}, 0)
	assert.Equal(t, Shape{2, 2, 2}, s.Shape())
	assert.Equal(t, []float64{1, 2, 3, 4, 1, 2, 3, 4}, s.Data())

	assert.Panics(t, func() { Cat([]*Tensor{a, b}, 0) })
}

func TestTranspose(t *testing.T) {
	x, _ := FromSlice([]float64{0, 1, 2, 3, 4, 5}, Shape{3, 2, 1})
	y := x.Transpose(0, 1)

	assert.Equal(t, Shape{2, 3, 1}, y.Shape())
	assert.Equal(t, []float64{0, 2, 4, 1, 3, 5}, y.Data())
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			assert.Equal(t, x.At(i, j, 0), y.At(j, i, 0))
		}
	}
}

func TestRepeatAndIndexSelect(t *testing.T) {
	x, _ := FromSlice([]float64{1, 2, 3, 4}, Shape{1, 2, 2})

	r := x.Repeat(1, 3)
	assert.Equal(t, Shape{1, 6, 2}, r.Shape())
	assert.Equal(t, []float64{1, 2, 3, 4, 1, 2, 3, 4, 1, 2, 3, 4}, r.Data())

	s := x.IndexSelect(1, []int{1, 1, 0})
	assert.Equal(t, Shape{1, 3, 2}, s.Shape())
	assert.Equal(t, []float64{3, 4, 3, 4, 1, 2}, s.Data())
}

func TestReshape(t *testing.T) {
	x := Zeros(Shape{2, 3, 4})
	assert.Equal(t, Shape{6, 4}, x.Reshape(6, -1).Shape())
	assert.Equal(t, Shape{2, 1, 3, 4}, x.Unsqueeze(1).Shape())
	assert.Equal(t, Shape{2, 3, 4}, x.Unsqueeze(1).Squeeze(1).Shape())
	assert.Panics(t, func() { x.Reshape(5, -1) })
}

func TestMatMul(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	b, _ := FromSlice([]float64{1, 0, 0, 1, 1, 1}, Shape{3, 2})

	c := a.MatMul(b)
	assert.Equal(t, Shape{2, 2}, c.Shape())
	assert.Equal(t, []float64{4, 5, 10, 11}, c.Data())

	// a @ a^T
	d := a.MatMulT(a)
	assert.Equal(t, []float64{14, 32, 32, 77}, d.Data())

	assert.Panics(t, func() { a.MatMul(a) })
}

func TestElementwise(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2, 3}, Shape{3})
	b, _ := FromSlice([]float64{4, 5, 6}, Shape{3})

	assert.Equal(t, []float64{5, 7, 9}, a.Add(b).Data())
	assert.Equal(t, []float64{-3, -3, -3}, a.Sub(b).Data())
	assert.Equal(t, []float64{4, 10, 18}, a.Mul(b).Data())
	assert.Equal(t, []float64{2, 4, 6}, a.Scale(2).Data())
	assert.InDelta(t, 6.0, a.Sum(), 1e-12)
	assert.InDelta(t, 0.5, Zeros(Shape{1}).Sigmoid().At(0), 1e-12)
}
