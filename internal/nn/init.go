package nn

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/nmt/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
func Xavier(fanIn, fanOut int, shape tensor.Shape) *tensor.Tensor {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return Uniform(shape, bound)
}

// Uniform fills a tensor with values from U(-bound, bound).
func Uniform(shape tensor.Shape, bound float64) *tensor.Tensor {
	dist := distuv.Uniform{Min: -bound, Max: bound}
	t := tensor.Zeros(shape)
	data := t.Data()
	for i := range data {
		data[i] = dist.Rand()
	}
	return t
}

// Randn fills a tensor with values from N(0, 1).
func Randn(shape tensor.Shape) *tensor.Tensor {
	dist := distuv.Normal{Mu: 0, Sigma: 1}
	t := tensor.Zeros(shape)
	data := t.Data()
	for i := range data {
		data[i] = dist.Rand()
	}
	return t
}
