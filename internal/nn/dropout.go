package nn

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/nmt/internal/tensor"
)

// Dropout zeroes elements with probability P during training and rescales
// the survivors by 1/(1-P). In evaluation mode it is the identity.
type Dropout struct {
	P        float64
	training bool
}

// NewDropout creates a Dropout layer in training mode.
func NewDropout(p float64) *Dropout {
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("Dropout: probability must be in [0, 1), got %v", p))
	}
	return &Dropout{P: p, training: true}
}

// SetTraining switches between training and evaluation behaviour.
func (d *Dropout) SetTraining(training bool) {
	d.training = training
}

// Training reports whether dropout is active.
func (d *Dropout) Training() bool {
	return d.training
}

// Forward applies dropout.
func (d *Dropout) Forward(input *tensor.Tensor) *tensor.Tensor {
	if !d.training || d.P == 0 {
		return input
	}

	keep := distuv.Bernoulli{P: 1 - d.P}
	scale := 1 / (1 - d.P)
	return input.Apply(func(v float64) float64 {
		return v * keep.Rand() * scale
	})
}

// Parameters returns nil (dropout has no trainable parameters).
func (d *Dropout) Parameters() []*Parameter {
	return nil
}
