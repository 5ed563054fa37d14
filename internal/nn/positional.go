package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/nmt/internal/tensor"
)

// SinusoidalPositionalEncoding implements fixed sinusoidal positional encodings.
//
// Channel i of position pos uses the angle
//
//	pos / 10000^(2i/d)
//
// taking its sine on even channels and its cosine on odd channels.
//
// The table is computed once for MaxLen positions and never mutated, so one
// instance can be read by any number of forward passes.
//
// Example:
//
//	pe := nn.NewSinusoidalPositionalEncoding(5000, 256)
//	positions := pe.Forward(10) // [10, 256]
type SinusoidalPositionalEncoding struct {
	Encoding *tensor.Tensor // [max_len, dim] - pre-computed encodings
	MaxLen   int            // Maximum sequence length
	Dim      int            // Embedding dimension
}

// NewSinusoidalPositionalEncoding pre-computes all positional encodings up
// to maxLen.
func NewSinusoidalPositionalEncoding(maxLen, dim int) *SinusoidalPositionalEncoding {
	if maxLen <= 0 {
		panic(fmt.Sprintf("SinusoidalPositionalEncoding: maxLen must be positive, got %d", maxLen))
	}
	if dim <= 0 {
		panic(fmt.Sprintf("SinusoidalPositionalEncoding: dim must be positive, got %d", dim))
	}

	encodings := make([]float64, maxLen*dim)
	for pos := 0; pos < maxLen; pos++ {
		for i := 0; i < dim; i++ {
			angle := float64(pos) / math.Pow(10000.0, 2.0*float64(i)/float64(dim))

			idx := pos*dim + i
			if i%2 == 0 {
				encodings[idx] = math.Sin(angle)
			} else {
				encodings[idx] = math.Cos(angle)
			}
		}
	}

	encoding, err := tensor.FromSlice(encodings, tensor.Shape{maxLen, dim})
	if err != nil {
		panic(fmt.Sprintf("failed to create encoding tensor: %v", err))
	}

	return &SinusoidalPositionalEncoding{
		Encoding: encoding,
		MaxLen:   maxLen,
		Dim:      dim,
	}
}

// Forward returns the encodings for the first seqLen positions as [seqLen, dim].
//
// Panics if seqLen > MaxLen.
func (s *SinusoidalPositionalEncoding) Forward(seqLen int) *tensor.Tensor {
	if seqLen > s.MaxLen {
		panic(fmt.Sprintf("SinusoidalPositionalEncoding: seqLen %d exceeds MaxLen %d", seqLen, s.MaxLen))
	}
	return s.Encoding.Narrow(0, 0, seqLen)
}
