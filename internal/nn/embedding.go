package nn

import (
	"fmt"

	"github.com/born-ml/nmt/internal/tensor"
)

// Embedding is a lookup table that maps discrete indices to dense vectors.
//
// Architecture:
//   - Weight: [NumEmbed, EmbedDim] learnable parameter
//   - Forward: indices [n] -> embeddings [n, EmbedDim]
//
// The row at PaddingIdx is zero at construction, so padding tokens contribute
// nothing to downstream sums.
//
// Example:
//
//	// Vocabulary of 10000 words, embedding dimension 256, PAD id 0
//	embed := nn.NewEmbedding(10000, 256, 0)
//	embeddings := embed.Forward([]int{5, 17, 0}) // [3, 256]
type Embedding struct {
	Weight     *Parameter // Embedding weight matrix [NumEmbed, EmbedDim]
	NumEmbed   int        // Number of embeddings (vocabulary size)
	EmbedDim   int        // Embedding dimension (vector size)
	PaddingIdx int        // Row kept at zero; -1 disables padding
}

// NewEmbedding creates a new Embedding layer.
//
// The embedding weights are initialized from a standard normal distribution
// N(0, 1), except the padding row which is zero.
func NewEmbedding(numEmbeddings, embeddingDim, paddingIdx int) *Embedding {
	if numEmbeddings <= 0 || embeddingDim <= 0 {
		panic(fmt.Sprintf("Embedding: sizes must be positive, got num=%d dim=%d", numEmbeddings, embeddingDim))
	}
	if paddingIdx >= numEmbeddings {
		panic(fmt.Sprintf("Embedding: padding index %d out of range [0, %d)", paddingIdx, numEmbeddings))
	}

	weight := Randn(tensor.Shape{numEmbeddings, embeddingDim})
	if paddingIdx >= 0 {
		row := weight.Row(paddingIdx)
		for i := range row {
			row[i] = 0
		}
	}

	return &Embedding{
		Weight:     NewParameter("embedding.weight", weight),
		NumEmbed:   numEmbeddings,
		EmbedDim:   embeddingDim,
		PaddingIdx: paddingIdx,
	}
}

// Forward performs embedding lookup.
//
// Returns a [len(indices), EmbedDim] tensor.
// Panics if any index is out of bounds [0, NumEmbed).
func (e *Embedding) Forward(indices []int) *tensor.Tensor {
	if len(indices) == 0 {
		panic("Embedding.Forward: at least one index required")
	}
	for _, idx := range indices {
		if idx < 0 || idx >= e.NumEmbed {
			panic(fmt.Sprintf("Embedding.Forward: index %d out of range [0, %d)", idx, e.NumEmbed))
		}
	}
	return e.Weight.Tensor().IndexSelect(0, indices)
}

// LoadWeight copies a pretrained [NumEmbed, EmbedDim] matrix into the table.
//
// The copy is in place, overwriting every row including the padding row.
// A shape mismatch leaves the table untouched.
func (e *Embedding) LoadWeight(w *tensor.Tensor) error {
	expected := tensor.Shape{e.NumEmbed, e.EmbedDim}
	if !w.Shape().Equal(expected) {
		return fmt.Errorf("embedding weight shape mismatch: expected %v, got %v", expected, w.Shape())
	}
	copy(e.Weight.Tensor().Data(), w.Data())
	return nil
}

// Parameters returns the list of trainable parameters.
func (e *Embedding) Parameters() []*Parameter {
	return []*Parameter{e.Weight}
}
