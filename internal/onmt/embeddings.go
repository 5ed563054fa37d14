package onmt

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/nmt/internal/loader"
	"github.com/born-ml/nmt/internal/nn"
	"github.com/born-ml/nmt/internal/tensor"
)

// Embeddings maps token ids to word vectors, optionally adding a sinusoidal
// position encoding followed by dropout.
//
// Example:
//
//	emb := onmt.NewEmbeddings(opts, onmt.FixedDict(1000))
//	vectors := emb.Forward(src) // (time × batch × WordVecSize)
type Embeddings struct {
	lut     *nn.Embedding
	pe      *nn.SinusoidalPositionalEncoding // nil without position encoding
	dropout *nn.Dropout
}

// NewEmbeddings creates the lookup table for dict. The padding row is zero.
func NewEmbeddings(opts Options, dict Dict) *Embeddings {
	opts.mustValidate("NewEmbeddings")
	e := &Embeddings{
		lut:     nn.NewEmbedding(dict.Size(), opts.WordVecSize, dict.PaddingIdx()),
		dropout: nn.NewDropout(opts.Dropout),
	}
	if opts.PositionEncoding {
		e.pe = nn.NewSinusoidalPositionalEncoding(opts.maxPositions(), opts.WordVecSize)
	}
	return e
}

// Forward embeds the word ids of tokens: (time × batch × features) ->
// (time × batch × WordVecSize).
func (e *Embeddings) Forward(tokens *Tokens) *tensor.Tensor {
	steps, batch := tokens.Len(), tokens.Batch()
	emb := e.lut.Forward(tokens.Words()) // [steps*batch, dim]
	if e.pe == nil {
		return emb.Reshape(steps, batch, e.EmbeddingSize())
	}

	positions := e.pe.Forward(steps)
	for t := 0; t < steps; t++ {
		for b := 0; b < batch; b++ {
			floats.Add(emb.Row(t*batch+b), positions.Row(t))
		}
	}
	return e.dropout.Forward(emb.Reshape(steps, batch, e.EmbeddingSize()))
}

// LoadPretrained copies a pretrained (vocab × WordVecSize) matrix into the
// lookup table. An empty path is a no-op.
func (e *Embeddings) LoadPretrained(path string) error {
	if path == "" {
		return nil
	}
	weight, err := loader.LoadMatrix(path)
	if err != nil {
		return fmt.Errorf("load pretrained embeddings: %w", err)
	}
	if err := e.lut.LoadWeight(weight); err != nil {
		return fmt.Errorf("load pretrained embeddings from %s: %w", path, err)
	}
	return nil
}

// EmbeddingSize returns the word vector width.
func (e *Embeddings) EmbeddingSize() int { return e.lut.EmbedDim }

// PaddingIdx returns the id whose vector is zero.
func (e *Embeddings) PaddingIdx() int { return e.lut.PaddingIdx }

// Weight returns the lookup table [vocab, WordVecSize].
func (e *Embeddings) Weight() *tensor.Tensor { return e.lut.Weight.Tensor() }

// SetTraining toggles dropout.
func (e *Embeddings) SetTraining(training bool) { e.dropout.SetTraining(training) }

// Parameters returns the lookup table.
func (e *Embeddings) Parameters() []*nn.Parameter { return e.lut.Parameters() }
