package onmt

import "github.com/born-ml/nmt/internal/tokenizer"

// Reserved token ids.
const (
	PAD = tokenizer.PAD
	UNK = tokenizer.UNK
	BOS = tokenizer.BOS
	EOS = tokenizer.EOS
)

// Dict is the vocabulary information an embedding table needs.
// tokenizer.TikToken satisfies it.
type Dict interface {
	Size() int
	PaddingIdx() int
}

// FixedDict is a vocabulary known only by its size, padded with PAD.
type FixedDict int

// Size returns the vocabulary size.
func (d FixedDict) Size() int { return int(d) }

// PaddingIdx returns PAD.
func (d FixedDict) PaddingIdx() int { return PAD }
