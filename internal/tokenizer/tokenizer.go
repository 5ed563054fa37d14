package tokenizer

// Reserved ids shared by every vocabulary.
const (
	PAD = 0 // padding, embedded as the zero vector
	UNK = 1 // unknown word
	BOS = 2 // beginning of a target sentence
	EOS = 3 // end of a target sentence

	// NumSpecials is the number of reserved ids.
	NumSpecials = 4
)

// Tokenizer is the interface shared by vocabularies.
//
// Size and PaddingIdx make every Tokenizer usable as the dictionary of an
// embedding table.
type Tokenizer interface {
	// Encode converts text to token IDs without special symbols.
	Encode(text string) ([]int, error)

	// Decode converts token IDs back to text, skipping special symbols.
	Decode(tokens []int) (string, error)

	// Size returns the vocabulary size including the reserved ids.
	Size() int

	// PaddingIdx returns the id of the padding symbol.
	PaddingIdx() int

	// Name returns the vocabulary name.
	Name() string
}

// IsSpecial reports whether id is one of the reserved ids.
func IsSpecial(id int) bool {
	return id >= 0 && id < NumSpecials
}
