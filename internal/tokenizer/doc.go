// Package tokenizer turns text into the integer ids consumed by the
// translation model.
//
// Every vocabulary reserves the first four ids for the model's special
// symbols (PAD, UNK, BOS, EOS); subword ids produced by the underlying
// encoding are shifted past them. The padding id is what the embedding
// tables keep at zero.
//
// Example usage:
//
//	tok, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	src, err := tok.Encode("Hello, world!")     // no specials
//	tgt, err := tok.EncodeTarget("Bonjour !")  // BOS ... EOS
//	text, err := tok.Decode(tgt)              // specials dropped
package tokenizer
