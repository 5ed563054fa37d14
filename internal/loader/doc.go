// Package loader reads pretrained weight matrices for the translation model.
//
// Weights are stored in the SafeTensors format (Hugging Face standard):
//
//	[8 bytes: header_size (uint64 LE)]
//	[header_size bytes: JSON header]
//	[tensor data: raw little-endian bytes]
//
// F32 and F64 tensors are decoded into float64 tensors; other dtypes are
// reported as errors.
//
// Example:
//
//	weight, err := loader.LoadMatrix("embeddings/src.safetensors")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(weight.Shape()) // [vocab, word_vec_size]
package loader
