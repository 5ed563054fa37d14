// Package tensor implements the dense CPU tensor used by the translation model.
//
// Tensors are row-major float64 arrays. Dense products go through gonum's
// mat package and element-wise arithmetic through gonum's floats package.
// Shape and contract violations panic, mirroring index errors on slices.
package tensor
