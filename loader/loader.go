// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package loader reads and writes weight files in the SafeTensors format.
//
// Pretrained word vectors are stored as a single rank-2 tensor named
// "weight" (vocab × word_vec_size).
//
// Example usage:
//
//	import "github.com/born-ml/nmt/loader"
//
//	vecs, err := loader.LoadMatrix("glove.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(vecs.Shape())
package loader

import (
	"github.com/born-ml/nmt/internal/loader"
	"github.com/born-ml/nmt/internal/tensor"
)

// SafeTensorsReader reads tensors from a SafeTensors file.
type SafeTensorsReader = loader.SafeTensorsReader

// SafeTensorInfo describes one stored tensor.
type SafeTensorInfo = loader.SafeTensorInfo

// SafeTensorsDType is the element type of a stored tensor.
type SafeTensorsDType = loader.SafeTensorsDType

// MatrixTensorName is the tensor name LoadMatrix looks for first.
const MatrixTensorName = loader.MatrixTensorName

// NewSafeTensorsReader opens a SafeTensors file.
func NewSafeTensorsReader(path string) (*SafeTensorsReader, error) {
	return loader.NewSafeTensorsReader(path)
}

// LoadMatrix loads a rank-2 weight matrix from path.
func LoadMatrix(path string) (*tensor.Tensor, error) {
	return loader.LoadMatrix(path)
}

// WriteSafeTensors writes tensors to path as F64.
func WriteSafeTensors(path string, tensors map[string]*tensor.Tensor, metadata map[string]string) error {
	return loader.WriteSafeTensors(path, tensors, metadata)
}
