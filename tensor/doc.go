// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense float64 tensors used by the translation
// model.
//
// # Overview
//
// Tensors are row-major, CPU resident and backed by gonum. This package
// provides:
//   - Construction: FromSlice, Zeros, Full
//   - Views and copies: Reshape, Select, Narrow, Transpose, Repeat
//   - Arithmetic: MatMul, Add, Mul, Tanh, Sigmoid
//   - History tracking: RequireGrad, Detach
//
// # Basic Usage
//
//	x, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	if err != nil {
//	    return err
//	}
//	y := x.MatMulT(x)   // [2, 2]
//	z := y.Tanh().Sum() // scalar
//
// # History
//
// A tensor derived from a tensor that requires gradients requires
// gradients too. Detach returns a tensor sharing the same values without
// that history; decoder states use it to cut truncated back-propagation
// windows.
package tensor
