// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers the translation model is assembled from.
//
// # Overview
//
// This package contains:
//   - Recurrent layers: Recurrent (sequence), StackedCell (one step)
//   - Attention: GlobalAttention with dot, general and mlp scores
//   - Normalisers: softmax, sparsemax and their upper-bounded variants
//   - Gating: ContextGate (source, target, both)
//   - Utilities: Linear, Embedding, Dropout, Parameter
//
// # Basic Usage
//
//	attn := nn.NewGlobalAttention(64, nn.GeneralAttention, nn.ConstrainedSoftmax)
//	out, weights := attn.Forward(query, memory, bounds)
//
// Constrained normalisers never assign a position more weight than its
// bound; when no bounds are passed they behave as their unconstrained form.
package nn
