// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/nmt/internal/nn"
)

// Module is implemented by every layer with trainable parameters.
type Module = nn.Module

// Parameter is a named trainable tensor.
type Parameter = nn.Parameter

// Linear is a fully connected layer.
type Linear = nn.Linear

// Embedding is a lookup table with a zero padding row.
type Embedding = nn.Embedding

// Dropout zeroes inputs at random during training.
type Dropout = nn.Dropout

// CellKind selects the recurrent cell family.
type CellKind = nn.CellKind

// Recurrent cell families.
const (
	LSTM = nn.LSTM
	GRU  = nn.GRU
	RNN  = nn.RNN
)

// RNNState is the hidden state of a multi-layer recurrent network.
type RNNState = nn.RNNState

// Recurrent runs a recurrent network over a whole sequence.
type Recurrent = nn.Recurrent

// StackedCell advances a multi-layer recurrent network by one step.
type StackedCell = nn.StackedCell

// AttentionType selects the attention score function.
type AttentionType = nn.AttentionType

// Attention score functions.
const (
	DotAttention     = nn.DotAttention
	GeneralAttention = nn.GeneralAttention
	MLPAttention     = nn.MLPAttention
)

// AttnTransform turns attention scores into weights.
type AttnTransform = nn.AttnTransform

// Attention transforms.
const (
	Softmax              = nn.Softmax
	Sparsemax            = nn.Sparsemax
	ConstrainedSoftmax   = nn.ConstrainedSoftmax
	ConstrainedSparsemax = nn.ConstrainedSparsemax
)

// GlobalAttention attends from one query over a memory bank.
type GlobalAttention = nn.GlobalAttention

// ContextGateType selects how a ContextGate mixes its inputs.
type ContextGateType = nn.ContextGateType

// Context gate variants.
const (
	SourceGate = nn.SourceGate
	TargetGate = nn.TargetGate
	BothGate   = nn.BothGate
)

// ContextGate blends decoder input, recurrent output and attention output.
type ContextGate = nn.ContextGate

// NewLinear creates a fully connected layer with bias.
func NewLinear(inFeatures, outFeatures int) *Linear {
	return nn.NewLinear(inFeatures, outFeatures)
}

// NewRecurrent creates a recurrent network; hiddenSize is per direction.
func NewRecurrent(kind CellKind, inputSize, hiddenSize, numLayers int, dropout float64, bidirectional bool) *Recurrent {
	return nn.NewRecurrent(kind, inputSize, hiddenSize, numLayers, dropout, bidirectional)
}

// NewStackedCell creates a step-wise multi-layer recurrent network.
func NewStackedCell(kind CellKind, numLayers, inputSize, hiddenSize int, dropout float64) *StackedCell {
	return nn.NewStackedCell(kind, numLayers, inputSize, hiddenSize, dropout)
}

// NewGlobalAttention creates an attention layer over dim-wide vectors.
func NewGlobalAttention(dim int, attnType AttentionType, transform AttnTransform) *GlobalAttention {
	return nn.NewGlobalAttention(dim, attnType, transform)
}

// NewContextGate creates a context gate.
func NewContextGate(kind ContextGateType, embSize, decSize, attnSize, outSize int) *ContextGate {
	return nn.NewContextGate(kind, embSize, decSize, attnSize, outSize)
}

// CountParameters returns the number of scalar parameters in modules.
func CountParameters(modules ...Module) int {
	return nn.CountParameters(modules...)
}
