package nn

import (
	"fmt"

	"github.com/born-ml/nmt/internal/tensor"
)

// StackedCell advances a stack of recurrent cells by one time step.
// The output of layer l is the input of layer l+1, with dropout applied
// between layers but not after the last one.
type StackedCell struct {
	cells   []Cell
	kind    CellKind
	dropout *Dropout
}

// NewStackedCell creates numLayers cells of the same family.
func NewStackedCell(kind CellKind, numLayers, inputSize, hiddenSize int, dropout float64) *StackedCell {
	if numLayers <= 0 {
		panic(fmt.Sprintf("StackedCell: numLayers must be positive, got %d", numLayers))
	}
	cells := make([]Cell, numLayers)
	for l := range cells {
		in := inputSize
		if l > 0 {
			in = hiddenSize
		}
		cells[l] = NewCell(kind, in, hiddenSize)
	}
	return &StackedCell{cells: cells, kind: kind, dropout: NewDropout(dropout)}
}

// Step consumes x [batch, input] and returns the top layer output
// [batch, hidden] together with the next state [layers, batch, hidden].
func (s *StackedCell) Step(x *tensor.Tensor, state *RNNState) (*tensor.Tensor, *RNNState) {
	if state == nil {
		panic("StackedCell.Step: nil state")
	}
	if state.H.Dim(0) != len(s.cells) {
		panic(fmt.Sprintf("StackedCell.Step: state has %d layers, cell has %d", state.H.Dim(0), len(s.cells)))
	}

	next := make([]CellState, len(s.cells))
	input := x
	for l, cell := range s.cells {
		next[l] = cell.Step(input, state.Layer(l))
		input = next[l].H
		if l < len(s.cells)-1 {
			input = s.dropout.Forward(input)
		}
	}
	return input, NewRNNState(next)
}

// ZeroState returns an all-zero state for batch rows.
func (s *StackedCell) ZeroState(batch int) *RNNState {
	layers := make([]CellState, len(s.cells))
	for l, cell := range s.cells {
		layers[l] = cell.ZeroState(batch)
	}
	return NewRNNState(layers)
}

// SetTraining toggles inter-layer dropout.
func (s *StackedCell) SetTraining(training bool) { s.dropout.SetTraining(training) }

// Kind returns the cell family.
func (s *StackedCell) Kind() CellKind { return s.kind }

// NumLayers returns the depth of the stack.
func (s *StackedCell) NumLayers() int { return len(s.cells) }

// HiddenSize returns the width of every layer.
func (s *StackedCell) HiddenSize() int { return s.cells[0].HiddenSize() }

// Parameters returns the parameters of every layer.
func (s *StackedCell) Parameters() []*Parameter {
	var params []*Parameter
	for _, c := range s.cells {
		params = append(params, c.Parameters()...)
	}
	return params
}
