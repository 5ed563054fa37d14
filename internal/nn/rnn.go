package nn

import (
	"fmt"

	"github.com/born-ml/nmt/internal/tensor"
)

// RNNState is the hidden state of a multi-layer recurrent network.
//
// H (and C for LSTM) have shape [layers*directions, batch, hidden]; slice
// l*directions+d belongs to layer l, direction d (0 forward, 1 backward).
type RNNState struct {
	H *tensor.Tensor
	C *tensor.Tensor
}

// Tensors returns the non-nil state tensors in (H, C) order.
func (s *RNNState) Tensors() []*tensor.Tensor {
	if s.C == nil {
		return []*tensor.Tensor{s.H}
	}
	return []*tensor.Tensor{s.H, s.C}
}

// Layer returns the state slice of one layer/direction as a CellState.
func (s *RNNState) Layer(i int) CellState {
	cs := CellState{H: s.H.Select(0, i)}
	if s.C != nil {
		cs.C = s.C.Select(0, i)
	}
	return cs
}

// NewRNNState stacks per-layer cell states into an RNNState.
func NewRNNState(layers []CellState) *RNNState {
	hs := make([]*tensor.Tensor, len(layers))
	var cs []*tensor.Tensor
	for i, l := range layers {
		hs[i] = l.H
		if l.C != nil {
			cs = append(cs, l.C)
		}
	}
	state := &RNNState{H: tensor.Stack(hs, 0)}
	if len(cs) > 0 {
		if len(cs) != len(layers) {
			panic("NewRNNState: cell memory present for some layers only")
		}
		state.C = tensor.Stack(cs, 0)
	}
	return state
}

// Recurrent runs a (possibly bidirectional, multi-layer) recurrent network
// over a whole sequence.
//
// When per-example lengths are given, each sequence is processed over its
// valid prefix only: the backward direction starts at the last valid step,
// the final state is the state after the last valid step, and outputs at
// padded steps are exactly zero.
//
// Example:
//
//	rnn := nn.NewRecurrent(nn.LSTM, 16, 32, 2, 0.3, true)
//	out, final := rnn.Forward(x, []int{5, 3}, nil) // x: [5, 2, 16] -> out: [5, 2, 64]
type Recurrent struct {
	cells      []Cell // layer-major: cells[l*directions+d]
	kind       CellKind
	numLayers  int
	directions int
	hiddenSize int
	dropout    *Dropout
}

// NewRecurrent creates a recurrent network. hiddenSize is per direction.
func NewRecurrent(kind CellKind, inputSize, hiddenSize, numLayers int, dropout float64, bidirectional bool) *Recurrent {
	if numLayers <= 0 {
		panic(fmt.Sprintf("Recurrent: numLayers must be positive, got %d", numLayers))
	}
	directions := 1
	if bidirectional {
		directions = 2
	}

	cells := make([]Cell, 0, numLayers*directions)
	for l := 0; l < numLayers; l++ {
		in := inputSize
		if l > 0 {
			in = hiddenSize * directions
		}
		for d := 0; d < directions; d++ {
			cells = append(cells, NewCell(kind, in, hiddenSize))
		}
	}

	return &Recurrent{
		cells:      cells,
		kind:       kind,
		numLayers:  numLayers,
		directions: directions,
		hiddenSize: hiddenSize,
		dropout:    NewDropout(dropout),
	}
}

// Forward runs the network.
//
// Parameters:
//   - input: [time, batch, input_size]
//   - lengths: valid length per batch element, or nil for full sequences
//   - initial: starting state, or nil for zeros
//
// Returns the output [time, batch, directions*hidden] and the final state.
func (r *Recurrent) Forward(input *tensor.Tensor, lengths []int, initial *RNNState) (*tensor.Tensor, *RNNState) {
	if input.Rank() != 3 {
		panic(fmt.Sprintf("Recurrent.Forward: expected [time, batch, features], got %v", input.Shape()))
	}
	steps, batch := input.Dim(0), input.Dim(1)
	active := r.activeMask(steps, batch, lengths)

	layerInput := input
	finals := make([]CellState, len(r.cells))
	for l := 0; l < r.numLayers; l++ {
		outs := make([]*tensor.Tensor, r.directions)
		for d := 0; d < r.directions; d++ {
			idx := l*r.directions + d
			cell := r.cells[idx]

			state := cell.ZeroState(batch)
			if initial != nil {
				state = initial.Layer(idx)
			}

			perStep := make([]*tensor.Tensor, steps)
			for i := 0; i < steps; i++ {
				t := i
				if d == 1 {
					t = steps - 1 - i
				}
				next := cell.Step(layerInput.Select(0, t), state)
				var out *tensor.Tensor
				state, out = maskStep(next, state, active[t])
				perStep[t] = out
			}
			outs[d] = tensor.Stack(perStep, 0)
			finals[idx] = state
		}

		layerOut := outs[0]
		if r.directions == 2 {
			layerOut = tensor.Cat(outs, 2)
		}
		if l < r.numLayers-1 {
			layerOut = r.dropout.Forward(layerOut)
		}
		layerInput = layerOut
	}

	return layerInput, NewRNNState(finals)
}

// activeMask returns active[t][b] = t < lengths[b].
func (r *Recurrent) activeMask(steps, batch int, lengths []int) [][]bool {
	if lengths != nil && len(lengths) != batch {
		panic(fmt.Sprintf("Recurrent.Forward: %d lengths for batch of %d", len(lengths), batch))
	}
	active := make([][]bool, steps)
	for t := range active {
		active[t] = make([]bool, batch)
		for b := range active[t] {
			if lengths == nil {
				active[t][b] = true
				continue
			}
			if lengths[b] <= 0 || lengths[b] > steps {
				panic(fmt.Sprintf("Recurrent.Forward: length %d out of range (1..%d)", lengths[b], steps))
			}
			active[t][b] = t < lengths[b]
		}
	}
	return active
}

// maskStep keeps prev for inactive rows and zeroes their outputs.
func maskStep(next, prev CellState, active []bool) (CellState, *tensor.Tensor) {
	out := next.H.Clone()
	if next.H.RequiresGrad() {
		out.RequireGrad()
	}
	for b, ok := range active {
		if ok {
			continue
		}
		copy(next.H.Row(b), prev.H.Row(b))
		if next.C != nil {
			copy(next.C.Row(b), prev.C.Row(b))
		}
		row := out.Row(b)
		for j := range row {
			row[j] = 0
		}
	}
	return next, out
}

// SetTraining toggles inter-layer dropout.
func (r *Recurrent) SetTraining(training bool) {
	r.dropout.SetTraining(training)
}

// Kind returns the cell family.
func (r *Recurrent) Kind() CellKind { return r.kind }

// NumLayers returns the number of stacked layers.
func (r *Recurrent) NumLayers() int { return r.numLayers }

// Directions returns 2 for bidirectional networks, else 1.
func (r *Recurrent) Directions() int { return r.directions }

// HiddenSize returns the per-direction hidden size.
func (r *Recurrent) HiddenSize() int { return r.hiddenSize }

// Parameters returns the parameters of every cell.
func (r *Recurrent) Parameters() []*Parameter {
	var params []*Parameter
	for _, c := range r.cells {
		params = append(params, c.Parameters()...)
	}
	return params
}
