package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/nmt/internal/tensor"
)

// CellKind names a recurrent cell family.
type CellKind string

// Supported recurrent cell families.
const (
	LSTM CellKind = "LSTM"
	GRU  CellKind = "GRU"
	RNN  CellKind = "RNN" // Elman RNN with tanh non-linearity
)

// Validate reports whether k is a known cell family.
func (k CellKind) Validate() error {
	switch k {
	case LSTM, GRU, RNN:
		return nil
	default:
		return fmt.Errorf("unknown rnn type %q (want LSTM, GRU or RNN)", string(k))
	}
}

// CellState is the state of one recurrent layer for a batch.
// H is [batch, hidden]; C is the LSTM cell memory and nil for other families.
type CellState struct {
	H *tensor.Tensor
	C *tensor.Tensor
}

// Cell advances one recurrent layer by a single time step.
type Cell interface {
	Module

	// Step consumes x [batch, input] and returns the next state.
	Step(x *tensor.Tensor, state CellState) CellState

	// ZeroState returns the all-zero state for batch rows.
	ZeroState(batch int) CellState

	InputSize() int
	HiddenSize() int
}

// NewCell creates a cell of the given family.
func NewCell(kind CellKind, inputSize, hiddenSize int) Cell {
	switch kind {
	case LSTM:
		return NewLSTMCell(inputSize, hiddenSize)
	case GRU:
		return NewGRUCell(inputSize, hiddenSize)
	case RNN:
		return NewRNNCell(inputSize, hiddenSize)
	default:
		panic(fmt.Sprintf("NewCell: %v", kind.Validate()))
	}
}

// gatedCell holds the input and recurrent projections shared by all families.
type gatedCell struct {
	ih         *Linear // [gates*hidden, input]
	hh         *Linear // [gates*hidden, hidden]
	inputSize  int
	hiddenSize int
}

func newGatedCell(gates, inputSize, hiddenSize int) gatedCell {
	return gatedCell{
		ih:         NewLinear(inputSize, gates*hiddenSize),
		hh:         NewLinear(hiddenSize, gates*hiddenSize),
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
	}
}

func (g *gatedCell) InputSize() int  { return g.inputSize }
func (g *gatedCell) HiddenSize() int { return g.hiddenSize }

func (g *gatedCell) Parameters() []*Parameter {
	return append(g.ih.Parameters(), g.hh.Parameters()...)
}

func (g *gatedCell) zeros(batch int) *tensor.Tensor {
	return tensor.Zeros(tensor.Shape{batch, g.hiddenSize})
}

func (g *gatedCell) check(x *tensor.Tensor, h *tensor.Tensor) {
	if h == nil {
		panic("Cell.Step: missing hidden state")
	}
	if x.Dim(0) != h.Dim(0) {
		panic(fmt.Sprintf("Cell.Step: batch mismatch between input %v and hidden %v", x.Shape(), h.Shape()))
	}
}

// LSTMCell is a long short-term memory cell with gates ordered
// input, forget, cell candidate, output.
type LSTMCell struct {
	gatedCell
}

// NewLSTMCell creates an LSTM cell.
func NewLSTMCell(inputSize, hiddenSize int) *LSTMCell {
	return &LSTMCell{newGatedCell(4, inputSize, hiddenSize)}
}

// ZeroState returns zero hidden and cell memories.
func (c *LSTMCell) ZeroState(batch int) CellState {
	return CellState{H: c.zeros(batch), C: c.zeros(batch)}
}

// Step computes
//
//	c' = σ(f)·c + σ(i)·tanh(g)
//	h' = σ(o)·tanh(c')
func (c *LSTMCell) Step(x *tensor.Tensor, state CellState) CellState {
	c.check(x, state.H)
	if state.C == nil {
		panic("LSTMCell.Step: missing cell memory")
	}

	gates := c.ih.Forward(x).Add(c.hh.Forward(state.H))
	batch, hs := x.Dim(0), c.hiddenSize
	h := tensor.Derived(tensor.Shape{batch, hs}, gates, state.C)
	mem := tensor.Derived(tensor.Shape{batch, hs}, gates, state.C)

	for b := 0; b < batch; b++ {
		g := gates.Row(b)
		prev := state.C.Row(b)
		hRow, cRow := h.Row(b), mem.Row(b)
		for j := 0; j < hs; j++ {
			in := tensor.Sigmoid(g[j])
			forget := tensor.Sigmoid(g[hs+j])
			cand := math.Tanh(g[2*hs+j])
			out := tensor.Sigmoid(g[3*hs+j])
			cRow[j] = forget*prev[j] + in*cand
			hRow[j] = out * math.Tanh(cRow[j])
		}
	}
	return CellState{H: h, C: mem}
}

// GRUCell is a gated recurrent unit with gates ordered reset, update, new.
type GRUCell struct {
	gatedCell
}

// NewGRUCell creates a GRU cell.
func NewGRUCell(inputSize, hiddenSize int) *GRUCell {
	return &GRUCell{newGatedCell(3, inputSize, hiddenSize)}
}

// ZeroState returns a zero hidden state.
func (c *GRUCell) ZeroState(batch int) CellState {
	return CellState{H: c.zeros(batch)}
}

// Step computes
//
//	r = σ(Wr x + Ur h), z = σ(Wz x + Uz h)
//	n = tanh(Wn x + r·(Un h))
//	h' = (1-z)·n + z·h
func (c *GRUCell) Step(x *tensor.Tensor, state CellState) CellState {
	c.check(x, state.H)

	gi := c.ih.Forward(x)
	gh := c.hh.Forward(state.H)
	batch, hs := x.Dim(0), c.hiddenSize
	h := tensor.Derived(tensor.Shape{batch, hs}, gi, gh)

	for b := 0; b < batch; b++ {
		xi, hi := gi.Row(b), gh.Row(b)
		prev, hRow := state.H.Row(b), h.Row(b)
		for j := 0; j < hs; j++ {
			reset := tensor.Sigmoid(xi[j] + hi[j])
			update := tensor.Sigmoid(xi[hs+j] + hi[hs+j])
			n := math.Tanh(xi[2*hs+j] + reset*hi[2*hs+j])
			hRow[j] = (1-update)*n + update*prev[j]
		}
	}
	return CellState{H: h}
}

// RNNCell is an Elman cell: h' = tanh(W x + U h).
type RNNCell struct {
	gatedCell
}

// NewRNNCell creates a tanh RNN cell.
func NewRNNCell(inputSize, hiddenSize int) *RNNCell {
	return &RNNCell{newGatedCell(1, inputSize, hiddenSize)}
}

// ZeroState returns a zero hidden state.
func (c *RNNCell) ZeroState(batch int) CellState {
	return CellState{H: c.zeros(batch)}
}

// Step computes h' = tanh(W x + U h).
func (c *RNNCell) Step(x *tensor.Tensor, state CellState) CellState {
	c.check(x, state.H)
	return CellState{H: c.ih.Forward(x).Add(c.hh.Forward(state.H)).Tanh()}
}
