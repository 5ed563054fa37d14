// Package nn implements the neural network layers of the translation model.
//
// This package provides building blocks for recurrent encoder-decoder models:
//   - Parameter: Named trainable tensors
//   - Linear: Fully connected layer
//   - Embedding, SinusoidalPositionalEncoding, Dropout
//   - LSTM, GRU and tanh RNN cells, the multi-layer RNN with length packing,
//     and the stacked single-step cell used by decoders
//   - GlobalAttention with softmax, sparsemax and their upper-bounded variants
//   - ContextGate variants blending decoder and attention signals
//
// Layers panic on shape violations; these are integration defects, not input
// errors.
package nn
