package loader

import (
	"fmt"

	"github.com/born-ml/nmt/internal/tensor"
)

// MatrixTensorName is the tensor read by LoadMatrix when a file holds more
// than one tensor.
const MatrixTensorName = "weight"

// LoadMatrix reads a 2D weight matrix from a SafeTensors file.
//
// The tensor named "weight" is used; a file with exactly one tensor may name
// it freely.
func LoadMatrix(path string) (*tensor.Tensor, error) {
	r, err := NewSafeTensorsReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = r.Close() }()

	if err := r.Verify(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	name := MatrixTensorName
	if _, err := r.TensorInfo(name); err != nil {
		names := r.TensorNames()
		if len(names) != 1 {
			return nil, fmt.Errorf("%s: expected a %q tensor or a single tensor, found %d tensors", path, MatrixTensorName, len(names))
		}
		name = names[0]
	}

	m, err := r.LoadTensor(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.Rank() != 2 {
		return nil, fmt.Errorf("%s: tensor %s has shape %v, want a matrix", path, name, m.Shape())
	}
	return m, nil
}
