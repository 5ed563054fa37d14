package nn

// Module is the base interface for all neural network components.
//
// Forward signatures differ per layer (a recurrent cell consumes a state, an
// attention layer consumes a memory bank), so the shared contract is the
// parameter listing used for counting and loading weights.
type Module interface {
	// Parameters returns all trainable parameters of this module,
	// including nested module parameters.
	Parameters() []*Parameter
}

// CountParameters returns the total number of scalar weights in the modules.
func CountParameters(modules ...Module) int {
	n := 0
	for _, m := range modules {
		if m == nil {
			continue
		}
		for _, p := range m.Parameters() {
			n += p.Tensor().NumElements()
		}
	}
	return n
}
