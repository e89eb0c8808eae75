package nn

import (
	"fmt"

	"github.com/abacus-ml/abacus/internal/tensor"
)

// Sequential chains modules, feeding each output into the next input.
type Sequential[B tensor.Backend] struct {
	layers []Module[B]
}

// NewSequential creates a Sequential from the given layers in order.
func NewSequential[B tensor.Backend](layers ...Module[B]) *Sequential[B] {
	return &Sequential[B]{layers: layers}
}

// Forward runs the input through every layer in order.
func (s *Sequential[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	out := x
	for _, layer := range s.layers {
		out = layer.Forward(out)
	}
	return out
}

// Parameters returns all layer parameters in layer order.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, layer := range s.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// Layers returns the contained modules.
func (s *Sequential[B]) Layers() []Module[B] { return s.layers }

// StateDict snapshots every parameter's values by name.
func (s *Sequential[B]) StateDict() map[string][]float32 {
	state := make(map[string][]float32)
	for _, p := range s.Parameters() {
		state[p.Name()] = append([]float32(nil), p.Data()...)
	}
	return state
}

// LoadStateDict copies values back into matching parameters. Every
// parameter must be present with the right element count.
func (s *Sequential[B]) LoadStateDict(state map[string][]float32) error {
	for _, p := range s.Parameters() {
		values, ok := state[p.Name()]
		if !ok {
			return fmt.Errorf("state dict is missing %s", p.Name())
		}
		if len(values) != len(p.Data()) {
			return fmt.Errorf("state dict %s has %d elements, parameter has %d",
				p.Name(), len(values), len(p.Data()))
		}
		copy(p.Data(), values)
	}
	return nil
}
