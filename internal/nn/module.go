// Package nn provides neural network building blocks: layers, parameter
// management, initialization, losses and checkpointing.
package nn

import "github.com/abacus-ml/abacus/internal/tensor"

// Module is a network component that maps an input batch to an output batch.
// Composite modules report the parameters of everything they contain.
type Module[B tensor.Backend] interface {
	Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
	Parameters() []*Parameter[B]
}
