package nn

import "github.com/abacus-ml/abacus/internal/tensor"

// ReLU is the rectified linear activation as a stateless module.
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a ReLU activation.
func NewReLU[B tensor.Backend]() *ReLU[B] { return &ReLU[B]{} }

func (r *ReLU[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x.ReLU()
}

func (r *ReLU[B]) Parameters() []*Parameter[B] { return nil }

// Sigmoid is the logistic activation 1 / (1 + e^-x), composed from
// primitive ops so the gradient falls out of the tape.
type Sigmoid[B tensor.Backend] struct{}

// NewSigmoid creates a Sigmoid activation.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] { return &Sigmoid[B]{} }

func (s *Sigmoid[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	denom := x.MulScalar(-1).Exp().AddScalar(1)
	return tensor.Ones[float32](x.Shape(), x.Backend()).Div(denom)
}

func (s *Sigmoid[B]) Parameters() []*Parameter[B] { return nil }

// Softmax normalizes the last dimension to probabilities. Prefer the fused
// CrossEntropy loss during training; this module is for inference output.
type Softmax[B tensor.Backend] struct{}

// NewSoftmax creates a Softmax activation over the last dimension.
func NewSoftmax[B tensor.Backend]() *Softmax[B] { return &Softmax[B]{} }

func (s *Softmax[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x.Softmax(-1)
}

func (s *Softmax[B]) Parameters() []*Parameter[B] { return nil }
