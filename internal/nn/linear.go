package nn

import (
	"fmt"

	"github.com/abacus-ml/abacus/internal/tensor"
)

// Linear is a fully connected layer computing y = x @ W^T + b.
//
// The weight is stored as [outFeatures, inFeatures] and transposed during
// the forward pass, matching the usual convention for saved models.
type Linear[B tensor.Backend] struct {
	weight *Parameter[B]
	bias   *Parameter[B]
}

// NewLinear creates a Linear layer with Xavier-initialized weights and zero
// bias. The name prefixes the parameter names, e.g. "fc1" gives "fc1.weight".
func NewLinear[B tensor.Backend](name string, inFeatures, outFeatures int, b B) *Linear[B] {
	w := tensor.Zeros[float32](tensor.Shape{outFeatures, inFeatures}, b)
	XavierUniform(w, inFeatures, outFeatures)
	bias := tensor.Zeros[float32](tensor.Shape{outFeatures}, b)

	return &Linear[B]{
		weight: NewParameter(name+".weight", w),
		bias:   NewParameter(name+".bias", bias),
	}
}

// Forward computes x @ W^T + b for a batch x of shape [batch, inFeatures].
func (l *Linear[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	in := l.weight.Tensor().Shape()[1]
	if got := x.Shape()[len(x.Shape())-1]; got != in {
		panic(fmt.Sprintf("linear %s: input has %d features, layer expects %d",
			l.weight.Name(), got, in))
	}
	return x.MatMul(l.weight.Tensor().T()).Add(l.bias.Tensor())
}

// Parameters returns the weight and bias.
func (l *Linear[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] { return l.weight }

// Bias returns the bias parameter.
func (l *Linear[B]) Bias() *Parameter[B] { return l.bias }
