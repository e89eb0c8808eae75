package nn

import "github.com/abacus-ml/abacus/internal/tensor"

// Parameter is a named, trainable tensor. Optimizers mutate its data in
// place; the gradient is attached between the backward pass and the step.
type Parameter[B tensor.Backend] struct {
	name string
	t    *tensor.Tensor[float32, B]
}

// NewParameter wraps a tensor as a trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, t: t.RequireGrad()}
}

// Name returns the parameter's name, e.g. "fc1.weight".
func (p *Parameter[B]) Name() string { return p.name }

// Tensor returns the underlying tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] { return p.t }

// Data returns the writable parameter values.
func (p *Parameter[B]) Data() []float32 { return p.t.Data() }

// Grad returns the gradient values, or nil before any backward pass.
func (p *Parameter[B]) Grad() []float32 {
	g := p.t.Grad()
	if g == nil {
		return nil
	}
	return g.Data()
}

// SetGrad attaches a gradient tensor.
func (p *Parameter[B]) SetGrad(g *tensor.Tensor[float32, B]) { p.t.SetGrad(g) }

// ZeroGrad detaches the gradient.
func (p *Parameter[B]) ZeroGrad() { p.t.SetGrad(nil) }
