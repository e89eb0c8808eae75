package optim

import (
	"github.com/abacus-ml/abacus/internal/nn"
	"github.com/abacus-ml/abacus/internal/tensor"
)

// SGD is stochastic gradient descent with optional classical momentum:
//
//	v = momentum*v + grad
//	w = w - lr*v
//
// With momentum zero it is the plain update w = w - lr*grad.
type SGD[B tensor.Backend] struct {
	params   []*nn.Parameter[B]
	lr       float64
	momentum float64
	velocity [][]float32
}

// NewSGD creates an SGD optimizer over params.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], lr float64) *SGD[B] {
	return &SGD[B]{params: params, lr: lr}
}

// NewSGDMomentum creates an SGD optimizer with momentum.
func NewSGDMomentum[B tensor.Backend](params []*nn.Parameter[B], lr, momentum float64) *SGD[B] {
	s := NewSGD(params, lr)
	s.momentum = momentum
	return s
}

// LearningRate returns the current learning rate.
func (s *SGD[B]) LearningRate() float64 { return s.lr }

// SetLearningRate changes the learning rate, e.g. for decay schedules.
func (s *SGD[B]) SetLearningRate(lr float64) { s.lr = lr }

// Step applies one SGD update to every parameter.
func (s *SGD[B]) Step() error {
	if s.momentum != 0 && s.velocity == nil {
		s.velocity = make([][]float32, len(s.params))
		for i, p := range s.params {
			s.velocity[i] = make([]float32, len(p.Data()))
		}
	}

	lr := float32(s.lr)
	mom := float32(s.momentum)
	for i, p := range s.params {
		grad, err := gradOf(p)
		if err != nil {
			return err
		}
		data := p.Data()

		if mom == 0 {
			for j := range data {
				data[j] -= lr * grad[j]
			}
			continue
		}
		v := s.velocity[i]
		for j := range data {
			v[j] = mom*v[j] + grad[j]
			data[j] -= lr * v[j]
		}
	}
	return nil
}

// ZeroGrad detaches all gradients.
func (s *SGD[B]) ZeroGrad() {
	for _, p := range s.params {
		p.ZeroGrad()
	}
}
