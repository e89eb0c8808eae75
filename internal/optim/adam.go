package optim

import (
	"math"

	"github.com/abacus-ml/abacus/internal/nn"
	"github.com/abacus-ml/abacus/internal/tensor"
)

// Adam implements the Adam optimizer with bias-corrected first and second
// moment estimates (Kingma & Ba, 2015).
type Adam[B tensor.Backend] struct {
	params []*nn.Parameter[B]
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64

	step int
	m    [][]float32
	v    [][]float32
}

// NewAdam creates an Adam optimizer with the usual defaults
// (beta1=0.9, beta2=0.999, eps=1e-8).
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], lr float64) *Adam[B] {
	return &Adam[B]{
		params: params,
		lr:     lr,
		beta1:  0.9,
		beta2:  0.999,
		eps:    1e-8,
	}
}

// Step applies one Adam update to every parameter.
func (a *Adam[B]) Step() error {
	if a.m == nil {
		a.m = make([][]float32, len(a.params))
		a.v = make([][]float32, len(a.params))
		for i, p := range a.params {
			a.m[i] = make([]float32, len(p.Data()))
			a.v[i] = make([]float32, len(p.Data()))
		}
	}
	a.step++

	// Fold both bias corrections into a single step size.
	c1 := 1 - math.Pow(a.beta1, float64(a.step))
	c2 := 1 - math.Pow(a.beta2, float64(a.step))
	stepSize := a.lr * math.Sqrt(c2) / c1

	b1 := float32(a.beta1)
	b2 := float32(a.beta2)
	for i, p := range a.params {
		grad, err := gradOf(p)
		if err != nil {
			return err
		}
		data := p.Data()
		m, v := a.m[i], a.v[i]

		for j := range data {
			g := grad[j]
			m[j] = b1*m[j] + (1-b1)*g
			v[j] = b2*v[j] + (1-b2)*g*g
			data[j] -= float32(stepSize * float64(m[j]) / (math.Sqrt(float64(v[j])) + a.eps))
		}
	}
	return nil
}

// ZeroGrad detaches all gradients.
func (a *Adam[B]) ZeroGrad() {
	for _, p := range a.params {
		p.ZeroGrad()
	}
}
