package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abacus-ml/abacus/internal/backend/cpu"
	"github.com/abacus-ml/abacus/internal/nn"
	"github.com/abacus-ml/abacus/internal/tensor"
)

var _ Optimizer[*cpu.Backend] = (*SGD[*cpu.Backend])(nil)
var _ Optimizer[*cpu.Backend] = (*Adam[*cpu.Backend])(nil)

func param(t *testing.T, b *cpu.Backend, data, grad []float32) *nn.Parameter[*cpu.Backend] {
	t.Helper()
	w, err := tensor.FromSlice(data, tensor.Shape{len(data)}, b)
	require.NoError(t, err)
	p := nn.NewParameter("w", w)
	if grad != nil {
		g, err := tensor.FromSlice(grad, tensor.Shape{len(grad)}, b)
		require.NoError(t, err)
		p.SetGrad(g)
	}
	return p
}

func TestSGDStep(t *testing.T) {
	b := cpu.New()
	p := param(t, b, []float32{1, 2, 3}, []float32{0.5, -0.5, 1})

	sgd := NewSGD([]*nn.Parameter[*cpu.Backend]{p}, 0.1)
	require.NoError(t, sgd.Step())

	assert.InDeltaSlice(t, []float32{0.95, 2.05, 2.9}, p.Data(), 1e-6)
}

func TestSGDMomentumAccumulates(t *testing.T) {
	b := cpu.New()
	p := param(t, b, []float32{0}, []float32{1})

	sgd := NewSGDMomentum([]*nn.Parameter[*cpu.Backend]{p}, 0.1, 0.9)
	require.NoError(t, sgd.Step())
	assert.InDelta(t, -0.1, float64(p.Data()[0]), 1e-6)

	// Same gradient again: velocity becomes 0.9*1 + 1 = 1.9.
	require.NoError(t, sgd.Step())
	assert.InDelta(t, -0.1-0.19, float64(p.Data()[0]), 1e-6)
}

func TestSGDMissingGradient(t *testing.T) {
	b := cpu.New()
	p := param(t, b, []float32{1}, nil)

	sgd := NewSGD([]*nn.Parameter[*cpu.Backend]{p}, 0.1)
	err := sgd.Step()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no gradient")
}

func TestZeroGrad(t *testing.T) {
	b := cpu.New()
	p := param(t, b, []float32{1}, []float32{2})

	sgd := NewSGD([]*nn.Parameter[*cpu.Backend]{p}, 0.1)
	sgd.ZeroGrad()
	assert.Nil(t, p.Grad())
}

func TestAdamFirstStep(t *testing.T) {
	b := cpu.New()
	p := param(t, b, []float32{1}, []float32{0.5})

	adam := NewAdam([]*nn.Parameter[*cpu.Backend]{p}, 0.001)
	require.NoError(t, adam.Step())

	// After bias correction the first step moves by almost exactly lr.
	assert.InDelta(t, 1-0.001, float64(p.Data()[0]), 1e-5)
}

func TestAdamConvergesOnQuadratic(t *testing.T) {
	b := cpu.New()
	p := param(t, b, []float32{5}, nil)
	adam := NewAdam([]*nn.Parameter[*cpu.Backend]{p}, 0.1)

	// Minimize f(w) = w^2 with grad 2w.
	for i := 0; i < 200; i++ {
		g, err := tensor.FromSlice([]float32{2 * p.Data()[0]}, tensor.Shape{1}, b)
		require.NoError(t, err)
		p.SetGrad(g)
		require.NoError(t, adam.Step())
	}
	assert.InDelta(t, 0, float64(p.Data()[0]), 0.05)
}

func TestSGDLearningRateSchedule(t *testing.T) {
	b := cpu.New()
	p := param(t, b, []float32{1}, []float32{1})

	sgd := NewSGD([]*nn.Parameter[*cpu.Backend]{p}, 0.1)
	assert.Equal(t, 0.1, sgd.LearningRate())
	sgd.SetLearningRate(0.01)
	require.NoError(t, sgd.Step())
	assert.InDelta(t, 0.99, float64(p.Data()[0]), 1e-6)
}
