// Package optim implements gradient descent optimizers over nn parameters.
package optim

import (
	"fmt"

	"github.com/abacus-ml/abacus/internal/nn"
	"github.com/abacus-ml/abacus/internal/tensor"
)

// Optimizer updates parameters in place from their attached gradients.
type Optimizer[B tensor.Backend] interface {
	// Step applies one update. It fails if any parameter is missing its
	// gradient, which means the backward pass did not run or did not reach it.
	Step() error
	// ZeroGrad detaches all gradients before the next forward pass.
	ZeroGrad()
}

func gradOf[B tensor.Backend](p *nn.Parameter[B]) ([]float32, error) {
	g := p.Grad()
	if g == nil {
		return nil, fmt.Errorf("parameter %s has no gradient", p.Name())
	}
	if len(g) != len(p.Data()) {
		return nil, fmt.Errorf("parameter %s: gradient has %d elements, data has %d",
			p.Name(), len(g), len(p.Data()))
	}
	return g, nil
}
