// Copyright 2026 The Abacus Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim is the public API for gradient descent optimizers.
//
//	opt := optim.NewSGD(model.Parameters(), 0.1)
//	// forward, loss, backward ...
//	opt.Step()
//	opt.ZeroGrad()
package optim

import (
	"github.com/abacus-ml/abacus/internal/nn"
	"github.com/abacus-ml/abacus/internal/optim"
	"github.com/abacus-ml/abacus/internal/tensor"
)

// Optimizer updates parameters in place from their attached gradients.
type Optimizer[B tensor.Backend] = optim.Optimizer[B]

// SGD is stochastic gradient descent with optional momentum.
type SGD[B tensor.Backend] = optim.SGD[B]

// NewSGD creates a plain SGD optimizer.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], lr float64) *SGD[B] {
	return optim.NewSGD(params, lr)
}

// NewSGDMomentum creates an SGD optimizer with classical momentum.
func NewSGDMomentum[B tensor.Backend](params []*nn.Parameter[B], lr, momentum float64) *SGD[B] {
	return optim.NewSGDMomentum(params, lr, momentum)
}

// Adam is the Adam optimizer with bias-corrected moment estimates.
type Adam[B tensor.Backend] = optim.Adam[B]

// NewAdam creates an Adam optimizer with the usual defaults.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], lr float64) *Adam[B] {
	return optim.NewAdam(params, lr)
}
