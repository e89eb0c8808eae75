// Copyright 2026 The Abacus Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff exposes reverse-mode automatic differentiation as a
// decorator over any compute backend.
//
//	ad := autodiff.New(cpu.New())
//	ad.Tape().StartRecording()
//	loss := model.Forward(x) // recorded
//	grads, err := ad.Backward(loss.Raw())
package autodiff

import (
	"github.com/abacus-ml/abacus/internal/autodiff"
	"github.com/abacus-ml/abacus/internal/tensor"
)

// Backend wraps a compute backend with gradient recording.
type Backend[B tensor.Backend] = autodiff.Backend[B]

// GradientTape records operations for the backward pass.
type GradientTape = autodiff.GradientTape

// New wraps inner with a fresh gradient tape.
func New[B tensor.Backend](inner B) *Backend[B] {
	return autodiff.New(inner)
}

// NewTape returns an empty, non-recording tape.
func NewTape() *GradientTape { return autodiff.NewTape() }
