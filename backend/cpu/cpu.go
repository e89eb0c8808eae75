// Copyright 2026 The Abacus Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu exposes the pure-Go CPU compute backend.
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
package cpu

import "github.com/abacus-ml/abacus/internal/backend/cpu"

// Backend computes tensor operations on the host CPU with cache-blocked
// matmul and goroutine parallelism.
type Backend = cpu.Backend

// New creates a CPU backend.
func New() *Backend { return cpu.New() }

// Features describes the host CPU: brand string plus detected SIMD sets.
func Features() []string { return cpu.Features() }
