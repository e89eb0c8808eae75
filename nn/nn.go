// Copyright 2026 The Abacus Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn is the public API for neural network layers, losses and
// checkpointing.
//
//	model := nn.NewSequential[B](
//	    nn.NewLinear[B]("fc1", 784, 128, backend),
//	    nn.NewReLU[B](),
//	    nn.NewLinear[B]("fc2", 128, 10, backend),
//	)
package nn

import (
	"io"

	"github.com/abacus-ml/abacus/internal/nn"
	"github.com/abacus-ml/abacus/internal/tensor"
)

// Module is a network component mapping input batches to output batches.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter is a named, trainable tensor.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter wraps a tensor as a trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Layers.

// Linear is a fully connected layer computing y = x @ W^T + b.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a Linear layer with Xavier-initialized weights.
func NewLinear[B tensor.Backend](name string, inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinear(name, inFeatures, outFeatures, backend)
}

// ReLU is the rectified linear activation.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU activation.
func NewReLU[B tensor.Backend]() *ReLU[B] { return nn.NewReLU[B]() }

// Sigmoid is the logistic activation.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a Sigmoid activation.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] { return nn.NewSigmoid[B]() }

// Softmax normalizes the last dimension to probabilities.
type Softmax[B tensor.Backend] = nn.Softmax[B]

// NewSoftmax creates a Softmax activation.
func NewSoftmax[B tensor.Backend]() *Softmax[B] { return nn.NewSoftmax[B]() }

// Sequential chains modules in order.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a Sequential from the given layers.
func NewSequential[B tensor.Backend](layers ...Module[B]) *Sequential[B] {
	return nn.NewSequential(layers...)
}

// Losses and metrics.

// CrossEntropy computes mean cross-entropy loss from logits and int32 class
// indices, using the backend's fused kernel.
func CrossEntropy[B tensor.Backend](logits *tensor.Tensor[float32, B], targets *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	return nn.CrossEntropy(logits, targets)
}

// Accuracy returns the fraction of argmax predictions matching the targets.
func Accuracy[B tensor.Backend](logits *tensor.Tensor[float32, B], targets *tensor.Tensor[int32, B]) float64 {
	return nn.Accuracy(logits, targets)
}

// Initialization.

// XavierUniform fills t with U(-limit, limit), limit = sqrt(6/(fanIn+fanOut)).
func XavierUniform[B tensor.Backend](t *tensor.Tensor[float32, B], fanIn, fanOut int) {
	nn.XavierUniform(t, fanIn, fanOut)
}

// KaimingNormal fills t with N(0, sqrt(2/fanIn)), matched to ReLU.
func KaimingNormal[B tensor.Backend](t *tensor.Tensor[float32, B], fanIn int) {
	nn.KaimingNormal(t, fanIn)
}

// Checkpointing.

// Save writes all module parameters to w with a CRC32 integrity footer.
func Save[B tensor.Backend](w io.Writer, m Module[B]) error { return nn.Save(w, m) }

// Load restores module parameters from r, verifying the checksum before
// committing any values.
func Load[B tensor.Backend](r io.Reader, m Module[B]) error { return nn.Load(r, m) }

// SaveFile writes a checkpoint to path.
func SaveFile[B tensor.Backend](path string, m Module[B]) error { return nn.SaveFile(path, m) }

// LoadFile restores a checkpoint from path.
func LoadFile[B tensor.Backend](path string, m Module[B]) error { return nn.LoadFile(path, m) }
