// Package ops defines the differentiable operations recorded on the
// gradient tape, each pairing a forward result with its backward rule.
package ops

import "github.com/abacus-ml/abacus/internal/tensor"

// Operation is one recorded step of a forward computation.
//
// Backward receives the gradient of the loss with respect to the operation's
// output and returns the gradient with respect to each input, in input order.
// A nil entry means the input needs no gradient (e.g. integer targets).
type Operation interface {
	Name() string
	Inputs() []*tensor.RawTensor
	Output() *tensor.RawTensor
	Backward(grad *tensor.RawTensor, b tensor.Backend) []*tensor.RawTensor
}
