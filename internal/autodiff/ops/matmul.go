package ops

import "github.com/abacus-ml/abacus/internal/tensor"

// MatMul records out = a @ b for 2D operands.
type MatMul struct {
	a, b, out *tensor.RawTensor
}

func NewMatMul(a, b, out *tensor.RawTensor) *MatMul { return &MatMul{a: a, b: b, out: out} }

func (op *MatMul) Name() string                { return "matmul" }
func (op *MatMul) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }
func (op *MatMul) Output() *tensor.RawTensor   { return op.out }

func (op *MatMul) Backward(grad *tensor.RawTensor, b tensor.Backend) []*tensor.RawTensor {
	// dL/dA = dL/dOut @ B^T, dL/dB = A^T @ dL/dOut
	gradA := b.MatMul(grad, b.Transpose(op.b))
	gradB := b.MatMul(b.Transpose(op.a), grad)
	return []*tensor.RawTensor{gradA, gradB}
}
