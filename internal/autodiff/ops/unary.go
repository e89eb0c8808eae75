package ops

import "github.com/abacus-ml/abacus/internal/tensor"

// Exp records out = e^x.
type Exp struct {
	x, out *tensor.RawTensor
}

func NewExp(x, out *tensor.RawTensor) *Exp { return &Exp{x: x, out: out} }

func (op *Exp) Name() string                { return "exp" }
func (op *Exp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *Exp) Output() *tensor.RawTensor   { return op.out }

func (op *Exp) Backward(grad *tensor.RawTensor, b tensor.Backend) []*tensor.RawTensor {
	// d(e^x)/dx = e^x, already computed as the output.
	return []*tensor.RawTensor{b.Mul(grad.Clone(), op.out)}
}

// Log records out = ln(x).
type Log struct {
	x, out *tensor.RawTensor
}

func NewLog(x, out *tensor.RawTensor) *Log { return &Log{x: x, out: out} }

func (op *Log) Name() string                { return "log" }
func (op *Log) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *Log) Output() *tensor.RawTensor   { return op.out }

func (op *Log) Backward(grad *tensor.RawTensor, b tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{b.Div(grad.Clone(), op.x)}
}

// AddScalar records out = x + s.
type AddScalar struct {
	x, out *tensor.RawTensor
}

func NewAddScalar(x, out *tensor.RawTensor) *AddScalar { return &AddScalar{x: x, out: out} }

func (op *AddScalar) Name() string                { return "add_scalar" }
func (op *AddScalar) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *AddScalar) Output() *tensor.RawTensor   { return op.out }

func (op *AddScalar) Backward(grad *tensor.RawTensor, b tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{grad}
}

// MulScalar records out = x * s.
type MulScalar struct {
	x, out *tensor.RawTensor
	scalar float64
}

func NewMulScalar(x, out *tensor.RawTensor, scalar float64) *MulScalar {
	return &MulScalar{x: x, out: out, scalar: scalar}
}

func (op *MulScalar) Name() string                { return "mul_scalar" }
func (op *MulScalar) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *MulScalar) Output() *tensor.RawTensor   { return op.out }

func (op *MulScalar) Backward(grad *tensor.RawTensor, b tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{b.MulScalar(grad.Clone(), op.scalar)}
}
