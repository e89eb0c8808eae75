package ops

import "github.com/abacus-ml/abacus/internal/tensor"

// Add records out = a + b.
type Add struct {
	a, b, out *tensor.RawTensor
}

func NewAdd(a, b, out *tensor.RawTensor) *Add { return &Add{a: a, b: b, out: out} }

func (op *Add) Name() string                { return "add" }
func (op *Add) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }
func (op *Add) Output() *tensor.RawTensor   { return op.out }

func (op *Add) Backward(grad *tensor.RawTensor, b tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		reduceBroadcast(grad, op.a.Shape(), b),
		reduceBroadcast(grad, op.b.Shape(), b),
	}
}

// Sub records out = a - b.
type Sub struct {
	a, b, out *tensor.RawTensor
}

func NewSub(a, b, out *tensor.RawTensor) *Sub { return &Sub{a: a, b: b, out: out} }

func (op *Sub) Name() string                { return "sub" }
func (op *Sub) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }
func (op *Sub) Output() *tensor.RawTensor   { return op.out }

func (op *Sub) Backward(grad *tensor.RawTensor, b tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		reduceBroadcast(grad, op.a.Shape(), b),
		reduceBroadcast(b.MulScalar(grad.Clone(), -1), op.b.Shape(), b),
	}
}

// Mul records out = a * b.
type Mul struct {
	a, b, out *tensor.RawTensor
}

func NewMul(a, b, out *tensor.RawTensor) *Mul { return &Mul{a: a, b: b, out: out} }

func (op *Mul) Name() string                { return "mul" }
func (op *Mul) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }
func (op *Mul) Output() *tensor.RawTensor   { return op.out }

func (op *Mul) Backward(grad *tensor.RawTensor, b tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		reduceBroadcast(b.Mul(grad.Clone(), op.b), op.a.Shape(), b),
		reduceBroadcast(b.Mul(grad.Clone(), op.a), op.b.Shape(), b),
	}
}

// Div records out = a / b.
type Div struct {
	a, b, out *tensor.RawTensor
}

func NewDiv(a, b, out *tensor.RawTensor) *Div { return &Div{a: a, b: b, out: out} }

func (op *Div) Name() string                { return "div" }
func (op *Div) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }
func (op *Div) Output() *tensor.RawTensor   { return op.out }

func (op *Div) Backward(grad *tensor.RawTensor, b tensor.Backend) []*tensor.RawTensor {
	// d(a/b)/da = 1/b, d(a/b)/db = -a/b^2 = -out/b
	gradA := b.Div(grad.Clone(), op.b)
	gradB := b.MulScalar(b.Div(b.Mul(grad.Clone(), op.out), op.b), -1)
	return []*tensor.RawTensor{
		reduceBroadcast(gradA, op.a.Shape(), b),
		reduceBroadcast(gradB, op.b.Shape(), b),
	}
}
