package ops

import "github.com/abacus-ml/abacus/internal/tensor"

// ReLU records out = max(0, x).
type ReLU struct {
	x, out *tensor.RawTensor
}

func NewReLU(x, out *tensor.RawTensor) *ReLU { return &ReLU{x: x, out: out} }

func (op *ReLU) Name() string                { return "relu" }
func (op *ReLU) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *ReLU) Output() *tensor.RawTensor   { return op.out }

// Backward masks the gradient where the input was not positive. The
// subgradient at exactly zero is taken as zero.
func (op *ReLU) Backward(grad *tensor.RawTensor, b tensor.Backend) []*tensor.RawTensor {
	out := maskedCopy(grad, op.x)
	return []*tensor.RawTensor{out}
}

func maskedCopy(grad, x *tensor.RawTensor) *tensor.RawTensor {
	raw, err := tensor.NewRaw(grad.Shape(), grad.DType(), grad.Device())
	if err != nil {
		panic(err)
	}
	switch grad.DType() {
	case tensor.Float32:
		g, xs, dst := grad.AsFloat32(), x.AsFloat32(), raw.AsFloat32()
		for i := range dst {
			if xs[i] > 0 {
				dst[i] = g[i]
			}
		}
	case tensor.Float64:
		g, xs, dst := grad.AsFloat64(), x.AsFloat64(), raw.AsFloat64()
		for i := range dst {
			if xs[i] > 0 {
				dst[i] = g[i]
			}
		}
	default:
		panic("relu backward: float dtypes only")
	}
	return raw
}

// Softmax records out = softmax(x, dim).
type Softmax struct {
	x, out *tensor.RawTensor
	dim    int
}

func NewSoftmax(x, out *tensor.RawTensor, dim int) *Softmax {
	return &Softmax{x: x, out: out, dim: dim}
}

func (op *Softmax) Name() string                { return "softmax" }
func (op *Softmax) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *Softmax) Output() *tensor.RawTensor   { return op.out }

// Backward uses the Jacobian-vector product written in terms of the saved
// output s: dL/dx = s * (g - sum(g * s, dim)).
func (op *Softmax) Backward(grad *tensor.RawTensor, b tensor.Backend) []*tensor.RawTensor {
	gs := b.Mul(grad.Clone(), op.out)
	dot := b.SumDim(gs, op.dim, true)
	inner := b.Sub(grad.Clone(), dot)
	return []*tensor.RawTensor{b.Mul(inner, op.out)}
}
