package ops

import "github.com/abacus-ml/abacus/internal/tensor"

// Sum records the full reduction out = sum(x).
type Sum struct {
	x, out *tensor.RawTensor
}

func NewSum(x, out *tensor.RawTensor) *Sum { return &Sum{x: x, out: out} }

func (op *Sum) Name() string                { return "sum" }
func (op *Sum) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *Sum) Output() *tensor.RawTensor   { return op.out }

// Backward spreads the scalar gradient to every input element.
func (op *Sum) Backward(grad *tensor.RawTensor, b tensor.Backend) []*tensor.RawTensor {
	g := scalarOf(grad)
	out := fill(op.x.Shape(), op.x.DType(), op.x.Device(), g)
	return []*tensor.RawTensor{out}
}

// SumDim records out = sum(x, dim).
type SumDim struct {
	x, out  *tensor.RawTensor
	dim     int
	keepDim bool
}

func NewSumDim(x, out *tensor.RawTensor, dim int, keepDim bool) *SumDim {
	return &SumDim{x: x, out: out, dim: dim, keepDim: keepDim}
}

func (op *SumDim) Name() string                { return "sum_dim" }
func (op *SumDim) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *SumDim) Output() *tensor.RawTensor   { return op.out }

// Backward broadcasts the gradient back along the reduced dimension.
func (op *SumDim) Backward(grad *tensor.RawTensor, b tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{expandDim(grad, op.x, op.dim, op.keepDim, 1, b)}
}

// MeanDim records out = mean(x, dim).
type MeanDim struct {
	x, out  *tensor.RawTensor
	dim     int
	keepDim bool
}

func NewMeanDim(x, out *tensor.RawTensor, dim int, keepDim bool) *MeanDim {
	return &MeanDim{x: x, out: out, dim: dim, keepDim: keepDim}
}

func (op *MeanDim) Name() string                { return "mean_dim" }
func (op *MeanDim) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *MeanDim) Output() *tensor.RawTensor   { return op.out }

func (op *MeanDim) Backward(grad *tensor.RawTensor, b tensor.Backend) []*tensor.RawTensor {
	scale := 1.0 / float64(op.x.Shape()[op.dim])
	return []*tensor.RawTensor{expandDim(grad, op.x, op.dim, op.keepDim, scale, b)}
}

// expandDim undoes a dimension reduction: the gradient is reshaped to keep
// the reduced dimension as size 1, scaled, and broadcast-added to zeros of
// the input's shape.
func expandDim(grad, x *tensor.RawTensor, dim int, keepDim bool, scale float64, b tensor.Backend) *tensor.RawTensor {
	g := grad
	if !keepDim {
		kept := x.Shape().Clone()
		kept[dim] = 1
		g = b.Reshape(g, kept)
	}
	if scale != 1 {
		g = b.MulScalar(g.Clone(), scale)
	}
	zeros, err := tensor.NewRaw(x.Shape(), x.DType(), x.Device())
	if err != nil {
		panic(err)
	}
	return b.Add(zeros, g)
}

func scalarOf(t *tensor.RawTensor) float64 {
	switch t.DType() {
	case tensor.Float32:
		return float64(t.AsFloat32()[0])
	case tensor.Float64:
		return t.AsFloat64()[0]
	default:
		panic("scalar gradient must be float")
	}
}
