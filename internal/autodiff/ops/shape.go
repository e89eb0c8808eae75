package ops

import "github.com/abacus-ml/abacus/internal/tensor"

// Reshape records a shape change with untouched elements.
type Reshape struct {
	x, out *tensor.RawTensor
}

func NewReshape(x, out *tensor.RawTensor) *Reshape { return &Reshape{x: x, out: out} }

func (op *Reshape) Name() string                { return "reshape" }
func (op *Reshape) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *Reshape) Output() *tensor.RawTensor   { return op.out }

func (op *Reshape) Backward(grad *tensor.RawTensor, b tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{b.Reshape(grad, op.x.Shape())}
}

// Transpose records a dimension permutation.
type Transpose struct {
	x, out *tensor.RawTensor
	axes   []int
}

func NewTranspose(x, out *tensor.RawTensor, axes []int) *Transpose {
	return &Transpose{x: x, out: out, axes: axes}
}

func (op *Transpose) Name() string                { return "transpose" }
func (op *Transpose) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *Transpose) Output() *tensor.RawTensor   { return op.out }

// Backward applies the inverse permutation to the gradient.
func (op *Transpose) Backward(grad *tensor.RawTensor, b tensor.Backend) []*tensor.RawTensor {
	nd := len(op.x.Shape())
	axes := op.axes
	if len(axes) == 0 {
		axes = make([]int, nd)
		for i := range axes {
			axes[i] = nd - 1 - i
		}
	}
	inverse := make([]int, nd)
	for i, ax := range axes {
		inverse[ax] = i
	}
	return []*tensor.RawTensor{b.Transpose(grad, inverse...)}
}

// Narrow records a contiguous slice along one dimension.
type Narrow struct {
	x, out             *tensor.RawTensor
	dim, start, length int
}

func NewNarrow(x, out *tensor.RawTensor, dim, start, length int) *Narrow {
	return &Narrow{x: x, out: out, dim: dim, start: start, length: length}
}

func (op *Narrow) Name() string                { return "narrow" }
func (op *Narrow) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *Narrow) Output() *tensor.RawTensor   { return op.out }

// Backward scatters the gradient into a zero tensor of the input's shape at
// the sliced range; elements outside the slice contributed nothing.
func (op *Narrow) Backward(grad *tensor.RawTensor, b tensor.Backend) []*tensor.RawTensor {
	out, err := tensor.NewRaw(op.x.Shape(), op.x.DType(), op.x.Device())
	if err != nil {
		panic(err)
	}

	shape := op.x.Shape()
	inner := 1
	for i := op.dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	outer := 1
	for i := 0; i < op.dim; i++ {
		outer *= shape[i]
	}

	elem := op.x.DType().Size()
	run := op.length * inner * elem
	dstStep := shape[op.dim] * inner * elem
	dstOff := op.start * inner * elem
	src, dst := grad.Bytes(), out.Bytes()
	for o := 0; o < outer; o++ {
		copy(dst[o*dstStep+dstOff:o*dstStep+dstOff+run], src[o*run:(o+1)*run])
	}
	return []*tensor.RawTensor{out}
}
