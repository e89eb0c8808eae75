package autodiff

import (
	"fmt"

	"github.com/abacus-ml/abacus/internal/autodiff/ops"
	"github.com/abacus-ml/abacus/internal/tensor"
)

// Backend decorates a compute backend with gradient recording. When the tape
// is recording, every differentiable operation is captured; otherwise calls
// pass straight through, keeping the inner backend's in-place fast paths.
//
//	ad := autodiff.New(cpu.New())
//	ad.Tape().StartRecording()
type Backend[B tensor.Backend] struct {
	inner B
	tape  *GradientTape
}

// New wraps inner with a fresh gradient tape.
func New[B tensor.Backend](inner B) *Backend[B] {
	return &Backend[B]{inner: inner, tape: NewTape()}
}

// Inner returns the wrapped backend.
func (a *Backend[B]) Inner() B { return a.inner }

// Tape returns the gradient tape.
func (a *Backend[B]) Tape() *GradientTape { return a.tape }

// Name returns the inner backend's name tagged as autodiff.
func (a *Backend[B]) Name() string { return a.inner.Name() + "+autodiff" }

// Device returns the inner backend's device.
func (a *Backend[B]) Device() tensor.Device { return a.inner.Device() }

// Backward computes gradients for every recorded tensor reachable from loss.
// Gradient math runs on the inner backend so it is not itself recorded.
func (a *Backend[B]) Backward(loss *tensor.RawTensor) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	return a.tape.Backward(loss, a.inner)
}

// record runs forward with the left-hand input pinned against in-place reuse
// and captures the resulting operation.
func (a *Backend[B]) record(pin *tensor.RawTensor, forward func() *tensor.RawTensor, capture func(out *tensor.RawTensor) ops.Operation) *tensor.RawTensor {
	if !a.tape.IsRecording() {
		return forward()
	}
	release := pin.ForceNonUnique()
	out := forward()
	release()
	a.tape.Record(capture(out))
	return out
}

func (a *Backend[B]) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	return a.record(x,
		func() *tensor.RawTensor { return a.inner.Add(x, y) },
		func(out *tensor.RawTensor) ops.Operation { return ops.NewAdd(x, y, out) })
}

func (a *Backend[B]) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	return a.record(x,
		func() *tensor.RawTensor { return a.inner.Sub(x, y) },
		func(out *tensor.RawTensor) ops.Operation { return ops.NewSub(x, y, out) })
}

func (a *Backend[B]) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	return a.record(x,
		func() *tensor.RawTensor { return a.inner.Mul(x, y) },
		func(out *tensor.RawTensor) ops.Operation { return ops.NewMul(x, y, out) })
}

func (a *Backend[B]) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	return a.record(x,
		func() *tensor.RawTensor { return a.inner.Div(x, y) },
		func(out *tensor.RawTensor) ops.Operation { return ops.NewDiv(x, y, out) })
}

func (a *Backend[B]) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	return a.record(x,
		func() *tensor.RawTensor { return a.inner.MatMul(x, y) },
		func(out *tensor.RawTensor) ops.Operation { return ops.NewMatMul(x, y, out) })
}

func (a *Backend[B]) AddScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return a.record(x,
		func() *tensor.RawTensor { return a.inner.AddScalar(x, s) },
		func(out *tensor.RawTensor) ops.Operation { return ops.NewAddScalar(x, out) })
}

func (a *Backend[B]) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return a.record(x,
		func() *tensor.RawTensor { return a.inner.MulScalar(x, s) },
		func(out *tensor.RawTensor) ops.Operation { return ops.NewMulScalar(x, out, s) })
}

func (a *Backend[B]) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return a.record(x,
		func() *tensor.RawTensor { return a.inner.Exp(x) },
		func(out *tensor.RawTensor) ops.Operation { return ops.NewExp(x, out) })
}

func (a *Backend[B]) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return a.record(x,
		func() *tensor.RawTensor { return a.inner.Log(x) },
		func(out *tensor.RawTensor) ops.Operation { return ops.NewLog(x, out) })
}

func (a *Backend[B]) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return a.record(x,
		func() *tensor.RawTensor { return a.inner.ReLU(x) },
		func(out *tensor.RawTensor) ops.Operation { return ops.NewReLU(x, out) })
}

func (a *Backend[B]) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return a.record(x,
		func() *tensor.RawTensor { return a.inner.Softmax(x, dim) },
		func(out *tensor.RawTensor) ops.Operation { return ops.NewSoftmax(x, out, dim) })
}

func (a *Backend[B]) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	return a.record(x,
		func() *tensor.RawTensor { return a.inner.Sum(x) },
		func(out *tensor.RawTensor) ops.Operation { return ops.NewSum(x, out) })
}

func (a *Backend[B]) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return a.record(x,
		func() *tensor.RawTensor { return a.inner.SumDim(x, dim, keepDim) },
		func(out *tensor.RawTensor) ops.Operation { return ops.NewSumDim(x, out, dim, keepDim) })
}

func (a *Backend[B]) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return a.record(x,
		func() *tensor.RawTensor { return a.inner.MeanDim(x, dim, keepDim) },
		func(out *tensor.RawTensor) ops.Operation { return ops.NewMeanDim(x, out, dim, keepDim) })
}

func (a *Backend[B]) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	return a.record(x,
		func() *tensor.RawTensor { return a.inner.Reshape(x, shape) },
		func(out *tensor.RawTensor) ops.Operation { return ops.NewReshape(x, out) })
}

func (a *Backend[B]) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	return a.record(x,
		func() *tensor.RawTensor { return a.inner.Transpose(x, axes...) },
		func(out *tensor.RawTensor) ops.Operation { return ops.NewTranspose(x, out, axes) })
}

func (a *Backend[B]) Narrow(x *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	return a.record(x,
		func() *tensor.RawTensor { return a.inner.Narrow(x, dim, start, length) },
		func(out *tensor.RawTensor) ops.Operation { return ops.NewNarrow(x, out, dim, start, length) })
}

// CrossEntropy requires the inner backend to provide the fused kernel.
func (a *Backend[B]) CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	ce, ok := any(a.inner).(tensor.CrossEntropyBackend)
	if !ok {
		panic(fmt.Sprintf("backend %s does not implement CrossEntropy", a.inner.Name()))
	}
	return a.record(logits,
		func() *tensor.RawTensor { return ce.CrossEntropy(logits, targets) },
		func(out *tensor.RawTensor) ops.Operation {
			return ops.NewCrossEntropy(logits, targets, out, a.inner)
		})
}

// Argmax passes through unrecorded: index selection has no useful gradient.
func (a *Backend[B]) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return a.inner.Argmax(x, dim)
}

// Cast passes through unrecorded; casts appear only on the data path.
func (a *Backend[B]) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	return a.inner.Cast(x, dtype)
}
