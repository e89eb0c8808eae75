package cpu

import (
	"fmt"
	"math"

	"github.com/abacus-ml/abacus/internal/tensor"
)

// Exp applies the element-wise exponential.
func (c *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryFloat("exp", x, math.Exp)
}

// Log applies the element-wise natural logarithm.
func (c *Backend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryFloat("log", x, math.Log)
}

// ReLU applies max(0, x) element-wise.
func (c *Backend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryFloat("relu", x, func(v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	})
}

func (c *Backend) unaryFloat(name string, x *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	out := x
	if !x.IsUnique() {
		out = mustRaw(x.Shape(), x.DType(), c.device)
	}
	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), out.AsFloat32()
		for i, v := range src {
			dst[i] = float32(f(float64(v)))
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), out.AsFloat64()
		for i, v := range src {
			dst[i] = f(v)
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}
	return out
}

// Softmax normalizes scores to probabilities along dim. The maximum of each
// group is subtracted before exponentiation so large logits cannot overflow.
func (c *Backend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	dim = normalizeDim(dim, len(x.Shape()), "softmax")
	out := mustRaw(x.Shape(), x.DType(), c.device)

	switch x.DType() {
	case tensor.Float32:
		softmaxKernel(out.AsFloat32(), x.AsFloat32(), x.Shape(), dim)
	case tensor.Float64:
		softmaxKernel(out.AsFloat64(), x.AsFloat64(), x.Shape(), dim)
	default:
		panic(fmt.Sprintf("softmax: unsupported dtype %s", x.DType()))
	}
	return out
}

func softmaxKernel[T ~float32 | ~float64](dst, src []T, shape tensor.Shape, dim int) {
	forEachLane(shape, dim, func(base, stride, n int) {
		maxV := src[base]
		for i := 1; i < n; i++ {
			if v := src[base+i*stride]; v > maxV {
				maxV = v
			}
		}

		var sum T
		for i := 0; i < n; i++ {
			e := T(math.Exp(float64(src[base+i*stride] - maxV)))
			dst[base+i*stride] = e
			sum += e
		}
		for i := 0; i < n; i++ {
			dst[base+i*stride] /= sum
		}
	})
}

// forEachLane calls f once per 1D lane running along dim, passing the lane's
// base offset, the stride between its elements and its length.
func forEachLane(shape tensor.Shape, dim int, f func(base, stride, n int)) {
	strides := shape.ComputeStrides()
	outer := 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	inner := 1
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			f(o*shape[dim]*inner+in, strides[dim], shape[dim])
		}
	}
}

func normalizeDim(dim, nd int, op string) int {
	if dim < 0 {
		dim += nd
	}
	if dim < 0 || dim >= nd {
		panic(fmt.Sprintf("%s: dim %d out of range for %d dimensions", op, dim, nd))
	}
	return dim
}
