package cpu

import (
	"fmt"

	"github.com/abacus-ml/abacus/internal/tensor"
)

// Sum reduces all elements to a single-element tensor of shape [1].
func (c *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	out := mustRaw(tensor.Shape{1}, x.DType(), c.device)
	switch x.DType() {
	case tensor.Float32:
		out.AsFloat32()[0] = sumAll(x.AsFloat32())
	case tensor.Float64:
		out.AsFloat64()[0] = sumAll(x.AsFloat64())
	case tensor.Int32:
		out.AsInt32()[0] = sumAll(x.AsInt32())
	case tensor.Int64:
		out.AsInt64()[0] = sumAll(x.AsInt64())
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", x.DType()))
	}
	return out
}

func sumAll[T number](xs []T) T {
	var s T
	for _, v := range xs {
		s += v
	}
	return s
}

// SumDim sums along dim. With keepDim the reduced dimension stays as size 1,
// otherwise it is dropped (a 1D input reduces to shape [1]).
func (c *Backend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return c.reduceDim("sum_dim", x, dim, keepDim, false)
}

// MeanDim averages along dim, with the same shape rules as SumDim.
func (c *Backend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return c.reduceDim("mean_dim", x, dim, keepDim, true)
}

func (c *Backend) reduceDim(name string, x *tensor.RawTensor, dim int, keepDim, mean bool) *tensor.RawTensor {
	shape := x.Shape()
	dim = normalizeDim(dim, len(shape), name)
	out := mustRaw(reducedShape(shape, dim, keepDim), x.DType(), c.device)

	switch x.DType() {
	case tensor.Float32:
		reduceKernel(out.AsFloat32(), x.AsFloat32(), shape, dim, mean)
	case tensor.Float64:
		reduceKernel(out.AsFloat64(), x.AsFloat64(), shape, dim, mean)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}
	return out
}

func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	if keepDim {
		out := shape.Clone()
		out[dim] = 1
		return out
	}
	out := make(tensor.Shape, 0, len(shape)-1)
	for i, d := range shape {
		if i != dim {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		out = tensor.Shape{1}
	}
	return out
}

func reduceKernel[T ~float32 | ~float64](dst, src []T, shape tensor.Shape, dim int, mean bool) {
	lane := 0
	forEachLane(shape, dim, func(base, stride, n int) {
		var s T
		for i := 0; i < n; i++ {
			s += src[base+i*stride]
		}
		if mean {
			s /= T(n)
		}
		dst[lane] = s
		lane++
	})
}

// Argmax returns int32 indices of the maximum along dim, with dim dropped
// from the output shape. Ties resolve to the first occurrence.
func (c *Backend) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim = normalizeDim(dim, len(shape), "argmax")
	out := mustRaw(reducedShape(shape, dim, false), tensor.Int32, c.device)

	switch x.DType() {
	case tensor.Float32:
		argmaxKernel(out.AsInt32(), x.AsFloat32(), shape, dim)
	case tensor.Float64:
		argmaxKernel(out.AsInt32(), x.AsFloat64(), shape, dim)
	case tensor.Int32:
		argmaxKernel(out.AsInt32(), x.AsInt32(), shape, dim)
	default:
		panic(fmt.Sprintf("argmax: unsupported dtype %s", x.DType()))
	}
	return out
}

func argmaxKernel[T number](dst []int32, src []T, shape tensor.Shape, dim int) {
	lane := 0
	forEachLane(shape, dim, func(base, stride, n int) {
		best, bestIdx := src[base], 0
		for i := 1; i < n; i++ {
			if v := src[base+i*stride]; v > best {
				best, bestIdx = v, i
			}
		}
		dst[lane] = int32(bestIdx)
		lane++
	})
}
