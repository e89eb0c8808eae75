package cpu

import "github.com/abacus-ml/abacus/internal/tensor"

// number covers the element types the element-wise kernels operate on.
type number interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8
}

func binaryKernel[T number](op binOp, dst, a, b []T) {
	switch op {
	case opAdd:
		for i := range dst {
			dst[i] = a[i] + b[i]
		}
	case opSub:
		for i := range dst {
			dst[i] = a[i] - b[i]
		}
	case opMul:
		for i := range dst {
			dst[i] = a[i] * b[i]
		}
	case opDiv:
		for i := range dst {
			dst[i] = a[i] / b[i]
		}
	}
}

// broadcastKernel evaluates dst = a op b where a and b broadcast to dst's
// shape. Source offsets are walked with per-dimension strides, using stride 0
// for broadcast dimensions so the same element repeats.
func broadcastKernel[T number](op binOp, dst, a, b []T, outShape, aShape, bShape tensor.Shape) {
	aStride := broadcastStrides(aShape, outShape)
	bStride := broadcastStrides(bShape, outShape)

	nd := len(outShape)
	coords := make([]int, nd)
	ai, bi := 0, 0
	for i := range dst {
		switch op {
		case opAdd:
			dst[i] = a[ai] + b[bi]
		case opSub:
			dst[i] = a[ai] - b[bi]
		case opMul:
			dst[i] = a[ai] * b[bi]
		case opDiv:
			dst[i] = a[ai] / b[bi]
		}

		// Advance the coordinate counter, carrying from the last dimension.
		for d := nd - 1; d >= 0; d-- {
			coords[d]++
			ai += aStride[d]
			bi += bStride[d]
			if coords[d] < outShape[d] {
				break
			}
			coords[d] = 0
			ai -= aStride[d] * outShape[d]
			bi -= bStride[d] * outShape[d]
		}
	}
}

// broadcastStrides aligns shape's row-major strides to the trailing
// dimensions of out, zeroing the stride wherever the source dimension is 1.
func broadcastStrides(shape, out tensor.Shape) []int {
	src := shape.ComputeStrides()
	aligned := make([]int, len(out))
	offset := len(out) - len(shape)
	for i := range out {
		j := i - offset
		if j >= 0 && shape[j] != 1 {
			aligned[i] = src[j]
		}
	}
	return aligned
}
