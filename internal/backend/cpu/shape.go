package cpu

import (
	"fmt"

	"github.com/abacus-ml/abacus/internal/tensor"
)

// Reshape returns a tensor with the same elements and a new shape. Buffers
// are contiguous so a flat copy preserves element order.
func (c *Backend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	if newShape.NumElements() != t.NumElements() {
		panic(fmt.Sprintf("reshape: cannot view %v (%d elements) as %v (%d elements)",
			t.Shape(), t.NumElements(), newShape, newShape.NumElements()))
	}

	out := mustRaw(newShape, t.DType(), c.device)
	copy(out.Bytes(), t.Bytes())
	return out
}

// Transpose permutes dimensions; with no axes it reverses them all.
// The result is materialized contiguously.
func (c *Backend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	nd := len(shape)

	if len(axes) == 0 {
		axes = make([]int, nd)
		for i := range axes {
			axes[i] = nd - 1 - i
		}
	}
	if len(axes) != nd {
		panic(fmt.Sprintf("transpose: got %d axes for %d dimensions", len(axes), nd))
	}
	seen := make([]bool, nd)
	for _, ax := range axes {
		if ax < 0 || ax >= nd || seen[ax] {
			panic(fmt.Sprintf("transpose: invalid axes %v for %d dimensions", axes, nd))
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, nd)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}
	out := mustRaw(newShape, t.DType(), c.device)

	srcStrides := shape.ComputeStrides()
	// Stride to take in the source when stepping output dimension i.
	permStrides := make([]int, nd)
	for i, ax := range axes {
		permStrides[i] = srcStrides[ax]
	}

	elem := t.DType().Size()
	srcB, dstB := t.Bytes(), out.Bytes()
	coords := make([]int, nd)
	si := 0
	for di := 0; di < out.NumElements(); di++ {
		copy(dstB[di*elem:(di+1)*elem], srcB[si*elem:(si+1)*elem])

		for d := nd - 1; d >= 0; d-- {
			coords[d]++
			si += permStrides[d]
			if coords[d] < newShape[d] {
				break
			}
			coords[d] = 0
			si -= permStrides[d] * newShape[d]
		}
	}
	return out
}

// Narrow copies length elements starting at start along dim, keeping the
// other dimensions intact. Out-of-range arguments panic.
func (c *Backend) Narrow(t *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	shape := t.Shape()
	dim = normalizeDim(dim, len(shape), "narrow")
	if length <= 0 {
		panic(fmt.Sprintf("narrow: length must be positive, got %d", length))
	}
	if start < 0 || start+length > shape[dim] {
		panic(fmt.Sprintf("narrow: range [%d, %d) out of bounds for dimension %d (size %d)",
			start, start+length, dim, shape[dim]))
	}

	newShape := shape.Clone()
	newShape[dim] = length
	out := mustRaw(newShape, t.DType(), c.device)

	// Row-major layout: the slice is a strided sequence of contiguous runs of
	// inner*length elements, one per index of the outer dimensions.
	inner := 1
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	outer := 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}

	elem := t.DType().Size()
	run := length * inner * elem
	srcStep := shape[dim] * inner * elem
	srcOff := start * inner * elem
	srcB, dstB := t.Bytes(), out.Bytes()
	for o := 0; o < outer; o++ {
		copy(dstB[o*run:(o+1)*run], srcB[o*srcStep+srcOff:o*srcStep+srcOff+run])
	}
	return out
}
