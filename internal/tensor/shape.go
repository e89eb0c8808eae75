package tensor

import "fmt"

// Shape holds the dimension sizes of a tensor, outermost first.
type Shape []int

// NumElements returns the total number of elements. A zero-length shape is a
// scalar with one element.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate reports an error if any dimension is not positive.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("dimension %d is %d, must be > 0", i, dim)
		}
	}
	return nil
}

// Equal reports whether two shapes have identical dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// ComputeStrides returns row-major strides: stride[i] is the flat distance
// between consecutive elements along dimension i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}
	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// BroadcastShapes resolves two shapes under NumPy broadcasting rules:
// dimensions are compared right-to-left and are compatible when equal or when
// one of them is 1; missing leading dimensions count as 1.
//
// Returns the broadcast result shape, whether any expansion is required, and
// an error when the shapes are incompatible.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	n := max(len(a), len(b))
	out := make(Shape, n)
	expand := false

	for i := 0; i < n; i++ {
		ad, bd := 1, 1
		if j := len(a) - 1 - i; j >= 0 {
			ad = a[j]
		}
		if j := len(b) - 1 - i; j >= 0 {
			bd = b[j]
		}

		switch {
		case ad == bd:
			out[n-1-i] = ad
		case ad == 1:
			out[n-1-i] = bd
			expand = true
		case bd == 1:
			out[n-1-i] = ad
			expand = true
		default:
			return nil, false, fmt.Errorf("cannot broadcast %v with %v (dim %d: %d vs %d)",
				a, b, n-1-i, ad, bd)
		}
	}

	return out, expand, nil
}
