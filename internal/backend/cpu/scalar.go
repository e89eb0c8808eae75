package cpu

import (
	"fmt"

	"github.com/abacus-ml/abacus/internal/tensor"
)

// AddScalar adds a scalar to every element.
func (c *Backend) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return c.scalarOp("add_scalar", x, scalar, func(v, s float64) float64 { return v + s })
}

// MulScalar multiplies every element by a scalar.
func (c *Backend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return c.scalarOp("mul_scalar", x, scalar, func(v, s float64) float64 { return v * s })
}

func (c *Backend) scalarOp(name string, x *tensor.RawTensor, scalar float64, f func(v, s float64) float64) *tensor.RawTensor {
	out := x
	if !x.IsUnique() {
		out = mustRaw(x.Shape(), x.DType(), c.device)
	}
	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), out.AsFloat32()
		for i, v := range src {
			dst[i] = float32(f(float64(v), scalar))
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), out.AsFloat64()
		for i, v := range src {
			dst[i] = f(v, scalar)
		}
	case tensor.Int32:
		src, dst := x.AsInt32(), out.AsInt32()
		for i, v := range src {
			dst[i] = int32(f(float64(v), scalar))
		}
	case tensor.Int64:
		src, dst := x.AsInt64(), out.AsInt64()
		for i, v := range src {
			dst[i] = int64(f(float64(v), scalar))
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}
	return out
}
