package cpu

import (
	"fmt"

	"github.com/abacus-ml/abacus/internal/tensor"
)

// Cast converts elements to another dtype, e.g. uint8 pixels to float32.
func (c *Backend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if x.DType() == dtype {
		return x.Clone()
	}
	out := mustRaw(x.Shape(), dtype, c.device)

	src := asFloat64s(x)
	switch dtype {
	case tensor.Float32:
		dst := out.AsFloat32()
		for i, v := range src {
			dst[i] = float32(v)
		}
	case tensor.Float64:
		copy(out.AsFloat64(), src)
	case tensor.Int32:
		dst := out.AsInt32()
		for i, v := range src {
			dst[i] = int32(v)
		}
	case tensor.Int64:
		dst := out.AsInt64()
		for i, v := range src {
			dst[i] = int64(v)
		}
	case tensor.Uint8:
		dst := out.AsUint8()
		for i, v := range src {
			dst[i] = uint8(v)
		}
	default:
		panic(fmt.Sprintf("cast: unsupported target dtype %s", dtype))
	}
	return out
}

// asFloat64s widens any supported dtype to float64, the common currency for
// cast conversions. All source dtypes fit without loss except int64 values
// above 2^53, which the MNIST-scale workloads here never produce.
func asFloat64s(x *tensor.RawTensor) []float64 {
	n := x.NumElements()
	out := make([]float64, n)
	switch x.DType() {
	case tensor.Float32:
		for i, v := range x.AsFloat32() {
			out[i] = float64(v)
		}
	case tensor.Float64:
		copy(out, x.AsFloat64())
	case tensor.Int32:
		for i, v := range x.AsInt32() {
			out[i] = float64(v)
		}
	case tensor.Int64:
		for i, v := range x.AsInt64() {
			out[i] = float64(v)
		}
	case tensor.Uint8:
		for i, v := range x.AsUint8() {
			out[i] = float64(v)
		}
	default:
		panic(fmt.Sprintf("cast: unsupported source dtype %s", x.DType()))
	}
	return out
}
