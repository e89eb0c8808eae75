package ops

import "github.com/abacus-ml/abacus/internal/tensor"

// reduceBroadcast folds a gradient back to the shape of a broadcast input by
// summing over every expanded dimension. Without this, gradients for a bias
// of shape [10] added to activations of shape [64, 10] would keep the batch
// dimension.
func reduceBroadcast(grad *tensor.RawTensor, inShape tensor.Shape, b tensor.Backend) *tensor.RawTensor {
	gradShape := grad.Shape()
	if gradShape.Equal(inShape) {
		return grad
	}

	// Sum away leading dimensions the input never had.
	for len(grad.Shape()) > len(inShape) {
		grad = b.SumDim(grad, 0, false)
	}

	// Sum over dimensions the input holds with size 1.
	for i, dim := range inShape {
		if dim == 1 && grad.Shape()[i] != 1 {
			grad = b.SumDim(grad, i, true)
		}
	}

	if !grad.Shape().Equal(inShape) {
		grad = b.Reshape(grad, inShape)
	}
	return grad
}

// fill allocates a tensor of the given shape with every element set to v.
func fill(shape tensor.Shape, dtype tensor.DataType, device tensor.Device, v float64) *tensor.RawTensor {
	raw, err := tensor.NewRaw(shape, dtype, device)
	if err != nil {
		panic(err)
	}
	switch dtype {
	case tensor.Float32:
		data := raw.AsFloat32()
		for i := range data {
			data[i] = float32(v)
		}
	case tensor.Float64:
		data := raw.AsFloat64()
		for i := range data {
			data[i] = v
		}
	default:
		panic("fill: float dtypes only")
	}
	return raw
}

// Ones returns an all-ones tensor, used to seed the backward pass.
func Ones(shape tensor.Shape, dtype tensor.DataType, device tensor.Device) *tensor.RawTensor {
	return fill(shape, dtype, device, 1)
}
