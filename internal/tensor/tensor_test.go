package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abacus-ml/abacus/internal/backend/cpu"
	"github.com/abacus-ml/abacus/internal/tensor"
)

func TestShapeNumElements(t *testing.T) {
	assert.Equal(t, 24, tensor.Shape{2, 3, 4}.NumElements())
	assert.Equal(t, 1, tensor.Shape{}.NumElements(), "scalar shape has one element")
}

func TestShapeValidate(t *testing.T) {
	assert.NoError(t, tensor.Shape{2, 3}.Validate())
	assert.Error(t, tensor.Shape{2, 0}.Validate())
	assert.Error(t, tensor.Shape{-1}.Validate())
}

func TestComputeStrides(t *testing.T) {
	assert.Equal(t, []int{12, 4, 1}, tensor.Shape{2, 3, 4}.ComputeStrides())
	assert.Equal(t, []int{1}, tensor.Shape{5}.ComputeStrides())
}

func TestBroadcastShapes(t *testing.T) {
	cases := []struct {
		a, b, want tensor.Shape
		expand     bool
	}{
		{tensor.Shape{2, 3}, tensor.Shape{2, 3}, tensor.Shape{2, 3}, false},
		{tensor.Shape{2, 3}, tensor.Shape{3}, tensor.Shape{2, 3}, true},
		{tensor.Shape{2, 1}, tensor.Shape{2, 3}, tensor.Shape{2, 3}, true},
		{tensor.Shape{4, 1, 3}, tensor.Shape{2, 1}, tensor.Shape{4, 2, 3}, true},
	}
	for _, tc := range cases {
		got, expand, err := tensor.BroadcastShapes(tc.a, tc.b)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%v x %v", tc.a, tc.b)
		assert.Equal(t, tc.expand, expand)
	}

	_, _, err := tensor.BroadcastShapes(tensor.Shape{2, 3}, tensor.Shape{2, 4})
	assert.Error(t, err)
}

func TestDataTypeSize(t *testing.T) {
	assert.Equal(t, 4, tensor.Float32.Size())
	assert.Equal(t, 8, tensor.Float64.Size())
	assert.Equal(t, 1, tensor.Uint8.Size())
	assert.Equal(t, tensor.Float32, tensor.TypeOf[float32]())
	assert.Equal(t, tensor.Int64, tensor.TypeOf[int64]())
}

func TestParseDevice(t *testing.T) {
	dev, err := tensor.ParseDevice("cpu")
	require.NoError(t, err)
	assert.Equal(t, tensor.CPU, dev)
	assert.True(t, dev.Available())

	dev, err = tensor.ParseDevice("cuda")
	require.NoError(t, err)
	assert.False(t, dev.Available())

	_, err = tensor.ParseDevice("tpu")
	assert.Error(t, err)
}

func TestNewRawRejectsUnavailableDevice(t *testing.T) {
	_, err := tensor.NewRaw(tensor.Shape{2}, tensor.Float32, tensor.CUDA)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cuda")
}

func TestRawCloneSharesBuffer(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{4}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	assert.True(t, raw.IsUnique())

	clone := raw.Clone()
	assert.False(t, raw.IsUnique())
	raw.AsFloat32()[0] = 7
	assert.Equal(t, float32(7), clone.AsFloat32()[0], "clone shares memory")
}

func TestRawDtypeViewPanics(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	assert.Panics(t, func() { raw.AsInt32() })
}

func TestFromSlice(t *testing.T) {
	b := cpu.New()
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, b)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3}, x.Shape())
	assert.Equal(t, float32(6), x.At(1, 2))

	_, err = tensor.FromSlice([]float32{1, 2}, tensor.Shape{2, 3}, b)
	assert.Error(t, err)
}

func TestAtSetItem(t *testing.T) {
	b := cpu.New()
	x := tensor.Zeros[float32](tensor.Shape{2, 2}, b)
	x.Set(5, 1, 0)
	assert.Equal(t, float32(5), x.At(1, 0))
	assert.Panics(t, func() { x.At(2, 0) })
	assert.Panics(t, func() { x.At(0) }, "wrong index count")

	one := tensor.Full[float32](tensor.Shape{1}, 3, b)
	assert.Equal(t, float32(3), one.Item())
	assert.Panics(t, func() { x.Item() })
}

func TestCreation(t *testing.T) {
	b := cpu.New()

	assert.Equal(t, []float32{1, 1, 1}, tensor.Ones[float32](tensor.Shape{3}, b).Data())
	assert.Equal(t, []float32{7, 7}, tensor.Full[float32](tensor.Shape{2}, 7, b).Data())
	assert.Equal(t, []float32{0, 1, 2, 3}, tensor.Arange[float32](0, 4, b).Data())
	assert.Equal(t, []float32{1, 0, 0, 1}, tensor.Eye[float32](2, b).Data())

	r := tensor.Rand[float32](tensor.Shape{100}, b)
	for _, v := range r.Data() {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.Less(t, v, float32(1))
	}
}

func TestCloneIsDeep(t *testing.T) {
	b := cpu.New()
	x, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, b)
	require.NoError(t, err)

	y := x.Clone()
	y.Data()[0] = 99
	assert.Equal(t, float32(1), x.Data()[0])
}

func TestDetachStripsGradTracking(t *testing.T) {
	b := cpu.New()
	x := tensor.Zeros[float32](tensor.Shape{2}, b).RequireGrad()
	assert.True(t, x.RequiresGrad())

	d := x.Detach()
	assert.False(t, d.RequiresGrad())
	d.Data()[0] = 4
	assert.Equal(t, float32(4), x.Data()[0], "detached tensor shares data")
}

func TestTypedOpsDispatch(t *testing.T) {
	b := cpu.New()
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, b)
	require.NoError(t, err)

	assert.Equal(t, float32(10), x.Sum().Item())
	assert.Equal(t, []int32{1, 1}, x.Argmax(1).Data())
	assert.Equal(t, []float32{1, 3, 2, 4}, x.T().Data())
	assert.Equal(t, []float32{3, 4}, x.Narrow(0, 1, 1).Data())
	assert.Panics(t, func() { x.Reshape(3, 3) })

	// Element-wise ops reuse the left operand's buffer when they can.
	doubled := x.Clone()
	assert.Equal(t, []float32{2, 4, 6, 8}, doubled.Add(x).Data())
	assert.Equal(t, []float32{1, 2, 3, 4}, x.Data())
}
