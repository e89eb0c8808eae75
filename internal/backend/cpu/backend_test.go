package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abacus-ml/abacus/internal/tensor"
)

func rawFrom(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), data)
	return raw
}

func rawInt32(t *testing.T, data []int32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Int32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsInt32(), data)
	return raw
}

func TestAddSameShape(t *testing.T) {
	b := New()
	x := rawFrom(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	y := rawFrom(t, []float32{10, 20, 30, 40}, tensor.Shape{2, 2})

	out := b.Add(x, y)
	assert.Equal(t, []float32{11, 22, 33, 44}, out.AsFloat32())
}

func TestAddInPlaceWhenUnique(t *testing.T) {
	b := New()
	x := rawFrom(t, []float32{1, 2}, tensor.Shape{2})
	y := rawFrom(t, []float32{3, 4}, tensor.Shape{2})

	out := b.Add(x, y)
	assert.Same(t, x, out, "unique left operand should be reused")
}

func TestAddCopiesWhenShared(t *testing.T) {
	b := New()
	x := rawFrom(t, []float32{1, 2}, tensor.Shape{2})
	y := rawFrom(t, []float32{3, 4}, tensor.Shape{2})
	release := x.ForceNonUnique()
	defer release()

	out := b.Add(x, y)
	assert.NotSame(t, x, out)
	assert.Equal(t, []float32{1, 2}, x.AsFloat32(), "input must stay intact")
	assert.Equal(t, []float32{4, 6}, out.AsFloat32())
}

func TestAddBroadcastRow(t *testing.T) {
	b := New()
	x := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	bias := rawFrom(t, []float32{10, 20, 30}, tensor.Shape{3})

	out := b.Add(x, bias)
	assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
	assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, out.AsFloat32())
}

func TestAddBroadcastColumn(t *testing.T) {
	b := New()
	x := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	col := rawFrom(t, []float32{100, 200}, tensor.Shape{2, 1})

	out := b.Add(x, col)
	assert.Equal(t, []float32{101, 102, 103, 204, 205, 206}, out.AsFloat32())
}

func TestAddShapeMismatchPanics(t *testing.T) {
	b := New()
	x := rawFrom(t, []float32{1, 2, 3}, tensor.Shape{3})
	y := rawFrom(t, []float32{1, 2}, tensor.Shape{2})

	assert.Panics(t, func() { b.Add(x, y) })
}

func TestMulAndDiv(t *testing.T) {
	b := New()
	x := rawFrom(t, []float32{2, 6, 8}, tensor.Shape{3})
	y := rawFrom(t, []float32{2, 3, 4}, tensor.Shape{3})

	assert.Equal(t, []float32{4, 18, 32}, b.Mul(x.Clone(), y).AsFloat32())
	assert.Equal(t, []float32{1, 2, 2}, b.Div(x.Clone(), y).AsFloat32())
}

func TestMatMul(t *testing.T) {
	b := New()
	// (2, 3) @ (3, 2)
	x := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	y := rawFrom(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	out := b.MatMul(x, y)
	assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []float32{58, 64, 139, 154}, out.AsFloat32())
}

func TestMatMulIdentity(t *testing.T) {
	b := New()
	n := 37 // not a multiple of the block size
	x, err := tensor.NewRaw(tensor.Shape{n, n}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	eye, err := tensor.NewRaw(tensor.Shape{n, n}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	xs, es := x.AsFloat32(), eye.AsFloat32()
	for i := range xs {
		xs[i] = float32(i%13) - 6
	}
	for i := 0; i < n; i++ {
		es[i*n+i] = 1
	}

	out := b.MatMul(x, eye)
	assert.Equal(t, xs, out.AsFloat32())
}

func TestMatMulInnerDimMismatchPanics(t *testing.T) {
	b := New()
	x := rawFrom(t, make([]float32, 6), tensor.Shape{2, 3})
	y := rawFrom(t, make([]float32, 8), tensor.Shape{4, 2})

	assert.Panics(t, func() { b.MatMul(x, y) })
}

func TestSoftmax(t *testing.T) {
	b := New()
	x := rawFrom(t, []float32{1, 2, 3, 1, 1, 1}, tensor.Shape{2, 3})

	out := b.Softmax(x, 1).AsFloat32()

	// Rows sum to one.
	assert.InDelta(t, 1.0, float64(out[0]+out[1]+out[2]), 1e-6)
	assert.InDelta(t, 1.0, float64(out[3]+out[4]+out[5]), 1e-6)
	// Uniform logits give uniform probabilities.
	assert.InDelta(t, 1.0/3.0, float64(out[3]), 1e-6)
	// Larger logit, larger probability.
	assert.Greater(t, out[2], out[1])
	assert.Greater(t, out[1], out[0])
}

func TestSoftmaxLargeLogitsStable(t *testing.T) {
	b := New()
	x := rawFrom(t, []float32{1000, 1001, 1002}, tensor.Shape{1, 3})

	out := b.Softmax(x, 1).AsFloat32()
	sum := out[0] + out[1] + out[2]
	assert.False(t, math.IsNaN(float64(sum)))
	assert.InDelta(t, 1.0, float64(sum), 1e-6)
}

func TestReLU(t *testing.T) {
	b := New()
	x := rawFrom(t, []float32{-2, -0.5, 0, 0.5, 2}, tensor.Shape{5})

	out := b.ReLU(x)
	assert.Equal(t, []float32{0, 0, 0, 0.5, 2}, out.AsFloat32())
}

func TestExpLog(t *testing.T) {
	b := New()
	x := rawFrom(t, []float32{0, 1, 2}, tensor.Shape{3})

	exp := b.Exp(x.Clone()).AsFloat32()
	assert.InDelta(t, 1.0, float64(exp[0]), 1e-6)
	assert.InDelta(t, math.E, float64(exp[1]), 1e-5)

	back := b.Log(rawFrom(t, exp, tensor.Shape{3})).AsFloat32()
	assert.InDelta(t, 0.0, float64(back[0]), 1e-6)
	assert.InDelta(t, 1.0, float64(back[1]), 1e-6)
	assert.InDelta(t, 2.0, float64(back[2]), 1e-6)
}

func TestSum(t *testing.T) {
	b := New()
	x := rawFrom(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})

	out := b.Sum(x)
	assert.Equal(t, tensor.Shape{1}, out.Shape())
	assert.Equal(t, float32(10), out.AsFloat32()[0])
}

func TestSumDim(t *testing.T) {
	b := New()
	x := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	cols := b.SumDim(x, 0, false)
	assert.Equal(t, tensor.Shape{3}, cols.Shape())
	assert.Equal(t, []float32{5, 7, 9}, cols.AsFloat32())

	rows := b.SumDim(x, 1, true)
	assert.Equal(t, tensor.Shape{2, 1}, rows.Shape())
	assert.Equal(t, []float32{6, 15}, rows.AsFloat32())
}

func TestMeanDim(t *testing.T) {
	b := New()
	x := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	out := b.MeanDim(x, 1, false)
	assert.Equal(t, []float32{2, 5}, out.AsFloat32())
}

func TestArgmax(t *testing.T) {
	b := New()
	x := rawFrom(t, []float32{0.1, 0.7, 0.2, 0.9, 0.05, 0.05}, tensor.Shape{2, 3})

	out := b.Argmax(x, 1)
	assert.Equal(t, tensor.Shape{2}, out.Shape())
	assert.Equal(t, []int32{1, 0}, out.AsInt32())
}

func TestReshape(t *testing.T) {
	b := New()
	x := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	out := b.Reshape(x, tensor.Shape{3, 2})
	assert.Equal(t, tensor.Shape{3, 2}, out.Shape())
	assert.Equal(t, x.AsFloat32(), out.AsFloat32())

	assert.Panics(t, func() { b.Reshape(x, tensor.Shape{4, 2}) })
}

func TestTranspose2D(t *testing.T) {
	b := New()
	x := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	out := b.Transpose(x)
	assert.Equal(t, tensor.Shape{3, 2}, out.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, out.AsFloat32())
}

func TestTransposeAxes(t *testing.T) {
	b := New()
	x := rawFrom(t, []float32{0, 1, 2, 3, 4, 5, 6, 7}, tensor.Shape{2, 2, 2})

	out := b.Transpose(x, 1, 0, 2)
	assert.Equal(t, tensor.Shape{2, 2, 2}, out.Shape())
	assert.Equal(t, []float32{0, 1, 4, 5, 2, 3, 6, 7}, out.AsFloat32())
}

func TestNarrow(t *testing.T) {
	b := New()
	x := rawFrom(t, []float32{
		0, 1, 2, 3,
		4, 5, 6, 7,
		8, 9, 10, 11,
	}, tensor.Shape{3, 4})

	row := b.Narrow(x, 0, 1, 1)
	assert.Equal(t, tensor.Shape{1, 4}, row.Shape())
	assert.Equal(t, []float32{4, 5, 6, 7}, row.AsFloat32())

	cols := b.Narrow(x, 1, 1, 2)
	assert.Equal(t, tensor.Shape{3, 2}, cols.Shape())
	assert.Equal(t, []float32{1, 2, 5, 6, 9, 10}, cols.AsFloat32())

	assert.Panics(t, func() { b.Narrow(x, 0, 2, 2) })
}

func TestCastUint8ToFloat32(t *testing.T) {
	b := New()
	raw, err := tensor.NewRaw(tensor.Shape{3}, tensor.Uint8, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsUint8(), []uint8{0, 128, 255})

	out := b.Cast(raw, tensor.Float32)
	assert.Equal(t, tensor.Float32, out.DType())
	assert.Equal(t, []float32{0, 128, 255}, out.AsFloat32())
}

func TestCrossEntropy(t *testing.T) {
	b := New()
	// Uniform logits over 4 classes: loss is ln(4) regardless of target.
	logits := rawFrom(t, make([]float32, 8), tensor.Shape{2, 4})
	targets := rawInt32(t, []int32{0, 3}, tensor.Shape{2})

	loss := b.CrossEntropy(logits, targets)
	assert.InDelta(t, math.Log(4), float64(loss.AsFloat32()[0]), 1e-6)
}

func TestCrossEntropyConfidentCorrect(t *testing.T) {
	b := New()
	logits := rawFrom(t, []float32{10, 0, 0}, tensor.Shape{1, 3})
	targets := rawInt32(t, []int32{0}, tensor.Shape{1})

	loss := float64(b.CrossEntropy(logits, targets).AsFloat32()[0])
	assert.Less(t, loss, 0.01)

	wrong := rawInt32(t, []int32{2}, tensor.Shape{1})
	assert.Greater(t, float64(b.CrossEntropy(logits, wrong).AsFloat32()[0]), 5.0)
}

func TestBlockSize(t *testing.T) {
	bs := blockSize(4)
	assert.GreaterOrEqual(t, bs, 8)
	assert.Zero(t, bs%8)
}

func TestFeaturesIncludeBrand(t *testing.T) {
	assert.NotEmpty(t, Features())
}
