package ops

import "github.com/abacus-ml/abacus/internal/tensor"

// CrossEntropy records the fused softmax + negative log-likelihood loss.
// The softmax probabilities are recomputed once here and saved, giving the
// closed-form gradient (softmax(x) - onehot(t)) / batch without ever
// materializing the intermediate graph nodes.
type CrossEntropy struct {
	logits, targets, out *tensor.RawTensor
	probs                *tensor.RawTensor
}

func NewCrossEntropy(logits, targets, out *tensor.RawTensor, b tensor.Backend) *CrossEntropy {
	return &CrossEntropy{
		logits:  logits,
		targets: targets,
		out:     out,
		probs:   b.Softmax(logits, 1),
	}
}

func (op *CrossEntropy) Name() string { return "cross_entropy" }
func (op *CrossEntropy) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.logits, op.targets}
}
func (op *CrossEntropy) Output() *tensor.RawTensor { return op.out }

// Backward returns (probs - onehot(targets)) / batch scaled by the incoming
// scalar gradient. The integer targets get a nil gradient.
func (op *CrossEntropy) Backward(grad *tensor.RawTensor, b tensor.Backend) []*tensor.RawTensor {
	batch, classes := op.logits.Shape()[0], op.logits.Shape()[1]
	scale := scalarOf(grad) / float64(batch)

	out, err := tensor.NewRaw(op.logits.Shape(), op.logits.DType(), op.logits.Device())
	if err != nil {
		panic(err)
	}
	idx := op.targets.AsInt32()

	switch op.logits.DType() {
	case tensor.Float32:
		probs, dst := op.probs.AsFloat32(), out.AsFloat32()
		for i := range dst {
			dst[i] = probs[i] * float32(scale)
		}
		for row := 0; row < batch; row++ {
			dst[row*classes+int(idx[row])] -= float32(scale)
		}
	case tensor.Float64:
		probs, dst := op.probs.AsFloat64(), out.AsFloat64()
		for i := range dst {
			dst[i] = probs[i] * scale
		}
		for row := 0; row < batch; row++ {
			dst[row*classes+int(idx[row])] -= scale
		}
	default:
		panic("cross_entropy backward: float dtypes only")
	}
	return []*tensor.RawTensor{out, nil}
}
