package cpu

import (
	"fmt"
	"math"

	"github.com/abacus-ml/abacus/internal/tensor"
)

// CrossEntropy computes mean cross-entropy loss from raw logits and int32
// class indices, fusing softmax and negative log-likelihood. The log-sum-exp
// is max-shifted, so the loss stays finite for any logit magnitude.
//
// logits has shape [batch, classes], targets has shape [batch]; the result
// is a single-element tensor of the logits' dtype.
func (c *Backend) CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	ls, ts := logits.Shape(), targets.Shape()
	if len(ls) != 2 {
		panic(fmt.Sprintf("cross_entropy: logits must be 2D, got %v", ls))
	}
	if len(ts) != 1 || ts[0] != ls[0] {
		panic(fmt.Sprintf("cross_entropy: targets must have shape [%d], got %v", ls[0], ts))
	}
	if targets.DType() != tensor.Int32 {
		panic(fmt.Sprintf("cross_entropy: targets must be int32, got %s", targets.DType()))
	}

	batch, classes := ls[0], ls[1]
	idx := targets.AsInt32()
	out := mustRaw(tensor.Shape{1}, logits.DType(), c.device)

	switch logits.DType() {
	case tensor.Float32:
		out.AsFloat32()[0] = crossEntropyKernel(logits.AsFloat32(), idx, batch, classes)
	case tensor.Float64:
		out.AsFloat64()[0] = crossEntropyKernel(logits.AsFloat64(), idx, batch, classes)
	default:
		panic(fmt.Sprintf("cross_entropy: unsupported dtype %s", logits.DType()))
	}
	return out
}

func crossEntropyKernel[T ~float32 | ~float64](logits []T, targets []int32, batch, classes int) T {
	var total float64
	for b := 0; b < batch; b++ {
		row := logits[b*classes : (b+1)*classes]
		t := int(targets[b])
		if t < 0 || t >= classes {
			panic(fmt.Sprintf("cross_entropy: target %d out of range for %d classes", t, classes))
		}

		maxV := row[0]
		for _, v := range row[1:] {
			if v > maxV {
				maxV = v
			}
		}
		var sum float64
		for _, v := range row {
			sum += math.Exp(float64(v - maxV))
		}
		// loss_b = log(sum exp(x - max)) - (x_t - max)
		total += math.Log(sum) - float64(row[t]-maxV)
	}
	return T(total / float64(batch))
}
