package nn

import (
	"fmt"

	"github.com/abacus-ml/abacus/internal/tensor"
)

// CrossEntropy computes mean cross-entropy loss from raw logits of shape
// [batch, classes] and int32 class indices of shape [batch]. The backend
// must provide the fused kernel; composing softmax and log by hand loses
// precision for confident predictions and wastes an allocation per op.
func CrossEntropy[B tensor.Backend](logits *tensor.Tensor[float32, B], targets *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	ce, ok := any(logits.Backend()).(tensor.CrossEntropyBackend)
	if !ok {
		panic(fmt.Sprintf("backend %s does not implement CrossEntropy", logits.Backend().Name()))
	}
	return tensor.New[float32](ce.CrossEntropy(logits.Raw(), targets.Raw()), logits.Backend())
}

// Accuracy returns the fraction of rows where the argmax of the logits
// matches the target class.
func Accuracy[B tensor.Backend](logits *tensor.Tensor[float32, B], targets *tensor.Tensor[int32, B]) float64 {
	pred := logits.Argmax(1).Data()
	want := targets.Data()
	if len(pred) != len(want) {
		panic(fmt.Sprintf("accuracy: %d predictions vs %d targets", len(pred), len(want)))
	}
	if len(want) == 0 {
		return 0
	}

	correct := 0
	for i := range pred {
		if pred[i] == want[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(want))
}
