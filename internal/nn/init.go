package nn

import (
	"math"
	"math/rand"

	"github.com/abacus-ml/abacus/internal/tensor"
)

// XavierUniform fills t with values drawn from U(-limit, limit) where
// limit = sqrt(6 / (fanIn + fanOut)). Keeps activation variance roughly
// constant across layers with symmetric activations.
func XavierUniform[B tensor.Backend](t *tensor.Tensor[float32, B], fanIn, fanOut int) {
	limit := float32(math.Sqrt(6.0 / float64(fanIn+fanOut)))
	data := t.Data()
	for i := range data {
		data[i] = (rand.Float32()*2 - 1) * limit
	}
}

// KaimingNormal fills t with values drawn from N(0, sqrt(2 / fanIn)),
// matched to ReLU activations.
func KaimingNormal[B tensor.Backend](t *tensor.Tensor[float32, B], fanIn int) {
	std := math.Sqrt(2.0 / float64(fanIn))
	data := t.Data()
	for i := range data {
		data[i] = float32(rand.NormFloat64() * std)
	}
}
