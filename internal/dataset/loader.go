package dataset

import (
	"fmt"
	"math/rand"

	"github.com/abacus-ml/abacus/internal/tensor"
)

// Loader serves mini-batches of a split as tensors: images normalized to
// [0, 1] with shape [batch, rows*cols] and int32 labels with shape [batch].
type Loader[B tensor.Backend] struct {
	data    *MNIST
	backend B

	batchSize int
	shuffle   bool
	rng       *rand.Rand

	order  []int
	cursor int
}

// NewLoader creates a Loader over data. With shuffle, the sample order is
// re-drawn each epoch from the seeded source.
func NewLoader[B tensor.Backend](data *MNIST, b B, batchSize int, shuffle bool, seed int64) (*Loader[B], error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	if data.Count == 0 {
		return nil, fmt.Errorf("empty dataset")
	}

	l := &Loader[B]{
		data:      data,
		backend:   b,
		batchSize: batchSize,
		shuffle:   shuffle,
		rng:       rand.New(rand.NewSource(seed)),
	}
	l.Reset()
	return l, nil
}

// NumBatches returns how many batches one epoch yields, counting the short
// final batch.
func (l *Loader[B]) NumBatches() int {
	return (l.data.Count + l.batchSize - 1) / l.batchSize
}

// NumSamples returns the total sample count.
func (l *Loader[B]) NumSamples() int { return l.data.Count }

// Reset rewinds to the start of an epoch, reshuffling if enabled.
func (l *Loader[B]) Reset() {
	if l.order == nil {
		l.order = make([]int, l.data.Count)
		for i := range l.order {
			l.order[i] = i
		}
	}
	if l.shuffle {
		l.rng.Shuffle(len(l.order), func(i, j int) {
			l.order[i], l.order[j] = l.order[j], l.order[i]
		})
	}
	l.cursor = 0
}

// Next returns the next batch, or ok=false at the end of the epoch. The
// final batch may be shorter than the configured batch size.
func (l *Loader[B]) Next() (images *tensor.Tensor[float32, B], labels *tensor.Tensor[int32, B], ok bool) {
	if l.cursor >= l.data.Count {
		return nil, nil, false
	}

	n := min(l.batchSize, l.data.Count-l.cursor)
	pixels := l.data.Rows * l.data.Cols

	images = tensor.Zeros[float32](tensor.Shape{n, pixels}, l.backend)
	labels = tensor.Zeros[int32](tensor.Shape{n}, l.backend)
	img := images.Data()
	lab := labels.Data()

	for i := 0; i < n; i++ {
		sample := l.order[l.cursor+i]
		src := l.data.Images[sample*pixels : (sample+1)*pixels]
		dst := img[i*pixels : (i+1)*pixels]
		for j, p := range src {
			dst[j] = float32(p) / 255.0
		}
		lab[i] = int32(l.data.Labels[sample])
	}

	l.cursor += n
	return images, labels, true
}

// Split divides a dataset into two parts, the first holding n samples.
// Useful for carving a validation set off the training split.
func Split(data *MNIST, n int) (*MNIST, *MNIST, error) {
	if n <= 0 || n >= data.Count {
		return nil, nil, fmt.Errorf("split size %d out of range (0, %d)", n, data.Count)
	}
	pixels := data.Rows * data.Cols

	first := &MNIST{
		Images: data.Images[:n*pixels],
		Labels: data.Labels[:n],
		Count:  n,
		Rows:   data.Rows,
		Cols:   data.Cols,
	}
	second := &MNIST{
		Images: data.Images[n*pixels:],
		Labels: data.Labels[n:],
		Count:  data.Count - n,
		Rows:   data.Rows,
		Cols:   data.Cols,
	}
	return first, second, nil
}
