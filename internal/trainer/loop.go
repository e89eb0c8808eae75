// Package trainer runs the epoch loop: forward, loss, backward, step.
package trainer

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/abacus-ml/abacus/internal/autodiff"
	"github.com/abacus-ml/abacus/internal/dataset"
	"github.com/abacus-ml/abacus/internal/nn"
	"github.com/abacus-ml/abacus/internal/optim"
	"github.com/abacus-ml/abacus/internal/tensor"
)

// RunConfig controls a training run.
type RunConfig struct {
	Epochs   int
	LogEvery int // batches between progress lines
}

// Result summarizes a finished run.
type Result struct {
	FinalLoss     float64
	TestAccuracy  float64
	EpochsTrained int
}

// Run trains model on the train loader for the configured number of epochs,
// evaluating on the test loader after each one. It stops early when ctx is
// canceled or when the loss diverges to NaN; a NaN loss is an error, not a
// log line, because every later step would silently train on garbage.
func Run[B tensor.Backend](
	ctx context.Context,
	ad *autodiff.Backend[B],
	model nn.Module[*autodiff.Backend[B]],
	opt optim.Optimizer[*autodiff.Backend[B]],
	train, test *dataset.Loader[*autodiff.Backend[B]],
	cfg RunConfig,
) (*Result, error) {
	if cfg.Epochs <= 0 {
		return nil, fmt.Errorf("epochs must be positive, got %d", cfg.Epochs)
	}
	logEvery := cfg.LogEvery
	if logEvery <= 0 {
		logEvery = 100
	}

	params := model.Parameters()
	result := &Result{}
	var window Window

	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		train.Reset()
		batch := 0

		for {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			images, labels, ok := train.Next()
			if !ok {
				break
			}
			batch++

			start := time.Now()
			loss, err := trainStep(ad, model, opt, params, images, labels)
			if err != nil {
				return result, fmt.Errorf("epoch %d batch %d: %w", epoch, batch, err)
			}
			window.Observe(loss, images.Shape()[0], time.Since(start))
			result.FinalLoss = loss

			if batch%logEvery == 0 {
				s := window.Snapshot()
				log.Printf("train epoch=%d batch=%d/%d loss=%.4f avg_loss=%.4f samples_per_sec=%.0f",
					epoch, batch, train.NumBatches(), s.LastLoss, s.AvgLoss, s.SamplesPerSec)
			}
		}

		acc, err := Evaluate(ad, model, test)
		if err != nil {
			return result, fmt.Errorf("epoch %d eval: %w", epoch, err)
		}
		result.TestAccuracy = acc
		result.EpochsTrained = epoch
		log.Printf("eval epoch=%d accuracy=%.4f", epoch, acc)
	}
	return result, nil
}

func trainStep[B tensor.Backend](
	ad *autodiff.Backend[B],
	model nn.Module[*autodiff.Backend[B]],
	opt optim.Optimizer[*autodiff.Backend[B]],
	params []*nn.Parameter[*autodiff.Backend[B]],
	images *tensor.Tensor[float32, *autodiff.Backend[B]],
	labels *tensor.Tensor[int32, *autodiff.Backend[B]],
) (float64, error) {
	tape := ad.Tape()
	tape.StartRecording()
	defer func() {
		tape.StopRecording()
		tape.Clear()
	}()

	logits := model.Forward(images)
	loss := nn.CrossEntropy(logits, labels)
	lossVal := float64(loss.Item())
	if math.IsNaN(lossVal) || math.IsInf(lossVal, 0) {
		return lossVal, fmt.Errorf("loss diverged to %v; lower the learning rate", lossVal)
	}

	grads, err := ad.Backward(loss.Raw())
	if err != nil {
		return lossVal, err
	}
	for _, p := range params {
		g, ok := grads[p.Tensor().Raw()]
		if !ok {
			return lossVal, fmt.Errorf("no gradient reached parameter %s", p.Name())
		}
		p.SetGrad(tensor.New[float32](g, ad))
	}

	if err := opt.Step(); err != nil {
		return lossVal, err
	}
	opt.ZeroGrad()
	return lossVal, nil
}

// Evaluate computes accuracy over the loader with gradient recording off.
func Evaluate[B tensor.Backend](
	ad *autodiff.Backend[B],
	model nn.Module[*autodiff.Backend[B]],
	data *dataset.Loader[*autodiff.Backend[B]],
) (float64, error) {
	if ad.Tape().IsRecording() {
		return 0, fmt.Errorf("evaluation must not run while the tape is recording")
	}

	data.Reset()
	correct, total := 0.0, 0
	for {
		images, labels, ok := data.Next()
		if !ok {
			break
		}
		logits := model.Forward(images)
		n := images.Shape()[0]
		correct += nn.Accuracy(logits, labels) * float64(n)
		total += n
	}
	if total == 0 {
		return 0, fmt.Errorf("evaluation loader yielded no samples")
	}
	return correct / float64(total), nil
}
