// Package autodiff adds reverse-mode differentiation on top of any compute
// backend by recording operations on a gradient tape.
package autodiff

import (
	"fmt"

	"github.com/abacus-ml/abacus/internal/autodiff/ops"
	"github.com/abacus-ml/abacus/internal/tensor"
)

// GradientTape records operations during a forward pass and replays them in
// reverse to produce gradients. A tape is owned by a single goroutine.
type GradientTape struct {
	operations []ops.Operation
	pins       []func()
	recording  bool
}

// NewTape returns an empty, non-recording tape.
func NewTape() *GradientTape {
	return &GradientTape{}
}

// StartRecording begins capturing operations.
func (t *GradientTape) StartRecording() { t.recording = true }

// StopRecording stops capturing; already recorded operations stay on the
// tape until Clear.
func (t *GradientTape) StopRecording() { t.recording = false }

// IsRecording reports whether operations are currently captured.
func (t *GradientTape) IsRecording() bool { return t.recording }

// NumOperations returns the number of recorded operations.
func (t *GradientTape) NumOperations() int { return len(t.operations) }

// Record appends an operation and pins its tensors so in-place buffer reuse
// cannot clobber values the backward pass still needs.
func (t *GradientTape) Record(op ops.Operation) {
	for _, in := range op.Inputs() {
		if in != nil {
			t.pins = append(t.pins, in.ForceNonUnique())
		}
	}
	t.pins = append(t.pins, op.Output().ForceNonUnique())
	t.operations = append(t.operations, op)
}

// Clear drops all recorded operations and releases their buffers. Call it
// after every optimizer step; a tape that is never cleared grows without
// bound.
func (t *GradientTape) Clear() {
	for _, release := range t.pins {
		release()
	}
	t.operations = t.operations[:0]
	t.pins = t.pins[:0]
}

// Backward walks the tape in reverse from the loss tensor and returns the
// accumulated gradient for every tensor that participated, keyed by the
// tensor itself.
func (t *GradientTape) Backward(loss *tensor.RawTensor, b tensor.Backend) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	if len(t.operations) == 0 {
		return nil, fmt.Errorf("backward on an empty tape; was recording enabled?")
	}
	if loss.NumElements() != 1 {
		return nil, fmt.Errorf("backward requires a scalar loss, got shape %v", loss.Shape())
	}

	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	grads[loss] = ops.Ones(loss.Shape(), loss.DType(), loss.Device())

	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		outGrad, ok := grads[op.Output()]
		if !ok {
			// This operation's output never reached the loss.
			continue
		}

		inGrads := op.Backward(outGrad, b)
		inputs := op.Inputs()
		if len(inGrads) != len(inputs) {
			return nil, fmt.Errorf("op %s returned %d gradients for %d inputs",
				op.Name(), len(inGrads), len(inputs))
		}

		for j, in := range inputs {
			g := inGrads[j]
			if g == nil {
				continue
			}
			if existing, ok := grads[in]; ok {
				// Clone so the in-place add cannot mutate a gradient that
				// other map entries may alias.
				grads[in] = b.Add(existing.Clone(), g)
			} else {
				grads[in] = g
			}
		}
	}
	return grads, nil
}
