package trainer

import "time"

// Window accumulates batch statistics between log lines.
type Window struct {
	batches  int
	samples  int
	lossSum  float64
	lastLoss float64
	elapsed  time.Duration
}

// Observe records one finished batch.
func (w *Window) Observe(loss float64, samples int, dur time.Duration) {
	w.batches++
	w.samples += samples
	w.lossSum += loss
	w.lastLoss = loss
	w.elapsed += dur
}

// Snapshot is the aggregate view of a window.
type Snapshot struct {
	Batches       int
	AvgLoss       float64
	LastLoss      float64
	SamplesPerSec float64
}

// Snapshot summarizes and resets the window.
func (w *Window) Snapshot() Snapshot {
	s := Snapshot{
		Batches:  w.batches,
		LastLoss: w.lastLoss,
	}
	if w.batches > 0 {
		s.AvgLoss = w.lossSum / float64(w.batches)
	}
	if w.elapsed > 0 {
		s.SamplesPerSec = float64(w.samples) / w.elapsed.Seconds()
	}
	*w = Window{}
	return s
}
