package model

import (
	"sync"

	"github.com/joeydtaylor/tremor/pkg/internal/nn"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"gonum.org/v1/gonum/floats"
)

// Sample is one training or evaluation input.
type Sample struct {
	Waveform []float64
	Features []float64
	Label    float64
}

// SamplesFrom converts partition examples to samples, preserving order.
func SamplesFrom(p types.Partition) []Sample {
	out := make([]Sample, len(p.Examples))
	for i, ex := range p.Examples {
		out[i] = Sample{Waveform: ex.Waveform, Features: ex.Features, Label: ex.Label}
	}
	return out
}

// span returns the contiguous range of n items handled by worker w of workers.
func span(n, w, workers int) (int, int) {
	return w * n / workers, (w + 1) * n / workers
}

func clampWorkers(workers, n int) int {
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	return workers
}

// Gradients returns the mean loss over batch and the mean gradient of every parameter.
// The batch is split into contiguous spans, one per worker, each with its own gradient
// buffer; buffers are summed in worker order so the result depends only on the inputs and
// the worker count.
func (m *Hybrid) Gradients(batch []Sample, loss nn.Loss, workers int) (float64, [][]float64) {
	total := nn.NewGrads(m.params)
	if len(batch) == 0 {
		return 0, total
	}
	workers = clampWorkers(workers, len(batch))
	losses := make([]float64, workers)
	grads := make([][][]float64, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			g := nn.NewGrads(m.params)
			lo, hi := span(len(batch), w, workers)
			for _, s := range batch[lo:hi] {
				pred, cache := m.forward(s.Waveform, s.Features)
				losses[w] += loss.Value(pred, s.Label)
				m.backward(cache, loss.Grad(pred, s.Label), g)
			}
			grads[w] = g
		}(w)
	}
	wg.Wait()

	var sum float64
	for w := 0; w < workers; w++ {
		sum += losses[w]
		for i := range total {
			floats.Add(total[i], grads[w][i])
		}
	}
	inv := 1 / float64(len(batch))
	for i := range total {
		floats.Scale(inv, total[i])
	}
	return sum * inv, total
}

// PredictBatch predicts every sample using up to workers goroutines. Output order matches
// input order.
func (m *Hybrid) PredictBatch(samples []Sample, workers int) []float64 {
	out := make([]float64, len(samples))
	if len(samples) == 0 {
		return out
	}
	workers = clampWorkers(workers, len(samples))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			lo, hi := span(len(samples), w, workers)
			for i := lo; i < hi; i++ {
				out[i] = m.Predict(samples[i].Waveform, samples[i].Features)
			}
		}(w)
	}
	wg.Wait()
	return out
}

// MeanLoss evaluates the mean loss over samples. Per-sample losses are summed in input
// order.
func (m *Hybrid) MeanLoss(samples []Sample, loss nn.Loss, workers int) float64 {
	if len(samples) == 0 {
		return 0
	}
	preds := m.PredictBatch(samples, workers)
	var sum float64
	for i, p := range preds {
		sum += loss.Value(p, samples[i].Label)
	}
	return sum / float64(len(samples))
}
