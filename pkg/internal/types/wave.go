package types

import (
	"context"
	"time"
)

// PartitionName identifies one of the three dataset partitions.
type PartitionName string

const (
	PartitionTrain PartitionName = "train"
	PartitionVal   PartitionName = "val"
	PartitionTest  PartitionName = "test"
)

// Partitions lists the partition names in their canonical order.
var Partitions = []PartitionName{PartitionTrain, PartitionVal, PartitionTest}

// Waveform is one raw station recording window as returned by a WaveformReader.
type Waveform struct {
	ID           string    // Source identity (file name).
	Samples      []float64 // Amplitude samples.
	SamplingRate float64   // Samples per second.
	Start        time.Time // Absolute window start, UTC.
}

// Duration returns the length of the window in seconds.
func (w Waveform) Duration() float64 {
	if w.SamplingRate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / w.SamplingRate
}

// FeatureVector is the concatenated per-band statistics of one conditioned waveform.
type FeatureVector []float64

// Example is the atomic training and evaluation unit.
type Example struct {
	ID           string        // Identity of this example; variants carry a shift suffix.
	Parent       string        // Source identity the example descends from; equals ID for originals.
	Waveform     []float64     // Conditioned waveform of length L.
	Features     FeatureVector // Wavelet statistics of Waveform.
	Label        float64       // Relative arrival time in seconds.
	SamplingRate float64
	Start        time.Time
}

// Partition is a named collection of examples.
type Partition struct {
	Name     PartitionName
	Examples []Example
}

// Len returns the number of examples in the partition.
func (p Partition) Len() int { return len(p.Examples) }

// Arrays returns the index-aligned feature, label and file artifacts of the partition.
func (p Partition) Arrays() (features [][]float64, labels []float64, files []string) {
	features = make([][]float64, len(p.Examples))
	labels = make([]float64, len(p.Examples))
	files = make([]string, len(p.Examples))
	for i, ex := range p.Examples {
		features[i] = ex.Features
		labels[i] = ex.Label
		files[i] = ex.ID
	}
	return features, labels, files
}

// WaveformReader loads a waveform by source identity. Any error is treated by callers as a
// ReadFailure skip.
type WaveformReader interface {
	Read(ctx context.Context, id string) (Waveform, error)
}
