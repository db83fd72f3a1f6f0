// Package inspect surveys a waveform corpus before training: sampling-rate census, signal
// length statistics, spectral summaries and label validation.
package inspect

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/joeydtaylor/tremor/pkg/internal/features"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"gonum.org/v1/gonum/stat"
)

// RateCount is the number of files recorded at one sampling rate.
type RateCount struct {
	Rate  float64
	Count int
}

// SamplingRates reads every id and counts files per sampling rate, ascending by rate.
// Unreadable files are counted as read failures in the report.
func SamplingRates(ctx context.Context, r types.WaveformReader, ids []string) ([]RateCount, types.BatchReport) {
	report := types.NewBatchReport("inspect.sampling_rates")
	start := time.Now()
	counts := make(map[float64]int)
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		report.Submitted++
		w, err := r.Read(ctx, id)
		if err != nil {
			report.AddSkip(types.ReadFailure)
			continue
		}
		counts[w.SamplingRate]++
		report.Processed++
	}
	out := make([]RateCount, 0, len(counts))
	for rate, n := range counts {
		out = append(out, RateCount{Rate: rate, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rate < out[j].Rate })
	report.Elapsed = time.Since(start)
	return out, report
}

// LengthStats describes a set of signal lengths in samples.
type LengthStats struct {
	Count  int
	Min    int
	Max    int
	Mean   float64
	Median float64
	Std    float64 // population
	P95    float64
}

// Lengths summarises lengths.
func Lengths(lengths []int) (LengthStats, error) {
	if len(lengths) == 0 {
		return LengthStats{}, fmt.Errorf("inspect: no lengths")
	}
	x := make([]float64, len(lengths))
	for i, n := range lengths {
		x[i] = float64(n)
	}
	sort.Float64s(x)
	s := LengthStats{Count: len(x), Min: int(x[0]), Max: int(x[len(x)-1])}
	s.Mean, s.Std = stat.PopMeanStdDev(x, nil)
	s.Median = features.Percentile(x, 50)
	s.P95 = features.Percentile(x, 95)
	return s, nil
}

// ReadLengths reads every id and returns the lengths of the readable ones.
func ReadLengths(ctx context.Context, r types.WaveformReader, ids []string) ([]int, types.BatchReport) {
	report := types.NewBatchReport("inspect.lengths")
	start := time.Now()
	var out []int
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		report.Submitted++
		w, err := r.Read(ctx, id)
		if err != nil {
			report.AddSkip(types.ReadFailure)
			continue
		}
		out = append(out, len(w.Samples))
		report.Processed++
	}
	report.Elapsed = time.Since(start)
	return out, report
}
