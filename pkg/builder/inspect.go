package builder

import (
	"context"
	"io"

	"github.com/joeydtaylor/tremor/pkg/internal/corpus"
	"github.com/joeydtaylor/tremor/pkg/internal/inspect"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

type RateCount = inspect.RateCount

type LengthStats = inspect.LengthStats

type ValidationResult = inspect.ValidationResult

// LoadLabels reads a labels table keyed by file.
func LoadLabels(r io.Reader) (map[string]float64, error) { return corpus.LoadLabels(r) }

// LabelRows orders a label map by file.
func LabelRows(labels map[string]float64) []LabelRow { return corpus.LabelRows(labels) }

// SamplingRates counts files per sampling rate.
func SamplingRates(ctx context.Context, r types.WaveformReader, ids []string) ([]RateCount, BatchReport) {
	return inspect.SamplingRates(ctx, r, ids)
}

// SignalLengths reads every id and summarises the sample counts.
func SignalLengths(ctx context.Context, r types.WaveformReader, ids []string) (LengthStats, BatchReport, error) {
	lengths, report := inspect.ReadLengths(ctx, r, ids)
	stats, err := inspect.Lengths(lengths)
	return stats, report, err
}

// ValidateLabels checks every label against the duration of its waveform.
func ValidateLabels(ctx context.Context, r types.WaveformReader, labels []LabelRow) ([]ValidationResult, BatchReport) {
	return inspect.Validate(ctx, r, labels)
}

// ExportValidation writes validation results as CSV, optionally only the invalid rows.
func ExportValidation(w io.Writer, results []ValidationResult, onlyInvalid bool) error {
	return inspect.ExportValidation(w, results, onlyInvalid)
}
