package inspect

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/joeydtaylor/tremor/pkg/internal/store"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// ValidationHeader is the column layout of ExportValidation.
var ValidationHeader = []string{"File ID", "Is Valid", "Signal Duration (s)", "P Arrival Time (s)", "Error", "Has P Arrival"}

// ValidationResult is the check of one labeled file.
type ValidationResult struct {
	FileID      string
	Valid       bool
	Duration    float64 // seconds; 0 when the file could not be read
	ArrivalTime float64
	HasArrival  bool
	Err         string
}

// Validate checks that every label lies inside its waveform: 0 <= arrival <= duration.
// Results follow label order.
func Validate(ctx context.Context, r types.WaveformReader, labels []store.LabelRow) ([]ValidationResult, types.BatchReport) {
	report := types.NewBatchReport("inspect.validate")
	out := make([]ValidationResult, 0, len(labels))
	for _, l := range labels {
		if ctx.Err() != nil {
			break
		}
		report.Submitted++
		res := ValidationResult{FileID: l.File, ArrivalTime: l.ArrivalTime, HasArrival: !math.IsNaN(l.ArrivalTime)}
		w, err := r.Read(ctx, l.File)
		switch {
		case err != nil:
			res.Err = fmt.Sprintf("read failure: %v", err)
			report.AddSkip(types.ReadFailure)
		case !res.HasArrival:
			res.Duration = w.Duration()
			res.Err = "missing P arrival"
			report.AddSkip(types.LabelMismatch)
		default:
			res.Duration = w.Duration()
			if l.ArrivalTime < 0 || l.ArrivalTime > res.Duration {
				res.Err = fmt.Sprintf("P arrival %.3f s outside signal of %.3f s", l.ArrivalTime, res.Duration)
				report.AddSkip(types.LabelOutOfRange)
			} else {
				res.Valid = true
				report.Processed++
			}
		}
		out = append(out, res)
	}
	return out, report
}

// ExportValidation writes results as CSV, optionally only the invalid ones.
func ExportValidation(w io.Writer, results []ValidationResult, onlyInvalid bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ValidationHeader); err != nil {
		return err
	}
	for _, r := range results {
		if onlyInvalid && r.Valid {
			continue
		}
		arrival := ""
		if r.HasArrival {
			arrival = strconv.FormatFloat(r.ArrivalTime, 'f', -1, 64)
		}
		if err := cw.Write([]string{
			r.FileID,
			strconv.FormatBool(r.Valid),
			strconv.FormatFloat(r.Duration, 'f', -1, 64),
			arrival,
			r.Err,
			strconv.FormatBool(r.HasArrival),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
