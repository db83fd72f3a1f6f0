package corpus

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/joeydtaylor/tremor/pkg/internal/store"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// LoadLabels reads a file,arrival_time table into a map. A file listed twice is an error.
func LoadLabels(r io.Reader) (map[string]float64, error) {
	rows, err := store.ReadLabels(r)
	if err != nil {
		return nil, err
	}
	labels := make(map[string]float64, len(rows))
	for _, row := range rows {
		if _, dup := labels[row.File]; dup {
			return nil, fmt.Errorf("corpus: duplicate label for %s", row.File)
		}
		labels[row.File] = row.ArrivalTime
	}
	return labels, nil
}

// LabelRows renders labels as table rows sorted by file.
func LabelRows(labels map[string]float64) []store.LabelRow {
	rows := make([]store.LabelRow, 0, len(labels))
	for f, v := range labels {
		rows = append(rows, store.LabelRow{File: f, ArrivalTime: v})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].File < rows[j].File })
	return rows
}

// CatalogLabels converts absolute catalog picks into relative labels by subtracting each
// waveform's start time. Files that cannot be read or carry no start time are skipped as
// read failures; repeated catalog ids keep their first pick and count as label mismatches.
func CatalogLabels(ctx context.Context, r types.WaveformReader, rows []store.CatalogRow, ext string) ([]store.LabelRow, types.BatchReport, error) {
	report := types.NewBatchReport("corpus.catalog")
	start := time.Now()
	seen := make(map[string]struct{}, len(rows))
	var out []store.LabelRow
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		report.Submitted++
		id := store.CatalogFileName(row.Archivo, ext)
		if _, dup := seen[id]; dup {
			report.AddSkip(types.LabelMismatch)
			continue
		}
		seen[id] = struct{}{}
		w, err := r.Read(ctx, id)
		if err != nil || w.Start.IsZero() {
			report.AddSkip(types.ReadFailure)
			continue
		}
		t0 := float64(w.Start.Unix()) + float64(w.Start.Nanosecond())/1e9
		out = append(out, store.LabelRow{File: id, ArrivalTime: row.LecP - t0})
		report.Processed++
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	report.Elapsed = time.Since(start)
	return out, report, nil
}
