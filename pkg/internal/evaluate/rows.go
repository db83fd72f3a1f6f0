package evaluate

import (
	"fmt"

	"github.com/joeydtaylor/tremor/pkg/internal/store"
)

// PredictionRows pairs files with relative predictions.
func PredictionRows(files []string, preds []float64) ([]store.PredictionRow, error) {
	if len(files) != len(preds) {
		return nil, fmt.Errorf("evaluate: %d files for %d predictions", len(files), len(preds))
	}
	rows := make([]store.PredictionRow, len(files))
	for i := range files {
		rows[i] = store.PredictionRow{File: files[i], PredictedTime: preds[i]}
	}
	return rows, nil
}

// DeliverableRows converts relative predictions to absolute picks. Files whose name does not
// carry a parseable window start are returned in skipped rather than failing the batch.
func DeliverableRows(preds []store.PredictionRow, year int, layout string) (rows []store.DeliverableRow, skipped map[string]error, err error) {
	if year < 1900 || year > 9999 {
		return nil, nil, fmt.Errorf("evaluate: reference year %d outside 1900-9999", year)
	}
	for _, p := range preds {
		abs, perr := ReconstructFromID(p.File, p.PredictedTime, year, layout)
		if perr != nil {
			if skipped == nil {
				skipped = make(map[string]error)
			}
			skipped[p.File] = perr
			continue
		}
		rows = append(rows, store.DeliverableRow{File: p.File, LecP: abs})
	}
	return rows, skipped, nil
}
