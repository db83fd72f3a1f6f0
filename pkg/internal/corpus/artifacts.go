package corpus

import (
	"github.com/joeydtaylor/tremor/pkg/internal/store"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// Artifacts are the index-aligned outputs of an extraction: row i of Features, Labels and
// Files describe the same source.
type Artifacts struct {
	Features [][]float64
	Labels   []float64
	Files    []string
}

// Examples returns the successful examples of results in result order.
func Examples(results []types.ItemResult[types.Example]) []types.Example {
	out := make([]types.Example, 0, len(results))
	for _, r := range results {
		if r.OK() {
			out = append(out, r.Value)
		}
	}
	return out
}

// NewArtifacts builds aligned arrays from examples.
func NewArtifacts(examples []types.Example) Artifacts {
	f, l, files := types.Partition{Examples: examples}.Arrays()
	return Artifacts{Features: f, Labels: l, Files: files}
}

// Len returns the number of rows.
func (a Artifacts) Len() int { return len(a.Files) }

// LabelRows renders the labels as a file,arrival_time table.
func (a Artifacts) LabelRows() []store.LabelRow {
	rows := make([]store.LabelRow, len(a.Files))
	for i, f := range a.Files {
		rows[i] = store.LabelRow{File: f, ArrivalTime: a.Labels[i]}
	}
	return rows
}
