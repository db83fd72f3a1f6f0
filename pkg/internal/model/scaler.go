package model

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Scaler standardises feature columns with fixed per-column statistics.
type Scaler struct {
	Mean []float64
	Std  []float64
}

// IdentityScaler leaves dim columns unchanged.
func IdentityScaler(dim int) Scaler {
	s := Scaler{Mean: make([]float64, dim), Std: make([]float64, dim)}
	for i := range s.Std {
		s.Std[i] = 1
	}
	return s
}

// FitScaler computes column means and population standard deviations. A zero standard
// deviation is replaced by 1 so that constant columns map to zero.
func FitScaler(rows [][]float64) (Scaler, error) {
	if len(rows) == 0 {
		return Scaler{}, fmt.Errorf("model: cannot fit a scaler on zero rows")
	}
	dim := len(rows[0])
	s := Scaler{Mean: make([]float64, dim), Std: make([]float64, dim)}
	col := make([]float64, len(rows))
	for j := 0; j < dim; j++ {
		for i, r := range rows {
			if len(r) != dim {
				return Scaler{}, fmt.Errorf("model: row %d has %d columns, want %d", i, len(r), dim)
			}
			col[i] = r[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		s.Mean[j], s.Std[j] = mean, std
	}
	return s, nil
}

// Dim returns the number of columns.
func (s Scaler) Dim() int { return len(s.Mean) }

// Transform returns the standardised copy of x.
func (s Scaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.Mean[i]) / s.Std[i]
	}
	return out
}
