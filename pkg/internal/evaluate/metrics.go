// Package evaluate scores predictions against labels and turns relative arrival times into
// absolute timestamps using the window start encoded in each source identity.
package evaluate

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metrics summarises prediction errors e = prediction - label.
type Metrics struct {
	N           int
	MAE         float64
	RMSE        float64
	MeanError   float64
	StdError    float64 // population
	MedianError float64
	Within05    float64 // share with |e| <= 0.5 s
	Within10    float64 // share with |e| <= 1.0 s
}

// Compute returns the metrics of preds against labels.
func Compute(preds, labels []float64) (Metrics, error) {
	if len(preds) != len(labels) {
		return Metrics{}, fmt.Errorf("evaluate: %d predictions for %d labels", len(preds), len(labels))
	}
	if len(preds) == 0 {
		return Metrics{}, fmt.Errorf("evaluate: no predictions")
	}
	errs := make([]float64, len(preds))
	floats.SubTo(errs, preds, labels)
	return FromErrors(errs), nil
}

// FromErrors computes metrics from signed errors.
func FromErrors(errs []float64) Metrics {
	n := float64(len(errs))
	m := Metrics{N: len(errs)}
	if len(errs) == 0 {
		return m
	}
	var within05, within10 int
	var abs, sq float64
	for _, e := range errs {
		a := math.Abs(e)
		abs += a
		sq += e * e
		if a <= 0.5 {
			within05++
		}
		if a <= 1.0 {
			within10++
		}
	}
	m.MAE = abs / n
	m.RMSE = math.Sqrt(sq / n)
	m.MeanError, m.StdError = stat.PopMeanStdDev(errs, nil)
	sorted := append([]float64(nil), errs...)
	sort.Float64s(sorted)
	if len(sorted)%2 == 1 {
		m.MedianError = sorted[len(sorted)/2]
	} else {
		m.MedianError = (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	}
	m.Within05 = float64(within05) / n
	m.Within10 = float64(within10) / n
	return m
}

// KeysAndValues flattens the metrics for structured logging.
func (m Metrics) KeysAndValues() []interface{} {
	return []interface{}{
		"n", m.N, "mae", m.MAE, "rmse", m.RMSE, "mean_error", m.MeanError, "std_error", m.StdError,
		"median_error", m.MedianError, "within_0_5s", m.Within05, "within_1_0s", m.Within10,
	}
}
