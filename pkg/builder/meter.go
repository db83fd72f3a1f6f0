package builder

import (
	"io"
	"time"

	"github.com/joeydtaylor/tremor/pkg/internal/meter"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// Metric names counted by a Meter.
const (
	MetricSubmitted = types.MetricSubmitted
	MetricProcessed = types.MetricProcessed
	MetricSkipped   = types.MetricSkipped
	MetricResumed   = types.MetricResumed
)

// Meter is the batch counter behind every BatchReport.
type Meter = meter.Meter

// NewMeter creates a meter for the named component.
func NewMeter(component string, options ...types.Option[*Meter]) *Meter {
	return meter.NewMeter(component, options...)
}

// MeterWithProgress renders a progress bar to w once the total is known.
func MeterWithProgress(w io.Writer) types.Option[*Meter] {
	return meter.WithProgress(w)
}

// MeterWithResourceSampling records CPU and memory usage in the final report.
func MeterWithResourceSampling(enabled bool) types.Option[*Meter] {
	return meter.WithResourceSampling(enabled)
}

// MeterWithSampleInterval sets the CPU sampling window.
func MeterWithSampleInterval(d time.Duration) types.Option[*Meter] {
	return meter.WithSampleInterval(d)
}

// MeterWithLogger attaches loggers that receive the final report.
func MeterWithLogger(loggers ...types.Logger) types.Option[*Meter] {
	return meter.WithLogger(loggers...)
}
