package types

import "time"

// Metric names tracked by a Meter.
const (
	MetricSubmitted = "submitted"
	MetricProcessed = "processed"
	MetricSkipped   = "skipped"
	MetricResumed   = "resumed"
)

// Meter counts batch progress and produces the final BatchReport.
type Meter interface {
	GetComponentMetadata() ComponentMetadata
	SetTotal(n int)
	Add(metric string, delta int)
	Count(metric string) int
	RecordSkip(kind SkipKind)
	Elapsed() time.Duration
	Report() BatchReport
	Close()
}
