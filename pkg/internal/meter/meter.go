// Package meter counts batch progress for long-running corpus operations. A Meter tracks
// submitted, processed, skipped and resumed items, optionally renders a progress bar and
// samples host CPU and memory usage for the final BatchReport.
package meter

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/joeydtaylor/tremor/pkg/internal/utils"
	"github.com/vbauerster/mpb/v8"
)

// Meter implements types.Meter.
type Meter struct {
	componentMetadata types.ComponentMetadata

	mu     sync.Mutex
	counts map[string]*int64
	skips  map[types.SkipKind]int

	total     int64
	startTime time.Time
	endTime   time.Time
	closed    int32

	progressOut io.Writer
	progress    *mpb.Progress
	bar         *mpb.Bar

	sampleResources bool
	sampleInterval  time.Duration
	cpuPercent      float64
	memPercent      float64

	loggers     []types.Logger
	loggersLock sync.Mutex
}

// NewMeter creates a Meter for the named component. The clock starts immediately.
func NewMeter(component string, options ...types.Option[*Meter]) *Meter {
	m := &Meter{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "METER",
			Name: component,
		},
		counts:          make(map[string]*int64),
		skips:           make(map[types.SkipKind]int),
		startTime:       time.Now(),
		sampleResources: true,
		sampleInterval:  200 * time.Millisecond,
	}
	for _, metric := range []string{types.MetricSubmitted, types.MetricProcessed, types.MetricSkipped, types.MetricResumed} {
		m.counts[metric] = new(int64)
	}
	for _, opt := range options {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func (m *Meter) GetComponentMetadata() types.ComponentMetadata {
	return m.componentMetadata
}

// SetTotal declares the number of items the batch will handle and starts the progress bar
// when one is configured.
func (m *Meter) SetTotal(n int) {
	atomic.StoreInt64(&m.total, int64(n))
	if m.progressOut != nil {
		m.startProgress(int64(n))
	}
}

// Add increments metric by delta. Processed, skipped and resumed items advance the bar.
func (m *Meter) Add(metric string, delta int) {
	atomic.AddInt64(m.counter(metric), int64(delta))
	switch metric {
	case types.MetricProcessed, types.MetricSkipped, types.MetricResumed:
		m.advance(delta)
	}
}

// Count returns the current value of metric.
func (m *Meter) Count(metric string) int {
	return int(atomic.LoadInt64(m.counter(metric)))
}

// RecordSkip counts one skipped item of the given kind.
func (m *Meter) RecordSkip(kind types.SkipKind) {
	m.mu.Lock()
	m.skips[kind]++
	m.mu.Unlock()
	m.Add(types.MetricSkipped, 1)
}

// Elapsed returns the time since the meter was created, frozen at Close.
func (m *Meter) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.endTime.IsZero() {
		return m.endTime.Sub(m.startTime)
	}
	return time.Since(m.startTime)
}

func (m *Meter) counter(metric string) *int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.counts[metric]
	if !ok {
		c = new(int64)
		m.counts[metric] = c
	}
	return c
}
