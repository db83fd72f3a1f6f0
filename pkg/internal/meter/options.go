package meter

import (
	"io"
	"time"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// WithProgress renders a progress bar to w once SetTotal is called.
func WithProgress(w io.Writer) types.Option[*Meter] {
	return func(m *Meter) {
		m.progressOut = w
	}
}

// WithResourceSampling toggles CPU and memory sampling at Close.
func WithResourceSampling(enabled bool) types.Option[*Meter] {
	return func(m *Meter) {
		m.sampleResources = enabled
	}
}

// WithSampleInterval sets the CPU sampling window used at Close.
func WithSampleInterval(d time.Duration) types.Option[*Meter] {
	return func(m *Meter) {
		if d > 0 {
			m.sampleInterval = d
		}
	}
}

// WithLogger attaches loggers that receive the final report.
func WithLogger(loggers ...types.Logger) types.Option[*Meter] {
	return func(m *Meter) {
		m.loggersLock.Lock()
		defer m.loggersLock.Unlock()
		for _, l := range loggers {
			if l != nil {
				m.loggers = append(m.loggers, l)
			}
		}
	}
}
