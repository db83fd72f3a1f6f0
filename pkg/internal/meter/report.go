package meter

import (
	"sync/atomic"
	"time"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// Close stops the clock, finishes the progress bar, samples host resources and logs the
// final report. Calling Close more than once is a no-op.
func (m *Meter) Close() {
	if !atomic.CompareAndSwapInt32(&m.closed, 0, 1) {
		return
	}
	m.mu.Lock()
	m.endTime = time.Now()
	m.mu.Unlock()

	m.stopProgress()

	if m.sampleResources {
		cpuPercentages, _ := cpu.Percent(m.sampleInterval, false)
		memStats, _ := mem.VirtualMemory()
		m.mu.Lock()
		if len(cpuPercentages) > 0 {
			m.cpuPercent = cpuPercentages[0]
		}
		if memStats != nil {
			m.memPercent = memStats.UsedPercent
		}
		m.mu.Unlock()
	}

	report := m.Report()
	m.loggersLock.Lock()
	loggers := append([]types.Logger{}, m.loggers...)
	m.loggersLock.Unlock()
	for _, l := range loggers {
		kv := append([]interface{}{
			"component", m.componentMetadata,
			"event", "BatchReport",
			"result", "SUCCESS",
		}, report.KeysAndValues()...)
		l.Info("Batch complete", kv...)
	}
}

// Report snapshots the counters into a BatchReport.
func (m *Meter) Report() types.BatchReport {
	r := types.NewBatchReport(m.componentMetadata.Name)
	r.Submitted = m.Count(types.MetricSubmitted)
	r.Processed = m.Count(types.MetricProcessed)
	r.Skipped = m.Count(types.MetricSkipped)
	r.Resumed = m.Count(types.MetricResumed)
	r.Elapsed = m.Elapsed()

	m.mu.Lock()
	defer m.mu.Unlock()
	for k, n := range m.skips {
		r.SkipReasons[k] = n
	}
	r.CPUPercent = m.cpuPercent
	r.MemPercent = m.memPercent
	return r
}
