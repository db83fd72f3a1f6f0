package meter_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/joeydtaylor/tremor/pkg/internal/meter"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

func TestMeterCountsAndReport(t *testing.T) {
	m := meter.NewMeter("extract", meter.WithResourceSampling(false))
	m.SetTotal(5)
	m.Add(types.MetricSubmitted, 5)
	m.Add(types.MetricProcessed, 2)
	m.Add(types.MetricResumed, 1)
	m.RecordSkip(types.ReadFailure)
	m.RecordSkip(types.LabelMismatch)
	m.Close()

	r := m.Report()
	if r.Component != "extract" {
		t.Fatalf("unexpected component %q", r.Component)
	}
	if r.Submitted != 5 || r.Processed != 2 || r.Resumed != 1 || r.Skipped != 2 {
		t.Fatalf("unexpected report %+v", r)
	}
	if r.SkipReasons[types.ReadFailure] != 1 || r.SkipReasons[types.LabelMismatch] != 1 {
		t.Fatalf("unexpected skip reasons %v", r.SkipReasons)
	}
}

func TestMeterElapsedFrozenAfterClose(t *testing.T) {
	m := meter.NewMeter("train", meter.WithResourceSampling(false))
	m.Close()
	first := m.Elapsed()
	time.Sleep(10 * time.Millisecond)
	if m.Elapsed() != first {
		t.Fatalf("elapsed kept moving after Close")
	}
	m.Close()
}

func TestMeterProgressBar(t *testing.T) {
	var out bytes.Buffer
	m := meter.NewMeter("extract",
		meter.WithProgress(&out),
		meter.WithResourceSampling(false),
	)
	m.SetTotal(3)
	for i := 0; i < 3; i++ {
		m.Add(types.MetricProcessed, 1)
	}
	m.Close()
	if out.Len() == 0 {
		t.Fatalf("expected progress output")
	}
}

func TestMeterResourceSampling(t *testing.T) {
	m := meter.NewMeter("extract", meter.WithSampleInterval(10*time.Millisecond))
	m.Close()
	r := m.Report()
	if r.CPUPercent < 0 || r.MemPercent < 0 || r.MemPercent > 100 {
		t.Fatalf("implausible resource sample cpu=%v mem=%v", r.CPUPercent, r.MemPercent)
	}
}
