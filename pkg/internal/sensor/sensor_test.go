package sensor_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/joeydtaylor/tremor/pkg/internal/sensor"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

type countingMeter struct {
	mu     sync.Mutex
	counts map[string]int
	skips  map[types.SkipKind]int
}

func newCountingMeter() *countingMeter {
	return &countingMeter{counts: map[string]int{}, skips: map[types.SkipKind]int{}}
}

func (m *countingMeter) GetComponentMetadata() types.ComponentMetadata {
	return types.ComponentMetadata{Type: "METER"}
}
func (m *countingMeter) SetTotal(int) {}
func (m *countingMeter) Add(metric string, delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[metric] += delta
}
func (m *countingMeter) Count(metric string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[metric]
}
func (m *countingMeter) RecordSkip(kind types.SkipKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skips[kind]++
	m.counts[types.MetricSkipped]++
}
func (m *countingMeter) Elapsed() time.Duration    { return 0 }
func (m *countingMeter) Report() types.BatchReport { return types.NewBatchReport("test") }
func (m *countingMeter) Close()                    {}

func TestSensorCallbacksInvoked(t *testing.T) {
	var starts, processed, errs, completes int
	s := sensor.NewSensor[string](
		sensor.WithOnStartFunc[string](func(types.ComponentMetadata) { starts++ }),
		sensor.WithOnElementProcessedFunc[string](func(_ types.ComponentMetadata, elem string) {
			if elem != "ok" {
				t.Errorf("unexpected element %q", elem)
			}
			processed++
		}),
		sensor.WithOnErrorFunc[string](func(types.ComponentMetadata, error, string) { errs++ }),
		sensor.WithOnCompleteFunc[string](func(types.ComponentMetadata) { completes++ }),
	)

	meta := types.ComponentMetadata{ID: "w", Type: "WIRE"}
	s.InvokeOnStart(meta)
	s.InvokeOnElementProcessed(meta, "ok")
	s.InvokeOnError(meta, errors.New("boom"), "bad")
	s.InvokeOnComplete(meta)

	if starts != 1 || processed != 1 || errs != 1 || completes != 1 {
		t.Fatalf("unexpected callback counts: start=%d processed=%d error=%d complete=%d", starts, processed, errs, completes)
	}
}

func TestSensorDrivesMeter(t *testing.T) {
	m := newCountingMeter()
	s := sensor.NewSensor[int](sensor.WithMeter[int](m))
	meta := types.ComponentMetadata{Type: "WIRE"}

	for i := 0; i < 4; i++ {
		s.InvokeOnSubmit(meta, i)
	}
	s.InvokeOnElementProcessed(meta, 1)
	s.InvokeOnElementProcessed(meta, 2)
	s.InvokeOnError(meta, types.NewSkip(types.FilterError, "x", errors.New("nan")), 3)
	s.InvokeOnError(meta, errors.New("disk"), 4)

	if got := m.Count(types.MetricSubmitted); got != 4 {
		t.Fatalf("submitted = %d, expected 4", got)
	}
	if got := m.Count(types.MetricProcessed); got != 2 {
		t.Fatalf("processed = %d, expected 2", got)
	}
	if m.skips[types.FilterError] != 1 || m.skips[types.ReadFailure] != 1 {
		t.Fatalf("unexpected skip kinds %v", m.skips)
	}
}

func TestSensorComponentMetadata(t *testing.T) {
	s := sensor.NewSensor[int](sensor.WithComponentMetadata[int]("extract-sensor", "s-1"))
	meta := s.GetComponentMetadata()
	if meta.Name != "extract-sensor" || meta.ID != "s-1" || meta.Type != "SENSOR" {
		t.Fatalf("unexpected metadata %+v", meta)
	}
}
