package types

import (
	"sort"
	"time"
)

// ItemResult is the outcome of processing one item in a batch: a value or a skip.
type ItemResult[T any] struct {
	ID    string
	Value T
	Skip  *SkipError
}

// OK reports whether the item succeeded.
func (r ItemResult[T]) OK() bool { return r.Skip == nil }

// BatchReport summarises a batch operation so that silent data loss is observable.
type BatchReport struct {
	Component   string
	Submitted   int
	Processed   int
	Skipped     int
	Resumed     int
	SkipReasons map[SkipKind]int
	Elapsed     time.Duration
	CPUPercent  float64
	MemPercent  float64
}

// NewBatchReport returns an empty report for component.
func NewBatchReport(component string) BatchReport {
	return BatchReport{Component: component, SkipReasons: make(map[SkipKind]int)}
}

// AddSkip records one skipped item.
func (r *BatchReport) AddSkip(kind SkipKind) {
	if r.SkipReasons == nil {
		r.SkipReasons = make(map[SkipKind]int)
	}
	r.Skipped++
	r.SkipReasons[kind]++
}

// Merge folds other into r.
func (r *BatchReport) Merge(other BatchReport) {
	r.Submitted += other.Submitted
	r.Processed += other.Processed
	r.Resumed += other.Resumed
	r.Elapsed += other.Elapsed
	for k, n := range other.SkipReasons {
		if r.SkipReasons == nil {
			r.SkipReasons = make(map[SkipKind]int)
		}
		r.SkipReasons[k] += n
		r.Skipped += n
	}
}

// KeysAndValues flattens the report for structured logging.
func (r BatchReport) KeysAndValues() []interface{} {
	kv := []interface{}{
		"submitted", r.Submitted,
		"processed", r.Processed,
		"skipped", r.Skipped,
		"resumed", r.Resumed,
		"elapsed", r.Elapsed.String(),
	}
	kinds := make([]string, 0, len(r.SkipReasons))
	for k := range r.SkipReasons {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		kv = append(kv, "skipped_"+k, r.SkipReasons[SkipKind(k)])
	}
	if r.CPUPercent > 0 || r.MemPercent > 0 {
		kv = append(kv, "cpu_percent", r.CPUPercent, "mem_percent", r.MemPercent)
	}
	return kv
}
