package corpus

import (
	"context"
	"fmt"
	"io"
	"math"
	"runtime"
	"sync"

	"github.com/joeydtaylor/tremor/pkg/internal/conditioner"
	"github.com/joeydtaylor/tremor/pkg/internal/features"
	"github.com/joeydtaylor/tremor/pkg/internal/meter"
	"github.com/joeydtaylor/tremor/pkg/internal/sensor"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/joeydtaylor/tremor/pkg/internal/utils"
	"github.com/joeydtaylor/tremor/pkg/internal/wire"
)

// job is the element moved through the extraction wire.
type job struct {
	ID      string
	Label   float64
	Wave    types.Waveform
	Example types.Example
}

// Extractor reads, conditions and featurizes labeled sources concurrently.
type Extractor struct {
	componentMetadata types.ComponentMetadata

	reader      types.WaveformReader
	conditioner *conditioner.Conditioner
	features    *features.Extractor

	workers         int
	buffer          int
	ledger          *Ledger
	progress        io.Writer
	sampleResources bool
	loggers         []types.Logger
}

// NewExtractor wires the three per-item stages together.
func NewExtractor(r types.WaveformReader, c *conditioner.Conditioner, fe *features.Extractor, options ...types.Option[*Extractor]) *Extractor {
	e := &Extractor{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "EXTRACTOR",
		},
		reader:          r,
		conditioner:     c,
		features:        fe,
		workers:         runtime.NumCPU(),
		buffer:          256,
		sampleResources: true,
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) types.Option[*Extractor] {
	return func(e *Extractor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLedger makes extraction resumable through l.
func WithLedger(l *Ledger) types.Option[*Extractor] {
	return func(e *Extractor) { e.ledger = l }
}

// WithProgress renders a progress bar to w.
func WithProgress(w io.Writer) types.Option[*Extractor] {
	return func(e *Extractor) { e.progress = w }
}

// WithResourceSampling toggles the CPU and memory sample taken for the final report.
func WithResourceSampling(enabled bool) types.Option[*Extractor] {
	return func(e *Extractor) { e.sampleResources = enabled }
}

func WithLogger(loggers ...types.Logger) types.Option[*Extractor] {
	return func(e *Extractor) {
		for _, l := range loggers {
			if l != nil {
				e.loggers = append(e.loggers, l)
			}
		}
	}
}

// GetComponentMetadata returns the component metadata.
func (e *Extractor) GetComponentMetadata() types.ComponentMetadata { return e.componentMetadata }

// Namespace fingerprints the settings that determine an example, for use as a ledger bucket.
func Namespace(c conditioner.Config, f features.Config) string {
	return "extract-" + utils.Fingerprint(fmt.Sprintf("%+v|%+v", c, f))[:16]
}

// Extract processes the union of ids and the labeled files. A source present on only one
// side is a LabelMismatch skip. The results hold exactly one entry per source, sorted by
// identity, independent of worker scheduling. A nil ids slice means "every labeled file".
func (e *Extractor) Extract(ctx context.Context, ids []string, labels map[string]float64) ([]types.ItemResult[types.Example], types.BatchReport, error) {
	meterOpts := []types.Option[*meter.Meter]{
		meter.WithLogger(e.loggers...),
		meter.WithResourceSampling(e.sampleResources),
	}
	if e.progress != nil {
		meterOpts = append(meterOpts, meter.WithProgress(e.progress))
	}
	m := meter.NewMeter("corpus.extract", meterOpts...)

	all, listed := e.universe(ids, labels)
	m.SetTotal(len(all))

	results := make(map[string]types.ItemResult[types.Example], len(all))
	var pending []job
	for _, id := range all {
		label, labeled := labels[id]
		if !labeled || !listed[id] {
			m.Add(types.MetricSubmitted, 1)
			m.RecordSkip(types.LabelMismatch)
			results[id] = types.ItemResult[types.Example]{ID: id, Skip: types.NewSkip(types.LabelMismatch, id, fmt.Errorf("source and label table disagree"))}
			continue
		}
		if r, ok, err := e.resume(id, label); err != nil {
			m.Close()
			return nil, m.Report(), err
		} else if ok {
			m.Add(types.MetricSubmitted, 1)
			if r.OK() {
				m.Add(types.MetricResumed, 1)
			} else {
				m.RecordSkip(r.Skip.Kind)
			}
			results[id] = r
			continue
		}
		pending = append(pending, job{ID: id, Label: label})
	}

	fresh, err := e.run(ctx, pending, m)
	if err != nil {
		m.Close()
		return nil, m.Report(), err
	}
	entries := make([]Entry, 0, len(fresh))
	for id, r := range fresh {
		results[id] = r
		if recordable(r) {
			entries = append(entries, entryFrom(r))
		}
	}
	if e.ledger != nil && len(entries) > 0 {
		if err := e.ledger.PutAll(entries); err != nil {
			m.Close()
			return nil, m.Report(), fmt.Errorf("corpus: record ledger: %w", err)
		}
	}

	m.Close()
	report := m.Report()

	out := make([]types.ItemResult[types.Example], 0, len(results))
	for _, id := range all {
		out = append(out, results[id])
	}
	return out, report, nil
}

// universe returns the sorted union of ids and label keys, and the set of listed ids.
func (e *Extractor) universe(ids []string, labels map[string]float64) ([]string, map[string]bool) {
	listed := make(map[string]bool, len(labels))
	keys := make([]string, 0, len(labels)+len(ids))
	if ids == nil {
		for id := range labels {
			listed[id] = true
			keys = append(keys, id)
		}
	} else {
		for _, id := range ids {
			listed[id] = true
			keys = append(keys, id)
		}
		for id := range labels {
			keys = append(keys, id)
		}
	}
	return utils.SortedUnique(keys), listed
}

// recordable reports whether r can be replayed whatever the label table says. Read
// failures are retried on the next run and label rejections depend on the current label.
func recordable(r types.ItemResult[types.Example]) bool {
	return r.OK() || r.Skip.Kind == types.FilterError
}

// resume returns the recorded result for id with the current label applied. Entries whose
// outcome depended on a label are ignored so that corrected labels take effect.
func (e *Extractor) resume(id string, label float64) (types.ItemResult[types.Example], bool, error) {
	if e.ledger == nil {
		return types.ItemResult[types.Example]{}, false, nil
	}
	entry, ok, err := e.ledger.Get(id)
	if err != nil || !ok {
		return types.ItemResult[types.Example]{}, false, err
	}
	r := entry.Result()
	if !recordable(r) {
		return types.ItemResult[types.Example]{}, false, nil
	}
	if r.OK() {
		r.Value.Label = label
		if err := e.labelInWindow(id, label, r.Value.SamplingRate); err != nil {
			return types.ItemResult[types.Example]{ID: id, Skip: types.AsSkip(id, err)}, true, nil
		}
	}
	return r, true, nil
}

// run pushes jobs through a wire and collects one result per job.
func (e *Extractor) run(ctx context.Context, jobs []job, m *meter.Meter) (map[string]types.ItemResult[types.Example], error) {
	out := make(map[string]types.ItemResult[types.Example], len(jobs))
	if len(jobs) == 0 {
		return out, nil
	}

	s := sensor.NewSensor[job](sensor.WithMeter[job](m))
	w := wire.NewWire[job](ctx,
		wire.WithComponentMetadata[job]("corpus.extract", ""),
		wire.WithConcurrencyControl[job](e.buffer, e.workers),
		wire.WithLogger[job](e.loggers...),
		wire.WithSensor[job](s),
		wire.WithTransformer[job](e.read(ctx), e.checkLabel, e.condition, e.featurize),
	)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for j := range w.GetOutputChannel() {
			mu.Lock()
			out[j.ID] = types.ItemResult[types.Example]{ID: j.ID, Value: j.Example}
			mu.Unlock()
		}
	}()
	go func() {
		defer wg.Done()
		for fail := range w.GetErrorChannel() {
			se := types.AsSkip(fail.Elem.ID, fail.Err)
			e.notify(types.DebugLevel, "Source skipped", "event", "Extract", "result", "SKIP", "source", fail.Elem.ID, "kind", string(se.Kind), "error", se.Err)
			mu.Lock()
			out[fail.Elem.ID] = types.ItemResult[types.Example]{ID: fail.Elem.ID, Skip: se}
			mu.Unlock()
		}
	}()

	var submitErr error
	for _, j := range jobs {
		if err := w.Submit(ctx, j); err != nil {
			submitErr = err
			break
		}
	}
	_ = w.Stop()
	wg.Wait()

	if submitErr != nil {
		return nil, submitErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(out) != len(jobs) {
		return nil, fmt.Errorf("corpus: %d of %d sources produced no outcome", len(jobs)-len(out), len(jobs))
	}
	return out, nil
}

func (e *Extractor) read(ctx context.Context) types.Transformer[job] {
	return func(j job) (job, error) {
		w, err := e.reader.Read(ctx, j.ID)
		if err != nil {
			return j, types.NewSkip(types.ReadFailure, j.ID, err)
		}
		j.Wave = w
		return j, nil
	}
}

// checkLabel rejects labels outside the conditioned window [0, L/fs].
func (e *Extractor) checkLabel(j job) (job, error) {
	return j, e.labelInWindow(j.ID, j.Label, j.Wave.SamplingRate)
}

func (e *Extractor) labelInWindow(id string, label, fs float64) error {
	if fs <= 0 || math.IsNaN(fs) || math.IsInf(fs, 0) {
		return types.NewSkip(types.ReadFailure, id, fmt.Errorf("invalid sampling rate %v", fs))
	}
	window := float64(e.conditioner.Config().Length) / fs
	if math.IsNaN(label) || label < 0 || label > window {
		return types.NewSkip(types.LabelOutOfRange, id, fmt.Errorf("label %.3f s outside window [0, %.3f] s", label, window))
	}
	return nil
}

func (e *Extractor) condition(j job) (job, error) {
	x, err := e.conditioner.ConditionWaveform(j.Wave)
	if err != nil {
		return j, err
	}
	j.Example = types.Example{
		ID:           j.ID,
		Parent:       j.ID,
		Waveform:     x,
		Label:        j.Label,
		SamplingRate: j.Wave.SamplingRate,
		Start:        j.Wave.Start,
	}
	j.Wave.Samples = nil
	return j, nil
}

func (e *Extractor) featurize(j job) (job, error) {
	f, err := e.features.Extract(j.Example.Waveform)
	if err != nil {
		return j, types.NewSkip(types.FilterError, j.ID, err)
	}
	j.Example.Features = f
	return j, nil
}

func (e *Extractor) notify(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	kv := append([]interface{}{"component", e.componentMetadata}, keysAndValues...)
	for _, l := range e.loggers {
		if l.GetLevel() > level {
			continue
		}
		switch level {
		case types.DebugLevel:
			l.Debug(msg, kv...)
		case types.WarnLevel:
			l.Warn(msg, kv...)
		case types.ErrorLevel:
			l.Error(msg, kv...)
		default:
			l.Info(msg, kv...)
		}
	}
}
