// Package augment generates time-shifted variants of labeled waveforms after partition
// membership is fixed. A shift of d seconds moves the window start to Start+d and the
// relative arrival label to label-d. Variants whose label falls outside the conditioned
// window are rejected, never clipped, and every variant inherits its source's partition.
package augment

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/joeydtaylor/tremor/pkg/internal/utils"
)

// Policy selects how shifts are chosen.
type Policy string

const (
	PolicyNone  Policy = "none"
	PolicyFixed Policy = "fixed" // One shift of FixedShift seconds per source.
	PolicyRange Policy = "range" // Variants shifts drawn uniformly from [MinShift, MaxShift].
)

// Config configures the engine.
type Config struct {
	Policy        Policy
	FixedShift    float64
	MinShift      float64
	MaxShift      float64
	Variants      int
	AllowNegative bool
	Seed          uint64
	Partitions    []types.PartitionName // Partitions to augment; train only by default.
	WindowLength  int                   // Conditioned length L, used for the label bound.
}

// DefaultConfig is the range policy with three variants per source shifted by 0.5 to 5 s.
func DefaultConfig() Config {
	return Config{
		Policy:       PolicyRange,
		FixedShift:   2.0,
		MinShift:     0.5,
		MaxShift:     5.0,
		Variants:     3,
		Seed:         42,
		Partitions:   []types.PartitionName{types.PartitionTrain},
		WindowLength: 8000,
	}
}

// Validate checks the policy parameters.
func (c Config) Validate() error {
	switch c.Policy {
	case PolicyNone:
		return nil
	case PolicyFixed:
		if c.FixedShift == 0 || math.IsNaN(c.FixedShift) {
			return &types.ConfigurationError{Field: "augment.fixed_shift", Reason: "must be non-zero"}
		}
		if c.FixedShift < 0 && !c.AllowNegative {
			return &types.ConfigurationError{Field: "augment.fixed_shift", Reason: "negative shifts require allow_negative"}
		}
	case PolicyRange:
		if c.Variants < 1 {
			return &types.ConfigurationError{Field: "augment.variants", Reason: fmt.Sprintf("must be at least 1, got %d", c.Variants)}
		}
		if !(c.MaxShift > c.MinShift) {
			return &types.ConfigurationError{Field: "augment.max_shift", Reason: fmt.Sprintf("must exceed min_shift (%v), got %v", c.MinShift, c.MaxShift)}
		}
		if c.MinShift < 0 && !c.AllowNegative {
			return &types.ConfigurationError{Field: "augment.min_shift", Reason: "negative shifts require allow_negative"}
		}
	default:
		return &types.ConfigurationError{Field: "augment.policy", Reason: fmt.Sprintf("unknown policy %q", c.Policy)}
	}
	if c.WindowLength <= 0 {
		return &types.ConfigurationError{Field: "augment.window_length", Reason: "must be positive"}
	}
	return nil
}

// SourceRecord is a raw labeled waveform with its fixed partition.
type SourceRecord struct {
	Waveform  types.Waveform
	Label     float64
	Partition types.PartitionName
}

// Conditioner conditions a raw waveform.
type Conditioner interface {
	ConditionWaveform(types.Waveform) ([]float64, error)
}

// FeatureExtractor computes the feature vector of a conditioned waveform.
type FeatureExtractor interface {
	Extract([]float64) (types.FeatureVector, error)
}

// Engine produces augmented examples.
type Engine struct {
	componentMetadata types.ComponentMetadata
	cfg               Config
	conditioner       Conditioner
	extractor         FeatureExtractor
	partitions        map[types.PartitionName]bool
	loggers           []types.Logger
}

// NewEngine validates cfg and wires the conditioning and feature stages.
func NewEngine(cfg Config, c Conditioner, fe FeatureExtractor, options ...types.Option[*Engine]) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Partitions) == 0 {
		cfg.Partitions = []types.PartitionName{types.PartitionTrain}
	}
	e := &Engine{
		componentMetadata: types.ComponentMetadata{ID: utils.GenerateUniqueHash(), Type: "AUGMENTER"},
		cfg:               cfg,
		conditioner:       c,
		extractor:         fe,
		partitions:        make(map[types.PartitionName]bool, len(cfg.Partitions)),
	}
	for _, p := range cfg.Partitions {
		e.partitions[p] = true
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// WithLogger attaches loggers.
func WithLogger(loggers ...types.Logger) types.Option[*Engine] {
	return func(e *Engine) {
		for _, l := range loggers {
			if l != nil {
				e.loggers = append(e.loggers, l)
			}
		}
	}
}

// Shifts returns the shifts, in seconds, applied to the source with the given identity.
// Range draws come from a stream seeded by (Seed, FNV-64a(id)), so a source's shifts do not
// depend on which other sources are processed or in what order.
func (e *Engine) Shifts(id string) []float64 {
	switch e.cfg.Policy {
	case PolicyFixed:
		return []float64{e.cfg.FixedShift}
	case PolicyRange:
		rng := rand.New(rand.NewPCG(e.cfg.Seed, utils.Hash64(id)))
		out := make([]float64, e.cfg.Variants)
		for i := range out {
			out[i] = e.cfg.MinShift + rng.Float64()*(e.cfg.MaxShift-e.cfg.MinShift)
		}
		return out
	default:
		return nil
	}
}

// Augment generates variants for the records whose partition is configured for
// augmentation. Originals are not included in the result. The returned examples are sorted
// by ID; rejected shifts and conditioning failures are counted in the report. A cancelled
// ctx stops the batch and its error is returned with the partial report.
func (e *Engine) Augment(ctx context.Context, records []SourceRecord) ([]types.Example, types.BatchReport, error) {
	start := time.Now()
	report := types.NewBatchReport("augment")
	var out []types.Example
	seen := make(map[string]bool)

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			report.Elapsed = time.Since(start)
			e.notify(types.WarnLevel, "Augmentation cancelled", append([]interface{}{
				"event", "Augment", "result", "CANCELLED", "error", err,
			}, report.KeysAndValues()...)...)
			return nil, report, err
		}
		if !e.partitions[rec.Partition] {
			continue
		}
		for _, d := range e.Shifts(rec.Waveform.ID) {
			report.Submitted++
			ex, err := e.variant(rec, d)
			if err != nil {
				se := types.AsSkip(VariantID(rec.Waveform.ID, d), err)
				report.AddSkip(se.Kind)
				continue
			}
			if seen[ex.ID] {
				report.Submitted--
				continue
			}
			seen[ex.ID] = true
			out = append(out, ex)
			report.Processed++
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	report.Elapsed = time.Since(start)

	e.notify(types.InfoLevel, "Augmentation complete", append([]interface{}{
		"event", "Augment", "result", "SUCCESS", "policy", string(e.cfg.Policy),
	}, report.KeysAndValues()...)...)
	return out, report, nil
}

func (e *Engine) variant(rec SourceRecord, d float64) (types.Example, error) {
	id := VariantID(rec.Waveform.ID, d)
	fs := rec.Waveform.SamplingRate
	if !(fs > 0) {
		return types.Example{}, types.NewSkip(types.ReadFailure, id, fmt.Errorf("invalid sampling rate %v", fs))
	}
	window := float64(e.cfg.WindowLength) / fs
	label := rec.Label - AppliedShift(d, fs)
	if label < 0 || label > window {
		return types.Example{}, types.NewSkip(types.ShiftRejected, id,
			fmt.Errorf("shift %+.3f s moves arrival to %.3f s, outside [0, %.3f]", d, label, window))
	}

	shifted, err := Shift(rec.Waveform, d, e.cfg.AllowNegative)
	if err != nil {
		return types.Example{}, types.NewSkip(types.ShiftRejected, id, err)
	}
	shifted.ID = id

	conditioned, err := e.conditioner.ConditionWaveform(shifted)
	if err != nil {
		return types.Example{}, err
	}
	fv, err := e.extractor.Extract(conditioned)
	if err != nil {
		return types.Example{}, types.NewSkip(types.FilterError, id, err)
	}
	return types.Example{
		ID:           id,
		Parent:       rec.Waveform.ID,
		Waveform:     conditioned,
		Features:     fv,
		Label:        label,
		SamplingRate: fs,
		Start:        shifted.Start,
	}, nil
}

// AppliedShift returns the shift, in seconds, that Shift actually applies for a requested
// shift of d seconds at fs Hz: d rounded to a whole number of samples.
func AppliedShift(d, fs float64) float64 {
	n := math.Round(math.Abs(d) * fs)
	return math.Copysign(n/fs, d)
}

// Shift moves the window start of w by d seconds rounded to whole samples. A positive shift
// drops the first round(d*fs) samples; a negative shift, when allowed, prepends that many
// zeros. Start moves by the applied shift.
func Shift(w types.Waveform, d float64, allowNegative bool) (types.Waveform, error) {
	if !(w.SamplingRate > 0) || math.IsInf(w.SamplingRate, 0) {
		return types.Waveform{}, fmt.Errorf("invalid sampling rate %v", w.SamplingRate)
	}
	n := int(math.Round(math.Abs(d) * w.SamplingRate))
	out := w
	if !w.Start.IsZero() {
		out.Start = w.Start.Add(time.Duration(math.Round(AppliedShift(d, w.SamplingRate) * float64(time.Second))))
	}
	switch {
	case d >= 0:
		if n >= len(w.Samples) {
			return types.Waveform{}, fmt.Errorf("shift of %d samples consumes the %d-sample waveform", n, len(w.Samples))
		}
		out.Samples = append([]float64(nil), w.Samples[n:]...)
	case allowNegative:
		out.Samples = make([]float64, n+len(w.Samples))
		copy(out.Samples[n:], w.Samples)
	default:
		return types.Waveform{}, fmt.Errorf("negative shift %v not allowed", d)
	}
	return out, nil
}

// VariantID names the variant of id shifted by d seconds, e.g. "00000012.mseed#shift=+1.250".
func VariantID(id string, d float64) string {
	return fmt.Sprintf("%s#shift=%+.3f", id, d)
}

// ParentID strips a variant suffix from id.
func ParentID(id string) string {
	if i := strings.Index(id, "#shift="); i >= 0 {
		return id[:i]
	}
	return id
}

func (e *Engine) notify(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	kv := append([]interface{}{"component", e.componentMetadata}, keysAndValues...)
	for _, l := range e.loggers {
		if l.GetLevel() > level {
			continue
		}
		if level >= types.WarnLevel {
			l.Warn(msg, kv...)
			continue
		}
		l.Info(msg, kv...)
	}
}
