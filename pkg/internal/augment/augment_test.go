package augment_test

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/joeydtaylor/tremor/pkg/internal/augment"
	"github.com/joeydtaylor/tremor/pkg/internal/conditioner"
	"github.com/joeydtaylor/tremor/pkg/internal/features"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

var t0 = time.Date(2009, 7, 1, 12, 0, 0, 0, time.UTC)

func trace(id string, n int) types.Waveform {
	x := make([]float64, n)
	for i := range x {
		s := float64(i) / 100
		x[i] = 30*math.Sin(2*math.Pi*9*s) + 10*math.Sin(2*math.Pi*14*s+float64(len(id)))
	}
	return types.Waveform{ID: id, Samples: x, SamplingRate: 100, Start: t0}
}

func newEngine(t *testing.T, cfg augment.Config) *augment.Engine {
	t.Helper()
	c, err := conditioner.NewConditioner(conditioner.Config{Length: 1000, LowHz: 7, HighHz: 19})
	if err != nil {
		t.Fatalf("NewConditioner: %v", err)
	}
	fe, err := features.NewExtractor(features.Config{Wavelet: "db2", Levels: 3})
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}
	cfg.WindowLength = 1000
	e, err := augment.NewEngine(cfg, c, fe)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestFixedShiftMovesLabelAndStart(t *testing.T) {
	e := newEngine(t, augment.Config{Policy: augment.PolicyFixed, FixedShift: 2})
	recs := []augment.SourceRecord{{Waveform: trace("a.mseed", 1200), Label: 6, Partition: types.PartitionTrain}}

	out, rep, err := e.Augment(context.Background(), recs)
	if err != nil {
		t.Fatalf("Augment: %v", err)
	}
	if len(out) != 1 || rep.Processed != 1 || rep.Skipped != 0 {
		t.Fatalf("unexpected result: %d examples, report %+v", len(out), rep)
	}
	ex := out[0]
	if ex.ID != "a.mseed#shift=+2.000" || ex.Parent != "a.mseed" {
		t.Fatalf("unexpected identity %q parent %q", ex.ID, ex.Parent)
	}
	if math.Abs(ex.Label-4) > 1e-12 {
		t.Fatalf("expected label 4, got %v", ex.Label)
	}
	if !ex.Start.Equal(t0.Add(2 * time.Second)) {
		t.Fatalf("expected start shifted by 2s, got %v", ex.Start)
	}
	if len(ex.Waveform) != 1000 || len(ex.Features) != 12*4 {
		t.Fatalf("unexpected shapes: waveform %d, features %d", len(ex.Waveform), len(ex.Features))
	}
}

func TestShiftOutsideWindowRejected(t *testing.T) {
	e := newEngine(t, augment.Config{Policy: augment.PolicyFixed, FixedShift: 7})
	recs := []augment.SourceRecord{{Waveform: trace("a.mseed", 1200), Label: 6, Partition: types.PartitionTrain}}

	out, rep, err := e.Augment(context.Background(), recs)
	if err != nil {
		t.Fatalf("Augment: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no variants, got %d", len(out))
	}
	if rep.SkipReasons[types.ShiftRejected] != 1 {
		t.Fatalf("expected one shift rejection, got %v", rep.SkipReasons)
	}
}

func TestOnlyConfiguredPartitionsAugmented(t *testing.T) {
	e := newEngine(t, augment.Config{Policy: augment.PolicyFixed, FixedShift: 1})
	recs := []augment.SourceRecord{
		{Waveform: trace("a.mseed", 1200), Label: 5, Partition: types.PartitionTrain},
		{Waveform: trace("b.mseed", 1200), Label: 5, Partition: types.PartitionVal},
		{Waveform: trace("c.mseed", 1200), Label: 5, Partition: types.PartitionTest},
	}
	out, _, _ := e.Augment(context.Background(), recs)
	if len(out) != 1 || out[0].Parent != "a.mseed" {
		t.Fatalf("expected only the train source augmented, got %+v", out)
	}
}

func TestRangePolicyDeterministic(t *testing.T) {
	cfg := augment.Config{Policy: augment.PolicyRange, MinShift: 0.5, MaxShift: 3, Variants: 4, Seed: 11}
	e := newEngine(t, cfg)

	recs := []augment.SourceRecord{
		{Waveform: trace("a.mseed", 1200), Label: 8, Partition: types.PartitionTrain},
		{Waveform: trace("bb.mseed", 1200), Label: 8, Partition: types.PartitionTrain},
	}
	reversed := []augment.SourceRecord{recs[1], recs[0]}

	out1, _, _ := e.Augment(context.Background(), recs)
	out2, _, _ := newEngine(t, cfg).Augment(context.Background(), reversed)
	if len(out1) != 8 {
		t.Fatalf("expected 8 variants, got %d", len(out1))
	}
	ids := func(xs []types.Example) []string {
		s := make([]string, len(xs))
		for i, x := range xs {
			s[i] = x.ID
		}
		return s
	}
	if !reflect.DeepEqual(ids(out1), ids(out2)) {
		t.Fatalf("variants depend on record order")
	}
	for _, d := range e.Shifts("a.mseed") {
		if d < 0.5 || d >= 3 {
			t.Fatalf("shift %v outside range", d)
		}
	}
	for _, ex := range out1 {
		if augment.ParentID(ex.ID) != ex.Parent {
			t.Fatalf("parent mismatch for %s", ex.ID)
		}
		if ex.Label < 0 || ex.Label > 10 {
			t.Fatalf("label %v outside window", ex.Label)
		}
	}
}

func TestLabelFollowsAppliedSampleShift(t *testing.T) {
	e := newEngine(t, augment.Config{Policy: augment.PolicyFixed, FixedShift: 2.006})
	w := trace("a.mseed", 1200)
	recs := []augment.SourceRecord{{Waveform: w, Label: 6, Partition: types.PartitionTrain}}

	out, _, err := e.Augment(context.Background(), recs)
	if err != nil {
		t.Fatalf("Augment: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one variant, got %d", len(out))
	}
	// 2.006 s at 100 Hz drops 201 samples, so the window moves by 2.01 s.
	if math.Abs(out[0].Label-3.99) > 1e-9 {
		t.Fatalf("expected label 3.99, got %v", out[0].Label)
	}
	if !out[0].Start.Equal(t0.Add(2010 * time.Millisecond)) {
		t.Fatalf("expected start moved by 2.01s, got %v", out[0].Start.Sub(t0))
	}
	shifted, err := augment.Shift(w, 2.006, false)
	if err != nil {
		t.Fatalf("Shift: %v", err)
	}
	if len(shifted.Samples) != len(w.Samples)-201 || shifted.Samples[0] != w.Samples[201] {
		t.Fatalf("Shift did not drop 201 samples")
	}
	if got := augment.AppliedShift(-0.014, 100); math.Abs(got+0.01) > 1e-12 {
		t.Fatalf("AppliedShift(-0.014, 100) = %v, want -0.01", got)
	}
}

func TestAugmentCancelled(t *testing.T) {
	e := newEngine(t, augment.Config{Policy: augment.PolicyFixed, FixedShift: 1})
	recs := []augment.SourceRecord{{Waveform: trace("a.mseed", 1200), Label: 5, Partition: types.PartitionTrain}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, _, err := e.Augment(ctx, recs)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if out != nil {
		t.Fatalf("expected no variants from a cancelled batch, got %d", len(out))
	}
}

func TestShiftNegativePrependsZeros(t *testing.T) {
	w := trace("a", 50)
	out, err := augment.Shift(w, -0.1, true)
	if err != nil {
		t.Fatalf("Shift: %v", err)
	}
	if len(out.Samples) != 60 {
		t.Fatalf("expected 60 samples, got %d", len(out.Samples))
	}
	for i := 0; i < 10; i++ {
		if out.Samples[i] != 0 {
			t.Fatalf("expected leading zeros, got %v at %d", out.Samples[i], i)
		}
	}
	if out.Samples[10] != w.Samples[0] {
		t.Fatalf("samples not preserved after padding")
	}
	if _, err := augment.Shift(w, -0.1, false); err == nil {
		t.Fatalf("expected negative shift to be refused")
	}
	if _, err := augment.Shift(w, 0.5, false); err == nil {
		t.Fatalf("expected a shift consuming the waveform to fail")
	}
}

func TestConfigValidate(t *testing.T) {
	bad := []augment.Config{
		{Policy: "sideways", WindowLength: 10},
		{Policy: augment.PolicyFixed, FixedShift: 0, WindowLength: 10},
		{Policy: augment.PolicyFixed, FixedShift: -1, WindowLength: 10},
		{Policy: augment.PolicyRange, MinShift: 2, MaxShift: 1, Variants: 1, WindowLength: 10},
		{Policy: augment.PolicyRange, MinShift: -1, MaxShift: 1, Variants: 1, WindowLength: 10},
		{Policy: augment.PolicyRange, MinShift: 0, MaxShift: 1, Variants: 0, WindowLength: 10},
	}
	for i, cfg := range bad {
		var ce *types.ConfigurationError
		if err := cfg.Validate(); !errors.As(err, &ce) {
			t.Fatalf("case %d: expected ConfigurationError, got %v", i, err)
		}
	}
	if err := augment.DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
