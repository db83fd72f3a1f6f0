package inspect_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/joeydtaylor/tremor/pkg/internal/inspect"
	"github.com/joeydtaylor/tremor/pkg/internal/store"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

type mapReader map[string]types.Waveform

func (m mapReader) Read(_ context.Context, id string) (types.Waveform, error) {
	w, ok := m[id]
	if !ok {
		return types.Waveform{}, errors.New("no such file")
	}
	return w, nil
}

func wave(id string, n int, fs float64) types.Waveform {
	return types.Waveform{ID: id, Samples: make([]float64, n), SamplingRate: fs}
}

func TestSamplingRates(t *testing.T) {
	r := mapReader{
		"a": wave("a", 10, 100), "b": wave("b", 10, 50), "c": wave("c", 10, 100),
	}
	got, rep := inspect.SamplingRates(context.Background(), r, []string{"a", "b", "c", "missing"})
	if len(got) != 2 || got[0] != (inspect.RateCount{Rate: 50, Count: 1}) || got[1] != (inspect.RateCount{Rate: 100, Count: 2}) {
		t.Fatalf("unexpected census %+v", got)
	}
	if rep.Processed != 3 || rep.SkipReasons[types.ReadFailure] != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestLengths(t *testing.T) {
	s, err := inspect.Lengths([]int{100, 300, 200, 400})
	if err != nil {
		t.Fatalf("Lengths: %v", err)
	}
	if s.Count != 4 || s.Min != 100 || s.Max != 400 || s.Mean != 250 || s.Median != 250 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if math.Abs(s.Std-math.Sqrt(12500)) > 1e-9 {
		t.Fatalf("std = %v", s.Std)
	}
	// numpy.percentile([100,200,300,400], 95) = 385
	if math.Abs(s.P95-385) > 1e-9 {
		t.Fatalf("p95 = %v", s.P95)
	}
	if _, err := inspect.Lengths(nil); err == nil {
		t.Fatalf("expected error for no lengths")
	}

	r := mapReader{"a": wave("a", 7, 100)}
	lens, rep := inspect.ReadLengths(context.Background(), r, []string{"a", "b"})
	if len(lens) != 1 || lens[0] != 7 || rep.Skipped != 1 {
		t.Fatalf("ReadLengths = %v, %+v", lens, rep)
	}
}

func TestSpectrumFindsTone(t *testing.T) {
	const fs = 100.0
	x := make([]float64, 1000)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * 12 * float64(i) / fs)
	}
	s, err := inspect.Spectrum(x, fs, 7, 19)
	if err != nil {
		t.Fatalf("Spectrum: %v", err)
	}
	if math.Abs(s.DominantHz-12) > 0.1 {
		t.Fatalf("dominant %v Hz, want 12", s.DominantHz)
	}
	if s.BandEnergyRatio < 0.99 || s.SNRdB < 20 {
		t.Fatalf("tone not concentrated in band: %+v", s)
	}
	if _, err := inspect.Spectrum([]float64{1}, fs, 7, 19); err == nil {
		t.Fatalf("expected error for a single sample")
	}
}

func TestValidateAndExport(t *testing.T) {
	r := mapReader{"a": wave("a", 1000, 100), "b": wave("b", 1000, 100), "c": wave("c", 1000, 100)}
	labels := []store.LabelRow{
		{File: "a", ArrivalTime: 4},
		{File: "b", ArrivalTime: 12},
		{File: "c", ArrivalTime: math.NaN()},
		{File: "gone", ArrivalTime: 1},
	}
	res, rep := inspect.Validate(context.Background(), r, labels)
	if len(res) != 4 || !res[0].Valid || res[1].Valid || res[2].Valid || res[3].Valid {
		t.Fatalf("unexpected validity %+v", res)
	}
	if rep.SkipReasons[types.LabelOutOfRange] != 1 || rep.SkipReasons[types.LabelMismatch] != 1 || rep.SkipReasons[types.ReadFailure] != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if res[0].Duration != 10 {
		t.Fatalf("duration = %v", res[0].Duration)
	}

	var buf bytes.Buffer
	if err := inspect.ExportValidation(&buf, res, true); err != nil {
		t.Fatalf("ExportValidation: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 || lines[0] != strings.Join(inspect.ValidationHeader, ",") {
		t.Fatalf("unexpected export:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[2], "c,false,10,,missing P arrival,false") {
		t.Fatalf("unexpected row for missing arrival: %q", lines[2])
	}
}
