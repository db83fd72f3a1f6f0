package conditioner_test

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/joeydtaylor/tremor/pkg/internal/conditioner"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"gonum.org/v1/gonum/stat"
)

func noisyTrace(n int, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, 7))
	x := make([]float64, n)
	for i := range x {
		t := float64(i) / 100
		x[i] = 40*math.Sin(2*math.Pi*11*t) + 15*math.Sin(2*math.Pi*3*t) + 250 + rng.NormFloat64()*5
	}
	return x
}

func newConditioner(t *testing.T, length int) *conditioner.Conditioner {
	t.Helper()
	c, err := conditioner.NewConditioner(conditioner.Config{Length: length, LowHz: 7, HighHz: 19})
	if err != nil {
		t.Fatalf("NewConditioner: %v", err)
	}
	return c
}

func TestConditionFixedLength(t *testing.T) {
	c := newConditioner(t, 1000)
	for _, n := range []int{1, 17, 999, 1000, 1001, 4321} {
		out, err := c.Condition(noisyTrace(n, uint64(n)), 100)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if len(out) != 1000 {
			t.Fatalf("n=%d: expected length 1000, got %d", n, len(out))
		}
	}
}

func TestConditionIdempotent(t *testing.T) {
	c := newConditioner(t, 1024)
	once, err := c.Condition(noisyTrace(1500, 1), 100)
	if err != nil {
		t.Fatalf("Condition: %v", err)
	}
	twice, err := c.Condition(once, 100)
	if err != nil {
		t.Fatalf("Condition: %v", err)
	}
	for i := range once {
		if math.Abs(once[i]-twice[i]) > 1e-9 {
			t.Fatalf("sample %d differs: %v vs %v", i, once[i], twice[i])
		}
	}
}

func TestConditionUnitVariance(t *testing.T) {
	c := newConditioner(t, 2000)
	out, err := c.Condition(noisyTrace(2000, 2), 100)
	if err != nil {
		t.Fatalf("Condition: %v", err)
	}
	mean, std := stat.PopMeanStdDev(out, nil)
	if math.Abs(mean) > 1e-9 || math.Abs(std-1) > 1e-9 {
		t.Fatalf("expected zero mean and unit std, got %v / %v", mean, std)
	}
}

func TestConditionDegenerateInputs(t *testing.T) {
	c := newConditioner(t, 256)
	cases := map[string][]float64{
		"all zero": make([]float64, 300),
		"constant": func() []float64 {
			x := make([]float64, 300)
			for i := range x {
				x[i] = 42
			}
			return x
		}(),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := c.Condition(in, 100)
			if err != nil {
				t.Fatalf("Condition: %v", err)
			}
			for i, v := range out {
				if v != 0 {
					t.Fatalf("expected zero vector, sample %d = %v", i, v)
				}
			}
		})
	}
}

func TestConditionSkips(t *testing.T) {
	c := newConditioner(t, 128)
	cases := []struct {
		name    string
		samples []float64
		fs      float64
		kind    types.SkipKind
	}{
		{"empty", nil, 100, types.ReadFailure},
		{"nan", []float64{1, math.NaN(), 2}, 100, types.ReadFailure},
		{"inf", []float64{1, math.Inf(1)}, 100, types.ReadFailure},
		{"zero rate", []float64{1, 2, 3}, 0, types.ReadFailure},
		{"band above nyquist", []float64{1, 2, 3}, 30, types.FilterError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.ConditionWaveform(types.Waveform{ID: "w1", Samples: tc.samples, SamplingRate: tc.fs})
			var se *types.SkipError
			if !errors.As(err, &se) {
				t.Fatalf("expected SkipError, got %v", err)
			}
			if se.Kind != tc.kind || se.ID != "w1" {
				t.Fatalf("expected %s for w1, got %s for %q", tc.kind, se.Kind, se.ID)
			}
		})
	}
}

func TestBandpassRemovesOutOfBandTone(t *testing.T) {
	const n, fs = 1000, 100.0
	x := make([]float64, n)
	for i := range x {
		tt := float64(i) / fs
		x[i] = math.Sin(2*math.Pi*2*tt) + math.Sin(2*math.Pi*12*tt)
	}
	y := conditioner.Bandpass(x, fs, 7, 19)
	for i := range y {
		want := math.Sin(2 * math.Pi * 12 * float64(i) / fs)
		if math.Abs(y[i]-want) > 1e-9 {
			t.Fatalf("sample %d: got %v want %v", i, y[i], want)
		}
	}
}

func TestFixLength(t *testing.T) {
	got := conditioner.FixLength([]float64{1, 2, 3}, 5)
	if len(got) != 5 || got[2] != 3 || got[3] != 0 || got[4] != 0 {
		t.Fatalf("unexpected padding %v", got)
	}
	got = conditioner.FixLength([]float64{1, 2, 3}, 2)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected truncation %v", got)
	}
}

func TestConfigValidate(t *testing.T) {
	bad := []conditioner.Config{
		{Length: 0, LowHz: 7, HighHz: 19},
		{Length: 10, LowHz: -1, HighHz: 19},
		{Length: 10, LowHz: 19, HighHz: 7},
	}
	for _, cfg := range bad {
		_, err := conditioner.NewConditioner(cfg)
		var ce *types.ConfigurationError
		if !errors.As(err, &ce) {
			t.Fatalf("expected ConfigurationError for %+v, got %v", cfg, err)
		}
	}
	if err := conditioner.DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
