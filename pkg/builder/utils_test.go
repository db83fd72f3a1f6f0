package builder

import (
	"math"
	"reflect"
	"testing"
)

func TestMapFilter(t *testing.T) {
	in := []int{1, 2, 3, 4}
	out := Map(in, func(v int) int { return v * 2 })
	if len(out) != 4 || out[0] != 2 || out[3] != 8 {
		t.Fatalf("unexpected map output: %v", out)
	}

	filtered := Filter(out, func(v int) bool { return v%4 == 0 })
	if len(filtered) != 2 || filtered[0] != 4 || filtered[1] != 8 {
		t.Fatalf("unexpected filter output: %v", filtered)
	}
}

func TestChunkAndSortedUnique(t *testing.T) {
	chunks := Chunk([]string{"a", "b", "c", "d", "e"}, 2)
	if len(chunks) != 3 || len(chunks[2]) != 1 {
		t.Fatalf("unexpected chunks: %v", chunks)
	}
	got := SortedUnique([]string{"b.mseed", "a.mseed", "b.mseed"})
	if want := []string{"a.mseed", "b.mseed"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("SortedUnique = %v, want %v", got, want)
	}
}

func TestTransformerSequence(t *testing.T) {
	t1 := func(v int) (int, error) { return v + 1, nil }
	t2 := func(v int) (int, error) { return v * 2, nil }
	seq := NewTransformerSequence(t1, t2)
	if len(seq) != 2 {
		t.Fatalf("expected 2 transformers, got %d", len(seq))
	}
}

func TestAnalyzeWaveform(t *testing.T) {
	const fs = 100.0
	samples := make([]float64, 1000)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 5 * float64(i) / fs)
	}
	s, err := AnalyzeWaveform(Waveform{ID: "tone", Samples: samples, SamplingRate: fs}, 1, 20)
	if err != nil {
		t.Fatalf("AnalyzeWaveform: %v", err)
	}
	if math.Abs(s.DominantHz-5) > 0.2 {
		t.Fatalf("dominant frequency = %v, want ~5", s.DominantHz)
	}
	if s.BandEnergyRatio < 0.9 {
		t.Fatalf("band energy ratio = %v, want > 0.9", s.BandEnergyRatio)
	}
	if _, err := AnalyzeWaveform(Waveform{Samples: samples}, 1, 20); err == nil {
		t.Fatalf("expected error for missing sampling rate")
	}
}
