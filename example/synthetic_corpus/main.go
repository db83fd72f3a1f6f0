package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/joeydtaylor/tremor/pkg/builder"
)

// Writes a small synthetic corpus: noise windows with a damped 8 Hz onset at a random
// arrival time, named by window start, plus the matching labels table.
func main() {
	dir := flag.String("dir", "data/raw", "output directory for waveform files")
	labelsPath := flag.String("labels", "data/labels.csv", "output labels table")
	n := flag.Int("n", 200, "number of windows")
	fs := flag.Float64("fs", 100, "sampling rate in Hz")
	seconds := flag.Float64("seconds", 80, "window length in seconds")
	seed := flag.Uint64("seed", 7, "random seed")
	flag.Parse()

	rng := rand.New(rand.NewPCG(*seed, 0))
	reader := builder.NewDirReader(*dir, "mseed")
	start := time.Date(2009, time.January, 2, 0, 0, 0, 0, time.UTC)
	samples := int(*seconds * *fs)

	labels := make(map[string]float64, *n)
	for i := 0; i < *n; i++ {
		t0 := start.Add(time.Duration(i) * 10 * time.Minute)
		id := t0.Format("0102150405") + ".mseed"
		arrival := 5 + rng.Float64()*(*seconds-20)
		x := make([]float64, samples)
		for k := range x {
			t := float64(k) / *fs
			x[k] = 0.1 * rng.NormFloat64()
			if t >= arrival {
				dt := t - arrival
				x[k] += math.Exp(-dt/4) * math.Sin(2*math.Pi*8*dt)
			}
		}
		if err := reader.Write(builder.Waveform{ID: id, Samples: x, SamplingRate: *fs, Start: t0}); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", id, err)
			os.Exit(1)
		}
		labels[id] = math.Round(arrival*100) / 100
	}

	if err := os.MkdirAll(filepath.Dir(*labelsPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "labels: %v\n", err)
		os.Exit(1)
	}
	f, err := os.Create(*labelsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "labels: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := builder.WriteLabels(f, builder.LabelRows(labels)); err != nil {
		fmt.Fprintf(os.Stderr, "labels: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d windows to %s and labels to %s\n", *n, *dir, *labelsPath)
}
