package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joeydtaylor/tremor/pkg/builder"
)

// Prints a survey of a raw corpus: sampling rates, signal lengths, the spectrum of one file,
// and label validity. Invalid label rows are written as CSV to -invalid when set.
func main() {
	configPath := flag.String("config", builder.EnvOr("TREMOR_CONFIG", ""), "YAML config file (optional)")
	invalidOut := flag.String("invalid", "", "write invalid label rows to this CSV file")
	flag.Parse()

	ctx := context.Background()
	cfg, err := builder.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	reader := builder.NewDirReader(cfg.Corpus.DataDir, cfg.Corpus.Extension)
	ids, err := reader.List(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d files in %s\n", len(ids), cfg.Corpus.DataDir)

	rates, report := builder.SamplingRates(ctx, reader, ids)
	for _, rc := range rates {
		fmt.Printf("  %8.2f Hz  %d files\n", rc.Rate, rc.Count)
	}
	if report.Skipped > 0 {
		fmt.Printf("  %d unreadable\n", report.Skipped)
	}

	stats, _, err := builder.SignalLengths(ctx, reader, ids)
	if err == nil {
		fmt.Printf("length: min=%d max=%d mean=%.1f median=%.1f p95=%.1f\n", stats.Min, stats.Max, stats.Mean, stats.Median, stats.P95)
	}

	if len(ids) > 0 {
		if w, err := reader.Read(ctx, ids[0]); err == nil {
			if s, err := builder.AnalyzeWaveform(w, cfg.Signal.LowHz, cfg.Signal.HighHz); err == nil {
				fmt.Printf("%s: dominant %.2f Hz, in-band %.1f%%, snr %.1f dB\n", ids[0], s.DominantHz, 100*s.BandEnergyRatio, s.SNRdB)
			}
		}
	}

	if cfg.Corpus.LabelsFile == "" {
		return
	}
	f, err := os.Open(cfg.Corpus.LabelsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "labels: %v\n", err)
		os.Exit(1)
	}
	labels, err := builder.LoadLabels(f)
	_ = f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "labels: %v\n", err)
		os.Exit(1)
	}
	results, _ := builder.ValidateLabels(ctx, reader, builder.LabelRows(labels))
	invalid := 0
	for _, r := range results {
		if !r.Valid {
			invalid++
		}
	}
	fmt.Printf("labels: %d checked, %d invalid\n", len(results), invalid)
	if *invalidOut != "" {
		out, err := os.Create(*invalidOut)
		if err != nil {
			fmt.Fprintf(os.Stderr, "export: %v\n", err)
			os.Exit(1)
		}
		defer out.Close()
		if err := builder.ExportValidation(out, results, true); err != nil {
			fmt.Fprintf(os.Stderr, "export: %v\n", err)
			os.Exit(1)
		}
	}
}
