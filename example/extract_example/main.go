package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/joeydtaylor/tremor/pkg/builder"
)

// Extracts features for the whole corpus, splits and augments them, and writes the partition
// tables. Re-running with corpus.ledger_path set only processes files not seen before.
func main() {
	configPath := flag.String("config", builder.EnvOr("TREMOR_CONFIG", ""), "YAML config file (optional)")
	flag.Parse()

	ctx := context.Background()
	cfg, err := builder.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	p, logger, err := builder.NewPipelineFromConfig(ctx, cfg, "extract",
		builder.PipelineWithProgress(os.Stderr))
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Flush() }()

	labels, err := p.Labels(ctx)
	if err != nil {
		logger.Error("Labels unavailable", "event", "Labels", "result", "FAILURE", "error", err)
		os.Exit(1)
	}
	ds, err := p.Extract(ctx, labels)
	if err != nil {
		logger.Error("Extraction failed", "event", "Extract", "result", "FAILURE", "error", err)
		os.Exit(1)
	}
	report := ds.Report
	fmt.Printf("submitted=%d processed=%d skipped=%d resumed=%d elapsed=%s\n",
		report.Submitted, report.Processed, report.Skipped, report.Resumed, report.Elapsed)
	kinds := make([]string, 0, len(report.SkipReasons))
	for k := range report.SkipReasons {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("  %-20s %d\n", k, report.SkipReasons[builder.SkipKind(k)])
	}

	parts, err := p.Prepare(ctx, ds)
	if err != nil {
		logger.Error("Prepare failed", "event", "Prepare", "result", "FAILURE", "error", err)
		os.Exit(1)
	}
	fmt.Printf("train=%d val=%d test=%d (augmentation skipped %d)\n",
		parts.Train.Len(), parts.Val.Len(), parts.Test.Len(), parts.Augmentation.Skipped)
	for _, name := range []builder.PartitionName{builder.PartitionTrain, builder.PartitionVal, builder.PartitionTest} {
		fmt.Printf("  %s -> %s\n", name, p.FeatureStore().Key(name))
	}
}
