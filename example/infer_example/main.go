package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joeydtaylor/tremor/pkg/builder"
)

// Scores every waveform in the corpus directory with the stored best checkpoint and delivers
// absolute picks to the configured sink. Requires eval.year.
func main() {
	configPath := flag.String("config", builder.EnvOr("TREMOR_CONFIG", ""), "YAML config file (optional)")
	flag.Parse()

	ctx := context.Background()
	cfg, err := builder.LoadConfig(*configPath)
	if err == nil {
		err = cfg.RequireYear()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	p, logger, err := builder.NewPipelineFromConfig(ctx, cfg, "infer")
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Flush() }()

	m, ckpt, err := p.LoadModel(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load model: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("checkpoint run=%s epoch=%d val loss=%.4f\n", ckpt.RunID, ckpt.Epoch, ckpt.ValidationLoss)

	ids, err := builder.NewDirReader(cfg.Corpus.DataDir, cfg.Corpus.Extension).List(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list: %v\n", err)
		os.Exit(1)
	}
	preds, report, err := p.Infer(ctx, m, ids)
	if err != nil {
		fmt.Fprintf(os.Stderr, "infer: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("predicted %d of %d files (%v)\n", report.Processed, report.Submitted, report.SkipReasons)

	rows, skipped, err := p.Deliver(ctx, preds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "deliver: %v\n", err)
		os.Exit(1)
	}
	for file, reason := range skipped {
		fmt.Printf("  not delivered %s: %v\n", file, reason)
	}
	fmt.Printf("delivered %d picks via %s\n", len(rows), cfg.Publish.Sink)
}
