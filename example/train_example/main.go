package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/joeydtaylor/tremor/pkg/builder"
)

func main() {
	configPath := flag.String("config", builder.EnvOr("TREMOR_CONFIG", ""), "YAML config file (optional)")
	epochs := flag.Int("epochs", 0, "override train.epochs when > 0")
	flag.Parse()

	ctx := context.Background()
	cfg, err := builder.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *epochs > 0 {
		cfg.Train.Epochs = *epochs
	}
	p, logger, err := builder.NewPipelineFromConfig(ctx, cfg, uuid.NewString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Flush() }()

	labels, err := p.Labels(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "labels: %v\n", err)
		os.Exit(1)
	}
	ds, err := p.Extract(ctx, labels)
	if err != nil {
		fmt.Fprintf(os.Stderr, "extract: %v\n", err)
		os.Exit(1)
	}
	parts, err := p.Prepare(ctx, ds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "prepare: %v\n", err)
		os.Exit(1)
	}

	m, res, err := p.Train(ctx, parts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "train: %v\n", err)
		os.Exit(1)
	}
	for _, e := range res.History {
		marker := ""
		if e.Improved {
			marker = " *"
		}
		fmt.Printf("epoch %3d  train %.4f  val %.4f  %s%s\n", e.Epoch, e.TrainLoss, e.ValLoss, e.Elapsed, marker)
	}
	if res.StoppedEarly {
		fmt.Println("stopped early")
	}

	for _, part := range []builder.Partition{parts.Val, parts.Test} {
		ev, err := p.Evaluate(ctx, m, part)
		if err != nil {
			fmt.Fprintf(os.Stderr, "evaluate %s: %v\n", part.Name, err)
			os.Exit(1)
		}
		fmt.Printf("%-5s n=%d mae=%.3f rmse=%.3f median=%.3f within 0.5s=%.1f%%\n",
			ev.Partition, ev.Metrics.N, ev.Metrics.MAE, ev.Metrics.RMSE, ev.Metrics.MedianError, 100*ev.Metrics.Within05)
	}
}
