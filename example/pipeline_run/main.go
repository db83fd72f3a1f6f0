package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/joeydtaylor/tremor/pkg/builder"
)

func main() {
	configPath := flag.String("config", builder.EnvOr("TREMOR_CONFIG", ""), "YAML config file (optional)")
	progress := flag.Bool("progress", false, "render progress bars on stderr")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := builder.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var opts []builder.PipelineOption
	if *progress || cfg.Corpus.Progress {
		opts = append(opts, builder.PipelineWithProgress(os.Stderr), builder.PipelineWithResourceSampling(true))
	}
	p, logger, err := builder.NewPipelineFromConfig(ctx, cfg, uuid.NewString(), opts...)
	if err != nil {
		if logger != nil {
			logger.Error("Pipeline setup failed", "event", "Setup", "result", "FAILURE", "error", err)
			_ = logger.Flush()
		}
		fmt.Fprintf(os.Stderr, "setup: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Flush() }()

	sum, err := p.Run(ctx)
	if err != nil {
		logger.Error("Run failed", "event", "Run", "result", "FAILURE", "error", err)
		_ = logger.Flush()
		os.Exit(1)
	}

	fmt.Printf("extracted: processed=%d skipped=%d resumed=%d %v\n",
		sum.Extraction.Processed, sum.Extraction.Skipped, sum.Extraction.Resumed, sum.Extraction.SkipReasons)
	fmt.Printf("partitions: %v\n", sum.Counts)
	fmt.Printf("best epoch %d of %d, val loss %.4f\n", sum.Training.BestEpoch, len(sum.Training.History), sum.Training.BestValLoss)
	m := sum.Evaluation.Metrics
	fmt.Printf("%s: n=%d mae=%.3fs rmse=%.3fs within 0.5s=%.1f%% within 1.0s=%.1f%%\n",
		sum.Evaluation.Partition, m.N, m.MAE, m.RMSE, 100*m.Within05, 100*m.Within10)
	if cfg.Eval.Year == 0 {
		fmt.Println("no reference year configured; picks not delivered")
		return
	}
	fmt.Printf("delivered %d picks, %d undeliverable\n", sum.Delivered, len(sum.Undelivered))
}
