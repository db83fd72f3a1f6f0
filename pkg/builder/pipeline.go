package builder

import (
	"context"
	"io"

	"github.com/joeydtaylor/tremor/pkg/internal/config"
	"github.com/joeydtaylor/tremor/pkg/internal/corpus"
	"github.com/joeydtaylor/tremor/pkg/internal/pipeline"
	"github.com/joeydtaylor/tremor/pkg/internal/publish"
	"github.com/joeydtaylor/tremor/pkg/internal/store"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

type Config = config.Config

type Pipeline = pipeline.Pipeline

type Dataset = pipeline.Dataset

type Partitions = pipeline.Partitions

type Evaluation = pipeline.Evaluation

type Summary = pipeline.Summary

type Publisher = publish.Publisher

type DirReader = corpus.DirReader

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config { return config.Default() }

// LoadConfig reads defaults, then the YAML file at path (if non-empty), then TREMOR_*
// environment overrides, and validates the result.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// IsConfigurationError reports whether err came from configuration validation.
func IsConfigurationError(err error) bool { return config.IsConfigurationError(err) }

// NewDirReader reads waveform files with extension ext from dir.
func NewDirReader(dir, ext string) *DirReader { return corpus.NewDirReader(dir, ext) }

// NewPipeline wires every stage from cfg.
func NewPipeline(cfg Config, reader types.WaveformReader, objects ObjectStore, options ...types.Option[*Pipeline]) (*Pipeline, error) {
	return pipeline.New(cfg, reader, objects, options...)
}

// NewPipelineFromConfig builds the reader, object store, logger and publisher named by cfg
// and returns a ready pipeline. The returned logger is the one the pipeline logs to.
func NewPipelineFromConfig(ctx context.Context, cfg Config, runID string, options ...types.Option[*Pipeline]) (*Pipeline, types.Logger, error) {
	logger, err := pipeline.NewLogger(cfg.Log, runID)
	if err != nil {
		return nil, nil, err
	}
	objects, err := pipeline.NewObjectStore(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, logger, err
	}
	pub, err := pipeline.NewPublisher(cfg.Publish, objects, runID, logger)
	if err != nil {
		return nil, logger, err
	}
	opts := []types.Option[*Pipeline]{pipeline.WithLogger(logger), pipeline.WithRunID(runID)}
	if pub != nil {
		opts = append(opts, pipeline.WithPublisher(pub))
	}
	p, err := pipeline.New(cfg, corpus.NewDirReader(cfg.Corpus.DataDir, cfg.Corpus.Extension), objects, append(opts, options...)...)
	return p, logger, err
}

// NewObjectStore opens the configured artifact store.
func NewObjectStore(ctx context.Context, cfg config.Storage, loggers ...types.Logger) (store.ObjectStore, error) {
	return pipeline.NewObjectStore(ctx, cfg, loggers...)
}

// NewLocalStore keeps artifacts under dir.
func NewLocalStore(dir string) (*store.LocalStore, error) { return store.NewLocalStore(dir) }

// NewPublisher builds the configured pick sink, or nil for the "none" sink.
func NewPublisher(cfg config.Publish, objects ObjectStore, runID string, loggers ...types.Logger) (Publisher, error) {
	return pipeline.NewPublisher(cfg, objects, runID, loggers...)
}

// NewConfiguredLogger builds the logger described by the log section.
func NewConfiguredLogger(cfg config.Log, runID string) (types.Logger, error) {
	l, err := pipeline.NewLogger(cfg, runID)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// PipelineWithLogger attaches loggers to every stage.
func PipelineWithLogger(loggers ...types.Logger) types.Option[*Pipeline] {
	return pipeline.WithLogger(loggers...)
}

// PipelineWithPublisher sets the pick sink used by Deliver.
func PipelineWithPublisher(pub Publisher) types.Option[*Pipeline] {
	return pipeline.WithPublisher(pub)
}

// PipelineWithProgress renders batch progress bars to w.
func PipelineWithProgress(w io.Writer) types.Option[*Pipeline] {
	return pipeline.WithProgress(w)
}

// PipelineWithResourceSampling records CPU and memory usage in batch reports.
func PipelineWithResourceSampling(enabled bool) types.Option[*Pipeline] {
	return pipeline.WithResourceSampling(enabled)
}

// PipelineWithRunID stamps logs, checkpoints and published picks with id.
func PipelineWithRunID(id string) types.Option[*Pipeline] {
	return pipeline.WithRunID(id)
}

// PipelineOption configures a Pipeline.
type PipelineOption = types.Option[*Pipeline]

// WriteLabels writes a labels table.
func WriteLabels(w io.Writer, rows []LabelRow) error { return store.WriteLabels(w, rows) }
