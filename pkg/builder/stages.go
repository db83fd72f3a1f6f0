package builder

import (
	"github.com/joeydtaylor/tremor/pkg/internal/augment"
	"github.com/joeydtaylor/tremor/pkg/internal/conditioner"
	"github.com/joeydtaylor/tremor/pkg/internal/evaluate"
	"github.com/joeydtaylor/tremor/pkg/internal/features"
	"github.com/joeydtaylor/tremor/pkg/internal/model"
	"github.com/joeydtaylor/tremor/pkg/internal/splitter"
	"github.com/joeydtaylor/tremor/pkg/internal/trainer"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

type Conditioner = conditioner.Conditioner

type FeatureExtractor = features.Extractor

type Assignment = splitter.Assignment

type AugmentEngine = augment.Engine

type Trainer = trainer.Trainer

// NewConditioner builds the resample, bandpass and normalize stage from cfg.
func NewConditioner(cfg Config, loggers ...types.Logger) (*Conditioner, error) {
	return conditioner.NewConditioner(cfg.ConditionerConfig(), conditioner.WithLogger(loggers...))
}

// NewFeatureExtractor builds the wavelet statistics stage from cfg.
func NewFeatureExtractor(cfg Config) (*FeatureExtractor, error) {
	return features.NewExtractor(cfg.FeaturesConfig())
}

// FeatureNames lists the feature columns for a decomposition of the given depth.
func FeatureNames(levels int) []string { return features.Names(levels) }

// Split assigns every source identity to one partition.
func Split(ids []string, cfg Config) (Assignment, error) {
	return splitter.Split(ids, cfg.SplitterConfig())
}

// NewAugmentEngine builds the time-shift augmentation stage from cfg.
func NewAugmentEngine(cfg Config, c *Conditioner, fe *FeatureExtractor, loggers ...types.Logger) (*AugmentEngine, error) {
	return augment.NewEngine(cfg.AugmentConfig(), c, fe, augment.WithLogger(loggers...))
}

// NewModel builds an untrained hybrid regressor shaped by cfg.
func NewModel(cfg Config) (*Model, error) {
	return model.New(cfg.ModelSpec())
}

// ModelFromCheckpoint restores a trained regressor.
func ModelFromCheckpoint(c Checkpoint) (*Model, error) {
	return model.FromCheckpoint(c)
}

// NewTrainer builds the training loop from cfg, saving the best epoch to checkpoints.
func NewTrainer(cfg Config, checkpoints trainer.CheckpointStore, loggers ...types.Logger) (*Trainer, error) {
	return trainer.NewTrainer(cfg.TrainerConfig(), checkpoints, trainer.WithLogger(loggers...))
}

// SamplesFrom converts a partition into model inputs.
func SamplesFrom(p Partition) []Sample { return model.SamplesFrom(p) }

// ComputeMetrics scores predictions against labels.
func ComputeMetrics(preds, labels []float64) (Metrics, error) {
	return evaluate.Compute(preds, labels)
}
