package builder

import (
	"github.com/joeydtaylor/tremor/pkg/internal/evaluate"
	"github.com/joeydtaylor/tremor/pkg/internal/model"
	"github.com/joeydtaylor/tremor/pkg/internal/store"
	"github.com/joeydtaylor/tremor/pkg/internal/trainer"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

type ComponentMetadata = types.ComponentMetadata

type Logger = types.Logger

type Waveform = types.Waveform

type Example = types.Example

type FeatureVector = types.FeatureVector

type Partition = types.Partition

type PartitionName = types.PartitionName

const (
	PartitionTrain = types.PartitionTrain
	PartitionVal   = types.PartitionVal
	PartitionTest  = types.PartitionTest
)

type BatchReport = types.BatchReport

type SkipKind = types.SkipKind

const (
	ReadFailure     = types.ReadFailure
	FilterError     = types.FilterError
	LabelMismatch   = types.LabelMismatch
	LabelOutOfRange = types.LabelOutOfRange
	ShiftRejected   = types.ShiftRejected
)

type ConfigurationError = types.ConfigurationError

type ModelSpec = types.ModelSpec

type Checkpoint = types.Checkpoint

type Model = model.Hybrid

type Sample = model.Sample

type Metrics = evaluate.Metrics

type EpochStats = trainer.EpochStats

type TrainingResult = trainer.Result

type LabelRow = store.LabelRow

type PredictionRow = store.PredictionRow

type DeliverableRow = store.DeliverableRow

type ObjectStore = store.ObjectStore
