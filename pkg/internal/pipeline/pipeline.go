// Package pipeline composes the typed stages into the full arrival-time workflow:
// extraction, partitioning, augmentation, persistence, training, evaluation and delivery.
// Every stage receives its settings from one config.Config and reports what it skipped.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joeydtaylor/tremor/pkg/internal/augment"
	"github.com/joeydtaylor/tremor/pkg/internal/codec"
	"github.com/joeydtaylor/tremor/pkg/internal/conditioner"
	"github.com/joeydtaylor/tremor/pkg/internal/config"
	"github.com/joeydtaylor/tremor/pkg/internal/corpus"
	"github.com/joeydtaylor/tremor/pkg/internal/evaluate"
	"github.com/joeydtaylor/tremor/pkg/internal/features"
	"github.com/joeydtaylor/tremor/pkg/internal/model"
	"github.com/joeydtaylor/tremor/pkg/internal/publish"
	"github.com/joeydtaylor/tremor/pkg/internal/splitter"
	"github.com/joeydtaylor/tremor/pkg/internal/store"
	"github.com/joeydtaylor/tremor/pkg/internal/trainer"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/joeydtaylor/tremor/pkg/internal/utils"
)

// Object keys written by the pipeline.
const (
	FeaturePrefix    = "features"
	LabelPrefix      = "labels"
	CheckpointKey    = "checkpoints/best.ckpt"
	PredictionPrefix = "predictions"
)

// Lister enumerates the source identities a reader can serve.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// Pipeline runs the workflow against one reader and one object store.
type Pipeline struct {
	componentMetadata types.ComponentMetadata
	cfg               config.Config

	reader      types.WaveformReader
	objects     store.ObjectStore
	publisher   publish.Publisher
	conditioner *conditioner.Conditioner
	features    *features.Extractor
	featureRows *store.FeatureStore
	checkpoints *trainer.ObjectCheckpointStore

	progress        io.Writer
	sampleResources bool
	runID           string
	loggers         []types.Logger
}

// New validates cfg and builds the stateless stages.
func New(cfg config.Config, reader types.WaveformReader, objects store.ObjectStore, options ...types.Option[*Pipeline]) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reader == nil || objects == nil {
		return nil, fmt.Errorf("pipeline: reader and object store are required")
	}
	p := &Pipeline{
		componentMetadata: types.ComponentMetadata{ID: utils.GenerateUniqueHash(), Type: "PIPELINE"},
		cfg:               cfg,
		reader:            reader,
		objects:           objects,
		sampleResources:   true,
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}

	var err error
	if p.conditioner, err = conditioner.NewConditioner(cfg.ConditionerConfig(), conditioner.WithLogger(p.loggers...)); err != nil {
		return nil, err
	}
	if p.features, err = features.NewExtractor(cfg.FeaturesConfig()); err != nil {
		return nil, err
	}
	comp, err := codec.ParseCompression(cfg.Storage.CheckpointCompression)
	if err != nil {
		return nil, &types.ConfigurationError{Field: "storage.checkpoint_compression", Reason: err.Error()}
	}
	p.featureRows = store.NewFeatureStore(objects, FeaturePrefix, cfg.Storage.TableCompression)
	p.checkpoints = trainer.NewCheckpointStore(objects, CheckpointKey, comp)
	return p, nil
}

func WithLogger(loggers ...types.Logger) types.Option[*Pipeline] {
	return func(p *Pipeline) {
		for _, l := range loggers {
			if l != nil {
				p.loggers = append(p.loggers, l)
			}
		}
	}
}

// WithPublisher sets the sink that receives the final picks.
func WithPublisher(pub publish.Publisher) types.Option[*Pipeline] {
	return func(p *Pipeline) { p.publisher = pub }
}

// WithProgress renders extraction progress to w.
func WithProgress(w io.Writer) types.Option[*Pipeline] {
	return func(p *Pipeline) { p.progress = w }
}

// WithResourceSampling toggles CPU and memory sampling in batch reports.
func WithResourceSampling(enabled bool) types.Option[*Pipeline] {
	return func(p *Pipeline) { p.sampleResources = enabled }
}

// WithRunID fixes the training run identifier.
func WithRunID(id string) types.Option[*Pipeline] {
	return func(p *Pipeline) { p.runID = id }
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() config.Config { return p.cfg }

// FeatureStore returns the partition table store.
func (p *Pipeline) FeatureStore() *store.FeatureStore { return p.featureRows }

// CheckpointStore returns the store holding the best checkpoint.
func (p *Pipeline) CheckpointStore() *trainer.ObjectCheckpointStore { return p.checkpoints }

// Dataset is the set of conditioned original examples with their labels.
type Dataset struct {
	Examples []types.Example
	Labels   map[string]float64
	Report   types.BatchReport
}

// Partitions holds the three fixed partitions after augmentation.
type Partitions struct {
	Train, Val, Test types.Partition
	Assignment       splitter.Assignment
	Augmentation     types.BatchReport
}

// Evaluation is the outcome of scoring a labeled partition.
type Evaluation struct {
	Partition   types.PartitionName
	Metrics     evaluate.Metrics
	Predictions []store.PredictionRow
}

// Summary reports a full run.
type Summary struct {
	Extraction   types.BatchReport
	Augmentation types.BatchReport
	Counts       map[types.PartitionName]int
	Training     trainer.Result
	Evaluation   Evaluation
	Delivered    int
	Undelivered  map[string]error
}

// Labels loads the relative labels from the labels table, or converts the upstream catalog
// when only a catalog is configured.
func (p *Pipeline) Labels(ctx context.Context) (map[string]float64, error) {
	c := p.cfg.Corpus
	switch {
	case c.LabelsFile != "":
		f, err := os.Open(c.LabelsFile)
		if err != nil {
			return nil, fmt.Errorf("pipeline: open labels: %w", err)
		}
		defer f.Close()
		return corpus.LoadLabels(f)
	case c.CatalogFile != "":
		f, err := os.Open(c.CatalogFile)
		if err != nil {
			return nil, fmt.Errorf("pipeline: open catalog: %w", err)
		}
		defer f.Close()
		rows, err := store.ReadCatalog(f)
		if err != nil {
			return nil, err
		}
		labels, report, err := corpus.CatalogLabels(ctx, p.reader, rows, c.Extension)
		if err != nil {
			return nil, err
		}
		p.notify(types.InfoLevel, "Catalog converted", append([]interface{}{"event", "Catalog", "result", "SUCCESS"}, report.KeysAndValues()...)...)
		out := make(map[string]float64, len(labels))
		for _, l := range labels {
			out[l.File] = l.ArrivalTime
		}
		return out, nil
	default:
		return nil, &types.ConfigurationError{Field: "corpus.labels_file", Reason: "a labels table or a catalog is required"}
	}
}

// Extract conditions and featurizes every labeled source.
func (p *Pipeline) Extract(ctx context.Context, labels map[string]float64) (Dataset, error) {
	var ids []string
	if l, ok := p.reader.(Lister); ok {
		var err error
		if ids, err = l.List(ctx); err != nil {
			return Dataset{}, fmt.Errorf("pipeline: list sources: %w", err)
		}
	}

	opts := []types.Option[*corpus.Extractor]{
		corpus.WithWorkers(p.cfg.Corpus.Workers),
		corpus.WithLogger(p.loggers...),
		corpus.WithResourceSampling(p.sampleResources),
	}
	if p.progress != nil {
		opts = append(opts, corpus.WithProgress(p.progress))
	}
	if p.cfg.Corpus.LedgerPath != "" {
		if err := utils.EnsureParentDir(p.cfg.Corpus.LedgerPath); err != nil {
			return Dataset{}, err
		}
		ledger, err := corpus.OpenLedger(p.cfg.Corpus.LedgerPath, corpus.Namespace(p.cfg.ConditionerConfig(), p.cfg.FeaturesConfig()))
		if err != nil {
			return Dataset{}, fmt.Errorf("pipeline: open ledger: %w", err)
		}
		defer ledger.Close()
		opts = append(opts, corpus.WithLedger(ledger))
	}

	results, report, err := corpus.NewExtractor(p.reader, p.conditioner, p.features, opts...).Extract(ctx, ids, labels)
	if err != nil {
		return Dataset{}, err
	}
	return Dataset{Examples: corpus.Examples(results), Labels: labels, Report: report}, nil
}

// Prepare splits the dataset by source identity, augments the configured partitions and
// persists the partition tables. Variants always land in their source's partition.
func (p *Pipeline) Prepare(ctx context.Context, ds Dataset) (Partitions, error) {
	ids := make([]string, len(ds.Examples))
	for i, ex := range ds.Examples {
		ids[i] = ex.Parent
	}
	assignment, err := splitter.Split(ids, p.cfg.SplitterConfig())
	if err != nil {
		return Partitions{}, err
	}

	engine, err := augment.NewEngine(p.cfg.AugmentConfig(), p.conditioner, p.features, augment.WithLogger(p.loggers...))
	if err != nil {
		return Partitions{}, err
	}
	records, readReport := p.sourceRecords(ctx, ds, assignment, p.cfg.AugmentConfig().Partitions)
	if err := ctx.Err(); err != nil {
		return Partitions{}, err
	}
	variants, augReport, err := engine.Augment(ctx, records)
	if err != nil {
		return Partitions{}, err
	}
	augReport.Merge(readReport)

	all := append(append([]types.Example(nil), ds.Examples...), variants...)
	grouped, partReport := assignment.Partition(all)
	augReport.Merge(partReport)
	parts := Partitions{
		Train:        grouped[types.PartitionTrain],
		Val:          grouped[types.PartitionVal],
		Test:         grouped[types.PartitionTest],
		Assignment:   assignment,
		Augmentation: augReport,
	}
	parts.Train.Name, parts.Val.Name, parts.Test.Name = types.PartitionTrain, types.PartitionVal, types.PartitionTest
	if err := splitter.VerifyDisjoint(parts.Train, parts.Val, parts.Test); err != nil {
		return Partitions{}, err
	}

	for _, part := range []types.Partition{parts.Train, parts.Val, parts.Test} {
		if err := p.featureRows.Save(ctx, part); err != nil {
			return Partitions{}, err
		}
		var buf bytes.Buffer
		if err := store.WriteLabels(&buf, corpus.NewArtifacts(part.Examples).LabelRows()); err != nil {
			return Partitions{}, err
		}
		if err := p.objects.Put(ctx, LabelPrefix+"/"+string(part.Name)+".csv", buf.Bytes()); err != nil {
			return Partitions{}, err
		}
	}
	p.notify(types.InfoLevel, "Partitions prepared", "event", "Prepare", "result", "SUCCESS",
		"train", parts.Train.Len(), "val", parts.Val.Len(), "test", parts.Test.Len(), "variants", len(variants))
	return parts, nil
}

// sourceRecords re-reads the raw waveforms of sources in the augmented partitions.
func (p *Pipeline) sourceRecords(ctx context.Context, ds Dataset, a splitter.Assignment, names []types.PartitionName) ([]augment.SourceRecord, types.BatchReport) {
	report := types.NewBatchReport("augment.read")
	var out []augment.SourceRecord
	for _, name := range names {
		for _, id := range a.IDs(name) {
			if ctx.Err() != nil {
				return out, report
			}
			w, err := p.reader.Read(ctx, id)
			if err != nil {
				report.AddSkip(types.ReadFailure)
				continue
			}
			out = append(out, augment.SourceRecord{Waveform: w, Label: ds.Labels[id], Partition: name})
		}
	}
	return out, report
}

// Train fits a fresh model on the train partition with early stopping on val.
func (p *Pipeline) Train(ctx context.Context, parts Partitions) (*model.Hybrid, trainer.Result, error) {
	m, err := model.New(p.cfg.ModelSpec())
	if err != nil {
		return nil, trainer.Result{}, err
	}
	opts := []types.Option[*trainer.Trainer]{trainer.WithLogger(p.loggers...)}
	if p.runID != "" {
		opts = append(opts, trainer.WithRunID(p.runID))
	}
	t, err := trainer.NewTrainer(p.cfg.TrainerConfig(), p.checkpoints, opts...)
	if err != nil {
		return nil, trainer.Result{}, err
	}
	res, err := t.Fit(ctx, m, model.SamplesFrom(parts.Train), model.SamplesFrom(parts.Val))
	return m, res, err
}

// LoadModel rebuilds the model from the stored best checkpoint.
func (p *Pipeline) LoadModel(ctx context.Context) (*model.Hybrid, types.Checkpoint, error) {
	c, err := p.checkpoints.Load(ctx)
	if err != nil {
		return nil, types.Checkpoint{}, fmt.Errorf("pipeline: load checkpoint: %w", err)
	}
	if err := p.checkCheckpointSpec(c.Spec); err != nil {
		return nil, types.Checkpoint{}, err
	}
	m, err := model.FromCheckpoint(c)
	if err != nil {
		return nil, types.Checkpoint{}, err
	}
	return m, c, nil
}

// checkCheckpointSpec rejects a checkpoint whose input contract differs from the live
// signal and wavelet settings. The architecture itself is taken from the checkpoint.
func (p *Pipeline) checkCheckpointSpec(got types.ModelSpec) error {
	want := p.cfg.ModelSpec()
	mismatch := func(field string, trained, live interface{}) error {
		return &types.ConfigurationError{
			Field:  field,
			Reason: fmt.Sprintf("checkpoint was trained with %v, configuration has %v", trained, live),
		}
	}
	switch {
	case got.InputLength != want.InputLength:
		return mismatch("signal.length", got.InputLength, want.InputLength)
	case got.Wavelet != want.Wavelet:
		return mismatch("wavelet.name", got.Wavelet, want.Wavelet)
	case got.WaveletLevels != want.WaveletLevels:
		return mismatch("wavelet.levels", got.WaveletLevels, want.WaveletLevels)
	case got.FeatureDim != want.FeatureDim:
		return mismatch("wavelet.levels", fmt.Sprintf("%d features", got.FeatureDim), fmt.Sprintf("%d features", want.FeatureDim))
	}
	return nil
}

// Evaluate predicts part, computes the error metrics and stores the prediction table.
func (p *Pipeline) Evaluate(ctx context.Context, m *model.Hybrid, part types.Partition) (Evaluation, error) {
	samples := model.SamplesFrom(part)
	preds := m.PredictBatch(samples, p.cfg.Train.Workers)
	_, labels, files := part.Arrays()
	metrics, err := evaluate.Compute(preds, labels)
	if err != nil {
		return Evaluation{}, err
	}
	rows, err := evaluate.PredictionRows(files, preds)
	if err != nil {
		return Evaluation{}, err
	}
	var buf bytes.Buffer
	if err := store.WritePredictions(&buf, rows); err != nil {
		return Evaluation{}, err
	}
	if err := p.objects.Put(ctx, PredictionPrefix+"/"+string(part.Name)+".csv", buf.Bytes()); err != nil {
		return Evaluation{}, err
	}
	p.notify(types.InfoLevel, "Evaluation complete", append([]interface{}{
		"event", "Evaluate", "result", "SUCCESS", "partition", string(part.Name),
	}, metrics.KeysAndValues()...)...)
	return Evaluation{Partition: part.Name, Metrics: metrics, Predictions: rows}, nil
}

// Deliver turns relative predictions into absolute picks and publishes them. Predictions
// whose identity carries no parseable timestamp are returned as undelivered.
func (p *Pipeline) Deliver(ctx context.Context, preds []store.PredictionRow) ([]store.DeliverableRow, map[string]error, error) {
	if err := p.cfg.RequireYear(); err != nil {
		return nil, nil, err
	}
	rows, skipped, err := evaluate.DeliverableRows(preds, p.cfg.Eval.Year, p.cfg.Eval.Layout)
	if err != nil {
		return nil, nil, err
	}
	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, rows); err != nil {
			return nil, skipped, err
		}
	}
	p.notify(types.InfoLevel, "Picks delivered", "event", "Deliver", "result", "SUCCESS",
		"picks", len(rows), "undelivered", len(skipped))
	return rows, skipped, nil
}

// Run executes the whole workflow. Delivery is skipped when no reference year is set.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	labels, err := p.Labels(ctx)
	if err != nil {
		return sum, err
	}
	ds, err := p.Extract(ctx, labels)
	if err != nil {
		return sum, err
	}
	sum.Extraction = ds.Report

	parts, err := p.Prepare(ctx, ds)
	if err != nil {
		return sum, err
	}
	sum.Augmentation = parts.Augmentation
	sum.Counts = map[types.PartitionName]int{
		types.PartitionTrain: parts.Train.Len(),
		types.PartitionVal:   parts.Val.Len(),
		types.PartitionTest:  parts.Test.Len(),
	}

	m, res, err := p.Train(ctx, parts)
	sum.Training = res
	if err != nil {
		return sum, err
	}
	if sum.Evaluation, err = p.Evaluate(ctx, m, parts.Test); err != nil {
		return sum, err
	}
	if p.cfg.Eval.Year == 0 {
		return sum, nil
	}
	rows, skipped, err := p.Deliver(ctx, sum.Evaluation.Predictions)
	if err != nil {
		return sum, err
	}
	sum.Delivered, sum.Undelivered = len(rows), skipped
	return sum, nil
}

func (p *Pipeline) notify(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	kv := append([]interface{}{"component", p.componentMetadata}, keysAndValues...)
	for _, l := range p.loggers {
		if l.GetLevel() > level {
			continue
		}
		switch level {
		case types.DebugLevel:
			l.Debug(msg, kv...)
		case types.WarnLevel:
			l.Warn(msg, kv...)
		case types.ErrorLevel:
			l.Error(msg, kv...)
		default:
			l.Info(msg, kv...)
		}
	}
}
