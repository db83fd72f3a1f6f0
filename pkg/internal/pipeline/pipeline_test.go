package pipeline_test

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/joeydtaylor/tremor/pkg/internal/config"
	"github.com/joeydtaylor/tremor/pkg/internal/corpus"
	"github.com/joeydtaylor/tremor/pkg/internal/evaluate"
	"github.com/joeydtaylor/tremor/pkg/internal/internallogger"
	"github.com/joeydtaylor/tremor/pkg/internal/model"
	"github.com/joeydtaylor/tremor/pkg/internal/pipeline"
	"github.com/joeydtaylor/tremor/pkg/internal/store"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/joeydtaylor/tremor/pkg/logschema"
)

const sources = 12

// writeCorpus writes sources synthetic events named MMDDhhmmss.mseed and their labels table.
func writeCorpus(t *testing.T) (dataDir, labelsFile string) {
	t.Helper()
	dataDir = t.TempDir()
	r := corpus.NewDirReader(dataDir, "mseed")
	var rows []store.LabelRow
	for i := 0; i < sources; i++ {
		id := fmt.Sprintf("0102%02d0000.mseed", i)
		arrival := 1.5 + 0.125*float64(i)
		rng := rand.New(rand.NewPCG(uint64(i), 11))
		x := make([]float64, 800)
		for k := range x {
			tt := float64(k) / 100
			x[k] = rng.NormFloat64()
			if tt >= arrival {
				x[k] += 20 * math.Sin(2*math.Pi*10*tt)
			}
		}
		start := time.Date(2009, 1, 2, i, 0, 0, 0, time.UTC)
		if err := r.Write(types.Waveform{ID: id, Samples: x, SamplingRate: 100, Start: start}); err != nil {
			t.Fatalf("Write: %v", err)
		}
		rows = append(rows, store.LabelRow{File: id, ArrivalTime: arrival})
	}
	var buf bytes.Buffer
	if err := store.WriteLabels(&buf, rows); err != nil {
		t.Fatalf("WriteLabels: %v", err)
	}
	labelsFile = filepath.Join(t.TempDir(), "labels.csv")
	if err := os.WriteFile(labelsFile, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return dataDir, labelsFile
}

func smallConfig(dataDir, labelsFile, root string) config.Config {
	cfg := config.Default()
	cfg.Signal.Length = 400
	cfg.Wavelet = config.Wavelet{Name: "db2", Levels: 2}
	cfg.Split = config.Split{TestFraction: 0.25, ValFraction: 0.25, Seed: 3}
	cfg.Augment.MinShift, cfg.Augment.MaxShift, cfg.Augment.Variants = 0.2, 1.0, 2
	cfg.Model.ConvChannels = []int{2, 2, 2}
	cfg.Model.ConvKernels = []int{5, 3, 3}
	cfg.Model.PoolSize = 2
	cfg.Model.TemporalEmbed, cfg.Model.SpectralHidden, cfg.Model.SpectralEmbed, cfg.Model.FusionHidden = 4, 4, 4, 4
	cfg.Train.Epochs, cfg.Train.BatchSize, cfg.Train.Workers, cfg.Train.Patience = 3, 4, 2, 0
	cfg.Eval.Year = 2009
	cfg.Corpus = config.Corpus{DataDir: dataDir, LabelsFile: labelsFile, Extension: "mseed", Workers: 2}
	cfg.Storage.Root = root
	cfg.Publish = config.Publish{Sink: "csv", Key: "deliverable/picks.csv"}
	return cfg
}

func newPipeline(t *testing.T, cfg config.Config) (*pipeline.Pipeline, store.ObjectStore) {
	t.Helper()
	objects, err := pipeline.NewObjectStore(context.Background(), cfg.Storage)
	if err != nil {
		t.Fatalf("NewObjectStore: %v", err)
	}
	pub, err := pipeline.NewPublisher(cfg.Publish, objects, "run-test")
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	p, err := pipeline.New(cfg, corpus.NewDirReader(cfg.Corpus.DataDir, cfg.Corpus.Extension), objects,
		pipeline.WithPublisher(pub), pipeline.WithRunID("run-test"), pipeline.WithResourceSampling(false))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p, objects
}

func TestRunEndToEnd(t *testing.T) {
	dataDir, labelsFile := writeCorpus(t)
	cfg := smallConfig(dataDir, labelsFile, t.TempDir())
	p, objects := newPipeline(t, cfg)
	ctx := context.Background()

	sum, err := p.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Extraction.Processed != sources || sum.Extraction.Skipped != 0 {
		t.Fatalf("unexpected extraction report %+v", sum.Extraction)
	}
	if sum.Counts[types.PartitionTest] == 0 || sum.Counts[types.PartitionVal] == 0 {
		t.Fatalf("empty held-out partition: %v", sum.Counts)
	}
	if sum.Augmentation.Processed == 0 {
		t.Fatalf("expected augmented variants, report %+v", sum.Augmentation)
	}
	if len(sum.Training.History) != cfg.Train.Epochs || sum.Training.BestEpoch < 1 {
		t.Fatalf("unexpected training result %+v", sum.Training)
	}
	if sum.Evaluation.Metrics.N != sum.Counts[types.PartitionTest] {
		t.Fatalf("evaluated %d of %d test examples", sum.Evaluation.Metrics.N, sum.Counts[types.PartitionTest])
	}

	_, labels, files, err := p.FeatureStore().Load(ctx, types.PartitionTest)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(files) != sum.Counts[types.PartitionTest] || len(labels) != len(files) {
		t.Fatalf("feature table has %d rows", len(files))
	}
	for _, f := range files {
		if strings.Contains(f, "#shift=") {
			t.Fatalf("test partition holds a variant %s", f)
		}
	}

	if _, err := objects.Get(ctx, pipeline.CheckpointKey); err != nil {
		t.Fatalf("checkpoint missing: %v", err)
	}
	data, err := objects.Get(ctx, "deliverable/picks.csv")
	if err != nil {
		t.Fatalf("deliverable missing: %v", err)
	}
	picks, err := store.ReadDeliverable(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadDeliverable: %v", err)
	}
	if len(picks) != sum.Delivered || len(picks) != len(sum.Evaluation.Predictions) {
		t.Fatalf("delivered %d picks for %d predictions", len(picks), len(sum.Evaluation.Predictions))
	}
	for i, pick := range picks {
		pred := sum.Evaluation.Predictions[i]
		t0, err := evaluate.ParseWindowStart(pred.File, 2009, cfg.Eval.Layout)
		if err != nil {
			t.Fatalf("ParseWindowStart: %v", err)
		}
		if pick.File != pred.File || math.Abs(pick.LecP-(t0+pred.PredictedTime)) > 1e-6 {
			t.Fatalf("pick %d does not reconstruct its prediction", i)
		}
	}

	m, ckpt, err := p.LoadModel(ctx)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if ckpt.Epoch != sum.Training.BestEpoch || ckpt.RunID != "run-test" {
		t.Fatalf("stored checkpoint is not the best one: %+v", ckpt.Epoch)
	}
	rows, report, err := p.Infer(ctx, m, append(files, "absent.mseed"))
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if report.SkipReasons[types.ReadFailure] != 1 || len(rows) != len(files) {
		t.Fatalf("unexpected inference %d rows, report %+v", len(rows), report)
	}
	for i, r := range rows {
		if math.Abs(r.PredictedTime-sum.Evaluation.Predictions[i].PredictedTime) > 1e-9 {
			t.Fatalf("%s: restored model predicts %v, trained model %v", r.File, r.PredictedTime, sum.Evaluation.Predictions[i].PredictedTime)
		}
	}
}

func TestRunIsReproducible(t *testing.T) {
	dataDir, labelsFile := writeCorpus(t)
	run := func() pipeline.Summary {
		p, _ := newPipeline(t, smallConfig(dataDir, labelsFile, t.TempDir()))
		sum, err := p.Run(context.Background())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return sum
	}
	a, b := run(), run()
	if !reflect.DeepEqual(a.Evaluation.Predictions, b.Evaluation.Predictions) {
		t.Fatalf("predictions differ between identical runs")
	}
	for i := range a.Training.History {
		if a.Training.History[i].ValLoss != b.Training.History[i].ValLoss {
			t.Fatalf("epoch %d validation loss differs", i+1)
		}
	}
}

func TestLoadModelRejectsChangedInputSettings(t *testing.T) {
	dataDir, labelsFile := writeCorpus(t)
	root := t.TempDir()
	trained := smallConfig(dataDir, labelsFile, root)
	p, _ := newPipeline(t, trained)
	ctx := context.Background()

	m, err := model.New(trained.ModelSpec())
	if err != nil {
		t.Fatalf("model.New: %v", err)
	}
	if err := p.CheckpointStore().Save(ctx, m.Checkpoint("run-test", 1, 0.5)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, _, err := p.LoadModel(ctx); err != nil {
		t.Fatalf("LoadModel with the training settings: %v", err)
	}

	cases := map[string]func(c *config.Config){
		"signal length":  func(c *config.Config) { c.Signal.Length = 500 },
		"wavelet name":   func(c *config.Config) { c.Wavelet.Name = "db3" },
		"wavelet levels": func(c *config.Config) { c.Wavelet.Levels = 3 },
	}
	for name, change := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := smallConfig(dataDir, labelsFile, root)
			change(&cfg)
			live, _ := newPipeline(t, cfg)
			if _, _, err := live.LoadModel(ctx); !config.IsConfigurationError(err) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
		})
	}
}

func TestInferReportsAndLogsBatch(t *testing.T) {
	dataDir, labelsFile := writeCorpus(t)
	cfg := smallConfig(dataDir, labelsFile, t.TempDir())
	cfg.Corpus.Workers = 3
	objects, err := pipeline.NewObjectStore(context.Background(), cfg.Storage)
	if err != nil {
		t.Fatalf("NewObjectStore: %v", err)
	}
	var buf bytes.Buffer
	logger := internallogger.NewLogger(internallogger.LoggerWithOutput(&buf), internallogger.LoggerWithLevel("info"))
	p, err := pipeline.New(cfg, corpus.NewDirReader(dataDir, "mseed"), objects,
		pipeline.WithLogger(logger), pipeline.WithResourceSampling(false))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m, err := model.New(cfg.ModelSpec())
	if err != nil {
		t.Fatalf("model.New: %v", err)
	}

	ids := []string{"0102050000.mseed", "absent.mseed", "0102010000.mseed", "0102030000.mseed", "0102010000.mseed"}
	rows, report, err := p.Infer(context.Background(), m, ids)
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	want := []string{"0102010000.mseed", "0102030000.mseed", "0102050000.mseed"}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, r := range rows {
		if r.File != want[i] || math.IsNaN(r.PredictedTime) {
			t.Fatalf("row %d = %+v, want file %s", i, r, want[i])
		}
	}
	if report.Submitted != 4 || report.Processed != 3 || report.SkipReasons[types.ReadFailure] != 1 {
		t.Fatalf("unexpected report %+v", report)
	}

	logged := false
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		rec, err := logschema.ParseRecord(line)
		if err != nil {
			t.Fatalf("ParseRecord: %v", err)
		}
		comp, _ := rec[logschema.FieldComponent].(map[string]interface{})
		if rec.String(logschema.FieldEvent) == "BatchReport" && comp["name"] == "pipeline.infer" {
			logged = rec["processed"] == float64(3)
		}
	}
	if !logged {
		t.Fatalf("inference batch report not logged:\n%s", buf.String())
	}
}

func TestDeliverRequiresYear(t *testing.T) {
	dataDir, labelsFile := writeCorpus(t)
	cfg := smallConfig(dataDir, labelsFile, t.TempDir())
	cfg.Eval.Year = 0
	p, _ := newPipeline(t, cfg)
	_, _, err := p.Deliver(context.Background(), []store.PredictionRow{{File: "0102000000.mseed", PredictedTime: 1}})
	if !config.IsConfigurationError(err) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestLabelsFromCatalog(t *testing.T) {
	dataDir, _ := writeCorpus(t)
	start := time.Date(2009, 1, 2, 0, 0, 0, 0, time.UTC)
	w := types.Waveform{ID: "00000042.mseed", Samples: make([]float64, 800), SamplingRate: 100, Start: start}
	if err := corpus.NewDirReader(dataDir, "mseed").Write(w); err != nil {
		t.Fatalf("Write: %v", err)
	}
	catalog := filepath.Join(t.TempDir(), "catalog.csv")
	body := fmt.Sprintf("archivo,lec_p\n42,%.3f\n7,%.3f\n", float64(start.Unix())+2.5, float64(start.Unix()))
	if err := os.WriteFile(catalog, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg := smallConfig(dataDir, "", t.TempDir())
	cfg.Corpus.CatalogFile = catalog
	p, _ := newPipeline(t, cfg)
	labels, err := p.Labels(context.Background())
	if err != nil {
		t.Fatalf("Labels: %v", err)
	}
	if got, ok := labels["00000042.mseed"]; !ok || len(labels) != 1 || math.Abs(got-2.5) > 1e-6 {
		t.Fatalf("unexpected catalog labels %v", labels)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Train.BatchSize = 0
	_, err := pipeline.New(cfg, corpus.NewDirReader(t.TempDir(), "mseed"), nil)
	if !config.IsConfigurationError(err) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}
