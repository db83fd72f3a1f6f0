package trainer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/joeydtaylor/tremor/pkg/internal/codec"
	"github.com/joeydtaylor/tremor/pkg/internal/model"
	"github.com/joeydtaylor/tremor/pkg/internal/nn"
	"github.com/joeydtaylor/tremor/pkg/internal/store"
	"github.com/joeydtaylor/tremor/pkg/internal/trainer"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

func spec() types.ModelSpec {
	return types.ModelSpec{
		InputLength: 48, FeatureDim: 4,
		ConvChannels: []int{2, 2}, ConvKernels: []int{5, 3}, PoolSize: 2,
		TemporalEmbed: 4, SpectralHidden: 6, SpectralEmbed: 3, FusionHidden: 5,
		InitSeed: 5,
	}
}

func data(n int, seed uint64) []model.Sample {
	rng := nn.NewRand(seed)
	out := make([]model.Sample, n)
	for i := range out {
		w := make([]float64, 48)
		onset := 10 + rng.IntN(30)
		for j := range w {
			w[j] = rng.NormFloat64() * 0.1
			if j >= onset {
				w[j] += 2
			}
		}
		f := []float64{float64(onset), rng.NormFloat64(), 3, rng.Float64()}
		out[i] = model.Sample{Waveform: w, Features: f, Label: float64(onset) / 10}
	}
	return out
}

func config() trainer.Config {
	cfg := trainer.DefaultConfig()
	cfg.Epochs = 4
	cfg.BatchSize = 8
	cfg.LearningRate = 5e-3
	cfg.Patience = 0
	cfg.Workers = 3
	return cfg
}

func TestFitSavesBestCheckpoint(t *testing.T) {
	ctx := context.Background()
	objects, err := store.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ckpts := trainer.NewCheckpointStore(objects, "run/best.ckpt", codec.CompressZstd)
	tr, err := trainer.NewTrainer(config(), ckpts, trainer.WithRunID("run-a"))
	if err != nil {
		t.Fatalf("NewTrainer: %v", err)
	}
	m, _ := model.New(spec())

	res, err := tr.Fit(ctx, m, data(40, 1), data(10, 2))
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if len(res.History) != 4 || res.RunID != "run-a" {
		t.Fatalf("unexpected result %+v", res)
	}
	if !res.History[0].Improved {
		t.Fatalf("first epoch must improve on an infinite best")
	}
	if tr.State() != trainer.StateStopped {
		t.Fatalf("expected stopped state, got %v", tr.State())
	}

	saved, err := ckpts.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if saved.Epoch != res.BestEpoch || saved.ValidationLoss != res.BestValLoss || saved.RunID != "run-a" {
		t.Fatalf("stored checkpoint epoch %d loss %v, result best %d %v", saved.Epoch, saved.ValidationLoss, res.BestEpoch, res.BestValLoss)
	}
	for _, s := range res.History {
		if s.ValLoss < res.BestValLoss {
			t.Fatalf("history has a lower loss %v than best %v", s.ValLoss, res.BestValLoss)
		}
	}
	for i, p := range m.Params() {
		for j := range p.Value {
			if p.Value[j] != saved.Params[i][j] {
				t.Fatalf("model does not hold the best parameters after Fit")
			}
		}
	}
}

func TestFitDeterministic(t *testing.T) {
	run := func() (trainer.Result, *model.Hybrid) {
		tr, err := trainer.NewTrainer(config(), nil)
		if err != nil {
			t.Fatalf("NewTrainer: %v", err)
		}
		m, _ := model.New(spec())
		res, err := tr.Fit(context.Background(), m, data(30, 3), data(8, 4))
		if err != nil {
			t.Fatalf("Fit: %v", err)
		}
		return res, m
	}
	r1, m1 := run()
	r2, m2 := run()
	for i := range r1.History {
		if r1.History[i].TrainLoss != r2.History[i].TrainLoss || r1.History[i].ValLoss != r2.History[i].ValLoss {
			t.Fatalf("epoch %d differs: %+v vs %+v", i+1, r1.History[i], r2.History[i])
		}
	}
	p1, p2 := m1.Params(), m2.Params()
	for i := range p1 {
		for j := range p1[i].Value {
			if p1[i].Value[j] != p2[i].Value[j] {
				t.Fatalf("parameters differ between identical runs")
			}
		}
	}
}

func TestEarlyStopping(t *testing.T) {
	cfg := config()
	cfg.Epochs = 20
	cfg.Patience = 2
	// A step far below the parameter resolution leaves the model unchanged, so no epoch after
	// the first can improve.
	cfg.LearningRate = 1e-300
	tr, _ := trainer.NewTrainer(cfg, nil)
	m, _ := model.New(spec())

	res, err := tr.Fit(context.Background(), m, data(16, 5), data(4, 6))
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if !res.StoppedEarly || len(res.History) != 3 || res.BestEpoch != 1 {
		t.Fatalf("expected early stop after 3 epochs with best epoch 1, got %d epochs, best %d, early %v",
			len(res.History), res.BestEpoch, res.StoppedEarly)
	}
}

func TestFitHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr, _ := trainer.NewTrainer(config(), nil)
	m, _ := model.New(spec())
	res, err := tr.Fit(ctx, m, data(16, 7), data(4, 8))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(res.History) != 0 {
		t.Fatalf("expected no completed epochs, got %d", len(res.History))
	}
}

func TestFitRequiresData(t *testing.T) {
	tr, _ := trainer.NewTrainer(config(), nil)
	m, _ := model.New(spec())
	if _, err := tr.Fit(context.Background(), m, nil, data(2, 1)); err == nil {
		t.Fatalf("expected error for empty training set")
	}
}

func TestConfigValidate(t *testing.T) {
	for i, mutate := range []func(*trainer.Config){
		func(c *trainer.Config) { c.Epochs = 0 },
		func(c *trainer.Config) { c.BatchSize = 0 },
		func(c *trainer.Config) { c.LearningRate = 0 },
		func(c *trainer.Config) { c.Loss = "hinge" },
		func(c *trainer.Config) { c.HuberDelta = 0 },
		func(c *trainer.Config) { c.Workers = 0 },
	} {
		cfg := trainer.DefaultConfig()
		mutate(&cfg)
		var ce *types.ConfigurationError
		if err := cfg.Validate(); !errors.As(err, &ce) {
			t.Fatalf("case %d: expected ConfigurationError, got %v", i, err)
		}
	}
}
