package model_test

import (
	"errors"
	"math"
	"testing"

	"github.com/joeydtaylor/tremor/pkg/internal/model"
	"github.com/joeydtaylor/tremor/pkg/internal/nn"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

func smallSpec() types.ModelSpec {
	return types.ModelSpec{
		InputLength:    64,
		FeatureDim:     6,
		ConvChannels:   []int{2, 3},
		ConvKernels:    []int{5, 3},
		PoolSize:       2,
		TemporalEmbed:  4,
		SpectralHidden: 5,
		SpectralEmbed:  3,
		FusionHidden:   4,
		InitSeed:       7,
	}
}

func samples(n int, seed uint64) []model.Sample {
	rng := nn.NewRand(seed)
	out := make([]model.Sample, n)
	for i := range out {
		w := make([]float64, 64)
		for j := range w {
			w[j] = rng.NormFloat64()
		}
		f := make([]float64, 6)
		for j := range f {
			f[j] = rng.NormFloat64()*3 + float64(j)
		}
		out[i] = model.Sample{Waveform: w, Features: f, Label: 2 + f[0]*0.5}
	}
	return out
}

func newModel(t *testing.T) *model.Hybrid {
	t.Helper()
	m, err := model.New(smallSpec())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestValidateSpec(t *testing.T) {
	if err := model.ValidateSpec(model.DefaultSpec(8000, 60)); err != nil {
		t.Fatalf("default spec invalid: %v", err)
	}
	bad := []func(*types.ModelSpec){
		func(s *types.ModelSpec) { s.InputLength = 10 },
		func(s *types.ModelSpec) { s.ConvKernels = []int{5} },
		func(s *types.ModelSpec) { s.PoolSize = 0 },
		func(s *types.ModelSpec) { s.SpectralEmbed = 0 },
		func(s *types.ModelSpec) { s.FeatureDim = 0 },
	}
	for i, mutate := range bad {
		s := smallSpec()
		mutate(&s)
		var ce *types.ConfigurationError
		if err := model.ValidateSpec(s); !errors.As(err, &ce) {
			t.Fatalf("case %d: expected ConfigurationError, got %v", i, err)
		}
	}
}

func TestDefaultArchitectureShape(t *testing.T) {
	m, err := model.New(model.DefaultSpec(8000, 60))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// conv stages: 8*(1*7)+8, 16*(8*5)+16, 16*(16*5)+16; embed 16*123*32+32;
	// spectral 60*32+32, 32*16+16; head 48*32+32, 32+1.
	want := 64 + 656 + 1296 + 63008 + 1952 + 528 + 1568 + 33
	if got := m.NumParams(); got != want {
		t.Fatalf("expected %d parameters, got %d", want, got)
	}
}

func TestGradientsIndependentOfWorkerCount(t *testing.T) {
	m := newModel(t)
	batch := samples(7, 1)
	loss := nn.Huber{Delta: 1}

	l1, g1 := m.Gradients(batch, loss, 1)
	l3, g3 := m.Gradients(batch, loss, 3)
	l3b, g3b := m.Gradients(batch, loss, 3)

	if math.Abs(l1-l3) > 1e-12 {
		t.Fatalf("loss differs across worker counts: %v vs %v", l1, l3)
	}
	if l3 != l3b {
		t.Fatalf("repeated gradient computation not bit-identical")
	}
	for i := range g1 {
		for j := range g1[i] {
			if math.Abs(g1[i][j]-g3[i][j]) > 1e-12*math.Max(1, math.Abs(g1[i][j])) {
				t.Fatalf("tensor %d[%d]: %v vs %v", i, j, g1[i][j], g3[i][j])
			}
			if g3[i][j] != g3b[i][j] {
				t.Fatalf("tensor %d[%d] not reproducible", i, j)
			}
		}
	}
}

func TestGradientsMatchFiniteDifferences(t *testing.T) {
	m := newModel(t)
	batch := samples(3, 2)
	loss := nn.MSE{}
	_, grads := m.Gradients(batch, loss, 2)

	const h = 1e-6
	params := m.Params()
	for _, idx := range []int{0, len(params) / 2, len(params) - 2} {
		p := params[idx]
		for _, j := range []int{0, len(p.Value) - 1} {
			orig := p.Value[j]
			p.Value[j] = orig + h
			up := m.MeanLoss(batch, loss, 1)
			p.Value[j] = orig - h
			down := m.MeanLoss(batch, loss, 1)
			p.Value[j] = orig
			numeric := (up - down) / (2 * h)
			if math.Abs(numeric-grads[idx][j]) > 1e-5*math.Max(1, math.Abs(numeric)) {
				t.Fatalf("%s[%d]: analytic %v, numeric %v", p.Name, j, grads[idx][j], numeric)
			}
		}
	}
}

func TestAdamStepsReduceLoss(t *testing.T) {
	m := newModel(t)
	batch := samples(16, 3)
	feats := make([][]float64, len(batch))
	for i, s := range batch {
		feats[i] = s.Features
	}
	scaler, err := model.FitScaler(feats)
	if err != nil {
		t.Fatalf("FitScaler: %v", err)
	}
	if err := m.SetScaler(scaler); err != nil {
		t.Fatalf("SetScaler: %v", err)
	}
	loss := nn.Huber{Delta: 1}
	opt := nn.NewAdam(0.01)
	before := m.MeanLoss(batch, loss, 2)
	for i := 0; i < 60; i++ {
		_, g := m.Gradients(batch, loss, 2)
		opt.Step(m.Params(), g)
	}
	if after := m.MeanLoss(batch, loss, 2); !(after < before) {
		t.Fatalf("loss did not decrease: %v -> %v", before, after)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	m := newModel(t)
	batch := samples(4, 4)
	scaler := model.IdentityScaler(6)
	scaler.Mean[2] = 1.5
	scaler.Std[3] = 2
	_ = m.SetScaler(scaler)

	ckpt := m.Checkpoint("run-1", 3, 0.25)
	if ckpt.Version != types.CheckpointVersion || ckpt.Epoch != 3 || ckpt.RunID != "run-1" {
		t.Fatalf("unexpected checkpoint header %+v", ckpt)
	}
	restored, err := model.FromCheckpoint(ckpt)
	if err != nil {
		t.Fatalf("FromCheckpoint: %v", err)
	}
	for _, s := range batch {
		if a, b := m.Predict(s.Waveform, s.Features), restored.Predict(s.Waveform, s.Features); a != b {
			t.Fatalf("restored prediction %v differs from %v", b, a)
		}
	}

	ckpt.Params[0] = ckpt.Params[0][:1]
	if _, err := model.FromCheckpoint(ckpt); err == nil {
		t.Fatalf("expected shape mismatch error")
	}
}

func TestRestoreRejectsMalformedScaler(t *testing.T) {
	m := newModel(t)
	cases := map[string]func(c *types.Checkpoint){
		"short std": func(c *types.Checkpoint) { c.ScalerStd = c.ScalerStd[:2] },
		"zero std":  func(c *types.Checkpoint) { c.ScalerStd[1] = 0 },
		"nan std":   func(c *types.Checkpoint) { c.ScalerStd[4] = math.NaN() },
		"wide scaler": func(c *types.Checkpoint) {
			c.ScalerMean = append(c.ScalerMean, 0)
			c.ScalerStd = append(c.ScalerStd, 1)
		},
	}
	for name, corrupt := range cases {
		t.Run(name, func(t *testing.T) {
			ckpt := m.Checkpoint("run-1", 1, 0.5)
			corrupt(&ckpt)
			if _, err := model.FromCheckpoint(ckpt); err == nil {
				t.Fatalf("expected scaler error")
			}
		})
	}
}

func TestFitScaler(t *testing.T) {
	s, err := model.FitScaler([][]float64{{1, 5}, {3, 5}})
	if err != nil {
		t.Fatalf("FitScaler: %v", err)
	}
	if s.Mean[0] != 2 || s.Std[0] != 1 || s.Std[1] != 1 {
		t.Fatalf("unexpected scaler %+v", s)
	}
	got := s.Transform([]float64{3, 5})
	if got[0] != 1 || got[1] != 0 {
		t.Fatalf("Transform = %v", got)
	}
	if _, err := model.FitScaler(nil); err == nil {
		t.Fatalf("expected error for empty input")
	}
	if _, err := model.FitScaler([][]float64{{1, 2}, {1}}); err == nil {
		t.Fatalf("expected error for ragged input")
	}
}
