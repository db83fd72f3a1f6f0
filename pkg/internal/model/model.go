// Package model implements the dual-branch regressor that predicts the P-wave arrival time
// of a conditioned waveform. A convolutional temporal branch reads the waveform, a dense
// spectral branch reads the standardised wavelet features, and a fusion head maps the two
// embeddings to a single value in seconds.
package model

import (
	"fmt"
	"math"

	"github.com/joeydtaylor/tremor/pkg/internal/nn"
	"github.com/joeydtaylor/tremor/pkg/internal/types"
)

// DefaultSpec returns the reference architecture for the given input shape.
func DefaultSpec(inputLength, featureDim int) types.ModelSpec {
	return types.ModelSpec{
		InputLength:    inputLength,
		FeatureDim:     featureDim,
		ConvChannels:   []int{8, 16, 16},
		ConvKernels:    []int{7, 5, 5},
		PoolSize:       4,
		TemporalEmbed:  32,
		SpectralHidden: 32,
		SpectralEmbed:  16,
		FusionHidden:   32,
		InitSeed:       42,
		Wavelet:        "db4",
		WaveletLevels:  4,
	}
}

// ValidateSpec checks that spec describes a buildable network.
func ValidateSpec(spec types.ModelSpec) error {
	bad := func(field, reason string) error {
		return &types.ConfigurationError{Field: "model." + field, Reason: reason}
	}
	if spec.InputLength < 1 {
		return bad("input_length", "must be positive")
	}
	if spec.FeatureDim < 1 {
		return bad("feature_dim", "must be positive")
	}
	if len(spec.ConvChannels) == 0 || len(spec.ConvChannels) != len(spec.ConvKernels) {
		return bad("conv_channels", fmt.Sprintf("need one kernel per stage, got %d channels and %d kernels", len(spec.ConvChannels), len(spec.ConvKernels)))
	}
	if spec.PoolSize < 1 {
		return bad("pool_size", "must be positive")
	}
	n := spec.InputLength
	for i, k := range spec.ConvKernels {
		if spec.ConvChannels[i] < 1 || k < 1 {
			return bad("conv_kernels", fmt.Sprintf("stage %d has a non-positive size", i))
		}
		n = n - k + 1
		if n < spec.PoolSize {
			return bad("input_length", fmt.Sprintf("%d samples are too short for %d conv stages", spec.InputLength, len(spec.ConvKernels)))
		}
		n /= spec.PoolSize
	}
	for field, v := range map[string]int{
		"temporal_embed": spec.TemporalEmbed, "spectral_hidden": spec.SpectralHidden,
		"spectral_embed": spec.SpectralEmbed, "fusion_hidden": spec.FusionHidden,
	} {
		if v < 1 {
			return bad(field, "must be positive")
		}
	}
	return nil
}

// Hybrid is the dual-branch regressor. Parameters are read concurrently by Predict and
// Gradients; updating them must not overlap with either.
type Hybrid struct {
	spec     types.ModelSpec
	temporal *nn.Sequential
	spectral *nn.Sequential
	head     *nn.Sequential
	params   []*nn.Param
	scaler   Scaler

	nTemporal, nSpectral int // parameter tensor counts per branch
}

// New builds the network for spec and initialises it from spec.InitSeed.
func New(spec types.ModelSpec) (*Hybrid, error) {
	if err := ValidateSpec(spec); err != nil {
		return nil, err
	}
	temporal, err := buildTemporal(spec)
	if err != nil {
		return nil, err
	}
	spectral, err := buildDense("spectral", spec.FeatureDim, spec.SpectralHidden, spec.SpectralEmbed, true)
	if err != nil {
		return nil, err
	}
	head, err := buildDense("head", spec.TemporalEmbed+spec.SpectralEmbed, spec.FusionHidden, 1, false)
	if err != nil {
		return nil, err
	}

	rng := nn.NewRand(spec.InitSeed)
	temporal.Init(rng)
	spectral.Init(rng)
	head.Init(rng)

	m := &Hybrid{
		spec:      spec,
		temporal:  temporal,
		spectral:  spectral,
		head:      head,
		scaler:    IdentityScaler(spec.FeatureDim),
		nTemporal: len(temporal.Params()),
		nSpectral: len(spectral.Params()),
	}
	m.params = append(append(append(m.params, temporal.Params()...), spectral.Params()...), head.Params()...)
	return m, nil
}

func buildTemporal(spec types.ModelSpec) (*nn.Sequential, error) {
	var layers []nn.Layer
	in, n := 1, spec.InputLength
	for i, out := range spec.ConvChannels {
		conv, err := nn.NewConv1D(fmt.Sprintf("temporal.conv%d", i+1), in, out, spec.ConvKernels[i], n)
		if err != nil {
			return nil, err
		}
		pool, err := nn.NewMaxPool1D(out, conv.OutLength(), spec.PoolSize)
		if err != nil {
			return nil, err
		}
		layers = append(layers, conv, nn.ReLU{Size: conv.OutSize()}, pool)
		in, n = out, pool.OutLength()
	}
	flat := in * n
	embed, err := nn.NewDense("temporal.embed", flat, spec.TemporalEmbed)
	if err != nil {
		return nil, err
	}
	layers = append(layers, nn.Flatten{Size: flat}, embed, nn.ReLU{Size: spec.TemporalEmbed})
	return nn.NewSequential(layers...)
}

// buildDense returns Dense(in→hidden)→ReLU→Dense(hidden→out), with a trailing ReLU if
// reluOut is set.
func buildDense(name string, in, hidden, out int, reluOut bool) (*nn.Sequential, error) {
	d1, err := nn.NewDense(name+".fc1", in, hidden)
	if err != nil {
		return nil, err
	}
	d2, err := nn.NewDense(name+".fc2", hidden, out)
	if err != nil {
		return nil, err
	}
	layers := []nn.Layer{d1, nn.ReLU{Size: hidden}, d2}
	if reluOut {
		layers = append(layers, nn.ReLU{Size: out})
	}
	return nn.NewSequential(layers...)
}

// Spec returns the architecture.
func (m *Hybrid) Spec() types.ModelSpec { return m.spec }

// Params returns all parameters: temporal branch, spectral branch, then fusion head.
func (m *Hybrid) Params() []*nn.Param { return m.params }

// NumParams returns the scalar parameter count.
func (m *Hybrid) NumParams() int { return nn.CountParams(m.params) }

// Scaler returns the feature scaler.
func (m *Hybrid) Scaler() Scaler { return m.scaler }

// SetScaler installs the feature scaler fitted on the training partition.
func (m *Hybrid) SetScaler(s Scaler) error {
	if s.Dim() != m.spec.FeatureDim {
		return fmt.Errorf("model: scaler has %d columns, model expects %d", s.Dim(), m.spec.FeatureDim)
	}
	if len(s.Std) != len(s.Mean) {
		return fmt.Errorf("model: scaler has %d means but %d deviations", len(s.Mean), len(s.Std))
	}
	for i, v := range s.Std {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("model: scaler deviation %d is %v, want a finite positive value", i, v)
		}
	}
	m.scaler = s
	return nil
}

type forwardCache struct {
	temporal, spectral, head nn.Cache
}

func (m *Hybrid) forward(waveform, features []float64) (float64, forwardCache) {
	if len(waveform) != m.spec.InputLength {
		panic(fmt.Sprintf("model: waveform has %d samples, want %d", len(waveform), m.spec.InputLength))
	}
	if len(features) != m.spec.FeatureDim {
		panic(fmt.Sprintf("model: feature vector has %d values, want %d", len(features), m.spec.FeatureDim))
	}
	var c forwardCache
	var te, se, out []float64
	te, c.temporal = m.temporal.Forward(waveform)
	se, c.spectral = m.spectral.Forward(m.scaler.Transform(features))
	fused := make([]float64, 0, len(te)+len(se))
	fused = append(append(fused, te...), se...)
	out, c.head = m.head.Forward(fused)
	return out[0], c
}

func (m *Hybrid) backward(c forwardCache, dPred float64, grads [][]float64) {
	tEnd := m.nTemporal
	sEnd := tEnd + m.nSpectral
	dFused := m.head.Backward(c.head, []float64{dPred}, grads[sEnd:])
	m.spectral.Backward(c.spectral, dFused[m.spec.TemporalEmbed:], grads[tEnd:sEnd])
	m.temporal.Backward(c.temporal, dFused[:m.spec.TemporalEmbed], grads[:tEnd])
}

// Predict returns the predicted arrival time in seconds for a conditioned waveform and its
// raw (unscaled) feature vector. It is a pure function of the parameters.
func (m *Hybrid) Predict(waveform, features []float64) float64 {
	p, _ := m.forward(waveform, features)
	return p
}
