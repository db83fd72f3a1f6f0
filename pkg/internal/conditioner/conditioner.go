// Package conditioner turns raw station samples into fixed-length, band-limited, unit-variance
// waveforms. Conditioning runs in three pure stages:
//
//  1. fix the length to L (keep the first L samples, or right-pad with zeros),
//  2. band-limit with a zero-phase FFT-domain bandpass (a spectral projection),
//  3. z-score normalise with per-waveform mean and population standard deviation.
//
// Because the bandpass is an exact projection and the z-score of a zero-mean unit-variance
// signal is itself, conditioning an already conditioned waveform returns it unchanged up to
// rounding.
package conditioner

import (
	"fmt"
	"sync"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/joeydtaylor/tremor/pkg/internal/utils"
	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	DefaultLength = 8000
	DefaultLowHz  = 7.0
	DefaultHighHz = 19.0
)

// Config holds the conditioning parameters.
type Config struct {
	Length int     // Output length L in samples.
	LowHz  float64 // Lower passband edge.
	HighHz float64 // Upper passband edge.
}

// DefaultConfig returns the reference configuration: 8000 samples, 7 to 19 Hz.
func DefaultConfig() Config {
	return Config{Length: DefaultLength, LowHz: DefaultLowHz, HighHz: DefaultHighHz}
}

// Validate checks the sampling-rate independent parts of the configuration.
func (c Config) Validate() error {
	if c.Length <= 0 {
		return &types.ConfigurationError{Field: "signal.length", Reason: fmt.Sprintf("must be positive, got %d", c.Length)}
	}
	if c.LowHz < 0 {
		return &types.ConfigurationError{Field: "signal.low_hz", Reason: "must not be negative"}
	}
	if c.HighHz <= c.LowHz {
		return &types.ConfigurationError{Field: "signal.high_hz", Reason: fmt.Sprintf("must exceed low_hz (%g), got %g", c.LowHz, c.HighHz)}
	}
	return nil
}

// Conditioner applies the conditioning stages. It is safe for concurrent use.
type Conditioner struct {
	componentMetadata types.ComponentMetadata
	cfg               Config
	ffts              sync.Pool
	loggers           []types.Logger
}

// NewConditioner validates cfg and returns a Conditioner.
func NewConditioner(cfg Config, options ...types.Option[*Conditioner]) (*Conditioner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Conditioner{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "CONDITIONER",
		},
		cfg: cfg,
	}
	n := cfg.Length
	c.ffts.New = func() any { return fourier.NewFFT(n) }
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// WithLogger attaches loggers that receive skip diagnostics.
func WithLogger(loggers ...types.Logger) types.Option[*Conditioner] {
	return func(c *Conditioner) {
		for _, l := range loggers {
			if l != nil {
				c.loggers = append(c.loggers, l)
			}
		}
	}
}

// WithComponentMetadata names the conditioner.
func WithComponentMetadata(name, id string) types.Option[*Conditioner] {
	return func(c *Conditioner) {
		c.componentMetadata.Name = name
		if id != "" {
			c.componentMetadata.ID = id
		}
	}
}

// Config returns the conditioner configuration.
func (c *Conditioner) Config() Config { return c.cfg }

// GetComponentMetadata returns the component metadata.
func (c *Conditioner) GetComponentMetadata() types.ComponentMetadata { return c.componentMetadata }

// Condition conditions samples recorded at fs Hz. Malformed input (empty, non-finite, a
// non-positive rate) is a ReadFailure; a passband that does not fit below the Nyquist
// frequency of fs is a FilterError. Both come back as *types.SkipError.
func (c *Conditioner) Condition(samples []float64, fs float64) ([]float64, error) {
	if err := checkInput(samples, fs); err != nil {
		return nil, types.NewSkip(types.ReadFailure, "", err)
	}
	if nyquist := fs / 2; c.cfg.HighHz >= nyquist {
		return nil, types.NewSkip(types.FilterError, "",
			fmt.Errorf("passband upper edge %g Hz is not below Nyquist %g Hz", c.cfg.HighHz, nyquist))
	}

	x := FixLength(samples, c.cfg.Length)
	fft := c.ffts.Get().(*fourier.FFT)
	x = bandpass(fft, x, fs, c.cfg.LowHz, c.cfg.HighHz)
	c.ffts.Put(fft)
	return ZScore(x), nil
}

// ConditionWaveform conditions w, attributing any skip to w.ID.
func (c *Conditioner) ConditionWaveform(w types.Waveform) ([]float64, error) {
	out, err := c.Condition(w.Samples, w.SamplingRate)
	if err != nil {
		se := types.AsSkip(w.ID, err)
		c.notify(types.DebugLevel, "Waveform skipped", "event", "Condition", "result", "SKIP", "source", w.ID, "error", se)
		return nil, se
	}
	return out, nil
}

func (c *Conditioner) notify(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	kv := append([]interface{}{"component", c.componentMetadata}, keysAndValues...)
	for _, l := range c.loggers {
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
