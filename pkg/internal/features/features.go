// Package features computes the fixed-length statistical feature vector of a conditioned
// waveform. The waveform is decomposed with wavelet.Wavedec and twelve statistics are taken
// from every band, bands in decomposition order (coarsest approximation first), statistics
// in the order listed by StatNames. The vector length is always 12 * (levels + 1).
package features

import (
	"fmt"

	"github.com/joeydtaylor/tremor/pkg/internal/types"
	"github.com/joeydtaylor/tremor/pkg/internal/wavelet"
)

// StatsPerBand is the number of statistics computed per band.
const StatsPerBand = 12

// StatNames lists the per-band statistics in feature order.
var StatNames = [StatsPerBand]string{
	"mean", "std", "skew", "kurtosis", "p75", "p25",
	"max", "min", "l1", "l2", "entropy", "median_abs",
}

// Config selects the decomposition.
type Config struct {
	Wavelet string
	Levels  int
}

// DefaultConfig is db4 with four levels, giving 60 features.
func DefaultConfig() Config {
	return Config{Wavelet: "db4", Levels: 4}
}

// Dim returns the feature vector length for the configuration.
func (c Config) Dim() int { return StatsPerBand * (c.Levels + 1) }

// Extractor computes feature vectors. It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	cfg     Config
	wavelet wavelet.Wavelet
}

// NewExtractor validates cfg and resolves its wavelet.
func NewExtractor(cfg Config) (*Extractor, error) {
	if cfg.Levels < 1 {
		return nil, &types.ConfigurationError{Field: "wavelet.levels", Reason: fmt.Sprintf("must be at least 1, got %d", cfg.Levels)}
	}
	w, err := wavelet.Lookup(cfg.Wavelet)
	if err != nil {
		return nil, &types.ConfigurationError{Field: "wavelet.name", Reason: err.Error()}
	}
	return &Extractor{cfg: cfg, wavelet: w}, nil
}

// Config returns the extractor configuration.
func (e *Extractor) Config() Config { return e.cfg }

// Extract returns the feature vector of x. Degenerate input such as an all-zero signal
// produces finite statistics; only an empty signal is an error.
func (e *Extractor) Extract(x []float64) (types.FeatureVector, error) {
	bands, err := wavelet.Wavedec(x, e.wavelet, e.cfg.Levels)
	if err != nil {
		return nil, err
	}
	out := make(types.FeatureVector, 0, e.cfg.Dim())
	for _, band := range bands {
		s := BandStats(band)
		out = append(out, s[:]...)
	}
	return out, nil
}

// Names returns the feature column names for a decomposition of the given depth, for
// example a4_mean, a4_std, ..., d1_median_abs.
func Names(levels int) []string {
	bands := make([]string, 0, levels+1)
	bands = append(bands, fmt.Sprintf("a%d", levels))
	for l := levels; l >= 1; l-- {
		bands = append(bands, fmt.Sprintf("d%d", l))
	}
	out := make([]string, 0, len(bands)*StatsPerBand)
	for _, b := range bands {
		for _, s := range StatNames {
			out = append(out, b+"_"+s)
		}
	}
	return out
}
