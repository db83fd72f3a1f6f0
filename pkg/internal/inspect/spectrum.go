package inspect

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// SpectralSummary describes the power spectrum of one waveform.
type SpectralSummary struct {
	DominantHz      float64 // Frequency of the strongest non-DC bin.
	TotalPower      float64
	BandEnergyRatio float64 // Share of non-DC power inside [LowHz, HighHz].
	SNRdB           float64 // In-band over out-of-band power; +Inf when nothing lies outside.
}

// Spectrum computes a Hann-windowed power spectrum summary of x sampled at fs.
func Spectrum(x []float64, fs, lowHz, highHz float64) (SpectralSummary, error) {
	if len(x) < 2 {
		return SpectralSummary{}, fmt.Errorf("inspect: need at least 2 samples, got %d", len(x))
	}
	if !(fs > 0) {
		return SpectralSummary{}, fmt.Errorf("inspect: invalid sampling rate %v", fs)
	}
	w := append([]float64(nil), x...)
	window.Apply(w, window.Hann)
	spec := fft.FFTReal(w)

	var s SpectralSummary
	var in, out, best float64
	df := fs / float64(len(w))
	for k := 1; k <= len(w)/2; k++ {
		p := cmplx.Abs(spec[k])
		p *= p
		f := float64(k) * df
		if p > best {
			best, s.DominantHz = p, f
		}
		if f >= lowHz && f <= highHz {
			in += p
		} else {
			out += p
		}
	}
	s.TotalPower = in + out
	if s.TotalPower > 0 {
		s.BandEnergyRatio = in / s.TotalPower
	}
	switch {
	case out > 0 && in > 0:
		s.SNRdB = 10 * math.Log10(in/out)
	case in > 0:
		s.SNRdB = math.Inf(1)
	case out > 0:
		s.SNRdB = math.Inf(-1)
	}
	return s, nil
}
