package conditioner

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// zeroStdTolerance is the standard deviation, relative to the signal's peak magnitude,
// below which a signal is treated as constant.
const zeroStdTolerance = 1e-12

func checkInput(samples []float64, fs float64) error {
	if len(samples) == 0 {
		return errors.New("empty waveform")
	}
	if !(fs > 0) || math.IsInf(fs, 0) {
		return fmt.Errorf("invalid sampling rate %v", fs)
	}
	for i, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite sample %v at index %d", v, i)
		}
	}
	return nil
}

// FixLength returns a copy of x with exactly n samples: the first n when x is longer,
// x followed by zeros when it is shorter.
func FixLength(x []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, x)
	return out
}

// Bandpass keeps only the spectral content of x within [lowHz, highHz]. The DC component is
// always removed. The result has the same length as x and no phase shift.
func Bandpass(x []float64, fs, lowHz, highHz float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	return bandpass(fourier.NewFFT(len(x)), x, fs, lowHz, highHz)
}

func bandpass(fft *fourier.FFT, x []float64, fs, lowHz, highHz float64) []float64 {
	n := len(x)
	coeff := fft.Coefficients(nil, x)
	for i := range coeff {
		f := fft.Freq(i) * fs
		if i == 0 || f < lowHz || f > highHz {
			coeff[i] = 0
		}
	}
	out := fft.Sequence(nil, coeff)
	floats.Scale(1/float64(n), out)
	return out
}

// ZScore subtracts the mean and divides by the population standard deviation. A constant
// signal, including the all-zero signal, maps to the zero vector.
func ZScore(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	mean, std := stat.PopMeanStdDev(x, nil)
	peak := math.Max(math.Abs(floats.Max(x)), math.Abs(floats.Min(x)))
	if std == 0 || math.IsNaN(std) || std <= zeroStdTolerance*peak {
		return out
	}
	for i, v := range x {
		out[i] = (v - mean) / std
	}
	return out
}
