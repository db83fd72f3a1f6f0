package wavelet

import "fmt"

// OutputLength is the coefficient count of one decomposition step of an n-sample signal
// with an f-tap filter.
func OutputLength(n, f int) int {
	return (n + f - 1) / 2
}

// Dwt performs one decomposition step and returns the approximation and detail coefficients.
func Dwt(x []float64, w Wavelet) (cA, cD []float64) {
	return downsample(x, w.DecLo), downsample(x, w.DecHi)
}

// Wavedec performs a levels-deep decomposition and returns the bands ordered from the
// coarsest approximation to the finest detail: [cA_levels, cD_levels, ..., cD_1].
func Wavedec(x []float64, w Wavelet, levels int) ([][]float64, error) {
	if levels < 1 {
		return nil, fmt.Errorf("wavelet: levels must be at least 1, got %d", levels)
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("wavelet: empty signal")
	}
	details := make([][]float64, 0, levels)
	a := x
	for level := 0; level < levels; level++ {
		var d []float64
		a, d = Dwt(a, w)
		details = append(details, d)
	}

	bands := make([][]float64, 0, levels+1)
	bands = append(bands, a)
	for i := len(details) - 1; i >= 0; i-- {
		bands = append(bands, details[i])
	}
	return bands, nil
}

// downsample computes out[k] = sum_j h[j] * x[2k+1-j] over the symmetric extension of x.
func downsample(x, h []float64) []float64 {
	n, f := len(x), len(h)
	out := make([]float64, OutputLength(n, f))
	for k := range out {
		i := 2*k + 1
		var sum float64
		for j, hj := range h {
			sum += hj * x[symmetricIndex(i-j, n)]
		}
		out[k] = sum
	}
	return out
}

// symmetricIndex maps an index outside [0, n) onto the half-sample symmetric extension
// (x[-1] = x[0], x[n] = x[n-1]), reflecting repeatedly for signals shorter than the filter.
func symmetricIndex(i, n int) int {
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}
