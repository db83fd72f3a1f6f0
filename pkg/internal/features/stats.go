package features

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// BandStats computes the twelve statistics of one band. Skewness and excess kurtosis are
// the biased (population) estimators, percentiles interpolate linearly between closest
// ranks, and entropy is the natural-log Shannon entropy of |band| normalised to sum to one.
// Constant and all-zero bands yield zero std, skew, kurtosis and entropy.
func BandStats(band []float64) [StatsPerBand]float64 {
	var s [StatsPerBand]float64
	if len(band) == 0 {
		return s
	}

	mean, std := stat.PopMeanStdDev(band, nil)
	skew, kurt := shapeMoments(band, mean, std)

	sorted := append([]float64(nil), band...)
	sort.Float64s(sorted)

	abs := make([]float64, len(band))
	for i, v := range band {
		abs[i] = math.Abs(v)
	}
	l1 := floats.Sum(abs)
	absSorted := append([]float64(nil), abs...)
	sort.Float64s(absSorted)

	s[0] = mean
	s[1] = std
	s[2] = skew
	s[3] = kurt
	s[4] = Percentile(sorted, 75)
	s[5] = Percentile(sorted, 25)
	s[6] = sorted[len(sorted)-1]
	s[7] = sorted[0]
	s[8] = l1
	s[9] = floats.Norm(band, 2)
	s[10] = absEntropy(abs, l1)
	s[11] = Percentile(absSorted, 50)
	return s
}

// shapeMoments returns biased skewness and excess kurtosis. A band whose variance is
// negligible relative to its mean is treated as constant.
func shapeMoments(band []float64, mean, std float64) (skew, kurt float64) {
	m2 := std * std
	if m2 == 0 || m2 <= math.Pow(1e-15*mean, 2) {
		return 0, 0
	}
	m3 := stat.MomentAbout(3, band, mean, nil)
	m4 := stat.MomentAbout(4, band, mean, nil)
	return m3 / math.Pow(m2, 1.5), m4/(m2*m2) - 3
}

func absEntropy(abs []float64, total float64) float64 {
	if total == 0 {
		return 0
	}
	p := make([]float64, len(abs))
	for i, v := range abs {
		p[i] = v / total
	}
	return stat.Entropy(p)
}

// Percentile returns the q-th percentile (0..100) of an ascending slice, interpolating
// linearly between the two closest ranks.
func Percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q / 100 * float64(n-1)
	lo := int(math.Floor(pos))
	if lo >= n-1 {
		return sorted[n-1]
	}
	if lo < 0 {
		return sorted[0]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
