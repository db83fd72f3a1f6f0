// Package wavelet implements the multi-level discrete wavelet transform used for feature
// extraction. Filters and boundary handling follow the PyWavelets conventions (decomposition
// filters, half-sample symmetric extension) so coefficients match values computed with it.
package wavelet

import (
	"fmt"
	"sort"
	"strings"
)

// Wavelet is an orthogonal wavelet given by its decomposition filters.
type Wavelet struct {
	Name  string
	DecLo []float64 // Low-pass decomposition filter.
	DecHi []float64 // High-pass decomposition filter.
}

// FilterLength returns the number of filter taps.
func (w Wavelet) FilterLength() int { return len(w.DecLo) }

var decLo = map[string][]float64{
	"haar": {0.7071067811865476, 0.7071067811865476},
	"db2":  {-0.12940952255092145, 0.22414386804185735, 0.836516303737469, 0.48296291314469025},
	"db3": {0.035226291882100656, -0.08544127388224149, -0.13501102001039084, 0.4598775021193313,
		0.8068915093133388, 0.3326705529509569},
	"db4": {-0.010597401784997278, 0.032883011666982945, 0.030841381835986965, -0.18703481171888114,
		-0.02798376941698385, 0.6308807679295904, 0.7148465705525415, 0.23037781330885523},
}

var aliases = map[string]string{"db1": "haar"}

// Lookup returns the named wavelet. Names are case-insensitive; "db1" is an alias for "haar".
func Lookup(name string) (Wavelet, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[key]; ok {
		key = a
	}
	lo, ok := decLo[key]
	if !ok {
		return Wavelet{}, fmt.Errorf("wavelet: unknown wavelet %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	return Wavelet{Name: key, DecLo: lo, DecHi: quadratureMirror(lo)}, nil
}

// Names lists the supported wavelet names.
func Names() []string {
	out := make([]string, 0, len(decLo)+len(aliases))
	for k := range decLo {
		out = append(out, k)
	}
	for k := range aliases {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// quadratureMirror derives the high-pass filter: hi[k] = (-1)^(k+1) * lo[F-1-k].
func quadratureMirror(lo []float64) []float64 {
	f := len(lo)
	hi := make([]float64, f)
	for k := range hi {
		v := lo[f-1-k]
		if k%2 == 0 {
			v = -v
		}
		hi[k] = v
	}
	return hi
}
