package wavelet

import (
	"math"
	"testing"
)

func approxEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestLookup(t *testing.T) {
	for _, name := range []string{"haar", "db1", "DB2", "db3", "db4"} {
		w, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
		var sum, energy float64
		for _, v := range w.DecLo {
			sum += v
			energy += v * v
		}
		if !approxEqual(sum, math.Sqrt2, 1e-12) || !approxEqual(energy, 1, 1e-12) {
			t.Fatalf("%s: filter is not orthonormal (sum %v, energy %v)", name, sum, energy)
		}
		var hiSum float64
		for _, v := range w.DecHi {
			hiSum += v
		}
		if !approxEqual(hiSum, 0, 1e-12) {
			t.Fatalf("%s: high-pass filter has DC gain %v", name, hiSum)
		}
	}
	if _, err := Lookup("sym8"); err == nil {
		t.Fatalf("expected error for unsupported wavelet")
	}
}

func TestDb4HighPassMatchesReference(t *testing.T) {
	w, _ := Lookup("db4")
	want := []float64{-0.23037781330885523, 0.7148465705525415, -0.6308807679295904, -0.02798376941698385,
		0.18703481171888114, 0.030841381835986965, -0.032883011666982945, -0.010597401784997278}
	for i := range want {
		if w.DecHi[i] != want[i] {
			t.Fatalf("dec_hi[%d] = %v, want %v", i, w.DecHi[i], want[i])
		}
	}
}

func TestHaarDwt(t *testing.T) {
	w, _ := Lookup("haar")
	cA, cD := Dwt([]float64{1, 2, 3, 4}, w)
	wantA := []float64{3 / math.Sqrt2, 7 / math.Sqrt2}
	wantD := []float64{-1 / math.Sqrt2, -1 / math.Sqrt2}
	for i := range wantA {
		if !approxEqual(cA[i], wantA[i], 1e-12) || !approxEqual(cD[i], wantD[i], 1e-12) {
			t.Fatalf("haar coefficients: cA=%v cD=%v", cA, cD)
		}
	}
}

func TestHaarOddLengthUsesSymmetricExtension(t *testing.T) {
	w, _ := Lookup("haar")
	cA, cD := Dwt([]float64{1, 2, 3}, w)
	// x[3] reflects to x[2].
	if len(cA) != 2 || !approxEqual(cA[1], 6/math.Sqrt2, 1e-12) || !approxEqual(cD[1], 0, 1e-12) {
		t.Fatalf("unexpected odd-length coefficients cA=%v cD=%v", cA, cD)
	}
}

func TestConstantSignalHasNoDetail(t *testing.T) {
	w, _ := Lookup("db4")
	x := make([]float64, 37)
	for i := range x {
		x[i] = 3
	}
	cA, cD := Dwt(x, w)
	for i := range cA {
		if !approxEqual(cA[i], 3*math.Sqrt2, 1e-12) || !approxEqual(cD[i], 0, 1e-12) {
			t.Fatalf("index %d: cA=%v cD=%v", i, cA[i], cD[i])
		}
	}
}

func TestWavedecBandLayout(t *testing.T) {
	w, _ := Lookup("db4")
	x := make([]float64, 8000)
	for i := range x {
		x[i] = math.Sin(float64(i) / 10)
	}
	bands, err := Wavedec(x, w, 4)
	if err != nil {
		t.Fatalf("Wavedec: %v", err)
	}
	if len(bands) != 5 {
		t.Fatalf("expected 5 bands, got %d", len(bands))
	}
	// Lengths per level for n=8000, F=8: 4003, 2005, 1006, 506.
	want := []int{506, 506, 1006, 2005, 4003}
	for i, b := range bands {
		if len(b) != want[i] {
			t.Fatalf("band %d: length %d, want %d", i, len(b), want[i])
		}
	}
}

func TestWavedecShortSignals(t *testing.T) {
	w, _ := Lookup("db4")
	for n := 1; n < 20; n++ {
		x := make([]float64, n)
		for i := range x {
			x[i] = float64(i + 1)
		}
		bands, err := Wavedec(x, w, 4)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		for i, b := range bands {
			if len(b) == 0 {
				t.Fatalf("n=%d band %d is empty", n, i)
			}
			for _, v := range b {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("n=%d band %d has non-finite value", n, i)
				}
			}
		}
	}
	if _, err := Wavedec(nil, w, 4); err == nil {
		t.Fatalf("expected error for empty signal")
	}
	if _, err := Wavedec([]float64{1}, w, 0); err == nil {
		t.Fatalf("expected error for zero levels")
	}
}

func TestSymmetricIndex(t *testing.T) {
	cases := []struct{ i, n, want int }{
		{-1, 4, 0}, {-2, 4, 1}, {4, 4, 3}, {5, 4, 2}, {-1, 1, 0}, {3, 1, 0}, {-5, 2, 0},
	}
	for _, tc := range cases {
		if got := symmetricIndex(tc.i, tc.n); got != tc.want {
			t.Fatalf("symmetricIndex(%d, %d) = %d, want %d", tc.i, tc.n, got, tc.want)
		}
	}
}
