package builder

import "testing"

func TestEnvHelpers(t *testing.T) {
	cases := []struct {
		name  string
		value string
		str   string
		num   int
		flt   float64
	}{
		{"unset", "", "def", 7, 0.5},
		{"quoted and padded", `"  12  "`, "12", 12, 12},
		{"float", "0.25", "0.25", 7, 0.25},
		{"garbage", "abc", "abc", 7, 0.5},
	}
	const key = "TREMOR_TEST_ENV_HELPER"
	for _, tc := range cases {
		t.Setenv(key, tc.value)
		if got := EnvOr(key, "def"); got != tc.str {
			t.Fatalf("%s: EnvOr = %q, want %q", tc.name, got, tc.str)
		}
		if got := EnvIntOr(key, 7); got != tc.num {
			t.Fatalf("%s: EnvIntOr = %d, want %d", tc.name, got, tc.num)
		}
		if got := EnvFloatOr(key, 0.5); got != tc.flt {
			t.Fatalf("%s: EnvFloatOr = %v, want %v", tc.name, got, tc.flt)
		}
	}
}
