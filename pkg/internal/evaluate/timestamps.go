package evaluate

import (
	"fmt"
	"math"
	"path"
	"strings"
	"time"
)

// DefaultLayout reads MMDDhhmmss from the start of a file name.
const DefaultLayout = "0102150405"

// ParseWindowStart returns the window start, in Unix seconds UTC, encoded at the beginning of
// the base name of id according to layout. The year is not part of the name and must be
// given explicitly.
func ParseWindowStart(id string, year int, layout string) (float64, error) {
	t, err := windowStart(id, year, layout)
	if err != nil {
		return 0, err
	}
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9, nil
}

func windowStart(id string, year int, layout string) (time.Time, error) {
	if year < 1900 || year > 9999 {
		return time.Time{}, fmt.Errorf("evaluate: reference year %d outside 1900-9999", year)
	}
	if layout == "" {
		layout = DefaultLayout
	}
	base := path.Base(strings.ReplaceAll(id, "\\", "/"))
	if i := strings.Index(base, "#"); i >= 0 {
		base = base[:i]
	}
	if len(base) < len(layout) {
		return time.Time{}, fmt.Errorf("evaluate: %q is shorter than layout %q", id, layout)
	}
	t, err := time.ParseInLocation(layout, base[:len(layout)], time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("evaluate: %q: %w", id, err)
	}
	// Re-validate after moving to the reference year so that 29 February only parses in
	// leap years.
	out := time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	if out.Month() != t.Month() || out.Day() != t.Day() {
		return time.Time{}, fmt.Errorf("evaluate: %q: %s %d does not exist in %d", id, t.Month(), t.Day(), year)
	}
	return out, nil
}

// Reconstruct returns the absolute arrival time t0 + r.
func Reconstruct(t0, r float64) float64 { return t0 + r }

// ReconstructFromID returns the absolute arrival time of relative prediction r for id.
func ReconstructFromID(id string, r float64, year int, layout string) (float64, error) {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, fmt.Errorf("evaluate: non-finite prediction for %q", id)
	}
	t0, err := ParseWindowStart(id, year, layout)
	if err != nil {
		return 0, err
	}
	return Reconstruct(t0, r), nil
}
