package layout

import (
	"math"
	"testing"
	"unicode/utf8"
)

// monoMeasurer gives every rune a 6 unit advance with half a unit of side
// bearing, and every non-empty run a 9 unit tall ink box rising 7 units
// above the baseline.
var monoMeasurer = MeasurerFunc(func(s string) Extents {
	n := float64(utf8.RuneCountInString(s))
	if n == 0 {
		return Extents{}
	}
	return Extents{XBearing: 0.5, YBearing: -7, Width: 6*n - 1, Height: 9, XAdvance: 6 * n}
})

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func assertApprox(t *testing.T, name string, got, want float64) {
	t.Helper()
	if !approx(got, want) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}
