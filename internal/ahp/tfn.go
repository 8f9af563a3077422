package ahp

import (
	"fmt"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
)

// TFN is a triangular fuzzy number (lower, middle, upper).
type TFN struct {
	L float64 `json:"l" yaml:"l"`
	M float64 `json:"m" yaml:"m"`
	U float64 `json:"u" yaml:"u"`
}

// One is the neutral judgment used on the diagonal.
var One = TFN{1, 1, 1}

// Valid reports whether the number is finite, strictly positive and ordered.
func (t TFN) Valid() bool {
	return mcdm.Finite(t.L) && mcdm.Finite(t.M) && mcdm.Finite(t.U) &&
		t.L > 0 && t.L <= t.M && t.M <= t.U
}

// Reciprocal returns (1/u, 1/m, 1/l).
func (t TFN) Reciprocal() TFN {
	return TFN{L: 1 / t.U, M: 1 / t.M, U: 1 / t.L}
}

// Centroid is the centre-of-area defuzzification (l+m+u)/3.
func (t TFN) Centroid() float64 {
	return (t.L + t.M + t.U) / 3
}

func (t TFN) String() string {
	return fmt.Sprintf("(%.4g, %.4g, %.4g)", t.L, t.M, t.U)
}

// Defuzzifier collapses a TFN to a crisp value.
type Defuzzifier string

const (
	// Centroid uses the centre of area (l+m+u)/3.
	Centroid Defuzzifier = "centroid"
	// Modal uses the middle value m.
	Modal Defuzzifier = "modal"
)

// Apply defuzzifies t. Unknown values fall back to the centroid.
func (d Defuzzifier) Apply(t TFN) float64 {
	if d == Modal {
		return t.M
	}
	return t.Centroid()
}
