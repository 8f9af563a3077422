package mcdm

import (
	"fmt"
	"math"
	"strings"
)

// DefaultTolerance is the tolerance used when checking that weights sum to 1.
const DefaultTolerance = 1e-6

// Polarity tells whether larger values of a criterion are better or worse.
type Polarity string

const (
	Benefit Polarity = "benefit"
	Cost    Polarity = "cost"
)

// ParsePolarity accepts "benefit" or "cost" in any case. Empty means benefit.
func ParsePolarity(s string) (Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "benefit":
		return Benefit, nil
	case "cost":
		return Cost, nil
	}
	return "", Invalid("polarity", "unknown value %q", s)
}

// Valid reports whether p is one of the known polarities.
func (p Polarity) Valid() bool { return p == Benefit || p == Cost }

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Sum returns the total of all entries.
func Sum(w []float64) float64 {
	var total float64
	for _, v := range w {
		total += v
	}
	return total
}

// ValidateWeights checks a weight vector of the given length: finite,
// non-negative, summing to 1 within tol.
func ValidateWeights(field string, w []float64, n int, tol float64) error {
	if len(w) != n {
		return Invalid(field, "length %d, want %d", len(w), n)
	}
	for i, v := range w {
		if !Finite(v) {
			return Invalid(field, "entry %d is not finite", i)
		}
		if v < 0 {
			return Invalid(field, "entry %d is negative (%g)", i, v)
		}
	}
	if s := Sum(w); math.Abs(s-1.0) > tol {
		return Invalid(field, "sums to %.9f, must sum to 1.0", s)
	}
	return nil
}

// ValidatePolarity checks that every entry is benefit or cost.
func ValidatePolarity(p []Polarity, n int) error {
	if len(p) != n {
		return Invalid("polarity", "length %d, want %d", len(p), n)
	}
	for i, v := range p {
		if !v.Valid() {
			return Invalid("polarity", "entry %d has unknown value %q", i, v)
		}
	}
	return nil
}

// Normalize divides every entry by the total. It fails when the total is
// not strictly positive.
func Normalize(w []float64) ([]float64, error) {
	total := Sum(w)
	if !(total > 0) || !Finite(total) {
		return nil, Degenerate("normalization", "weights sum to %g", total)
	}
	out := make([]float64, len(w))
	for i, v := range w {
		out[i] = v / total
	}
	return out, nil
}

// Uniform returns n equal weights.
func Uniform(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1.0 / float64(n)
	}
	return out
}

// FormatWeights renders a weight vector for log lines.
func FormatWeights(w []float64) string {
	parts := make([]string, len(w))
	for i, v := range w {
		parts[i] = fmt.Sprintf("%.4f", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
