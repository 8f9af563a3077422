// Package sensitivity measures how stable a TOPSIS ranking is when the
// criterion weights move.
package sensitivity

import (
	"math"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
)

const (
	DefaultRange = 0.2
	DefaultSteps = 51

	// Target weights within saturated of 1 leave no mass to rescale.
	saturated = 1e-12
)

// Perturbations returns steps evenly spaced fractions covering [-r, r].
// steps must be odd so the middle entry is exactly zero.
func Perturbations(r float64, steps int) ([]float64, error) {
	if !mcdm.Finite(r) || r <= 0 {
		return nil, mcdm.Invalid("range", "must be a positive fraction, got %g", r)
	}
	if steps < 3 || steps%2 == 0 {
		return nil, mcdm.Invalid("steps", "must be an odd number of at least 3, got %d", steps)
	}
	out := make([]float64, steps)
	last := steps - 1
	for i := range out {
		out[i] = r * float64(2*i-last) / float64(last)
	}
	return out, nil
}

// Perturb scales the target weight by (1+p), clamps it to [0, 1] and
// rescales the other weights so the vector still sums to 1. The input is
// not modified.
func Perturb(base []float64, target int, p float64) []float64 {
	out := make([]float64, len(base))
	if p == 0 || len(base) == 1 {
		copy(out, base)
		return out
	}

	old := base[target]
	next := math.Min(1, math.Max(0, old*(1+p)))
	out[target] = next

	rest := 1 - old
	if rest <= saturated {
		// Nothing to rescale: hand the freed mass out evenly.
		share := (1 - next) / float64(len(base)-1)
		for i := range out {
			if i != target {
				out[i] = share
			}
		}
	} else {
		scale := (1 - next) / rest
		for i, w := range base {
			if i != target {
				out[i] = w * scale
			}
		}
	}

	total := mcdm.Sum(out)
	for i := range out {
		out[i] /= total
	}
	return out
}
