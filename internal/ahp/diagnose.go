package ahp

import (
	"math"
)

// Inconsistency points at the judgment that deviates most from the ratio
// implied by the derived weights.
type Inconsistency struct {
	Row       int     `json:"row"`
	Col       int     `json:"col"`
	Judgment  float64 `json:"judgment"`
	Implied   float64 `json:"implied"`
	Deviation float64 `json:"deviation"`
	// Direction is "reduce" when the row criterion was over-rated relative
	// to the column criterion and "increase" otherwise.
	Direction string `json:"direction"`
}

// Diagnose finds the pair (i, j), i < j, maximising |ln a_ij − ln(w_i/w_j)|.
// It returns false when no pair deviates.
func Diagnose(crisp [][]float64, weights []float64) (Inconsistency, bool) {
	var worst Inconsistency
	found := false
	n := len(weights)
	for i := 0; i < n && i < len(crisp); i++ {
		for j := i + 1; j < n && j < len(crisp[i]); j++ {
			a := crisp[i][j]
			if a <= 0 || weights[i] <= 0 || weights[j] <= 0 {
				continue
			}
			ratio := weights[i] / weights[j]
			dev := math.Abs(math.Log(a) - math.Log(ratio))
			if dev > worst.Deviation {
				worst = Inconsistency{Row: i, Col: j, Judgment: a, Implied: ratio, Deviation: dev}
				found = true
			}
		}
	}
	if !found {
		return Inconsistency{}, false
	}
	if worst.Judgment > worst.Implied {
		worst.Direction = "reduce"
	} else {
		worst.Direction = "increase"
	}
	return worst, true
}
