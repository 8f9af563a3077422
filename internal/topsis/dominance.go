package topsis

import (
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
)

// NonDominated returns the indices of alternatives that no other
// alternative dominates. O(m²·n), fine for typical
// alternative counts.
func NonDominated(m Matrix, polarity []mcdm.Polarity) []int {
	frontier := []int{}
	for i := range m {
		dominated := false
		for j := range m {
			if i == j {
				continue
			}
			if Dominates(m[j], m[i], polarity) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, i)
		}
	}
	return frontier
}

// Dominates returns true if a dominates b: at least as good on both bounds
// of every criterion and strictly better somewhere. For benefit criteria
// higher is better; for cost criteria lower is better.
func Dominates(a, b []Interval, polarity []mcdm.Polarity) bool {
	strict := false
	for j := range a {
		x, y := a[j], b[j]
		if polarity[j] == mcdm.Cost {
			x, y = Interval{L: -x.U, U: -x.L}, Interval{L: -y.U, U: -y.L}
		}
		if x.L < y.L || x.U < y.U {
			return false
		}
		if x.L > y.L || x.U > y.U {
			strict = true
		}
	}
	return strict
}
