package topsis

import (
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
)

// Matrix holds one interval per alternative (row) and leaf criterion (column).
type Matrix [][]Interval

// Dims returns the number of alternatives and criteria.
func (m Matrix) Dims() (alternatives, criteria int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m), len(m[0])
}

// Scale bounds admissible rating values. A zero Scale accepts any finite value.
type Scale struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// DefaultScale is the 0–10 rating scale.
var DefaultScale = Scale{Min: 0, Max: 10}

func (s Scale) bounded() bool { return s.Max > s.Min }

func (s Scale) contains(iv Interval) bool {
	return !s.bounded() || (iv.L >= s.Min && iv.U <= s.Max)
}

func validateMatrix(field string, m Matrix, scale Scale) (int, int, error) {
	rows, cols := m.Dims()
	if rows < 2 {
		return 0, 0, mcdm.Invalid(field, "%d alternatives, need at least 2", rows)
	}
	if cols < 2 {
		return 0, 0, mcdm.Invalid(field, "%d criteria, need at least 2", cols)
	}
	for i, row := range m {
		if len(row) != cols {
			return 0, 0, mcdm.Invalid(field, "row %d has %d columns, want %d", i, len(row), cols)
		}
		for j, iv := range row {
			if !mcdm.Finite(iv.L) || !mcdm.Finite(iv.U) {
				return 0, 0, mcdm.Invalid(field, "cell (%d,%d) is not finite", i, j)
			}
			if iv.L > iv.U {
				return 0, 0, mcdm.Invalid(field, "cell (%d,%d) interval %s is inverted", i, j, iv)
			}
			if !scale.contains(iv) {
				return 0, 0, mcdm.Invalid(field, "cell (%d,%d) interval %s outside scale [%g, %g]", i, j, iv, scale.Min, scale.Max)
			}
		}
	}
	return rows, cols, nil
}

// Aggregate averages the experts' matrices cell by cell, lower and upper
// bounds independently. Experts are weighted equally.
func Aggregate(experts []Matrix, scale Scale) (Matrix, error) {
	if len(experts) == 0 {
		return nil, mcdm.Invalid("ratings", "no expert matrices supplied")
	}
	rows, cols, err := validateMatrix("ratings", experts[0], scale)
	if err != nil {
		return nil, err
	}
	for k, e := range experts[1:] {
		r, c, err := validateMatrix("ratings", e, scale)
		if err != nil {
			return nil, err
		}
		if r != rows || c != cols {
			return nil, mcdm.Invalid("ratings", "expert %d matrix is %d×%d, want %d×%d", k+1, r, c, rows, cols)
		}
	}

	k := float64(len(experts))
	out := make(Matrix, rows)
	for i := range out {
		out[i] = make([]Interval, cols)
		for j := range out[i] {
			var sum Interval
			for _, e := range experts {
				sum.L += e[i][j].L
				sum.U += e[i][j].U
			}
			out[i][j] = Interval{L: sum.L / k, U: sum.U / k}
		}
	}
	return out, nil
}
