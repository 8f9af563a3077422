package ahp

import (
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
)

// Matrix is an n×n fuzzy pairwise comparison matrix for one sibling group.
type Matrix [][]TFN

// Size returns n.
func (m Matrix) Size() int { return len(m) }

// Crisp defuzzifies every cell.
func (m Matrix) Crisp(d Defuzzifier) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = d.Apply(v)
		}
	}
	return out
}

// Comparison is one judgment comparing Row against Col.
type Comparison struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Value TFN `json:"value"`
}

// BuildMatrix assembles a full matrix from one expert's judgments. Each
// unordered pair must be judged once; the mirrored cell receives the
// reciprocal. The diagonal is (1,1,1).
func BuildMatrix(n int, comparisons []Comparison) (Matrix, error) {
	if n < 2 {
		return nil, mcdm.Invalid("matrix", "group size %d, need at least 2", n)
	}
	m := make(Matrix, n)
	set := make([][]bool, n)
	for i := range m {
		m[i] = make([]TFN, n)
		set[i] = make([]bool, n)
		m[i][i] = One
		set[i][i] = true
	}
	for _, c := range comparisons {
		if c.Row < 0 || c.Row >= n || c.Col < 0 || c.Col >= n {
			return nil, mcdm.Invalid("comparison", "index (%d,%d) outside %d×%d", c.Row, c.Col, n, n)
		}
		if c.Row == c.Col {
			return nil, mcdm.Invalid("comparison", "criterion %d compared with itself", c.Row)
		}
		if !c.Value.Valid() {
			return nil, mcdm.Invalid("comparison", "(%d,%d) value %s is not a positive ordered TFN", c.Row, c.Col, c.Value)
		}
		if set[c.Row][c.Col] {
			return nil, mcdm.Invalid("comparison", "pair (%d,%d) judged more than once", c.Row, c.Col)
		}
		m[c.Row][c.Col] = c.Value
		m[c.Col][c.Row] = c.Value.Reciprocal()
		set[c.Row][c.Col] = true
		set[c.Col][c.Row] = true
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !set[i][j] {
				return nil, mcdm.Invalid("comparison", "pair (%d,%d) has no judgment", i, j)
			}
		}
	}
	return m, nil
}

func validateMatrices(matrices []Matrix) (int, error) {
	if len(matrices) == 0 {
		return 0, mcdm.Invalid("matrices", "no expert matrices supplied")
	}
	n := matrices[0].Size()
	if n < 2 {
		return 0, mcdm.Invalid("matrices", "group size %d, need at least 2", n)
	}
	for k, m := range matrices {
		if m.Size() != n {
			return 0, mcdm.Invalid("matrices", "expert %d has %d rows, want %d", k, m.Size(), n)
		}
		for i, row := range m {
			if len(row) != n {
				return 0, mcdm.Invalid("matrices", "expert %d row %d has %d columns, want %d", k, i, len(row), n)
			}
			for j, v := range row {
				if i == j {
					continue
				}
				if !v.Valid() {
					return 0, mcdm.Invalid("matrices", "expert %d cell (%d,%d) value %s is not a positive ordered TFN", k, i, j, v)
				}
			}
		}
	}
	return n, nil
}
