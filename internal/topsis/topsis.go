// Package topsis ranks alternatives from interval-valued ratings with the
// interval TOPSIS method.
package topsis

import (
	"math"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
)

// DefaultTieTolerance is the largest closeness difference treated as a tie.
const DefaultTieTolerance = 1e-9

// Options tunes a ranking run.
type Options struct {
	Scale           Scale
	TieTolerance    float64
	WeightTolerance float64
}

// DefaultOptions uses the 0–10 scale and default tolerances.
func DefaultOptions() Options {
	return Options{
		Scale:           DefaultScale,
		TieTolerance:    DefaultTieTolerance,
		WeightTolerance: mcdm.DefaultTolerance,
	}
}

func (o Options) withDefaults() Options {
	if o.TieTolerance <= 0 {
		o.TieTolerance = DefaultTieTolerance
	}
	if o.WeightTolerance <= 0 {
		o.WeightTolerance = mcdm.DefaultTolerance
	}
	return o
}

// AlternativeResult is the outcome for one alternative.
type AlternativeResult struct {
	Index             int     `json:"index"`
	DistanceIdeal     float64 `json:"distance_ideal"`
	DistanceAntiIdeal float64 `json:"distance_anti_ideal"`
	Closeness         float64 `json:"closeness"`
	Rank              int     `json:"rank"`
}

// Result is the full ranking output. Alternatives keeps input order; Order
// lists alternative indices from best to worst.
type Result struct {
	Alternatives []AlternativeResult `json:"alternatives"`
	Order        []int               `json:"order"`
	Normalized   Matrix              `json:"normalized"`
	Weighted     Matrix              `json:"weighted"`
	Ideal        []Interval          `json:"ideal"`
	AntiIdeal    []Interval          `json:"anti_ideal"`
	NonDominated []int               `json:"non_dominated"`
}

// Closeness returns the closeness coefficients in input order.
func (r *Result) Closeness() []float64 {
	out := make([]float64, len(r.Alternatives))
	for i, a := range r.Alternatives {
		out[i] = a.Closeness
	}
	return out
}

// Ranks returns the ranks in input order.
func (r *Result) Ranks() []int {
	out := make([]int, len(r.Alternatives))
	for i, a := range r.Alternatives {
		out[i] = a.Rank
	}
	return out
}

// RankExperts averages the experts' matrices and ranks the result.
func RankExperts(experts []Matrix, weights []float64, polarity []mcdm.Polarity, opts Options) (*Result, error) {
	m, err := Aggregate(experts, opts.Scale)
	if err != nil {
		return nil, err
	}
	return Rank(m, weights, polarity, opts)
}

// Rank scores every alternative by its closeness to the ideal solution.
// Inputs are validated before any computation and never modified.
func Rank(m Matrix, weights []float64, polarity []mcdm.Polarity, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	rows, cols, err := validateMatrix("ratings", m, opts.Scale)
	if err != nil {
		return nil, err
	}
	if err := mcdm.ValidateWeights("weights", weights, cols, opts.WeightTolerance); err != nil {
		return nil, err
	}
	if err := mcdm.ValidatePolarity(polarity, cols); err != nil {
		return nil, err
	}

	normalized, err := normalize(m)
	if err != nil {
		return nil, err
	}
	weighted := applyWeights(normalized, weights)
	ideal, anti := idealSolutions(weighted, polarity)

	res := &Result{
		Alternatives: make([]AlternativeResult, rows),
		Normalized:   normalized,
		Weighted:     weighted,
		Ideal:        ideal,
		AntiIdeal:    anti,
		NonDominated: NonDominated(m, polarity),
	}
	for i := range weighted {
		dPlus := distance(weighted[i], ideal)
		dMinus := distance(weighted[i], anti)
		denom := dPlus + dMinus
		if denom == 0 {
			return nil, mcdm.Degenerate("closeness", "alternatives are indistinguishable under the given weights")
		}
		res.Alternatives[i] = AlternativeResult{
			Index:             i,
			DistanceIdeal:     dPlus,
			DistanceAntiIdeal: dMinus,
			Closeness:         dMinus / denom,
		}
	}
	res.Order = assignRanks(res.Alternatives, opts.TieTolerance)
	return res, nil
}

// normalize divides each column by sqrt(Σ l² + u²) over all alternatives.
func normalize(m Matrix) (Matrix, error) {
	rows, cols := m.Dims()
	out := make(Matrix, rows)
	for i := range out {
		out[i] = make([]Interval, cols)
	}
	for j := 0; j < cols; j++ {
		var squares float64
		for i := 0; i < rows; i++ {
			squares += m[i][j].L*m[i][j].L + m[i][j].U*m[i][j].U
		}
		norm := math.Sqrt(squares)
		if norm == 0 {
			return nil, mcdm.Degenerate("normalization", "criterion %d has only zero ratings", j)
		}
		for i := 0; i < rows; i++ {
			out[i][j] = Interval{L: m[i][j].L / norm, U: m[i][j].U / norm}
		}
	}
	return out, nil
}

func applyWeights(m Matrix, weights []float64) Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = make([]Interval, len(row))
		for j, iv := range row {
			out[i][j] = Interval{L: iv.L * weights[j], U: iv.U * weights[j]}
		}
	}
	return out
}

// idealSolutions picks, per criterion and per bound, the best value across
// alternatives for the ideal point and the worst for the anti-ideal point.
func idealSolutions(m Matrix, polarity []mcdm.Polarity) (ideal, anti []Interval) {
	cols := len(polarity)
	ideal = make([]Interval, cols)
	anti = make([]Interval, cols)
	for j := 0; j < cols; j++ {
		hi := m[0][j]
		lo := m[0][j]
		for _, row := range m[1:] {
			hi.L = math.Max(hi.L, row[j].L)
			hi.U = math.Max(hi.U, row[j].U)
			lo.L = math.Min(lo.L, row[j].L)
			lo.U = math.Min(lo.U, row[j].U)
		}
		if polarity[j] == mcdm.Cost {
			ideal[j], anti[j] = lo, hi
		} else {
			ideal[j], anti[j] = hi, lo
		}
	}
	return ideal, anti
}

func distance(row []Interval, ref []Interval) float64 {
	var sum float64
	for j, iv := range row {
		dl := iv.L - ref[j].L
		du := iv.U - ref[j].U
		sum += dl*dl + du*du
	}
	return math.Sqrt(sum)
}
