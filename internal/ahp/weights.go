package ahp

import (
	"fmt"
	"math"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
)

// Synthesis selects how fuzzy weights are derived from the aggregated matrix.
type Synthesis string

const (
	// GeometricMean uses the fuzzy geometric mean of each row (Buckley).
	GeometricMean Synthesis = "geometric"
	// Extent uses the fuzzy row sums normalised by the grand total (Chang).
	Extent Synthesis = "extent"
)

// Options tunes a weighting run. The zero value is usable.
type Options struct {
	// ExpertWeights must sum to 1; nil weighs every expert equally.
	ExpertWeights []float64
	Synthesis     Synthesis
	// Defuzzifier builds the crisp matrix for the consistency check.
	Defuzzifier Defuzzifier
	Threshold   float64
	Tolerance   float64
}

func (o Options) withDefaults() Options {
	if o.Synthesis == "" {
		o.Synthesis = GeometricMean
	}
	if o.Defuzzifier == "" {
		o.Defuzzifier = Centroid
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.Tolerance <= 0 {
		o.Tolerance = mcdm.DefaultTolerance
	}
	return o
}

// Result is the outcome of weighting one sibling group.
type Result struct {
	Weights      []float64                `json:"weights"`
	FuzzyWeights []TFN                    `json:"fuzzy_weights"`
	Aggregated   Matrix                   `json:"aggregated"`
	Consistency  Consistency              `json:"consistency"`
	Warning      *mcdm.ConsistencyWarning `json:"warning,omitempty"`
}

// Weigh derives crisp local weights and a consistency ratio from the
// experts' comparison matrices of one sibling group.
func Weigh(matrices []Matrix, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	aggregated, err := Aggregate(matrices, opts.ExpertWeights, opts.Tolerance)
	if err != nil {
		return nil, err
	}

	fuzzy, err := FuzzyWeights(aggregated, opts.Synthesis)
	if err != nil {
		return nil, err
	}

	crisp := make([]float64, len(fuzzy))
	for i, f := range fuzzy {
		crisp[i] = f.Centroid()
	}
	weights, err := mcdm.Normalize(crisp)
	if err != nil {
		return nil, err
	}

	consistency, err := CheckConsistency(aggregated.Crisp(opts.Defuzzifier), opts.Threshold)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Weights:      weights,
		FuzzyWeights: fuzzy,
		Aggregated:   aggregated,
		Consistency:  consistency,
	}
	if !consistency.Acceptable {
		res.Warning = &mcdm.ConsistencyWarning{
			CR:        consistency.CR,
			Threshold: consistency.Threshold,
			Message:   fmt.Sprintf("consistency ratio %.4f exceeds %.2f; judgments should be revised", consistency.CR, consistency.Threshold),
		}
	}
	return res, nil
}

// FuzzyWeights synthesises one fuzzy weight per row of an aggregated matrix:
// w_i = r_i ⊗ (Σ r)^-1 where r_i is the row's geometric mean or sum.
func FuzzyWeights(m Matrix, method Synthesis) ([]TFN, error) {
	n := m.Size()
	rows := make([]TFN, n)
	for i, row := range m {
		switch method {
		case Extent:
			var s TFN
			for _, v := range row {
				s.L += v.L
				s.M += v.M
				s.U += v.U
			}
			rows[i] = s
		case GeometricMean, "":
			p := One
			for _, v := range row {
				p.L *= v.L
				p.M *= v.M
				p.U *= v.U
			}
			exp := 1 / float64(n)
			rows[i] = TFN{math.Pow(p.L, exp), math.Pow(p.M, exp), math.Pow(p.U, exp)}
		default:
			return nil, mcdm.Invalid("synthesis", "unknown method %q", method)
		}
	}

	var total TFN
	for _, r := range rows {
		total.L += r.L
		total.M += r.M
		total.U += r.U
	}
	if !(total.L > 0) || !mcdm.Finite(total.U) {
		return nil, mcdm.Degenerate("synthesis", "row totals %s are not positive and finite", total)
	}

	inv := total.Reciprocal()
	out := make([]TFN, n)
	for i, r := range rows {
		out[i] = TFN{L: r.L * inv.L, M: r.M * inv.M, U: r.U * inv.U}
	}
	return out, nil
}
