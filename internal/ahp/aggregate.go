package ahp

import (
	"math"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
)

// ExpertWeights validates expert weights for k experts. A nil slice means
// every expert counts 1/k.
func ExpertWeights(w []float64, k int, tol float64) ([]float64, error) {
	if k == 0 {
		return nil, mcdm.Invalid("experts", "no experts supplied")
	}
	if w == nil {
		return mcdm.Uniform(k), nil
	}
	if len(w) == k && mcdm.Sum(w) == 0 {
		return nil, mcdm.Invalid("expert_weights", "weights sum to zero")
	}
	if err := mcdm.ValidateWeights("expert_weights", w, k, tol); err != nil {
		return nil, err
	}
	return w, nil
}

// Aggregate combines per-expert matrices cell by cell with the weighted
// geometric mean Π x_k^w_k applied to each TFN component. The diagonal is
// fixed to (1,1,1).
func Aggregate(matrices []Matrix, expertWeights []float64, tol float64) (Matrix, error) {
	n, err := validateMatrices(matrices)
	if err != nil {
		return nil, err
	}
	weights, err := ExpertWeights(expertWeights, len(matrices), tol)
	if err != nil {
		return nil, err
	}

	out := make(Matrix, n)
	for i := 0; i < n; i++ {
		out[i] = make([]TFN, n)
		for j := 0; j < n; j++ {
			if i == j {
				out[i][j] = One
				continue
			}
			agg := One
			for k, m := range matrices {
				v := m[i][j]
				agg.L *= math.Pow(v.L, weights[k])
				agg.M *= math.Pow(v.M, weights[k])
				agg.U *= math.Pow(v.U, weights[k])
			}
			out[i][j] = agg
		}
	}
	return out, nil
}
