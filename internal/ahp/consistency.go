package ahp

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
)

// DefaultThreshold is the conventional upper bound for an acceptable CR.
const DefaultThreshold = 0.1

// randomIndex holds RI for n = 1..10. Larger groups reuse the last value.
var randomIndex = []float64{0, 0, 0.52, 0.89, 1.11, 1.25, 1.35, 1.40, 1.45, 1.49}

// RandomIndex returns the random consistency index for a group of size n.
func RandomIndex(n int) float64 {
	if n < 1 {
		return 0
	}
	if n > len(randomIndex) {
		return randomIndex[len(randomIndex)-1]
	}
	return randomIndex[n-1]
}

// Consistency summarises the consistency check of one comparison matrix.
type Consistency struct {
	LambdaMax  float64 `json:"lambda_max"`
	CI         float64 `json:"ci"`
	RI         float64 `json:"ri"`
	CR         float64 `json:"cr"`
	Threshold  float64 `json:"threshold"`
	Acceptable bool    `json:"acceptable"`
}

// CheckConsistency computes λmax, CI and CR for a crisp n×n matrix. Groups
// of one or two items are consistent by definition.
func CheckConsistency(crisp [][]float64, threshold float64) (Consistency, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	n := len(crisp)
	c := Consistency{LambdaMax: float64(n), RI: RandomIndex(n), Threshold: threshold, Acceptable: true}
	if n <= 2 {
		return c, nil
	}

	data := make([]float64, 0, n*n)
	for i, row := range crisp {
		if len(row) != n {
			return c, mcdm.Invalid("matrix", "row %d has %d columns, want %d", i, len(row), n)
		}
		for _, v := range row {
			if !mcdm.Finite(v) {
				return c, mcdm.Degenerate("consistency", "matrix contains a non-finite value")
			}
		}
		data = append(data, row...)
	}

	lambda, err := dominantEigenvalue(mat.NewDense(n, n, data))
	if err != nil {
		return c, err
	}
	c.LambdaMax = lambda
	c.CI = math.Max(0, (lambda-float64(n))/float64(n-1))
	if c.RI > 0 {
		c.CR = c.CI / c.RI
	}
	c.Acceptable = c.CR <= threshold
	return c, nil
}

// dominantEigenvalue returns the eigenvalue with the largest real part and
// rejects it when it carries a non-negligible imaginary component.
func dominantEigenvalue(a mat.Matrix) (float64, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenNone); !ok {
		return 0, mcdm.Degenerate("consistency", "eigen decomposition did not converge")
	}
	values := eig.Values(nil)
	if len(values) == 0 {
		return 0, mcdm.Degenerate("consistency", "no eigenvalues")
	}
	best := values[0]
	for _, v := range values[1:] {
		if real(v) > real(best) {
			best = v
		}
	}
	if cmplx.IsNaN(best) || math.Abs(imag(best)) > 1e-9*math.Max(1, math.Abs(real(best))) {
		return 0, mcdm.Degenerate("consistency", "dominant eigenvalue %v is not real", best)
	}
	return real(best), nil
}
