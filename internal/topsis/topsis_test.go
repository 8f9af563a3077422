package topsis

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
)

func benefit(n int) []mcdm.Polarity {
	p := make([]mcdm.Polarity, n)
	for i := range p {
		p[i] = mcdm.Benefit
	}
	return p
}

func TestRankDominatingAlternative(t *testing.T) {
	m := Matrix{
		{{8, 9}, {8, 9}},
		{{5, 6}, {5, 6}},
		{{2, 3}, {2, 3}},
	}
	res, err := Rank(m, []float64{0.5, 0.5}, benefit(2), DefaultOptions())
	require.NoError(t, err)

	cc := res.Closeness()
	assert.InDelta(t, 1.0, cc[0], 1e-12)
	assert.InDelta(t, 0.0, cc[2], 1e-12)
	assert.Greater(t, cc[1], cc[2])
	assert.Less(t, cc[1], cc[0])
	assert.Equal(t, []int{1, 2, 3}, res.Ranks())
	assert.Equal(t, []int{0, 1, 2}, res.Order)
	assert.Equal(t, []int{0}, res.NonDominated)

	assert.Equal(t, res.Weighted[0], res.Ideal)
	assert.Equal(t, res.Weighted[2], res.AntiIdeal)
}

func TestRankTiesShareRank(t *testing.T) {
	m := Matrix{
		{{5, 7}, {5, 7}},
		{{5, 7}, {5, 7}},
		{{1, 3}, {1, 3}},
		{{9, 10}, {9, 10}},
	}
	res, err := Rank(m, []float64{0.3, 0.7}, benefit(2), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2, 4, 1}, res.Ranks())
	assert.Equal(t, []int{3, 0, 1, 2}, res.Order)
}

func TestRankCostCriterion(t *testing.T) {
	m := Matrix{
		{{1, 2}, {8, 9}},
		{{8, 9}, {1, 2}},
	}
	polarity := []mcdm.Polarity{mcdm.Cost, mcdm.Benefit}
	res, err := Rank(m, []float64{0.6, 0.4}, polarity, DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 1.0, res.Alternatives[0].Closeness, 1e-12)
	assert.InDelta(t, 0.0, res.Alternatives[1].Closeness, 1e-12)
	assert.Equal(t, []int{1, 2}, res.Ranks())
	assert.Equal(t, []int{0}, res.NonDominated)

	// Treating price as a benefit hands the lead to the expensive option.
	res, err = Rank(m, []float64{0.6, 0.4}, benefit(2), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, res.Ranks())
	assert.InDelta(t, 0.4, res.Alternatives[0].Closeness, 1e-12)
	assert.InDelta(t, 0.6, res.Alternatives[1].Closeness, 1e-12)

	res, err = Rank(m, []float64{0.4, 0.6}, []mcdm.Polarity{mcdm.Benefit, mcdm.Cost}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, res.Ranks())
	assert.InDelta(t, 1.0, res.Alternatives[1].Closeness, 1e-12)
}

func TestRankClosenessBounded(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := 0; trial < 50; trial++ {
		rows, cols := 2+rng.IntN(6), 2+rng.IntN(5)
		m := make(Matrix, rows)
		for i := range m {
			m[i] = make([]Interval, cols)
			for j := range m[i] {
				lo := 0.5 + rng.Float64()*8
				m[i][j] = Interval{L: lo, U: lo + rng.Float64()*(10-lo)}
			}
		}
		raw := make([]float64, cols)
		for j := range raw {
			raw[j] = 0.05 + rng.Float64()
		}
		w, err := mcdm.Normalize(raw)
		require.NoError(t, err)

		res, err := Rank(m, w, benefit(cols), DefaultOptions())
		require.NoError(t, err)
		for _, a := range res.Alternatives {
			assert.GreaterOrEqual(t, a.Closeness, 0.0)
			assert.LessOrEqual(t, a.Closeness, 1.0)
			assert.GreaterOrEqual(t, a.Rank, 1)
			assert.LessOrEqual(t, a.Rank, rows)
		}
		assert.NotEmpty(t, res.NonDominated)
		for k := 1; k < len(res.Order); k++ {
			prev := res.Alternatives[res.Order[k-1]]
			cur := res.Alternatives[res.Order[k]]
			assert.GreaterOrEqual(t, prev.Closeness, cur.Closeness)
			assert.LessOrEqual(t, prev.Rank, cur.Rank)
		}
	}
}

func TestRankDoesNotMutateInputs(t *testing.T) {
	m := Matrix{
		{{1, 2}, {3, 4}},
		{{5, 6}, {7, 8}},
	}
	w := []float64{0.25, 0.75}
	_, err := Rank(m, w, benefit(2), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, Matrix{{{1, 2}, {3, 4}}, {{5, 6}, {7, 8}}}, m)
	assert.Equal(t, []float64{0.25, 0.75}, w)
}

func TestRankDegenerate(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
	}{
		{"zero column", Matrix{{{0, 0}, {1, 2}}, {{0, 0}, {3, 4}}}},
		{"identical alternatives", Matrix{{{4, 6}, {1, 2}}, {{4, 6}, {1, 2}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Rank(tt.m, []float64{0.5, 0.5}, benefit(2), DefaultOptions())
			require.Error(t, err)
			assert.True(t, errors.Is(err, mcdm.ErrDegenerate), "got %v", err)
		})
	}
}

func TestRankValidation(t *testing.T) {
	good := Matrix{{{1, 2}, {3, 4}}, {{5, 6}, {7, 8}}}
	tests := []struct {
		name     string
		m        Matrix
		weights  []float64
		polarity []mcdm.Polarity
	}{
		{"single alternative", Matrix{{{1, 2}, {3, 4}}}, []float64{0.5, 0.5}, benefit(2)},
		{"single criterion", Matrix{{{1, 2}}, {{3, 4}}}, []float64{1}, benefit(1)},
		{"ragged", Matrix{{{1, 2}, {3, 4}}, {{5, 6}}}, []float64{0.5, 0.5}, benefit(2)},
		{"inverted interval", Matrix{{{2, 1}, {3, 4}}, {{5, 6}, {7, 8}}}, []float64{0.5, 0.5}, benefit(2)},
		{"outside scale", Matrix{{{1, 2}, {3, 11}}, {{5, 6}, {7, 8}}}, []float64{0.5, 0.5}, benefit(2)},
		{"weights do not sum to one", good, []float64{0.5, 0.4}, benefit(2)},
		{"negative weight", good, []float64{1.5, -0.5}, benefit(2)},
		{"weight count", good, []float64{1}, benefit(2)},
		{"polarity count", good, []float64{0.5, 0.5}, benefit(3)},
		{"unknown polarity", good, []float64{0.5, 0.5}, []mcdm.Polarity{"benefit", "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Rank(tt.m, tt.weights, tt.polarity, DefaultOptions())
			require.Error(t, err)
			assert.True(t, errors.Is(err, mcdm.ErrValidation), "got %v", err)
		})
	}
}

func TestRankUnboundedScale(t *testing.T) {
	m := Matrix{{{10, 20}, {3, 4}}, {{50, 60}, {7, 8}}}
	_, err := Rank(m, []float64{0.5, 0.5}, benefit(2), Options{})
	require.NoError(t, err)
}

func TestRankOrderCompetition(t *testing.T) {
	assert.Equal(t, []int{2, 1, 2, 4}, RankOrder([]float64{0.5, 0.9, 0.5 + 1e-12, 0.1}, DefaultTieTolerance))

	// Ties compare against the head of the group, so they do not chain.
	scores := []float64{0.5, 0.5 - 0.6e-9, 0.5 - 1.2e-9}
	assert.Equal(t, []int{1, 1, 3}, RankOrder(scores, 1e-9))
}

func TestAggregateExperts(t *testing.T) {
	a := Matrix{{{2, 4}, {6, 8}}, {{1, 1}, {3, 5}}}
	b := Matrix{{{4, 6}, {8, 10}}, {{3, 5}, {5, 7}}}

	m, err := Aggregate([]Matrix{a, b}, DefaultScale)
	require.NoError(t, err)
	assert.Equal(t, Matrix{{{3, 5}, {7, 9}}, {{2, 3}, {4, 6}}}, m)

	single, err := Aggregate([]Matrix{a}, DefaultScale)
	require.NoError(t, err)
	assert.Equal(t, a, single)

	_, err = Aggregate([]Matrix{a, {{{1, 2}, {3, 4}}}}, DefaultScale)
	assert.True(t, errors.Is(err, mcdm.ErrValidation))
	_, err = Aggregate(nil, DefaultScale)
	assert.True(t, errors.Is(err, mcdm.ErrValidation))
}

func TestRankExperts(t *testing.T) {
	a := Matrix{{{8, 9}, {8, 9}}, {{2, 3}, {2, 3}}}
	b := Matrix{{{6, 8}, {7, 9}}, {{1, 3}, {3, 4}}}
	res, err := RankExperts([]Matrix{a, b}, []float64{0.5, 0.5}, benefit(2), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, res.Ranks())
}

func TestDominates(t *testing.T) {
	p := []mcdm.Polarity{mcdm.Benefit, mcdm.Cost}
	a := []Interval{{5, 7}, {1, 2}}
	b := []Interval{{5, 7}, {2, 3}}
	assert.True(t, Dominates(a, b, p))
	assert.False(t, Dominates(b, a, p))
	assert.False(t, Dominates(a, a, p))

	overlapping := []Interval{{4, 8}, {1, 2}}
	assert.False(t, Dominates(a, overlapping, p))
	assert.False(t, Dominates(overlapping, a, p))
}

func TestGrades(t *testing.T) {
	iv, ok := Grade("very good").Interval()
	require.True(t, ok)
	assert.Equal(t, Interval{7, 9}, iv)

	_, ok = Grade("superb").Interval()
	assert.False(t, ok)

	grades := Grades()
	require.Len(t, grades, 6)
	assert.Equal(t, VeryPoor, grades[0].Grade)
	assert.Equal(t, Interval{9, 10}, grades[5].Value)
	for k := 1; k < len(grades); k++ {
		assert.GreaterOrEqual(t, grades[k].Value.L, grades[k-1].Value.L)
	}
}
