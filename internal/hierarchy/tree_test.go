package hierarchy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/ahp"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
)

func supplierCriteria() []Criterion {
	return []Criterion{
		{ID: "cost", Name: "Cost"},
		{ID: "quality", Name: "Quality"},
		{ID: "delivery", Name: "Delivery"},
		{ID: "price", ParentID: "cost", Polarity: mcdm.Cost},
		{ID: "logistics", ParentID: "cost", Polarity: "COST"},
		{ID: "defects", ParentID: "quality", Polarity: mcdm.Cost},
		{ID: "certification", ParentID: "quality"},
		{ID: "warranty", ParentID: "quality"},
	}
}

func TestNewTreeStructure(t *testing.T) {
	tree, err := NewTree(supplierCriteria())
	require.NoError(t, err)

	assert.Equal(t, 8, tree.Len())
	assert.Equal(t, []string{"cost", "quality", "delivery"}, tree.Children(Root))
	assert.Equal(t, []string{"price", "logistics"}, tree.Children("cost"))
	assert.True(t, tree.IsLeaf("delivery"))
	assert.False(t, tree.IsLeaf("quality"))

	var leaves []string
	for _, l := range tree.Leaves() {
		leaves = append(leaves, l.ID)
	}
	assert.Equal(t, []string{"price", "logistics", "defects", "certification", "warranty", "delivery"}, leaves)
	assert.Equal(t,
		[]mcdm.Polarity{mcdm.Cost, mcdm.Cost, mcdm.Cost, mcdm.Benefit, mcdm.Benefit, mcdm.Benefit},
		tree.LeafPolarity())

	groups := tree.Groups()
	require.Len(t, groups, 3)
	assert.Equal(t, Root, groups[0].ParentID)
	assert.Equal(t, "cost", groups[1].ParentID)
	assert.Equal(t, "quality", groups[2].ParentID)
}

func TestNewTreeRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name     string
		criteria []Criterion
	}{
		{"empty", nil},
		{"missing id", []Criterion{{Name: "x"}}},
		{"duplicate id", []Criterion{{ID: "a"}, {ID: "a"}}},
		{"unknown parent", []Criterion{{ID: "a"}, {ID: "b", ParentID: "zzz"}}},
		{"self parent", []Criterion{{ID: "a"}, {ID: "b", ParentID: "b"}}},
		{"cycle", []Criterion{{ID: "r"}, {ID: "a", ParentID: "b"}, {ID: "b", ParentID: "a"}}},
		{"bad polarity", []Criterion{{ID: "a", Polarity: "neutral"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTree(tt.criteria)
			require.Error(t, err)
			assert.True(t, errors.Is(err, mcdm.ErrValidation))
		})
	}
}

func matrix(t *testing.T, n int, cmps ...ahp.Comparison) ahp.Matrix {
	t.Helper()
	m, err := ahp.BuildMatrix(n, cmps)
	require.NoError(t, err)
	return m
}

func TestWeighPropagatesGlobalWeights(t *testing.T) {
	tree, err := NewTree(supplierCriteria())
	require.NoError(t, err)

	inputs := map[string]GroupInput{
		Root: {Matrices: []ahp.Matrix{matrix(t, 3,
			ahp.Comparison{Row: 0, Col: 1, Value: ahp.TFN{L: 2, M: 2, U: 2}},
			ahp.Comparison{Row: 0, Col: 2, Value: ahp.TFN{L: 4, M: 4, U: 4}},
			ahp.Comparison{Row: 1, Col: 2, Value: ahp.TFN{L: 2, M: 2, U: 2}},
		)}},
		"cost": {Matrices: []ahp.Matrix{matrix(t, 2,
			ahp.Comparison{Row: 0, Col: 1, Value: ahp.TFN{L: 3, M: 3, U: 3}},
		)}},
	}

	w, err := tree.Weigh(inputs, ahp.Options{})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, mcdm.Sum(w.LeafWeights), 1e-9)
	assert.InDelta(t, 4.0/7, w.Global["cost"], 1e-9)
	assert.InDelta(t, 0.75, w.Local["price"], 1e-9)
	assert.InDelta(t, 0.75*4.0/7, w.Global["price"], 1e-9)
	assert.InDelta(t, 0.25*4.0/7, w.Global["logistics"], 1e-9)

	// quality had no judgments: equal split of its 2/7.
	assert.InDelta(t, 2.0/21, w.Global["warranty"], 1e-9)
	assert.InDelta(t, 1.0/7, w.Global["delivery"], 1e-9)

	var defaulted []string
	for _, g := range w.Groups {
		if g.Defaulted {
			defaulted = append(defaulted, g.ParentID)
		}
	}
	assert.Equal(t, []string{"quality"}, defaulted)
	assert.Empty(t, w.Warnings)
}

func TestWeighSurfacesGroupWarnings(t *testing.T) {
	tree, err := NewTree([]Criterion{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	require.NoError(t, err)

	nine, _ := ahp.Judgment(9).Fuzzy()
	inputs := map[string]GroupInput{Root: {Matrices: []ahp.Matrix{matrix(t, 3,
		ahp.Comparison{Row: 0, Col: 1, Value: nine},
		ahp.Comparison{Row: 1, Col: 2, Value: nine},
		ahp.Comparison{Row: 2, Col: 0, Value: nine},
	)}}}

	w, err := tree.Weigh(inputs, ahp.Options{})
	require.NoError(t, err)
	require.Len(t, w.Warnings, 1)
	assert.Equal(t, "main", w.Warnings[0].Group)
	assert.InDelta(t, 1.0, mcdm.Sum(w.LeafWeights), 1e-9)
}

func TestWeighRejectsMismatchedGroups(t *testing.T) {
	tree, err := NewTree(supplierCriteria())
	require.NoError(t, err)

	_, err = tree.Weigh(map[string]GroupInput{"delivery": {}}, ahp.Options{})
	assert.True(t, errors.Is(err, mcdm.ErrValidation), "leaf has no sibling group: %v", err)

	_, err = tree.Weigh(map[string]GroupInput{
		"quality": {Matrices: []ahp.Matrix{matrix(t, 2, ahp.Comparison{Row: 0, Col: 1, Value: ahp.One})}},
	}, ahp.Options{})
	assert.True(t, errors.Is(err, mcdm.ErrValidation), "size mismatch: %v", err)
}

func TestWeighRejectsJudgmentsForSingleMemberGroup(t *testing.T) {
	tree, err := NewTree([]Criterion{{ID: "cost"}, {ID: "quality"}, {ID: "price", ParentID: "cost"}})
	require.NoError(t, err)

	w, err := tree.Weigh(nil, ahp.Options{})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, w.Local["price"], 1e-12)

	_, err = tree.Weigh(map[string]GroupInput{
		"cost": {Matrices: []ahp.Matrix{matrix(t, 2, ahp.Comparison{Row: 0, Col: 1, Value: ahp.One})}},
	}, ahp.Options{})
	assert.True(t, errors.Is(err, mcdm.ErrValidation), "single member group: %v", err)
}
