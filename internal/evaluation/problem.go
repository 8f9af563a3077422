package evaluation

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/ahp"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/hierarchy"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/topsis"
)

// Problem is a complete decision problem keyed by stable identifiers.
type Problem struct {
	Name         string                `json:"name,omitempty" yaml:"name,omitempty"`
	Criteria     []hierarchy.Criterion `json:"criteria" yaml:"criteria"`
	Alternatives []Alternative         `json:"alternatives" yaml:"alternatives"`
	Experts      []Expert              `json:"experts" yaml:"experts"`
	Comparisons  []Comparison          `json:"comparisons,omitempty" yaml:"comparisons,omitempty"`
	Ratings      []Rating              `json:"ratings" yaml:"ratings"`
	Sensitivity  *SensitivityRequest   `json:"sensitivity,omitempty" yaml:"sensitivity,omitempty"`
}

type Alternative struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Expert is a judge. Weights apply to pairwise comparisons only; when every
// weight is zero all experts count equally.
type Expert struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name,omitempty" yaml:"name,omitempty"`
	Weight float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// Comparison states how much more important criterion A is than its
// sibling B, either as a point on the linguistic scale or as an explicit
// TFN. Value wins when both are set.
type Comparison struct {
	Expert   string       `json:"expert" yaml:"expert"`
	A        string       `json:"a" yaml:"a"`
	B        string       `json:"b" yaml:"b"`
	Judgment ahp.Judgment `json:"judgment,omitempty" yaml:"judgment,omitempty"`
	Value    *ahp.TFN     `json:"value,omitempty" yaml:"value,omitempty"`
}

// Rating is one expert's performance judgment of an alternative on a leaf
// criterion, as a linguistic grade or an explicit interval.
type Rating struct {
	Expert      string           `json:"expert" yaml:"expert"`
	Alternative string           `json:"alternative" yaml:"alternative"`
	Criterion   string           `json:"criterion" yaml:"criterion"`
	Grade       topsis.Grade     `json:"grade,omitempty" yaml:"grade,omitempty"`
	Value       *topsis.Interval `json:"value,omitempty" yaml:"value,omitempty"`
}

// SensitivityRequest asks for sweeps over leaf criteria after ranking.
// Zero values fall back to the engine settings.
type SensitivityRequest struct {
	Criteria   []string `json:"criteria,omitempty" yaml:"criteria,omitempty"`
	Range      float64  `json:"range,omitempty" yaml:"range,omitempty"`
	Steps      int      `json:"steps,omitempty" yaml:"steps,omitempty"`
	Focus      int      `json:"focus,omitempty" yaml:"focus,omitempty"`
	MonteCarlo int      `json:"monte_carlo,omitempty" yaml:"monte_carlo,omitempty"`
	Seed       uint64   `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// DecodeProblem reads a problem in YAML or JSON.
func DecodeProblem(r io.Reader) (*Problem, error) {
	var p Problem
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if err == io.EOF {
			return nil, mcdm.Invalid("problem", "empty document")
		}
		return nil, mcdm.Invalid("problem", "%v", err)
	}
	return &p, nil
}

// assembled is a problem translated into engine inputs.
type assembled struct {
	tree         *hierarchy.Tree
	groups       map[string]hierarchy.GroupInput
	leaves       []hierarchy.Criterion
	ratings      []topsis.Matrix
	raters       []string
	expertCount  int
	alternatives []Alternative
}

func (p *Problem) assemble(tol float64) (*assembled, error) {
	tree, err := hierarchy.NewTree(p.Criteria)
	if err != nil {
		return nil, err
	}
	altIndex, err := indexAlternatives(p.Alternatives)
	if err != nil {
		return nil, err
	}
	experts, weights, err := indexExperts(p.Experts, tol)
	if err != nil {
		return nil, err
	}

	groups, err := p.groupInputs(tree, experts, weights)
	if err != nil {
		return nil, err
	}

	leaves := tree.Leaves()
	ratings, raters, err := p.ratingMatrices(leaves, altIndex, experts)
	if err != nil {
		return nil, err
	}

	return &assembled{
		tree:         tree,
		groups:       groups,
		leaves:       leaves,
		ratings:      ratings,
		raters:       raters,
		expertCount:  len(p.Experts),
		alternatives: p.Alternatives,
	}, nil
}

func indexAlternatives(alts []Alternative) (map[string]int, error) {
	if len(alts) < 2 {
		return nil, mcdm.Invalid("alternatives", "%d alternatives, need at least 2", len(alts))
	}
	idx := make(map[string]int, len(alts))
	for i, a := range alts {
		if a.ID == "" {
			return nil, mcdm.Invalid("alternatives", "alternative %d has no id", i)
		}
		if _, dup := idx[a.ID]; dup {
			return nil, mcdm.Invalid("alternatives", "duplicate id %q", a.ID)
		}
		idx[a.ID] = i
	}
	return idx, nil
}

// indexExperts returns the expert positions and their comparison weights,
// nil when every weight is zero.
func indexExperts(experts []Expert, tol float64) (map[string]int, []float64, error) {
	if len(experts) == 0 {
		return nil, nil, mcdm.Invalid("experts", "no experts supplied")
	}
	idx := make(map[string]int, len(experts))
	weights := make([]float64, len(experts))
	weighted := false
	for i, e := range experts {
		if e.ID == "" {
			return nil, nil, mcdm.Invalid("experts", "expert %d has no id", i)
		}
		if _, dup := idx[e.ID]; dup {
			return nil, nil, mcdm.Invalid("experts", "duplicate id %q", e.ID)
		}
		idx[e.ID] = i
		weights[i] = e.Weight
		if e.Weight != 0 {
			weighted = true
		}
	}
	if !weighted {
		return idx, nil, nil
	}
	if err := mcdm.ValidateWeights("experts.weight", weights, len(experts), tol); err != nil {
		return nil, nil, err
	}
	return idx, weights, nil
}

// groupInputs turns comparisons into one matrix per expert per sibling
// group. Only experts who judged a group take part in it; their weights
// are renormalized over the participants.
func (p *Problem) groupInputs(tree *hierarchy.Tree, experts map[string]int, weights []float64) (map[string]hierarchy.GroupInput, error) {
	type key struct {
		parent string
		expert int
	}
	byGroup := make(map[key][]ahp.Comparison)
	participants := make(map[string][]int)

	positions := make(map[string]int)
	for _, g := range tree.Groups() {
		for i, id := range g.Members {
			positions[id] = i
		}
	}

	for i, c := range p.Comparisons {
		field := fmt.Sprintf("comparisons[%d]", i)
		e, ok := experts[c.Expert]
		if !ok {
			return nil, mcdm.Invalid(field, "unknown expert %q", c.Expert)
		}
		a, ok := tree.Get(c.A)
		if !ok {
			return nil, mcdm.Invalid(field, "unknown criterion %q", c.A)
		}
		b, ok := tree.Get(c.B)
		if !ok {
			return nil, mcdm.Invalid(field, "unknown criterion %q", c.B)
		}
		if a.ParentID != b.ParentID {
			return nil, mcdm.Invalid(field, "%q and %q are not siblings", c.A, c.B)
		}
		v, err := c.fuzzy()
		if err != nil {
			return nil, mcdm.Invalid(field, "%v", err)
		}

		k := key{a.ParentID, e}
		if _, seen := byGroup[k]; !seen {
			participants[a.ParentID] = append(participants[a.ParentID], e)
		}
		byGroup[k] = append(byGroup[k], ahp.Comparison{Row: positions[c.A], Col: positions[c.B], Value: v})
	}

	out := make(map[string]hierarchy.GroupInput, len(participants))
	for parent, list := range participants {
		n := len(tree.Children(parent))
		in := hierarchy.GroupInput{}
		var raw []float64
		for _, e := range slices.Sorted(slices.Values(list)) {
			m, err := ahp.BuildMatrix(n, byGroup[key{parent, e}])
			if err != nil {
				return nil, fmt.Errorf("group %s expert %s: %w", groupLabel(parent), p.Experts[e].ID, err)
			}
			in.Matrices = append(in.Matrices, m)
			if weights != nil {
				raw = append(raw, weights[e])
			}
		}
		if weights != nil {
			w, err := mcdm.Normalize(raw)
			if err != nil {
				return nil, mcdm.Invalid("experts.weight", "experts judging group %s have zero total weight", groupLabel(parent))
			}
			in.ExpertWeights = w
		}
		out[parent] = in
	}
	return out, nil
}

func (c Comparison) fuzzy() (ahp.TFN, error) {
	if c.Value != nil {
		return *c.Value, nil
	}
	v, ok := c.Judgment.Fuzzy()
	if !ok {
		return ahp.TFN{}, fmt.Errorf("judgment %d is not on the linguistic scale", c.Judgment)
	}
	return v, nil
}

// ratingMatrices builds one alternatives × leaves matrix per expert who
// rated anything. Those experts must rate every cell exactly once.
func (p *Problem) ratingMatrices(leaves []hierarchy.Criterion, alts map[string]int, experts map[string]int) ([]topsis.Matrix, []string, error) {
	leafIndex := make(map[string]int, len(leaves))
	for j, l := range leaves {
		leafIndex[l.ID] = j
	}

	byExpert := make(map[int]topsis.Matrix)
	filled := make(map[int][][]bool)
	for i, r := range p.Ratings {
		field := fmt.Sprintf("ratings[%d]", i)
		e, ok := experts[r.Expert]
		if !ok {
			return nil, nil, mcdm.Invalid(field, "unknown expert %q", r.Expert)
		}
		a, ok := alts[r.Alternative]
		if !ok {
			return nil, nil, mcdm.Invalid(field, "unknown alternative %q", r.Alternative)
		}
		j, ok := leafIndex[r.Criterion]
		if !ok {
			return nil, nil, mcdm.Invalid(field, "%q is not a leaf criterion", r.Criterion)
		}
		v, err := r.interval()
		if err != nil {
			return nil, nil, mcdm.Invalid(field, "%v", err)
		}

		m, ok := byExpert[e]
		if !ok {
			m = make(topsis.Matrix, len(alts))
			f := make([][]bool, len(alts))
			for k := range m {
				m[k] = make([]topsis.Interval, len(leaves))
				f[k] = make([]bool, len(leaves))
			}
			byExpert[e] = m
			filled[e] = f
		}
		if filled[e][a][j] {
			return nil, nil, mcdm.Invalid(field, "expert %q rated %q on %q twice", r.Expert, r.Alternative, r.Criterion)
		}
		m[a][j] = v
		filled[e][a][j] = true
	}
	if len(byExpert) == 0 {
		return nil, nil, mcdm.Invalid("ratings", "no ratings supplied")
	}

	var matrices []topsis.Matrix
	var raters []string
	for _, e := range slices.Sorted(maps.Keys(byExpert)) {
		for a, row := range filled[e] {
			for j, ok := range row {
				if !ok {
					return nil, nil, mcdm.Invalid("ratings", "expert %q did not rate %q on %q",
						p.Experts[e].ID, p.Alternatives[a].ID, leaves[j].ID)
				}
			}
		}
		matrices = append(matrices, byExpert[e])
		raters = append(raters, p.Experts[e].ID)
	}
	return matrices, raters, nil
}

func (r Rating) interval() (topsis.Interval, error) {
	if r.Value != nil {
		return *r.Value, nil
	}
	v, ok := r.Grade.Interval()
	if !ok {
		return topsis.Interval{}, fmt.Errorf("grade %q is not on the rating scale", r.Grade)
	}
	return v, nil
}

func groupLabel(parent string) string {
	if parent == hierarchy.Root {
		return "main"
	}
	return parent
}
