package hierarchy

import (
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/ahp"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
)

// GroupInput carries the experts' judgments for one sibling group.
type GroupInput struct {
	Matrices      []ahp.Matrix `json:"matrices"`
	ExpertWeights []float64    `json:"expert_weights,omitempty"`
}

// GroupWeights is the weighting outcome of one sibling group.
type GroupWeights struct {
	Group
	Local []float64 `json:"local"`
	// Defaulted is set when the group had no judgments and received equal
	// local weights.
	Defaulted bool        `json:"defaulted,omitempty"`
	Result    *ahp.Result `json:"result,omitempty"`
}

// Weights is the outcome of weighting the whole tree.
type Weights struct {
	Groups      []GroupWeights            `json:"groups"`
	Local       map[string]float64        `json:"local"`
	Global      map[string]float64        `json:"global"`
	Leaves      []string                  `json:"leaves"`
	LeafWeights []float64                 `json:"leaf_weights"`
	Warnings    []mcdm.ConsistencyWarning `json:"warnings,omitempty"`
}

// Weigh runs the weighting engine on every sibling group and multiplies
// local weights down the tree. inputs is keyed by parent id (Root for the
// top level). Expert weights in opts apply to groups without their own.
func (t *Tree) Weigh(inputs map[string]GroupInput, opts ahp.Options) (*Weights, error) {
	groups := t.Groups()
	known := make(map[string]bool, len(groups))
	for _, g := range groups {
		known[g.ParentID] = true
	}
	for key := range inputs {
		if !known[key] {
			return nil, mcdm.Invalid("judgments", "no sibling group under %q", key)
		}
	}

	w := &Weights{
		Local:  make(map[string]float64, t.Len()),
		Global: make(map[string]float64, t.Len()),
	}
	for _, g := range groups {
		gw, err := weighGroup(g, inputs[g.ParentID], opts)
		if err != nil {
			return nil, err
		}
		if gw.Result != nil && gw.Result.Warning != nil {
			warn := *gw.Result.Warning
			warn.Group = groupName(g.ParentID)
			w.Warnings = append(w.Warnings, warn)
		}
		for i, id := range g.Members {
			w.Local[id] = gw.Local[i]
		}
		w.Groups = append(w.Groups, gw)
	}

	t.walk(func(i int) {
		n := t.nodes[i]
		parent := 1.0
		if n.parent >= 0 {
			parent = w.Global[t.nodes[n.parent].ID]
		}
		w.Global[n.ID] = w.Local[n.ID] * parent
	})

	leaves := t.Leaves()
	raw := make([]float64, len(leaves))
	for i, l := range leaves {
		w.Leaves = append(w.Leaves, l.ID)
		raw[i] = w.Global[l.ID]
	}
	leafWeights, err := mcdm.Normalize(raw)
	if err != nil {
		return nil, err
	}
	for i, id := range w.Leaves {
		w.Global[id] = leafWeights[i]
	}
	w.LeafWeights = leafWeights
	return w, nil
}

func weighGroup(g Group, in GroupInput, opts ahp.Options) (GroupWeights, error) {
	gw := GroupWeights{Group: g}
	n := len(g.Members)
	switch {
	case n == 1 && len(in.Matrices) > 0:
		return gw, mcdm.Invalid("judgments", "group %s has a single member and takes no judgments", groupName(g.ParentID))
	case n == 1:
		gw.Local = []float64{1}
		return gw, nil
	case len(in.Matrices) == 0:
		gw.Local = mcdm.Uniform(n)
		gw.Defaulted = true
		return gw, nil
	}
	for k, m := range in.Matrices {
		if m.Size() != n {
			return gw, mcdm.Invalid("judgments", "group %s expert %d matrix is %d×%d, group has %d members", groupName(g.ParentID), k, m.Size(), m.Size(), n)
		}
	}
	if in.ExpertWeights != nil {
		opts.ExpertWeights = in.ExpertWeights
	}
	res, err := ahp.Weigh(in.Matrices, opts)
	if err != nil {
		return gw, err
	}
	gw.Local = res.Weights
	gw.Result = res
	return gw, nil
}

func groupName(parentID string) string {
	if parentID == Root {
		return "main"
	}
	return parentID
}
