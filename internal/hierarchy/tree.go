// Package hierarchy holds the criterion tree and propagates local weights of
// sibling groups into global leaf weights.
package hierarchy

import (
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
)

// Root is the parent key of top-level criteria.
const Root = ""

// Criterion is one node of the tree as supplied by the caller.
type Criterion struct {
	ID       string        `json:"id" yaml:"id"`
	Name     string        `json:"name,omitempty" yaml:"name,omitempty"`
	ParentID string        `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Polarity mcdm.Polarity `json:"polarity,omitempty" yaml:"polarity,omitempty"`
}

type node struct {
	Criterion
	parent   int
	children []int
}

// Tree is an arena of criteria indexed by ID. Parents are referenced by
// index, never by pointer.
type Tree struct {
	nodes []node
	index map[string]int
	roots []int
}

// NewTree validates the criteria and builds the tree. Sibling order follows
// input order.
func NewTree(criteria []Criterion) (*Tree, error) {
	if len(criteria) == 0 {
		return nil, mcdm.Invalid("criteria", "no criteria supplied")
	}
	t := &Tree{
		nodes: make([]node, len(criteria)),
		index: make(map[string]int, len(criteria)),
	}
	for i, c := range criteria {
		if c.ID == "" {
			return nil, mcdm.Invalid("criteria", "criterion %d has no id", i)
		}
		if _, dup := t.index[c.ID]; dup {
			return nil, mcdm.Invalid("criteria", "duplicate id %q", c.ID)
		}
		p, err := mcdm.ParsePolarity(string(c.Polarity))
		if err != nil {
			return nil, mcdm.Invalid("criteria", "criterion %q: %v", c.ID, err)
		}
		c.Polarity = p
		t.index[c.ID] = i
		t.nodes[i] = node{Criterion: c, parent: -1}
	}
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.ParentID == Root {
			t.roots = append(t.roots, i)
			continue
		}
		if n.ParentID == n.ID {
			return nil, mcdm.Invalid("criteria", "criterion %q is its own parent", n.ID)
		}
		p, ok := t.index[n.ParentID]
		if !ok {
			return nil, mcdm.Invalid("criteria", "criterion %q references unknown parent %q", n.ID, n.ParentID)
		}
		n.parent = p
		t.nodes[p].children = append(t.nodes[p].children, i)
	}
	for i := range t.nodes {
		steps := 0
		for p := t.nodes[i].parent; p >= 0; p = t.nodes[p].parent {
			steps++
			if steps > len(t.nodes) {
				return nil, mcdm.Invalid("criteria", "cycle through criterion %q", t.nodes[i].ID)
			}
		}
	}
	if len(t.roots) == 0 {
		return nil, mcdm.Invalid("criteria", "no top-level criterion")
	}
	return t, nil
}

// Len returns the number of criteria.
func (t *Tree) Len() int { return len(t.nodes) }

// Get returns the criterion with the given id.
func (t *Tree) Get(id string) (Criterion, bool) {
	i, ok := t.index[id]
	if !ok {
		return Criterion{}, false
	}
	return t.nodes[i].Criterion, true
}

// IsLeaf reports whether the criterion has no children.
func (t *Tree) IsLeaf(id string) bool {
	i, ok := t.index[id]
	return ok && len(t.nodes[i].children) == 0
}

// Children returns the ids of the direct children of parentID, or of the
// top-level criteria when parentID is Root.
func (t *Tree) Children(parentID string) []string {
	var idx []int
	if parentID == Root {
		idx = t.roots
	} else if i, ok := t.index[parentID]; ok {
		idx = t.nodes[i].children
	}
	out := make([]string, len(idx))
	for k, i := range idx {
		out[k] = t.nodes[i].ID
	}
	return out
}

// Group is a set of siblings compared against each other.
type Group struct {
	ParentID string   `json:"parent_id"`
	Members  []string `json:"members"`
}

// Groups lists every sibling group, top-level first, in depth-first order.
func (t *Tree) Groups() []Group {
	groups := []Group{{ParentID: Root, Members: t.Children(Root)}}
	t.walk(func(i int) {
		if len(t.nodes[i].children) > 0 {
			groups = append(groups, Group{ParentID: t.nodes[i].ID, Members: t.Children(t.nodes[i].ID)})
		}
	})
	return groups
}

// Leaves returns the leaf criteria in depth-first order. This order defines
// the columns of rating matrices and weight vectors.
func (t *Tree) Leaves() []Criterion {
	var out []Criterion
	t.walk(func(i int) {
		if len(t.nodes[i].children) == 0 {
			out = append(out, t.nodes[i].Criterion)
		}
	})
	return out
}

// LeafPolarity returns the polarity of each leaf in Leaves order.
func (t *Tree) LeafPolarity() []mcdm.Polarity {
	leaves := t.Leaves()
	out := make([]mcdm.Polarity, len(leaves))
	for i, l := range leaves {
		out[i] = l.Polarity
	}
	return out
}

func (t *Tree) walk(visit func(int)) {
	var rec func(int)
	rec = func(i int) {
		visit(i)
		for _, c := range t.nodes[i].children {
			rec(c)
		}
	}
	for _, r := range t.roots {
		rec(r)
	}
}
