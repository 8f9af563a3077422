package evaluation

import (
	"sort"

	"github.com/google/uuid"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/ahp"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/hierarchy"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/sensitivity"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/topsis"
)

// Result is a full evaluation labelled with the caller's identifiers.
type Result struct {
	RunID      *uuid.UUID                `json:"run_id,omitempty"`
	Name       string                    `json:"name,omitempty"`
	Leaves     []LeafWeight              `json:"leaves"`
	Ranking    []RankedAlternative       `json:"ranking"`
	Warnings   []mcdm.ConsistencyWarning `json:"warnings,omitempty"`
	Diagnoses  []Diagnosis               `json:"diagnoses,omitempty"`
	Weights    *hierarchy.Weights        `json:"weights"`
	Details    *topsis.Result            `json:"details"`
	Raters     []string                  `json:"raters"`
	DurationMs int64                     `json:"duration_ms"`

	Sensitivity *SensitivitySummary     `json:"sensitivity,omitempty"`
	Robustness  *sensitivity.Robustness `json:"robustness,omitempty"`
}

type LeafWeight struct {
	ID       string        `json:"id"`
	Name     string        `json:"name,omitempty"`
	Weight   float64       `json:"weight"`
	Polarity mcdm.Polarity `json:"polarity"`
}

type RankedAlternative struct {
	ID                string  `json:"id"`
	Name              string  `json:"name,omitempty"`
	Rank              int     `json:"rank"`
	Closeness         float64 `json:"closeness"`
	DistanceIdeal     float64 `json:"distance_ideal"`
	DistanceAntiIdeal float64 `json:"distance_anti_ideal"`
	NonDominated      bool    `json:"non_dominated"`
}

// Diagnosis points at the judgment that contributes most to a group's
// inconsistency.
type Diagnosis struct {
	Group string `json:"group"`
	A     string `json:"a"`
	B     string `json:"b"`
	ahp.Inconsistency
}

// SensitivitySummary is the all-criteria sweep with criterion ids.
type SensitivitySummary struct {
	*sensitivity.AllResult
	CriterionIDs []string `json:"criterion_ids"`
	SensitiveIDs []string `json:"sensitive"`
	// Focus lists the alternatives whose closeness moved most.
	Focus []string `json:"focus,omitempty"`
}

// Top returns the best ranked alternative id.
func (r *Result) Top() string {
	if len(r.Ranking) == 0 {
		return ""
	}
	return r.Ranking[0].ID
}

func labelRanking(alts []Alternative, res *topsis.Result) []RankedAlternative {
	nd := make(map[int]bool, len(res.NonDominated))
	for _, i := range res.NonDominated {
		nd[i] = true
	}
	out := make([]RankedAlternative, 0, len(res.Order))
	for _, i := range res.Order {
		a := res.Alternatives[i]
		out = append(out, RankedAlternative{
			ID:                alts[i].ID,
			Name:              alts[i].Name,
			Rank:              a.Rank,
			Closeness:         a.Closeness,
			DistanceIdeal:     a.DistanceIdeal,
			DistanceAntiIdeal: a.DistanceAntiIdeal,
			NonDominated:      nd[i],
		})
	}
	return out
}

func labelLeaves(leaves []hierarchy.Criterion, weights []float64) []LeafWeight {
	out := make([]LeafWeight, len(leaves))
	for i, l := range leaves {
		out[i] = LeafWeight{ID: l.ID, Name: l.Name, Weight: weights[i], Polarity: l.Polarity}
	}
	return out
}

// diagnose explains every group that carries a consistency warning.
func diagnose(w *hierarchy.Weights, d ahp.Defuzzifier) []Diagnosis {
	var out []Diagnosis
	for _, g := range w.Groups {
		if g.Result == nil || g.Result.Warning == nil {
			continue
		}
		if d == "" {
			d = ahp.Centroid
		}
		inc, ok := ahp.Diagnose(g.Result.Aggregated.Crisp(d), g.Result.Weights)
		if !ok {
			continue
		}
		out = append(out, Diagnosis{
			Group:         groupLabel(g.ParentID),
			A:             g.Members[inc.Row],
			B:             g.Members[inc.Col],
			Inconsistency: inc,
		})
	}
	return out
}

// focus picks the n alternatives with the largest closeness spread in any
// swept criterion.
func focus(all *sensitivity.AllResult, alts []Alternative, n int) []string {
	if n <= 0 {
		return nil
	}
	spread := make([]float64, len(alts))
	for _, c := range all.Criteria {
		for _, a := range c.Stability.Alternatives {
			spread[a.Index] = max(spread[a.Index], a.StdCC)
		}
	}
	idx := make([]int, len(alts))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return spread[idx[i]] > spread[idx[j]] })
	n = min(n, len(idx))
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = alts[idx[i]].ID
	}
	return out
}
