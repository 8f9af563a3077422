package sensitivity

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Stability summarizes a sweep.
type Stability struct {
	// StableFraction is the share of ranked steps with no reversal.
	StableFraction float64                `json:"stable_fraction"`
	Alternatives   []AlternativeStability `json:"alternatives"`
}

// AlternativeStability is the spread of one alternative across a sweep.
type AlternativeStability struct {
	Index      int     `json:"index"`
	MeanCC     float64 `json:"mean_cc"`
	StdCC      float64 `json:"std_cc"`
	MinRank    int     `json:"min_rank"`
	MaxRank    int     `json:"max_rank"`
	Reversed   bool    `json:"reversed"`
	StepsMoved int     `json:"steps_moved"`
}

func stability(steps []Step, alternatives int) Stability {
	out := Stability{Alternatives: make([]AlternativeStability, alternatives)}
	ranked := make([]Step, 0, len(steps))
	for _, s := range steps {
		if !s.Degenerate {
			ranked = append(ranked, s)
		}
	}
	steps = ranked
	if len(steps) == 0 {
		return out
	}

	stable := 0
	for _, s := range steps {
		if s.Reversals == 0 {
			stable++
		}
	}
	out.StableFraction = float64(stable) / float64(len(steps))

	cc := make([]float64, len(steps))
	for a := 0; a < alternatives; a++ {
		as := AlternativeStability{Index: a, MinRank: steps[0].Ranks[a], MaxRank: steps[0].Ranks[a]}
		for k, s := range steps {
			cc[k] = s.Closeness[a]
			as.MinRank = min(as.MinRank, s.Ranks[a])
			as.MaxRank = max(as.MaxRank, s.Ranks[a])
			if s.Reversed[a] {
				as.Reversed = true
				as.StepsMoved++
			}
		}
		as.MeanCC, as.StdCC = stat.PopMeanStdDev(cc, nil)
		out.Alternatives[a] = as
	}
	return out
}

// MostVariable returns up to n alternative indices ordered by how much
// their closeness moved across the sweep, largest spread first.
func (r *Result) MostVariable(n int) []int {
	alts := make([]AlternativeStability, len(r.Stability.Alternatives))
	copy(alts, r.Stability.Alternatives)
	sort.SliceStable(alts, func(i, j int) bool { return alts[i].StdCC > alts[j].StdCC })

	if n <= 0 || n > len(alts) {
		n = len(alts)
	}
	out := make([]int, n)
	for i := range out {
		out[i] = alts[i].Index
	}
	return out
}
