package sensitivity

import (
	"context"
	"fmt"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/topsis"
)

// AllRequest sweeps several criteria over the same grid. An empty
// Criteria list means every criterion.
type AllRequest struct {
	Problem
	Criteria []int   `json:"criteria,omitempty"`
	Range    float64 `json:"range"`
	Steps    int     `json:"steps"`
}

// AllResult collects one sweep per criterion.
type AllResult struct {
	Baseline *topsis.Result `json:"baseline"`
	Criteria []*Result      `json:"criteria"`

	// StabilityIndex is the share of swept criteria whose sweep never
	// reversed the baseline ranking.
	StabilityIndex float64 `json:"stability_index"`
}

// Sensitive returns the criteria whose sweep produced a reversal.
func (r *AllResult) Sensitive() []int {
	var out []int
	for _, c := range r.Criteria {
		if !c.Stable() {
			out = append(out, c.Target)
		}
	}
	return out
}

// SweepAll runs Sweep for each requested criterion in turn. Progress
// counts steps across all criteria.
func SweepAll(ctx context.Context, req AllRequest, opts Options) (*AllResult, error) {
	fractions, err := Perturbations(req.Range, req.Steps)
	if err != nil {
		return nil, err
	}
	if err := validateProblem(req.Problem, opts.Ranking); err != nil {
		return nil, err
	}

	targets := req.Criteria
	if len(targets) == 0 {
		targets = make([]int, len(req.Weights))
		for i := range targets {
			targets[i] = i
		}
	}
	seen := make(map[int]bool, len(targets))
	for _, c := range targets {
		if c < 0 || c >= len(req.Weights) {
			return nil, mcdm.Invalid("criteria", "criterion index %d out of range [0, %d)", c, len(req.Weights))
		}
		if seen[c] {
			return nil, mcdm.Invalid("criteria", "criterion index %d listed twice", c)
		}
		seen[c] = true
	}

	baseline, err := topsis.Rank(req.Ratings, req.Weights, req.Polarity, opts.Ranking)
	if err != nil {
		return nil, fmt.Errorf("baseline ranking: %w", err)
	}

	out := &AllResult{Baseline: baseline, Criteria: make([]*Result, 0, len(targets))}
	t := newTracker(opts.Progress, 0, len(targets)*len(fractions))
	stable := 0
	for _, c := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t.setCriterion(c)
		sub := Request{Problem: req.Problem, Target: c, Range: req.Range, Steps: req.Steps}
		steps, err := runSteps(ctx, sub, fractions, opts, t)
		if err != nil {
			return nil, fmt.Errorf("criterion %d: %w", c, err)
		}
		res := summarize(c, baseline, steps)
		if res.Stable() {
			stable++
		}
		out.Criteria = append(out.Criteria, res)
	}
	out.StabilityIndex = float64(stable) / float64(len(targets))
	return out, nil
}
