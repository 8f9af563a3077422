package sensitivity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/topsis"
)

// Progress reports how many units of a run have finished. Criterion is
// the criterion being swept, or -1 for Monte Carlo chunks.
type Progress struct {
	Criterion int `json:"criterion"`
	Done      int `json:"done"`
	Total     int `json:"total"`
}

// ProgressFunc receives progress updates. Calls are serialized.
type ProgressFunc func(Progress)

// Options controls how a sweep is executed.
type Options struct {
	// Workers bounds concurrent ranking runs. Zero means GOMAXPROCS.
	Workers  int
	Progress ProgressFunc
	Ranking  topsis.Options
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Problem is the fixed part of every sweep: ratings, baseline weights and
// polarity.
type Problem struct {
	Ratings  topsis.Matrix   `json:"ratings"`
	Weights  []float64       `json:"weights"`
	Polarity []mcdm.Polarity `json:"polarity"`
}

// Request describes a single-criterion sweep.
type Request struct {
	Problem
	Target int     `json:"target"`
	Range  float64 `json:"range"`
	Steps  int     `json:"steps"`
}

// Step is the ranking obtained at one perturbation.
type Step struct {
	Index        int       `json:"index"`
	Perturbation float64   `json:"perturbation"`
	Weights      []float64 `json:"weights"`
	Closeness    []float64 `json:"closeness"`
	Ranks        []int     `json:"ranks"`
	Order        []int     `json:"order"`

	// Reversed flags alternatives whose order against some other
	// alternative differs from the baseline.
	Reversed  []bool `json:"reversed"`
	Reversals int    `json:"reversals"`

	// Degenerate is set when the perturbed weights leave the alternatives
	// indistinguishable. Such steps carry no ranking and are left out of
	// reversal and stability counts.
	Degenerate bool   `json:"degenerate,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// RankChange is an alternative that moved at a reversal point.
type RankChange struct {
	Alternative int `json:"alternative"`
	From        int `json:"from"`
	To          int `json:"to"`
}

// ReversalPoint is a step whose ranking differs from the baseline.
type ReversalPoint struct {
	Step         int          `json:"step"`
	Perturbation float64      `json:"perturbation"`
	Order        []int        `json:"order"`
	Changes      []RankChange `json:"changes"`
}

// Result is the outcome of a single-criterion sweep.
type Result struct {
	Target   int            `json:"target"`
	Baseline *topsis.Result `json:"baseline"`
	Steps    []Step         `json:"steps"`

	// ReversalPoints lists steps with a changed ranking in grid order.
	ReversalPoints []ReversalPoint `json:"reversal_points"`

	// CriticalPerturbation is the smallest |p| that produced a reversal,
	// nil when the ranking never changed.
	CriticalPerturbation *float64  `json:"critical_perturbation,omitempty"`
	Stability            Stability `json:"stability"`
	DegenerateSteps      int       `json:"degenerate_steps,omitempty"`
}

// Stable reports whether no step reversed the baseline ranking.
func (r *Result) Stable() bool { return len(r.ReversalPoints) == 0 }

func validateProblem(p Problem, opts topsis.Options) error {
	_, cols := p.Ratings.Dims()
	tol := opts.WeightTolerance
	if tol <= 0 {
		tol = mcdm.DefaultTolerance
	}
	if err := mcdm.ValidateWeights("weights", p.Weights, cols, tol); err != nil {
		return err
	}
	return mcdm.ValidatePolarity(p.Polarity, cols)
}

// Sweep perturbs one criterion weight across the requested range and
// re-ranks the alternatives at every step. Steps run concurrently and are
// merged by index. Cancelling ctx stops the sweep between steps.
func Sweep(ctx context.Context, req Request, opts Options) (*Result, error) {
	fractions, err := Perturbations(req.Range, req.Steps)
	if err != nil {
		return nil, err
	}
	if err := validateProblem(req.Problem, opts.Ranking); err != nil {
		return nil, err
	}
	if req.Target < 0 || req.Target >= len(req.Weights) {
		return nil, mcdm.Invalid("target", "criterion index %d out of range [0, %d)", req.Target, len(req.Weights))
	}

	baseline, err := topsis.Rank(req.Ratings, req.Weights, req.Polarity, opts.Ranking)
	if err != nil {
		return nil, fmt.Errorf("baseline ranking: %w", err)
	}

	tracker := newTracker(opts.Progress, req.Target, len(fractions))
	steps, err := runSteps(ctx, req, fractions, opts, tracker)
	if err != nil {
		return nil, err
	}
	return summarize(req.Target, baseline, steps), nil
}

type tracker struct {
	mu        sync.Mutex
	fn        ProgressFunc
	criterion int
	done      int
	total     int
}

func newTracker(fn ProgressFunc, criterion, total int) *tracker {
	return &tracker{fn: fn, criterion: criterion, total: total}
}

func (t *tracker) setCriterion(c int) {
	t.mu.Lock()
	t.criterion = c
	t.mu.Unlock()
}

func (t *tracker) step() {
	if t.fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done++
	t.fn(Progress{Criterion: t.criterion, Done: t.done, Total: t.total})
}

func runSteps(ctx context.Context, req Request, fractions []float64, opts Options, t *tracker) ([]Step, error) {
	steps := make([]Step, len(fractions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i, p := range fractions {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w := Perturb(req.Weights, req.Target, p)
			res, err := topsis.Rank(req.Ratings, w, req.Polarity, opts.Ranking)
			if errors.Is(err, mcdm.ErrDegenerate) {
				steps[i] = Step{Index: i, Perturbation: p, Weights: w, Degenerate: true, Reason: err.Error()}
				t.step()
				return nil
			}
			if err != nil {
				return fmt.Errorf("step %d (p=%+.4f): %w", i, p, err)
			}
			steps[i] = Step{
				Index:        i,
				Perturbation: p,
				Weights:      w,
				Closeness:    res.Closeness(),
				Ranks:        res.Ranks(),
				Order:        res.Order,
			}
			t.step()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The loop may have stopped early without any goroutine observing it.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

// summarize compares every step against the baseline ranking.
func summarize(target int, baseline *topsis.Result, steps []Step) *Result {
	base := baseline.Ranks()
	res := &Result{
		Target:   target,
		Baseline: baseline,
		Steps:    steps,
	}
	for i := range steps {
		s := &steps[i]
		if s.Degenerate {
			res.DegenerateSteps++
			continue
		}
		s.Reversed, s.Reversals = reversals(base, s.Ranks)
		if s.Reversals == 0 {
			continue
		}
		res.ReversalPoints = append(res.ReversalPoints, ReversalPoint{
			Step:         s.Index,
			Perturbation: s.Perturbation,
			Order:        s.Order,
			Changes:      rankChanges(base, s.Ranks),
		})
		if res.CriticalPerturbation == nil || math.Abs(s.Perturbation) < math.Abs(*res.CriticalPerturbation) {
			p := s.Perturbation
			res.CriticalPerturbation = &p
		}
	}
	res.Stability = stability(steps, len(base))
	return res
}

// reversals counts alternative pairs whose relative order differs between
// the two rankings. A tie that forms or breaks counts as a change.
func reversals(base, ranks []int) ([]bool, int) {
	flags := make([]bool, len(base))
	count := 0
	for a := 0; a < len(base); a++ {
		for b := a + 1; b < len(base); b++ {
			if sign(base[a]-base[b]) != sign(ranks[a]-ranks[b]) {
				flags[a], flags[b] = true, true
				count++
			}
		}
	}
	return flags, count
}

func rankChanges(base, ranks []int) []RankChange {
	var out []RankChange
	for i := range base {
		if base[i] != ranks[i] {
			out = append(out, RankChange{Alternative: i, From: base[i], To: ranks[i]})
		}
	}
	return out
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
