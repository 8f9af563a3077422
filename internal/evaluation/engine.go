// Package evaluation runs a complete decision problem through weighting,
// ranking and sensitivity analysis, and archives the outcome.
package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/events"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/hierarchy"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/metrics"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/sensitivity"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/store"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/topsis"
)

type Engine struct {
	store    store.Store
	events   events.Publisher
	settings Settings
	logger   *slog.Logger
}

// New builds an engine. store and pub may be nil to run without an archive
// or without events.
func New(s store.Store, pub events.Publisher, settings Settings, logger *slog.Logger) *Engine {
	return &Engine{store: s, events: pub, settings: settings, logger: logger}
}

func (e *Engine) Settings() Settings { return e.settings }

// Prepared is a problem weighed and ranked, ready for further analysis.
type Prepared struct {
	Alternatives []Alternative
	Leaves       []hierarchy.Criterion
	Weights      *hierarchy.Weights
	Ratings      topsis.Matrix
	Polarity     []mcdm.Polarity
	Ranking      *topsis.Result
	Raters       []string
	Experts      int
}

// SensitivityProblem returns the numeric inputs for a sweep.
func (p *Prepared) SensitivityProblem() sensitivity.Problem {
	return sensitivity.Problem{Ratings: p.Ratings, Weights: p.Weights.LeafWeights, Polarity: p.Polarity}
}

// RankedAlternatives labels the ranking with alternative ids, best first.
func (p *Prepared) RankedAlternatives() []RankedAlternative {
	return labelRanking(p.Alternatives, p.Ranking)
}

// LeafIndices maps leaf criterion ids to weight vector positions. An empty
// list selects every leaf.
func (p *Prepared) LeafIndices(ids []string) ([]int, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	pos := make(map[string]int, len(p.Leaves))
	for i, l := range p.Leaves {
		pos[l.ID] = i
	}
	out := make([]int, len(ids))
	for i, id := range ids {
		j, ok := pos[id]
		if !ok {
			return nil, mcdm.Invalid("sensitivity.criteria", "%q is not a leaf criterion", id)
		}
		out[i] = j
	}
	return out, nil
}

// Prepare validates the problem, weighs the hierarchy and ranks the
// alternatives.
func (e *Engine) Prepare(p *Problem) (*Prepared, error) {
	a, err := p.assemble(e.settings.tolerance())
	if err != nil {
		return nil, err
	}
	weights, err := a.tree.Weigh(a.groups, e.settings.Weighting)
	if err != nil {
		return nil, fmt.Errorf("weighting: %w", err)
	}
	ratings, err := topsis.Aggregate(a.ratings, e.settings.Ranking.Scale)
	if err != nil {
		return nil, fmt.Errorf("ratings: %w", err)
	}
	polarity := a.tree.LeafPolarity()
	ranking, err := topsis.Rank(ratings, weights.LeafWeights, polarity, e.settings.Ranking)
	if err != nil {
		return nil, fmt.Errorf("ranking: %w", err)
	}
	return &Prepared{
		Alternatives: a.alternatives,
		Leaves:       a.leaves,
		Weights:      weights,
		Ratings:      ratings,
		Polarity:     polarity,
		Ranking:      ranking,
		Raters:       a.raters,
		Experts:      a.expertCount,
	}, nil
}

// Evaluate runs the full pipeline: weights, ranking, the optional
// sensitivity analysis, then archive, events and metrics.
func (e *Engine) Evaluate(ctx context.Context, p *Problem) (*Result, error) {
	start := time.Now()
	res, prep, err := e.evaluate(ctx, p)
	elapsed := time.Since(start)
	metrics.EvaluationDuration.Observe(elapsed.Seconds())

	if err != nil {
		kind := ErrorKind(err)
		metrics.Evaluations.WithLabelValues(kind).Inc()
		e.logger.Warn("evaluation failed", "name", p.Name, "kind", kind, "error", err)
		runID := e.archiveFailure(ctx, p, err, elapsed)
		events.Publish(e.events, e.logger, events.SubjectRunFailed(runID), events.RunFailedEvent{
			RunID:     runID,
			Name:      p.Name,
			Kind:      kind,
			Error:     err.Error(),
			Timestamp: time.Now().UTC(),
		})
		return nil, err
	}

	res.DurationMs = elapsed.Milliseconds()
	metrics.Evaluations.WithLabelValues("ok").Inc()
	for _, g := range prep.Weights.Groups {
		if g.Result != nil {
			metrics.ConsistencyRatio.Observe(g.Result.Consistency.CR)
		}
	}
	metrics.ConsistencyWarnings.Add(float64(len(res.Warnings)))

	runID := uuid.New()
	e.archive(ctx, runID, p, res, prep)
	e.publish(runID.String(), res)

	e.logger.Info("evaluation complete",
		"name", p.Name,
		"alternatives", len(prep.Alternatives),
		"leaves", len(prep.Leaves),
		"top", res.Top(),
		"weights", mcdm.FormatWeights(prep.Weights.LeafWeights),
		"warnings", len(res.Warnings),
		"duration_ms", res.DurationMs,
	)
	return res, nil
}

func (e *Engine) evaluate(ctx context.Context, p *Problem) (*Result, *Prepared, error) {
	prep, err := e.Prepare(p)
	if err != nil {
		return nil, nil, err
	}

	res := &Result{
		Name:      p.Name,
		Leaves:    labelLeaves(prep.Leaves, prep.Weights.LeafWeights),
		Ranking:   prep.RankedAlternatives(),
		Warnings:  prep.Weights.Warnings,
		Diagnoses: diagnose(prep.Weights, e.settings.Weighting.Defuzzifier),
		Weights:   prep.Weights,
		Details:   prep.Ranking,
		Raters:    prep.Raters,
	}

	if p.Sensitivity == nil {
		return res, prep, nil
	}
	summary, err := e.Sensitivity(ctx, prep, *p.Sensitivity, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("sensitivity: %w", err)
	}
	res.Sensitivity = summary

	if p.Sensitivity.MonteCarlo > 0 {
		rob, err := e.Robustness(ctx, prep, *p.Sensitivity, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("robustness: %w", err)
		}
		res.Robustness = rob
	}
	return res, prep, nil
}

// Robustness samples req.MonteCarlo weight vectors around the prepared
// weights. A non-positive count uses the configured iteration count.
func (e *Engine) Robustness(ctx context.Context, prep *Prepared, req SensitivityRequest, progress sensitivity.ProgressFunc) (*sensitivity.Robustness, error) {
	n := req.MonteCarlo
	if n <= 0 {
		n = e.settings.MonteCarloIterations
	}
	return sensitivity.MonteCarlo(ctx, sensitivity.MonteCarloRequest{
		Problem:       prep.SensitivityProblem(),
		Iterations:    n,
		Concentration: e.settings.MonteCarloConcentration,
		Seed:          req.Seed,
	}, e.settings.SweepOptions(progress))
}

// SweepGrid resolves the perturbation range and step count of req against
// the configured defaults and validates the resulting grid.
func (e *Engine) SweepGrid(req SensitivityRequest) (float64, int, error) {
	r, steps := req.Range, req.Steps
	if r == 0 {
		r = e.settings.Range
	}
	if steps == 0 {
		steps = e.settings.Steps
	}
	if _, err := sensitivity.Perturbations(r, steps); err != nil {
		return 0, 0, err
	}
	return r, steps, nil
}

// Sensitivity sweeps the requested leaf criteria of a prepared problem.
func (e *Engine) Sensitivity(ctx context.Context, prep *Prepared, req SensitivityRequest, progress sensitivity.ProgressFunc) (*SensitivitySummary, error) {
	targets, err := prep.LeafIndices(req.Criteria)
	if err != nil {
		return nil, err
	}
	r, steps, err := e.SweepGrid(req)
	if err != nil {
		return nil, err
	}

	all, err := sensitivity.SweepAll(ctx, sensitivity.AllRequest{
		Problem:  prep.SensitivityProblem(),
		Criteria: targets,
		Range:    r,
		Steps:    steps,
	}, e.settings.SweepOptions(progress))
	if err != nil {
		return nil, err
	}

	summary := &SensitivitySummary{AllResult: all}
	for _, c := range all.Criteria {
		summary.CriterionIDs = append(summary.CriterionIDs, prep.Leaves[c.Target].ID)
		metrics.SensitivitySteps.Add(float64(len(c.Steps)))
		metrics.RankReversals.Add(float64(len(c.ReversalPoints)))
	}
	for _, i := range all.Sensitive() {
		summary.SensitiveIDs = append(summary.SensitiveIDs, prep.Leaves[i].ID)
	}
	summary.Focus = focus(all, prep.Alternatives, req.Focus)
	return summary, nil
}

func (e *Engine) archive(ctx context.Context, id uuid.UUID, p *Problem, res *Result, prep *Prepared) {
	if e.store == nil {
		return
	}
	problem, err := json.Marshal(p)
	if err != nil {
		e.logger.Error("failed to encode problem", "error", err)
		return
	}
	res.RunID = &id
	payload, err := json.Marshal(res)
	if err != nil {
		res.RunID = nil
		e.logger.Error("failed to encode result", "error", err)
		return
	}

	run := &store.Run{
		ID:                  id,
		Name:                p.Name,
		Status:              store.StatusCompleted,
		Alternatives:        len(prep.Alternatives),
		Criteria:            len(prep.Leaves),
		Experts:             prep.Experts,
		TopAlternative:      res.Top(),
		ConsistencyWarnings: len(res.Warnings),
		DurationMs:          res.DurationMs,
		Problem:             problem,
		Result:              payload,
	}
	if res.Sensitivity != nil {
		v := res.Sensitivity.StabilityIndex
		run.StabilityIndex = &v
	}
	if err := e.store.CreateRun(ctx, run); err != nil {
		res.RunID = nil
		e.logger.Error("failed to archive run", "name", p.Name, "error", err)
	}
}

func (e *Engine) archiveFailure(ctx context.Context, p *Problem, cause error, elapsed time.Duration) string {
	id := uuid.New()
	if e.store == nil {
		return id.String()
	}
	// The failure is still archived without its payload when the problem
	// cannot be encoded.
	problem, err := json.Marshal(p)
	if err != nil {
		e.logger.Error("failed to encode problem", "name", p.Name, "error", err)
	}
	run := &store.Run{
		ID:           id,
		Name:         p.Name,
		Status:       store.StatusFailed,
		Alternatives: len(p.Alternatives),
		Criteria:     len(p.Criteria),
		Experts:      len(p.Experts),
		DurationMs:   elapsed.Milliseconds(),
		Error:        cause.Error(),
		Problem:      problem,
	}
	if err := e.store.CreateRun(ctx, run); err != nil {
		e.logger.Error("failed to archive failed run", "name", p.Name, "error", err)
	}
	return id.String()
}

func (e *Engine) publish(runID string, res *Result) {
	if e.events == nil {
		return
	}
	ev := events.RunCompletedEvent{
		RunID:          runID,
		Name:           res.Name,
		TopAlternative: res.Top(),
		Alternatives:   len(res.Ranking),
		Criteria:       len(res.Leaves),
		DurationMs:     res.DurationMs,
		Timestamp:      time.Now().UTC(),
	}
	if res.Sensitivity != nil {
		v := res.Sensitivity.StabilityIndex
		ev.StabilityIndex = &v
	}
	events.Publish(e.events, e.logger, events.SubjectRunCompleted(runID), ev)
	for _, w := range res.Warnings {
		events.Publish(e.events, e.logger, events.SubjectRunWarning(runID), events.ConsistencyWarningEvent{
			RunID:     runID,
			Group:     w.Group,
			CR:        w.CR,
			Threshold: w.Threshold,
		})
	}
}

// ErrorKind classifies an engine error for metrics and HTTP mapping.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, mcdm.ErrValidation):
		return "invalid"
	case errors.Is(err, mcdm.ErrDegenerate):
		return "degenerate"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "error"
}
