package api

import (
	"net/http"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/ahp"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/evaluation"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/hierarchy"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/sensitivity"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/topsis"
)

// MethodsHandler exposes the individual engines on index-based inputs.
type MethodsHandler struct {
	settings evaluation.Settings
}

func NewMethodsHandler(settings evaluation.Settings) *MethodsHandler {
	return &MethodsHandler{settings: settings}
}

type WeightsRequest struct {
	Matrices      []ahp.Matrix  `json:"matrices"`
	ExpertWeights []float64     `json:"expert_weights,omitempty"`
	Synthesis     ahp.Synthesis `json:"synthesis,omitempty"`
}

type WeightsResponse struct {
	*ahp.Result
	Diagnosis *ahp.Inconsistency `json:"diagnosis,omitempty"`
}

// Weights runs fuzzy AHP on one sibling group.
// POST /api/v1/weights
func (h *MethodsHandler) Weights(w http.ResponseWriter, r *http.Request) {
	var req WeightsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	opts := h.settings.Weighting
	opts.ExpertWeights = req.ExpertWeights
	if req.Synthesis != "" {
		opts.Synthesis = req.Synthesis
	}
	res, err := ahp.Weigh(req.Matrices, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := WeightsResponse{Result: res}
	if res.Warning != nil {
		d := opts.Defuzzifier
		if d == "" {
			d = ahp.Centroid
		}
		if inc, ok := ahp.Diagnose(res.Aggregated.Crisp(d), res.Weights); ok {
			resp.Diagnosis = &inc
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type HierarchyWeightsRequest struct {
	Criteria []hierarchy.Criterion `json:"criteria"`
	// Groups is keyed by parent criterion id; "main" or "" is the top level.
	Groups        map[string]hierarchy.GroupInput `json:"groups"`
	ExpertWeights []float64                       `json:"expert_weights,omitempty"`
}

// HierarchyWeights weighs a criterion tree and returns global leaf weights.
// POST /api/v1/hierarchy/weights
func (h *MethodsHandler) HierarchyWeights(w http.ResponseWriter, r *http.Request) {
	var req HierarchyWeightsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	tree, err := hierarchy.NewTree(req.Criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	groups := make(map[string]hierarchy.GroupInput, len(req.Groups))
	for k, v := range req.Groups {
		if k == "main" {
			if _, clash := tree.Get("main"); !clash {
				k = hierarchy.Root
			}
		}
		groups[k] = v
	}
	opts := h.settings.Weighting
	opts.ExpertWeights = req.ExpertWeights
	res, err := tree.Weigh(groups, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type RankingRequest struct {
	// Ratings holds one alternatives × criteria matrix per expert.
	Ratings  []topsis.Matrix `json:"ratings"`
	Weights  []float64       `json:"weights"`
	Polarity []mcdm.Polarity `json:"polarity"`
}

// Rankings runs interval TOPSIS.
// POST /api/v1/rankings
func (h *MethodsHandler) Rankings(w http.ResponseWriter, r *http.Request) {
	var req RankingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := topsis.RankExperts(req.Ratings, req.Weights, req.Polarity, h.settings.Ranking)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Sensitivity sweeps one criterion weight.
// POST /api/v1/sensitivity
func (h *MethodsHandler) Sensitivity(w http.ResponseWriter, r *http.Request) {
	var req sensitivity.Request
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Range == 0 {
		req.Range = h.settings.Range
	}
	if req.Steps == 0 {
		req.Steps = h.settings.Steps
	}
	res, err := sensitivity.Sweep(r.Context(), req, h.settings.SweepOptions(nil))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sweepResponse{Result: res, MostVariable: res.MostVariable(0)})
}

type sweepResponse struct {
	*sensitivity.Result
	// MostVariable orders alternatives by closeness spread, largest first.
	MostVariable []int `json:"most_variable"`
}

// SensitivityAll sweeps every requested criterion weight.
// POST /api/v1/sensitivity/all
func (h *MethodsHandler) SensitivityAll(w http.ResponseWriter, r *http.Request) {
	var req sensitivity.AllRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Range == 0 {
		req.Range = h.settings.Range
	}
	if req.Steps == 0 {
		req.Steps = h.settings.Steps
	}
	res, err := sensitivity.SweepAll(r.Context(), req, h.settings.SweepOptions(nil))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"baseline":        res.Baseline,
		"criteria":        res.Criteria,
		"stability_index": res.StabilityIndex,
		"sensitive":       res.Sensitive(),
	})
}

// Robustness runs the Monte Carlo weight simulation.
// POST /api/v1/robustness
func (h *MethodsHandler) Robustness(w http.ResponseWriter, r *http.Request) {
	var req sensitivity.MonteCarloRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Iterations == 0 {
		req.Iterations = h.settings.MonteCarloIterations
	}
	if req.Concentration == 0 {
		req.Concentration = h.settings.MonteCarloConcentration
	}
	res, err := sensitivity.MonteCarlo(r.Context(), req, h.settings.SweepOptions(nil))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Scales lists the linguistic comparison and rating scales.
// GET /api/v1/scales
func (h *MethodsHandler) Scales(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"judgments": ahp.Scale(),
		"grades":    topsis.Grades(),
	})
}
