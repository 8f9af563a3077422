package api

import (
	"encoding/json"
	"net/http"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/evaluation"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/store"
)

type ExplainHandler struct {
	store store.Store
}

func NewExplainHandler(s store.Store) *ExplainHandler {
	return &ExplainHandler{store: s}
}

// Explain returns a compact breakdown of an archived run: leaf weights,
// ranking, consistency findings and the criteria that can flip the
// ranking.
// GET /api/v1/evaluations/{id}/explain
func (h *ExplainHandler) Explain(w http.ResponseWriter, r *http.Request) {
	run, ok := loadRun(w, r, h.store)
	if !ok {
		return
	}

	resp := map[string]interface{}{
		"run_id": run.ID,
		"name":   run.Name,
		"status": run.Status,
	}
	if run.Status == store.StatusFailed {
		resp["error"] = run.Error
		writeJSON(w, http.StatusOK, resp)
		return
	}

	var res evaluation.Result
	if err := json.Unmarshal(run.Result, &res); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "stored result is unreadable"})
		return
	}

	resp["top_alternative"] = res.Top()
	resp["leaves"] = res.Leaves
	resp["ranking"] = res.Ranking
	if len(res.Warnings) > 0 {
		resp["consistency_warnings"] = res.Warnings
	}
	if len(res.Diagnoses) > 0 {
		resp["diagnoses"] = res.Diagnoses
	}
	if res.Sensitivity != nil {
		resp["stability_index"] = res.Sensitivity.StabilityIndex
		resp["sensitive_criteria"] = res.Sensitivity.SensitiveIDs
		critical := map[string]float64{}
		for i, c := range res.Sensitivity.Criteria {
			if c.CriticalPerturbation != nil && i < len(res.Sensitivity.CriterionIDs) {
				critical[res.Sensitivity.CriterionIDs[i]] = *c.CriticalPerturbation
			}
		}
		resp["critical_perturbations"] = critical
	}
	if res.Robustness != nil {
		resp["top_order_probability"] = res.Robustness.Probability
	}

	writeJSON(w, http.StatusOK, resp)
}
