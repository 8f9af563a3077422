package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/evaluation"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/jobs"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/sensitivity"
)

const kindSensitivity = "sensitivity"

type JobsHandler struct {
	engine *evaluation.Engine
	jobs   *jobs.Manager
}

func NewJobsHandler(e *evaluation.Engine, jm *jobs.Manager) *JobsHandler {
	return &JobsHandler{engine: e, jobs: jm}
}

// SensitivityJobResult is the payload of a finished sensitivity job.
type SensitivityJobResult struct {
	Ranking     []evaluation.RankedAlternative `json:"ranking"`
	Sensitivity *evaluation.SensitivitySummary `json:"sensitivity"`
	Robustness  *sensitivity.Robustness        `json:"robustness,omitempty"`
}

// Sensitivity validates and ranks the problem synchronously, then queues
// the sweep described by its sensitivity section.
// POST /api/v1/jobs/sensitivity
func (h *JobsHandler) Sensitivity(w http.ResponseWriter, r *http.Request) {
	p, err := evaluation.DecodeProblem(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, err)
		return
	}
	prep, err := h.engine.Prepare(p)
	if err != nil {
		writeError(w, err)
		return
	}
	req := evaluation.SensitivityRequest{}
	if p.Sensitivity != nil {
		req = *p.Sensitivity
	}
	if _, err := prep.LeafIndices(req.Criteria); err != nil {
		writeError(w, err)
		return
	}
	if _, _, err := h.engine.SweepGrid(req); err != nil {
		writeError(w, err)
		return
	}

	job, err := h.jobs.Submit(kindSensitivity, func(ctx context.Context, progress jobs.ProgressFunc) (interface{}, error) {
		report := func(p sensitivity.Progress) { progress(p.Done, p.Total) }
		summary, err := h.engine.Sensitivity(ctx, prep, req, report)
		if err != nil {
			return nil, err
		}
		out := &SensitivityJobResult{
			Ranking:     prep.RankedAlternatives(),
			Sensitivity: summary,
		}
		if req.MonteCarlo > 0 {
			out.Robustness, err = h.engine.Robustness(ctx, prep, req, report)
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	})
	switch {
	case errors.Is(err, jobs.ErrQueueFull):
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": err.Error()})
		return
	case err != nil:
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

// GET /api/v1/jobs
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.jobs.List())
}

// GET /api/v1/jobs/{id}
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	job, err := h.jobs.Get(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// Cancel stops a queued or running job.
// DELETE /api/v1/jobs/{id}
func (h *JobsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	job, err := h.jobs.Cancel(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func jobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}
