package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/evaluation"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/store"
)

var errNoArchive = errors.New("run archive is not configured")

type EvaluationsHandler struct {
	engine *evaluation.Engine
	store  store.Store
}

func NewEvaluationsHandler(e *evaluation.Engine, s store.Store) *EvaluationsHandler {
	return &EvaluationsHandler{engine: e, store: s}
}

// Create evaluates a problem and archives it when a store is configured.
// The body may be JSON or YAML.
// POST /api/v1/evaluations
func (h *EvaluationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := evaluation.DecodeProblem(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.engine.Evaluate(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if res.RunID != nil {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

// List returns archived runs without their payloads.
// GET /api/v1/evaluations?name=&status=&limit=&offset=
func (h *EvaluationsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": errNoArchive.Error()})
		return
	}
	q := r.URL.Query()
	filter := store.RunFilter{Name: q.Get("name")}
	if s := q.Get("status"); s != "" {
		st := store.RunStatus(s)
		if st != store.StatusCompleted && st != store.StatusFailed {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		filter.Status = &st
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &filter.Limit}, {"offset", &filter.Offset}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + p.name})
			return
		}
		*p.dst = n
	}

	runs, err := h.store.ListRuns(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// Get returns one archived run with its problem and result.
// GET /api/v1/evaluations/{id}
func (h *EvaluationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	run, ok := loadRun(w, r, h.store)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// DELETE /api/v1/evaluations/{id}
func (h *EvaluationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	run, ok := loadRun(w, r, h.store)
	if !ok {
		return
	}
	if err := h.store.DeleteRun(r.Context(), run.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadRun resolves the {id} parameter and writes the error response when
// the run cannot be served.
func loadRun(w http.ResponseWriter, r *http.Request, s store.Store) (*store.Run, bool) {
	if s == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": errNoArchive.Error()})
		return nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil, false
	}
	run, err := s.GetRun(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}
	if run == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return nil, false
	}
	return run, true
}
