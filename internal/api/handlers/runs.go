package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/canary-hr/attendance-reconciler/internal/api/dto"
	"github.com/canary-hr/attendance-reconciler/internal/application/service"
	"github.com/canary-hr/attendance-reconciler/internal/infrastructure/storage"
)

// RunsHandler serves the run ledger.
type RunsHandler struct {
	*Base
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(svc *service.ReconcileService) *RunsHandler {
	return &RunsHandler{
		Base: NewBase(svc),
	}
}

// List handles GET /api/runs - returns recent runs, newest first.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", 20)

	runs, err := h.svc.History(limit)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	response := dto.RunListResponse{
		Runs:  make([]dto.RunResponse, 0, len(runs)),
		Count: len(runs),
	}

	for _, run := range runs {
		response.Runs = append(response.Runs, toRunResponse(run))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/runs/{id} - returns a single ledger entry.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return
	}

	run, err := h.svc.GetRun(id)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, toRunResponse(run))
}

// toRunResponse converts a ledger record to an API response.
func toRunResponse(run *storage.RunRecord) dto.RunResponse {
	return dto.RunResponse{
		ID:            run.ID,
		StartedAt:     run.StartedAt.UTC().Format(time.RFC3339),
		DurationMS:    run.DurationMS,
		PrimaryFile:   run.PrimaryFile,
		SecondaryFile: run.SecondaryFile,
		PrimaryRows:   run.PrimaryRows,
		SecondaryRows: run.SecondaryRows,
		Counts: dto.CountsResponse{
			Total:      run.Total,
			Matched:    run.Matched,
			Mismatched: run.Mismatched,
			Incomplete: run.Incomplete,
		},
		Policy: run.Policy(),
	}
}
