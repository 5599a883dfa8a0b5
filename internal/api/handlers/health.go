package handlers

import (
	"errors"
	"net/http"

	"github.com/canary-hr/attendance-reconciler/internal/api/dto"
	"github.com/canary-hr/attendance-reconciler/internal/application/service"
)

// HealthHandler reports liveness and run ledger reachability.
type HealthHandler struct {
	*Base
}

// NewHealthHandler creates a health handler backed by the reconcile service.
func NewHealthHandler(svc *service.ReconcileService) *HealthHandler {
	return &HealthHandler{Base: NewBase(svc)}
}

// ServeHTTP answers 200 while the ledger is reachable or disabled, and 503
// when a configured ledger cannot be reached.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := h.svc.PingLedger(r.Context())
	switch {
	case err == nil:
		h.WriteJSON(w, http.StatusOK, dto.NewHealthResponse(dto.LedgerOK))
	case errors.Is(err, service.ErrLedgerDisabled):
		h.WriteJSON(w, http.StatusOK, dto.NewHealthResponse(dto.LedgerDisabled))
	default:
		h.WriteJSON(w, http.StatusServiceUnavailable, dto.NewHealthResponse(dto.LedgerUnavailable))
	}
}
