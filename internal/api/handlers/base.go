package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/canary-hr/attendance-reconciler/internal/api/dto"
	"github.com/canary-hr/attendance-reconciler/internal/application/service"
	"github.com/canary-hr/attendance-reconciler/internal/infrastructure/storage"
)

// Base provides shared functionality for all handlers.
type Base struct {
	svc *service.ReconcileService
}

// NewBase creates a new base handler around the reconcile service.
func NewBase(svc *service.ReconcileService) *Base {
	return &Base{svc: svc}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response with the given status code.
func (b *Base) WriteError(w http.ResponseWriter, status int, err dto.APIError) {
	b.WriteJSON(w, status, err)
}

// WriteServiceError maps service and storage errors to API errors.
func (b *Base) WriteServiceError(w http.ResponseWriter, err error) {
	var loadErr *service.LoadError
	switch {
	case errors.Is(err, service.ErrNoRun):
		b.WriteError(w, http.StatusNotFound, dto.NoRunError())
	case errors.Is(err, service.ErrLedgerDisabled):
		b.WriteError(w, http.StatusServiceUnavailable, dto.UnavailableError("run ledger"))
	case errors.Is(err, storage.ErrRunNotFound):
		b.WriteError(w, http.StatusNotFound, dto.NotFoundError("run"))
	case errors.As(err, &loadErr):
		b.WriteError(w, http.StatusBadRequest, dto.ValidationError(loadErr.Error()))
	default:
		b.WriteError(w, http.StatusInternalServerError, dto.InternalError())
	}
}

// ParseIntParam parses an integer query parameter with a default value.
func ParseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseBoolParam parses a boolean query or form parameter with a default
// value. Anything strconv.ParseBool rejects is an error.
func ParseBoolParam(r *http.Request, name string, defaultVal bool) (bool, error) {
	val := strings.TrimSpace(r.FormValue(name))
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal, fmt.Errorf("%s must be true or false", name)
	}
	return parsed, nil
}

// ParseFloatParam parses a finite numeric query or form parameter with a
// default value.
func ParseFloatParam(r *http.Request, name string, defaultVal float64) (float64, error) {
	val := strings.TrimSpace(r.FormValue(name))
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return defaultVal, fmt.Errorf("%s must be a number", name)
	}
	return parsed, nil
}
