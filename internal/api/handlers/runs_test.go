package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canary-hr/attendance-reconciler/internal/api/dto"
	"github.com/canary-hr/attendance-reconciler/internal/api/handlers"
	"github.com/canary-hr/attendance-reconciler/internal/application/service"
	"github.com/canary-hr/attendance-reconciler/internal/infrastructure/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestRunsHandler_List(t *testing.T) {
	t.Run("returns empty list when no runs", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := handlers.NewRunsHandler(service.NewReconcileService(repo, quietLogger()))

		req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.RunListResponse
		err := json.NewDecoder(rec.Body).Decode(&response)
		require.NoError(t, err)

		assert.Empty(t, response.Runs)
		assert.Equal(t, 0, response.Count)
	})

	t.Run("returns runs from repository newest first", func(t *testing.T) {
		repo := storage.NewMockRepository()
		base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
		require.NoError(t, repo.SaveRun(&storage.RunRecord{ID: "run-1", StartedAt: base, Total: 4, Matched: 2}))
		require.NoError(t, repo.SaveRun(&storage.RunRecord{ID: "run-2", StartedAt: base.Add(time.Hour), Total: 6, Mismatched: 1}))

		handler := handlers.NewRunsHandler(service.NewReconcileService(repo, quietLogger()))

		req := httptest.NewRequest(http.MethodGet, "/api/runs?limit=10", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.RunListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		require.Equal(t, 2, response.Count)
		assert.Equal(t, "run-2", response.Runs[0].ID)
		assert.Equal(t, 6, response.Runs[0].Counts.Total)
		assert.Equal(t, "2026-03-01T09:00:00Z", response.Runs[0].StartedAt)
	})

	t.Run("returns 503 when ledger is disabled", func(t *testing.T) {
		handler := handlers.NewRunsHandler(service.NewReconcileService(nil, quietLogger()))

		req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var apiErr dto.APIError
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
		assert.Equal(t, dto.ErrCodeUnavailable, apiErr.Code)
	})
}

func TestRunsHandler_Get(t *testing.T) {
	repo := storage.NewMockRepository()
	require.NoError(t, repo.SaveRun(&storage.RunRecord{
		ID:         "run-1",
		StartedAt:  time.Now(),
		Total:      3,
		PolicyJSON: `{"key_strategy":"code"}`,
	}))
	handler := handlers.NewRunsHandler(service.NewReconcileService(repo, quietLogger()))

	t.Run("returns the run", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/runs/run-1", nil), "id", "run-1")
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var response dto.RunResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "run-1", response.ID)
		assert.Equal(t, "code", response.Policy["key_strategy"])
	})

	t.Run("returns 404 for unknown run", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/runs/nope", nil), "id", "nope")
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("returns 400 without ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/runs/", nil)
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
