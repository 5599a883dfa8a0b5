package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/canary-hr/attendance-reconciler/internal/api/dto"
	"github.com/canary-hr/attendance-reconciler/internal/application/service"
	"github.com/canary-hr/attendance-reconciler/internal/domain/matcher"
	"github.com/canary-hr/attendance-reconciler/internal/domain/reconciler"
	"github.com/canary-hr/attendance-reconciler/internal/domain/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReconcileOptions configures the reconcile handler.
type ReconcileOptions struct {
	DefaultPolicy  reconciler.Policy
	MaxUploadBytes int64
	ExportFileName string
}

// ReconcileHandler runs reconciliations and serves views of the current run.
type ReconcileHandler struct {
	*Base
	opts ReconcileOptions
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(svc *service.ReconcileService, opts ReconcileOptions) *ReconcileHandler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	if opts.ExportFileName == "" {
		opts.ExportFileName = "report.xlsx"
	}
	return &ReconcileHandler{
		Base: NewBase(svc),
		opts: opts,
	}
}

// Create handles POST /api/runs - reconciles two uploaded files.
// Expects multipart fields "primary" and "secondary"; policy overrides come
// from query or form values.
func (h *ReconcileHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.opts.MaxUploadBytes); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("expected multipart form with primary and secondary files"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	policy, err := parsePolicy(r, h.opts.DefaultPolicy)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	primary, err := formSource(r, dto.FieldPrimary)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}
	defer primary.close()

	secondary, err := formSource(r, dto.FieldSecondary)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}
	defer secondary.close()

	snap, err := h.svc.Run(r.Context(), service.RunRequest{
		Primary:   primary.Source,
		Secondary: secondary.Source,
		Policy:    policy,
	})
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, toSnapshotResponse(snap))
}

// Current handles GET /api/runs/current - returns the current run summary.
func (h *ReconcileHandler) Current(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Current()
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, toSnapshotResponse(snap))
}

// Results handles GET /api/runs/current/results?kind=&q=
func (h *ReconcileHandler) Results(w http.ResponseWriter, r *http.Request) {
	params := dto.ResultListParams{
		Kind:  r.URL.Query().Get("kind"),
		Query: r.URL.Query().Get("q"),
	}

	kind, err := report.ParseKind(params.Kind)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	snap, results, err := h.svc.Results(kind, params.Query)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	response := dto.ResultListResponse{
		RunID:   snap.ID,
		Kind:    string(kind),
		Query:   params.Query,
		Counts:  dto.NewCountsResponse(snap.Counts),
		Count:   len(results),
		Results: make([]dto.ResultResponse, 0, len(results)),
	}
	for _, res := range results {
		response.Results = append(response.Results, dto.NewResultResponse(res))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Export handles GET /api/runs/current/export - downloads the report.
func (h *ReconcileHandler) Export(w http.ResponseWriter, r *http.Request) {
	// Render into memory first so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.svc.Export(&buf); err != nil {
		h.WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": h.opts.ExportFileName}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

type uploadedSource struct {
	service.Source
	file multipart.File
}

func (u uploadedSource) close() {
	if u.file != nil {
		_ = u.file.Close()
	}
}

func formSource(r *http.Request, field string) (uploadedSource, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return uploadedSource{}, fmt.Errorf("missing file field %q", field)
	}
	return uploadedSource{
		Source: service.Source{Name: header.Filename, Reader: file},
		file:   file,
	}, nil
}

// parsePolicy applies request overrides on top of defaults.
func parsePolicy(r *http.Request, defaults reconciler.Policy) (reconciler.Policy, error) {
	p := defaults

	if v := strings.TrimSpace(r.FormValue(dto.ParamKeyStrategy)); v != "" {
		p.KeyStrategy = matcher.KeyStrategy(v)
	}
	if v := strings.TrimSpace(r.FormValue(dto.ParamIncompleteBucket)); v != "" {
		p.IncompleteBucket = reconciler.IncompleteBucket(v)
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{dto.ParamNameThreshold, &p.NameThreshold},
		{dto.ParamTolerance, &p.Tolerance},
	}
	for _, f := range floats {
		parsed, err := ParseFloatParam(r, f.name, *f.dst)
		if err != nil {
			return p, err
		}
		*f.dst = parsed
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{dto.ParamEmitOrphans, &p.EmitOrphans},
		{dto.ParamStrictHeaders, &p.StrictHeaders},
		{dto.ParamCodeDigitsOnly, &p.CodeDigitsOnly},
	}
	for _, b := range bools {
		parsed, err := ParseBoolParam(r, b.name, *b.dst)
		if err != nil {
			return p, err
		}
		*b.dst = parsed
	}

	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func toSnapshotResponse(snap *service.RunSnapshot) dto.RunResponse {
	var policy map[string]any
	if raw, err := json.Marshal(snap.Run.Policy); err == nil {
		_ = json.Unmarshal(raw, &policy)
	}

	return dto.RunResponse{
		ID:            snap.ID,
		StartedAt:     snap.StartedAt.UTC().Format(time.RFC3339),
		DurationMS:    snap.Duration.Milliseconds(),
		PrimaryFile:   snap.PrimaryFile,
		SecondaryFile: snap.SecondaryFile,
		PrimaryRows:   snap.Run.PrimaryCount,
		SecondaryRows: snap.Run.SecondaryCount,
		Counts:        dto.NewCountsResponse(snap.Counts),
		Policy:        policy,
	}
}
