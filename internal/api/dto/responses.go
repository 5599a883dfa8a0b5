package dto

import (
	"time"

	"github.com/canary-hr/attendance-reconciler/internal/domain/attendance"
	"github.com/canary-hr/attendance-reconciler/internal/domain/reconciler"
	"github.com/canary-hr/attendance-reconciler/internal/domain/report"
)

// Health and ledger states reported by the health check endpoint.
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"

	LedgerOK          = "ok"
	LedgerUnavailable = "unavailable"
	LedgerDisabled    = "disabled"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Ledger    string `json:"ledger"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a status response for the given ledger state.
// The service is degraded only when a configured ledger is unreachable.
func NewHealthResponse(ledger string) HealthResponse {
	status := HealthOK
	if ledger == LedgerUnavailable {
		status = HealthDegraded
	}
	return HealthResponse{
		Status:    status,
		Ledger:    ledger,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// CountsResponse is the summary above the report.
type CountsResponse struct {
	Total      int `json:"total"`
	Matched    int `json:"matched"`
	Mismatched int `json:"mismatched"`
	Incomplete int `json:"incomplete"`
}

// NewCountsResponse converts report counts.
func NewCountsResponse(c report.Counts) CountsResponse {
	return CountsResponse{
		Total:      c.Total,
		Matched:    c.Matched,
		Mismatched: c.Mismatched,
		Incomplete: c.Incomplete,
	}
}

// RecordResponse is one side of a result row.
type RecordResponse struct {
	Code string  `json:"code"`
	Name string  `json:"name"`
	G    float64 `json:"g"`
	R    float64 `json:"r"`
}

// ResultResponse is one reconciled row.
type ResultResponse struct {
	Index     int             `json:"index"`
	Primary   *RecordResponse `json:"primary"`
	Secondary *RecordResponse `json:"secondary"`
	GStatus   string          `json:"g_status"`
	RStatus   string          `json:"r_status"`
	GLabel    string          `json:"g_label"`
	RLabel    string          `json:"r_label"`
	Note      string          `json:"note"`
	MatchKind string          `json:"match_kind,omitempty"`
}

func newRecordResponse(rec *attendance.Record) *RecordResponse {
	if rec == nil {
		return nil
	}
	return &RecordResponse{Code: rec.Code, Name: rec.Name, G: rec.G, R: rec.R}
}

// NewResultResponse converts an engine result.
func NewResultResponse(r reconciler.Result) ResultResponse {
	return ResultResponse{
		Index:     r.Index,
		Primary:   newRecordResponse(r.Primary),
		Secondary: newRecordResponse(r.Secondary),
		GStatus:   string(r.GStatus),
		RStatus:   string(r.RStatus),
		GLabel:    r.GStatus.Label(),
		RLabel:    r.RStatus.Label(),
		Note:      r.Note,
		MatchKind: string(r.MatchKind),
	}
}

// ResultListResponse is a filtered view of the current run.
type ResultListResponse struct {
	RunID   string           `json:"run_id"`
	Kind    string           `json:"kind"`
	Query   string           `json:"q,omitempty"`
	Counts  CountsResponse   `json:"counts"`
	Count   int              `json:"count"`
	Results []ResultResponse `json:"results"`
}

// RunResponse describes a run, either the current one or a ledger entry.
type RunResponse struct {
	ID            string         `json:"id"`
	StartedAt     string         `json:"started_at"`
	DurationMS    int64          `json:"duration_ms"`
	PrimaryFile   string         `json:"primary_file"`
	SecondaryFile string         `json:"secondary_file"`
	PrimaryRows   int            `json:"primary_rows"`
	SecondaryRows int            `json:"secondary_rows"`
	Counts        CountsResponse `json:"counts"`
	Policy        map[string]any `json:"policy,omitempty"`
}

// RunListResponse is a page of ledger entries.
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}
