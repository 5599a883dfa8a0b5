package storage

import (
	"encoding/json"
	"time"
)

// RunRecord is one ledger entry: which files were reconciled, under what
// policy, and the resulting counts.
type RunRecord struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	DurationMS    int64     `json:"duration_ms"`
	PrimaryFile   string    `json:"primary_file"`
	SecondaryFile string    `json:"secondary_file"`
	PrimaryRows   int       `json:"primary_rows"`
	SecondaryRows int       `json:"secondary_rows"`
	Total         int       `json:"total"`
	Matched       int       `json:"matched"`
	Mismatched    int       `json:"mismatched"`
	Incomplete    int       `json:"incomplete"`

	// Policy as stored (JSON)
	PolicyJSON string `json:"-"`
}

// Policy decodes PolicyJSON into a generic map for display.
func (r *RunRecord) Policy() map[string]any {
	if r.PolicyJSON == "" {
		return nil
	}
	var p map[string]any
	if err := json.Unmarshal([]byte(r.PolicyJSON), &p); err != nil {
		return nil
	}
	return p
}
