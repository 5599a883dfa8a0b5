package dto

// Query and form parameter names accepted by POST /api/runs. Each one
// overrides the server's default policy when present.
const (
	ParamKeyStrategy      = "key"
	ParamNameThreshold    = "threshold"
	ParamTolerance        = "tolerance"
	ParamEmitOrphans      = "orphans"
	ParamStrictHeaders    = "strict_headers"
	ParamIncompleteBucket = "bucket"
	ParamCodeDigitsOnly   = "digits_only"
)

// Multipart field names for the two uploaded files.
const (
	FieldPrimary   = "primary"
	FieldSecondary = "secondary"
)

// ResultListParams represents query parameters for listing results.
type ResultListParams struct {
	Kind  string `json:"kind"`
	Query string `json:"q"`
}

// RunListParams represents query parameters for listing ledger runs.
type RunListParams struct {
	Limit int `json:"limit"`
}
