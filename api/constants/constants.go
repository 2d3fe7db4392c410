package constants

// Common error messages
const (
	ErrInvalidSession     = "invalid user_id or session"
	ErrInvalidJSON        = "invalid json or missing fields"
	ErrMissingUserID      = "Missing or invalid user_id in body"
	ErrUserIDRequired     = "user_id required"
	ErrInvalidRequestBody = "Invalid request body"
	ErrMethodNotAllowed   = "Method Not Allowed"
	ErrPleaseLogin        = "Please login to continue."
)

// Scorecard domain errors
const (
	ErrScorecardNotFound = "scorecard not found"
	ErrSectionNotFound   = "section not found"
	ErrKPINotFound       = "kpi not found"
	ErrEmptyImport       = "no KPIs could be parsed from the uploaded file"
	ErrUnsupportedFile   = "unsupported file type (expected .csv, .xlsx or .xls)"
)

// DB / SQL error templates
const (
	ErrTxStartFailed  = "failed to start transaction: "
	ErrTxCommitFailed = "failed to commit transaction: "
	ErrQueryFailed    = "query failed: "
)

// Header names
const (
	ContentTypeJSON                 = "application/json"
	HeaderContentType               = "Content-Type"
	ContentTypeText                 = "Content-Type"
	HeaderAccessControlAllowOrigin  = "Access-Control-Allow-Origin"
	HeaderAccessControlAllowHeaders = "Access-Control-Allow-Headers"
)
