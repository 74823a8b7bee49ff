package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput = "INVALID_INPUT"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInvalidState = "INVALID_STATE"

	// Store errors
	CodeSchemaTooNew        = "SCHEMA_TOO_NEW"
	CodeRecipientResolution = "RECIPIENT_RESOLUTION"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
)
