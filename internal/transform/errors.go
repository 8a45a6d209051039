package transform

import "net/http"

// RequestError is the client-facing error taxonomy. A RequestError aborts the
// whole request before (or instead of) dispatch; per-item generation failures
// never become one.
type RequestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Status  int    `json:"-"`
}

func (e *RequestError) Error() string {
	return e.Code + ": " + e.Message
}

// NewValidationError flags a malformed or out-of-range request parameter.
func NewValidationError(message, details string) *RequestError {
	return &RequestError{
		Code:    "validation_error",
		Message: message,
		Details: details,
		Status:  http.StatusBadRequest,
	}
}

// NewContentError flags content that is semantically unsuitable for the
// requested operation, e.g. too short to fragment or a compression target
// outside the supported business range.
func NewContentError(message, details string) *RequestError {
	return &RequestError{
		Code:    "content_error",
		Message: message,
		Details: details,
		Status:  http.StatusUnprocessableEntity,
	}
}

// NewOperationError flags an operation incompatible with the content shape,
// e.g. join called on a single cohesive text.
func NewOperationError(message, details string) *RequestError {
	return &RequestError{
		Code:    "operation_error",
		Message: message,
		Details: details,
		Status:  http.StatusConflict,
	}
}

// NewUpstreamError reports that the generation collaborator produced nothing
// at all for this request.
func NewUpstreamError(message, details string) *RequestError {
	return &RequestError{
		Code:    "upstream_error",
		Message: message,
		Details: details,
		Status:  http.StatusBadGateway,
	}
}

// Warning codes. Warnings never abort a request; they annotate the response.
const (
	WarnValidation      = "validation_warning"
	WarnTargetDeviation = "target_deviation"
	WarnVersionError    = "version_error"
	WarnLengthError     = "length_error"
	WarnFragmentError   = "fragment_error"
)

// Warning locates a non-fatal problem. Key is the parameter name for
// request-level warnings, or a "fragment.length.version" index triple for
// per-slot warnings.
type Warning struct {
	Key     string `json:"key"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
