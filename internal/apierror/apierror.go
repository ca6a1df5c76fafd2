// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// Error codes shared with the front end.
const (
	CodeInvalidInput           = "INVALID_INPUT"
	CodeSessionClosed          = "SESSION_CLOSED"
	CodeSessionAlreadyOpen     = "SESSION_ALREADY_OPEN"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeOverPayment            = "OVER_PAYMENT"
	CodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	CodeConcurrencyConflict    = "CONCURRENCY_CONFLICT"
	CodeNotFound               = "NOT_FOUND"
	CodeForbidden              = "FORBIDDEN"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeRateLimited            = "RATE_LIMITED"
	CodeInternal               = "INTERNAL"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
	SKU    string `json:"sku,omitempty"`
}

func New(code, msg string) *APIError {
	return &APIError{Code: code, Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Code   string            `json:"code"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Code: CodeInvalidInput, Detail: "Error de validacion", Fields: fields}
}
