package apierr

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

const (
	CodeNetworkError    = "NETWORK_ERROR"
	CodeValidationError = "VALIDATION_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
)

// errTransient marks failures worth retrying: transport errors and
// upstream statuses that may clear on their own.
var errTransient = errors.New("transient upstream failure")

// Issue is one field-level validation failure.
type Issue struct {
	Path     string `json:"path"`
	Message  string `json:"message"`
	Code     string `json:"code"`
	Expected any    `json:"expected,omitempty"`
	Received any    `json:"received,omitempty"`
}

// ValidationError reports that local data failed schema validation.
type ValidationError struct {
	Context string
	Issues  []Issue
}

func NewValidationError(context string, issues []Issue) *ValidationError {
	return &ValidationError{Context: context, Issues: issues}
}

func (e *ValidationError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: validation failed (%d issues)", e.Context, len(e.Issues))
	}
	return fmt.Sprintf("validation failed (%d issues)", len(e.Issues))
}

// APIError carries a numeric status and the structured wire error
// surfaced for HTTP and transport failures.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FromStatus classifies a non-2xx upstream response. details holds the
// parsed upstream error body when it was JSON, otherwise stays empty.
func FromStatus(status int, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	e := &APIError{
		StatusCode: status,
		Code:       fmt.Sprintf("HTTP_%d", status),
		Message:    fmt.Sprintf("request failed: %s", http.StatusText(status)),
		Details:    details,
	}
	if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
		return errors.Mark(e, errTransient)
	}
	return e
}

// Network classifies a transport failure where no response arrived.
func Network(cause error) error {
	e := &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeNetworkError,
		Message:    cause.Error(),
		Details:    map[string]any{},
	}
	return errors.Mark(e, errTransient)
}

// IsRetryable reports whether the fetch is worth another attempt.
// Not-found and validation failures are final.
func IsRetryable(err error) bool {
	return errors.Is(err, errTransient)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func IsValidation(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// Body is the machine-readable error shape shared with the browser
// client and, best-effort, with upstream error payloads.
type Body struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Envelope wraps Body the way it travels on the wire.
type Envelope struct {
	Error Body `json:"error"`
}

func (e *APIError) Envelope() Envelope {
	return Envelope{Error: Body{Code: e.Code, Message: e.Message, Details: e.Details}}
}

func (e *ValidationError) Envelope() Envelope {
	details := make(map[string]any, len(e.Issues))
	for _, issue := range e.Issues {
		details[issue.Path] = map[string]any{
			"message":  issue.Message,
			"code":     issue.Code,
			"expected": issue.Expected,
			"received": issue.Received,
		}
	}
	return Envelope{Error: Body{
		Code:    CodeValidationError,
		Message: "Request validation failed",
		Details: details,
	}}
}

// Render maps any error from the fetch path to a response status and
// wire envelope.
func Render(err error) (int, Envelope) {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return http.StatusBadRequest, valErr.Envelope()
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status < 100 {
			status = http.StatusInternalServerError
		}
		return status, apiErr.Envelope()
	}
	return http.StatusInternalServerError, Envelope{Error: Body{
		Code:    CodeInternalError,
		Message: err.Error(),
	}}
}
