package excursion

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------

var (
	// ErrConfiguration is matched by every ConfigurationError
	ErrConfiguration = errors.New("excursion: supply API not configured")
	// ErrValidation is matched by every ValidationError
	ErrValidation = errors.New("excursion: validation failed")
	// ErrUpstream is matched by every UpstreamError
	ErrUpstream = errors.New("excursion: upstream request failed")
	// ErrNetwork is matched by every NetworkError
	ErrNetwork = errors.New("excursion: supply API unreachable")
	// ErrNotFound indicates the upstream has no entity for the given key
	ErrNotFound = errors.New("excursion: not found")
	// ErrRequestNotSent indicates a request was abandoned before it reached the
	// network, so the upstream cannot have acted on it
	ErrRequestNotSent = errors.New("excursion: request not sent")

	// ErrBookingOutcomeUnknown is joined with a NetworkError when a booking call
	// failed in a way that may still have created a reservation upstream.
	ErrBookingOutcomeUnknown = errors.New("excursion: booking outcome unknown, confirm cart status before resubmitting")
	// ErrDuplicateSubmission indicates the partner cart ref was already submitted
	ErrDuplicateSubmission = errors.New("excursion: cart already submitted")
)

// Named validation errors for cart booking, checked in this order.
var (
	ErrEmptyCart = &ValidationError{
		Code:    "EMPTY_CART",
		Fields:  []string{"items"},
		Message: "cart must contain at least one item",
	}
	ErrBookerFirstNameRequired = &ValidationError{
		Code:    "BOOKER_FIRST_NAME_REQUIRED",
		Fields:  []string{"booker.firstName"},
		Message: "booker first name is required",
	}
	ErrBookerLastNameRequired = &ValidationError{
		Code:    "BOOKER_LAST_NAME_REQUIRED",
		Fields:  []string{"booker.lastName"},
		Message: "booker last name is required",
	}
	ErrBookerEmailRequired = &ValidationError{
		Code:    "BOOKER_EMAIL_REQUIRED",
		Fields:  []string{"booker.email"},
		Message: "booker email is required",
	}
	ErrCommunicationEmailRequired = &ValidationError{
		Code:    "COMMUNICATION_EMAIL_REQUIRED",
		Fields:  []string{"communication.email"},
		Message: "communication email is required",
	}
	ErrCartItemInvalid = &ValidationError{
		Code:    "CART_ITEM_INVALID",
		Fields:  []string{"items"},
		Message: "invalid cart item",
	}
)

// ConfigurationError reports missing or invalid supply credentials.
// It is fatal for the process configuration and never retried.
type ConfigurationError struct {
	Reason string
}

// NewConfigurationError creates a ConfigurationError
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return "excursion: configuration error: " + e.Reason
}

// Is matches ErrConfiguration
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// ValidationError reports malformed caller input. Code identifies the rule,
// Fields names the offending input fields.
type ValidationError struct {
	Code    string
	Fields  []string
	Message string
}

// NewMissingFieldsError creates a ValidationError naming every missing field
func NewMissingFieldsError(fields ...string) *ValidationError {
	return &ValidationError{
		Code:    "MISSING_FIELDS",
		Fields:  fields,
		Message: "missing required field(s): " + strings.Join(fields, ", "),
	}
}

// NewInvalidFieldError creates a ValidationError for a single malformed field
func NewInvalidFieldError(field, reason string) *ValidationError {
	return &ValidationError{
		Code:    "INVALID_FIELD",
		Fields:  []string{field},
		Message: fmt.Sprintf("%s: %s", field, reason),
	}
}

func (e *ValidationError) Error() string {
	return "excursion: " + e.Message
}

// Is matches ErrValidation and any ValidationError with the same Code
func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	var other *ValidationError
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

// UpstreamError reports a non-2xx or malformed response from the supply API.
// Body holds the raw upstream payload for diagnostics.
type UpstreamError struct {
	Operation string
	Status    int
	Body      []byte
	Reason    string
}

func (e *UpstreamError) Error() string {
	msg := e.Message()
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Operation != "" {
		return fmt.Sprintf("excursion: %s: upstream status %d: %s", e.Operation, e.Status, msg)
	}
	return fmt.Sprintf("excursion: upstream status %d: %s", e.Status, msg)
}

// Is matches ErrUpstream
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// Message returns the upstream's own message if the body carries one
func (e *UpstreamError) Message() string {
	if e.Reason != "" {
		return e.Reason
	}
	var payload struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(e.Body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return ""
}

// IsNotEntitled returns true when the upstream refused the call for the account
func (e *UpstreamError) IsNotEntitled() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// Retryable returns true for statuses worth retrying on idempotent reads
func (e *UpstreamError) Retryable() bool {
	return e.Status >= http.StatusInternalServerError || e.Status == http.StatusTooManyRequests
}

// NetworkError reports a transport failure, including timeouts
type NetworkError struct {
	Operation string
	Err       error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("excursion: %s: %v", e.Operation, e.Err)
}

// Unwrap returns the transport error
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is matches ErrNetwork
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// Timeout reports whether the transport error was a timeout
func (e *NetworkError) Timeout() bool {
	var t interface{ Timeout() bool }
	if errors.As(e.Err, &t) {
		return t.Timeout()
	}
	return false
}

// IsRetryableRead reports whether a failed idempotent read may be retried
func IsRetryableRead(err error) bool {
	if errors.Is(err, ErrNetwork) {
		return true
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Retryable()
	}
	return false
}
