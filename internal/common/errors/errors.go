// Package errors provides the standardized error taxonomy shared by the
// matching and location workflows.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Location acquisition
const (
	ErrCodePermissionDenied    ErrorCode = "PERMISSION_DENIED"
	ErrCodeServiceDisabled     ErrorCode = "SERVICE_DISABLED"
	ErrCodeLocationUnavailable ErrorCode = "LOCATION_UNAVAILABLE"
)

// Transport / remote services
const (
	ErrCodeNetwork            ErrorCode = "NETWORK_ERROR"
	ErrCodeServer             ErrorCode = "SERVER_ERROR"
	ErrCodeComparisonRejected ErrorCode = "COMPARISON_REJECTED"
	ErrCodeInvalidResponse    ErrorCode = "INVALID_RESPONSE"
)

// Matching. NO_MATCH_FOUND names a terminal state, it is never returned as an error.
const (
	ErrCodeNoMatchFound ErrorCode = "NO_MATCH_FOUND"
)

// Records and notifications
const (
	ErrCodeInvalidInput           ErrorCode = "INVALID_INPUT"
	ErrCodeRecordCreateFailed     ErrorCode = "RECORD_CREATE_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

const ErrCodeUnknown ErrorCode = "UNKNOWN"

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// UserMessage is the short user-facing text for this error's code.
func (e *StandardError) UserMessage() string {
	return MessageFor(e.Code)
}

// WithMetadata returns e after attaching a metadata key.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func detailsOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 2. Error Constructors
// ==========================

// NewPermissionDeniedError reports a capability the user has not granted.
func NewPermissionDeniedError(capability string) *StandardError {
	return newError(ErrCodePermissionDenied, "Permission not granted",
		fmt.Sprintf("capability: %s", capability), false, nil)
}

// NewServiceDisabledError reports that the platform location service is off.
func NewServiceDisabledError() *StandardError {
	return newError(ErrCodeServiceDisabled, "Location services disabled",
		"platform location service is turned off", false, nil)
}

// NewLocationUnavailableError reports that no fix could be obtained.
func NewLocationUnavailableError(err error) *StandardError {
	details := "no cached or fresh fix available"
	if err != nil {
		details = err.Error()
	}
	return newError(ErrCodeLocationUnavailable, "Location unavailable", details, true, err)
}

// NewNetworkError wraps a transport-level failure.
func NewNetworkError(service string, err error) *StandardError {
	return newError(ErrCodeNetwork, fmt.Sprintf("Network error calling '%s'", service),
		detailsOf(err), true, err)
}

// NewServerError reports a 5xx (or equivalent) answer from a remote service.
func NewServerError(service string, status int) *StandardError {
	return newError(ErrCodeServer, fmt.Sprintf("Service '%s' failed", service),
		fmt.Sprintf("status: %d", status), true, nil).WithMetadata("status", status)
}

// NewComparisonRejectedError reports a 4xx answer from the comparison service.
func NewComparisonRejectedError(status int, body string) *StandardError {
	return newError(ErrCodeComparisonRejected, "Comparison request rejected",
		fmt.Sprintf("status: %d, body: %s", status, body), false, nil).WithMetadata("status", status)
}

// NewInvalidResponseError reports a body that could not be decoded or validated.
func NewInvalidResponseError(service string, err error) *StandardError {
	return newError(ErrCodeInvalidResponse, fmt.Sprintf("Invalid response from '%s'", service),
		detailsOf(err), true, err)
}

// NewInvalidInputError reports missing or malformed caller-supplied data.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid input", details, false, nil)
}

// NewRecordCreateFailedError wraps a failed record repository write.
func NewRecordCreateFailedError(collection string, err error) *StandardError {
	return newError(ErrCodeRecordCreateFailed, "Record creation failed",
		fmt.Sprintf("collection: %s, error: %s", collection, detailsOf(err)), true, err)
}

// NewNotificationSendFailedError wraps a failed notification sink write.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("type: %s, error: %s", notificationType, detailsOf(err)), true, err)
}

// NewUnknownError wraps anything that fits no other code.
func NewUnknownError(err error) *StandardError {
	return newError(ErrCodeUnknown, "Unexpected error", detailsOf(err), false, err)
}

// ==========================
// 3. Classification
// ==========================

// IsNetworkError reports whether err stems from the transport layer:
// timeouts, refused connections, DNS failures and similar.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return stderrors.As(err, &urlErr)
}

// Normalize ensures we always have a StandardError. Transport failures
// become NETWORK_ERROR, everything unrecognised becomes UNKNOWN.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	if IsNetworkError(err) {
		return NewNetworkError("unknown", err)
	}
	return NewUnknownError(err)
}

// CodeOf returns the taxonomy code for err, UNKNOWN for foreign errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return Normalize(err).Code
}

// HasCode reports whether err normalizes to code.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

var userMessages = map[ErrorCode]string{
	ErrCodePermissionDenied:       "Location permission is off. Allow it in Settings to use your current location.",
	ErrCodeServiceDisabled:        "Location services are turned off. Turn them on and try again.",
	ErrCodeLocationUnavailable:    "Couldn't get your location. Try again outdoors or pick the spot on the map.",
	ErrCodeNetwork:                "No connection. Check your internet and try again.",
	ErrCodeServer:                 "The service is having trouble right now. Try again in a moment.",
	ErrCodeComparisonRejected:     "This photo couldn't be checked. Try a clearer photo of the pet.",
	ErrCodeInvalidResponse:        "We got an unexpected reply. Try again in a moment.",
	ErrCodeNoMatchFound:           "No matching pets found yet.",
	ErrCodeInvalidInput:           "Some required details are missing.",
	ErrCodeRecordCreateFailed:     "Your report couldn't be saved. Try again.",
	ErrCodeNotificationSendFailed: "We couldn't send the notification.",
	ErrCodeUnknown:                "Something went wrong. Try again.",
}

// MessageFor returns the user-facing message for code.
func MessageFor(code ErrorCode) string {
	if msg, ok := userMessages[code]; ok {
		return msg
	}
	return userMessages[ErrCodeUnknown]
}

// UserMessage returns the user-facing message for err. It never exposes
// the raw error text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return MessageFor(CodeOf(err))
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case code == ErrCodePermissionDenied || code == ErrCodeServiceDisabled:
		return "PLATFORM"
	case strings.Contains(codeStr, "LOCATION"):
		return "LOCATION"
	case code == ErrCodeNetwork:
		return "NETWORK"
	case code == ErrCodeServer || code == ErrCodeInvalidResponse || code == ErrCodeComparisonRejected:
		return "SERVER"
	case strings.Contains(codeStr, "RECORD") || strings.Contains(codeStr, "NOTIFICATION"):
		return "COLLABORATOR"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
