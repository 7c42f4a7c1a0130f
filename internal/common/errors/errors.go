// Package errors provides standardized error handling for BPMN workflow
// integration and the HTTP adapter.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeProfileValidationFailed     ErrorCode = "PROFILE_VALIDATION_FAILED"
	ErrCodeScoringConfigurationInvalid ErrorCode = "SCORING_CONFIGURATION_INVALID"
	ErrCodeProfileNotFound             ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeProfileLookupFailed         ErrorCode = "PROFILE_LOOKUP_FAILED"
	ErrCodeProfileLookupTimeout        ErrorCode = "PROFILE_LOOKUP_TIMEOUT"
	ErrCodeCacheUnavailable            ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeParseError                  ErrorCode = "PARSE_ERROR"
	ErrCodeEnvelopeExpired             ErrorCode = "ENVELOPE_EXPIRED"
	ErrCodeInternalError               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// AsStandardError unwraps err looking for a *StandardError.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileValidationError reports a malformed profile payload. Not retryable.
func NewProfileValidationError(details string) *StandardError {
	return newError(ErrCodeProfileValidationFailed, "Profile payload validation failed", details, false)
}

// NewScoringConfigurationError wraps an engine configuration failure such as
// an unknown mode or a negative max_age_diff preference.
func NewScoringConfigurationError(err error) *StandardError {
	return newError(ErrCodeScoringConfigurationInvalid, "Scoring configuration is invalid", err.Error(), false)
}

func NewProfileNotFoundError(profileID string) *StandardError {
	return newError(ErrCodeProfileNotFound, "Profile not found", fmt.Sprintf("profileId: %s", profileID), false).
		WithMetadata("profileId", profileID)
}

// NewProfileLookupFailedError is a retryable directory failure.
func NewProfileLookupFailedError(profileID string, err error) *StandardError {
	return newError(ErrCodeProfileLookupFailed, "Profile directory lookup failed",
		fmt.Sprintf("profileId: %s, error: %s", profileID, err.Error()), true).
		WithMetadata("profileId", profileID)
}

func NewProfileLookupTimeoutError(profileID string) *StandardError {
	return newError(ErrCodeProfileLookupTimeout, "Profile directory lookup timeout",
		fmt.Sprintf("profileId: %s", profileID), true)
}

func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Profile cache unavailable", err.Error(), true)
}

func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Failed to parse request", err.Error(), false)
}

func NewEnvelopeExpiredError(expires int64) *StandardError {
	return newError(ErrCodeEnvelopeExpired, "Envelope has expired", fmt.Sprintf("expires: %d", expires), false)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternalError, "Unexpected error", err.Error(), false)
}

// ==========================
// 4. Mapping Helpers
// ==========================

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeProfileValidationFailed:     "PROFILE_VALIDATION_FAILED",
	ErrCodeScoringConfigurationInvalid: "SCORING_CONFIGURATION_INVALID",
	ErrCodeProfileNotFound:             "PROFILE_NOT_FOUND",
	ErrCodeProfileLookupFailed:         "PROFILE_LOOKUP_FAILED",
	ErrCodeProfileLookupTimeout:        "PROFILE_LOOKUP_TIMEOUT",
	ErrCodeCacheUnavailable:            "CACHE_UNAVAILABLE",
	ErrCodeParseError:                  "PARSE_ERROR",
	ErrCodeEnvelopeExpired:             "ENVELOPE_EXPIRED",
	ErrCodeInternalError:               "INTERNAL_ERROR",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProfileLookupFailed,
		ErrCodeCacheUnavailable:
		return 3

	case ErrCodeProfileLookupTimeout:
		return 2

	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "PARSE") || strings.Contains(codeStr, "ENVELOPE"):
		return "VALIDATION"
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "LOOKUP") || strings.Contains(codeStr, "NOT_FOUND"):
		return "DIRECTORY"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	default:
		return "INTERNAL"
	}
}

// HTTPStatus maps an error code onto the status the REST adapter answers with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeProfileValidationFailed, ErrCodeParseError:
		return http.StatusBadRequest
	case ErrCodeScoringConfigurationInvalid:
		return http.StatusUnprocessableEntity
	case ErrCodeProfileNotFound:
		return http.StatusNotFound
	case ErrCodeEnvelopeExpired:
		return http.StatusGone
	case ErrCodeProfileLookupFailed, ErrCodeCacheUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeProfileLookupTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
