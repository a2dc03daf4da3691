package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used as targets for errors.Is. Each typed error below
// unwraps to exactly one of these, which is what the HTTP layer keys its
// status-code mapping on.
var (
	ErrObjectNotFound    = errors.New("object not found")
	ErrValueIsInvalid    = errors.New("value is invalid")
	ErrValueIsOutOfRange = errors.New("value is out of range")
	ErrValueIsRequired   = errors.New("value is required")
	ErrVersionIsInvalid  = errors.New("version is invalid")
	ErrConflict          = errors.New("state conflict")
	ErrForbidden         = errors.New("operation is forbidden")
	ErrUpstream          = errors.New("upstream call failed")
	ErrQuotationExpired  = errors.New("quotation expired")
)

// sanitize collapses newlines so a multi-line value cannot break log lines.
func sanitize(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

// ObjectNotFoundError indicates that an object could not be located by its identifier.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

// NewObjectNotFoundError creates an ObjectNotFoundError without a cause.
func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

// NewObjectNotFoundErrorWithCause creates an ObjectNotFoundError wrapping an underlying cause.
func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%v: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause))
	}
	return sanitize(fmt.Sprintf("%v: %s", ErrObjectNotFound, e.ID))
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError indicates that a supplied value failed validation.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

// NewValueIsInvalidError creates a ValueIsInvalidError without a cause.
func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

// NewValueIsInvalidErrorWithCause creates a ValueIsInvalidError wrapping an underlying cause.
func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%v: %s (cause: %v)", ErrValueIsInvalid, e.ParamName, e.Cause))
	}
	return sanitize(fmt.Sprintf("%v: %s", ErrValueIsInvalid, e.ParamName))
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError indicates that a value fell outside its allowed bounds.
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

// NewValueIsOutOfRangeError creates a ValueIsOutOfRangeError without a cause.
func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

// NewValueIsOutOfRangeErrorWithCause creates a ValueIsOutOfRangeError wrapping an underlying cause.
func NewValueIsOutOfRangeErrorWithCause(
	paramName string, value, minValue, maxValue any, cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%v: %v is %s, min value is %v, max value is %v (cause: %v)",
			ErrValueIsInvalid, e.Value, e.ParamName, e.Min, e.Max, e.Cause))
	}
	return sanitize(fmt.Sprintf("%v: %v is %s, min value is %v, max value is %v",
		ErrValueIsInvalid, e.Value, e.ParamName, e.Min, e.Max))
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError indicates that a required value was missing.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

// NewValueIsRequiredError creates a ValueIsRequiredError without a cause.
func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

// NewValueIsRequiredErrorWithCause creates a ValueIsRequiredError wrapping an underlying cause.
func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%v: %s (cause: %v)", ErrValueIsRequired, e.ParamName, e.Cause))
	}
	return sanitize(fmt.Sprintf("%v: %s", ErrValueIsRequired, e.ParamName))
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// VersionIsInvalidError indicates an optimistic-concurrency version mismatch.
type VersionIsInvalidError struct {
	ParamName string
	Cause     error
}

// NewVersionIsInvalidError creates a VersionIsInvalidError wrapping an underlying cause.
func NewVersionIsInvalidError(paramName string, cause error) *VersionIsInvalidError {
	return &VersionIsInvalidError{ParamName: paramName, Cause: cause}
}

// NewVersionIsInvalidErrorWithCause creates a VersionIsInvalidError without a cause.
func NewVersionIsInvalidErrorWithCause(paramName string) *VersionIsInvalidError {
	return &VersionIsInvalidError{ParamName: paramName}
}

func (e *VersionIsInvalidError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%v: %s (cause: %v)", ErrVersionIsInvalid, e.ParamName, e.Cause))
	}
	return sanitize(fmt.Sprintf("%v: %s", ErrVersionIsInvalid, e.ParamName))
}

func (e *VersionIsInvalidError) Unwrap() error {
	return ErrVersionIsInvalid
}

// ConflictError indicates that an operation contradicts the current state of
// an aggregate, e.g. placing a courier order twice or editing after pickup.
type ConflictError struct {
	Reason string
	Cause  error
}

// NewConflictError creates a ConflictError without a cause.
func NewConflictError(reason string) *ConflictError {
	return &ConflictError{Reason: reason}
}

// NewConflictErrorWithCause creates a ConflictError wrapping an underlying cause.
func NewConflictErrorWithCause(reason string, cause error) *ConflictError {
	return &ConflictError{Reason: reason, Cause: cause}
}

func (e *ConflictError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%v: %s (cause: %v)", ErrConflict, e.Reason, e.Cause))
	}
	return sanitize(fmt.Sprintf("%v: %s", ErrConflict, e.Reason))
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// ForbiddenError indicates that the caller is not a party allowed to perform
// the operation.
type ForbiddenError struct {
	UserID string
	Reason string
}

// NewForbiddenError creates a ForbiddenError.
func NewForbiddenError(userID, reason string) *ForbiddenError {
	return &ForbiddenError{UserID: userID, Reason: reason}
}

func (e *ForbiddenError) Error() string {
	return sanitize(fmt.Sprintf("%v: user %s: %s", ErrForbidden, e.UserID, e.Reason))
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// UpstreamError indicates a transport failure or non-2xx response from an
// external dependency. Retryable reports whether the caller may retry the
// same call (timeouts, 429, 5xx).
type UpstreamError struct {
	Service   string
	Retryable bool
	Cause     error
}

// NewUpstreamError creates an UpstreamError wrapping an underlying cause.
func NewUpstreamError(service string, retryable bool, cause error) *UpstreamError {
	return &UpstreamError{Service: service, Retryable: retryable, Cause: cause}
}

func (e *UpstreamError) Error() string {
	return sanitize(fmt.Sprintf("%v: %s (cause: %v)", ErrUpstream, e.Service, e.Cause))
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}

// IsRetryableUpstream reports whether err is an UpstreamError marked retryable.
func IsRetryableUpstream(err error) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream) && upstream.Retryable
}

// QuotationExpiredError indicates that a courier quotation lapsed before the
// order could be placed; the caller must request a new quotation.
type QuotationExpiredError struct {
	QuotationID string
	Cause       error
}

// NewQuotationExpiredError creates a QuotationExpiredError.
func NewQuotationExpiredError(quotationID string, cause error) *QuotationExpiredError {
	return &QuotationExpiredError{QuotationID: quotationID, Cause: cause}
}

func (e *QuotationExpiredError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%v: %s (cause: %v)", ErrQuotationExpired, e.QuotationID, e.Cause))
	}
	return sanitize(fmt.Sprintf("%v: %s", ErrQuotationExpired, e.QuotationID))
}

func (e *QuotationExpiredError) Unwrap() error {
	return ErrQuotationExpired
}
