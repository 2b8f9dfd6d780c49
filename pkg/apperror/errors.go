// Package apperror provides a structured way to handle NetGraph errors
// with specific codes, severity levels, and additional details. It also
// includes utilities for converting to gRPC status errors, the wire-shape
// the rest of the codebase's error types use even where no gRPC server is
// present.
package apperror

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorCode represents a specific application error code.
type ErrorCode string

const (
	// Validation: malformed policy, unresolved regex, duplicate ids at build.
	CodeInvalidPolicy      ErrorCode = "INVALID_POLICY"
	CodeInvalidOperator    ErrorCode = "INVALID_OPERATOR"
	CodeInvalidRuleType    ErrorCode = "INVALID_RULE_TYPE"
	CodeMissingCount       ErrorCode = "MISSING_COUNT"
	CodeInvalidProbability ErrorCode = "INVALID_PROBABILITY"
	CodeInvalidRegex       ErrorCode = "INVALID_REGEX"
	CodeDuplicateNode      ErrorCode = "DUPLICATE_NODE"
	CodeDuplicateLink      ErrorCode = "DUPLICATE_LINK"
	CodeDanglingLink       ErrorCode = "DANGLING_LINK"
	CodeUnresolvedGroup    ErrorCode = "UNRESOLVED_GROUP"

	// Iteration: algorithmic precondition violated mid-run.
	CodeIterationFailed   ErrorCode = "ITERATION_FAILED"
	CodeDisconnectedSuper ErrorCode = "DISCONNECTED_SUPER"
	CodeNegativeCapacity  ErrorCode = "NEGATIVE_CAPACITY"
	CodeNegativeCost      ErrorCode = "NEGATIVE_COST"

	// Resource: worker pool / channel failures.
	CodeWorkerPoolExhausted ErrorCode = "WORKER_POOL_EXHAUSTED"
	CodeChannelClosed       ErrorCode = "CHANNEL_CLOSED"

	// General.
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	CodeCanceled        ErrorCode = "CANCELED"
)

// Severity defines the criticality level of an error.
type Severity int

const (
	// SeverityWarning indicates a non-critical issue, e.g. a zero-capacity pair.
	SeverityWarning Severity = iota
	// SeverityError indicates a standard error that requires attention.
	SeverityError
	// SeverityCritical indicates a fatal error that aborts the engine run.
	SeverityCritical
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Error is a custom error type that includes an ErrorCode, message,
// an optional field, additional details, an underlying cause, and a severity level.
type Error struct {
	Code     ErrorCode      // Code is a unique identifier for the type of error.
	Message  string         // Message is a human-readable description of the error.
	Field    string         // Field indicates which input field caused the error, if applicable.
	Details  map[string]any // Details provides additional structured information about the error.
	Cause    error          // Cause is the underlying error that triggered this application error.
	Severity Severity       // Severity indicates the criticality level of the error.
}

// Error implements the error interface, returning a string representation of the error.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error, allowing for error chain introspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// GRPCStatus converts the application error into a gRPC status.Status.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.grpcCode(), e.Message)
}

// grpcCode maps an ErrorCode to an appropriate gRPC codes.Code.
func (e *Error) grpcCode() codes.Code {
	switch e.Code {
	case CodeInvalidPolicy, CodeInvalidOperator, CodeInvalidRuleType, CodeMissingCount,
		CodeInvalidProbability, CodeInvalidRegex, CodeDuplicateNode, CodeDuplicateLink,
		CodeDanglingLink, CodeInvalidArgument, CodeNegativeCapacity, CodeNegativeCost:
		return codes.InvalidArgument

	case CodeUnresolvedGroup, CodeDisconnectedSuper:
		return codes.FailedPrecondition

	case CodeNotFound:
		return codes.NotFound

	case CodeCanceled:
		return codes.Canceled

	case CodeWorkerPoolExhausted, CodeChannelClosed, CodeIterationFailed:
		return codes.Aborted

	default:
		return codes.Internal
	}
}

// New creates a new application error with the given code and message.
// The default severity is SeverityError.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// NewWarning creates a new application error with SeverityWarning.
func NewWarning(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityWarning,
	}
}

// NewCritical creates a new application error with SeverityCritical.
func NewCritical(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityCritical,
	}
}

// Wrap creates a new application error that wraps an existing error,
// providing additional context with a code and message.
// The default severity is SeverityError.
func Wrap(cause error, code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Cause:    cause,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// WithDetails adds a key-value pair to the error's details map and returns the modified error.
func (e *Error) WithDetails(key string, value any) *Error {
	e.Details[key] = value
	return e
}

// WithField sets the field associated with the error and returns the modified error.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// Is checks if the given error is an application error with a matching ErrorCode.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode from an error. If the error is not an *Error,
// it returns CodeInternal.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
