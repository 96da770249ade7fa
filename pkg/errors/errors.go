package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Configuration and usage errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"
	ErrUsage       ErrorCode = "USAGE"
	ErrSearchRoot  ErrorCode = "SEARCH_ROOT"

	// Template errors
	ErrTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrTemplateParse    ErrorCode = "TEMPLATE_PARSE"
	ErrUndefinedVar     ErrorCode = "UNDEFINED_VARIABLE"
	ErrRender           ErrorCode = "RENDER"

	// Variable resolution errors
	ErrResolverValidation ErrorCode = "RESOLVER_VALIDATION"
	ErrResolverInput      ErrorCode = "RESOLVER_INPUT"

	// External process errors
	ErrConnection   ErrorCode = "CONNECTION"
	ErrProbe        ErrorCode = "PROBE"
	ErrExternalTool ErrorCode = "EXTERNAL_TOOL"
	ErrDiscovery    ErrorCode = "DISCOVERY"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileCreate ErrorCode = "FILE_CREATE"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
)

// IsnaError represents a structured error with code and details
type IsnaError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *IsnaError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *IsnaError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *IsnaError) Is(target error) bool {
	var targetErr *IsnaError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new IsnaError with the given code and message
func New(code ErrorCode, message string) *IsnaError {
	return &IsnaError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new IsnaError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *IsnaError {
	return &IsnaError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an IsnaError
func Wrap(err error, code ErrorCode, message string) *IsnaError {
	if err == nil {
		return nil
	}
	return &IsnaError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *IsnaError {
	if err == nil {
		return nil
	}
	return &IsnaError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *IsnaError) WithDetail(key string, value interface{}) *IsnaError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *IsnaError) WithDetails(details map[string]interface{}) *IsnaError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var isnaErr *IsnaError
	if errors.As(err, &isnaErr) {
		return isnaErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not an IsnaError
func GetErrorCode(err error) ErrorCode {
	var isnaErr *IsnaError
	if errors.As(err, &isnaErr) {
		return isnaErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not an IsnaError
func GetErrorDetails(err error) map[string]interface{} {
	var isnaErr *IsnaError
	if errors.As(err, &isnaErr) {
		return isnaErr.Details
	}
	return nil
}

// GetErrorDetail returns a single detail value, or nil if absent
func GetErrorDetail(err error, key string) interface{} {
	details := GetErrorDetails(err)
	if details == nil {
		return nil
	}
	return details[key]
}

// Describe renders an error for the terminal: the message, the wrapped cause
// and any details, without the bracketed code.
func Describe(err error) string {
	var isnaErr *IsnaError
	if !errors.As(err, &isnaErr) {
		return err.Error()
	}
	var b strings.Builder
	b.WriteString(isnaErr.Message)
	if isnaErr.Wrapped != nil {
		b.WriteString(": ")
		b.WriteString(Describe(isnaErr.Wrapped))
	}
	keys := make([]string, 0, len(isnaErr.Details))
	for k := range isnaErr.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n  %s: %v", k, isnaErr.Details[k])
	}
	return b.String()
}
