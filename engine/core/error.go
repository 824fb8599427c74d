package core

import "fmt"

// Error codes
const (
	ErrCodeMalformedEncoding = "MALFORMED_ENCODING"
	ErrCodeInvalidWorkspace  = "INVALID_WORKSPACE"
	ErrCodeInvalidPattern    = "INVALID_PATTERN"
)

// HealError represents errors raised by the healing engine and its
// collaborators. The code travels with the message so callers can report
// failures without string matching.
type HealError struct {
	Code    string
	Message string
}

func (e *HealError) Error() string {
	return e.Message
}

// NewError creates a new HealError with the given code and message.
func NewError(code, message string) *HealError {
	return &HealError{Code: code, Message: message}
}

// NewErrorf creates a new HealError with the given code and formatted message.
func NewErrorf(code, format string, args ...any) *HealError {
	return &HealError{Code: code, Message: fmt.Sprintf(format, args...)}
}
