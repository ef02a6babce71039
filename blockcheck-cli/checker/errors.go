package checker

import (
	"fmt"
)

// Error represents a blockcheck-specific error with a code and description
type Error struct {
	Code        string
	Description string
	Cause       error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Description, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Description)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewCheckError creates a new Error with the given code and description
func NewCheckError(code, description string, cause error) *Error {
	return &Error{
		Code:        code,
		Description: description,
		Cause:       cause,
	}
}

// Check Error Codes
const (
	// Configuration and Initialization Errors (E1000-E1999)
	ErrCodeIncompleteRequestFlags = "E1001"
	ErrCodeNoInputMethod          = "E1002"
	ErrCodeUnsupportedConfig      = "E1003"
	ErrCodeRuleSourceLoadFailed   = "E1004"
	ErrCodeHostListLoadFailed     = "E1005"
	ErrCodeEngineInitFailed       = "E1006"
	ErrCodeHistoryInitFailed      = "E1007"

	// Batch Input Errors (E2000-E2999)
	ErrCodeRequestsOpenFailed = "E2001"
	ErrCodeMalformedInput     = "E2002"
	ErrCodeMissingField       = "E2003"
	ErrCodeInputReadFailed    = "E2004"

	// Engine Query Errors (E3000-E3999)
	ErrCodeInvalidRequestURL = "E3001"
	ErrCodeEngineQueryFailed = "E3002"

	// History Errors (E4000-E4999)
	ErrCodeHistoryWriteFailed = "E4001"
	ErrCodeHistoryQueryFailed = "E4002"
)
