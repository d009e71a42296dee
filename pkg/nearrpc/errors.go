package nearrpc

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Error names reported by the node in the "name" field.
const (
	RequestValidationError = "REQUEST_VALIDATION_ERROR"
	HandlerError           = "HANDLER_ERROR"
	InternalError          = "INTERNAL_ERROR"
)

// Error causes reported by the node in the "cause.name" field.
const (
	CauseUnknownAccessKey    = "UNKNOWN_ACCESS_KEY"
	CauseUnknownAccount      = "UNKNOWN_ACCOUNT"
	CauseUnknownTransaction  = "UNKNOWN_TRANSACTION"
	CauseInvalidTransaction  = "INVALID_TRANSACTION"
	CauseTimeoutError        = "TIMEOUT_ERROR"
	CauseContractExecution   = "CONTRACT_EXECUTION_ERROR"
	CauseParseError          = "PARSE_ERROR"
	CauseNoSyncedBlocks      = "NO_SYNCED_BLOCKS"
	CauseUnknownBlock        = "UNKNOWN_BLOCK"
	CauseInternalErrorReason = "INTERNAL_ERROR"
)

// ErrorCause is a structured reason of the Error.
type ErrorCause struct {
	Name string          `json:"name"`
	Info json.RawMessage `json:"info,omitempty"`
}

// Error represents JSON-RPC error returned by the node. Besides the standard
// code/message/data triplet NEAR nodes set name and cause, those are the
// reliable way to tell one error from another.
type Error struct {
	Name    string          `json:"name,omitempty"`
	Cause   *ErrorCause     `json:"cause,omitempty"`
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// NewError creates a handler error with the given cause, it's mostly useful
// for server implementations.
func NewError(cause string, message string) *Error {
	return &Error{
		Name:    HandlerError,
		Cause:   &ErrorCause{Name: cause},
		Code:    -32000,
		Message: message,
	}
}

// CauseName returns the name of the error cause or an empty string.
func (e *Error) CauseName() string {
	if e.Cause == nil {
		return ""
	}
	return e.Cause.Name
}

// HasCause checks whether the error was caused by the given reason.
func (e *Error) HasCause(cause string) bool {
	return e.CauseName() == cause
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if n := e.CauseName(); n != "" {
		fmt.Fprintf(&b, " (%s)", n)
	} else if e.Name != "" {
		fmt.Fprintf(&b, " (%s)", e.Name)
	}
	if len(e.Data) != 0 {
		var s string
		if json.Unmarshal(e.Data, &s) == nil {
			if s != "" {
				b.WriteString(": " + s)
			}
		} else {
			b.WriteString(": " + string(e.Data))
		}
	}
	return fmt.Sprintf("RPC error %d: %s", e.Code, b.String())
}

// Is denotes whether the error matches the target one. Errors match when
// they have the same name and cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Name == t.Name && e.CauseName() == t.CauseName()
}
