/*
Package neterr defines the closed set of error kinds produced by the contract
call pipeline. Every error carries its Kind and the Step at which it occurred,
so callers can branch with errors.Is/errors.As instead of matching messages.
*/
package neterr

import (
	"errors"
	"fmt"
)

// Kind is an error category.
type Kind byte

// Error kinds.
const (
	KindUnknown Kind = iota
	KindConfig
	KindInvalidInput
	KindNetwork
	KindAccessKeyNotFound
	KindEncoding
	KindInvalidKeyMaterial
	KindResponseDecode
)

// Step is a pipeline stage an error is attributed to.
type Step byte

// Pipeline steps.
const (
	StepNone Step = iota
	StepLoadConfig
	StepValidateInput
	StepResolveNonce
	StepResolveBlockHash
	StepBuildAndSign
	StepBroadcast
	StepQuery
)

// Error is a kind- and step-tagged error wrapping the underlying cause.
type Error struct {
	Kind Kind
	Step Step
	Err  error
}

// Sentinel errors, one per kind. They match any *Error of the same kind via
// errors.Is regardless of step and cause.
var (
	ErrConfig             = &Error{Kind: KindConfig}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrNetwork            = &Error{Kind: KindNetwork}
	ErrAccessKeyNotFound  = &Error{Kind: KindAccessKeyNotFound}
	ErrEncoding           = &Error{Kind: KindEncoding}
	ErrInvalidKeyMaterial = &Error{Kind: KindInvalidKeyMaterial}
	ErrResponseDecode     = &Error{Kind: KindResponseDecode}
)

var kindNames = map[Kind]string{
	KindUnknown:            "unknown error",
	KindConfig:             "configuration error",
	KindInvalidInput:       "invalid input",
	KindNetwork:            "network error",
	KindAccessKeyNotFound:  "access key not found",
	KindEncoding:           "encoding error",
	KindInvalidKeyMaterial: "invalid key material",
	KindResponseDecode:     "response decode error",
}

var stepNames = map[Step]string{
	StepNone:             "",
	StepLoadConfig:       "load config",
	StepValidateInput:    "validate input",
	StepResolveNonce:     "resolve nonce",
	StepResolveBlockHash: "resolve block hash",
	StepBuildAndSign:     "build and sign",
	StepBroadcast:        "broadcast",
	StepQuery:            "query",
}

// String implements the fmt.Stringer interface.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", byte(k))
}

// String implements the fmt.Stringer interface.
func (s Step) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return fmt.Sprintf("step(%d)", byte(s))
}

// New creates an Error of the given kind and step wrapping err.
func New(kind Kind, step Step, err error) *Error {
	return &Error{Kind: kind, Step: step, Err: err}
}

// Newf is like New, but creates the cause from the format string.
func Newf(kind Kind, step Step, format string, args ...any) *Error {
	return New(kind, step, fmt.Errorf(format, args...))
}

// Error implements the error interface.
func (e *Error) Error() string {
	var prefix = e.Kind.String()
	if e.Step != StepNone {
		prefix = e.Step.String() + ": " + prefix
	}
	if e.Err == nil {
		return prefix
	}
	return prefix + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind. A target with a
// non-zero Step additionally requires the step to match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Step == StepNone || t.Step == e.Step)
}

// WithStep returns err attributed to the given step. An *Error that has no
// step yet gets it assigned (the original is not modified), other errors are
// wrapped as KindUnknown.
func WithStep(err error, step Step) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Step != StepNone {
			return err
		}
		return &Error{Kind: e.Kind, Step: step, Err: e.Err}
	}
	return &Error{Kind: KindUnknown, Step: step, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// StepOf returns the Step of the first *Error in err's chain or StepNone.
func StepOf(err error) Step {
	var e *Error
	if errors.As(err, &e) {
		return e.Step
	}
	return StepNone
}
