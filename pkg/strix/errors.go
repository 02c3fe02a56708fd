package strix

import (
	"errors"
	"fmt"

	"github.com/cronokirby/strix/internal/strix/circuit"
	"github.com/cronokirby/strix/internal/strix/kernel"
	"github.com/cronokirby/strix/internal/strix/machine"
)

// ErrorCode classifies a StrixError.
type ErrorCode int

const (
	// ErrUnknown represents an unclassified error
	ErrUnknown ErrorCode = iota

	// ErrInvalidConfig represents an invalid configuration
	ErrInvalidConfig

	// ErrFieldCreation represents a modulus that does not define a prime field
	ErrFieldCreation

	// ErrInvalidProgram represents a program that could not be decoded or parsed
	ErrInvalidProgram

	// ErrStepLimit represents a program longer than the configured step limit
	ErrStepLimit

	// ErrStackUnderflow represents an op needing more elements than a stack holds
	ErrStackUnderflow

	// ErrInvalidIndex represents a copy past the bottom of a stack
	ErrInvalidIndex

	// ErrInversionOfZero represents an inversion of zero on either stack
	ErrInversionOfZero

	// ErrConversionUnsupported represents a move the circuit cannot convert
	ErrConversionUnsupported

	// ErrCircuitConstraint represents a circuit rejecting an operation or an
	// unsatisfied constraint system
	ErrCircuitConstraint

	// ErrInvalidInput represents an input value outside the field
	ErrInvalidInput
)

var codeNames = map[ErrorCode]string{
	ErrUnknown:               "unknown",
	ErrInvalidConfig:         "invalid config",
	ErrFieldCreation:         "field creation",
	ErrInvalidProgram:        "invalid program",
	ErrStepLimit:             "step limit",
	ErrStackUnderflow:        "stack underflow",
	ErrInvalidIndex:          "invalid index",
	ErrInversionOfZero:       "inversion of zero",
	ErrConversionUnsupported: "conversion unsupported",
	ErrCircuitConstraint:     "circuit constraint",
	ErrInvalidInput:          "invalid input",
}

func (c ErrorCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// StrixError is the error type returned by the public API.
type StrixError struct {
	Code    ErrorCode
	Message string
	// OpIndex is the index of the failing op, or -1.
	OpIndex int
	Cause   error
}

// Error returns the error message
func (e *StrixError) Error() string {
	msg := e.Message
	if e.OpIndex >= 0 {
		msg = fmt.Sprintf("%s at op %d", msg, e.OpIndex)
	}
	if e.Cause != nil {
		return fmt.Sprintf("strix error [%v]: %s (caused by: %v)", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("strix error [%v]: %s", e.Code, msg)
}

// Unwrap returns the cause of the error
func (e *StrixError) Unwrap() error {
	return e.Cause
}

// Is matches any *StrixError with the same code.
func (e *StrixError) Is(target error) bool {
	t, ok := target.(*StrixError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Code returns the code of the first StrixError in err's chain, or
// ErrUnknown.
func Code(err error) ErrorCode {
	var se *StrixError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrUnknown
}

func newError(code ErrorCode, msg string, cause error) *StrixError {
	return &StrixError{Code: code, Message: msg, OpIndex: -1, Cause: cause}
}

var kindCodes = map[machine.ErrorKind]ErrorCode{
	machine.KindStackUnderflow:        ErrStackUnderflow,
	machine.KindInvalidIndex:          ErrInvalidIndex,
	machine.KindInversionOfZero:       ErrInversionOfZero,
	machine.KindConversionUnsupported: ErrConversionUnsupported,
	machine.KindCircuitConstraint:     ErrCircuitConstraint,
	machine.KindInvalidOp:             ErrInvalidProgram,
}

// wrapError converts an internal error into a *StrixError.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	var ee *machine.ExecError
	switch {
	case errors.As(err, &ee):
		code, ok := kindCodes[machine.KindOf(ee)]
		if !ok {
			code = ErrUnknown
		}
		return &StrixError{Code: code, Message: "execution failed", OpIndex: ee.Index, Cause: err}
	case errors.Is(err, machine.ErrProgramTooLong):
		return newError(ErrStepLimit, "program rejected", err)
	case errors.Is(err, circuit.ErrConstraintFailed):
		return newError(ErrCircuitConstraint, "circuit not satisfied", err)
	case errors.Is(err, kernel.ErrCorrupt),
		errors.Is(err, kernel.ErrChecksum),
		errors.Is(err, kernel.ErrVersion),
		errors.Is(err, kernel.ErrUnknownTag),
		errors.Is(err, kernel.ErrSyntax):
		return newError(ErrInvalidProgram, "invalid program", err)
	default:
		return newError(ErrUnknown, "unexpected failure", err)
	}
}
