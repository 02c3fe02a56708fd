package machine

import (
	"errors"
	"fmt"

	"github.com/cronokirby/strix/internal/strix/kernel"
)

// ErrProgramTooLong is returned before execution when a program exceeds the
// machine's step limit.
var ErrProgramTooLong = errors.New("machine: program exceeds step limit")

// StackUnderflowError reports an operation needing more elements than the
// stack holds.
type StackUnderflowError struct {
	Stack     kernel.WhichStack
	Needed    int
	Available int
}

func (e *StackUnderflowError) Error() string {
	return fmt.Sprintf("stack underflow on %v stack: needed %d, available %d", e.Stack, e.Needed, e.Available)
}

// InvalidIndexError reports a Copy past the bottom of the stack.
type InvalidIndexError struct {
	Stack  kernel.WhichStack
	Index  int
	Length int
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("invalid index %d on %v stack of length %d", e.Index, e.Stack, e.Length)
}

// InversionOfZeroError reports Inv applied to the additive identity.
type InversionOfZeroError struct {
	Stack kernel.WhichStack
}

func (e *InversionOfZeroError) Error() string {
	return fmt.Sprintf("inversion of zero on %v stack", e.Stack)
}

// Direction is the source and destination of a Move.
type Direction struct {
	From, To kernel.WhichStack
}

func (d Direction) String() string {
	return fmt.Sprintf("%v -> %v", d.From, d.To)
}

// ConversionUnsupportedError reports a Move the backend cannot convert.
type ConversionUnsupportedError struct {
	Direction Direction
	Reason    string
}

func (e *ConversionUnsupportedError) Error() string {
	return fmt.Sprintf("conversion %v unsupported: %s", e.Direction, e.Reason)
}

// CircuitConstraintError reports the circuit backend rejecting an operation.
type CircuitConstraintError struct {
	Cause error
}

func (e *CircuitConstraintError) Error() string {
	return fmt.Sprintf("circuit rejected operation: %v", e.Cause)
}

func (e *CircuitConstraintError) Unwrap() error {
	return e.Cause
}

// ExecError is returned by Execute. It carries the index of the failing op.
type ExecError struct {
	Index int
	Op    kernel.Op
	Err   error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("op %d (%v): %v", e.Index, e.Op, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies execution errors.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindStackUnderflow
	KindInvalidIndex
	KindInversionOfZero
	KindConversionUnsupported
	KindCircuitConstraint
	KindInvalidOp
)

func (k ErrorKind) String() string {
	switch k {
	case KindStackUnderflow:
		return "stack underflow"
	case KindInvalidIndex:
		return "invalid index"
	case KindInversionOfZero:
		return "inversion of zero"
	case KindConversionUnsupported:
		return "conversion unsupported"
	case KindCircuitConstraint:
		return "circuit constraint failure"
	case KindInvalidOp:
		return "invalid op"
	default:
		return "unknown"
	}
}

// KindOf classifies err, looking through wrapping.
func KindOf(err error) ErrorKind {
	var (
		underflow  *StackUnderflowError
		index      *InvalidIndexError
		zero       *InversionOfZeroError
		conversion *ConversionUnsupportedError
		constraint *CircuitConstraintError
	)
	switch {
	case errors.As(err, &underflow):
		return KindStackUnderflow
	case errors.As(err, &index):
		return KindInvalidIndex
	case errors.As(err, &zero):
		return KindInversionOfZero
	case errors.As(err, &conversion):
		return KindConversionUnsupported
	case errors.As(err, &constraint):
		return KindCircuitConstraint
	case errors.Is(err, kernel.ErrUnknownTag):
		return KindInvalidOp
	default:
		return KindUnknown
	}
}
