// Package kernel defines the strix instruction set.
//
// The bytecode has two stacks: one for the in-circuit computation (Inside)
// and one for the out-of-circuit computation (Outside). A program is a
// straight-line sequence of operations with no branches, loops or calls.
package kernel

import (
	"fmt"
)

// WhichStack selects the stack an operation targets.
type WhichStack uint8

const (
	// Inside holds circuit wires.
	Inside WhichStack = iota
	// Outside holds concrete field elements.
	Outside
)

// Other returns the opposite stack.
func (s WhichStack) Other() WhichStack {
	if s == Inside {
		return Outside
	}
	return Inside
}

func (s WhichStack) Valid() bool {
	return s == Inside || s == Outside
}

func (s WhichStack) String() string {
	switch s {
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	default:
		return fmt.Sprintf("WhichStack(%d)", uint8(s))
	}
}

// FieldOp is an arithmetic operation on the top of a stack.
type FieldOp uint8

const (
	// Zero: [..] -> [.., 0]
	Zero FieldOp = iota
	// One: [..] -> [.., 1]
	One
	// Add: [.., a, b] -> [.., a + b]
	Add
	// Neg: [.., a] -> [.., -a]
	Neg
	// Mul: [.., a, b] -> [.., a * b]
	Mul
	// Inv: [.., a] -> [.., a⁻¹]
	Inv
)

var fieldOpNames = [...]string{
	Zero: "zero",
	One:  "one",
	Add:  "add",
	Neg:  "neg",
	Mul:  "mul",
	Inv:  "inv",
}

func (op FieldOp) Valid() bool {
	return int(op) < len(fieldOpNames)
}

func (op FieldOp) String() string {
	if !op.Valid() {
		return fmt.Sprintf("FieldOp(%d)", uint8(op))
	}
	return fieldOpNames[op]
}

// Arity is the number of elements the operation pops.
func (op FieldOp) Arity() int {
	switch op {
	case Add, Mul:
		return 2
	case Neg, Inv:
		return 1
	default:
		return 0
	}
}

// StackOpKind tags the StackOp variant.
type StackOpKind uint8

const (
	KindField StackOpKind = iota
	KindCopy
	KindDrop
)

// StackOp manipulates a single stack.
//
// For KindField, Field is the operation. For KindCopy, N is the depth of
// the element copied onto the top (0 = top). For KindDrop, N is the number
// of elements removed.
type StackOp struct {
	Kind  StackOpKind
	Field FieldOp
	N     uint32
}

// Apply returns a StackOp applying a field operation.
func Apply(op FieldOp) StackOp {
	return StackOp{Kind: KindField, Field: op}
}

// Copy returns a StackOp copying the nth element onto the top.
func Copy(n uint32) StackOp {
	return StackOp{Kind: KindCopy, N: n}
}

// Drop returns a StackOp removing the top n elements.
func Drop(n uint32) StackOp {
	return StackOp{Kind: KindDrop, N: n}
}

func (op StackOp) Validate() error {
	switch op.Kind {
	case KindField:
		if !op.Field.Valid() {
			return fmt.Errorf("%w: field op %d", ErrUnknownTag, op.Field)
		}
		if op.N != 0 {
			return fmt.Errorf("field op %v has operand %d", op.Field, op.N)
		}
	case KindCopy, KindDrop:
		if op.Field != 0 {
			return fmt.Errorf("stack op kind %d has field op %v", op.Kind, op.Field)
		}
	default:
		return fmt.Errorf("%w: stack op kind %d", ErrUnknownTag, op.Kind)
	}
	return nil
}

func (op StackOp) String() string {
	switch op.Kind {
	case KindField:
		return op.Field.String()
	case KindCopy:
		return fmt.Sprintf("copy %d", op.N)
	case KindDrop:
		return fmt.Sprintf("drop %d", op.N)
	default:
		return fmt.Sprintf("StackOp(%d)", uint8(op.Kind))
	}
}

// OpKind tags the Op variant.
type OpKind uint8

const (
	OpStack OpKind = iota + 1
	OpMove
)

// Op is a single bytecode operation.
//
// An OpStack applies StackOp to Stack. An OpMove transfers the top N
// elements of From onto To, keeping their relative order.
// Build values with On and Move so that unused fields stay zero and ops
// compare with ==.
type Op struct {
	Kind    OpKind
	Stack   WhichStack
	StackOp StackOp

	N        uint32
	From, To WhichStack
}

// On returns an op applying s to the given stack.
func On(which WhichStack, s StackOp) Op {
	return Op{Kind: OpStack, Stack: which, StackOp: s}
}

// Move returns an op moving n elements between stacks.
func Move(n uint32, from, to WhichStack) Op {
	return Op{Kind: OpMove, N: n, From: from, To: to}
}

// Validate checks that every tag is in range and unused fields are zero.
func (op Op) Validate() error {
	switch op.Kind {
	case OpStack:
		if !op.Stack.Valid() {
			return fmt.Errorf("%w: stack %d", ErrUnknownTag, op.Stack)
		}
		if op.N != 0 || op.From != 0 || op.To != 0 {
			return fmt.Errorf("stack op carries move operands")
		}
		return op.StackOp.Validate()
	case OpMove:
		if !op.From.Valid() || !op.To.Valid() {
			return fmt.Errorf("%w: move %d -> %d", ErrUnknownTag, op.From, op.To)
		}
		if op.Stack != 0 || op.StackOp != (StackOp{}) {
			return fmt.Errorf("move carries stack op operands")
		}
		return nil
	default:
		return fmt.Errorf("%w: op kind %d", ErrUnknownTag, op.Kind)
	}
}

func (op Op) String() string {
	switch op.Kind {
	case OpStack:
		return op.Stack.String() + " " + op.StackOp.String()
	case OpMove:
		return fmt.Sprintf("move %d %v %v", op.N, op.From, op.To)
	default:
		return fmt.Sprintf("Op(%d)", uint8(op.Kind))
	}
}
