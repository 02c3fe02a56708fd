package strix

import (
	"github.com/cronokirby/strix/internal/strix/circuit"
	"github.com/cronokirby/strix/internal/strix/core"
	"github.com/cronokirby/strix/internal/strix/kernel"
)

// FieldElement is an element of a prime field.
type FieldElement = core.FieldElement

// Field is a prime field.
type Field = core.Field

// Program is an immutable sequence of ops.
type Program = kernel.Program

// Op is a single instruction.
type Op = kernel.Op

// StackOp is an operation confined to one stack.
type StackOp = kernel.StackOp

// FieldOp is a field arithmetic operation.
type FieldOp = kernel.FieldOp

// WhichStack names one of the two stacks.
type WhichStack = kernel.WhichStack

// Wire is a circuit variable.
type Wire = circuit.Wire

// Circuit is the constraint system built by the Inside stack.
type Circuit = circuit.Circuit[*FieldElement]

// Digest is the Poseidon hash of a program.
type Digest = kernel.Digest

const (
	Inside  = kernel.Inside
	Outside = kernel.Outside
)

const (
	Zero = kernel.Zero
	One  = kernel.One
	Add  = kernel.Add
	Neg  = kernel.Neg
	Mul  = kernel.Mul
	Inv  = kernel.Inv
)

var (
	// Apply wraps a field op as a stack op.
	Apply = kernel.Apply
	// Copy pushes a copy of the element n positions below the top.
	Copy = kernel.Copy
	// Drop discards the top n elements.
	Drop = kernel.Drop
	// On targets a stack op at one stack.
	On = kernel.On
	// Move transfers the top n elements between stacks.
	Move = kernel.Move

	// NewProgram builds a program from ops.
	NewProgram = kernel.NewProgram
	// EncodeProgram returns the binary encoding of a program.
	EncodeProgram = kernel.Encode
	// MarshalProgram wraps the encoding in a checksummed container.
	MarshalProgram = kernel.MarshalFile
	// ProgramDigest hashes a program.
	ProgramDigest = kernel.ComputeDigest
)

// ParseProgram reads the text assembly format.
func ParseProgram(src string) (Program, error) {
	p, err := kernel.Parse(src)
	if err != nil {
		return Program{}, wrapError(err)
	}
	return p, nil
}

// DecodeProgram parses a binary program, either a bare encoding or a
// checksummed container.
func DecodeProgram(data []byte) (Program, error) {
	var (
		p   Program
		err error
	)
	if kernel.IsFile(data) {
		p, err = kernel.UnmarshalFile(data)
	} else {
		p, err = kernel.Decode(data)
	}
	if err != nil {
		return Program{}, wrapError(err)
	}
	return p, nil
}
