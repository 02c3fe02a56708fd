package kernel

import (
	"fmt"
	"strings"
)

// Program is an immutable sequence of operations.
type Program struct {
	ops []Op
}

// NewProgram copies ops into a new program.
func NewProgram(ops ...Op) Program {
	p := Program{ops: make([]Op, len(ops))}
	copy(p.ops, ops)
	return p
}

// Len returns the number of operations.
func (p Program) Len() int {
	return len(p.ops)
}

// At returns the ith operation.
func (p Program) At(i int) Op {
	return p.ops[i]
}

// Ops returns a copy of the operations.
func (p Program) Ops() []Op {
	out := make([]Op, len(p.ops))
	copy(out, p.ops)
	return out
}

// Append returns a new program with ops added at the end.
func (p Program) Append(ops ...Op) Program {
	out := Program{ops: make([]Op, 0, len(p.ops)+len(ops))}
	out.ops = append(out.ops, p.ops...)
	out.ops = append(out.ops, ops...)
	return out
}

// Equal reports whether both programs contain the same operations.
func (p Program) Equal(q Program) bool {
	if len(p.ops) != len(q.ops) {
		return false
	}
	for i := range p.ops {
		if p.ops[i] != q.ops[i] {
			return false
		}
	}
	return true
}

// Validate checks every operation.
func (p Program) Validate() error {
	for i, op := range p.ops {
		if err := op.Validate(); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
	}
	return nil
}

// String renders the program in assembly syntax, one op per line.
func (p Program) String() string {
	var sb strings.Builder
	for _, op := range p.ops {
		sb.WriteString(op.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
