package kernel

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"
)

// Elements encodes p as Goldilocks field elements: the op count, then a
// (tag word, operand) pair per op.
//
// The tag word packs kind<<24 | stack<<16 | sub<<8 | fieldop, where stack
// and sub are (target, stack op kind) for stack ops and (from, to) for moves.
func Elements(p Program) []field.Element {
	out := make([]field.Element, 0, 1+2*p.Len())
	out = append(out, field.New(uint64(p.Len())))
	for _, op := range p.ops {
		var word, operand uint64
		switch op.Kind {
		case OpStack:
			word = uint64(op.Kind)<<24 | uint64(op.Stack)<<16 |
				uint64(op.StackOp.Kind)<<8 | uint64(op.StackOp.Field)
			operand = uint64(op.StackOp.N)
		case OpMove:
			word = uint64(op.Kind)<<24 | uint64(op.From)<<16 | uint64(op.To)<<8
			operand = uint64(op.N)
		}
		out = append(out, field.New(word), field.New(operand))
	}
	return out
}

// Digest is the Poseidon hash of a program, used to attest which program
// produced a circuit.
type Digest field.Element

// ComputeDigest hashes Elements(p).
func ComputeDigest(p Program) Digest {
	return Digest(hash.PoseidonHash(Elements(p)))
}

// Element returns the digest as a field element.
func (d Digest) Element() field.Element {
	return field.Element(d)
}

func (d Digest) String() string {
	return fmt.Sprintf("%016x", field.Element(d).Value())
}
