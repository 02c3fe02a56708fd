package core

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// Arithmetic is the capability a stack element type needs so field
// operations can run over it.
//
// TryInv reports false at the additive identity; implementations must never
// return an undefined value there.
type Arithmetic[F any] interface {
	Zero() F
	One() F
	Add(a, b F) F
	Neg(a F) F
	Mul(a, b F) F
	TryInv(a F) (F, bool)
	Equal(a, b F) bool
}

var (
	_ Arithmetic[*FieldElement] = (*Field)(nil)
	_ Arithmetic[field.Element] = Goldilocks{}
)

// Goldilocks is the arithmetic of vybium-crypto's 64-bit prime field.
// It avoids big.Int allocation on the hot path.
type Goldilocks struct{}

func (Goldilocks) Zero() field.Element { return field.Zero }

func (Goldilocks) One() field.Element { return field.One }

func (Goldilocks) Add(a, b field.Element) field.Element { return a.Add(b) }

func (Goldilocks) Neg(a field.Element) field.Element { return a.Neg() }

func (Goldilocks) Mul(a, b field.Element) field.Element { return a.Mul(b) }

func (Goldilocks) TryInv(a field.Element) (field.Element, bool) {
	if a.IsZero() {
		return field.Zero, false
	}
	return a.Inverse(), true
}

func (Goldilocks) Equal(a, b field.Element) bool { return a.Equal(b) }

// FromGoldilocks lifts a Goldilocks element into DefaultField.
func FromGoldilocks(e field.Element) *FieldElement {
	return DefaultField.NewElementFromUint64(e.Value())
}

// ToGoldilocks lowers an element of DefaultField.
func ToGoldilocks(fe *FieldElement) field.Element {
	return field.New(fe.Big().Uint64())
}
