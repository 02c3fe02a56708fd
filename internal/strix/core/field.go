// Package core provides the field arithmetic used by the Outside stack and
// the witness side of circuits.
package core

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// ErrZeroInverse is returned, possibly wrapped, by anything asked to invert
// the additive identity.
var ErrZeroInverse = errors.New("inverse of zero")

// Field represents a prime field with modular arithmetic operations
type Field struct {
	modulus *big.Int
}

// FieldElement represents an element in the finite field
type FieldElement struct {
	field *Field
	value *big.Int
}

// NewField creates a new prime field with the given modulus
func NewField(modulus *big.Int) (*Field, error) {
	if modulus == nil || modulus.Cmp(big.NewInt(2)) < 0 {
		return nil, fmt.Errorf("modulus must be at least 2")
	}
	if !modulus.ProbablyPrime(20) {
		return nil, fmt.Errorf("modulus %s is not prime", modulus)
	}
	return &Field{modulus: new(big.Int).Set(modulus)}, nil
}

// NewFieldFromUint64 creates a new prime field with the given modulus
func NewFieldFromUint64(modulus uint64) (*Field, error) {
	return NewField(new(big.Int).SetUint64(modulus))
}

// ParseField creates a field from a decimal modulus string
func ParseField(modulus string) (*Field, error) {
	m, ok := new(big.Int).SetString(modulus, 10)
	if !ok {
		return nil, fmt.Errorf("invalid field modulus %q", modulus)
	}
	return NewField(m)
}

// Modulus returns the field modulus
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.modulus)
}

// NewElement creates a new field element from a big.Int
func (f *Field) NewElement(value *big.Int) *FieldElement {
	normalized := new(big.Int).Mod(value, f.modulus)
	return &FieldElement{
		field: f,
		value: normalized,
	}
}

// NewElementFromInt64 creates a new field element from an int64
func (f *Field) NewElementFromInt64(value int64) *FieldElement {
	return f.NewElement(big.NewInt(value))
}

// NewElementFromUint64 creates a new field element from a uint64
func (f *Field) NewElementFromUint64(value uint64) *FieldElement {
	return f.NewElement(new(big.Int).SetUint64(value))
}

// RandomElement generates a uniformly random field element
func (f *Field) RandomElement() (*FieldElement, error) {
	value, err := rand.Int(rand.Reader, f.modulus)
	if err != nil {
		return nil, fmt.Errorf("failed to generate random element: %w", err)
	}
	return f.NewElement(value), nil
}

// Zero returns the additive identity
func (f *Field) Zero() *FieldElement {
	return f.NewElement(big.NewInt(0))
}

// One returns the multiplicative identity
func (f *Field) One() *FieldElement {
	return f.NewElement(big.NewInt(1))
}

// Add returns a + b
func (f *Field) Add(a, b *FieldElement) *FieldElement {
	return a.Add(b)
}

// Neg returns -a
func (f *Field) Neg(a *FieldElement) *FieldElement {
	return a.Neg()
}

// Mul returns a * b
func (f *Field) Mul(a, b *FieldElement) *FieldElement {
	return a.Mul(b)
}

// TryInv returns a⁻¹, or false when a is zero
func (f *Field) TryInv(a *FieldElement) (*FieldElement, bool) {
	inv, err := a.Inv()
	if err != nil {
		return nil, false
	}
	return inv, true
}

// Equal reports whether a and b are the same element
func (f *Field) Equal(a, b *FieldElement) bool {
	return a.Equal(b)
}

// Equals reports whether two fields share a modulus
func (f *Field) Equals(other *Field) bool {
	return f.modulus.Cmp(other.modulus) == 0
}

// String returns the field description
func (f *Field) String() string {
	return fmt.Sprintf("F_%s", f.modulus)
}

// Big returns the value as a big.Int
func (fe *FieldElement) Big() *big.Int {
	return new(big.Int).Set(fe.value)
}

// Field returns the field this element belongs to
func (fe *FieldElement) Field() *Field {
	return fe.field
}

// Add performs field addition
func (fe *FieldElement) Add(other *FieldElement) *FieldElement {
	if !fe.field.Equals(other.field) {
		panic("cannot add elements from different fields")
	}
	result := new(big.Int).Add(fe.value, other.value)
	return fe.field.NewElement(result)
}

// Neg returns the additive inverse (negation) of the field element
func (fe *FieldElement) Neg() *FieldElement {
	result := new(big.Int).Neg(fe.value)
	return fe.field.NewElement(result)
}

// Mul performs field multiplication
func (fe *FieldElement) Mul(other *FieldElement) *FieldElement {
	if !fe.field.Equals(other.field) {
		panic("cannot multiply elements from different fields")
	}
	result := new(big.Int).Mul(fe.value, other.value)
	return fe.field.NewElement(result)
}

// Inv computes the multiplicative inverse
func (fe *FieldElement) Inv() (*FieldElement, error) {
	if fe.IsZero() {
		return nil, ErrZeroInverse
	}

	inv := new(big.Int).ModInverse(fe.value, fe.field.modulus)
	if inv == nil {
		return nil, fmt.Errorf("inverse does not exist")
	}

	return fe.field.NewElement(inv), nil
}

// Equal checks if two field elements are equal
func (fe *FieldElement) Equal(other *FieldElement) bool {
	if other == nil || !fe.field.Equals(other.field) {
		return false
	}
	return fe.value.Cmp(other.value) == 0
}

// IsZero checks if the element is zero
func (fe *FieldElement) IsZero() bool {
	return fe.value.Sign() == 0
}

// IsOne checks if the element is one
func (fe *FieldElement) IsOne() bool {
	return fe.value.Cmp(big.NewInt(1)) == 0
}

// String returns a string representation of the field element
func (fe *FieldElement) String() string {
	return fe.value.String()
}

// GoldilocksModulus is 2^64 - 2^32 + 1.
const GoldilocksModulus = "18446744069414584321"

// DefaultField is the Goldilocks prime field.
var DefaultField, _ = ParseField(GoldilocksModulus)
