// Package circuit implements an R1CS (Rank-1 Constraint System) builder.
//
// Every arithmetic operation allocates a new wire and records the constraint
// tying it to its inputs. In Prover mode each wire also carries its witness
// value, so the finished circuit can be checked with Verify. In Setup mode
// inputs are symbolic and only values derived purely from constants are
// known.
package circuit

import (
	"errors"
	"fmt"

	"github.com/cronokirby/strix/internal/strix/core"
)

// Circuit builder errors.
var (
	ErrInvertZero         = fmt.Errorf("circuit: %w", core.ErrZeroInverse)
	ErrCannotProveNonZero = errors.New("circuit: cannot prove wire is nonzero")
	ErrConstraintFailed   = errors.New("circuit: constraint not satisfied")
	ErrUnknownWire        = errors.New("circuit: unknown wire")
	ErrMissingWitness     = errors.New("circuit: witness value missing")
)

// Wire is a handle to a signal in the circuit.
// Wire 0 is reserved for the constant one.
type Wire uint32

// OneWire is always assigned the value 1.
const OneWire Wire = 0

// Mode selects whether the circuit tracks witness values.
type Mode int

const (
	// Prover assigns a witness value to every wire.
	Prover Mode = iota
	// Setup builds constraints only; inputs carry no values.
	Setup
)

func (m Mode) String() string {
	switch m {
	case Prover:
		return "prover"
	case Setup:
		return "setup"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses the output of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "prover":
		return Prover, nil
	case "setup":
		return Setup, nil
	default:
		return 0, fmt.Errorf("unknown circuit mode %q", s)
	}
}

// Term is a single (coefficient, wire) pair in a linear combination.
type Term[F any] struct {
	Coeff F
	Wire  Wire
}

// LinearCombination is a sum of terms. The empty combination is zero.
type LinearCombination[F any] []Term[F]

// Constraint is a single R1CS constraint: <A, w> * <B, w> = <C, w>.
type Constraint[F any] struct {
	A LinearCombination[F]
	B LinearCombination[F]
	C LinearCombination[F]
}

// Circuit holds the constraint system under construction.
// It is not safe for concurrent use.
type Circuit[F any] struct {
	field core.Arithmetic[F]
	mode  Mode

	constraints []Constraint[F]
	// values holds every known wire value.
	values map[Wire]F
	public []Wire
	next   Wire
}

// New creates an empty circuit over the given field.
func New[F any](field core.Arithmetic[F], mode Mode) *Circuit[F] {
	c := &Circuit[F]{
		field:  field,
		mode:   mode,
		values: make(map[Wire]F),
		public: []Wire{OneWire},
		next:   OneWire + 1,
	}
	c.values[OneWire] = field.One()
	return c
}

// Mode returns the mode the circuit was created with.
func (c *Circuit[F]) Mode() Mode {
	return c.mode
}

// NumWires returns the number of allocated wires, including OneWire.
func (c *Circuit[F]) NumWires() int {
	return int(c.next)
}

// NumConstraints returns the number of recorded constraints.
func (c *Circuit[F]) NumConstraints() int {
	return len(c.constraints)
}

// Constraints returns a copy of the recorded constraints.
func (c *Circuit[F]) Constraints() []Constraint[F] {
	out := make([]Constraint[F], len(c.constraints))
	copy(out, c.constraints)
	return out
}

// PublicInputs returns the public wires, starting with OneWire.
func (c *Circuit[F]) PublicInputs() []Wire {
	out := make([]Wire, len(c.public))
	copy(out, c.public)
	return out
}

// AllocatePublic creates a public input wire.
// In Setup mode the value is discarded.
func (c *Circuit[F]) AllocatePublic(value F) Wire {
	w := c.allocateInput(value)
	c.public = append(c.public, w)
	return w
}

// AllocatePrivate creates a private input wire.
// In Setup mode the value is discarded.
func (c *Circuit[F]) AllocatePrivate(value F) Wire {
	return c.allocateInput(value)
}

func (c *Circuit[F]) allocateInput(value F) Wire {
	w := c.allocate()
	if c.mode == Prover {
		c.values[w] = value
	}
	return w
}

func (c *Circuit[F]) allocate() Wire {
	w := c.next
	c.next++
	return w
}

// Constant injects a known value: w * 1 = v * 1.
func (c *Circuit[F]) Constant(v F) Wire {
	w := c.allocate()
	c.values[w] = v
	c.constrain(
		c.lc(w),
		c.lc(OneWire),
		LinearCombination[F]{{Coeff: v, Wire: OneWire}},
	)
	return w
}

// Add returns a + b, constrained as (a + b) * 1 = out.
func (c *Circuit[F]) Add(a, b Wire) Wire {
	out := c.allocate()
	if vs, ok := c.known(a, b); ok {
		c.values[out] = c.field.Add(vs[0], vs[1])
	}
	c.constrain(c.lc(a, b), c.lc(OneWire), c.lc(out))
	return out
}

// Neg returns -a, constrained as (a + out) * 1 = 0.
func (c *Circuit[F]) Neg(a Wire) Wire {
	out := c.allocate()
	if vs, ok := c.known(a); ok {
		c.values[out] = c.field.Neg(vs[0])
	}
	c.constrain(c.lc(a, out), c.lc(OneWire), nil)
	return out
}

// Mul returns a * b, constrained as a * b = out.
func (c *Circuit[F]) Mul(a, b Wire) Wire {
	out := c.allocate()
	if vs, ok := c.known(a, b); ok {
		c.values[out] = c.field.Mul(vs[0], vs[1])
	}
	c.constrain(c.lc(a), c.lc(b), c.lc(out))
	return out
}

// TryInv returns a⁻¹, constrained as a * out = 1. The constraint is
// unsatisfiable when a is zero, so it doubles as a nonzero assertion.
//
// The value of a must be known: always in Prover mode, only for
// constant-derived wires in Setup mode.
func (c *Circuit[F]) TryInv(a Wire) (Wire, error) {
	if a >= c.next {
		return 0, fmt.Errorf("%w: %d", ErrUnknownWire, a)
	}
	v, ok := c.values[a]
	if !ok {
		if c.mode == Setup {
			return 0, fmt.Errorf("%w: wire %d is not constant", ErrCannotProveNonZero, a)
		}
		return 0, fmt.Errorf("%w: wire %d", ErrMissingWitness, a)
	}
	inv, ok := c.field.TryInv(v)
	if !ok {
		return 0, fmt.Errorf("%w: wire %d", ErrInvertZero, a)
	}
	out := c.allocate()
	c.values[out] = inv
	c.constrain(c.lc(a), c.lc(out), c.lc(OneWire))
	return out, nil
}

// WitnessValue exposes the value of w. Only Prover circuits allow it.
func (c *Circuit[F]) WitnessValue(w Wire) (F, bool) {
	var zero F
	if c.mode != Prover {
		return zero, false
	}
	v, ok := c.values[w]
	return v, ok
}

// Witness returns the full assignment, indexed by wire.
func (c *Circuit[F]) Witness() ([]F, error) {
	if c.mode != Prover {
		return nil, fmt.Errorf("%w: circuit built in %v mode", ErrMissingWitness, c.mode)
	}
	out := make([]F, c.next)
	for w := OneWire; w < c.next; w++ {
		v, ok := c.values[w]
		if !ok {
			return nil, fmt.Errorf("%w: wire %d", ErrMissingWitness, w)
		}
		out[w] = v
	}
	return out, nil
}

// Verify checks every constraint against the witness.
func (c *Circuit[F]) Verify() error {
	witness, err := c.Witness()
	if err != nil {
		return err
	}
	for i, con := range c.constraints {
		a, err := c.eval(con.A, witness)
		if err != nil {
			return fmt.Errorf("constraint %d: %w", i, err)
		}
		b, err := c.eval(con.B, witness)
		if err != nil {
			return fmt.Errorf("constraint %d: %w", i, err)
		}
		cv, err := c.eval(con.C, witness)
		if err != nil {
			return fmt.Errorf("constraint %d: %w", i, err)
		}
		if !c.field.Equal(c.field.Mul(a, b), cv) {
			return fmt.Errorf("%w: constraint %d", ErrConstraintFailed, i)
		}
	}
	return nil
}

func (c *Circuit[F]) eval(lc LinearCombination[F], witness []F) (F, error) {
	acc := c.field.Zero()
	for _, t := range lc {
		if int(t.Wire) >= len(witness) {
			return acc, fmt.Errorf("%w: %d", ErrUnknownWire, t.Wire)
		}
		acc = c.field.Add(acc, c.field.Mul(t.Coeff, witness[t.Wire]))
	}
	return acc, nil
}

// known returns the values of ws if all of them are known.
func (c *Circuit[F]) known(ws ...Wire) ([]F, bool) {
	vs := make([]F, len(ws))
	for i, w := range ws {
		v, ok := c.values[w]
		if !ok {
			return nil, false
		}
		vs[i] = v
	}
	return vs, true
}

// lc builds a linear combination with unit coefficients.
func (c *Circuit[F]) lc(ws ...Wire) LinearCombination[F] {
	out := make(LinearCombination[F], len(ws))
	for i, w := range ws {
		out[i] = Term[F]{Coeff: c.field.One(), Wire: w}
	}
	return out
}

func (c *Circuit[F]) constrain(a, b, cv LinearCombination[F]) {
	c.constraints = append(c.constraints, Constraint[F]{A: a, B: b, C: cv})
}
