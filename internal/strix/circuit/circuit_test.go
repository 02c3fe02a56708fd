package circuit

import (
	"errors"
	"testing"

	"github.com/cronokirby/strix/internal/strix/core"
)

func newField(t *testing.T, p uint64) *core.Field {
	t.Helper()
	f, err := core.NewFieldFromUint64(p)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestNewCircuit(t *testing.T) {
	f := newField(t, 101)
	c := New[*core.FieldElement](f, Prover)
	if c.NumWires() != 1 {
		t.Fatalf("expected 1 wire (OneWire), got %d", c.NumWires())
	}
	one, ok := c.WitnessValue(OneWire)
	if !ok || !one.IsOne() {
		t.Fatalf("OneWire should be 1, got %v", one)
	}
	if pub := c.PublicInputs(); len(pub) != 1 || pub[0] != OneWire {
		t.Fatalf("expected OneWire to be the only public input, got %v", pub)
	}
	if err := c.Verify(); err != nil {
		t.Fatalf("empty circuit should verify: %v", err)
	}
}

func TestProverArithmetic(t *testing.T) {
	f := newField(t, 101)
	c := New[*core.FieldElement](f, Prover)

	x := c.AllocatePublic(f.NewElementFromInt64(6))
	y := c.AllocatePrivate(f.NewElementFromInt64(7))
	k := c.Constant(f.NewElementFromInt64(3))

	sum := c.Add(x, y)
	prod := c.Mul(sum, k)
	neg := c.Neg(prod)
	inv, err := c.TryInv(neg)
	if err != nil {
		t.Fatalf("TryInv failed: %v", err)
	}

	checks := []struct {
		name string
		wire Wire
		want int64
	}{
		{"sum", sum, 13},
		{"prod", prod, 39},
		{"neg", neg, 62},
	}
	for _, tc := range checks {
		got, ok := c.WitnessValue(tc.wire)
		if !ok {
			t.Fatalf("%s: missing witness", tc.name)
		}
		if !got.Equal(f.NewElementFromInt64(tc.want)) {
			t.Errorf("%s = %v, want %d", tc.name, got, tc.want)
		}
	}

	invVal, _ := c.WitnessValue(inv)
	negVal, _ := c.WitnessValue(neg)
	if !f.Mul(invVal, negVal).IsOne() {
		t.Errorf("inverse wire does not invert: %v * %v", invVal, negVal)
	}

	if len(c.PublicInputs()) != 2 {
		t.Errorf("expected 2 public inputs, got %d", len(c.PublicInputs()))
	}
	// constant, add, mul, neg, inv
	if c.NumConstraints() != 5 {
		t.Errorf("expected 5 constraints, got %d", c.NumConstraints())
	}
	if err := c.Verify(); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
}

func TestTryInvZero(t *testing.T) {
	f := newField(t, 7)
	c := New[*core.FieldElement](f, Prover)
	z := c.Constant(f.Zero())
	before := c.NumConstraints()
	if _, err := c.TryInv(z); !errors.Is(err, ErrInvertZero) {
		t.Fatalf("expected ErrInvertZero, got %v", err)
	}
	if c.NumConstraints() != before {
		t.Error("failed inversion should not record a constraint")
	}
}

func TestTryInvUnknownWire(t *testing.T) {
	f := newField(t, 7)
	c := New[*core.FieldElement](f, Prover)
	if _, err := c.TryInv(Wire(42)); !errors.Is(err, ErrUnknownWire) {
		t.Fatalf("expected ErrUnknownWire, got %v", err)
	}
}

func TestSetupMode(t *testing.T) {
	f := newField(t, 7)
	c := New[*core.FieldElement](f, Setup)

	in := c.AllocatePrivate(f.NewElementFromInt64(3))
	if _, ok := c.WitnessValue(in); ok {
		t.Error("setup circuit should not expose witness values")
	}

	t.Run("SymbolicInverse", func(t *testing.T) {
		if _, err := c.TryInv(in); !errors.Is(err, ErrCannotProveNonZero) {
			t.Fatalf("expected ErrCannotProveNonZero, got %v", err)
		}
	})

	t.Run("ConstantInverse", func(t *testing.T) {
		two := c.Add(c.Constant(f.One()), c.Constant(f.One()))
		if _, err := c.TryInv(two); err != nil {
			t.Fatalf("constant-derived inverse should succeed: %v", err)
		}
	})

	t.Run("ConstantZero", func(t *testing.T) {
		z := c.Add(c.Constant(f.One()), c.Neg(c.Constant(f.One())))
		if _, err := c.TryInv(z); !errors.Is(err, ErrInvertZero) {
			t.Fatalf("expected ErrInvertZero, got %v", err)
		}
	})

	t.Run("NoVerify", func(t *testing.T) {
		if err := c.Verify(); !errors.Is(err, ErrMissingWitness) {
			t.Fatalf("expected ErrMissingWitness, got %v", err)
		}
	})
}

func TestVerifyDetectsBadWitness(t *testing.T) {
	f := newField(t, 101)
	c := New[*core.FieldElement](f, Prover)
	a := c.AllocatePrivate(f.NewElementFromInt64(2))
	b := c.AllocatePrivate(f.NewElementFromInt64(5))
	out := c.Mul(a, b)

	c.values[out] = f.NewElementFromInt64(11)
	if err := c.Verify(); !errors.Is(err, ErrConstraintFailed) {
		t.Fatalf("expected ErrConstraintFailed, got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Prover, Setup} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("verifier"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
