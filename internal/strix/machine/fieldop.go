package machine

import (
	"errors"
	"math"

	"github.com/cronokirby/strix/internal/strix/core"
	"github.com/cronokirby/strix/internal/strix/kernel"
)

// arith is the arithmetic a stack's element type needs, with inversion
// failures already mapped to machine errors.
type arith[T any] interface {
	zero() T
	one() T
	add(a, b T) T
	neg(a T) T
	mul(a, b T) T
	inv(a T) (T, error)
}

type outsideArith[F any] struct {
	field core.Arithmetic[F]
}

func (a outsideArith[F]) zero() F      { return a.field.Zero() }
func (a outsideArith[F]) one() F       { return a.field.One() }
func (a outsideArith[F]) add(x, y F) F { return a.field.Add(x, y) }
func (a outsideArith[F]) neg(x F) F    { return a.field.Neg(x) }
func (a outsideArith[F]) mul(x, y F) F { return a.field.Mul(x, y) }

func (a outsideArith[F]) inv(x F) (F, error) {
	out, ok := a.field.TryInv(x)
	if !ok {
		return out, &InversionOfZeroError{Stack: kernel.Outside}
	}
	return out, nil
}

type insideArith[F, W any] struct {
	field   core.Arithmetic[F]
	backend Backend[F, W]
}

func (a insideArith[F, W]) zero() W      { return a.backend.Constant(a.field.Zero()) }
func (a insideArith[F, W]) one() W       { return a.backend.Constant(a.field.One()) }
func (a insideArith[F, W]) add(x, y W) W { return a.backend.Add(x, y) }
func (a insideArith[F, W]) neg(x W) W    { return a.backend.Neg(x) }
func (a insideArith[F, W]) mul(x, y W) W { return a.backend.Mul(x, y) }

func (a insideArith[F, W]) inv(x W) (W, error) {
	out, err := a.backend.TryInv(x)
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, core.ErrZeroInverse):
		return out, &InversionOfZeroError{Stack: kernel.Inside}
	default:
		return out, &CircuitConstraintError{Cause: err}
	}
}

// operand converts an op's count or index to int, saturating on platforms
// where int cannot hold it.
func operand(n uint32) int {
	if uint64(n) > math.MaxInt {
		return math.MaxInt
	}
	return int(n)
}

// applyStackOp runs a single-stack operation.
func applyStackOp[T any](s *Stack[T], a arith[T], op kernel.StackOp) error {
	switch op.Kind {
	case kernel.KindField:
		return applyFieldOp(s, a, op.Field)
	case kernel.KindCopy:
		v, err := s.Peek(operand(op.N))
		if err != nil {
			return err
		}
		s.Push(v)
		return nil
	case kernel.KindDrop:
		return s.DropN(operand(op.N))
	default:
		return op.Validate()
	}
}

// applyFieldOp pops the operands of op and pushes its result. Binary
// operations take the element below the top as their left operand.
func applyFieldOp[T any](s *Stack[T], a arith[T], op kernel.FieldOp) error {
	switch op {
	case kernel.Zero:
		s.Push(a.zero())
		return nil
	case kernel.One:
		s.Push(a.one())
		return nil
	}

	args, err := s.PopN(op.Arity())
	if err != nil {
		return err
	}
	switch op {
	case kernel.Add:
		s.Push(a.add(args[1], args[0]))
	case kernel.Mul:
		s.Push(a.mul(args[1], args[0]))
	case kernel.Neg:
		s.Push(a.neg(args[0]))
	case kernel.Inv:
		v, err := a.inv(args[0])
		if err != nil {
			return err
		}
		s.Push(v)
	}
	return nil
}
