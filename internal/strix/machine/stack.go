package machine

import (
	"github.com/cronokirby/strix/internal/strix/kernel"
)

// Stack is a growable stack of a single element type.
// The top of the stack is the end of elems.
type Stack[T any] struct {
	which kernel.WhichStack
	elems []T
}

// NewStack returns a stack holding a copy of initial, listed bottom to top.
func NewStack[T any](which kernel.WhichStack, initial []T) *Stack[T] {
	elems := make([]T, len(initial))
	copy(elems, initial)
	return &Stack[T]{which: which, elems: elems}
}

// Len returns the number of elements.
func (s *Stack[T]) Len() int {
	return len(s.elems)
}

// Push appends v to the top.
func (s *Stack[T]) Push(v T) {
	s.elems = append(s.elems, v)
}

// PushN pushes vs given in popped order: vs[0] ends up on top, so
// PushN(PopN(n)) leaves the stack unchanged.
func (s *Stack[T]) PushN(vs []T) {
	for i := len(vs) - 1; i >= 0; i-- {
		s.elems = append(s.elems, vs[i])
	}
}

// PopN removes the top n elements and returns them in popped order:
// the first element returned was the top.
func (s *Stack[T]) PopN(n int) ([]T, error) {
	if err := s.require(n); err != nil {
		return nil, err
	}
	out := make([]T, n)
	for i := range out {
		out[i] = s.elems[len(s.elems)-1-i]
	}
	s.truncate(n)
	return out, nil
}

// DropN discards the top n elements.
func (s *Stack[T]) DropN(n int) error {
	if err := s.require(n); err != nil {
		return err
	}
	s.truncate(n)
	return nil
}

// Peek returns the element index positions below the top (0 = top).
func (s *Stack[T]) Peek(index int) (T, error) {
	if index < 0 || index >= len(s.elems) {
		var zero T
		return zero, &InvalidIndexError{Stack: s.which, Index: index, Length: len(s.elems)}
	}
	return s.elems[len(s.elems)-1-index], nil
}

// Elements returns a copy of the contents, bottom to top.
func (s *Stack[T]) Elements() []T {
	out := make([]T, len(s.elems))
	copy(out, s.elems)
	return out
}

func (s *Stack[T]) require(n int) error {
	if n < 0 || n > len(s.elems) {
		return &StackUnderflowError{Stack: s.which, Needed: n, Available: len(s.elems)}
	}
	return nil
}

// truncate drops the top n elements, clearing them so they can be collected.
func (s *Stack[T]) truncate(n int) {
	keep := len(s.elems) - n
	clear(s.elems[keep:])
	s.elems = s.elems[:keep]
}
