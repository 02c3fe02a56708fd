package strix

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cronokirby/strix/internal/strix/kernel"
	"github.com/cronokirby/strix/internal/strix/machine"
)

func TestStrixError(t *testing.T) {
	t.Run("IsByCode", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", newError(ErrInvalidProgram, "bad", kernel.ErrCorrupt))
		if !errors.Is(err, &StrixError{Code: ErrInvalidProgram}) {
			t.Errorf("expected match by code")
		}
		if errors.Is(err, &StrixError{Code: ErrStepLimit}) {
			t.Errorf("unexpected match on different code")
		}
		if !errors.Is(err, kernel.ErrCorrupt) {
			t.Errorf("cause not reachable")
		}
	})

	t.Run("Message", func(t *testing.T) {
		err := &StrixError{Code: ErrInversionOfZero, Message: "execution failed", OpIndex: 3}
		want := "strix error [inversion of zero]: execution failed at op 3"
		if got := err.Error(); got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
		if !strings.Contains(newError(ErrUnknown, "x", errors.New("boom")).Error(), "caused by: boom") {
			t.Errorf("cause missing from message")
		}
	})

	t.Run("Code", func(t *testing.T) {
		if Code(errors.New("plain")) != ErrUnknown {
			t.Errorf("plain errors should be unknown")
		}
		if Code(nil) != ErrUnknown {
			t.Errorf("nil should be unknown")
		}
	})
}

func TestWrapError(t *testing.T) {
	exec := &machine.ExecError{Index: 2, Err: &machine.StackUnderflowError{Needed: 1}}
	tests := []struct {
		err  error
		code ErrorCode
	}{
		{exec, ErrStackUnderflow},
		{fmt.Errorf("%w: 9 ops", machine.ErrProgramTooLong), ErrStepLimit},
		{fmt.Errorf("op 0: %w", kernel.ErrUnknownTag), ErrInvalidProgram},
		{kernel.ErrChecksum, ErrInvalidProgram},
		{errors.New("other"), ErrUnknown},
	}
	for _, tc := range tests {
		if got := Code(wrapError(tc.err)); got != tc.code {
			t.Errorf("wrapError(%v) code = %v, want %v", tc.err, got, tc.code)
		}
	}
	if wrapError(nil) != nil {
		t.Errorf("wrapError(nil) should be nil")
	}
}
