package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"

	"github.com/cronokirby/strix/internal/strix/core"
)

// Context returns a context carrying a development logger, cancelled when
// the test ends.
func Context(t testing.TB) context.Context {
	ctx := context.Background()
	ctx, cf := context.WithCancel(ctx)
	t.Cleanup(cf)
	ctx = logctx.NewContext(ctx, Logger(t))
	return ctx
}

// Logger returns a development logger.
func Logger(t testing.TB) *zap.Logger {
	l, err := zap.NewDevelopment()
	require.NoError(t, err)
	return l
}

// Field returns the prime field of order p.
func Field(t testing.TB, p uint64) *core.Field {
	f, err := core.NewFieldFromUint64(p)
	require.NoError(t, err)
	return f
}

// Elements converts values into elements of f.
func Elements(f *core.Field, values ...int64) []*core.FieldElement {
	out := make([]*core.FieldElement, len(values))
	for i, v := range values {
		out[i] = f.NewElementFromInt64(v)
	}
	return out
}

// RequireElements checks that got holds exactly the given values.
func RequireElements(t testing.TB, f *core.Field, got []*core.FieldElement, want ...int64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i, w := range want {
		require.Truef(t, got[i].Equal(f.NewElementFromInt64(w)), "element %d: got %v, want %d", i, got[i], w)
	}
}
