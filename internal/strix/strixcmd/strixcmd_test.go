package strixcmd

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap/zapcore"

	"github.com/cronokirby/strix/internal/strix/kernel"
	"github.com/cronokirby/strix/pkg/strix"
)

const square = `
# x * x
outside copy 0
outside mul
`

func TestLoadProgram(t *testing.T) {
	dir := t.TempDir()
	want, err := kernel.Parse(square)
	require.NoError(t, err)

	text := filepath.Join(dir, "square.strasm")
	require.NoError(t, os.WriteFile(text, []byte(square), 0o644))
	got, err := loadProgram(text)
	require.NoError(t, err)
	require.True(t, want.Equal(got))

	data, err := kernel.MarshalFile(want)
	require.NoError(t, err)
	bin := filepath.Join(dir, "square.strx")
	require.NoError(t, os.WriteFile(bin, data, 0o644))
	got, err = loadProgram(bin)
	require.NoError(t, err)
	require.True(t, want.Equal(got))

	_, err = decodeProgram([]byte("outside frobnicate"))
	require.ErrorIs(t, err, kernel.ErrSyntax)
}

func TestLoadJobs(t *testing.T) {
	dir := t.TempDir()
	prog, err := kernel.Parse(square)
	require.NoError(t, err)
	data, err := kernel.MarshalFile(prog)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.strasm"), []byte(square), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.strx"), data, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	in := strix.Inputs{Outside: []*big.Int{big.NewInt(12)}}
	jobs, err := loadJobs(dir, in)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	require.Equal(t, "a.strasm", jobs[0].Name)
	require.True(t, prog.Equal(jobs[0].Program))
	require.Nil(t, jobs[0].Encoded)
	require.Equal(t, "b.strx", jobs[1].Name)
	require.Equal(t, data, jobs[1].Encoded)
	require.Equal(t, in, jobs[1].Inputs)

	vm, err := strix.NewVM(strix.DefaultConfig().WithFieldModulus(big.NewInt(101)))
	require.NoError(t, err)
	results, err := vm.ExecuteBatch(t.Context(), jobs)
	require.NoError(t, err)
	for _, res := range results {
		require.NoError(t, res.Err)
		require.Equal(t, "43", res.Result.Outside[0].String())
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.strasm"), []byte("inside copy"), 0o644))
	_, err = loadJobs(dir, in)
	require.ErrorContains(t, err, "c.strasm")
}

func TestParsers(t *testing.T) {
	n, err := parseBig("0x10")
	require.NoError(t, err)
	require.Equal(t, int64(16), n.Int64())
	_, err = parseBig("ten")
	require.Error(t, err)

	c, err := parseCount("7")
	require.NoError(t, err)
	require.Equal(t, 7, c)
	_, err = parseCount("-1")
	require.Error(t, err)
	_, err = parseCount("many")
	require.Error(t, err)
}

func TestSetup(t *testing.T) {
	ctx, done, err := setup(t.Context(), zapcore.InfoLevel)
	require.NoError(t, err)
	defer done()
	log := logctx.FromContext(ctx)
	require.True(t, log.Core().Enabled(zapcore.InfoLevel))
	require.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestFormatElements(t *testing.T) {
	require.Equal(t, "[]", formatElements([]int{}))
	require.Equal(t, "[1 2 3]", formatElements([]int{1, 2, 3}))
}
