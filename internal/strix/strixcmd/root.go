// Package strixcmd implements the strix command line tool.
package strixcmd

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"go.brendoncarroll.net/star"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cronokirby/strix/internal/strix/kernel"
	"github.com/cronokirby/strix/pkg/strix"
)

func Root() star.Command {
	return root
}

var root = star.NewDir(star.Metadata{
	Short: "run and inspect dual-stack circuit programs",
}, map[star.Symbol]star.Command{
	"run":    runCmd,
	"batch":  batchCmd,
	"stream": streamCmd,

	"asm":    asmCmd,
	"disasm": disasmCmd,
	"digest": digestCmd,
})

var logLevelParam = star.Param[zapcore.Level]{
	Name:    "log",
	Default: star.Ptr("warn"),
	Parse:   zapcore.ParseLevel,
}

var modulusParam = star.Param[*big.Int]{
	Name:    "modulus",
	Default: star.Ptr(strix.DefaultConfig().FieldModulus),
	Parse:   parseBig,
}

var modeParam = star.Param[string]{
	Name:    "mode",
	Default: star.Ptr("prover"),
	Parse:   star.ParseString,
}

var stepLimitParam = star.Param[int]{
	Name:    "step-limit",
	Default: star.Ptr("0"),
	Parse:   parseCount,
}

var workersParam = star.Param[int]{
	Name:    "workers",
	Default: star.Ptr(fmt.Sprint(strix.DefaultConfig().Workers)),
	Parse:   parseCount,
}

var failFastParam = star.Param[bool]{
	Name:    "fail-fast",
	Default: star.Ptr("false"),
	Parse:   strconv.ParseBool,
}

var outsideParam = star.Param[*big.Int]{
	Name:     "x",
	Repeated: true,
	Parse:    parseBig,
}

var publicParam = star.Param[*big.Int]{
	Name:     "pub",
	Repeated: true,
	Parse:    parseBig,
}

var privateParam = star.Param[*big.Int]{
	Name:     "priv",
	Repeated: true,
	Parse:    parseBig,
}

var programParam = star.Param[string]{
	Name:  "program",
	Parse: star.ParseString,
}

var outParam = star.Param[string]{
	Name:    "o",
	Default: star.Ptr(""),
	Parse:   star.ParseString,
}

func parseBig(x string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(x, 0)
	if !ok {
		return nil, fmt.Errorf("cannot parse %q as an integer", x)
	}
	return n, nil
}

func parseCount(x string) (int, error) {
	var n int
	if _, err := fmt.Sscan(x, &n); err != nil {
		return 0, fmt.Errorf("cannot parse %q as a count: %w", x, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("count must not be negative, got %d", n)
	}
	return n, nil
}

// load returns the value of a flag, falling back to its default. The flag
// parser only fills in the first missing default of a command.
func load[T any](c star.Context, p star.Param[T]) T {
	if v, ok := p.LoadOpt(c); ok {
		return v
	}
	v, err := p.Parse(*p.Default)
	if err != nil {
		panic(fmt.Sprintf("default of flag %q: %v", p.Name, err))
	}
	return v
}

// setup attaches a logger at the given level to ctx. The returned func
// flushes the logger and must be called before the command returns.
func setup(ctx context.Context, level zapcore.Level) (context.Context, func(), error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	log, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}
	return logctx.NewContext(ctx, log), func() { _ = log.Sync() }, nil
}

// setupCmd is setup with the level taken from the log flag.
func setupCmd(c star.Context) (context.Context, func(), error) {
	return setup(c.Context, load(c, logLevelParam))
}

// vmConfig builds a VM configuration from the common flags.
func vmConfig(c star.Context) *strix.Config {
	return strix.DefaultConfig().
		WithFieldModulus(load(c, modulusParam)).
		WithMode(load(c, modeParam)).
		WithStepLimit(load(c, stepLimitParam))
}

// loadProgram reads a program from a checksummed container or, failing
// that, from the text assembly.
func loadProgram(path string) (kernel.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return kernel.Program{}, err
	}
	return decodeProgram(data)
}

func decodeProgram(data []byte) (kernel.Program, error) {
	if kernel.IsFile(data) {
		return kernel.UnmarshalFile(data)
	}
	return kernel.Parse(string(data))
}

func formatElements[T any](xs []T) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
