package strixcmd

import (
	"go.brendoncarroll.net/star"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"

	"github.com/cronokirby/strix/pkg/strix"
)

var runCmd = star.Command{
	Metadata: star.Metadata{
		Short: "execute a program and print its final stacks",
	},
	Flags: []star.IParam{modulusParam, modeParam, stepLimitParam, logLevelParam,
		outsideParam, publicParam, privateParam,
	},
	Pos: []star.IParam{programParam},
	F: func(c star.Context) error {
		ctx, done, err := setupCmd(c)
		if err != nil {
			return err
		}
		defer done()
		vm, err := strix.NewVM(vmConfig(c))
		if err != nil {
			return err
		}
		path := programParam.Load(c)
		prog, err := loadProgram(path)
		if err != nil {
			return err
		}
		logctx.Info(ctx, "executing", zap.String("program", path), zap.Int("ops", prog.Len()))
		res, err := vm.Execute(ctx, prog, strix.Inputs{
			Outside: outsideParam.LoadAll(c),
			Public:  publicParam.LoadAll(c),
			Private: privateParam.LoadAll(c),
		})
		if err != nil {
			return err
		}
		c.Printf("DIGEST:      %v\n", res.Digest)
		c.Printf("OUTSIDE:     %s\n", formatElements(res.Outside))
		c.Printf("INSIDE:      %s\n", formatElements(res.Inside))
		if res.InsideValues != nil {
			c.Printf("WITNESS:     %s\n", formatElements(res.InsideValues))
		}
		c.Printf("WIRES:       %d\n", res.Circuit.NumWires())
		c.Printf("CONSTRAINTS: %d\n", res.Circuit.NumConstraints())
		return nil
	},
}
