package strixcmd

import (
	"os"

	"go.brendoncarroll.net/star"

	"github.com/cronokirby/strix/internal/strix/kernel"
)

var asmCmd = star.Command{
	Metadata: star.Metadata{
		Short: "assemble a text program into a checksummed binary",
	},
	Flags: []star.IParam{outParam},
	Pos:   []star.IParam{programParam},
	F: func(c star.Context) error {
		src, err := os.ReadFile(programParam.Load(c))
		if err != nil {
			return err
		}
		prog, err := kernel.Parse(string(src))
		if err != nil {
			return err
		}
		data, err := kernel.MarshalFile(prog)
		if err != nil {
			return err
		}
		if out := load(c, outParam); out != "" {
			return os.WriteFile(out, data, 0o644)
		}
		_, err = c.StdOut.Write(data)
		return err
	},
}

var disasmCmd = star.Command{
	Metadata: star.Metadata{
		Short: "print a program in text form",
	},
	Pos: []star.IParam{programParam},
	F: func(c star.Context) error {
		prog, err := loadProgram(programParam.Load(c))
		if err != nil {
			return err
		}
		c.Printf("%s", prog.String())
		return nil
	},
}

var digestCmd = star.Command{
	Metadata: star.Metadata{
		Short: "print the Poseidon digest of a program",
	},
	Pos: []star.IParam{programParam},
	F: func(c star.Context) error {
		prog, err := loadProgram(programParam.Load(c))
		if err != nil {
			return err
		}
		c.Printf("%v\n", kernel.ComputeDigest(prog))
		return nil
	},
}
