package strixcmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"

	"go.brendoncarroll.net/star"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"

	"github.com/cronokirby/strix/pkg/strix"
)

// Request is one line of input to the stream command.
// Program holds text assembly; Encoded, if set, is a binary program and
// takes precedence.
type Request struct {
	Name    string   `json:"name"`
	Program string   `json:"program,omitempty"`
	Encoded []byte   `json:"encoded,omitempty"`
	Outside []string `json:"outside,omitempty"`
	Public  []string `json:"public,omitempty"`
	Private []string `json:"private,omitempty"`
}

// Response is one line of output from the stream command.
type Response struct {
	Name        string   `json:"name"`
	Digest      string   `json:"digest,omitempty"`
	Outside     []string `json:"outside,omitempty"`
	Inside      []uint32 `json:"inside,omitempty"`
	Witness     []string `json:"witness,omitempty"`
	Constraints *int     `json:"constraints,omitempty"`

	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	OpIndex *int   `json:"op_index,omitempty"`
}

var streamCmd = star.Command{
	Metadata: star.Metadata{
		Short: "execute JSON requests read line by line from stdin",
	},
	Flags: []star.IParam{modulusParam, modeParam, stepLimitParam, logLevelParam},
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
		return Stream(ctx, vm, c.StdIn, c.StdOut)
	},
}

// Stream answers every request line in r with a response line in w.
// Malformed or failing requests produce an error response; only I/O
// failures stop the stream.
func Stream(ctx context.Context, vm strix.VM, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	enc := json.NewEncoder(w)
	for line := 1; sc.Scan(); line++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var req Request
		var resp Response
		if err := json.Unmarshal(sc.Bytes(), &req); err != nil {
			resp = errorResponse(fmt.Sprintf("line %d", line), fmt.Errorf("parse request: %w", err))
		} else {
			resp = handle(ctx, vm, req)
		}
		if resp.Error != "" {
			logctx.Warnf(ctx, "request %s failed: %s", resp.Name, resp.Error)
		} else {
			logctx.Debug(ctx, "request done", zap.String("name", resp.Name))
		}
		if err := enc.Encode(resp); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return sc.Err()
}

func handle(ctx context.Context, vm strix.VM, req Request) Response {
	var (
		prog strix.Program
		err  error
	)
	if req.Encoded != nil {
		prog, err = strix.DecodeProgram(req.Encoded)
	} else {
		prog, err = strix.ParseProgram(req.Program)
	}
	if err != nil {
		return errorResponse(req.Name, err)
	}

	var in strix.Inputs
	for _, field := range []struct {
		dst *[]*big.Int
		src []string
	}{
		{&in.Outside, req.Outside},
		{&in.Public, req.Public},
		{&in.Private, req.Private},
	} {
		for _, s := range field.src {
			n, err := parseBig(s)
			if err != nil {
				return errorResponse(req.Name, err)
			}
			*field.dst = append(*field.dst, n)
		}
	}

	res, err := vm.Execute(ctx, prog, in)
	if err != nil {
		return errorResponse(req.Name, err)
	}
	n := res.Circuit.NumConstraints()
	resp := Response{
		Name:        req.Name,
		Digest:      res.Digest.String(),
		Constraints: &n,
	}
	for _, v := range res.Outside {
		resp.Outside = append(resp.Outside, v.String())
	}
	for _, w := range res.Inside {
		resp.Inside = append(resp.Inside, uint32(w))
	}
	for _, v := range res.InsideValues {
		resp.Witness = append(resp.Witness, v.String())
	}
	return resp
}

func errorResponse(name string, err error) Response {
	resp := Response{Name: name, Error: err.Error(), Code: strix.Code(err).String()}
	var se *strix.StrixError
	if errors.As(err, &se) && se.OpIndex >= 0 {
		idx := se.OpIndex
		resp.OpIndex = &idx
	}
	return resp
}
