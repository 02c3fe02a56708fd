package kernel

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax is returned by Parse for malformed assembly.
var ErrSyntax = errors.New("kernel: syntax error")

// Parse reads a program in assembly syntax:
//
//	# comment
//	outside one
//	outside copy 0
//	inside drop 2
//	move 1 outside inside
//
// Blank lines and text after '#' are ignored.
func Parse(src string) (Program, error) {
	var ops []Op
	sc := bufio.NewScanner(strings.NewReader(src))
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		op, err := ParseOp(fields)
		if err != nil {
			return Program{}, fmt.Errorf("line %d: %w", line, err)
		}
		ops = append(ops, op)
	}
	if err := sc.Err(); err != nil {
		return Program{}, err
	}
	return Program{ops: ops}, nil
}

// ParseOp parses the whitespace-separated fields of a single op.
func ParseOp(fields []string) (Op, error) {
	if len(fields) == 0 {
		return Op{}, fmt.Errorf("%w: empty op", ErrSyntax)
	}
	if fields[0] == "move" {
		if len(fields) != 4 {
			return Op{}, fmt.Errorf("%w: move takes a count and two stacks", ErrSyntax)
		}
		n, err := parseCount(fields[1])
		if err != nil {
			return Op{}, err
		}
		from, err := parseStack(fields[2])
		if err != nil {
			return Op{}, err
		}
		to, err := parseStack(fields[3])
		if err != nil {
			return Op{}, err
		}
		return Move(n, from, to), nil
	}

	which, err := parseStack(fields[0])
	if err != nil {
		return Op{}, err
	}
	if len(fields) < 2 {
		return Op{}, fmt.Errorf("%w: missing operation after %q", ErrSyntax, fields[0])
	}
	name, args := fields[1], fields[2:]
	switch name {
	case "copy", "drop":
		if len(args) != 1 {
			return Op{}, fmt.Errorf("%w: %s takes one operand", ErrSyntax, name)
		}
		n, err := parseCount(args[0])
		if err != nil {
			return Op{}, err
		}
		if name == "copy" {
			return On(which, Copy(n)), nil
		}
		return On(which, Drop(n)), nil
	}
	for op, opName := range fieldOpNames {
		if name == opName {
			if len(args) != 0 {
				return Op{}, fmt.Errorf("%w: %s takes no operands", ErrSyntax, name)
			}
			return On(which, Apply(FieldOp(op))), nil
		}
	}
	return Op{}, fmt.Errorf("%w: unknown operation %q", ErrSyntax, name)
}

func parseStack(s string) (WhichStack, error) {
	switch s {
	case "inside":
		return Inside, nil
	case "outside":
		return Outside, nil
	default:
		return 0, fmt.Errorf("%w: unknown stack %q", ErrSyntax, s)
	}
}

func parseCount(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad operand %q", ErrSyntax, s)
	}
	return uint32(n), nil
}
