package kernel

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"golang.org/x/crypto/sha3"
)

// Encoding errors.
var (
	ErrUnknownTag = errors.New("kernel: unknown tag")
	ErrCorrupt    = errors.New("kernel: corrupt encoding")
	ErrChecksum   = errors.New("kernel: checksum mismatch")
	ErrVersion    = errors.New("kernel: unsupported version")
)

// Wire format, version 1:
//
//	program = uvarint(len) op*
//	op      = 0x01 stack stackop
//	        | 0x02 uvarint(n) stack stack
//	stackop = 0x00 fieldop | 0x01 uvarint(n) | 0x02 uvarint(n)
//	stack   = 0x00 (inside) | 0x01 (outside)
//	fieldop = 0x00..0x05 (zero one add neg mul inv)
//
// Tags are the numeric values of OpKind, WhichStack, StackOpKind and FieldOp.
const (
	FormatVersion = 1
	fileMagic     = "STRX"
	checksumSize  = 32
)

// AppendOp appends the encoding of op to buf.
func AppendOp(buf []byte, op Op) ([]byte, error) {
	if err := op.Validate(); err != nil {
		return nil, err
	}
	buf = append(buf, byte(op.Kind))
	switch op.Kind {
	case OpStack:
		buf = append(buf, byte(op.Stack), byte(op.StackOp.Kind))
		if op.StackOp.Kind == KindField {
			buf = append(buf, byte(op.StackOp.Field))
		} else {
			buf = binary.AppendUvarint(buf, uint64(op.StackOp.N))
		}
	case OpMove:
		buf = binary.AppendUvarint(buf, uint64(op.N))
		buf = append(buf, byte(op.From), byte(op.To))
	}
	return buf, nil
}

// Encode returns the binary encoding of p.
func Encode(p Program) ([]byte, error) {
	buf := make([]byte, 0, 1+4*p.Len())
	buf = binary.AppendUvarint(buf, uint64(p.Len()))
	for i, op := range p.ops {
		var err error
		if buf, err = AppendOp(buf, op); err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
	}
	return buf, nil
}

// Decode parses a program produced by Encode. Trailing bytes are an error.
func Decode(data []byte) (Program, error) {
	r := decoder{data: data}
	n, err := r.uvarint32()
	if err != nil {
		return Program{}, fmt.Errorf("program length: %w", err)
	}
	// every op takes at least 4 bytes
	if uint64(n)*4 > uint64(len(data)) {
		return Program{}, fmt.Errorf("%w: %d ops in %d bytes", ErrCorrupt, n, len(data))
	}
	ops := make([]Op, 0, n)
	for i := uint32(0); i < n; i++ {
		op, err := r.op()
		if err != nil {
			return Program{}, fmt.Errorf("op %d: %w", i, err)
		}
		ops = append(ops, op)
	}
	if r.pos != len(data) {
		return Program{}, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(data)-r.pos)
	}
	return Program{ops: ops}, nil
}

// MarshalFile wraps the encoding of p in a versioned container with a
// SHA3-256 checksum.
func MarshalFile(p Program) ([]byte, error) {
	body, err := Encode(p)
	if err != nil {
		return nil, err
	}
	sum := sha3.Sum256(body)
	out := make([]byte, 0, len(fileMagic)+1+len(body)+checksumSize)
	out = append(out, fileMagic...)
	out = append(out, FormatVersion)
	out = append(out, body...)
	out = append(out, sum[:]...)
	return out, nil
}

// UnmarshalFile parses the output of MarshalFile.
func UnmarshalFile(data []byte) (Program, error) {
	if len(data) < len(fileMagic)+1+checksumSize || !bytes.HasPrefix(data, []byte(fileMagic)) {
		return Program{}, fmt.Errorf("%w: not a strix program", ErrCorrupt)
	}
	if v := data[len(fileMagic)]; v != FormatVersion {
		return Program{}, fmt.Errorf("%w: %d", ErrVersion, v)
	}
	body := data[len(fileMagic)+1 : len(data)-checksumSize]
	sum := sha3.Sum256(body)
	if !bytes.Equal(sum[:], data[len(data)-checksumSize:]) {
		return Program{}, ErrChecksum
	}
	return Decode(body)
}

// IsFile reports whether data starts with the container magic.
func IsFile(data []byte) bool {
	return bytes.HasPrefix(data, []byte(fileMagic))
}

type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) readByte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, fmt.Errorf("%w: unexpected end of input", ErrCorrupt)
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) uvarint32() (uint32, error) {
	v, n := binary.Uvarint(d.data[d.pos:])
	if n <= 0 {
		return 0, fmt.Errorf("%w: bad varint at offset %d", ErrCorrupt, d.pos)
	}
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("%w: operand %d overflows uint32", ErrCorrupt, v)
	}
	d.pos += n
	return uint32(v), nil
}

func (d *decoder) stack() (WhichStack, error) {
	b, err := d.readByte()
	if err != nil {
		return 0, err
	}
	s := WhichStack(b)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: stack %d", ErrUnknownTag, b)
	}
	return s, nil
}

func (d *decoder) op() (Op, error) {
	tag, err := d.readByte()
	if err != nil {
		return Op{}, err
	}
	switch OpKind(tag) {
	case OpStack:
		which, err := d.stack()
		if err != nil {
			return Op{}, err
		}
		kind, err := d.readByte()
		if err != nil {
			return Op{}, err
		}
		switch StackOpKind(kind) {
		case KindField:
			f, err := d.readByte()
			if err != nil {
				return Op{}, err
			}
			if !FieldOp(f).Valid() {
				return Op{}, fmt.Errorf("%w: field op %d", ErrUnknownTag, f)
			}
			return On(which, Apply(FieldOp(f))), nil
		case KindCopy, KindDrop:
			n, err := d.uvarint32()
			if err != nil {
				return Op{}, err
			}
			return On(which, StackOp{Kind: StackOpKind(kind), N: n}), nil
		default:
			return Op{}, fmt.Errorf("%w: stack op kind %d", ErrUnknownTag, kind)
		}
	case OpMove:
		n, err := d.uvarint32()
		if err != nil {
			return Op{}, err
		}
		from, err := d.stack()
		if err != nil {
			return Op{}, err
		}
		to, err := d.stack()
		if err != nil {
			return Op{}, err
		}
		return Move(n, from, to), nil
	default:
		return Op{}, fmt.Errorf("%w: op %d", ErrUnknownTag, tag)
	}
}
