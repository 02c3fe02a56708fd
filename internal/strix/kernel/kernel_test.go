package kernel

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomOp(rng *rand.Rand) Op {
	stack := WhichStack(rng.Intn(2))
	switch rng.Intn(4) {
	case 0:
		return On(stack, Apply(FieldOp(rng.Intn(6))))
	case 1:
		return On(stack, Copy(rng.Uint32()))
	case 2:
		return On(stack, Drop(uint32(rng.Intn(300))))
	default:
		return Move(rng.Uint32()>>uint(rng.Intn(32)), stack, WhichStack(rng.Intn(2)))
	}
}

func randomProgram(rng *rand.Rand, n int) Program {
	ops := make([]Op, n)
	for i := range ops {
		ops[i] = randomOp(rng)
	}
	return NewProgram(ops...)
}

func TestProgramImmutable(t *testing.T) {
	ops := []Op{On(Outside, Apply(One))}
	p := NewProgram(ops...)
	ops[0] = On(Inside, Apply(Zero))
	require.Equal(t, On(Outside, Apply(One)), p.At(0))

	got := p.Ops()
	got[0] = Move(1, Inside, Outside)
	require.Equal(t, On(Outside, Apply(One)), p.At(0))

	q := p.Append(On(Outside, Copy(0)))
	require.Equal(t, 1, p.Len())
	require.Equal(t, 2, q.Len())
}

func TestCodecRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{0, 1, 2, 17, 256} {
		p := randomProgram(rng, n)
		data, err := Encode(p)
		require.NoError(t, err)
		q, err := Decode(data)
		require.NoError(t, err)
		require.True(t, p.Equal(q), "program of %d ops did not round-trip", n)

		file, err := MarshalFile(p)
		require.NoError(t, err)
		require.True(t, IsFile(file))
		q, err = UnmarshalFile(file)
		require.NoError(t, err)
		require.True(t, p.Equal(q))
	}
}

func TestCodecFixedTags(t *testing.T) {
	p := NewProgram(
		On(Outside, Apply(Inv)),
		On(Inside, Copy(300)),
		Move(2, Outside, Inside),
	)
	data, err := Encode(p)
	require.NoError(t, err)
	require.Equal(t, []byte{
		0x03,
		0x01, 0x01, 0x00, 0x05,
		0x01, 0x00, 0x01, 0xac, 0x02,
		0x02, 0x02, 0x01, 0x00,
	}, data)
}

func TestDecodeRejects(t *testing.T) {
	good, err := Encode(NewProgram(On(Outside, Apply(Add)), Move(1, Inside, Outside)))
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"Empty", nil, ErrCorrupt},
		{"Truncated", good[:len(good)-1], ErrCorrupt},
		{"Trailing", append(append([]byte{}, good...), 0x00), ErrCorrupt},
		{"BadOpTag", []byte{0x01, 0x07, 0x00, 0x00, 0x00}, ErrUnknownTag},
		{"BadStack", []byte{0x01, 0x01, 0x02, 0x00, 0x00}, ErrUnknownTag},
		{"BadFieldOp", []byte{0x01, 0x01, 0x01, 0x00, 0x06}, ErrUnknownTag},
		{"BadStackOpKind", []byte{0x01, 0x01, 0x01, 0x03, 0x00}, ErrUnknownTag},
		{"HugeCount", []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, ErrCorrupt},
		{"Overflow", []byte{0x01, 0x02, 0xff, 0xff, 0xff, 0xff, 0x1f, 0x00, 0x01}, ErrCorrupt},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.data)
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestUnmarshalFileRejects(t *testing.T) {
	file, err := MarshalFile(NewProgram(On(Outside, Apply(One))))
	require.NoError(t, err)

	flipped := append([]byte{}, file...)
	flipped[6] ^= 0x01
	_, err = UnmarshalFile(flipped)
	require.ErrorIs(t, err, ErrChecksum)

	versioned := append([]byte{}, file...)
	versioned[4] = 9
	_, err = UnmarshalFile(versioned)
	require.ErrorIs(t, err, ErrVersion)

	_, err = UnmarshalFile([]byte("nope"))
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestEncodeRejectsInvalidOp(t *testing.T) {
	_, err := Encode(NewProgram(Op{Kind: OpStack, Stack: 5}))
	require.ErrorIs(t, err, ErrUnknownTag)
	_, err = Encode(NewProgram(Op{}))
	require.ErrorIs(t, err, ErrUnknownTag)
}

func TestAsmRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	p := randomProgram(rng, 64)
	q, err := Parse(p.String())
	require.NoError(t, err)
	require.True(t, p.Equal(q))
}

func TestParse(t *testing.T) {
	src := `
# push 2 and invert it
outside one
outside one   # again
outside add
outside inv
move 1 outside inside
inside copy 0
inside drop 1
`
	p, err := Parse(src)
	require.NoError(t, err)
	require.True(t, NewProgram(
		On(Outside, Apply(One)),
		On(Outside, Apply(One)),
		On(Outside, Apply(Add)),
		On(Outside, Apply(Inv)),
		Move(1, Outside, Inside),
		On(Inside, Copy(0)),
		On(Inside, Drop(1)),
	).Equal(p))

	for _, bad := range []string{
		"sideways one",
		"outside",
		"outside frobnicate",
		"outside copy",
		"outside copy -1",
		"outside add 3",
		"move 1 outside",
		"move x outside inside",
	} {
		_, err := Parse(bad)
		require.ErrorIs(t, err, ErrSyntax, bad)
	}
}

func TestDigest(t *testing.T) {
	p := NewProgram(On(Outside, Apply(Zero)), On(Outside, Apply(One)))
	q := NewProgram(On(Outside, Apply(One)), On(Outside, Apply(Zero)))
	require.Equal(t, ComputeDigest(p), ComputeDigest(NewProgram(p.Ops()...)))
	require.NotEqual(t, ComputeDigest(p), ComputeDigest(q))
	require.Len(t, ComputeDigest(p).String(), 16)
	require.Len(t, Elements(p), 5)
}

func TestOpValidate(t *testing.T) {
	require.NoError(t, On(Inside, Drop(3)).Validate())
	require.NoError(t, Move(0, Inside, Inside).Validate())
	require.Error(t, Op{Kind: OpStack, Stack: Outside, StackOp: StackOp{Kind: KindField, Field: Add, N: 1}}.Validate())
	require.Error(t, Op{Kind: OpMove, From: Inside, To: Outside, Stack: Outside}.Validate())
	require.Equal(t, 2, Mul.Arity())
	require.Equal(t, 0, One.Arity())
	require.Equal(t, Outside, Inside.Other())
}
