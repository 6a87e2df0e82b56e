package dialect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLiteralsLocalsCode(t *testing.T) {
	text := `
.literals
""
"foo"
.locals
x
.code
push1 1
storeScalar1 x
`
	in, err := Parse(text)
	require.NoError(t, err)
	require.Equal(t, []string{"", "foo"}, in.Literals)
	require.Equal(t, []string{"x"}, in.Locals)

	table := NewOpcodeTable()
	rev := reverseOpcodeTable(table)

	// push1 1 -> opcode byte + uint1(1); storeScalar1 x -> opcode byte + lvt1(0)
	want := []byte{rev["push1"], 1, rev["storeScalar1"], 0}
	require.Equal(t, want, in.Bytes)
}

func TestParseLiteralEscapes(t *testing.T) {
	in, err := Parse(".literals\n\"a\\nb\\tc\\\\d\\\"e\"\n.code\n")
	require.NoError(t, err)
	require.Equal(t, []string{"a\nb\tc\\d\"e"}, in.Literals)
}

func TestParseAuxForeach(t *testing.T) {
	text := `
.locals
x
y
.aux
foreach {x y}
.code
`
	in, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, in.Auxes, 1)
	require.Equal(t, TagForeachInfo, in.Auxes[0].Tag)
	require.Equal(t, [][]int{{0, 1}}, in.Auxes[0].VarList)
}

func TestParseUnknownOpcode(t *testing.T) {
	_, err := Parse(".code\nbogusOp\n")
	require.Error(t, err)
}

func TestParseWrongOperandCount(t *testing.T) {
	_, err := Parse(".code\npush1\n")
	require.Error(t, err)
}

func TestParseUnknownLocal(t *testing.T) {
	_, err := Parse(".code\nstoreScalar1 missing\n")
	require.Error(t, err)
}

func TestParseMalformedLiteral(t *testing.T) {
	_, err := Parse(".literals\nnotquoted\n")
	require.Error(t, err)
}

func TestFormatRoundTripsThroughParse(t *testing.T) {
	text := `
.literals
"foo"
""
.locals
x
y
.aux
foreach {x y}
.code
push1 0
storeScalar1 x
foreach_start4 0
`
	in, err := Parse(text)
	require.NoError(t, err)

	table := NewOpcodeTable()
	out, err := Format(in, table)
	require.NoError(t, err)

	reparsed, err := Parse(out)
	require.NoError(t, err)
	require.Equal(t, in, reparsed)
}

func TestFormatRendersLocalNamesNotIndices(t *testing.T) {
	in, err := Parse(".locals\nx\n.code\nstoreScalar1 x\n")
	require.NoError(t, err)

	out, err := Format(in, NewOpcodeTable())
	require.NoError(t, err)
	require.Contains(t, out, "storeScalar1 x")
}

func TestFormatUnknownOpcodeByte(t *testing.T) {
	_, err := Format(Input{Bytes: []byte{0xFE}}, NewOpcodeTable())
	require.Error(t, err)
}
