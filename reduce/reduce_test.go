package reduce

import (
	"testing"

	"github.com/mna/tcldecompile/cursor"
	"github.com/mna/tcldecompile/decode"
	"github.com/mna/tcldecompile/dialect"
	"github.com/mna/tcldecompile/ir"
	"github.com/stretchr/testify/require"
)

func newCursor(t *testing.T, literals []string) *cursor.Cursor {
	t.Helper()
	return cursor.New(dialect.Input{Literals: literals})
}

func TestOncePush(t *testing.T) {
	c := newCursor(t, []string{"hello"})
	b := ir.New(0, []ir.Item{decode.Instruction{Loc: 0, Name: "push1", Ops: []any{int64(0)}}})

	nb, changed, cr, err := Once(b, c)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, Range{0, 1}, cr.From)
	lit, ok := nb.Insts[0].(*ir.Literal)
	require.True(t, ok)
	require.Equal(t, "hello", lit.Text)
	require.Equal(t, 1, lit.StackN())
}

func TestOnceProcCall(t *testing.T) {
	c := newCursor(t, nil)
	callee := ir.NewLiteral("puts", 1)
	arg := ir.NewLiteral("hi", 1)
	b := ir.New(0, []ir.Item{
		callee,
		arg,
		decode.Instruction{Loc: 4, Name: "invokeStk1", Ops: []any{int64(2)}},
	})

	nb, changed, cr, err := Once(b, c)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, Range{0, 3}, cr.From)
	require.Len(t, nb.Insts, 1)
	call, ok := nb.Insts[0].(*ir.ProcCall)
	require.True(t, ok)
	require.Equal(t, []ir.Value{callee, arg}, call.Args)
}

func TestOnceSkipsConsumedSibling(t *testing.T) {
	c := newCursor(t, nil)
	// a value with StackN 0 in between must be skipped, not counted — but
	// the replaced range is still computed as [i-nargs, i+1), the same
	// naive span the source pipeline uses, so the actually-collected arg
	// (callee, outside that span) survives untouched while the skipped
	// sibling is swallowed by the replacement alongside the instruction.
	consumed := ir.NewLiteral("already-consumed", 0)
	callee := ir.NewLiteral("puts", 1)
	b := ir.New(0, []ir.Item{
		callee,
		consumed,
		decode.Instruction{Loc: 4, Name: "invokeStk1", Ops: []any{int64(1)}},
	})

	nb, changed, _, err := Once(b, c)
	require.NoError(t, err)
	require.True(t, changed)
	require.Len(t, nb.Insts, 2)
	require.Same(t, callee, nb.Insts[0])
	call := nb.Insts[1].(*ir.ProcCall)
	require.Equal(t, []ir.Value{callee}, call.Args)
}

func TestOnceNoMatchReturnsUnchanged(t *testing.T) {
	c := newCursor(t, nil)
	b := ir.New(0, []ir.Item{decode.Instruction{Loc: 0, Name: "invokeStk1", Ops: []any{int64(1)}}})

	nb, changed, cr, err := Once(b, c)
	require.NoError(t, err)
	require.False(t, changed)
	require.Nil(t, cr)
	require.Same(t, b, nb)
}

func TestPopDestacksProcCallLike(t *testing.T) {
	c := newCursor(t, nil)
	call := ir.NewProcCall([]ir.Value{ir.NewLiteral("puts", 1)}, 1)
	b := ir.New(0, []ir.Item{
		call,
		decode.Instruction{Loc: 4, Name: "pop"},
	})

	nb, changed, _, err := Once(b, c)
	require.NoError(t, err)
	require.True(t, changed)
	require.Len(t, nb.Insts, 1)
	got := nb.Insts[0].(*ir.ProcCall)
	require.Equal(t, 0, got.StackN())
}

func TestPopRejectsNonProcCallLike(t *testing.T) {
	c := newCursor(t, nil)
	lit := ir.NewLiteral("x", 1)
	b := ir.New(0, []ir.Item{
		lit,
		decode.Instruction{Loc: 4, Name: "pop"},
	})

	_, changed, _, err := Once(b, c)
	require.NoError(t, err)
	require.False(t, changed)
}

func TestDupDuplicatesSimpleValue(t *testing.T) {
	c := newCursor(t, nil)
	v := ir.NewVarRef(ir.NewLiteral("x", 1), 1)
	b := ir.New(0, []ir.Item{
		v,
		decode.Instruction{Loc: 4, Name: "dup"},
	})
	nb, changed, _, err := Once(b, c)
	require.NoError(t, err)
	require.True(t, changed)
	require.Len(t, nb.Insts, 2)
	require.Same(t, v, nb.Insts[0])
	require.Same(t, v, nb.Insts[1])
}

func TestSweepFindsFirstChangingBlock(t *testing.T) {
	c := newCursor(t, []string{"a"})
	bs := []*ir.BasicBlock{
		ir.New(0, []ir.Item{decode.Instruction{Loc: 0, Name: "nop"}}),
		ir.New(4, []ir.Item{decode.Instruction{Loc: 4, Name: "push1", Ops: []any{int64(0)}}}),
	}
	out, changed, idx, cr, err := Sweep(bs, c)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, 0, idx)
	require.NotNil(t, cr)
	require.Empty(t, out[0].Insts)
}

func TestSweepNoChange(t *testing.T) {
	c := newCursor(t, nil)
	bs := []*ir.BasicBlock{
		ir.New(0, []ir.Item{decode.Instruction{Loc: 0, Name: "invokeStk1", Ops: []any{int64(1)}}}),
	}
	_, changed, _, _, err := Sweep(bs, c)
	require.NoError(t, err)
	require.False(t, changed)
}

func TestHackStripsEmptyPushAfterVariable(t *testing.T) {
	c := newCursor(t, []string{""})
	b := ir.New(0, []ir.Item{
		decode.Instruction{Loc: 0, Name: "variable", Ops: []any{"x"}},
		decode.Instruction{Loc: 1, Name: "push1", Ops: []any{int64(0)}},
	})
	nb, changes, err := Hack(b, c)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Len(t, nb.Insts, 1)
}

func TestHackRejectsNonEmptyPush(t *testing.T) {
	c := newCursor(t, []string{"not-empty"})
	b := ir.New(0, []ir.Item{
		decode.Instruction{Loc: 0, Name: "variable", Ops: []any{"x"}},
		decode.Instruction{Loc: 1, Name: "push1", Ops: []any{int64(0)}},
	})
	_, _, err := Hack(b, c)
	require.Error(t, err)
}

func TestHackRejectsMissingFollower(t *testing.T) {
	c := newCursor(t, nil)
	b := ir.New(0, []ir.Item{
		decode.Instruction{Loc: 0, Name: "variable", Ops: []any{"x"}},
	})
	_, _, err := Hack(b, c)
	require.Error(t, err)
}
