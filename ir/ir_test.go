package ir

import (
	"testing"

	"github.com/mna/tcldecompile/dialect"
	"github.com/stretchr/testify/require"
)

func TestLiteralDestacked(t *testing.T) {
	lit := NewLiteral("abc", 1)
	require.Equal(t, 1, lit.StackN())

	d := lit.Destacked()
	require.Equal(t, 0, d.StackN())
	require.Equal(t, "abc", d.(*Literal).Text)
	// original is unmodified
	require.Equal(t, 1, lit.StackN())
}

func TestDestackedPanicsWhenNotResident(t *testing.T) {
	lit := NewLiteral("abc", 0)
	require.Panics(t, func() { lit.Destacked() })
}

func TestProcCallLikeMembership(t *testing.T) {
	var values = []Value{
		NewProcCall([]Value{NewLiteral("puts", 1)}, 1),
		NewSet(NewLiteral("x", 0), NewLiteral("1", 1), 1),
		NewVariable(NewLiteral("x", 1), 1),
		NewReturn(NewLiteral("", 1), NewLiteral("", 1), 1),
		NewDone(NewLiteral("", 1), 1),
	}
	for _, v := range values {
		_, ok := v.(ProcCallLike)
		require.True(t, ok, "%T should be ProcCallLike", v)
	}

	notProcCallLike := []Value{
		NewLiteral("x", 1),
		NewVarRef(NewLiteral("x", 1), 1),
		NewExpr(OpAdd, []Value{NewLiteral("1", 1), NewLiteral("2", 1)}, 1),
	}
	for _, v := range notProcCallLike {
		_, ok := v.(ProcCallLike)
		require.False(t, ok, "%T should not be ProcCallLike", v)
	}
}

func TestExprOpArity(t *testing.T) {
	require.Equal(t, 1, OpNot.Arity())
	require.Equal(t, 2, OpAdd.Arity())
	require.Equal(t, 2, OpEQ.Arity())
}

func TestBasicBlockReplaceIsImmutable(t *testing.T) {
	b := New(0, []Item{NewLiteral("a", 1), NewLiteral("b", 1)})
	nb := b.Replace(1, 2, []Item{NewLiteral("c", 1)})

	require.Len(t, b.Insts, 2)
	require.Len(t, nb.Insts, 2)
	require.Equal(t, "b", b.Insts[1].(*Literal).Text)
	require.Equal(t, "c", nb.Insts[1].(*Literal).Text)
}

func TestBasicBlockAppendPopLast(t *testing.T) {
	b := New(0, []Item{NewLiteral("a", 1)})
	appended := b.Append(NewLiteral("b", 1))
	require.Len(t, appended.Insts, 2)

	popped := appended.PopLast()
	require.Len(t, popped.Insts, 1)
	require.Equal(t, "a", popped.Insts[0].(*Literal).Text)
}

func TestBasicBlockTerminatingJump(t *testing.T) {
	b := New(0, []Item{NewLiteral("a", 1), &Jump{On: OnNone, TargetLoc: 4}})
	j, ok := b.TerminatingJump()
	require.True(t, ok)
	require.Equal(t, 4, j.TargetLoc)

	b2 := New(0, []Item{NewLiteral("a", 1)})
	_, ok = b2.TerminatingJump()
	require.False(t, ok)
}

func TestBasicBlockCountRawInstructions(t *testing.T) {
	b := New(0, []Item{NewLiteral("a", 1)})
	require.Equal(t, 0, b.CountRawInstructions())
	require.False(t, b.HasRawInstructions())
}

func TestIfCatchForeachDestacked(t *testing.T) {
	then := New(4, []Item{NewLiteral("", 0)})
	els := New(8, nil)
	condJump := &Jump{On: OnFalse, TargetLoc: 8, Operand: NewLiteral("1", 1)}
	elseJump := &Jump{On: OnNone, TargetLoc: 12}
	ifNode := NewIf(condJump, elseJump, then, els, 1)
	require.Equal(t, 1, ifNode.StackN())
	d := ifNode.Destacked()
	require.Equal(t, 0, d.StackN())

	catch := NewCatch(New(0, nil), New(4, nil), New(8, nil), "err", 1)
	require.Equal(t, 0, catch.Destacked().StackN())

	fe := NewForeach(New(0, nil), New(4, nil), New(8, nil), NewLiteral("", 0), dialect.ForeachInfo{}, 1)
	require.Equal(t, 0, fe.Destacked().StackN())
}
