package format

import (
	"testing"

	"github.com/mna/tcldecompile/decode"
	"github.com/mna/tcldecompile/dialect"
	"github.com/mna/tcldecompile/ir"
	"github.com/stretchr/testify/require"
)

func rawInst() decode.Instruction {
	return decode.Instruction{Loc: 0, Name: "pop"}
}

func TestQuoteLiteralTiers(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", "{}"},
		{"abc", "abc"},
		{"a b", "{a b}"},
		{"{abc}", "{{abc}}"},
		{"a{b}c", "{a{b}c}"},
		{"a{b", `"a\{b"`},
		{"has\ttab", "{has\ttab}"},
		{"has\fform", `"has\fform"`},
		{"has\rcr", `"has\rcr"`},
		{"has\vvt", `"has\vvt"`},
		{`has"quote`, `{has"quote}`},
		{"has$dollar", "{has$dollar}"},
		{"has[bracket]", "{has[bracket]}"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, QuoteLiteral(c.in), c.in)
	}
}

func TestFormatLiteralVarArray(t *testing.T) {
	require.Equal(t, "abc", Format(ir.NewLiteral("abc", 1)))
	require.Equal(t, "$x", Format(ir.NewVarRef(ir.NewLiteral("x", 1), 1)))
	require.Equal(t, "$a(1)", Format(ir.NewArrayRef(ir.NewLiteral("a", 1), ir.NewLiteral("1", 1), 1)))
}

func TestFormatExprNegationAndWrapper(t *testing.T) {
	expr := ir.NewExpr(ir.OpGT, []ir.Value{ir.NewVarRef(ir.NewLiteral("x", 1), 1), ir.NewLiteral("0", 1)}, 1)
	require.Equal(t, "[expr {$x > 0}]", Format(expr))

	not := ir.NewExpr(ir.OpNot, []ir.Value{ir.NewVarRef(ir.NewLiteral("ok", 1), 1)}, 1)
	require.Equal(t, "[expr {!$ok}]", Format(not))
}

func TestFormatProcCallBracketWrapping(t *testing.T) {
	stacked := ir.NewProcCall([]ir.Value{ir.NewLiteral("puts", 1), ir.NewLiteral("hi", 1)}, 1)
	require.Equal(t, "[puts hi]", Format(stacked))

	bare := ir.NewProcCall([]ir.Value{ir.NewLiteral("puts", 1), ir.NewLiteral("hi", 1)}, 0)
	require.Equal(t, "puts hi", Format(bare))
}

func TestFormatArraySetSplit(t *testing.T) {
	call := ir.NewProcCall([]ir.Value{
		ir.NewLiteral("::tcl::array::set", 1),
		ir.NewLiteral("a", 1),
		ir.NewLiteral("1 2", 1),
	}, 0)
	require.Equal(t, "array set a {1 2}", Format(call))
}

func TestFormatReturnEmptyIsBare(t *testing.T) {
	ret := ir.NewReturn(ir.NewLiteral("", 1), ir.NewLiteral("", 1), 0)
	require.Equal(t, "return", Format(ret))

	ret2 := ir.NewReturn(ir.NewLiteral("ok", 1), ir.NewLiteral("", 1), 0)
	require.Equal(t, "return ok", Format(ret2))
}

func TestFormatDoneRendersInnerBare(t *testing.T) {
	call := ir.NewProcCall([]ir.Value{ir.NewLiteral("puts", 1), ir.NewLiteral("hi", 1)}, 1)
	done := ir.NewDone(call, 0)
	require.Equal(t, "puts hi", Format(done))
}

func TestConditionNegatesOnTrueJump(t *testing.T) {
	cond := ir.NewExpr(ir.OpGT, []ir.Value{ir.NewVarRef(ir.NewLiteral("x", 1), 1), ir.NewLiteral("0", 1)}, 1)

	onFalse := &ir.Jump{On: ir.OnFalse, TargetLoc: 8, Operand: cond}
	require.Equal(t, "$x > 0", condition(onFalse))

	onTrue := &ir.Jump{On: ir.OnTrue, TargetLoc: 8, Operand: cond}
	require.Equal(t, "!($x > 0)", condition(onTrue))
}

func TestFormatIfBlockRendersBothBranches(t *testing.T) {
	cond := ir.NewExpr(ir.OpGT, []ir.Value{ir.NewVarRef(ir.NewLiteral("x", 1), 1), ir.NewLiteral("0", 1)}, 1)
	condJump := &ir.Jump{On: ir.OnFalse, TargetLoc: 8, Operand: cond}
	elseJump := &ir.Jump{On: ir.OnNone, TargetLoc: 12}
	then := ir.New(4, []ir.Item{ir.NewLiteral("pos", 0)})
	els := ir.New(8, []ir.Item{ir.NewLiteral("neg", 0)})
	ifNode := ir.NewIf(condJump, elseJump, then, els, 0)

	got := Statement(ifNode, 0)
	require.Contains(t, got, "if {$x > 0} {")
	require.Contains(t, got, "pos")
	require.Contains(t, got, "} else {")
	require.Contains(t, got, "neg")
}

func TestFormatCatchBlockRendersVarName(t *testing.T) {
	begin := ir.New(0, []ir.Item{ir.NewLiteral("risky", 0)})
	// middle is the raw pushResult/pushReturnCode pair the recognizer always
	// threads through untouched; it must never leak into the rendered text.
	middle := ir.New(4, []ir.Item{
		decode.Instruction{Loc: 4, Name: "pushResult"},
		decode.Instruction{Loc: 5, Name: "pushReturnCode"},
	})
	end := ir.New(8, nil)
	catch := ir.NewCatch(begin, middle, end, "err", 0)

	got := Statement(catch, 0)
	require.Contains(t, got, "catch {")
	require.Contains(t, got, "risky")
	require.Contains(t, got, "} err")
	require.NotContains(t, got, "# raw:")
	require.NotContains(t, got, "pushResult")
	require.NotContains(t, got, "pushReturnCode")
}

func TestFormatForeachBlockRendersCapturedList(t *testing.T) {
	begin := ir.New(0, []ir.Item{
		ir.NewSet(ir.NewVarRef(ir.NewLiteral("x", 1), 1), ir.NewLiteral("1 2 3", 1), 0),
	})
	step := ir.New(4, nil)
	// body still carries its back-edge jump to the step block, exactly as
	// the recognizer leaves it; it must not leak into the rendered text.
	body := ir.New(8, []ir.Item{
		ir.NewProcCall([]ir.Value{ir.NewLiteral("puts", 1), ir.NewVarRef(ir.NewLiteral("x", 1), 1)}, 0),
		&ir.Jump{On: ir.OnNone, TargetLoc: 4},
	})
	info := dialect.ForeachInfo{Vars: [][]string{{"x"}}}
	endLit := ir.NewLiteral("", 0)
	foreachNode := ir.NewForeach(begin, step, body, endLit, info, 0)

	got := Statement(foreachNode, 0)
	require.Contains(t, got, "foreach {x} {1 2 3} {")
	require.Contains(t, got, "puts $x")
	require.NotContains(t, got, "# raw:")
	require.NotContains(t, got, "# raw-jump:")
}

func TestStatementRawInstructionIsDebugComment(t *testing.T) {
	got := Statement(rawInst(), 0)
	require.Contains(t, got, "# raw:")
}
