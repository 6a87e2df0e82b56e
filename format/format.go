// Package format renders a fully (or partially) reduced instruction stream
// back into dialect source text.
package format

import (
	"fmt"
	"strings"

	"github.com/mna/tcldecompile/decode"
	"github.com/mna/tcldecompile/ir"
)

const indentUnit = "\t"

// Format renders a single expression-level Value.
func Format(v ir.Value) string {
	switch n := v.(type) {
	case *ir.Literal:
		return QuoteLiteral(n.Text)
	case *ir.VarRef:
		return "$" + formatVarName(n.Name)
	case *ir.ArrayRef:
		return "$" + formatVarName(n.Name) + "(" + Format(n.Index) + ")"
	case *ir.ArrayElt:
		return formatVarName(n.Name) + "(" + Format(n.Index) + ")"
	case *ir.Concat:
		return formatConcat(n)
	case *ir.Expr:
		return formatExpr(n)
	case *ir.ProcCall:
		return wrapIfStacked(n, formatWords(n.Args))
	case *ir.Set:
		return wrapIfStacked(n, "set "+Format(n.LValue)+" "+Format(n.RValue))
	case *ir.Variable:
		return wrapIfStacked(n, "variable "+Format(n.Name))
	case *ir.Return:
		if lit, ok := n.Value.(*ir.Literal); ok && lit.Text == "" {
			return "return"
		}
		return "return " + Format(n.Value)
	case *ir.Done:
		if inner, ok := n.Inner.(ir.ProcCallLike); ok {
			return formatBare(inner)
		}
		return "return " + Format(n.Inner)
	case *ir.If:
		return formatIfBlock(n, 0)
	case *ir.Catch:
		return formatCatchBlock(n, 0)
	case *ir.Foreach:
		return formatForeachBlock(n, 0)
	default:
		return fmt.Sprintf("<unformattable %T>", v)
	}
}

// formatVarName renders a Value used as a bare variable-or-array name: a
// simple Literal is written without quoting even if QuoteLiteral would
// otherwise brace it, since a variable name is never a full Tcl word.
func formatVarName(v ir.Value) string {
	if lit, ok := v.(*ir.Literal); ok {
		return lit.Text
	}
	return Format(v)
}

func formatConcat(n *ir.Concat) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, p := range n.Parts {
		switch pv := p.(type) {
		case *ir.Literal:
			b.WriteString(escapeQuoted(pv.Text))
		case *ir.VarRef:
			b.WriteString("$" + formatVarName(pv.Name))
		case *ir.ArrayRef:
			b.WriteString("$" + formatVarName(pv.Name) + "(" + Format(pv.Index) + ")")
		default:
			b.WriteString("[" + Format(pv) + "]")
		}
	}
	b.WriteByte('"')
	return b.String()
}

func formatExpr(n *ir.Expr) string {
	var inner string
	if n.Op == ir.OpNot {
		inner = string(n.Op) + Format(n.Operands[0])
	} else {
		inner = Format(n.Operands[0]) + " " + string(n.Op) + " " + Format(n.Operands[1])
	}
	return "[expr {" + inner + "}]"
}

// formatBare renders v the way Done renders its inner ProcCall-like node:
// bare, never bracket-wrapped, since it stands for the implicit final
// statement of its enclosing body rather than a nested expression.
func formatBare(v ir.Value) string {
	switch n := v.(type) {
	case *ir.ProcCall:
		return formatWords(n.Args)
	case *ir.Set:
		return "set " + Format(n.LValue) + " " + Format(n.RValue)
	case *ir.Variable:
		return "variable " + Format(n.Name)
	default:
		return Format(v)
	}
}

// wrapIfStacked brackets s when v is still stack-resident: a node reached
// this position as the operand of an enclosing expression rather than as a
// bare top-level statement.
func wrapIfStacked(v ir.Value, s string) string {
	if v.StackN() == 1 {
		return "[" + s + "]"
	}
	return s
}

func formatWords(args []ir.Value) string {
	words := make([]string, 0, len(args)+1)
	for i, a := range args {
		if i == 0 {
			if lit, ok := a.(*ir.Literal); ok && lit.Text == "::tcl::array::set" {
				words = append(words, "array", "set")
				continue
			}
		}
		words = append(words, Format(a))
	}
	return strings.Join(words, " ")
}

// Statement renders one top-level block item — a raw decode.Instruction
// (rendered as a debug comment, for partial/unrecognised output), or an IR
// node — at the given indent depth.
func Statement(item ir.Item, depth int) string {
	prefix := strings.Repeat(indentUnit, depth)
	switch v := item.(type) {
	case decode.Instruction:
		return prefix + "# raw: " + v.String()
	case *ir.Jump:
		return prefix + fmt.Sprintf("# raw-jump: on=%d -> %d", v.On, v.TargetLoc)
	case *ir.If:
		return prefix + formatIfBlock(v, depth)
	case *ir.Catch:
		return prefix + formatCatchBlock(v, depth)
	case *ir.Foreach:
		return prefix + formatForeachBlock(v, depth)
	case ir.Value:
		return prefix + Format(v)
	default:
		return prefix + fmt.Sprintf("# unrecognised item: %v", v)
	}
}

// Block renders every item of b as a sequence of indented statement lines.
func Block(b *ir.BasicBlock, depth int) string {
	if b == nil || len(b.Insts) == 0 {
		return ""
	}
	lines := make([]string, len(b.Insts))
	for i, item := range b.Insts {
		lines[i] = Statement(item, depth)
	}
	return strings.Join(lines, "\n")
}

// condition renders the guard of an If, negating it when the consumed jump
// was a conditional-on-true branch (since that jump skips the then-block
// exactly when the tested value is true).
func condition(j *ir.Jump) string {
	_, isExpr := j.Operand.(*ir.Expr)
	inner := innerExprText(j.Operand)
	if j.On != ir.OnTrue {
		return inner
	}
	if isExpr {
		return "!(" + inner + ")"
	}
	return "!" + inner
}

// innerExprText renders v the way Expr renders its own operands: without
// the [expr {...}] wrapper for a top-level Expr, so the text can be reused
// as an if-condition.
func innerExprText(v ir.Value) string {
	e, ok := v.(*ir.Expr)
	if !ok {
		return Format(v)
	}
	if e.Op == ir.OpNot {
		return string(e.Op) + Format(e.Operands[0])
	}
	return Format(e.Operands[0]) + " " + string(e.Op) + " " + Format(e.Operands[1])
}

func formatIfBlock(n *ir.If, depth int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "if {%s} {\n", condition(n.CondJump))
	b.WriteString(Block(n.Then, depth+1))
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(indentUnit, depth))
	if n.Else != nil && len(n.Else.Insts) > 0 {
		b.WriteString("} else {\n")
		b.WriteString(Block(n.Else, depth+1))
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(indentUnit, depth))
	}
	b.WriteString("}")
	return b.String()
}

func formatCatchBlock(n *ir.Catch, depth int) string {
	// n.Middle is the raw pushResult/pushReturnCode pair threaded straight
	// through by the recognizer: exception-handling bookkeeping with no
	// direct execution path, never part of the reconstructed source.
	var b strings.Builder
	b.WriteString("catch {\n")
	b.WriteString(Block(n.Begin, depth+1))
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(indentUnit, depth))
	fmt.Fprintf(&b, "} %s", n.VarName)
	return b.String()
}

func formatForeachBlock(n *ir.Foreach, depth int) string {
	var b strings.Builder
	b.WriteString("foreach ")
	for _, group := range n.Info.Vars {
		b.WriteString("{" + strings.Join(group, " ") + "} ")
	}
	b.WriteString(foreachListText(n.Begin) + " ")
	b.WriteString("{\n")
	b.WriteString(Block(foreachBody(n.Body), depth+1))
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(indentUnit, depth))
	b.WriteString("}")
	return b.String()
}

// foreachListText recovers the iterated list's source text from the
// list-temporary Set the recognizer captured in n.Begin (n.EndLit is the
// compiler's post-loop dummy push, never the iterated list itself).
func foreachListText(begin *ir.BasicBlock) string {
	if begin == nil || len(begin.Insts) == 0 {
		return ""
	}
	set, ok := begin.Insts[0].(*ir.Set)
	if !ok {
		return ""
	}
	return Format(set.RValue)
}

// foreachBody strips the body block's trailing back-edge jump (the
// unconditional jump to the step block that the recognizer leaves attached
// to n.Body), which is loop control flow and never part of the rendered
// source.
func foreachBody(body *ir.BasicBlock) *ir.BasicBlock {
	if body == nil {
		return nil
	}
	if _, ok := body.TerminatingJump(); ok {
		return body.PopLast()
	}
	return body
}
