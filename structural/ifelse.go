package structural

import (
	"github.com/mna/tcldecompile/blocks"
	"github.com/mna/tcldecompile/ir"
)

// recognizeIf looks for four consecutive blocks [b0, b1, b2, b3] forming an
// if/else: b0 ends with a conditional jump to b2, b1 ends with an
// unconditional jump to b3, b2 has no terminating jump, b1 and b2 are fully
// reduced, b1 is the target of nothing and b2 is the target of at most the
// one jump from b0.
func recognizeIf(bs []*ir.BasicBlock) ([]*ir.BasicBlock, bool, error) {
	if len(bs) < 4 {
		return bs, false, nil
	}
	tc := blocks.CountTargets(bs)
	for i := 0; i+3 < len(bs); i++ {
		b0, b1, b2, b3 := bs[i], bs[i+1], bs[i+2], bs[i+3]

		condJump, ok := b0.TerminatingJump()
		if !ok || condJump.On == ir.OnNone {
			continue
		}
		if condJump.TargetLoc != b2.Loc {
			continue
		}
		elseJump, ok := b1.TerminatingJump()
		if !ok || elseJump.On != ir.OnNone {
			continue
		}
		if elseJump.TargetLoc != b3.Loc {
			continue
		}
		if _, ok := b2.TerminatingJump(); ok {
			continue
		}
		if b1.HasRawInstructions() || b2.HasRawInstructions() {
			continue
		}
		if tc.Count(b1.Loc) != 0 {
			continue
		}
		if tc.Count(b2.Loc) > 1 {
			continue
		}

		thenBlock := finalizeBranch(b1.PopLast())
		elseBlock := finalizeBranch(b2)
		ifNode := ir.NewIf(condJump, elseJump, thenBlock, elseBlock, 1)
		newB0 := b0.PopLast().Append(ifNode)

		return spliceBlocks(bs, i, i+4, newB0, b3), true, nil
	}
	return bs, false, nil
}

// finalizeBranch applies the If's own rendering promotion to a branch
// block: a terminal empty-string Literal (the value the compiler pushes
// for a branch with no real result) is dropped, and a terminal
// stack-resident ProcCall is destacked, so the branch's result becomes the
// if-statement's own result instead of a bracket-wrapped expression.
func finalizeBranch(b *ir.BasicBlock) *ir.BasicBlock {
	last, ok := b.Last()
	if !ok {
		return b
	}
	if lit, ok := last.(*ir.Literal); ok && lit.Text == "" {
		return b.PopLast()
	}
	if v, ok := last.(ir.ProcCallLike); ok && v.StackN() == 1 {
		return b.Replace(len(b.Insts)-1, len(b.Insts), []ir.Item{v.Destacked()})
	}
	return b
}
