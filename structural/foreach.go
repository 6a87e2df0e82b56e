package structural

import (
	"reflect"

	"github.com/mna/tcldecompile/blocks"
	"github.com/mna/tcldecompile/decode"
	"github.com/mna/tcldecompile/dialect"
	"github.com/mna/tcldecompile/ir"
)

// recognizeForeach looks for four consecutive blocks [b0, b1, b2, b3]
// forming a foreach loop: b0 ends with the list-temporary Set followed by a
// raw foreach_start4; b1 (the step block) ends with a raw foreach_step4
// immediately followed by a raw jumpFalse1 out of the loop (jumpFalse1 can
// never reduce here since foreach_step4 has no reduction-table entry and so
// is never a Value); b2 (the body) is fully reduced and ends with an
// unconditional jump back to b1; b3 begins with the dummy literal the
// compiler leaves after the loop.
func recognizeForeach(bs []*ir.BasicBlock) ([]*ir.BasicBlock, bool, error) {
	if len(bs) < 4 {
		return bs, false, nil
	}
	tc := blocks.CountTargets(bs)
	for i := 0; i+3 < len(bs); i++ {
		b0, b1, b2, b3 := bs[i], bs[i+1], bs[i+2], bs[i+3]

		startInfo, set, ok := matchForeachStart(b0)
		if !ok {
			continue
		}
		stepInfo, jumpFalse, ok := matchForeachStep(b1)
		if !ok {
			continue
		}
		if jumpFalse.TargetLoc != b3.Loc {
			continue
		}
		loopJump, ok := b2.TerminatingJump()
		if !ok || loopJump.On != ir.OnNone || loopJump.TargetLoc != b1.Loc {
			continue
		}
		if b2.HasRawInstructions() {
			continue
		}
		first, ok := b3.First()
		if !ok {
			continue
		}
		endLit, ok := first.(*ir.Literal)
		if !ok {
			continue
		}
		if tc.Count(b1.Loc) != 1 {
			continue
		}
		if tc.Count(b2.Loc) != 0 {
			continue
		}
		if tc.Count(b3.Loc) > 1 {
			continue
		}
		if !reflect.DeepEqual(startInfo, stepInfo) {
			continue
		}

		begin := ir.New(b0.Loc, []ir.Item{set, b0.Insts[len(b0.Insts)-1]})
		b0Remainder := b0.Replace(len(b0.Insts)-2, len(b0.Insts), nil)
		b3Remainder := b3.Replace(0, 1, nil)

		foreachNode := ir.NewForeach(begin, b1, b2, endLit, startInfo, 1)
		newB0 := b0Remainder.Append(foreachNode)

		return spliceBlocks(bs, i, i+4, newB0, b3Remainder), true, nil
	}
	return bs, false, nil
}

func matchForeachStart(b *ir.BasicBlock) (dialect.ForeachInfo, ir.Item, bool) {
	if len(b.Insts) < 2 {
		return dialect.ForeachInfo{}, nil, false
	}
	last := b.Insts[len(b.Insts)-1]
	inst, ok := last.(decode.Instruction)
	if !ok || inst.Name != "foreach_start4" || len(inst.Ops) != 1 {
		return dialect.ForeachInfo{}, nil, false
	}
	info, ok := inst.Ops[0].(dialect.ForeachInfo)
	if !ok {
		return dialect.ForeachInfo{}, nil, false
	}
	set := b.Insts[len(b.Insts)-2]
	if _, ok := set.(*ir.Set); !ok {
		return dialect.ForeachInfo{}, nil, false
	}
	return info, set, true
}

func matchForeachStep(b *ir.BasicBlock) (dialect.ForeachInfo, *ir.Jump, bool) {
	if len(b.Insts) < 2 {
		return dialect.ForeachInfo{}, nil, false
	}
	jf, ok := b.Insts[len(b.Insts)-1].(decode.Instruction)
	if !ok || jf.Name != "jumpFalse1" {
		return dialect.ForeachInfo{}, nil, false
	}
	step, ok := b.Insts[len(b.Insts)-2].(decode.Instruction)
	if !ok || step.Name != "foreach_step4" || len(step.Ops) != 1 {
		return dialect.ForeachInfo{}, nil, false
	}
	info, ok := step.Ops[0].(dialect.ForeachInfo)
	if !ok {
		return dialect.ForeachInfo{}, nil, false
	}
	if jf.TargetLoc == nil {
		return dialect.ForeachInfo{}, nil, false
	}
	return info, &ir.Jump{On: ir.OnFalse, TargetLoc: *jf.TargetLoc}, true
}
