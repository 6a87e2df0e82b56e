package blocks

import (
	"github.com/mna/tcldecompile/decode"
	"github.com/mna/tcldecompile/ir"
)

// Coalesce applies the two coalescer rules, stopping after the first
// successful application so the driver can re-enter reduction, matching the
// structural recognizer's single-transform-per-iteration discipline. It
// returns the (possibly unchanged) block list and whether a change was
// made.
func Coalesce(bs []*ir.BasicBlock) ([]*ir.BasicBlock, bool) {
	if out, ok := deleteDeadEmptyBlock(bs); ok {
		return out, true
	}
	if out, ok := mergeAdjacent(bs); ok {
		return out, true
	}
	return bs, false
}

// deleteDeadEmptyBlock removes the first empty block whose Loc is not the
// target of any jump.
func deleteDeadEmptyBlock(bs []*ir.BasicBlock) ([]*ir.BasicBlock, bool) {
	tc := CountTargets(bs)
	for i, b := range bs {
		if len(b.Insts) != 0 {
			continue
		}
		if tc.Count(b.Loc) > 0 {
			continue
		}
		out := make([]*ir.BasicBlock, 0, len(bs)-1)
		out = append(out, bs[:i]...)
		out = append(out, bs[i+1:]...)
		return out, true
	}
	return bs, false
}

// mergeAdjacent joins the first pair of consecutive blocks [b1, b2] where
// b1 has no terminating Jump and no unreduced jump instruction, b2.Loc is
// not a jump target, and b2 is neither a catch-begin nor a catch-end.
func mergeAdjacent(bs []*ir.BasicBlock) ([]*ir.BasicBlock, bool) {
	if len(bs) < 2 {
		return bs, false
	}
	tc := CountTargets(bs)
	for i := 0; i+1 < len(bs); i++ {
		b1, b2 := bs[i], bs[i+1]
		if _, ok := b1.TerminatingJump(); ok {
			continue
		}
		if last, ok := b1.Last(); ok {
			if in, ok := last.(decode.Instruction); ok && in.TargetLoc != nil {
				continue
			}
		}
		if tc.Count(b2.Loc) > 0 {
			continue
		}
		if isCatchBegin(b2) || isCatchEnd(b2) {
			continue
		}
		merged := b1.Append(b2.Insts...)
		out := make([]*ir.BasicBlock, 0, len(bs)-1)
		out = append(out, bs[:i]...)
		out = append(out, merged)
		out = append(out, bs[i+2:]...)
		return out, true
	}
	return bs, false
}

// IsCatchBegin reports whether b starts with a beginCatch4 instruction.
func IsCatchBegin(b *ir.BasicBlock) bool { return isCatchBegin(b) }

// IsCatchEnd reports whether b starts with an endCatch instruction.
func IsCatchEnd(b *ir.BasicBlock) bool { return isCatchEnd(b) }

func isCatchBegin(b *ir.BasicBlock) bool {
	first, ok := b.First()
	if !ok {
		return false
	}
	in, ok := first.(decode.Instruction)
	return ok && in.Name == "beginCatch4"
}

func isCatchEnd(b *ir.BasicBlock) bool {
	first, ok := b.First()
	if !ok {
		return false
	}
	in, ok := first.(decode.Instruction)
	return ok && in.Name == "endCatch"
}
