package blocks

import (
	"github.com/dolthub/swiss"
	"github.com/mna/tcldecompile/decode"
	"github.com/mna/tcldecompile/ir"
)

// TargetCounts maps a byte offset to the number of distinct instructions or
// reduced Jump nodes among the block list's top-level items that target it;
// jumps already folded into an If, Catch or Foreach node are not counted. The
// structural recognizer's "is the target of nothing / at most one / exactly
// one jump" preconditions are all lookups into this multiset.
type TargetCounts struct {
	m *swiss.Map[uint32, int]
}

// CountTargets walks every block's items — both raw instructions that still
// carry a TargetLoc, and already-reduced *ir.Jump nodes — and tallies how
// many of them target each byte offset.
func CountTargets(bs []*ir.BasicBlock) *TargetCounts {
	tc := &TargetCounts{m: swiss.NewMap[uint32, int](uint32(len(bs)))}
	for _, b := range bs {
		for _, it := range b.Insts {
			switch v := it.(type) {
			case decode.Instruction:
				if v.TargetLoc != nil {
					tc.bump(*v.TargetLoc)
				}
			case *ir.Jump:
				tc.bump(v.TargetLoc)
			}
		}
	}
	return tc
}

func (tc *TargetCounts) bump(loc int) {
	n, _ := tc.m.Get(uint32(loc))
	tc.m.Put(uint32(loc), n+1)
}

// Count returns how many jumps target loc.
func (tc *TargetCounts) Count(loc int) int {
	n, _ := tc.m.Get(uint32(loc))
	return n
}
