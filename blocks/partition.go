// Package blocks implements the basic-block partitioner and the block
// coalescer: the components that split an instruction sequence into
// maximal straight-line basic blocks, and later remove dead empty blocks
// and join adjacent blocks lacking control-flow boundaries.
package blocks

import (
	"sort"

	"github.com/mna/tcldecompile/dcerr"
	"github.com/mna/tcldecompile/decode"
	"github.com/mna/tcldecompile/ir"
)

// Partition splits insts into basic blocks at jump sources, jump targets,
// and catch boundaries, per the partitioner's contract. It requires
// len(starts) == len(ends) as a post-condition, asserting the correctness
// of the opcode metadata that produced insts; a mismatch is reported as an
// InvariantViolation since it means the input bytecode is not well-formed
// under the recognised dialect.
func Partition(insts []decode.Instruction) ([]*ir.BasicBlock, error) {
	if len(insts) == 0 {
		return nil, nil
	}

	locIndex := make(map[int]int, len(insts))
	for i, in := range insts {
		locIndex[in.Loc] = i
	}

	starts := make(map[int]bool)
	ends := make(map[int]bool)

	starts[insts[0].Loc] = true
	for i, in := range insts {
		if in.TargetLoc != nil {
			ends[in.Loc] = true
			starts[*in.TargetLoc] = true
			if *in.TargetLoc != 0 {
				if bi, ok := locIndex[*in.TargetLoc]; ok && bi > 0 {
					ends[insts[bi-1].Loc] = true
				}
			}
			if i+1 < len(insts) {
				starts[insts[i+1].Loc] = true
			}
		} else if in.Name == "beginCatch4" || in.Name == "endCatch" {
			starts[in.Loc] = true
			if i > 0 {
				ends[insts[i-1].Loc] = true
			}
		}
	}
	ends[insts[len(insts)-1].Loc] = true

	if len(starts) != len(ends) {
		return nil, &dcerr.InvariantViolation{
			Where: "blocks.Partition",
			Want:  "equal number of block starts and ends",
			Got:   "mismatched partitioning sets (malformed opcode metadata or bytecode)",
		}
	}

	startLocs := sortedKeys(starts)
	endLocs := sortedKeys(ends)

	out := make([]*ir.BasicBlock, 0, len(startLocs))
	for i, start := range startLocs {
		end := endLocs[i]
		si, ok := locIndex[start]
		if !ok {
			return nil, &dcerr.InvariantViolation{Where: "blocks.Partition", Want: "start offset to match an instruction", Got: "no instruction at that offset"}
		}
		ei, ok := locIndex[end]
		if !ok || ei < si {
			return nil, &dcerr.InvariantViolation{Where: "blocks.Partition", Want: "end offset to match an instruction at or after start", Got: "no instruction at that offset"}
		}
		items := make([]ir.Item, 0, ei-si+1)
		for _, in := range insts[si : ei+1] {
			items = append(items, in)
		}
		out = append(out, ir.New(start, items))
	}
	return out, nil
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
