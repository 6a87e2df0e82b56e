package reduce

import (
	"github.com/mna/tcldecompile/cursor"
	"github.com/mna/tcldecompile/decode"
	"github.com/mna/tcldecompile/ir"
)

// Range is a half-open [Lo, Hi) span of a block's item slice.
type Range struct {
	Lo, Hi int
}

// ChangeRecord describes one reduction: the range of items it replaced, and
// the range the replacement now occupies.
type ChangeRecord struct {
	From Range
	To   Range
}

// backwardScan walks items[:i] in reverse, collecting up to nargs
// stack-resident (StackN() == 1) Value nodes for the instruction at i. A
// Value with StackN() == 0 is a consumed sibling still present as a
// statement and is skipped without counting against nargs. Scanning stops
// the moment nargs arguments are collected, or immediately on the first
// item that is not an ir.Value or that fails predicate. Matches the source
// pipeline's backward scan, including its assumption that a successful scan
// collects the nargs immediately preceding items (see Once).
func backwardScan(items []ir.Item, i, nargs int, predicate func(ir.Value) bool) ([]ir.Value, bool) {
	if nargs == 0 {
		return nil, true
	}
	collected := make([]ir.Value, 0, nargs)
	for argi := i - 1; argi >= 0 && len(collected) < nargs; argi-- {
		v, ok := items[argi].(ir.Value)
		if !ok {
			break
		}
		if v.StackN() != 1 {
			continue
		}
		if predicate != nil && !predicate(v) {
			break
		}
		collected = append(collected, v)
	}
	if len(collected) != nargs {
		return nil, false
	}
	for l, r := 0, len(collected)-1; l < r; l, r = l+1, r-1 {
		collected[l], collected[r] = collected[r], collected[l]
	}
	return collected, true
}

// Once attempts a single reduction within b: the first raw instruction
// (in item order) whose opcode has a table entry and whose operands can be
// satisfied by backwardScan is replaced. It returns the (possibly
// unchanged) block, whether a reduction fired, and the change record when
// one did.
func Once(b *ir.BasicBlock, c *cursor.Cursor) (*ir.BasicBlock, bool, *ChangeRecord, error) {
	for i, item := range b.Insts {
		inst, ok := item.(decode.Instruction)
		if !ok {
			continue
		}
		ent, ok := table[inst.Name]
		if !ok {
			continue
		}
		nargs, err := ent.nargs(inst)
		if err != nil {
			return nil, false, nil, err
		}
		args, ok := backwardScan(b.Insts, i, nargs, ent.predicate)
		if !ok {
			continue
		}
		repl, err := ent.construct(inst, args, c)
		if err != nil {
			return nil, false, nil, err
		}
		lo, hi := i-nargs, i+1
		newB := b.Replace(lo, hi, repl)
		cr := &ChangeRecord{From: Range{lo, hi}, To: Range{lo, lo + len(repl)}}
		return newB, true, cr, nil
	}
	return b, false, nil, nil
}

// Sweep tries Once on every block in order, stopping at the first block
// that changes (matching the driver's one-reduction-per-iteration
// discipline: reduction, coalescing and structural recognition each get a
// single attempt per driver iteration, across all blocks). It returns the
// index of the changed block alongside its change record so callers can
// attribute the change for diagnostics.
func Sweep(bs []*ir.BasicBlock, c *cursor.Cursor) (out []*ir.BasicBlock, changed bool, blockIndex int, cr *ChangeRecord, err error) {
	for i, b := range bs {
		newB, didChange, rec, err := Once(b, c)
		if err != nil {
			return nil, false, 0, nil, err
		}
		if !didChange {
			continue
		}
		out := make([]*ir.BasicBlock, len(bs))
		copy(out, bs)
		out[i] = newB
		return out, true, i, rec, nil
	}
	return bs, false, 0, nil, nil
}
