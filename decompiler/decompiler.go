// Package decompiler wires the cursor, decoder, partitioner, reducer,
// coalescer and structural recognizer into the driver loop and exposes the
// two entry points the rest of the repository and cmd/decompile consume.
package decompiler

import (
	"fmt"
	"os"
	"strings"

	"github.com/mna/tcldecompile/blocks"
	"github.com/mna/tcldecompile/cursor"
	"github.com/mna/tcldecompile/dcerr"
	"github.com/mna/tcldecompile/decode"
	"github.com/mna/tcldecompile/dialect"
	"github.com/mna/tcldecompile/format"
	"github.com/mna/tcldecompile/ir"
	"github.com/mna/tcldecompile/reduce"
	"github.com/mna/tcldecompile/structural"
)

// Debug, when true, traces every driver iteration to stderr: which stage
// fired and the change it made. Mirrors the compiler package's package-level
// debug switch.
var Debug bool

func trace(format string, args ...any) {
	if Debug {
		fmt.Fprintf(os.Stderr, "decompiler: "+format+"\n", args...)
	}
}

// Decompile runs the driver to a fixpoint and renders the result as source
// text. If the fixpoint still contains raw, unrecognised instructions, the
// rendered text includes their debug form and the returned error is a
// *dcerr.UnrecognisedStructureError — the text is still usable, per the
// "halt and present residue" policy; only DecodeError and
// InvariantViolation abort without a result.
func Decompile(in dialect.Input, table dialect.OpcodeTable) (string, error) {
	bs, _, err := run(in, table)
	if err != nil {
		return "", err
	}
	text := renderProgram(bs)
	if n := countRaw(bs); n > 0 {
		return text, &dcerr.UnrecognisedStructureError{Remaining: n}
	}
	return text, nil
}

// Step is one driver iteration's diagnostic snapshot: a flat, per-block
// preview of every item's current rendering.
type Step struct {
	Blocks [][]string
}

// Transition ties a block's item span in one step to its item span in the
// next. The ranges cover the whole block ([0, item count)), not the exact
// sub-range a reduction replaced.
type Transition struct {
	PrevIter   int
	BlockIndex int
	PrevRange  reduce.Range
	CurIter    int
	CurRange   reduce.Range
}

// DecompileSteps runs the driver exactly like Decompile but returns every
// intermediate snapshot and the transitions between them, for diagnostic
// UIs that want to show the decompilation unfolding.
func DecompileSteps(in dialect.Input, table dialect.OpcodeTable) ([]Step, []Transition, error) {
	bs, steps, err := run(in, table)
	if err != nil {
		return nil, nil, err
	}
	_ = bs
	return steps, buildTransitions(steps), nil
}

func run(in dialect.Input, table dialect.OpcodeTable) ([]*ir.BasicBlock, []Step, error) {
	c := cursor.New(in)
	insts, err := decode.Decode(c, table)
	if err != nil {
		return nil, nil, err
	}
	bs, err := blocks.Partition(insts)
	if err != nil {
		return nil, nil, err
	}

	var steps []Step
	steps = append(steps, snapshot(bs))

	for i, b := range bs {
		nb, _, err := reduce.Hack(b, c)
		if err != nil {
			return nil, nil, err
		}
		bs[i] = nb
	}
	trace("pre-pass hack complete")
	steps = append(steps, snapshot(bs))

	for iter := 0; ; iter++ {
		if nb, changed, idx, cr, err := reduce.Sweep(bs, c); err != nil {
			return nil, nil, err
		} else if changed {
			bs = nb
			trace("iteration %d: reduced block %d, %v -> %v", iter, idx, cr.From, cr.To)
			steps = append(steps, snapshot(bs))
			continue
		}
		if nb, changed := blocks.Coalesce(bs); changed {
			bs = nb
			trace("iteration %d: coalesced", iter)
			steps = append(steps, snapshot(bs))
			continue
		}
		if nb, changed, err := structural.Recognize(bs); err != nil {
			return nil, nil, err
		} else if changed {
			bs = nb
			trace("iteration %d: recognized structure", iter)
			steps = append(steps, snapshot(bs))
			continue
		}
		break
	}
	return bs, steps, nil
}

func countRaw(bs []*ir.BasicBlock) int {
	n := 0
	for _, b := range bs {
		n += b.CountRawInstructions()
	}
	return n
}

func renderProgram(bs []*ir.BasicBlock) string {
	var parts []string
	for _, b := range bs {
		if s := format.Block(b, 0); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func snapshot(bs []*ir.BasicBlock) Step {
	out := make([][]string, len(bs))
	for i, b := range bs {
		lines := make([]string, len(b.Insts))
		for j, it := range b.Insts {
			lines[j] = previewItem(it)
		}
		out[i] = lines
	}
	return Step{Blocks: out}
}

func previewItem(it ir.Item) string {
	switch v := it.(type) {
	case decode.Instruction:
		return v.String()
	case *ir.Jump:
		return fmt.Sprintf("Jump{on=%d target=%d}", v.On, v.TargetLoc)
	case ir.Value:
		return format.Format(v)
	default:
		return fmt.Sprintf("%v", it)
	}
}

// buildTransitions is a best-effort diagnostic: it cannot recover which
// block index a change applied to once blocks are later spliced away by
// coalescing or structural recognition, so it only attributes transitions
// between steps of identical block count (a bare reduction step, not one
// that also changed block topology), and only for blocks whose item count
// changed: a one-for-one replacement such as push1 -> Literal gets no
// transition.
func buildTransitions(steps []Step) []Transition {
	var out []Transition
	for i := 1; i < len(steps); i++ {
		prev, cur := steps[i-1], steps[i]
		if len(prev.Blocks) != len(cur.Blocks) {
			continue
		}
		for bi := range prev.Blocks {
			if len(prev.Blocks[bi]) == len(cur.Blocks[bi]) {
				continue
			}
			out = append(out, Transition{
				PrevIter:   i - 1,
				BlockIndex: bi,
				PrevRange:  reduce.Range{Lo: 0, Hi: len(prev.Blocks[bi])},
				CurIter:    i,
				CurRange:   reduce.Range{Lo: 0, Hi: len(cur.Blocks[bi])},
			})
		}
	}
	return out
}
