package structural

import (
	"github.com/mna/tcldecompile/decode"
	"github.com/mna/tcldecompile/ir"
)

// recognizeCatch looks for three consecutive blocks [begin, middle, end]
// forming a catch: begin opens with a raw beginCatch4 and otherwise holds
// exactly the already-reduced protected statement, a success-code literal
// and the unconditional jump past the error-handling code to end; end is
// exactly the four-instruction catch tail that stores the error into a
// local and discards the rest.
func recognizeCatch(bs []*ir.BasicBlock) ([]*ir.BasicBlock, bool, error) {
	if len(bs) < 3 {
		return bs, false, nil
	}
	for i := 0; i+2 < len(bs); i++ {
		begin, middle, end := bs[i], bs[i+1], bs[i+2]

		inner, ok := reshapeCatchBegin(begin, end.Loc)
		if !ok {
			continue
		}
		varName, tail, ok := matchCatchTail(end)
		if !ok {
			continue
		}

		beginPrime := ir.New(begin.Loc, []ir.Item{inner.Destacked()})
		endBlock := ir.New(end.Loc, tail)
		catchNode := ir.NewCatch(beginPrime, middle, endBlock, varName, 1)
		newBegin := ir.New(begin.Loc, []ir.Item{catchNode})

		return spliceBlocks(bs, i, i+3, newBegin), true, nil
	}
	return bs, false, nil
}

// reshapeCatchBegin validates that begin is exactly [beginCatch4, inner
// call, success-code literal, unconditional jump to endLoc], returning the
// inner call (still stack-resident) on success.
func reshapeCatchBegin(begin *ir.BasicBlock, endLoc int) (ir.Value, bool) {
	if len(begin.Insts) != 4 {
		return nil, false
	}
	first, ok := begin.Insts[0].(decode.Instruction)
	if !ok || first.Name != "beginCatch4" {
		return nil, false
	}
	inner, ok := begin.Insts[1].(ir.Value)
	if !ok || inner.StackN() != 1 {
		return nil, false
	}
	if _, ok := begin.Insts[2].(*ir.Literal); !ok {
		return nil, false
	}
	jump, ok := begin.Insts[3].(*ir.Jump)
	if !ok || jump.On != ir.OnNone || jump.TargetLoc != endLoc {
		return nil, false
	}
	return inner, true
}

// matchCatchTail validates that end is exactly [endCatch, reverse(2),
// storeScalar1(var), pop], returning the captured variable name.
func matchCatchTail(end *ir.BasicBlock) (string, []ir.Item, bool) {
	if len(end.Insts) != 4 {
		return "", nil, false
	}
	endCatch, ok := end.Insts[0].(decode.Instruction)
	if !ok || endCatch.Name != "endCatch" {
		return "", nil, false
	}
	rev, ok := end.Insts[1].(decode.Instruction)
	if !ok || rev.Name != "reverse" || len(rev.Ops) != 1 {
		return "", nil, false
	}
	if n, ok := rev.Ops[0].(int64); !ok || n != 2 {
		return "", nil, false
	}
	store, ok := end.Insts[2].(decode.Instruction)
	if !ok || store.Name != "storeScalar1" || len(store.Ops) != 1 {
		return "", nil, false
	}
	varName, ok := store.Ops[0].(string)
	if !ok {
		return "", nil, false
	}
	pop, ok := end.Insts[3].(decode.Instruction)
	if !ok || pop.Name != "pop" {
		return "", nil, false
	}
	return varName, end.Insts, true
}
