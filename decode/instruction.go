// Package decode implements the instruction decoder: it consumes a cursor
// and an opcode-metadata table to produce a flat, ordered sequence of
// Instruction records.
package decode

import "fmt"

// Instruction is one decoded opcode, with its operands already resolved
// against the literal/local/aux tables where the operand kind calls for it.
// An operand is one of: int64 (a signed or raw unsigned integer), string (a
// local-variable name), or dialect.ForeachInfo (a resolved aux record).
type Instruction struct {
	Loc       int
	Name      string
	Ops       []any
	TargetLoc *int // set iff Name is one of the six jump opcodes
}

func (i Instruction) String() string {
	if i.TargetLoc != nil {
		return fmt.Sprintf("<%04d: %s %v -> %d>", i.Loc, i.Name, i.Ops, *i.TargetLoc)
	}
	if len(i.Ops) == 0 {
		return fmt.Sprintf("<%04d: %s>", i.Loc, i.Name)
	}
	return fmt.Sprintf("<%04d: %s %v>", i.Loc, i.Name, i.Ops)
}
