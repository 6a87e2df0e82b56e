package decode

import (
	"github.com/mna/tcldecompile/cursor"
	"github.com/mna/tcldecompile/dcerr"
	"github.com/mna/tcldecompile/dialect"
)

// Decode consumes c against table until the cursor is empty, returning the
// flat instruction sequence. It advances c to the end of the buffer: callers
// that need c's position kept should pass c.Snapshot().
func Decode(c *cursor.Cursor, table dialect.OpcodeTable) ([]Instruction, error) {
	var insts []Instruction
	for c.Remaining() > 0 {
		loc := c.Offset()
		opByte, err := c.PeekOpcode()
		if err != nil {
			return nil, err
		}
		meta, ok := table.Lookup(opByte)
		if !ok {
			return nil, &dcerr.DecodeError{Offset: loc, Reason: "unknown opcode"}
		}
		if _, err := c.Advance(1); err != nil {
			return nil, err
		}

		ops := make([]any, 0, len(meta.OperandKinds))
		for _, kind := range meta.OperandKinds {
			op, err := resolveOperand(c, kind)
			if err != nil {
				return nil, err
			}
			ops = append(ops, op)
		}

		inst := Instruction{Loc: loc, Name: meta.Name, Ops: ops}
		if dialect.IsJump(meta.Name) {
			if len(ops) == 0 {
				return nil, &dcerr.DecodeError{Offset: loc, Reason: "jump opcode missing offset operand"}
			}
			off, ok := ops[0].(int64)
			if !ok {
				return nil, &dcerr.DecodeError{Offset: loc, Reason: "jump offset operand is not an integer"}
			}
			target := loc + int(off)
			inst.TargetLoc = &target
		}
		insts = append(insts, inst)
	}
	return insts, nil
}

func resolveOperand(c *cursor.Cursor, kind dialect.OperandKind) (any, error) {
	switch kind {
	case dialect.INT1:
		return c.Int(1)
	case dialect.INT4:
		return c.Int(4)
	case dialect.UINT1:
		u, err := c.Uint(1)
		return int64(u), err
	case dialect.UINT4:
		u, err := c.Uint(4)
		return int64(u), err
	case dialect.IDX4:
		return c.Int(4)
	case dialect.LVT1:
		u, err := c.Uint(1)
		if err != nil {
			return nil, err
		}
		return c.Local(int(u))
	case dialect.LVT4:
		u, err := c.Uint(4)
		if err != nil {
			return nil, err
		}
		return c.Local(int(u))
	case dialect.AUX4:
		u, err := c.Uint(4)
		if err != nil {
			return nil, err
		}
		aux, err := c.Aux(int(u))
		if err != nil {
			return nil, err
		}
		switch aux.Tag {
		case dialect.TagForeachInfo:
			return c.ResolveForeachInfoAt(int(u), aux)
		default:
			return nil, &dcerr.DecodeError{Offset: c.Offset(), Reason: "unknown aux tag"}
		}
	case dialect.NONE:
		return nil, &dcerr.DecodeError{Offset: c.Offset(), Reason: "operand kind NONE must never be present"}
	default:
		return nil, &dcerr.DecodeError{Offset: c.Offset(), Reason: "unknown operand kind"}
	}
}
