// Package reduce implements the reducer: the component that iteratively
// rewrites raw instructions within a block into IR nodes by pattern-matching
// stack producers and consumers.
package reduce

import (
	"strconv"

	"github.com/mna/tcldecompile/cursor"
	"github.com/mna/tcldecompile/dcerr"
	"github.com/mna/tcldecompile/decode"
	"github.com/mna/tcldecompile/format"
	"github.com/mna/tcldecompile/ir"
)

// entry is one reduction-table row: how many stack arguments the opcode
// consumes, an optional predicate every argument must satisfy, and the
// constructor producing the replacement IR item(s).
type entry struct {
	nargs     func(inst decode.Instruction) (int, error)
	predicate func(ir.Value) bool
	construct func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error)
}

func fixedArgs(n int) func(decode.Instruction) (int, error) {
	return func(decode.Instruction) (int, error) { return n, nil }
}

func firstOpArgs(inst decode.Instruction) (int, error) {
	n, err := opInt(inst, 0)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func opInt(inst decode.Instruction, i int) (int64, error) {
	if i >= len(inst.Ops) {
		return 0, &dcerr.InvariantViolation{Where: "reduce.opInt", Want: "an operand at index " + strconv.Itoa(i), Got: "missing operand"}
	}
	n, ok := inst.Ops[i].(int64)
	if !ok {
		return 0, &dcerr.InvariantViolation{Where: "reduce.opInt", Want: "an integer operand", Got: "non-integer operand"}
	}
	return n, nil
}

func opName(inst decode.Instruction, i int) (string, error) {
	if i >= len(inst.Ops) {
		return "", &dcerr.InvariantViolation{Where: "reduce.opName", Want: "an operand at index " + strconv.Itoa(i), Got: "missing operand"}
	}
	s, ok := inst.Ops[i].(string)
	if !ok {
		return "", &dcerr.InvariantViolation{Where: "reduce.opName", Want: "a name operand", Got: "non-string operand"}
	}
	return s, nil
}

func isSimple(v ir.Value) bool {
	switch v.(type) {
	case *ir.Literal, *ir.VarRef, *ir.ArrayRef:
		return true
	default:
		return false
	}
}

func isProcCallLike(v ir.Value) bool {
	_, ok := v.(ir.ProcCallLike)
	return ok
}

func single(it ir.Item) ([]ir.Item, error) { return []ir.Item{it}, nil }

// incrArgs builds the argument list for an incr-family command: the
// literal callee "incr", the target, and, when delta != 1, a literal for
// the delta.
func incrArgs(target ir.Value, delta int64) []ir.Value {
	args := []ir.Value{ir.NewLiteral("incr", 1), target}
	if delta != 1 {
		args = append(args, ir.NewLiteral(strconv.FormatInt(delta, 10), 1))
	}
	return args
}

// table is the reduction table: one entry per opcode name.
var table = map[string]entry{
	"push1": {nargs: fixedArgs(0), construct: pushConstruct},
	"push4": {nargs: fixedArgs(0), construct: pushConstruct},
	"invokeStk1": {nargs: firstOpArgs, construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		return single(ir.NewProcCall(args, 1))
	}},
	"invokeStk4": {nargs: firstOpArgs, construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		return single(ir.NewProcCall(args, 1))
	}},
	"list": {nargs: firstOpArgs, construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		return single(ir.NewProcCall(append([]ir.Value{ir.NewLiteral("list", 1)}, args...), 1))
	}},
	"listLength": {nargs: fixedArgs(1), construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		return single(ir.NewProcCall([]ir.Value{ir.NewLiteral("llength", 1), args[0]}, 1))
	}},
	"incrStkImm": {nargs: fixedArgs(1), construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		delta, err := opInt(inst, 0)
		if err != nil {
			return nil, err
		}
		return single(ir.NewProcCall(incrArgs(args[0], delta), 1))
	}},
	"incrScalar1Imm": {nargs: fixedArgs(0), construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		name, err := opName(inst, 0)
		if err != nil {
			return nil, err
		}
		delta, err := opInt(inst, 1)
		if err != nil {
			return nil, err
		}
		return single(ir.NewProcCall(incrArgs(ir.NewLiteral(name, 1), delta), 1))
	}},
	"incrScalarStkImm": {nargs: fixedArgs(1), construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		delta, err := opInt(inst, 0)
		if err != nil {
			return nil, err
		}
		return single(ir.NewProcCall(incrArgs(args[0], delta), 1))
	}},
	"variable": {nargs: fixedArgs(1), construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		localName, err := opName(inst, 0)
		if err != nil {
			return nil, err
		}
		formatted := format.Format(args[0])
		if !hasSuffix(formatted, localName) {
			return nil, &dcerr.InvariantViolation{Where: "reduce[variable]", Want: "name ending in " + localName, Got: formatted}
		}
		return single(ir.NewVariable(args[0], 1))
	}},
	"jump1": {nargs: fixedArgs(0), construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		return single(&ir.Jump{On: ir.OnNone, TargetLoc: *inst.TargetLoc})
	}},
	"jumpFalse1": {nargs: fixedArgs(1), construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		return single(&ir.Jump{On: ir.OnFalse, TargetLoc: *inst.TargetLoc, Operand: args[0]})
	}},
	"jumpTrue1": {nargs: fixedArgs(1), construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		return single(&ir.Jump{On: ir.OnTrue, TargetLoc: *inst.TargetLoc, Operand: args[0]})
	}},
	"loadStk":       {nargs: fixedArgs(1), construct: loadStkConstruct},
	"loadScalarStk": {nargs: fixedArgs(1), construct: loadStkConstruct},
	"loadArrayStk": {nargs: fixedArgs(2), construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		return single(ir.NewArrayRef(args[0], args[1], 1))
	}},
	"loadScalar1": {nargs: fixedArgs(0), construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		name, err := opName(inst, 0)
		if err != nil {
			return nil, err
		}
		return single(ir.NewVarRef(ir.NewLiteral(name, 1), 1))
	}},
	"loadArray1": {nargs: fixedArgs(1), construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		name, err := opName(inst, 0)
		if err != nil {
			return nil, err
		}
		return single(ir.NewArrayRef(ir.NewLiteral(name, 1), args[0], 1))
	}},
	"storeStk":       {nargs: fixedArgs(2), construct: storeStkConstruct},
	"storeScalarStk": {nargs: fixedArgs(2), construct: storeStkConstruct},
	"storeArrayStk": {nargs: fixedArgs(3), construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		lv := ir.NewArrayElt(args[0], args[1])
		return single(ir.NewSet(lv, args[2], 1))
	}},
	"storeScalar1": {nargs: fixedArgs(1), construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		name, err := opName(inst, 0)
		if err != nil {
			return nil, err
		}
		return single(ir.NewSet(ir.NewLiteral(name, 1), args[0], 1))
	}},
	"storeArray1": {nargs: fixedArgs(2), construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		name, err := opName(inst, 0)
		if err != nil {
			return nil, err
		}
		lv := ir.NewArrayElt(ir.NewLiteral(name, 1), args[0])
		return single(ir.NewSet(lv, args[1], 1))
	}},
	"gt":  exprEntry(ir.OpGT),
	"lt":  exprEntry(ir.OpLT),
	"ge":  exprEntry(ir.OpGE),
	"le":  exprEntry(ir.OpLE),
	"eq":  exprEntry(ir.OpEQ),
	"neq": exprEntry(ir.OpNE),
	"add": exprEntry(ir.OpAdd),
	"not": exprEntry(ir.OpNot),
	"concat1": {nargs: firstOpArgs, construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		return single(ir.NewConcat(args, 1))
	}},
	"pop": {nargs: fixedArgs(1), predicate: isProcCallLike, construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		return single(args[0].Destacked())
	}},
	"dup": {nargs: fixedArgs(1), predicate: isSimple, construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		return []ir.Item{args[0], args[0]}, nil
	}},
	"done": {nargs: fixedArgs(1), construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		return single(ir.NewDone(args[0], 1))
	}},
	"returnImm": {nargs: fixedArgs(2), construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		code, err := opInt(inst, 0)
		if err != nil {
			return nil, err
		}
		level, err := opInt(inst, 1)
		if err != nil {
			return nil, err
		}
		if code != 0 {
			return nil, &dcerr.InvariantViolation{Where: "reduce[returnImm]", Want: "code == 0", Got: strconv.FormatInt(code, 10)}
		}
		if level != 1 {
			return nil, &dcerr.InvariantViolation{Where: "reduce[returnImm]", Want: "level == 1", Got: strconv.FormatInt(level, 10)}
		}
		if opts, ok := args[1].(*ir.Literal); !ok || opts.Text != "" {
			return nil, &dcerr.InvariantViolation{Where: "reduce[returnImm]", Want: "empty options literal", Got: format.Format(args[1])}
		}
		return single(ir.NewReturn(args[0], args[1], 1))
	}},
	"tryCvtToNumeric": elided(0),
	"nop":             elided(0),
	"startCommand":    elided(0),
}

func elided(nargs int) entry {
	return entry{nargs: fixedArgs(nargs), construct: func(decode.Instruction, []ir.Value, *cursor.Cursor) ([]ir.Item, error) {
		return nil, nil
	}}
}

func exprEntry(op ir.ExprOp) entry {
	return entry{nargs: fixedArgs(op.Arity()), construct: func(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
		return single(ir.NewExpr(op, args, 1))
	}}
}

func pushConstruct(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
	idx, err := opInt(inst, 0)
	if err != nil {
		return nil, err
	}
	text, err := c.Literal(int(idx))
	if err != nil {
		return nil, err
	}
	return single(ir.NewLiteral(text, 1))
}

func loadStkConstruct(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
	return single(ir.NewVarRef(args[0], 1))
}

func storeStkConstruct(inst decode.Instruction, args []ir.Value, c *cursor.Cursor) ([]ir.Item, error) {
	return single(ir.NewSet(args[0], args[1], 1))
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
