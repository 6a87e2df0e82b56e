package dialect

import "fmt"

// Lint walks in.Bytes against table, simulating operand-stack depth as each
// instruction's StackEffect is applied, and reports an error at the first
// instruction whose net StackEffect takes the depth below zero, or whose
// variable-effect operand asks for more arguments than the depth holds.
// Only the net effect of a fixed-effect opcode is applied, so an opcode that
// pops and pushes the same number of values is never flagged. It does not
// check that the stack is balanced at the end, nor does it understand
// control flow (a conditional jump's two arms are both assumed reachable at
// whatever depth execution has reached linearly) — it is a sanity check on a
// hand-written test fixture, not a verifier of the program's runtime
// behavior.
func Lint(in Input, table OpcodeTable) error {
	pos, depth := 0, 0
	code := in.Bytes
	for pos < len(code) {
		opByte := code[pos]
		m, ok := table.Lookup(opByte)
		if !ok {
			return fmt.Errorf("offset %d: unknown opcode byte %d", pos, opByte)
		}
		instPos := pos
		pos++

		if pos+m.TotalBytes-1 > len(code) {
			return fmt.Errorf("offset %d: truncated instruction %s", instPos, m.Name)
		}

		if m.StackEffect == VariableStackEffect {
			if len(m.OperandKinds) == 0 {
				return fmt.Errorf("offset %d: %s declares a variable stack effect but has no operand to read it from", instPos, m.Name)
			}
			width := m.OperandKinds[0].Width()
			n := int(decodeUint(code[pos : pos+width]))
			if n > depth {
				return fmt.Errorf("offset %d: %s pops %d argument(s) from a stack with only %d value(s)", instPos, m.Name, n, depth)
			}
			depth = depth - n + 1
		} else {
			depth += int(m.StackEffect)
			if depth < 0 {
				return fmt.Errorf("offset %d: %s pops from an empty stack (depth %d)", instPos, m.Name, depth)
			}
		}

		pos += m.TotalBytes - 1
	}
	return nil
}
