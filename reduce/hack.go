package reduce

import (
	"github.com/mna/tcldecompile/cursor"
	"github.com/mna/tcldecompile/dcerr"
	"github.com/mna/tcldecompile/decode"
	"github.com/mna/tcldecompile/ir"
)

// Hack runs the pre-reduction pass: every "variable" instruction in this
// dialect is immediately followed by a push of the empty-string literal,
// emitted by the source compiler purely to balance the stack and never
// consumed by anything. The ordinary backward-scanning reducer cannot see
// it (it only ever looks backward), so it is stripped here, once per block,
// before reduction begins. It is an error for a "variable" instruction not
// to be followed by such a push: that would mean this isn't the dialect the
// rest of the table assumes.
func Hack(b *ir.BasicBlock, c *cursor.Cursor) (*ir.BasicBlock, []ChangeRecord, error) {
	var changes []ChangeRecord
	for i := len(b.Insts) - 1; i >= 0; i-- {
		inst, ok := b.Insts[i].(decode.Instruction)
		if !ok || inst.Name != "variable" {
			continue
		}
		if i+1 >= len(b.Insts) {
			return nil, nil, &dcerr.InvariantViolation{
				Where: "reduce.Hack",
				Want:  "a push instruction following \"variable\"",
				Got:   "end of block",
			}
		}
		push, ok := b.Insts[i+1].(decode.Instruction)
		if !ok || (push.Name != "push1" && push.Name != "push4") {
			return nil, nil, &dcerr.InvariantViolation{
				Where: "reduce.Hack",
				Want:  "a push instruction following \"variable\"",
				Got:   "non-push item",
			}
		}
		idx, err := opInt(push, 0)
		if err != nil {
			return nil, nil, err
		}
		text, err := c.Literal(int(idx))
		if err != nil {
			return nil, nil, err
		}
		if text != "" {
			return nil, nil, &dcerr.InvariantViolation{
				Where: "reduce.Hack",
				Want:  "an empty-string literal following \"variable\"",
				Got:   text,
			}
		}
		b = b.Replace(i+1, i+2, nil)
		changes = append(changes, ChangeRecord{From: Range{i + 1, i + 2}, To: Range{i + 1, i + 1}})
	}
	return b, changes, nil
}
