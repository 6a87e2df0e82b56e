// Package cursor implements the bytecode cursor: the lowest-level component
// of the decompilation pipeline. It reads the opaque byte buffer plus its
// three auxiliary tables and exposes typed fetches of operands, literals,
// locals and auxes to the instruction decoder.
package cursor

import (
	"encoding/binary"

	"github.com/dolthub/swiss"
	"github.com/mna/tcldecompile/dcerr"
	"github.com/mna/tcldecompile/dialect"
)

// Cursor reads sequentially through a bytecode buffer, resolving operands
// against the literal, local and aux tables it was built with.
type Cursor struct {
	bytes    []byte
	literals []string
	locals   []string
	auxes    []dialect.Aux
	pos      int

	resolvedForeach *swiss.Map[int, dialect.ForeachInfo]
}

// New returns a Cursor positioned at the start of in.Bytes.
func New(in dialect.Input) *Cursor {
	return &Cursor{
		bytes:           in.Bytes,
		literals:        in.Literals,
		locals:          in.Locals,
		auxes:           in.Auxes,
		resolvedForeach: swiss.NewMap[int, dialect.ForeachInfo](uint32(len(in.Auxes))),
	}
}

// Offset returns the current byte offset into the buffer.
func (c *Cursor) Offset() int { return c.pos }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.bytes) - c.pos }

// PeekOpcode returns the byte at the current position without advancing.
func (c *Cursor) PeekOpcode() (byte, error) {
	if c.pos >= len(c.bytes) {
		return 0, &dcerr.DecodeError{Offset: c.pos, Reason: "unexpected end of bytecode"}
	}
	return c.bytes[c.pos], nil
}

// Advance consumes and returns the next n bytes.
func (c *Cursor) Advance(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.bytes) {
		return nil, &dcerr.DecodeError{Offset: c.pos, Reason: "unexpected end of bytecode"}
	}
	b := c.bytes[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Literal returns the i-th entry of the literal table.
func (c *Cursor) Literal(i int) (string, error) {
	if i < 0 || i >= len(c.literals) {
		return "", &dcerr.DecodeError{Offset: c.pos, Reason: "literal index out of bounds"}
	}
	return c.literals[i], nil
}

// Local returns the i-th entry of the local-variable name table.
func (c *Cursor) Local(i int) (string, error) {
	if i < 0 || i >= len(c.locals) {
		return "", &dcerr.DecodeError{Offset: c.pos, Reason: "local index out of bounds"}
	}
	return c.locals[i], nil
}

// Aux returns the raw (unresolved) i-th aux table entry.
func (c *Cursor) Aux(i int) (dialect.Aux, error) {
	if i < 0 || i >= len(c.auxes) {
		return dialect.Aux{}, &dcerr.DecodeError{Offset: c.pos, Reason: "aux index out of bounds"}
	}
	return c.auxes[i], nil
}

// ResolveForeachInfo resolves a raw ForeachInfo aux record, translating
// every local-variable index to its name, per the core invariant that aux
// data is fully name-resolved before any reduction takes place.
func (c *Cursor) ResolveForeachInfo(a dialect.Aux) (dialect.ForeachInfo, error) {
	if a.Tag != dialect.TagForeachInfo {
		return dialect.ForeachInfo{}, &dcerr.DecodeError{Offset: c.pos, Reason: "unknown aux tag"}
	}
	vars := make([][]string, len(a.VarList))
	for i, idxs := range a.VarList {
		names := make([]string, len(idxs))
		for j, idx := range idxs {
			n, err := c.Local(idx)
			if err != nil {
				return dialect.ForeachInfo{}, err
			}
			names[j] = n
		}
		vars[i] = names
	}
	return dialect.ForeachInfo{Vars: vars}, nil
}

// ResolveForeachInfoAt is ResolveForeachInfo memoized by aux-table index: the
// decoder resolves the same foreach_start4/foreach_step4 aux record twice
// (once for the start, once for the matching step instruction), and the
// structural recognizer later compares both results with reflect.DeepEqual,
// so memoizing avoids re-walking the local table on the second decode.
func (c *Cursor) ResolveForeachInfoAt(idx int, a dialect.Aux) (dialect.ForeachInfo, error) {
	if info, ok := c.resolvedForeach.Get(idx); ok {
		return info, nil
	}
	info, err := c.ResolveForeachInfo(a)
	if err != nil {
		return dialect.ForeachInfo{}, err
	}
	c.resolvedForeach.Put(idx, info)
	return info, nil
}

// Snapshot returns an independent cursor sharing the underlying tables,
// positioned at the same offset as c. Advancing the snapshot does not affect
// c, and vice-versa.
func (c *Cursor) Snapshot() *Cursor {
	cp := *c
	return &cp
}

// Int reads a big-endian signed integer of width bytes (1 or 4).
func (c *Cursor) Int(width int) (int64, error) {
	b, err := c.Advance(width)
	if err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return int64(int8(b[0])), nil
	case 4:
		return int64(int32(binary.BigEndian.Uint32(b))), nil
	default:
		return 0, &dcerr.DecodeError{Offset: c.pos, Reason: "unsupported signed integer width"}
	}
}

// Uint reads a big-endian unsigned integer of width bytes (1 or 4).
func (c *Cursor) Uint(width int) (uint64, error) {
	b, err := c.Advance(width)
	if err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return uint64(b[0]), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(b)), nil
	default:
		return 0, &dcerr.DecodeError{Offset: c.pos, Reason: "unsupported unsigned integer width"}
	}
}
