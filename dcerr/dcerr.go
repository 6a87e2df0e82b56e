// Package dcerr defines the error kinds shared across the decompilation
// pipeline (cursor, decode, reduce, structural, decompiler). They are kept in
// their own package, free of any other dependency, so that every stage can
// raise them without creating import cycles.
package dcerr

import "fmt"

// DecodeError is raised when the raw bytecode cannot be linearly decoded:
// cursor underflow, an opcode missing from the metadata table, an operand
// kind of NONE, or an unknown aux tag.
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error at offset %d: %s", e.Offset, e.Reason)
}

// InvariantViolation is raised when a declared invariant of the recognised
// bytecode dialect fails to hold, e.g. a "variable" instruction not followed
// by a push of the empty literal, a "returnImm" whose operands aren't (0, 1),
// or a BCVariable name mismatch. It indicates bytecode outside the
// recognised dialect, not a bug in the decompiler itself.
type InvariantViolation struct {
	Where string
	Want  string
	Got   string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in %s: want %s, got %s", e.Where, e.Want, e.Got)
}

// UnrecognisedStructureError is raised when the driver reaches a fixpoint but
// raw Instruction tokens remain in some block. Per the "halt and present
// residue" policy, this is not fatal: callers may still format the partial
// result, but the error lets them detect and report that the input wasn't
// fully understood.
type UnrecognisedStructureError struct {
	// Remaining is the number of raw Instruction tokens still present across
	// all blocks at fixpoint.
	Remaining int
}

func (e *UnrecognisedStructureError) Error() string {
	return fmt.Sprintf("unrecognised structure: %d raw instruction(s) remain at fixpoint", e.Remaining)
}
