// Package ir defines the intermediate-representation node model the reducer
// and structural recognizer produce, and the basic-block container they
// live in. IR nodes are created once by their producing stage and never
// mutated afterwards: every change replaces a range of a block's
// instruction list with a new slice, per the mutation-via-replacement
// invariant of the source pipeline.
package ir

import "github.com/mna/tcldecompile/decode"

// Node is implemented by every IR node, value or non-value.
type Node interface {
	irNode()
}

// Value is an IR node that can appear on the reconstructed stack. StackN is
// 1 while the value is still stack-resident at its textual position, and 0
// once a later node has consumed it ("destacked").
type Value interface {
	Node
	StackN() int
	// Destacked returns a copy of the value with StackN set to 0. It panics
	// if the value is not currently stack-resident, mirroring the source's
	// assertion that only a stack-resident value may be destacked.
	Destacked() Value
}

// NonValue is implemented by IR nodes that never appear on the operand
// stack (currently only Jump).
type NonValue interface {
	Node
	irNonValue()
}

// base carries the stack-residency bit shared by every Value variant. It is
// not itself a Node; each concrete Value type embeds it and forwards
// StackN/Destacked, so Destacked can return the correctly-typed copy.
type base struct {
	stackN int
}

func (b base) StackN() int { return b.stackN }

// Item is one element of a BasicBlock's instruction sequence: either a raw,
// not-yet-reduced decode.Instruction, or an ir.Node produced by reduction or
// structural recognition.
type Item any

// BasicBlock is a maximal straight-line sequence of items with a single
// entry and single exit, as produced by the partitioner and replaced
// (never mutated) by the reducer, coalescer and structural recognizer.
type BasicBlock struct {
	Loc   int
	Insts []Item
}

// New returns a BasicBlock starting at loc with the given items.
func New(loc int, insts []Item) *BasicBlock {
	return &BasicBlock{Loc: loc, Insts: insts}
}

// Replace returns a new BasicBlock with insts[lo:hi] replaced by repl. It
// never mutates b.
func (b *BasicBlock) Replace(lo, hi int, repl []Item) *BasicBlock {
	newInsts := make([]Item, 0, len(b.Insts)-(hi-lo)+len(repl))
	newInsts = append(newInsts, b.Insts[:lo]...)
	newInsts = append(newInsts, repl...)
	newInsts = append(newInsts, b.Insts[hi:]...)
	return &BasicBlock{Loc: b.Loc, Insts: newInsts}
}

// Append returns a new BasicBlock with items appended at the end.
func (b *BasicBlock) Append(items ...Item) *BasicBlock {
	return b.Replace(len(b.Insts), len(b.Insts), items)
}

// PopLast returns a new BasicBlock with its last item removed.
func (b *BasicBlock) PopLast() *BasicBlock {
	return b.Replace(len(b.Insts)-1, len(b.Insts), nil)
}

// Last returns the last item of the block, and whether the block is
// non-empty.
func (b *BasicBlock) Last() (Item, bool) {
	if len(b.Insts) == 0 {
		return nil, false
	}
	return b.Insts[len(b.Insts)-1], true
}

// First returns the first item of the block, and whether the block is
// non-empty.
func (b *BasicBlock) First() (Item, bool) {
	if len(b.Insts) == 0 {
		return nil, false
	}
	return b.Insts[0], true
}

// TerminatingJump returns the block's terminating Jump, if its last item is
// one.
func (b *BasicBlock) TerminatingJump() (*Jump, bool) {
	last, ok := b.Last()
	if !ok {
		return nil, false
	}
	j, ok := last.(*Jump)
	return j, ok
}

// HasRawInstructions reports whether any item of the block is still a raw,
// unreduced decode.Instruction.
func (b *BasicBlock) HasRawInstructions() bool {
	for _, it := range b.Insts {
		if _, ok := it.(decode.Instruction); ok {
			return true
		}
	}
	return false
}

// CountRawInstructions returns the number of raw decode.Instruction items in
// the block, used to check the reducer's monotonicity invariant.
func (b *BasicBlock) CountRawInstructions() int {
	n := 0
	for _, it := range b.Insts {
		if _, ok := it.(decode.Instruction); ok {
			n++
		}
	}
	return n
}
