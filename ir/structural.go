package ir

import "github.com/mna/tcldecompile/dialect"

// If is the composite node produced by the structural recognizer for an
// if/else pattern. CondJump and ElseJump hold the two jumps (conditional,
// then unconditional) that were consumed to build it, preserved so the formatter
// can recover the original condition's polarity.
type If struct {
	base
	CondJump *Jump // the conditional jump that skips the then-block
	ElseJump *Jump // the unconditional jump at the end of the then-block
	Then     *BasicBlock
	Else     *BasicBlock
}

func NewIf(condJump, elseJump *Jump, then, els *BasicBlock, stackN int) *If {
	return &If{base{stackN}, condJump, elseJump, then, els}
}
func (n *If) irNode()       {}
func (n *If) procCallLike() {}
func (n *If) Destacked() Value {
	if n.stackN != 1 {
		panic("ir: Destacked called on a non-stack-resident If")
	}
	cp := *n
	cp.stackN = 0
	return &cp
}

// Catch is the composite node produced by the structural recognizer for a
// catch pattern: catch {begin-body} varname.
type Catch struct {
	base
	Begin *BasicBlock
	// Middle is the raw pushResult/pushReturnCode exception-handling pair
	// threaded through untouched by the recognizer; it has no direct
	// execution path and is never part of the rendered source.
	Middle  *BasicBlock
	End     *BasicBlock
	VarName string
}

func NewCatch(begin, middle, end *BasicBlock, varName string, stackN int) *Catch {
	return &Catch{base{stackN}, begin, middle, end, varName}
}
func (n *Catch) irNode()       {}
func (n *Catch) procCallLike() {}
func (n *Catch) Destacked() Value {
	if n.stackN != 1 {
		panic("ir: Destacked called on a non-stack-resident Catch")
	}
	cp := *n
	cp.stackN = 0
	return &cp
}

// Foreach is the composite node produced by the structural recognizer for a
// foreach loop: foreach {var ...} list { body }.
type Foreach struct {
	base
	Begin *BasicBlock
	Step  *BasicBlock
	Body  *BasicBlock
	// EndLit is the dummy value the compiler pushes after the loop exits, kept
	// here only as a record of what the recognizer consumed from the trailing
	// block; it is never the iterated list and is not part of the rendered
	// source (the list text comes from Begin's list-temporary Set instead).
	EndLit *Literal
	Info   dialect.ForeachInfo
}

func NewForeach(begin, step, body *BasicBlock, endLit *Literal, info dialect.ForeachInfo, stackN int) *Foreach {
	return &Foreach{base{stackN}, begin, step, body, endLit, info}
}
func (n *Foreach) irNode()       {}
func (n *Foreach) procCallLike() {}
func (n *Foreach) Destacked() Value {
	if n.stackN != 1 {
		panic("ir: Destacked called on a non-stack-resident Foreach")
	}
	cp := *n
	cp.stackN = 0
	return &cp
}
