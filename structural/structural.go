// Package structural implements the structural recognizer: the component
// that detects multi-block control-flow patterns (if/else, catch, foreach)
// over an already-reduced block list and collapses each into a single
// composite IR node.
package structural

import "github.com/mna/tcldecompile/ir"

// Recognize attempts exactly one structural transform, trying if/else,
// then catch, then foreach, and returns on the first success — matching
// the reducer's single-transform-per-iteration discipline so the driver
// can re-enter reduction before trying another pattern.
func Recognize(bs []*ir.BasicBlock) ([]*ir.BasicBlock, bool, error) {
	if out, ok, err := recognizeIf(bs); err != nil || ok {
		return out, ok, err
	}
	if out, ok, err := recognizeCatch(bs); err != nil || ok {
		return out, ok, err
	}
	if out, ok, err := recognizeForeach(bs); err != nil || ok {
		return out, ok, err
	}
	return bs, false, nil
}

func spliceBlocks(bs []*ir.BasicBlock, lo, hi int, repl ...*ir.BasicBlock) []*ir.BasicBlock {
	out := make([]*ir.BasicBlock, 0, len(bs)-(hi-lo)+len(repl))
	out = append(out, bs[:lo]...)
	out = append(out, repl...)
	out = append(out, bs[hi:]...)
	return out
}
