package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/mna/tcldecompile/cursor"
	"github.com/mna/tcldecompile/decode"
	"github.com/mna/tcldecompile/dialect"
)

// Disasm prints the flat, linear instruction sequence decoded from each
// named .dasm file, with no reduction or structural recognition applied —
// useful for inspecting what the decompiler's earlier stages see before
// diagnosing a reduction or recognition failure.
func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, files []string) error {
	var failed bool
	table := dialect.NewOpcodeTable()
	for _, name := range files {
		in, err := readInput(name)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", name, err)
			failed = true
			continue
		}
		cur := cursor.New(in)
		insts, err := decode.Decode(cur, table)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", name, err)
			failed = true
			continue
		}
		fmt.Fprintf(stdio.Stdout, "; %s\n", name)
		for _, inst := range insts {
			fmt.Fprintln(stdio.Stdout, inst.String())
		}
	}
	if failed {
		return fmt.Errorf("one or more files failed to disassemble")
	}
	return nil
}
