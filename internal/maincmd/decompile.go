package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/tcldecompile/decompiler"
	"github.com/mna/tcldecompile/dialect"
)

// Decompile reads each named .dasm file and prints its reconstructed
// source text. A file that reaches a fixpoint with raw instructions still
// unresolved still has its partial text printed, with the residue reported
// as a warning on stderr rather than aborting the whole run.
func (c *Cmd) Decompile(ctx context.Context, stdio mainer.Stdio, files []string) error {
	decompiler.Debug = c.Debug

	var failed bool
	table := dialect.NewOpcodeTable()
	for _, name := range files {
		in, err := readInput(name)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", name, err)
			failed = true
			continue
		}
		text, err := decompiler.Decompile(in, table)
		if text != "" {
			fmt.Fprintln(stdio.Stdout, text)
		}
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", name, err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("one or more files failed to decompile cleanly")
	}
	return nil
}

func readInput(path string) (dialect.Input, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return dialect.Input{}, err
	}
	return dialect.Parse(string(b))
}
