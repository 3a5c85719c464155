package maincmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mna/mainer"

	"github.com/neon-lang/neon/lang/binary"
	"github.com/neon-lang/neon/lang/chunk"
	"github.com/neon-lang/neon/lang/vm"
)

// Disasm prints a human-readable disassembly of args[0], which may be
// either Neon source (compiled first) or an already-built .nbc container.
func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	path := args[0]

	var chk *chunk.Chunk
	if filepath.Ext(path) == ".nbc" {
		loaded, err := binary.ReadFile(path)
		if err != nil {
			return printError(stdio, err)
		}
		chk = loaded
	} else {
		source, err := os.ReadFile(path)
		if err != nil {
			return printError(stdio, err)
		}
		cfg, err := LoadConfig()
		if err != nil {
			return printError(stdio, err)
		}
		v := vm.New(cfg, stdio.Stdout)
		compiled, cerr := v.Compile(path, string(source))
		if cerr != nil {
			printError(stdio, errOrFormatted(path, string(source), cerr))
			return &cmdError{err: cerr, code: vm.ExitCode(cerr)}
		}
		chk = compiled
	}

	fmt.Fprint(stdio.Stdout, chk.Disassemble())
	disassembleNested(stdio, chk)
	return nil
}

// disassembleNested recurses into every chunk.Function found in a chunk's
// constant pool, so one disasm call dumps the whole program's functions,
// not just its top-level body.
func disassembleNested(stdio mainer.Stdio, chk *chunk.Chunk) {
	for _, v := range chk.Constants {
		if fn, ok := v.(*chunk.Function); ok {
			fmt.Fprintln(stdio.Stdout)
			fmt.Fprint(stdio.Stdout, fn.Chunk.Disassemble())
			disassembleNested(stdio, fn.Chunk)
		}
	}
}
