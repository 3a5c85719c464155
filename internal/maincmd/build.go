package maincmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/mna/mainer"

	"github.com/neon-lang/neon/lang/binary"
	"github.com/neon-lang/neon/lang/vm"
)

// Build compiles args[0] to a .nbc bytecode container, at --output or, by
// default, args[0] with its extension replaced by .nbc.
func (c *Cmd) Build(ctx context.Context, stdio mainer.Stdio, args []string) error {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		return printError(stdio, err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		return printError(stdio, err)
	}

	v := vm.New(cfg, stdio.Stdout)
	chk, cerr := v.Compile(path, string(source))
	if cerr != nil {
		printError(stdio, errOrFormatted(path, string(source), cerr))
		return &cmdError{err: cerr, code: vm.ExitCode(cerr)}
	}

	out := c.Output
	if out == "" {
		out = outputPath(path)
	}
	if err := binary.WriteFile(out, chk); err != nil {
		return printError(stdio, err)
	}
	return nil
}

func outputPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".nbc"
}
