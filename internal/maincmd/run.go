package maincmd

import (
	"context"
	"os"

	"github.com/mna/mainer"

	"github.com/neon-lang/neon/lang/vm"
)

// Run compiles and executes the script at args[0], with args[1:] exposed
// to the script as its `args` builtin. Matches exit codes 0/65/70.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	path := args[0]
	scriptArgs := args[1:]

	source, err := os.ReadFile(path)
	if err != nil {
		return printError(stdio, err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		return printError(stdio, err)
	}

	v := vm.New(cfg, stdio.Stdout).WithArgs(scriptArgs)
	_, rerr := v.Interpret(path, string(source))
	if rerr != nil {
		printError(stdio, errOrFormatted(path, string(source), rerr))
		return &cmdError{err: rerr, code: vm.ExitCode(rerr)}
	}
	return nil
}

// errOrFormatted wraps err with vm.GetFormattedErrors' source-aware
// rendering when it carries compile diagnostics, for a nicer CLI message
// than err.Error() alone.
func errOrFormatted(filename, source string, err error) error {
	return &formattedError{msg: vm.GetFormattedErrors(filename, source, err)}
}

type formattedError struct{ msg string }

func (e *formattedError) Error() string { return e.msg }
