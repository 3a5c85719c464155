package maincmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mna/mainer"

	"github.com/neon-lang/neon/lang/vm"
)

// Repl starts an interactive read-eval-print loop. Rather than keep a VM's
// stack/global slot numbering alive across separate Interpret calls (which
// would require re-numbering the resolver's globals on every incremental
// compile), it accumulates a growing source buffer of every line that
// compiled and ran without error, and re-parses/re-resolves/re-runs that
// whole buffer on each new line. A line that fails to compile or panics at
// runtime is reported but never joins the buffer, so one bad line can't
// poison the session. Since every successful run replays the whole
// buffer's prior print() output too, only the newly grown suffix of that
// output is written to the terminal.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return printError(stdio, err)
	}

	rl, err := readline.New("neon> ")
	if err != nil {
		return printError(stdio, err)
	}
	defer rl.Close()

	var source strings.Builder
	prevLen := 0

	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return nil
		}
		if err != nil {
			return printError(stdio, err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		candidate := source.String() + line + "\n"

		var out bytes.Buffer
		v := vm.New(cfg, &out)
		_, rerr := v.Interpret("<repl>", candidate)
		if rerr != nil {
			fmt.Fprintln(stdio.Stderr, vm.GetFormattedErrors("<repl>", candidate, rerr))
			continue
		}

		source.WriteString(line)
		source.WriteByte('\n')
		fmt.Fprint(stdio.Stdout, out.String()[prevLen:])
		prevLen = out.Len()
	}
}
