// Package vm implements the stack-based bytecode interpreter: it executes
// a lang/chunk.Chunk produced by lang/codegen, addressing locals and
// globals alike as slots on one shared operand stack (see call in exec.go), and
// dispatching method/static/constructor calls through
// lang/nativeregistry. The dispatch loop's shape — a per-call-frame
// switch over decoded opcodes, with a step counter enforcing a resource
// limit — follows the teacher repository's lang/machine.Thread.run.
package vm

import (
	"fmt"
	"io"

	"github.com/neon-lang/neon/lang/chunk"
	"github.com/neon-lang/neon/lang/codegen"
	"github.com/neon-lang/neon/lang/diag"
	"github.com/neon-lang/neon/lang/nativeregistry"
	"github.com/neon-lang/neon/lang/parser"
	"github.com/neon-lang/neon/lang/resolver"
	"github.com/neon-lang/neon/lang/value"
)

// Config bounds VM resource usage, set from internal/maincmd.Config
// (itself populated via caarlos0/env) so a misbehaving or adversarial
// script can't run forever or blow the Go call stack.
type Config struct {
	MaxSteps     int
	MaxCallDepth int
}

// DefaultConfig returns generous limits suitable for a REPL or script run.
func DefaultConfig() Config {
	return Config{MaxSteps: 50_000_000, MaxCallDepth: 1024}
}

// CompileError wraps the diagnostics from a failed parse/resolve/codegen
// pass, for GetFormattedErrors to render with source context.
type CompileError struct {
	Diagnostics []diag.Diagnostic
}

func (e *CompileError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "compile error"
	}
	return e.Diagnostics[0].Error()
}

// RuntimeError is a failure raised while executing already-compiled
// bytecode: a type error, an out-of-bounds access, a native call failure,
// a resource limit, and so on.
type RuntimeError struct {
	Message string
	Line    int
	Column  int
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %s (at %d:%d)", e.Message, e.Line, e.Column)
}

// VM executes Neon bytecode. One VM corresponds to one program run: its
// string interner, native registry and builtin table live for the VM's
// whole lifetime, matching the data model's "per-VM interning" rule.
type VM struct {
	cfg Config

	interner     *value.Interner
	reg          *nativeregistry.Registry
	builtinTable *nativeregistry.BuiltinTable
	builtins     []value.Value

	stack     []value.Value
	iterStack []*iteratorState
	depth     int
	steps     int

	stdout io.Writer
}

type iteratorState struct {
	items []value.Value
	pos   int
}

// New returns a VM with cfg's resource limits, writing print output to
// stdout, and no program arguments. Call WithArgs before Interpret/RunChunk
// if the script's `args` builtin should be populated.
func New(cfg Config, stdout io.Writer) *VM {
	vm := &VM{cfg: cfg, interner: value.NewInterner(), reg: nativeregistry.New(), stdout: stdout}
	vm.WithArgs(nil)
	return vm
}

// WithArgs (re)builds the builtin table against args, Neon's `args` array.
// Returns vm for chaining.
func (vm *VM) WithArgs(args []string) *VM {
	bt, values := nativeregistry.NewBuiltinTable(vm.reg, args, vm.stdout)
	vm.builtinTable = bt
	names := bt.Names()
	vm.builtins = make([]value.Value, len(names))
	for i, n := range names {
		vm.builtins[i] = values[n]
	}
	return vm
}

func (vm *VM) isBuiltin(name string) bool       { return vm.builtinTable.IsBuiltin(name) }
func (vm *VM) builtinIndex(name string) (int, bool) { return vm.builtinTable.Index(name) }

// Compile runs the parse/resolve/codegen pipeline on source without
// executing it, for internal/maincmd's build and disasm commands. Any
// failing phase returns a *CompileError.
func (vm *VM) Compile(filename, source string) (*chunk.Chunk, error) {
	astChunk, pdiags := parser.Parse(filename, source)
	if len(pdiags) > 0 {
		return nil, &CompileError{Diagnostics: pdiags}
	}
	res, rdiags := resolver.Resolve(astChunk, vm.isBuiltin)
	if len(rdiags) > 0 {
		return nil, &CompileError{Diagnostics: rdiags}
	}
	c, cdiags := codegen.Compile(astChunk, res, vm.reg, vm.builtinIndex)
	if len(cdiags) > 0 {
		return nil, &CompileError{Diagnostics: cdiags}
	}
	return c, nil
}

// Interpret parses, resolves, compiles and runs source in one step. A
// *CompileError is returned if any phase up to codegen fails; otherwise
// the script runs and any failure is a *RuntimeError.
func (vm *VM) Interpret(filename, source string) (value.Value, error) {
	c, err := vm.Compile(filename, source)
	if err != nil {
		return nil, err
	}
	return vm.RunChunk(c)
}

// RunChunk executes an already-compiled script chunk (e.g. one loaded from
// a .nbc file via lang/binary).
func (vm *VM) RunChunk(c *chunk.Chunk) (value.Value, error) {
	vm.stack = vm.stack[:0]
	vm.iterStack = vm.iterStack[:0]
	vm.steps = 0
	vm.depth = 0
	fn := &chunk.Function{Name: "<script>", Arity: 0, Chunk: c}
	return vm.call(fn, 0)
}

// GetFormattedErrors renders err with source context if it is a
// *CompileError (caret-underlined, via lang/diag.Render); RuntimeErrors and
// anything else are rendered as a plain message.
func GetFormattedErrors(filename, source string, err error) string {
	if err == nil {
		return ""
	}
	if ce, ok := err.(*CompileError); ok {
		return diag.Render(ce.Diagnostics, filename, source)
	}
	return err.Error()
}

// ExitCode maps err to the process exit code internal/maincmd should use,
// per the sysexits-style convention: 0 success, 65 compile-time error
// (EX_DATAERR), 70 runtime error (EX_SOFTWARE).
func ExitCode(err error) int {
	switch err.(type) {
	case nil:
		return 0
	case *CompileError:
		return 65
	default:
		return 70
	}
}
