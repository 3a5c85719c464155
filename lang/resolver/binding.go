package resolver

import "fmt"

// Scope indicates what kind of binding a name resolves to.
type Scope uint8

const (
	Undefined Scope = iota // name is not defined anywhere visible
	Local                  // name is local to the current function or script
	Global                 // name is a top-level script-scope binding
	Builtin                // name is a VM builtin (args, Math, File, print)
)

var scopeNames = [...]string{
	Undefined: "undefined",
	Local:     "local",
	Global:    "global",
	Builtin:   "builtin",
}

func (s Scope) String() string {
	if int(s) >= len(scopeNames) {
		return fmt.Sprintf("<invalid scope %d>", s)
	}
	return scopeNames[s]
}

// Binding records what a resolved identifier refers to: where it lives and
// whether it may be reassigned. The codegen package consults Bindings (keyed
// by the *ast.Identifier/Assign node) to pick the width-appropriate
// Get/SetLocal or Get/SetGlobal opcode instead of re-deriving scope rules.
type Binding struct {
	Scope   Scope
	Index   int // slot index within its function (Local) or global table (Global)
	Mutable bool
}
