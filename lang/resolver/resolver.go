// Package resolver implements the semantic analysis pass that runs between
// parsing and code generation: it resolves every identifier to a Binding
// (local slot, global slot, or builtin), catches duplicate declarations,
// undefined names and assignments to immutable (`val`) bindings, and
// suggests the closest-spelled alternative for an undefined name.
//
// It is an external collaborator of the compiler core (see lang/codegen):
// the core only consumes the Bindings map this package produces, keyed by
// the *ast.Identifier/ast.Assign/ast.VarDecl node pointers that appear in
// the same *ast.Chunk the parser returned.
package resolver

import (
	"github.com/neon-lang/neon/lang/ast"
	"github.com/neon-lang/neon/lang/diag"
	"github.com/neon-lang/neon/lang/token"
)

// Result is the output of a successful (or partially successful) Resolve.
type Result struct {
	// Bindings maps each name-introducing or name-referencing AST node to
	// its resolved Binding. Keys are *ast.Identifier (reads), *ast.Assign
	// (writes), *ast.VarDecl (declarations), *ast.FuncDecl (function-name
	// declarations), and *ast.StructDecl (struct declarations).
	Bindings map[ast.Node]*Binding
	// Globals lists top-level binding names in declaration (slot) order.
	Globals []string
}

// IsBuiltin reports whether name is resolved as a VM builtin.
type IsBuiltin func(name string) bool

// Resolve analyzes chunk and returns the bindings needed by codegen, plus
// any diagnostics encountered. Resolution continues past errors on a
// best-effort basis so a single pass can report more than one problem.
func Resolve(chunk *ast.Chunk, isBuiltin IsBuiltin) (*Result, []diag.Diagnostic) {
	r := &resolver{
		isBuiltin: isBuiltin,
		bindings:  make(map[ast.Node]*Binding),
	}
	r.pushScope(true)
	r.declareTopLevel(chunk.Stmts)
	for _, s := range chunk.Stmts {
		r.stmt(s)
	}
	r.popScope()
	return &Result{Bindings: r.bindings, Globals: r.globalNames}, r.errs
}

type symbol struct {
	index   int
	mutable bool
}

// fnScope tracks the local slot allocator for one function body (or the
// top-level script, which is itself a function-like scope holding globals
// instead of locals).
type fnScope struct {
	isScript bool
	blocks   []map[string]symbol // innermost scope last
	nextSlot int
}

type resolver struct {
	isBuiltin IsBuiltin

	fns         []*fnScope // innermost function last
	globalNames []string
	globalSlots map[string]symbol

	bindings map[ast.Node]*Binding
	errs     []diag.Diagnostic
}

func (r *resolver) current() *fnScope { return r.fns[len(r.fns)-1] }

func (r *resolver) pushScope(isFunction bool) {
	if isFunction {
		r.fns = append(r.fns, &fnScope{isScript: len(r.fns) == 0})
		if r.globalSlots == nil {
			r.globalSlots = make(map[string]symbol)
		}
	}
	fn := r.current()
	fn.blocks = append(fn.blocks, make(map[string]symbol))
}

func (r *resolver) popScope() {
	fn := r.current()
	fn.blocks = fn.blocks[:len(fn.blocks)-1]
	if len(fn.blocks) == 0 {
		r.fns = r.fns[:len(r.fns)-1]
	}
}

func (r *resolver) pushFunction() { r.pushScope(true) }
func (r *resolver) popFunction()  { r.popScope() }

// declareTopLevel pre-declares every top-level var/struct/function name as
// a global before any body is resolved, so forward references between
// top-level functions work without codegen needing a pass of its own.
func (r *resolver) declareTopLevel(stmts []ast.Stmt) {
	for _, s := range stmts {
		switch d := s.(type) {
		case *ast.VarDecl:
			r.declareGlobal(d, d.Name, d.Mutable)
		case *ast.FuncDecl:
			r.declareGlobal(d, d.Name, false)
		case *ast.StructDecl:
			r.declareGlobal(d, d.Name, false)
		}
	}
}

func (r *resolver) declareGlobal(node ast.Node, name string, mutable bool) {
	if sym, ok := r.globalSlots[name]; ok {
		r.errorf(node.Pos(), diag.DuplicateSymbol, "duplicate top-level declaration of %q", name)
		// Bind the duplicate to the existing slot so the statement pass
		// treats it as pre-declared and does not report it a second time.
		r.bindings[node] = &Binding{Scope: Global, Index: sym.index, Mutable: sym.mutable}
		return
	}
	slot := len(r.globalNames)
	r.globalSlots[name] = symbol{index: slot, mutable: mutable}
	r.globalNames = append(r.globalNames, name)
	r.bindings[node] = &Binding{Scope: Global, Index: slot, Mutable: mutable}
}

// declareLocal introduces name in the innermost block of the current
// function scope.
func (r *resolver) declareLocal(node ast.Node, name string, mutable bool) {
	fn := r.current()
	block := fn.blocks[len(fn.blocks)-1]
	if _, ok := block[name]; ok {
		r.errorf(node.Pos(), diag.DuplicateSymbol, "duplicate declaration of %q in this scope", name)
		return
	}
	slot := fn.nextSlot
	fn.nextSlot++
	block[name] = symbol{index: slot, mutable: mutable}
	r.bindings[node] = &Binding{Scope: Local, Index: slot, Mutable: mutable}
}

// declare introduces name as a local if inside a function body, or as a
// global at the top level.
func (r *resolver) declare(node ast.Node, name string, mutable bool) {
	if r.current().isScript && len(r.current().blocks) == 1 {
		r.declareGlobal(node, name, mutable)
		return
	}
	r.declareLocal(node, name, mutable)
}

// lookup resolves name through the current function's blocks from the
// innermost outward, then globals, then builtins. Enclosing function scopes
// are not searched (Neon has no closures over locals: nested functions only
// ever see globals and their own locals/params, per the VM's flat
// call-frame model).
func (r *resolver) lookup(name string) (*Binding, bool) {
	fn := r.current()
	for i := len(fn.blocks) - 1; i >= 0; i-- {
		if sym, ok := fn.blocks[i][name]; ok {
			return &Binding{Scope: Local, Index: sym.index, Mutable: sym.mutable}, true
		}
	}
	if sym, ok := r.globalSlots[name]; ok {
		return &Binding{Scope: Global, Index: sym.index, Mutable: sym.mutable}, true
	}
	if r.isBuiltin != nil && r.isBuiltin(name) {
		return &Binding{Scope: Builtin, Mutable: false}, true
	}
	return nil, false
}

func (r *resolver) resolveRef(node ast.Node, name string) {
	b, ok := r.lookup(name)
	if !ok {
		r.undefined(node.Pos(), name)
		return
	}
	r.bindings[node] = b
}

func (r *resolver) undefined(pos token.Pos, name string) {
	if suggestion := r.suggest(name); suggestion != "" {
		r.errorf(pos, diag.UndefinedSymbol, "undefined name %q (did you mean %q?)", name, suggestion)
		return
	}
	r.errorf(pos, diag.UndefinedSymbol, "undefined name %q", name)
}

// suggest returns the closest candidate in scope to name by edit distance,
// within a small threshold, or "" if nothing is close enough.
func (r *resolver) suggest(name string) string {
	const threshold = 2
	best, bestDist := "", threshold+1

	consider := func(candidate string) {
		d := levenshtein(name, candidate)
		if d <= threshold && d < bestDist {
			bestDist = d
			best = candidate
		}
	}
	for _, fn := range r.fns {
		for _, block := range fn.blocks {
			for n := range block {
				consider(n)
			}
		}
	}
	for _, n := range r.globalNames {
		consider(n)
	}
	return best
}

func (r *resolver) errorf(pos token.Pos, kind diag.Kind, format string, args ...interface{}) {
	line, col := pos.LineCol()
	r.errs = append(r.errs, diag.New(diag.Semantic, kind, diag.Location{Line: line, Column: col}, format, args...))
}

// ---- statements ----

func (r *resolver) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.VarDecl:
		if s.Value != nil {
			r.expr(s.Value)
		}
		if _, already := r.bindings[s]; !already { // skip: pre-declared at top level
			r.declare(s, s.Name, s.Mutable)
		}
	case *ast.StructDecl:
		// already declared in declareTopLevel; struct decls are top-level only.
	case *ast.FuncDecl:
		if _, already := r.bindings[s]; !already { // nested fn decl, not pre-declared
			r.declareLocal(s, s.Name, false)
		}
		r.funcBody(s.Params, s.Body)
	case *ast.Block:
		r.pushScope(false)
		for _, inner := range s.Stmts {
			r.stmt(inner)
		}
		r.popScope()
	case *ast.ExprStmt:
		r.expr(s.X)
	case *ast.PrintStmt:
		r.expr(s.X)
	case *ast.Assign:
		r.expr(s.Value)
		b, ok := r.lookup(s.Name)
		if !ok {
			r.undefined(s.Pos(), s.Name)
			return
		}
		if !b.Mutable {
			r.errorf(s.Pos(), diag.ImmutableAssignment, "cannot assign to immutable binding %q", s.Name)
		}
		r.bindings[s] = b
	case *ast.FieldSet:
		r.expr(s.X)
		r.expr(s.Value)
	case *ast.IndexSet:
		r.expr(s.X)
		r.expr(s.Y)
		r.expr(s.Value)
	case *ast.If:
		r.expr(s.Cond)
		r.stmt(s.Then)
		if s.Else != nil {
			r.stmt(s.Else)
		}
	case *ast.While:
		r.expr(s.Cond)
		r.stmt(s.Body)
	case *ast.ForC:
		r.pushScope(false)
		if s.Init != nil {
			r.stmt(s.Init)
		}
		if s.Cond != nil {
			r.expr(s.Cond)
		}
		if s.Post != nil {
			r.stmt(s.Post)
		}
		for _, inner := range s.Body.Stmts {
			r.stmt(inner)
		}
		r.popScope()
	case *ast.ForIn:
		r.expr(s.Coll)
		r.pushScope(false)
		r.declareLocal(s, s.Var, true)
		for _, inner := range s.Body.Stmts {
			r.stmt(inner)
		}
		r.popScope()
	case *ast.Break, *ast.Continue:
		// nothing to resolve; loop-nesting validity is a codegen concern.
	case *ast.Return:
		if s.Value != nil {
			r.expr(s.Value)
		}
	}
}

func (r *resolver) funcBody(params []string, body *ast.Block) {
	r.pushFunction()
	for i, p := range params {
		slot := r.current().nextSlot
		r.current().nextSlot++
		r.current().blocks[0][p] = symbol{index: slot, mutable: true}
		_ = i
	}
	for _, s := range body.Stmts {
		r.stmt(s)
	}
	r.popFunction()
}

// ---- expressions ----

func (r *resolver) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.NumberLit, *ast.StringLit, *ast.BoolLit, *ast.NilLit:
		// literals need no resolution
	case *ast.Identifier:
		r.resolveRef(e, e.Name)
	case *ast.Unary:
		r.expr(e.X)
	case *ast.Binary:
		r.expr(e.X)
		r.expr(e.Y)
	case *ast.Logical:
		r.expr(e.X)
		r.expr(e.Y)
	case *ast.Call:
		r.expr(e.Callee)
		for _, a := range e.Args {
			r.expr(a)
		}
	case *ast.MethodCall:
		r.expr(e.Recv)
		for _, a := range e.Args {
			r.expr(a)
		}
	case *ast.FieldGet:
		r.expr(e.X)
	case *ast.IndexGet:
		r.expr(e.X)
		r.expr(e.Y)
	case *ast.ArrayLit:
		for _, el := range e.Elems {
			r.expr(el)
		}
	case *ast.MapLit:
		for i := range e.Keys {
			r.expr(e.Keys[i])
			r.expr(e.Values[i])
		}
	case *ast.SetLit:
		for _, el := range e.Elems {
			r.expr(el)
		}
	case *ast.RangeLit:
		r.expr(e.Start)
		r.expr(e.End)
	case *ast.FuncLit:
		r.funcBody(e.Params, e.Body)
	}
}

// levenshtein computes the classic edit distance between a and b. It is
// hand-rolled rather than imported: no pack example pulls in a string-
// similarity library, so this stays on the standard library per the same
// rule that governs the rest of this package's stdlib-only surfaces.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
