// Package codegen implements the single-pass code generator that lowers a
// resolved Neon AST to bytecode: one lang/chunk.Chunk per function plus a
// script chunk, using lang/resolver's precomputed bindings to address every
// name directly (no forward-reference placeholder pass — see spec.md §9's
// design note, adopted here rather than left as a note).
package codegen

import (
	"github.com/neon-lang/neon/lang/ast"
	"github.com/neon-lang/neon/lang/chunk"
	"github.com/neon-lang/neon/lang/diag"
	"github.com/neon-lang/neon/lang/nativeregistry"
	"github.com/neon-lang/neon/lang/opcode"
	"github.com/neon-lang/neon/lang/resolver"
	"github.com/neon-lang/neon/lang/token"
	"github.com/neon-lang/neon/lang/value"
)

// BuiltinIndex resolves a builtin name to its GetBuiltin registry index, as
// produced by lang/nativeregistry.BuiltinTable.Index.
type BuiltinIndex func(name string) (int, bool)

// Compile lowers file into a script Chunk. file must have already passed
// resolver.Resolve with no errors reaching here; res.Bindings is trusted
// for every name-introducing or name-referencing node codegen visits. Any
// diagnostics returned are diag.Codegen-phase errors (arity overflow,
// break/continue outside a loop); a non-empty result should not be handed
// to the VM.
func Compile(file *ast.Chunk, res *resolver.Result, reg *nativeregistry.Registry, builtinIndex BuiltinIndex) (*chunk.Chunk, []diag.Diagnostic) {
	g := &codegen{res: res, reg: reg, builtinIndex: builtinIndex}
	script := chunk.New(file.Name)
	g.chunk = script
	g.blocks = []int{0}
	for _, s := range file.Stmts {
		g.stmt(s)
	}
	return script, g.diags
}

type loopCtx struct {
	breakJumps    []int
	continueJumps []int
}

type codegen struct {
	res          *resolver.Result
	reg          *nativeregistry.Registry
	builtinIndex BuiltinIndex

	chunk  *chunk.Chunk
	blocks []int // per-nesting-block count of locals declared directly in it
	loops  []loopCtx
	depth  int

	diags []diag.Diagnostic
}

func (g *codegen) errorf(pos token.Pos, kind diag.Kind, format string, args ...interface{}) {
	line, col := pos.LineCol()
	g.diags = append(g.diags, diag.New(diag.Codegen, kind, diag.Location{Line: line, Column: col}, format, args...))
}

func lc(pos token.Pos) (int, int) { return pos.LineCol() }

// ---- scope bookkeeping ----

func (g *codegen) pushBlock() {
	g.blocks = append(g.blocks, 0)
	g.depth++
}

// popBlock closes the innermost block, emitting one Pop per local declared
// directly in it (outer-block locals below it on the stack are untouched).
func (g *codegen) popBlock(pos token.Pos) {
	n := g.blocks[len(g.blocks)-1]
	g.blocks = g.blocks[:len(g.blocks)-1]
	g.depth--
	line, col := lc(pos)
	for i := 0; i < n; i++ {
		g.chunk.EmitOp(opcode.Pop, line, col)
	}
}

// popBlockFrame removes the innermost block's tracking entry without
// emitting any Pop bytecode — used where the caller has already emitted
// the equivalent cleanup itself (loop bodies, which must pop per-iteration
// locals before looping back rather than once at the very end).
func (g *codegen) popBlockFrame() {
	g.blocks = g.blocks[:len(g.blocks)-1]
	g.depth--
}

func (g *codegen) topCount() int { return g.blocks[len(g.blocks)-1] }

// declareLocal records name's slot as belonging to the innermost block
// (for the per-block Pop-count bookkeeping above) and to the chunk's debug
// Locals table. The slot index itself is whatever resolver already
// assigned; codegen never computes it — declaring just means "the value
// already sitting at the top of the stack is this local's permanent
// position", per the push-and-leave local convention (see block() and
// literal/decl codegen below).
func (g *codegen) declareLocal(name string, mutable bool) {
	g.blocks[len(g.blocks)-1]++
	g.chunk.AddLocal(name, g.depth, mutable)
}

func (g *codegen) block(b *ast.Block) {
	g.pushBlock()
	for _, s := range b.Stmts {
		g.stmt(s)
	}
	g.popBlock(b.Pos())
}

func (g *codegen) binding(node ast.Node) *resolver.Binding {
	b := g.res.Bindings[node]
	if b == nil {
		// A name that survived resolution without a binding is an
		// internal-error bug in the resolver/codegen contract, not a
		// user-facing diagnostic — see spec.md §4.2 Errors.
		g.errorf(node.Pos(), diag.Internal, "internal error: no binding for node")
		return &resolver.Binding{}
	}
	return b
}

// ---- statements ----

func (g *codegen) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.VarDecl:
		g.varDecl(s)
	case *ast.StructDecl:
		g.structDecl(s)
	case *ast.FuncDecl:
		g.funcDecl(s)
	case *ast.Block:
		g.block(s)
	case *ast.ExprStmt:
		g.expr(s.X)
		line, col := lc(s.Pos())
		g.chunk.EmitOp(opcode.Pop, line, col)
	case *ast.PrintStmt:
		g.printStmt(s)
	case *ast.Assign:
		g.assign(s)
	case *ast.FieldSet:
		g.fieldSet(s)
	case *ast.IndexSet:
		g.indexSet(s)
	case *ast.If:
		g.ifStmt(s)
	case *ast.While:
		g.whileStmt(s)
	case *ast.ForC:
		g.forC(s)
	case *ast.ForIn:
		g.forIn(s)
	case *ast.Break:
		g.breakStmt(s)
	case *ast.Continue:
		g.continueStmt(s)
	case *ast.Return:
		g.returnStmt(s)
	default:
		g.errorf(s.Pos(), diag.Internal, "internal error: unhandled statement %T", s)
	}
}

func (g *codegen) varDecl(s *ast.VarDecl) {
	b := g.binding(s)
	line, col := lc(s.Pos())
	if s.Value != nil {
		g.expr(s.Value)
	} else {
		g.chunk.EmitOp(opcode.Nil, line, col)
	}
	switch b.Scope {
	case resolver.Global:
		g.chunk.EmitIndexed(opcode.SetGlobal, b.Index, line, col)
		g.chunk.EmitOp(opcode.Pop, line, col)
	case resolver.Local:
		// Push-and-leave: the value just pushed IS the local's slot.
		g.declareLocal(s.Name, s.Mutable)
	default:
		g.errorf(s.Pos(), diag.Internal, "internal error: var decl resolved to %s", b.Scope)
	}
}

func (g *codegen) structDecl(s *ast.StructDecl) {
	b := g.binding(s)
	line, col := lc(s.Pos())
	idx := g.chunk.AddConstant(&value.Struct{Name: s.Name, Fields: s.Fields})
	g.chunk.EmitIndexed(opcode.Constant, idx, line, col)
	if b.Scope == resolver.Global {
		g.chunk.EmitIndexed(opcode.SetGlobal, b.Index, line, col)
		g.chunk.EmitOp(opcode.Pop, line, col)
	} else {
		g.errorf(s.Pos(), diag.Internal, "internal error: struct decl resolved to %s", b.Scope)
	}
}

func (g *codegen) funcDecl(s *ast.FuncDecl) {
	b := g.binding(s)
	line, col := lc(s.Pos())
	fn := g.compileFunction(s.Name, s.Params, s.Body)
	idx := g.chunk.AddConstant(fn)
	g.chunk.EmitIndexed(opcode.Constant, idx, line, col)
	switch b.Scope {
	case resolver.Global:
		g.chunk.EmitIndexed(opcode.SetGlobal, b.Index, line, col)
		g.chunk.EmitOp(opcode.Pop, line, col)
	case resolver.Local:
		g.declareLocal(s.Name, false)
	default:
		g.errorf(s.Pos(), diag.Internal, "internal error: func decl resolved to %s", b.Scope)
	}
}

// compileFunction compiles params/body into a fresh Chunk, with its own
// independent scope/loop-tracking state, and appends an implicit `nil;
// return` so falling off the end of a function body returns nil.
func (g *codegen) compileFunction(name string, params []string, body *ast.Block) *chunk.Function {
	savedChunk, savedBlocks, savedLoops, savedDepth := g.chunk, g.blocks, g.loops, g.depth
	fnChunk := chunk.New(name)
	g.chunk, g.blocks, g.loops, g.depth = fnChunk, []int{0}, nil, 0

	for _, p := range params {
		g.chunk.AddLocal(p, 0, true)
		g.blocks[0]++
	}
	for _, s := range body.Stmts {
		g.stmt(s)
	}
	line, col := lc(body.Pos())
	g.chunk.EmitOp(opcode.Nil, line, col)
	g.chunk.EmitOp(opcode.Return, line, col)

	g.chunk, g.blocks, g.loops, g.depth = savedChunk, savedBlocks, savedLoops, savedDepth
	return &chunk.Function{Name: name, Arity: len(params), Chunk: fnChunk}
}

func (g *codegen) printStmt(s *ast.PrintStmt) {
	line, col := lc(s.Pos())
	idx, ok := g.builtinIndex("print")
	if !ok {
		g.errorf(s.Pos(), diag.Internal, "internal error: print builtin not registered")
		return
	}
	g.chunk.EmitIndexed(opcode.GetBuiltin, idx, line, col)
	g.expr(s.X)
	g.chunk.EmitOp(opcode.Call, line, col)
	g.chunk.EmitByte(1)
	g.chunk.EmitOp(opcode.Pop, line, col)
}

func (g *codegen) assign(s *ast.Assign) {
	b := g.binding(s)
	line, col := lc(s.Pos())
	g.expr(s.Value)
	switch b.Scope {
	case resolver.Local:
		g.chunk.EmitIndexed(opcode.SetLocal, b.Index, line, col)
	case resolver.Global:
		g.chunk.EmitIndexed(opcode.SetGlobal, b.Index, line, col)
	default:
		g.errorf(s.Pos(), diag.Internal, "internal error: assign target resolved to %s", b.Scope)
		return
	}
	g.chunk.EmitOp(opcode.Pop, line, col)
}

func (g *codegen) fieldSet(s *ast.FieldSet) {
	line, col := lc(s.Pos())
	g.expr(s.X)
	g.expr(s.Value)
	idx := g.chunk.AddString(&value.String{Value: s.Name})
	g.chunk.EmitIndexed(opcode.SetField, idx, line, col)
	g.chunk.EmitOp(opcode.Pop, line, col)
}

func (g *codegen) indexSet(s *ast.IndexSet) {
	line, col := lc(s.Pos())
	g.expr(s.X)
	g.expr(s.Y)
	g.expr(s.Value)
	g.chunk.EmitOp(opcode.SetIndex, line, col)
	g.chunk.EmitOp(opcode.Pop, line, col)
}

func (g *codegen) ifStmt(s *ast.If) {
	line, col := lc(s.Pos())
	g.expr(s.Cond)
	lelse := g.chunk.EmitJump(opcode.JumpIfFalse, line, col)
	g.chunk.EmitOp(opcode.Pop, line, col) // condition was true
	g.block(s.Then)

	if s.Else != nil {
		lend := g.chunk.EmitJump(opcode.Jump, line, col)
		g.chunk.PatchJump(lelse)
		g.chunk.EmitOp(opcode.Pop, line, col) // condition was false
		g.block(s.Else)
		g.chunk.PatchJump(lend)
		return
	}
	g.chunk.PatchJump(lelse)
	g.chunk.EmitOp(opcode.Pop, line, col) // condition was false, no else arm
}

func (g *codegen) whileStmt(s *ast.While) {
	line, col := lc(s.Pos())
	loopStart := g.chunk.Offset()
	g.expr(s.Cond)
	lexit := g.chunk.EmitJump(opcode.JumpIfFalse, line, col)
	g.chunk.EmitOp(opcode.Pop, line, col)

	g.loops = append(g.loops, loopCtx{})
	g.pushBlock()
	for _, inner := range s.Body.Stmts {
		g.stmt(inner)
	}
	n := g.topCount()
	for i := 0; i < n; i++ {
		g.chunk.EmitOp(opcode.Pop, line, col)
	}
	g.popBlockFrame()

	cur := len(g.loops) - 1
	for _, off := range g.loops[cur].continueJumps {
		g.chunk.PatchJump(off)
	}
	g.chunk.EmitLoop(loopStart, line, col)
	g.chunk.PatchJump(lexit)
	g.chunk.EmitOp(opcode.Pop, line, col)
	for _, off := range g.loops[cur].breakJumps {
		g.chunk.PatchJump(off)
	}
	g.loops = g.loops[:cur]
}

// forC lowers the desugared C-style for loop. Per resolver, Init's
// locals and the body's own locals share one flat scope — but only
// Init's locals persist across iterations (they're pushed once and
// mutated via Post); body locals are pushed fresh every pass and must be
// popped before looping back, so the two counts are tracked separately.
func (g *codegen) forC(s *ast.ForC) {
	line, col := lc(s.Pos())
	g.pushBlock()
	if s.Init != nil {
		g.stmt(s.Init)
	}
	persistent := g.topCount()

	loopStart := g.chunk.Offset()
	haveCond := s.Cond != nil
	var lexit int
	if haveCond {
		g.expr(s.Cond)
		lexit = g.chunk.EmitJump(opcode.JumpIfFalse, line, col)
		g.chunk.EmitOp(opcode.Pop, line, col)
	}

	g.loops = append(g.loops, loopCtx{})
	for _, inner := range s.Body.Stmts {
		g.stmt(inner)
	}
	iterLocals := g.topCount() - persistent
	for i := 0; i < iterLocals; i++ {
		g.chunk.EmitOp(opcode.Pop, line, col)
	}

	cur := len(g.loops) - 1
	for _, off := range g.loops[cur].continueJumps {
		g.chunk.PatchJump(off)
	}
	if s.Post != nil {
		g.stmt(s.Post)
	}
	g.chunk.EmitLoop(loopStart, line, col)
	if haveCond {
		g.chunk.PatchJump(lexit)
		g.chunk.EmitOp(opcode.Pop, line, col)
	}
	for _, off := range g.loops[cur].breakJumps {
		g.chunk.PatchJump(off)
	}
	g.loops = g.loops[:cur]

	for i := 0; i < persistent; i++ {
		g.chunk.EmitOp(opcode.Pop, line, col)
	}
	g.popBlockFrame()
}

// forIn lowers `for v in coll { body }`. v and every body-declared local
// are pushed fresh each iteration (IteratorNext for v, ordinary decls for
// the rest) and must all be popped before looping back — there is no
// persistent portion, unlike forC's counter.
func (g *codegen) forIn(s *ast.ForIn) {
	line, col := lc(s.Pos())
	g.expr(s.Coll)
	g.chunk.EmitOp(opcode.GetIterator, line, col)

	g.pushBlock()
	loopStart := g.chunk.Offset()
	g.chunk.EmitOp(opcode.IteratorDone, line, col)
	lexit := g.chunk.EmitJump(opcode.JumpIfFalse, line, col)
	g.chunk.EmitOp(opcode.Pop, line, col)
	g.chunk.EmitOp(opcode.IteratorNext, line, col)
	g.declareLocal(s.Var, true)

	g.loops = append(g.loops, loopCtx{})
	for _, inner := range s.Body.Stmts {
		g.stmt(inner)
	}
	n := g.topCount()
	for i := 0; i < n; i++ {
		g.chunk.EmitOp(opcode.Pop, line, col)
	}

	cur := len(g.loops) - 1
	for _, off := range g.loops[cur].continueJumps {
		g.chunk.PatchJump(off)
	}
	g.chunk.EmitLoop(loopStart, line, col)
	g.chunk.PatchJump(lexit)
	g.chunk.EmitOp(opcode.Pop, line, col)
	g.chunk.EmitOp(opcode.PopIterator, line, col)
	for _, off := range g.loops[cur].breakJumps {
		g.chunk.PatchJump(off)
	}
	g.loops = g.loops[:cur]
	g.popBlockFrame()
}

func (g *codegen) breakStmt(s *ast.Break) {
	if len(g.loops) == 0 {
		g.errorf(s.Pos(), diag.Other, "'break' outside a loop")
		return
	}
	line, col := lc(s.Pos())
	off := g.chunk.EmitJump(opcode.Jump, line, col)
	cur := len(g.loops) - 1
	g.loops[cur].breakJumps = append(g.loops[cur].breakJumps, off)
}

func (g *codegen) continueStmt(s *ast.Continue) {
	if len(g.loops) == 0 {
		g.errorf(s.Pos(), diag.Other, "'continue' outside a loop")
		return
	}
	line, col := lc(s.Pos())
	off := g.chunk.EmitJump(opcode.Jump, line, col)
	cur := len(g.loops) - 1
	g.loops[cur].continueJumps = append(g.loops[cur].continueJumps, off)
}

func (g *codegen) returnStmt(s *ast.Return) {
	line, col := lc(s.Pos())
	if s.Value != nil {
		g.expr(s.Value)
	} else {
		g.chunk.EmitOp(opcode.Nil, line, col)
	}
	g.chunk.EmitOp(opcode.Return, line, col)
}

// ---- expressions ----

func (g *codegen) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.NumberLit:
		line, col := lc(e.Pos())
		idx := g.chunk.AddConstant(value.Number(e.Value))
		g.chunk.EmitIndexed(opcode.Constant, idx, line, col)
	case *ast.StringLit:
		line, col := lc(e.Pos())
		idx := g.chunk.AddString(&value.String{Value: e.Value})
		g.chunk.EmitIndexed(opcode.String, idx, line, col)
	case *ast.BoolLit:
		line, col := lc(e.Pos())
		if e.Value {
			g.chunk.EmitOp(opcode.True, line, col)
		} else {
			g.chunk.EmitOp(opcode.False, line, col)
		}
	case *ast.NilLit:
		line, col := lc(e.Pos())
		g.chunk.EmitOp(opcode.Nil, line, col)
	case *ast.Identifier:
		g.identifier(e)
	case *ast.Unary:
		g.unary(e)
	case *ast.Binary:
		g.binary(e)
	case *ast.Logical:
		g.logical(e)
	case *ast.Call:
		g.call(e)
	case *ast.MethodCall:
		g.methodCall(e)
	case *ast.FieldGet:
		line, col := lc(e.Pos())
		g.expr(e.X)
		idx := g.chunk.AddString(&value.String{Value: e.Name})
		g.chunk.EmitIndexed(opcode.GetField, idx, line, col)
	case *ast.IndexGet:
		line, col := lc(e.Pos())
		g.expr(e.X)
		g.expr(e.Y)
		g.chunk.EmitOp(opcode.GetIndex, line, col)
	case *ast.ArrayLit:
		g.arrayLit(e)
	case *ast.MapLit:
		g.mapLit(e)
	case *ast.SetLit:
		g.setLit(e)
	case *ast.RangeLit:
		g.rangeLit(e)
	case *ast.FuncLit:
		line, col := lc(e.Pos())
		fn := g.compileFunction(funcLitName(e), e.Params, e.Body)
		idx := g.chunk.AddConstant(fn)
		g.chunk.EmitIndexed(opcode.Constant, idx, line, col)
	default:
		g.errorf(e.Pos(), diag.Internal, "internal error: unhandled expression %T", e)
	}
}

func funcLitName(e *ast.FuncLit) string {
	if e.Name != "" {
		return e.Name
	}
	return "<anonymous>"
}

func (g *codegen) identifier(e *ast.Identifier) {
	b := g.binding(e)
	line, col := lc(e.Pos())
	switch b.Scope {
	case resolver.Local:
		g.chunk.EmitIndexed(opcode.GetLocal, b.Index, line, col)
	case resolver.Global:
		g.chunk.EmitIndexed(opcode.GetGlobal, b.Index, line, col)
	case resolver.Builtin:
		idx, ok := g.builtinIndex(e.Name)
		if !ok {
			g.errorf(e.Pos(), diag.Internal, "internal error: builtin %q has no registry index", e.Name)
			return
		}
		g.chunk.EmitIndexed(opcode.GetBuiltin, idx, line, col)
	default:
		g.errorf(e.Pos(), diag.Internal, "internal error: identifier %q resolved to %s", e.Name, b.Scope)
	}
}

var unaryOps = map[token.Token]opcode.Opcode{
	token.MINUS: opcode.Negate,
	token.BANG:  opcode.Not,
	token.TILDE: opcode.BitwiseNot,
}

func (g *codegen) unary(e *ast.Unary) {
	g.expr(e.X)
	line, col := lc(e.Pos())
	op, ok := unaryOps[e.Op]
	if !ok {
		g.errorf(e.Pos(), diag.Internal, "internal error: unhandled unary operator %s", e.Op)
		return
	}
	g.chunk.EmitOp(op, line, col)
}

var binaryOps = map[token.Token]opcode.Opcode{
	token.PLUS:       opcode.Add,
	token.MINUS:      opcode.Subtract,
	token.STAR:       opcode.Multiply,
	token.SLASH:      opcode.Divide,
	token.SLASHSLASH: opcode.FloorDivide,
	token.PERCENT:    opcode.Modulo,
	token.CARET:      opcode.Exponent,
	token.AMPERSAND:  opcode.BitwiseAnd,
	token.PIPE:       opcode.BitwiseOr,
	token.CIRCUMFLEX:  opcode.BitwiseXor,
	token.LTLT:        opcode.LeftShift,
	token.GTGT:        opcode.RightShift,
	token.EQEQ:        opcode.Equal,
	token.LT:          opcode.Less,
	token.GT:          opcode.Greater,
}

// negatedBinaryOps lowers `!=`, `>=`, `<=` to Equal;Not / Less;Not /
// Greater;Not, per spec.md §4.1.
var negatedBinaryOps = map[token.Token]opcode.Opcode{
	token.BANGEQ: opcode.Equal,
	token.GE:     opcode.Less,
	token.LE:     opcode.Greater,
}

func (g *codegen) binary(e *ast.Binary) {
	g.expr(e.X)
	g.expr(e.Y)
	line, col := lc(e.Pos())
	if op, ok := binaryOps[e.Op]; ok {
		g.chunk.EmitOp(op, line, col)
		return
	}
	if op, ok := negatedBinaryOps[e.Op]; ok {
		g.chunk.EmitOp(op, line, col)
		g.chunk.EmitOp(opcode.Not, line, col)
		return
	}
	g.errorf(e.Pos(), diag.Internal, "internal error: unhandled binary operator %s", e.Op)
}

func (g *codegen) logical(e *ast.Logical) {
	line, col := lc(e.Pos())
	g.expr(e.X)
	switch e.Op {
	case token.AND:
		lend := g.chunk.EmitJump(opcode.JumpIfFalse, line, col)
		g.chunk.EmitOp(opcode.Pop, line, col)
		g.expr(e.Y)
		g.chunk.PatchJump(lend)
	case token.OR:
		lelse := g.chunk.EmitJump(opcode.JumpIfFalse, line, col)
		lend := g.chunk.EmitJump(opcode.Jump, line, col)
		g.chunk.PatchJump(lelse)
		g.chunk.EmitOp(opcode.Pop, line, col)
		g.expr(e.Y)
		g.chunk.PatchJump(lend)
	default:
		g.errorf(e.Pos(), diag.Internal, "internal error: unhandled logical operator %s", e.Op)
	}
}

// nativeConstructorName reports whether callee is a bare identifier
// resolved as a builtin that the native registry exposes a Constructor
// for (currently just File), letting the call lower to CallConstructor
// with a registry index instead of a generic Call.
func (g *codegen) nativeConstructorName(callee ast.Expr) (string, int, bool) {
	id, ok := callee.(*ast.Identifier)
	if !ok {
		return "", 0, false
	}
	b := g.res.Bindings[id]
	if b == nil || b.Scope != resolver.Builtin {
		return "", 0, false
	}
	idx, ok := g.reg.Lookup(id.Name, id.Name)
	if !ok {
		return "", 0, false
	}
	entry, _ := g.reg.At(idx)
	if entry.Kind != nativeregistry.Constructor {
		return "", 0, false
	}
	return id.Name, idx, true
}

func (g *codegen) call(e *ast.Call) {
	line, col := lc(e.Pos())
	if len(e.Args) > 255 {
		g.errorf(e.Pos(), diag.ArityExceeded, "call has %d arguments, maximum is 255", len(e.Args))
		return
	}
	if _, idx, ok := g.nativeConstructorName(e.Callee); ok {
		for _, a := range e.Args {
			g.expr(a)
		}
		g.emitCallFamily(opcode.CallConstructor, len(e.Args), idx, line, col)
		return
	}
	g.expr(e.Callee)
	for _, a := range e.Args {
		g.expr(a)
	}
	g.chunk.EmitOp(opcode.Call, line, col)
	g.chunk.EmitByte(byte(len(e.Args)))
}

func (g *codegen) methodCall(e *ast.MethodCall) {
	line, col := lc(e.Pos())
	if len(e.Args) > 255 {
		g.errorf(e.Pos(), diag.ArityExceeded, "method call has %d arguments, maximum is 255", len(e.Args))
		return
	}
	g.expr(e.Recv)
	for _, a := range e.Args {
		g.expr(a)
	}
	idx := g.chunk.AddString(&value.String{Value: e.Name})
	g.emitCallFamily(opcode.CallMethod, len(e.Args), idx, line, col)
}

// emitCallFamily writes one of the CallMethod/CallStaticMethod/
// CallConstructor width variants: opcode, 1-byte argc, then the
// width-appropriate index.
func (g *codegen) emitCallFamily(base opcode.Opcode, argc, idx int, line, col int) {
	width := opcode.WidthFor(idx)
	op := opcode.Variant(base, width)
	g.chunk.EmitOp(op, line, col)
	g.chunk.EmitByte(byte(argc))
	switch width {
	case opcode.Width1:
		g.chunk.EmitByte(byte(idx))
	case opcode.Width2:
		g.chunk.EmitU16(uint16(idx))
	case opcode.Width4:
		g.chunk.EmitU32(uint32(idx))
	}
}

func (g *codegen) arrayLit(e *ast.ArrayLit) {
	line, col := lc(e.Pos())
	if len(e.Elems) > 0xffff {
		g.errorf(e.Pos(), diag.Other, "array literal has %d elements, maximum is 65535", len(e.Elems))
		return
	}
	for _, el := range e.Elems {
		g.expr(el)
	}
	g.chunk.EmitOp(opcode.CreateArray, line, col)
	g.chunk.EmitU16(uint16(len(e.Elems)))
}

func (g *codegen) mapLit(e *ast.MapLit) {
	line, col := lc(e.Pos())
	if len(e.Keys) > 0xff {
		g.errorf(e.Pos(), diag.Other, "map literal has %d entries, maximum is 255", len(e.Keys))
		return
	}
	for _, k := range e.Keys {
		g.expr(k)
	}
	for _, v := range e.Values {
		g.expr(v)
	}
	g.chunk.EmitOp(opcode.CreateMap, line, col)
	g.chunk.EmitByte(byte(len(e.Keys)))
}

func (g *codegen) setLit(e *ast.SetLit) {
	line, col := lc(e.Pos())
	if len(e.Elems) > 0xff {
		g.errorf(e.Pos(), diag.Other, "set literal has %d elements, maximum is 255", len(e.Elems))
		return
	}
	for _, el := range e.Elems {
		g.expr(el)
	}
	g.chunk.EmitOp(opcode.CreateSet, line, col)
	g.chunk.EmitByte(byte(len(e.Elems)))
}

func (g *codegen) rangeLit(e *ast.RangeLit) {
	line, col := lc(e.Pos())
	g.expr(e.Start)
	g.expr(e.End)
	g.chunk.EmitOp(opcode.CreateRange, line, col)
	if e.Inclusive {
		g.chunk.EmitByte(1)
	} else {
		g.chunk.EmitByte(0)
	}
}
