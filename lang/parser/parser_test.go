package parser

import (
	"testing"

	"github.com/neon-lang/neon/lang/ast"
)

func mustParse(t *testing.T, src string) *ast.Chunk {
	t.Helper()
	chunk, errs := Parse("test.nx", src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	return chunk
}

func TestParseVarDecl(t *testing.T) {
	chunk := mustParse(t, `var x = 1 + 2 * 3`)
	if len(chunk.Stmts) != 1 {
		t.Fatalf("want 1 stmt, got %d", len(chunk.Stmts))
	}
	decl, ok := chunk.Stmts[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("want *ast.VarDecl, got %T", chunk.Stmts[0])
	}
	if decl.Name != "x" || !decl.Mutable {
		t.Fatalf("got %+v", decl)
	}
	bin, ok := decl.Value.(*ast.Binary)
	if !ok {
		t.Fatalf("want *ast.Binary, got %T", decl.Value)
	}
	if _, ok := bin.Y.(*ast.Binary); !ok {
		t.Fatalf("expected * to bind tighter than +, got %+v", bin)
	}
}

func TestParseValImmutable(t *testing.T) {
	chunk := mustParse(t, `val y = "hi"`)
	decl := chunk.Stmts[0].(*ast.VarDecl)
	if decl.Mutable {
		t.Fatalf("val should not be mutable")
	}
}

func TestParseIfElse(t *testing.T) {
	chunk := mustParse(t, `
if x > 0 {
	print(x)
} else {
	print(0)
}`)
	ifs, ok := chunk.Stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("want *ast.If, got %T", chunk.Stmts[0])
	}
	if ifs.Else == nil {
		t.Fatalf("want else branch")
	}
}

func TestParseWhile(t *testing.T) {
	chunk := mustParse(t, `
while i < 10 {
	i = i + 1
}`)
	w, ok := chunk.Stmts[0].(*ast.While)
	if !ok {
		t.Fatalf("want *ast.While, got %T", chunk.Stmts[0])
	}
	if len(w.Body.Stmts) != 1 {
		t.Fatalf("want 1 body stmt")
	}
	if _, ok := w.Body.Stmts[0].(*ast.Assign); !ok {
		t.Fatalf("want *ast.Assign, got %T", w.Body.Stmts[0])
	}
}

func TestParseForIn(t *testing.T) {
	chunk := mustParse(t, `
for v in [1, 2, 3] {
	print(v)
}`)
	fi, ok := chunk.Stmts[0].(*ast.ForIn)
	if !ok {
		t.Fatalf("want *ast.ForIn, got %T", chunk.Stmts[0])
	}
	if fi.Var != "v" {
		t.Fatalf("got var %q", fi.Var)
	}
	if _, ok := fi.Coll.(*ast.ArrayLit); !ok {
		t.Fatalf("want *ast.ArrayLit, got %T", fi.Coll)
	}
}

func TestParseForC(t *testing.T) {
	chunk := mustParse(t, `
for (var i = 0; i < 10; i = i + 1) {
	print(i)
}`)
	fc, ok := chunk.Stmts[0].(*ast.ForC)
	if !ok {
		t.Fatalf("want *ast.ForC, got %T", chunk.Stmts[0])
	}
	if fc.Init == nil || fc.Cond == nil || fc.Post == nil {
		t.Fatalf("expected all three clauses present, got %+v", fc)
	}
}

func TestParseFuncDecl(t *testing.T) {
	chunk := mustParse(t, `
fn add(a, b) {
	return a + b
}`)
	fd, ok := chunk.Stmts[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("want *ast.FuncDecl, got %T", chunk.Stmts[0])
	}
	if fd.Name != "add" || len(fd.Params) != 2 {
		t.Fatalf("got %+v", fd)
	}
}

func TestParseStructDecl(t *testing.T) {
	chunk := mustParse(t, `struct Point { x y }`)
	sd, ok := chunk.Stmts[0].(*ast.StructDecl)
	if !ok {
		t.Fatalf("want *ast.StructDecl, got %T", chunk.Stmts[0])
	}
	if sd.Name != "Point" || len(sd.Fields) != 2 {
		t.Fatalf("got %+v", sd)
	}
}

func TestParseFieldAndIndexAssign(t *testing.T) {
	chunk := mustParse(t, `
p.x = 1
arr[0] = 2`)
	if _, ok := chunk.Stmts[0].(*ast.FieldSet); !ok {
		t.Fatalf("want *ast.FieldSet, got %T", chunk.Stmts[0])
	}
	if _, ok := chunk.Stmts[1].(*ast.IndexSet); !ok {
		t.Fatalf("want *ast.IndexSet, got %T", chunk.Stmts[1])
	}
}

func TestParseMethodCallAndFieldGet(t *testing.T) {
	chunk := mustParse(t, `print(p.dist(q))`)
	stmt := chunk.Stmts[0].(*ast.PrintStmt)
	call, ok := stmt.X.(*ast.MethodCall)
	if !ok {
		t.Fatalf("want *ast.MethodCall, got %T", stmt.X)
	}
	if call.Name != "dist" || len(call.Args) != 1 {
		t.Fatalf("got %+v", call)
	}
}

func TestParseRangeLit(t *testing.T) {
	chunk := mustParse(t, `for v in [0..=10] { print(v) }`)
	fi := chunk.Stmts[0].(*ast.ForIn)
	rl, ok := fi.Coll.(*ast.RangeLit)
	if !ok {
		t.Fatalf("want *ast.RangeLit, got %T", fi.Coll)
	}
	if !rl.Inclusive {
		t.Fatalf("want inclusive range")
	}
}

func TestParseMapLit(t *testing.T) {
	chunk := mustParse(t, `var m = {"a": 1, "b": 2}`)
	decl := chunk.Stmts[0].(*ast.VarDecl)
	m, ok := decl.Value.(*ast.MapLit)
	if !ok {
		t.Fatalf("want *ast.MapLit, got %T", decl.Value)
	}
	if len(m.Keys) != 2 || len(m.Values) != 2 {
		t.Fatalf("got %+v", m)
	}
}

func TestParseExponentRightAssoc(t *testing.T) {
	chunk := mustParse(t, `var x = 2 ** 3 ** 2`)
	decl := chunk.Stmts[0].(*ast.VarDecl)
	bin, ok := decl.Value.(*ast.Binary)
	if !ok || bin.Op.String() != "**" {
		t.Fatalf("want top-level **, got %+v", decl.Value)
	}
	if _, ok := bin.Y.(*ast.Binary); !ok {
		t.Fatalf("want right-associative nesting, got %T", bin.Y)
	}
	if _, ok := bin.X.(*ast.NumberLit); !ok {
		t.Fatalf("want left operand to be literal 2, got %T", bin.X)
	}
}

func TestParseFuncLit(t *testing.T) {
	chunk := mustParse(t, `var f = fn(x) { return x }`)
	decl := chunk.Stmts[0].(*ast.VarDecl)
	if _, ok := decl.Value.(*ast.FuncLit); !ok {
		t.Fatalf("want *ast.FuncLit, got %T", decl.Value)
	}
}

func TestParseSetLit(t *testing.T) {
	chunk := mustParse(t, `var s = set{1, 2, 3}`)
	decl := chunk.Stmts[0].(*ast.VarDecl)
	sl, ok := decl.Value.(*ast.SetLit)
	if !ok {
		t.Fatalf("want *ast.SetLit, got %T", decl.Value)
	}
	if len(sl.Elems) != 3 {
		t.Fatalf("got %+v", sl)
	}
}

func TestParseSetAsIdentifier(t *testing.T) {
	chunk := mustParse(t, `print(set)`)
	stmt := chunk.Stmts[0].(*ast.PrintStmt)
	id, ok := stmt.X.(*ast.Identifier)
	if !ok || id.Name != "set" {
		t.Fatalf("want identifier \"set\", got %+v", stmt.X)
	}
}

func TestParseErrorRecovery(t *testing.T) {
	_, errs := Parse("test.nx", `var = `)
	if len(errs) == 0 {
		t.Fatalf("expected parse errors")
	}
}
