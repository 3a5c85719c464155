package ast

import "github.com/neon-lang/neon/lang/token"

// Block is a brace-delimited sequence of statements introducing a new scope.
type Block struct {
	PosVal token.Pos
	Stmts  []Stmt
}

// VarDecl declares a mutable (`var`) or immutable (`val`) binding.
type VarDecl struct {
	PosVal  token.Pos
	Name    string
	Mutable bool
	Value   Expr // nil for a bare `var x`
}

// StructDecl declares a struct schema: name + ordered field names.
type StructDecl struct {
	PosVal token.Pos
	Name   string
	Fields []string
}

// FuncDecl is a top-level or nested named function declaration.
type FuncDecl struct {
	PosVal token.Pos
	Name   string
	Params []string
	Body   *Block
}

// ExprStmt is an expression evaluated for its side effect, result discarded.
type ExprStmt struct {
	PosVal token.Pos
	X      Expr
}

// PrintStmt is `print(expr)`.
type PrintStmt struct {
	PosVal token.Pos
	X      Expr
}

// Assign is `target = value` for an identifier target.
type Assign struct {
	PosVal token.Pos
	Name   string
	Value  Expr
}

// FieldSet is `x.name = value`.
type FieldSet struct {
	PosVal token.Pos
	X      Expr
	Name   string
	Value  Expr
}

// IndexSet is `x[y] = value`.
type IndexSet struct {
	PosVal token.Pos
	X, Y   Expr
	Value  Expr
}

// If is an if/else statement. Else may be nil.
type If struct {
	PosVal token.Pos
	Cond   Expr
	Then   *Block
	Else   *Block // may wrap a single If for `else if`, via a Block{Stmts: [If]}
}

// While is a while loop.
type While struct {
	PosVal token.Pos
	Cond   Expr
	Body   *Block
}

// ForC is a desugared C-style for loop: for (init; cond; post) body.
type ForC struct {
	PosVal token.Pos
	Init   Stmt // may be nil
	Cond   Expr // may be nil (treated as always-true)
	Post   Stmt // may be nil
	Body   *Block
}

// ForIn is `for v in collection { body }`.
type ForIn struct {
	PosVal token.Pos
	Var    string
	Coll   Expr
	Body   *Block
}

// Break is a `break` statement.
type Break struct {
	PosVal token.Pos
}

// Continue is a `continue` statement.
type Continue struct {
	PosVal token.Pos
}

// Return is a `return` or `return expr` statement.
type Return struct {
	PosVal token.Pos
	Value  Expr // nil for bare `return`
}

func (s *Block) Pos() token.Pos      { return s.PosVal }
func (s *VarDecl) Pos() token.Pos    { return s.PosVal }
func (s *StructDecl) Pos() token.Pos { return s.PosVal }
func (s *FuncDecl) Pos() token.Pos   { return s.PosVal }
func (s *ExprStmt) Pos() token.Pos   { return s.PosVal }
func (s *PrintStmt) Pos() token.Pos  { return s.PosVal }
func (s *Assign) Pos() token.Pos     { return s.PosVal }
func (s *FieldSet) Pos() token.Pos   { return s.PosVal }
func (s *IndexSet) Pos() token.Pos   { return s.PosVal }
func (s *If) Pos() token.Pos         { return s.PosVal }
func (s *While) Pos() token.Pos      { return s.PosVal }
func (s *ForC) Pos() token.Pos       { return s.PosVal }
func (s *ForIn) Pos() token.Pos      { return s.PosVal }
func (s *Break) Pos() token.Pos      { return s.PosVal }
func (s *Continue) Pos() token.Pos   { return s.PosVal }
func (s *Return) Pos() token.Pos     { return s.PosVal }

func (*Block) stmtNode()      {}
func (*VarDecl) stmtNode()    {}
func (*StructDecl) stmtNode() {}
func (*FuncDecl) stmtNode()   {}
func (*ExprStmt) stmtNode()   {}
func (*PrintStmt) stmtNode()  {}
func (*Assign) stmtNode()     {}
func (*FieldSet) stmtNode()   {}
func (*IndexSet) stmtNode()   {}
func (*If) stmtNode()         {}
func (*While) stmtNode()      {}
func (*ForC) stmtNode()       {}
func (*ForIn) stmtNode()      {}
func (*Break) stmtNode()      {}
func (*Continue) stmtNode()   {}
func (*Return) stmtNode()     {}
