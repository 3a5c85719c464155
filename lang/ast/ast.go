// Package ast defines the typed statement/expression tree produced by the
// parser and consumed by the resolver and codegen. Positions are tracked
// with lang/token.Pos so diagnostics can point precisely at source text.
package ast

import "github.com/neon-lang/neon/lang/token"

// Node is implemented by every statement and expression node.
type Node interface {
	Pos() token.Pos
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Chunk is a parsed source file: an ordered list of top-level statements.
type Chunk struct {
	Name  string
	Stmts []Stmt
}
