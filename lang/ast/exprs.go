package ast

import "github.com/neon-lang/neon/lang/token"

// NumberLit is a numeric literal, e.g. 1, 3.14.
type NumberLit struct {
	PosVal token.Pos
	Value  float64
}

// StringLit is a string literal.
type StringLit struct {
	PosVal token.Pos
	Value  string
}

// BoolLit is `true` or `false`.
type BoolLit struct {
	PosVal token.Pos
	Value  bool
}

// NilLit is the `nil` literal.
type NilLit struct {
	PosVal token.Pos
}

// Identifier is a bare name reference.
type Identifier struct {
	PosVal token.Pos
	Name   string
}

// Unary is a unary operator expression: -x, !x, ~x.
type Unary struct {
	PosVal token.Pos
	Op     token.Token
	X      Expr
}

// Binary is a binary arithmetic/comparison/bitwise expression.
type Binary struct {
	PosVal token.Pos
	Op     token.Token
	X, Y   Expr
}

// Logical is `a and b` / `a or b`, kept distinct from Binary because its
// codegen short-circuits.
type Logical struct {
	PosVal token.Pos
	Op     token.Token // AND or OR
	X, Y   Expr
}

// Call is a function call expression: f(args...).
type Call struct {
	PosVal token.Pos
	Callee Expr
	Args   []Expr
}

// MethodCall is a method call on a receiver: recv.name(args...).
type MethodCall struct {
	PosVal token.Pos
	Recv   Expr
	Name   string
	Args   []Expr
}

// FieldGet is a field/attribute read: x.name.
type FieldGet struct {
	PosVal token.Pos
	X      Expr
	Name   string
}

// IndexGet is an index read: x[y].
type IndexGet struct {
	PosVal token.Pos
	X, Y   Expr
}

// ArrayLit is an array literal: [a, b, c].
type ArrayLit struct {
	PosVal token.Pos
	Elems  []Expr
}

// MapLit is a map literal: {k: v, ...}.
type MapLit struct {
	PosVal token.Pos
	Keys   []Expr
	Values []Expr
}

// SetLit is a set literal: set{a, b, c}.
type SetLit struct {
	PosVal token.Pos
	Elems  []Expr
}

// RangeLit is a range expression: start..end or start..=end.
type RangeLit struct {
	PosVal    token.Pos
	Start, End Expr
	Inclusive bool
}

// FuncLit is an anonymous or named function literal.
type FuncLit struct {
	PosVal token.Pos
	Name   string // "" for anonymous
	Params []string
	Body   *Block
}

func (e *NumberLit) Pos() token.Pos  { return e.PosVal }
func (e *StringLit) Pos() token.Pos  { return e.PosVal }
func (e *BoolLit) Pos() token.Pos    { return e.PosVal }
func (e *NilLit) Pos() token.Pos     { return e.PosVal }
func (e *Identifier) Pos() token.Pos { return e.PosVal }
func (e *Unary) Pos() token.Pos      { return e.PosVal }
func (e *Binary) Pos() token.Pos     { return e.PosVal }
func (e *Logical) Pos() token.Pos    { return e.PosVal }
func (e *Call) Pos() token.Pos       { return e.PosVal }
func (e *MethodCall) Pos() token.Pos { return e.PosVal }
func (e *FieldGet) Pos() token.Pos   { return e.PosVal }
func (e *IndexGet) Pos() token.Pos   { return e.PosVal }
func (e *ArrayLit) Pos() token.Pos   { return e.PosVal }
func (e *MapLit) Pos() token.Pos     { return e.PosVal }
func (e *SetLit) Pos() token.Pos     { return e.PosVal }
func (e *RangeLit) Pos() token.Pos   { return e.PosVal }
func (e *FuncLit) Pos() token.Pos    { return e.PosVal }

func (*NumberLit) exprNode()  {}
func (*StringLit) exprNode()  {}
func (*BoolLit) exprNode()    {}
func (*NilLit) exprNode()     {}
func (*Identifier) exprNode() {}
func (*Unary) exprNode()      {}
func (*Binary) exprNode()     {}
func (*Logical) exprNode()    {}
func (*Call) exprNode()       {}
func (*MethodCall) exprNode() {}
func (*FieldGet) exprNode()   {}
func (*IndexGet) exprNode()   {}
func (*ArrayLit) exprNode()   {}
func (*MapLit) exprNode()     {}
func (*SetLit) exprNode()     {}
func (*RangeLit) exprNode()   {}
func (*FuncLit) exprNode()    {}
