// Package parser implements a recursive-descent, precedence-climbing parser
// that turns Neon source text into a lang/ast.Chunk. It is an external
// collaborator of the compiler core: the core never depends on it directly,
// it only consumes the *ast.Chunk it produces.
package parser

import (
	"github.com/neon-lang/neon/lang/ast"
	"github.com/neon-lang/neon/lang/diag"
	"github.com/neon-lang/neon/lang/scanner"
	"github.com/neon-lang/neon/lang/token"
)

// Parse parses source text named filename into an *ast.Chunk. Any lexical
// or syntax errors are returned as diag.Diagnostic values with Phase ==
// diag.Parse; the returned chunk may be partial or nil in that case.
func Parse(filename, source string) (_ *ast.Chunk, errs []diag.Diagnostic) {
	p := &parser{filename: filename}
	p.s.Init([]byte(source), func(pos token.Pos, msg string) {
		p.addErrorAt(pos, "%s", msg)
	})
	p.advance()

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseAbort); !ok {
				panic(r)
			}
			errs = p.errs
		}
	}()

	var stmts []ast.Stmt
	for p.tok != token.EOF {
		stmts = append(stmts, p.topLevelStmt())
	}
	return &ast.Chunk{Name: filename, Stmts: stmts}, p.errs
}

// parseAbort unwinds parsing after too many errors or a fatal desync.
type parseAbort struct{}

type parser struct {
	filename string
	s        scanner.Scanner

	tok token.Token
	pos token.Pos
	val scanner.TokenValue

	errs []diag.Diagnostic
}

func (p *parser) advance() {
	p.tok, p.pos, p.val = p.s.Scan()
}

func (p *parser) addErrorAt(pos token.Pos, format string, args ...interface{}) {
	line, col := pos.LineCol()
	p.errs = append(p.errs, diag.New(diag.Parse, diag.UnexpectedToken, diag.Location{Line: line, Column: col}, format, args...))
	if len(p.errs) > 50 {
		panic(parseAbort{})
	}
}

func (p *parser) errorf(format string, args ...interface{}) {
	p.addErrorAt(p.pos, format, args...)
}

// expect consumes the current token if it matches tok, else records an
// error without consuming. Either way it returns the current token's
// position.
func (p *parser) expect(tok token.Token) token.Pos {
	pos := p.pos
	if p.tok != tok {
		p.errorf("expected %s, got %s", tok.GoString(), p.tok.GoString())
		return pos
	}
	p.advance()
	return pos
}

func (p *parser) expectIdent() string {
	if p.tok != token.IDENT {
		p.errorf("expected identifier, got %s", p.tok.GoString())
		return ""
	}
	name := p.val.Raw
	p.advance()
	return name
}

// ---- statements ----

func (p *parser) topLevelStmt() ast.Stmt {
	switch p.tok {
	case token.FN:
		return p.funcDecl()
	case token.STRUCT:
		return p.structDecl()
	default:
		return p.stmt()
	}
}

func (p *parser) stmt() ast.Stmt {
	switch p.tok {
	case token.VAR, token.VAL:
		return p.varDecl()
	case token.LBRACE:
		return p.block()
	case token.IF:
		return p.ifStmt()
	case token.WHILE:
		return p.whileStmt()
	case token.FOR:
		return p.forStmt()
	case token.BREAK:
		pos := p.pos
		p.advance()
		return &ast.Break{PosVal: pos}
	case token.CONTINUE:
		pos := p.pos
		p.advance()
		return &ast.Continue{PosVal: pos}
	case token.RETURN:
		pos := p.pos
		p.advance()
		if p.tok == token.RBRACE || p.tok == token.EOF {
			return &ast.Return{PosVal: pos}
		}
		return &ast.Return{PosVal: pos, Value: p.expr()}
	case token.PRINT:
		pos := p.pos
		p.advance()
		p.expect(token.LPAREN)
		x := p.expr()
		p.expect(token.RPAREN)
		return &ast.PrintStmt{PosVal: pos, X: x}
	case token.FN:
		return p.funcDecl()
	default:
		return p.exprOrAssignStmt()
	}
}

func (p *parser) varDecl() ast.Stmt {
	pos := p.pos
	mutable := p.tok == token.VAR
	p.advance()
	name := p.expectIdent()
	var value ast.Expr
	if p.tok == token.EQ {
		p.advance()
		value = p.expr()
	}
	return &ast.VarDecl{PosVal: pos, Name: name, Mutable: mutable, Value: value}
}

func (p *parser) structDecl() ast.Stmt {
	pos := p.pos
	p.advance()
	name := p.expectIdent()
	p.expect(token.LBRACE)
	var fields []string
	for p.tok != token.RBRACE && p.tok != token.EOF {
		fields = append(fields, p.expectIdent())
	}
	p.expect(token.RBRACE)
	return &ast.StructDecl{PosVal: pos, Name: name, Fields: fields}
}

func (p *parser) funcDecl() ast.Stmt {
	pos := p.pos
	p.advance()
	name := p.expectIdent()
	params := p.paramList()
	body := p.block()
	return &ast.FuncDecl{PosVal: pos, Name: name, Params: params, Body: body}
}

func (p *parser) paramList() []string {
	p.expect(token.LPAREN)
	var params []string
	for p.tok != token.RPAREN && p.tok != token.EOF {
		params = append(params, p.expectIdent())
		if p.tok == token.COMMA {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	return params
}

func (p *parser) block() *ast.Block {
	pos := p.expect(token.LBRACE)
	var stmts []ast.Stmt
	for p.tok != token.RBRACE && p.tok != token.EOF {
		stmts = append(stmts, p.stmt())
	}
	p.expect(token.RBRACE)
	return &ast.Block{PosVal: pos, Stmts: stmts}
}

func (p *parser) ifStmt() ast.Stmt {
	pos := p.pos
	p.advance()
	cond := p.expr()
	then := p.block()
	var els *ast.Block
	if p.tok == token.ELSE {
		p.advance()
		if p.tok == token.IF {
			inner := p.ifStmt()
			els = &ast.Block{PosVal: inner.Pos(), Stmts: []ast.Stmt{inner}}
		} else {
			els = p.block()
		}
	}
	return &ast.If{PosVal: pos, Cond: cond, Then: then, Else: els}
}

func (p *parser) whileStmt() ast.Stmt {
	pos := p.pos
	p.advance()
	cond := p.expr()
	body := p.block()
	return &ast.While{PosVal: pos, Cond: cond, Body: body}
}

// forStmt parses both `for v in coll { ... }` and the C-style
// `for (init; cond; post) { ... }`, distinguished by lookahead.
func (p *parser) forStmt() ast.Stmt {
	pos := p.pos
	p.advance()

	if p.tok == token.IDENT {
		save := *p
		name := p.expectIdent()
		if p.tok == token.IN {
			p.advance()
			coll := p.expr()
			body := p.block()
			return &ast.ForIn{PosVal: pos, Var: name, Coll: coll, Body: body}
		}
		*p = save
	}

	p.expect(token.LPAREN)
	var init ast.Stmt
	if p.tok == token.VAR || p.tok == token.VAL {
		init = p.varDecl()
	} else if p.tok != token.SEMI {
		init = p.exprOrAssignStmt()
	}
	p.expect(token.SEMI)
	var cond ast.Expr
	if p.tok != token.SEMI {
		cond = p.expr()
	}
	p.expect(token.SEMI)
	var post ast.Stmt
	if p.tok != token.RPAREN {
		post = p.exprOrAssignStmt()
	}
	p.expect(token.RPAREN)
	body := p.block()
	return &ast.ForC{PosVal: pos, Init: init, Cond: cond, Post: post, Body: body}
}

// exprOrAssignStmt parses an expression statement, or an assignment if the
// expression is followed by `=` and is a valid assignment target.
func (p *parser) exprOrAssignStmt() ast.Stmt {
	pos := p.pos
	x := p.expr()
	if p.tok != token.EQ {
		return &ast.ExprStmt{PosVal: pos, X: x}
	}
	p.advance()
	value := p.expr()
	switch target := x.(type) {
	case *ast.Identifier:
		return &ast.Assign{PosVal: pos, Name: target.Name, Value: value}
	case *ast.FieldGet:
		return &ast.FieldSet{PosVal: pos, X: target.X, Name: target.Name, Value: value}
	case *ast.IndexGet:
		return &ast.IndexSet{PosVal: pos, X: target.X, Y: target.Y, Value: value}
	default:
		p.errorf("invalid assignment target")
		return &ast.ExprStmt{PosVal: pos, X: x}
	}
}

// ---- expressions ----

func (p *parser) expr() ast.Expr { return p.binExpr(0) }

var binPriority = map[token.Token]int{
	token.OR:    1,
	token.AND:   2,
	token.EQEQ:  3,
	token.BANGEQ: 3,
	token.LT:    3,
	token.LE:    3,
	token.GT:    3,
	token.GE:    3,
	token.PIPE:  4,
	token.CIRCUMFLEX: 5,
	token.AMPERSAND:  6,
	token.LTLT: 7,
	token.GTGT: 7,
	token.PLUS:  10,
	token.MINUS: 10,
	token.STAR:  11,
	token.SLASH: 11,
	token.SLASHSLASH: 11,
	token.PERCENT:    11,
	token.CARET: 13, // right-associative exponent, binds tighter than unary
}

const unaryPriority = 12

func rightAssoc(tok token.Token) bool { return tok == token.CARET }

func (p *parser) binExpr(minPrio int) ast.Expr {
	left := p.unaryExpr()
	for {
		prio, ok := binPriority[p.tok]
		if !ok || prio <= minPrio {
			return left
		}
		op := p.tok
		pos := p.pos
		p.advance()
		nextMin := prio
		if rightAssoc(op) {
			nextMin = prio - 1
		}
		right := p.binExpr(nextMin)
		if op == token.AND || op == token.OR {
			left = &ast.Logical{PosVal: pos, Op: op, X: left, Y: right}
		} else {
			left = &ast.Binary{PosVal: pos, Op: op, X: left, Y: right}
		}
	}
}

func (p *parser) unaryExpr() ast.Expr {
	if p.tok == token.MINUS || p.tok == token.BANG || p.tok == token.TILDE {
		op := p.tok
		pos := p.pos
		p.advance()
		x := p.binExpr(unaryPriority)
		return &ast.Unary{PosVal: pos, Op: op, X: x}
	}
	return p.postfixExpr()
}

func (p *parser) postfixExpr() ast.Expr {
	x := p.primaryExpr()
	for {
		switch p.tok {
		case token.DOT:
			pos := p.pos
			save := *p
			p.advance()
			if p.tok == token.DOT {
				// `..` of a range literal: leave both dots for arrayOrRangeLit.
				*p = save
				return x
			}
			name := p.expectIdent()
			if p.tok == token.LPAREN {
				args := p.argList()
				x = &ast.MethodCall{PosVal: pos, Recv: x, Name: name, Args: args}
			} else {
				x = &ast.FieldGet{PosVal: pos, X: x, Name: name}
			}
		case token.LBRACK:
			pos := p.pos
			p.advance()
			idx := p.expr()
			p.expect(token.RBRACK)
			x = &ast.IndexGet{PosVal: pos, X: x, Y: idx}
		case token.LPAREN:
			pos := p.pos
			args := p.argList()
			x = &ast.Call{PosVal: pos, Callee: x, Args: args}
		default:
			return x
		}
	}
}

func (p *parser) argList() []ast.Expr {
	p.expect(token.LPAREN)
	var args []ast.Expr
	for p.tok != token.RPAREN && p.tok != token.EOF {
		args = append(args, p.expr())
		if p.tok == token.COMMA {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	return args
}

func (p *parser) primaryExpr() ast.Expr {
	pos := p.pos
	switch p.tok {
	case token.NUMBER:
		v := p.val.Number
		p.advance()
		return &ast.NumberLit{PosVal: pos, Value: v}
	case token.STRING:
		v := p.val.String
		p.advance()
		return &ast.StringLit{PosVal: pos, Value: v}
	case token.TRUE:
		p.advance()
		return &ast.BoolLit{PosVal: pos, Value: true}
	case token.FALSE:
		p.advance()
		return &ast.BoolLit{PosVal: pos, Value: false}
	case token.NIL:
		p.advance()
		return &ast.NilLit{PosVal: pos}
	case token.IDENT:
		name := p.val.Raw
		if name == "set" {
			save := *p
			p.advance()
			if p.tok == token.LBRACE {
				return p.setLit(pos)
			}
			*p = save
		}
		p.advance()
		return &ast.Identifier{PosVal: pos, Name: name}
	case token.LPAREN:
		p.advance()
		x := p.expr()
		p.expect(token.RPAREN)
		return x
	case token.LBRACK:
		return p.arrayOrRangeLit(pos)
	case token.LBRACE:
		return p.mapLit(pos)
	case token.FN:
		return p.funcLit(pos)
	default:
		p.errorf("unexpected token %s in expression", p.tok.GoString())
		p.advance()
		return &ast.NilLit{PosVal: pos}
	}
}

func (p *parser) arrayOrRangeLit(pos token.Pos) ast.Expr {
	p.advance() // consume '['
	if p.tok == token.RBRACK {
		p.advance()
		return &ast.ArrayLit{PosVal: pos}
	}
	first := p.expr()
	if p.tok == token.DOT {
		p.advance()
		p.expect(token.DOT)
		inclusive := false
		if p.tok == token.EQ {
			inclusive = true
			p.advance()
		}
		end := p.expr()
		p.expect(token.RBRACK)
		return &ast.RangeLit{PosVal: pos, Start: first, End: end, Inclusive: inclusive}
	}
	elems := []ast.Expr{first}
	for p.tok == token.COMMA {
		p.advance()
		if p.tok == token.RBRACK {
			break
		}
		elems = append(elems, p.expr())
	}
	p.expect(token.RBRACK)
	return &ast.ArrayLit{PosVal: pos, Elems: elems}
}

// setLit parses `set{a, b, c}`, the only context "set" is a keyword-like
// prefix rather than an ordinary identifier.
func (p *parser) setLit(pos token.Pos) ast.Expr {
	p.advance() // consume '{'
	var elems []ast.Expr
	for p.tok != token.RBRACE && p.tok != token.EOF {
		elems = append(elems, p.expr())
		if p.tok == token.COMMA {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBRACE)
	return &ast.SetLit{PosVal: pos, Elems: elems}
}

func (p *parser) mapLit(pos token.Pos) ast.Expr {
	p.advance() // consume '{'
	var keys, values []ast.Expr
	for p.tok != token.RBRACE && p.tok != token.EOF {
		k := p.expr()
		p.expect(token.COLON)
		v := p.expr()
		keys = append(keys, k)
		values = append(values, v)
		if p.tok == token.COMMA {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBRACE)
	return &ast.MapLit{PosVal: pos, Keys: keys, Values: values}
}

func (p *parser) funcLit(pos token.Pos) ast.Expr {
	p.advance()
	var name string
	if p.tok == token.IDENT {
		name = p.expectIdent()
	}
	params := p.paramList()
	body := p.block()
	return &ast.FuncLit{PosVal: pos, Name: name, Params: params, Body: body}
}
