package scanner

import (
	"testing"

	"github.com/neon-lang/neon/lang/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	var s Scanner
	s.Init([]byte(src), func(pos token.Pos, msg string) {
		t.Errorf("unexpected scan error at %v: %s", pos, msg)
	})
	var toks []token.Token
	for {
		tok, _, _ := s.Scan()
		toks = append(toks, tok)
		if tok == token.EOF {
			return toks
		}
	}
}

func TestScanBasic(t *testing.T) {
	toks := scanAll(t, `print(1 + 2 * 3)`)
	want := []token.Token{token.PRINT, token.LPAREN, token.NUMBER, token.PLUS, token.NUMBER, token.STAR, token.NUMBER, token.RPAREN, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %v, want %v", toks, want)
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, toks[i], want[i])
		}
	}
}

func TestScanString(t *testing.T) {
	var s Scanner
	s.Init([]byte(`"hello\nworld"`), nil)
	tok, _, val := s.Scan()
	if tok != token.STRING {
		t.Fatalf("want STRING, got %s", tok)
	}
	if val.String != "hello\nworld" {
		t.Fatalf("got %q", val.String)
	}
}

func TestScanNumber(t *testing.T) {
	var s Scanner
	s.Init([]byte("3.14"), nil)
	tok, _, val := s.Scan()
	if tok != token.NUMBER || val.Number != 3.14 {
		t.Fatalf("got %s %v", tok, val.Number)
	}
}

func TestScanKeywords(t *testing.T) {
	toks := scanAll(t, "fn struct var val if else while for in break continue return true false nil and or print")
	want := []token.Token{
		token.FN, token.STRUCT, token.VAR, token.VAL, token.IF, token.ELSE, token.WHILE,
		token.FOR, token.IN, token.BREAK, token.CONTINUE, token.RETURN, token.TRUE,
		token.FALSE, token.NIL, token.AND, token.OR, token.PRINT, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, toks[i], want[i])
		}
	}
}
