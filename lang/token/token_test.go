package token

import "testing"

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		if tok.String() == "" {
			t.Errorf("missing string representation of token %d", tok)
		}
	}
}

func TestKeywords(t *testing.T) {
	for kw, tok := range Keywords {
		if tok.String() != kw {
			t.Errorf("keyword %q: String() = %q", kw, tok.String())
		}
	}
}

func TestGoString(t *testing.T) {
	if PLUS.GoString() != "'+'" {
		t.Errorf("want '+', got %s", PLUS.GoString())
	}
	if IDENT.GoString() != "identifier" {
		t.Errorf("want identifier, got %s", IDENT.GoString())
	}
}
