package diag

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	src := "var x = 1\nprint(y)\n"
	ds := []Diagnostic{
		New(Semantic, UndefinedSymbol, Location{Line: 2, Column: 7}, "undefined symbol %q", "y"),
	}
	out := Render(ds, "test.nx", src)
	if !strings.Contains(out, "test.nx:2:7") {
		t.Errorf("missing location in output:\n%s", out)
	}
	if !strings.Contains(out, "print(y)") {
		t.Errorf("missing source line in output:\n%s", out)
	}
	if !strings.Contains(out, "aborting due to 1 previous error") {
		t.Errorf("missing summary in output:\n%s", out)
	}
}

func TestDiagnosticError(t *testing.T) {
	d := New(Codegen, ArityExceeded, Location{Line: 1, Column: 1}, "too many args")
	if d.Error() == "" {
		t.Fatal("expected non-empty error string")
	}
}
