package opcode

import "testing"

func TestOpcodeString(t *testing.T) {
	if got := Constant.String(); got != "constant" {
		t.Fatalf("got %q", got)
	}
	if got := Opcode(255).String(); got == "" {
		t.Fatalf("expected non-empty fallback string")
	}
}

func TestStackEffectFixed(t *testing.T) {
	pops, pushes, ok := StackEffect(Add)
	if !ok || pops != 2 || pushes != 1 {
		t.Fatalf("got %d %d %v", pops, pushes, ok)
	}
}

func TestStackEffectVariable(t *testing.T) {
	if _, _, ok := StackEffect(Call); ok {
		t.Fatalf("Call should report a variable effect")
	}
	if _, _, ok := StackEffect(CreateArray); ok {
		t.Fatalf("CreateArray should report a variable effect")
	}
}

func TestWidthFor(t *testing.T) {
	cases := []struct {
		n    int
		want Width
	}{
		{0, Width1},
		{255, Width1},
		{256, Width2},
		{65535, Width2},
		{65536, Width4},
	}
	for _, c := range cases {
		if got := WidthFor(c.n); got != c.want {
			t.Fatalf("WidthFor(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestVariant(t *testing.T) {
	if Variant(Constant, Width1) != Constant {
		t.Fatalf("Variant(Constant, 1) should be Constant")
	}
	if Variant(Constant, Width2) != Constant2 {
		t.Fatalf("Variant(Constant, 2) should be Constant2")
	}
	if Variant(GetLocal, Width4) != GetLocal4 {
		t.Fatalf("Variant(GetLocal, 4) should be GetLocal4")
	}
}

func TestVariantPanicsOnNonFamily(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for non-width-variant opcode")
		}
	}()
	Variant(Add, Width1)
}

func TestIsJump(t *testing.T) {
	for _, op := range []Opcode{JumpIfFalse, Jump, Loop} {
		if !IsJump(op) {
			t.Fatalf("%s should be a jump", op)
		}
	}
	if IsJump(Add) {
		t.Fatalf("Add should not be a jump")
	}
}

func TestImmediateSizeJump(t *testing.T) {
	if ImmediateSize(Loop) != 4 {
		t.Fatalf("Loop immediate should be 4 bytes")
	}
}
