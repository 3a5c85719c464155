package token

import "testing"

func TestMakePos(t *testing.T) {
	p := MakePos(12, 34)
	line, col := p.LineCol()
	if line != 12 || col != 34 {
		t.Fatalf("want (12, 34), got (%d, %d)", line, col)
	}
}

func TestPosUnknown(t *testing.T) {
	if !Pos(0).Unknown() {
		t.Fatal("zero Pos should be unknown")
	}
	if MakePos(1, 1).Unknown() {
		t.Fatal("(1,1) should be known")
	}
}
