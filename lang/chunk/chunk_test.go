package chunk

import (
	"strings"
	"testing"

	"github.com/neon-lang/neon/lang/opcode"
	"github.com/neon-lang/neon/lang/value"
)

func TestEmitConstantAndSourceLocation(t *testing.T) {
	c := New("test")
	idx := c.AddConstant(value.Number(7))
	c.EmitIndexed(opcode.Constant, idx, 1, 5)
	line, col, ok := c.SourceLocationAt(0)
	if !ok || line != 1 || col != 5 {
		t.Fatalf("got line=%d col=%d ok=%v", line, col, ok)
	}
}

func TestEmitIndexedPicksWidth(t *testing.T) {
	c := New("test")
	off := c.EmitIndexed(opcode.Constant, 300, 1, 1)
	if opcode.Opcode(c.Instructions[off]) != opcode.Constant2 {
		t.Fatalf("expected Constant2 for index 300")
	}
}

func TestJumpPatch(t *testing.T) {
	c := New("test")
	placeholder := c.EmitJump(opcode.JumpIfFalse, 1, 1)
	c.EmitOp(opcode.Pop, 1, 1)
	c.PatchJump(placeholder)
	target := c.Offset()
	dist := target - (placeholder + 4)
	got := int(uint32(c.Instructions[placeholder])<<24 | uint32(c.Instructions[placeholder+1])<<16 |
		uint32(c.Instructions[placeholder+2])<<8 | uint32(c.Instructions[placeholder+3]))
	if got != dist {
		t.Fatalf("got patched offset %d, want %d", got, dist)
	}
}

func TestLoopBackwardOffset(t *testing.T) {
	c := New("test")
	loopStart := c.Offset()
	c.EmitOp(opcode.Pop, 1, 1)
	c.EmitLoop(loopStart, 1, 1)
	if len(c.Instructions) != 1+1+4 {
		t.Fatalf("unexpected instruction length %d", len(c.Instructions))
	}
}

func TestDisassembleLoopAsJump(t *testing.T) {
	c := New("test")
	loopStart := c.Offset()
	c.EmitOp(opcode.Pop, 1, 1)
	c.EmitLoop(loopStart, 1, 1)
	out := c.Disassemble()
	if !strings.Contains(out, "loop") || !strings.Contains(out, "back") {
		t.Fatalf("expected loop disassembly to show backward target, got:\n%s", out)
	}
}

func TestSourceLocationAtBinarySearch(t *testing.T) {
	c := New("test")
	c.EmitOp(opcode.Nil, 1, 1)
	c.EmitOp(opcode.Nil, 2, 1)
	c.EmitOp(opcode.Nil, 3, 1)
	line, _, ok := c.SourceLocationAt(1)
	if !ok || line != 2 {
		t.Fatalf("got line=%d ok=%v", line, ok)
	}
	line, _, ok = c.SourceLocationAt(2)
	if !ok || line != 3 {
		t.Fatalf("got line=%d ok=%v", line, ok)
	}
}
