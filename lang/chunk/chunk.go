// Package chunk defines Chunk, the compiled unit codegen produces and the
// VM executes: instruction bytes, a constant pool, a separate string pool,
// a source-location side table, and a locals schema. It also defines
// Function, the callable Value wrapping a nested Chunk — Function lives
// here rather than in lang/value to avoid a value<->chunk import cycle
// (a Chunk's constant pool holds Values, and a Function value must hold a
// Chunk).
package chunk

import (
	"fmt"
	"sort"

	"github.com/neon-lang/neon/lang/opcode"
	"github.com/neon-lang/neon/lang/value"
)

// SourceLocation records the line/column active as of a given byte offset
// into Instructions. Entries are sorted by Offset; looking up the location
// for an arbitrary ip finds the entry with the largest Offset <= ip.
type SourceLocation struct {
	Offset int
	Line   int
	Column int
}

// Local describes one compile-time-known slot in a chunk's frame, used for
// disassembly and name-based slot lookup in tooling (not by the VM's
// dispatch loop, which only ever addresses slots by index).
type Local struct {
	Name    string
	Depth   int
	Mutable bool
}

// Chunk is a compiled unit: one function body, or the script top level.
type Chunk struct {
	Name            string
	Instructions    []byte
	Constants       []value.Value
	Strings         []value.Value // always *value.String, kept separate per the data model
	SourceLocations []SourceLocation
	Locals          []Local
}

// New returns an empty chunk named name.
func New(name string) *Chunk { return &Chunk{Name: name} }

// AddConstant appends v to the constant pool and returns its index.
// constants are write-append only: once assigned, an index never changes.
func (c *Chunk) AddConstant(v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// AddString appends s to the string pool and returns its index.
func (c *Chunk) AddString(s *value.String) int {
	c.Strings = append(c.Strings, s)
	return len(c.Strings) - 1
}

// AddLocal records a compile-time-known local slot for disassembly/debug
// purposes.
func (c *Chunk) AddLocal(name string, depth int, mutable bool) {
	c.Locals = append(c.Locals, Local{Name: name, Depth: depth, Mutable: mutable})
}

// Offset returns the current write position — the offset the next emitted
// byte will land at.
func (c *Chunk) Offset() int { return len(c.Instructions) }

// mark records the source location for the instruction about to be
// written at the current offset. Invariant: every opcode write is
// preceded by exactly one mark call at the same offset, so every byte
// offset that is ever looked up has a location <= it.
func (c *Chunk) mark(line, col int) {
	off := c.Offset()
	if n := len(c.SourceLocations); n > 0 && c.SourceLocations[n-1].Offset == off {
		c.SourceLocations[n-1] = SourceLocation{Offset: off, Line: line, Column: col}
		return
	}
	c.SourceLocations = append(c.SourceLocations, SourceLocation{Offset: off, Line: line, Column: col})
}

// EmitOp writes a bare opcode byte (no immediate) at line/col and returns
// its offset.
func (c *Chunk) EmitOp(op opcode.Opcode, line, col int) int {
	c.mark(line, col)
	off := c.Offset()
	c.Instructions = append(c.Instructions, byte(op))
	return off
}

// EmitByte writes a single immediate byte, e.g. Call's arg-count operand.
func (c *Chunk) EmitByte(b byte) { c.Instructions = append(c.Instructions, b) }

// EmitU16 writes a 2-byte big-endian immediate.
func (c *Chunk) EmitU16(v uint16) {
	c.Instructions = append(c.Instructions, byte(v>>8), byte(v))
}

// EmitU32 writes a 4-byte big-endian immediate.
func (c *Chunk) EmitU32(v uint32) {
	c.Instructions = append(c.Instructions, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// EmitIndexed writes op (chosen from base's width-variant family to fit
// index) followed by the index immediate of the matching width, at
// line/col. It returns the offset of the opcode byte.
func (c *Chunk) EmitIndexed(base opcode.Opcode, index int, line, col int) int {
	width := opcode.WidthFor(index)
	op := opcode.Variant(base, width)
	off := c.EmitOp(op, line, col)
	switch width {
	case opcode.Width1:
		c.EmitByte(byte(index))
	case opcode.Width2:
		c.EmitU16(uint16(index))
	case opcode.Width4:
		c.EmitU32(uint32(index))
	}
	return off
}

// EmitJump writes a jump opcode with a 4-byte placeholder offset and
// returns the offset of that placeholder, for a later PatchJump call.
func (c *Chunk) EmitJump(op opcode.Opcode, line, col int) int {
	c.EmitOp(op, line, col)
	placeholder := c.Offset()
	c.EmitU32(0)
	return placeholder
}

// PatchJump rewrites the 4-byte placeholder at placeholderOffset (as
// returned by EmitJump) to the forward distance from the byte after the
// immediate to the chunk's current end (the jump target).
func (c *Chunk) PatchJump(placeholderOffset int) {
	target := c.Offset()
	dist := target - (placeholderOffset + 4)
	if dist < 0 {
		panic(fmt.Sprintf("chunk: PatchJump target %d precedes placeholder %d", target, placeholderOffset))
	}
	c.patchU32(placeholderOffset, uint32(dist))
}

// EmitLoop writes a Loop instruction whose 4-byte immediate, subtracted
// from ip at the instruction after it, jumps back to loopStart.
func (c *Chunk) EmitLoop(loopStart int, line, col int) {
	c.EmitOp(opcode.Loop, line, col)
	immOffset := c.Offset()
	c.EmitU32(0)
	dist := (immOffset + 4) - loopStart
	c.patchU32(immOffset, uint32(dist))
}

func (c *Chunk) patchU32(offset int, v uint32) {
	c.Instructions[offset] = byte(v >> 24)
	c.Instructions[offset+1] = byte(v >> 16)
	c.Instructions[offset+2] = byte(v >> 8)
	c.Instructions[offset+3] = byte(v)
}

// SourceLocationAt returns the line/col active at ip: the entry with the
// largest Offset <= ip, found by binary search since SourceLocations is
// append-ordered (and therefore offset-sorted).
func (c *Chunk) SourceLocationAt(ip int) (line, col int, ok bool) {
	locs := c.SourceLocations
	i := sort.Search(len(locs), func(i int) bool { return locs[i].Offset > ip })
	if i == 0 {
		return 0, 0, false
	}
	loc := locs[i-1]
	return loc.Line, loc.Column, true
}

// Function is a compiled callable: a name, its declared parameter count,
// and the Chunk that implements its body. Arity 255 marks a variadic
// native callable; user functions are capped at 255 parameters.
type Function struct {
	Name  string
	Arity int
	Chunk *Chunk
}

func (f *Function) TypeName() string { return "Function" }
func (f *Function) String() string   { return fmt.Sprintf("<fn %s>", f.Name) }

var _ value.Value = (*Function)(nil)
