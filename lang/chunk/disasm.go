package chunk

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/neon-lang/neon/lang/opcode"
)

// Disassemble renders c's instructions as human-readable text, one line
// per opcode, for debugging and the CLI's disasm command. Loop is printed
// as a jump with its resolved target, not as a bare opcode — the
// disassembler pitfall the design notes call out about the source.
func (c *Chunk) Disassemble() string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", c.Name)
	ip := 0
	for ip < len(c.Instructions) {
		ip = c.disassembleInstr(&b, ip)
	}
	return b.String()
}

func (c *Chunk) disassembleInstr(b *strings.Builder, ip int) int {
	op := opcode.Opcode(c.Instructions[ip])
	fmt.Fprintf(b, "%04d %-18s", ip, op)

	switch {
	case op == opcode.Loop:
		off := binary.BigEndian.Uint32(c.Instructions[ip+1 : ip+5])
		target := (ip + 5) - int(off)
		fmt.Fprintf(b, " -> %d (back %d)\n", target, off)
		return ip + 5
	case opcode.IsJump(op):
		off := binary.BigEndian.Uint32(c.Instructions[ip+1 : ip+5])
		target := (ip + 5) + int(off)
		fmt.Fprintf(b, " -> %d (+%d)\n", target, off)
		return ip + 5
	}

	switch op {
	case opcode.Call, opcode.CreateSet, opcode.CreateRange:
		fmt.Fprintf(b, " %d\n", c.Instructions[ip+1])
		return ip + 2
	case opcode.CreateArray:
		fmt.Fprintf(b, " %d\n", binary.BigEndian.Uint16(c.Instructions[ip+1:ip+3]))
		return ip + 3
	case opcode.CreateMap:
		fmt.Fprintf(b, " %d\n", c.Instructions[ip+1])
		return ip + 2
	case opcode.CallMethod, opcode.CallStaticMethod, opcode.CallConstructor:
		fmt.Fprintf(b, " argc=%d idx=%d\n", c.Instructions[ip+1], c.Instructions[ip+2])
		return ip + 3
	case opcode.CallMethod2, opcode.CallStaticMethod2, opcode.CallConstructor2:
		fmt.Fprintf(b, " argc=%d idx=%d\n", c.Instructions[ip+1], binary.BigEndian.Uint16(c.Instructions[ip+2:ip+4]))
		return ip + 4
	case opcode.CallMethod4, opcode.CallStaticMethod4, opcode.CallConstructor4:
		fmt.Fprintf(b, " argc=%d idx=%d\n", c.Instructions[ip+1], binary.BigEndian.Uint32(c.Instructions[ip+2:ip+6]))
		return ip + 6
	}

	switch opcode.ImmediateSize(op) {
	case 0:
		b.WriteByte('\n')
		return ip + 1
	case 1:
		fmt.Fprintf(b, " %d\n", c.Instructions[ip+1])
		return ip + 2
	case 2:
		fmt.Fprintf(b, " %d\n", binary.BigEndian.Uint16(c.Instructions[ip+1:ip+3]))
		return ip + 3
	case 4:
		fmt.Fprintf(b, " %d\n", binary.BigEndian.Uint32(c.Instructions[ip+1:ip+5]))
		return ip + 5
	default:
		b.WriteByte('\n')
		return ip + 1
	}
}
