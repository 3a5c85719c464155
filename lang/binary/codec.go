package binary

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/neon-lang/neon/lang/chunk"
	"github.com/neon-lang/neon/lang/value"
)

type encoder struct{ w io.Writer }

func (e *encoder) u32(v uint32) error { return binary.Write(e.w, binary.LittleEndian, v) }
func (e *encoder) u16(v uint16) error { return binary.Write(e.w, binary.LittleEndian, v) }
func (e *encoder) u8(v byte) error    { _, err := e.w.Write([]byte{v}); return err }
func (e *encoder) f64(v float64) error { return binary.Write(e.w, binary.LittleEndian, v) }

func (e *encoder) str(s string) error {
	if err := e.u32(uint32(len(s))); err != nil {
		return err
	}
	_, err := e.w.Write([]byte(s))
	return err
}

func (e *encoder) bytes(b []byte) error {
	if err := e.u32(uint32(len(b))); err != nil {
		return err
	}
	_, err := e.w.Write(b)
	return err
}

func (e *encoder) chunk(c *chunk.Chunk) error {
	if err := e.str(c.Name); err != nil {
		return err
	}
	if err := e.bytes(c.Instructions); err != nil {
		return err
	}
	if err := e.u32(uint32(len(c.Constants))); err != nil {
		return err
	}
	for _, v := range c.Constants {
		if err := e.value(v); err != nil {
			return err
		}
	}
	if err := e.u32(uint32(len(c.Strings))); err != nil {
		return err
	}
	for _, v := range c.Strings {
		s, ok := v.(*value.String)
		if !ok {
			return fmt.Errorf("string pool entry is not a String: %T", v)
		}
		if err := e.str(s.Value); err != nil {
			return err
		}
	}
	if err := e.u32(uint32(len(c.SourceLocations))); err != nil {
		return err
	}
	for _, loc := range c.SourceLocations {
		if err := e.u32(uint32(loc.Offset)); err != nil {
			return err
		}
		if err := e.u32(uint32(loc.Line)); err != nil {
			return err
		}
		if err := e.u32(uint32(loc.Column)); err != nil {
			return err
		}
	}
	if err := e.u32(uint32(len(c.Locals))); err != nil {
		return err
	}
	for _, l := range c.Locals {
		if err := e.str(l.Name); err != nil {
			return err
		}
		if err := e.u32(uint32(l.Depth)); err != nil {
			return err
		}
		mutable := byte(0)
		if l.Mutable {
			mutable = 1
		}
		if err := e.u8(mutable); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) value(v value.Value) error {
	switch v := v.(type) {
	case value.Number:
		if err := e.u8(tagNumber); err != nil {
			return err
		}
		return e.f64(float64(v))
	case *value.String:
		if err := e.u8(tagString); err != nil {
			return err
		}
		return e.str(v.Value)
	case *chunk.Function:
		if err := e.u8(tagFunction); err != nil {
			return err
		}
		if err := e.str(v.Name); err != nil {
			return err
		}
		if err := e.u8(byte(v.Arity)); err != nil {
			return err
		}
		return e.chunk(v.Chunk)
	case *value.Struct:
		if err := e.u8(tagStruct); err != nil {
			return err
		}
		if err := e.str(v.Name); err != nil {
			return err
		}
		if err := e.u32(uint32(len(v.Fields))); err != nil {
			return err
		}
		for _, f := range v.Fields {
			if err := e.str(f); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("binary: unsupported constant type %T", v)
	}
}

type decoder struct{ r io.Reader }

func (d *decoder) u32() (uint32, error) {
	var v uint32
	err := binary.Read(d.r, binary.LittleEndian, &v)
	return v, err
}

func (d *decoder) u8() (byte, error) {
	var b [1]byte
	_, err := io.ReadFull(d.r, b[:])
	return b[0], err
}

func (d *decoder) f64() (float64, error) {
	var v float64
	err := binary.Read(d.r, binary.LittleEndian, &v)
	return v, err
}

func (d *decoder) str() (string, error) {
	n, err := d.u32()
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (d *decoder) bytesN() ([]byte, error) {
	n, err := d.u32()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *decoder) chunk() (*chunk.Chunk, error) {
	name, err := d.str()
	if err != nil {
		return nil, err
	}
	instrs, err := d.bytesN()
	if err != nil {
		return nil, err
	}
	c := &chunk.Chunk{Name: name, Instructions: instrs}

	nconst, err := d.u32()
	if err != nil {
		return nil, err
	}
	c.Constants = make([]value.Value, nconst)
	for i := range c.Constants {
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		c.Constants[i] = v
	}

	nstr, err := d.u32()
	if err != nil {
		return nil, err
	}
	c.Strings = make([]value.Value, nstr)
	for i := range c.Strings {
		s, err := d.str()
		if err != nil {
			return nil, err
		}
		c.Strings[i] = &value.String{Value: s}
	}

	nloc, err := d.u32()
	if err != nil {
		return nil, err
	}
	c.SourceLocations = make([]chunk.SourceLocation, nloc)
	for i := range c.SourceLocations {
		off, err := d.u32()
		if err != nil {
			return nil, err
		}
		line, err := d.u32()
		if err != nil {
			return nil, err
		}
		col, err := d.u32()
		if err != nil {
			return nil, err
		}
		c.SourceLocations[i] = chunk.SourceLocation{Offset: int(off), Line: int(line), Column: int(col)}
	}

	nlocals, err := d.u32()
	if err != nil {
		return nil, err
	}
	c.Locals = make([]chunk.Local, nlocals)
	for i := range c.Locals {
		name, err := d.str()
		if err != nil {
			return nil, err
		}
		depth, err := d.u32()
		if err != nil {
			return nil, err
		}
		mutByte, err := d.u8()
		if err != nil {
			return nil, err
		}
		c.Locals[i] = chunk.Local{Name: name, Depth: int(depth), Mutable: mutByte != 0}
	}

	return c, nil
}

func (d *decoder) value() (value.Value, error) {
	tag, err := d.u8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagNumber:
		f, err := d.f64()
		if err != nil {
			return nil, err
		}
		return value.Number(f), nil
	case tagString:
		s, err := d.str()
		if err != nil {
			return nil, err
		}
		return &value.String{Value: s}, nil
	case tagFunction:
		name, err := d.str()
		if err != nil {
			return nil, err
		}
		arity, err := d.u8()
		if err != nil {
			return nil, err
		}
		inner, err := d.chunk()
		if err != nil {
			return nil, err
		}
		return &chunk.Function{Name: name, Arity: int(arity), Chunk: inner}, nil
	case tagStruct:
		name, err := d.str()
		if err != nil {
			return nil, err
		}
		n, err := d.u32()
		if err != nil {
			return nil, err
		}
		fields := make([]string, n)
		for i := range fields {
			f, err := d.str()
			if err != nil {
				return nil, err
			}
			fields[i] = f
		}
		return &value.Struct{Name: name, Fields: fields}, nil
	default:
		return nil, fmt.Errorf("binary: unknown constant tag %d", tag)
	}
}
