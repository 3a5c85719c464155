// Package binary implements Neon's on-disk bytecode container: a
// magic+version header followed by a recursive encoding of a chunk.Chunk
// tree. Like the teacher's sibling pack examples (kristofer-smog's
// pkg/bytecode and informatter-nilan's compiler/code.go), this sticks to
// the standard library's encoding/binary rather than a third-party codec —
// no example in the retrieved pack reaches for a serialization library for
// its bytecode format, so there is nothing to ground a dependency choice
// on here.
package binary

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/neon-lang/neon/lang/chunk"
)

// Magic is the 4-byte file signature, "NEON".
var Magic = [4]byte{0x4E, 0x45, 0x4F, 0x4E}

// FormatVersion is the current container version. Readers reject anything
// newer; see Read.
const FormatVersion uint16 = 1

// Errors returned by Read/Write, matching the taxonomy in the error
// handling design: IoError is reported as-is from the underlying
// io.Reader/Writer, the rest are distinguished here.
var (
	ErrInvalidFormat = fmt.Errorf("binary: invalid format (bad magic)")
)

// UnsupportedVersionError is returned when a file's version exceeds
// FormatVersion.
type UnsupportedVersionError struct {
	Found, Current uint16
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("binary: unsupported version %d (current %d)", e.Found, e.Current)
}

// Write serializes c to w behind the magic+version+reserved header.
func Write(w io.Writer, c *chunk.Chunk) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return fmt.Errorf("binary: write magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, FormatVersion); err != nil {
		return fmt.Errorf("binary: write version: %w", err)
	}
	var reserved [10]byte
	if _, err := w.Write(reserved[:]); err != nil {
		return fmt.Errorf("binary: write reserved: %w", err)
	}
	e := &encoder{w: w}
	if err := e.chunk(c); err != nil {
		return fmt.Errorf("binary: encode chunk: %w", err)
	}
	return nil
}

// Read deserializes a chunk.Chunk from r, validating the header first.
func Read(r io.Reader) (*chunk.Chunk, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("binary: read magic: %w", err)
	}
	if magic != Magic {
		return nil, ErrInvalidFormat
	}
	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("binary: read version: %w", err)
	}
	if version > FormatVersion {
		return nil, &UnsupportedVersionError{Found: version, Current: FormatVersion}
	}
	var reserved [10]byte
	if _, err := io.ReadFull(r, reserved[:]); err != nil {
		return nil, fmt.Errorf("binary: read reserved: %w", err)
	}
	d := &decoder{r: r}
	c, err := d.chunk()
	if err != nil {
		return nil, fmt.Errorf("binary: decode chunk: %w", err)
	}
	return c, nil
}

// Marshal encodes c to a standalone byte slice (header + body).
func Marshal(c *chunk.Chunk) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal is the inverse of Marshal.
func Unmarshal(data []byte) (*chunk.Chunk, error) {
	return Read(bytes.NewReader(data))
}

// WriteFile encodes c into a .nbc container file at path, the form
// internal/maincmd's build command writes and ReadFile loads back.
func WriteFile(path string, c *chunk.Chunk) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("binary: create %s: %w", path, err)
	}
	defer f.Close()
	if err := Write(f, c); err != nil {
		return err
	}
	return f.Close()
}

// ReadFile is the inverse of WriteFile.
func ReadFile(path string) (*chunk.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("binary: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// value type tags for the constant pool / string pool encoding.
const (
	tagNumber byte = iota + 1
	tagString
	tagFunction
	tagStruct
)
