package value

import (
	"fmt"
	"strings"
)

// Array is Neon's growable sequence container. Mutation through one Value
// alias is visible through another, matching the data model's shared-handle
// semantics: Go's GC and normal pointer aliasing give us this for free, no
// Rc<RefCell<T>> needed.
type Array struct {
	Elems []Value
}

// NewArray returns an array holding elems (not copied).
func NewArray(elems []Value) *Array { return &Array{Elems: elems} }

func (a *Array) TypeName() string { return "Array" }

func (a *Array) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range a.Elems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(displayElem(e))
	}
	b.WriteByte(']')
	return b.String()
}

func displayElem(v Value) string {
	if s, ok := v.(*String); ok {
		return fmt.Sprintf("%q", s.Value)
	}
	return v.String()
}

func (a *Array) Len() int { return len(a.Elems) }

// resolveIndex turns a possibly-negative, Neon-style index into a 0-based
// Go slice index, or ok=false if it is out of bounds after wrapping.
func resolveIndex(i, length int) (int, bool) {
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, false
	}
	return i, true
}

// Get returns a.Elems[i] with negative-index wraparound, or an error if i
// is out of bounds.
func (a *Array) Get(i int) (Value, error) {
	idx, ok := resolveIndex(i, len(a.Elems))
	if !ok {
		return nil, fmt.Errorf("array index %d out of bounds (length %d)", i, len(a.Elems))
	}
	return a.Elems[idx], nil
}

// Set assigns a.Elems[i] = v with negative-index wraparound, or an error if
// i is out of bounds.
func (a *Array) Set(i int, v Value) error {
	idx, ok := resolveIndex(i, len(a.Elems))
	if !ok {
		return fmt.Errorf("array index %d out of bounds (length %d)", i, len(a.Elems))
	}
	a.Elems[idx] = v
	return nil
}

func (a *Array) Append(v Value) { a.Elems = append(a.Elems, v) }
