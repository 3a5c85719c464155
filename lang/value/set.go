package value

import (
	"strings"

	"golang.org/x/exp/slices"
)

// Set is Neon's unique-key container. Per the data model, sets are ordered
// by sorted key — unlike Map, which keeps insertion order — so iteration
// order (and String's rendering) is deterministic across runs regardless
// of insertion sequence.
type Set struct {
	elems map[string]Value // canonical key -> original value
}

// NewSet returns an empty set.
func NewSet() *Set { return &Set{elems: make(map[string]Value)} }

func (s *Set) TypeName() string { return "Set" }

func (s *Set) String() string {
	var b strings.Builder
	b.WriteString("set{")
	for i, v := range s.sorted() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(displayElem(v))
	}
	b.WriteByte('}')
	return b.String()
}

func (s *Set) Len() int { return len(s.elems) }

// Add inserts v, returning an error if v is not a valid set key.
func (s *Set) Add(v Value) error {
	ck, ok := CanonicalKey(v)
	if !ok {
		return errInvalidKey(v)
	}
	s.elems[ck] = v
	return nil
}

// Contains reports whether v is a member of the set.
func (s *Set) Contains(v Value) (bool, error) {
	ck, ok := CanonicalKey(v)
	if !ok {
		return false, errInvalidKey(v)
	}
	_, found := s.elems[ck]
	return found, nil
}

// Remove deletes v from the set, if present.
func (s *Set) Remove(v Value) error {
	ck, ok := CanonicalKey(v)
	if !ok {
		return errInvalidKey(v)
	}
	delete(s.elems, ck)
	return nil
}

// Elements returns the set's members sorted by canonical key, materialized
// as an array for GetIterator, per the data model's lazy-sort-at-iteration
// rule.
func (s *Set) Elements() []Value { return s.sorted() }

func (s *Set) sorted() []Value {
	keys := make([]string, 0, len(s.elems))
	for k := range s.elems {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]Value, len(keys))
	for i, k := range keys {
		out[i] = s.elems[k]
	}
	return out
}

func errInvalidKey(v Value) error {
	return &invalidKeyError{typeName: v.TypeName()}
}

type invalidKeyError struct{ typeName string }

func (e *invalidKeyError) Error() string {
	return "invalid set key of type " + e.typeName
}
