package value

import (
	"fmt"
	"strings"

	"github.com/dolthub/swiss"
)

// Map is Neon's key→value container. Iteration order is insertion order —
// a deliberate departure from the source, which used an unordered hash map
// (see the design notes on stabilizing map iteration order); Set below
// keeps the source's sorted-keys order instead, since the two containers
// documented different semantics.
//
// Entries are keyed internally by Keyable.canonicalKey() rather than by
// Value directly: dolthub/swiss needs a comparable, hashable key type, and
// canonical strings let String/Number/Boolean keys with equal content
// collide correctly regardless of pointer identity.
type Map struct {
	entries *swiss.Map[string, mapEntry]
	order   []string // canonical keys, insertion order
}

type mapEntry struct {
	key   Value
	value Value
}

// NewMap returns an empty map with initial capacity for at least size
// entries.
func NewMap(size int) *Map {
	if size < 1 {
		size = 1
	}
	return &Map{entries: swiss.NewMap[string, mapEntry](uint32(size))}
}

func (m *Map) TypeName() string { return "Map" }

func (m *Map) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range m.order {
		if i > 0 {
			b.WriteString(", ")
		}
		e, _ := m.entries.Get(k)
		b.WriteString(displayElem(e.key))
		b.WriteString(": ")
		b.WriteString(displayElem(e.value))
	}
	b.WriteByte('}')
	return b.String()
}

func (m *Map) Len() int { return m.entries.Count() }

// Get returns the value for k, or found=false if k is absent or not a
// valid map key.
func (m *Map) Get(k Value) (v Value, found bool, err error) {
	ck, ok := CanonicalKey(k)
	if !ok {
		return nil, false, fmt.Errorf("invalid map key of type %s", k.TypeName())
	}
	e, found := m.entries.Get(ck)
	if !found {
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set inserts or overwrites the entry for k, recording insertion order on
// first write.
func (m *Map) Set(k, v Value) error {
	ck, ok := CanonicalKey(k)
	if !ok {
		return fmt.Errorf("invalid map key of type %s", k.TypeName())
	}
	if _, exists := m.entries.Get(ck); !exists {
		m.order = append(m.order, ck)
	}
	m.entries.Put(ck, mapEntry{key: k, value: v})
	return nil
}

// Keys returns the map's keys in insertion order, materialized as an array
// — used by GetIterator, which must produce a stable snapshot to iterate.
func (m *Map) Keys() []Value {
	keys := make([]Value, len(m.order))
	for i, ck := range m.order {
		e, _ := m.entries.Get(ck)
		keys[i] = e.key
	}
	return keys
}
