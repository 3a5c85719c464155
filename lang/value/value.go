// Package value implements Neon's runtime Value model: the discriminated
// union of Number/Boolean/Nil/Object described in the data model, with
// containers (Array, Map, Set, Instance) modeled as ordinary Go pointers —
// Go's garbage collector gives us the shared-handle, interior-mutability
// semantics the source's Rc<RefCell<T>> needed unsafe tricks for, so no
// reference counting or borrow-checking machinery is required here.
//
// The Value interface and its sub-interfaces (Ordered, Keyable)
// follow the shape of the teacher repository's lang/machine.Value family,
// trimmed to what Neon's opcode set actually needs.
package value

import "fmt"

// Value is implemented by every runtime datum the VM can push on its
// operand stack.
type Value interface {
	// String returns the value's display representation, as produced by
	// print(...) and ToString.
	String() string
	// TypeName returns the short name used for native-registry lookup and
	// runtime type-error messages ("Number", "Array", a struct name, ...).
	TypeName() string
}

// Truthy reports whether v is truthy per Neon's rule: everything except
// Nil and Boolean(false) is truthy.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case NilValue:
		return false
	case Boolean:
		return bool(v)
	default:
		return true
	}
}

// Number is Neon's sole numeric type, an IEEE-754 double.
type Number float64

func (n Number) String() string   { return formatNumber(float64(n)) }
func (n Number) TypeName() string { return "Number" }

func formatNumber(f float64) string {
	if f == float64(int64(f)) && f < 1e15 && f > -1e15 {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// Boolean is Neon's true/false type.
type Boolean bool

func (b Boolean) String() string   { return fmt.Sprintf("%t", bool(b)) }
func (b Boolean) TypeName() string { return "Boolean" }

// NilValue is Neon's absence-of-value type; Nil is its sole inhabitant.
type NilValue struct{}

func (NilValue) String() string   { return "nil" }
func (NilValue) TypeName() string { return "Nil" }

// Nil is the singleton nil value.
var Nil = NilValue{}

// Ordered is implemented by values usable with <, >, <=, >=.
type Ordered interface {
	Value
	// Cmp compares the receiver to y, which is guaranteed the same dynamic
	// type. Negative/zero/positive means less/equal/greater.
	Cmp(y Value) int
}

func (n Number) Cmp(y Value) int {
	o := float64(y.(Number))
	switch {
	case float64(n) < o:
		return -1
	case float64(n) > o:
		return 1
	default:
		return 0
	}
}

// Keyable is the subset of Value usable as a Map/Set key: String, Number,
// Boolean. Nil and composite values are not valid keys.
type Keyable interface {
	Value
	canonicalKey() string
}

func (n Number) canonicalKey() string { return "n:" + formatNumber(float64(n)) }
func (b Boolean) canonicalKey() string {
	if b {
		return "b:true"
	}
	return "b:false"
}

// CanonicalKey returns v's canonical map/set key string, and ok=false if v
// is not a Keyable value.
func CanonicalKey(v Value) (string, bool) {
	k, ok := v.(Keyable)
	if !ok {
		return "", false
	}
	return k.canonicalKey(), true
}

// Equal reports whether a and b are the same value. Interned strings
// compare by pointer identity as a fast path, falling back to content
// comparison for non-interned callers; numbers/booleans/nil compare by
// value; containers and other objects compare by identity.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Number:
		o, ok := b.(Number)
		return ok && a == o
	case Boolean:
		o, ok := b.(Boolean)
		return ok && a == o
	case NilValue:
		_, ok := b.(NilValue)
		return ok
	case *String:
		o, ok := b.(*String)
		return ok && (a == o || a.Value == o.Value)
	default:
		return a == b
	}
}
