// Package nativeregistry implements Neon's native-method registry and
// builtin table: the fixed set of typed native callables the VM invokes
// for method calls, static calls and constructors, plus the small,
// GetBuiltin-addressable table of VM-wide builtins (args, Math, File, print).
//
// This replaces the source's sentinel u32::MAX-style global indices (see
// spec.md's design notes) with a named registry addressed by small integer
// index, exactly the redesign the spec calls for.
package nativeregistry

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/neon-lang/neon/lang/value"
)

// Kind distinguishes how a registry entry is invoked.
type Kind uint8

const (
	// StaticMethod takes no receiver; called via CallStaticMethod.
	StaticMethod Kind = iota
	// InstanceMethod takes the receiver as args[0]; called via CallMethod
	// (runtime dispatch) or CallStaticMethod (statically resolved, still
	// receiver-as-first-arg).
	InstanceMethod
	// Constructor builds a new instance of TypeName; called via
	// CallConstructor.
	Constructor
)

// Entry is one row of the native registry: a (type, method) pair bound to
// a native callable.
type Entry struct {
	TypeName   string
	MethodName string
	Kind       Kind
	Arity      int // value.VariadicArity for variadic
	Fn         value.NativeFn
}

// Registry is the compile-time-constant table of native callables,
// addressable both by (type, name) — used by codegen/VM when a receiver's
// name is known — and by integer index — used by CallStaticMethod and
// CallConstructor, which carry an index rather than a name.
type Registry struct {
	entries []Entry
	byKey   map[string]int // "Type.method" -> index into entries
}

// New builds the standard Neon native registry: Math and File statics plus
// representative String/Array/Map/Set instance methods. The spec requires
// only the registry's shape (§1: "the spec requires only its shape, not
// each function's body"), so bodies here are representative, not
// exhaustive.
func New() *Registry {
	r := &Registry{byKey: make(map[string]int)}
	r.add(mathEntries()...)
	r.add(fileEntries()...)
	r.add(stringEntries()...)
	r.add(arrayEntries()...)
	r.add(mapEntries()...)
	r.add(setEntries()...)
	return r
}

func (r *Registry) add(entries ...Entry) {
	for _, e := range entries {
		key := e.TypeName + "." + e.MethodName
		if _, dup := r.byKey[key]; dup {
			panic(fmt.Sprintf("nativeregistry: duplicate entry %s", key))
		}
		r.byKey[key] = len(r.entries)
		r.entries = append(r.entries, e)
	}
}

// Lookup resolves (typeName, methodName) to its registry index, for
// compile-time static resolution and for the VM's runtime dispatch
// fallback.
func (r *Registry) Lookup(typeName, methodName string) (int, bool) {
	idx, ok := r.byKey[typeName+"."+methodName]
	return idx, ok
}

// At returns the entry at idx, for CallStaticMethod/CallConstructor's
// O(1) index-based dispatch.
func (r *Registry) At(idx int) (Entry, bool) {
	if idx < 0 || idx >= len(r.entries) {
		return Entry{}, false
	}
	return r.entries[idx], true
}

// Len reports how many entries the registry holds.
func (r *Registry) Len() int { return len(r.entries) }

func errf(format string, args ...interface{}) error { return fmt.Errorf(format, args...) }

func wantNumber(v value.Value) (float64, error) {
	n, ok := v.(value.Number)
	if !ok {
		return 0, errf("expected Number, got %s", v.TypeName())
	}
	return float64(n), nil
}

func mathEntries() []Entry {
	unary := func(name string, fn func(float64) float64) Entry {
		return Entry{TypeName: "Math", MethodName: name, Kind: StaticMethod, Arity: 1, Fn: func(args []value.Value) (value.Value, error) {
			x, err := wantNumber(args[0])
			if err != nil {
				return nil, err
			}
			return value.Number(fn(x)), nil
		}}
	}
	binary := func(name string, fn func(a, b float64) float64) Entry {
		return Entry{TypeName: "Math", MethodName: name, Kind: StaticMethod, Arity: 2, Fn: func(args []value.Value) (value.Value, error) {
			a, err := wantNumber(args[0])
			if err != nil {
				return nil, err
			}
			b, err := wantNumber(args[1])
			if err != nil {
				return nil, err
			}
			return value.Number(fn(a, b)), nil
		}}
	}
	return []Entry{
		unary("abs", math.Abs),
		unary("floor", math.Floor),
		unary("ceil", math.Ceil),
		unary("sqrt", math.Sqrt),
		binary("min", math.Min),
		binary("max", math.Max),
	}
}

func fileEntries() []Entry {
	return []Entry{
		{TypeName: "File", MethodName: "File", Kind: Constructor, Arity: 1, Fn: func(args []value.Value) (value.Value, error) {
			s, ok := args[0].(*value.String)
			if !ok {
				return nil, errf("File expects a String path, got %s", args[0].TypeName())
			}
			return &value.File{Path: s.Value}, nil
		}},
		{TypeName: "File", MethodName: "read", Kind: InstanceMethod, Arity: 1, Fn: func(args []value.Value) (value.Value, error) {
			f := args[0].(*value.File)
			data, err := os.ReadFile(f.Path)
			if err != nil {
				return nil, err
			}
			return &value.String{Value: string(data)}, nil
		}},
		{TypeName: "File", MethodName: "write", Kind: InstanceMethod, Arity: 2, Fn: func(args []value.Value) (value.Value, error) {
			f := args[0].(*value.File)
			s, ok := args[1].(*value.String)
			if !ok {
				return nil, errf("File.write expects a String, got %s", args[1].TypeName())
			}
			if err := os.WriteFile(f.Path, []byte(s.Value), 0o644); err != nil {
				return nil, err
			}
			return value.Nil, nil
		}},
		{TypeName: "File", MethodName: "exists", Kind: InstanceMethod, Arity: 1, Fn: func(args []value.Value) (value.Value, error) {
			f := args[0].(*value.File)
			_, err := os.Stat(f.Path)
			return value.Boolean(err == nil), nil
		}},
	}
}

func stringEntries() []Entry {
	wantString := func(v value.Value) (*value.String, error) {
		s, ok := v.(*value.String)
		if !ok {
			return nil, errf("expected String, got %s", v.TypeName())
		}
		return s, nil
	}
	return []Entry{
		{TypeName: "String", MethodName: "len", Kind: InstanceMethod, Arity: 1, Fn: func(args []value.Value) (value.Value, error) {
			s, err := wantString(args[0])
			if err != nil {
				return nil, err
			}
			return value.Number(len(s.Value)), nil
		}},
		{TypeName: "String", MethodName: "upper", Kind: InstanceMethod, Arity: 1, Fn: func(args []value.Value) (value.Value, error) {
			s, err := wantString(args[0])
			if err != nil {
				return nil, err
			}
			return &value.String{Value: toUpper(s.Value)}, nil
		}},
		{TypeName: "String", MethodName: "lower", Kind: InstanceMethod, Arity: 1, Fn: func(args []value.Value) (value.Value, error) {
			s, err := wantString(args[0])
			if err != nil {
				return nil, err
			}
			return &value.String{Value: toLower(s.Value)}, nil
		}},
		{TypeName: "String", MethodName: "contains", Kind: InstanceMethod, Arity: 2, Fn: func(args []value.Value) (value.Value, error) {
			s, err := wantString(args[0])
			if err != nil {
				return nil, err
			}
			sub, err := wantString(args[1])
			if err != nil {
				return nil, err
			}
			return value.Boolean(contains(s.Value, sub.Value)), nil
		}},
	}
}

func arrayEntries() []Entry {
	wantArray := func(v value.Value) (*value.Array, error) {
		a, ok := v.(*value.Array)
		if !ok {
			return nil, errf("expected Array, got %s", v.TypeName())
		}
		return a, nil
	}
	return []Entry{
		{TypeName: "Array", MethodName: "len", Kind: InstanceMethod, Arity: 1, Fn: func(args []value.Value) (value.Value, error) {
			a, err := wantArray(args[0])
			if err != nil {
				return nil, err
			}
			return value.Number(a.Len()), nil
		}},
		{TypeName: "Array", MethodName: "push", Kind: InstanceMethod, Arity: 2, Fn: func(args []value.Value) (value.Value, error) {
			a, err := wantArray(args[0])
			if err != nil {
				return nil, err
			}
			a.Append(args[1])
			return a, nil
		}},
		{TypeName: "Array", MethodName: "pop", Kind: InstanceMethod, Arity: 1, Fn: func(args []value.Value) (value.Value, error) {
			a, err := wantArray(args[0])
			if err != nil {
				return nil, err
			}
			if a.Len() == 0 {
				return nil, errf("pop from empty array")
			}
			last := a.Elems[a.Len()-1]
			a.Elems = a.Elems[:a.Len()-1]
			return last, nil
		}},
		{TypeName: "Array", MethodName: "contains", Kind: InstanceMethod, Arity: 2, Fn: func(args []value.Value) (value.Value, error) {
			a, err := wantArray(args[0])
			if err != nil {
				return nil, err
			}
			for _, e := range a.Elems {
				if value.Equal(e, args[1]) {
					return value.Boolean(true), nil
				}
			}
			return value.Boolean(false), nil
		}},
	}
}

func mapEntries() []Entry {
	wantMap := func(v value.Value) (*value.Map, error) {
		m, ok := v.(*value.Map)
		if !ok {
			return nil, errf("expected Map, got %s", v.TypeName())
		}
		return m, nil
	}
	return []Entry{
		{TypeName: "Map", MethodName: "len", Kind: InstanceMethod, Arity: 1, Fn: func(args []value.Value) (value.Value, error) {
			m, err := wantMap(args[0])
			if err != nil {
				return nil, err
			}
			return value.Number(m.Len()), nil
		}},
		{TypeName: "Map", MethodName: "has", Kind: InstanceMethod, Arity: 2, Fn: func(args []value.Value) (value.Value, error) {
			m, err := wantMap(args[0])
			if err != nil {
				return nil, err
			}
			_, found, err := m.Get(args[1])
			if err != nil {
				return nil, err
			}
			return value.Boolean(found), nil
		}},
		{TypeName: "Map", MethodName: "keys", Kind: InstanceMethod, Arity: 1, Fn: func(args []value.Value) (value.Value, error) {
			m, err := wantMap(args[0])
			if err != nil {
				return nil, err
			}
			return value.NewArray(m.Keys()), nil
		}},
	}
}

func setEntries() []Entry {
	wantSet := func(v value.Value) (*value.Set, error) {
		s, ok := v.(*value.Set)
		if !ok {
			return nil, errf("expected Set, got %s", v.TypeName())
		}
		return s, nil
	}
	return []Entry{
		{TypeName: "Set", MethodName: "len", Kind: InstanceMethod, Arity: 1, Fn: func(args []value.Value) (value.Value, error) {
			s, err := wantSet(args[0])
			if err != nil {
				return nil, err
			}
			return value.Number(s.Len()), nil
		}},
		{TypeName: "Set", MethodName: "has", Kind: InstanceMethod, Arity: 2, Fn: func(args []value.Value) (value.Value, error) {
			s, err := wantSet(args[0])
			if err != nil {
				return nil, err
			}
			found, err := s.Contains(args[1])
			if err != nil {
				return nil, err
			}
			return value.Boolean(found), nil
		}},
		{TypeName: "Set", MethodName: "add", Kind: InstanceMethod, Arity: 2, Fn: func(args []value.Value) (value.Value, error) {
			s, err := wantSet(args[0])
			if err != nil {
				return nil, err
			}
			if err := s.Add(args[1]); err != nil {
				return nil, err
			}
			return s, nil
		}},
	}
}

// the standard library's strings package would normally serve these, but
// keeping this package free of extra stdlib imports beyond what the
// registry itself needs keeps the native-method bodies' grounding obvious:
// each is a few lines of ASCII case-folding / substring search, not worth
// a dependency either way.
func toUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}

func contains(s, sub string) bool {
	if len(sub) == 0 {
		return true
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

// BuiltinTable is the small, VM-wide ordered registry GetBuiltin indexes
// into — args, Math, File, print — replacing the source's sentinel u32::MAX-style
// indices with named, small integers per the spec's design notes.
type BuiltinTable struct {
	names []string
	index map[string]int
}

// NewBuiltinTable builds the fixed builtin table against reg (so the File
// builtin's call constructs through the same registry entry CallConstructor
// addresses by index). args is the process's positional argument array
// (the Neon program's CLI args, not os.Args itself). stdout receives
// print(...) output.
func NewBuiltinTable(reg *Registry, args []string, stdout io.Writer) (*BuiltinTable, map[string]value.Value) {
	bt := &BuiltinTable{index: make(map[string]int)}
	values := make(map[string]value.Value)

	argVals := make([]value.Value, len(args))
	for i, a := range args {
		argVals[i] = &value.String{Value: a}
	}
	bt.declare("args", value.NewArray(argVals), values)
	bt.declare("Math", &value.NativeFunction{Name: "Math", Arity: value.VariadicArity, Fn: func([]value.Value) (value.Value, error) {
		return nil, errf("Math is not callable, call Math.<method>(...)")
	}}, values)
	bt.declare("File", &value.NativeFunction{Name: "File", Arity: 1, Fn: func(args []value.Value) (value.Value, error) {
		idx, _ := reg.Lookup("File", "File")
		e, _ := reg.At(idx)
		return e.Fn(args)
	}}, values)
	bt.declare("print", &value.NativeFunction{Name: "print", Arity: 1, Fn: func(args []value.Value) (value.Value, error) {
		fmt.Fprintln(stdout, args[0].String())
		return value.Nil, nil
	}}, values)

	return bt, values
}

func (bt *BuiltinTable) declare(name string, v value.Value, values map[string]value.Value) {
	bt.index[name] = len(bt.names)
	bt.names = append(bt.names, name)
	values[name] = v
}

// Index returns name's GetBuiltin index, and ok=false if name is not a
// known builtin.
func (bt *BuiltinTable) Index(name string) (int, bool) {
	idx, ok := bt.index[name]
	return idx, ok
}

// IsBuiltin adapts Index to the resolver.IsBuiltin shape.
func (bt *BuiltinTable) IsBuiltin(name string) bool {
	_, ok := bt.index[name]
	return ok
}

// Names returns the builtin table in index order.
func (bt *BuiltinTable) Names() []string {
	out := make([]string, len(bt.names))
	copy(out, bt.names)
	return out
}
