package value

import "fmt"

// String is an immutable, per-VM interned string object. Two Strings with
// equal Value are guaranteed to be the same pointer within one VM's
// lifetime (see Interner), so Equal can use pointer identity as a fast
// path.
type String struct {
	Value string
}

func (s *String) String() string   { return s.Value }
func (s *String) TypeName() string { return "String" }
func (s *String) canonicalKey() string { return "s:" + s.Value }

var (
	_ Value   = (*String)(nil)
	_ Keyable = (*String)(nil)
)

func (s *String) Cmp(y Value) int {
	o := y.(*String)
	switch {
	case s.Value < o.Value:
		return -1
	case s.Value > o.Value:
		return 1
	default:
		return 0
	}
}

var _ Ordered = (*String)(nil)

// Interner deduplicates string objects by content, one instance per VM.
type Interner struct {
	pool map[string]*String
}

// NewInterner returns an empty Interner.
func NewInterner() *Interner {
	return &Interner{pool: make(map[string]*String)}
}

// Intern returns the shared *String for s, creating it on first use.
func (in *Interner) Intern(s string) *String {
	if existing, ok := in.pool[s]; ok {
		return existing
	}
	str := &String{Value: s}
	in.pool[s] = str
	return str
}

// Concat interns the concatenation of a and b's contents, per the data
// model's rule that concatenation results are also interned.
func (in *Interner) Concat(a, b *String) *String {
	return in.Intern(a.Value + b.Value)
}

func (in *Interner) String() string { return fmt.Sprintf("interner(%d strings)", len(in.pool)) }
