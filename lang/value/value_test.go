package value

import "testing"

func TestTruthy(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Nil, false},
		{Boolean(false), false},
		{Boolean(true), true},
		{Number(0), true},
		{Number(1), true},
	}
	for _, c := range cases {
		if got := Truthy(c.v); got != c.want {
			t.Fatalf("Truthy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestNumberFormatting(t *testing.T) {
	if Number(7).String() != "7" {
		t.Fatalf("got %q", Number(7).String())
	}
	if Number(3.5).String() != "3.5" {
		t.Fatalf("got %q", Number(3.5).String())
	}
}

func TestStringInterning(t *testing.T) {
	in := NewInterner()
	a := in.Intern("hello")
	b := in.Intern("hello")
	if a != b {
		t.Fatalf("expected interned pointers to be equal")
	}
	c := in.Concat(a, in.Intern(" world"))
	if c.Value != "hello world" {
		t.Fatalf("got %q", c.Value)
	}
}

func TestEqual(t *testing.T) {
	in := NewInterner()
	if !Equal(Number(1), Number(1)) {
		t.Fatalf("numbers should be equal")
	}
	if Equal(Number(1), Number(2)) {
		t.Fatalf("numbers should differ")
	}
	if !Equal(in.Intern("x"), in.Intern("x")) {
		t.Fatalf("interned strings should be equal")
	}
}

func TestArrayNegativeIndex(t *testing.T) {
	a := NewArray([]Value{Number(1), Number(2), Number(3)})
	v, err := a.Get(-1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != Number(3) {
		t.Fatalf("got %v", v)
	}
}

func TestArrayOutOfBounds(t *testing.T) {
	a := NewArray([]Value{Number(1)})
	if _, err := a.Get(5); err == nil {
		t.Fatalf("expected out-of-bounds error")
	}
}

func TestMapInsertionOrder(t *testing.T) {
	in := NewInterner()
	m := NewMap(0)
	if err := m.Set(in.Intern("b"), Number(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Set(in.Intern("a"), Number(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	keys := m.Keys()
	if len(keys) != 2 || keys[0].(*String).Value != "b" || keys[1].(*String).Value != "a" {
		t.Fatalf("expected insertion order [b a], got %v", keys)
	}
}

func TestMapGetMissing(t *testing.T) {
	m := NewMap(0)
	_, found, err := m.Get(Number(1))
	if err != nil || found {
		t.Fatalf("expected not found, no error; got found=%v err=%v", found, err)
	}
}

func TestSetSortedOrder(t *testing.T) {
	s := NewSet()
	_ = s.Add(Number(3))
	_ = s.Add(Number(1))
	_ = s.Add(Number(2))
	elems := s.Elements()
	if len(elems) != 3 || elems[0] != Number(1) || elems[1] != Number(2) || elems[2] != Number(3) {
		t.Fatalf("got %v", elems)
	}
}

func TestSetContainsAndRemove(t *testing.T) {
	s := NewSet()
	_ = s.Add(Number(1))
	ok, _ := s.Contains(Number(1))
	if !ok {
		t.Fatalf("expected set to contain 1")
	}
	_ = s.Remove(Number(1))
	ok, _ = s.Contains(Number(1))
	if ok {
		t.Fatalf("expected set to no longer contain 1")
	}
}

func TestInstanceFieldAccess(t *testing.T) {
	schema := &Struct{Name: "Point", Fields: []string{"x", "y"}}
	inst := NewInstance(schema, []Value{Number(3), Number(4)})
	v, err := inst.GetField("x")
	if err != nil || v != Number(3) {
		t.Fatalf("got %v, %v", v, err)
	}
	if err := inst.SetField("y", Number(10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ = inst.GetField("y")
	if v != Number(10) {
		t.Fatalf("got %v", v)
	}
	if _, err := inst.GetField("z"); err == nil {
		t.Fatalf("expected error for undefined field")
	}
}
