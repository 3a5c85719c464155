package value

import (
	"fmt"
	"strings"
)

// Struct is a user-declared schema: a name plus an ordered list of field
// names. CallConstructor-style calls to a Struct value build an Instance
// bound to it.
type Struct struct {
	Name   string
	Fields []string
}

func (s *Struct) TypeName() string { return "Struct" }
func (s *Struct) String() string   { return fmt.Sprintf("struct %s", s.Name) }

// FieldIndex returns the declared index of name, or -1 if it is not a
// field of this struct.
func (s *Struct) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f == name {
			return i
		}
	}
	return -1
}

// Instance is a struct value: a schema handle plus field values, addressed
// both by name (for GetField/SetField) and by the schema's declared order
// (for construction).
type Instance struct {
	Schema *Struct
	Values []Value
}

// NewInstance builds an instance of schema with values in declared field
// order. len(values) must equal len(schema.Fields); the caller (VM Call
// handling) is responsible for arity-checking before construction.
func NewInstance(schema *Struct, values []Value) *Instance {
	return &Instance{Schema: schema, Values: values}
}

func (i *Instance) TypeName() string { return i.Schema.Name }

func (i *Instance) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s{", i.Schema.Name)
	for idx, f := range i.Schema.Fields {
		if idx > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", f, displayElem(i.Values[idx]))
	}
	b.WriteByte('}')
	return b.String()
}

// GetField returns the value of field name, or an error if the instance's
// schema declares no such field.
func (i *Instance) GetField(name string) (Value, error) {
	idx := i.Schema.FieldIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("undefined field %q on %s", name, i.Schema.Name)
	}
	return i.Values[idx], nil
}

// SetField assigns field name, or returns an error if it is not in the
// struct's declared schema.
func (i *Instance) SetField(name string, v Value) error {
	idx := i.Schema.FieldIndex(name)
	if idx < 0 {
		return fmt.Errorf("undefined field %q on %s", name, i.Schema.Name)
	}
	i.Values[idx] = v
	return nil
}
