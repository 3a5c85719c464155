package vm

import (
	"fmt"
	"math"

	"github.com/neon-lang/neon/lang/chunk"
	"github.com/neon-lang/neon/lang/nativeregistry"
	"github.com/neon-lang/neon/lang/opcode"
	"github.com/neon-lang/neon/lang/value"
)

// call runs fn from ip 0, addressing its locals at vm.stack[slotStart+i].
// Globals always address vm.stack from absolute index 0 — the script
// frame's slots never move, since only nested frames above it are ever
// truncated away on return — so GetGlobal/SetGlobal never use slotStart.
//
// Like the teacher's lang/machine.Thread.run, one Go call per Neon call
// frame: nested Call instructions recurse into vm.call rather than
// threading an explicit frame stack through one flat loop. The shared
// vm.stack slice is what lets every frame's locals and the script's
// globals coexist in one address space.
func (vm *VM) call(fn *chunk.Function, slotStart int) (value.Value, error) {
	vm.depth++
	if vm.depth > vm.cfg.MaxCallDepth {
		vm.depth--
		return nil, &RuntimeError{Message: "call stack depth exceeded", Line: 0, Column: 0}
	}
	defer func() { vm.depth-- }()

	code := fn.Chunk.Instructions
	ip := 0
	for {
		vm.steps++
		if vm.steps > vm.cfg.MaxSteps {
			return nil, vm.runtimeErr(fn, ip, "step limit exceeded")
		}
		if ip >= len(code) {
			return value.Nil, nil
		}
		opStart := ip
		op := opcode.Opcode(code[ip])
		ip++

		switch op {
		case opcode.Constant, opcode.Constant2, opcode.Constant4:
			idx := vm.readFamilyIndex(code, &ip, op, opcode.Constant)
			vm.push(fn.Chunk.Constants[idx])
		case opcode.String, opcode.String2, opcode.String4:
			idx := vm.readFamilyIndex(code, &ip, op, opcode.String)
			s := fn.Chunk.Strings[idx].(*value.String)
			vm.push(vm.interner.Intern(s.Value))
		case opcode.Nil:
			vm.push(value.Nil)
		case opcode.True:
			vm.push(value.Boolean(true))
		case opcode.False:
			vm.push(value.Boolean(false))

		case opcode.Negate:
			x := vm.pop()
			n, ok := x.(value.Number)
			if !ok {
				return nil, vm.runtimeErr(fn, opStart, "cannot negate %s", x.TypeName())
			}
			vm.push(-n)
		case opcode.Not:
			x := vm.pop()
			vm.push(value.Boolean(!value.Truthy(x)))
		case opcode.BitwiseNot:
			x := vm.pop()
			n, ok := asInt(x)
			if !ok {
				return nil, vm.runtimeErr(fn, opStart, "cannot apply ~ to %s", x.TypeName())
			}
			vm.push(value.Number(^n))

		case opcode.Add:
			b, a := vm.pop(), vm.pop()
			v, err := vm.add(a, b)
			if err != nil {
				return nil, vm.runtimeErr(fn, opStart, "%s", err)
			}
			vm.push(v)
		case opcode.Subtract:
			v, err := vm.arith(opStart, fn, "subtract", func(a, b float64) float64 { return a - b })
			if err != nil {
				return nil, err
			}
			vm.push(v)
		case opcode.Multiply:
			v, err := vm.arith(opStart, fn, "multiply", func(a, b float64) float64 { return a * b })
			if err != nil {
				return nil, err
			}
			vm.push(v)
		case opcode.Divide:
			b, a := vm.pop(), vm.pop()
			af, aok := a.(value.Number)
			bf, bok := b.(value.Number)
			if !aok || !bok {
				return nil, vm.runtimeErr(fn, opStart, "cannot divide %s by %s", a.TypeName(), b.TypeName())
			}
			if bf == 0 {
				return nil, vm.runtimeErr(fn, opStart, "division by zero")
			}
			vm.push(value.Number(float64(af) / float64(bf)))
		case opcode.Modulo:
			b, a := vm.pop(), vm.pop()
			af, aok := a.(value.Number)
			bf, bok := b.(value.Number)
			if !aok || !bok {
				return nil, vm.runtimeErr(fn, opStart, "cannot apply %% to %s and %s", a.TypeName(), b.TypeName())
			}
			if bf == 0 {
				return nil, vm.runtimeErr(fn, opStart, "modulo by zero")
			}
			vm.push(value.Number(math.Mod(float64(af), float64(bf))))
		case opcode.FloorDivide:
			b, a := vm.pop(), vm.pop()
			af, aok := a.(value.Number)
			bf, bok := b.(value.Number)
			if !aok || !bok {
				return nil, vm.runtimeErr(fn, opStart, "cannot apply // to %s and %s", a.TypeName(), b.TypeName())
			}
			if bf == 0 {
				return nil, vm.runtimeErr(fn, opStart, "division by zero")
			}
			vm.push(value.Number(math.Floor(float64(af) / float64(bf))))
		case opcode.Exponent:
			v, err := vm.arith(opStart, fn, "raise", math.Pow)
			if err != nil {
				return nil, err
			}
			vm.push(v)

		case opcode.Equal:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Boolean(value.Equal(a, b)))
		case opcode.Less:
			c, err := vm.compare(fn, opStart)
			if err != nil {
				return nil, err
			}
			vm.push(value.Boolean(c < 0))
		case opcode.Greater:
			c, err := vm.compare(fn, opStart)
			if err != nil {
				return nil, err
			}
			vm.push(value.Boolean(c > 0))

		case opcode.BitwiseAnd:
			v, err := vm.bitwise(opStart, fn, func(a, b int64) int64 { return a & b })
			if err != nil {
				return nil, err
			}
			vm.push(v)
		case opcode.BitwiseOr:
			v, err := vm.bitwise(opStart, fn, func(a, b int64) int64 { return a | b })
			if err != nil {
				return nil, err
			}
			vm.push(v)
		case opcode.BitwiseXor:
			v, err := vm.bitwise(opStart, fn, func(a, b int64) int64 { return a ^ b })
			if err != nil {
				return nil, err
			}
			vm.push(v)
		case opcode.LeftShift:
			v, err := vm.bitwise(opStart, fn, func(a, b int64) int64 { return a << uint(b) })
			if err != nil {
				return nil, err
			}
			vm.push(v)
		case opcode.RightShift:
			v, err := vm.bitwise(opStart, fn, func(a, b int64) int64 { return a >> uint(b) })
			if err != nil {
				return nil, err
			}
			vm.push(v)

		case opcode.Pop:
			vm.pop()

		case opcode.GetLocal, opcode.GetLocal2, opcode.GetLocal4:
			slot := vm.readFamilyIndex(code, &ip, op, opcode.GetLocal)
			vm.push(vm.stack[slotStart+slot])
		case opcode.SetLocal, opcode.SetLocal2, opcode.SetLocal4:
			slot := vm.readFamilyIndex(code, &ip, op, opcode.SetLocal)
			vm.stack[slotStart+slot] = vm.peek(0)
		case opcode.GetGlobal, opcode.GetGlobal2, opcode.GetGlobal4:
			slot := vm.readFamilyIndex(code, &ip, op, opcode.GetGlobal)
			vm.push(vm.stack[slot])
		case opcode.SetGlobal, opcode.SetGlobal2, opcode.SetGlobal4:
			slot := vm.readFamilyIndex(code, &ip, op, opcode.SetGlobal)
			vm.stack[slot] = vm.peek(0)
		case opcode.GetBuiltin, opcode.GetBuiltin2, opcode.GetBuiltin4:
			idx := vm.readFamilyIndex(code, &ip, op, opcode.GetBuiltin)
			vm.push(vm.builtins[idx])

		case opcode.JumpIfFalse:
			dist := readU32(code, &ip)
			if !value.Truthy(vm.peek(0)) {
				ip += dist
			}
		case opcode.Jump:
			dist := readU32(code, &ip)
			ip += dist
		case opcode.Loop:
			dist := readU32(code, &ip)
			ip -= dist

		case opcode.Call:
			argc := readU8(code, &ip)
			result, err := vm.execCall(fn, opStart, argc)
			if err != nil {
				return nil, err
			}
			vm.push(result)
		case opcode.Return:
			return vm.pop(), nil

		case opcode.GetField, opcode.GetField2, opcode.GetField4:
			idx := vm.readFamilyIndex(code, &ip, op, opcode.GetField)
			name := fn.Chunk.Strings[idx].(*value.String).Value
			recv := vm.pop()
			inst, ok := recv.(*value.Instance)
			if !ok {
				return nil, vm.runtimeErr(fn, opStart, "type %s has no fields", recv.TypeName())
			}
			v, err := inst.GetField(name)
			if err != nil {
				return nil, vm.runtimeErr(fn, opStart, "%s", err)
			}
			vm.push(v)
		case opcode.SetField, opcode.SetField2, opcode.SetField4:
			idx := vm.readFamilyIndex(code, &ip, op, opcode.SetField)
			name := fn.Chunk.Strings[idx].(*value.String).Value
			v := vm.pop()
			recv := vm.pop()
			inst, ok := recv.(*value.Instance)
			if !ok {
				return nil, vm.runtimeErr(fn, opStart, "type %s has no fields", recv.TypeName())
			}
			if err := inst.SetField(name, v); err != nil {
				return nil, vm.runtimeErr(fn, opStart, "%s", err)
			}
			vm.push(v)

		case opcode.CallMethod, opcode.CallMethod2, opcode.CallMethod4:
			argc := readU8(code, &ip)
			idx := vm.readFamilyIndex(code, &ip, op, opcode.CallMethod)
			name := fn.Chunk.Strings[idx].(*value.String).Value
			result, err := vm.execCallMethod(fn, opStart, argc, name)
			if err != nil {
				return nil, err
			}
			vm.push(result)
		case opcode.CallStaticMethod, opcode.CallStaticMethod2, opcode.CallStaticMethod4:
			argc := readU8(code, &ip)
			idx := vm.readFamilyIndex(code, &ip, op, opcode.CallStaticMethod)
			result, err := vm.execRegistryCall(fn, opStart, argc, idx)
			if err != nil {
				return nil, err
			}
			vm.push(result)
		case opcode.CallConstructor, opcode.CallConstructor2, opcode.CallConstructor4:
			argc := readU8(code, &ip)
			idx := vm.readFamilyIndex(code, &ip, op, opcode.CallConstructor)
			result, err := vm.execRegistryCall(fn, opStart, argc, idx)
			if err != nil {
				return nil, err
			}
			vm.push(result)

		case opcode.CreateMap:
			// codegen.mapLit pushes every key, then every value (not
			// interleaved): [k1..kN, v1..vN].
			n := readU8(code, &ip)
			base := len(vm.stack) - 2*n
			keys := vm.stack[base : base+n]
			values := vm.stack[base+n : base+2*n]
			m := value.NewMap(n)
			for i := 0; i < n; i++ {
				if err := m.Set(keys[i], values[i]); err != nil {
					return nil, vm.runtimeErr(fn, opStart, "%s", err)
				}
			}
			vm.stack = vm.stack[:base]
			vm.push(m)
		case opcode.CreateArray:
			n := int(readU16(code, &ip))
			base := len(vm.stack) - n
			elems := make([]value.Value, n)
			copy(elems, vm.stack[base:])
			vm.stack = vm.stack[:base]
			vm.push(value.NewArray(elems))
		case opcode.CreateSet:
			n := readU8(code, &ip)
			base := len(vm.stack) - n
			s := value.NewSet()
			for _, e := range vm.stack[base:] {
				if err := s.Add(e); err != nil {
					return nil, vm.runtimeErr(fn, opStart, "%s", err)
				}
			}
			vm.stack = vm.stack[:base]
			vm.push(s)
		case opcode.CreateRange:
			inclusive := readU8(code, &ip) != 0
			end := vm.pop()
			start := vm.pop()
			sv, ok1 := start.(value.Number)
			ev, ok2 := end.(value.Number)
			if !ok1 || !ok2 {
				return nil, vm.runtimeErr(fn, opStart, "range bounds must be Numbers, got %s and %s", start.TypeName(), end.TypeName())
			}
			vm.push(value.NewArray(buildRange(int64(sv), int64(ev), inclusive)))

		case opcode.GetIndex:
			i := vm.pop()
			a := vm.pop()
			v, err := vm.getIndex(a, i)
			if err != nil {
				return nil, vm.runtimeErr(fn, opStart, "%s", err)
			}
			vm.push(v)
		case opcode.SetIndex:
			v := vm.pop()
			i := vm.pop()
			a := vm.pop()
			if err := vm.setIndex(a, i, v); err != nil {
				return nil, vm.runtimeErr(fn, opStart, "%s", err)
			}
			vm.push(v)

		case opcode.GetIterator:
			coll := vm.pop()
			items, err := vm.iterableItems(coll)
			if err != nil {
				return nil, vm.runtimeErr(fn, opStart, "%s", err)
			}
			vm.iterStack = append(vm.iterStack, &iteratorState{items: items})
		case opcode.IteratorDone:
			top := vm.iterStack[len(vm.iterStack)-1]
			vm.push(value.Boolean(top.pos >= len(top.items)))
		case opcode.IteratorNext:
			top := vm.iterStack[len(vm.iterStack)-1]
			v := top.items[top.pos]
			top.pos++
			vm.push(v)
		case opcode.PopIterator:
			vm.iterStack = vm.iterStack[:len(vm.iterStack)-1]

		case opcode.ToString:
			x := vm.pop()
			vm.push(vm.interner.Intern(x.String()))

		default:
			return nil, vm.runtimeErr(fn, opStart, "illegal opcode %s", op)
		}
	}
}

func (vm *VM) execCall(fn *chunk.Function, opStart, argc int) (value.Value, error) {
	calleeIdx := len(vm.stack) - argc - 1
	callee := vm.stack[calleeIdx]
	switch c := callee.(type) {
	case *chunk.Function:
		if c.Arity != argc {
			return nil, vm.runtimeErr(fn, opStart, "%s expects %d arguments, got %d", c.Name, c.Arity, argc)
		}
		result, err := vm.call(c, calleeIdx+1)
		if err != nil {
			return nil, err
		}
		vm.stack = vm.stack[:calleeIdx]
		return result, nil
	case *value.Struct:
		if len(c.Fields) != argc {
			return nil, vm.runtimeErr(fn, opStart, "%s expects %d arguments, got %d", c.Name, len(c.Fields), argc)
		}
		values := make([]value.Value, argc)
		copy(values, vm.stack[calleeIdx+1:])
		vm.stack = vm.stack[:calleeIdx]
		return value.NewInstance(c, values), nil
	case *value.NativeFunction:
		args := append([]value.Value{}, vm.stack[calleeIdx+1:]...)
		if c.Arity != value.VariadicArity && c.Arity != argc {
			return nil, vm.runtimeErr(fn, opStart, "%s expects %d arguments, got %d", c.Name, c.Arity, argc)
		}
		result, err := c.Fn(args)
		vm.stack = vm.stack[:calleeIdx]
		if err != nil {
			return nil, vm.runtimeErr(fn, opStart, "%s", err)
		}
		return result, nil
	default:
		return nil, vm.runtimeErr(fn, opStart, "type %s is not callable", callee.TypeName())
	}
}

// execCallMethod dispatches a runtime-typed method call. A receiver that is
// itself a namespace-marker *value.NativeFunction (Math, File as pushed by
// GetBuiltin) is looked up by its Name rather than its Go TypeName
// ("NativeFunction"), which is how `Math.abs(x)` reaches the registry's
// "Math" entries despite Math having no instance of its own.
func (vm *VM) execCallMethod(fn *chunk.Function, opStart, argc int, name string) (value.Value, error) {
	recvIdx := len(vm.stack) - argc - 1
	recv := vm.stack[recvIdx]

	// A user-defined instance whose named field holds a callable value is
	// invoked as that value directly, ahead of any native-registry lookup
	// (first-class methods: a field storing a function behaves like a
	// method on the instance it came from).
	if inst, ok := recv.(*value.Instance); ok {
		if idx := inst.Schema.FieldIndex(name); idx >= 0 {
			vm.stack[recvIdx] = inst.Values[idx]
			return vm.execCall(fn, opStart, argc)
		}
	}

	typeName := recv.TypeName()
	if nf, ok := recv.(*value.NativeFunction); ok {
		typeName = nf.Name
	}
	idx, found := vm.reg.Lookup(typeName, name)
	if !found {
		return nil, vm.runtimeErr(fn, opStart, "undefined method %q on %s", name, typeName)
	}
	entry, _ := vm.reg.At(idx)
	if _, isNamespace := recv.(*value.NativeFunction); isNamespace && entry.Kind != nativeregistry.StaticMethod {
		// Math/File pushed by GetBuiltin have no instance of their own;
		// only their StaticMethod/Constructor entries are reachable this
		// way. An InstanceMethod entry sharing the namespace's name
		// (File.read) needs a real *value.File receiver, not the marker.
		return nil, vm.runtimeErr(fn, opStart, "%s.%s is not a static method", typeName, name)
	}
	var args []value.Value
	if entry.Kind == nativeregistry.StaticMethod {
		args = append([]value.Value{}, vm.stack[recvIdx+1:]...)
	} else {
		args = append([]value.Value{}, vm.stack[recvIdx:]...)
	}
	if entry.Arity != value.VariadicArity && entry.Arity != len(args) {
		return nil, vm.runtimeErr(fn, opStart, "%s.%s expects %d arguments, got %d", typeName, name, entry.Arity, len(args))
	}
	result, err := entry.Fn(args)
	vm.stack = vm.stack[:recvIdx]
	if err != nil {
		return nil, vm.runtimeErr(fn, opStart, "%s", err)
	}
	return result, nil
}

// execRegistryCall backs CallStaticMethod and CallConstructor, both of
// which carry a direct registry index and consume no receiver value.
func (vm *VM) execRegistryCall(fn *chunk.Function, opStart, argc, idx int) (value.Value, error) {
	entry, ok := vm.reg.At(idx)
	if !ok {
		return nil, vm.runtimeErr(fn, opStart, "internal error: invalid native registry index %d", idx)
	}
	base := len(vm.stack) - argc
	args := append([]value.Value{}, vm.stack[base:]...)
	if entry.Arity != value.VariadicArity && entry.Arity != argc {
		return nil, vm.runtimeErr(fn, opStart, "%s.%s expects %d arguments, got %d", entry.TypeName, entry.MethodName, entry.Arity, argc)
	}
	result, err := entry.Fn(args)
	vm.stack = vm.stack[:base]
	if err != nil {
		return nil, vm.runtimeErr(fn, opStart, "%s", err)
	}
	return result, nil
}

func (vm *VM) add(a, b value.Value) (value.Value, error) {
	switch av := a.(type) {
	case value.Number:
		bv, ok := b.(value.Number)
		if !ok {
			return nil, fmt.Errorf("cannot add %s and %s", a.TypeName(), b.TypeName())
		}
		return av + bv, nil
	case *value.String:
		bv, ok := b.(*value.String)
		if !ok {
			return nil, fmt.Errorf("cannot add %s and %s", a.TypeName(), b.TypeName())
		}
		return vm.interner.Concat(av, bv), nil
	default:
		return nil, fmt.Errorf("cannot add %s and %s", a.TypeName(), b.TypeName())
	}
}

func (vm *VM) arith(opStart int, fn *chunk.Function, verb string, f func(a, b float64) float64) (value.Value, error) {
	b, a := vm.pop(), vm.pop()
	av, aok := a.(value.Number)
	bv, bok := b.(value.Number)
	if !aok || !bok {
		return nil, vm.runtimeErr(fn, opStart, "cannot %s %s and %s", verb, a.TypeName(), b.TypeName())
	}
	return value.Number(f(float64(av), float64(bv))), nil
}

func (vm *VM) bitwise(opStart int, fn *chunk.Function, f func(a, b int64) int64) (value.Value, error) {
	b, a := vm.pop(), vm.pop()
	av, aok := asInt(a)
	bv, bok := asInt(b)
	if !aok || !bok {
		return nil, vm.runtimeErr(fn, opStart, "cannot apply a bitwise operator to %s and %s", a.TypeName(), b.TypeName())
	}
	return value.Number(f(av, bv)), nil
}

func (vm *VM) compare(fn *chunk.Function, opStart int) (int, error) {
	b, a := vm.pop(), vm.pop()
	switch av := a.(type) {
	case value.Number:
		bv, ok := b.(value.Number)
		if !ok {
			return 0, vm.runtimeErr(fn, opStart, "cannot compare %s and %s", a.TypeName(), b.TypeName())
		}
		return av.Cmp(bv), nil
	case *value.String:
		bv, ok := b.(*value.String)
		if !ok {
			return 0, vm.runtimeErr(fn, opStart, "cannot compare %s and %s", a.TypeName(), b.TypeName())
		}
		return av.Cmp(bv), nil
	default:
		return 0, vm.runtimeErr(fn, opStart, "type %s does not support ordering", a.TypeName())
	}
}

func (vm *VM) getIndex(a, i value.Value) (value.Value, error) {
	switch coll := a.(type) {
	case *value.Array:
		idx, ok := asInt(i)
		if !ok {
			return nil, fmt.Errorf("array index must be a Number, got %s", i.TypeName())
		}
		return coll.Get(int(idx))
	case *value.Map:
		v, found, err := coll.Get(i)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("key not found: %s", i.String())
		}
		return v, nil
	default:
		return nil, fmt.Errorf("type %s is not indexable", a.TypeName())
	}
}

func (vm *VM) setIndex(a, i, v value.Value) error {
	switch coll := a.(type) {
	case *value.Array:
		idx, ok := asInt(i)
		if !ok {
			return fmt.Errorf("array index must be a Number, got %s", i.TypeName())
		}
		return coll.Set(int(idx), v)
	case *value.Map:
		return coll.Set(i, v)
	default:
		return fmt.Errorf("type %s does not support index assignment", a.TypeName())
	}
}

func (vm *VM) iterableItems(coll value.Value) ([]value.Value, error) {
	switch c := coll.(type) {
	case *value.Array:
		items := make([]value.Value, len(c.Elems))
		copy(items, c.Elems)
		return items, nil
	case *value.Map:
		return c.Keys(), nil
	case *value.Set:
		return c.Elements(), nil
	default:
		return nil, fmt.Errorf("type %s is not iterable", coll.TypeName())
	}
}

func buildRange(start, end int64, inclusive bool) []value.Value {
	if inclusive {
		end++
	}
	if end <= start {
		return nil
	}
	out := make([]value.Value, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, value.Number(i))
	}
	return out
}

func asInt(v value.Value) (int64, bool) {
	n, ok := v.(value.Number)
	if !ok {
		return 0, false
	}
	return int64(n), true
}

func (vm *VM) runtimeErr(fn *chunk.Function, ip int, format string, args ...interface{}) *RuntimeError {
	line, col, _ := fn.Chunk.SourceLocationAt(ip)
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Line: line, Column: col}
}

// ---- operand stack ----

func (vm *VM) push(v value.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() value.Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(offset int) value.Value { return vm.stack[len(vm.stack)-1-offset] }

// ---- immediate decoding ----

func readU8(code []byte, ip *int) int {
	v := int(code[*ip])
	*ip++
	return v
}

func readU16(code []byte, ip *int) int {
	v := int(code[*ip])<<8 | int(code[*ip+1])
	*ip += 2
	return v
}

func readU32(code []byte, ip *int) int {
	v := int(code[*ip])<<24 | int(code[*ip+1])<<16 | int(code[*ip+2])<<8 | int(code[*ip+3])
	*ip += 4
	return v
}

// readFamilyIndex decodes the index immediate following a width-variant
// opcode. Each family's three members (base, base+1, base+2) are laid out
// consecutively in lang/opcode's enum in 1/2/4-byte-width order, so the
// width is just op's offset from base.
func (vm *VM) readFamilyIndex(code []byte, ip *int, op, base opcode.Opcode) int {
	switch op - base {
	case 0:
		return readU8(code, ip)
	case 1:
		return readU16(code, ip)
	default:
		return readU32(code, ip)
	}
}
