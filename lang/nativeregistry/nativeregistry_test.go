package nativeregistry

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neon-lang/neon/lang/value"
)

func TestRegistryLookupAndAt(t *testing.T) {
	r := New()

	idx, ok := r.Lookup("Math", "abs")
	require.True(t, ok)
	entry, ok := r.At(idx)
	require.True(t, ok)
	assert.Equal(t, StaticMethod, entry.Kind)
	assert.Equal(t, 1, entry.Arity)

	_, ok = r.Lookup("Math", "nope")
	assert.False(t, ok)

	_, ok = r.At(r.Len())
	assert.False(t, ok, "index at Len() is out of bounds")
	_, ok = r.At(-1)
	assert.False(t, ok)
}

func TestRegistryNoDuplicateKeys(t *testing.T) {
	r := New()
	seen := make(map[string]bool)
	for i := 0; i < r.Len(); i++ {
		e, ok := r.At(i)
		require.True(t, ok)
		key := e.TypeName + "." + e.MethodName
		require.False(t, seen[key], "duplicate registry key %s", key)
		seen[key] = true
	}
}

func TestMathAbs(t *testing.T) {
	r := New()
	idx, ok := r.Lookup("Math", "abs")
	require.True(t, ok)
	entry, _ := r.At(idx)
	result, err := entry.Fn([]value.Value{value.Number(-3.5)})
	require.NoError(t, err)
	assert.Equal(t, value.Number(3.5), result)
}

func TestMathAbsRejectsNonNumber(t *testing.T) {
	r := New()
	idx, _ := r.Lookup("Math", "abs")
	entry, _ := r.At(idx)
	_, err := entry.Fn([]value.Value{&value.String{Value: "x"}})
	assert.Error(t, err)
}

func TestFileConstructorAndInstanceMethods(t *testing.T) {
	r := New()

	ctorIdx, ok := r.Lookup("File", "File")
	require.True(t, ok)
	ctor, _ := r.At(ctorIdx)
	assert.Equal(t, Constructor, ctor.Kind)

	f, err := ctor.Fn([]value.Value{&value.String{Value: "/tmp/does-not-exist-neon-test"}})
	require.NoError(t, err)
	file, ok := f.(*value.File)
	require.True(t, ok)
	assert.Equal(t, "/tmp/does-not-exist-neon-test", file.Path)

	existsIdx, ok := r.Lookup("File", "exists")
	require.True(t, ok)
	exists, _ := r.At(existsIdx)
	result, err := exists.Fn([]value.Value{file})
	require.NoError(t, err)
	assert.Equal(t, value.Boolean(false), result)
}

func TestStringMethods(t *testing.T) {
	r := New()
	s := &value.String{Value: "Hello"}

	lenIdx, _ := r.Lookup("String", "len")
	lenEntry, _ := r.At(lenIdx)
	n, err := lenEntry.Fn([]value.Value{s})
	require.NoError(t, err)
	assert.Equal(t, value.Number(5), n)

	upperIdx, _ := r.Lookup("String", "upper")
	upperEntry, _ := r.At(upperIdx)
	up, err := upperEntry.Fn([]value.Value{s})
	require.NoError(t, err)
	assert.Equal(t, "HELLO", up.(*value.String).Value)

	containsIdx, _ := r.Lookup("String", "contains")
	containsEntry, _ := r.At(containsIdx)
	found, err := containsEntry.Fn([]value.Value{s, &value.String{Value: "ell"}})
	require.NoError(t, err)
	assert.Equal(t, value.Boolean(true), found)
}

func TestArrayPushPop(t *testing.T) {
	r := New()
	arr := value.NewArray([]value.Value{value.Number(1), value.Number(2)})

	pushIdx, _ := r.Lookup("Array", "push")
	pushEntry, _ := r.At(pushIdx)
	_, err := pushEntry.Fn([]value.Value{arr, value.Number(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, arr.Len())

	popIdx, _ := r.Lookup("Array", "pop")
	popEntry, _ := r.At(popIdx)
	last, err := popEntry.Fn([]value.Value{arr})
	require.NoError(t, err)
	assert.Equal(t, value.Number(3), last)
	assert.Equal(t, 2, arr.Len())
}

func TestArrayPopEmptyErrors(t *testing.T) {
	r := New()
	arr := value.NewArray(nil)
	popIdx, _ := r.Lookup("Array", "pop")
	popEntry, _ := r.At(popIdx)
	_, err := popEntry.Fn([]value.Value{arr})
	assert.Error(t, err)
}

func TestMapHasAndKeys(t *testing.T) {
	r := New()
	m := value.NewMap(0)
	require.NoError(t, m.Set(&value.String{Value: "a"}, value.Number(1)))

	hasIdx, _ := r.Lookup("Map", "has")
	hasEntry, _ := r.At(hasIdx)
	found, err := hasEntry.Fn([]value.Value{m, &value.String{Value: "a"}})
	require.NoError(t, err)
	assert.Equal(t, value.Boolean(true), found)

	keysIdx, _ := r.Lookup("Map", "keys")
	keysEntry, _ := r.At(keysIdx)
	keys, err := keysEntry.Fn([]value.Value{m})
	require.NoError(t, err)
	assert.Equal(t, 1, keys.(*value.Array).Len())
}

func TestSetAddHasLen(t *testing.T) {
	r := New()
	s := value.NewSet()

	addIdx, _ := r.Lookup("Set", "add")
	addEntry, _ := r.At(addIdx)
	_, err := addEntry.Fn([]value.Value{s, value.Number(1)})
	require.NoError(t, err)

	hasIdx, _ := r.Lookup("Set", "has")
	hasEntry, _ := r.At(hasIdx)
	found, err := hasEntry.Fn([]value.Value{s, value.Number(1)})
	require.NoError(t, err)
	assert.Equal(t, value.Boolean(true), found)

	lenIdx, _ := r.Lookup("Set", "len")
	lenEntry, _ := r.At(lenIdx)
	n, err := lenEntry.Fn([]value.Value{s})
	require.NoError(t, err)
	assert.Equal(t, value.Number(1), n)
}

func TestBuiltinTableOrderAndLookup(t *testing.T) {
	reg := New()
	var out bytes.Buffer
	bt, values := NewBuiltinTable(reg, []string{"a", "b"}, &out)

	assert.Equal(t, []string{"args", "Math", "File", "print"}, bt.Names())
	assert.True(t, bt.IsBuiltin("print"))
	assert.False(t, bt.IsBuiltin("nope"))

	idx, ok := bt.Index("args")
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	argsVal, ok := values["args"].(*value.Array)
	require.True(t, ok)
	assert.Equal(t, 2, argsVal.Len())
}

func TestBuiltinTablePrintWritesToStdout(t *testing.T) {
	reg := New()
	var out bytes.Buffer
	_, values := NewBuiltinTable(reg, nil, &out)

	print := values["print"].(*value.NativeFunction)
	_, err := print.Fn([]value.Value{&value.String{Value: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out.String())
}

func TestBuiltinTableFileIndirectCallForwardsToConstructor(t *testing.T) {
	reg := New()
	var out bytes.Buffer
	_, values := NewBuiltinTable(reg, nil, &out)

	fileBuiltin := values["File"].(*value.NativeFunction)
	assert.Equal(t, 1, fileBuiltin.Arity)
	result, err := fileBuiltin.Fn([]value.Value{&value.String{Value: "/tmp/x"}})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", result.(*value.File).Path)
}

func TestBuiltinTableMathIsVariadicNotCallable(t *testing.T) {
	reg := New()
	var out bytes.Buffer
	_, values := NewBuiltinTable(reg, nil, &out)

	mathBuiltin := values["Math"].(*value.NativeFunction)
	assert.Equal(t, value.VariadicArity, mathBuiltin.Arity)
	_, err := mathBuiltin.Fn(nil)
	assert.Error(t, err)
}
