package vm_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neon-lang/neon/lang/binary"
	"github.com/neon-lang/neon/lang/vm"
)

func run(t *testing.T, source string) string {
	t.Helper()
	var out bytes.Buffer
	v := vm.New(vm.DefaultConfig(), &out)
	_, err := v.Interpret("<test>", source)
	require.NoError(t, err, "interpret failed: %s", vm.GetFormattedErrors("<test>", source, err))
	return out.String()
}

func TestArithmeticAndPrint(t *testing.T) {
	out := run(t, `print(1 + 2 * 3)`)
	assert.Equal(t, "7\n", out)
}

func TestRecursiveForwardReferenceFunctions(t *testing.T) {
	out := run(t, `
fn foo() { return bar() }
fn bar() { return 99 }
print(foo())
`)
	assert.Equal(t, "99\n", out)
}

func TestWhileLoopWithBreakAndContinue(t *testing.T) {
	out := run(t, `
var i = 0
var s = 0
while i < 10 {
	i = i + 1
	if i == 5 { continue }
	if i == 8 { break }
	s = s + i
}
print(s)
`)
	assert.Equal(t, "23\n", out)
}

func TestForInOverMapYieldsEachKeyOnce(t *testing.T) {
	out := run(t, `
val m = {"a": 1, "b": 2}
for k in m { print(k) }
`)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.ElementsMatch(t, []string{"a", "b"}, lines)
}

func TestStructConstructionFieldAccess(t *testing.T) {
	out := run(t, `
struct P { x y }
val p = P(3, 4)
print(p.x + p.y)
`)
	assert.Equal(t, "7\n", out)
}

// A struct field holding a function value is itself callable through a
// parenthesized field access, since that form evaluates the field first
// and then calls whatever value it holds.
func TestFunctionValueStoredAsStructFieldIsCallableWhenParenthesized(t *testing.T) {
	out := run(t, `
struct Box { step }
fn double(n) { return n * 2 }
val b = Box(double)
print((b.step)(21))
`)
	assert.Equal(t, "42\n", out)
}

// `b.step(21)` parses as a dynamically-dispatched CallMethod, not a
// FieldGet-then-Call — but execCallMethod checks for a function-typed
// field named "step" on the instance before ever consulting the native
// registry, so the unparenthesized form reaches the same stored function.
func TestFunctionValueStoredAsStructFieldIsCallableUnparenthesized(t *testing.T) {
	out := run(t, `
struct Box { step }
fn double(n) { return n * 2 }
val b = Box(double)
print(b.step(21))
`)
	assert.Equal(t, "42\n", out)
}

func TestBinaryRoundTrip(t *testing.T) {
	source := `print(1 + 2 * 3)`
	v := vm.New(vm.DefaultConfig(), nil)
	chk, err := v.Compile("<test>", source)
	require.NoError(t, err)

	data, err := binary.Marshal(chk)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x4E, 0x45, 0x4F, 0x4E}, data[:4])
	assert.Equal(t, byte(1), data[4])
	assert.Equal(t, byte(0), data[5])

	dir := t.TempDir()
	path := filepath.Join(dir, "out.nbc")
	require.NoError(t, binary.WriteFile(path, chk))

	loaded, err := binary.ReadFile(path)
	require.NoError(t, err)

	var out1, out2 bytes.Buffer
	v1 := vm.New(vm.DefaultConfig(), &out1)
	_, err = v1.RunChunk(chk)
	require.NoError(t, err)

	v2 := vm.New(vm.DefaultConfig(), &out2)
	_, err = v2.RunChunk(loaded)
	require.NoError(t, err)

	assert.Equal(t, out1.String(), out2.String())
	assert.Equal(t, "7\n", out1.String())

	_ = os.Remove(path)
}

func TestCompileErrorReportsDiagnostics(t *testing.T) {
	v := vm.New(vm.DefaultConfig(), nil)
	_, err := v.Interpret("<test>", `print(`)
	require.Error(t, err)
	_, ok := err.(*vm.CompileError)
	assert.True(t, ok)
	assert.Equal(t, 65, vm.ExitCode(err))
}

func TestRuntimeErrorOnTypeMismatch(t *testing.T) {
	v := vm.New(vm.DefaultConfig(), nil)
	_, err := v.Interpret("<test>", `print(1 + "x")`)
	require.Error(t, err)
	_, ok := err.(*vm.RuntimeError)
	assert.True(t, ok)
	assert.Equal(t, 70, vm.ExitCode(err))
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	v := vm.New(vm.DefaultConfig(), nil)
	_, err := v.Interpret("<test>", `print(1 / 0)`)
	require.Error(t, err)
	_, ok := err.(*vm.RuntimeError)
	assert.True(t, ok)
}

func TestArgsBuiltinForwardsCLIArgs(t *testing.T) {
	var out bytes.Buffer
	v := vm.New(vm.DefaultConfig(), &out).WithArgs([]string{"hello", "world"})
	_, err := v.Interpret("<test>", `print(args[0])`)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out.String())
}

func TestStepLimitExceeded(t *testing.T) {
	v := vm.New(vm.Config{MaxSteps: 10, MaxCallDepth: 1024}, nil)
	_, err := v.Interpret("<test>", `
var i = 0
while i < 1000000 { i = i + 1 }
`)
	require.Error(t, err)
	_, ok := err.(*vm.RuntimeError)
	assert.True(t, ok)
}

func TestCallDepthExceeded(t *testing.T) {
	v := vm.New(vm.Config{MaxSteps: 50_000_000, MaxCallDepth: 5}, nil)
	_, err := v.Interpret("<test>", `
fn recurse(n) { return recurse(n + 1) }
print(recurse(0))
`)
	require.Error(t, err)
	_, ok := err.(*vm.RuntimeError)
	assert.True(t, ok)
}

func TestArrayNegativeIndexing(t *testing.T) {
	out := run(t, `
val a = [1, 2, 3]
print(a[-1])
`)
	assert.Equal(t, "3\n", out)
}

func TestSetDeduplicatesAndIteratesSorted(t *testing.T) {
	out := run(t, `
val s = set{3, 1, 2, 1}
for v in s { print(v) }
`)
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestRangeLiteralExclusiveAndInclusive(t *testing.T) {
	out := run(t, `
for v in [1..4] { print(v) }
print("---")
for v in [1..=4] { print(v) }
`)
	assert.Equal(t, "1\n2\n3\n---\n1\n2\n3\n4\n", out)
}
