package resolver_test

import (
	"testing"

	"github.com/neon-lang/neon/lang/parser"
	"github.com/neon-lang/neon/lang/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noBuiltins(string) bool { return false }

func resolveSrc(t *testing.T, src string, isBuiltin resolver.IsBuiltin) (*resolver.Result, []string) {
	t.Helper()
	chunk, perrs := parser.Parse("test.nx", src)
	require.Empty(t, perrs)
	res, errs := resolver.Resolve(chunk, isBuiltin)
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return res, msgs
}

func TestResolveGlobalForwardReference(t *testing.T) {
	_, errs := resolveSrc(t, `
fn main() {
	print(helper())
}
fn helper() {
	return 1
}`, noBuiltins)
	assert.Empty(t, errs)
}

func TestResolveUndefinedName(t *testing.T) {
	_, errs := resolveSrc(t, `print(nope)`, noBuiltins)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `undefined name "nope"`)
}

func TestResolveUndefinedNameSuggestion(t *testing.T) {
	_, errs := resolveSrc(t, `
var count = 0
print(counnt)`, noBuiltins)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `did you mean "count"?`)
}

func TestResolveDuplicateTopLevel(t *testing.T) {
	_, errs := resolveSrc(t, `
var x = 1
var x = 2`, noBuiltins)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "duplicate")
}

func TestResolveImmutableAssignment(t *testing.T) {
	_, errs := resolveSrc(t, `
val x = 1
x = 2`, noBuiltins)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "immutable")
}

func TestResolveMutableAssignmentOK(t *testing.T) {
	_, errs := resolveSrc(t, `
var x = 1
x = 2`, noBuiltins)
	assert.Empty(t, errs)
}

func TestResolveLocalShadowsGlobal(t *testing.T) {
	_, errs := resolveSrc(t, `
var x = 1
fn f() {
	var x = 2
	return x
}`, noBuiltins)
	assert.Empty(t, errs)
}

func TestResolveForInBindsLoopVar(t *testing.T) {
	_, errs := resolveSrc(t, `
for v in [1, 2, 3] {
	print(v)
}`, noBuiltins)
	assert.Empty(t, errs)
}

func TestResolveBuiltinFallback(t *testing.T) {
	isBuiltin := func(name string) bool { return name == "len" }
	_, errs := resolveSrc(t, `print(len([1,2]))`, isBuiltin)
	assert.Empty(t, errs)
}

func TestResolveStructDecl(t *testing.T) {
	res, errs := resolveSrc(t, `
struct Point { x y }
var p = Point`, noBuiltins)
	assert.Empty(t, errs)
	assert.Contains(t, res.Globals, "Point")
	assert.Contains(t, res.Globals, "p")
}
