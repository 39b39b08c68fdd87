package ilvalidate

import (
	"strings"
	"testing"

	"github.com/blendsdk/blend65-sub015/pkg/diag"
	"github.com/blendsdk/blend65-sub015/pkg/il"
	"github.com/blendsdk/blend65-sub015/pkg/ilgen"
	"github.com/blendsdk/blend65-sub015/pkg/lexer"
	"github.com/blendsdk/blend65-sub015/pkg/parser"
	"github.com/blendsdk/blend65-sub015/pkg/sema"
	"github.com/blendsdk/blend65-sub015/pkg/ssa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lowerModule runs the full front end through SSA construction, mirroring
// pkg/ssa's own test helper, so the validator is exercised against the same
// kind of module codegen would actually receive (spec.md §2's data flow).
func lowerModule(t *testing.T, src string) *il.Module {
	t.Helper()

	file := diag.NewFile("test.b65", src)
	prog, parseSink := parser.Parse(file, lexer.Options{})
	require.False(t, parseSink.HasErrors(), "unexpected parse diagnostics: %+v", parseSink.All())

	sem := sema.Analyze(prog)
	require.True(t, sem.Success(), "unexpected semantic diagnostics: %+v", sem.Sink.All())

	mod, lowerSink := ilgen.Lower(prog, sem)
	require.False(t, lowerSink.HasErrors(), "unexpected lowering diagnostics: %+v", lowerSink.All())

	ssa.Construct(mod)

	return mod
}

func TestValidate_PokeProgramIsValid(t *testing.T) {
	mod := lowerModule(t, `module t; function main(): void { poke($D020, 0); }`)

	result := Validate(mod, DefaultOptions())

	assert.True(t, result.Valid, "errors: %+v", result.Errors)
	assert.Empty(t, result.Errors)
}

func TestValidate_SimpleReturnIsValid(t *testing.T) {
	mod := lowerModule(t, `module t; function f(): byte { return 42; }`)

	result := Validate(mod, DefaultOptions())

	assert.True(t, result.Valid, "errors: %+v", result.Errors)
}

func TestValidate_RecursiveFunctionIsValid(t *testing.T) {
	mod := lowerModule(t, `module t; function fib(n: byte): byte { if (n < 2) { return n; } return fib(n-1) + fib(n-2); }`)

	result := Validate(mod, DefaultOptions())

	assert.True(t, result.Valid, "errors: %+v", result.Errors)
}

func TestValidate_MissingTerminatorIsError(t *testing.T) {
	mod := lowerModule(t, `module t; function f(): void { }`)

	fn := mod.Function("f")
	require.NotNil(t, fn)

	fn.Blocks[0].Instructions = fn.Blocks[0].Instructions[:0] // strip the RETURN_VOID ilgen emitted

	result := Validate(mod, DefaultOptions())

	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0].Message, "terminator")
}

func TestValidate_ComparisonResultMustBeBool(t *testing.T) {
	mod := lowerModule(t, `module t; function f(a: byte, b: byte): bool { return a < b; }`)

	fn := mod.Function("f")
	require.NotNil(t, fn)

	found := false

	for _, b := range fn.Blocks {
		for i, instr := range b.Instructions {
			if instr.Op == il.OpBinary && instr.BinOp == il.Lt {
				b.Instructions[i].Type = il.Byte // corrupt the result type
				found = true
			}
		}
	}

	require.True(t, found, "expected the lowered function to contain a comparison")

	result := Validate(mod, DefaultOptions())

	require.False(t, result.Valid)
	assertAnyContains(t, result.Errors, "expected bool")
}

func TestValidate_CallArityMismatchIsError(t *testing.T) {
	mod := lowerModule(t, `module t; function g(a: byte): byte { return a; } function f(): byte { return g(1); }`)

	fn := mod.Function("f")
	require.NotNil(t, fn)

	for _, b := range fn.Blocks {
		for i, instr := range b.Instructions {
			if instr.Op == il.OpCall {
				b.Instructions[i].Operands = nil // drop the argument
			}
		}
	}

	result := Validate(mod, DefaultOptions())

	require.False(t, result.Valid)
	assertAnyContains(t, result.Errors, "argument")
}

func TestValidate_EntryPointMustResolve(t *testing.T) {
	mod := lowerModule(t, `module t; function main(): void { }`)
	mod.EntryPoint = "doesNotExist"

	result := Validate(mod, DefaultOptions())

	require.False(t, result.Valid)
	assertAnyContains(t, result.Errors, "entry point")
}

func TestValidate_DuplicateRegisterDefIsErrorUnlessPreSSA(t *testing.T) {
	mod := lowerModule(t, `module t; function f(): byte { return 1; }`)

	fn := mod.Function("f")
	require.NotNil(t, fn)

	// Force a collision: make the first instruction of block 0 redefine the
	// return value's register.
	blk := fn.Blocks[0]
	require.NotEmpty(t, blk.Instructions)

	dupReg := blk.Instructions[0].Dest
	blk.Instructions = append([]il.Instruction{{Op: il.OpConst, Dest: dupReg, HasDest: true, Type: il.Byte, ConstValue: 7}}, blk.Instructions...)

	strict := Validate(mod, DefaultOptions())
	require.False(t, strict.Valid)
	assertAnyContains(t, strict.Errors, "defined by")

	relaxed := Validate(mod, Options{CheckSSA: true, PreSSA: true})
	assert.True(t, relaxed.Valid, "errors: %+v", relaxed.Errors)
	assertAnyContains(t, relaxed.Warnings, "defined by")
}

func TestValidate_UnreachableBlockIsWarningOnly(t *testing.T) {
	mod := lowerModule(t, `module t; function f(): void { return; }`)

	fn := mod.Function("f")
	require.NotNil(t, fn)

	dead := fn.NewBlock()
	dead.Instructions = []il.Instruction{{Op: il.OpReturnVoid}}

	result := Validate(mod, DefaultOptions())

	assert.True(t, result.Valid, "errors: %+v", result.Errors)
	assertAnyContains(t, result.Warnings, "unreachable")
}

func assertAnyContains(t *testing.T, findings []Finding, substr string) {
	t.Helper()

	for _, f := range findings {
		if strings.Contains(f.Message, substr) {
			return
		}
	}

	t.Fatalf("no finding contained %q: %+v", substr, findings)
}
