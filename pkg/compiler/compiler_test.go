package compiler

import (
	"testing"

	"github.com/blendsdk/blend65-sub015/pkg/il"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCompile_PokeProgram is spec.md §8 end-to-end scenario 1: zero errors,
// one function with one basic block (CONST, CONST, POKE, RETURN_VOID), main
// as the entry point.
func TestCompile_PokeProgram(t *testing.T) {
	result := Compile(map[string]string{
		"main.b65": `module t; function main(): void { poke($D020, 0); }`,
	}, DefaultOptions())

	require.True(t, result.Success)

	fr := result.Files["main.b65"]
	require.NotNil(t, fr)
	assert.True(t, fr.Success)
	diags := fr.Diagnostics.All()
	require.Len(t, diags, 1, "only the implicit-export warning for main is expected")
	assert.Equal(t, "IMPLICIT_MAIN_EXPORT", diags[0].Code.String())
	assert.Equal(t, "main", fr.IL.EntryPoint)

	fn := fr.IL.Function("main")
	require.NotNil(t, fn)
	require.Len(t, fn.Blocks, 1)

	ops := make([]il.Opcode, len(fn.Blocks[0].Instructions))
	for i, instr := range fn.Blocks[0].Instructions {
		ops[i] = instr.Op
	}

	assert.Equal(t, []il.Opcode{il.OpConst, il.OpConst, il.OpPoke, il.OpReturnVoid}, ops)
	assert.True(t, fr.Validator.Valid)
}

// TestCompile_SimpleReturn is spec.md §8 end-to-end scenario 2.
func TestCompile_SimpleReturn(t *testing.T) {
	result := Compile(map[string]string{
		"f.b65": `module t; function f(): byte { return 42; }`,
	}, DefaultOptions())

	require.True(t, result.Success)

	fr := result.Files["f.b65"]
	fn := fr.IL.Function("f")
	require.NotNil(t, fn)
	require.Len(t, fn.Blocks, 1)

	last := fn.Blocks[0].Instructions[len(fn.Blocks[0].Instructions)-1]
	assert.Equal(t, il.OpReturn, last.Op)
}

// TestCompile_UnreachableAfterReturn is spec.md §8 end-to-end scenario 3:
// exactly one UNREACHABLE_CODE diagnostic, compile still succeeds overall
// since it is a warning.
func TestCompile_UnreachableAfterReturn(t *testing.T) {
	result := Compile(map[string]string{
		"f.b65": `module t; function f(): void { return; let x: byte = 1; }`,
	}, DefaultOptions())

	fr := result.Files["f.b65"]
	require.NotNil(t, fr)

	var unreachable int

	for _, d := range fr.Diagnostics.All() {
		if d.Code.String() == "UNREACHABLE_CODE" {
			unreachable++
		}
	}

	assert.Equal(t, 1, unreachable)
	assert.True(t, result.Success, "a warning must not fail compilation")
}

// TestCompile_IfElseBothReturnMakesTailUnreachable is spec.md §8 end-to-end
// scenario 5.
func TestCompile_IfElseBothReturnMakesTailUnreachable(t *testing.T) {
	result := Compile(map[string]string{
		"g.b65": `module t; function g(x: byte): byte { if (x > 0) { return 1; } else { return 0; } let dead: byte = 0; return dead; }`,
	}, DefaultOptions())

	fr := result.Files["g.b65"]
	require.NotNil(t, fr)

	var unreachable int

	for _, d := range fr.Diagnostics.All() {
		if d.Code.String() == "UNREACHABLE_CODE" {
			unreachable++
		}
	}

	assert.Equal(t, 1, unreachable)
}

// TestCompile_RecursiveFibIsRecursiveAndValid is spec.md §8 end-to-end
// scenario 6.
func TestCompile_RecursiveFibIsRecursiveAndValid(t *testing.T) {
	result := Compile(map[string]string{
		"fib.b65": `module t; function fib(n: byte): byte { if (n < 2) { return n; } return fib(n-1) + fib(n-2); }`,
	}, DefaultOptions())

	fr := result.Files["fib.b65"]
	require.NotNil(t, fr)
	assert.True(t, fr.Success)
	assert.True(t, fr.Validator.Valid, "errors: %+v", fr.Validator.Errors)

	seen := make(map[il.RegisterID]bool)
	fn := fr.IL.Function("fib")
	require.NotNil(t, fn)

	for _, b := range fn.Blocks {
		for _, instr := range b.Instructions {
			if instr.HasDest {
				require.False(t, seen[instr.Dest], "register %d defined more than once", instr.Dest)
				seen[instr.Dest] = true
			}
		}
	}
}

// TestCompile_RunAdvancedAnalysisFalseSkipsUnreachableWarning confirms
// spec.md §6's Options.RunAdvancedAnalysis gate actually disables the
// control-flow pass that produces UNREACHABLE_CODE.
func TestCompile_RunAdvancedAnalysisFalseSkipsUnreachableWarning(t *testing.T) {
	opts := DefaultOptions()
	opts.RunAdvancedAnalysis = false

	result := Compile(map[string]string{
		"f.b65": `module t; function f(): void { return; let x: byte = 1; }`,
	}, opts)

	fr := result.Files["f.b65"]
	require.NotNil(t, fr)

	for _, d := range fr.Diagnostics.All() {
		assert.NotEqual(t, "UNREACHABLE_CODE", d.Code.String())
	}
}

// TestCompile_MultipleFilesCompileIndependently exercises Compile's
// per-file Result shape with more than one source file.
func TestCompile_MultipleFilesCompileIndependently(t *testing.T) {
	result := Compile(map[string]string{
		"a.b65": `module a; function main(): void { }`,
		"b.b65": `module b; function main(): void { }`,
	}, DefaultOptions())

	require.True(t, result.Success)
	require.Len(t, result.Files, 2)
	assert.NotNil(t, result.Files["a.b65"].IL)
	assert.NotNil(t, result.Files["b.b65"].IL)
}

// TestCompile_StrictSucceedsWithoutValidatorWarnings confirms Options.Strict
// leaves a compile successful when the validator produced no warnings.
func TestCompile_StrictSucceedsWithoutValidatorWarnings(t *testing.T) {
	opts := DefaultOptions()
	opts.Strict = true

	result := Compile(map[string]string{
		"f.b65": `module t; function f(): void { }`,
	}, opts)

	fr := result.Files["f.b65"]
	require.NotNil(t, fr)
	assert.Empty(t, fr.Validator.Warnings, "expected no warnings for this trivial program")
	assert.True(t, fr.Success)
}
