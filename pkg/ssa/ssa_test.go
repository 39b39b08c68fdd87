package ssa

import (
	"testing"

	"github.com/blendsdk/blend65-sub015/pkg/diag"
	"github.com/blendsdk/blend65-sub015/pkg/il"
	"github.com/blendsdk/blend65-sub015/pkg/ilgen"
	"github.com/blendsdk/blend65-sub015/pkg/lexer"
	"github.com/blendsdk/blend65-sub015/pkg/parser"
	"github.com/blendsdk/blend65-sub015/pkg/sema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lowerFunction(t *testing.T, src, fnName string) *il.Function {
	t.Helper()

	file := diag.NewFile("test.b65", src)
	prog, parseSink := parser.Parse(file, lexer.Options{})
	require.False(t, parseSink.HasErrors(), "unexpected parse diagnostics: %+v", parseSink.All())

	sem := sema.Analyze(prog)
	require.True(t, sem.Success(), "unexpected semantic diagnostics: %+v", sem.Sink.All())

	mod, sink := ilgen.Lower(prog, sem)
	require.False(t, sink.HasErrors(), "unexpected lowering diagnostics: %+v", sink.All())

	fn := mod.Function(fnName)
	require.NotNil(t, fn)

	return fn
}

// assertNoVarRef checks pkg/ssa's core contract: once construction has run,
// no OpVarRef placeholder survives anywhere in the function.
func assertNoVarRef(t *testing.T, fn *il.Function) {
	t.Helper()

	for _, b := range fn.Blocks {
		for _, instr := range b.Instructions {
			assert.NotEqual(t, il.OpVarRef, instr.Op, "block %d still has an OpVarRef after SSA construction", b.ID)
		}
	}
}

// assertSingleDef checks that every register with HasDest set is defined by
// exactly one instruction in the whole function, the defining property of
// SSA form.
func assertSingleDef(t *testing.T, fn *il.Function) {
	t.Helper()

	seen := make(map[il.RegisterID]bool)

	for _, b := range fn.Blocks {
		for _, instr := range b.Instructions {
			if !instr.HasDest {
				continue
			}

			assert.False(t, seen[instr.Dest], "register %d defined more than once", instr.Dest)
			seen[instr.Dest] = true
		}
	}
}

// assertPhisFirst checks that within any block, no non-phi instruction
// precedes a phi.
func assertPhisFirst(t *testing.T, fn *il.Function) {
	t.Helper()

	for _, b := range fn.Blocks {
		sawNonPhi := false

		for _, instr := range b.Instructions {
			if instr.Op == il.OpPhi {
				assert.False(t, sawNonPhi, "block %d has a phi after a non-phi instruction", b.ID)

				continue
			}

			sawNonPhi = true
		}
	}
}

func TestStraightLineFunctionHasNoVarRefAfterConstruction(t *testing.T) {
	fn := lowerFunction(t, `module t; function f(): byte { let x: byte = 1; let y: byte = 2; return x + y; }`, "f")

	ConstructFunction(fn)

	assertNoVarRef(t, fn)
	assertSingleDef(t, fn)
}

func TestIfMergeInsertsPhiForReassignedVariable(t *testing.T) {
	fn := lowerFunction(t, `module t;
function f(n: byte): byte {
	let x: byte = 0;
	if (n > 0) {
		x = 1;
	} else {
		x = 2;
	}
	return x;
}`, "f")

	ConstructFunction(fn)

	assertNoVarRef(t, fn)
	assertSingleDef(t, fn)
	assertPhisFirst(t, fn)

	var mergeBlock *il.BasicBlock

	for _, b := range fn.Blocks {
		for _, instr := range b.Instructions {
			if instr.Op == il.OpPhi {
				mergeBlock = b
			}
		}
	}

	require.NotNil(t, mergeBlock, "expected a phi at the if/else merge point")

	phi := mergeBlock.Instructions[0]
	assert.Equal(t, il.OpPhi, phi.Op)
	assert.Len(t, phi.PhiSources, len(mergeBlock.Preds))
	assert.NotEqual(t, phi.PhiSources[0], phi.PhiSources[1], "the two branches assign different constants, so their phi sources must be distinct registers")
}

func TestWhileLoopInsertsPhiAtHeaderForInductionVariable(t *testing.T) {
	fn := lowerFunction(t, `module t;
function f(): byte {
	let i: byte = 0;
	while (i < 10) {
		i = i + 1;
	}
	return i;
}`, "f")

	ConstructFunction(fn)

	assertNoVarRef(t, fn)
	assertSingleDef(t, fn)
	assertPhisFirst(t, fn)

	foundLoopPhi := false

	for _, b := range fn.Blocks {
		if len(b.Preds) < 2 {
			continue
		}

		for _, instr := range b.Instructions {
			if instr.Op == il.OpPhi {
				foundLoopPhi = true
				assert.Len(t, instr.PhiSources, len(b.Preds))
			}
		}
	}

	assert.True(t, foundLoopPhi, "expected a phi at the while loop's header block")
}

func TestRecursiveFibonacciHasNoRegisterCollisionsAfterSSA(t *testing.T) {
	fn := lowerFunction(t, `module t; function fib(n: byte): byte { if (n < 2) { return n; } return fib(n-1) + fib(n-2); }`, "fib")

	ConstructFunction(fn)

	assertNoVarRef(t, fn)
	assertSingleDef(t, fn)
	assertPhisFirst(t, fn)
}

func TestForLoopDesugaredInductionVariableGetsPhiAtHeader(t *testing.T) {
	fn := lowerFunction(t, `module t;
function sum(): byte {
	let total: byte = 0;
	for i = 0 to 9 {
		total = total + i;
	}
	return total;
}`, "sum")

	ConstructFunction(fn)

	assertNoVarRef(t, fn)
	assertSingleDef(t, fn)
	assertPhisFirst(t, fn)
}

func TestModuleConstructRunsOverEveryFunction(t *testing.T) {
	file := diag.NewFile("test.b65", `module t;
function a(): byte { let x: byte = 1; return x; }
function b(): byte { let y: byte = 2; if (y > 0) { y = 3; } return y; }`)
	prog, parseSink := parser.Parse(file, lexer.Options{})
	require.False(t, parseSink.HasErrors())

	sem := sema.Analyze(prog)
	require.True(t, sem.Success())

	mod, sink := ilgen.Lower(prog, sem)
	require.False(t, sink.HasErrors())

	Construct(mod)

	assertNoVarRef(t, mod.Function("a"))
	assertNoVarRef(t, mod.Function("b"))
}
