package ilgen

import (
	"testing"

	"github.com/blendsdk/blend65-sub015/pkg/diag"
	"github.com/blendsdk/blend65-sub015/pkg/il"
	"github.com/blendsdk/blend65-sub015/pkg/lexer"
	"github.com/blendsdk/blend65-sub015/pkg/parser"
	"github.com/blendsdk/blend65-sub015/pkg/sema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lowerSource(t *testing.T, src string) (*il.Module, *sema.Analyzer, *diag.Sink) {
	t.Helper()

	file := diag.NewFile("test.b65", src)
	prog, parseSink := parser.Parse(file, lexer.Options{})
	require.False(t, parseSink.HasErrors(), "unexpected parse diagnostics: %+v", parseSink.All())

	sem := sema.Analyze(prog)
	require.True(t, sem.Success(), "unexpected semantic diagnostics: %+v", sem.Sink.All())

	mod, sink := Lower(prog, sem)

	return mod, sem, sink
}

func opcodes(fn *il.Function, blockIdx int) []il.Opcode {
	ops := make([]il.Opcode, len(fn.Blocks[blockIdx].Instructions))
	for i, ins := range fn.Blocks[blockIdx].Instructions {
		ops[i] = ins.Op
	}

	return ops
}

func TestPokeCallLowersToOneBlockWithConstConstPokeReturnVoid(t *testing.T) {
	mod, _, sink := lowerSource(t, `module t; function main(): void { poke($D020, 0); }`)

	assert.False(t, sink.HasErrors())
	assert.Equal(t, "main", mod.EntryPoint)

	fn := mod.Function("main")
	require.NotNil(t, fn)
	require.Len(t, fn.Blocks, 1)

	assert.Equal(t, []il.Opcode{il.OpConst, il.OpConst, il.OpPoke, il.OpReturnVoid}, opcodes(fn, 0))
}

func TestReturnLiteralLowersToConstThenReturn(t *testing.T) {
	mod, _, sink := lowerSource(t, `module t; function f(): byte { return 42; }`)

	assert.False(t, sink.HasErrors())

	fn := mod.Function("f")
	require.NotNil(t, fn)
	require.Len(t, fn.Blocks, 1)

	assert.Equal(t, []il.Opcode{il.OpConst, il.OpReturn}, opcodes(fn, 0))

	last := fn.Blocks[0].Instructions[0]
	assert.Equal(t, il.Byte, last.Type)
	assert.EqualValues(t, 42, last.ConstValue)
}

func TestCodeAfterReturnIsNotLowered(t *testing.T) {
	mod, sem, _ := lowerSource(t, `module t; function f(): void { return; let x: byte = 1; }`)

	assert.True(t, sem.Sink.HasErrors() || len(sem.Sink.All()) > 0)

	fn := mod.Function("f")
	require.NotNil(t, fn)
	require.Len(t, fn.Blocks, 1)

	// The unreachable `let` after `return` must not have been lowered into
	// the same block past its terminator.
	assert.Equal(t, []il.Opcode{il.OpReturnVoid}, opcodes(fn, 0))
}

func TestRecursiveFibonacciLowersWithDistinctRegisterIDsAcrossAllBlocks(t *testing.T) {
	mod, _, sink := lowerSource(t, `module t; function fib(n: byte): byte { if (n < 2) { return n; } return fib(n-1) + fib(n-2); }`)

	assert.False(t, sink.HasErrors())

	fn := mod.Function("fib")
	require.NotNil(t, fn)

	seen := make(map[il.RegisterID]bool)

	for _, blk := range fn.Blocks {
		for _, ins := range blk.Instructions {
			if !ins.HasDest {
				continue
			}

			assert.False(t, seen[ins.Dest], "register %d defined more than once", ins.Dest)
			seen[ins.Dest] = true
		}
	}
}

func TestGlobalZeroPageVariableLowersWithStorageAndConstInit(t *testing.T) {
	mod, _, sink := lowerSource(t, `module t; @zp let counter: byte = 0; function main(): void { }`)

	assert.False(t, sink.HasErrors())

	g := mod.Global("counter")
	require.NotNil(t, g)
	assert.Equal(t, il.ZeroPage, g.Storage)
	require.NotNil(t, g.ConstInit)
	assert.EqualValues(t, 0, *g.ConstInit)
}
