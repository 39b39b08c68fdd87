package sema

import (
	"testing"

	"github.com/blendsdk/blend65-sub015/pkg/ast"
	"github.com/blendsdk/blend65-sub015/pkg/diag"
	"github.com/blendsdk/blend65-sub015/pkg/lexer"
	"github.com/blendsdk/blend65-sub015/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzeSource(t *testing.T, src string) *Analyzer {
	t.Helper()

	file := diag.NewFile("test.b65", src)
	prog, parseSink := parser.Parse(file, lexer.Options{})
	require.False(t, parseSink.HasErrors(), "unexpected parse diagnostics: %+v", parseSink.All())

	a := Analyze(prog)
	a.Sink.Merge(parseSink)

	return a
}

func findFunc(prog *ast.Program, name string) *ast.FunctionDecl {
	for _, d := range prog.Declarations {
		if exp, ok := d.(*ast.ExportDecl); ok {
			d = exp.Inner
		}

		if fn, ok := d.(*ast.FunctionDecl); ok && fn.Name == name {
			return fn
		}
	}

	return nil
}

func hasCode(sink *diag.Sink, code diag.Code) bool {
	for _, d := range sink.All() {
		if d.Code == code {
			return true
		}
	}

	return false
}

func countCode(sink *diag.Sink, code diag.Code) int {
	n := 0

	for _, d := range sink.All() {
		if d.Code == code {
			n++
		}
	}

	return n
}

func TestByteBinaryResultIsByte(t *testing.T) {
	a := analyzeSource(t, `module t;
export function main(): void {
	let a: byte = 1;
	let b: byte = 2;
	let c: byte = a + b;
}`)
	assert.True(t, a.Success())
}

func TestByteAndWordWidensToWord(t *testing.T) {
	a := analyzeSource(t, `module t;
export function main(): void {
	let a: byte = 1;
	let b: word = 2;
	let c: word = a + b;
}`)
	assert.True(t, a.Success())
}

func TestComparisonResultIsBool(t *testing.T) {
	a := analyzeSource(t, `module t;
export function main(): void {
	let a: byte = 1;
	let b: byte = 2;
	let c: bool = a < b;
}`)
	assert.True(t, a.Success())
}

func TestBangOnBoolIsBool(t *testing.T) {
	a := analyzeSource(t, `module t;
export function main(): void {
	let flag: bool = true;
	let c: bool = !flag;
}`)
	assert.True(t, a.Success())
}

func TestConstantFoldingAddition(t *testing.T) {
	a := analyzeSource(t, `module t;
export function main(): void {
	let c: byte = 5 + 3;
}`)
	require.True(t, a.Success())

	fn := findFunc(a.program, "main")
	local := fn.Body.Stmts[0].(*ast.LocalVarStmt)

	v, ok := a.constOf(local.Decl.Init)
	require.True(t, ok)
	assert.EqualValues(t, 8, v)
}

func TestConstantFoldingTernary(t *testing.T) {
	a := analyzeSource(t, `module t;
export function main(): void {
	let c: byte = true ? 5 : 10;
}`)
	require.True(t, a.Success())

	fn := findFunc(a.program, "main")
	local := fn.Body.Stmts[0].(*ast.LocalVarStmt)

	v, ok := a.constOf(local.Decl.Init)
	require.True(t, ok)
	assert.EqualValues(t, 5, v)
}

func TestConstantFoldingWordOverflowWraps(t *testing.T) {
	a := analyzeSource(t, `module t;
export function main(): void {
	let c: word = $FFFF + 1;
}`)
	require.True(t, a.Success())

	fn := findFunc(a.program, "main")
	local := fn.Body.Stmts[0].(*ast.LocalVarStmt)

	v, ok := a.constOf(local.Decl.Init)
	require.True(t, ok)
	assert.EqualValues(t, 0, v)
}

func TestDivisionByZeroIsNonConstantWarningNotError(t *testing.T) {
	a := analyzeSource(t, `module t;
export function main(): void {
	let c: byte = 10 / 0;
}`)
	require.True(t, a.Success(), "division by zero must not be an error")
	assert.True(t, hasCode(a.Sink, diag.CodeDivisionByZeroWarning))

	fn := findFunc(a.program, "main")
	local := fn.Body.Stmts[0].(*ast.LocalVarStmt)
	_, ok := a.constOf(local.Decl.Init)
	assert.False(t, ok, "division by zero must not fold to a constant")
}

func TestUndefinedIdentifierReportsExactlyOnceAndUnknown(t *testing.T) {
	a := analyzeSource(t, `module t;
export function main(): void {
	let c: byte = nope;
}`)
	assert.False(t, a.Success())
	assert.Equal(t, 1, countCode(a.Sink, diag.CodeUndefinedIdentifier))
}

func TestEmptyFunctionCFGHasAtLeastEntryAndExit(t *testing.T) {
	a := analyzeSource(t, `module t;
export function main(): void {
}`)
	require.True(t, a.Success())

	fcfg := a.FuncCFGs["main"]
	require.NotNil(t, fcfg)
	assert.GreaterOrEqual(t, fcfg.Graph.BlockCount(), 2)

	reachable := fcfg.Graph.Reachable(fcfg.Entry)
	assert.True(t, reachable.Test(uint(fcfg.Exit)))
}

func TestReturnInsideFunctionReachesExit(t *testing.T) {
	a := analyzeSource(t, `module t;
export function main(): void {
	return;
}`)
	require.True(t, a.Success())

	fcfg := a.FuncCFGs["main"]
	reachable := fcfg.Graph.Reachable(fcfg.Entry)
	assert.True(t, reachable.Test(uint(fcfg.Exit)))
}

func TestCodeAfterReturnIsUnreachable(t *testing.T) {
	a := analyzeSource(t, `module t;
export function main(): void {
	return;
	let c: byte = 1;
}`)
	assert.True(t, hasCode(a.Sink, diag.CodeUnreachableCode))
}

func TestCodeAfterBreakIsUnreachable(t *testing.T) {
	a := analyzeSource(t, `module t;
export function main(): void {
	while (true) {
		break;
		let c: byte = 1;
	}
}`)
	assert.True(t, hasCode(a.Sink, diag.CodeUnreachableCode))
}

func TestBothBranchesTerminateMakesFollowingStatementUnreachable(t *testing.T) {
	a := analyzeSource(t, `module t;
export function main(): void {
	if (true) {
		return;
	} else {
		return;
	}
	let c: byte = 1;
}`)
	assert.True(t, hasCode(a.Sink, diag.CodeUnreachableCode))
}

func TestRecursiveFunctionIsMarkedRecursive(t *testing.T) {
	a := analyzeSource(t, `module t;
function f(): void {
	f();
}
export function main(): void {
	f();
}`)
	require.True(t, a.Success())

	node := a.Calls.Node("f")
	require.NotNil(t, node)
	assert.True(t, node.Recursive)
}

func TestSmallNonRecursiveNonExportedFewCallSitesIsInlineCandidate(t *testing.T) {
	a := analyzeSource(t, `module t;
function small(): byte {
	return 1;
}
export function main(): void {
	let a: byte = small();
}`)
	require.True(t, a.Success())

	node := a.Calls.Node("small")
	require.NotNil(t, node)
	assert.True(t, node.InlineHint)
}

func TestRecursiveFunctionIsNeverInlineCandidate(t *testing.T) {
	a := analyzeSource(t, `module t;
function small(): byte {
	return small();
}
export function main(): void {
	let a: byte = small();
}`)
	node := a.Calls.Node("small")
	require.NotNil(t, node)
	assert.False(t, node.InlineHint)
}

func TestMainIsNeverReportedUnused(t *testing.T) {
	a := analyzeSource(t, `module t;
export function main(): void {
}`)
	require.True(t, a.Success())
	assert.False(t, hasCode(a.Sink, diag.CodeUnusedFunction))
}

func TestExportedFunctionIsNeverReportedUnused(t *testing.T) {
	a := analyzeSource(t, `module t;
export function helper(): void {
}
export function main(): void {
}`)
	require.True(t, a.Success())
	assert.False(t, hasCode(a.Sink, diag.CodeUnusedFunction))
}

func TestUncalledNonExportedFunctionIsReportedUnused(t *testing.T) {
	a := analyzeSource(t, `module t;
function dead(): void {
}
export function main(): void {
}`)
	assert.True(t, hasCode(a.Sink, diag.CodeUnusedFunction))
}

func TestCalledNonExportedFunctionIsNotReportedUnused(t *testing.T) {
	a := analyzeSource(t, `module t;
function helper(): void {
}
export function main(): void {
	helper();
}`)
	assert.False(t, hasCode(a.Sink, diag.CodeUnusedFunction))
}
