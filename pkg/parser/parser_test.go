package parser

import (
	"testing"

	"github.com/blendsdk/blend65-sub015/pkg/ast"
	"github.com/blendsdk/blend65-sub015/pkg/diag"
	"github.com/blendsdk/blend65-sub015/pkg/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSource(t *testing.T, src string) (*ast.Program, *diag.Sink) {
	t.Helper()

	file := diag.NewFile("test.b65", src)

	return Parse(file, lexer.Options{})
}

func parseSingleExpr(t *testing.T, src string) ast.Expr {
	t.Helper()

	prog, sink := parseSource(t, "module t; function f(): void { "+src+"; }")
	require.False(t, sink.HasErrors(), "unexpected diagnostics: %+v", sink.All())
	require.Len(t, prog.Declarations, 1)

	fn, ok := prog.Declarations[0].(*ast.FunctionDecl)
	require.True(t, ok)
	require.Len(t, fn.Body.Stmts, 1)

	exprStmt, ok := fn.Body.Stmts[0].(*ast.ExprStmt)
	require.True(t, ok)

	return exprStmt.Expr
}

func TestProgramHasOneModuleAndDeclsInOrder(t *testing.T) {
	prog, sink := parseSource(t, `module demo;
let a: byte = 1;
let b: byte = 2;
function f(): void;
`)

	assert.False(t, sink.HasErrors())
	assert.Equal(t, "demo", prog.Module.Name)
	require.Len(t, prog.Declarations, 3)
	assert.Equal(t, ast.KindVariableDecl, prog.Declarations[0].Kind())
	assert.Equal(t, ast.KindVariableDecl, prog.Declarations[1].Kind())
	assert.Equal(t, ast.KindFunctionDecl, prog.Declarations[2].Kind())
}

func TestImplicitGlobalModule(t *testing.T) {
	prog, _ := parseSource(t, `let a: byte = 1;`)
	assert.Equal(t, "global", prog.Module.Name)
	assert.True(t, prog.Module.Synthetic)
}

func TestOperatorPrecedenceAdditiveVsMultiplicative(t *testing.T) {
	expr := parseSingleExpr(t, "1 + 2 * 3")

	bin, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, lexer.Plus, bin.Op)

	right, ok := bin.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, lexer.Star, right.Op)
}

func TestOperatorPrecedenceParenthesized(t *testing.T) {
	expr := parseSingleExpr(t, "(1+2)*3")

	bin, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, lexer.Star, bin.Op)

	left, ok := bin.Left.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, lexer.Plus, left.Op)
}

func TestTernaryIsRightAssociative(t *testing.T) {
	expr := parseSingleExpr(t, "a?b:c?d:e")

	outer, ok := expr.(*ast.TernaryExpr)
	require.True(t, ok)
	assert.Equal(t, "a", outer.Cond.(*ast.IdentifierExpr).Name)
	assert.Equal(t, "b", outer.Then.(*ast.IdentifierExpr).Name)

	inner, ok := outer.Else.(*ast.TernaryExpr)
	require.True(t, ok)
	assert.Equal(t, "c", inner.Cond.(*ast.IdentifierExpr).Name)
	assert.Equal(t, "d", inner.Then.(*ast.IdentifierExpr).Name)
	assert.Equal(t, "e", inner.Else.(*ast.IdentifierExpr).Name)
}

func TestAddressOfRejectsNonIdentifier(t *testing.T) {
	file := diag.NewFile("test.b65", `module t; function f(): void { @5; }`)
	_, sink := Parse(file, lexer.Options{})

	require.True(t, sink.HasErrors())

	found := false

	for _, d := range sink.All() {
		if d.Code == diag.CodeExpectedToken {
			found = true
		}
	}

	assert.True(t, found, "expected an ExpectedToken diagnostic for '@5', got %+v", sink.All())
}

func TestAddressOfAcceptsIdentifier(t *testing.T) {
	expr := parseSingleExpr(t, "@buffer")

	unary, ok := expr.(*ast.UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, lexer.At, unary.Op)
	assert.Equal(t, "buffer", unary.Operand.(*ast.IdentifierExpr).Name)
}

func TestCallOnlyOnBareIdentifier(t *testing.T) {
	expr := parseSingleExpr(t, "f(1, 2)")

	call, ok := expr.(*ast.CallExpr)
	require.True(t, ok)
	assert.Equal(t, "f", call.Callee)
	assert.Len(t, call.Args, 2)
}

func TestIndexChainsOverCallResult(t *testing.T) {
	expr := parseSingleExpr(t, "f()[0]")

	idx, ok := expr.(*ast.IndexExpr)
	require.True(t, ok)

	_, ok = idx.Base.(*ast.CallExpr)
	assert.True(t, ok)
}

func TestMemberAccessOnlyOnBareIdentifier(t *testing.T) {
	expr := parseSingleExpr(t, "Color.Red")

	member, ok := expr.(*ast.MemberExpr)
	require.True(t, ok)
	assert.Equal(t, "Color", member.Base)
	assert.Equal(t, "Red", member.Member)
}

func TestArrayLiteralEmptyAndNested(t *testing.T) {
	expr := parseSingleExpr(t, "[[1, 2], [3, 4]]")

	outer, ok := expr.(*ast.ArrayLiteralExpr)
	require.True(t, ok)
	require.Len(t, outer.Elements, 2)

	inner, ok := outer.Elements[0].(*ast.ArrayLiteralExpr)
	require.True(t, ok)
	assert.Len(t, inner.Elements, 2)
}

func TestFunctionStubHasNilBody(t *testing.T) {
	prog, sink := parseSource(t, `module t; function f(): void;`)
	assert.False(t, sink.HasErrors())

	fn := prog.Declarations[0].(*ast.FunctionDecl)
	assert.True(t, fn.IsStub())
}

func TestMainIsImplicitlyExported(t *testing.T) {
	prog, sink := parseSource(t, `module t; function main(): void { }`)

	foundWarning := false

	for _, d := range sink.All() {
		if d.Code == diag.CodeImplicitMainExport {
			foundWarning = true
		}
	}

	assert.True(t, foundWarning)

	_, ok := prog.Declarations[0].(*ast.ExportDecl)
	assert.True(t, ok)
}

func TestStorageClassVariable(t *testing.T) {
	prog, sink := parseSource(t, `module t; @zp let counter: byte = 0;`)
	assert.False(t, sink.HasErrors())

	v := prog.Declarations[0].(*ast.VariableDecl)
	assert.Equal(t, ast.StorageZeroPage, v.Storage)
}

func TestForStatementToAndDownto(t *testing.T) {
	prog, sink := parseSource(t, `module t;
function f(): void {
	for i = 0 to 10 step 2 { }
	for j = 10 downto 0 { }
}`)
	assert.False(t, sink.HasErrors())

	fn := prog.Declarations[0].(*ast.FunctionDecl)
	require.Len(t, fn.Body.Stmts, 2)

	forUp := fn.Body.Stmts[0].(*ast.ForStmt)
	assert.False(t, forUp.Downto)
	require.NotNil(t, forUp.Step)

	forDown := fn.Body.Stmts[1].(*ast.ForStmt)
	assert.True(t, forDown.Downto)
}

func TestSwitchWithDefault(t *testing.T) {
	prog, sink := parseSource(t, `module t;
function f(): void {
	switch (x) {
	case 1, 2:
		break;
	default:
		break;
	}
}`)
	assert.False(t, sink.HasErrors())

	fn := prog.Declarations[0].(*ast.FunctionDecl)
	sw := fn.Body.Stmts[0].(*ast.SwitchStmt)
	require.Len(t, sw.Cases, 2)
	assert.Len(t, sw.Cases[0].Values, 2)
	assert.Empty(t, sw.Cases[1].Values)
}

func TestSyntaxErrorRecoveryContinuesToNextDeclaration(t *testing.T) {
	prog, sink := parseSource(t, `module t;
let !!! broken;
let ok: byte = 1;
`)

	require.True(t, sink.HasErrors())
	require.Len(t, prog.Declarations, 1, "parser should recover and still find the second declaration")

	v, ok := prog.Declarations[0].(*ast.VariableDecl)
	require.True(t, ok)
	assert.Equal(t, "ok", v.Name)
}

func TestDecodeNumberAllRadices(t *testing.T) {
	assert.Equal(t, uint32(0xD020), decodeNumber("$D020"))
	assert.Equal(t, uint32(0xD020), decodeNumber("0xD020"))
	assert.Equal(t, uint32(0b1010), decodeNumber("0b1010"))
	assert.Equal(t, uint32(5), decodeNumber("%101"))
	assert.Equal(t, uint32(65535), decodeNumber("65535"))
}

func TestTypeExprArrayNesting(t *testing.T) {
	prog, sink := parseSource(t, `module t; let grid: byte[3][4];`)
	assert.False(t, sink.HasErrors())

	v := prog.Declarations[0].(*ast.VariableDecl)
	outer, ok := v.DeclaredType.(*ast.ArrayTypeExpr)
	require.True(t, ok)

	inner, ok := outer.Element.(*ast.ArrayTypeExpr)
	require.True(t, ok)

	named, ok := inner.Element.(*ast.NamedTypeExpr)
	require.True(t, ok)
	assert.Equal(t, "byte", named.Name)
}
