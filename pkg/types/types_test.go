package types

import (
	"testing"

	"github.com/blendsdk/blend65-sub015/pkg/diag"
	"github.com/blendsdk/blend65-sub015/pkg/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompatPrimitives(t *testing.T) {
	assert.Equal(t, Identical, Compat(ByteType, ByteType))
	assert.Equal(t, Compatible, Compat(ByteType, WordType))
	assert.Equal(t, RequiresConversion, Compat(WordType, ByteType))
	assert.Equal(t, Incompatible, Compat(ByteType, StringType))
	assert.True(t, CanAssign(ByteType, WordType))
	assert.False(t, CanAssign(WordType, ByteType))
}

func TestCompatUnknownCascades(t *testing.T) {
	assert.Equal(t, Compatible, Compat(UnknownType, ByteType))
	assert.Equal(t, Compatible, Compat(ByteType, UnknownType))
}

func TestArrayCompatSizedVsUnsized(t *testing.T) {
	in := NewInterner()
	three := 3
	sized := in.Array(ByteType, &three)
	unsized := in.Array(ByteType, nil)

	assert.Equal(t, Compatible, Compat(sized, unsized))
	assert.Equal(t, Incompatible, Compat(unsized, sized))
}

func TestArrayCompatSameSize(t *testing.T) {
	in := NewInterner()
	three := 3
	a := in.Array(ByteType, &three)
	b := in.Array(ByteType, &three)

	assert.Same(t, a, b, "arrays of the same element+size must be interned to one instance")
	assert.Equal(t, Identical, Compat(a, b))
}

func TestInternerFunctionAndEnum(t *testing.T) {
	in := NewInterner()

	f1 := in.Function([]*Type{ByteType, WordType}, VoidType)
	f2 := in.Function([]*Type{ByteType, WordType}, VoidType)
	assert.Same(t, f1, f2)

	e1 := in.Enum("Color", map[string]int{"Red": 0, "Green": 1}, []string{"Red", "Green"})
	e2 := in.Enum("Color", map[string]int{"Red": 0, "Green": 1}, []string{"Red", "Green"})
	assert.Same(t, e1, e2)
}

func TestBinaryResultArithmeticWidensToWord(t *testing.T) {
	result, ok := BinaryResult(lexer.Plus, ByteType, WordType)
	require.True(t, ok)
	assert.Equal(t, Word, result.Kind())

	result, ok = BinaryResult(lexer.Plus, ByteType, ByteType)
	require.True(t, ok)
	assert.Equal(t, Byte, result.Kind())
}

func TestBinaryResultComparisonReturnsBool(t *testing.T) {
	result, ok := BinaryResult(lexer.EqEq, ByteType, WordType)
	require.True(t, ok)
	assert.Equal(t, Bool, result.Kind())
}

func TestBinaryResultRejectsNonNumeric(t *testing.T) {
	_, ok := BinaryResult(lexer.Plus, StringType, ByteType)
	assert.False(t, ok)
}

func TestUnaryResultBang(t *testing.T) {
	result, ok := UnaryResult(lexer.Bang, ByteType)
	require.True(t, ok)
	assert.Equal(t, Bool, result.Kind())
}

func TestTableDeclareAndLookup(t *testing.T) {
	table := NewTable()

	span := diag.NewSpan(0, 1)
	_, err := table.DeclareVariable("x", span, ByteType, false, StorageNone)
	require.NoError(t, err)

	sym := table.Lookup("x")
	require.NotNil(t, sym)
	assert.Equal(t, ByteType, sym.Type)
}

func TestTableDuplicateDeclarationInSameScope(t *testing.T) {
	table := NewTable()
	span := diag.NewSpan(0, 1)

	_, err := table.DeclareVariable("x", span, ByteType, false, StorageNone)
	require.NoError(t, err)

	_, err = table.DeclareVariable("x", diag.NewSpan(2, 3), WordType, false, StorageNone)
	require.Error(t, err)

	var dupErr *DuplicateError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, span, dupErr.Previous)
}

func TestTableShadowingAcrossScopesIsLegal(t *testing.T) {
	table := NewTable()

	_, err := table.DeclareVariable("x", diag.NewSpan(0, 1), ByteType, false, StorageNone)
	require.NoError(t, err)

	table.EnterScope()
	_, err = table.DeclareVariable("x", diag.NewSpan(2, 3), WordType, false, StorageNone)
	require.NoError(t, err)

	sym := table.Lookup("x")
	require.NotNil(t, sym)
	assert.Equal(t, WordType, sym.Type, "innermost scope shadows the outer binding")

	table.ExitScope()
	sym = table.Lookup("x")
	require.NotNil(t, sym)
	assert.Equal(t, ByteType, sym.Type, "exiting the scope restores visibility of the outer binding")
}

func TestTableLookupLocalDoesNotSeeOuterScope(t *testing.T) {
	table := NewTable()
	_, err := table.DeclareVariable("x", diag.NewSpan(0, 1), ByteType, false, StorageNone)
	require.NoError(t, err)

	table.EnterScope()
	assert.Nil(t, table.LookupLocal("x"))
	assert.NotNil(t, table.Lookup("x"))
}

func TestTableLookupUndeclaredReturnsNil(t *testing.T) {
	table := NewTable()
	assert.Nil(t, table.Lookup("nope"))
}

func TestTableExitScopePanicsWhenEmpty(t *testing.T) {
	table := &Table{}
	assert.Panics(t, func() { table.ExitScope() })
}

func TestTableDeclareEnumAlsoDeclaresMembers(t *testing.T) {
	table := NewTable()
	in := NewInterner()

	enumType := in.Enum("Color", map[string]int{"Red": 0, "Green": 1}, []string{"Red", "Green"})
	span := diag.NewSpan(0, 1)

	_, err := table.DeclareEnum("Color", span, enumType, map[string]diag.Span{
		"Red":   diag.NewSpan(1, 2),
		"Green": diag.NewSpan(3, 4),
	})
	require.NoError(t, err)

	assert.NotNil(t, table.Lookup("Color"))
	assert.NotNil(t, table.Lookup("Color.Red"))
	assert.NotNil(t, table.Lookup("Color.Green"))
}
