package ast

import (
	"testing"

	"github.com/blendsdk/blend65-sub015/pkg/diag"
	"github.com/stretchr/testify/assert"
)

func TestMetadataRoundTrip(t *testing.T) {
	n := NewIdentifierExpr(diag.NewSpan(0, 1), "x")

	_, ok := n.Metadata().Get(MetaExprIsConstant)
	assert.False(t, ok)

	n.Metadata().Set(MetaExprIsConstant, BoolMeta(true))

	v, ok := n.Metadata().Get(MetaExprIsConstant)
	assert.True(t, ok)
	assert.True(t, v.Bool)
}

func TestNodeKinds(t *testing.T) {
	span := diag.NewSpan(0, 1)

	var decls []Declaration = []Declaration{
		NewModuleDecl(span, "global", true),
		NewImportDecl(span, []string{"a"}, []string{"b"}),
		NewVariableDecl(span, "x", nil, nil, false, StorageNone, nil),
	}

	expectedKinds := []Kind{KindModuleDecl, KindImportDecl, KindVariableDecl}
	for i, d := range decls {
		assert.Equal(t, expectedKinds[i], d.Kind())
		assert.Equal(t, span, d.Span())
	}
}

func TestFunctionDeclIsStub(t *testing.T) {
	span := diag.NewSpan(0, 1)
	stub := NewFunctionDecl(span, "f", nil, nil, nil, false)
	assert.True(t, stub.IsStub())

	withBody := NewFunctionDecl(span, "f", nil, nil, NewBlockStmt(span, nil), false)
	assert.False(t, withBody.IsStub())
}
