package ast

import "github.com/blendsdk/blend65-sub015/pkg/diag"

// TypeExpr is the syntactic form of a type annotation, as written by the
// programmer, before the type checker resolves it against pkg/types. Array
// element/count nesting lets multi-dimensional array type annotations be
// written directly.
type TypeExpr interface {
	Node
	typeExpr()
}

// NamedTypeExpr is a bare type name: a primitive (`byte`, `word`, `bool`,
// `void`), an enum name, or a user type alias.
type NamedTypeExpr struct {
	base
	Name string
}

func NewNamedTypeExpr(span diag.Span, name string) *NamedTypeExpr {
	return &NamedTypeExpr{newBase(span), name}
}

func (*NamedTypeExpr) Kind() Kind { return KindNamedTypeExpr }
func (*NamedTypeExpr) typeExpr()  {}

// ArrayTypeExpr is `T[N]` (sized) or `T[]` (unsized, Count == nil).
type ArrayTypeExpr struct {
	base
	Element TypeExpr
	Count   Expr // nil => unsized
}

func NewArrayTypeExpr(span diag.Span, element TypeExpr, count Expr) *ArrayTypeExpr {
	return &ArrayTypeExpr{newBase(span), element, count}
}

func (*ArrayTypeExpr) Kind() Kind { return KindArrayTypeExpr }
func (*ArrayTypeExpr) typeExpr()  {}
