package ast

import (
	"github.com/blendsdk/blend65-sub015/pkg/diag"
	"github.com/blendsdk/blend65-sub015/pkg/lexer"
)

// Expr is implemented by every expression node.
type Expr interface {
	Node
	expr()
}

// LiteralKind discriminates the four literal forms spec.md §3 names:
// number, string, bool, and type-name (used by `sizeof(T)`).
type LiteralKind uint

const (
	LiteralNumber LiteralKind = iota
	LiteralString
	LiteralBool
	LiteralTypeName
)

// LiteralExpr is a number, string, bool, or type-name literal. NumberValue
// holds the literal's value already parsed from its raw radix-prefixed
// lexeme (spec.md §4.1); StringValue holds the already-unescaped text.
type LiteralExpr struct {
	base
	LiteralKind LiteralKind
	NumberValue uint32 // wide enough to detect byte/word overflow before truncation
	StringValue string
	BoolValue   bool
	TypeName    string
}

func NewNumberLiteral(span diag.Span, v uint32) *LiteralExpr {
	return &LiteralExpr{base: newBase(span), LiteralKind: LiteralNumber, NumberValue: v}
}

func NewStringLiteral(span diag.Span, v string) *LiteralExpr {
	return &LiteralExpr{base: newBase(span), LiteralKind: LiteralString, StringValue: v}
}

func NewBoolLiteral(span diag.Span, v bool) *LiteralExpr {
	return &LiteralExpr{base: newBase(span), LiteralKind: LiteralBool, BoolValue: v}
}

func NewTypeNameLiteral(span diag.Span, name string) *LiteralExpr {
	return &LiteralExpr{base: newBase(span), LiteralKind: LiteralTypeName, TypeName: name}
}

func (*LiteralExpr) Kind() Kind { return KindLiteralExpr }
func (*LiteralExpr) expr()      {}

// IdentifierExpr references a variable, parameter, function, or enum member
// by bare name.
type IdentifierExpr struct {
	base
	Name string
}

func NewIdentifierExpr(span diag.Span, name string) *IdentifierExpr {
	return &IdentifierExpr{newBase(span), name}
}

func (*IdentifierExpr) Kind() Kind { return KindIdentifierExpr }
func (*IdentifierExpr) expr()      {}

// BinaryExpr is a binary operator application. Op is the lexer.Kind of the
// operator token (e.g. lexer.Plus, lexer.EqEq).
type BinaryExpr struct {
	base
	Op          lexer.Kind
	Left, Right Expr
}

func NewBinaryExpr(span diag.Span, op lexer.Kind, left, right Expr) *BinaryExpr {
	return &BinaryExpr{newBase(span), op, left, right}
}

func (*BinaryExpr) Kind() Kind { return KindBinaryExpr }
func (*BinaryExpr) expr()      {}

// UnaryExpr is a prefix unary operator application: `!`, `~`, `+`, `-`, `@`.
type UnaryExpr struct {
	base
	Op      lexer.Kind
	Operand Expr
}

func NewUnaryExpr(span diag.Span, op lexer.Kind, operand Expr) *UnaryExpr {
	return &UnaryExpr{newBase(span), op, operand}
}

func (*UnaryExpr) Kind() Kind { return KindUnaryExpr }
func (*UnaryExpr) expr()      {}

// TernaryExpr is `cond ? then : else`, right-associative.
type TernaryExpr struct {
	base
	Cond, Then, Else Expr
}

func NewTernaryExpr(span diag.Span, cond, then, els Expr) *TernaryExpr {
	return &TernaryExpr{newBase(span), cond, then, els}
}

func (*TernaryExpr) Kind() Kind { return KindTernaryExpr }
func (*TernaryExpr) expr()      {}

// CallExpr is `name(args...)`. Per spec.md §4.2, the callee must be a bare
// identifier — no chained calls are representable, so Callee is a string
// rather than an arbitrary Expr.
type CallExpr struct {
	base
	Callee string
	Args   []Expr
}

func NewCallExpr(span diag.Span, callee string, args []Expr) *CallExpr {
	return &CallExpr{newBase(span), callee, args}
}

func (*CallExpr) Kind() Kind { return KindCallExpr }
func (*CallExpr) expr()      {}

// IndexExpr is `base[index]`, chainable over arrays or a call result.
type IndexExpr struct {
	base
	Base  Expr
	Index Expr
}

func NewIndexExpr(span diag.Span, arr, index Expr) *IndexExpr {
	return &IndexExpr{newBase(span), arr, index}
}

func (*IndexExpr) Kind() Kind { return KindIndexExpr }
func (*IndexExpr) expr()      {}

// MemberExpr is `base.member`. Per spec.md §4.2 this is legal only directly
// on a bare identifier, with no further chaining, so both Base and Member
// are plain names.
type MemberExpr struct {
	base
	Base   string
	Member string
}

func NewMemberExpr(span diag.Span, base_, member string) *MemberExpr {
	return &MemberExpr{newBase(span), base_, member}
}

func (*MemberExpr) Kind() Kind { return KindMemberExpr }
func (*MemberExpr) expr()      {}

// ArrayLiteralExpr is `[e1, e2, ...]`, including the empty literal `[]`.
// Nested array literals are permitted for multi-dimensional initializers.
type ArrayLiteralExpr struct {
	base
	Elements []Expr
}

func NewArrayLiteralExpr(span diag.Span, elements []Expr) *ArrayLiteralExpr {
	return &ArrayLiteralExpr{newBase(span), elements}
}

func (*ArrayLiteralExpr) Kind() Kind { return KindArrayLiteralExpr }
func (*ArrayLiteralExpr) expr()      {}

// AssignExpr is `target = value` or a compound form (`+=`, `&=`, etc). Op is
// lexer.Assign for the plain form.
type AssignExpr struct {
	base
	Op     lexer.Kind
	Target Expr
	Value  Expr
}

func NewAssignExpr(span diag.Span, op lexer.Kind, target, value Expr) *AssignExpr {
	return &AssignExpr{newBase(span), op, target, value}
}

func (*AssignExpr) Kind() Kind { return KindAssignExpr }
func (*AssignExpr) expr()      {}
