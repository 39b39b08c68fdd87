package ast

import "github.com/blendsdk/blend65-sub015/pkg/diag"

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmt()
}

// BlockStmt is `{ stmt* }`.
type BlockStmt struct {
	base
	Stmts []Stmt
}

func NewBlockStmt(span diag.Span, stmts []Stmt) *BlockStmt {
	return &BlockStmt{newBase(span), stmts}
}

func (*BlockStmt) Kind() Kind { return KindBlockStmt }
func (*BlockStmt) stmt()      {}

// IfStmt is `if (cond) then [else else]`.
type IfStmt struct {
	base
	Cond Expr
	Then Stmt
	Else Stmt // nil if absent
}

func NewIfStmt(span diag.Span, cond Expr, then, els Stmt) *IfStmt {
	return &IfStmt{newBase(span), cond, then, els}
}

func (*IfStmt) Kind() Kind { return KindIfStmt }
func (*IfStmt) stmt()      {}

// WhileStmt is `while (cond) body`.
type WhileStmt struct {
	base
	Cond Expr
	Body Stmt
}

func NewWhileStmt(span diag.Span, cond Expr, body Stmt) *WhileStmt {
	return &WhileStmt{newBase(span), cond, body}
}

func (*WhileStmt) Kind() Kind { return KindWhileStmt }
func (*WhileStmt) stmt()      {}

// ForStmt is `for IDENT = start (to|downto) end [step k] body`.
type ForStmt struct {
	base
	Var     string
	Start   Expr
	End     Expr
	Downto  bool
	Step    Expr // nil => implicit step of 1
	Body    Stmt
}

func NewForStmt(span diag.Span, v string, start, end Expr, downto bool, step Expr, body Stmt) *ForStmt {
	return &ForStmt{newBase(span), v, start, end, downto, step, body}
}

func (*ForStmt) Kind() Kind { return KindForStmt }
func (*ForStmt) stmt()      {}

// SwitchCase is one `case v1, v2: stmts` or `default: stmts` arm. An empty
// Values slice marks the default arm.
type SwitchCase struct {
	Values []Expr
	Body   []Stmt
	Span   diag.Span
}

// SwitchStmt is `switch (subject) { case ...: ...; default: ...; }`.
type SwitchStmt struct {
	base
	Subject Expr
	Cases   []SwitchCase
}

func NewSwitchStmt(span diag.Span, subject Expr, cases []SwitchCase) *SwitchStmt {
	return &SwitchStmt{newBase(span), subject, cases}
}

func (*SwitchStmt) Kind() Kind { return KindSwitchStmt }
func (*SwitchStmt) stmt()      {}

// BreakStmt is `break ;`.
type BreakStmt struct{ base }

func NewBreakStmt(span diag.Span) *BreakStmt { return &BreakStmt{newBase(span)} }
func (*BreakStmt) Kind() Kind                { return KindBreakStmt }
func (*BreakStmt) stmt()                     {}

// ContinueStmt is `continue ;`.
type ContinueStmt struct{ base }

func NewContinueStmt(span diag.Span) *ContinueStmt { return &ContinueStmt{newBase(span)} }
func (*ContinueStmt) Kind() Kind                   { return KindContinueStmt }
func (*ContinueStmt) stmt()                        {}

// ReturnStmt is `return [expr] ;`.
type ReturnStmt struct {
	base
	Value Expr // nil => void return
}

func NewReturnStmt(span diag.Span, value Expr) *ReturnStmt {
	return &ReturnStmt{newBase(span), value}
}

func (*ReturnStmt) Kind() Kind { return KindReturnStmt }
func (*ReturnStmt) stmt()      {}

// ExprStmt is a bare expression used as a statement (almost always an
// assignment or a call).
type ExprStmt struct {
	base
	Expr Expr
}

func NewExprStmt(span diag.Span, expr Expr) *ExprStmt {
	return &ExprStmt{newBase(span), expr}
}

func (*ExprStmt) Kind() Kind { return KindExprStmt }
func (*ExprStmt) stmt()      {}

// LocalVarStmt is a `let`/`const` declaration appearing inside a function
// body. It wraps a VariableDecl, since the shape is identical to a
// module-scope variable declaration (spec.md §3).
type LocalVarStmt struct {
	base
	Decl *VariableDecl
}

func NewLocalVarStmt(span diag.Span, decl *VariableDecl) *LocalVarStmt {
	return &LocalVarStmt{newBase(span), decl}
}

func (*LocalVarStmt) Kind() Kind { return KindLocalVarStmt }
func (*LocalVarStmt) stmt()      {}
