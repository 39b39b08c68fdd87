package ast

import "github.com/blendsdk/blend65-sub015/pkg/diag"

// Declaration is implemented by every top-level (module-scope) item.
type Declaration interface {
	Node
	decl()
}

// StorageClass names the 6502 memory region a global variable inhabits
// (spec.md's GLOSSARY "Storage class").
type StorageClass uint

const (
	// StorageNone means no `@`-prefix was given; lowering treats this the
	// same as StorageRam (spec.md §4.4).
	StorageNone StorageClass = iota
	StorageZeroPage
	StorageRam
	StorageData
	// StorageMap is a fixed memory-mapped address; AddressExpr on the owning
	// VariableDecl must be present and constant.
	StorageMap
)

func (s StorageClass) String() string {
	switch s {
	case StorageZeroPage:
		return "@zp"
	case StorageRam:
		return "@ram"
	case StorageData:
		return "@data"
	case StorageMap:
		return "@address"
	default:
		return ""
	}
}

// ModuleDecl is the `module Identifier(.Identifier)*` header. Every Program
// has exactly one, synthesized with Name "global" when the source omits a
// header (spec.md §4.2).
type ModuleDecl struct {
	base
	Name      string
	Synthetic bool
}

func NewModuleDecl(span diag.Span, name string, synthetic bool) *ModuleDecl {
	return &ModuleDecl{newBase(span), name, synthetic}
}

func (*ModuleDecl) Kind() Kind { return KindModuleDecl }
func (*ModuleDecl) decl()      {}

// ImportDecl is `import NAME (, NAME)* from PATH ;`.
type ImportDecl struct {
	base
	Names []string
	Path  []string
}

func NewImportDecl(span diag.Span, names, path []string) *ImportDecl {
	return &ImportDecl{newBase(span), names, path}
}

func (*ImportDecl) Kind() Kind { return KindImportDecl }
func (*ImportDecl) decl()      {}

// ExportDecl wraps a function/variable/type/enum declaration marked with
// the `export` prefix (spec.md §3: Export is its own declaration kind).
type ExportDecl struct {
	base
	Inner Declaration
	// Implicit is set when the compiler auto-exports `main` without an
	// explicit `export` keyword (spec.md §4.2), so the parser can also
	// raise IMPLICIT_MAIN_EXPORT as a warning.
	Implicit bool
}

func NewExportDecl(span diag.Span, inner Declaration, implicit bool) *ExportDecl {
	return &ExportDecl{newBase(span), inner, implicit}
}

func (*ExportDecl) Kind() Kind { return KindExportDecl }
func (*ExportDecl) decl()      {}

// Param is a single function parameter: `name : type`.
type Param struct {
	Name string
	Type TypeExpr
	Span diag.Span
}

// FunctionDecl is `[callback] function NAME ( PARAMS ) [: TYPE] { BODY } |
// ;`. Body is nil for a stub declaration (trailing `;`).
type FunctionDecl struct {
	base
	Name       string
	Params     []Param
	ReturnType TypeExpr // nil => void
	Body       *BlockStmt
	IsCallback bool
}

func NewFunctionDecl(span diag.Span, name string, params []Param, ret TypeExpr, body *BlockStmt, isCallback bool) *FunctionDecl {
	return &FunctionDecl{newBase(span), name, params, ret, body, isCallback}
}

func (*FunctionDecl) Kind() Kind { return KindFunctionDecl }
func (*FunctionDecl) decl()      {}

// IsStub reports whether this function was declared with a trailing `;`
// instead of a body (spec.md GLOSSARY "Stub function").
func (f *FunctionDecl) IsStub() bool { return f.Body == nil }

// VariableDecl is `(let|const) NAME [: TYPE] [= EXPR] ;`, with an optional
// storage-class prefix. It is reused, unwrapped, as the payload of a
// LocalVarStmt for local variables (spec.md §3 lists `LocalVariable`
// statements separately from top-level `Variable` declarations, but the
// shape is identical).
type VariableDecl struct {
	base
	Name         string
	DeclaredType TypeExpr // nil => inferred from Init
	Init         Expr     // nil => uninitialized
	IsConst      bool
	Storage      StorageClass
	// AddressExpr holds the constant address expression for StorageMap
	// variables; nil otherwise.
	AddressExpr Expr
}

func NewVariableDecl(span diag.Span, name string, declType TypeExpr, init Expr, isConst bool, storage StorageClass, addr Expr) *VariableDecl {
	return &VariableDecl{newBase(span), name, declType, init, isConst, storage, addr}
}

func (*VariableDecl) Kind() Kind { return KindVariableDecl }
func (*VariableDecl) decl()      {}

// TypeAliasDecl is `type NAME = TYPE ;`.
type TypeAliasDecl struct {
	base
	Name    string
	Aliased TypeExpr
}

func NewTypeAliasDecl(span diag.Span, name string, aliased TypeExpr) *TypeAliasDecl {
	return &TypeAliasDecl{newBase(span), name, aliased}
}

func (*TypeAliasDecl) Kind() Kind { return KindTypeAliasDecl }
func (*TypeAliasDecl) decl()      {}

// EnumMember is one `NAME [= EXPR]` entry of an enum declaration.
type EnumMember struct {
	Name  string
	Value Expr // nil => auto-assigned (previous + 1, or 0 for the first)
	Span  diag.Span
}

// EnumDecl is `enum NAME { MEMBER (, MEMBER)* }`.
type EnumDecl struct {
	base
	Name    string
	Members []EnumMember
}

func NewEnumDecl(span diag.Span, name string, members []EnumMember) *EnumDecl {
	return &EnumDecl{newBase(span), name, members}
}

func (*EnumDecl) Kind() Kind { return KindEnumDecl }
func (*EnumDecl) decl()      {}

// Program is the AST root: spec.md §4.2's `Program = optional module header
// followed by module-scope items`.
type Program struct {
	Module       *ModuleDecl
	Declarations []Declaration
}
