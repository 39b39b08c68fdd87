package types

import "github.com/blendsdk/blend65-sub015/pkg/diag"

// SymbolKind tags what a Symbol denotes, per spec.md §4.3.
type SymbolKind uint

const (
	SymVariable SymbolKind = iota
	SymFunction
	SymParameter
	SymType
	SymEnum
	SymEnumMember
	SymModule
)

func (k SymbolKind) String() string {
	switch k {
	case SymVariable:
		return "variable"
	case SymFunction:
		return "function"
	case SymParameter:
		return "parameter"
	case SymType:
		return "type"
	case SymEnum:
		return "enum"
	case SymEnumMember:
		return "enum-member"
	case SymModule:
		return "module"
	default:
		return "unknown"
	}
}

// StorageClass mirrors pkg/ast's storage-class tag without importing pkg/ast,
// to keep pkg/types free of a dependency on the AST package.
type StorageClass uint

const (
	StorageNone StorageClass = iota
	StorageZeroPage
	StorageRam
	StorageData
	StorageMap
)

// Symbol is one entry in the symbol table: a declared name bound to a
// resolved type, with the declaration-site span for diagnostics and
// "declared but never used" style analyses.
type Symbol struct {
	Name       string
	Kind       SymbolKind
	Span       diag.Span
	Type       *Type
	IsConst    bool
	IsExported bool
	Storage    StorageClass
}
