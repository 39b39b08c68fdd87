package ast

import "github.com/blendsdk/blend65-sub015/pkg/diag"

// Node is implemented by every declaration, statement and expression. Each
// node exclusively owns its children (no sharing, no cycles); structural
// fields are fixed at construction, and only Metadata is mutated afterwards,
// by later analysis passes (spec.md §5).
type Node interface {
	Span() diag.Span
	Kind() Kind
	Metadata() *Metadata
}

// MetadataKey is a closed enumeration of keys later passes attach to nodes.
// Using a closed key set (rather than arbitrary strings) keeps the metadata
// map's content machine-checkable, per spec.md §9.
type MetadataKey uint

const (
	MetaCallGraphCallCount MetadataKey = iota
	MetaCallGraphIsRecursive
	MetaCallGraphInlineCandidate
	MetaCallGraphUnused
	MetaCallGraphHasIndirectCalls
	MetaExprType
	MetaExprIsConstant
	MetaExprConstantValue
	MetaUnreachable
)

// MetadataValueKind tags which field of MetadataValue is populated.
type MetadataValueKind uint

const (
	MetaValInt MetadataValueKind = iota
	MetaValBool
	MetaValAddress
	MetaValString
)

// MetadataValue is a small tagged union of the value shapes metadata entries
// actually need: an integer (counts, constant values), a bool (flags), an
// address (word-sized, for folded intrinsic addresses) and a string (e.g. a
// resolved type's display name), per spec.md §9.
type MetadataValue struct {
	Kind    MetadataValueKind
	Int     int64
	Bool    bool
	Address uint16
	Str     string
}

// IntMeta constructs an integer-valued MetadataValue.
func IntMeta(v int64) MetadataValue { return MetadataValue{Kind: MetaValInt, Int: v} }

// BoolMeta constructs a bool-valued MetadataValue.
func BoolMeta(v bool) MetadataValue { return MetadataValue{Kind: MetaValBool, Bool: v} }

// Metadata is a heterogeneous key-value store attached to every node, used
// by downstream passes for optimization hints (spec.md §3).
type Metadata struct {
	values map[MetadataKey]MetadataValue
}

// Get returns the value stored under key, if any.
func (m *Metadata) Get(key MetadataKey) (MetadataValue, bool) {
	if m.values == nil {
		return MetadataValue{}, false
	}

	v, ok := m.values[key]

	return v, ok
}

// Set stores a value under key, overwriting any previous value.
func (m *Metadata) Set(key MetadataKey, value MetadataValue) {
	if m.values == nil {
		m.values = make(map[MetadataKey]MetadataValue)
	}

	m.values[key] = value
}

// base is embedded by every concrete node to provide Span() and Metadata()
// without repeating the bookkeeping in every node type.
type base struct {
	span diag.Span
	meta Metadata
}

func (b *base) Span() diag.Span     { return b.span }
func (b *base) Metadata() *Metadata { return &b.meta }

func newBase(span diag.Span) base {
	return base{span: span}
}
