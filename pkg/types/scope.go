package types

import (
	"fmt"

	"github.com/blendsdk/blend65-sub015/pkg/diag"
)

// DuplicateError is returned when a declaration collides with an existing
// symbol in the same scope. It carries both spans so callers (pkg/sema) can
// render a "previously declared here" related-location diagnostic.
type DuplicateError struct {
	Name     string
	Previous diag.Span
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate declaration of %q", e.Name)
}

// scope is one level of the lexical scope stack: a flat map of names visible
// at that level, searched innermost-first by Table.Lookup.
type scope struct {
	symbols map[string]*Symbol
}

func newScope() *scope {
	return &scope{symbols: make(map[string]*Symbol)}
}

// Table is the consolidated scoped symbol table. NewTable pushes an empty
// module scope (primitive type names are not declared as symbols); callers
// push further scopes with EnterScope for function parameters and
// statement blocks.
//
// A single stack of scope frames plays both the role of a scope manager and
// a symbol table (spec.md §9 flags the original's split between the two as
// often redundant), so this port merges them.
type Table struct {
	frames []*scope
}

// NewTable constructs a symbol table with its module scope already pushed.
func NewTable() *Table {
	t := &Table{}
	t.EnterScope()

	return t
}

// EnterScope pushes a new, empty scope frame.
func (t *Table) EnterScope() {
	t.frames = append(t.frames, newScope())
}

// ExitScope pops the innermost scope frame. It panics if called with no
// scope pushed, since every EnterScope must be matched by exactly one
// ExitScope on every exit path (spec.md §5).
func (t *Table) ExitScope() {
	if len(t.frames) == 0 {
		panic("types: ExitScope with no scope pushed")
	}

	t.frames = t.frames[:len(t.frames)-1]
}

// Depth returns the number of scope frames currently pushed (1 == module
// scope only).
func (t *Table) Depth() int {
	return len(t.frames)
}

func (t *Table) top() *scope {
	return t.frames[len(t.frames)-1]
}

// declare inserts sym into the innermost scope, failing if that scope
// already binds the name.
func (t *Table) declare(sym *Symbol) (*Symbol, error) {
	top := t.top()

	if existing, ok := top.symbols[sym.Name]; ok {
		return nil, &DuplicateError{Name: sym.Name, Previous: existing.Span}
	}

	top.symbols[sym.Name] = sym

	return sym, nil
}

// DeclareVariable declares a let/const binding (or a function parameter, via
// DeclareParameter) in the innermost scope.
func (t *Table) DeclareVariable(name string, span diag.Span, typ *Type, isConst bool, storage StorageClass) (*Symbol, error) {
	return t.declare(&Symbol{
		Name:    name,
		Kind:    SymVariable,
		Span:    span,
		Type:    typ,
		IsConst: isConst,
		Storage: storage,
	})
}

// DeclareParameter declares a function parameter.
func (t *Table) DeclareParameter(name string, span diag.Span, typ *Type) (*Symbol, error) {
	return t.declare(&Symbol{Name: name, Kind: SymParameter, Span: span, Type: typ})
}

// DeclareFunction declares a function (or callback) in the innermost scope,
// recording fnType as its type.
func (t *Table) DeclareFunction(name string, span diag.Span, fnType *Type, isExported bool) (*Symbol, error) {
	return t.declare(&Symbol{
		Name:       name,
		Kind:       SymFunction,
		Span:       span,
		Type:       fnType,
		IsExported: isExported,
	})
}

// DeclareType declares a type alias.
func (t *Table) DeclareType(name string, span diag.Span, aliased *Type) (*Symbol, error) {
	return t.declare(&Symbol{Name: name, Kind: SymType, Span: span, Type: aliased})
}

// DeclareEnum declares an enum type and, in the same scope, each of its
// members as SymEnumMember symbols typed as the enum itself.
func (t *Table) DeclareEnum(name string, span diag.Span, enumType *Type, memberSpans map[string]diag.Span) (*Symbol, error) {
	sym, err := t.declare(&Symbol{Name: name, Kind: SymEnum, Span: span, Type: enumType})
	if err != nil {
		return nil, err
	}

	for _, member := range enumType.EnumMemberOrder() {
		if _, err := t.declare(&Symbol{
			Name: name + "." + member,
			Kind: SymEnumMember,
			Span: memberSpans[member],
			Type: enumType,
		}); err != nil {
			return nil, err
		}
	}

	return sym, nil
}

// Lookup searches the scope stack innermost-first and returns the first
// binding of name, or nil if it is undeclared anywhere in scope.
func (t *Table) Lookup(name string) *Symbol {
	for i := len(t.frames) - 1; i >= 0; i-- {
		if sym, ok := t.frames[i].symbols[name]; ok {
			return sym
		}
	}

	return nil
}

// LookupLocal searches only the innermost scope frame, used by callers that
// need to distinguish "redeclared in this block" from "shadows an outer
// binding" (shadowing is legal; redeclaration in the same block is not).
func (t *Table) LookupLocal(name string) *Symbol {
	sym, ok := t.top().symbols[name]
	if !ok {
		return nil
	}

	return sym
}
