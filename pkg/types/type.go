// Package types implements the symbol table and type system of spec.md §4.3:
// singleton primitive types, structurally-interned array/function/enum
// types, a total type-compatibility function, and a lexically scoped symbol
// table consolidated into one type (spec.md §9: "scopeManager and
// symbolTable are sometimes redundant").
package types

// Kind tags the variant of a Type, per spec.md §3's "Type" data model.
type Kind uint

const (
	Byte Kind = iota
	Word
	Bool
	Void
	String
	Array
	Function
	Enum
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Byte:
		return "byte"
	case Word:
		return "word"
	case Bool:
		return "bool"
	case Void:
		return "void"
	case String:
		return "string"
	case Array:
		return "array"
	case Function:
		return "function"
	case Enum:
		return "enum"
	default:
		return "unknown"
	}
}

// Type is a tagged variant over the primitive, array, function and enum
// shapes spec.md §3 describes. Primitive instances are singletons; array,
// function and enum instances are interned by structural name so that
// pointer identity implies structural equality (spec.md §4.3).
type Type struct {
	kind Kind

	// Array
	element *Type
	count   *int // nil => unsized

	// Function
	params []*Type
	ret    *Type

	// Enum
	enumName    string
	members     map[string]int
	memberOrder []string
}

// Kind returns the type's tag.
func (t *Type) Kind() Kind { return t.kind }

// Element returns the element type of an array type.
func (t *Type) Element() *Type { return t.element }

// Count returns the declared element count of an array type, and whether
// the array is sized at all (an unsized array `T[]` has Count() == (0,
// false)).
func (t *Type) Count() (int, bool) {
	if t.count == nil {
		return 0, false
	}

	return *t.count, true
}

// Params returns a function type's parameter types.
func (t *Type) Params() []*Type { return t.params }

// Return returns a function type's return type.
func (t *Type) Return() *Type { return t.ret }

// EnumName returns an enum type's declared name.
func (t *Type) EnumName() string { return t.enumName }

// EnumMembers returns an enum type's member name -> ordinal mapping.
func (t *Type) EnumMembers() map[string]int { return t.members }

// EnumMemberOrder returns enum member names in declaration order.
func (t *Type) EnumMemberOrder() []string { return t.memberOrder }

// Size reports the type's size in bytes, per spec.md §3.
func (t *Type) Size() int {
	switch t.kind {
	case Byte, Bool:
		return 1
	case Word:
		return 2
	case Void:
		return 0
	case String:
		return 2 // reference: a 2-byte pointer, per spec.md's "reference type"
	case Array:
		n, sized := t.Count()
		if !sized {
			return 0
		}

		return n * t.element.Size()
	case Function:
		return 0
	case Enum:
		return 1 // enum ordinals fit a byte in this language
	default:
		return 0
	}
}

// IsSigned is always false: the source language has no signed primitives.
func (t *Type) IsSigned() bool { return false }

// IsAssignable reports whether a value of this type may appear as an
// assignment target or be held by a variable. Void and Function types are
// not assignable; Unknown is excluded from assignability checks entirely
// since it marks a type already in error.
func (t *Type) IsAssignable() bool {
	switch t.kind {
	case Void, Function, Unknown:
		return false
	default:
		return true
	}
}

func (t *Type) String() string {
	switch t.kind {
	case Array:
		if n, sized := t.Count(); sized {
			return t.element.String() + "[" + itoa(n) + "]"
		}

		return t.element.String() + "[]"
	case Enum:
		return t.enumName
	case Function:
		s := "function("
		for i, p := range t.params {
			if i > 0 {
				s += ", "
			}

			s += p.String()
		}

		return s + "): " + t.ret.String()
	default:
		return t.kind.String()
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	neg := n < 0
	if neg {
		n = -n
	}

	var buf [20]byte

	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}

	if neg {
		i--
		buf[i] = '-'
	}

	return string(buf[i:])
}

// Singleton primitive instances, per spec.md §4.3.
var (
	ByteType    = &Type{kind: Byte}
	WordType    = &Type{kind: Word}
	BoolType    = &Type{kind: Bool}
	VoidType    = &Type{kind: Void}
	StringType  = &Type{kind: String}
	UnknownType = &Type{kind: Unknown}
)
