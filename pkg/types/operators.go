package types

import "github.com/blendsdk/blend65-sub015/pkg/lexer"

// IsNumeric reports whether a type participates in arithmetic/bitwise
// operators (byte, word, bool and enum are all treated as numeric, since
// bool/enum are represented as small integers at the IL level).
func IsNumeric(t *Type) bool {
	switch t.kind {
	case Byte, Word, Bool, Enum:
		return true
	default:
		return false
	}
}

// widerOf returns whichever of byte/word is the wider representation; bool
// and enum are treated as byte-width for this purpose.
func widerOf(a, b *Type) *Type {
	if a.kind == Word || b.kind == Word {
		return WordType
	}

	return ByteType
}

// BinaryResult computes the result type of applying a binary operator to
// two operand types, per spec.md §4.3: arithmetic/bitwise/shift preserve
// the wider operand width; comparisons and logical operators return bool.
// The bool result reports whether the operator/operand combination is
// legal at all.
func BinaryResult(op lexer.Kind, left, right *Type) (*Type, bool) {
	switch op {
	case lexer.Plus, lexer.Minus, lexer.Star, lexer.Slash, lexer.Percent,
		lexer.Amp, lexer.Pipe, lexer.Caret, lexer.Shl, lexer.Shr:
		if !IsNumeric(left) || !IsNumeric(right) {
			return UnknownType, false
		}

		return widerOf(left, right), true

	case lexer.EqEq, lexer.NotEq, lexer.Lt, lexer.LtEq, lexer.Gt, lexer.GtEq:
		if !IsNumeric(left) || !IsNumeric(right) {
			return UnknownType, false
		}

		return BoolType, true

	case lexer.AndAnd, lexer.OrOr:
		// byte/word are treated as boolean by nonzero test, per spec.md §4.3.
		if !IsNumeric(left) || !IsNumeric(right) {
			return UnknownType, false
		}

		return BoolType, true

	default:
		return UnknownType, false
	}
}

// UnaryResult computes the result type of a prefix unary operator.
func UnaryResult(op lexer.Kind, operand *Type) (*Type, bool) {
	switch op {
	case lexer.Bang:
		if !IsNumeric(operand) {
			return UnknownType, false
		}

		return BoolType, true

	case lexer.Tilde, lexer.Plus, lexer.Minus:
		if !IsNumeric(operand) {
			return UnknownType, false
		}

		if operand.kind == Bool || operand.kind == Enum {
			return ByteType, true
		}

		return operand, true

	case lexer.At:
		// Address-of always yields a word (a 6502 address).
		return WordType, true

	default:
		return UnknownType, false
	}
}
