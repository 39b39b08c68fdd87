package lexer

import "github.com/blendsdk/blend65-sub015/pkg/diag"

// Kind tags a lexical token. The zero value is EOF, so an unset Kind reads
// as EOF.
type Kind uint

// Token kinds, grouped the way spec.md §3 describes them: literals,
// identifiers, keywords, storage-class keywords, operators, punctuation,
// comments, and EOF.
const (
	EOF Kind = iota

	IDENT
	NUMBER
	STRING
	TRUE
	FALSE

	// Keywords.
	KwModule
	KwImport
	KwExport
	KwFrom
	KwFunction
	KwCallback
	KwLet
	KwConst
	KwType
	KwEnum
	KwIf
	KwElse
	KwWhile
	KwFor
	KwTo
	KwDownto
	KwStep
	KwSwitch
	KwCase
	KwDefault
	KwBreak
	KwContinue
	KwReturn

	// Storage-class keywords, a distinct `@`-prefixed subset recognized at
	// lex time (spec.md §4.1).
	Zp
	Ram
	Data
	AddressClass

	// At is the bare `@` lexeme: either the storage-class marker (when the
	// following identifier is not one of zp/ram/data/address) or the
	// address-of prefix operator.
	At

	// Punctuation.
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Semi
	Colon
	Dot
	Question

	// Operators, single then compound (maximal munch order is enforced by
	// the lexer, not by this ordering).
	Plus
	Minus
	Star
	Slash
	Percent
	Amp
	Pipe
	Caret
	Tilde
	Bang
	Assign

	PlusAssign
	MinusAssign
	StarAssign
	SlashAssign
	PercentAssign
	AmpAssign
	PipeAssign
	CaretAssign
	ShlAssign
	ShrAssign

	EqEq
	NotEq
	Lt
	LtEq
	Gt
	GtEq
	AndAnd
	OrOr
	Shl
	Shr

	LineComment
	BlockComment
)

// Keywords maps reserved identifiers to their token kind. `true`/`false` are
// handled separately since they are literal kinds, not keywords.
var Keywords = map[string]Kind{
	"module":   KwModule,
	"import":   KwImport,
	"export":   KwExport,
	"from":     KwFrom,
	"function": KwFunction,
	"callback": KwCallback,
	"let":      KwLet,
	"const":    KwConst,
	"type":     KwType,
	"enum":     KwEnum,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"for":      KwFor,
	"to":       KwTo,
	"downto":   KwDownto,
	"step":     KwStep,
	"switch":   KwSwitch,
	"case":     KwCase,
	"default":  KwDefault,
	"break":    KwBreak,
	"continue": KwContinue,
	"return":   KwReturn,
}

// StorageClassKeywords maps the `@`-prefixed storage-class lexeme (without
// the leading `@`) to its token kind.
var StorageClassKeywords = map[string]Kind{
	"zp":      Zp,
	"ram":     Ram,
	"data":    Data,
	"address": AddressClass,
}

// String renders a human-readable name for a token kind, used in diagnostics
// and tests.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "UNKNOWN"
}

var kindNames = map[Kind]string{
	EOF:           "EOF",
	IDENT:         "IDENT",
	NUMBER:        "NUMBER",
	STRING:        "STRING",
	TRUE:          "TRUE",
	FALSE:         "FALSE",
	KwModule:      "module",
	KwImport:      "import",
	KwExport:      "export",
	KwFrom:        "from",
	KwFunction:    "function",
	KwCallback:    "callback",
	KwLet:         "let",
	KwConst:       "const",
	KwType:        "type",
	KwEnum:        "enum",
	KwIf:          "if",
	KwElse:        "else",
	KwWhile:       "while",
	KwFor:         "for",
	KwTo:          "to",
	KwDownto:      "downto",
	KwStep:        "step",
	KwSwitch:      "switch",
	KwCase:        "case",
	KwDefault:     "default",
	KwBreak:       "break",
	KwContinue:    "continue",
	KwReturn:      "return",
	Zp:            "ZP",
	Ram:           "RAM",
	Data:          "DATA",
	AddressClass:  "ADDRESS",
	At:            "AT",
	LParen:        "(",
	RParen:        ")",
	LBrace:        "{",
	RBrace:        "}",
	LBracket:      "[",
	RBracket:      "]",
	Comma:         ",",
	Semi:          ";",
	Colon:         ":",
	Dot:           ".",
	Question:      "?",
	Plus:          "+",
	Minus:         "-",
	Star:          "*",
	Slash:         "/",
	Percent:       "%",
	Amp:           "&",
	Pipe:          "|",
	Caret:         "^",
	Tilde:         "~",
	Bang:          "!",
	Assign:        "=",
	PlusAssign:    "+=",
	MinusAssign:   "-=",
	StarAssign:    "*=",
	SlashAssign:   "/=",
	PercentAssign: "%=",
	AmpAssign:     "&=",
	PipeAssign:    "|=",
	CaretAssign:   "^=",
	ShlAssign:     "<<=",
	ShrAssign:     ">>=",
	EqEq:          "==",
	NotEq:         "!=",
	Lt:            "<",
	LtEq:          "<=",
	Gt:            ">",
	GtEq:          ">=",
	AndAnd:        "&&",
	OrOr:          "||",
	Shl:           "<<",
	Shr:           ">>",
	LineComment:   "LINE_COMMENT",
	BlockComment:  "BLOCK_COMMENT",
}

// Token associates a span of the source file with a token kind, along with
// the raw lexeme it covers. Numeric literals keep their raw prefix (`$`,
// `0x`, `0b`, `%` or bare decimal) so the radix is reconstructable, per
// spec.md §3.
type Token struct {
	Kind   Kind
	Span   diag.Span
	Lexeme string
}
