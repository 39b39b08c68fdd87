package lexer

import (
	"testing"

	"github.com/blendsdk/blend65-sub015/pkg/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, src string) []Token {
	t.Helper()

	file := diag.NewFile("t.b65", src)
	toks, sink := Tokenize(file, Options{})
	require.Empty(t, sink.All(), "unexpected diagnostics: %v", sink.All())

	return toks
}

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}

	return out
}

func TestTokenStreamInvariants(t *testing.T) {
	for _, src := range []string{"", "let x: byte = 1;", "  \n\t ", "// comment\nlet"} {
		file := diag.NewFile("t.b65", src)
		toks, _ := Tokenize(file, Options{})

		require.NotEmpty(t, toks)
		assert.Equal(t, EOF, toks[len(toks)-1].Kind)

		for i := 1; i < len(toks); i++ {
			assert.GreaterOrEqual(t, toks[i].Span.Start(), toks[i-1].Span.Start())
		}
	}
}

func TestNumberRadices(t *testing.T) {
	assert.Equal(t, []Kind{NUMBER, EOF}, kinds(tokenize(t, "$D020")))
	assert.Equal(t, []Kind{NUMBER, EOF}, kinds(tokenize(t, "0xD020")))
	assert.Equal(t, []Kind{NUMBER, EOF}, kinds(tokenize(t, "0b1010")))
	assert.Equal(t, []Kind{NUMBER, EOF}, kinds(tokenize(t, "65535")))

	toks := tokenize(t, "$D020")
	assert.Equal(t, "$D020", toks[0].Lexeme)
}

func TestStorageClassVsAddressOf(t *testing.T) {
	toks := tokenize(t, "@zp")
	assert.Equal(t, []Kind{Zp, EOF}, kinds(toks))

	toks = tokenize(t, "@map")
	assert.Equal(t, []Kind{At, IDENT, EOF}, kinds(toks))
	assert.Equal(t, "map", toks[1].Lexeme)

	toks = tokenize(t, "@buffer + 1")
	assert.Equal(t, []Kind{At, IDENT, Plus, NUMBER, EOF}, kinds(toks))
}

func TestMaximalMunchOperators(t *testing.T) {
	assert.Equal(t, []Kind{ShlAssign, EOF}, kinds(tokenize(t, "<<=")))
	assert.Equal(t, []Kind{Shl, EOF}, kinds(tokenize(t, "<<")))
	assert.Equal(t, []Kind{Lt, EOF}, kinds(tokenize(t, "<")))
	assert.Equal(t, []Kind{EqEq, EOF}, kinds(tokenize(t, "==")))
	assert.Equal(t, []Kind{Assign, EOF}, kinds(tokenize(t, "=")))
}

func TestBinaryLiteralVsModulo(t *testing.T) {
	assert.Equal(t, []Kind{NUMBER, EOF}, kinds(tokenize(t, "%101")))

	toks := tokenize(t, "a % b")
	assert.Equal(t, []Kind{IDENT, Percent, IDENT, EOF}, kinds(toks))
}

func TestStringLiteralsAndEscapes(t *testing.T) {
	toks := tokenize(t, `"a\nb"`)
	require.Equal(t, STRING, toks[0].Kind)
	assert.Equal(t, "a\nb", DecodeString(toks[0].Lexeme))

	toks = tokenize(t, `'single'`)
	assert.Equal(t, STRING, toks[0].Kind)
	assert.Equal(t, "single", DecodeString(toks[0].Lexeme))

	// Unknown escape carries the character through literally.
	toks = tokenize(t, `"a\zb"`)
	assert.Equal(t, "azb", DecodeString(toks[0].Lexeme))
}

func TestUnterminatedStringIsFatal(t *testing.T) {
	file := diag.NewFile("t.b65", `"abc`)
	toks, sink := Tokenize(file, Options{})

	require.True(t, sink.HasErrors())
	assert.Equal(t, diag.CodeUnexpectedToken, sink.All()[0].Code)
	assert.Equal(t, EOF, toks[len(toks)-1].Kind)
}

func TestUnknownCharacterSkipsAndContinues(t *testing.T) {
	file := diag.NewFile("t.b65", "a # b")
	toks, sink := Tokenize(file, Options{})

	require.True(t, sink.HasErrors())
	assert.Equal(t, []Kind{IDENT, IDENT, EOF}, kinds(toks))
}

func TestKeywordsAndBooleans(t *testing.T) {
	toks := tokenize(t, "function main true false")
	assert.Equal(t, []Kind{KwFunction, IDENT, TRUE, FALSE, EOF}, kinds(toks))
}

func TestCommentsSkippedByDefaultKeptOnOption(t *testing.T) {
	file := diag.NewFile("t.b65", "x // hi\ny")
	toks, _ := Tokenize(file, Options{})
	assert.Equal(t, []Kind{IDENT, IDENT, EOF}, kinds(toks))

	toks, _ = Tokenize(file, Options{KeepComments: true})
	assert.Equal(t, []Kind{IDENT, LineComment, IDENT, EOF}, kinds(toks))
}
