package parser

import (
	"strconv"
	"strings"

	"github.com/blendsdk/blend65-sub015/pkg/ast"
	"github.com/blendsdk/blend65-sub015/pkg/diag"
	"github.com/blendsdk/blend65-sub015/pkg/lexer"
)

// compoundAssignOps are the assignment-expression operator kinds, per
// spec.md §4.2's "Assignment operators include all compound forms".
var compoundAssignOps = map[lexer.Kind]bool{
	lexer.Assign: true, lexer.PlusAssign: true, lexer.MinusAssign: true,
	lexer.StarAssign: true, lexer.SlashAssign: true, lexer.PercentAssign: true,
	lexer.AmpAssign: true, lexer.PipeAssign: true, lexer.CaretAssign: true,
	lexer.ShlAssign: true, lexer.ShrAssign: true,
}

// binaryPrecedence implements spec.md §4.2's precedence table (low to
// high, excluding assignment and ternary which are handled by their own
// recursive-descent levels above this climbing loop): logical-or,
// logical-and, bitwise-or, bitwise-xor, bitwise-and, equality, relational,
// shift, additive, multiplicative. Higher numbers bind tighter.
func binaryPrecedence(k lexer.Kind) (int, bool) {
	switch k {
	case lexer.OrOr:
		return 1, true
	case lexer.AndAnd:
		return 2, true
	case lexer.Pipe:
		return 3, true
	case lexer.Caret:
		return 4, true
	case lexer.Amp:
		return 5, true
	case lexer.EqEq, lexer.NotEq:
		return 6, true
	case lexer.Lt, lexer.LtEq, lexer.Gt, lexer.GtEq:
		return 7, true
	case lexer.Shl, lexer.Shr:
		return 8, true
	case lexer.Plus, lexer.Minus:
		return 9, true
	case lexer.Star, lexer.Slash, lexer.Percent:
		return 10, true
	default:
		return 0, false
	}
}

// parseExpr is the entry point for any expression context.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssignment()
}

// parseAssignment handles the lowest (right-associative) precedence level.
func (p *Parser) parseAssignment() ast.Expr {
	start := p.pos

	left := p.parseTernary()

	if compoundAssignOps[p.lookahead().Kind] {
		op := p.advance().Kind
		value := p.parseAssignment()

		return ast.NewAssignExpr(p.spanFrom(start), op, left, value)
	}

	return left
}

// parseTernary handles `cond ? then : else`, right-associative.
func (p *Parser) parseTernary() ast.Expr {
	start := p.pos

	cond := p.parseBinary(1)

	if !p.match(lexer.Question) {
		return cond
	}

	then := p.parseAssignment()
	p.expect(lexer.Colon)
	els := p.parseTernary()

	return ast.NewTernaryExpr(p.spanFrom(start), cond, then, els)
}

// parseBinary is precedence-climbing over the left-associative binary
// operator levels.
func (p *Parser) parseBinary(minPrec int) ast.Expr {
	start := p.pos

	left := p.parseUnary()

	for {
		prec, ok := binaryPrecedence(p.lookahead().Kind)
		if !ok || prec < minPrec {
			return left
		}

		op := p.advance().Kind
		right := p.parseBinary(prec + 1)
		left = ast.NewBinaryExpr(p.spanFrom(start), op, left, right)
	}
}

// parseUnary handles the right-associative prefix operators `!`, `~`, `+`,
// `-`, `@`. The `@` (address-of) form is legal only directly on an
// identifier, per spec.md §4.2.
func (p *Parser) parseUnary() ast.Expr {
	start := p.pos

	if p.follows(lexer.At) {
		p.advance()

		tok, ok := p.expect(lexer.IDENT)
		if !ok {
			p.errorf(diag.CodeInvalidOperand, p.spanFrom(start), "'@' (address-of) is only legal directly on an identifier")

			return ast.NewIdentifierExpr(p.spanFrom(start), "")
		}

		return ast.NewUnaryExpr(p.spanFrom(start), lexer.At, ast.NewIdentifierExpr(tok.Span, tok.Lexeme))
	}

	if p.follows(lexer.Bang, lexer.Tilde, lexer.Plus, lexer.Minus) {
		op := p.advance().Kind
		operand := p.parseUnary()

		return ast.NewUnaryExpr(p.spanFrom(start), op, operand)
	}

	return p.parsePostfix()
}

// parsePostfix handles `a[i]` (chainable) and `a.b` (only on a bare
// identifier, never chained further), per spec.md §4.2.
func (p *Parser) parsePostfix() ast.Expr {
	start := p.pos

	expr := p.parseAtomic()

	for {
		switch {
		case p.match(lexer.LBracket):
			index := p.parseExpr()
			p.expect(lexer.RBracket)
			expr = ast.NewIndexExpr(p.spanFrom(start), expr, index)

		case p.follows(lexer.Dot):
			ident, ok := expr.(*ast.IdentifierExpr)
			if !ok {
				tok := p.lookahead()
				p.errorf(diag.CodeInvalidOperand, tok.Span, "member access ('.') is only legal directly on an identifier")

				return expr
			}

			p.advance()

			memberTok, ok := p.expect(lexer.IDENT)
			if !ok {
				return expr
			}

			return ast.NewMemberExpr(p.spanFrom(start), ident.Name, memberTok.Lexeme)

		default:
			return expr
		}
	}
}

// parseAtomic parses literals, parenthesized expressions, array literals,
// identifiers, and calls (`name(args)`, legal only on a bare identifier per
// spec.md §4.2).
func (p *Parser) parseAtomic() ast.Expr {
	start := p.pos
	tok := p.lookahead()

	switch tok.Kind {
	case lexer.NUMBER:
		p.advance()

		return ast.NewNumberLiteral(tok.Span, decodeNumber(tok.Lexeme))

	case lexer.STRING:
		p.advance()

		return ast.NewStringLiteral(tok.Span, lexer.DecodeString(tok.Lexeme))

	case lexer.TRUE:
		p.advance()

		return ast.NewBoolLiteral(tok.Span, true)

	case lexer.FALSE:
		p.advance()

		return ast.NewBoolLiteral(tok.Span, false)

	case lexer.LParen:
		p.advance()

		inner := p.parseExpr()
		p.expect(lexer.RParen)

		return inner

	case lexer.LBracket:
		return p.parseArrayLiteral()

	case lexer.IDENT:
		p.advance()

		if p.follows(lexer.LParen) {
			return p.parseCallArgs(start, tok.Lexeme)
		}

		return ast.NewIdentifierExpr(tok.Span, tok.Lexeme)

	default:
		p.errorf(diag.CodeUnexpectedToken, tok.Span, "expected an expression, found %s", tok.Kind)
		p.advance()

		return ast.NewIdentifierExpr(tok.Span, "")
	}
}

func (p *Parser) parseCallArgs(start int, callee string) ast.Expr {
	p.advance() // '('

	var args []ast.Expr

	for !p.follows(lexer.RParen) && !p.atEnd() {
		args = append(args, p.parseExpr())

		if !p.match(lexer.Comma) {
			break
		}
	}

	p.expect(lexer.RParen)

	return ast.NewCallExpr(p.spanFrom(start), callee, args)
}

func (p *Parser) parseArrayLiteral() ast.Expr {
	start := p.pos
	p.advance() // '['

	var elements []ast.Expr

	for !p.follows(lexer.RBracket) && !p.atEnd() {
		elements = append(elements, p.parseExpr())

		if !p.match(lexer.Comma) {
			break
		}
	}

	p.expect(lexer.RBracket)

	return ast.NewArrayLiteralExpr(p.spanFrom(start), elements)
}

// decodeNumber parses a NUMBER token's raw, prefix-carrying lexeme into its
// numeric value, per spec.md §4.1's four radices. A value that does not fit
// in 32 bits fails strconv's range check and decodes as 0; any other value is
// returned unchanged, and the type checker reports TYPE_MISMATCH for a
// literal above 0xFFFF.
func decodeNumber(lexeme string) uint32 {
	var (
		digits string
		base   int
	)

	switch {
	case strings.HasPrefix(lexeme, "$"):
		digits, base = lexeme[1:], 16
	case strings.HasPrefix(lexeme, "0x") || strings.HasPrefix(lexeme, "0X"):
		digits, base = lexeme[2:], 16
	case strings.HasPrefix(lexeme, "0b") || strings.HasPrefix(lexeme, "0B"):
		digits, base = lexeme[2:], 2
	case strings.HasPrefix(lexeme, "%"):
		digits, base = lexeme[1:], 2
	default:
		digits, base = lexeme, 10
	}

	v, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return 0
	}

	return uint32(v)
}

// parseTypeExpr parses a type annotation: a bare name or an array form
// `T[N]`/`T[]`, with nesting permitted for multi-dimensional arrays.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	start := p.pos

	nameTok, ok := p.expect(lexer.IDENT)

	var base ast.TypeExpr

	if ok {
		base = ast.NewNamedTypeExpr(nameTok.Span, nameTok.Lexeme)
	} else {
		base = ast.NewNamedTypeExpr(p.spanFrom(start), "")
	}

	for p.match(lexer.LBracket) {
		var count ast.Expr

		if !p.follows(lexer.RBracket) {
			count = p.parseExpr()
		}

		p.expect(lexer.RBracket)

		base = ast.NewArrayTypeExpr(p.spanFrom(start), base, count)
	}

	return base
}
