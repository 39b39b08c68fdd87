package parser

import (
	"github.com/blendsdk/blend65-sub015/pkg/ast"
	"github.com/blendsdk/blend65-sub015/pkg/diag"
	"github.com/blendsdk/blend65-sub015/pkg/lexer"
)

func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.pos

	if _, ok := p.expect(lexer.LBrace); !ok {
		return ast.NewBlockStmt(p.spanFrom(start), nil)
	}

	var stmts []ast.Stmt

	for !p.follows(lexer.RBrace) && !p.atEnd() {
		stmt := p.parseStmt()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}

	p.expect(lexer.RBrace)

	return ast.NewBlockStmt(p.spanFrom(start), stmts)
}

func (p *Parser) parseStmt() ast.Stmt {
	start := p.pos

	switch {
	case p.follows(lexer.LBrace):
		return p.parseBlock()
	case p.follows(lexer.KwIf):
		return p.parseIf()
	case p.follows(lexer.KwWhile):
		return p.parseWhile()
	case p.follows(lexer.KwFor):
		return p.parseFor()
	case p.follows(lexer.KwSwitch):
		return p.parseSwitch()
	case p.follows(lexer.KwBreak):
		p.advance()
		p.match(lexer.Semi)

		return ast.NewBreakStmt(p.spanFrom(start))
	case p.follows(lexer.KwContinue):
		p.advance()
		p.match(lexer.Semi)

		return ast.NewContinueStmt(p.spanFrom(start))
	case p.follows(lexer.KwReturn):
		p.advance()

		var value ast.Expr

		if !p.follows(lexer.Semi, lexer.RBrace) {
			value = p.parseExpr()
		}

		p.match(lexer.Semi)

		return ast.NewReturnStmt(p.spanFrom(start), value)
	case p.follows(lexer.KwLet, lexer.KwConst):
		decl := p.parseVariable()
		if decl == nil {
			return nil
		}

		v := decl.(*ast.VariableDecl)

		return ast.NewLocalVarStmt(p.spanFrom(start), v)
	default:
		tok := p.lookahead()
		if !p.canStartExpr(tok.Kind) {
			p.errorf(diag.CodeUnexpectedToken, tok.Span, "unexpected token %s in statement", tok.Kind)
			p.advance()
			p.synchronizeTo(statementStarters)

			return nil
		}

		expr := p.parseExpr()
		if !p.match(lexer.Semi) {
			p.errorf(diag.CodeExpectedToken, p.lookahead().Span, "expected ';' after expression statement")
		}

		return ast.NewExprStmt(p.spanFrom(start), expr)
	}
}

func (p *Parser) canStartExpr(k lexer.Kind) bool {
	switch k {
	case lexer.IDENT, lexer.NUMBER, lexer.STRING, lexer.TRUE, lexer.FALSE,
		lexer.LParen, lexer.LBracket, lexer.Bang, lexer.Tilde, lexer.Plus,
		lexer.Minus, lexer.At:
		return true
	default:
		return false
	}
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.pos
	p.advance() // 'if'

	p.expect(lexer.LParen)
	cond := p.parseExpr()
	p.expect(lexer.RParen)

	then := p.parseStmt()

	var els ast.Stmt

	if p.match(lexer.KwElse) {
		els = p.parseStmt()
	}

	return ast.NewIfStmt(p.spanFrom(start), cond, then, els)
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.pos
	p.advance() // 'while'

	p.expect(lexer.LParen)
	cond := p.parseExpr()
	p.expect(lexer.RParen)

	body := p.parseStmt()

	return ast.NewWhileStmt(p.spanFrom(start), cond, body)
}

// parseFor parses `for IDENT = EXPR (to|downto) EXPR [step EXPR] body`, per
// spec.md §4.2.
func (p *Parser) parseFor() ast.Stmt {
	start := p.pos
	p.advance() // 'for'

	nameTok, ok := p.expect(lexer.IDENT)
	if !ok {
		p.synchronizeTo(statementStarters)

		return nil
	}

	p.expect(lexer.Assign)

	from := p.parseExpr()

	downto := false

	switch {
	case p.match(lexer.KwTo):
	case p.match(lexer.KwDownto):
		downto = true
	default:
		tok := p.lookahead()
		p.errorf(diag.CodeExpectedToken, tok.Span, "expected 'to' or 'downto', found %s", tok.Kind)
	}

	to := p.parseExpr()

	var step ast.Expr

	if p.match(lexer.KwStep) {
		step = p.parseExpr()
	}

	body := p.parseStmt()

	return ast.NewForStmt(p.spanFrom(start), nameTok.Lexeme, from, to, downto, step, body)
}

func (p *Parser) parseSwitch() ast.Stmt {
	start := p.pos
	p.advance() // 'switch'

	p.expect(lexer.LParen)
	subject := p.parseExpr()
	p.expect(lexer.RParen)
	p.expect(lexer.LBrace)

	var cases []ast.SwitchCase

	for !p.follows(lexer.RBrace) && !p.atEnd() {
		caseStart := p.pos

		var values []ast.Expr

		if p.match(lexer.KwCase) {
			for {
				values = append(values, p.parseExpr())
				if !p.match(lexer.Comma) {
					break
				}
			}
		} else if !p.match(lexer.KwDefault) {
			tok := p.lookahead()
			p.errorf(diag.CodeUnexpectedToken, tok.Span, "expected 'case' or 'default', found %s", tok.Kind)
			p.advance()

			continue
		}

		p.expect(lexer.Colon)

		var body []ast.Stmt

		for !p.follows(lexer.KwCase, lexer.KwDefault, lexer.RBrace) && !p.atEnd() {
			stmt := p.parseStmt()
			if stmt != nil {
				body = append(body, stmt)
			}
		}

		cases = append(cases, ast.SwitchCase{Values: values, Body: body, Span: p.spanFrom(caseStart)})
	}

	p.expect(lexer.RBrace)

	return ast.NewSwitchStmt(p.spanFrom(start), subject, cases)
}
