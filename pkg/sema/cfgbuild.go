package sema

import (
	"github.com/blendsdk/blend65-sub015/pkg/ast"
	"github.com/blendsdk/blend65-sub015/pkg/cfg"
	"github.com/blendsdk/blend65-sub015/pkg/diag"
)

// funcCFG is one function's control-flow graph, built by walking its body
// once: every statement contributes edges to the block it starts in, if
// statements fork to a merge block, loops add a back edge to their header,
// and break/continue redirect to the innermost loop's exit/header.
type funcCFG struct {
	Graph *cfg.Graph
	Entry cfg.BlockID
	Exit  cfg.BlockID
}

// cfgBuilder accumulates edges before the final block count is known, since
// cfg.NewGraph needs an exact block count up front.
type cfgBuilder struct {
	edges   [][2]cfg.BlockID
	next    cfg.BlockID
	current cfg.BlockID
	exit    cfg.BlockID

	breakTargets    []cfg.BlockID
	continueTargets []cfg.BlockID
}

func newCFGBuilder() *cfgBuilder {
	return &cfgBuilder{}
}

func (b *cfgBuilder) newBlock() cfg.BlockID {
	id := b.next
	b.next++

	return id
}

func (b *cfgBuilder) edge(from, to cfg.BlockID) {
	b.edges = append(b.edges, [2]cfg.BlockID{from, to})
}

func (b *cfgBuilder) build() *cfg.Graph {
	g := cfg.NewGraph(int(b.next))

	for _, e := range b.edges {
		g.AddEdge(e[0], e[1])
	}

	return g
}

// analyzeControlFlow builds every function's CFG and, in the same walk,
// reports UNREACHABLE_CODE for any statement following one that
// unconditionally diverts control flow (return, break, continue, or an
// if/else whose branches both terminate), per spec.md §4.3 item 4.
func (a *Analyzer) analyzeControlFlow(prog *ast.Program) {
	for _, d := range prog.Declarations {
		a.analyzeControlFlowDecl(d)
	}
}

func (a *Analyzer) analyzeControlFlowDecl(d ast.Declaration) {
	switch decl := d.(type) {
	case *ast.ExportDecl:
		a.analyzeControlFlowDecl(decl.Inner)

	case *ast.FunctionDecl:
		if decl.Body == nil {
			return
		}

		b := newCFGBuilder()
		entry := b.newBlock()
		exit := b.newBlock()
		b.exit = exit
		b.current = entry

		terminated := a.walkBlockStmts(b, decl.Body.Stmts)
		if !terminated {
			b.edge(b.current, exit)
		}

		a.FuncCFGs[decl.Name] = &funcCFG{Graph: b.build(), Entry: entry, Exit: exit}
	}
}

// walkBlockStmts walks a statement list in order, reporting UNREACHABLE_CODE
// on every statement following one that terminates control flow, and
// returns whether the list as a whole terminates.
func (a *Analyzer) walkBlockStmts(b *cfgBuilder, stmts []ast.Stmt) bool {
	terminated := false

	for _, s := range stmts {
		if terminated {
			a.Sink.Warningf(diag.CodeUnreachableCode, s.Span(), "unreachable code")

			continue
		}

		terminated = a.walkStmt(b, s)
	}

	return terminated
}

// walkStmt adds s's control-flow edges starting from b.current, leaving
// b.current positioned at the block subsequent statements append to, and
// returns whether s unconditionally diverts control flow away from falling
// through.
func (a *Analyzer) walkStmt(b *cfgBuilder, s ast.Stmt) bool {
	switch stmt := s.(type) {
	case *ast.BlockStmt:
		return a.walkBlockStmts(b, stmt.Stmts)

	case *ast.IfStmt:
		return a.walkIf(b, stmt)

	case *ast.WhileStmt:
		return a.walkWhile(b, stmt)

	case *ast.ForStmt:
		return a.walkFor(b, stmt)

	case *ast.SwitchStmt:
		return a.walkSwitch(b, stmt)

	case *ast.BreakStmt:
		if len(b.breakTargets) > 0 {
			b.edge(b.current, b.breakTargets[len(b.breakTargets)-1])
		}

		return true

	case *ast.ContinueStmt:
		if len(b.continueTargets) > 0 {
			b.edge(b.current, b.continueTargets[len(b.continueTargets)-1])
		}

		return true

	case *ast.ReturnStmt:
		b.edge(b.current, b.exit)

		return true

	default:
		// ExprStmt, LocalVarStmt: straight-line, no control-flow effect.
		return false
	}
}

func (a *Analyzer) walkIf(b *cfgBuilder, stmt *ast.IfStmt) bool {
	ifBlock := b.current

	thenBlock := b.newBlock()
	b.edge(ifBlock, thenBlock)
	b.current = thenBlock
	thenTerm := a.walkStmt(b, stmt.Then)
	thenEnd := b.current

	if stmt.Else == nil {
		merge := b.newBlock()
		b.edge(ifBlock, merge)

		if !thenTerm {
			b.edge(thenEnd, merge)
		}

		b.current = merge

		return false
	}

	elseBlock := b.newBlock()
	b.edge(ifBlock, elseBlock)
	b.current = elseBlock
	elseTerm := a.walkStmt(b, stmt.Else)
	elseEnd := b.current

	if thenTerm && elseTerm {
		// Both branches terminate: anything syntactically following this
		// if-statement is unreachable, which walkBlockStmts' caller
		// establishes by this function returning true. No merge block is
		// wired in, since nothing reaches it.
		b.current = b.newBlock()

		return true
	}

	merge := b.newBlock()

	if !thenTerm {
		b.edge(thenEnd, merge)
	}

	if !elseTerm {
		b.edge(elseEnd, merge)
	}

	b.current = merge

	return false
}

func (a *Analyzer) walkWhile(b *cfgBuilder, stmt *ast.WhileStmt) bool {
	header := b.newBlock()
	b.edge(b.current, header)

	bodyBlock := b.newBlock()
	after := b.newBlock()
	b.edge(header, bodyBlock)
	b.edge(header, after)

	b.breakTargets = append(b.breakTargets, after)
	b.continueTargets = append(b.continueTargets, header)

	b.current = bodyBlock
	bodyTerm := a.walkStmt(b, stmt.Body)

	if !bodyTerm {
		b.edge(b.current, header)
	}

	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]

	b.current = after

	return false
}

// walkFor lowers the `for IDENT = start (to|downto) end [step k] body` form
// to the same header/body/after shape as a while loop, per spec.md §4.4's
// note that for-loops lower onto the same CFG pattern as while loops.
func (a *Analyzer) walkFor(b *cfgBuilder, stmt *ast.ForStmt) bool {
	header := b.newBlock()
	b.edge(b.current, header)

	bodyBlock := b.newBlock()
	after := b.newBlock()
	b.edge(header, bodyBlock)
	b.edge(header, after)

	b.breakTargets = append(b.breakTargets, after)
	b.continueTargets = append(b.continueTargets, header)

	b.current = bodyBlock
	bodyTerm := a.walkStmt(b, stmt.Body)

	if !bodyTerm {
		b.edge(b.current, header)
	}

	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]

	b.current = after

	return false
}

func (a *Analyzer) walkSwitch(b *cfgBuilder, stmt *ast.SwitchStmt) bool {
	subjectBlock := b.current
	after := b.newBlock()

	b.breakTargets = append(b.breakTargets, after)

	hasDefault := false

	for _, c := range stmt.Cases {
		if len(c.Values) == 0 {
			hasDefault = true
		}

		caseBlock := b.newBlock()
		b.edge(subjectBlock, caseBlock)
		b.current = caseBlock

		caseTerm := a.walkBlockStmts(b, c.Body)
		if !caseTerm {
			b.edge(b.current, after)
		}
	}

	if !hasDefault {
		b.edge(subjectBlock, after)
	}

	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	b.current = after

	return false
}
