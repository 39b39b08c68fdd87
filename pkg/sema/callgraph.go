package sema

import (
	"github.com/blendsdk/blend65-sub015/pkg/ast"
	"github.com/blendsdk/blend65-sub015/pkg/callgraph"
	"github.com/blendsdk/blend65-sub015/pkg/types"
)

// inlineSizeStmtCeiling is the exclusive statement-count ceiling (including
// statements nested inside blocks/conditionals/loops) spec.md §4.3 item 5
// sets for inline candidates: "size < 10 statements".
const inlineSizeStmtCeiling = 10

// inlineCallSiteCeiling is the exclusive upper bound on total call sites a
// candidate may have; spec.md §4.3 item 5 requires "0 < call count < 5".
const inlineCallSiteCeiling = 5

// analyzeCallGraph records every direct call edge (an indirect call - a call
// whose callee does not resolve to a known function - only marks the caller
// as having indirect calls, per spec.md §4.3 item 5), computes recursion,
// and flags inline candidates by spec.md's exact rule: body under 10
// statements (recursively counted through nested blocks/conditionals/
// loops), not recursive, total call-site count in (0, 5), not exported, no
// indirect calls anywhere in the body, and no loops or switch statements in
// the body.
func (a *Analyzer) analyzeCallGraph(prog *ast.Program) {
	for _, d := range prog.Declarations {
		a.collectCallEdges(d)
	}

	a.Calls.ComputeRecursion()

	for name, sig := range a.funcSigs {
		node := a.Calls.Node(name)
		if node == nil || sig.decl.Body == nil {
			continue
		}

		total := totalCallSitesOf(a.Calls, name)
		hint := !node.Recursive &&
			!sig.exported &&
			!node.Indirect &&
			total > 0 && total < inlineCallSiteCeiling &&
			countStmts(sig.decl.Body.Stmts) < inlineSizeStmtCeiling &&
			!hasLoopOrSwitch(sig.decl.Body.Stmts)

		node.InlineHint = hint

		sig.decl.Metadata().Set(ast.MetaCallGraphIsRecursive, ast.BoolMeta(node.Recursive))
		sig.decl.Metadata().Set(ast.MetaCallGraphCallCount, ast.IntMeta(int64(total)))
		sig.decl.Metadata().Set(ast.MetaCallGraphHasIndirectCalls, ast.BoolMeta(node.Indirect))

		if hint {
			sig.decl.Metadata().Set(ast.MetaCallGraphInlineCandidate, ast.BoolMeta(true))
		}
	}
}

// totalCallSitesOf sums, over every declared function (name itself
// included), how many times it calls name directly.
func totalCallSitesOf(g *callgraph.Graph, name string) int {
	total := 0

	for _, caller := range g.Nodes() {
		total += caller.CallSiteCount(name)
	}

	return total
}

// hasLoopOrSwitch reports whether stmts contains a while/for/switch at any
// nesting depth.
func hasLoopOrSwitch(stmts []ast.Stmt) bool {
	for _, s := range stmts {
		switch stmt := s.(type) {
		case *ast.WhileStmt, *ast.ForStmt, *ast.SwitchStmt:
			return true
		case *ast.BlockStmt:
			if hasLoopOrSwitch(stmt.Stmts) {
				return true
			}
		case *ast.IfStmt:
			if hasLoopOrSwitch([]ast.Stmt{stmt.Then}) {
				return true
			}

			if stmt.Else != nil && hasLoopOrSwitch([]ast.Stmt{stmt.Else}) {
				return true
			}
		}
	}

	return false
}

func (a *Analyzer) collectCallEdges(d ast.Declaration) {
	switch decl := d.(type) {
	case *ast.ExportDecl:
		a.collectCallEdges(decl.Inner)

	case *ast.FunctionDecl:
		if decl.Body == nil {
			return
		}

		a.collectCallEdgesInStmts(decl.Name, decl.Body.Stmts)
	}
}

func (a *Analyzer) collectCallEdgesInStmts(caller string, stmts []ast.Stmt) {
	for _, s := range stmts {
		a.collectCallEdgesInStmt(caller, s)
	}
}

func (a *Analyzer) collectCallEdgesInStmt(caller string, s ast.Stmt) {
	switch stmt := s.(type) {
	case *ast.BlockStmt:
		a.collectCallEdgesInStmts(caller, stmt.Stmts)

	case *ast.IfStmt:
		a.collectCallEdgesInExpr(caller, stmt.Cond)
		a.collectCallEdgesInStmt(caller, stmt.Then)

		if stmt.Else != nil {
			a.collectCallEdgesInStmt(caller, stmt.Else)
		}

	case *ast.WhileStmt:
		a.collectCallEdgesInExpr(caller, stmt.Cond)
		a.collectCallEdgesInStmt(caller, stmt.Body)

	case *ast.ForStmt:
		a.collectCallEdgesInExpr(caller, stmt.Start)
		a.collectCallEdgesInExpr(caller, stmt.End)

		if stmt.Step != nil {
			a.collectCallEdgesInExpr(caller, stmt.Step)
		}

		a.collectCallEdgesInStmt(caller, stmt.Body)

	case *ast.SwitchStmt:
		a.collectCallEdgesInExpr(caller, stmt.Subject)

		for _, c := range stmt.Cases {
			for _, v := range c.Values {
				a.collectCallEdgesInExpr(caller, v)
			}

			a.collectCallEdgesInStmts(caller, c.Body)
		}

	case *ast.ReturnStmt:
		a.collectCallEdgesInExpr(caller, stmt.Value)

	case *ast.ExprStmt:
		a.collectCallEdgesInExpr(caller, stmt.Expr)

	case *ast.LocalVarStmt:
		a.collectCallEdgesInExpr(caller, stmt.Decl.Init)
	}
}

func (a *Analyzer) collectCallEdgesInExpr(caller string, e ast.Expr) {
	if e == nil {
		return
	}

	switch expr := e.(type) {
	case *ast.BinaryExpr:
		a.collectCallEdgesInExpr(caller, expr.Left)
		a.collectCallEdgesInExpr(caller, expr.Right)

	case *ast.UnaryExpr:
		a.collectCallEdgesInExpr(caller, expr.Operand)

	case *ast.TernaryExpr:
		a.collectCallEdgesInExpr(caller, expr.Cond)
		a.collectCallEdgesInExpr(caller, expr.Then)
		a.collectCallEdgesInExpr(caller, expr.Else)

	case *ast.CallExpr:
		switch {
		case isIntrinsic(expr.Callee):
			// Not a user-function call at all; no call-graph edge.

		case a.funcSigs[expr.Callee] != nil:
			a.Calls.AddCall(caller, expr.Callee)

		default:
			// The callee doesn't name a declared function or intrinsic: if
			// it resolves to a callback-typed variable, this is a genuine
			// indirect call, per spec.md §4.3 item 5. Otherwise it's an
			// undefined identifier the type checker has already reported.
			if sym := a.Table.Lookup(expr.Callee); sym != nil && sym.Type != nil && sym.Type.Kind() == types.Function {
				a.Calls.MarkIndirect(caller)
			}
		}

		for _, arg := range expr.Args {
			a.collectCallEdgesInExpr(caller, arg)
		}

	case *ast.IndexExpr:
		a.collectCallEdgesInExpr(caller, expr.Base)
		a.collectCallEdgesInExpr(caller, expr.Index)

	case *ast.ArrayLiteralExpr:
		for _, el := range expr.Elements {
			a.collectCallEdgesInExpr(caller, el)
		}

	case *ast.AssignExpr:
		a.collectCallEdgesInExpr(caller, expr.Target)
		a.collectCallEdgesInExpr(caller, expr.Value)
	}
}

// countStmts counts a function body's statements, recursing into nested
// blocks/conditionals/loops, per spec.md §4.3 item 5's inline-size metric.
func countStmts(stmts []ast.Stmt) int {
	n := 0

	for _, s := range stmts {
		n++

		switch stmt := s.(type) {
		case *ast.BlockStmt:
			n += countStmts(stmt.Stmts)
		case *ast.IfStmt:
			n += countStmts([]ast.Stmt{stmt.Then})
			if stmt.Else != nil {
				n += countStmts([]ast.Stmt{stmt.Else})
			}
		case *ast.WhileStmt:
			n += countStmts([]ast.Stmt{stmt.Body})
		case *ast.ForStmt:
			n += countStmts([]ast.Stmt{stmt.Body})
		case *ast.SwitchStmt:
			for _, c := range stmt.Cases {
				n += countStmts(c.Body)
			}
		}
	}

	return n
}
