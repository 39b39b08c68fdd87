package sema

import (
	"github.com/blendsdk/blend65-sub015/pkg/ast"
	"github.com/blendsdk/blend65-sub015/pkg/diag"
)

// analyzeUnusedFunctions marks every exported function as a reachability
// root (pkg/callgraph also treats every function flagged by MarkIndirect,
// i.e. one that makes an indirect call, as a root), then warns on every
// function left unreached that is not a stub, per spec.md §4.3 item 6.
func (a *Analyzer) analyzeUnusedFunctions(prog *ast.Program) {
	var roots []string

	for name, sig := range a.funcSigs {
		if sig.exported {
			roots = append(roots, name)
		}
	}

	a.Calls.MarkReachableFrom(roots)

	for _, name := range a.Calls.Unreachable() {
		sig, ok := a.funcSigs[name]
		if !ok || sig.decl.IsStub() {
			continue
		}

		sig.decl.Metadata().Set(ast.MetaCallGraphUnused, ast.BoolMeta(true))
		a.Sink.Warningf(diag.CodeUnusedFunction, sig.decl.Span(), "function %q is never called", name)
	}
}
