// Package ilgen lowers an annotated AST into the IL data model of pkg/il,
// per spec.md §4.4's five phases: imports, globals, function stubs, function
// bodies, exports & entry point.
//
// Grounded on Consensys-go-corset/pkg/corset/compiler/translator.go's single
// translator type holding the current emission target (there, a constraint
// set being built; here, the current basic block), and its companion
// allocation.go for the per-function register/block-ID allocation pattern
// pkg/il's Function already implements.
package ilgen

import (
	"github.com/blendsdk/blend65-sub015/pkg/ast"
	"github.com/blendsdk/blend65-sub015/pkg/diag"
	"github.com/blendsdk/blend65-sub015/pkg/il"
	"github.com/blendsdk/blend65-sub015/pkg/sema"
	"github.com/blendsdk/blend65-sub015/pkg/types"
)

// builder holds the state threaded through all five lowering phases: the
// module under construction, the semantic analyzer results lowering reads
// resolved types and constant folds from, the function/block currently being
// emitted into, and the lexical stack of variable-name-to-register bindings
// used to resolve OpVarRef reads against the nearest enclosing declaration.
type builder struct {
	sem  *sema.Analyzer
	sink *diag.Sink

	module *il.Module

	fn    *il.Function
	block *il.BasicBlock

	// scopes maps a surface variable/parameter name to its internal,
	// disambiguated VarName within the scope stack (innermost last), so two
	// declarations that shadow one another under the same surface name get
	// distinct def-sites for pkg/ssa's phi placement to key on.
	scopes []map[string]string
	// varSeq counts how many variables have been declared under a given
	// surface name so far in the current function, to mint a fresh internal
	// name on shadowing (the first declaration keeps the surface name
	// unchanged).
	varSeq map[string]int

	breakTargets    []il.BlockID
	continueTargets []il.BlockID
}

// Lower runs the five phases of spec.md §4.4 over prog, using sem (an
// already-completed semantic analysis run) to resolve expression types and
// constant folds, and returns the IL module plus a sink of lowering
// diagnostics (spec.md §7 item 4: a lowering error abandons the offending
// construct but the module continues to lower).
func Lower(prog *ast.Program, sem *sema.Analyzer) (*il.Module, *diag.Sink) {
	b := &builder{
		sem:    sem,
		sink:   diag.NewSink(),
		module: &il.Module{Name: prog.Module.Name},
	}

	b.lowerImports(prog)
	b.lowerGlobals(prog)
	b.createFunctionStubs(prog)
	b.lowerFunctionBodies(prog)
	b.lowerExportsAndEntry(prog)

	return b.module, b.sink
}

// lowerImports is phase 1: import declarations are recorded as bookkeeping
// entries with no IL generated for them, per spec.md §4.4 item 1.
func (b *builder) lowerImports(prog *ast.Program) {
	for _, d := range prog.Declarations {
		imp, ok := d.(*ast.ImportDecl)
		if !ok {
			continue
		}

		path := imp.Path
		for _, name := range imp.Names {
			b.module.Imports = append(b.module.Imports, il.Import{LocalName: name, ModulePath: joinPath(path)})
		}
	}
}

func joinPath(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "."
		}

		out += p
	}

	return out
}

// lowerExportsAndEntry is phase 5: every `export` item becomes an
// il.Export, and a function literally named `main` is designated the
// module's entry point, per spec.md §4.4 item 5.
func (b *builder) lowerExportsAndEntry(prog *ast.Program) {
	for _, d := range prog.Declarations {
		exp, ok := d.(*ast.ExportDecl)
		if !ok {
			continue
		}

		switch inner := exp.Inner.(type) {
		case *ast.FunctionDecl:
			b.module.Exports = append(b.module.Exports, il.Export{LocalName: inner.Name, ExportName: inner.Name, Kind: il.ExportFunction})
		case *ast.VariableDecl:
			b.module.Exports = append(b.module.Exports, il.Export{LocalName: inner.Name, ExportName: inner.Name, Kind: il.ExportVariable})
		case *ast.TypeAliasDecl:
			b.module.Exports = append(b.module.Exports, il.Export{LocalName: inner.Name, ExportName: inner.Name, Kind: il.ExportType})
		case *ast.EnumDecl:
			b.module.Exports = append(b.module.Exports, il.Export{LocalName: inner.Name, ExportName: inner.Name, Kind: il.ExportEnum})
		}
	}

	if b.module.Function("main") != nil {
		b.module.EntryPoint = "main"
	}
}

// toILStorage maps the front end's storage-class tag to the IL's, per
// spec.md §4.4 item 2's mapping table (`@zp`->ZeroPage, `@ram`->Ram,
// `@data`->Data, no prefix->Ram, memory-mapped->Map).
func toILStorage(s ast.StorageClass) il.StorageClass {
	switch s {
	case ast.StorageZeroPage:
		return il.ZeroPage
	case ast.StorageData:
		return il.Data
	case ast.StorageMap:
		return il.Map
	default:
		return il.Ram
	}
}

// toILType maps a resolved front-end type to the IL's narrower type tag.
// Arrays map to their element type (il.GlobalVariable/il.Param carry the
// element count separately); enums map to Byte, since enum ordinals fit a
// byte in this language (pkg/types.Type.Size already makes the same call).
func toILType(t *types.Type) il.Type {
	switch t.Kind() {
	case types.Byte, types.Enum:
		return il.Byte
	case types.Word:
		return il.Word
	case types.Bool:
		return il.Bool
	case types.Array:
		return toILType(t.Element())
	default:
		return il.Void
	}
}

// resolvedType looks up e's type as the type checker resolved it; falls
// back to Unknown if lowering is ever handed an expression the type checker
// never visited (should not happen for a program that reached ilgen, but
// lowering is defensive here rather than panicking).
func (b *builder) resolvedType(e ast.Expr) *types.Type {
	if t, ok := b.sem.ExprTypes[e]; ok && t != nil {
		return t
	}

	return types.UnknownType
}
