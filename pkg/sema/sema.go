// Package sema implements the semantic analyzer of spec.md §4.3: a sequence
// of AST walkers sharing one symbol table and diagnostic sink, each
// responsible for one concern (declaration collection, type checking,
// lvalue checking, control-flow analysis, call-graph analysis, unused
// function detection).
//
// Grounded on Consensys-go-corset/pkg/corset/compiler's multi-pass resolver
// pipeline (environment construction, then type resolution, then a
// validation pass), generalized here from corset's constraint-column
// resolution to this language's variable/function/type resolution.
package sema

import (
	"github.com/blendsdk/blend65-sub015/pkg/ast"
	"github.com/blendsdk/blend65-sub015/pkg/callgraph"
	"github.com/blendsdk/blend65-sub015/pkg/diag"
	"github.com/blendsdk/blend65-sub015/pkg/types"
)

// Analyzer holds the shared state every walker in the pipeline reads and
// writes: the scoped symbol table, the structural-type interner, the
// diagnostic sink, and the whole-program call graph.
type Analyzer struct {
	Sink     *diag.Sink
	Table    *types.Table
	Interner *types.Interner
	Calls    *callgraph.Graph

	program *ast.Program

	// funcSigs maps function name -> resolved parameter/return types, kept
	// separately from the symbol table so the type checker can look up a
	// callee's signature without re-walking the AST.
	funcSigs map[string]*funcSig

	// ExprTypes and ExprConst hold the type checker's per-expression results,
	// keyed by node identity. A *types.Type doesn't fit ast.MetadataValue's
	// small tagged-union shape (it needs to represent arrays/functions/enums
	// by pointer, not as an int/bool/string), so pkg/ilgen reads resolved
	// types from here rather than from ast.Metadata; the constant-ness flags
	// ARE mirrored into ast.Metadata as well, matching spec.md §4.3's
	// "annotating each with (type?, isConstant, constantValue?)" wording.
	ExprTypes map[ast.Expr]*types.Type
	ExprConst map[ast.Expr]constValue

	// ConstSymbols holds the folded value of every const variable whose
	// initializer was itself constant, keyed by symbol name, so a later
	// reference to that variable can still fold (spec.md §4.3: "constants
	// propagate").
	ConstSymbols map[string]uint32

	// FuncCFGs holds each function's control-flow graph, built during the
	// control-flow analysis phase, keyed by function name.
	FuncCFGs map[string]*funcCFG

	// LocalVarTypes holds the resolved type of every local variable/const
	// declaration encountered inside a function body, keyed by node identity
	// (the symbol table itself discards the scope pkg/ilgen would otherwise
	// need this from, since every EnterScope is matched by an ExitScope
	// before analysis finishes).
	LocalVarTypes map[*ast.VariableDecl]*types.Type
}

// constValue is the folded value of a constant expression, in 16-bit
// unsigned mod-65536 arithmetic per spec.md §4.3.
type constValue struct {
	IsConstant bool
	Value      uint32
	BoolValue  bool
}

type funcSig struct {
	decl       *ast.FunctionDecl
	params     []*types.Type
	ret        *types.Type
	exported   bool
	isCallback bool
}

// NewAnalyzer constructs an analyzer with an empty module scope; primitive
// type names are not declared as symbols but recognized by name when a
// type expression is resolved.
func NewAnalyzer() *Analyzer {
	a := &Analyzer{
		Sink:      diag.NewSink(),
		Table:     types.NewTable(),
		Interner:  types.NewInterner(),
		Calls:     callgraph.NewGraph(),
		funcSigs:  make(map[string]*funcSig),
		ExprTypes:     make(map[ast.Expr]*types.Type),
		ExprConst:     make(map[ast.Expr]constValue),
		ConstSymbols:  make(map[string]uint32),
		FuncCFGs:      make(map[string]*funcCFG),
		LocalVarTypes: make(map[*ast.VariableDecl]*types.Type),
	}

	return a
}

// Result is the outcome of a full Analyze run.
type Result struct {
	Success bool
	Sink    *diag.Sink
}

// Analyze runs all five passes over prog in order and returns the analyzer
// holding their combined result. Each pass appends to the same sink; overall success is defined
// purely by the absence of Error-severity diagnostics (spec.md §4.3).
func Analyze(prog *ast.Program) *Analyzer {
	return AnalyzeWithOptions(prog, Options{RunAdvancedAnalysis: true})
}

// Options gates optional analyzer phases. Mirrors the subset of
// compiler.Options (spec.md §6) the semantic analyzer itself consults;
// pkg/compiler threads its own Options.RunAdvancedAnalysis through to this
// type at the compile-pipeline boundary.
type Options struct {
	// RunAdvancedAnalysis gates the control-flow and call-graph passes
	// (phases 4-6), per spec.md §6. Declaration collection and type
	// checking (phases 1-2) always run: they are load-bearing for IL
	// lowering, not optional analysis.
	RunAdvancedAnalysis bool
}

// AnalyzeWithOptions runs the semantic analyzer with explicit phase gating.
// Analyze(prog) is equivalent to AnalyzeWithOptions(prog, Options{RunAdvancedAnalysis: true}).
func AnalyzeWithOptions(prog *ast.Program, opts Options) *Analyzer {
	a := NewAnalyzer()
	a.program = prog

	a.collectDeclarations(prog)
	a.checkTypes(prog)

	if opts.RunAdvancedAnalysis {
		a.analyzeControlFlow(prog)
		a.analyzeCallGraph(prog)
		a.analyzeUnusedFunctions(prog)
	}

	return a
}

// Success reports whether analysis produced zero Error-severity diagnostics.
func (a *Analyzer) Success() bool {
	return !a.Sink.HasErrors()
}

// --- phase 1: declaration collector -----------------------------------------

// collectDeclarations introduces every module-scope symbol (functions,
// globals, types, enums) before any function body is visited, so forward
// references and mutual recursion resolve correctly (spec.md §4.3 item 1).
func (a *Analyzer) collectDeclarations(prog *ast.Program) {
	for _, d := range prog.Declarations {
		a.collectOne(d, false)
	}
}

func (a *Analyzer) collectOne(d ast.Declaration, exported bool) {
	switch decl := d.(type) {
	case *ast.ExportDecl:
		a.collectOne(decl.Inner, true)

	case *ast.FunctionDecl:
		a.collectFunction(decl, exported)

	case *ast.VariableDecl:
		a.collectGlobalVariable(decl, exported)

	case *ast.TypeAliasDecl:
		a.collectTypeAlias(decl, exported)

	case *ast.EnumDecl:
		a.collectEnum(decl, exported)
	}
}

func (a *Analyzer) collectFunction(decl *ast.FunctionDecl, exported bool) {
	paramTypes := make([]*types.Type, len(decl.Params))

	for i, p := range decl.Params {
		paramTypes[i] = a.resolveTypeExpr(p.Type)
	}

	retType := types.VoidType
	if decl.ReturnType != nil {
		retType = a.resolveTypeExpr(decl.ReturnType)
	}

	fnType := a.Interner.Function(paramTypes, retType)

	if _, err := a.Table.DeclareFunction(decl.Name, decl.Span(), fnType, exported); err != nil {
		a.reportDuplicate(decl.Name, decl.Span(), err)
	}

	a.funcSigs[decl.Name] = &funcSig{decl: decl, params: paramTypes, ret: retType, exported: exported, isCallback: decl.IsCallback}
	a.Calls.Declare(decl.Name, exported)
}

func (a *Analyzer) collectGlobalVariable(decl *ast.VariableDecl, exported bool) {
	var declType *types.Type

	if decl.DeclaredType != nil {
		declType = a.resolveTypeExpr(decl.DeclaredType)
	} else {
		declType = types.UnknownType
	}

	storage := toTypesStorage(decl.Storage)

	if _, err := a.Table.DeclareVariable(decl.Name, decl.Span(), declType, decl.IsConst, storage); err != nil {
		a.reportDuplicate(decl.Name, decl.Span(), err)
	}
}

func (a *Analyzer) collectTypeAlias(decl *ast.TypeAliasDecl, exported bool) {
	aliased := a.resolveTypeExpr(decl.Aliased)

	if _, err := a.Table.DeclareType(decl.Name, decl.Span(), aliased); err != nil {
		a.reportDuplicate(decl.Name, decl.Span(), err)
	}
}

func (a *Analyzer) collectEnum(decl *ast.EnumDecl, exported bool) {
	members := make(map[string]int, len(decl.Members))
	order := make([]string, 0, len(decl.Members))
	spans := make(map[string]diag.Span, len(decl.Members))

	next := 0

	for _, m := range decl.Members {
		value := next

		if m.Value != nil {
			if lit, ok := m.Value.(*ast.LiteralExpr); ok && lit.LiteralKind == ast.LiteralNumber {
				value = int(lit.NumberValue)
			}
		}

		members[m.Name] = value
		order = append(order, m.Name)
		spans[m.Name] = m.Span
		next = value + 1
	}

	enumType := a.Interner.Enum(decl.Name, members, order)

	if _, err := a.Table.DeclareEnum(decl.Name, decl.Span(), enumType, spans); err != nil {
		a.reportDuplicate(decl.Name, decl.Span(), err)
	}
}

func (a *Analyzer) reportDuplicate(name string, span diag.Span, err error) {
	dupErr, ok := err.(*types.DuplicateError)
	if !ok {
		return
	}

	a.Sink.ErrorRelated(diag.CodeDuplicateDeclaration, span, []diag.Span{dupErr.Previous},
		"%q is already declared in this scope", name)
}

func toTypesStorage(s ast.StorageClass) types.StorageClass {
	switch s {
	case ast.StorageZeroPage:
		return types.StorageZeroPage
	case ast.StorageRam:
		return types.StorageRam
	case ast.StorageData:
		return types.StorageData
	case ast.StorageMap:
		return types.StorageMap
	default:
		return types.StorageNone
	}
}

// resolveTypeExpr resolves a syntactic type annotation against the symbol
// table and interner. Unresolvable names report UNDEFINED_IDENTIFIER and
// resolve to Unknown so downstream checks can cascade without re-reporting.
func (a *Analyzer) resolveTypeExpr(t ast.TypeExpr) *types.Type {
	if t == nil {
		return types.VoidType
	}

	switch texpr := t.(type) {
	case *ast.NamedTypeExpr:
		switch texpr.Name {
		case "byte":
			return types.ByteType
		case "word":
			return types.WordType
		case "bool":
			return types.BoolType
		case "void":
			return types.VoidType
		case "string":
			return types.StringType
		default:
			if sym := a.Table.Lookup(texpr.Name); sym != nil && (sym.Kind == types.SymType || sym.Kind == types.SymEnum) {
				return sym.Type
			}

			a.Sink.Errorf(diag.CodeUndefinedIdentifier, texpr.Span(), "undefined type %q", texpr.Name)

			return types.UnknownType

		}

	case *ast.ArrayTypeExpr:
		element := a.resolveTypeExpr(texpr.Element)

		if texpr.Count == nil {
			return a.Interner.Array(element, nil)
		}

		n, ok := a.evalConstIntExpr(texpr.Count)
		if !ok {
			a.Sink.Errorf(diag.CodeTypeMismatch, texpr.Count.Span(), "array size must be a constant expression")

			return a.Interner.Array(element, nil)
		}

		return a.Interner.Array(element, &n)

	default:
		return types.UnknownType
	}
}

// evalConstIntExpr is a narrow constant evaluator for array-size
// expressions: literal numbers, const variables whose initializer the type
// checker has already folded, and members of an already-declared enum. A
// global's array size is resolved before any initializer is folded, so a
// const name there does not evaluate. It does not attempt the full
// constant-folding the type checker performs over executable expressions.
func (a *Analyzer) evalConstIntExpr(e ast.Expr) (int, bool) {
	switch expr := e.(type) {
	case *ast.LiteralExpr:
		if expr.LiteralKind == ast.LiteralNumber {
			return int(expr.NumberValue), true
		}

		return 0, false

	case *ast.IdentifierExpr:
		sym := a.Table.Lookup(expr.Name)
		if sym == nil || !sym.IsConst {
			return 0, false
		}

		if v, ok := a.ConstSymbols[expr.Name]; ok {
			return int(v), true
		}

		if v, ok := expr.Metadata().Get(ast.MetaExprConstantValue); ok {
			return int(v.Int), true
		}

		return 0, false

	case *ast.MemberExpr:
		sym := a.Table.Lookup(expr.Base + "." + expr.Member)
		if sym == nil || sym.Kind != types.SymEnumMember {
			return 0, false
		}

		return sym.Type.EnumMembers()[expr.Member], true

	default:
		return 0, false
	}
}
