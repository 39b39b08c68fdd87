package ilgen

import (
	"github.com/blendsdk/blend65-sub015/pkg/ast"
	"github.com/blendsdk/blend65-sub015/pkg/diag"
	"github.com/blendsdk/blend65-sub015/pkg/il"
	"github.com/blendsdk/blend65-sub015/pkg/types"
)

// lowerGlobals is phase 2: every module-scope variable becomes an
// il.GlobalVariable with its storage class, optional constant initializer,
// and (for Map storage) a constant-folded fixed address, per spec.md §4.4
// item 2.
func (b *builder) lowerGlobals(prog *ast.Program) {
	for _, d := range prog.Declarations {
		exported := false

		decl := d
		if exp, ok := d.(*ast.ExportDecl); ok {
			decl = exp.Inner
			exported = true
		}

		v, ok := decl.(*ast.VariableDecl)
		if !ok {
			continue
		}

		b.lowerGlobal(v, exported)
	}
}

func (b *builder) lowerGlobal(decl *ast.VariableDecl, exported bool) {
	sym := b.sem.Table.Lookup(decl.Name)

	var declType *types.Type
	if sym != nil {
		declType = sym.Type
	} else {
		declType = types.UnknownType
	}

	g := &il.GlobalVariable{
		Name:     decl.Name,
		Type:     toILType(declType),
		Storage:  toILStorage(decl.Storage),
		Exported: exported,
	}

	if declType.Kind() == types.Array {
		if n, sized := declType.Count(); sized {
			g.Count = n
		}
	}

	if decl.Init != nil {
		if v, ok := b.sem.ExprConst[decl.Init]; ok && v.IsConstant {
			cv := v.Value
			g.ConstInit = &cv
		}
	}

	if decl.Storage == ast.StorageMap {
		if decl.AddressExpr == nil {
			b.sink.Errorf(diag.CodeLoweringUnsupported, decl.Span(),
				"memory-mapped global %q requires an address expression", decl.Name)
		} else if v, ok := b.sem.ExprConst[decl.AddressExpr]; ok && v.IsConstant {
			addr := uint16(v.Value)
			g.FixedAddress = &addr
		} else {
			b.sink.Errorf(diag.CodeLoweringUnsupported, decl.AddressExpr.Span(),
				"memory-mapped global %q's address must be a constant expression", decl.Name)
		}
	}

	b.module.Globals = append(b.module.Globals, g)
}
