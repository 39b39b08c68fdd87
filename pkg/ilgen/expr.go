package ilgen

import (
	"github.com/blendsdk/blend65-sub015/pkg/ast"
	"github.com/blendsdk/blend65-sub015/pkg/diag"
	"github.com/blendsdk/blend65-sub015/pkg/il"
	"github.com/blendsdk/blend65-sub015/pkg/lexer"
	"github.com/blendsdk/blend65-sub015/pkg/types"
)

// lowerExpr lowers e to the instruction(s) that compute its value, returning
// the register holding the result and its IL type. Every case mirrors the
// corresponding checkXxx method of the type checker, one level lower.
func (b *builder) lowerExpr(e ast.Expr) (il.RegisterID, il.Type) {
	switch expr := e.(type) {
	case *ast.LiteralExpr:
		return b.lowerLiteral(expr)

	case *ast.IdentifierExpr:
		return b.lowerIdentifier(expr)

	case *ast.BinaryExpr:
		return b.lowerBinary(expr)

	case *ast.UnaryExpr:
		return b.lowerUnary(expr)

	case *ast.TernaryExpr:
		return b.lowerTernary(expr)

	case *ast.CallExpr:
		return b.lowerCall(expr)

	case *ast.IndexExpr:
		return b.lowerIndexLoad(expr)

	case *ast.MemberExpr:
		return b.lowerMember(expr)

	case *ast.ArrayLiteralExpr:
		return b.lowerArrayLiteral(expr)

	case *ast.AssignExpr:
		return b.lowerAssign(expr)

	default:
		b.sink.Errorf(diag.CodeLoweringUnsupported, e.Span(), "unsupported expression form")

		dest := b.newReg()
		b.emit(il.Instruction{Op: il.OpConst, Dest: dest, HasDest: true, Type: il.Void})

		return dest, il.Void
	}
}

func (b *builder) lowerLiteral(expr *ast.LiteralExpr) (il.RegisterID, il.Type) {
	dest := b.newReg()

	switch expr.LiteralKind {
	case ast.LiteralBool:
		v := uint32(0)
		if expr.BoolValue {
			v = 1
		}

		b.emit(il.Instruction{Op: il.OpConst, Dest: dest, HasDest: true, Type: il.Bool, ConstValue: v})

		return dest, il.Bool

	case ast.LiteralNumber:
		t := b.resolvedType(expr)
		ilType := toILType(t)
		b.emit(il.Instruction{Op: il.OpConst, Dest: dest, HasDest: true, Type: ilType, ConstValue: expr.NumberValue})

		return dest, ilType

	default:
		// String and type-name literals never reach lowerExpr directly: a
		// string only appears where the surrounding construct (not yet in
		// this language's Non-goals-bounded scope) consumes it structurally,
		// and a type-name literal is only legal as sizeof's argument, which
		// lowerIntrinsicCall handles without calling lowerExpr on it.
		b.emit(il.Instruction{Op: il.OpConst, Dest: dest, HasDest: true, Type: il.Void})

		return dest, il.Void
	}
}

func (b *builder) lowerIdentifier(expr *ast.IdentifierExpr) (il.RegisterID, il.Type) {
	t := b.resolvedType(expr)
	ilType := toILType(t)

	if internal, ok := b.resolveVar(expr.Name); ok {
		dest := b.newReg()
		b.emit(il.Instruction{Op: il.OpVarRef, Dest: dest, HasDest: true, Type: ilType, VarName: internal})

		return dest, ilType
	}

	// Not a local/parameter: either a global variable or a const symbol
	// already folded by the type checker.
	if v, ok := b.sem.ExprConst[expr]; ok && v.IsConstant {
		dest := b.newReg()
		b.emit(il.Instruction{Op: il.OpConst, Dest: dest, HasDest: true, Type: ilType, ConstValue: v.Value})

		return dest, ilType
	}

	dest := b.newReg()
	b.emit(il.Instruction{Op: il.OpLoadGlobal, Dest: dest, HasDest: true, Type: ilType, GlobalName: expr.Name})

	return dest, ilType
}

// lowerBinary emits the already-folded value directly when the type checker
// marked this expression constant (spec.md §4.3 item 2's mandatory constant
// folding), rather than re-lowering both operands only for the optimizer to
// throw them away again later.
func (b *builder) lowerBinary(expr *ast.BinaryExpr) (il.RegisterID, il.Type) {
	ilType := toILType(b.resolvedType(expr))

	if v, ok := b.sem.ExprConst[expr]; ok && v.IsConstant {
		dest := b.newReg()
		b.emit(il.Instruction{Op: il.OpConst, Dest: dest, HasDest: true, Type: ilType, ConstValue: v.Value})

		return dest, ilType
	}

	left, _ := b.lowerExpr(expr.Left)
	right, _ := b.lowerExpr(expr.Right)

	dest := b.newReg()
	b.emit(il.Instruction{Op: il.OpBinary, Dest: dest, HasDest: true, Type: ilType, BinOp: toILBinOp(expr.Op), Operands: []il.RegisterID{left, right}})

	return dest, ilType
}

func toILBinOp(op lexer.Kind) il.BinOp {
	switch op {
	case lexer.Plus:
		return il.Add
	case lexer.Minus:
		return il.Sub
	case lexer.Star:
		return il.Mul
	case lexer.Slash:
		return il.Div
	case lexer.Percent:
		return il.Mod
	case lexer.Amp:
		return il.And
	case lexer.Pipe:
		return il.Or
	case lexer.Caret:
		return il.Xor
	case lexer.Shl:
		return il.Shl
	case lexer.Shr:
		return il.Shr
	case lexer.EqEq:
		return il.Eq
	case lexer.NotEq:
		return il.Ne
	case lexer.Lt:
		return il.Lt
	case lexer.LtEq:
		return il.Le
	case lexer.Gt:
		return il.Gt
	case lexer.GtEq:
		return il.Ge
	case lexer.AndAnd:
		return il.LogAnd
	case lexer.OrOr:
		return il.LogOr
	default:
		return il.Add
	}
}

func (b *builder) lowerUnary(expr *ast.UnaryExpr) (il.RegisterID, il.Type) {
	if expr.Op == lexer.At {
		return b.lowerAddressOf(expr)
	}

	if v, ok := b.sem.ExprConst[expr]; ok && v.IsConstant {
		dest := b.newReg()
		ilType := toILType(b.resolvedType(expr))
		b.emit(il.Instruction{Op: il.OpConst, Dest: dest, HasDest: true, Type: ilType, ConstValue: v.Value})

		return dest, ilType
	}

	operand, _ := b.lowerExpr(expr.Operand)
	ilType := toILType(b.resolvedType(expr))
	dest := b.newReg()

	var unop il.UnOp

	switch expr.Op {
	case lexer.Bang:
		unop = il.Not
	case lexer.Tilde:
		unop = il.BitNot
	case lexer.Minus:
		unop = il.Neg
	default:
		// Unary `+` is a no-op carried through the type checker purely for
		// symmetry; lowering elides it by returning the operand unchanged.
		return operand, ilType
	}

	b.emit(il.Instruction{Op: il.OpUnary, Dest: dest, HasDest: true, Type: ilType, UnOp: unop, Operands: []il.RegisterID{operand}})

	return dest, ilType
}

// lowerAddressOf lowers `@name`. Only a module-scope global has a fixed
// address in this register-only IL; a local variable or parameter lives in
// a virtual register with no address to take, so that case is reported
// rather than silently miscompiled.
func (b *builder) lowerAddressOf(expr *ast.UnaryExpr) (il.RegisterID, il.Type) {
	ident, ok := expr.Operand.(*ast.IdentifierExpr)
	if !ok {
		b.sink.Errorf(diag.CodeLoweringUnsupported, expr.Span(), "'@' operand must be an identifier")

		dest := b.newReg()
		b.emit(il.Instruction{Op: il.OpConst, Dest: dest, HasDest: true, Type: il.Word})

		return dest, il.Word
	}

	if _, ok := b.resolveVar(ident.Name); ok {
		b.sink.Errorf(diag.CodeLoweringUnsupported, expr.Span(),
			"cannot take the address of local variable %q", ident.Name)

		dest := b.newReg()
		b.emit(il.Instruction{Op: il.OpConst, Dest: dest, HasDest: true, Type: il.Word})

		return dest, il.Word
	}

	dest := b.newReg()
	b.emit(il.Instruction{Op: il.OpUnary, Dest: dest, HasDest: true, Type: il.Word, UnOp: il.AddrOf, GlobalName: ident.Name})

	return dest, il.Word
}

func (b *builder) lowerTernary(expr *ast.TernaryExpr) (il.RegisterID, il.Type) {
	if v, ok := b.sem.ExprConst[expr]; ok && v.IsConstant {
		dest := b.newReg()
		ilType := toILType(b.resolvedType(expr))
		b.emit(il.Instruction{Op: il.OpConst, Dest: dest, HasDest: true, Type: ilType, ConstValue: v.Value})

		return dest, ilType
	}

	cond, _ := b.lowerExpr(expr.Cond)

	thenBlock := b.newBlock()
	elseBlock := b.newBlock()
	mergeBlock := b.newBlock()

	b.fn.AddEdge(b.block.ID, thenBlock.ID)
	b.fn.AddEdge(b.block.ID, elseBlock.ID)
	b.emit(il.Instruction{Op: il.OpBranch, Operands: []il.RegisterID{cond}, Targets: []il.BlockID{thenBlock.ID, elseBlock.ID}})

	ilType := toILType(b.resolvedType(expr))

	b.block = thenBlock
	thenVal, _ := b.lowerExpr(expr.Then)
	b.jumpTo(mergeBlock.ID)

	b.block = elseBlock
	elseVal, _ := b.lowerExpr(expr.Else)
	b.jumpTo(mergeBlock.ID)

	b.block = mergeBlock
	dest := b.newReg()
	b.emit(il.Instruction{
		Op: il.OpPhi, Dest: dest, HasDest: true, Type: ilType,
		PhiSources: []il.RegisterID{thenVal, elseVal},
	})

	return dest, ilType
}

func (b *builder) lowerCall(expr *ast.CallExpr) (il.RegisterID, il.Type) {
	if _, ok := intrinsicOpcodes[expr.Callee]; ok {
		return b.lowerIntrinsicCall(expr)
	}

	switch expr.Callee {
	case "lo", "hi", "sizeof", "length":
		return b.lowerIntrinsicCall(expr)
	}

	args := make([]il.RegisterID, len(expr.Args))
	for i, a := range expr.Args {
		args[i], _ = b.lowerExpr(a)
	}

	ilType := toILType(b.resolvedType(expr))

	if ilType == il.Void {
		b.emit(il.Instruction{Op: il.OpCall, CalleeName: expr.Callee, Operands: args})

		return 0, il.Void
	}

	dest := b.newReg()
	b.emit(il.Instruction{Op: il.OpCall, Dest: dest, HasDest: true, Type: ilType, CalleeName: expr.Callee, Operands: args})

	return dest, ilType
}

// lowerIndexAddr lowers base[index]'s address computation, shared by loads
// and stores. A local or parameter base is read through OpVarRef and its
// current value serves as the base address; any other identifier is taken
// to be a global and its address is taken with AddrOf; a non-identifier
// base is lowered as an ordinary expression. Nothing is reported here.
func (b *builder) lowerIndexAddr(expr *ast.IndexExpr) (il.RegisterID, il.Type) {
	elemType := toILType(b.resolvedType(expr))

	index, _ := b.lowerExpr(expr.Index)

	var baseReg il.RegisterID

	switch baseExpr := expr.Base.(type) {
	case *ast.IdentifierExpr:
		if internal, ok := b.resolveVar(baseExpr.Name); ok {
			dest := b.newReg()
			b.emit(il.Instruction{Op: il.OpVarRef, Dest: dest, HasDest: true, Type: il.Word, VarName: internal})
			baseReg = dest
		} else {
			dest := b.newReg()
			b.emit(il.Instruction{Op: il.OpUnary, Dest: dest, HasDest: true, Type: il.Word, UnOp: il.AddrOf, GlobalName: baseExpr.Name})
			baseReg = dest
		}

	default:
		base, _ := b.lowerExpr(expr.Base)
		baseReg = base
	}

	dest := b.newReg()
	b.emit(il.Instruction{
		Op: il.OpIndexAddr, Dest: dest, HasDest: true, Type: il.Word,
		Operands: []il.RegisterID{baseReg, index}, ElementSize: elemType.Size(),
	})

	return dest, elemType
}

func (b *builder) lowerIndexLoad(expr *ast.IndexExpr) (il.RegisterID, il.Type) {
	addr, elemType := b.lowerIndexAddr(expr)

	dest := b.newReg()
	b.emit(il.Instruction{Op: il.OpLoad, Dest: dest, HasDest: true, Type: elemType, Operands: []il.RegisterID{addr}})

	return dest, elemType
}

func (b *builder) lowerMember(expr *ast.MemberExpr) (il.RegisterID, il.Type) {
	t := b.resolvedType(expr)

	dest := b.newReg()
	ilType := toILType(t)

	value := uint32(0)
	if t.Kind() == types.Enum {
		value = uint32(t.EnumMembers()[expr.Member])
	}

	b.emit(il.Instruction{Op: il.OpConst, Dest: dest, HasDest: true, Type: ilType, ConstValue: value})

	return dest, ilType
}

func (b *builder) lowerArrayLiteral(expr *ast.ArrayLiteralExpr) (il.RegisterID, il.Type) {
	// pkg/sema accepts an array literal in any expression position; lowering
	// supports none of them as a value and reports LOWERING_UNSUPPORTED here.
	// lowerGlobal records only constant initializers, so a global initialized
	// with an array literal is left zero-initialized.
	b.sink.Errorf(diag.CodeLoweringUnsupported, expr.Span(), "array literal is only supported as a global variable initializer")

	dest := b.newReg()
	b.emit(il.Instruction{Op: il.OpConst, Dest: dest, HasDest: true, Type: il.Void})

	return dest, il.Void
}

func (b *builder) lowerAssign(expr *ast.AssignExpr) (il.RegisterID, il.Type) {
	value, valType := b.lowerAssignValue(expr)
	b.storeTarget(expr.Target, value, valType)

	return value, valType
}

// lowerAssignValue computes the value to store: the RHS directly for a
// plain `=`, or the base op applied to the current target value and the RHS
// for a compound assignment (`+=` and friends).
func (b *builder) lowerAssignValue(expr *ast.AssignExpr) (il.RegisterID, il.Type) {
	rhs, rhsType := b.lowerExpr(expr.Value)

	if expr.Op == lexer.Assign {
		return rhs, rhsType
	}

	cur, curType := b.lowerExpr(expr.Target)

	dest := b.newReg()
	b.emit(il.Instruction{
		Op: il.OpBinary, Dest: dest, HasDest: true, Type: curType,
		BinOp: toILBinOp(compoundBaseOp(expr.Op)), Operands: []il.RegisterID{cur, rhs},
	})

	return dest, curType
}

func compoundBaseOp(op lexer.Kind) lexer.Kind {
	switch op {
	case lexer.PlusAssign:
		return lexer.Plus
	case lexer.MinusAssign:
		return lexer.Minus
	case lexer.StarAssign:
		return lexer.Star
	case lexer.SlashAssign:
		return lexer.Slash
	case lexer.PercentAssign:
		return lexer.Percent
	case lexer.AmpAssign:
		return lexer.Amp
	case lexer.PipeAssign:
		return lexer.Pipe
	case lexer.CaretAssign:
		return lexer.Caret
	case lexer.ShlAssign:
		return lexer.Shl
	case lexer.ShrAssign:
		return lexer.Shr
	default:
		return lexer.Plus
	}
}

// readVar emits an OpVarRef read of internalName's current value, typed
// ilType. Used where the caller already knows the variable's type from
// context (e.g. the for-loop desugaring's synthesized induction-variable
// reads, which have no source Expr node for resolvedType to look up).
func (b *builder) readVar(internalName string, ilType il.Type) il.RegisterID {
	dest := b.newReg()
	b.emit(il.Instruction{Op: il.OpVarRef, Dest: dest, HasDest: true, Type: ilType, VarName: internalName})

	return dest
}

// defineVar records value as internalName's current definition: pkg/ssa's
// dominance-frontier phi placement groups def sites by VarName, not by
// opcode, so tagging the value-producing instruction directly would require
// threading VarName through every lowerExpr case. A copy through OpVarRef
// keeps that one concern in one place instead.
func (b *builder) defineVar(internalName string, value il.RegisterID, valType il.Type) {
	dest := b.newReg()
	b.emit(il.Instruction{Op: il.OpVarRef, Dest: dest, HasDest: true, Type: valType, VarName: internalName, Operands: []il.RegisterID{value}})
}

// storeTarget writes value into target: a plain identifier becomes a fresh
// def of that variable's internal name (for pkg/ssa to pick up) or an
// OpStoreGlobal, and an index target becomes an address computation plus
// OpStore.
func (b *builder) storeTarget(target ast.Expr, value il.RegisterID, valType il.Type) {
	switch t := target.(type) {
	case *ast.IdentifierExpr:
		if internal, ok := b.resolveVar(t.Name); ok {
			b.defineVar(internal, value, valType)

			return
		}

		b.emit(il.Instruction{Op: il.OpStoreGlobal, Type: valType, GlobalName: t.Name, Operands: []il.RegisterID{value}})

	case *ast.IndexExpr:
		addr, _ := b.lowerIndexAddr(t)
		b.emit(il.Instruction{Op: il.OpStore, Type: valType, Operands: []il.RegisterID{addr, value}})

	default:
		b.sink.Errorf(diag.CodeLoweringUnsupported, target.Span(), "unsupported assignment target")
	}
}
