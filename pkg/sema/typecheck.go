package sema

import (
	"github.com/blendsdk/blend65-sub015/pkg/ast"
	"github.com/blendsdk/blend65-sub015/pkg/diag"
	"github.com/blendsdk/blend65-sub015/pkg/lexer"
	"github.com/blendsdk/blend65-sub015/pkg/types"
)

// checkTypes is phase 2+3: the type checker (bottom-up expression typing
// with mandatory constant folding) and the assignment/lvalue checker,
// walked together since both need the same per-function scope stack.
func (a *Analyzer) checkTypes(prog *ast.Program) {
	for _, d := range prog.Declarations {
		a.checkDeclaration(d)
	}
}

func (a *Analyzer) checkDeclaration(d ast.Declaration) {
	switch decl := d.(type) {
	case *ast.ExportDecl:
		a.checkDeclaration(decl.Inner)

	case *ast.FunctionDecl:
		a.checkFunctionBody(decl)

	case *ast.VariableDecl:
		a.checkGlobalVariableInit(decl)
	}
}

func (a *Analyzer) checkGlobalVariableInit(decl *ast.VariableDecl) {
	if decl.Init == nil {
		return
	}

	initType := a.checkExpr(decl.Init)

	sym := a.Table.Lookup(decl.Name)
	if sym == nil {
		return
	}

	if sym.Type == types.UnknownType {
		sym.Type = initType
	}

	if !types.CanAssign(initType, sym.Type) {
		a.Sink.Errorf(diag.CodeTypeMismatch, decl.Init.Span(),
			"cannot initialize %q of type %s with a value of type %s", decl.Name, sym.Type, initType)
	}

	if decl.IsConst {
		if v, ok := a.constOf(decl.Init); ok {
			a.ConstSymbols[decl.Name] = v
		}
	}

	if decl.Storage == ast.StorageMap && decl.AddressExpr != nil {
		if _, ok := a.evalConstIntExpr(decl.AddressExpr); !ok {
			a.Sink.Errorf(diag.CodeNonConstantAddress, decl.AddressExpr.Span(),
				"memory-mapped variable %q requires a constant address expression", decl.Name)
		}
	}
}

// checkFunctionBody pushes a parameter scope, declares every parameter, then
// walks the body with the function's return type passed down, per spec.md
// §4.3.
func (a *Analyzer) checkFunctionBody(decl *ast.FunctionDecl) {
	if decl.Body == nil {
		return // stub
	}

	sig := a.funcSigs[decl.Name]

	a.Table.EnterScope()
	defer a.Table.ExitScope()

	for i, p := range decl.Params {
		var pType *types.Type
		if sig != nil && i < len(sig.params) {
			pType = sig.params[i]
		} else {
			pType = types.UnknownType
		}

		if _, err := a.Table.DeclareParameter(p.Name, p.Span, pType); err != nil {
			a.reportDuplicate(p.Name, p.Span, err)
		}
	}

	retType := types.VoidType
	if sig != nil {
		retType = sig.ret
	}

	a.checkBlock(decl.Body, retType, decl.Name)
}

func (a *Analyzer) checkBlock(block *ast.BlockStmt, retType *types.Type, funcName string) {
	a.Table.EnterScope()
	defer a.Table.ExitScope()

	for _, s := range block.Stmts {
		a.checkStmt(s, retType, funcName)
	}
}

func (a *Analyzer) checkStmt(s ast.Stmt, retType *types.Type, funcName string) {
	switch stmt := s.(type) {
	case *ast.BlockStmt:
		a.checkBlock(stmt, retType, funcName)

	case *ast.IfStmt:
		a.checkExpr(stmt.Cond)
		a.checkStmt(stmt.Then, retType, funcName)

		if stmt.Else != nil {
			a.checkStmt(stmt.Else, retType, funcName)
		}

	case *ast.WhileStmt:
		a.checkExpr(stmt.Cond)
		a.checkStmt(stmt.Body, retType, funcName)

	case *ast.ForStmt:
		a.Table.EnterScope()

		if _, err := a.Table.DeclareVariable(stmt.Var, stmt.Span(), types.ByteType, false, types.StorageNone); err != nil {
			a.reportDuplicate(stmt.Var, stmt.Span(), err)
		}

		a.checkExpr(stmt.Start)
		a.checkExpr(stmt.End)

		if stmt.Step != nil {
			a.checkExpr(stmt.Step)
		}

		a.checkStmt(stmt.Body, retType, funcName)
		a.Table.ExitScope()

	case *ast.SwitchStmt:
		a.checkExpr(stmt.Subject)

		for _, c := range stmt.Cases {
			for _, v := range c.Values {
				a.checkExpr(v)
			}

			a.Table.EnterScope()

			for _, bodyStmt := range c.Body {
				a.checkStmt(bodyStmt, retType, funcName)
			}

			a.Table.ExitScope()
		}

	case *ast.ReturnStmt:
		if stmt.Value != nil {
			valType := a.checkExpr(stmt.Value)
			if !types.CanAssign(valType, retType) {
				a.Sink.Errorf(diag.CodeTypeMismatch, stmt.Value.Span(),
					"function %q returns %s but this statement returns %s", funcName, retType, valType)
			}
		} else if retType != types.VoidType && retType != types.UnknownType {
			a.Sink.Errorf(diag.CodeTypeMismatch, stmt.Span(), "function %q must return a value of type %s", funcName, retType)
		}

	case *ast.ExprStmt:
		a.checkExpr(stmt.Expr)

	case *ast.LocalVarStmt:
		a.checkLocalVariable(stmt.Decl)

	case *ast.BreakStmt, *ast.ContinueStmt:
		// nothing to type-check

	default:
	}
}

func (a *Analyzer) checkLocalVariable(decl *ast.VariableDecl) {
	var declType *types.Type

	if decl.DeclaredType != nil {
		declType = a.resolveTypeExpr(decl.DeclaredType)
	}

	if decl.Init != nil {
		initType := a.checkExpr(decl.Init)

		if declType == nil {
			declType = initType
		} else if !types.CanAssign(initType, declType) {
			a.Sink.Errorf(diag.CodeTypeMismatch, decl.Init.Span(),
				"cannot initialize %q of type %s with a value of type %s", decl.Name, declType, initType)
		}
	}

	if declType == nil {
		declType = types.UnknownType
	}

	a.LocalVarTypes[decl] = declType

	if decl.IsConst && decl.Init != nil {
		if v, ok := a.constOf(decl.Init); ok {
			a.ConstSymbols[decl.Name] = v
		}
	}

	if _, err := a.Table.DeclareVariable(decl.Name, decl.Span(), declType, decl.IsConst, toTypesStorage(decl.Storage)); err != nil {
		a.reportDuplicate(decl.Name, decl.Span(), err)
	}
}

// checkExpr resolves e's type bottom-up, performs mandatory constant
// folding, records the lvalue check for assignments, and caches both the
// type and constant-ness in the Analyzer's side tables (and mirrors the
// constant flag into ast.Metadata).
func (a *Analyzer) checkExpr(e ast.Expr) *types.Type {
	if e == nil {
		return types.UnknownType
	}

	t := a.typeOfExpr(e)
	a.ExprTypes[e] = t

	return t
}

func (a *Analyzer) typeOfExpr(e ast.Expr) *types.Type {
	switch expr := e.(type) {
	case *ast.LiteralExpr:
		return a.checkLiteral(expr)

	case *ast.IdentifierExpr:
		return a.checkIdentifier(expr)

	case *ast.BinaryExpr:
		return a.checkBinary(expr)

	case *ast.UnaryExpr:
		return a.checkUnary(expr)

	case *ast.TernaryExpr:
		return a.checkTernary(expr)

	case *ast.CallExpr:
		return a.checkCall(expr)

	case *ast.IndexExpr:
		return a.checkIndex(expr)

	case *ast.MemberExpr:
		return a.checkMember(expr)

	case *ast.ArrayLiteralExpr:
		return a.checkArrayLiteral(expr)

	case *ast.AssignExpr:
		return a.checkAssign(expr)

	default:
		return types.UnknownType
	}
}

func (a *Analyzer) setConst(e ast.Expr, v uint32) {
	a.ExprConst[e] = constValue{IsConstant: true, Value: v}
	e.Metadata().Set(ast.MetaExprIsConstant, ast.BoolMeta(true))
	e.Metadata().Set(ast.MetaExprConstantValue, ast.IntMeta(int64(v)))
}

func (a *Analyzer) constOf(e ast.Expr) (uint32, bool) {
	cv, ok := a.ExprConst[e]
	if !ok || !cv.IsConstant {
		return 0, false
	}

	return cv.Value, true
}

func (a *Analyzer) checkLiteral(expr *ast.LiteralExpr) *types.Type {
	switch expr.LiteralKind {
	case ast.LiteralNumber:
		a.setConst(expr, expr.NumberValue)

		if expr.NumberValue > 0xFFFF {
			a.Sink.Errorf(diag.CodeTypeMismatch, expr.Span(), "number literal %d does not fit in a word", expr.NumberValue)
		}

		if expr.NumberValue > 0xFF {
			return types.WordType
		}

		return types.ByteType

	case ast.LiteralBool:
		v := uint32(0)
		if expr.BoolValue {
			v = 1
		}

		a.setConst(expr, v)

		return types.BoolType

	case ast.LiteralString:
		return types.StringType

	default:
		return types.UnknownType
	}
}

func (a *Analyzer) checkIdentifier(expr *ast.IdentifierExpr) *types.Type {
	sym := a.Table.Lookup(expr.Name)
	if sym == nil {
		a.Sink.Errorf(diag.CodeUndefinedIdentifier, expr.Span(), "undefined identifier %q", expr.Name)

		return types.UnknownType
	}

	if sym.IsConst {
		if v, ok := a.ConstSymbols[expr.Name]; ok {
			a.setConst(expr, v)
		}
	}

	return sym.Type
}

func (a *Analyzer) checkBinary(expr *ast.BinaryExpr) *types.Type {
	leftType := a.checkExpr(expr.Left)
	rightType := a.checkExpr(expr.Right)

	result, ok := types.BinaryResult(expr.Op, leftType, rightType)
	if !ok {
		if leftType != types.UnknownType && rightType != types.UnknownType {
			a.Sink.Errorf(diag.CodeTypeMismatch, expr.Span(),
				"operator %s is not defined for operands of type %s and %s", expr.Op, leftType, rightType)
		}

		return types.UnknownType
	}

	a.foldBinary(expr, result)

	return result
}

// foldBinary implements spec.md §4.3's mandatory constant folding: numeric
// binary operations on constant operands, and short-circuit logical
// operators. Arithmetic is folded mod 65536; division/modulo by zero yields
// a non-constant result plus a warning, never an error.
func (a *Analyzer) foldBinary(expr *ast.BinaryExpr, result *types.Type) {
	lv, lok := a.constOf(expr.Left)
	rv, rok := a.constOf(expr.Right)

	switch expr.Op {
	case lexer.AndAnd:
		if lok && lv == 0 {
			a.setConst(expr, 0)
		} else if lok && rok {
			a.setConst(expr, boolVal(lv != 0 && rv != 0))
		}

		return

	case lexer.OrOr:
		if lok && lv != 0 {
			a.setConst(expr, 1)
		} else if lok && rok {
			a.setConst(expr, boolVal(lv != 0 || rv != 0))
		}

		return
	}

	if !lok || !rok {
		return
	}

	switch expr.Op {
	case lexer.Plus:
		a.setConst(expr, wrap16(uint32(lv+rv)))
	case lexer.Minus:
		a.setConst(expr, wrap16(uint32(lv-rv)))
	case lexer.Star:
		a.setConst(expr, wrap16(lv*rv))
	case lexer.Slash:
		if rv == 0 {
			a.Sink.Warningf(diag.CodeDivisionByZeroWarning, expr.Span(), "division by zero in constant expression")

			return
		}

		a.setConst(expr, wrap16(lv/rv))
	case lexer.Percent:
		if rv == 0 {
			a.Sink.Warningf(diag.CodeDivisionByZeroWarning, expr.Span(), "modulo by zero in constant expression")

			return
		}

		a.setConst(expr, wrap16(lv%rv))
	case lexer.Amp:
		a.setConst(expr, lv&rv)
	case lexer.Pipe:
		a.setConst(expr, lv|rv)
	case lexer.Caret:
		a.setConst(expr, lv^rv)
	case lexer.Shl:
		a.setConst(expr, wrap16(lv<<rv))
	case lexer.Shr:
		a.setConst(expr, lv>>rv)
	case lexer.EqEq:
		a.setConst(expr, boolVal(lv == rv))
	case lexer.NotEq:
		a.setConst(expr, boolVal(lv != rv))
	case lexer.Lt:
		a.setConst(expr, boolVal(lv < rv))
	case lexer.LtEq:
		a.setConst(expr, boolVal(lv <= rv))
	case lexer.Gt:
		a.setConst(expr, boolVal(lv > rv))
	case lexer.GtEq:
		a.setConst(expr, boolVal(lv >= rv))
	}
}

func wrap16(v uint32) uint32 { return v & 0xFFFF }

func boolVal(b bool) uint32 {
	if b {
		return 1
	}

	return 0
}

func (a *Analyzer) checkUnary(expr *ast.UnaryExpr) *types.Type {
	if expr.Op == lexer.At {
		ident, ok := expr.Operand.(*ast.IdentifierExpr)
		if !ok {
			a.Sink.Errorf(diag.CodeInvalidOperand, expr.Span(), "'@' (address-of) is only legal directly on an identifier")

			return types.UnknownType
		}

		if sym := a.Table.Lookup(ident.Name); sym == nil {
			a.Sink.Errorf(diag.CodeUndefinedIdentifier, ident.Span(), "undefined identifier %q", ident.Name)
		}

		return types.WordType
	}

	operandType := a.checkExpr(expr.Operand)

	result, ok := types.UnaryResult(expr.Op, operandType)
	if !ok {
		if operandType != types.UnknownType {
			a.Sink.Errorf(diag.CodeTypeMismatch, expr.Span(), "operator %s is not defined for operand of type %s", expr.Op, operandType)
		}

		return types.UnknownType
	}

	if v, ok := a.constOf(expr.Operand); ok {
		switch expr.Op {
		case lexer.Bang:
			a.setConst(expr, boolVal(v == 0))
		case lexer.Tilde:
			a.setConst(expr, wrap16(^v))
		case lexer.Minus:
			a.setConst(expr, wrap16(uint32(-int32(v))))
		case lexer.Plus:
			a.setConst(expr, v)
		}
	}

	return result
}

func (a *Analyzer) checkTernary(expr *ast.TernaryExpr) *types.Type {
	condType := a.checkExpr(expr.Cond)
	if condType != types.BoolType && condType != types.UnknownType && !types.IsNumeric(condType) {
		a.Sink.Errorf(diag.CodeTypeMismatch, expr.Cond.Span(), "ternary condition must be bool-like, found %s", condType)
	}

	thenType := a.checkExpr(expr.Then)
	elseType := a.checkExpr(expr.Else)

	result := thenType
	if types.Compat(elseType, thenType) == types.Incompatible {
		result = types.UnknownType
	}

	if cv, ok := a.constOf(expr.Cond); ok {
		if cv != 0 {
			if v, ok := a.constOf(expr.Then); ok {
				a.setConst(expr, v)
			}
		} else {
			if v, ok := a.constOf(expr.Else); ok {
				a.setConst(expr, v)
			}
		}
	}

	return result
}

func (a *Analyzer) checkCall(expr *ast.CallExpr) *types.Type {
	if isig, ok := intrinsics[expr.Callee]; ok {
		return a.checkIntrinsicCall(expr, isig)
	}

	sig, ok := a.funcSigs[expr.Callee]
	if !ok {
		sym := a.Table.Lookup(expr.Callee)

		switch {
		case sym == nil:
			a.Sink.Errorf(diag.CodeUndefinedIdentifier, expr.Span(), "undefined function %q", expr.Callee)
		case sym.Type != nil && sym.Type.Kind() == types.Function:
			// A call through a callback-typed variable: a genuine indirect
			// call, legal but untyped here since the callee isn't known
			// statically (spec.md §4.3 item 5).
		case sym.Kind != types.SymFunction:
			a.Sink.Errorf(diag.CodeTypeMismatch, expr.Span(), "%q is not callable", expr.Callee)
		}

		for _, arg := range expr.Args {
			a.checkExpr(arg)
		}

		if sym != nil && sym.Type != nil && sym.Type.Kind() == types.Function {
			return sym.Type.Return()
		}

		return types.UnknownType
	}

	for i, arg := range expr.Args {
		argType := a.checkExpr(arg)

		if sig != nil && i < len(sig.params) {
			if !types.CanAssign(argType, sig.params[i]) {
				a.Sink.Errorf(diag.CodeTypeMismatch, arg.Span(),
					"argument %d to %q has type %s, expected %s", i+1, expr.Callee, argType, sig.params[i])
			}
		}
	}

	if sig != nil && len(expr.Args) != len(sig.params) {
		a.Sink.Errorf(diag.CodeArityMismatch, expr.Span(),
			"%q expects %d argument(s), found %d", expr.Callee, len(sig.params), len(expr.Args))
	}

	if sig == nil {
		return types.UnknownType
	}

	return sig.ret
}

// checkIntrinsicCall checks a call to one of the built-in intrinsics of
// spec.md §4.4. sizeof/length take a single argument whose legality isn't a
// plain assignability check (a type-name literal, or any array-typed
// expression respectively), so their argument is walked but not matched
// against a param type.
func (a *Analyzer) checkIntrinsicCall(expr *ast.CallExpr, sig intrinsicSig) *types.Type {
	if expr.Callee == "sizeof" || expr.Callee == "length" {
		for _, arg := range expr.Args {
			a.checkExpr(arg)
		}

		if len(expr.Args) != 1 {
			a.Sink.Errorf(diag.CodeArityMismatch, expr.Span(), "%q expects exactly 1 argument, found %d", expr.Callee, len(expr.Args))
		}

		return sig.ret
	}

	if len(expr.Args) != len(sig.params) {
		a.Sink.Errorf(diag.CodeArityMismatch, expr.Span(),
			"%q expects %d argument(s), found %d", expr.Callee, len(sig.params), len(expr.Args))
	}

	for i, arg := range expr.Args {
		argType := a.checkExpr(arg)

		if i < len(sig.params) && !types.CanAssign(argType, sig.params[i]) {
			a.Sink.Errorf(diag.CodeTypeMismatch, arg.Span(),
				"argument %d to %q has type %s, expected %s", i+1, expr.Callee, argType, sig.params[i])
		}
	}

	return sig.ret
}

func (a *Analyzer) checkIndex(expr *ast.IndexExpr) *types.Type {
	baseType := a.checkExpr(expr.Base)
	a.checkExpr(expr.Index)

	if baseType.Kind() != types.Array {
		if baseType != types.UnknownType {
			a.Sink.Errorf(diag.CodeTypeMismatch, expr.Base.Span(), "cannot index a value of type %s", baseType)
		}

		return types.UnknownType
	}

	return baseType.Element()
}

func (a *Analyzer) checkMember(expr *ast.MemberExpr) *types.Type {
	sym := a.Table.Lookup(expr.Base + "." + expr.Member)
	if sym != nil && sym.Kind == types.SymEnumMember {
		return sym.Type
	}

	a.Sink.Errorf(diag.CodeUndefinedIdentifier, expr.Span(), "undefined member %q.%q", expr.Base, expr.Member)

	return types.UnknownType
}

func (a *Analyzer) checkArrayLiteral(expr *ast.ArrayLiteralExpr) *types.Type {
	if len(expr.Elements) == 0 {
		return a.Interner.Array(types.UnknownType, nil)
	}

	elemType := a.checkExpr(expr.Elements[0])

	for _, el := range expr.Elements[1:] {
		t := a.checkExpr(el)
		if types.Compat(t, elemType) == types.Incompatible {
			a.Sink.Errorf(diag.CodeTypeMismatch, el.Span(), "array literal element has type %s, expected %s", t, elemType)
		}
	}

	n := len(expr.Elements)

	return a.Interner.Array(elemType, &n)
}

// checkAssign is also the assignment/lvalue checker (spec.md §4.3 item 3):
// the target must be an identifier or an array index.
func (a *Analyzer) checkAssign(expr *ast.AssignExpr) *types.Type {
	switch expr.Target.(type) {
	case *ast.IdentifierExpr, *ast.IndexExpr:
	default:
		a.Sink.Errorf(diag.CodeInvalidAssignmentTarget, expr.Target.Span(),
			"assignment target must be an identifier or an array index")
	}

	targetType := a.checkExpr(expr.Target)
	valueType := a.checkExpr(expr.Value)

	if expr.Op == lexer.Assign {
		if !types.CanAssign(valueType, targetType) {
			a.Sink.Errorf(diag.CodeTypeMismatch, expr.Span(), "cannot assign %s to target of type %s", valueType, targetType)
		}
	} else if _, ok := types.BinaryResult(compoundBaseOp(expr.Op), targetType, valueType); !ok {
		a.Sink.Errorf(diag.CodeTypeMismatch, expr.Span(), "compound assignment operator is not defined for %s and %s", targetType, valueType)
	}

	return targetType
}

// compoundBaseOp maps a compound-assignment operator token to the
// underlying binary operator it implies (e.g. PlusAssign -> Plus), so
// operand-type rules can be reused.
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
		return op
	}
}
