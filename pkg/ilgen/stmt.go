package ilgen

import (
	"github.com/blendsdk/blend65-sub015/pkg/ast"
	"github.com/blendsdk/blend65-sub015/pkg/diag"
	"github.com/blendsdk/blend65-sub015/pkg/il"
	"github.com/blendsdk/blend65-sub015/pkg/types"
)

// lowerBlock lowers a statement list in the current scope; it pushes no
// scope of its own (funcs.go pushes one around a function body).
func (b *builder) lowerBlock(stmts []ast.Stmt) {
	for _, s := range stmts {
		// Once the current block has already been terminated (by a return,
		// break, or continue), anything lexically after it in the same
		// block is unreachable (already flagged as such by pkg/sema's
		// control-flow analyzer); lowering it would add instructions after
		// a block's terminator, which is structurally invalid IL.
		if _, ok := b.block.Terminator(); ok {
			return
		}

		b.lowerStmt(s)
	}
}

func (b *builder) lowerStmt(s ast.Stmt) {
	switch stmt := s.(type) {
	case *ast.BlockStmt:
		b.pushScope()
		b.lowerBlock(stmt.Stmts)
		b.popScope()

	case *ast.IfStmt:
		b.lowerIf(stmt)

	case *ast.WhileStmt:
		b.lowerWhile(stmt)

	case *ast.ForStmt:
		b.lowerFor(stmt)

	case *ast.SwitchStmt:
		b.lowerSwitch(stmt)

	case *ast.BreakStmt:
		b.lowerBreak(stmt)

	case *ast.ContinueStmt:
		b.lowerContinue(stmt)

	case *ast.ReturnStmt:
		b.lowerReturn(stmt)

	case *ast.ExprStmt:
		b.lowerExpr(stmt.Expr)

	case *ast.LocalVarStmt:
		b.lowerLocalVar(stmt.Decl)

	default:
		b.sink.Errorf(diag.CodeLoweringUnsupported, s.Span(), "unsupported statement form")
	}
}

func (b *builder) lowerLocalVar(decl *ast.VariableDecl) {
	name := b.declareVar(decl.Name)

	if decl.Init == nil {
		ilType := toILType(b.localVarType(decl))
		zero := b.newReg()
		b.emit(il.Instruction{Op: il.OpConst, Dest: zero, HasDest: true, Type: ilType})
		b.defineVar(name, zero, ilType)

		return
	}

	value, valType := b.lowerExpr(decl.Init)
	b.defineVar(name, value, valType)
}

// localVarType looks up a local declaration's resolved type from the
// analyzer's side table, since by lowering time the symbol table itself has
// already popped the scope the declaration lived in.
func (b *builder) localVarType(decl *ast.VariableDecl) *types.Type {
	if t, ok := b.sem.LocalVarTypes[decl]; ok && t != nil {
		return t
	}

	return types.UnknownType
}

func (b *builder) lowerIf(stmt *ast.IfStmt) {
	cond, _ := b.lowerExpr(stmt.Cond)

	thenBlock := b.newBlock()
	mergeBlock := b.newBlock()

	var elseBlock *il.BasicBlock

	if stmt.Else != nil {
		elseBlock = b.newBlock()
	}

	condBlock := b.block

	b.fn.AddEdge(condBlock.ID, thenBlock.ID)

	if elseBlock != nil {
		b.fn.AddEdge(condBlock.ID, elseBlock.ID)
		b.emit(il.Instruction{Op: il.OpBranch, Operands: []il.RegisterID{cond}, Targets: []il.BlockID{thenBlock.ID, elseBlock.ID}})
	} else {
		b.fn.AddEdge(condBlock.ID, mergeBlock.ID)
		b.emit(il.Instruction{Op: il.OpBranch, Operands: []il.RegisterID{cond}, Targets: []il.BlockID{thenBlock.ID, mergeBlock.ID}})
	}

	b.block = thenBlock
	b.pushScope()
	b.lowerStmt(stmt.Then)
	b.popScope()
	b.jumpTo(mergeBlock.ID)

	if elseBlock != nil {
		b.block = elseBlock
		b.pushScope()
		b.lowerStmt(stmt.Else)
		b.popScope()
		b.jumpTo(mergeBlock.ID)
	}

	b.block = mergeBlock
}

func (b *builder) lowerWhile(stmt *ast.WhileStmt) {
	headerBlock := b.newBlock()
	bodyBlock := b.newBlock()
	afterBlock := b.newBlock()

	b.jumpTo(headerBlock.ID)

	b.block = headerBlock
	cond, _ := b.lowerExpr(stmt.Cond)
	b.fn.AddEdge(headerBlock.ID, bodyBlock.ID)
	b.fn.AddEdge(headerBlock.ID, afterBlock.ID)
	b.emit(il.Instruction{Op: il.OpBranch, Operands: []il.RegisterID{cond}, Targets: []il.BlockID{bodyBlock.ID, afterBlock.ID}})

	b.breakTargets = append(b.breakTargets, afterBlock.ID)
	b.continueTargets = append(b.continueTargets, headerBlock.ID)

	b.block = bodyBlock
	b.pushScope()
	b.lowerStmt(stmt.Body)
	b.popScope()
	b.jumpTo(headerBlock.ID)

	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]

	b.block = afterBlock
}

// lowerFor desugars `for v = start (to|downto) end [step k] body` into the
// induction-variable increment/decrement the AST leaves implicit (spec.md
// §3's ForStmt carries no explicit increment statement the way a C-style for
// does), following the same header/body/after block shape as lowerWhile.
func (b *builder) lowerFor(stmt *ast.ForStmt) {
	ilType := toILType(b.resolvedType(stmt.Start))

	start, _ := b.lowerExpr(stmt.Start)

	b.pushScope()
	name := b.declareVar(stmt.Var)
	b.defineVar(name, start, ilType)

	headerBlock := b.newBlock()
	bodyBlock := b.newBlock()
	afterBlock := b.newBlock()

	b.jumpTo(headerBlock.ID)

	b.block = headerBlock
	cur := b.readVar(name, ilType)
	end, _ := b.lowerExpr(stmt.End)

	cond := b.newReg()
	cmpOp := il.Le

	if stmt.Downto {
		cmpOp = il.Ge
	}

	b.emit(il.Instruction{Op: il.OpBinary, Dest: cond, HasDest: true, Type: il.Bool, BinOp: cmpOp, Operands: []il.RegisterID{cur, end}})
	b.fn.AddEdge(headerBlock.ID, bodyBlock.ID)
	b.fn.AddEdge(headerBlock.ID, afterBlock.ID)
	b.emit(il.Instruction{Op: il.OpBranch, Operands: []il.RegisterID{cond}, Targets: []il.BlockID{bodyBlock.ID, afterBlock.ID}})

	b.breakTargets = append(b.breakTargets, afterBlock.ID)
	b.continueTargets = append(b.continueTargets, headerBlock.ID)

	b.block = bodyBlock
	b.pushScope()
	b.lowerStmt(stmt.Body)
	b.popScope()

	cur2 := b.readVar(name, ilType)

	var step il.RegisterID
	if stmt.Step != nil {
		step, _ = b.lowerExpr(stmt.Step)
	} else {
		step = b.newReg()
		b.emit(il.Instruction{Op: il.OpConst, Dest: step, HasDest: true, Type: ilType, ConstValue: 1})
	}

	stepOp := il.Add
	if stmt.Downto {
		stepOp = il.Sub
	}

	next := b.newReg()
	b.emit(il.Instruction{Op: il.OpBinary, Dest: next, HasDest: true, Type: ilType, BinOp: stepOp, Operands: []il.RegisterID{cur2, step}})
	b.defineVar(name, next, ilType)

	b.jumpTo(headerBlock.ID)

	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]

	b.block = afterBlock
	b.popScope()
}

// lowerSwitch lowers a switch into a chain of comparison-and-branch test
// blocks, one per case value, falling through to a default body (or
// straight to the after block if there is none); spec.md's switch has no
// fallthrough between case bodies, so every case body jumps directly to the
// after block.
func (b *builder) lowerSwitch(stmt *ast.SwitchStmt) {
	subject, _ := b.lowerExpr(stmt.Subject)

	afterBlock := b.newBlock()

	b.breakTargets = append(b.breakTargets, afterBlock.ID)

	var defaultCase *ast.SwitchCase

	for i := range stmt.Cases {
		c := &stmt.Cases[i]
		if len(c.Values) == 0 {
			defaultCase = c
			continue
		}

		b.lowerSwitchCase(subject, c, afterBlock.ID)
	}

	if defaultCase != nil {
		b.pushScope()
		b.lowerBlock(defaultCase.Body)
		b.popScope()
	}

	b.jumpTo(afterBlock.ID)

	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]

	b.block = afterBlock
}

func (b *builder) lowerSwitchCase(subject il.RegisterID, c *ast.SwitchCase, afterID il.BlockID) {
	bodyBlock := b.newBlock()
	nextTest := b.newBlock()

	matchAny := subject

	for i, v := range c.Values {
		val, _ := b.lowerExpr(v)
		eq := b.newReg()
		b.emit(il.Instruction{Op: il.OpBinary, Dest: eq, HasDest: true, Type: il.Bool, BinOp: il.Eq, Operands: []il.RegisterID{subject, val}})

		if i == 0 {
			matchAny = eq

			continue
		}

		combined := b.newReg()
		b.emit(il.Instruction{Op: il.OpBinary, Dest: combined, HasDest: true, Type: il.Bool, BinOp: il.LogOr, Operands: []il.RegisterID{matchAny, eq}})
		matchAny = combined
	}

	testBlock := b.block

	b.fn.AddEdge(testBlock.ID, bodyBlock.ID)
	b.fn.AddEdge(testBlock.ID, nextTest.ID)
	b.emit(il.Instruction{Op: il.OpBranch, Operands: []il.RegisterID{matchAny}, Targets: []il.BlockID{bodyBlock.ID, nextTest.ID}})

	b.block = bodyBlock
	b.pushScope()
	b.lowerBlock(c.Body)
	b.popScope()
	b.jumpTo(afterID)

	b.block = nextTest
}

func (b *builder) lowerBreak(stmt *ast.BreakStmt) {
	if len(b.breakTargets) == 0 {
		b.sink.Errorf(diag.CodeLoweringUnsupported, stmt.Span(), "break outside a loop or switch")

		return
	}

	target := b.breakTargets[len(b.breakTargets)-1]
	b.fn.AddEdge(b.block.ID, target)
	b.emit(il.Instruction{Op: il.OpJump, Targets: []il.BlockID{target}})
}

func (b *builder) lowerContinue(stmt *ast.ContinueStmt) {
	if len(b.continueTargets) == 0 {
		b.sink.Errorf(diag.CodeLoweringUnsupported, stmt.Span(), "continue outside a loop")

		return
	}

	target := b.continueTargets[len(b.continueTargets)-1]
	b.fn.AddEdge(b.block.ID, target)
	b.emit(il.Instruction{Op: il.OpJump, Targets: []il.BlockID{target}})
}

func (b *builder) lowerReturn(stmt *ast.ReturnStmt) {
	if stmt.Value == nil {
		b.emit(il.Instruction{Op: il.OpReturnVoid})

		return
	}

	value, _ := b.lowerExpr(stmt.Value)
	b.emit(il.Instruction{Op: il.OpReturn, Operands: []il.RegisterID{value}})
}
