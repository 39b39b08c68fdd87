package ilgen

import (
	"github.com/blendsdk/blend65-sub015/pkg/ast"
	"github.com/blendsdk/blend65-sub015/pkg/il"
	"github.com/blendsdk/blend65-sub015/pkg/types"
)

// createFunctionStubs is phase 3: every function is created in the module
// with its signature (and, if it has a body, an empty entry block) before
// any body is lowered,
// so forward references and mutual recursion work, per spec.md §4.4 item 3.
// Parameter registers are allocated here, at function-creation time.
func (b *builder) createFunctionStubs(prog *ast.Program) {
	for _, d := range prog.Declarations {
		exported := false

		decl := d
		if exp, ok := d.(*ast.ExportDecl); ok {
			decl = exp.Inner
			exported = true
		}

		fn, ok := decl.(*ast.FunctionDecl)
		if !ok {
			continue
		}

		b.createFunctionStub(fn, exported)
	}
}

func (b *builder) createFunctionStub(decl *ast.FunctionDecl, exported bool) {
	sym := b.sem.Table.Lookup(decl.Name)

	var sig *types.Type
	if sym != nil {
		sig = sym.Type
	}

	retType := il.Void
	if sig != nil && sig.Return() != nil {
		retType = toILType(sig.Return())
	}

	params := make([]il.Param, len(decl.Params))

	// Parameter registers are allocated up front from a throwaway counter;
	// NewFunction below reserves the range they span so the function's own
	// allocator continues past them.
	var next il.RegisterID

	for i, p := range decl.Params {
		var pType *types.Type
		if sig != nil && i < len(sig.Params()) {
			pType = sig.Params()[i]
		} else {
			pType = types.UnknownType
		}

		params[i] = il.Param{Name: p.Name, Type: toILType(pType), Register: next}
		next++
	}

	fn := il.NewFunction(decl.Name, exported, decl.IsCallback, params, retType)
	if decl.Body == nil {
		// A stub has no body to lower, so it keeps no blocks; pkg/ssa and
		// pkg/ilvalidate skip block-less functions.
		fn.Blocks = nil
	}

	b.module.Functions = append(b.module.Functions, fn)
}

// lowerFunctionBodies is phase 4: every non-stub function's body is walked,
// lowering statements into instructions appended to a current basic block,
// per spec.md §4.4 item 4.
func (b *builder) lowerFunctionBodies(prog *ast.Program) {
	for _, d := range prog.Declarations {
		decl := d
		if exp, ok := d.(*ast.ExportDecl); ok {
			decl = exp.Inner
		}

		fn, ok := decl.(*ast.FunctionDecl)
		if !ok || fn.Body == nil {
			continue
		}

		b.lowerFunctionBody(fn)
	}
}

func (b *builder) lowerFunctionBody(decl *ast.FunctionDecl) {
	b.fn = b.module.Function(decl.Name)
	b.block = b.fn.Blocks[0]
	b.varSeq = make(map[string]int)
	b.scopes = nil
	b.breakTargets = nil
	b.continueTargets = nil

	b.pushScope()
	defer b.popScope()

	for i, p := range decl.Params {
		name := b.declareVar(p.Name)
		b.emit(il.Instruction{Op: il.OpLoadParam, Dest: b.fn.Params[i].Register, HasDest: true, Type: b.fn.Params[i].Type, VarName: name})
	}

	b.pushScope()
	b.lowerBlock(decl.Body.Stmts)
	b.popScope()

	if _, ok := b.block.Terminator(); !ok {
		if b.fn.ReturnType == il.Void {
			b.emit(il.Instruction{Op: il.OpReturnVoid})
		} else {
			// pkg/sema does not report a non-void function falling off the
			// end without a return; lowering still needs a terminator so the
			// IL stays structurally valid, so it synthesizes a zero-valued
			// return.
			zero := b.newReg()
			b.emit(il.Instruction{Op: il.OpConst, Dest: zero, HasDest: true, Type: b.fn.ReturnType})
			b.emit(il.Instruction{Op: il.OpReturn, Operands: []il.RegisterID{zero}})
		}
	}
}

// newReg draws the next register ID from the current function's single
// monotonic counter (spec.md §4.4's per-function allocator).
func (b *builder) newReg() il.RegisterID {
	return b.fn.NewRegister()
}

// newBlock allocates a fresh basic block in the current function.
func (b *builder) newBlock() *il.BasicBlock {
	return b.fn.NewBlock()
}

// emit appends instr to the current block.
func (b *builder) emit(instr il.Instruction) {
	b.block.Instructions = append(b.block.Instructions, instr)
}

// jumpTo terminates the current block with an unconditional jump to target,
// unless the block already ends in a terminator (e.g. a return emitted by
// one arm of an if/else).
func (b *builder) jumpTo(target il.BlockID) {
	if _, ok := b.block.Terminator(); ok {
		return
	}

	b.fn.AddEdge(b.block.ID, target)
	b.emit(il.Instruction{Op: il.OpJump, Targets: []il.BlockID{target}})
}

func (b *builder) pushScope() {
	b.scopes = append(b.scopes, make(map[string]string))
}

func (b *builder) popScope() {
	b.scopes = b.scopes[:len(b.scopes)-1]
}

// declareVar mints a unique internal variable name for a fresh declaration
// of surfaceName in the innermost scope, binds it there, and returns it.
// Shadowing an outer declaration (or an earlier sibling scope's use of the
// same surface name) gets a distinct suffix so pkg/ssa's per-variable
// def-site collection never conflates two unrelated source variables.
func (b *builder) declareVar(surfaceName string) string {
	n := b.varSeq[surfaceName]
	b.varSeq[surfaceName] = n + 1

	internal := surfaceName
	if n > 0 {
		internal = surfaceName + "~" + itoa(n)
	}

	b.scopes[len(b.scopes)-1][surfaceName] = internal

	return internal
}

// resolveVar looks up surfaceName's current internal name, innermost scope
// first; ok is false if it names a global rather than a local/parameter.
func (b *builder) resolveVar(surfaceName string) (string, bool) {
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if internal, ok := b.scopes[i][surfaceName]; ok {
			return internal, true
		}
	}

	return "", false
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	var buf [20]byte

	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}

	return string(buf[i:])
}
