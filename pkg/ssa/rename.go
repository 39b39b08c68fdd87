package ssa

import "github.com/blendsdk/blend65-sub015/pkg/il"

// savedValue records what a variable's current-value binding was before a
// renamer.set call, so it can be restored once the dominator-tree subtree
// rooted at the block that changed it has been fully visited.
type savedValue struct {
	had bool
	reg il.RegisterID
}

// renamer carries the per-function state of the dominator-tree walk that
// resolves every OpVarRef to a concrete SSA register.
type renamer struct {
	fn      *il.Function
	tree    *DomTree
	current map[string]il.RegisterID
	alias   map[il.RegisterID]il.RegisterID
}

// rename walks the dominator tree from the entry block, resolving every
// OpVarRef read to the register of its dominating definition (a phi, an
// OpLoadParam, or a prior def-form OpVarRef) and deleting all OpVarRef
// instructions from the final module. Blocks unreachable from the entry are
// swept separately afterwards, since the dominator-tree walk never visits
// them.
func rename(fn *il.Function, tree *DomTree) {
	r := &renamer{
		fn:      fn,
		tree:    tree,
		current: make(map[string]il.RegisterID),
		alias:   make(map[il.RegisterID]il.RegisterID),
	}

	r.visit(0)
	r.sweepUnreachable()
}

func (r *renamer) visit(b il.BlockID) {
	block := r.fn.Block(b)
	saved := map[string]savedValue{}

	set := func(name string, reg il.RegisterID) {
		if _, done := saved[name]; !done {
			if old, ok := r.current[name]; ok {
				saved[name] = savedValue{had: true, reg: old}
			} else {
				saved[name] = savedValue{had: false}
			}
		}

		r.current[name] = reg
	}

	kept := block.Instructions[:0:0]

	for _, instr := range block.Instructions {
		remapOperands(&instr, r.alias)

		switch {
		case instr.Op == il.OpPhi:
			set(instr.VarName, instr.Dest)
			kept = append(kept, instr)

		case instr.Op == il.OpLoadParam:
			set(instr.VarName, instr.Dest)
			kept = append(kept, instr)

		case isVarRead(instr):
			r.alias[instr.Dest] = r.valueOf(block, instr.VarName, instr.Type)

		case isDef(instr):
			set(instr.VarName, instr.Operands[0])

		default:
			kept = append(kept, instr)
		}
	}

	block.Instructions = kept

	for _, succID := range block.Succs {
		r.fillPhiSources(b, succID)
	}

	for _, child := range r.tree.children[b] {
		r.visit(child)
	}

	for name, sv := range saved {
		if sv.had {
			r.current[name] = sv.reg
		} else {
			delete(r.current, name)
		}
	}
}

// valueOf returns the register currently bound to name, materializing a
// fresh zero constant in block if no binding reaches this point. pkg/sema
// performs no definite-assignment check, so no earlier pass rules that case
// out.
func (r *renamer) valueOf(block *il.BasicBlock, name string, t il.Type) il.RegisterID {
	if v, ok := r.current[name]; ok {
		return v
	}

	reg := r.fn.NewRegister()
	insertBeforeTerminator(block, il.Instruction{Op: il.OpConst, Dest: reg, HasDest: true, Type: t})
	r.current[name] = reg

	return reg
}

func (r *renamer) fillPhiSources(from, to il.BlockID) {
	succ := r.fn.Block(to)

	predIdx := -1

	for i, p := range succ.Preds {
		if p == from {
			predIdx = i

			break
		}
	}

	if predIdx == -1 {
		return
	}

	for i := range succ.Instructions {
		instr := &succ.Instructions[i]
		if instr.Op != il.OpPhi {
			continue
		}

		instr.PhiSources[predIdx] = r.valueOf(r.fn.Block(from), instr.VarName, instr.Type)
	}
}

// sweepUnreachable strips any OpVarRef instructions left in blocks the
// dominator-tree walk never reached (dead code with no path from entry),
// satisfying the invariant that no OpVarRef survives SSA construction
// regardless of reachability.
func (r *renamer) sweepUnreachable() {
	for _, block := range r.fn.Blocks {
		if r.tree.Reachable(block.ID) {
			continue
		}

		kept := block.Instructions[:0:0]

		for _, instr := range block.Instructions {
			remapOperands(&instr, r.alias)

			if instr.Op == il.OpVarRef {
				continue
			}

			kept = append(kept, instr)
		}

		block.Instructions = kept
	}
}

func remapOperands(instr *il.Instruction, alias map[il.RegisterID]il.RegisterID) {
	for i, op := range instr.Operands {
		if mapped, ok := alias[op]; ok {
			instr.Operands[i] = mapped
		}
	}
}

func insertBeforeTerminator(block *il.BasicBlock, instr il.Instruction) {
	n := len(block.Instructions)
	if n == 0 {
		block.Instructions = append(block.Instructions, instr)

		return
	}

	block.Instructions = append(block.Instructions, il.Instruction{})
	copy(block.Instructions[n:n+1], block.Instructions[n-1:n])
	block.Instructions[n-1] = instr
}
