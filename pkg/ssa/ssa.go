package ssa

import "github.com/blendsdk/blend65-sub015/pkg/il"

// Construct converts every function in mod from pkg/ilgen's pre-SSA form
// into SSA form in place: phi nodes are inserted at the dominance frontier
// of each variable's definitions, every OpVarRef read is resolved to the
// register of its dominating definition, and every OpVarRef instruction
// (read and def alike) is removed from the module.
func Construct(mod *il.Module) {
	for _, fn := range mod.Functions {
		ConstructFunction(fn)
	}
}

// ConstructFunction runs SSA construction on a single function. Functions
// with no body (declared but not defined) have no blocks and are a no-op.
func ConstructFunction(fn *il.Function) {
	if len(fn.Blocks) == 0 {
		return
	}

	tree := BuildDomTree(fn)
	placePhis(fn, tree)
	rename(fn, tree)
}
