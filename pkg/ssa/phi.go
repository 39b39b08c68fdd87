package ssa

import (
	"sort"

	"github.com/blendsdk/blend65-sub015/pkg/il"
)

// isDef reports whether instr is a definition of a program variable: either
// the one instruction that binds a parameter to its entry register, or the
// def form of OpVarRef pkg/ilgen emits after every assignment to a
// local/parameter (Operands[0] set, as opposed to the read form, which
// leaves Operands empty).
func isDef(instr il.Instruction) bool {
	if instr.VarName == "" {
		return false
	}

	if instr.Op == il.OpLoadParam {
		return true
	}

	return instr.Op == il.OpVarRef && len(instr.Operands) == 1
}

// isVarRead reports whether instr is the read form of OpVarRef.
func isVarRead(instr il.Instruction) bool {
	return instr.Op == il.OpVarRef && instr.VarName != "" && len(instr.Operands) == 0
}

// placePhis inserts an OpPhi instruction, with its destination register
// already allocated, at the head of every block in the iterated dominance
// frontier of each variable's definition sites (Cytron et al.'s minimal SSA
// placement). Phis are prepended in VarName order within a block so output
// is deterministic across runs.
func placePhis(fn *il.Function, tree *DomTree) {
	defSites := map[string][]il.BlockID{}
	varType := map[string]il.Type{}

	for _, b := range fn.Blocks {
		seen := map[string]bool{}

		for _, instr := range b.Instructions {
			if !isDef(instr) || seen[instr.VarName] {
				continue
			}

			seen[instr.VarName] = true
			defSites[instr.VarName] = append(defSites[instr.VarName], b.ID)
			varType[instr.VarName] = instr.Type
		}
	}

	hasPhi := map[il.BlockID]map[string]bool{}

	for varName, sites := range defSites {
		worklist := append([]il.BlockID{}, sites...)

		for len(worklist) > 0 {
			b := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]

			df := tree.Frontier[b]

			for i, e := df.NextSet(0); e; i, e = df.NextSet(i + 1) {
				target := il.BlockID(i)

				if hasPhi[target] == nil {
					hasPhi[target] = map[string]bool{}
				}

				if hasPhi[target][varName] {
					continue
				}

				hasPhi[target][varName] = true
				worklist = append(worklist, target)
			}
		}
	}

	for _, b := range fn.Blocks {
		vars, ok := hasPhi[b.ID]
		if !ok {
			continue
		}

		predCount := len(b.Preds)

		names := make([]string, 0, len(vars))
		for varName := range vars {
			names = append(names, varName)
		}

		sort.Strings(names)

		var phis []il.Instruction

		for _, varName := range names {
			phis = append(phis, il.Instruction{
				Op:         il.OpPhi,
				Dest:       fn.NewRegister(),
				HasDest:    true,
				Type:       varType[varName],
				VarName:    varName,
				PhiSources: make([]il.RegisterID, predCount),
			})
		}

		b.Instructions = append(phis, b.Instructions...)
	}
}
