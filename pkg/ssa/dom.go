// Package ssa converts pkg/ilgen's pre-SSA IL (program variables threaded
// through OpVarRef reads/defs) into full SSA form: one static definition per
// register, phi nodes at every merge point a variable's value can differ
// across, and no OpVarRef left anywhere in the module.
//
// Grounded on pkg/cfg's bitset-backed Graph for the dominance computation
// (Cooper, Harvey & Kennedy's iterative dataflow formulation of dominance,
// run over the same reverse-postorder traversal pkg/cfg.Graph.PostOrder
// already provides), and on Cytron et al.'s dominance-frontier placement of
// phi nodes keyed on pkg/il.Instruction.VarName rather than on a separate
// alias-analysis result, since every local/parameter in this IL already
// carries its source name on the instruction that defines or reads it.
package ssa

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/blendsdk/blend65-sub015/pkg/cfg"
	"github.com/blendsdk/blend65-sub015/pkg/il"
)

// DomTree is one function's dominator tree plus the dominance frontier of
// every block, computed once up front and reused by phi placement and by
// renaming.
type DomTree struct {
	fn        *il.Function
	graph     *cfg.Graph
	idom      []int // by block id; the entry's own id for the entry, -1 for unreachable blocks
	order     []int // rpo position by block id; -1 if unreachable
	Frontier  []*bitset.BitSet
	children  [][]il.BlockID
	reachable *bitset.BitSet
}

// BuildDomTree computes the dominator tree and dominance frontiers of fn,
// treating block 0 as the entry per pkg/il.Function's convention.
func BuildDomTree(fn *il.Function) *DomTree {
	n := len(fn.Blocks)
	g := cfg.NewGraph(n)

	for _, b := range fn.Blocks {
		for _, s := range b.Succs {
			g.AddEdge(cfg.BlockID(b.ID), cfg.BlockID(s))
		}
	}

	entry := cfg.BlockID(0)
	rpo := reversePostOrder(g, entry, n)

	order := make([]int, n)
	for i := range order {
		order[i] = -1
	}

	for i, b := range rpo {
		order[b] = i
	}

	idom := computeIdom(g, rpo, order)

	t := &DomTree{
		fn:        fn,
		graph:     g,
		idom:      idom,
		order:     order,
		reachable: g.Reachable(entry),
	}

	t.Frontier = computeDominanceFrontier(g, idom, n)
	t.children = buildChildren(idom, n)

	return t
}

// reversePostOrder reorders pkg/cfg.Graph's depth-first post-order into the
// order dominator computation needs: each block before any successor it
// reaches.
func reversePostOrder(g *cfg.Graph, entry cfg.BlockID, n int) []cfg.BlockID {
	post := g.PostOrder(entry)

	rpo := make([]cfg.BlockID, len(post))
	for i, b := range post {
		rpo[len(post)-1-i] = b
	}

	_ = n

	return rpo
}

// computeIdom is Cooper/Harvey/Kennedy's "A Simple, Fast Dominance
// Algorithm": iterate the reverse-postorder block list to a fixed point,
// setting each block's immediate dominator to the intersection, in the
// dominator tree built so far, of all of its already-processed predecessors.
func computeIdom(g *cfg.Graph, rpo []cfg.BlockID, order []int) []int {
	idom := make([]int, g.BlockCount())
	for i := range idom {
		idom[i] = -1
	}

	if len(rpo) == 0 {
		return idom
	}

	entry := rpo[0]
	idom[entry] = int(entry)

	changed := true
	for changed {
		changed = false

		for _, b := range rpo[1:] {
			preds := g.Predecessors(b)
			newIdom := -1

			for i, e := preds.NextSet(0); e; i, e = preds.NextSet(i + 1) {
				p := int(i)
				if idom[p] == -1 {
					continue
				}

				if newIdom == -1 {
					newIdom = p
					continue
				}

				newIdom = intersect(newIdom, p, idom, order)
			}

			if newIdom != -1 && idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}

	return idom
}

// intersect walks two blocks up the partially-built dominator tree until
// they meet, using reverse-postorder position as the tree's depth ordering
// (a block with a smaller rpo number is always closer to, or is, the entry).
func intersect(a, b int, idom []int, order []int) int {
	for a != b {
		for order[a] > order[b] {
			a = idom[a]
		}

		for order[b] > order[a] {
			b = idom[b]
		}
	}

	return a
}

// computeDominanceFrontier is the standard Cytron/Ferrante/Rosen/Zadeck
// computation: a block b is in DF(p) when p dominates a predecessor of b but
// does not strictly dominate b itself.
func computeDominanceFrontier(g *cfg.Graph, idom []int, n int) []*bitset.BitSet {
	df := make([]*bitset.BitSet, n)
	for i := range df {
		df[i] = bitset.New(uint(n))
	}

	for b := 0; b < n; b++ {
		if idom[b] == -1 {
			continue
		}

		preds := g.Predecessors(cfg.BlockID(b))
		if preds.Count() < 2 {
			continue
		}

		for i, e := preds.NextSet(0); e; i, e = preds.NextSet(i + 1) {
			runner := int(i)

			for runner != idom[b] && idom[runner] != -1 {
				df[runner].Set(uint(b))

				if runner == idom[runner] {
					break
				}

				runner = idom[runner]
			}
		}
	}

	return df
}

func buildChildren(idom []int, n int) [][]il.BlockID {
	children := make([][]il.BlockID, n)

	for b := 0; b < n; b++ {
		if idom[b] == -1 || idom[b] == b {
			continue
		}

		children[idom[b]] = append(children[idom[b]], il.BlockID(b))
	}

	return children
}

// Dominates reports whether a dominates b (reflexively: a block dominates
// itself).
func (t *DomTree) Dominates(a, b il.BlockID) bool {
	if int(b) >= len(t.idom) {
		return false
	}

	cur := int(b)
	if t.idom[cur] == -1 && cur != 0 {
		return false
	}

	for {
		if cur == int(a) {
			return true
		}

		if t.idom[cur] == cur {
			return cur == int(a)
		}

		if t.idom[cur] == -1 {
			return false
		}

		cur = t.idom[cur]
	}
}

// Reachable reports whether b is reachable from the entry block.
func (t *DomTree) Reachable(b il.BlockID) bool {
	return t.reachable.Test(uint(b))
}
