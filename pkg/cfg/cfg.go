// Package cfg implements the per-function control-flow graph used by
// pkg/sema's control-flow analyzer and by pkg/ssa's dominator-tree
// construction: a flat array of blocks addressed by integer id, each
// carrying its successor/predecessor sets as bitsets.
//
// Grounded on Consensys-go-corset/pkg/util/collection/bit.Set for the
// bitset-of-small-integers idiom, generalized here to the pack's
// github.com/bits-and-blooms/bitset so the CFG can share that dependency
// with pkg/ssa's dominance-frontier computation.
package cfg

import "github.com/bits-and-blooms/bitset"

// BlockID indexes a basic block within one function's graph. Block 0 is
// always the function's entry block.
type BlockID uint

// Graph is the control-flow graph of a single function: block ids are dense
// (0..N-1) and edges are recorded both forward (successors) and backward
// (predecessors) so callers never need to invert the graph themselves.
type Graph struct {
	blockCount  int
	successors  []*bitset.BitSet
	predecessor []*bitset.BitSet
	exits       *bitset.BitSet // blocks with no successors (return/fallthrough-to-end)
}

// NewGraph allocates an empty graph with blockCount blocks and no edges.
func NewGraph(blockCount int) *Graph {
	g := &Graph{
		blockCount:  blockCount,
		successors:  make([]*bitset.BitSet, blockCount),
		predecessor: make([]*bitset.BitSet, blockCount),
		exits:       bitset.New(uint(blockCount)),
	}

	for i := range g.successors {
		g.successors[i] = bitset.New(uint(blockCount))
		g.predecessor[i] = bitset.New(uint(blockCount))
		g.exits.Set(uint(i))
	}

	return g
}

// BlockCount returns the number of blocks in the graph.
func (g *Graph) BlockCount() int { return g.blockCount }

// AddEdge records a control-flow edge from -> to. Adding any outgoing edge
// from a block clears its exit-block marking.
func (g *Graph) AddEdge(from, to BlockID) {
	g.successors[from].Set(uint(to))
	g.predecessor[to].Set(uint(from))
	g.exits.Clear(uint(from))
}

// Successors returns the set of blocks reachable from b in one edge.
func (g *Graph) Successors(b BlockID) *bitset.BitSet {
	return g.successors[b]
}

// Predecessors returns the set of blocks with an edge directly into b.
func (g *Graph) Predecessors(b BlockID) *bitset.BitSet {
	return g.predecessor[b]
}

// IsExit reports whether b has no successors (a return or a fallthrough off
// the end of the function).
func (g *Graph) IsExit(b BlockID) bool {
	return g.exits.Test(uint(b))
}

// Exits returns the set of all exit blocks.
func (g *Graph) Exits() *bitset.BitSet {
	return g.exits
}

// Reachable computes the set of blocks reachable from entry via forward
// edges, by fixed-point BFS. Unreachable blocks are exactly the ones a
// control-flow analyzer should flag with an UNREACHABLE_CODE diagnostic.
func (g *Graph) Reachable(entry BlockID) *bitset.BitSet {
	seen := bitset.New(uint(g.blockCount))
	worklist := []BlockID{entry}
	seen.Set(uint(entry))

	for len(worklist) > 0 {
		b := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		succ := g.successors[b]
		for i, e := succ.NextSet(0); e; i, e = succ.NextSet(i + 1) {
			if !seen.Test(i) {
				seen.Set(i)
				worklist = append(worklist, BlockID(i))
			}
		}
	}

	return seen
}

// Unreachable returns the blocks NOT reachable from entry, in ascending
// block-id order.
func (g *Graph) Unreachable(entry BlockID) []BlockID {
	reachable := g.Reachable(entry)

	var result []BlockID

	for i := 0; i < g.blockCount; i++ {
		if !reachable.Test(uint(i)) {
			result = append(result, BlockID(i))
		}
	}

	return result
}

// PostOrder returns blocks reachable from entry in depth-first post-order,
// the traversal pkg/ssa's dominator-tree construction iterates in reverse.
func (g *Graph) PostOrder(entry BlockID) []BlockID {
	visited := bitset.New(uint(g.blockCount))

	var order []BlockID

	var visit func(b BlockID)

	visit = func(b BlockID) {
		if visited.Test(uint(b)) {
			return
		}

		visited.Set(uint(b))

		succ := g.successors[b]
		for i, e := succ.NextSet(0); e; i, e = succ.NextSet(i + 1) {
			visit(BlockID(i))
		}

		order = append(order, b)
	}

	visit(entry)

	return order
}
