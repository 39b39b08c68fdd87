package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Builds: 0 -> 1 -> 2, 0 -> 3 (3 is an exit with no successors), 4 unreachable.
func buildSample() *Graph {
	g := NewGraph(5)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(0, 3)

	return g
}

func TestReachableAndUnreachable(t *testing.T) {
	g := buildSample()

	reachable := g.Reachable(0)
	assert.True(t, reachable.Test(0))
	assert.True(t, reachable.Test(1))
	assert.True(t, reachable.Test(2))
	assert.True(t, reachable.Test(3))
	assert.False(t, reachable.Test(4))

	unreachable := g.Unreachable(0)
	assert.Equal(t, []BlockID{4}, unreachable)
}

func TestExitBlocks(t *testing.T) {
	g := buildSample()

	assert.False(t, g.IsExit(0))
	assert.False(t, g.IsExit(1))
	assert.True(t, g.IsExit(2))
	assert.True(t, g.IsExit(3))
	assert.True(t, g.IsExit(4), "a block with no outgoing edges at all is still an exit")
}

func TestPredecessors(t *testing.T) {
	g := buildSample()

	preds := g.Predecessors(1)
	assert.True(t, preds.Test(0))
	assert.False(t, preds.Test(2))
}

func TestPostOrder(t *testing.T) {
	g := buildSample()

	order := g.PostOrder(0)
	// 2 and 3 must both finish before 1 and 0 in a post-order traversal;
	// 0 (the entry) must always finish last.
	assert.Equal(t, BlockID(0), order[len(order)-1])

	pos := make(map[BlockID]int)
	for i, b := range order {
		pos[b] = i
	}

	assert.Less(t, pos[2], pos[1])
	assert.Less(t, pos[1], pos[0])
	assert.Less(t, pos[3], pos[0])
}
