package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectRecursion(t *testing.T) {
	g := NewGraph()
	g.Declare("fact", true)
	g.AddCall("fact", "fact")

	g.ComputeRecursion()

	assert.True(t, g.Node("fact").Recursive)
}

func TestMutualRecursion(t *testing.T) {
	g := NewGraph()
	g.Declare("isEven", false)
	g.Declare("isOdd", false)
	g.AddCall("isEven", "isOdd")
	g.AddCall("isOdd", "isEven")

	g.ComputeRecursion()

	assert.True(t, g.Node("isEven").Recursive)
	assert.True(t, g.Node("isOdd").Recursive)
}

func TestNoRecursionForAcyclicCalls(t *testing.T) {
	g := NewGraph()
	g.Declare("main", true)
	g.Declare("helper", false)
	g.AddCall("main", "helper")

	g.ComputeRecursion()

	assert.False(t, g.Node("main").Recursive)
	assert.False(t, g.Node("helper").Recursive)
}

func TestUnreachableFlagsUnusedNonExportedFunction(t *testing.T) {
	g := NewGraph()
	g.Declare("main", true)
	g.Declare("used", false)
	g.Declare("dead", false)
	g.AddCall("main", "used")

	g.MarkReachableFrom([]string{"main"})

	assert.Equal(t, []string{"dead"}, g.Unreachable())
}

func TestIndirectFunctionIsNeverUnused(t *testing.T) {
	g := NewGraph()
	g.Declare("main", true)
	g.Declare("callback", false)
	g.MarkIndirect("callback")

	g.MarkReachableFrom([]string{"main"})

	assert.Empty(t, g.Unreachable())
}

func TestCallSiteCount(t *testing.T) {
	g := NewGraph()
	g.Declare("main", true)
	g.Declare("helper", false)
	g.AddCall("main", "helper")
	g.AddCall("main", "helper")

	assert.Equal(t, 2, g.Node("main").CallSiteCount("helper"))
}

func TestInlineCandidateRequiresSingleCallSiteAndLeaf(t *testing.T) {
	g := NewGraph()
	g.Declare("main", true)
	g.Declare("leaf", false)
	g.Declare("notLeaf", false)
	g.AddCall("main", "leaf")
	g.AddCall("main", "notLeaf")
	g.AddCall("notLeaf", "leaf")

	g.MarkInlineCandidates(map[string]int{"leaf": 3, "notLeaf": 10}, 5)

	assert.False(t, g.Node("leaf").InlineHint, "leaf is called from two sites, not one")
	assert.False(t, g.Node("notLeaf").InlineHint, "notLeaf has its own callees, so it is not a leaf")
}

func TestInlineCandidateSingleCallSite(t *testing.T) {
	g := NewGraph()
	g.Declare("main", true)
	g.Declare("leaf", false)
	g.AddCall("main", "leaf")

	g.MarkInlineCandidates(map[string]int{"leaf": 3}, 5)

	assert.True(t, g.Node("leaf").InlineHint)
}
