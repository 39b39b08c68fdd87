package il

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFunctionEntryBlock(t *testing.T) {
	fn := NewFunction("f", true, false, nil, Void)
	require.Len(t, fn.Blocks, 1)
	assert.Equal(t, BlockID(0), fn.Blocks[0].ID)
}

func TestRegisterAllocatorIsMonotonic(t *testing.T) {
	fn := NewFunction("f", false, false, nil, Void)

	r1 := fn.NewRegister()
	r2 := fn.NewRegister()
	r3 := fn.NewRegister()

	assert.Less(t, r1, r2)
	assert.Less(t, r2, r3)
}

func TestParamRegistersReserveAllocatorRange(t *testing.T) {
	params := []Param{{Name: "x", Type: Byte, Register: 0}, {Name: "y", Type: Byte, Register: 1}}
	fn := NewFunction("f", false, false, params, Byte)

	next := fn.NewRegister()
	assert.Equal(t, RegisterID(2), next, "register allocation must continue past reserved parameter registers")
}

func TestAddEdgeKeepsPredsAndSuccsSymmetric(t *testing.T) {
	fn := NewFunction("f", false, false, nil, Void)
	b1 := fn.NewBlock()

	fn.AddEdge(fn.Blocks[0].ID, b1.ID)

	assert.Contains(t, fn.Blocks[0].Succs, b1.ID)
	assert.Contains(t, b1.Preds, fn.Blocks[0].ID)
}

func TestTerminatorDetection(t *testing.T) {
	fn := NewFunction("f", false, false, nil, Void)
	entry := fn.Blocks[0]

	_, ok := entry.Terminator()
	assert.False(t, ok, "an empty block has no terminator")

	entry.Instructions = append(entry.Instructions, Instruction{Op: OpReturnVoid})

	term, ok := entry.Terminator()
	assert.True(t, ok)
	assert.Equal(t, OpReturnVoid, term.Op)
}

func TestModuleDumpJSONRoundTripsShape(t *testing.T) {
	m := &Module{Name: "t", EntryPoint: "main"}

	fn := NewFunction("main", true, false, nil, Void)
	entry := fn.Blocks[0]
	entry.Instructions = append(entry.Instructions,
		Instruction{Op: OpConst, Dest: fn.NewRegister(), Type: Word, ConstValue: 0xD020},
		Instruction{Op: OpConst, Dest: fn.NewRegister(), Type: Byte, ConstValue: 0},
		Instruction{Op: OpPoke, Operands: []RegisterID{0, 1}},
		Instruction{Op: OpReturnVoid},
	)
	m.Functions = append(m.Functions, fn)

	out, err := m.DumpJSON()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"op": "CONST"`)
	assert.Contains(t, string(out), `"entryPoint": "main"`)
}
