// Package il implements the intermediate representation spec.md §3/§4.4
// describes: a Module of global variables, imports, exports and functions;
// each Function a graph of BasicBlocks; each BasicBlock a straight-line
// sequence of register-producing/consuming Instructions ending in exactly
// one terminator.
//
// Grounded on Consensys-go-corset/pkg/asm/io/macro (the macro instruction
// IR go-corset lowers its assembly DSL into) for the opcode-tagged
// instruction-with-operands shape, and pkg/asm/io/micro for the
// function/block container shape one level below it.
package il

import "fmt"

// StorageClass mirrors pkg/ast.StorageClass at the IL level (spec.md §4.4's
// storage-class mapping table). Kept as its own type, rather than importing
// pkg/ast, so pkg/il has no dependency on the front end.
type StorageClass uint

const (
	ZeroPage StorageClass = iota
	Ram
	Data
	Map
)

func (s StorageClass) String() string {
	switch s {
	case ZeroPage:
		return "zp"
	case Ram:
		return "ram"
	case Data:
		return "data"
	case Map:
		return "map"
	default:
		return "unknown"
	}
}

// Type is the IL's own small type tag: byte, word, bool, void. Arrays and
// enums are already resolved to a concrete width by the time IL is
// generated (spec.md §4.4), so the IL only ever needs to distinguish
// storage width plus void for statement-context instructions.
type Type uint

const (
	Byte Type = iota
	Word
	Bool
	Void
)

func (t Type) String() string {
	switch t {
	case Byte:
		return "byte"
	case Word:
		return "word"
	case Bool:
		return "bool"
	default:
		return "void"
	}
}

// Size reports the type's width in bytes.
func (t Type) Size() int {
	switch t {
	case Byte, Bool:
		return 1
	case Word:
		return 2
	default:
		return 0
	}
}

// RegisterID is a virtual register identifier, unique across an entire
// function (spec.md §4.4: "a per-function value/block-ID allocator
// guarantees globally unique register and block IDs").
type RegisterID uint

// BlockID identifies a basic block within one function.
type BlockID uint

// Opcode tags the operation an Instruction performs.
type Opcode uint

const (
	OpConst Opcode = iota
	OpLoadGlobal
	OpStoreGlobal
	OpLoadParam
	OpBinary
	OpUnary
	OpCall
	OpPhi
	OpIndexAddr // address arithmetic for a[i]
	OpLoad      // load through a computed address
	OpStore     // store through a computed address
	OpConvert   // explicit width conversion (word -> byte truncation, etc)

	// OpVarRef is a pre-SSA placeholder with two uses, both discarded by
	// pkg/ssa's renaming pass before the module reaches SSA form:
	//   - a read (Operands empty): "the current value of the program
	//     variable named VarName at this program point". pkg/ilgen emits
	//     one at every read of a local variable or parameter instead of
	//     guessing which prior assignment reaches it.
	//   - a def (Operands[0] set): "VarName's new value, as of this point,
	//     is register Operands[0]". pkg/ilgen emits one of these after every
	//     assignment to a local/parameter instead of threading VarName
	//     through whichever opcode computed Operands[0].
	// pkg/ssa resolves every read to the register of its dominating def (or
	// a freshly placed phi) during renaming.
	OpVarRef

	// Intrinsic opcodes, per spec.md §4.4's intrinsic lowering table.
	OpPeek
	OpPoke
	OpPeekW
	OpPokeW
	OpSei
	OpCli
	OpNop
	OpBrk
	OpPha
	OpPla
	OpPhp
	OpPlp
	OpBarrier
	OpVolatileRead
	OpVolatileWrite

	// Terminators. Every non-empty basic block ends in exactly one of these.
	OpJump
	OpBranch
	OpReturn
	OpReturnVoid
)

func (o Opcode) String() string {
	names := [...]string{
		"CONST", "LOAD_GLOBAL", "STORE_GLOBAL", "LOAD_PARAM", "BINARY", "UNARY",
		"CALL", "PHI", "INDEX_ADDR", "LOAD", "STORE", "CONVERT", "VAR_REF",
		"PEEK", "POKE", "PEEKW", "POKEW", "SEI", "CLI", "NOP", "BRK", "PHA",
		"PLA", "PHP", "PLP", "BARRIER", "VOLATILE_READ", "VOLATILE_WRITE",
		"JMP", "BR", "RETURN", "RETURN_VOID",
	}

	if int(o) < len(names) {
		return names[o]
	}

	return "UNKNOWN"
}

// IsTerminator reports whether this opcode may only appear as the last
// instruction of a basic block.
func (o Opcode) IsTerminator() bool {
	return o == OpJump || o == OpBranch || o == OpReturn || o == OpReturnVoid
}

// BinOp/UnOp name the concrete operator an OpBinary/OpUnary instruction
// applies; kept distinct from pkg/lexer.Kind so pkg/il has no front-end
// dependency.
type BinOp uint

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
	And
	Or
	Xor
	Shl
	Shr
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	LogAnd
	LogOr
)

type UnOp uint

const (
	Neg UnOp = iota
	Not
	BitNot
	AddrOf
	LoByte // low byte of a word operand (the `lo` intrinsic)
	HiByte // high byte of a word operand (the `hi` intrinsic)
)

// Instruction is one IL operation. Dest is the register it defines; HasDest
// discriminates a meaningful Dest from the zero value, since register 0 is a
// legitimate register (e.g. a function's first parameter) and must not be
// confused with "no result" the way a bare zero check would.
type Instruction struct {
	Op      Opcode
	Dest    RegisterID
	HasDest bool
	Type    Type

	// Const
	ConstValue uint32

	// LoadGlobal/StoreGlobal/global address references
	GlobalName string

	// Binary/Unary
	BinOp    BinOp
	UnOp     UnOp
	Operands []RegisterID

	// Call
	CalleeName string

	// Phi: one source register per predecessor block, in the same order as
	// the owning block's Preds.
	PhiSources []RegisterID

	// Jump/Branch
	Targets []BlockID

	// Index/address arithmetic: Operands[0] is the base, Operands[1] is the
	// index register (nil for none); ElementSize scales the index.
	ElementSize int

	// VarName names the source-level variable (local or parameter) this
	// instruction defines or, for OpVarRef, reads. Empty for instructions
	// with no source-variable identity (global/index/intrinsic access).
	VarName string
}

// BasicBlock is a straight-line instruction sequence plus the CFG edges to
// and from it.
type BasicBlock struct {
	ID           BlockID
	Instructions []Instruction
	Preds        []BlockID
	Succs        []BlockID
}

// Terminator returns the block's last instruction if it is a terminator, or
// ok == false if the block is empty or its last instruction is not one
// (a structural error the validator reports).
func (b *BasicBlock) Terminator() (Instruction, bool) {
	if len(b.Instructions) == 0 {
		return Instruction{}, false
	}

	last := b.Instructions[len(b.Instructions)-1]

	return last, last.Op.IsTerminator()
}

// Param is one function parameter, already bound to its entry register.
type Param struct {
	Name     string
	Type     Type
	Register RegisterID
}

// Function is one lowered function: a signature plus a graph of basic
// blocks. Block 0 is always the entry block.
type Function struct {
	Name       string
	Exported   bool
	IsCallback bool
	Params     []Param
	ReturnType Type
	Blocks     []*BasicBlock

	nextReg   RegisterID
	nextBlock BlockID
}

// NewFunction allocates a function with an empty entry block already
// created.
func NewFunction(name string, exported bool, isCallback bool, params []Param, ret Type) *Function {
	f := &Function{Name: name, Exported: exported, IsCallback: isCallback, Params: params, ReturnType: ret}
	f.NewBlock()

	for _, p := range params {
		if uint(p.Register) >= uint(f.nextReg) {
			f.nextReg = p.Register + 1
		}
	}

	return f
}

// NewBlock allocates and appends a fresh, empty basic block, returning it.
func (f *Function) NewBlock() *BasicBlock {
	b := &BasicBlock{ID: f.nextBlock}
	f.nextBlock++
	f.Blocks = append(f.Blocks, b)

	return b
}

// NewRegister draws the next register ID from this function's single
// monotonic counter. Per spec.md §4.5, SSA renaming MUST draw register IDs
// from this counter and never from a per-variable version counter, to avoid
// the ID-collision bug class the spec calls out explicitly.
func (f *Function) NewRegister() RegisterID {
	r := f.nextReg
	f.nextReg++

	return r
}

// Block looks up a block by id.
func (f *Function) Block(id BlockID) *BasicBlock {
	for _, b := range f.Blocks {
		if b.ID == id {
			return b
		}
	}

	return nil
}

// AddEdge records a CFG edge between two blocks of this function, keeping
// Preds/Succs symmetric (spec.md §4.6's structural check requires this).
func (f *Function) AddEdge(from, to BlockID) {
	fromBlock := f.Block(from)
	toBlock := f.Block(to)

	fromBlock.Succs = append(fromBlock.Succs, to)
	toBlock.Preds = append(toBlock.Preds, from)
}

// GlobalVariable is a module-scope variable lowered to its storage class
// and optional constant initializer / fixed address, per spec.md §4.4.
type GlobalVariable struct {
	Name         string
	Type         Type
	Storage      StorageClass
	ConstInit    *uint32 // nil => zero-initialized
	FixedAddress *uint16 // only set for StorageMap globals
	Exported     bool
	// Count is the element count for an array-typed global (Type is the
	// element type in that case); 0 for a scalar global.
	Count int
}

// Import records a module-scope `import` with no IL generated for it beyond
// the bookkeeping entry (spec.md §4.4 phase 1).
type Import struct {
	LocalName  string
	ModulePath string
}

// ExportKind discriminates what an Export entry names.
type ExportKind uint

const (
	ExportFunction ExportKind = iota
	ExportVariable
	ExportType
	ExportEnum
)

// Export records one `export` item.
type Export struct {
	LocalName  string
	ExportName string
	Kind       ExportKind
}

// Module is the top-level IL unit produced by one source file's lowering.
type Module struct {
	Name       string
	Imports    []Import
	Globals    []*GlobalVariable
	Functions  []*Function
	Exports    []Export
	EntryPoint string // function name designated by a `main` function, "" if none
}

// Function looks up a function by name.
func (m *Module) Function(name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}

	return nil
}

// Global looks up a global variable by name.
func (m *Module) Global(name string) *GlobalVariable {
	for _, g := range m.Globals {
		if g.Name == name {
			return g
		}
	}

	return nil
}

// String renders a compact textual form for debugging and test failure
// messages (not the JSON dump format — see dump.go for that).
func (m *Module) String() string {
	return fmt.Sprintf("module %s (%d globals, %d functions, entry=%q)", m.Name, len(m.Globals), len(m.Functions), m.EntryPoint)
}
