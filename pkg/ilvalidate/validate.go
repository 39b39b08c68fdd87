// Package ilvalidate implements the read-only IL validator of spec.md §4.6:
// a structural/type/SSA/CFG check pass that runs over a pkg/il.Module before
// it is handed to the (out-of-scope) 6502 code generator. Every check
// category can be disabled independently via Options, per spec.md's "each
// can be disabled by a flag" requirement.
//
// Grounded on Consensys-go-corset/pkg/corset/compiler's own post-resolution
// validation pass (a final read-only walk asserting invariants the earlier
// passes are supposed to already guarantee, reporting every violation it
// finds rather than stopping at the first one) and on pkg/ssa's dominator
// tree, reused here unchanged for the use-before-def check since "is this
// use dominated by its definition" is exactly what pkg/ssa already computes
// to know where to place phis.
package ilvalidate

import (
	"fmt"

	"github.com/blendsdk/blend65-sub015/pkg/cfg"
	"github.com/blendsdk/blend65-sub015/pkg/il"
	"github.com/blendsdk/blend65-sub015/pkg/ssa"
)

// Options gates which check categories run, per spec.md §4.6.
type Options struct {
	CheckStructural    bool
	CheckTypes         bool
	CheckSSA           bool
	CheckUseBeforeDef  bool
	CheckPhis          bool
	CheckReachability  bool

	// PreSSA relaxes the SSA single-definition check from an error to a
	// warning. Pre-SSA IL straight out of pkg/ilgen never actually has
	// colliding register IDs (every value-producing instruction draws its
	// Dest from pkg/il.Function.NewRegister, which is already globally
	// unique per spec.md §4.4), but the IL validator is also a useful
	// sanity tool to run against hand-built or transitional IL that has not
	// gone through pkg/ssa.Construct yet, where treating the check as a
	// warning keeps such IL "tractable" (spec.md §4.6's own phrasing)
	// instead of refusing to report anything else about it.
	PreSSA bool
}

// DefaultOptions enables every check category, appropriate for IL that has
// already been through pkg/ssa.Construct (the normal case: validation runs
// right before codegen, per spec.md §2's data-flow diagram).
func DefaultOptions() Options {
	return Options{
		CheckStructural:   true,
		CheckTypes:        true,
		CheckSSA:          true,
		CheckUseBeforeDef: true,
		CheckPhis:         true,
		CheckReachability: true,
	}
}

// Severity distinguishes a hard validation failure (codegen must not
// consume this module, spec.md §7 item 5) from an advisory finding.
type Severity uint

const (
	SevError Severity = iota
	SevWarning
)

func (s Severity) String() string {
	if s == SevWarning {
		return "warning"
	}

	return "error"
}

// Finding is one validator report, always scoped to a function and,
// usually, a specific block/instruction within it (IL instructions carry no
// source span of their own — see DESIGN.md — so findings locate themselves
// by function name, block id and instruction index instead).
type Finding struct {
	Severity  Severity
	Message   string
	Func      string
	Block     il.BlockID
	HasBlock  bool
	InstrIdx  int
	HasInstr  bool
}

func (f Finding) String() string {
	loc := f.Func
	if f.HasBlock {
		loc = fmt.Sprintf("%s/block%d", loc, f.Block)
	}

	if f.HasInstr {
		loc = fmt.Sprintf("%s[%d]", loc, f.InstrIdx)
	}

	return fmt.Sprintf("%s: %s: %s", f.Severity, loc, f.Message)
}

// Result is the structured `{valid, errors[], warnings[]}` outcome spec.md
// §4.6 describes.
type Result struct {
	Valid    bool
	Errors   []Finding
	Warnings []Finding
}

// checker accumulates findings across every check method; nothing it calls
// ever aborts early, since spec.md §4.6 wants every violation reported, not
// just the first.
type checker struct {
	opts    Options
	module  *il.Module
	result  Result
}

func (c *checker) errorf(fn string, format string, args ...any) {
	c.result.Errors = append(c.result.Errors, Finding{Severity: SevError, Func: fn, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) errorAt(fn string, block il.BlockID, idx int, format string, args ...any) {
	c.result.Errors = append(c.result.Errors, Finding{
		Severity: SevError, Func: fn, Block: block, HasBlock: true, InstrIdx: idx, HasInstr: true,
		Message: fmt.Sprintf(format, args...),
	})
}

func (c *checker) warnf(fn string, format string, args ...any) {
	c.result.Warnings = append(c.result.Warnings, Finding{Severity: SevWarning, Func: fn, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) warnAt(fn string, block il.BlockID, idx int, format string, args ...any) {
	c.result.Warnings = append(c.result.Warnings, Finding{
		Severity: SevWarning, Func: fn, Block: block, HasBlock: true, InstrIdx: idx, HasInstr: true,
		Message: fmt.Sprintf(format, args...),
	})
}

// Validate runs every enabled check category over mod and returns the
// combined result. Valid is true iff zero Errors were produced; Warnings
// never affect Valid, matching spec.md §7's "warnings never cause failure"
// policy carried over from the rest of the pipeline.
func Validate(mod *il.Module, opts Options) Result {
	c := &checker{opts: opts, module: mod}

	if opts.CheckStructural {
		c.checkStructural()
	}

	for _, fn := range mod.Functions {
		if len(fn.Blocks) == 0 {
			continue // stub function (declared with `;`), nothing to validate
		}

		if opts.CheckStructural {
			c.checkFunctionStructural(fn)
		}

		if opts.CheckTypes {
			c.checkFunctionTypes(fn)
		}

		if opts.CheckPhis {
			c.checkPhis(fn)
		}

		if opts.CheckReachability {
			c.checkReachability(fn)
		}
	}

	if opts.CheckSSA {
		c.checkSSA()
	}

	if opts.CheckUseBeforeDef {
		for _, fn := range mod.Functions {
			if len(fn.Blocks) > 0 {
				c.checkUseBeforeDef(fn)
			}
		}
	}

	c.result.Valid = len(c.result.Errors) == 0

	return c.result
}

// checkStructural validates module-level invariants: the entry-point name
// (if any) resolves to a declared function, and every export refers to an
// existing symbol. pkg/ilgen only ever records an export for a declaration
// it has already lowered, so a dangling export here would indicate a bug in
// an external producer of IL, not in this module's own lowering.
func (c *checker) checkStructural() {
	if c.module.EntryPoint != "" && c.module.Function(c.module.EntryPoint) == nil {
		c.errorf("<module>", "entry point %q does not resolve to a declared function", c.module.EntryPoint)
	}

	for _, exp := range c.module.Exports {
		switch exp.Kind {
		case il.ExportFunction:
			if c.module.Function(exp.LocalName) == nil {
				c.errorf("<module>", "export %q refers to undeclared function %q", exp.ExportName, exp.LocalName)
			}
		case il.ExportVariable:
			if c.module.Global(exp.LocalName) == nil {
				c.errorf("<module>", "export %q refers to undeclared global %q", exp.ExportName, exp.LocalName)
			}
		}
	}
}

// checkFunctionStructural validates spec.md §3's BasicBlock invariants:
// exactly one terminator as the last instruction of every non-empty block,
// a designated entry block with no predecessors (unless it is its own
// self-loop target), and symmetric predecessor/successor edges.
func (c *checker) checkFunctionStructural(fn *il.Function) {
	for i, b := range fn.Blocks {
		if len(b.Instructions) == 0 {
			c.errorAt(fn.Name, b.ID, -1, "block has no instructions (missing terminator)")
			continue
		}

		for idx, instr := range b.Instructions[:len(b.Instructions)-1] {
			if instr.Op.IsTerminator() {
				c.errorAt(fn.Name, b.ID, idx, "terminator %s is not the last instruction of its block", instr.Op)
			}
		}

		last := b.Instructions[len(b.Instructions)-1]
		if !last.Op.IsTerminator() {
			c.errorAt(fn.Name, b.ID, len(b.Instructions)-1, "block does not end in a terminator (ends in %s)", last.Op)
		}

		for _, t := range last.Targets {
			if fn.Block(t) == nil {
				c.errorAt(fn.Name, b.ID, len(b.Instructions)-1, "jump/branch targets nonexistent block %d", t)
			}
		}

		if i == 0 {
			for _, p := range b.Preds {
				if p != b.ID {
					c.errorAt(fn.Name, b.ID, -1, "entry block has predecessor block %d", p)
				}
			}
		}
	}

	c.checkEdgeSymmetry(fn)
}

func (c *checker) checkEdgeSymmetry(fn *il.Function) {
	for _, b := range fn.Blocks {
		for _, s := range b.Succs {
			succ := fn.Block(s)
			if succ == nil {
				c.errorAt(fn.Name, b.ID, -1, "successor edge to nonexistent block %d", s)
				continue
			}

			if !containsBlock(succ.Preds, b.ID) {
				c.errorAt(fn.Name, b.ID, -1, "edge to block %d has no matching predecessor link back", s)
			}
		}

		for _, p := range b.Preds {
			pred := fn.Block(p)
			if pred == nil {
				c.errorAt(fn.Name, b.ID, -1, "predecessor edge from nonexistent block %d", p)
				continue
			}

			if !containsBlock(pred.Succs, b.ID) {
				c.errorAt(fn.Name, b.ID, -1, "predecessor link from block %d has no matching successor edge", p)
			}
		}
	}
}

func containsBlock(ids []il.BlockID, id il.BlockID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}

	return false
}

// checkPhis validates spec.md §3 BasicBlock's "phi instructions, if
// present, precede all non-phi instructions" invariant and spec.md §4.6's
// "every phi has an entry for every predecessor".
func (c *checker) checkPhis(fn *il.Function) {
	for _, b := range fn.Blocks {
		seenNonPhi := false

		for idx, instr := range b.Instructions {
			if instr.Op == il.OpPhi {
				if seenNonPhi {
					c.errorAt(fn.Name, b.ID, idx, "phi follows a non-phi instruction in the same block")
				}

				if len(instr.PhiSources) != len(b.Preds) {
					c.errorAt(fn.Name, b.ID, idx, "phi has %d source(s) but block has %d predecessor(s)", len(instr.PhiSources), len(b.Preds))
				}
			} else {
				seenNonPhi = true
			}
		}
	}
}

// checkReachability flags, as a warning only (spec.md §4.6: "any block
// unreachable from entry yields a warning, not an error, since valid code
// may include dead blocks left by earlier transformations"), any block with
// no path from block 0.
func (c *checker) checkReachability(fn *il.Function) {
	g := cfg.NewGraph(len(fn.Blocks))
	for _, b := range fn.Blocks {
		for _, s := range b.Succs {
			g.AddEdge(cfg.BlockID(b.ID), cfg.BlockID(s))
		}
	}

	for _, b := range g.Unreachable(0) {
		c.warnAt(fn.Name, il.BlockID(b), -1, "block is unreachable from the entry block")
	}
}

// checkFunctionTypes validates spec.md §4.6's type checks: binary-op
// operand types match, comparison results are Bool, call arity/argument
// types match the callee's signature, return values match the function's
// declared return type, and stores write a value assignable to their
// target's type.
func (c *checker) checkFunctionTypes(fn *il.Function) {
	regType := c.buildRegisterTypes(fn)

	isComparison := func(op il.BinOp) bool {
		switch op {
		case il.Eq, il.Ne, il.Lt, il.Le, il.Gt, il.Ge:
			return true
		default:
			return false
		}
	}

	for _, b := range fn.Blocks {
		for idx, instr := range b.Instructions {
			switch instr.Op {
			case il.OpBinary:
				if len(instr.Operands) != 2 {
					c.errorAt(fn.Name, b.ID, idx, "binary op has %d operand(s), expected 2", len(instr.Operands))
					continue
				}

				lt, lok := regType[instr.Operands[0]]
				rt, rok := regType[instr.Operands[1]]

				if lok && rok && lt != rt && !widensOK(lt, rt) {
					c.errorAt(fn.Name, b.ID, idx, "binary op %s has mismatched operand types %s and %s", instr.BinOp, lt, rt)
				}

				if isComparison(instr.BinOp) && instr.Type != il.Bool {
					c.errorAt(fn.Name, b.ID, idx, "comparison %s result has type %s, expected bool", instr.BinOp, instr.Type)
				}

			case il.OpCall:
				c.checkCall(fn, b.ID, idx, instr, regType)

			case il.OpReturn:
				if len(instr.Operands) != 1 {
					c.errorAt(fn.Name, b.ID, idx, "return has %d operand(s), expected 1", len(instr.Operands))
					continue
				}

				if fn.ReturnType == il.Void {
					c.errorAt(fn.Name, b.ID, idx, "return with a value in a void function")
					continue
				}

				if rt, ok := regType[instr.Operands[0]]; ok && !assignable(rt, fn.ReturnType) {
					c.errorAt(fn.Name, b.ID, idx, "return value has type %s, expected %s", rt, fn.ReturnType)
				}

			case il.OpReturnVoid:
				if fn.ReturnType != il.Void {
					c.errorAt(fn.Name, b.ID, idx, "bare return in a function declared to return %s", fn.ReturnType)
				}

			case il.OpStoreGlobal:
				g := c.module.Global(instr.GlobalName)
				if g == nil {
					c.errorAt(fn.Name, b.ID, idx, "store to undeclared global %q", instr.GlobalName)
					continue
				}

				if len(instr.Operands) != 1 {
					continue
				}

				if vt, ok := regType[instr.Operands[0]]; ok && !assignable(vt, g.Type) {
					c.errorAt(fn.Name, b.ID, idx, "store to global %q: value type %s not assignable to %s", instr.GlobalName, vt, g.Type)
				}

			case il.OpStore:
				if len(instr.Operands) != 2 {
					continue
				}

				if vt, ok := regType[instr.Operands[1]]; ok && !assignable(vt, instr.Type) {
					c.errorAt(fn.Name, b.ID, idx, "indirect store: value type %s not assignable to target type %s", vt, instr.Type)
				}
			}
		}
	}
}

func (c *checker) checkCall(fn *il.Function, blockID il.BlockID, idx int, instr il.Instruction, regType map[il.RegisterID]il.Type) {
	callee := c.module.Function(instr.CalleeName)
	if callee == nil {
		c.errorAt(fn.Name, blockID, idx, "call to undeclared function %q", instr.CalleeName)
		return
	}

	if len(instr.Operands) != len(callee.Params) {
		c.errorAt(fn.Name, blockID, idx, "call to %q passes %d argument(s), expected %d", instr.CalleeName, len(instr.Operands), len(callee.Params))
		return
	}

	for i, arg := range instr.Operands {
		at, ok := regType[arg]
		if !ok {
			continue
		}

		want := callee.Params[i].Type
		if !assignable(at, want) {
			c.errorAt(fn.Name, blockID, idx, "call to %q argument %d has type %s, expected %s", instr.CalleeName, i, at, want)
		}
	}

	if instr.HasDest && !assignable(callee.ReturnType, instr.Type) {
		c.errorAt(fn.Name, blockID, idx, "call to %q result bound as %s, function returns %s", instr.CalleeName, instr.Type, callee.ReturnType)
	}
}

// widensOK allows byte/word mixed operands (the front end's arithmetic
// already widened one operand during lowering; here the check only rejects
// a Bool mixed with a numeric type, which can never arise from legal
// source).
func widensOK(a, b il.Type) bool {
	numeric := func(t il.Type) bool { return t == il.Byte || t == il.Word }

	return numeric(a) && numeric(b)
}

// assignable mirrors pkg/types' Compatible verdict at the IL's coarser
// granularity: identical types, or byte->word widening, or bool<->byte.
func assignable(from, to il.Type) bool {
	if from == to {
		return true
	}

	if from == il.Byte && to == il.Word {
		return true
	}

	if (from == il.Bool && to == il.Byte) || (from == il.Byte && to == il.Bool) {
		return true
	}

	return false
}

// buildRegisterTypes scans every instruction defining a register (including
// parameters, defined at function entry) and records its IL type, so the
// type checks above can look up an operand's type without re-walking the
// defining instruction each time.
func (c *checker) buildRegisterTypes(fn *il.Function) map[il.RegisterID]il.Type {
	regType := make(map[il.RegisterID]il.Type)

	for _, p := range fn.Params {
		regType[p.Register] = p.Type
	}

	for _, b := range fn.Blocks {
		for _, instr := range b.Instructions {
			if instr.HasDest {
				regType[instr.Dest] = instr.Type
			}
		}
	}

	return regType
}

// checkSSA validates spec.md §4.6's SSA check: no register is the result of
// two instructions. Every definition site is recorded so the error payload
// can name both, per spec.md's explicit requirement. Severity escalates to
// error unless Options.PreSSA relaxes it to a warning.
func (c *checker) checkSSA() {
	type site struct {
		fn    string
		block il.BlockID
		idx   int
	}

	// Register IDs are only unique within one function, so definitions are
	// grouped per function.
	type key struct {
		fn  string
		reg il.RegisterID
	}

	defs := make(map[key][]site)

	for _, fn := range c.module.Functions {
		for _, p := range fn.Params {
			k := key{fn.Name, p.Register}
			defs[k] = append(defs[k], site{fn.Name, 0, -1})
		}

		for _, b := range fn.Blocks {
			for idx, instr := range b.Instructions {
				if instr.HasDest {
					k := key{fn.Name, instr.Dest}
					defs[k] = append(defs[k], site{fn.Name, b.ID, idx})
				}
			}
		}
	}

	for k, sites := range defs {
		if len(sites) <= 1 {
			continue
		}

		msg := fmt.Sprintf("register %d is defined by %d instructions:", k.reg, len(sites))
		for _, s := range sites {
			msg += fmt.Sprintf(" %s/block%d[%d]", s.fn, s.block, s.idx)
		}

		if c.opts.PreSSA {
			c.warnf(sites[0].fn, "%s", msg)
		} else {
			c.errorf(sites[0].fn, "%s", msg)
		}
	}
}

// checkUseBeforeDef validates spec.md §4.6's dominance check: every use of a
// register must be dominated by its definition (parameter registers are
// defined at function entry and dominate every block). Reuses pkg/ssa's
// dominator tree verbatim, since "is this use dominated by its def" is
// exactly the question pkg/ssa already answers to decide phi placement.
func (c *checker) checkUseBeforeDef(fn *il.Function) {
	tree := ssa.BuildDomTree(fn)

	defBlock := make(map[il.RegisterID]il.BlockID)
	for _, p := range fn.Params {
		defBlock[p.Register] = fn.Blocks[0].ID
	}

	for _, b := range fn.Blocks {
		for _, instr := range b.Instructions {
			if instr.HasDest {
				defBlock[instr.Dest] = b.ID
			}
		}
	}

	checkUse := func(b il.BlockID, idx int, reg il.RegisterID) {
		dblock, ok := defBlock[reg]
		if !ok {
			c.errorAt(fn.Name, b, idx, "use of register %d has no reaching definition", reg)
			return
		}

		if dblock == b {
			return // same-block defs are checked in instruction order below
		}

		if !tree.Dominates(dblock, b) {
			c.errorAt(fn.Name, b, idx, "use of register %d is not dominated by its definition in block %d", reg, dblock)
		}
	}

	for _, b := range fn.Blocks {
		definedSoFar := make(map[il.RegisterID]bool)

		for idx, instr := range b.Instructions {
			if instr.Op == il.OpPhi {
				// Phi operands are evaluated "as of the end of" each
				// predecessor, not at the phi's own program point, so the
				// ordinary same-block same-instruction-order rule does not
				// apply to them.
				for _, src := range instr.PhiSources {
					if dblock, ok := defBlock[src]; ok && dblock != b && !tree.Dominates(dblock, b) {
						c.errorAt(fn.Name, b.ID, idx, "phi source register %d is not dominated by its definition in block %d", src, dblock)
					}
				}
			} else {
				for _, op := range instr.Operands {
					if dblock, ok := defBlock[op]; ok && dblock == b.ID && !definedSoFar[op] {
						c.errorAt(fn.Name, b.ID, idx, "use of register %d precedes its definition in the same block", op)
					} else {
						checkUse(b.ID, idx, op)
					}
				}
			}

			if instr.HasDest {
				definedSoFar[instr.Dest] = true
			}
		}
	}
}
