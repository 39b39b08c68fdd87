package il

import "github.com/segmentio/encoding/json"

// dumpInstruction is the wire shape for one Instruction: only the fields
// relevant to the instruction's opcode are populated, keeping the JSON dump
// readable.
type dumpInstruction struct {
	Op          string       `json:"op"`
	Dest        RegisterID   `json:"dest,omitempty"`
	Type        string       `json:"type,omitempty"`
	ConstValue  *uint32      `json:"const,omitempty"`
	GlobalName  string       `json:"global,omitempty"`
	BinOp       string       `json:"binOp,omitempty"`
	UnOp        string       `json:"unOp,omitempty"`
	Operands    []RegisterID `json:"operands,omitempty"`
	CalleeName  string       `json:"callee,omitempty"`
	PhiSources  []RegisterID `json:"phiSources,omitempty"`
	Targets     []BlockID    `json:"targets,omitempty"`
	ElementSize int          `json:"elementSize,omitempty"`
}

func (binop BinOp) String() string {
	names := [...]string{"+", "-", "*", "/", "%", "&", "|", "^", "<<", ">>", "==", "!=", "<", "<=", ">", ">=", "&&", "||"}
	if int(binop) < len(names) {
		return names[binop]
	}

	return "?"
}

func (unop UnOp) String() string {
	names := [...]string{"-", "!", "~", "@"}
	if int(unop) < len(names) {
		return names[unop]
	}

	return "?"
}

func toDumpInstruction(ins Instruction) dumpInstruction {
	d := dumpInstruction{
		Op:          ins.Op.String(),
		Dest:        ins.Dest,
		Type:        ins.Type.String(),
		GlobalName:  ins.GlobalName,
		Operands:    ins.Operands,
		CalleeName:  ins.CalleeName,
		PhiSources:  ins.PhiSources,
		Targets:     ins.Targets,
		ElementSize: ins.ElementSize,
	}

	if ins.Op == OpConst {
		v := ins.ConstValue
		d.ConstValue = &v
	}

	if ins.Op == OpBinary {
		d.BinOp = ins.BinOp.String()
	}

	if ins.Op == OpUnary {
		d.UnOp = ins.UnOp.String()
	}

	return d
}

type dumpBlock struct {
	ID           BlockID           `json:"id"`
	Preds        []BlockID         `json:"preds,omitempty"`
	Succs        []BlockID         `json:"succs,omitempty"`
	Instructions []dumpInstruction `json:"instructions"`
}

type dumpParam struct {
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	Register RegisterID `json:"register"`
}

type dumpFunction struct {
	Name       string      `json:"name"`
	Exported   bool        `json:"exported,omitempty"`
	IsCallback bool        `json:"isCallback,omitempty"`
	Params     []dumpParam `json:"params,omitempty"`
	ReturnType string      `json:"returnType"`
	Blocks     []dumpBlock `json:"blocks"`
}

type dumpGlobal struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Storage      string  `json:"storage"`
	ConstInit    *uint32 `json:"constInit,omitempty"`
	FixedAddress *uint16 `json:"fixedAddress,omitempty"`
	Exported     bool    `json:"exported,omitempty"`
}

type dumpImport struct {
	LocalName  string `json:"localName"`
	ModulePath string `json:"modulePath"`
}

type dumpExport struct {
	LocalName  string `json:"localName"`
	ExportName string `json:"exportName"`
	Kind       string `json:"kind"`
}

func (k ExportKind) String() string {
	switch k {
	case ExportFunction:
		return "function"
	case ExportVariable:
		return "variable"
	case ExportType:
		return "type"
	default:
		return "enum"
	}
}

type dumpModule struct {
	Name       string         `json:"name"`
	EntryPoint string         `json:"entryPoint,omitempty"`
	Imports    []dumpImport   `json:"imports,omitempty"`
	Globals    []dumpGlobal   `json:"globals,omitempty"`
	Functions  []dumpFunction `json:"functions"`
	Exports    []dumpExport   `json:"exports,omitempty"`
}

// DumpJSON renders the module as indented JSON, for debugging and for
// IL-shape tests. Uses the faster drop-in
// segmentio/encoding/json codec rather than encoding/json, per the domain
// stack wired in SPEC_FULL.md.
func (m *Module) DumpJSON() ([]byte, error) {
	dm := dumpModule{Name: m.Name, EntryPoint: m.EntryPoint}

	for _, imp := range m.Imports {
		dm.Imports = append(dm.Imports, dumpImport{LocalName: imp.LocalName, ModulePath: imp.ModulePath})
	}

	for _, g := range m.Globals {
		dm.Globals = append(dm.Globals, dumpGlobal{
			Name: g.Name, Type: g.Type.String(), Storage: g.Storage.String(),
			ConstInit: g.ConstInit, FixedAddress: g.FixedAddress, Exported: g.Exported,
		})
	}

	for _, exp := range m.Exports {
		dm.Exports = append(dm.Exports, dumpExport{LocalName: exp.LocalName, ExportName: exp.ExportName, Kind: exp.Kind.String()})
	}

	for _, fn := range m.Functions {
		df := dumpFunction{
			Name: fn.Name, Exported: fn.Exported, IsCallback: fn.IsCallback,
			ReturnType: fn.ReturnType.String(),
		}

		for _, p := range fn.Params {
			df.Params = append(df.Params, dumpParam{Name: p.Name, Type: p.Type.String(), Register: p.Register})
		}

		for _, b := range fn.Blocks {
			db := dumpBlock{ID: b.ID, Preds: b.Preds, Succs: b.Succs}
			for _, ins := range b.Instructions {
				db.Instructions = append(db.Instructions, toDumpInstruction(ins))
			}

			df.Blocks = append(df.Blocks, db)
		}

		dm.Functions = append(dm.Functions, df)
	}

	return json.MarshalIndent(dm, "", "  ")
}
