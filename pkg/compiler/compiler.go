// Package compiler implements the primary entry point of spec.md §6:
// `compile(sources, options) -> {ast, symbols, il, diagnostics, success}`,
// orchestrating the full §2 data flow (lexer -> parser -> semantic analyzer
// -> IL lowering -> SSA construction -> IL validator) over one or more
// source files.
//
// Grounded on Consensys-go-corset/pkg/corset/compiler.go's top-level
// Compile function: a single orchestrating entry point threading one
// CompilationConfig-equivalent (here, Options) through every pass in order,
// collecting diagnostics from each into one combined report rather than
// stopping at the first failing pass.
package compiler

import (
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/blendsdk/blend65-sub015/pkg/ast"
	"github.com/blendsdk/blend65-sub015/pkg/diag"
	"github.com/blendsdk/blend65-sub015/pkg/il"
	"github.com/blendsdk/blend65-sub015/pkg/ilgen"
	"github.com/blendsdk/blend65-sub015/pkg/ilvalidate"
	"github.com/blendsdk/blend65-sub015/pkg/lexer"
	"github.com/blendsdk/blend65-sub015/pkg/parser"
	"github.com/blendsdk/blend65-sub015/pkg/sema"
	"github.com/blendsdk/blend65-sub015/pkg/ssa"
	"github.com/blendsdk/blend65-sub015/pkg/types"
)

// Target names the codegen backend the validated IL is destined for. Only
// one is implemented by the (out-of-scope) code generator; the rest are
// reserved, per spec.md §6.
type Target uint

const (
	TargetMOS6502C64 Target = iota
	TargetMOS6502Generic
	TargetMOS6510
)

// Optimization is the optimization-level tag spec.md §6 enumerates. This
// core never optimizes IL itself (spec.md §1 Non-goals); the tag is
// forwarded to the external codegen/optimizer collaborator untouched.
type Optimization uint

const (
	O0 Optimization = iota
	O1
	O2
	O3
	Os
	Oz
)

// DebugInfo is the debug-info emission mode spec.md §6 enumerates, again
// consumed only by the external codegen collaborator.
type DebugInfo uint

const (
	DebugNone DebugInfo = iota
	DebugInline
	DebugVice
	DebugBoth
)

// OutputFormat is the codegen output-format tag spec.md §6 enumerates.
type OutputFormat uint

const (
	OutputAsm OutputFormat = iota
	OutputPRG
	OutputBoth
)

// Options is the `options` parameter of spec.md §6's compile entry point,
// field-for-field.
type Options struct {
	Target          Target
	Optimization    Optimization
	Debug           DebugInfo
	OutputFormat    OutputFormat
	LoadAddress     uint16
	Verbose         bool
	Strict          bool
	RunAdvancedAnalysis bool
}

// DefaultOptions mirrors the teacher's CompilationConfig default
// constructor: O0, no debug info, assembly output, load address $0801 (the
// conventional C64 BASIC-stub entry point), advanced analysis on.
func DefaultOptions() Options {
	return Options{
		Target:              TargetMOS6502C64,
		Optimization:        O0,
		Debug:               DebugNone,
		OutputFormat:        OutputAsm,
		LoadAddress:         0x0801,
		RunAdvancedAnalysis: true,
	}
}

// FileResult is one source file's outcome: its own AST, symbol table, IL
// module, validator report and diagnostics. Per spec.md §1, module file
// resolution (stitching several files' declarations into one shared symbol
// table across imports) is an out-of-scope collaborator concern, so each
// entry of the `sources` map compiles as its own independent translation
// unit; Result.Files lets a caller inspect every one of them individually
// rather than only an ambiguous combined report (diag.Span carries a byte
// offset only, not a file identity — merging diagnostics from independently
// offset-numbered files into one sink would make every span ambiguous).
type FileResult struct {
	Path        string
	AST         *ast.Program
	Symbols     *types.Table
	IL          *il.Module
	Validator   ilvalidate.Result
	Diagnostics *diag.Sink
	Success     bool
}

// Result is the outcome of a full Compile run across every source file.
type Result struct {
	Files   map[string]*FileResult
	Success bool
}

// Compile runs the full pipeline of spec.md §2 over every entry of sources,
// keyed by path. Passes never abort on error (spec.md §7): every pass that
// can run does. A file fails when any Error-severity diagnostic was emitted
// (lexing, parsing, semantic analysis or lowering), when the IL validator
// reports an error, or, with Options.Strict, when the validator reports a
// warning; Success is false if any file fails.
func Compile(sources map[string]string, opts Options) *Result {
	configureLogging(opts)

	result := &Result{Files: make(map[string]*FileResult, len(sources)), Success: true}

	for _, path := range sortedKeys(sources) {
		fr := compileFile(path, sources[path], opts)
		result.Files[path] = fr

		if !fr.Success {
			result.Success = false
		}
	}

	return result
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func compileFile(path, text string, opts Options) *FileResult {
	log.Debugf("compiler: compiling %s", path)

	file := diag.NewFile(path, text)

	prog, sink := parser.Parse(file, lexer.Options{})
	log.Debugf("compiler: %s: parsed %d top-level declaration(s), %d diagnostic(s)", path, len(prog.Declarations), len(sink.All()))

	sem := sema.AnalyzeWithOptions(prog, sema.Options{RunAdvancedAnalysis: opts.RunAdvancedAnalysis})
	sink.Merge(sem.Sink)

	mod, lowerSink := ilgen.Lower(prog, sem)
	sink.Merge(lowerSink)

	ssa.Construct(mod)

	validatorOpts := ilvalidate.DefaultOptions()
	validatorResult := ilvalidate.Validate(mod, validatorOpts)

	for _, f := range validatorResult.Errors {
		log.Warnf("compiler: %s: IL validator error: %s", path, f.Message)
	}

	success := !sink.HasErrors() && validatorResult.Valid

	if opts.Strict && len(validatorResult.Warnings) > 0 {
		success = false
	}

	log.Debugf("compiler: %s: done, success=%v", path, success)

	return &FileResult{
		Path:        path,
		AST:         prog,
		Symbols:     sem.Table,
		IL:          mod,
		Validator:   validatorResult,
		Diagnostics: sink,
		Success:     success,
	}
}

func configureLogging(opts Options) {
	if opts.Verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}
