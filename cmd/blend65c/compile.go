package main

import (
	"fmt"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blendsdk/blend65-sub015/pkg/compiler"
	"github.com/blendsdk/blend65-sub015/pkg/diag"
)

// compileCmd is the one subcommand this thin driver exposes: read every
// named file, run it through compiler.Compile, and print rendered
// diagnostics per file. Grounded on
// Consensys-go-corset/pkg/cmd/compile.go's compileCmd (the
// GetFlag-to-CompilationConfig wiring and verbose-to-log.SetLevel idiom
// carried over directly), narrowed to this tool's non-goal-bounded scope:
// no binary package output, no metadata, no module resolution across files.
var compileCmd = &cobra.Command{
	Use:   "compile [flags] source_file(s)",
	Short: "compile blend65 source file(s) and report diagnostics",
	Long: `compile runs every named source file through the full front end
(lexer, parser, semantic analyzer, IL lowering, SSA construction, IL
validator) and prints the diagnostics each file produced. It does not emit
assembly or a .prg image; codegen is an external collaborator.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "blend65c compile: no source files given")
			os.Exit(2)
		}

		opts := compiler.DefaultOptions()
		opts.Verbose = getFlag(cmd, "verbose")
		opts.Strict = getFlag(cmd, "strict")
		opts.RunAdvancedAnalysis = !getFlag(cmd, "no-advanced-analysis")
		opts.Target = parseTarget(getString(cmd, "target"))

		if opts.Verbose {
			log.SetLevel(log.DebugLevel)
		}

		sources := make(map[string]string, len(args))

		for _, path := range args {
			text, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "blend65c compile: %s: %s\n", path, err)
				os.Exit(1)
			}

			sources[path] = string(text)
		}

		result := compiler.Compile(sources, opts)

		for _, path := range sortedFileKeys(result) {
			fr := result.Files[path]
			file := diag.NewFile(path, sources[path])

			report := diag.Render(fr.Diagnostics, file, int(os.Stdout.Fd()))
			if report != "" {
				fmt.Print(report)
			}

			for _, finding := range fr.Validator.Errors {
				fmt.Printf("error[IL]: %s: %s\n", path, finding.Message)
			}
		}

		if !result.Success {
			os.Exit(1)
		}
	},
}

// parseTarget maps the --target flag's string value to compiler.Target.
// Only "c64" is actually implemented by the (out-of-scope) code generator;
// the others are accepted here and reserved, per spec.md §6.
func parseTarget(name string) compiler.Target {
	switch name {
	case "mos6502":
		return compiler.TargetMOS6502Generic
	case "mos6510":
		return compiler.TargetMOS6510
	default:
		return compiler.TargetMOS6502C64
	}
}

func sortedFileKeys(result *compiler.Result) []string {
	keys := make([]string, 0, len(result.Files))
	for k := range result.Files {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().Bool("verbose", false, "enable debug-level logging")
	compileCmd.Flags().Bool("strict", false, "treat IL validator warnings as failures")
	compileCmd.Flags().Bool("no-advanced-analysis", false, "skip control-flow and call-graph analysis")
	compileCmd.Flags().String("target", "c64", "target platform tag (c64, mos6502, mos6510)")
}
