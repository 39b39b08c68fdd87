// Command blend65c is the thin external-interface driver spec.md §6
// describes: it reads source files from disk, calls compiler.Compile, and
// prints rendered diagnostics. It deliberately does not implement module
// resolution, build orchestration, or config-file loading (spec.md §1
// Non-goals name these as out-of-scope collaborator concerns).
//
// Grounded on Consensys-go-corset/cmd/main.go (a one-line main delegating to
// a cobra root command) and Consensys-go-corset/pkg/cmd/root.go /
// pkg/cmd/compile.go for the root-command-plus-subcommand shape and the
// verbose-flag-to-log.SetLevel idiom carried over into compileCmd below.
package main

func main() {
	Execute()
}
