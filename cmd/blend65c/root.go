package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command when blend65c is invoked with no subcommand,
// grounded on Consensys-go-corset/pkg/cmd/root.go's rootCmd shape.
var rootCmd = &cobra.Command{
	Use:   "blend65c",
	Short: "A compiler front end for the blend65 systems language.",
	Long: `blend65c lexes, parses, semantically analyzes, lowers to IL and
validates blend65 source files, printing diagnostics. It does not emit
6502 machine code or assembly; that is the job of a separate code
generator consuming this tool's validated IL.`,
}

// Execute runs the root command, exiting with status 1 on any cobra-level
// error (flag parsing, unknown subcommand).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getFlag reads a bool flag, exiting on a cobra configuration error (a
// programmer mistake, never a user-input problem), mirroring
// Consensys-go-corset/pkg/cmd/util.go's GetFlag.
func getFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	return v
}

func getString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	return v
}
