// =============================================================================
// pipe2csv - Root Command
// =============================================================================
//
// This file defines the only command of the CLI. pipe2csv has no
// subcommands: the root command takes the two file arguments directly.
//
// COMMAND USAGE:
//   pipe2csv <old_file> <new_file> [flags]
//
// EXIT STATUS:
//   0  conversion finished
//   1  file access error, dialect detection failure or malformed input
//   2  usage error (missing arguments, bad flag values)
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ginjaninja78/pipe2csv/internal/config"
	"github.com/spf13/cobra"
)

// Exit codes returned by run.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// flagVerbose enables debug logging.
const flagVerbose = "verbose"

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// newRootCmd builds the root command writing to stdout and stderr.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pipe2csv <old_file> <new_file>",
		Short: "Take a pipe delimited file and output a comma delimited one",
		Long: `pipe2csv reads a delimited text file and writes it back as a comma
delimited file with minimal double-quote quoting and \n line endings.

When neither --in-delimiter nor --in-quote is given, the input dialect is
detected from the file content. Supplying either one turns detection off;
the missing one defaults to ',' for the delimiter and '"' for the quote.

Example Usage:
  pipe2csv export.txt export.csv                        # detect the dialect
  pipe2csv export.txt export.csv --in-delimiter pipe    # pipe, double quotes
  pipe2csv export.txt export.csv --in-delimiter ';' --in-quote "'"
  pipe2csv export.txt export.csv --dry-run --summary run.yaml`,

		Version: Version,

		// Argument count is checked by config.FromFlags so that it is
		// reported as a usage error like every other argument problem.
		Args: cobra.ArbitraryArgs,

		// Errors and usage are printed by run, which also picks the exit code.
		SilenceErrors: true,
		SilenceUsage:  true,

		RunE: runConvert,
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetVersionTemplate(versionTemplate())
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &config.UsageError{Message: err.Error()}
	})

	// ==========================================================================
	// FLAGS
	// ==========================================================================

	config.RegisterFlags(rootCmd.Flags())
	rootCmd.Flags().BoolP(flagVerbose, "v", false, "Enable verbose output for debugging")

	return rootCmd
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the command line and exits with its status.
// This is called by main.main().
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	if err == nil {
		return exitOK
	}

	var usageErr *config.UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(stderr, "Error: %v\n\n%s", err, rootCmd.UsageString())
		return exitUsage
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitFailure
}
