// =============================================================================
// pipe2csv - Convert Action
// =============================================================================
//
// The action behind the root command. It resolves the request, sets up
// logging and hands the request to the converter.
//
// PROCESSING PIPELINE:
//   1. Build the ConversionRequest from arguments and flags
//   2. Run the converter (dialect, read, detect, parse, write)
//   3. Write the run report when --summary is given
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ginjaninja78/pipe2csv/internal/config"
	"github.com/ginjaninja78/pipe2csv/internal/converter"
	"github.com/ginjaninja78/pipe2csv/pkg/utils"
	"github.com/spf13/cobra"
)

// runConvert is the RunE of the root command.
func runConvert(cmd *cobra.Command, args []string) error {
	req, err := config.FromFlags(cmd.Flags(), args)
	if err != nil {
		return err
	}

	verbose, err := cmd.Flags().GetBool(flagVerbose)
	if err != nil {
		return fmt.Errorf("failed to read --%s: %w", flagVerbose, err)
	}
	logger := newLogger(cmd.ErrOrStderr(), verbose)

	result := converter.New(req, logger).Run()
	if !result.Success {
		return result.Error
	}

	if req.SummaryPath != "" {
		if err := utils.WriteSummary(req.SummaryPath, result.Summary()); err != nil {
			return err
		}
		logger.Debug("Wrote run summary", "path", req.SummaryPath)
	}

	return nil
}

// newLogger returns a text logger on w. Verbose lowers the level to debug.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
