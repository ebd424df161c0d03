// =============================================================================
// pipe2csv - Main Entry Point
// =============================================================================
//
// pipe2csv converts a pipe- or custom-delimited text file into a comma
// delimited one.
//
// USAGE:
//   pipe2csv <old_file> <new_file> [--in-delimiter CHAR] [--in-quote CHAR]
//
// ARCHITECTURE:
//   - cmd/                : cobra command, flags and exit codes
//   - internal/config     : ConversionRequest building and validation
//   - internal/dialect    : dialect resolution and detection
//   - internal/csvparser  : quote-aware parsing state machine
//   - internal/csvwriter  : comma-delimited output
//   - internal/converter  : the read, detect, parse, write pipeline
//   - pkg/utils           : YAML run report
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/pipe2csv/cmd"
)

func main() {
	cmd.Execute()
}
