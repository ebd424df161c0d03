// =============================================================================
// pipe2csv - Configuration Module
// =============================================================================
//
// This module turns the command line into a ConversionRequest. There is no
// configuration file and no environment lookup: flags and the two
// positional arguments are the whole configuration surface.
//
// LOADING STEPS:
//   1. Read the positional arguments (old_file, new_file)
//   2. Read the optional flags, translating character aliases
//   3. Apply default values
//   4. Validate the request
//
// Any failure is a UsageError. File existence is not checked here; that is
// left to the converter when it opens the files.
//
// =============================================================================

package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/pipe2csv/internal/dialect"
	"github.com/spf13/pflag"
	"golang.org/x/text/encoding/htmlindex"
)

// =============================================================================
// FLAG NAMES AND DEFAULTS
// =============================================================================

const (
	FlagInDelimiter = "in-delimiter"
	FlagInQuote     = "in-quote"
	FlagInEncoding  = "in-encoding"
	FlagDryRun      = "dry-run"
	FlagSummary     = "summary"

	// DefaultEncoding is the input encoding when --in-encoding is not given.
	DefaultEncoding = "utf-8"
)

// delimiterAliases are names accepted by --in-delimiter in place of the
// character itself. Matching is case-insensitive.
var delimiterAliases = map[string]rune{
	`\t`:        '\t',
	"tab":       '\t',
	"pipe":      '|',
	"semicolon": ';',
	"comma":     ',',
	"colon":     ':',
	"space":     ' ',
}

// quoteAliases are names accepted by --in-quote.
var quoteAliases = map[string]rune{
	"double": '"',
	"single": '\'',
}

// =============================================================================
// CONVERSION REQUEST
// =============================================================================

// ConversionRequest is everything one run needs to know.
type ConversionRequest struct {
	// InputPath is the file to read (old_file).
	InputPath string

	// OutputPath is the file to write (new_file).
	OutputPath string

	// Delimiter is the input field delimiter. Zero means not supplied.
	Delimiter rune

	// QuoteChar is the input quote character. Zero means not supplied.
	QuoteChar rune

	// Encoding is the WHATWG label of the input encoding.
	// Default: "utf-8"
	Encoding string

	// DryRun parses the input without writing the output file.
	DryRun bool

	// SummaryPath, when set, receives a YAML report of the run.
	SummaryPath string
}

// UsageError reports a missing or malformed command-line argument.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

func usageErrorf(format string, args ...any) error {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// =============================================================================
// LOADING FUNCTIONS
// =============================================================================

// RegisterFlags adds the request flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagInDelimiter, "", "The delimiter that separates each element in the input file (character or tab, pipe, semicolon, comma, colon, space)")
	fs.String(FlagInQuote, "", "The quote character used for quoted items in the input file (character or double, single)")
	fs.String(FlagInEncoding, DefaultEncoding, "Character encoding of the input file")
	fs.Bool(FlagDryRun, false, "Parse the input and report without writing the output file")
	fs.String(FlagSummary, "", "Write a YAML report of the run to this path")
}

// FromFlags builds a ConversionRequest from the positional arguments and a
// flag set that RegisterFlags prepared and that has already been parsed.
//
// RETURNS:
//   - The validated request.
//   - A *UsageError for anything the user has to fix.
func FromFlags(fs *pflag.FlagSet, args []string) (*ConversionRequest, error) {
	if len(args) != 2 {
		return nil, usageErrorf("expected 2 arguments (old_file new_file), got %d", len(args))
	}

	req := &ConversionRequest{
		InputPath:  args[0],
		OutputPath: args[1],
	}

	var err error
	if fs.Changed(FlagInDelimiter) {
		if req.Delimiter, err = charFlag(fs, FlagInDelimiter, delimiterAliases); err != nil {
			return nil, err
		}
	}
	if fs.Changed(FlagInQuote) {
		if req.QuoteChar, err = charFlag(fs, FlagInQuote, quoteAliases); err != nil {
			return nil, err
		}
	}
	if req.Encoding, err = fs.GetString(FlagInEncoding); err != nil {
		return nil, fmt.Errorf("failed to read --%s: %w", FlagInEncoding, err)
	}
	if req.DryRun, err = fs.GetBool(FlagDryRun); err != nil {
		return nil, fmt.Errorf("failed to read --%s: %w", FlagDryRun, err)
	}
	if req.SummaryPath, err = fs.GetString(FlagSummary); err != nil {
		return nil, fmt.Errorf("failed to read --%s: %w", FlagSummary, err)
	}

	ApplyDefaults(req)

	if err := Validate(req); err != nil {
		return nil, err
	}

	return req, nil
}

// ParseChar turns a flag value into a single character, accepting the names
// in aliases. An empty value is rejected rather than treated as absent.
func ParseChar(value string, aliases map[string]rune) (rune, error) {
	if value == "" {
		return 0, usageErrorf("must be a single character, got an empty value")
	}
	if r, ok := aliases[strings.ToLower(value)]; ok {
		return r, nil
	}
	if utf8.RuneCountInString(value) != 1 {
		return 0, usageErrorf("must be a single character, got %q", value)
	}
	r, _ := utf8.DecodeRuneInString(value)
	if r == utf8.RuneError {
		return 0, usageErrorf("must be a single character, got invalid UTF-8 %q", value)
	}
	return r, nil
}

func charFlag(fs *pflag.FlagSet, name string, aliases map[string]rune) (rune, error) {
	value, err := fs.GetString(name)
	if err != nil {
		return 0, fmt.Errorf("failed to read --%s: %w", name, err)
	}
	r, err := ParseChar(value, aliases)
	if err != nil {
		return 0, usageErrorf("--%s %v", name, err)
	}
	return r, nil
}

// ApplyDefaults sets default values for any unset options.
func ApplyDefaults(req *ConversionRequest) {
	if req.Encoding == "" {
		req.Encoding = DefaultEncoding
	}
}

// Validate checks the invariants of a request.
func Validate(req *ConversionRequest) error {
	if req.InputPath == "" {
		return usageErrorf("old_file must not be empty")
	}
	if req.OutputPath == "" {
		return usageErrorf("new_file must not be empty")
	}

	for _, c := range []struct {
		flag string
		r    rune
	}{
		{FlagInDelimiter, req.Delimiter},
		{FlagInQuote, req.QuoteChar},
	} {
		if c.r == '\n' || c.r == '\r' {
			return usageErrorf("--%s cannot be a line break", c.flag)
		}
	}

	// Compare the effective characters: a lone --in-delimiter '"' clashes
	// with the default quote just as much as an explicit one would.
	if d := dialect.Resolve(req.Delimiter, req.QuoteChar); !d.NeedsDetection && d.Delimiter == d.Quote {
		return usageErrorf("--%s and --%s must differ, both are %q", FlagInDelimiter, FlagInQuote, d.Delimiter)
	}

	if _, err := htmlindex.Get(req.Encoding); err != nil {
		return usageErrorf("--%s: unknown encoding %q", FlagInEncoding, req.Encoding)
	}

	return nil
}
