package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parse runs args through a fresh flag set the way cobra does.
func parse(t *testing.T, args ...string) (*ConversionRequest, error) {
	t.Helper()

	fs := pflag.NewFlagSet("pipe2csv", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return FromFlags(fs, fs.Args())
}

func TestFromFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want ConversionRequest
	}{
		{
			name: "positionals only",
			args: []string{"in.txt", "out.csv"},
			want: ConversionRequest{InputPath: "in.txt", OutputPath: "out.csv", Encoding: "utf-8"},
		},
		{
			name: "delimiter character",
			args: []string{"in.txt", "out.csv", "--in-delimiter", "|"},
			want: ConversionRequest{InputPath: "in.txt", OutputPath: "out.csv", Delimiter: '|', Encoding: "utf-8"},
		},
		{
			name: "delimiter alias",
			args: []string{"--in-delimiter", "TAB", "in.txt", "out.csv"},
			want: ConversionRequest{InputPath: "in.txt", OutputPath: "out.csv", Delimiter: '\t', Encoding: "utf-8"},
		},
		{
			name: "escaped tab",
			args: []string{"in.txt", "out.csv", `--in-delimiter=\t`},
			want: ConversionRequest{InputPath: "in.txt", OutputPath: "out.csv", Delimiter: '\t', Encoding: "utf-8"},
		},
		{
			name: "quote only",
			args: []string{"in.txt", "out.csv", "--in-quote", "'"},
			want: ConversionRequest{InputPath: "in.txt", OutputPath: "out.csv", QuoteChar: '\'', Encoding: "utf-8"},
		},
		{
			name: "both and extras",
			args: []string{"in.txt", "out.csv", "--in-delimiter", ";", "--in-quote", "single",
				"--in-encoding", "latin1", "--dry-run", "--summary", "run.yaml"},
			want: ConversionRequest{
				InputPath:   "in.txt",
				OutputPath:  "out.csv",
				Delimiter:   ';',
				QuoteChar:   '\'',
				Encoding:    "latin1",
				DryRun:      true,
				SummaryPath: "run.yaml",
			},
		},
		{
			name: "non-ascii delimiter",
			args: []string{"in.txt", "out.csv", "--in-delimiter", "§"},
			want: ConversionRequest{InputPath: "in.txt", OutputPath: "out.csv", Delimiter: '§', Encoding: "utf-8"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := parse(t, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, *got)
		})
	}
}

func TestFromFlags_UsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{
			name:    "no arguments",
			args:    nil,
			message: "expected 2 arguments (old_file new_file), got 0",
		},
		{
			name:    "one argument",
			args:    []string{"in.txt"},
			message: "expected 2 arguments (old_file new_file), got 1",
		},
		{
			name:    "three arguments",
			args:    []string{"a", "b", "c"},
			message: "expected 2 arguments (old_file new_file), got 3",
		},
		{
			name:    "empty delimiter",
			args:    []string{"in.txt", "out.csv", "--in-delimiter", ""},
			message: "--in-delimiter must be a single character, got an empty value",
		},
		{
			name:    "multi-character delimiter",
			args:    []string{"in.txt", "out.csv", "--in-delimiter", "||"},
			message: `--in-delimiter must be a single character, got "||"`,
		},
		{
			name:    "multi-character quote",
			args:    []string{"in.txt", "out.csv", "--in-quote", "pipe"},
			message: `--in-quote must be a single character, got "pipe"`,
		},
		{
			name:    "delimiter clashes with default quote",
			args:    []string{"in.txt", "out.csv", "--in-delimiter", `"`},
			message: `--in-delimiter and --in-quote must differ, both are '"'`,
		},
		{
			name:    "delimiter equals quote",
			args:    []string{"in.txt", "out.csv", "--in-delimiter", "pipe", "--in-quote", "|"},
			message: `--in-delimiter and --in-quote must differ, both are '|'`,
		},
		{
			name:    "line break delimiter",
			args:    []string{"in.txt", "out.csv", "--in-delimiter", "\n"},
			message: "--in-delimiter cannot be a line break",
		},
		{
			name:    "unknown encoding",
			args:    []string{"in.txt", "out.csv", "--in-encoding", "klingon"},
			message: `--in-encoding: unknown encoding "klingon"`,
		},
		{
			name:    "empty input path",
			args:    []string{"", "out.csv"},
			message: "old_file must not be empty",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := parse(t, tc.args...)
			require.Error(t, err)

			var usageErr *UsageError
			require.ErrorAs(t, err, &usageErr)
			assert.Equal(t, tc.message, err.Error())
		})
	}
}

func TestParseChar(t *testing.T) {
	t.Parallel()

	r, err := ParseChar("Pipe", delimiterAliases)
	require.NoError(t, err)
	assert.Equal(t, '|', r)

	for alias, want := range map[string]rune{
		`\t`:        '\t',
		"tab":       '\t',
		"semicolon": ';',
		"comma":     ',',
		"colon":     ':',
		"space":     ' ',
	} {
		r, err := ParseChar(alias, delimiterAliases)
		require.NoError(t, err, alias)
		assert.Equal(t, want, r, alias)
	}

	r, err = ParseChar("x", nil)
	require.NoError(t, err)
	assert.Equal(t, 'x', r)

	_, err = ParseChar("\xff", nil)
	assert.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	req := &ConversionRequest{}
	ApplyDefaults(req)
	assert.Equal(t, DefaultEncoding, req.Encoding)

	req = &ConversionRequest{Encoding: "utf-16le"}
	ApplyDefaults(req)
	assert.Equal(t, "utf-16le", req.Encoding)
}
