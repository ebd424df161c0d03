package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/pipe2csv/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// execute runs the command line and captures its output.
func execute(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeInput(t *testing.T, content string) (in, out string) {
	t.Helper()

	dir := t.TempDir()
	in = filepath.Join(dir, "old.txt")
	require.NoError(t, os.WriteFile(in, []byte(content), 0o600))
	return in, filepath.Join(dir, "new.csv")
}

func TestRun_Converts(t *testing.T) {
	t.Parallel()

	in, out := writeInput(t, "a|b\n\"c|d\"|e\n")

	code, _, stderr := execute(in, out, "--in-delimiter", "|")
	require.Equal(t, exitOK, code, stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "a,b\nc|d,e\n", string(data))
	assert.Contains(t, stderr, "Wrote output")
}

func TestRun_DetectsDialect(t *testing.T) {
	t.Parallel()

	in, out := writeInput(t, "a;b;c\n1;2;3\n")

	code, _, stderr := execute(in, out, "-v")
	require.Equal(t, exitOK, code, stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "a,b,c\n1,2,3\n", string(data))
	assert.Contains(t, stderr, "Detected input dialect")
	assert.Contains(t, stderr, "level=DEBUG")
}

func TestRun_MissingPositionalIsUsageError(t *testing.T) {
	t.Parallel()

	in, out := writeInput(t, "a|b\n")

	code, _, stderr := execute(in)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "expected 2 arguments")
	assert.Contains(t, stderr, "Usage:")

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_BadFlagsAreUsageErrors(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{
		{"a", "b", "--no-such-flag"},
		{"a", "b", "--in-delimiter"},
		{"a", "b", "--in-delimiter", "ab"},
	} {
		code, _, stderr := execute(args...)
		assert.Equal(t, exitUsage, code, "args %v", args)
		assert.Contains(t, stderr, "Error:", "args %v", args)
	}
}

func TestRun_MissingInputFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "new.csv")

	code, _, stderr := execute(filepath.Join(dir, "missing.txt"), out)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "failed to open")
	assert.NotContains(t, stderr, "Usage:")

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_UndetectableInputFails(t *testing.T) {
	t.Parallel()

	in, out := writeInput(t, "alpha\nbeta\n")

	code, _, stderr := execute(in, out)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "could not determine delimiter")

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_WritesSummary(t *testing.T) {
	t.Parallel()

	in, out := writeInput(t, "a|b\n1|2\n")
	summaryPath := filepath.Join(filepath.Dir(in), "run.yaml")

	code, _, stderr := execute(in, out, "--in-delimiter", "pipe", "--summary", summaryPath)
	require.Equal(t, exitOK, code, stderr)

	data, err := os.ReadFile(summaryPath)
	require.NoError(t, err)
	var summary utils.RunSummary
	require.NoError(t, yaml.Unmarshal(data, &summary))
	assert.Equal(t, in, summary.Input)
	assert.Equal(t, out, summary.Output)
	assert.Equal(t, "|", summary.Delimiter)
	assert.False(t, summary.Detected)
	assert.Equal(t, 2, summary.Rows)
	assert.NotEmpty(t, summary.RunID)
}

func TestRun_DryRun(t *testing.T) {
	t.Parallel()

	in, out := writeInput(t, "a|b\n")

	code, _, stderr := execute(in, out, "--dry-run")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stderr, "Dry run")

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_Version(t *testing.T) {
	t.Parallel()

	code, stdout, _ := execute("--version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "pipe2csv")
	assert.Contains(t, stdout, "Version:    "+Version)
	assert.Contains(t, stdout, "Build Date: "+BuildDate)
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	code, stdout, _ := execute("--help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "--in-delimiter")
	assert.Contains(t, stdout, "--in-quote")
}
