// =============================================================================
// pipe2csv - Converter Module
// =============================================================================
//
// This module contains the conversion pipeline for a single run:
//
// CONVERSION PIPELINE:
//   1. Resolve the read dialect from the request
//   2. Read and decode the whole input file
//   3. Detect the dialect when none was supplied
//   4. Parse the input into rows
//   5. Write the rows as comma-delimited text
//
// Nothing is written until parsing has succeeded, so a detection failure or
// an unterminated quote never leaves an output file behind.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/ginjaninja78/pipe2csv/internal/config"
	"github.com/ginjaninja78/pipe2csv/internal/csvparser"
	"github.com/ginjaninja78/pipe2csv/internal/csvwriter"
	"github.com/ginjaninja78/pipe2csv/internal/dialect"
	"github.com/ginjaninja78/pipe2csv/internal/types"
	"github.com/ginjaninja78/pipe2csv/pkg/utils"
	"github.com/google/uuid"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one conversion.
type Result struct {
	// RunID identifies the run in log lines and in the run report.
	RunID string

	// InputPath is the file that was read.
	InputPath string

	// OutputPath is the file that was written. Empty on a dry run or when
	// the run failed before writing.
	OutputPath string

	// Dialect is the dialect the input was parsed with.
	Dialect dialect.Dialect

	// Detected reports that Dialect came from sniffing the input.
	Detected bool

	// DryRun reports that the output was deliberately not written.
	DryRun bool

	// Success indicates whether the conversion completed.
	Success bool

	// Error contains the error if the conversion failed.
	Error error

	// StartedAt is when Run began.
	StartedAt time.Time

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the conversion.
type ProcessingStats struct {
	// Rows is the number of rows parsed (and written, unless DryRun).
	Rows int

	// Fields is the width of the widest row.
	Fields int

	// ProcessingTime is the time taken by the whole run.
	ProcessingTime time.Duration
}

// Summary converts the result into the run report format.
func (r Result) Summary() utils.RunSummary {
	return utils.RunSummary{
		RunID:     r.RunID,
		Input:     r.InputPath,
		Output:    r.OutputPath,
		Delimiter: string(r.Dialect.Delimiter),
		Quote:     string(r.Dialect.Quote),
		Detected:  r.Detected,
		DryRun:    r.DryRun,
		Rows:      r.Stats.Rows,
		Fields:    r.Stats.Fields,
		Duration:  r.Stats.ProcessingTime.String(),
		StartedAt: r.StartedAt,
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// FileAccessError reports a failure to open, read or write one of the files.
type FileAccessError struct {
	// Op is what was being done: "open", "read", "create", "write", "close".
	Op string

	// Path is the file involved.
	Path string

	Err error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// fileAccessError strips the *fs.PathError layer so the path is not
// reported twice.
func fileAccessError(op, path string, err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		err = pathErr.Err
	}
	return &FileAccessError{Op: op, Path: path, Err: err}
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter handles the conversion of one input file.
type Converter struct {
	req    *config.ConversionRequest
	runID  string
	logger *slog.Logger
}

// New creates a Converter for req. A nil logger discards log output.
func New(req *config.ConversionRequest, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	runID := uuid.NewString()
	return &Converter{
		req:    req,
		runID:  runID,
		logger: logger.With("run_id", runID),
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline.
func (c *Converter) Run() Result {
	startTime := time.Now()
	result := Result{
		RunID:     c.runID,
		InputPath: c.req.InputPath,
		DryRun:    c.req.DryRun,
		StartedAt: startTime,
	}
	fail := func(err error) Result {
		result.Error = err
		result.Stats.ProcessingTime = time.Since(startTime)
		c.logger.Debug("Conversion failed", "error", err)
		return result
	}

	// =========================================================================
	// STEP 1: RESOLVE DIALECT
	// =========================================================================

	d := dialect.Resolve(c.req.Delimiter, c.req.QuoteChar)
	c.logger.Debug("Resolved read dialect", "dialect", d.String())

	// =========================================================================
	// STEP 2: READ INPUT
	// =========================================================================

	data, err := c.readInput()
	if err != nil {
		return fail(err)
	}
	c.logger.Debug("Read input file", "path", c.req.InputPath, "chars", len(data))

	// =========================================================================
	// STEP 3: DETECT DIALECT
	// =========================================================================

	result.Detected = d.NeedsDetection
	d, err = d.Detect(data)
	if err != nil {
		return fail(err)
	}
	result.Dialect = d
	if result.Detected {
		c.logger.Info("Detected input dialect", "dialect", d.String())
	}

	// =========================================================================
	// STEP 4: PARSE ROWS
	// =========================================================================

	rows, err := csvparser.Parse(data, d)
	if err != nil {
		return fail(fmt.Errorf("failed to parse %s: %w", c.req.InputPath, err))
	}
	result.Stats.Rows = len(rows)
	result.Stats.Fields = types.FieldCount(rows)
	c.logger.Debug("Parsed rows", "rows", result.Stats.Rows, "fields", result.Stats.Fields)

	// =========================================================================
	// STEP 5: WRITE OUTPUT
	// =========================================================================

	if c.req.DryRun {
		c.logger.Info("Dry run, output not written", "path", c.req.OutputPath)
	} else {
		written, err := c.writeOutput(rows)
		if err != nil {
			return fail(err)
		}
		result.OutputPath = c.req.OutputPath
		c.logger.Info("Wrote output", "path", c.req.OutputPath, "rows", written)
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// readInput reads the whole input file, decoding it from the requested
// encoding to UTF-8 and dropping a leading byte-order mark.
func (c *Converter) readInput() (string, error) {
	enc, err := htmlindex.Get(c.req.Encoding)
	if err != nil {
		return "", fmt.Errorf("unknown input encoding %q: %w", c.req.Encoding, err)
	}

	file, err := os.Open(c.req.InputPath)
	if err != nil {
		return "", fileAccessError("open", c.req.InputPath, err)
	}
	defer file.Close()

	decoded := transform.NewReader(file, unicode.BOMOverride(enc.NewDecoder()))
	data, err := io.ReadAll(decoded)
	if err != nil {
		return "", fileAccessError("read", c.req.InputPath, err)
	}

	return string(data), nil
}

// writeOutput creates (or truncates) the output file and writes rows to it,
// returning the number of rows written. The file is closed on every path.
func (c *Converter) writeOutput(rows []types.Row) (written int, err error) {
	file, err := os.Create(c.req.OutputPath)
	if err != nil {
		return 0, fileAccessError("create", c.req.OutputPath, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fileAccessError("close", c.req.OutputPath, closeErr)
		}
	}()

	w := csvwriter.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		return w.Rows(), fileAccessError("write", c.req.OutputPath, err)
	}

	return w.Rows(), nil
}
