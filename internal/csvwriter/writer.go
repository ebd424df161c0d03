// =============================================================================
// pipe2csv - CSV Writer Module
// =============================================================================
//
// This module serializes rows with the one output dialect the tool supports:
//
//   delimiter:  ,
//   quote:      "
//   quoting:    minimal (only fields that need it)
//   terminator: \n on every platform
//
// A field is quoted when it contains a comma, a double quote, a carriage
// return or a newline. Embedded double quotes are doubled. Fields with
// leading or trailing spaces are written as they are.
//
// =============================================================================

package csvwriter

import (
	"io"

	"github.com/ginjaninja78/pipe2csv/internal/types"
	"github.com/oleg578/swiftcsv"
)

const (
	// Comma is the output field separator.
	Comma = ','

	// Quote is the output quote character.
	Quote = '"'
)

// Writer writes rows to an underlying io.Writer through a buffer.
// Errors are sticky: after the first failure every call returns it.
type Writer struct {
	csv  *swiftcsv.Writer
	rows int
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	cw := swiftcsv.NewWriter(w)
	cw.Comma = Comma
	cw.Quote = Quote
	return &Writer{csv: cw}
}

// Write writes one row followed by a newline.
func (w *Writer) Write(row types.Row) error {
	// A lone empty field is quoted so it does not read back as a blank line.
	if len(row) == 1 && row[0] == "" {
		w.csv.AlwaysQuote = true
		defer func() { w.csv.AlwaysQuote = false }()
	}

	if err := w.csv.Write(row); err != nil {
		return err
	}
	w.rows++
	return nil
}

// WriteAll writes every row and flushes.
func (w *Writer) WriteAll(rows []types.Row) error {
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	return w.csv.Flush()
}

// Rows returns the number of rows accepted so far.
func (w *Writer) Rows() int {
	return w.rows
}
