// =============================================================================
// pipe2csv - Delimited Text Parser Module
// =============================================================================
//
// This module turns delimited text into rows. It handles:
//   - Any single-character delimiter (pipe, semicolon, tab, comma, ...)
//   - Any single-character quote
//   - Delimiters and line breaks inside quoted fields
//   - Doubled quotes inside quoted fields
//   - \n, \r\n and \r line endings (read as \n, also inside quoted fields)
//
// encoding/csv only knows the double quote, so the parser is a small state
// machine of its own:
//
//   fieldStart ──quote──▶ quoted ──quote──▶ afterQuote ──quote──▶ quoted
//       │                                       │
//       └──other──▶ unquoted ◀──────other───────┘
//
// A delimiter ends the field in every state except quoted; a line break
// ends the row in the same states.
//
// =============================================================================

package csvparser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/pipe2csv/internal/dialect"
	"github.com/ginjaninja78/pipe2csv/internal/types"
)

// ErrUnterminatedQuote is returned when the input ends inside a quoted field.
var ErrUnterminatedQuote = errors.New("unterminated quoted field")

// ParseError carries the location of a malformed row.
type ParseError struct {
	// Line and Column are 1-based and point at the opening quote of the
	// field that was never closed.
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// =============================================================================
// PARSER
// =============================================================================

type state int

const (
	stateFieldStart state = iota
	stateUnquoted
	stateQuoted
	stateAfterQuote
)

type parser struct {
	d dialect.Dialect

	state state
	field strings.Builder
	row   types.Row
	rows  []types.Row

	// fieldBegun is set once skipped initial spaces have started a field.
	fieldBegun bool

	line, column           int
	quoteLine, quoteColumn int
}

// Parse reads every row of input using d.
//
// PARAMETERS:
//   - input: The whole decoded file content.
//   - d: A resolved dialect. Detection must already have run.
//
// RETURNS:
//   - The rows in input order. A blank line yields an empty row.
//   - A *ParseError wrapping ErrUnterminatedQuote when a quoted field is
//     still open at the end of input.
func Parse(input string, d dialect.Dialect) ([]types.Row, error) {
	p := &parser{d: d, row: types.Row{}, line: 1}

	rs := []rune(input)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		p.column++

		// \r\n and a lone \r read as \n, inside quoted fields too.
		if r == '\r' {
			if i+1 < len(rs) && rs[i+1] == '\n' {
				i++
			}
			r = '\n'
		}

		if r == '\n' {
			if p.state == stateQuoted {
				p.field.WriteRune(r)
			} else {
				p.endRow()
			}
			p.newLine()
			continue
		}

		p.step(r)
	}

	switch p.state {
	case stateQuoted:
		return nil, &ParseError{Line: p.quoteLine, Column: p.quoteColumn, Err: ErrUnterminatedQuote}
	case stateFieldStart:
		if len(p.row) > 0 || p.fieldBegun {
			p.endRow()
		}
	default:
		p.endRow()
	}

	return p.rows, nil
}

// step feeds one character that is not a line break.
func (p *parser) step(r rune) {
	switch p.state {
	case stateFieldStart:
		switch {
		case r == p.d.Quote:
			p.state = stateQuoted
			p.quoteLine, p.quoteColumn = p.line, p.column
		case r == p.d.Delimiter:
			p.endField()
		case r == ' ' && p.d.SkipInitialSpace:
			p.fieldBegun = true
		default:
			p.field.WriteRune(r)
			p.state = stateUnquoted
		}

	case stateUnquoted:
		if r == p.d.Delimiter {
			p.endField()
			return
		}
		p.field.WriteRune(r)

	case stateQuoted:
		if r == p.d.Quote {
			p.state = stateAfterQuote
			return
		}
		p.field.WriteRune(r)

	case stateAfterQuote:
		switch r {
		case p.d.Quote:
			p.field.WriteRune(r)
			p.state = stateQuoted
		case p.d.Delimiter:
			p.endField()
		default:
			// Lenient: text after a closing quote joins the field.
			p.field.WriteRune(r)
			p.state = stateUnquoted
		}
	}
}

func (p *parser) endField() {
	p.row = append(p.row, p.field.String())
	p.field.Reset()
	p.fieldBegun = false
	p.state = stateFieldStart
}

// endRow closes the current row. A line break at the very start of a row
// produces an empty row; after a delimiter or skipped spaces it closes an
// empty field.
func (p *parser) endRow() {
	if p.state != stateFieldStart || len(p.row) > 0 || p.fieldBegun {
		p.endField()
	}
	p.rows = append(p.rows, p.row)
	p.row = types.Row{}
	p.state = stateFieldStart
}

func (p *parser) newLine() {
	p.line++
	p.column = 0
}
