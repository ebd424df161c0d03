// =============================================================================
// pipe2csv - Dialect Module
// =============================================================================
//
// A dialect is the delimiter/quote convention used to read the input file.
// It is resolved once per run from the command-line request and then passed
// by value into the parser; nothing mutates it after resolution.
//
// RESOLUTION RULES:
//   - Neither delimiter nor quote supplied: the dialect is marked for
//     detection and the defaults act as placeholders until Sniff runs.
//   - Only one supplied: the other takes its default. No detection.
//   - Both supplied: used as given.
//
// =============================================================================

package dialect

import "fmt"

const (
	// DefaultDelimiter is used when no delimiter was supplied.
	DefaultDelimiter = ','

	// DefaultQuote is used when no quote character was supplied.
	DefaultQuote = '"'
)

// Dialect describes how the input file is parsed.
type Dialect struct {
	// Delimiter separates fields within a row.
	Delimiter rune

	// Quote wraps fields that contain delimiters, quotes or line breaks.
	// A doubled Quote inside a quoted field is one literal quote.
	Quote rune

	// SkipInitialSpace drops spaces that directly follow a delimiter.
	// Only detection sets it; explicit dialects never skip.
	SkipInitialSpace bool

	// NeedsDetection reports that Delimiter and Quote are placeholders
	// and must be replaced by sniffing the input before parsing.
	NeedsDetection bool
}

// Resolve builds the read dialect from the optional delimiter and quote.
// A zero rune means the value was not supplied.
//
// Detection is all-or-nothing: it is only requested when both values are
// absent.
func Resolve(delimiter, quote rune) Dialect {
	d := Dialect{
		Delimiter:      delimiter,
		Quote:          quote,
		NeedsDetection: delimiter == 0 && quote == 0,
	}
	if d.Delimiter == 0 {
		d.Delimiter = DefaultDelimiter
	}
	if d.Quote == 0 {
		d.Quote = DefaultQuote
	}
	return d
}

// Detect returns the dialect to parse data with. Explicit dialects are
// returned unchanged; dialects that need detection are replaced by the
// result of Sniff.
func (d Dialect) Detect(data string) (Dialect, error) {
	if !d.NeedsDetection {
		return d, nil
	}
	return Sniff(data)
}

// String renders the dialect for log lines and error messages.
func (d Dialect) String() string {
	s := fmt.Sprintf("delimiter=%q quote=%q", d.Delimiter, d.Quote)
	if d.SkipInitialSpace {
		s += " skip-initial-space"
	}
	if d.NeedsDetection {
		s += " (pending detection)"
	}
	return s
}
