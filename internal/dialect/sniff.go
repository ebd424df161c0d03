package dialect

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrUndetectable is returned when no consistent delimiter can be found.
var ErrUndetectable = errors.New("could not determine delimiter")

// DetectionError reports a failed auto-detection.
type DetectionError struct {
	// Lines is the number of non-empty lines that were inspected.
	Lines int

	Err error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("dialect detection failed after inspecting %d line(s): %v", e.Lines, e.Err)
}

func (e *DetectionError) Unwrap() error {
	return e.Err
}

// =============================================================================
// SNIFFER
// =============================================================================

// chunkLength is the number of lines added to the frequency tables on each
// pass of the delimiter guess.
const chunkLength = 10

// consistencyThreshold is the lowest share of lines a candidate delimiter
// must appear in with its modal count.
const consistencyThreshold = 0.9

// quoteCandidates are the only characters considered as quotes.
var quoteCandidates = []rune{'"', '\''}

// preferredDelimiters break ties when several characters are equally
// consistent.
var preferredDelimiters = []rune{',', '\t', ';', ' ', ':'}

// Sniff infers the dialect of data.
//
// DETECTION PROCESS:
//  1. Look for quoted fields. A quoted field bounded by a delimiter or a
//     line boundary tells us both the quote and the delimiter.
//  2. Failing that, count every ASCII character per line and pick the one
//     whose per-line count is the most consistent.
//  3. Failing that, return a DetectionError.
func Sniff(data string) (Dialect, error) {
	data = normalizeNewlines(data)

	quote, delimiter, skipSpace := guessQuoteAndDelimiter(data)
	if delimiter == 0 {
		delimiter, skipSpace = guessDelimiter(data)
	}
	if delimiter == 0 {
		return Dialect{}, &DetectionError{Lines: len(nonEmptyLines(data)), Err: ErrUndetectable}
	}
	if quote == 0 {
		quote = DefaultQuote
	}

	return Dialect{
		Delimiter:        delimiter,
		Quote:            quote,
		SkipInitialSpace: skipSpace,
	}, nil
}

// =============================================================================
// QUOTE-BASED GUESS
// =============================================================================

// quotedMatch is one quoted field found in the sample.
type quotedMatch struct {
	quote     rune
	delimiter rune // zero when the field is bounded by line boundaries only
	space     bool
}

// quotedFieldScanners are tried in order; the first one that finds any
// quoted field decides the guess.
var quotedFieldScanners = []func([]rune) []quotedMatch{
	scanDelimitedBothSides, // ,"...",
	scanLineStartDelimited, // "...",   at the start of a line
	scanDelimitedLineEnd,   // ,"..."   at the end of a line
	scanWholeLine,          // "..."    alone on a line
}

// guessQuoteAndDelimiter returns the most frequent quote and delimiter
// around quoted fields. Both are zero when no quoted field was found.
func guessQuoteAndDelimiter(data string) (quote, delimiter rune, skipSpace bool) {
	rs := []rune(data)

	var matches []quotedMatch
	for _, scan := range quotedFieldScanners {
		if matches = scan(rs); len(matches) > 0 {
			break
		}
	}
	if len(matches) == 0 {
		return 0, 0, false
	}

	quotes := newTally()
	delims := newTally()
	spaces := 0
	for _, m := range matches {
		quotes.add(m.quote)
		if m.delimiter != 0 {
			delims.add(m.delimiter)
		}
		if m.space {
			spaces++
		}
	}

	quote = quotes.max()
	if len(delims.order) > 0 {
		delimiter = delims.max()
		skipSpace = delims.counts[delimiter] == spaces
	}
	return quote, delimiter, skipSpace
}

func scanDelimitedBothSides(rs []rune) []quotedMatch {
	var out []quotedMatch
	for i := 0; i < len(rs); {
		delim, space, q, ok := openAfterDelimiter(rs, i)
		if ok {
			k, closed := closeQuote(rs, q, func(k int) bool {
				return k+1 < len(rs) && rs[k+1] == delim
			})
			if closed {
				out = append(out, quotedMatch{quote: rs[q], delimiter: delim, space: space})
				i = k + 2
				continue
			}
		}
		i++
	}
	return out
}

func scanLineStartDelimited(rs []rune) []quotedMatch {
	var out []quotedMatch
	for i := 0; i < len(rs); {
		if openAtLineStart(rs, i) {
			k, closed := closeQuote(rs, i, func(k int) bool {
				return k+1 < len(rs) && isDelimiterCandidate(rs[k+1])
			})
			if closed {
				m := quotedMatch{quote: rs[i], delimiter: rs[k+1]}
				i = k + 2
				if i < len(rs) && rs[i] == ' ' {
					m.space = true
					i++
				}
				out = append(out, m)
				continue
			}
		}
		i++
	}
	return out
}

func scanDelimitedLineEnd(rs []rune) []quotedMatch {
	var out []quotedMatch
	for i := 0; i < len(rs); {
		delim, space, q, ok := openAfterDelimiter(rs, i)
		if ok {
			k, closed := closeQuote(rs, q, func(k int) bool {
				return atLineEnd(rs, k+1)
			})
			if closed {
				out = append(out, quotedMatch{quote: rs[q], delimiter: delim, space: space})
				i = k + 1
				continue
			}
		}
		i++
	}
	return out
}

func scanWholeLine(rs []rune) []quotedMatch {
	var out []quotedMatch
	for i := 0; i < len(rs); {
		if openAtLineStart(rs, i) {
			k, closed := closeQuote(rs, i, func(k int) bool {
				return atLineEnd(rs, k+1)
			})
			if closed {
				out = append(out, quotedMatch{quote: rs[i]})
				i = k + 1
				continue
			}
		}
		i++
	}
	return out
}

// openAfterDelimiter matches a delimiter candidate at i, an optional space,
// then an opening quote. It returns the position of the quote.
func openAfterDelimiter(rs []rune, i int) (delim rune, space bool, quotePos int, ok bool) {
	if !isDelimiterCandidate(rs[i]) {
		return 0, false, 0, false
	}
	j := i + 1
	if j+1 < len(rs) && rs[j] == ' ' && isQuoteCandidate(rs[j+1]) {
		space = true
		j++
	}
	if j < len(rs) && isQuoteCandidate(rs[j]) {
		return rs[i], space, j, true
	}
	return 0, false, 0, false
}

func openAtLineStart(rs []rune, i int) bool {
	return (i == 0 || rs[i-1] == '\n') && isQuoteCandidate(rs[i])
}

// closeQuote finds the first matching quote after open for which accept
// holds. Quoted content may span lines.
func closeQuote(rs []rune, open int, accept func(int) bool) (int, bool) {
	for k := open + 1; k < len(rs); k++ {
		if rs[k] == rs[open] && accept(k) {
			return k, true
		}
	}
	return 0, false
}

func atLineEnd(rs []rune, i int) bool {
	return i >= len(rs) || rs[i] == '\n'
}

func isQuoteCandidate(r rune) bool {
	for _, q := range quoteCandidates {
		if r == q {
			return true
		}
	}
	return false
}

func isDelimiterCandidate(r rune) bool {
	return r != '\n' && !isQuoteCandidate(r) && !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// =============================================================================
// FREQUENCY-BASED GUESS
// =============================================================================

// histogram counts how many lines contained a character a given number of
// times. order keeps first-seen order so ties resolve deterministically.
type histogram struct {
	lines map[int]int
	order []int
}

// mode is the most common per-line count of a character together with its
// weight: the number of lines at that count minus the lines at any other.
type mode struct {
	count  int
	weight int
}

func (m mode) less(o mode) bool {
	if m.count != o.count {
		return m.count < o.count
	}
	return m.weight < o.weight
}

// guessDelimiter finds the character that appears the same number of times
// on the largest share of lines. It returns zero when nothing qualifies.
func guessDelimiter(data string) (rune, bool) {
	lines := nonEmptyLines(data)
	if len(lines) == 0 {
		return 0, false
	}

	var freq [127]*histogram
	for c := range freq {
		freq[c] = &histogram{lines: make(map[int]int)}
	}

	// Candidates found in one chunk are kept for the rest of the input;
	// later chunks only add candidates while none has been found yet.
	delims := make(map[rune]mode)
	start, end := 0, min(chunkLength, len(lines))
	for iteration := 1; start < len(lines); iteration++ {
		for _, line := range lines[start:end] {
			var counts [127]int
			for _, r := range line {
				if r < 127 {
					counts[r]++
				}
			}
			for c, n := range counts {
				h := freq[c]
				if _, seen := h.lines[n]; !seen {
					h.order = append(h.order, n)
				}
				h.lines[n]++
			}
		}

		modes := make(map[rune]mode)
		for c, h := range freq {
			if len(h.order) == 0 || (len(h.order) == 1 && h.order[0] == 0) {
				continue
			}
			modes[rune(c)] = h.mode()
		}

		total := float64(min(chunkLength*iteration, len(lines)))
		for consistency := 1.0; len(delims) == 0 && consistency >= consistencyThreshold; consistency -= 0.01 {
			for c := rune(0); c < 127; c++ {
				m, ok := modes[c]
				if !ok || m.count <= 0 || m.weight <= 0 {
					continue
				}
				if float64(m.weight)/total >= consistency {
					delims[c] = m
				}
			}
		}

		if len(delims) == 1 {
			for c := range delims {
				return c, skipsInitialSpace(lines[0], c)
			}
		}

		start = end
		end = min(end+chunkLength, len(lines))
	}

	if len(delims) == 0 {
		return 0, false
	}

	for _, d := range preferredDelimiters {
		if _, ok := delims[d]; ok {
			return d, skipsInitialSpace(lines[0], d)
		}
	}

	var (
		best     rune
		bestMode mode
		found    bool
	)
	for c := rune(0); c < 127; c++ {
		m, ok := delims[c]
		if !ok {
			continue
		}
		if !found || !m.less(bestMode) {
			best, bestMode, found = c, m, true
		}
	}
	return best, skipsInitialSpace(lines[0], best)
}

func (h *histogram) mode() mode {
	if len(h.order) == 1 {
		return mode{count: h.order[0], weight: h.lines[h.order[0]]}
	}

	best := h.order[0]
	for _, n := range h.order[1:] {
		if h.lines[n] > h.lines[best] {
			best = n
		}
	}
	rest := 0
	for _, n := range h.order {
		if n != best {
			rest += h.lines[n]
		}
	}
	return mode{count: best, weight: h.lines[best] - rest}
}

// skipsInitialSpace reports whether every delimiter on line is followed by
// a space.
func skipsInitialSpace(line string, delim rune) bool {
	d := string(delim)
	return strings.Count(line, d) == strings.Count(line, d+" ")
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// tally counts runes and remembers first-seen order for tie breaking.
type tally struct {
	counts map[rune]int
	order  []rune
}

func newTally() *tally {
	return &tally{counts: make(map[rune]int)}
}

func (t *tally) add(r rune) {
	if _, seen := t.counts[r]; !seen {
		t.order = append(t.order, r)
	}
	t.counts[r]++
}

// max returns the most counted rune; the first seen wins a tie.
func (t *tally) max() rune {
	var best rune
	for _, r := range t.order {
		if best == 0 || t.counts[r] > t.counts[best] {
			best = r
		}
	}
	return best
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func nonEmptyLines(data string) []string {
	var lines []string
	for _, line := range strings.Split(data, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
