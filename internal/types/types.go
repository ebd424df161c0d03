// =============================================================================
// pipe2csv - Shared Types
// =============================================================================
//
// This package contains types shared by the parser, the writer and the
// converter so that none of them has to import the others. Types defined
// here are used by:
//   - csvparser (produces rows)
//   - csvwriter (consumes rows)
//   - converter (moves rows from one to the other)
//
// =============================================================================

package types

// Row is one logical record of a delimited file: its fields in order.
//
// A blank input line is a Row with no fields. A Row holding a single empty
// field is a different thing (an input line of `""`) and is written back
// quoted so the two survive a round trip.
type Row []string

// FieldCount returns the widest row in rows.
func FieldCount(rows []Row) int {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}
