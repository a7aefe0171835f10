// Package model parses raw CSV text into a column-addressable document and
// reassembles it byte-for-byte. It tracks the source quirks (delimiter,
// quote character, line-ending style, trailing newline, stylistic quoting)
// that exact reconstruction depends on.
package model

import "strings"

// LineEnding identifies the record terminator style of a CSV source.
type LineEnding byte

const (
	// LineEndingLF terminates records with "\n"
	LineEndingLF LineEnding = 0
	// LineEndingCRLF terminates records with "\r\n"
	LineEndingCRLF LineEnding = 1
)

// Terminator returns the byte sequence that ends a record.
func (le LineEnding) Terminator() string {
	if le == LineEndingCRLF {
		return "\r\n"
	}
	return "\n"
}

// String returns a human-readable name for the line ending style.
func (le LineEnding) String() string {
	if le == LineEndingCRLF {
		return "crlf"
	}
	return "lf"
}

// Dialect captures the source characteristics needed for exact
// reconstruction. It is recorded during parsing, stored in the compressed
// header, and read back during decompression.
type Dialect struct {
	// Delimiter separates fields within a record
	Delimiter byte
	// Quote encloses fields containing the delimiter, the quote itself,
	// or a record terminator
	Quote byte
	// LineEnding is the record terminator style, fixed by the first
	// terminator encountered in the source
	LineEnding LineEnding
	// TrailingNewline records whether the final record was followed by a
	// terminator
	TrailingNewline bool
}

// DefaultDialect returns the dialect assumed before anything is observed:
// comma-delimited, double-quoted, LF-terminated, no trailing newline.
func DefaultDialect() Dialect {
	return Dialect{
		Delimiter:  ',',
		Quote:      '"',
		LineEnding: LineEndingLF,
	}
}

// NeedsQuoting reports whether a field must be quoted to survive a parse
// under this dialect. The rule mirrors the parser exactly: once the line
// ending style is fixed, only the style's own terminator sequence can end a
// record, so a bare "\r" under LF (or a bare "\n" or "\r" under CRLF) is
// plain field content and must not trigger quoting.
func (d Dialect) NeedsQuoting(field string) bool {
	if strings.IndexByte(field, d.Delimiter) >= 0 {
		return true
	}
	if strings.IndexByte(field, d.Quote) >= 0 {
		return true
	}
	if d.LineEnding == LineEndingCRLF {
		return strings.Contains(field, "\r\n")
	}
	return strings.IndexByte(field, '\n') >= 0
}

// delimiterCandidates are tried in priority order; ties go to the earlier
// entry so plain comma-separated files never mis-detect.
var delimiterCandidates = []byte{',', ';', '\t', '|'}

// DetectDelimiter inspects the first record of text and returns the
// candidate delimiter occurring most often outside quotes. It falls back to
// comma when nothing is found.
func DetectDelimiter(text string) byte {
	var counts [4]int
	inQuotes := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		if c == '\n' {
			break
		}
		for j, cand := range delimiterCandidates {
			if c == cand {
				counts[j]++
				break
			}
		}
	}

	best := 0
	for j := 1; j < len(delimiterCandidates); j++ {
		if counts[j] > counts[best] {
			best = j
		}
	}
	if counts[best] == 0 {
		return ','
	}
	return delimiterCandidates[best]
}
