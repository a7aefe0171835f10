package model

import (
	"github.com/csvpress/csvpress/pkg/errors"
)

// Parse splits text into records respecting RFC 4180 quoting: a quoted
// field may contain the delimiter or embedded line breaks, and a doubled
// quote character inside a quoted field represents a literal quote.
//
// The delimiter is detected from the first record. The line-ending style is
// fixed by the first terminator encountered; after that, a sequence of the
// other style is ordinary field content, which keeps reassembly byte-exact
// for sources with stray carriage returns.
//
// Parse fails with a malformed_record error when a quoted field is never
// closed before end of input, when a bare quote appears inside an unquoted
// field, or when content follows a closing quote.
func Parse(text string) (*Document, error) {
	dialect := DefaultDialect()
	dialect.Delimiter = DetectDelimiter(text)

	doc := &Document{Dialect: dialect}
	if len(text) == 0 {
		return doc, nil
	}

	var (
		rows       [][]string
		quoted     []CellRef // every quoted cell; filtered to stylistic ones below
		cur        []string
		field      []byte
		wasQuoted  bool
		styleKnown bool
		trailing   bool
	)

	endField := func() {
		if wasQuoted {
			quoted = append(quoted, CellRef{Row: len(rows), Col: len(cur)})
		}
		cur = append(cur, string(field))
		field = field[:0]
		wasQuoted = false
	}
	endRecord := func() {
		endField()
		rows = append(rows, cur)
		cur = nil
	}

	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == dialect.Quote && len(field) == 0 && !wasQuoted:
			// Quoted field: consume until the closing quote, unescaping
			// doubled quotes. Terminators inside quotes are content.
			i++
			closed := false
			for i < len(text) {
				if text[i] == dialect.Quote {
					if i+1 < len(text) && text[i+1] == dialect.Quote {
						field = append(field, dialect.Quote)
						i += 2
						continue
					}
					closed = true
					i++
					break
				}
				field = append(field, text[i])
				i++
			}
			if !closed {
				return nil, errors.Newf(errors.ErrorTypeMalformedRecord,
					"quoted field starting at row %d is never closed", len(rows)+1)
			}
			wasQuoted = true
			if i < len(text) {
				// Only the delimiter or a sequence that terminates a record
				// under the current style may follow a closing quote. A
				// terminator of the other style would be field content, and
				// content cannot follow a closing quote.
				next := text[i]
				switch {
				case next == dialect.Delimiter:
				case next == '\n' && (!styleKnown || dialect.LineEnding == LineEndingLF):
				case next == '\r' && i+1 < len(text) && text[i+1] == '\n' &&
					(!styleKnown || dialect.LineEnding == LineEndingCRLF):
				default:
					return nil, errors.Newf(errors.ErrorTypeMalformedRecord,
						"unexpected character %q after closing quote at row %d", next, len(rows)+1)
				}
			}

		case c == dialect.Quote:
			return nil, errors.Newf(errors.ErrorTypeMalformedRecord,
				"bare quote in unquoted field at row %d", len(rows)+1)

		case c == dialect.Delimiter:
			endField()
			i++

		case c == '\n':
			if !styleKnown {
				dialect.LineEnding = LineEndingLF
				styleKnown = true
			}
			if dialect.LineEnding == LineEndingCRLF {
				// Bare LF under a CRLF source is field content.
				field = append(field, c)
				i++
				continue
			}
			endRecord()
			i++
			if i == len(text) {
				trailing = true
			}

		case c == '\r':
			if i+1 < len(text) && text[i+1] == '\n' &&
				(!styleKnown || dialect.LineEnding == LineEndingCRLF) {
				if !styleKnown {
					dialect.LineEnding = LineEndingCRLF
					styleKnown = true
				}
				endRecord()
				i += 2
				if i == len(text) {
					trailing = true
				}
				continue
			}
			// A CR that does not terminate a record is field content.
			field = append(field, c)
			i++

		default:
			field = append(field, c)
			i++
		}
	}

	if !trailing {
		endRecord()
	}

	dialect.TrailingNewline = trailing
	doc.Dialect = dialect
	doc.Rows = rows

	// The line-ending style may have been fixed after early quoted fields
	// were seen, so stylistic quoting is resolved only now that the full
	// dialect is known.
	for _, ref := range quoted {
		if !dialect.NeedsQuoting(rows[ref.Row][ref.Col]) {
			doc.QuotedCells = append(doc.QuotedCells, ref)
		}
	}

	return doc, nil
}
