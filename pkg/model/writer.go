package model

import "strings"

// Reassemble is the inverse of Parse: it renders the document back to raw
// CSV text. A field is quoted when its content requires it under the
// recorded dialect, or when the source quoted it without needing to
// (tracked in QuotedCells). Rows are joined with the recorded line-ending
// style, and the final terminator is emitted only when the source had one.
//
// For every text accepted by Parse, Reassemble(Parse(text)) == text.
func Reassemble(doc *Document) string {
	var b strings.Builder

	term := doc.Dialect.LineEnding.Terminator()
	forced := make(map[CellRef]struct{}, len(doc.QuotedCells))
	for _, ref := range doc.QuotedCells {
		forced[ref] = struct{}{}
	}

	for r, row := range doc.Rows {
		if r > 0 {
			b.WriteString(term)
		}
		for c, field := range row {
			if c > 0 {
				b.WriteByte(doc.Dialect.Delimiter)
			}
			_, force := forced[CellRef{Row: r, Col: c}]
			writeField(&b, field, doc.Dialect, force)
		}
	}

	if doc.Dialect.TrailingNewline && len(doc.Rows) > 0 {
		b.WriteString(term)
	}

	return b.String()
}

// writeField renders a single field, quoting and doubling embedded quote
// characters when needed.
func writeField(b *strings.Builder, field string, d Dialect, force bool) {
	if !force && !d.NeedsQuoting(field) {
		b.WriteString(field)
		return
	}

	b.WriteByte(d.Quote)
	for i := 0; i < len(field); i++ {
		if field[i] == d.Quote {
			b.WriteByte(d.Quote)
		}
		b.WriteByte(field[i])
	}
	b.WriteByte(d.Quote)
}
