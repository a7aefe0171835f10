package model

// CellRef addresses a single field by row and column index.
type CellRef struct {
	Row int
	Col int
}

// Document is the parsed source: an ordered sequence of rows, each an
// ordered sequence of field strings, plus the dialect observed while
// parsing. It is built once by Parse and not mutated afterwards.
type Document struct {
	Dialect Dialect
	Rows    [][]string

	// QuotedCells marks fields that were quoted in the source even though
	// quoting was not required. Fields whose content forces quoting are
	// re-quoted deterministically on reassembly, so only this stylistic
	// set needs to be carried for byte-exact round trips.
	QuotedCells []CellRef
}

// RowCount returns the number of records.
func (d *Document) RowCount() int {
	return len(d.Rows)
}

// FieldCounts returns the per-row field counts. Rows may have unequal
// width, so column membership is defined per row rather than assumed
// rectangular.
func (d *Document) FieldCounts() []int {
	counts := make([]int, len(d.Rows))
	for i, row := range d.Rows {
		counts[i] = len(row)
	}
	return counts
}

// ColumnCount returns the width of the widest row.
func (d *Document) ColumnCount() int {
	max := 0
	for _, row := range d.Rows {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

// Columns returns the column-major view of the document. Column i holds
// the i-th field of every row wide enough to have one, in row order.
func (d *Document) Columns() [][]string {
	n := d.ColumnCount()
	cols := make([][]string, n)
	for i := 0; i < n; i++ {
		col := make([]string, 0, len(d.Rows))
		for _, row := range d.Rows {
			if i < len(row) {
				col = append(col, row[i])
			}
		}
		cols[i] = col
	}
	return cols
}

// Equal reports whether two documents hold the same dialect, rows, and
// stylistic quoting.
func (d *Document) Equal(other *Document) bool {
	if d.Dialect != other.Dialect {
		return false
	}
	if len(d.Rows) != len(other.Rows) {
		return false
	}
	for i, row := range d.Rows {
		if len(row) != len(other.Rows[i]) {
			return false
		}
		for j, field := range row {
			if field != other.Rows[i][j] {
				return false
			}
		}
	}
	if len(d.QuotedCells) != len(other.QuotedCells) {
		return false
	}
	for i, ref := range d.QuotedCells {
		if ref != other.QuotedCells[i] {
			return false
		}
	}
	return true
}
