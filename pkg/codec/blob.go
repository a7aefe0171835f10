package codec

import (
	"bytes"
	"sync"

	"github.com/csvpress/csvpress/pkg/errors"
	"github.com/csvpress/csvpress/pkg/model"
)

// Blob format:
//
//	MAGIC "CZBL" (4) | VERSION (1)
//	delimiter (1) | quote (1) | line_ending_flag (1) | trailing_newline_flag (1)
//	row_count uvarint | column_count uvarint
//	row_count x field_count uvarint
//	quoted_cell_count uvarint, then per cell: row uvarint | col uvarint
//	per column: strategy tag (1) | segment_length uvarint | segment payload
//
// The blob is self-describing: decoding requires no external schema.
const (
	blobMagic   = "CZBL"
	blobVersion = 0x01
)

// IsBlob reports whether data starts with the codec magic.
func IsBlob(data []byte) bool {
	return len(data) >= len(blobMagic) && string(data[:len(blobMagic)]) == blobMagic
}

// encodedSegment pairs a column's strategy tag with its payload.
type encodedSegment struct {
	strategy Strategy
	payload  []byte
}

// EncodeBlob analyzes and encodes every column of the document and
// assembles the self-describing blob. Columns are independent, so they are
// encoded on a bounded worker pool; each worker writes its finished segment
// into a pre-reserved slot and the blob is assembled single-threaded in
// column order, keeping output byte-identical across runs.
func EncodeBlob(doc *model.Document, opts Options) []byte {
	columns := doc.Columns()
	segments := make([]encodedSegment, len(columns))

	workers := opts.workers()
	if workers > len(columns) {
		workers = len(columns)
	}
	if workers > 1 {
		indexes := make(chan int, len(columns))
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range indexes {
					plan := Analyze(columns[i], opts)
					segments[i] = encodedSegment{
						strategy: plan.Strategy,
						payload:  EncodeColumn(columns[i], plan),
					}
				}
			}()
		}
		for i := range columns {
			indexes <- i
		}
		close(indexes)
		wg.Wait()
	} else {
		for i, column := range columns {
			plan := Analyze(column, opts)
			segments[i] = encodedSegment{
				strategy: plan.Strategy,
				payload:  EncodeColumn(column, plan),
			}
		}
	}

	var buf bytes.Buffer
	buf.WriteString(blobMagic)
	buf.WriteByte(blobVersion)

	buf.WriteByte(doc.Dialect.Delimiter)
	buf.WriteByte(doc.Dialect.Quote)
	buf.WriteByte(byte(doc.Dialect.LineEnding))
	if doc.Dialect.TrailingNewline {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}

	writeUvarint(&buf, uint64(len(doc.Rows)))
	writeUvarint(&buf, uint64(len(columns)))
	for _, row := range doc.Rows {
		writeUvarint(&buf, uint64(len(row)))
	}

	writeUvarint(&buf, uint64(len(doc.QuotedCells)))
	for _, ref := range doc.QuotedCells {
		writeUvarint(&buf, uint64(ref.Row))
		writeUvarint(&buf, uint64(ref.Col))
	}

	for _, seg := range segments {
		buf.WriteByte(byte(seg.strategy))
		writeUvarint(&buf, uint64(len(seg.payload)))
		buf.Write(seg.payload)
	}

	return buf.Bytes()
}

// DecodeBlob parses a blob back into a document. The magic is checked
// first, then the version; any declared length that overruns the remaining
// bytes fails with truncated_input before anything is allocated for it.
func DecodeBlob(data []byte) (*model.Document, error) {
	if !IsBlob(data) {
		return nil, errors.New(errors.ErrorTypeBadMagic,
			"input does not start with the codec magic")
	}
	r := newByteReader(data[len(blobMagic):])

	version, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if version != blobVersion {
		return nil, errors.Newf(errors.ErrorTypeUnsupportedVersion,
			"blob version %d, this codec implements version %d", version, blobVersion)
	}

	dialect, err := readDialect(r)
	if err != nil {
		return nil, err
	}

	rowCount, err := r.readUvarint()
	if err != nil {
		return nil, err
	}
	columnCount, err := r.readUvarint()
	if err != nil {
		return nil, err
	}
	// Every row costs at least one field-count byte and every column at
	// least a tag and a length byte, so counts beyond the remaining size
	// are corrupt. This bounds allocations for hostile headers. The counts
	// are untrusted, so they are compared against remaining/2 rather than
	// doubled, which would wrap for counts near 2^64.
	if rowCount > uint64(r.remaining()) {
		return nil, errors.Newf(errors.ErrorTypeTruncatedInput,
			"blob declares %d rows with %d bytes remaining", rowCount, r.remaining())
	}
	if columnCount > uint64(r.remaining())/2 {
		return nil, errors.Newf(errors.ErrorTypeTruncatedInput,
			"blob declares %d columns with %d bytes remaining", columnCount, r.remaining())
	}

	fieldCounts := make([]int, rowCount)
	for i := range fieldCounts {
		fc, err := r.readUvarint()
		if err != nil {
			return nil, err
		}
		if fc > columnCount {
			return nil, errors.Newf(errors.ErrorTypeTruncatedInput,
				"row %d declares %d fields, blob has %d columns", i, fc, columnCount)
		}
		fieldCounts[i] = int(fc)
	}

	quotedCells, err := readQuotedCells(r, fieldCounts)
	if err != nil {
		return nil, err
	}

	columns := make([][]string, columnCount)
	for i := range columns {
		tagByte, err := r.readByte()
		if err != nil {
			return nil, err
		}
		strategy := Strategy(tagByte)
		if !strategy.Valid() {
			return nil, errors.Newf(errors.ErrorTypeUnsupportedVersion,
				"column %d uses unknown strategy tag 0x%02x", i, tagByte)
		}
		segLen, err := r.readUvarint()
		if err != nil {
			return nil, err
		}
		payload, err := r.readBytes(int(segLen))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeTruncatedInput,
				"column segment overruns blob")
		}

		count := 0
		for _, fc := range fieldCounts {
			if fc > i {
				count++
			}
		}
		column, err := DecodeColumn(payload, strategy, count)
		if err != nil {
			return nil, err
		}
		columns[i] = column
	}

	rows := make([][]string, rowCount)
	cursors := make([]int, columnCount)
	for i, fc := range fieldCounts {
		row := make([]string, fc)
		for j := 0; j < fc; j++ {
			row[j] = columns[j][cursors[j]]
			cursors[j]++
		}
		rows[i] = row
	}

	return &model.Document{
		Dialect:     dialect,
		Rows:        rows,
		QuotedCells: quotedCells,
	}, nil
}

// readDialect decodes the four-byte dialect descriptor.
func readDialect(r *byteReader) (model.Dialect, error) {
	var d model.Dialect

	raw, err := r.readBytes(4)
	if err != nil {
		return d, errors.Wrap(err, errors.ErrorTypeTruncatedInput, "blob ends inside dialect descriptor")
	}

	d.Delimiter = raw[0]
	d.Quote = raw[1]
	switch raw[2] {
	case 0:
		d.LineEnding = model.LineEndingLF
	case 1:
		d.LineEnding = model.LineEndingCRLF
	default:
		return d, errors.Newf(errors.ErrorTypeUnsupportedVersion,
			"unknown line ending flag %d", raw[2])
	}
	switch raw[3] {
	case 0:
		d.TrailingNewline = false
	case 1:
		d.TrailingNewline = true
	default:
		return d, errors.Newf(errors.ErrorTypeUnsupportedVersion,
			"unknown trailing newline flag %d", raw[3])
	}
	return d, nil
}

// readQuotedCells decodes the stylistic-quote cell list, validating every
// reference against the per-row field counts.
func readQuotedCells(r *byteReader, fieldCounts []int) ([]model.CellRef, error) {
	count, err := r.readUvarint()
	if err != nil {
		return nil, err
	}
	// Compared against remaining/2 so a hostile count cannot wrap the check.
	if count > uint64(r.remaining())/2 {
		return nil, errors.Newf(errors.ErrorTypeTruncatedInput,
			"blob declares %d quoted cells with %d bytes remaining", count, r.remaining())
	}

	refs := make([]model.CellRef, 0, count)
	for i := uint64(0); i < count; i++ {
		row, err := r.readUvarint()
		if err != nil {
			return nil, err
		}
		col, err := r.readUvarint()
		if err != nil {
			return nil, err
		}
		if row >= uint64(len(fieldCounts)) || col >= uint64(fieldCounts[row]) {
			return nil, errors.Newf(errors.ErrorTypeCorruptIndex,
				"quoted cell reference (%d, %d) out of range", row, col)
		}
		refs = append(refs, model.CellRef{Row: int(row), Col: int(col)})
	}
	return refs, nil
}
