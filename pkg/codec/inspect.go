package codec

import (
	"github.com/csvpress/csvpress/pkg/errors"
)

// SegmentInfo summarizes one encoded column without decoding it.
type SegmentInfo struct {
	Column   int    `json:"column"`
	Strategy string `json:"strategy"`
	Bytes    int    `json:"bytes"`
}

// BlobInfo is a header-level summary of a blob, used by the inspect
// command.
type BlobInfo struct {
	Version         int           `json:"version"`
	Delimiter       string        `json:"delimiter"`
	Quote           string        `json:"quote"`
	LineEnding      string        `json:"line_ending"`
	TrailingNewline bool          `json:"trailing_newline"`
	Rows            int           `json:"rows"`
	Columns         int           `json:"columns"`
	QuotedCells     int           `json:"quoted_cells"`
	Segments        []SegmentInfo `json:"segments"`
}

// ReadInfo walks the blob header and per-column segment prefixes without
// reconstructing any column data. It performs the same validation order as
// DecodeBlob: magic, version, then declared lengths against remaining
// bytes.
func ReadInfo(data []byte) (*BlobInfo, error) {
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
		fieldCounts[i] = int(fc)
	}

	refs, err := readQuotedCells(r, fieldCounts)
	if err != nil {
		return nil, err
	}

	info := &BlobInfo{
		Version:         int(version),
		Delimiter:       string(dialect.Delimiter),
		Quote:           string(dialect.Quote),
		LineEnding:      dialect.LineEnding.String(),
		TrailingNewline: dialect.TrailingNewline,
		Rows:            int(rowCount),
		Columns:         int(columnCount),
		QuotedCells:     len(refs),
	}

	for i := 0; i < int(columnCount); i++ {
		tagByte, err := r.readByte()
		if err != nil {
			return nil, err
		}
		segLen, err := r.readUvarint()
		if err != nil {
			return nil, err
		}
		if _, err := r.readBytes(int(segLen)); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeTruncatedInput,
				"column segment overruns blob")
		}
		info.Segments = append(info.Segments, SegmentInfo{
			Column:   i,
			Strategy: Strategy(tagByte).String(),
			Bytes:    int(segLen),
		})
	}

	return info, nil
}
