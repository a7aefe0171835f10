package codec

import (
	"encoding/binary"
	"strconv"

	"github.com/csvpress/csvpress/pkg/errors"
)

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// DecodeColumn reconstructs a column of count values from a segment
// payload. It is the exact inverse of EncodeColumn for data this codec
// produced; for corrupted or foreign segments it fails with a structured
// error rather than guessing.
func DecodeColumn(payload []byte, strategy Strategy, count int) ([]string, error) {
	r := newByteReader(payload)

	var (
		out []string
		err error
	)
	switch strategy {
	case StrategyRunLength:
		out, err = decodeRunLength(r, count)
	case StrategyDictionary:
		out, err = decodeDictionary(r, count)
	case StrategyDelta:
		out, err = decodeDelta(r, count)
	case StrategyVerbatim:
		out, err = decodeVerbatim(r, count)
	default:
		return nil, errors.Newf(errors.ErrorTypeUnsupportedVersion,
			"unknown column strategy tag 0x%02x", byte(strategy))
	}
	if err != nil {
		return nil, err
	}
	// The encoder writes segments exactly; unread bytes mean the segment
	// was not produced by this codec.
	if r.remaining() != 0 {
		return nil, errors.Newf(errors.ErrorTypeTruncatedInput,
			"column segment has %d bytes left after %d values", r.remaining(), count)
	}
	return out, nil
}

// decodeRunLength expands (value, count) pairs back into the flat sequence.
func decodeRunLength(r *byteReader, count int) ([]string, error) {
	runCount, err := r.readUvarint()
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, count)
	for i := uint64(0); i < runCount; i++ {
		valLen, err := r.readUvarint()
		if err != nil {
			return nil, err
		}
		valBytes, err := r.readBytes(int(valLen))
		if err != nil {
			return nil, err
		}
		repeat, err := r.readUvarint()
		if err != nil {
			return nil, err
		}
		// count-len(out) cannot underflow, so a hostile repeat near 2^64
		// cannot wrap this check.
		if repeat > uint64(count-len(out)) {
			return nil, errors.Newf(errors.ErrorTypeTruncatedInput,
				"run-length segment expands past declared %d values", count)
		}
		value := string(valBytes)
		for j := uint64(0); j < repeat; j++ {
			out = append(out, value)
		}
	}

	if len(out) != count {
		return nil, errors.Newf(errors.ErrorTypeTruncatedInput,
			"run-length segment expands to %d values, want %d", len(out), count)
	}
	return out, nil
}

// decodeDictionary reads the value table then resolves one index per row.
func decodeDictionary(r *byteReader, count int) ([]string, error) {
	tableSize, err := r.readUvarint()
	if err != nil {
		return nil, err
	}
	if tableSize > uint64(r.remaining()) {
		return nil, errors.Newf(errors.ErrorTypeTruncatedInput,
			"dictionary declares %d entries with %d bytes remaining", tableSize, r.remaining())
	}

	table := make([]string, tableSize)
	for i := range table {
		entryLen, err := r.readUvarint()
		if err != nil {
			return nil, err
		}
		entry, err := r.readBytes(int(entryLen))
		if err != nil {
			return nil, err
		}
		table[i] = string(entry)
	}

	width, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if width != 1 && width != 2 && width != 4 {
		return nil, errors.Newf(errors.ErrorTypeTruncatedInput,
			"dictionary index width %d is not 1, 2, or 4", width)
	}

	out := make([]string, count)
	for i := 0; i < count; i++ {
		raw, err := r.readBytes(int(width))
		if err != nil {
			return nil, err
		}
		var code uint32
		switch width {
		case 1:
			code = uint32(raw[0])
		case 2:
			code = uint32(binary.LittleEndian.Uint16(raw))
		default:
			code = binary.LittleEndian.Uint32(raw)
		}
		if uint64(code) >= tableSize {
			return nil, errors.Newf(errors.ErrorTypeCorruptIndex,
				"dictionary index %d out of range for table of %d entries", code, tableSize)
		}
		out[i] = table[code]
	}
	return out, nil
}

// decodeDelta reconstructs values via a running sum of the first value and
// each difference. Overflow can only happen for blobs this codec did not
// produce, since encoding falls back to verbatim for such columns.
func decodeDelta(r *byteReader, count int) ([]string, error) {
	out := make([]string, 0, count)
	if count == 0 {
		return out, nil
	}

	cur, err := r.readVarint()
	if err != nil {
		return nil, err
	}
	out = append(out, formatInt(cur))

	for i := 1; i < count; i++ {
		delta, err := r.readVarint()
		if err != nil {
			return nil, err
		}
		next := cur + delta
		if (delta > 0 && next < cur) || (delta < 0 && next > cur) {
			return nil, errors.Newf(errors.ErrorTypeIntegerOverflow,
				"delta at position %d overflows int64", i)
		}
		cur = next
		out = append(out, formatInt(cur))
	}
	return out, nil
}

// decodeVerbatim reads count length-prefixed strings.
func decodeVerbatim(r *byteReader, count int) ([]string, error) {
	out := make([]string, count)
	for i := 0; i < count; i++ {
		valLen, err := r.readUvarint()
		if err != nil {
			return nil, err
		}
		val, err := r.readBytes(int(valLen))
		if err != nil {
			return nil, err
		}
		out[i] = string(val)
	}
	return out, nil
}
