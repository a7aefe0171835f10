package codec

import (
	"bytes"
	"encoding/binary"
)

// EncodeColumn applies the plan's strategy to the column and returns the
// segment payload. Identical input always yields identical output.
func EncodeColumn(column []string, plan Plan) []byte {
	var buf bytes.Buffer

	switch plan.Strategy {
	case StrategyRunLength:
		encodeRunLength(&buf, plan.Runs)
	case StrategyDictionary:
		encodeDictionary(&buf, column, plan.Dict)
	case StrategyDelta:
		encodeDelta(&buf, plan.Ints)
	default:
		encodeVerbatim(&buf, column)
	}

	return buf.Bytes()
}

// encodeRunLength writes the run count followed by (value, count) pairs.
func encodeRunLength(buf *bytes.Buffer, runs []Run) {
	writeUvarint(buf, uint64(len(runs)))
	for _, run := range runs {
		writeUvarint(buf, uint64(len(run.Value)))
		buf.WriteString(run.Value)
		writeUvarint(buf, uint64(run.Count))
	}
}

// indexWidth returns the smallest fixed width that can address the table.
func indexWidth(tableSize int) int {
	switch {
	case tableSize <= 1<<8:
		return 1
	case tableSize <= 1<<16:
		return 2
	default:
		return 4
	}
}

// encodeDictionary writes the value table in first-appearance order, the
// index width, and one minimal-width little-endian index per row.
func encodeDictionary(buf *bytes.Buffer, column []string, dict []string) {
	writeUvarint(buf, uint64(len(dict)))
	codes := make(map[string]uint32, len(dict))
	for i, v := range dict {
		writeUvarint(buf, uint64(len(v)))
		buf.WriteString(v)
		codes[v] = uint32(i)
	}

	width := indexWidth(len(dict))
	buf.WriteByte(byte(width))
	var scratch [4]byte
	for _, v := range column {
		code := codes[v]
		switch width {
		case 1:
			buf.WriteByte(byte(code))
		case 2:
			binary.LittleEndian.PutUint16(scratch[:2], uint16(code))
			buf.Write(scratch[:2])
		default:
			binary.LittleEndian.PutUint32(scratch[:4], code)
			buf.Write(scratch[:4])
		}
	}
}

// encodeDelta writes the first value then signed differences, all as
// zigzag varints so small magnitudes take fewer bytes.
func encodeDelta(buf *bytes.Buffer, ints []int64) {
	if len(ints) == 0 {
		return
	}
	writeVarint(buf, ints[0])
	for i := 1; i < len(ints); i++ {
		writeVarint(buf, ints[i]-ints[i-1])
	}
}

// encodeVerbatim writes each field as a length-prefixed string.
func encodeVerbatim(buf *bytes.Buffer, column []string) {
	for _, v := range column {
		writeUvarint(buf, uint64(len(v)))
		buf.WriteString(v)
	}
}
