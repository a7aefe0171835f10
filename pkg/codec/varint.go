package codec

import (
	"bytes"

	"github.com/csvpress/csvpress/pkg/errors"
)

// writeUvarint appends an unsigned LEB128 varint.
func writeUvarint(buf *bytes.Buffer, v uint64) {
	for v >= 0x80 {
		buf.WriteByte(byte(v) | 0x80)
		v >>= 7
	}
	buf.WriteByte(byte(v))
}

// writeVarint appends a zigzag-encoded signed varint.
func writeVarint(buf *bytes.Buffer, v int64) {
	// Zigzag encoding: intentional conversion from signed to unsigned
	uv := uint64(v<<1) ^ uint64(v>>63) // #nosec G115 - intentional zigzag encoding
	writeUvarint(buf, uv)
}

// byteReader consumes a byte slice front to back, failing with a
// truncated_input error instead of reading past the end.
type byteReader struct {
	data []byte
	pos  int
}

func newByteReader(data []byte) *byteReader {
	return &byteReader{data: data}
}

// remaining returns the number of unread bytes.
func (r *byteReader) remaining() int {
	return len(r.data) - r.pos
}

func (r *byteReader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errors.New(errors.ErrorTypeTruncatedInput, "input ends before expected byte")
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *byteReader) readBytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, errors.Newf(errors.ErrorTypeTruncatedInput,
			"input has %d bytes remaining, need %d", r.remaining(), n)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *byteReader) readUvarint() (uint64, error) {
	var v uint64
	var shift uint
	for {
		b, err := r.readByte()
		if err != nil {
			return 0, errors.Wrap(err, errors.ErrorTypeTruncatedInput, "input ends inside varint")
		}
		if shift >= 63 && b > 1 {
			return 0, errors.New(errors.ErrorTypeTruncatedInput, "varint exceeds 64 bits")
		}
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return v, nil
		}
		shift += 7
	}
}

func (r *byteReader) readVarint() (int64, error) {
	uv, err := r.readUvarint()
	if err != nil {
		return 0, err
	}
	return int64(uv>>1) ^ -int64(uv&1), nil
}
