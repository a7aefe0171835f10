// Package container wraps the codec blob in a generic byte-compression
// envelope. The column codec removes the structural redundancy a byte
// compressor cannot see; the envelope then squeezes whatever byte-level
// redundancy remains (dictionary tables, verbatim segments).
//
// Envelope format:
//
//	MAGIC "CZCF" (4) | VERSION (1) | algorithm (1) | raw_size uvarint | payload
package container

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/csvpress/csvpress/pkg/errors"
)

const (
	envelopeMagic   = "CZCF"
	envelopeVersion = 0x01
)

// Algorithm represents a byte compression algorithm.
type Algorithm string

const (
	// None stores the payload uncompressed
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents snappy compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
)

// Level represents compression level, controlling the trade-off between
// compression speed and compression ratio.
type Level int

const (
	// Fastest prioritizes speed over compression ratio
	Fastest Level = 1
	// Default balances speed and compression
	Default Level = 5
	// Best maximizes compression ratio
	Best Level = 9
)

// algorithm wire bytes; stable, never renumbered
var algorithmBytes = map[Algorithm]byte{
	None:   0,
	Gzip:   1,
	Snappy: 2,
	LZ4:    3,
	Zstd:   4,
	S2:     5,
}

var byteAlgorithms = map[byte]Algorithm{
	0: None,
	1: Gzip,
	2: Snappy,
	3: LZ4,
	4: Zstd,
	5: S2,
}

// ParseAlgorithm maps a configuration string to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case None, Gzip, Snappy, LZ4, Zstd, S2:
		return Algorithm(s), nil
	default:
		return "", errors.Newf(errors.ErrorTypeConfig, "unsupported compression algorithm: %s", s)
	}
}

// ParseLevel maps a configuration string to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "fastest":
		return Fastest, nil
	case "default", "":
		return Default, nil
	case "best":
		return Best, nil
	default:
		return 0, errors.Newf(errors.ErrorTypeConfig, "unsupported compression level: %s", s)
	}
}

// IsEnvelope reports whether data starts with the envelope magic.
func IsEnvelope(data []byte) bool {
	return len(data) >= len(envelopeMagic) && string(data[:len(envelopeMagic)]) == envelopeMagic
}

// Wrap compresses the blob with the given algorithm and wraps it in the
// envelope.
func Wrap(blob []byte, alg Algorithm, level Level) ([]byte, error) {
	compressed, err := compress(blob, alg, level)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(compressed) + 16)
	buf.WriteString(envelopeMagic)
	buf.WriteByte(envelopeVersion)
	buf.WriteByte(algorithmBytes[alg])

	var scratch [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(scratch[:], uint64(len(blob)))
	buf.Write(scratch[:n])

	buf.Write(compressed)
	return buf.Bytes(), nil
}

// Unwrap validates the envelope and returns the original blob bytes.
func Unwrap(data []byte) ([]byte, error) {
	if !IsEnvelope(data) {
		return nil, errors.New(errors.ErrorTypeBadMagic,
			"input does not start with the envelope magic")
	}
	rest := data[len(envelopeMagic):]

	if len(rest) < 2 {
		return nil, errors.New(errors.ErrorTypeTruncatedInput, "envelope header is truncated")
	}
	if rest[0] != envelopeVersion {
		return nil, errors.Newf(errors.ErrorTypeUnsupportedVersion,
			"envelope version %d, this build implements version %d", rest[0], envelopeVersion)
	}
	alg, ok := byteAlgorithms[rest[1]]
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeUnsupportedVersion,
			"unknown envelope algorithm byte 0x%02x", rest[1])
	}
	rest = rest[2:]

	rawSize, n := binary.Uvarint(rest)
	if n <= 0 {
		return nil, errors.New(errors.ErrorTypeTruncatedInput, "envelope size varint is truncated")
	}
	payload := rest[n:]

	blob, err := decompress(payload, alg)
	if err != nil {
		return nil, err
	}
	if uint64(len(blob)) != rawSize {
		return nil, errors.Newf(errors.ErrorTypeTruncatedInput,
			"envelope declares %d raw bytes, payload decompresses to %d", rawSize, len(blob))
	}
	return blob, nil
}

// compress applies the selected algorithm in memory.
func compress(data []byte, alg Algorithm, level Level) ([]byte, error) {
	switch alg {
	case None:
		return data, nil

	case Gzip:
		var buf bytes.Buffer
		w, err := gzip.NewWriterLevel(&buf, mapGzipLevel(level))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "gzip writer")
		}
		if _, err := w.Write(data); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "gzip compress")
		}
		if err := w.Close(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "gzip close")
		}
		return buf.Bytes(), nil

	case Snappy:
		return snappy.Encode(nil, data), nil

	case LZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if err := w.Apply(lz4.CompressionLevelOption(mapLZ4Level(level))); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "lz4 options")
		}
		if _, err := w.Write(data); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "lz4 compress")
		}
		if err := w.Close(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "lz4 close")
		}
		return buf.Bytes(), nil

	case Zstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(mapZstdLevel(level)))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "zstd encoder")
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil

	case S2:
		return s2.Encode(nil, data), nil

	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unsupported compression algorithm: %s", alg)
	}
}

// decompress inverts compress; failures on corrupted payloads surface as
// truncated_input.
func decompress(data []byte, alg Algorithm) ([]byte, error) {
	switch alg {
	case None:
		return data, nil

	case Gzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeTruncatedInput, "gzip payload")
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeTruncatedInput, "gzip payload")
		}
		return out, nil

	case Snappy:
		out, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeTruncatedInput, "snappy payload")
		}
		return out, nil

	case LZ4:
		r := lz4.NewReader(bytes.NewReader(data))
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeTruncatedInput, "lz4 payload")
		}
		return out, nil

	case Zstd:
		dec, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeTruncatedInput, "zstd payload")
		}
		defer dec.Close()
		out, err := io.ReadAll(dec)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeTruncatedInput, "zstd payload")
		}
		return out, nil

	case S2:
		out, err := s2.Decode(nil, data)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeTruncatedInput, "s2 payload")
		}
		return out, nil

	default:
		return nil, errors.Newf(errors.ErrorTypeUnsupportedVersion,
			"unsupported compression algorithm: %s", alg)
	}
}

// Helper functions to map compression levels

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}
