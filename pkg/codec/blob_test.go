package codec

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvpress/csvpress/pkg/errors"
	"github.com/csvpress/csvpress/pkg/model"
)

var blobCorpus = []string{
	"a,b,c\n1,2,3\n1,2,3\n1,2,3\n",
	"state,count\nCA,1\nCA,2\nCA,3\n",
	"10\n20\n30\n40\n",
	"a,b\r\nc,d\r\n",
	"a,b,c\nd,e\nf\n",
	"\"plain\",b\n",
	"a,\"line1\nline2\",c\n",
	"x;y\n1;2\n",
	",,\n,,\n",
	"solo",
	"",
}

func TestBlobRoundTrip(t *testing.T) {
	t.Parallel()

	for _, text := range blobCorpus {
		doc, err := model.Parse(text)
		require.NoError(t, err, "input %q", text)

		blob := EncodeBlob(doc, DefaultOptions())
		require.True(t, IsBlob(blob))

		decoded, err := DecodeBlob(blob)
		require.NoError(t, err, "input %q", text)
		assert.True(t, doc.Equal(decoded), "document mismatch for %q", text)
		assert.Equal(t, text, model.Reassemble(decoded), "text mismatch for %q", text)
	}
}

func TestEncodeBlobDeterministic(t *testing.T) {
	t.Parallel()

	var sb bytes.Buffer
	sb.WriteString("region,status,seq,note\n")
	for i := 0; i < 500; i++ {
		fmt.Fprintf(&sb, "us-east-1,%s,%d,note-%d\n", []string{"ok", "warn"}[i%2], 1000+i, i)
	}

	doc, err := model.Parse(sb.String())
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Workers = 8
	parallel1 := EncodeBlob(doc, opts)
	parallel2 := EncodeBlob(doc, opts)
	assert.True(t, bytes.Equal(parallel1, parallel2), "parallel encodes differ")

	opts.Workers = 1
	serial := EncodeBlob(doc, opts)
	assert.True(t, bytes.Equal(parallel1, serial), "parallel and serial encodes differ")
}

func TestDecodeBlobBadMagic(t *testing.T) {
	t.Parallel()

	_, err := DecodeBlob([]byte("not a blob at all"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeBadMagic), "error = %v", err)

	_, err = DecodeBlob(nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeBadMagic), "error = %v", err)
}

func TestDecodeBlobUnsupportedVersion(t *testing.T) {
	t.Parallel()

	doc, err := model.Parse("a,b\n1,2\n")
	require.NoError(t, err)
	blob := EncodeBlob(doc, DefaultOptions())

	blob[len(blobMagic)] = 0x7f
	_, err = DecodeBlob(blob)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedVersion), "error = %v", err)
}

func TestDecodeBlobTruncated(t *testing.T) {
	t.Parallel()

	doc, err := model.Parse("state,count\nCA,1\nCA,2\nCA,3\nNY,4\n")
	require.NoError(t, err)
	blob := EncodeBlob(doc, DefaultOptions())

	// Every strict prefix must fail cleanly, never panic or succeed.
	for n := 0; n < len(blob); n++ {
		_, err := DecodeBlob(blob[:n])
		assert.Error(t, err, "prefix of %d bytes decoded successfully", n)
	}
}

func TestDecodeBlobHostileHeaderCounts(t *testing.T) {
	t.Parallel()

	header := func(rows, cols uint64) []byte {
		var buf bytes.Buffer
		buf.WriteString(blobMagic)
		buf.WriteByte(blobVersion)
		buf.Write([]byte{',', '"', 0, 0})
		writeUvarint(&buf, rows)
		writeUvarint(&buf, cols)
		return buf.Bytes()
	}

	t.Run("columnCountNear2to64", func(t *testing.T) {
		// A count this large wraps a doubled-size check; it must be caught
		// before any allocation is sized from it.
		var buf bytes.Buffer
		buf.Write(header(0, 1<<63))
		writeUvarint(&buf, 0) // quoted cell count

		_, err := DecodeBlob(buf.Bytes())
		assert.True(t, errors.IsType(err, errors.ErrorTypeTruncatedInput), "error = %v", err)

		_, err = ReadInfo(buf.Bytes())
		assert.True(t, errors.IsType(err, errors.ErrorTypeTruncatedInput), "error = %v", err)
	})

	t.Run("quotedCellCountNear2to64", func(t *testing.T) {
		var buf bytes.Buffer
		buf.Write(header(0, 0))
		writeUvarint(&buf, 1<<63) // quoted cell count

		_, err := DecodeBlob(buf.Bytes())
		assert.True(t, errors.IsType(err, errors.ErrorTypeTruncatedInput), "error = %v", err)
	})
}

func TestDecodeBlobCorruptQuotedCell(t *testing.T) {
	t.Parallel()

	doc := &model.Document{
		Dialect:     model.DefaultDialect(),
		Rows:        [][]string{{"a", "b"}},
		QuotedCells: []model.CellRef{{Row: 3, Col: 9}},
	}
	blob := EncodeBlob(doc, DefaultOptions())

	_, err := DecodeBlob(blob)
	assert.True(t, errors.IsType(err, errors.ErrorTypeCorruptIndex), "error = %v", err)
}

func TestReadInfo(t *testing.T) {
	t.Parallel()

	doc, err := model.Parse("state,count\nCA,1\nCA,2\nCA,3\n")
	require.NoError(t, err)
	blob := EncodeBlob(doc, DefaultOptions())

	info, err := ReadInfo(blob)
	require.NoError(t, err)

	assert.Equal(t, 1, info.Version)
	assert.Equal(t, ",", info.Delimiter)
	assert.Equal(t, "\"", info.Quote)
	assert.Equal(t, "lf", info.LineEnding)
	assert.True(t, info.TrailingNewline)
	assert.Equal(t, 4, info.Rows)
	assert.Equal(t, 2, info.Columns)
	assert.Equal(t, 0, info.QuotedCells)

	require.Len(t, info.Segments, 2)
	assert.Equal(t, "run-length", info.Segments[0].Strategy)
	assert.Equal(t, "verbatim", info.Segments[1].Strategy)

	_, err = ReadInfo([]byte("junk"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeBadMagic), "error = %v", err)
}

func BenchmarkEncodeBlob(b *testing.B) {
	var sb bytes.Buffer
	sb.WriteString("region,status,seq,note\n")
	for i := 0; i < 10000; i++ {
		fmt.Fprintf(&sb, "us-east-1,%s,%d,note-%d\n", []string{"ok", "warn"}[i%2], 1000+i, i%50)
	}
	text := sb.String()

	doc, err := model.Parse(text)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		EncodeBlob(doc, DefaultOptions())
	}
}

func BenchmarkDecodeBlob(b *testing.B) {
	var sb bytes.Buffer
	sb.WriteString("region,status,seq,note\n")
	for i := 0; i < 10000; i++ {
		fmt.Fprintf(&sb, "us-east-1,%s,%d,note-%d\n", []string{"ok", "warn"}[i%2], 1000+i, i%50)
	}

	doc, err := model.Parse(sb.String())
	if err != nil {
		b.Fatal(err)
	}
	blob := EncodeBlob(doc, DefaultOptions())

	b.ReportAllocs()
	b.SetBytes(int64(len(blob)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := DecodeBlob(blob); err != nil {
			b.Fatal(err)
		}
	}
}
