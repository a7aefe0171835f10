package container

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvpress/csvpress/pkg/errors"
)

var algorithms = []Algorithm{None, Gzip, Snappy, LZ4, Zstd, S2}

func testPayload() []byte {
	// Repetitive enough that every algorithm actually shrinks it.
	return bytes.Repeat([]byte("CZBL column segment payload "), 200)
}

func TestWrapUnwrapAllAlgorithms(t *testing.T) {
	t.Parallel()

	payload := testPayload()
	for _, alg := range algorithms {
		for _, level := range []Level{Fastest, Default, Best} {
			wrapped, err := Wrap(payload, alg, level)
			require.NoError(t, err, "algorithm %s level %d", alg, level)
			require.True(t, IsEnvelope(wrapped))

			got, err := Unwrap(wrapped)
			require.NoError(t, err, "algorithm %s level %d", alg, level)
			assert.True(t, bytes.Equal(got, payload), "algorithm %s level %d round trip", alg, level)
		}
	}
}

func TestWrapCompresses(t *testing.T) {
	t.Parallel()

	payload := testPayload()
	for _, alg := range []Algorithm{Gzip, Zstd, LZ4, S2} {
		wrapped, err := Wrap(payload, alg, Default)
		require.NoError(t, err)
		assert.Less(t, len(wrapped), len(payload), "algorithm %s did not shrink the payload", alg)
	}
}

func TestWrapUnwrapEmptyPayload(t *testing.T) {
	t.Parallel()

	for _, alg := range algorithms {
		wrapped, err := Wrap(nil, alg, Default)
		require.NoError(t, err, "algorithm %s", alg)

		got, err := Unwrap(wrapped)
		require.NoError(t, err, "algorithm %s", alg)
		assert.Empty(t, got)
	}
}

func TestUnwrapErrors(t *testing.T) {
	t.Parallel()

	payload := testPayload()
	wrapped, err := Wrap(payload, Zstd, Default)
	require.NoError(t, err)

	t.Run("badMagic", func(t *testing.T) {
		_, err := Unwrap([]byte("nope"))
		assert.True(t, errors.IsType(err, errors.ErrorTypeBadMagic), "error = %v", err)
	})

	t.Run("truncatedHeader", func(t *testing.T) {
		_, err := Unwrap([]byte(envelopeMagic))
		assert.True(t, errors.IsType(err, errors.ErrorTypeTruncatedInput), "error = %v", err)
	})

	t.Run("unsupportedVersion", func(t *testing.T) {
		bad := bytes.Clone(wrapped)
		bad[len(envelopeMagic)] = 0x7f
		_, err := Unwrap(bad)
		assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedVersion), "error = %v", err)
	})

	t.Run("unknownAlgorithm", func(t *testing.T) {
		bad := bytes.Clone(wrapped)
		bad[len(envelopeMagic)+1] = 0x7f
		_, err := Unwrap(bad)
		assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedVersion), "error = %v", err)
	})

	t.Run("truncatedPayload", func(t *testing.T) {
		_, err := Unwrap(wrapped[:len(wrapped)/2])
		assert.True(t, errors.IsType(err, errors.ErrorTypeTruncatedInput), "error = %v", err)
	})

	t.Run("sizeMismatch", func(t *testing.T) {
		// An uncompressed envelope with a size claim the payload misses.
		short, err := Wrap([]byte("abc"), None, Default)
		require.NoError(t, err)
		bad := append(bytes.Clone(short), 'x')
		_, err = Unwrap(bad)
		assert.True(t, errors.IsType(err, errors.ErrorTypeTruncatedInput), "error = %v", err)
	})
}

func TestParseAlgorithm(t *testing.T) {
	t.Parallel()

	for _, alg := range algorithms {
		got, err := ParseAlgorithm(string(alg))
		require.NoError(t, err)
		assert.Equal(t, alg, got)
	}

	_, err := ParseAlgorithm("brotli")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig), "error = %v", err)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Level
	}{
		{in: "fastest", want: Fastest},
		{in: "default", want: Default},
		{in: "", want: Default},
		{in: "best", want: Best},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := ParseLevel("11")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig), "error = %v", err)
}
