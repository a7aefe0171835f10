package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvpress/csvpress/pkg/codec"
	"github.com/csvpress/csvpress/pkg/config"
	"github.com/csvpress/csvpress/pkg/errors"
	"github.com/csvpress/csvpress/pkg/model"
)

const sampleCSV = "region,status,count\nus-east-1,ok,1\nus-east-1,ok,2\nus-east-1,warn,3\nus-west-2,ok,4\n"

func TestCompressDecompressRoundTrip(t *testing.T) {
	t.Parallel()

	for _, algorithm := range []string{"none", "gzip", "snappy", "lz4", "zstd", "s2"} {
		algorithm := algorithm
		t.Run(algorithm, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			input := filepath.Join(dir, "input.csv")
			compressed := filepath.Join(dir, "input.czcf")
			restored := filepath.Join(dir, "restored.csv")

			require.NoError(t, os.WriteFile(input, []byte(sampleCSV), 0o644))

			cfg := config.DefaultConfig()
			cfg.Container.Algorithm = algorithm

			stats, err := Compress(context.Background(), input, compressed, cfg)
			require.NoError(t, err)
			assert.Equal(t, int64(len(sampleCSV)), stats.OriginalBytes)
			assert.Equal(t, 5, stats.Rows)
			assert.Equal(t, 3, stats.Columns)

			_, err = Decompress(context.Background(), compressed, restored, cfg)
			require.NoError(t, err)

			got, err := os.ReadFile(restored)
			require.NoError(t, err)
			assert.Equal(t, sampleCSV, string(got), "restored file is not byte-identical")
		})
	}
}

func TestDecompressBareBlob(t *testing.T) {
	t.Parallel()

	doc, err := model.Parse(sampleCSV)
	require.NoError(t, err)
	blob := codec.EncodeBlob(doc, codec.DefaultOptions())

	dir := t.TempDir()
	input := filepath.Join(dir, "bare.czbl")
	output := filepath.Join(dir, "restored.csv")
	require.NoError(t, os.WriteFile(input, blob, 0o644))

	_, err = Decompress(context.Background(), input, output, config.DefaultConfig())
	require.NoError(t, err)

	got, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(got))
}

func TestDecompressRejectsForeignInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "garbage.bin")
	require.NoError(t, os.WriteFile(input, []byte("definitely not compressed"), 0o644))

	_, err := Decompress(context.Background(), input, filepath.Join(dir, "out.csv"), config.DefaultConfig())
	assert.True(t, errors.IsType(err, errors.ErrorTypeBadMagic), "error = %v", err)
}

func TestCompressMissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Compress(context.Background(), filepath.Join(dir, "absent.csv"), filepath.Join(dir, "out.czcf"), config.DefaultConfig())
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile), "error = %v", err)
}

func TestCompressMalformedInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "broken.csv")
	require.NoError(t, os.WriteFile(input, []byte("a,\"never closed\n"), 0o644))

	_, err := Compress(context.Background(), input, filepath.Join(dir, "out.czcf"), config.DefaultConfig())
	assert.True(t, errors.IsType(err, errors.ErrorTypeMalformedRecord), "error = %v", err)
}

func TestInspect(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "input.csv")
	compressed := filepath.Join(dir, "input.czcf")
	require.NoError(t, os.WriteFile(input, []byte(sampleCSV), 0o644))

	_, err := Compress(context.Background(), input, compressed, config.DefaultConfig())
	require.NoError(t, err)

	info, err := Inspect(context.Background(), compressed)
	require.NoError(t, err)
	assert.Equal(t, 5, info.Rows)
	assert.Equal(t, 3, info.Columns)
	assert.Len(t, info.Segments, 3)
}
