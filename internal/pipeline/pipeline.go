// Package pipeline orchestrates file-to-file compression and
// decompression: it owns all disk I/O and wires the tabular model, the
// column codec, and the compression container together. The stages form a
// strict pipeline; each stage consumes the previous stage's output and
// nothing is mutated after handoff.
package pipeline

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/csvpress/csvpress/pkg/codec"
	"github.com/csvpress/csvpress/pkg/config"
	"github.com/csvpress/csvpress/pkg/container"
	"github.com/csvpress/csvpress/pkg/errors"
	"github.com/csvpress/csvpress/pkg/logger"
	"github.com/csvpress/csvpress/pkg/model"
)

// Stats summarizes a completed compression or decompression run.
type Stats struct {
	OriginalBytes   int64         `json:"original_bytes"`
	CompressedBytes int64         `json:"compressed_bytes"`
	Rows            int           `json:"rows"`
	Columns         int           `json:"columns"`
	Ratio           float64       `json:"ratio"`
	Elapsed         time.Duration `json:"elapsed"`
}

// codecOptions maps tool configuration onto codec thresholds.
func codecOptions(cfg *config.Config) codec.Options {
	opts := codec.DefaultOptions()
	if cfg.Codec.RunRatio > 0 {
		opts.RunRatio = cfg.Codec.RunRatio
	}
	if cfg.Codec.DictRatio > 0 {
		opts.DictRatio = cfg.Codec.DictRatio
	}
	opts.Workers = cfg.Performance.GetWorkers()
	return opts
}

// Compress reads a CSV file, encodes it, wraps the blob in the compression
// envelope, and writes the result to outputPath.
func Compress(ctx context.Context, inputPath, outputPath string, cfg *config.Config) (*Stats, error) {
	log := logger.WithContext(ctx).With(
		zap.String("input", inputPath),
		zap.String("output", outputPath))

	alg, err := container.ParseAlgorithm(cfg.Container.Algorithm)
	if err != nil {
		return nil, err
	}
	level, err := container.ParseLevel(cfg.Container.Level)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	raw, err := os.ReadFile(inputPath) //nolint:gosec // G304: path comes from the CLI invocation
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read input file")
	}

	doc, err := model.Parse(string(raw))
	if err != nil {
		return nil, err
	}
	log.Debug("parsed document",
		zap.Int("rows", doc.RowCount()),
		zap.Int("columns", doc.ColumnCount()),
		zap.String("line_ending", doc.Dialect.LineEnding.String()))

	blob := codec.EncodeBlob(doc, codecOptions(cfg))

	wrapped, err := container.Wrap(blob, alg, level)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(outputPath, wrapped, 0o644); err != nil { //nolint:gosec
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to write output file")
	}

	stats := &Stats{
		OriginalBytes:   int64(len(raw)),
		CompressedBytes: int64(len(wrapped)),
		Rows:            doc.RowCount(),
		Columns:         doc.ColumnCount(),
		Elapsed:         time.Since(start),
	}
	if stats.CompressedBytes > 0 {
		stats.Ratio = float64(stats.OriginalBytes) / float64(stats.CompressedBytes)
	}

	log.Info("compression completed",
		zap.Int64("original_bytes", stats.OriginalBytes),
		zap.Int64("compressed_bytes", stats.CompressedBytes),
		zap.Float64("ratio", stats.Ratio),
		zap.Duration("elapsed", stats.Elapsed))

	return stats, nil
}

// Decompress reads a compressed file, unwraps and decodes it, and writes
// the reconstructed CSV text, byte-identical to the original input.
func Decompress(ctx context.Context, inputPath, outputPath string, cfg *config.Config) (*Stats, error) {
	log := logger.WithContext(ctx).With(
		zap.String("input", inputPath),
		zap.String("output", outputPath))

	start := time.Now()

	data, err := os.ReadFile(inputPath) //nolint:gosec // G304: path comes from the CLI invocation
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read input file")
	}

	blob, err := unwrapIfEnveloped(data)
	if err != nil {
		return nil, err
	}

	doc, err := codec.DecodeBlob(blob)
	if err != nil {
		return nil, err
	}

	text := model.Reassemble(doc)

	if err := os.WriteFile(outputPath, []byte(text), 0o644); err != nil { //nolint:gosec
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to write output file")
	}

	stats := &Stats{
		OriginalBytes:   int64(len(text)),
		CompressedBytes: int64(len(data)),
		Rows:            doc.RowCount(),
		Columns:         doc.ColumnCount(),
		Elapsed:         time.Since(start),
	}
	if stats.CompressedBytes > 0 {
		stats.Ratio = float64(stats.OriginalBytes) / float64(stats.CompressedBytes)
	}

	log.Info("decompression completed",
		zap.Int64("restored_bytes", stats.OriginalBytes),
		zap.Duration("elapsed", stats.Elapsed))

	return stats, nil
}

// Inspect returns a header-level summary of a compressed file without
// reconstructing any column data.
func Inspect(ctx context.Context, inputPath string) (*codec.BlobInfo, error) {
	data, err := os.ReadFile(inputPath) //nolint:gosec // G304: path comes from the CLI invocation
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read input file")
	}

	blob, err := unwrapIfEnveloped(data)
	if err != nil {
		return nil, err
	}

	return codec.ReadInfo(blob)
}

// unwrapIfEnveloped accepts both enveloped files and bare codec blobs.
// Bare blobs keep artifacts readable when the envelope step was skipped.
func unwrapIfEnveloped(data []byte) ([]byte, error) {
	if container.IsEnvelope(data) {
		return container.Unwrap(data)
	}
	if codec.IsBlob(data) {
		return data, nil
	}
	return nil, errors.New(errors.ErrorTypeBadMagic,
		"input is neither a compressed envelope nor a codec blob")
}
