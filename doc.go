// Package csvpress provides lossless, column-oriented compression for
// low-entropy CSV files: tables with few distinct values per column, long
// runs of repeated values, and regular structure.
//
// # Architecture
//
// The system is a strict pipeline of pure stages:
//
//  1. pkg/model parses raw CSV text into a Document, tracking every source
//     quirk (delimiter, quote character, line-ending style, trailing
//     newline, stylistic quoting) needed for byte-exact reconstruction.
//  2. pkg/codec analyzes each column independently, selects the encoding
//     strategy that best exploits its redundancy (run-length, dictionary,
//     delta-numeric, or verbatim), and assembles a self-describing binary
//     blob. Columns are encoded in parallel; verbatim is always available,
//     so encoding never fails on well-formed input.
//  3. pkg/container wraps the blob in a generic byte-compression envelope
//     (zstd by default) to squeeze remaining byte-level redundancy.
//
// Decompression runs the same stages in reverse and reproduces the
// original file byte for byte: for every text accepted by the parser,
// Reassemble(Parse(text)) == text and DecodeBlob(EncodeBlob(doc)) == doc.
//
// # Quick Start
//
//	doc, err := model.Parse(csvText)
//	if err != nil {
//	    return err
//	}
//	blob := codec.EncodeBlob(doc, codec.DefaultOptions())
//
//	decoded, err := codec.DecodeBlob(blob)
//	if err != nil {
//	    return err
//	}
//	original := model.Reassemble(decoded)
//
// The csvpress CLI (cmd/csvpress) exposes compress, decompress, and
// inspect commands over the same pipeline.
package csvpress
