// Package codec transforms a parsed CSV document into a compact,
// self-describing binary blob and back. Each column is analyzed for
// redundancy and encoded with one of four strategies: run-length,
// dictionary, delta-numeric, or verbatim. Verbatim is always available, so
// encoding never fails on well-formed input; only decoding of corrupted or
// foreign blobs can fail.
package codec

import (
	"math"
	"runtime"
	"strconv"
)

// Strategy identifies the per-column encoding. The values are the wire
// discriminants written into the blob and must never be renumbered.
type Strategy byte

const (
	// StrategyVerbatim stores raw field strings with explicit lengths
	StrategyVerbatim Strategy = 0x00
	// StrategyRunLength stores (value, repetition count) pairs
	StrategyRunLength Strategy = 0x01
	// StrategyDictionary stores a deduplicated value table plus per-row indices
	StrategyDictionary Strategy = 0x02
	// StrategyDelta stores the first integer plus signed differences
	StrategyDelta Strategy = 0x03
)

// Valid reports whether the strategy tag is one this codec understands.
func (s Strategy) Valid() bool {
	return s <= StrategyDelta
}

// String returns the strategy name used in logs and inspect output.
func (s Strategy) String() string {
	switch s {
	case StrategyVerbatim:
		return "verbatim"
	case StrategyRunLength:
		return "run-length"
	case StrategyDictionary:
		return "dictionary"
	case StrategyDelta:
		return "delta"
	default:
		return "unknown"
	}
}

// Options holds the strategy-selection thresholds and encoder concurrency.
type Options struct {
	// RunRatio selects run-length when runs/rows <= RunRatio
	RunRatio float64
	// DictRatio selects dictionary when distinct/rows <= DictRatio
	DictRatio float64
	// Workers bounds concurrent column encoders (0 = NumCPU)
	Workers int
}

// DefaultOptions returns the default thresholds.
func DefaultOptions() Options {
	return Options{
		RunRatio:  0.5,
		DictRatio: 0.25,
		Workers:   runtime.NumCPU(),
	}
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return runtime.NumCPU()
	}
	return o.Workers
}

// Run is one (value, count) pair of a run-length plan.
type Run struct {
	Value string
	Count int
}

// Plan is the chosen strategy for a column plus the artifacts the encoder
// needs to apply it. It is produced by Analyze and consumed once by
// EncodeColumn; the decoder reads everything it needs from the wire.
type Plan struct {
	Strategy Strategy

	// Runs carries the precomputed runs for StrategyRunLength
	Runs []Run
	// Dict carries the value table, ordered by first appearance, for
	// StrategyDictionary
	Dict []string
	// Ints carries the parsed values for StrategyDelta
	Ints []int64
}

// Analyze inspects a column and picks its encoding strategy. The policy is
// evaluated in order, first match wins:
//
//  1. run-length, when the ratio of runs to rows is at or below RunRatio
//  2. dictionary, when the ratio of distinct values to rows is at or below
//     DictRatio
//  3. delta, when every value is a canonical base-10 int64 and all
//     consecutive differences are representable
//  4. verbatim, always applicable
//
// Analysis is deterministic: the dictionary table is ordered by first
// appearance, never by map iteration.
func Analyze(column []string, opts Options) Plan {
	rows := len(column)
	if rows == 0 {
		return Plan{Strategy: StrategyVerbatim}
	}

	var (
		runs     []Run
		distinct = make(map[string]uint32, 16)
		order    []string
		allInt   = true
		ints     []int64
	)

	for i, v := range column {
		if i == 0 || v != column[i-1] {
			runs = append(runs, Run{Value: v, Count: 1})
		} else {
			runs[len(runs)-1].Count++
		}

		if _, seen := distinct[v]; !seen {
			distinct[v] = uint32(len(order))
			order = append(order, v)
		}

		if allInt {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || strconv.FormatInt(n, 10) != v {
				// Non-canonical text like "007" or "+1" cannot be
				// reconstructed from the parsed value.
				allInt = false
				ints = nil
			} else {
				ints = append(ints, n)
			}
		}
	}

	if float64(len(runs)) <= opts.RunRatio*float64(rows) {
		return Plan{Strategy: StrategyRunLength, Runs: runs}
	}
	if float64(len(order)) <= opts.DictRatio*float64(rows) {
		return Plan{Strategy: StrategyDictionary, Dict: order}
	}
	if allInt && deltasRepresentable(ints) {
		return Plan{Strategy: StrategyDelta, Ints: ints}
	}
	return Plan{Strategy: StrategyVerbatim}
}

// deltasRepresentable reports whether every consecutive difference fits in
// int64. Columns mixing values near both extremes fall back to verbatim at
// encode time, so decoding data this codec produced can never overflow.
func deltasRepresentable(ints []int64) bool {
	for i := 1; i < len(ints); i++ {
		prev, cur := ints[i-1], ints[i]
		if prev > 0 && cur < math.MinInt64+prev {
			return false
		}
		if prev < 0 && cur > math.MaxInt64+prev {
			return false
		}
	}
	return true
}
