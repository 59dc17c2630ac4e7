// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package gridio writes matrices and row statistics to files and
// reads the statistics back. Paths are resolved by
// grailbio/base/file, so both local paths and s3:// URLs (when an S3
// implementation is registered) are accepted. The text formats are
// free-form: this package reads what it writes, but they are not
// wire contracts.
package gridio

import (
	"bufio"
	"context"
	"fmt"
	"sort"

	"github.com/grailbio/base/data"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/gridslice"
	"github.com/grailbio/gridslice/rowstat"
)

// WriteMatrix writes the formatted matrix to the provided path.
func WriteMatrix(ctx context.Context, path string, m gridslice.Matrix) error {
	f, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f.Writer(ctx))
	if err = m.WriteFormatted(w); err == nil {
		err = w.Flush()
	}
	if err != nil {
		f.Close(ctx)
		return err
	}
	return f.Close(ctx)
}

// WriteResults writes per-row statistics to the provided path, one
// row per line, as "row\tsum\tmean\tsumsq\tstddev". Rows are numbered
// by position in results, zero-based.
func WriteResults(ctx context.Context, path string, results []rowstat.Result) error {
	f, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f.Writer(ctx))
	var nbytes int64
	for i, r := range results {
		n, err := writeResult(w, i, r)
		if err != nil {
			f.Close(ctx)
			return err
		}
		nbytes += int64(n)
	}
	if err = w.Flush(); err != nil {
		f.Close(ctx)
		return err
	}
	if err = f.Close(ctx); err != nil {
		return err
	}
	log.Printf("gridio: wrote %d results (%s) to %s", len(results), data.Size(nbytes), path)
	return nil
}

// WriteResultShards writes per-row statistics across nshard files
// named prefix-NNN-of-NNN, written in parallel. Row i lands in shard
// i mod nshard; every line carries its row number, so the shards can
// be merged back into row order by ScanResultShards.
func WriteResultShards(ctx context.Context, prefix string, results []rowstat.Result, nshard int) error {
	if nshard <= 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("gridio: invalid shard count %d", nshard))
	}
	return traverse.Each(nshard, func(shard int) error {
		f, err := file.Create(ctx, shardPath(prefix, shard, nshard))
		if err != nil {
			return err
		}
		w := bufio.NewWriter(f.Writer(ctx))
		for i := shard; i < len(results); i += nshard {
			if _, err := writeResult(w, i, results[i]); err != nil {
				f.Close(ctx)
				return err
			}
		}
		if err := w.Flush(); err != nil {
			f.Close(ctx)
			return err
		}
		return f.Close(ctx)
	})
}

func writeResult(w *bufio.Writer, row int, r rowstat.Result) (int, error) {
	return fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%g\n", row, r.Sum, r.Mean, r.SumSquares, r.StdDev)
}

func shardPath(prefix string, shard, nshard int) string {
	return fmt.Sprintf("%s-%03d-of-%03d", prefix, shard, nshard)
}

// ScanResults reads back the statistics written by WriteResults,
// ordered by row number.
func ScanResults(ctx context.Context, path string) ([]rowstat.Result, error) {
	pairs, err := scanPairs(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return orderResults(pairs), nil
}

// ScanResultShards reads back the statistics written by
// WriteResultShards, merging the shards into row order.
func ScanResultShards(ctx context.Context, prefix string, nshard int) ([]rowstat.Result, error) {
	if nshard <= 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("gridio: invalid shard count %d", nshard))
	}
	var pairs []pair
	for shard := 0; shard < nshard; shard++ {
		var err error
		pairs, err = scanPairs(ctx, shardPath(prefix, shard, nshard), pairs)
		if err != nil {
			return nil, err
		}
	}
	return orderResults(pairs), nil
}

type pair struct {
	row int
	res rowstat.Result
}

func scanPairs(ctx context.Context, path string, pairs []pair) ([]pair, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close(ctx)
	scan := NewScanner(f.Reader(ctx))
	for scan.Scan() {
		pairs = append(pairs, pair{scan.Row(), scan.Result()})
	}
	if err := scan.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

func orderResults(pairs []pair) []rowstat.Result {
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].row < pairs[j].row })
	results := make([]rowstat.Result, len(pairs))
	for i, p := range pairs {
		results[i] = p.res
	}
	return results
}
