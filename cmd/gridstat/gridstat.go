// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Gridstat is the gridslice demo driver: it generates a deterministic
// rows x cols matrix, distributes per-row statistics across workers,
// and writes the collected results to a file. Output paths may be
// local or s3:// URLs.
package main

import (
	"context"
	"flag"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/gridslice"
	"github.com/grailbio/gridslice/exec"
	"github.com/grailbio/gridslice/gridcmd"
	"github.com/grailbio/gridslice/gridio"
	"github.com/grailbio/gridslice/metrics"
	"github.com/grailbio/gridslice/rowstat"
)

func init() {
	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(
			s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
}

// cellsRead counts matrix cells read by the row kernels, across all
// workers.
var cellsRead = metrics.NewCounter()

func main() {
	var (
		rows      = flag.Int("rows", 5, "number of matrix rows")
		cols      = flag.Int("cols", 10, "number of matrix columns")
		out       = flag.String("out", "output/matrix", "results output path")
		matrixOut = flag.String("matrix-out", "", "if nonempty, also write the formatted matrix to this path")
		shards    = flag.Int("shards", 0, "if positive, write results sharded across this many files")
	)
	gridcmd.Main(func(sess *exec.Session, args []string) error {
		ctx := context.Background()
		m, err := gridslice.New(*rows, *cols)
		if err != nil {
			return err
		}
		log.Printf("matrix %dx%d:\n%s", m.Rows(), m.Cols(), m)
		job := gridslice.RowJob(m, func(ctx context.Context, row []int) (interface{}, error) {
			cellsRead.Incr(metrics.ContextScope(ctx), len(row))
			r, err := rowstat.Of(row)
			if err != nil {
				return nil, err
			}
			return r, nil
		})
		log.Printf("computing %d rows on %d workers", m.Rows(), sess.Parallelism())
		res, err := sess.Run(ctx, job)
		if err != nil {
			return err
		}
		results := make([]rowstat.Result, 0, res.Len())
		var (
			scan = res.Scanner()
			r    rowstat.Result
		)
		for scan.Scan(ctx, &r) {
			results = append(results, r)
		}
		if err := scan.Err(); err != nil {
			return err
		}
		for i, r := range results {
			log.Printf("row %d: %s", i, r)
		}
		log.Printf("read %d cells; %s", cellsRead.Value(res.Scope()), sess.Counters())
		if *matrixOut != "" {
			if err := gridio.WriteMatrix(ctx, *matrixOut, m); err != nil {
				return err
			}
		}
		if *shards > 0 {
			return gridio.WriteResultShards(ctx, *out, results, *shards)
		}
		return gridio.WriteResults(ctx, *out, results)
	})
}
