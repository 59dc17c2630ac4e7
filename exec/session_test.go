// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package exec

import (
	"context"
	"testing"

	"github.com/grailbio/gridslice"
	"github.com/grailbio/gridslice/metrics"
	"github.com/grailbio/gridslice/rowstat"
)

var executors = map[string][]Option{
	"pool":         {Pool},
	"static/range": {Static(RangePartitioner{})},
	"static/hash":  {Static(HashPartitioner{})},
}

// forEachExecutor runs the test once per executor configuration with
// a small, fixed parallelism.
func forEachExecutor(t *testing.T, run func(t *testing.T, sess *Session)) {
	t.Helper()
	for name, options := range executors {
		t.Run(name, func(t *testing.T) {
			sess := Start(append([]Option{Parallelism(3)}, options...)...)
			defer sess.Shutdown()
			run(t, sess)
		})
	}
}

func TestSessionRowStats(t *testing.T) {
	m, err := gridslice.New(5, 10)
	if err != nil {
		t.Fatal(err)
	}
	job := gridslice.RowJob(m, func(ctx context.Context, row []int) (interface{}, error) {
		r, err := rowstat.Of(row)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
	want := []struct{ sum, mean int64 }{
		{45, 4}, {145, 14}, {245, 24}, {345, 34}, {445, 44},
	}
	forEachExecutor(t, func(t *testing.T, sess *Session) {
		res, err := sess.Run(context.Background(), job)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := res.Len(), m.Rows(); got != want {
			t.Fatalf("got %v, want %v", got, want)
		}
		for i, v := range res.Values() {
			r := v.(rowstat.Result)
			if got, want := r.Sum, want[i].sum; got != want {
				t.Errorf("row %d: got sum %v, want %v", i, got, want)
			}
			if got, want := r.Mean, want[i].mean; got != want {
				t.Errorf("row %d: got mean %v, want %v", i, got, want)
			}
		}
	})
}

// TestSessionOrdering verifies that result values are ordered by
// index even though tasks complete in arbitrary order.
func TestSessionOrdering(t *testing.T) {
	const n = 100
	job := gridslice.JobFunc(n, func(ctx context.Context, index int) (interface{}, error) {
		return index * index, nil
	})
	forEachExecutor(t, func(t *testing.T, sess *Session) {
		res, err := sess.Run(context.Background(), job)
		if err != nil {
			t.Fatal(err)
		}
		for i, v := range res.Values() {
			index := i + 1
			if got, want := v.(int), index*index; got != want {
				t.Errorf("index %d: got %v, want %v", index, got, want)
			}
		}
	})
}

func TestSessionScanner(t *testing.T) {
	m, err := gridslice.New(5, 10)
	if err != nil {
		t.Fatal(err)
	}
	job := gridslice.RowJob(m, func(ctx context.Context, row []int) (interface{}, error) {
		r, err := rowstat.Of(row)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
	sess := Start(Pool, Parallelism(2))
	defer sess.Shutdown()
	ctx := context.Background()
	res, err := sess.Run(ctx, job)
	if err != nil {
		t.Fatal(err)
	}
	var (
		scan = res.Scanner()
		sums []int64
		r    rowstat.Result
	)
	for scan.Scan(ctx, &r) {
		sums = append(sums, r.Sum)
	}
	if err := scan.Err(); err != nil {
		t.Fatal(err)
	}
	want := []int64{45, 145, 245, 345, 445}
	if got, want := len(sums), len(want); got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got := sums[i]; got != want[i] {
			t.Errorf("row %d: got %v, want %v", i, got, want[i])
		}
	}
}

func TestScannerTypeMismatch(t *testing.T) {
	sess := Start(Pool, Parallelism(1))
	defer sess.Shutdown()
	ctx := context.Background()
	res, err := sess.Run(ctx, gridslice.JobFunc(1, func(ctx context.Context, index int) (interface{}, error) {
		return "not an int", nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	scan := res.Scanner()
	var v int
	if scan.Scan(ctx, &v) {
		t.Fatal("scan of mismatched type succeeded")
	}
	if scan.Err() == nil {
		t.Fatal("expected error")
	}
}

var cellsSeen = metrics.NewCounter()

func TestSessionMetrics(t *testing.T) {
	m, err := gridslice.New(5, 10)
	if err != nil {
		t.Fatal(err)
	}
	job := gridslice.RowJob(m, func(ctx context.Context, row []int) (interface{}, error) {
		cellsSeen.Incr(metrics.ContextScope(ctx), len(row))
		return nil, nil
	})
	forEachExecutor(t, func(t *testing.T, sess *Session) {
		res, err := sess.Run(context.Background(), job)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := cellsSeen.Value(res.Scope()), int64(50); got != want {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestSessionCounters(t *testing.T) {
	sess := Start(Pool, Parallelism(2))
	defer sess.Shutdown()
	_, err := sess.Run(context.Background(), gridslice.JobFunc(7, func(ctx context.Context, index int) (interface{}, error) {
		return nil, nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := sess.Counters()["tasks-run"], int64(7); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSessionRunError(t *testing.T) {
	job := gridslice.RowJob(gridslice.Matrix{}, func(ctx context.Context, row []int) (interface{}, error) {
		return nil, nil
	})
	forEachExecutor(t, func(t *testing.T, sess *Session) {
		// An empty matrix yields an empty job; no tasks are run.
		res, err := sess.Run(context.Background(), job)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := res.Len(), 0; got != want {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestSessionIndexError(t *testing.T) {
	m, err := gridslice.New(2, 2)
	if err != nil {
		t.Fatal(err)
	}
	// A job that reaches past the matrix bounds surfaces the accessor
	// error through Run.
	job := gridslice.JobFunc(3, func(ctx context.Context, index int) (interface{}, error) {
		return m.ProvideRow(index + 1)
	})
	forEachExecutor(t, func(t *testing.T, sess *Session) {
		_, err := sess.Run(context.Background(), job)
		if got, want := err, gridslice.ErrIndexOutOfRange; got != want {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestExecutorOption(t *testing.T) {
	for _, c := range []struct{ executor, partitioner, name string }{
		{"pool", "", "pool"},
		{"static", "range", "static/range"},
		{"static", "hash", "static/hash"},
	} {
		opt, err := ExecutorOption(c.executor, c.partitioner)
		if err != nil {
			t.Fatal(err)
		}
		sess := Start(opt, Parallelism(1))
		if got, want := sess.executor.Name(), c.name; got != want {
			t.Errorf("got %v, want %v", got, want)
		}
		sess.Shutdown()
	}
	if _, err := ExecutorOption("remote", ""); err == nil {
		t.Error("expected error")
	}
	if _, err := ExecutorOption("static", "roundrobin"); err == nil {
		t.Error("expected error")
	}
}
