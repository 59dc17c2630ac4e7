// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package gridio

import (
	"bytes"
	"context"
	"io/ioutil"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/gridslice"
	"github.com/grailbio/gridslice/rowstat"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
)

func statsFor(t *testing.T, m gridslice.Matrix) []rowstat.Result {
	t.Helper()
	results := make([]rowstat.Result, m.Rows())
	for i := range results {
		row, err := m.Row(i)
		if err != nil {
			t.Fatal(err)
		}
		results[i], err = rowstat.Of(row)
		if err != nil {
			t.Fatal(err)
		}
	}
	return results
}

func TestWriteMatrix(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()
	m, err := gridslice.New(3, 4)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "matrix")
	assert.NoError(t, WriteMatrix(ctx, path, m))
	b, err := ioutil.ReadFile(path)
	assert.NoError(t, err)
	if got, want := string(b), "0 , 1 , 2 , 3 \n4 , 5 , 6 , 7 \n8 , 9 , 10, 11\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResultsRoundTrip(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()
	m, err := gridslice.New(5, 10)
	if err != nil {
		t.Fatal(err)
	}
	results := statsFor(t, m)
	path := filepath.Join(dir, "results")
	assert.NoError(t, WriteResults(ctx, path, results))
	got, err := ScanResults(ctx, path)
	assert.NoError(t, err)
	if got, want := len(got), len(results); got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range results {
		if got[i] != results[i] {
			t.Errorf("row %d: got %v, want %v", i, got[i], results[i])
		}
	}
}

func TestResultShards(t *testing.T) {
	const nshard = 3
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()
	m, err := gridslice.New(8, 5)
	if err != nil {
		t.Fatal(err)
	}
	results := statsFor(t, m)
	prefix := filepath.Join(dir, "results")
	assert.NoError(t, WriteResultShards(ctx, prefix, results, nshard))
	// Every shard file exists and no row appears twice.
	seen := make(map[int]bool)
	for shard := 0; shard < nshard; shard++ {
		b, err := ioutil.ReadFile(shardPath(prefix, shard, nshard))
		assert.NoError(t, err)
		for shardScan := NewScanner(bytes.NewReader(b)); shardScan.Scan(); {
			row := shardScan.Row()
			if seen[row] {
				t.Errorf("row %d seen twice", row)
			}
			seen[row] = true
			if got, want := row%nshard, shard; got != want {
				t.Errorf("row %d in shard %d, want %d", row, shard, want)
			}
		}
	}
	if got, want := len(seen), len(results); got != want {
		t.Errorf("got %v rows, want %v", got, want)
	}
	// Merging the shards recovers the original row order.
	got, err := ScanResultShards(ctx, prefix, nshard)
	assert.NoError(t, err)
	for i := range results {
		if got[i] != results[i] {
			t.Errorf("row %d: got %v, want %v", i, got[i], results[i])
		}
	}
}

func TestWriteResultShardsInvalid(t *testing.T) {
	ctx := context.Background()
	if err := WriteResultShards(ctx, "unused", nil, 0); err == nil {
		t.Error("expected error")
	}
	if _, err := ScanResultShards(ctx, "unused", -1); err == nil {
		t.Error("expected error")
	}
}

func TestScannerMalformed(t *testing.T) {
	for _, input := range []string{
		"not a result line\n",
		"0\t1\t2\n",
		"zero\t1\t2\t3\t4.0\n",
		"0\t1\t2\t3\tnan-ish\n",
	} {
		scan := NewScanner(strings.NewReader(input))
		if scan.Scan() {
			t.Errorf("scan of %q succeeded", input)
		}
		if scan.Err() == nil {
			t.Errorf("no error for %q", input)
		}
	}
}

func TestScannerStdDev(t *testing.T) {
	results := []rowstat.Result{{Sum: 45, Mean: 4, SumSquares: 285, StdDev: math.Sqrt(285)}}
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()
	path := filepath.Join(dir, "results")
	assert.NoError(t, WriteResults(ctx, path, results))
	got, err := ScanResults(ctx, path)
	assert.NoError(t, err)
	// %g round-trips float64 exactly.
	if got, want := got[0].StdDev, math.Sqrt(285); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}
