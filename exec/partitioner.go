// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package exec

import (
	"encoding/binary"

	"github.com/spaolacci/murmur3"
)

// A Partitioner statically assigns task indices to workers. It is
// used by the static executor to decide, at submission time, which
// worker queue receives a task. Partitioners must be deterministic:
// the same (index, n, nworker) always yields the same worker.
type Partitioner interface {
	// Partition returns the worker in [0, nworker) responsible for
	// the one-based index, drawn from a range of n indices.
	Partition(index, n, nworker int) int
	// String returns a short name for the partitioner.
	String() string
}

// RangePartitioner assigns contiguous chunks of the index range to
// successive workers: the classic parallelize split, in which worker
// w receives indices (w*ceil(n/nworker), (w+1)*ceil(n/nworker)].
type RangePartitioner struct{}

// Partition implements Partitioner.
func (RangePartitioner) Partition(index, n, nworker int) int {
	chunk := (n + nworker - 1) / nworker
	w := (index - 1) / chunk
	if w >= nworker {
		w = nworker - 1
	}
	return w
}

// String implements Partitioner.
func (RangePartitioner) String() string { return "range" }

// HashPartitioner assigns indices to workers by hash, spreading
// neighboring indices across the pool.
type HashPartitioner struct{}

// Partition implements Partitioner.
func (HashPartitioner) Partition(index, n, nworker int) int {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(index))
	return int(murmur3.Sum32(b[:]) % uint32(nworker))
}

// String implements Partitioner.
func (HashPartitioner) String() string { return "hash" }
