// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package stats provides named counters for instrumenting the
// evaluator. Counters are cheap to update from many goroutines;
// collections of counters can be snapshotted for reporting.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Values is a point-in-time snapshot of a counter map.
type Values map[string]int64

// String returns the values in the snapshot, sorted by name, in the
// form "name=value", joined by spaces.
func (v Values) String() string {
	keys := make([]string, 0, len(v))
	for key := range v {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for i, key := range keys {
		keys[i] = fmt.Sprintf("%s=%d", key, v[key])
	}
	return strings.Join(keys, " ")
}

// A Map is a set of counters keyed by name. The zero value is not
// usable; construct Maps with NewMap.
type Map struct {
	mu       sync.Mutex
	counters map[string]*Int
}

// NewMap returns a fresh, empty counter map.
func NewMap() *Map {
	return &Map{counters: make(map[string]*Int)}
}

// Int returns the counter with the provided name, creating it at
// zero if it does not already exist.
func (m *Map) Int(name string) *Int {
	m.mu.Lock()
	v := m.counters[name]
	if v == nil {
		v = new(Int)
		m.counters[name] = v
	}
	m.mu.Unlock()
	return v
}

// Snapshot returns the current value of every counter in the map.
func (m *Map) Snapshot() Values {
	m.mu.Lock()
	vals := make(Values, len(m.counters))
	for name, v := range m.counters {
		vals[name] = v.Get()
	}
	m.mu.Unlock()
	return vals
}

// An Int is an integer counter that may be updated atomically from
// any number of goroutines. A nil Int reads as zero and ignores
// updates.
type Int struct {
	val int64
}

// Add increments the counter by delta.
func (v *Int) Add(delta int64) {
	if v == nil {
		return
	}
	atomic.AddInt64(&v.val, delta)
}

// Set sets the counter to val.
func (v *Int) Set(val int64) {
	if v == nil {
		return
	}
	atomic.StoreInt64(&v.val, val)
}

// Get returns the counter's current value.
func (v *Int) Get() int64 {
	if v == nil {
		return 0
	}
	return atomic.LoadInt64(&v.val)
}
