// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package metrics

import (
	"context"
	"sync"
)

// A Scope is a collection of metric values, indexed by metric ID. The
// zero Scope is empty and ready for use. Scopes may be updated
// concurrently.
type Scope struct {
	mu   sync.Mutex
	vals []int64
}

func (s *Scope) add(id int, n int64) {
	s.mu.Lock()
	s.grow(id)
	s.vals[id] += n
	s.mu.Unlock()
}

func (s *Scope) value(id int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id >= len(s.vals) {
		return 0
	}
	return s.vals[id]
}

// grow extends storage to cover the metric id. The scope's lock must
// be held.
func (s *Scope) grow(id int) {
	for len(s.vals) <= id {
		s.vals = append(s.vals, 0)
	}
}

// snapshot returns a copy of the scope's values.
func (s *Scope) snapshot() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	vals := make([]int64, len(s.vals))
	copy(vals, s.vals)
	return vals
}

// Merge adds the values of scope u into scope s.
func (s *Scope) Merge(u *Scope) {
	uvals := u.snapshot()
	s.mu.Lock()
	for id, v := range uvals {
		if v == 0 {
			continue
		}
		s.grow(id)
		s.vals[id] += v
	}
	s.mu.Unlock()
}

// Reset resets the scope to the values of u, or to its initial empty
// state if u is nil.
func (s *Scope) Reset(u *Scope) {
	var uvals []int64
	if u != nil {
		uvals = u.snapshot()
	}
	s.mu.Lock()
	s.vals = uvals
	s.mu.Unlock()
}

// contextKeyType creates a context key private to this package.
type contextKeyType struct{}

var contextKey contextKeyType

// ScopedContext returns a context with the provided scope attached.
// The scope may be retrieved with ContextScope.
func ScopedContext(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, contextKey, scope)
}

// ContextScope returns the scope attached to the provided context.
// ContextScope panics if the context does not carry a scope.
func ContextScope(ctx context.Context) *Scope {
	s := ctx.Value(contextKey)
	if s == nil {
		panic("metrics: context does not provide metrics")
	}
	return s.(*Scope)
}
