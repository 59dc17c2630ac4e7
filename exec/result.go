// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package exec

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/gridslice/metrics"
)

// A Result is the output of a job evaluation: the values computed for
// every index in the job's range, ordered by index.
type Result struct {
	values []interface{}
	tasks  []*Task

	initScope sync.Once
	scope     metrics.Scope
}

// Len returns the number of values in the result.
func (r *Result) Len() int {
	return len(r.values)
}

// Values returns the result's values, ordered by index: Values()[i]
// holds the value computed for the one-based index i+1. The returned
// slice is shared and must not be modified.
func (r *Result) Values() []interface{} {
	return r.values
}

// Scope returns the merged metrics scope of every task that
// contributed to the result.
func (r *Result) Scope() *metrics.Scope {
	r.initScope.Do(func() {
		for _, task := range r.tasks {
			r.scope.Merge(&task.Scope)
		}
	})
	return &r.scope
}

// Scanner returns a scanner that scans the result's values in index
// order. Multiple scanners may be created from the same result and
// used concurrently.
func (r *Result) Scanner() *Scanner {
	return &Scanner{values: r.values}
}

// A Scanner iterates over a result's values, assigning each in turn
// to a typed destination. Scanning stops at the end of the result or
// on the first error; the caller should inspect Err when Scan returns
// false.
type Scanner struct {
	values []interface{}
	err    error
}

// Scan assigns the next value to *out, which must be a pointer whose
// element type the value is assignable to. Scan returns true while
// there remain values to be scanned and no error has occurred.
func (s *Scanner) Scan(ctx context.Context, out interface{}) bool {
	if s.err != nil || len(s.values) == 0 {
		return false
	}
	if err := ctx.Err(); err != nil {
		s.err = err
		return false
	}
	dst := reflect.ValueOf(out)
	if dst.Kind() != reflect.Ptr {
		s.err = errors.E(errors.Invalid, fmt.Sprintf("exec.Scan: destination %T is not a pointer", out))
		return false
	}
	val := reflect.ValueOf(s.values[0])
	if !val.IsValid() {
		// A nil value scans as the destination's zero value.
		val = reflect.Zero(dst.Elem().Type())
	}
	if got, want := val.Type(), dst.Elem().Type(); !got.AssignableTo(want) {
		s.err = errors.E(errors.Invalid, fmt.Sprintf("exec.Scan: cannot assign %s to *%s", got, want))
		return false
	}
	dst.Elem().Set(val)
	s.values = s.values[1:]
	return true
}

// Err returns the error, if any, that stopped the scanner.
func (s *Scanner) Err() error {
	return s.err
}
