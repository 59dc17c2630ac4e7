// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package exec

import (
	"fmt"

	"github.com/grailbio/base/config"
	"github.com/grailbio/base/errors"
)

func init() {
	config.Register("gridslice", func(inst *config.Constructor) {
		var (
			parallelism int
			executor    string
			partitioner string
			maxRetries  int
		)
		inst.IntVar(&parallelism, "parallelism", 0, "number of workers; 0 means one per available CPU")
		inst.StringVar(&executor, "executor", "pool", `task executor: "pool" or "static"`)
		inst.StringVar(&partitioner, "partitioner", "range", `index partitioner for the static executor: "range" or "hash"`)
		inst.IntVar(&maxRetries, "max-retries", DefaultMaxRetries, "per-task retry budget for lost or temporarily failed tasks")
		inst.Doc = "gridslice configures the gridslice runtime"
		inst.New = func() (interface{}, error) {
			opt, err := ExecutorOption(executor, partitioner)
			if err != nil {
				return nil, err
			}
			options := []Option{opt, MaxRetries(maxRetries)}
			if parallelism > 0 {
				options = append(options, Parallelism(parallelism))
			}
			return Start(options...), nil
		}
	})
}

// ExecutorOption returns the session option selecting the named
// executor ("pool" or "static") and, for the static executor, the
// named partitioner ("range" or "hash").
func ExecutorOption(executor, partitioner string) (Option, error) {
	switch executor {
	case "pool":
		return Pool, nil
	case "static":
		part, err := partitionerFor(partitioner)
		if err != nil {
			return nil, err
		}
		return Static(part), nil
	}
	return nil, errors.E(errors.Invalid, fmt.Sprintf("unsupported executor %q", executor))
}

func partitionerFor(name string) (Partitioner, error) {
	switch name {
	case "range":
		return RangePartitioner{}, nil
	case "hash":
		return HashPartitioner{}, nil
	}
	return nil, errors.E(errors.Invalid, fmt.Sprintf("unsupported partitioner %q", name))
}
