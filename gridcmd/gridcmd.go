// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package gridcmd provides utilities for implementing gridslice-based
// command line tools. The main entry point, gridcmd.Main, configures
// a gridslice session according to a common set of flags and the
// shared profile, and then invokes the user's driver code.
//
// A gridcmd tool follows this form:
//
//	func main() {
//		var (
//			applicationFlag1 = flag.Int(...)
//			applicationFlag2 = ...
//		)
//		gridcmd.Main(func(sess *exec.Session, args []string) error {
//			ctx := context.Background()
//			res, err := sess.Run(ctx, myJob)
//			if err != nil {
//				return err
//			}
//			// Do something with res...
//			return nil
//		})
//	}
package gridcmd

import (
	"flag"
	"net/http"
	_ "net/http/pprof" // Pprof is exposed on the local diagnostic web server.
	"os"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/config"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/must"
	"github.com/grailbio/base/status"
	"github.com/grailbio/gridslice/exec"
)

// Path determines the location of the gridslice profile read by Main
// and ParseProfile.
var Path = os.ExpandEnv("$HOME/.gridslice/config")

// Flags represents the flags that configure a gridslice command.
type Flags struct {
	Executor      string
	Partitioner   string
	Parallelism   int
	MaxRetries    int
	ConsoleStatus bool
	HTTPAddress   cmdutil.NetworkAddressFlag
}

// RegisterFlags registers the gridslice command line flags with the
// supplied flag set. The flag names are prefixed with the supplied
// prefix.
func RegisterFlags(fs *flag.FlagSet, gf *Flags, prefix string) {
	fs.StringVar(&gf.Executor, prefix+"executor", "pool", `task executor: "pool" or "static"`)
	fs.StringVar(&gf.Partitioner, prefix+"partitioner", "range", `index partitioner for the static executor: "range" or "hash"`)
	fs.IntVar(&gf.Parallelism, prefix+"parallelism", 0, "number of workers, 0 requests one per available CPU")
	fs.IntVar(&gf.MaxRetries, prefix+"max-retries", exec.DefaultMaxRetries, "per-task retry budget for lost or temporarily failed tasks")
	fs.BoolVar(&gf.ConsoleStatus, prefix+"console-status", false, "print status to stdout")
	fs.Var(&gf.HTTPAddress, prefix+"http", "address of http status server")
}

// ExecOptions parses the flag values and returns a slice of
// exec.Options that represent the session configuration specified by
// those flags.
func (gf *Flags) ExecOptions() ([]exec.Option, error) {
	opt, err := exec.ExecutorOption(gf.Executor, gf.Partitioner)
	if err != nil {
		return nil, err
	}
	var stat status.Status
	options := []exec.Option{opt, exec.Status(&stat), exec.MaxRetries(gf.MaxRetries)}
	if gf.Parallelism > 0 {
		options = append(options, exec.Parallelism(gf.Parallelism))
	}
	return options, nil
}

// Main is a convenient entry point for a gridcmd. Main does not
// return; it should be called after other initialization is
// performed. Main parses (global) flags, processes the shared profile
// at Path, and configures a gridslice session accordingly. Main then
// invokes the provided func with the session and the unparsed
// arguments.
//
// Main terminates the program after the user func returns. If it
// returns with an error, the error is reported and the process exits
// with code 1; otherwise it exits successfully.
func Main(main func(sess *exec.Session, args []string) error) {
	var gf Flags
	RegisterFlags(flag.CommandLine, &gf, "")
	log.AddFlags()
	config.RegisterFlags("", Path)
	flag.Parse()
	must.Nil(config.ProcessFlags())
	sess, err := Init(&gf)
	if err != nil {
		log.Fatal(err)
	}
	err = main(sess, flag.Args())
	sess.Shutdown()
	if err != nil {
		log.Fatal(err)
	}
	os.Exit(0)
}

// Init starts a gridslice session according to the supplied flags.
func Init(gf *Flags) (*exec.Session, error) {
	options, err := gf.ExecOptions()
	if err != nil {
		return nil, err
	}
	sess := exec.Start(options...)
	DisplayStatus(gf, sess)
	return sess, nil
}

// ParseProfile is an alternative to flag-driven configuration: it
// registers configuration flags, calls flag.Parse, and returns the
// session configured by the "gridslice" profile instance at Path and
// any -set overrides. ParseProfile panics if session creation fails.
func ParseProfile() (sess *exec.Session, shutdown func()) {
	config.RegisterFlags("", Path)
	flag.Parse()
	must.Nil(config.ProcessFlags())
	config.Must("gridslice", &sess)
	return sess, sess.Shutdown
}

// DisplayStatus arranges for the session's execution status to be
// displayed on the console and/or a web page, depending on the flags
// specified on the command line. The web page is hosted at
// /debug/status on http.DefaultServeMux.
func DisplayStatus(gf *Flags, sess *exec.Session) {
	if gf.ConsoleStatus {
		var console status.Reporter
		go console.Go(os.Stdout, sess.Status())
	}
	if len(gf.HTTPAddress.Address) > 0 {
		http.Handle("/debug/status", status.Handler(sess.Status()))
		go func() {
			log.Printf("http status at: %v", gf.HTTPAddress)
			err := http.ListenAndServe(gf.HTTPAddress.Address, nil)
			if err != nil {
				log.Error.Printf("failed to start http server at %v: %v", gf.HTTPAddress, err)
			}
		}()
	}
}
