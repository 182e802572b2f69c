// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// sdlog-scan decodes a folder of consecutive SD-card logger files into
// time-calibrated LCIO files, one per logger file.
//
// Usage: sdlog-scan [OPTIONS] DIR
//
// Example:
//
//	$> sdlog-scan -o ./out ./data
//	sdlog-scan: processing F00000000.bin...
//	sdlog-scan: warning: F00000000: degraded clock calibration (fixes=3, min=5): timestamps are not UTC
//	sdlog-scan: wrote F00000000.slcio (adc=4000, msgs=48, calibrated=false)
//	sdlog-scan: processing F00000001.bin...
//	sdlog-scan: wrote F00000001.slcio (adc=4000, msgs=52, calibrated=true)
//	[...]
package main // import "github.com/go-lpc/sdlog/cmd/sdlog-scan"

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/sbinet/pmon"

	"github.com/go-lpc/sdlog/config"
	"github.com/go-lpc/sdlog/scan"
	"github.com/go-lpc/sdlog/store"
)

func main() {
	msg := log.New(os.Stdout, "sdlog-scan: ", 0)

	err := xmain(msg, os.Args[1:])
	if err != nil {
		msg.Fatalf("%+v", err)
	}
}

func xmain(msg *log.Logger, args []string) error {
	var (
		fset  = flag.NewFlagSet("sdlog-scan", flag.ContinueOnError)
		fcfg  = fset.String("cfg", "", "path to a YAML configuration file")
		oname = fset.String("o", ".", "path to the output directory")
		nocal = fset.Bool("no-calib", false, "disable the GPS clock calibration")
		doMon = fset.Bool("pmon", false, "enable pmon monitoring")
		freq  = fset.Duration("freq", 1*time.Second, "pmon frequency")
	)

	fset.Usage = func() {
		fmt.Fprintf(fset.Output(), `sdlog-scan decodes a folder of SD-card logger files.

Usage: sdlog-scan [OPTIONS] DIR

Example:

 $> sdlog-scan -cfg ./scan.yaml -o ./out ./data

Options:
`)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		return err
	}

	if fset.NArg() != 1 {
		fset.Usage()
		return fmt.Errorf("missing input directory")
	}

	cfg := config.Default()
	if *fcfg != "" {
		cfg, err = config.Load(*fcfg)
		if err != nil {
			return fmt.Errorf("could not load configuration: %w", err)
		}
	}
	if *nocal {
		cfg.Calibrate = false
	}

	err = os.MkdirAll(*oname, 0755)
	if err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}

	if *doMon {
		f, err := monitor(msg, *oname, *freq)
		if err != nil {
			return err
		}
		defer func() {
			err := f.Sync()
			if err != nil {
				msg.Printf("could not sync pmon log file: %+v", err)
			}
			_ = f.Close()
		}()
	}

	return process(msg, cfg, *oname, fset.Arg(0))
}

// PmonFile is the name of the process monitoring log file.
const PmonFile = "sdlog-scan-pmon.log"

func process(msg *log.Logger, cfg config.Config, odir, dir string) error {
	fnames, err := scan.Glob(dir)
	if err != nil {
		return err
	}
	if len(fnames) == 0 {
		return fmt.Errorf("no logger file in %q", dir)
	}

	var (
		sc = cfg.Scanner(msg)
		w  = store.NewWriter(odir, cfg.Compression, msg)
	)

	meta, err := sc.Scan(fnames, w)
	if err != nil {
		return fmt.Errorf("could not scan %q: %w", dir, err)
	}

	err = store.WriteMetadata(filepath.Join(odir, store.MetaFile), meta)
	if err != nil {
		return fmt.Errorf("could not write scan metadata: %w", err)
	}

	msg.Printf("scanned %d files", len(meta.Units))
	return nil
}

// monitor records the memory and CPU usage of the scan in a log file
// under dir. The caller closes the returned log file.
// Monitoring stops when the process exits.
func monitor(msg *log.Logger, dir string, freq time.Duration) (*os.File, error) {
	pid := os.Getpid()
	p, err := pmon.Monitor(pid)
	if err != nil {
		return nil, fmt.Errorf("could not start monitoring (pid=%d): %w", pid, err)
	}

	f, err := os.Create(filepath.Join(dir, PmonFile))
	if err != nil {
		return nil, fmt.Errorf("could not create pmon log file: %w", err)
	}
	p.W = f
	p.Freq = freq

	go func() {
		msg.Printf("run pmon (pid=%d)...", pid)
		err := p.Run()
		if err != nil {
			msg.Printf("could not monitor process: %+v", err)
		}
	}()
	return f, nil
}
