// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scan decodes a folder of consecutive logger files with a sliding
// window of two files.
//
// The first file is decoded alone, then every file is decoded together
// with the file preceding it, so that messages split across a file
// boundary are reassembled. Per-stream watermarks make sure every ADC
// sample and every message is emitted exactly once.
package scan // import "github.com/go-lpc/sdlog/scan"

import (
	"fmt"
	"io"
	"log"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-lpc/sdlog"
	"github.com/go-lpc/sdlog/clock"
	"github.com/go-lpc/sdlog/framer"
	"github.com/go-lpc/sdlog/rawfile"
)

// Scanner scans folders of logger files.
type Scanner struct {
	Channels  int     // number of ADC channels
	MaxDelta  float64 // maximum counter delta between two readings
	MinFixes  int     // minimum number of active fixes to calibrate the clock
	Calibrate bool    // whether to calibrate the clock against GPS fixes
	Edge      int     // number of tokens discarded at each end of a CHR stream

	Msg *log.Logger
}

// New returns a scanner with the default logger parameters.
func New(msg *log.Logger) *Scanner {
	if msg == nil {
		msg = log.New(io.Discard, "", 0)
	}
	return &Scanner{
		Channels:  rawfile.DefaultChannels,
		MaxDelta:  clock.DefaultMaxDelta,
		MinFixes:  clock.DefaultMinFixes,
		Calibrate: true,
		Edge:      framer.DefaultEdge,
		Msg:       msg,
	}
}

// Unit is the data emitted for one logger file.
type Unit struct {
	Name   string // output unit name, F%08d
	Number int    // file number

	ADCTimes []float64  // seconds since the Unix epoch
	ADC      [][]uint16 // ADC readings, indexed by channel

	CHRTimes []float64 // seconds since the Unix epoch
	Messages []string

	Calibration clock.Calibration

	Min float64 // earliest emitted timestamp
	Max float64 // latest emitted timestamp
}

// Calibrated returns whether the unit timestamps are absolute UTC times.
func (u *Unit) Calibrated() bool { return u.Calibration.Valid }

// Record describes an emitted unit.
type Record struct {
	Name       string  `yaml:"name"`
	Min        float64 `yaml:"min_timestamp"`
	Max        float64 `yaml:"max_timestamp"`
	Calibrated bool    `yaml:"calibrated"`
	Fixes      int     `yaml:"fixes"`
}

// Metadata describes a scanned folder.
type Metadata struct {
	Units []Record `yaml:"units"`
}

// Sink consumes the units emitted by a scan.
type Sink interface {
	Write(u *Unit) error
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(u *Unit) error

func (f SinkFunc) Write(u *Unit) error { return f(u) }

// watermarks hold the unwrapped counter of the last emitted entry of
// each stream.
type watermarks struct {
	adc float64
	chr float64
}

// Scan decodes the consecutive files fnames and hands one unit per file
// to sink. At most two decoded files are held in memory.
func (sc *Scanner) Scan(fnames []string, sink Sink) (Metadata, error) {
	var meta Metadata
	if len(fnames) == 0 {
		return meta, sdlog.Errorf(sdlog.EmptyInput, "scan: no file to scan")
	}

	err := Check(fnames)
	if err != nil {
		return meta, err
	}

	var (
		prev *rawfile.File
		org  origins
		wm   = watermarks{
			adc: math.Inf(-1),
			chr: math.Inf(-1),
		}
	)

	for i, fname := range fnames {
		sc.msg().Printf("processing %s...", filepath.Base(fname))
		cur, err := rawfile.Open(fname, sc.Channels)
		if err != nil {
			return meta, fmt.Errorf("scan: could not decode file: %w", err)
		}

		files := []*rawfile.File{cur}
		if prev != nil {
			files = []*rawfile.File{prev, cur}
		}

		win, err := sc.process(files, org)
		if err != nil {
			return meta, fmt.Errorf("scan: could not process %q: %w", fname, err)
		}

		num, _ := FileNumber(fname)
		var (
			last     = i == len(fnames)-1
			withhold = prev != nil && !last
			unit     = emit(win, &wm, withhold)
		)
		unit.Number = num
		unit.Name = strings.TrimSuffix(filepath.Base(fname), filepath.Ext(fname))

		if sc.Calibrate && !unit.Calibrated() {
			sc.msg().Printf(
				"warning: %s: degraded clock calibration (fixes=%d, min=%d): timestamps are not UTC",
				unit.Name, unit.Calibration.N, sc.MinFixes,
			)
		}

		err = sink.Write(unit)
		if err != nil {
			return meta, fmt.Errorf("scan: could not write unit %q: %w", unit.Name, err)
		}

		meta.Units = append(meta.Units, Record{
			Name:       unit.Name,
			Min:        unit.Min,
			Max:        unit.Max,
			Calibrated: unit.Calibrated(),
			Fixes:      unit.Calibration.N,
		})

		prev = cur
		org = win.origins
	}

	return meta, nil
}

func (sc *Scanner) msg() *log.Logger {
	if sc.Msg == nil {
		sc.Msg = log.New(io.Discard, "", 0)
	}
	return sc.Msg
}

// emit extracts from win the entries following the watermarks and
// advances them. The final message of win is withheld when the next
// window will emit it.
func emit(win *Window, wm *watermarks, withhold bool) *Unit {
	unit := &Unit{
		Calibration: win.Calibration,
		ADC:         make([][]uint16, len(win.ADC)),
	}

	n := len(win.ADCCounters)
	i := sort.Search(n, func(i int) bool { return win.ADCCounters[i] > wm.adc })
	unit.ADCTimes = win.ADCTimes[i:n]
	for ch, vs := range win.ADC {
		unit.ADC[ch] = vs[i:n]
	}
	if n > 0 {
		wm.adc = math.Max(wm.adc, win.ADCCounters[n-1])
	}

	n = len(win.CHRCounters)
	if withhold && n > 0 {
		n--
	}
	j := sort.Search(n, func(j int) bool { return win.CHRCounters[j] > wm.chr })
	unit.CHRTimes = win.CHRTimes[j:n]
	unit.Messages = win.Messages[j:n]
	if n > 0 {
		wm.chr = math.Max(wm.chr, win.CHRCounters[n-1])
	}

	unit.Min, unit.Max = span(unit.ADCTimes, unit.CHRTimes)
	return unit
}

// span returns the earliest and latest timestamps of monotonic series.
func span(series ...[]float64) (lo, hi float64) {
	lo, hi = math.Inf(+1), math.Inf(-1)
	for _, vs := range series {
		if len(vs) == 0 {
			continue
		}
		lo = math.Min(lo, vs[0])
		hi = math.Max(hi, vs[len(vs)-1])
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}
