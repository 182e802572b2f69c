// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scan

import (
	"fmt"

	"github.com/go-lpc/sdlog"
	"github.com/go-lpc/sdlog/clock"
	"github.com/go-lpc/sdlog/framer"
	"github.com/go-lpc/sdlog/rawfile"
)

// Window is a set of consecutive files decoded together.
type Window struct {
	Calibration clock.Calibration

	ADCCounters []float64  // unwrapped counters of channel 0
	ADCTimes    []float64  // seconds since the Unix epoch
	ADC         [][]uint16 // ADC readings, indexed by channel

	CHRCounters []float64 // unwrapped counters of the messages
	CHRTimes    []float64 // seconds since the Unix epoch
	Messages    []string

	origins origins
}

// origins holds the first unwrapped counter of each stream of a window.
type origins struct {
	adc float64
	chr float64
	pps float64
}

// Process decodes consecutive files together.
// Messages split across file boundaries are reassembled.
func (sc *Scanner) Process(files ...*rawfile.File) (*Window, error) {
	return sc.process(files, origins{})
}

// process decodes consecutive files together, resuming the counter
// unwrapping of every stream from org.
func (sc *Scanner) process(files []*rawfile.File, org origins) (*Window, error) {
	f, err := rawfile.Concat(files...)
	if err != nil {
		return nil, fmt.Errorf("scan: could not join files: %w", err)
	}

	win := &Window{
		ADC:     make([][]uint16, len(f.ADC)),
		origins: org,
	}

	if len(f.ADC) > 0 {
		ref := f.ADC[0]
		for ch, samples := range f.ADC {
			if len(samples) != len(ref) {
				return nil, sdlog.Errorf(sdlog.Misaligned,
					"scan: ADC channel %d has %d samples (channel 0: %d)",
					ch, len(samples), len(ref),
				)
			}
			vs := make([]uint16, len(samples))
			for i, s := range samples {
				vs[i] = s.Value
			}
			win.ADC[ch] = vs
		}

		raw := make([]float64, len(ref))
		for i, s := range ref {
			raw[i] = s.Counter
		}
		win.ADCCounters, win.origins.adc, err = unwrap(raw, sc.MaxDelta, org.adc)
		if err != nil {
			return nil, fmt.Errorf("scan: could not unwrap ADC counters: %w", err)
		}
	}

	msgs := framer.Framer{Edge: sc.Edge}.Frame(f.CHR)
	cnts, txts := framer.Split(msgs)
	raw := make([]float64, len(cnts))
	for i, v := range cnts {
		raw[i] = float64(v)
	}
	win.Messages = txts
	win.CHRCounters, win.origins.chr, err = unwrap(raw, sc.MaxDelta, org.chr)
	if err != nil {
		return nil, fmt.Errorf("scan: could not unwrap CHR counters: %w", err)
	}

	win.Calibration = clock.Identity()
	if sc.Calibrate {
		u := clock.NewUnwrapperAt(sc.MaxDelta, org.pps)
		samples, err := clock.PPSSamples(txts, u)
		if err != nil {
			return nil, fmt.Errorf("scan: could not collect PPS samples: %w", err)
		}
		if u.Len() > 0 {
			win.origins.pps = u.Origin()
		}
		win.Calibration, err = clock.Calibrate(samples, sc.MinFixes)
		if err != nil {
			return nil, fmt.Errorf("scan: could not calibrate clock: %w", err)
		}
	}

	win.ADCTimes = times(win.Calibration, win.ADCCounters)
	win.CHRTimes = times(win.Calibration, win.CHRCounters)

	return win, nil
}

// unwrap unwraps a stream of counters from floor.
// unwrap returns the first unwrapped counter, or floor if the stream is empty.
func unwrap(raw []float64, maxDelta, floor float64) ([]float64, float64, error) {
	if len(raw) == 0 {
		return nil, floor, nil
	}

	var (
		u   = clock.NewUnwrapperAt(maxDelta, floor)
		out = make([]float64, len(raw))
		err error
	)
	for i, v := range raw {
		out[i], err = u.Next(v)
		if err != nil {
			return nil, floor, err
		}
	}
	return out, u.Origin(), nil
}

func times(cal clock.Calibration, cnts []float64) []float64 {
	if cnts == nil {
		return nil
	}
	o := make([]float64, len(cnts))
	for i, v := range cnts {
		o[i] = cal.Time(v)
	}
	return o
}
