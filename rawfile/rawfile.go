// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rawfile decodes whole logger files into per-channel ADC series
// and a character stream.
package rawfile // import "github.com/go-lpc/sdlog/rawfile"

import (
	"bytes"
	"fmt"

	"github.com/go-lpc/sdlog"
	"github.com/go-lpc/sdlog/block"
	"github.com/go-lpc/sdlog/internal/mmap"
)

// DefaultChannels is the number of ADC channels recorded by the logger.
const DefaultChannels = 5

const counterRange = 1 << 32

// Sample is an ADC reading with its interpolated counter value.
type Sample struct {
	Counter float64 // micro-second counter, in [0, 2^32)
	Value   uint16
}

// File is a decoded logger file.
type File struct {
	ADC [][]Sample // ADC series, indexed by channel
	CHR []byte     // character stream
}

// Open memory-maps the named file and decodes it.
func Open(fname string, nchans int) (*File, error) {
	h, err := mmap.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("rawfile: could not open %q: %w", fname, err)
	}
	defer h.Close()

	f, err := Decode(h.Bytes(), nchans)
	if err != nil {
		return nil, fmt.Errorf("rawfile: could not decode %q: %w", fname, err)
	}
	return f, nil
}

// Decode decodes a logger file content with nchans ADC channels.
// The returned File does not alias p.
func Decode(p []byte, nchans int) (*File, error) {
	if len(p)%block.Size != 0 {
		return nil, sdlog.Errorf(sdlog.Misaligned,
			"rawfile: not an integer number of blocks (size=%d)", len(p),
		)
	}
	if nchans <= 0 {
		return nil, fmt.Errorf("rawfile: invalid number of ADC channels (%d)", nchans)
	}

	var (
		nblks = len(p) / block.Size
		adc   = make([][]block.Block, nchans)
		chr   []block.Block
	)

	for i := 0; i < nblks; i++ {
		blk, err := block.Unmarshal(p[i*block.Size : (i+1)*block.Size])
		if err != nil {
			return nil, fmt.Errorf("rawfile: could not decode block #%d: %w", i, err)
		}
		switch blk.Kind {
		case block.ADC:
			ch := int(blk.Index)
			if ch >= nchans {
				return nil, sdlog.Errorf(sdlog.UnexpectedChannelIndex,
					"rawfile: block #%d has ADC channel %d (nchans=%d)", i, ch, nchans,
				)
			}
			adc[ch] = append(adc[ch], blk)
		case block.CHR:
			chr = append(chr, blk)
		}
	}

	f := &File{
		ADC: make([][]Sample, nchans),
		CHR: make([]byte, 0, len(chr)*block.PayloadSize),
	}
	for ch, blks := range adc {
		f.ADC[ch] = series(blks)
	}
	for _, blk := range chr {
		f.CHR = append(f.CHR, blk.Chars...)
	}
	// a character block flushed when the file is closed is zero-padded.
	f.CHR = bytes.TrimRight(f.CHR, "\x00")

	return f, nil
}

// series interpolates the counter value of every sample of the blocks.
func series(blks []block.Block) []Sample {
	o := make([]Sample, 0, len(blks)*block.NumSamples)
	for _, blk := range blks {
		var (
			start = float64(blk.Start)
			// modular difference: the counter may wrap within a block.
			delta = float64(blk.End - blk.Start)
			n     = float64(len(blk.Samples) - 1)
		)
		for i, v := range blk.Samples {
			cnt := start + float64(i)*delta/n
			if cnt >= counterRange {
				cnt -= counterRange
			}
			o = append(o, Sample{Counter: cnt, Value: v})
		}
	}
	return o
}

// Concat joins the decoded files, in order.
// All files must have the same number of ADC channels.
func Concat(files ...*File) (*File, error) {
	if len(files) == 0 {
		return &File{}, nil
	}
	var (
		nchans = len(files[0].ADC)
		nchr   = 0
		nadc   = make([]int, nchans)
	)
	for i, f := range files {
		if len(f.ADC) != nchans {
			return nil, fmt.Errorf(
				"rawfile: file #%d has %d ADC channels (want=%d)",
				i, len(f.ADC), nchans,
			)
		}
		nchr += len(f.CHR)
		for ch := range f.ADC {
			nadc[ch] += len(f.ADC[ch])
		}
	}

	o := &File{
		ADC: make([][]Sample, nchans),
		CHR: make([]byte, 0, nchr),
	}
	for ch := range o.ADC {
		o.ADC[ch] = make([]Sample, 0, nadc[ch])
	}
	for _, f := range files {
		for ch := range f.ADC {
			o.ADC[ch] = append(o.ADC[ch], f.ADC[ch]...)
		}
		o.CHR = append(o.CHR, f.CHR...)
	}
	return o, nil
}
