// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// sdlog-dump decodes and displays SD-card logger files.
//
// Usage: sdlog-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> sdlog-dump ./data/F00000000.bin
//	=== F00000000.bin ===
//	blocks:   ADC=80 CHR=3
//	ADC[0]:   entries=4000 mean=2047.500 std=1182.291 min=0 max=4095
//	[...]
//	messages: 52 (fixes=4, temperatures=40, stats=0)
package main // import "github.com/go-lpc/sdlog/cmd/sdlog-dump"

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"go-hep.org/x/hep/hbook"
	"golang.org/x/sync/errgroup"

	"github.com/go-lpc/sdlog/block"
	"github.com/go-lpc/sdlog/extract"
	"github.com/go-lpc/sdlog/framer"
	"github.com/go-lpc/sdlog/internal/mmap"
	"github.com/go-lpc/sdlog/rawfile"
)

func main() {
	log.SetPrefix("sdlog-dump: ")
	log.SetFlags(0)

	err := xmain(os.Stdout, os.Args[1:])
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

type dumper struct {
	nchans int
	edge   int
	msgs   bool
}

func xmain(w io.Writer, args []string) error {
	var (
		fset  = flag.NewFlagSet("sdlog-dump", flag.ContinueOnError)
		chans = fset.Int("c", rawfile.DefaultChannels, "number of ADC channels")
		edge  = fset.Int("edge", framer.DefaultEdge, "number of tokens discarded at each end of the message stream")
		msgs  = fset.Bool("msg", false, "display the framed messages")
		njobs = fset.Int("j", runtime.NumCPU(), "number of files decoded in parallel")
	)

	fset.Usage = func() {
		fmt.Fprintf(fset.Output(), `sdlog-dump decodes and displays SD-card logger files.

Usage: sdlog-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> sdlog-dump -msg ./data/F00000000.bin

Options:
`)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		return err
	}

	if fset.NArg() == 0 {
		fset.Usage()
		return fmt.Errorf("missing path to input logger file")
	}

	d := dumper{nchans: *chans, edge: *edge, msgs: *msgs}
	return d.process(w, *njobs, fset.Args()...)
}

// process decodes the files in parallel and displays them in order.
func (d dumper) process(w io.Writer, njobs int, fnames ...string) error {
	var (
		grp  errgroup.Group
		outs = make([]bytes.Buffer, len(fnames))
	)
	if njobs > 0 {
		grp.SetLimit(njobs)
	}

	for i := range fnames {
		i := i
		grp.Go(func() error {
			err := d.dump(&outs[i], fnames[i])
			if err != nil {
				return fmt.Errorf("could not dump file %q: %w", fnames[i], err)
			}
			return nil
		})
	}

	err := grp.Wait()
	if err != nil {
		return err
	}

	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	for i := range outs {
		_, err = outs[i].WriteTo(wbuf)
		if err != nil {
			return fmt.Errorf("could not write dump of %q: %w", fnames[i], err)
		}
	}
	return wbuf.Flush()
}

func (d dumper) dump(w io.Writer, fname string) error {
	nadc, nchr, err := count(fname)
	if err != nil {
		return err
	}

	f, err := rawfile.Open(fname, d.nchans)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "=== %s ===\n", filepath.Base(fname))
	fmt.Fprintf(w, "blocks:   ADC=%d CHR=%d\n", nadc, nchr)

	for ch, samples := range f.ADC {
		if len(samples) == 0 {
			fmt.Fprintf(w, "ADC[%d]:   entries=0\n", ch)
			continue
		}
		var (
			h  = hbook.NewH1D(64, 0, 4096)
			lo = samples[0].Value
			hi = samples[0].Value
		)
		for _, s := range samples {
			h.Fill(float64(s.Value), 1)
			if s.Value < lo {
				lo = s.Value
			}
			if s.Value > hi {
				hi = s.Value
			}
		}
		fmt.Fprintf(w, "ADC[%d]:   entries=%d mean=%.3f std=%.3f min=%d max=%d\n",
			ch, h.Entries(), h.XMean(), h.XStdDev(), lo, hi,
		)
	}

	msgs := framer.Framer{Edge: d.edge}.Frame(f.CHR)
	var (
		cnts, txts = framer.Split(msgs)
		times      = make([]float64, len(cnts))
	)
	for i, v := range cnts {
		times[i] = float64(v) * 1e-6
	}

	fixes, err := extract.NavFixes(times, txts)
	if err != nil {
		return err
	}
	temps, err := extract.Temperatures(times, txts)
	if err != nil {
		return err
	}
	stats, err := extract.Stats(times, txts)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "messages: %d (fixes=%d, temperatures=%d, stats=%d)\n",
		len(msgs), len(fixes), len(temps), len(stats),
	)
	if d.msgs {
		for _, msg := range msgs {
			fmt.Fprintf(w, "  M%09d %s\n", msg.Counter, msg.Text)
		}
	}
	return nil
}

// count returns the number of ADC and CHR blocks of a file.
func count(fname string) (nadc, nchr int, err error) {
	h, err := mmap.Open(fname)
	if err != nil {
		return 0, 0, fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer h.Close()

	var (
		dec = block.NewDecoder(io.NewSectionReader(h, 0, int64(h.Len())))
		blk block.Block
	)
	for {
		err = dec.Decode(&blk)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nadc, nchr, nil
			}
			return 0, 0, fmt.Errorf("could not decode block: %w", err)
		}
		switch blk.Kind {
		case block.ADC:
			nadc++
		case block.CHR:
			nchr++
		}
	}
}
