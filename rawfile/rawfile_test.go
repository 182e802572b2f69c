// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rawfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-lpc/sdlog"
	"github.com/go-lpc/sdlog/block"
)

func encode(t *testing.T, blks ...block.Block) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	enc := block.NewEncoder(buf)
	for i := range blks {
		err := enc.Encode(&blks[i])
		if err != nil {
			t.Fatalf("could not encode block #%d: %+v", i, err)
		}
	}
	return buf.Bytes()
}

func adc(ch uint16, start, end uint32, v uint16) block.Block {
	blk := block.Block{
		Kind:    block.ADC,
		Index:   ch,
		Start:   start,
		End:     end,
		Samples: make([]uint16, block.NumSamples),
	}
	for i := range blk.Samples {
		blk.Samples[i] = v
	}
	return blk
}

func chr(txt string) block.Block {
	return block.Block{Kind: block.CHR, Chars: []byte(txt)}
}

func TestDecode(t *testing.T) {
	raw := encode(t,
		adc(0, 1000, 1249, 1),
		adc(1, 1000, 1249, 2),
		chr("M000001000;PPS:"),
		adc(0, 1250, 1499, 3),
		adc(1, 1250, 1499, 4),
		chr("1000;"),
	)

	f, err := Decode(raw, 2)
	if err != nil {
		t.Fatalf("could not decode file: %+v", err)
	}

	if got, want := len(f.ADC), 2; got != want {
		t.Fatalf("invalid number of channels: got=%d, want=%d", got, want)
	}
	for ch, vs := range [][2]uint16{{1, 3}, {2, 4}} {
		s := f.ADC[ch]
		if got, want := len(s), 2*block.NumSamples; got != want {
			t.Fatalf("ch-%d: invalid number of samples: got=%d, want=%d", ch, got, want)
		}
		for i, smp := range s {
			if got, want := smp.Counter, float64(1000+i); got != want {
				t.Fatalf("ch-%d: invalid counter[%d]: got=%v, want=%v", ch, i, got, want)
			}
			want := vs[i/block.NumSamples]
			if smp.Value != want {
				t.Fatalf("ch-%d: invalid value[%d]: got=%d, want=%d", ch, i, smp.Value, want)
			}
		}
	}

	// the second CHR block is zero-padded: padding is trimmed.
	want := block.PayloadSize + len("1000;")
	if got := len(f.CHR); got != want {
		t.Fatalf("invalid CHR stream size: got=%d, want=%d", got, want)
	}
	if got, want := string(bytes.ReplaceAll(f.CHR, []byte{0}, nil)), "M000001000;PPS:1000;"; got != want {
		t.Fatalf("invalid CHR stream: got=%q, want=%q", got, want)
	}
}

func TestDecodeInterpolation(t *testing.T) {
	for _, tc := range []struct {
		name       string
		start, end uint32
		want       map[int]float64
	}{
		{
			name:  "unit-step",
			start: 0,
			end:   249,
			want:  map[int]float64{0: 0, 1: 1, 249: 249},
		},
		{
			name:  "4us-step",
			start: 10,
			end:   10 + 4*249,
			want:  map[int]float64{0: 10, 1: 14, 100: 410, 249: 1006},
		},
		{
			name:  "wrap-in-block",
			start: 0xffffffff - 99,
			end:   149,
			want:  map[int]float64{0: 0xffffffff - 99, 99: 0xffffffff, 100: 0, 249: 149},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Decode(encode(t, adc(0, tc.start, tc.end, 0)), 1)
			if err != nil {
				t.Fatalf("could not decode file: %+v", err)
			}
			for i, want := range tc.want {
				if got := f.ADC[0][i].Counter; got != want {
					t.Fatalf("invalid counter[%d]: got=%v, want=%v", i, got, want)
				}
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		raw    []byte
		nchans int
		kind   *sdlog.FormatError
	}{
		{
			name:   "misaligned",
			raw:    make([]byte, block.Size+3),
			nchans: DefaultChannels,
			kind:   sdlog.ErrMisaligned,
		},
		{
			name:   "unknown-type",
			raw:    make([]byte, block.Size),
			nchans: DefaultChannels,
			kind:   sdlog.ErrUnknownType,
		},
		{
			name:   "channel-index",
			raw:    encode(t, adc(5, 0, 249, 0)),
			nchans: DefaultChannels,
			kind:   sdlog.ErrUnexpectedChannelIndex,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.raw, tc.nchans)
			if !errors.Is(err, tc.kind) {
				t.Fatalf("invalid error: %+v", err)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	tmp := t.TempDir()
	fname := filepath.Join(tmp, "F00000000.bin")
	err := os.WriteFile(fname, encode(t, adc(2, 0, 249, 42), chr("M000000001;ok;")), 0644)
	if err != nil {
		t.Fatalf("could not create file: %+v", err)
	}

	f, err := Open(fname, DefaultChannels)
	if err != nil {
		t.Fatalf("could not open file: %+v", err)
	}
	if got, want := len(f.ADC[2]), block.NumSamples; got != want {
		t.Fatalf("invalid number of samples: got=%d, want=%d", got, want)
	}
	if got, want := string(f.CHR), "M000000001;ok;"; got != want {
		t.Fatalf("invalid CHR stream: got=%q, want=%q", got, want)
	}

	_, err = Open(filepath.Join(tmp, "F00000001.bin"), DefaultChannels)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("invalid error: %+v", err)
	}
}

func TestConcat(t *testing.T) {
	f1 := &File{
		ADC: [][]Sample{{{1, 10}}, {{1, 20}}},
		CHR: []byte("M00000"),
	}
	f2 := &File{
		ADC: [][]Sample{{{2, 11}}, {}},
		CHR: []byte("0001;hello;"),
	}

	got, err := Concat(f1, f2)
	if err != nil {
		t.Fatalf("could not concat files: %+v", err)
	}
	want := &File{
		ADC: [][]Sample{{{1, 10}, {2, 11}}, {{1, 20}}},
		CHR: []byte("M000000001;hello;"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid concat:\ngot= %+v\nwant=%+v", got, want)
	}

	_, err = Concat(f1, &File{ADC: make([][]Sample, 3)})
	if err == nil {
		t.Fatalf("expected an error")
	}
}
