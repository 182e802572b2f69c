// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package block

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-lpc/sdlog"
)

// Unmarshal decodes a single block from p.
// p must be exactly Size bytes long.
// The returned block does not alias p.
func Unmarshal(p []byte) (Block, error) {
	var blk Block
	err := unmarshal(&blk, p)
	return blk, err
}

func unmarshal(blk *Block, p []byte) error {
	if len(p) != Size {
		return sdlog.Errorf(sdlog.BadLength, "block: invalid block size (got=%d, want=%d)", len(p), Size)
	}

	kind := Kind(binary.LittleEndian.Uint16(p[0:2]))
	switch kind {
	case ADC, CHR:
	default:
		return sdlog.Errorf(sdlog.UnknownType, "block: invalid block type (got=0x%x)", uint16(kind))
	}

	blk.Kind = kind
	blk.Index = binary.LittleEndian.Uint16(p[2:4])
	blk.Start = binary.LittleEndian.Uint32(p[4:8])
	blk.End = binary.LittleEndian.Uint32(p[8:12])

	data := p[HeaderSize:]
	switch kind {
	case ADC:
		blk.Chars = nil
		if cap(blk.Samples) < NumSamples {
			blk.Samples = make([]uint16, NumSamples)
		}
		blk.Samples = blk.Samples[:NumSamples]
		for i := range blk.Samples {
			blk.Samples[i] = binary.LittleEndian.Uint16(data[2*i:])
		}
	case CHR:
		blk.Samples = nil
		if cap(blk.Chars) < PayloadSize {
			blk.Chars = make([]byte, PayloadSize)
		}
		blk.Chars = blk.Chars[:PayloadSize]
		copy(blk.Chars, data)
	}

	return nil
}

// Decoder reads blocks from an underlying data source.
type Decoder struct {
	r   io.Reader
	buf []byte
	n   int // number of decoded blocks
}

// NewDecoder creates a decoder that reads blocks from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:   r,
		buf: make([]byte, Size),
	}
}

// Decode reads the next block from the stream.
// Decode returns io.EOF when the stream ends on a block boundary.
func (dec *Decoder) Decode(blk *Block) error {
	_, err := io.ReadFull(dec.r, dec.buf)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		return io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return sdlog.Errorf(sdlog.Misaligned, "block: truncated block #%d: %w", dec.n, err)
	default:
		return fmt.Errorf("block: could not read block #%d: %w", dec.n, err)
	}

	err = unmarshal(blk, dec.buf)
	if err != nil {
		return fmt.Errorf("block: could not decode block #%d: %w", dec.n, err)
	}
	dec.n++
	return nil
}
