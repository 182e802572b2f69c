// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package block

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-lpc/sdlog"
)

// Marshal encodes blk into a Size-bytes long slice.
func Marshal(blk Block) ([]byte, error) {
	p := make([]byte, Size)
	err := marshal(p, &blk)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func marshal(p []byte, blk *Block) error {
	binary.LittleEndian.PutUint16(p[0:2], uint16(blk.Kind))
	binary.LittleEndian.PutUint16(p[2:4], blk.Index)
	binary.LittleEndian.PutUint32(p[4:8], blk.Start)
	binary.LittleEndian.PutUint32(p[8:12], blk.End)

	data := p[HeaderSize:]
	switch blk.Kind {
	case ADC:
		if len(blk.Samples) != NumSamples {
			return sdlog.Errorf(sdlog.BadLength, "block: invalid number of ADC samples (got=%d, want=%d)", len(blk.Samples), NumSamples)
		}
		for i, v := range blk.Samples {
			binary.LittleEndian.PutUint16(data[2*i:], v)
		}
	case CHR:
		if len(blk.Chars) > PayloadSize {
			return sdlog.Errorf(sdlog.BadLength, "block: too many characters (got=%d, max=%d)", len(blk.Chars), PayloadSize)
		}
		n := copy(data, blk.Chars)
		for i := range data[n:] {
			data[n+i] = 0
		}
	default:
		return sdlog.Errorf(sdlog.UnknownType, "block: invalid block type (got=0x%x)", uint16(blk.Kind))
	}
	return nil
}

// Encoder writes blocks to an output stream.
type Encoder struct {
	w   io.Writer
	buf []byte
	err error
}

// NewEncoder returns a new Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:   w,
		buf: make([]byte, Size),
	}
}

// Encode writes blk to the stream.
// Short CHR payloads are padded with zeros.
func (enc *Encoder) Encode(blk *Block) error {
	if enc.err != nil {
		return enc.err
	}

	err := marshal(enc.buf, blk)
	if err != nil {
		return fmt.Errorf("block: could not encode block: %w", err)
	}

	_, enc.err = enc.w.Write(enc.buf)
	if enc.err != nil {
		return fmt.Errorf("block: could not write block: %w", enc.err)
	}
	return nil
}
