// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package block decodes and encodes the 512-byte blocks written by the
// SD-card logger.
//
// A block starts with a 12-byte little-endian header:
//
//	u16 type  (65='A': ADC, 67='C': CHR)
//	u16 index (ADC channel)
//	u32 start (micros() when the acquisition started)
//	u32 end   (micros() when the acquisition ended)
//
// followed by 500 bytes of payload: 250 u16 ADC samples or 500 raw
// characters.
package block // import "github.com/go-lpc/sdlog/block"

import (
	"fmt"
)

const (
	Size        = 512 // size of a block, in bytes
	HeaderSize  = 12  // size of the block metadata, in bytes
	PayloadSize = Size - HeaderSize

	NumSamples = PayloadSize / 2 // number of ADC samples per block
)

// Kind is the type of a block.
type Kind uint16

const (
	ADC Kind = 65 // 'A'
	CHR Kind = 67 // 'C'
)

func (k Kind) String() string {
	switch k {
	case ADC:
		return "ADC"
	case CHR:
		return "CHR"
	}
	return fmt.Sprintf("Kind(%d)", uint16(k))
}

// Block is a decoded logger block.
type Block struct {
	Kind  Kind
	Index uint16 // ADC channel index
	Start uint32 // counter at the start of the acquisition
	End   uint32 // counter at the end of the acquisition

	Samples []uint16 // ADC payload, NumSamples entries
	Chars   []byte   // CHR payload, PayloadSize bytes
}

// Channel returns the ADC channel index of the block.
// Channel returns false for CHR blocks.
func (blk *Block) Channel() (int, bool) {
	if blk.Kind != ADC {
		return 0, false
	}
	return int(blk.Index), true
}
