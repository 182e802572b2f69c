// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdlog

import (
	"fmt"
)

// Kind classifies the format errors raised while decoding logger data.
type Kind uint8

const (
	BadLength              Kind = iota + 1 // block is not 512 bytes long
	UnknownType                            // block type tag is neither ADC nor CHR
	Misaligned                             // file is not made of whole blocks
	UnexpectedChannelIndex                 // ADC channel index out of range
	UnexpectedWrap                         // counter decrease far from the wrap boundary
	EmptyInput                             // nothing to unwrap
	NoValidFixes                           // no active GPS fix to calibrate against
	NonConsecutiveFiles                    // gap in the file numbering
	BadField                               // malformed message field
)

func (k Kind) String() string {
	switch k {
	case BadLength:
		return "bad length"
	case UnknownType:
		return "unknown type"
	case Misaligned:
		return "misaligned"
	case UnexpectedChannelIndex:
		return "unexpected channel index"
	case UnexpectedWrap:
		return "unexpected wrap"
	case EmptyInput:
		return "empty input"
	case NoValidFixes:
		return "no valid fixes"
	case NonConsecutiveFiles:
		return "non consecutive files"
	case BadField:
		return "bad field"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// FormatError describes a malformed input.
// FormatErrors match their Kind with errors.Is:
//
//	errors.Is(err, sdlog.ErrMisaligned)
type FormatError struct {
	Kind Kind
	Err  error // details, may be nil
}

// Errorf creates a new FormatError of the provided kind.
func Errorf(kind Kind, format string, args ...interface{}) error {
	return &FormatError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func (e *FormatError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool {
	o, ok := target.(*FormatError)
	if !ok {
		return false
	}
	return o.Err == nil && o.Kind == e.Kind
}

var (
	ErrBadLength              = &FormatError{Kind: BadLength}
	ErrUnknownType            = &FormatError{Kind: UnknownType}
	ErrMisaligned             = &FormatError{Kind: Misaligned}
	ErrUnexpectedChannelIndex = &FormatError{Kind: UnexpectedChannelIndex}
	ErrUnexpectedWrap         = &FormatError{Kind: UnexpectedWrap}
	ErrEmptyInput             = &FormatError{Kind: EmptyInput}
	ErrNoValidFixes           = &FormatError{Kind: NoValidFixes}
	ErrNonConsecutiveFiles    = &FormatError{Kind: NonConsecutiveFiles}
	ErrBadField               = &FormatError{Kind: BadField}
)
