// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clock

import (
	"math"

	"github.com/go-lpc/sdlog"
)

const (
	// Wrap is the period of the logger counter.
	Wrap = 1<<32 - 1

	// DefaultMaxDelta is the default maximum elapsed time between two
	// consecutive counter readings, in counter units (15min).
	DefaultMaxDelta = 15 * 60 * 1e6
)

// Unwrapper converts readings of the wrapping logger counter into
// a monotonic sequence.
type Unwrapper struct {
	maxDelta float64

	floor  float64
	n      int     // number of readings
	offset float64 // multiple of Wrap
	first  float64 // first unwrapped value
	prev   float64 // last unwrapped value
}

// NewUnwrapper returns an unwrapper for readings separated by at most
// maxDelta counter units.
func NewUnwrapper(maxDelta float64) *Unwrapper {
	return &Unwrapper{maxDelta: maxDelta}
}

// NewUnwrapperAt returns an unwrapper whose first reading is unwrapped to
// the smallest value, congruent modulo Wrap, not below floor.
// Half a counter unit of rounding is tolerated.
// NewUnwrapperAt resumes the unwrapping of a stream from a known origin.
func NewUnwrapperAt(maxDelta, floor float64) *Unwrapper {
	return &Unwrapper{maxDelta: maxDelta, floor: floor}
}

// Origin returns the first unwrapped value.
func (u *Unwrapper) Origin() float64 { return u.first }

// Len returns the number of unwrapped readings.
func (u *Unwrapper) Len() int { return u.n }

// Next unwraps the next raw counter reading.
func (u *Unwrapper) Next(raw float64) (float64, error) {
	if u.n == 0 {
		if k := math.Ceil((u.floor - raw - 0.5) / Wrap); k > 0 {
			u.offset = k * Wrap
		}
		v := raw + u.offset
		u.n++
		u.first = v
		u.prev = v
		return v, nil
	}

	v := raw + u.offset
	if v < u.prev {
		// a wrap is only possible if the next reading could itself
		// have crossed the wrap boundary.
		// The previous raw reading may be 0xffffffff, which is
		// congruent to 0 modulo Wrap but sits on the boundary.
		last := u.prev - u.offset
		if last+u.maxDelta < Wrap {
			return 0, sdlog.Errorf(sdlog.UnexpectedWrap,
				"clock: wrap detected far from the wrap boundary (reading #%d: prev=%.0f, raw=%.0f)",
				u.n, last, raw,
			)
		}
		u.offset += Wrap
		v = raw + u.offset
	}

	u.n++
	u.prev = v
	return v, nil
}

// Unwrap converts a sequence of wrapping counter readings into a
// monotonic sequence.
func Unwrap(raw []float64, maxDelta float64) ([]float64, error) {
	if len(raw) == 0 {
		return nil, sdlog.Errorf(sdlog.EmptyInput, "clock: no counter reading to unwrap")
	}

	var (
		u   = NewUnwrapper(maxDelta)
		out = make([]float64, len(raw))
		err error
	)
	for i, v := range raw {
		out[i], err = u.Next(v)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
