// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clock

import (
	"strconv"
	"strings"

	"github.com/go-lpc/sdlog"
	"github.com/go-lpc/sdlog/navfix"
)

// PPSPrefix starts the messages logged on a GPS time pulse.
// The message holds the counter value latched when the pulse was received.
const PPSPrefix = "PPS:"

// Sample pairs the counter value of a time pulse with the time of the
// navigation fix that followed it.
type Sample struct {
	Counter float64 // unwrapped counter of the pulse
	Epoch   float64 // fix time, in seconds since the Unix epoch
	Valid   bool    // whether the fix was active
}

// PPSCounter returns the raw counter value held by a PPS message.
func PPSCounter(msg string) (uint32, error) {
	if !strings.HasPrefix(msg, PPSPrefix) {
		return 0, sdlog.Errorf(sdlog.BadField, "clock: not a PPS message %q", msg)
	}
	v, err := strconv.ParseUint(strings.TrimSpace(msg[len(PPSPrefix):]), 10, 32)
	if err != nil {
		return 0, sdlog.Errorf(sdlog.BadField, "clock: invalid PPS counter in %q: %w", msg, err)
	}
	return uint32(v), nil
}

// PPSSamples pairs each time pulse of the message stream with the first
// navigation fix following it, before the next pulse.
// The pulse counters are unwrapped with u.
// Pulses without a fix are dropped. Fixes that can not be parsed are
// reported as invalid samples.
func PPSSamples(msgs []string, u *Unwrapper) ([]Sample, error) {
	var (
		out []Sample
		cur = -1 // index in out of the last unpaired pulse
	)
	for _, msg := range msgs {
		switch {
		case strings.HasPrefix(msg, PPSPrefix):
			raw, err := PPSCounter(msg)
			if err != nil {
				return nil, err
			}
			cnt, err := u.Next(float64(raw))
			if err != nil {
				return nil, err
			}
			if cur >= 0 {
				// previous pulse had no fix.
				out = out[:cur]
			}
			out = append(out, Sample{Counter: cnt})
			cur = len(out) - 1

		case navfix.Is(msg):
			if cur < 0 {
				continue
			}
			fix, err := navfix.Parse(msg)
			if err == nil && fix.Active() {
				out[cur].Epoch = fix.Epoch()
				out[cur].Valid = true
			}
			cur = -1
		}
	}
	if cur >= 0 {
		out = out[:cur]
	}
	return out, nil
}
