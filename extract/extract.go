// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package extract extracts the sentence families logged on the message
// channel: navigation fixes, temperatures and per-channel ADC statistics.
package extract // import "github.com/go-lpc/sdlog/extract"

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-lpc/sdlog"
	"github.com/go-lpc/sdlog/navfix"
)

const (
	TempPrefix = "TMP,"
	StatPrefix = "STAT"

	statFields = 5
)

// NavFix is a navigation fix with its logger timestamp.
type NavFix struct {
	Time float64 // logger timestamp, in seconds
	Fix  navfix.Fix
}

// Temperature is a set of temperature readings.
type Temperature struct {
	Time   float64 // logger timestamp, in seconds
	Values []float64
}

// ChannelStats summarizes the readings of an ADC channel, as computed by
// the logger firmware.
type ChannelStats struct {
	Time    float64 // logger timestamp, in seconds
	Channel int

	Mean    float64
	MeanSq  float64 // mean of the squared readings
	Max     float64
	Min     float64
	Extrema int // number of extrema

	Std float64 // standard deviation, derived from Mean and MeanSq
}

// NavFixes returns the navigation fixes of a message stream.
func NavFixes(times []float64, msgs []string) ([]NavFix, error) {
	err := check(times, msgs)
	if err != nil {
		return nil, err
	}

	var o []NavFix
	for i, msg := range msgs {
		if !navfix.Is(msg) {
			continue
		}
		fix, err := navfix.Parse(msg)
		if err != nil {
			return nil, fmt.Errorf("extract: could not parse message #%d: %w", i, err)
		}
		o = append(o, NavFix{Time: times[i], Fix: fix})
	}
	return o, nil
}

// Temperatures returns the temperature readings of a message stream.
func Temperatures(times []float64, msgs []string) ([]Temperature, error) {
	err := check(times, msgs)
	if err != nil {
		return nil, err
	}

	var o []Temperature
	for i, msg := range msgs {
		if !strings.HasPrefix(msg, TempPrefix) {
			continue
		}
		var vs []float64
		for _, field := range strings.Split(msg[len(TempPrefix):], ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, sdlog.Errorf(sdlog.BadField,
					"extract: invalid temperature in message #%d %q: %w", i, msg, err,
				)
			}
			vs = append(vs, v)
		}
		o = append(o, Temperature{Time: times[i], Values: vs})
	}
	return o, nil
}

// Stats returns the ADC channel statistics of a message stream.
func Stats(times []float64, msgs []string) ([]ChannelStats, error) {
	err := check(times, msgs)
	if err != nil {
		return nil, err
	}

	var o []ChannelStats
	for i, msg := range msgs {
		if !strings.HasPrefix(msg, StatPrefix) {
			continue
		}
		st, err := parseStats(msg)
		if err != nil {
			return nil, fmt.Errorf("extract: could not parse message #%d: %w", i, err)
		}
		st.Time = times[i]
		o = append(o, st)
	}
	return o, nil
}

// parseStats parses a STAT message:
//
//	STAT<2 digits channel>[,]<mean>,<mean sq>,<max>,<min>,<extrema>
//
// The logger firmware writes a ',' after the channel.
func parseStats(msg string) (ChannelStats, error) {
	var st ChannelStats
	body := msg[len(StatPrefix):]
	if len(body) < 2 {
		return st, sdlog.Errorf(sdlog.BadField, "extract: missing channel in %q", msg)
	}
	ch, err := strconv.Atoi(body[:2])
	if err != nil || ch < 0 {
		return st, sdlog.Errorf(sdlog.BadField, "extract: invalid channel in %q", msg)
	}
	st.Channel = ch

	fields := strings.Split(strings.TrimPrefix(body[2:], ","), ",")
	if len(fields) != statFields {
		return st, sdlog.Errorf(sdlog.BadField,
			"extract: invalid number of fields in %q (got=%d, want=%d)",
			msg, len(fields), statFields,
		)
	}

	var vs [statFields]float64
	for i, field := range fields {
		vs[i], err = strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return st, sdlog.Errorf(sdlog.BadField, "extract: invalid field #%d in %q: %w", i, msg, err)
		}
	}

	st.Mean = vs[0]
	st.MeanSq = vs[1]
	st.Max = vs[2]
	st.Min = vs[3]
	st.Extrema = int(math.Round(vs[4]))
	// rounding may make the variance slightly negative.
	st.Std = math.Sqrt(math.Max(0, st.MeanSq-st.Mean*st.Mean))

	return st, nil
}

func check(times []float64, msgs []string) error {
	if len(times) != len(msgs) {
		return fmt.Errorf(
			"extract: timestamps and messages mismatch (times=%d, msgs=%d)",
			len(times), len(msgs),
		)
	}
	return nil
}
