// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clock

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/go-lpc/sdlog"
	"github.com/go-lpc/sdlog/navfix"
)

func rmc(sec int, status string) string {
	return navfix.Format(navfix.Fix{
		Time:   time.Date(2023, time.June, 15, 12, 0, sec, 0, time.UTC),
		Status: status,
		Lat:    59.8,
		Lon:    10.5,
	})
}

func TestPPSSamples(t *testing.T) {
	const t0 = 1686830400.0 // 2023-06-15T12:00:00Z

	msgs := []string{
		rmc(0, "A"), // fix before any pulse
		"PPS:1000000",
		"TMP,21.5,22.0,",
		rmc(1, "A"),
		"PPS:2000000",
		rmc(2, "V"),
		"PPS:3000000", // no fix before next pulse
		"STAT0307.5,57.3,9.2,1.1,3",
		"PPS:4000000",
		"$GPRMC,garbled",
		"PPS:4294000000",
		rmc(5, "A"),
		"PPS:32704", // wrapped
		rmc(6, "A"),
		"PPS:1032704", // no fix until the end
	}

	got, err := PPSSamples(msgs, NewUnwrapper(DefaultMaxDelta))
	if err != nil {
		t.Fatalf("could not build PPS samples: %+v", err)
	}

	want := []Sample{
		{Counter: 1000000, Epoch: t0 + 1, Valid: true},
		{Counter: 2000000, Epoch: 0, Valid: false},
		{Counter: 4000000, Epoch: 0, Valid: false},
		{Counter: 4294000000, Epoch: t0 + 5, Valid: true},
		{Counter: Wrap + 32704, Epoch: t0 + 6, Valid: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid samples:\ngot= %+v\nwant=%+v", got, want)
	}
}

func TestPPSSamplesErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		msgs []string
		kind *sdlog.FormatError
	}{
		{
			name: "bad-counter",
			msgs: []string{"PPS:12x4"},
			kind: sdlog.ErrBadField,
		},
		{
			name: "bad-wrap",
			msgs: []string{"PPS:2000000000", "PPS:1000000000"},
			kind: sdlog.ErrUnexpectedWrap,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := PPSSamples(tc.msgs, NewUnwrapper(DefaultMaxDelta))
			if !errors.Is(err, tc.kind) {
				t.Fatalf("invalid error: %+v", err)
			}
		})
	}
}

func TestPPSCounter(t *testing.T) {
	v, err := PPSCounter("PPS:0000010000")
	if err != nil {
		t.Fatalf("could not parse PPS counter: %+v", err)
	}
	if got, want := v, uint32(10000); got != want {
		t.Fatalf("invalid counter: got=%d, want=%d", got, want)
	}

	_, err = PPSCounter("TMP,1")
	if !errors.Is(err, sdlog.ErrBadField) {
		t.Fatalf("invalid error: %+v", err)
	}
}
