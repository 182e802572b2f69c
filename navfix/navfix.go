// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package navfix parses the GPS navigation fixes logged by the logger.
//
// The GPS receiver is configured to only emit RMC ("recommended minimum")
// NMEA sentences, which carry the UTC date and time of the fix and its
// validity status.
package navfix // import "github.com/go-lpc/sdlog/navfix"

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"

	"github.com/go-lpc/sdlog"
)

// PrefixLen is the length of the talker+type prefix of a fix sentence.
const PrefixLen = 6

var prefixes = []string{
	"$GPRMC", // GPS
	"$GNRMC", // multi-constellation receivers
}

// Fix is a GPS navigation fix.
type Fix struct {
	Time   time.Time // UTC date and time-of-day of the fix
	Valid  bool      // whether the fix carried a date and a time-of-day
	Status string    // "A" (active) or "V" (void)

	Lat    float64 // latitude, in degrees
	Lon    float64 // longitude, in degrees
	Speed  float64 // speed over ground, in knots
	Course float64 // course over ground, in degrees
}

// Active returns whether the fix is active and time-stamped.
func (fix Fix) Active() bool {
	return fix.Valid && fix.Status == nmea.ValidRMC
}

// Epoch returns the fix time in seconds since the Unix epoch.
func (fix Fix) Epoch() float64 {
	return float64(fix.Time.Unix()) + float64(fix.Time.Nanosecond())*1e-9
}

// Is returns whether msg is a navigation fix sentence.
func Is(msg string) bool {
	if len(msg) < PrefixLen {
		return false
	}
	pfx := msg[:PrefixLen]
	for _, v := range prefixes {
		if pfx == v {
			return true
		}
	}
	return false
}

// Parse parses a navigation fix sentence.
func Parse(msg string) (Fix, error) {
	if !Is(msg) {
		return Fix{}, sdlog.Errorf(sdlog.BadField, "navfix: not a fix sentence %q", msg)
	}

	s, err := nmea.Parse(strings.TrimSpace(msg))
	if err != nil {
		return Fix{}, sdlog.Errorf(sdlog.BadField, "navfix: could not parse %q: %w", msg, err)
	}
	rmc, ok := s.(nmea.RMC)
	if !ok {
		return Fix{}, sdlog.Errorf(sdlog.BadField, "navfix: unexpected sentence type %q", s.DataType())
	}

	fix := Fix{
		Status: rmc.Validity,
		Valid:  rmc.Date.Valid && rmc.Time.Valid,
		Lat:    rmc.Latitude,
		Lon:    rmc.Longitude,
		Speed:  rmc.Speed,
		Course: rmc.Course,
	}
	if fix.Valid {
		fix.Time = time.Date(
			year(rmc.Date.YY), time.Month(rmc.Date.MM), rmc.Date.DD,
			rmc.Time.Hour, rmc.Time.Minute, rmc.Time.Second,
			rmc.Time.Millisecond*int(time.Millisecond),
			time.UTC,
		)
	}
	return fix, nil
}

// year converts the 2-digit year of an RMC sentence.
func year(yy int) int {
	if yy < 80 {
		return 2000 + yy
	}
	return 1900 + yy
}

// Format returns the $GPRMC sentence describing fix.
// Sub-second precision is dropped.
func Format(fix Fix) string {
	var (
		t      = fix.Time.UTC()
		status = fix.Status
		ns     = "N"
		ew     = "E"
		lat    = fix.Lat
		lon    = fix.Lon
	)
	if status == "" {
		status = nmea.InvalidRMC
	}
	if lat < 0 {
		lat, ns = -lat, "S"
	}
	if lon < 0 {
		lon, ew = -lon, "W"
	}

	body := fmt.Sprintf(
		"GPRMC,%02d%02d%02d,%s,%s,%s,%s,%s,%05.1f,%05.1f,%02d%02d%02d,000.0,E",
		t.Hour(), t.Minute(), t.Second(), status,
		dm(lat, 2), ns, dm(lon, 3), ew,
		fix.Speed, fix.Course,
		t.Day(), int(t.Month()), t.Year()%100,
	)
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return fmt.Sprintf("$%s*%02X", body, sum)
}

// dm formats an angle in the NMEA degrees+minutes notation.
func dm(v float64, n int) string {
	deg := math.Floor(v)
	mins := (v - deg) * 60
	return fmt.Sprintf("%0*d%07.4f", n, int(deg), mins)
}
