// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clock

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/go-lpc/sdlog"
)

// DefaultMinFixes is the default minimum number of active fixes needed
// to calibrate the counter.
const DefaultMinFixes = 5

// Calibration maps unwrapped counter values to UTC time.
//
// An invalid calibration maps the counter, in micro-seconds, to seconds
// since the Unix epoch: its absolute timestamps should not be trusted.
type Calibration struct {
	Slope     float64 // seconds per counter unit
	Intercept float64 // seconds since the Unix epoch
	N         int     // number of active fixes
	Valid     bool
}

// Identity returns the uncalibrated counter to time mapping.
func Identity() Calibration {
	return Calibration{Slope: 1e-6}
}

// Time returns the time associated with an unwrapped counter value,
// in seconds since the Unix epoch.
func (c Calibration) Time(cnt float64) float64 {
	return c.Intercept + c.Slope*cnt
}

// UTC returns the time associated with an unwrapped counter value.
func (c Calibration) UTC(cnt float64) time.Time {
	sec, frac := math.Modf(c.Time(cnt))
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC()
}

// Calibrate fits the counter to UTC mapping on the active samples, with
// ordinary least squares.
//
// Calibrate fails if no sample is active. With less than minFixes active
// samples, Calibrate returns the (invalid) Identity calibration.
func Calibrate(samples []Sample, minFixes int) (Calibration, error) {
	var xs, ys []float64
	for _, s := range samples {
		if !s.Valid {
			continue
		}
		xs = append(xs, s.Counter)
		ys = append(ys, s.Epoch)
	}

	n := len(xs)
	if n == 0 {
		return Calibration{}, sdlog.Errorf(sdlog.NoValidFixes,
			"clock: no active fix among %d PPS samples", len(samples),
		)
	}

	if n < minFixes {
		c := Identity()
		c.N = n
		return c, nil
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		// all pulses share the same counter value.
		c := Identity()
		c.N = n
		return c, nil
	}

	return Calibration{
		Slope:     beta,
		Intercept: alpha,
		N:         n,
		Valid:     true,
	}, nil
}
