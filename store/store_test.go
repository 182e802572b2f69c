// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"compress/flate"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/go-lpc/sdlog/clock"
	"github.com/go-lpc/sdlog/scan"
)

func TestUnitRoundTrip(t *testing.T) {
	tmp, err := os.MkdirTemp("", "sdlog-store-")
	if err != nil {
		t.Fatalf("could not create tmp dir: %+v", err)
	}
	defer os.RemoveAll(tmp)

	for _, tc := range []struct {
		name string
		unit scan.Unit
	}{
		{
			name: "F00000001",
			unit: scan.Unit{
				Name:     "F00000001",
				Number:   1,
				ADCTimes: []float64{1686830400.001, 1686830400.002, 1686830400.003},
				ADC: [][]uint16{
					{1, 2, 3},
					{4095, 0, 12},
				},
				CHRTimes: []float64{1686830400.0015, 1686830400.0025},
				Messages: []string{"PPS:10000", "TMP,21.5,22.0,"},
				Calibration: clock.Calibration{
					Slope:     1.000002e-6,
					Intercept: 1686830300,
					N:         12,
					Valid:     true,
				},
				Min: 1686830400.001,
				Max: 1686830400.003,
			},
		},
		{
			name: "F00000002",
			unit: scan.Unit{
				Name:        "F00000002",
				Number:      2,
				ADCTimes:    []float64{10, 11},
				ADC:         [][]uint16{{7, 8}},
				Calibration: clock.Identity(),
				Min:         10,
				Max:         11,
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWriter(tmp, flate.DefaultCompression, nil)
			err := w.Write(&tc.unit)
			if err != nil {
				t.Fatalf("could not write unit: %+v", err)
			}

			got, err := ReadUnit(filepath.Join(tmp, tc.name+Ext))
			if err != nil {
				t.Fatalf("could not read unit: %+v", err)
			}

			if !reflect.DeepEqual(*got, tc.unit) {
				t.Fatalf("round-trip failed:\ngot= %+v\nwant=%+v", *got, tc.unit)
			}
		})
	}
}

func TestReadUnitMissing(t *testing.T) {
	_, err := ReadUnit(filepath.Join(os.TempDir(), "sdlog-store-not-there"+Ext))
	if err == nil {
		t.Fatalf("expected an error")
	}
}

func TestMetadata(t *testing.T) {
	tmp, err := os.MkdirTemp("", "sdlog-store-")
	if err != nil {
		t.Fatalf("could not create tmp dir: %+v", err)
	}
	defer os.RemoveAll(tmp)

	want := scan.Metadata{
		Units: []scan.Record{
			{Name: "F00000000", Min: 100.5, Max: 104.25, Calibrated: false, Fixes: 3},
			{Name: "F00000001", Min: 1686830404.25, Max: 1686830408.125, Calibrated: true, Fixes: 8},
		},
	}

	fname := filepath.Join(tmp, MetaFile)
	err = WriteMetadata(fname, want)
	if err != nil {
		t.Fatalf("could not write metadata: %+v", err)
	}

	raw, err := os.ReadFile(fname)
	if err != nil {
		t.Fatalf("could not read metadata file: %+v", err)
	}
	for _, key := range []string{"units:", "name: F00000000", "min_timestamp:", "max_timestamp:", "calibrated: true"} {
		if !strings.Contains(string(raw), key) {
			t.Fatalf("metadata file missing %q:\n%s", key, raw)
		}
	}

	got, err := ReadMetadata(fname)
	if err != nil {
		t.Fatalf("could not read metadata: %+v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid metadata:\ngot= %+v\nwant=%+v", got, want)
	}
}
