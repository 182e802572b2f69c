// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoad(t *testing.T) {
	tmp, err := os.MkdirTemp("", "sdlog-config-")
	if err != nil {
		t.Fatalf("could not create tmp dir: %+v", err)
	}
	defer os.RemoveAll(tmp)

	for _, tc := range []struct {
		name string
		raw  string
		want Config
		fail bool
	}{
		{
			name: "empty",
			raw:  "",
			fail: true, // io.EOF from the YAML decoder
		},
		{
			name: "partial",
			raw:  "channels: 3\ncalibrate: false\n",
			want: func() Config {
				cfg := Default()
				cfg.Channels = 3
				cfg.Calibrate = false
				return cfg
			}(),
		},
		{
			name: "full",
			raw:  "channels: 4\nmax_delta: 6e8\nmin_fixes: 10\ncalibrate: true\nedge: 0\ncompression: 9\n",
			want: Config{
				Channels:    4,
				MaxDelta:    6e8,
				MinFixes:    10,
				Calibrate:   true,
				Edge:        0,
				Compression: 9,
			},
		},
		{
			name: "unknown-field",
			raw:  "channels: 4\nchannel: 5\n",
			fail: true,
		},
		{
			name: "invalid-channels",
			raw:  "channels: 0\n",
			fail: true,
		},
		{
			name: "invalid-delta",
			raw:  "max_delta: 5e9\n",
			fail: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fname := filepath.Join(tmp, tc.name+".yaml")
			err := os.WriteFile(fname, []byte(tc.raw), 0644)
			if err != nil {
				t.Fatalf("could not write config file: %+v", err)
			}

			got, err := Load(fname)
			switch {
			case tc.fail:
				if err == nil {
					t.Fatalf("expected an error")
				}
				return
			case err != nil:
				t.Fatalf("could not load config: %+v", err)
			}

			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("invalid config:\ngot= %+v\nwant=%+v", got, tc.want)
			}
		})
	}
}

func TestSave(t *testing.T) {
	tmp, err := os.MkdirTemp("", "sdlog-config-")
	if err != nil {
		t.Fatalf("could not create tmp dir: %+v", err)
	}
	defer os.RemoveAll(tmp)

	want := Default()
	want.Channels = 2
	want.Edge = 1

	fname := filepath.Join(tmp, "cfg.yaml")
	err = want.Save(fname)
	if err != nil {
		t.Fatalf("could not save config: %+v", err)
	}

	got, err := Load(fname)
	if err != nil {
		t.Fatalf("could not load config: %+v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round-trip failed:\ngot= %+v\nwant=%+v", got, want)
	}
}

func TestScanner(t *testing.T) {
	cfg := Default()
	cfg.Channels = 3
	cfg.Calibrate = false
	cfg.Edge = 0

	sc := cfg.Scanner(nil)
	if sc.Channels != 3 || sc.Calibrate || sc.Edge != 0 || sc.MaxDelta != cfg.MaxDelta || sc.MinFixes != cfg.MinFixes {
		t.Fatalf("invalid scanner: %+v", sc)
	}
	if sc.Msg == nil {
		t.Fatalf("scanner without logger")
	}
}
