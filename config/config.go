// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the parameters of a folder scan.
package config // import "github.com/go-lpc/sdlog/config"

import (
	"compress/flate"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/go-lpc/sdlog/clock"
	"github.com/go-lpc/sdlog/framer"
	"github.com/go-lpc/sdlog/rawfile"
	"github.com/go-lpc/sdlog/scan"
)

// Config is the configuration of a folder scan.
type Config struct {
	Channels    int     `yaml:"channels"`    // number of ADC channels
	MaxDelta    float64 `yaml:"max_delta"`   // maximum counter delta between two readings, in micro-seconds
	MinFixes    int     `yaml:"min_fixes"`   // minimum number of active GPS fixes
	Calibrate   bool    `yaml:"calibrate"`   // whether to calibrate the clock against GPS
	Edge        int     `yaml:"edge"`        // tokens discarded at each end of a CHR stream
	Compression int     `yaml:"compression"` // flate compression level of the unit files
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Channels:    rawfile.DefaultChannels,
		MaxDelta:    clock.DefaultMaxDelta,
		MinFixes:    clock.DefaultMinFixes,
		Calibrate:   true,
		Edge:        framer.DefaultEdge,
		Compression: flate.DefaultCompression,
	}
}

// Load reads a YAML configuration file.
// Missing fields keep their default value. Unknown fields are rejected.
func Load(fname string) (Config, error) {
	cfg := Default()

	f, err := os.Open(fname)
	if err != nil {
		return cfg, fmt.Errorf("config: could not open %q: %w", fname, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	err = dec.Decode(&cfg)
	if err != nil {
		return cfg, fmt.Errorf("config: could not decode %q: %w", fname, err)
	}

	err = cfg.Validate()
	if err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (cfg Config) Save(fname string) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: could not encode configuration: %w", err)
	}
	err = os.WriteFile(fname, raw, 0644)
	if err != nil {
		return fmt.Errorf("config: could not write %q: %w", fname, err)
	}
	return nil
}

// Validate checks the configuration values.
func (cfg Config) Validate() error {
	switch {
	case cfg.Channels <= 0:
		return fmt.Errorf("config: invalid number of channels (%d)", cfg.Channels)
	case cfg.MaxDelta <= 0 || cfg.MaxDelta >= clock.Wrap:
		return fmt.Errorf("config: invalid max delta (%g)", cfg.MaxDelta)
	case cfg.MinFixes < 2:
		return fmt.Errorf("config: invalid minimum number of fixes (%d)", cfg.MinFixes)
	case cfg.Edge < 0:
		return fmt.Errorf("config: invalid edge (%d)", cfg.Edge)
	case cfg.Compression < flate.HuffmanOnly || cfg.Compression > flate.BestCompression:
		return fmt.Errorf("config: invalid compression level (%d)", cfg.Compression)
	}
	return nil
}

// Scanner returns a folder scanner configured with cfg.
func (cfg Config) Scanner(msg *log.Logger) *scan.Scanner {
	sc := scan.New(msg)
	sc.Channels = cfg.Channels
	sc.MaxDelta = cfg.MaxDelta
	sc.MinFixes = cfg.MinFixes
	sc.Calibrate = cfg.Calibrate
	sc.Edge = cfg.Edge
	return sc
}
