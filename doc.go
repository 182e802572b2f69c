// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sdlog holds code to decode and time-synchronize the binary
// files written by the SD-card high-frequency logger.
//
// A logger file is a sequence of 512-byte blocks carrying either ADC
// samples or fragments of a character stream. The character stream
// holds ';'-delimited messages, each one preceded by a marker with the
// value of the logger micro-second counter. Sub-packages decode blocks
// (block), whole files (rawfile), frame messages (framer), unwrap and
// calibrate the counter against GPS fixes (clock) and scan folders of
// consecutive files with bounded memory (scan).
//
// Scanned units are persisted as LCIO files (store), and timestamped
// navigation fixes, temperatures and channel statistics can be
// extracted from the decoded message stream (extract).
package sdlog // import "github.com/go-lpc/sdlog"

import (
	"fmt"
	"runtime/debug"
)

// Version returns the version of sdlog and its checksum.
// The returned values are only valid in binaries built with module support.
func Version() (version, sum string) {
	b, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	return versionOf(b)
}

func versionOf(b *debug.BuildInfo) (version, sum string) {
	if b == nil {
		return "", ""
	}

	const root = "github.com/go-lpc/sdlog"
	if b.Main.Path == root {
		return b.Main.Version, b.Main.Sum
	}
	for _, m := range b.Deps {
		if m.Path != root {
			continue
		}
		if m.Replace != nil {
			switch {
			case m.Replace.Version != "" && m.Replace.Path != "":
				return fmt.Sprintf("%s %s", m.Replace.Path, m.Replace.Version), m.Replace.Sum
			case m.Replace.Version != "":
				return m.Replace.Version, m.Replace.Sum
			case m.Replace.Path != "":
				return m.Replace.Path, m.Replace.Sum
			default:
				return m.Version + "*", ""
			}
		}
		return m.Version, m.Sum
	}
	return "", ""
}
