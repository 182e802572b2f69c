// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package clock recovers monotonic timestamps from the logger
// micro-second counter and calibrates them against GPS time.
package clock // import "github.com/go-lpc/sdlog/clock"
