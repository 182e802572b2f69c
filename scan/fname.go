// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scan

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/go-lpc/sdlog"
)

const numLen = 8 // number of digits of a file number

// FileNumber returns the number embedded in a logger file name.
// Logger files are named F%08d.bin.
func FileNumber(fname string) (int, error) {
	name := filepath.Base(fname)
	if len(name) < numLen+1 {
		return 0, sdlog.Errorf(sdlog.BadField, "scan: file name %q too short", name)
	}
	digits := name[1 : numLen+1]
	for _, c := range digits {
		if c < '0' || '9' < c {
			return 0, sdlog.Errorf(sdlog.BadField, "scan: invalid file number in %q", name)
		}
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0, sdlog.Errorf(sdlog.BadField, "scan: invalid file number in %q: %w", name, err)
	}
	return v, nil
}

// Check verifies the files are numbered consecutively.
func Check(fnames []string) error {
	prev := 0
	for i, fname := range fnames {
		n, err := FileNumber(fname)
		if err != nil {
			return err
		}
		if i > 0 && n != prev+1 {
			return sdlog.Errorf(sdlog.NonConsecutiveFiles,
				"scan: files %q and %q are not consecutive (missing #%d)",
				filepath.Base(fnames[i-1]), filepath.Base(fname), prev+1,
			)
		}
		prev = n
	}
	return nil
}

// Glob returns the logger files of a directory, ordered by file number.
func Glob(dir string) ([]string, error) {
	fnames, err := filepath.Glob(filepath.Join(dir, "F????????.bin"))
	if err != nil {
		return nil, fmt.Errorf("scan: could not list files of %q: %w", dir, err)
	}

	nums := make(map[string]int, len(fnames))
	for _, fname := range fnames {
		n, err := FileNumber(fname)
		if err != nil {
			return nil, err
		}
		nums[fname] = n
	}
	sort.Slice(fnames, func(i, j int) bool {
		return nums[fnames[i]] < nums[fnames[j]]
	})
	return fnames, nil
}
