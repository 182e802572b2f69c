// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store persists the units emitted by a folder scan.
//
// Every unit is written to its own LCIO file, as a single event holding:
//   - ADC_TIMESTAMPS: the ADC sample timestamps (F64s),
//   - ADC_CHANNEL_<n>: the readings of ADC channel n (I32s),
//   - CHR_TIMESTAMPS: the message timestamps (F64s),
//   - UNIT_INFO: the unit number, span and clock calibration,
//
// and the messages in the CHR_MESSAGES string parameter of the event.
//
// The folder metadata is written to a YAML file.
package store // import "github.com/go-lpc/sdlog/store"

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"go-hep.org/x/hep/lcio"
	"gopkg.in/yaml.v3"

	"github.com/go-lpc/sdlog/clock"
	"github.com/go-lpc/sdlog/scan"
)

const (
	Ext      = ".slcio"                // extension of unit files
	MetaFile = "sliding_metadata.yaml" // name of the folder metadata file

	detector = "SD-LOGGER"

	colADCTimes = "ADC_TIMESTAMPS"
	colADCChan  = "ADC_CHANNEL_%d"
	colCHRTimes = "CHR_TIMESTAMPS"
	colInfo     = "UNIT_INFO"
	parMsgs     = "CHR_MESSAGES"
	parName     = "UNIT_NAME"
	parChans    = "Channels"
)

// Writer writes units to a directory.
// Writer implements scan.Sink.
type Writer struct {
	dir string
	lvl int
	msg *log.Logger
}

// NewWriter returns a writer of unit files under dir, compressed with
// the provided flate level.
func NewWriter(dir string, lvl int, msg *log.Logger) *Writer {
	if msg == nil {
		msg = log.New(io.Discard, "", 0)
	}
	return &Writer{dir: dir, lvl: lvl, msg: msg}
}

// Write writes the unit to its own LCIO file.
func (w *Writer) Write(u *scan.Unit) error {
	fname := filepath.Join(w.dir, u.Name+Ext)
	err := WriteUnit(fname, u, w.lvl)
	if err != nil {
		return err
	}
	w.msg.Printf(
		"wrote %s (adc=%d, msgs=%d, calibrated=%v)",
		filepath.Base(fname), len(u.ADCTimes), len(u.Messages), u.Calibrated(),
	)
	return nil
}

// WriteUnit writes a unit to the named LCIO file.
func WriteUnit(fname string, u *scan.Unit, lvl int) error {
	w, err := lcio.Create(fname)
	if err != nil {
		return fmt.Errorf("store: could not create LCIO file: %w", err)
	}
	defer w.Close()

	w.SetCompressionLevel(lvl)

	err = w.WriteRunHeader(&lcio.RunHeader{
		RunNumber: int32(u.Number),
		Detector:  detector,
		Descr:     u.Name,
		Params: lcio.Params{
			Ints: map[string][]int32{
				parChans: {int32(len(u.ADC))},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("store: could not write run header: %w", err)
	}

	evt := lcio.Event{
		RunNumber:   int32(u.Number),
		EventNumber: 0,
		TimeStamp:   int64(u.Min * 1e9),
		Detector:    detector,
		Params: lcio.Params{
			Strings: map[string][]string{
				parName: {u.Name},
				parMsgs: u.Messages,
			},
		},
	}

	evt.Add(colInfo, &lcio.GenericObject{
		Data: []lcio.GenericObjectData{{
			I32s: []int32{int32(u.Number), int32(u.Calibration.N), b2i(u.Calibration.Valid)},
			F64s: []float64{u.Min, u.Max, u.Calibration.Slope, u.Calibration.Intercept},
		}},
	})
	evt.Add(colADCTimes, f64s(u.ADCTimes))
	for ch, vs := range u.ADC {
		evt.Add(fmt.Sprintf(colADCChan, ch), i32s(vs))
	}
	evt.Add(colCHRTimes, f64s(u.CHRTimes))

	err = w.WriteEvent(&evt)
	if err != nil {
		return fmt.Errorf("store: could not write unit event: %w", err)
	}

	err = w.Close()
	if err != nil {
		return fmt.Errorf("store: could not close LCIO file: %w", err)
	}
	return nil
}

// ReadUnit reads a unit from the named LCIO file.
func ReadUnit(fname string) (*scan.Unit, error) {
	r, err := lcio.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("store: could not open LCIO file: %w", err)
	}
	defer r.Close()

	if !r.Next() {
		err := r.Err()
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("store: could not read unit event from %q: %w", fname, err)
	}

	var (
		rhdr = r.RunHeader()
		evt  = r.Event()
		u    = &scan.Unit{Number: int(evt.RunNumber)}
	)

	if vs := evt.Params.Strings[parName]; len(vs) == 1 {
		u.Name = vs[0]
	}
	if vs := evt.Params.Strings[parMsgs]; len(vs) > 0 {
		u.Messages = vs
	}

	info, err := generic(&evt, colInfo)
	if err != nil {
		return nil, err
	}
	if len(info.I32s) != 3 || len(info.F64s) != 4 {
		return nil, fmt.Errorf("store: invalid %s collection in %q", colInfo, fname)
	}
	u.Min, u.Max = info.F64s[0], info.F64s[1]
	u.Calibration = clock.Calibration{
		Slope:     info.F64s[2],
		Intercept: info.F64s[3],
		N:         int(info.I32s[1]),
		Valid:     info.I32s[2] != 0,
	}

	adc, err := generic(&evt, colADCTimes)
	if err != nil {
		return nil, err
	}
	u.ADCTimes = nilIfEmpty(adc.F64s)

	nchans := 0
	if vs := rhdr.Params.Ints[parChans]; len(vs) == 1 {
		nchans = int(vs[0])
	}
	u.ADC = make([][]uint16, nchans)
	for ch := range u.ADC {
		data, err := generic(&evt, fmt.Sprintf(colADCChan, ch))
		if err != nil {
			return nil, err
		}
		if len(data.I32s) != len(u.ADCTimes) {
			return nil, fmt.Errorf(
				"store: ADC channel %d has %d readings (timestamps=%d)",
				ch, len(data.I32s), len(u.ADCTimes),
			)
		}
		u.ADC[ch] = u16s(data.I32s)
	}

	chr, err := generic(&evt, colCHRTimes)
	if err != nil {
		return nil, err
	}
	u.CHRTimes = nilIfEmpty(chr.F64s)
	if len(u.CHRTimes) != len(u.Messages) {
		return nil, fmt.Errorf(
			"store: %d messages for %d CHR timestamps",
			len(u.Messages), len(u.CHRTimes),
		)
	}

	return u, nil
}

func generic(evt *lcio.Event, name string) (lcio.GenericObjectData, error) {
	obj, ok := evt.Get(name).(*lcio.GenericObject)
	if !ok || len(obj.Data) != 1 {
		return lcio.GenericObjectData{}, fmt.Errorf("store: missing %s collection", name)
	}
	return obj.Data[0], nil
}

// WriteMetadata writes the folder metadata to the named YAML file.
func WriteMetadata(fname string, meta scan.Metadata) error {
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("store: could not encode metadata: %w", err)
	}

	err = os.WriteFile(fname, raw, 0644)
	if err != nil {
		return fmt.Errorf("store: could not write metadata: %w", err)
	}
	return nil
}

// ReadMetadata reads the folder metadata from the named YAML file.
func ReadMetadata(fname string) (scan.Metadata, error) {
	var meta scan.Metadata
	f, err := os.Open(fname)
	if err != nil {
		return meta, fmt.Errorf("store: could not open metadata: %w", err)
	}
	defer f.Close()

	err = yaml.NewDecoder(f).Decode(&meta)
	if err != nil {
		return meta, fmt.Errorf("store: could not decode metadata: %w", err)
	}
	return meta, nil
}

func f64s(vs []float64) *lcio.GenericObject {
	return &lcio.GenericObject{
		Data: []lcio.GenericObjectData{{F64s: vs}},
	}
}

func i32s(vs []uint16) *lcio.GenericObject {
	o := make([]int32, len(vs))
	for i, v := range vs {
		o[i] = int32(v)
	}
	return &lcio.GenericObject{
		Data: []lcio.GenericObjectData{{I32s: o}},
	}
}

func u16s(vs []int32) []uint16 {
	if len(vs) == 0 {
		return nil
	}
	o := make([]uint16, len(vs))
	for i, v := range vs {
		o[i] = uint16(v)
	}
	return o
}

func nilIfEmpty(vs []float64) []float64 {
	if len(vs) == 0 {
		return nil
	}
	return vs
}

func b2i(v bool) int32 {
	if v {
		return 1
	}
	return 0
}
