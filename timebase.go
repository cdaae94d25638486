// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package dmv

import "time"

// TimeVariable is the independent variable holding hours since the file date.
const TimeVariable = "Time"

// Timebase holds the record times of a file.
type Timebase struct {
	BaseTime   int64       // Seconds since the Unix epoch of the first record
	TimeOffset []float64   // Seconds of each record since the first
	Times      []time.Time // Absolute record times
}

// NewTimebase converts hours since date into absolute and relative record times.
func NewTimebase(date time.Time, hours []float32) (*Timebase, error) {
	if len(hours) == 0 {
		return nil, ErrNoRecords
	}

	first := hoursToDuration(hours[0])
	tb := &Timebase{
		BaseTime:   date.Add(first).Unix(),
		TimeOffset: make([]float64, len(hours)),
		Times:      make([]time.Time, len(hours)),
	}
	for r, h := range hours {
		d := hoursToDuration(h)
		tb.Times[r] = date.Add(d)
		tb.TimeOffset[r] = (d - first).Seconds()
	}
	return tb, nil
}

// hoursToDuration truncates to whole nanoseconds.
func hoursToDuration(h float32) time.Duration {
	return time.Duration(float64(h) * float64(time.Hour))
}
