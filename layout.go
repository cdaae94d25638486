// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package dmv

import (
	"time"
)

// Housekeeping variable counts.
const (
	channel1Vars = 79
	channel2Vars = 71
	summaryVars  = 144
)

// Summary record geometry. The record shrank on 2011-07-07.
const (
	summaryIndependentOffset = 1479
	summaryRecordBytesBefore = 9776
	summaryRecordBytesAfter  = 9744
)

var summaryCutover = time.Date(2011, time.July, 7, 0, 0, 0, 0, time.UTC)

// geometry is the per file type part of a Layout.
type geometry struct {
	vars              int
	recordBytes       int
	independentOffset int
	dataStart         int // Offset of the first dependent variable, in float32 values
	descriptors       []Descriptor
	dropped           []Descriptor
	extraBytes        int
}

// layoutRule computes the record geometry of one file type.
type layoutRule interface {
	geometry(n Name, descriptors []Descriptor) geometry
}

var layoutRules = map[FileType]layoutRule{
	FileTypeRNC: interleavedRule{pad1: 14, pad2: 22},
	FileTypeRFC: scanRule{},
	FileTypeRLC: scanRule{},
	FileTypeCXS: complexRule{vars: channel2Vars},
	FileTypeCXV: complexRule{vars: channel1Vars},
	FileTypeSUM: summaryRule{},
}

// computeLayout derives the record geometry for a file of fileBytes bytes.
// The descriptors slice is never modified.
func computeLayout(n Name, hdr *Header, descriptors []Descriptor, fileBytes int64) (*Layout, error) {
	rule, ok := layoutRules[n.Type]
	if !ok {
		return nil, formatError("layout", ErrUnknownFileType, "no layout for file type %s", n.Type)
	}

	g := rule.geometry(n, descriptors)
	if g.recordBytes <= 0 {
		return nil, formatError("layout", nil, "record size %d is not positive", g.recordBytes)
	}

	valuesPerRecord := g.recordBytes / 4
	if g.independentOffset+g.vars > valuesPerRecord {
		return nil, formatError("layout", nil, "%d independent variables at offset %d overrun a %d value record",
			g.vars, g.independentOffset, valuesPerRecord)
	}

	offsets := make([]int, len(g.descriptors))
	next := g.dataStart
	for i, d := range g.descriptors {
		offsets[i] = next
		next += d.Points()
	}

	return &Layout{
		RecordBytes:        g.recordBytes,
		IndependentOffset:  g.independentOffset,
		IndependentCount:   g.vars,
		DataOffsets:        offsets,
		Records:            int((fileBytes - int64(hdr.HeaderBytes) + 1) / int64(g.recordBytes)),
		ValuesPerRecord:    valuesPerRecord,
		ExtraBytes:         g.extraBytes,
		Descriptors:        g.descriptors,
		DroppedDescriptors: g.dropped,
	}, nil
}

func channelVars(n Name) int {
	if n.Channel == "1" {
		return channel1Vars
	}
	return channel2Vars
}

func dependentBytes(descriptors []Descriptor) int {
	total := 0
	for _, d := range descriptors {
		total += int(d.RecordBytes)
	}
	return total
}

// interleavedRule is the layout with two padded blocks of housekeeping data
// per record, the second of which holds the decoded variables.
type interleavedRule struct {
	pad1, pad2 int
}

func (r interleavedRule) geometry(n Name, descriptors []Descriptor) geometry {
	vars := channelVars(n)
	independentOffset := vars*4 + (vars + r.pad1) + vars*4
	return geometry{
		vars:              vars,
		recordBytes:       (vars*5+r.pad1+vars*5+r.pad2)*4 + dependentBytes(descriptors),
		independentOffset: independentOffset,
		dataStart:         independentOffset + vars + r.pad2,
		descriptors:       descriptors,
	}
}

// scanRule is the layout of the radiance files that may hold a single scan direction.
type scanRule struct{}

func (scanRule) geometry(n Name, descriptors []Descriptor) geometry {
	if n.Scan == ScanBoth {
		return interleavedRule{pad1: 14, pad2: 15}.geometry(n, descriptors)
	}
	vars := channelVars(n)
	return geometry{
		vars:              vars,
		recordBytes:       vars*4*4 + (vars+14)*4 + dependentBytes(descriptors),
		independentOffset: vars * 4,
		dataStart:         vars*5 + 14,
		descriptors:       descriptors,
	}
}

// complexRule is the layout of the complex spectra files: housekeeping first,
// then the spectra back to back.
type complexRule struct {
	vars int
}

func (r complexRule) geometry(n Name, descriptors []Descriptor) geometry {
	kept := descriptors
	var dropped []Descriptor
	// Channel 1 forward scans carry extra variables after the real and
	// imaginary parts that are not decoded.
	if n.Channel == "1" && n.Scan != ScanBackward && len(descriptors) > 2 {
		kept = append([]Descriptor(nil), descriptors[:2]...)
		dropped = append([]Descriptor(nil), descriptors[2:]...)
	}
	extra := dependentBytes(dropped)
	return geometry{
		vars:              r.vars,
		recordBytes:       r.vars*4 + dependentBytes(kept) + extra,
		independentOffset: 0,
		dataStart:         r.vars,
		descriptors:       kept,
		dropped:           dropped,
		extraBytes:        extra,
	}
}

// summaryRule is the fixed layout of the daily summary files.
type summaryRule struct{}

func (summaryRule) geometry(n Name, descriptors []Descriptor) geometry {
	recordBytes := summaryRecordBytesAfter
	if n.Date.Before(summaryCutover) {
		recordBytes = summaryRecordBytesBefore
	}
	return geometry{
		vars:              summaryVars,
		recordBytes:       recordBytes,
		independentOffset: summaryIndependentOffset,
		dataStart:         summaryIndependentOffset + summaryVars,
		descriptors:       descriptors,
	}
}
