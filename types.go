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

	"gonum.org/v1/gonum/mat"
)

// Header represents the fixed leading section of a DMV file.
type Header struct {
	HeaderBytes int    // Number of bytes in the header text, including the length line
	History     string // Raw header text (file history), byte exact
	Identifier  string // 12 byte identifier, e.g. "SSECRGD     "
	TOCSize     int    // Size of a table of contents entry, 40 or 48
}

// Descriptor describes one dependent (spectral) variable.
type Descriptor struct {
	Name                    string
	ShortName               string
	LongName                string
	Units                   string
	Precision               string  // Textual precision derived from PrecisionExponent
	PrecisionExponent       int32   // log10 of the dependent precision
	RecordBytes             int32   // Size of the variable in each record, in bytes
	Format                  int32   // Format code of the dependent record
	ScalingFactorLog        int32   // log10 of the scaling factor
	IndependentMinimum      float64 // First wavenumber
	IndependentMaximum      float64 // Last wavenumber
	IndependentPrecisionLog int32   // log10 of the wavenumber precision
	AttributeCount          int32   // Number of attribute strings that follow
	Identifier              int32   // Only present in 48 byte entries
	Continuation            int32   // Only present in 48 byte entries, zero terminates the TOC
}

// Points returns the number of float32 values the variable occupies in a record.
func (d Descriptor) Points() int {
	return int(d.RecordBytes) / 4
}

// TableOfContents is the ordered list of dependent variable descriptors.
type TableOfContents struct {
	Descriptors []Descriptor
	// DependentVariables is the variable count declared by the last entry
	// (identifier + continuation for 48 byte entries, 1 otherwise).
	DependentVariables int
	// Tail holds the opaque words that follow the TOC.
	Tail []int32
}

// Layout is the record geometry of a DMV file.
type Layout struct {
	RecordBytes        int          // Size of one record in bytes
	IndependentOffset  int          // Offset of the first independent variable, in float32 values
	IndependentCount   int          // Number of independent variables decoded per record
	DataOffsets        []int        // Offset of each kept descriptor, in float32 values
	Records            int          // Number of complete records
	ValuesPerRecord    int          // Number of float32 values in one record
	ExtraBytes         int          // Bytes of dropped descriptors still present in each record
	Descriptors        []Descriptor // Descriptors that produce spectra, aligned with DataOffsets
	DroppedDescriptors []Descriptor // Descriptors present in each record but not decoded
}

// Attributes is the human readable metadata attached to an output variable.
type Attributes struct {
	LongName  string `yaml:"longname" json:"longname"`
	Units     string `yaml:"units" json:"units"`
	Precision string `yaml:"precision" json:"precision"`
	// RangeOfValues is only set on wavenumber grids.
	RangeOfValues string `yaml:"-" json:"range_of_values,omitempty"`
}

// Grid is an evenly spaced wavenumber axis.
type Grid struct {
	Name       string
	Values     []float64
	Attributes Attributes
}

// Series is the time series of one independent (housekeeping) variable.
type Series struct {
	Name       string
	Values     []float32
	Attributes Attributes
}

// Spectrum is the records x wavenumbers cube of one dependent variable.
type Spectrum struct {
	Name       string
	Data       *mat.Dense
	Grid       *Grid
	Attributes Attributes
}

// File is a fully decoded DMV file.
type File struct {
	Name       string
	Type       FileType
	Header     Header
	TOC        TableOfContents
	Layout     Layout
	Date       int         // YYMMDD taken from the file name
	BaseTime   int64       // Seconds since the Unix epoch of the first record
	TimeOffset []float64   // Seconds since BaseTime, one per record
	Times      []time.Time // Absolute time of each record
	Series     []Series
	Spectra    []Spectrum
	Grids      []*Grid
}

// BaseTimeString formats the time of the first record.
func (f *File) BaseTimeString() string {
	return time.Unix(f.BaseTime, 0).UTC().Format("2006-01-02,15:04:05 GMT")
}

// Lookup returns the independent series with the given name.
func (f *File) Lookup(name string) (*Series, bool) {
	for i := range f.Series {
		if f.Series[i].Name == name {
			return &f.Series[i], true
		}
	}
	return nil, false
}

// Spectrum returns the dependent variable with the given name.
func (f *File) Spectrum(name string) (*Spectrum, bool) {
	for i := range f.Spectra {
		if f.Spectra[i].Name == name {
			return &f.Spectra[i], true
		}
	}
	return nil, false
}

// Grid returns the wavenumber grid with the given name.
func (f *File) Grid(name string) (*Grid, bool) {
	for _, g := range f.Grids {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}
