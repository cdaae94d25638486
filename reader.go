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
	"fmt"
	"io"
	"os"
)

// Option configures a Reader.
type Option func(*options)

type options struct {
	catalog Catalog
	logf    func(format string, args ...any)
}

// WithCatalog sets the catalog used to name the independent variables.
func WithCatalog(c Catalog) Option {
	return func(o *options) {
		o.catalog = c
	}
}

// WithLogger installs a printf style diagnostic logger, e.g. log.Printf.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(o *options) {
		if logf != nil {
			o.logf = logf
		}
	}
}

// Reader reads DMV files.
type Reader struct {
	br     *binaryReader
	opts   options
	name   Name
	hdr    *Header
	toc    *TableOfContents
	layout *Layout
}

// Open parses the header, table of contents and record layout of a DMV file.
// The name supplies the file type, channel, scan direction and date.
//
// The record count follows (fileBytes - headerBytes + 1) / recordBytes, which
// includes the table of contents. A partial final record longer than a record
// less that overhead is therefore counted, and Open fails with
// io.ErrUnexpectedEOF rather than dropping it.
func Open(r io.ReadSeeker, name string, opts ...Option) (*Reader, error) {
	rd := &Reader{opts: options{logf: func(string, ...any) {}}}
	for _, opt := range opts {
		opt(&rd.opts)
	}

	var err error
	if rd.name, err = ParseName(name); err != nil {
		return nil, err
	}

	fileBytes, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("error seeking to end of file: %w", err)
	}

	if rd.hdr, rd.br, err = readHeader(r, fileBytes); err != nil {
		return nil, err
	}
	rd.opts.logf("dmv: %s: header %d bytes, identifier %q, toc size %d",
		rd.name.Base, rd.hdr.HeaderBytes, rd.hdr.Identifier, rd.hdr.TOCSize)

	if rd.toc, err = readTOC(rd.br, rd.hdr.TOCSize); err != nil {
		return nil, err
	}
	rd.opts.logf("dmv: %s: %d descriptors, %d trailer words, data at byte %d",
		rd.name.Base, len(rd.toc.Descriptors), len(rd.toc.Tail), rd.br.pos)

	if rd.layout, err = computeLayout(rd.name, rd.hdr, rd.toc.Descriptors, fileBytes); err != nil {
		return nil, err
	}
	rd.opts.logf("dmv: %s: %s channel %q scan %s, %d records of %d bytes, %d dropped descriptors",
		rd.name.Base, rd.name.Type, rd.name.Channel, rd.name.Scan,
		rd.layout.Records, rd.layout.RecordBytes, len(rd.layout.DroppedDescriptors))

	if available := fileBytes - rd.br.pos; int64(rd.layout.Records*rd.layout.ValuesPerRecord*4) > available {
		return nil, fmt.Errorf("error reading records: %d records of %d values need more than the %d bytes left: %w",
			rd.layout.Records, rd.layout.ValuesPerRecord, available, io.ErrUnexpectedEOF)
	}

	return rd, nil
}

// Name returns the tokens parsed from the file name.
func (rd *Reader) Name() Name { return rd.name }

// Header returns the file header.
func (rd *Reader) Header() Header { return *rd.hdr }

// TOC returns the table of contents.
func (rd *Reader) TOC() TableOfContents { return *rd.toc }

// Layout returns the record geometry.
func (rd *Reader) Layout() Layout { return *rd.layout }

// ReadRecords reads the flat float32 values of every complete record.
func (rd *Reader) ReadRecords() ([]float32, error) {
	if rd.layout.Records == 0 {
		return nil, formatError("records", ErrNoRecords, "file is shorter than one %d byte record", rd.layout.RecordBytes)
	}
	values, err := rd.br.readFloat32s(rd.layout.Records * rd.layout.ValuesPerRecord)
	if err != nil {
		return nil, fmt.Errorf("error reading records: %w", err)
	}
	return values, nil
}

// Decode reads the data records and decodes every variable.
func (rd *Reader) Decode() (*File, error) {
	values, err := rd.ReadRecords()
	if err != nil {
		return nil, err
	}
	return rd.assemble(values)
}

// assemble builds the decoded file from the raw record values. It does no I/O.
func (rd *Reader) assemble(values []float32) (*File, error) {
	if rd.opts.catalog == nil {
		return nil, fmt.Errorf("error naming independent variables: %w", ErrMissingTime)
	}
	vars, err := rd.opts.catalog.IndependentVariables(rd.name.Type)
	if err != nil {
		return nil, fmt.Errorf("error naming independent variables: %w", err)
	}

	f := &File{
		Name:   rd.name.Base,
		Type:   rd.name.Type,
		Header: *rd.hdr,
		TOC:    *rd.toc,
		Layout: *rd.layout,
		Date:   rd.name.DateInt,
	}

	f.Series = decodeSeries(values, rd.layout, vars)
	timeSeries, ok := f.Lookup(TimeVariable)
	if !ok {
		return nil, fmt.Errorf("error decoding time: %w", ErrMissingTime)
	}

	var assigned []*Grid
	if f.Grids, assigned, err = buildGrids(rd.name.Type, rd.layout.Descriptors); err != nil {
		return nil, err
	}
	if f.Spectra, err = decodeSpectra(values, rd.layout, assigned, vars); err != nil {
		return nil, err
	}

	tb, err := NewTimebase(rd.name.Date, timeSeries.Values)
	if err != nil {
		return nil, fmt.Errorf("error decoding time: %w", err)
	}
	f.BaseTime = tb.BaseTime
	f.TimeOffset = tb.TimeOffset
	f.Times = tb.Times

	return f, nil
}

// Decode decodes a DMV file from r in one step.
func Decode(r io.ReadSeeker, name string, opts ...Option) (*File, error) {
	rd, err := Open(r, name, opts...)
	if err != nil {
		return nil, err
	}
	return rd.Decode()
}

// DecodeFile decodes the DMV file at path. The file is closed before the
// decoded arrays are built.
func DecodeFile(path string, opts ...Option) (*File, error) {
	rd, values, err := readFile(path, opts...)
	if err != nil {
		return nil, err
	}
	return rd.assemble(values)
}

func readFile(path string, opts ...Option) (*Reader, []float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	rd, err := Open(f, path, opts...)
	if err != nil {
		return nil, nil, err
	}
	values, err := rd.ReadRecords()
	if err != nil {
		return nil, nil, err
	}
	return rd, values, nil
}
