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
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
)

// Writer writes DMV files.
type Writer struct {
	bw      *bufio.Writer
	hdr     Header
	records int // Number of data records written so far.
}

// Create writes the header and table of contents of a DMV file to w.
// hdr.History is the header text that follows the length line; the length line
// is generated and hdr.HeaderBytes is ignored.
func Create(w io.Writer, hdr Header, toc TableOfContents) (*Writer, error) {
	body := hdr.History
	hdr.HeaderBytes = headerLength(body)
	hdr.History = strconv.Itoa(hdr.HeaderBytes) + "\n" + body

	ew := &Writer{bw: bufio.NewWriter(w), hdr: hdr}
	if err := ew.writeHeader(toc); err != nil {
		return nil, fmt.Errorf("error writing header: %w", err)
	}

	return ew, nil
}

// Header returns the header as it was written.
func (ew *Writer) Header() Header {
	return ew.hdr
}

// WriteRecord writes the float32 values of a single data record.
func (ew *Writer) WriteRecord(values []float32) error {
	if err := binary.Write(ew.bw, binary.LittleEndian, values); err != nil {
		return err
	}
	ew.records++
	return nil
}

// Records returns the number of data records written.
func (ew *Writer) Records() int {
	return ew.records
}

// Close flushes any buffered data to the underlying writer.
func (ew *Writer) Close() error {
	return ew.bw.Flush()
}

func (ew *Writer) writeHeader(toc TableOfContents) error {
	if _, err := ew.bw.WriteString(ew.hdr.History); err != nil {
		return err
	}

	id := fmt.Sprintf("%-12s", ew.hdr.Identifier)[:identifierBytes]
	if _, err := ew.bw.WriteString(id); err != nil {
		return err
	}

	if err := binary.Write(ew.bw, binary.LittleEndian, int32(ew.hdr.TOCSize)); err != nil {
		return err
	}

	switch ew.hdr.TOCSize {
	case TOCSingle:
		if len(toc.Descriptors) != 1 {
			return fmt.Errorf("a %d byte table of contents holds exactly one descriptor, got %d", TOCSingle, len(toc.Descriptors))
		}
	case TOCMultiple:
		if len(toc.Descriptors) == 0 {
			return fmt.Errorf("table of contents has no descriptors")
		}
	default:
		return formatError("toc", ErrTOCSize, "size %d, expected %d or %d", ew.hdr.TOCSize, TOCSingle, TOCMultiple)
	}

	for _, d := range toc.Descriptors {
		if err := ew.writeDescriptor(d, ew.hdr.TOCSize == TOCMultiple); err != nil {
			return err
		}
	}

	if err := binary.Write(ew.bw, binary.LittleEndian, int32(len(toc.Tail))); err != nil {
		return err
	}
	if len(toc.Tail) == 0 {
		return nil
	}
	return binary.Write(ew.bw, binary.LittleEndian, toc.Tail)
}

func (ew *Writer) writeDescriptor(d Descriptor, chained bool) error {
	fields := []any{
		d.RecordBytes, d.Format, d.ScalingFactorLog, d.PrecisionExponent,
		d.IndependentMinimum, d.IndependentMaximum, d.IndependentPrecisionLog,
	}
	if chained {
		fields = append(fields, d.Identifier, d.Continuation)
	}
	fields = append(fields, d.AttributeCount)

	for _, v := range fields {
		if err := binary.Write(ew.bw, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	for _, s := range []string{d.Name, d.ShortName, d.LongName, d.Units} {
		if err := binary.Write(ew.bw, binary.LittleEndian, int32(len(s))); err != nil {
			return err
		}
		if _, err := ew.bw.WriteString(s); err != nil {
			return err
		}
	}

	return nil
}

// headerLength returns the size of body once prefixed with its own length line.
func headerLength(body string) int {
	n := len(body) + 2
	for m := len(body) + 1 + len(strconv.Itoa(n)); m != n; m = len(body) + 1 + len(strconv.Itoa(n)) {
		n = m
	}
	return n
}
