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
	"encoding/binary"
	"fmt"
	"math"
)

// Supported table of contents entry sizes.
const (
	TOCSingle   = 40 // One descriptor, no identifier/continuation fields
	TOCMultiple = 48 // Chained descriptors terminated by a zero continuation
)

const (
	// maxTOCEntries bounds the continuation loop of a 48 byte table of contents.
	maxTOCEntries = 4096
	// maxTailWords bounds the opaque block that follows the TOC.
	maxTailWords = 1 << 20
)

// readTOC parses the table of contents and skips the opaque block after it.
// On return br is positioned at the first data record.
func readTOC(br *binaryReader, tocSize int) (*TableOfContents, error) {
	toc := &TableOfContents{}

	switch tocSize {
	case TOCSingle:
		d, err := readDescriptor(br, false)
		if err != nil {
			return nil, fmt.Errorf("error reading toc entry: %w", err)
		}
		toc.Descriptors = []Descriptor{d}
		toc.DependentVariables = 1
	case TOCMultiple:
		for {
			if len(toc.Descriptors) == maxTOCEntries {
				return nil, formatError("toc", nil, "more than %d entries without a terminating continuation", maxTOCEntries)
			}
			d, err := readDescriptor(br, true)
			if err != nil {
				return nil, fmt.Errorf("error reading toc entry %d: %w", len(toc.Descriptors), err)
			}
			toc.Descriptors = append(toc.Descriptors, d)
			// Kept literally: the total is not otherwise exposed by the format.
			toc.DependentVariables = int(d.Identifier + d.Continuation)
			if d.Continuation == 0 {
				break
			}
		}
	default:
		return nil, formatError("toc", ErrTOCSize, "size %d, expected %d or %d", tocSize, TOCSingle, TOCMultiple)
	}

	tail, err := readTail(br)
	if err != nil {
		return nil, fmt.Errorf("error reading toc trailer: %w", err)
	}
	toc.Tail = tail

	return toc, nil
}

func readDescriptor(br *binaryReader, chained bool) (Descriptor, error) {
	var d Descriptor

	ints := []*int32{&d.RecordBytes, &d.Format, &d.ScalingFactorLog, &d.PrecisionExponent}
	for _, p := range ints {
		v, err := br.readInt32()
		if err != nil {
			return d, err
		}
		*p = v
	}

	var err error
	if d.IndependentMinimum, err = br.readFloat64(); err != nil {
		return d, err
	}
	if d.IndependentMaximum, err = br.readFloat64(); err != nil {
		return d, err
	}

	ints = []*int32{&d.IndependentPrecisionLog}
	if chained {
		ints = append(ints, &d.Identifier, &d.Continuation)
	}
	ints = append(ints, &d.AttributeCount)
	for _, p := range ints {
		v, err := br.readInt32()
		if err != nil {
			return d, err
		}
		*p = v
	}

	strs := []*string{&d.Name, &d.ShortName, &d.LongName, &d.Units}
	for _, p := range strs {
		s, err := br.readString()
		if err != nil {
			return d, err
		}
		*p = s
	}

	if d.RecordBytes < 0 {
		return d, formatError("toc", nil, "variable %q has negative record size %d", d.Name, d.RecordBytes)
	}

	if chained {
		// 48 byte entries carry no explicit precision.
		d.Precision = formatPrecision(0.5 * math.Pow10(int(d.PrecisionExponent)))
	} else {
		d.Precision = formatPrecision(math.Pow10(int(d.PrecisionExponent)))
	}

	return d, nil
}

// readTail skips the int32 counted block of int32 words that ends the TOC.
func readTail(br *binaryReader) ([]int32, error) {
	n, err := br.readInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 || n > maxTailWords {
		return nil, formatError("toc", nil, "trailer word count %d out of range", n)
	}
	raw, err := br.readBytes(int(n) * 4)
	if err != nil {
		return nil, err
	}
	words := make([]int32, n)
	for i := range words {
		words[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return words, nil
}

// formatPrecision renders a precision the way the file history does, e.g. "1E-04".
func formatPrecision(v float64) string {
	return fmt.Sprintf("%.0E", v)
}
