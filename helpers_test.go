// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package dmv_test

import (
	"bytes"
	"testing"

	"github.com/OpenPSG/dmv"
	"github.com/stretchr/testify/require"
)

func descriptor(name string, recordBytes int32, lo, hi float64) dmv.Descriptor {
	return dmv.Descriptor{
		Name:                    name,
		ShortName:               name,
		LongName:                name + " long name",
		Units:                   "counts",
		PrecisionExponent:       4,
		RecordBytes:             recordBytes,
		Format:                  1,
		ScalingFactorLog:        0,
		IndependentMinimum:      lo,
		IndependentMaximum:      hi,
		IndependentPrecisionLog: -4,
		AttributeCount:          4,
	}
}

// fixture describes a synthetic DMV file.
type fixture struct {
	body        string // Header text after the length line
	tocSize     int
	descriptors []dmv.Descriptor
	tail        []int32
	records     [][]float32
	trailing    []byte // Appended after the last record
}

// chained returns a copy of descriptors linked as a 48 byte table of contents.
func chained(descriptors []dmv.Descriptor) []dmv.Descriptor {
	out := make([]dmv.Descriptor, len(descriptors))
	for i, d := range descriptors {
		d.Identifier = int32(i + 1)
		d.Continuation = 1
		if i == len(descriptors)-1 {
			d.Continuation = 0
		}
		out[i] = d
	}
	return out
}

func (fx fixture) bytes(t *testing.T) []byte {
	t.Helper()

	body := fx.body
	if body == "" {
		body = "synthetic history\n"
	}
	toc := dmv.TableOfContents{Descriptors: fx.descriptors, Tail: fx.tail}
	if fx.tocSize == dmv.TOCMultiple {
		toc.Descriptors = chained(fx.descriptors)
	}

	var buf bytes.Buffer
	w, err := dmv.Create(&buf, dmv.Header{History: body, Identifier: "SSECRGD", TOCSize: fx.tocSize}, toc)
	require.NoError(t, err)
	for _, rec := range fx.records {
		require.NoError(t, w.WriteRecord(rec))
	}
	require.NoError(t, w.Close())

	buf.Write(fx.trailing)
	return buf.Bytes()
}

// record returns a record of n values, zero except for the given offsets.
func record(n int, set map[int]float32) []float32 {
	rec := make([]float32, n)
	for i, v := range set {
		rec[i] = v
	}
	return rec
}

func catalog(t *testing.T, ft dmv.FileType, names ...string) dmv.StaticCatalog {
	t.Helper()

	c := dmv.StaticCatalog{}
	for _, name := range names {
		require.NoError(t, c.Add(ft, dmv.CatalogEntry{
			Name:       name,
			Attributes: dmv.Attributes{LongName: name + " long name", Units: "unitless", Precision: "1E-02"},
		}))
	}
	return c
}

func open(t *testing.T, b []byte, name string, opts ...dmv.Option) *dmv.Reader {
	t.Helper()

	rd, err := dmv.Open(bytes.NewReader(b), name, opts...)
	require.NoError(t, err)
	return rd
}
