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
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	single := []dmv.Descriptor{descriptor("rad", 16, 500, 503)}
	pair := []dmv.Descriptor{descriptor("re", 16, 500, 503), descriptor("im", 16, 500, 503)}

	tests := []struct {
		name        string
		tocSize     int
		descriptors []dmv.Descriptor
		want        dmv.Layout
	}{
		{
			name: "160602C1.RNC", tocSize: dmv.TOCSingle, descriptors: single,
			want: dmv.Layout{RecordBytes: 3320, IndependentOffset: 725, IndependentCount: 79, DataOffsets: []int{826}, ValuesPerRecord: 830},
		},
		{
			name: "160602C2.rnc", tocSize: dmv.TOCSingle, descriptors: single,
			want: dmv.Layout{RecordBytes: 3000, IndependentOffset: 653, IndependentCount: 71, DataOffsets: []int{746}, ValuesPerRecord: 750},
		},
		{
			name: "110602F1.RLC", tocSize: dmv.TOCSingle, descriptors: single,
			want: dmv.Layout{RecordBytes: 1652, IndependentOffset: 316, IndependentCount: 79, DataOffsets: []int{409}, ValuesPerRecord: 413},
		},
		{
			name: "110602B2.RFC", tocSize: dmv.TOCSingle, descriptors: single,
			want: dmv.Layout{RecordBytes: 1492, IndependentOffset: 284, IndependentCount: 71, DataOffsets: []int{369}, ValuesPerRecord: 373},
		},
		{
			name: "110602C1.RLC", tocSize: dmv.TOCSingle, descriptors: single,
			want: dmv.Layout{RecordBytes: 3292, IndependentOffset: 725, IndependentCount: 79, DataOffsets: []int{819}, ValuesPerRecord: 823},
		},
		{
			name: "110602B2.CXS", tocSize: dmv.TOCMultiple, descriptors: pair,
			want: dmv.Layout{RecordBytes: 316, IndependentOffset: 0, IndependentCount: 71, DataOffsets: []int{71, 75}, ValuesPerRecord: 79},
		},
		{
			name: "110602F1.CXV", tocSize: dmv.TOCMultiple, descriptors: pair,
			want: dmv.Layout{RecordBytes: 348, IndependentOffset: 0, IndependentCount: 79, DataOffsets: []int{79, 83}, ValuesPerRecord: 87},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := fixture{tocSize: tt.tocSize, descriptors: tt.descriptors}
			empty := open(t, fx.bytes(t), tt.name).Layout()

			// Two full records and a partial third.
			fx.records = [][]float32{
				make([]float32, tt.want.ValuesPerRecord),
				make([]float32, tt.want.ValuesPerRecord),
			}
			fx.trailing = make([]byte, 10)
			b := fx.bytes(t)

			rd := open(t, b, tt.name)
			got := rd.Layout()

			hdr := rd.Header()
			assert.Equal(t, (len(b)-hdr.HeaderBytes+1)/tt.want.RecordBytes, got.Records)
			assert.Equal(t, 2, got.Records)
			assert.Equal(t, 0, empty.Records)

			tt.want.Records = 2
			if diff := cmp.Diff(tt.want, got, cmpopts.IgnoreFields(dmv.Layout{}, "Descriptors", "DroppedDescriptors")); diff != "" {
				t.Errorf("layout mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLayoutChannel1Forward(t *testing.T) {
	descriptors := []dmv.Descriptor{
		descriptor("Ch1ForwardScanRealPartCounts", 16, 500, 503),
		descriptor("Ch1ForwardScanImagPartCounts", 16, 500, 503),
		descriptor("extra1", 280, 0, 69),
		descriptor("extra2", 280, 0, 69),
	}

	forward := open(t, fixture{tocSize: dmv.TOCMultiple, descriptors: descriptors}.bytes(t), "110602F1.CXS")
	backward := open(t, fixture{tocSize: dmv.TOCMultiple, descriptors: descriptors}.bytes(t), "110602B1.CXS")

	fl, bl := forward.Layout(), backward.Layout()

	// The dropped variables still occupy the record exactly once.
	assert.Equal(t, 71*4+16+16+280+280, fl.RecordBytes)
	assert.Equal(t, bl.RecordBytes, fl.RecordBytes)
	assert.Equal(t, 560, fl.ExtraBytes)
	assert.Equal(t, []int{71, 75}, fl.DataOffsets)
	require.Len(t, fl.Descriptors, 2)
	assert.Equal(t, "Ch1ForwardScanRealPartCounts", fl.Descriptors[0].Name)
	assert.Equal(t, "Ch1ForwardScanImagPartCounts", fl.Descriptors[1].Name)
	require.Len(t, fl.DroppedDescriptors, 2)

	// The table of contents is untouched.
	assert.Len(t, forward.TOC().Descriptors, 4)

	assert.Equal(t, 0, bl.ExtraBytes)
	assert.Equal(t, []int{71, 75, 79, 149}, bl.DataOffsets)
	assert.Len(t, bl.Descriptors, 4)
	assert.Empty(t, bl.DroppedDescriptors)
}

func summaryDescriptors() []dmv.Descriptor {
	var descriptors []dmv.Descriptor
	for i, name := range dmv.SummaryGridSources {
		lo := float64(500 + 1000*(i%2))
		descriptors = append(descriptors, descriptor(name, 16, lo, lo+3))
	}
	return descriptors
}

func TestLayoutSummaryCutover(t *testing.T) {
	tests := []struct {
		name        string
		recordBytes int
	}{
		{"110706.SUM", 9776},
		{"110707.SUM", 9744},
		{"100101.sum", 9776},
		{"160602.SUM", 9744},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := fixture{tocSize: dmv.TOCMultiple, descriptors: summaryDescriptors()}
			assert.Equal(t, 0, open(t, fx.bytes(t), tt.name).Layout().Records)

			// Two full records and a partial third.
			n := tt.recordBytes / 4
			fx.records = [][]float32{make([]float32, n), make([]float32, n)}
			fx.trailing = make([]byte, 10)
			b := fx.bytes(t)

			rd := open(t, b, tt.name)
			l := rd.Layout()

			assert.Equal(t, (len(b)-rd.Header().HeaderBytes+1)/tt.recordBytes, l.Records)
			assert.Equal(t, 2, l.Records)
			assert.Equal(t, n, l.ValuesPerRecord)
			assert.Equal(t, tt.recordBytes, l.RecordBytes)
			assert.Equal(t, 1479, l.IndependentOffset)
			assert.Equal(t, 144, l.IndependentCount)
			assert.Equal(t, []int{1623, 1627, 1631, 1635, 1639, 1643}, l.DataOffsets)
		})
	}
}

func TestLayoutUnknownFileType(t *testing.T) {
	b := fixture{tocSize: dmv.TOCSingle, descriptors: []dmv.Descriptor{descriptor("rad", 16, 500, 503)}}.bytes(t)

	for _, name := range []string{"160602C1.XYZ", "160602C1", "160602C1.RNC.gz"} {
		_, err := dmv.Open(bytes.NewReader(b), name)
		assert.ErrorIs(t, err, dmv.ErrUnknownFileType, name)
		assert.ErrorIs(t, err, dmv.ErrFormat, name)
	}
}
