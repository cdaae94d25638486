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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTOCSingle(t *testing.T) {
	d := descriptor("mean_rad", 16, 500, 503)
	b := fixture{
		tocSize:     dmv.TOCSingle,
		descriptors: []dmv.Descriptor{d},
		tail:        []int32{7, 8, 9},
	}.bytes(t)

	toc := open(t, b, "160602C1.RNC").TOC()

	require.Len(t, toc.Descriptors, 1)
	assert.Equal(t, 1, toc.DependentVariables)
	assert.Equal(t, []int32{7, 8, 9}, toc.Tail)

	want := d
	want.Precision = "1E+04"
	if diff := cmp.Diff(want, toc.Descriptors[0]); diff != "" {
		t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestTOCMultiple(t *testing.T) {
	descriptors := []dmv.Descriptor{
		descriptor("Ch2BackwardScanRealPartCounts", 400, 500, 3000),
		descriptor("Ch2BackwardScanImagPartCounts", 400, 500, 3000),
		descriptor("Ch2BackwardScanPhase", 400, 500, 3000),
	}
	b := fixture{
		tocSize:     dmv.TOCMultiple,
		descriptors: descriptors,
	}.bytes(t)

	toc := open(t, b, "110602B2.CXS").TOC()

	require.Len(t, toc.Descriptors, 3)
	// The last entry has identifier 3 and continuation 0.
	assert.Equal(t, 3, toc.DependentVariables)
	assert.Empty(t, toc.Tail)

	want := chained(descriptors)
	for i := range want {
		want[i].Precision = "5E+03"
	}
	if diff := cmp.Diff(want, toc.Descriptors); diff != "" {
		t.Errorf("descriptors mismatch (-want +got):\n%s", diff)
	}
}

func TestTOCContinuationArithmetic(t *testing.T) {
	d := descriptor("RealPartCounts", 400, 500, 3000)
	d.Identifier = 5
	d.Continuation = 0

	var buf bytes.Buffer
	w, err := dmv.Create(&buf, dmv.Header{History: "h", TOCSize: dmv.TOCMultiple},
		dmv.TableOfContents{Descriptors: []dmv.Descriptor{d}})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	toc := open(t, buf.Bytes(), "110602F1.CXV").TOC()

	require.Len(t, toc.Descriptors, 1)
	assert.Equal(t, 5, toc.DependentVariables)
}

func TestTOCTruncatedString(t *testing.T) {
	b := fixture{
		tocSize:     dmv.TOCSingle,
		descriptors: []dmv.Descriptor{descriptor("mean_rad", 16, 500, 503)},
	}.bytes(t)

	// Cut inside the variable name.
	hdr := open(t, b, "160602C1.RNC").Header()
	cut := hdr.HeaderBytes + 12 + 4 + dmv.TOCSingle + 4 + 3

	_, err := dmv.Open(bytes.NewReader(b[:cut]), "160602C1.RNC")
	assert.Error(t, err)
}
