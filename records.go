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
	"github.com/elliotchance/orderedmap/v3"
	"gonum.org/v1/gonum/mat"
)

// decodeSeries slices the independent variables out of the flat record values.
// Variables are named positionally from vars; at most l.IndependentCount are decoded.
func decodeSeries(values []float32, l *Layout, vars *orderedmap.OrderedMap[string, Attributes]) []Series {
	if vars == nil {
		return nil
	}

	series := make([]Series, 0, min(l.IndependentCount, vars.Len()))
	k := 0
	for el := vars.Front(); el != nil && k < l.IndependentCount; el = el.Next() {
		s := Series{
			Name:       el.Key,
			Values:     make([]float32, l.Records),
			Attributes: el.Value,
		}
		for r := range s.Values {
			s.Values[r] = values[r*l.ValuesPerRecord+l.IndependentOffset+k]
		}
		series = append(series, s)
		k++
	}
	return series
}

// decodeSpectra builds one records x points cube per decoded descriptor, where
// points is the length of the grid the descriptor is assigned to.
func decodeSpectra(values []float32, l *Layout, grids []*Grid, vars *orderedmap.OrderedMap[string, Attributes]) ([]Spectrum, error) {
	spectra := make([]Spectrum, 0, len(l.Descriptors))
	for i, d := range l.Descriptors {
		offset, grid := l.DataOffsets[i], grids[i]
		width := grid.Len()
		if width == 0 {
			return nil, formatError("records", nil, "variable %q has no values", d.Name)
		}
		if offset+width > l.ValuesPerRecord {
			return nil, formatError("records", nil, "variable %q at offset %d with %d values overruns a %d value record",
				d.Name, offset, width, l.ValuesPerRecord)
		}

		data := mat.NewDense(l.Records, width, nil)
		row := make([]float64, width)
		for r := 0; r < l.Records; r++ {
			start := r*l.ValuesPerRecord + offset
			for j, v := range values[start : start+width] {
				row[j] = float64(v)
			}
			data.SetRow(r, row)
		}

		spectra = append(spectra, Spectrum{
			Name:       d.Name,
			Data:       data,
			Grid:       grid,
			Attributes: dependentAttributes(d, vars),
		})
	}
	return spectra, nil
}

// dependentAttributes prefers the attributes decoded from the TOC and falls
// back to the catalog for anything the TOC left empty.
func dependentAttributes(d Descriptor, vars *orderedmap.OrderedMap[string, Attributes]) Attributes {
	attrs := Attributes{LongName: d.LongName, Units: d.Units, Precision: d.Precision}
	if vars == nil {
		return attrs
	}
	if c, ok := vars.Get(d.Name); ok {
		if attrs.LongName == "" {
			attrs.LongName = c.LongName
		}
		if attrs.Units == "" {
			attrs.Units = c.Units
		}
		if attrs.Precision == "" {
			attrs.Precision = c.Precision
		}
	}
	return attrs
}
