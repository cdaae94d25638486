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
	"math"

	"gonum.org/v1/gonum/floats"
)

// SpectralGridName is the grid shared by every spectrum outside summary files.
const SpectralGridName = "wnum1"

// SummaryGridSources lists, in grid order, the descriptors that define the
// wnumsum1..wnumsum6 grids of a summary file.
var SummaryGridSources = []string{
	"ResponsivitySpectralAveragesCh1",
	"ResponsivitySpectralAveragesCh2",
	"SkyVariabilityAveragesCh1",
	"SkyVariabilityAveragesCh2",
	"SkyNENCh1",
	"SkyNENCh2",
}

// NewGrid builds the inclusive, evenly spaced wavenumber axis of a descriptor.
func NewGrid(name string, d Descriptor) *Grid {
	n := d.Points()
	values := make([]float64, n)
	switch {
	case n == 1:
		values[0] = d.IndependentMinimum
	case n > 1:
		floats.Span(values, d.IndependentMinimum, d.IndependentMaximum)
		values[n-1] = d.IndependentMaximum
	}

	return &Grid{
		Name:   name,
		Values: values,
		Attributes: Attributes{
			LongName:      "Wavenumber in reciprocal centimeters",
			Units:         "centimeter^-1",
			Precision:     formatPrecision(math.Pow10(int(d.IndependentPrecisionLog))),
			RangeOfValues: fmt.Sprintf("[ %g, %g ]", d.IndependentMinimum, d.IndependentMaximum),
		},
	}
}

// Len returns the number of wavenumbers in the grid.
func (g *Grid) Len() int {
	return len(g.Values)
}

// buildGrids returns the grids of a file and, aligned with descriptors, the
// grid each spectrum is decoded against.
func buildGrids(t FileType, descriptors []Descriptor) ([]*Grid, []*Grid, error) {
	if len(descriptors) == 0 {
		return nil, nil, nil
	}

	if t != FileTypeSUM {
		g := NewGrid(SpectralGridName, descriptors[0])
		assigned := make([]*Grid, len(descriptors))
		for i := range assigned {
			assigned[i] = g
		}
		return []*Grid{g}, assigned, nil
	}

	grids := make([]*Grid, 0, len(SummaryGridSources))
	sources := make([]Descriptor, 0, len(SummaryGridSources))
	for i, name := range SummaryGridSources {
		d, ok := findDescriptor(descriptors, name)
		if !ok {
			return nil, nil, formatError("grid", nil, "summary file has no %q variable", name)
		}
		grids = append(grids, NewGrid(fmt.Sprintf("wnumsum%d", i+1), d))
		sources = append(sources, d)
	}

	assigned := make([]*Grid, len(descriptors))
	for i, d := range descriptors {
		for j, src := range sources {
			if d.Name == src.Name {
				assigned[i] = grids[j]
				break
			}
		}
		for j, src := range sources {
			if assigned[i] == nil && sameGeometry(d, src) {
				assigned[i] = grids[j]
				break
			}
		}
		if assigned[i] == nil {
			g := NewGrid("wnum_"+d.Name, d)
			grids = append(grids, g)
			assigned[i] = g
		}
	}
	return grids, assigned, nil
}

func findDescriptor(descriptors []Descriptor, name string) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

func sameGeometry(a, b Descriptor) bool {
	return a.IndependentMinimum == b.IndependentMinimum &&
		a.IndependentMaximum == b.IndependentMaximum &&
		a.Points() == b.Points()
}
