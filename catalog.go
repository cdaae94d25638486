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

	"github.com/elliotchance/orderedmap/v3"
	"gopkg.in/yaml.v3"
)

// Catalog supplies, per file type, the ordered housekeeping variables found
// at the start of the independent block of every record.
type Catalog interface {
	IndependentVariables(t FileType) (*orderedmap.OrderedMap[string, Attributes], error)
}

// StaticCatalog is an in-memory Catalog.
type StaticCatalog map[FileType]*orderedmap.OrderedMap[string, Attributes]

// IndependentVariables returns the variables registered for t.
func (c StaticCatalog) IndependentVariables(t FileType) (*orderedmap.OrderedMap[string, Attributes], error) {
	vars, ok := c[t]
	if !ok {
		return nil, fmt.Errorf("catalog has no variables for file type %s", t)
	}
	return vars, nil
}

// CatalogEntry is one variable of a catalog file.
type CatalogEntry struct {
	Name       string `yaml:"name"`
	Attributes `yaml:",inline"`
}

// Add appends variables for t, in order. Names must be unique per file type.
func (c StaticCatalog) Add(t FileType, entries ...CatalogEntry) error {
	vars, ok := c[t]
	if !ok {
		vars = orderedmap.NewOrderedMap[string, Attributes]()
		c[t] = vars
	}
	for _, e := range entries {
		if e.Name == "" {
			return fmt.Errorf("catalog entry for %s has no name", t)
		}
		if _, dup := vars.Get(e.Name); dup {
			return fmt.Errorf("duplicate catalog variable %q for %s", e.Name, t)
		}
		vars.Set(e.Name, e.Attributes)
	}
	return nil
}

// LoadCatalog reads a YAML catalog of the form
//
//	RNC:
//	  - name: Time
//	    longname: Time (UTC) in hours
//	    units: hours
//	    precision: 1E-4
//
// keeping the order of each list.
func LoadCatalog(r io.Reader) (StaticCatalog, error) {
	var doc map[string][]CatalogEntry
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("error parsing catalog: %w", err)
	}

	c := StaticCatalog{}
	for key, entries := range doc {
		t, err := ParseFileType(key)
		if err != nil {
			return nil, fmt.Errorf("error parsing catalog: %w", err)
		}
		if err := c.Add(t, entries...); err != nil {
			return nil, fmt.Errorf("error parsing catalog: %w", err)
		}
	}
	return c, nil
}

// LoadCatalogFile reads a YAML catalog from disk.
func LoadCatalogFile(path string) (StaticCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening catalog: %w", err)
	}
	defer f.Close()

	return LoadCatalog(f)
}
