// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// dmvdump prints the structure and contents of a DMV file.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/OpenPSG/dmv"
	"github.com/spf13/cobra"
)

var (
	catalogPath  string
	recordLimit  int
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "dmvdump [file]",
	Short: "Display the contents of a DMV instrument data file",
	Long: `dmvdump decodes a DMV file and prints its header, table of contents and
record layout. With a catalog of housekeeping variables it also decodes
the time series and spectra.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dump(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.Flags().StringVarP(&catalogPath, "catalog", "c", "", "YAML catalog of housekeeping variables")
	rootCmd.Flags().IntVarP(&recordLimit, "records", "n", 5, "number of records to print per variable")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log decoding steps to stderr")
	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", "table", "output format (table, json)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func dump(w io.Writer, path string) error {
	var opts []dmv.Option
	if verbose {
		opts = append(opts, dmv.WithLogger(log.Printf))
	}

	if catalogPath == "" {
		// Structure only.
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("error opening file: %w", err)
		}
		defer f.Close()

		rd, err := dmv.Open(f, path, opts...)
		if err != nil {
			return err
		}
		s := summarize(filepath.Base(path), rd.Header(), rd.TOC(), rd.Layout())
		return render(w, s)
	}

	cat, err := dmv.LoadCatalogFile(catalogPath)
	if err != nil {
		return err
	}
	opts = append(opts, dmv.WithCatalog(cat))

	df, err := dmv.DecodeFile(path, opts...)
	if err != nil {
		return err
	}

	s := summarize(df.Name, df.Header, df.TOC, df.Layout)
	s.BaseTime = df.BaseTimeString()
	for _, series := range df.Series {
		n := max(0, min(recordLimit, len(series.Values)))
		s.Series = append(s.Series, seriesSummary{
			Name:       series.Name,
			Attributes: series.Attributes,
			Values:     series.Values[:n],
		})
	}
	for _, sp := range df.Spectra {
		rows, cols := sp.Data.Dims()
		s.Spectra = append(s.Spectra, spectrumSummary{
			Name:       sp.Name,
			Grid:       sp.Grid.Name,
			Attributes: sp.Attributes,
			Shape:      [2]int{rows, cols},
		})
	}
	return render(w, s)
}

type summary struct {
	File        string            `json:"file"`
	HeaderBytes int               `json:"header_bytes"`
	Identifier  string            `json:"identifier"`
	TOCSize     int               `json:"toc_size"`
	Descriptors []dmv.Descriptor  `json:"descriptors"`
	RecordBytes int               `json:"record_bytes"`
	Records     int               `json:"records"`
	DataOffsets []int             `json:"data_offsets"`
	Dropped     int               `json:"dropped_descriptors"`
	BaseTime    string            `json:"base_time,omitempty"`
	Series      []seriesSummary   `json:"series,omitempty"`
	Spectra     []spectrumSummary `json:"spectra,omitempty"`
}

type seriesSummary struct {
	Name       string         `json:"name"`
	Attributes dmv.Attributes `json:"attributes"`
	Values     []float32      `json:"values"`
}

type spectrumSummary struct {
	Name       string         `json:"name"`
	Grid       string         `json:"grid"`
	Attributes dmv.Attributes `json:"attributes"`
	Shape      [2]int         `json:"shape"`
}

func summarize(name string, hdr dmv.Header, toc dmv.TableOfContents, l dmv.Layout) *summary {
	return &summary{
		File:        name,
		HeaderBytes: hdr.HeaderBytes,
		Identifier:  strings.TrimSpace(hdr.Identifier),
		TOCSize:     hdr.TOCSize,
		Descriptors: toc.Descriptors,
		RecordBytes: l.RecordBytes,
		Records:     l.Records,
		DataOffsets: l.DataOffsets,
		Dropped:     len(l.DroppedDescriptors),
	}
}

func render(w io.Writer, s *summary) error {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "table":
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}

	fmt.Fprintf(w, "File:        %s\n", s.File)
	fmt.Fprintf(w, "Header:      %d bytes, identifier %q, toc size %d\n", s.HeaderBytes, s.Identifier, s.TOCSize)
	fmt.Fprintf(w, "Records:     %d of %d bytes\n", s.Records, s.RecordBytes)
	if s.BaseTime != "" {
		fmt.Fprintf(w, "Base time:   %s\n", s.BaseTime)
	}

	fmt.Fprintf(w, "\nDescriptors:\n")
	for i, d := range s.Descriptors {
		offset := "-"
		if i < len(s.DataOffsets) {
			offset = fmt.Sprint(s.DataOffsets[i])
		}
		fmt.Fprintf(w, "  %-40s %6d bytes  [%g, %g]  offset %s  %s\n",
			d.Name, d.RecordBytes, d.IndependentMinimum, d.IndependentMaximum, offset, d.Units)
	}
	if s.Dropped > 0 {
		fmt.Fprintf(w, "  (%d descriptors not decoded)\n", s.Dropped)
	}

	if len(s.Series) > 0 {
		fmt.Fprintf(w, "\nIndependent variables:\n")
		for _, series := range s.Series {
			fmt.Fprintf(w, "  %-40s %v %s\n", series.Name, series.Values, series.Attributes.Units)
		}
	}

	if len(s.Spectra) > 0 {
		fmt.Fprintf(w, "\nSpectra:\n")
		for _, sp := range s.Spectra {
			fmt.Fprintf(w, "  %-40s %d x %d on %s\n", sp.Name, sp.Shape[0], sp.Shape[1], sp.Grid)
		}
	}

	return nil
}
