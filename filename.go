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
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FileType is the DMV variant, selected by the file name suffix.
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeRNC              // Calibrated radiances
	FileTypeRFC              // Forward/backward scan radiances
	FileTypeRLC              // Scan direction averaged radiances
	FileTypeCXS              // Complex spectra, channel data
	FileTypeCXV              // Complex spectra, averaged
	FileTypeSUM              // Daily summary
)

var fileTypeNames = map[FileType]string{
	FileTypeRNC: "RNC",
	FileTypeRFC: "RFC",
	FileTypeRLC: "RLC",
	FileTypeCXS: "CXS",
	FileTypeCXV: "CXV",
	FileTypeSUM: "SUM",
}

func (t FileType) String() string {
	if s, ok := fileTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParseFileType maps a case insensitive suffix (with or without the dot) to a FileType.
func ParseFileType(suffix string) (FileType, error) {
	s := strings.ToUpper(strings.TrimPrefix(suffix, "."))
	for t, name := range fileTypeNames {
		if name == s {
			return t, nil
		}
	}
	return FileTypeUnknown, formatError("file type", ErrUnknownFileType, "unrecognized suffix %q", suffix)
}

// ScanDirection is the interferometer scan direction encoded in the file name.
type ScanDirection int

const (
	ScanBoth ScanDirection = iota
	ScanForward
	ScanBackward
)

func (s ScanDirection) String() string {
	switch s {
	case ScanForward:
		return "Forward"
	case ScanBackward:
		return "Backward"
	default:
		return "Both"
	}
}

// Name holds the tokens encoded in a DMV file name such as "160602C1.RNC".
type Name struct {
	Base    string        // File name without directories
	Stem    string        // Base without the suffix
	Type    FileType      // From the suffix
	Channel string        // Last character of the stem
	Scan    ScanDirection // From the second to last character of the stem
	Date    time.Time     // From the first six characters of the stem, YYMMDD
	DateInt int           // The same six digits as an integer
}

// ParseName extracts the file type, channel, scan direction and date from a file name.
// Two digit years are always placed in the 2000s.
func ParseName(name string) (Name, error) {
	n := Name{Base: filepath.Base(name)}

	ext := filepath.Ext(n.Base)
	n.Stem = strings.TrimSuffix(n.Base, ext)

	var err error
	if n.Type, err = ParseFileType(ext); err != nil {
		return Name{}, err
	}

	if len(n.Stem) < 6 {
		return Name{}, formatError("file name", nil, "%q does not start with a YYMMDD date", n.Base)
	}
	digits := n.Stem[:6]
	n.Date, err = time.Parse("20060102", "20"+digits)
	if err != nil {
		return Name{}, formatError("file name", err, "error parsing date %q", digits)
	}
	n.DateInt, err = strconv.Atoi(digits)
	if err != nil {
		return Name{}, formatError("file name", err, "error parsing date %q", digits)
	}

	if len(n.Stem) >= 1 {
		n.Channel = n.Stem[len(n.Stem)-1:]
	}
	if len(n.Stem) >= 2 {
		switch n.Stem[len(n.Stem)-2] {
		case 'F', 'f':
			n.Scan = ScanForward
		case 'B', 'b':
			n.Scan = ScanBackward
		}
	}

	return n, nil
}
