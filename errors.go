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
	"errors"
	"fmt"
)

// Common errors
var (
	ErrFormat          = errors.New("invalid DMV file")
	ErrUnknownFileType = errors.New("unknown DMV file type")
	ErrTOCSize         = errors.New("unsupported table of contents size")
	ErrNoRecords       = errors.New("no complete data records")
	ErrMissingTime     = errors.New("no Time variable in catalog")
)

// FormatError reports a structural problem with a DMV file.
type FormatError struct {
	Op  string // Decoding step that failed, e.g. "header" or "toc"
	Msg string
	Err error // Optional underlying sentinel
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("dmv: %s: %s", e.Op, e.Msg)
}

// Is reports ErrFormat for every FormatError, plus the wrapped sentinel.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat || (e.Err != nil && errors.Is(e.Err, target))
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func formatError(op string, err error, format string, args ...any) error {
	return &FormatError{Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}
