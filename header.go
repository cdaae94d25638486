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
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const (
	identifierBytes = 12
	// maxLengthLine is the longest first line accepted before giving up on a header.
	maxLengthLine = 32
	// maxStringBytes bounds a single length prefixed TOC string.
	maxStringBytes = 1 << 16
)

// readHeader parses the size prefixed header text, the identifier and the TOC size.
// On return br is positioned at the first TOC entry.
func readHeader(r io.ReadSeeker, fileBytes int64) (*Header, *binaryReader, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("error seeking to header: %w", err)
	}

	headerBytes, err := readLengthLine(bufio.NewReader(r))
	if err != nil {
		return nil, nil, err
	}
	if int64(headerBytes)+identifierBytes+4 > fileBytes {
		return nil, nil, fmt.Errorf("error reading header text: header length %d exceeds the %d byte file: %w",
			headerBytes, fileBytes, io.ErrUnexpectedEOF)
	}

	// The history text includes the length line itself.
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("error seeking to header: %w", err)
	}
	br := newBinaryReader(r)

	history, err := br.readBytes(headerBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading header text: %w", err)
	}

	id, err := br.readBytes(identifierBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading identifier: %w", err)
	}

	tocSize, err := br.readInt32()
	if err != nil {
		return nil, nil, fmt.Errorf("error reading toc size: %w", err)
	}

	return &Header{
		HeaderBytes: headerBytes,
		History:     string(history),
		Identifier:  string(id),
		TOCSize:     int(tocSize),
	}, br, nil
}

func readLengthLine(r *bufio.Reader) (int, error) {
	var line []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("error reading header length: %w", err)
		}
		if b == '\n' {
			break
		}
		line = append(line, b)
		if len(line) > maxLengthLine {
			return 0, formatError("header", nil, "no line terminator in the first %d bytes", maxLengthLine)
		}
	}

	n, err := strconv.Atoi(strings.TrimSpace(string(line)))
	if err != nil {
		return 0, formatError("header", err, "header length %q is not an integer", line)
	}
	if n <= len(line) {
		return 0, formatError("header", nil, "header length %d is shorter than its own length line", n)
	}
	return n, nil
}

// binaryReader reads little endian fields and keeps track of its offset.
type binaryReader struct {
	r   *bufio.Reader
	pos int64
	buf [8]byte
}

func newBinaryReader(r io.Reader) *binaryReader {
	return &binaryReader{r: bufio.NewReader(r)}
}

func (br *binaryReader) readBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, formatError("read", nil, "negative length %d", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(br.r, b); err != nil {
		return nil, unexpectedEOF(err)
	}
	br.pos += int64(n)
	return b, nil
}

func (br *binaryReader) readInt32() (int32, error) {
	if _, err := io.ReadFull(br.r, br.buf[:4]); err != nil {
		return 0, unexpectedEOF(err)
	}
	br.pos += 4
	return int32(binary.LittleEndian.Uint32(br.buf[:4])), nil
}

func (br *binaryReader) readFloat64() (float64, error) {
	if _, err := io.ReadFull(br.r, br.buf[:8]); err != nil {
		return 0, unexpectedEOF(err)
	}
	br.pos += 8
	return math.Float64frombits(binary.LittleEndian.Uint64(br.buf[:8])), nil
}

// readString reads an int32 length followed by that many bytes of UTF-8.
func (br *binaryReader) readString() (string, error) {
	n, err := br.readInt32()
	if err != nil {
		return "", err
	}
	if n < 0 || n > maxStringBytes {
		return "", formatError("toc", nil, "string length %d out of range", n)
	}
	b, err := br.readBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// readFloat32s reads exactly n little endian float32 values.
func (br *binaryReader) readFloat32s(n int) ([]float32, error) {
	raw, err := br.readBytes(n * 4)
	if err != nil {
		return nil, err
	}
	values := make([]float32, n)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return values, nil
}

// Running out of bytes part way through a field is never a clean end of file.
func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
