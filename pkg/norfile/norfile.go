// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package norfile loads NOR dump files into an editable hex view and writes
// them back.
package norfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Thermoquad/uartbench/pkg/hexcodec"
)

var (
	// ErrNotFound is returned when the file does not exist
	ErrNotFound = errors.New("file not found")

	// ErrPermissionDenied is returned when the file cannot be read or written
	ErrPermissionDenied = errors.New("permission denied")

	// ErrMalformedHex is returned when the hex view cannot be decoded
	ErrMalformedHex = hexcodec.ErrMalformedHex
)

// Buffer is a loaded file. It is not modified after Load.
type Buffer struct {
	Path    string
	Data    []byte
	Hex     string
	Details Details
}

// Load reads path and derives its hex view and codec details
func Load(path string, codec Codec) (*Buffer, error) {
	path = CleanPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mapError(err)
	}

	details, err := codec.Details(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read fields: %w", err)
	}

	return &Buffer{
		Path:    path,
		Data:    data,
		Hex:     hexcodec.Encode(data),
		Details: details,
	}, nil
}

// Save decodes hexText and writes the bytes to path. Nothing is written
// when the text does not decode.
func Save(path, hexText string) error {
	data, err := hexcodec.Decode(hexText)
	if err != nil {
		return err
	}
	return writeFile(CleanPath(path), data)
}

// SaveModified reads original, applies mods through codec and writes the
// result to dst, which may equal original
func SaveModified(dst, original string, mods Modifications, codec Codec) error {
	data, err := os.ReadFile(CleanPath(original))
	if err != nil {
		return mapError(err)
	}

	out, err := codec.Apply(data, mods)
	if err != nil {
		return fmt.Errorf("failed to apply modifications: %w", err)
	}
	return writeFile(CleanPath(dst), out)
}

// CleanPath strips a file:// URL prefix
func CleanPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "file://"); ok {
		// file:///C:/dump.bin
		if len(rest) > 2 && rest[0] == '/' && rest[2] == ':' {
			return rest[1:]
		}
		return rest
	}
	return path
}

// writeFile writes to a temporary file in the destination directory and
// renames it into place, so a failed write leaves any existing file intact
func writeFile(path string, data []byte) error {
	perm := fs.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		perm = st.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return mapError(err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return mapError(err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return mapError(err)
	}
	if err := tmp.Close(); err != nil {
		return mapError(err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return mapError(err)
	}
	return nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	default:
		return err
	}
}
