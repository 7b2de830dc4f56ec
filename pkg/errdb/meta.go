// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package errdb

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// metaSuffix replaces the snapshot extension for the sidecar file
const metaSuffix = ".meta"

// Metadata describes the last successful refresh. It is stored next to the
// snapshot as a CBOR map with integer keys.
type Metadata struct {
	SourceURL    string    `cbor:"1,keyasint"`
	DownloadedAt time.Time `cbor:"2,keyasint"`
	Size         int64     `cbor:"3,keyasint"`
	SHA256       []byte    `cbor:"4,keyasint"`
}

// Checksum returns the snapshot SHA-256 as lowercase hex
func (m Metadata) Checksum() string {
	return hex.EncodeToString(m.SHA256)
}

// Info returns the metadata of the current snapshot. ErrDirectoryMissing
// means no snapshot exists; a snapshot without a sidecar (copied in by
// hand) yields metadata with only Size set.
func (d *Directory) Info() (Metadata, error) {
	st, err := os.Stat(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Metadata{}, ErrDirectoryMissing
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrDirectoryUnreadable, err)
	}

	meta, err := readMetadata(metaPath(d.path))
	if errors.Is(err, fs.ErrNotExist) {
		return Metadata{Size: st.Size()}, nil
	}
	if err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

func metaPath(snapshot string) string {
	return strings.TrimSuffix(snapshot, ".xml") + metaSuffix
}

func writeMetadata(path string, meta Metadata) error {
	data, err := cbor.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

func readMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, err
	}

	var meta Metadata
	if err := cbor.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return meta, nil
}
