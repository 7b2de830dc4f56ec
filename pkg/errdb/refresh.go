// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package errdb

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// RefreshOutcome is delivered by RefreshAsync
type RefreshOutcome struct {
	Meta Metadata
	Err  error
}

// Refresh downloads the full directory and replaces the snapshot. The
// download goes to a temporary file beside the snapshot, which is renamed
// over it only after the body has been read completely.
func (d *Directory) Refresh(ctx context.Context) (Metadata, error) {
	resp, err := d.get(ctx, d.serviceURL)
	if err != nil {
		return Metadata{}, err
	}
	defer resp.Body.Close()

	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	tmp, err := os.CreateTemp(dir, ".errorDB-*.tmp")
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	hash := sha256.New()
	body := &readErrReader{r: resp.Body}
	size, err := io.Copy(io.MultiWriter(tmp, hash), body)
	if err != nil {
		tmp.Close()
		if body.err != nil {
			return Metadata{}, fmt.Errorf("%w: download interrupted: %v", ErrNetwork, body.err)
		}
		return Metadata{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := os.Rename(tmpPath, d.path); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	meta := Metadata{
		SourceURL:    d.serviceURL,
		DownloadedAt: time.Now().UTC().Truncate(time.Second),
		Size:         size,
		SHA256:       hash.Sum(nil),
	}
	if err := writeMetadata(metaPath(d.path), meta); err != nil {
		d.log.Warn().Err(err).Msg("failed to write snapshot metadata")
	}

	d.log.Info().Str("path", d.path).Int64("bytes", size).Msg("error code database updated")
	return meta, nil
}

// RefreshAsync runs Refresh in the background. The channel receives exactly
// one outcome and is then closed.
func (d *Directory) RefreshAsync(ctx context.Context) <-chan RefreshOutcome {
	out := make(chan RefreshOutcome, 1)
	go func() {
		defer close(out)
		meta, err := d.Refresh(ctx)
		out <- RefreshOutcome{Meta: meta, Err: err}
	}()
	return out
}

// readErrReader remembers read failures so they can be told apart from
// write failures after io.Copy
type readErrReader struct {
	r   io.Reader
	err error
}

func (r *readErrReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && err != io.EOF {
		r.err = err
	}
	return n, err
}
