// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package errdb

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultServiceURL serves both the full snapshot and single-code queries
	DefaultServiceURL = "http://uartcodes.com/xml.php"

	// SnapshotName is the file name of the local snapshot
	SnapshotName = "errorDB.xml"

	// AppDir is the per-user directory name
	AppDir = "uartbench"

	// queryParam carries the code in online lookups
	queryParam = "errorCode"

	defaultHTTPTimeout = 30 * time.Second
)

// Source says where a result came from
type Source int

const (
	Offline Source = iota
	Online
)

func (s Source) String() string {
	if s == Online {
		return "online"
	}
	return "offline"
}

// Result is a completed lookup. A code that is not in the directory is a
// successful lookup with Found false.
type Result struct {
	Record
	Code   string
	Found  bool
	Source Source
}

// Directory resolves error codes against a local snapshot or the online
// service
type Directory struct {
	path       string
	serviceURL string
	client     *http.Client
	log        zerolog.Logger
}

// Option configures a Directory
type Option func(*Directory)

// WithServiceURL replaces the directory service endpoint
func WithServiceURL(u string) Option {
	return func(d *Directory) {
		d.serviceURL = u
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(d *Directory) {
		d.client = c
	}
}

// WithLogger sets the directory logger
func WithLogger(l zerolog.Logger) Option {
	return func(d *Directory) {
		d.log = l
	}
}

// New creates a directory whose snapshot lives at path
func New(path string, opts ...Option) *Directory {
	d := &Directory{
		path:       path,
		serviceURL: DefaultServiceURL,
		client:     &http.Client{Timeout: defaultHTTPTimeout},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DefaultSnapshotPath returns {UserConfigDir}/uartbench/errorDB.xml
func DefaultSnapshotPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, AppDir, SnapshotName), nil
}

// Path returns the snapshot path
func (d *Directory) Path() string {
	return d.path
}

// ServiceURL returns the directory service endpoint
func (d *Directory) ServiceURL() string {
	return d.serviceURL
}

// Exists reports whether the snapshot has been downloaded
func (d *Directory) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// openSnapshot maps open failures onto the directory taxonomy
func (d *Directory) openSnapshot() (*os.File, error) {
	f, err := os.Open(d.path)
	if err == nil {
		return f, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrDirectoryMissing
	}
	return nil, fmt.Errorf("%w: %v", ErrDirectoryUnreadable, err)
}
