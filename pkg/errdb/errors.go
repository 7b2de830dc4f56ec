// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package errdb

import "errors"

var (
	// ErrInvalidInput is returned for an empty lookup code
	ErrInvalidInput = errors.New("invalid error code")

	// ErrDirectoryMissing means the local snapshot has not been downloaded
	ErrDirectoryMissing = errors.New("local database (errorDB.xml) not found, please download it first")

	// ErrDirectoryUnreadable means the snapshot exists but cannot be opened
	ErrDirectoryUnreadable = errors.New("local database could not be opened")

	// ErrDirectoryCorrupt means the XML stream could not be parsed
	ErrDirectoryCorrupt = errors.New("error code database is corrupt")

	// ErrNetwork covers transport failures and non-2xx replies from the service
	ErrNetwork = errors.New("network error")

	// ErrStorage means the downloaded snapshot could not be written
	ErrStorage = errors.New("could not save error code database")
)
