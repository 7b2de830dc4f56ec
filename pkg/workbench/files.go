// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package workbench

import (
	"errors"

	"github.com/Thermoquad/uartbench/pkg/norfile"
	"github.com/Thermoquad/uartbench/pkg/notify"
)

// LoadFile reads a NOR dump and derives its hex view
func (w *Workbench) LoadFile(path string) (*norfile.Buffer, error) {
	buf, err := norfile.Load(path, w.codec)
	if err != nil {
		w.setStatus("Error: Could not open file: "+err.Error(), false)
		w.raise("File Error", "Could not open file: "+err.Error())
		return nil, err
	}

	w.setStatus("File opened successfully: "+buf.Path, true)
	w.publish(notify.FileOpened, buf.Path, true)
	return buf, nil
}

// SaveFile decodes hexText and writes it to path
func (w *Workbench) SaveFile(path, hexText string) error {
	path = norfile.CleanPath(path)
	if err := norfile.Save(path, hexText); err != nil {
		w.fileWriteFailed(err)
		return err
	}

	w.setStatus("File saved successfully: "+path, true)
	return nil
}

// SaveModified applies mods to original through the codec and writes the
// result to dst
func (w *Workbench) SaveModified(dst, original string, mods norfile.Modifications) error {
	dst = norfile.CleanPath(dst)
	if err := norfile.SaveModified(dst, original, mods, w.codec); err != nil {
		w.fileWriteFailed(err)
		return err
	}

	w.setStatus("File saved successfully: "+dst, true)
	return nil
}

func (w *Workbench) fileWriteFailed(err error) {
	if errors.Is(err, norfile.ErrMalformedHex) {
		w.setStatus("Error: Invalid hex data: "+err.Error(), false)
		w.raise("File Error", "Invalid hex data: "+err.Error())
		return
	}
	w.setStatus("Error: Could not write to file: "+err.Error(), false)
	w.raise("File Error", "Could not write to file: "+err.Error())
}
