// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package workbench

import (
	"github.com/Thermoquad/uartbench/pkg/errlog"
	"github.com/Thermoquad/uartbench/pkg/notify"
)

// CollectLogs reads every error log slot. It blocks for up to eleven
// exchanges.
func (w *Workbench) CollectLogs() (errlog.Report, error) {
	if !w.session.IsOpen() {
		w.setStatus("Serial port not connected.", false)
		w.raise("Log Error", "Serial port is not connected.")
		return errlog.Report{}, errlog.ErrNotConnected
	}

	w.setStatus("Collecting error logs...", true)
	report, err := errlog.CollectAll(w.session)
	if err != nil {
		w.setStatus("Error collecting logs: "+err.Error(), false)
		w.raise("Log Error", err.Error())
		return report, err
	}

	if report.PartialFailure {
		w.setStatus("Error logs collected with errors.", false)
	} else {
		w.setStatus("Error logs collected.", true)
	}
	w.publish(notify.LogsCollected, report.String(), !report.PartialFailure)
	return report, nil
}

// ClearLogs erases the board's error log
func (w *Workbench) ClearLogs() (string, error) {
	if !w.session.IsOpen() {
		w.setStatus("Serial port not connected.", false)
		w.raise("Log Error", "Serial port is not connected.")
		return "", errlog.ErrNotConnected
	}

	response, err := errlog.Clear(w.session)
	if err != nil {
		w.setStatus("Error clearing logs: "+err.Error(), false)
		w.raise("Log Error", "Could not clear error log: "+err.Error())
		w.publish(notify.LogsCleared, err.Error(), false)
		return "", err
	}

	ok := !errlog.IsFailure(response)
	w.setStatus("Clear logs response: "+response, ok)
	w.publish(notify.LogsCleared, response, ok)
	return response, nil
}
