// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package workbench

import (
	"context"
	"errors"
	"fmt"

	"github.com/Thermoquad/uartbench/pkg/errdb"
	"github.com/Thermoquad/uartbench/pkg/notify"
)

// RefreshDirectory downloads the directory in the background. The outcome
// is published as a DirectoryRefreshed event and also delivered on the
// returned channel, which is closed afterwards.
func (w *Workbench) RefreshDirectory(ctx context.Context) <-chan errdb.RefreshOutcome {
	w.setStatus("Downloading database...", true)

	out := make(chan errdb.RefreshOutcome, 1)
	go func() {
		defer close(out)
		outcome := <-w.dir.RefreshAsync(ctx)

		switch {
		case outcome.Err == nil:
			w.setStatus("Offline database updated successfully.", true)
			w.publish(notify.DirectoryRefreshed, w.dir.Path(), true)
		case errors.Is(outcome.Err, errdb.ErrStorage):
			w.setStatus("Error: Could not save database file: "+outcome.Err.Error(), false)
			w.raise("Database Error", "Could not save database file: "+outcome.Err.Error())
			w.publish(notify.DirectoryRefreshed, outcome.Err.Error(), false)
		default:
			w.setStatus("Error downloading database: "+outcome.Err.Error(), false)
			w.raise("Network Error", "Error downloading database: "+outcome.Err.Error())
			w.publish(notify.DirectoryRefreshed, outcome.Err.Error(), false)
		}

		out <- outcome
	}()
	return out
}

// LookupOffline resolves code against the local snapshot
func (w *Workbench) LookupOffline(code string) (errdb.Result, error) {
	result, err := w.dir.LookupOffline(code)
	switch {
	case err == nil && result.Found:
		w.setStatus("Error code "+code+" found: "+result.Description, true)
	case err == nil:
		w.setStatus("Error code "+code+" not found in local database.", true)
	case errors.Is(err, errdb.ErrDirectoryMissing):
		w.setStatus("Error: Local database file not found.", false)
		w.raise("Database Error", "Local database (errorDB.xml) not found. Please download it first.")
	case errors.Is(err, errdb.ErrDirectoryCorrupt):
		w.setStatus("Error parsing XML: "+err.Error(), false)
		w.raise("Database Error", "Error parsing local database XML: "+err.Error())
	default:
		w.setStatus("Error: Could not open local database file: "+err.Error(), false)
		w.raise("Database Error", "Could not open local database file: "+err.Error())
	}
	return result, err
}

// LookupOnline queries the directory service in the background. The
// outcome is published as an OnlineResult event and also delivered on the
// returned channel, which is closed afterwards.
func (w *Workbench) LookupOnline(ctx context.Context, code string) <-chan errdb.LookupOutcome {
	out := make(chan errdb.LookupOutcome, 1)

	if code == "" {
		w.setStatus("Please enter an error code.", false)
		w.raise("Lookup Error", "Please enter an error code.")
		out <- errdb.LookupOutcome{Err: errdb.ErrInvalidInput}
		close(out)
		return out
	}

	w.setStatus("Looking up "+code+" online...", true)
	go func() {
		defer close(out)
		outcome := <-w.dir.LookupOnlineAsync(ctx, code)

		switch {
		case outcome.Err == nil && outcome.Result.Found:
			message := fmt.Sprintf("Error code %s found online: %s", outcome.Result.Code, outcome.Result.Description)
			w.setStatus(message, true)
			w.publish(notify.OnlineResult, message, true)
		case outcome.Err == nil:
			message := "Error code " + outcome.Result.Code + " not found online."
			w.setStatus(message, true)
			w.publish(notify.OnlineResult, message, true)
		case errors.Is(outcome.Err, errdb.ErrDirectoryCorrupt):
			w.setStatus("Error parsing online reply: "+outcome.Err.Error(), false)
			w.raise("Database Error", "Error parsing online reply: "+outcome.Err.Error())
			w.publish(notify.OnlineResult, outcome.Err.Error(), false)
		default:
			w.setStatus("Error looking up error code online: "+outcome.Err.Error(), false)
			w.raise("Network Error", "Error looking up "+code+" online: "+outcome.Err.Error())
			w.publish(notify.OnlineResult, outcome.Err.Error(), false)
		}

		out <- outcome
	}()
	return out
}
