// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/Thermoquad/uartbench/pkg/errdb"
	"github.com/spf13/cobra"
)

var lookupOnline bool

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Error code database commands",
	Long: `Manage and query the error code database.

The offline database is a snapshot of the uartcodes.com directory stored as
errorDB.xml in the user config directory (override with --db). Download or
update it with "db refresh".`,
}

var dbRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Download the full error code database",
	RunE:  runDBRefresh,
}

var dbInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the local database location and download details",
	RunE:  runDBInfo,
}

var dbLookupCmd = &cobra.Command{
	Use:   "lookup <code>",
	Short: "Resolve an error code",
	Long: `Resolve an error code against the local database, or against the online
directory with --online.

A code that is not in the directory is reported but is not an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runDBLookup,
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbRefreshCmd)
	dbCmd.AddCommand(dbInfoCmd)
	dbCmd.AddCommand(dbLookupCmd)
	dbLookupCmd.Flags().BoolVar(&lookupOnline, "online", false, "Query the online directory")
}

func runDBRefresh(cmd *cobra.Command, args []string) error {
	wb := newWorkbench()
	defer wb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Downloading %s\n", wb.Directory().ServiceURL())
	outcome := <-wb.RefreshDirectory(ctx)
	if outcome.Err != nil {
		return errors.New(wb.Status())
	}

	fmt.Println(wb.Status())
	printMetadata(wb.Directory().Path(), outcome.Meta)
	return nil
}

func runDBInfo(cmd *cobra.Command, args []string) error {
	dir := errdb.New(settings.Snapshot, errdb.WithServiceURL(settings.ServiceURL))

	meta, err := dir.Info()
	if errors.Is(err, errdb.ErrDirectoryMissing) {
		fmt.Printf("Path:    %s\n", dir.Path())
		fmt.Printf("Status:  not downloaded (run \"uartbench db refresh\")\n")
		return nil
	}
	if err != nil {
		return err
	}

	printMetadata(dir.Path(), meta)
	return nil
}

func printMetadata(path string, meta errdb.Metadata) {
	fmt.Printf("Path:    %s\n", path)
	fmt.Printf("Size:    %d bytes\n", meta.Size)
	if meta.SourceURL != "" {
		fmt.Printf("Source:  %s\n", meta.SourceURL)
	}
	if !meta.DownloadedAt.IsZero() {
		fmt.Printf("Updated: %s\n", meta.DownloadedAt.Local().Format(time.DateTime))
	}
	if len(meta.SHA256) > 0 {
		fmt.Printf("SHA-256: %s\n", meta.Checksum())
	}
}

func runDBLookup(cmd *cobra.Command, args []string) error {
	wb := newWorkbench()
	defer wb.Close()

	code := args[0]
	var result errdb.Result
	var err error
	if lookupOnline {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		outcome := <-wb.LookupOnline(ctx, code)
		result, err = outcome.Result, outcome.Err
	} else {
		result, err = wb.LookupOffline(code)
	}
	if err != nil {
		return errors.New(wb.Status())
	}

	if !result.Found {
		fmt.Println(wb.Status())
		return nil
	}

	fmt.Printf("Code:        %s\n", result.Record.Code)
	fmt.Printf("Description: %s\n", result.Description)
	fmt.Printf("Source:      %s\n", result.Source)
	return nil
}
