// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	"github.com/Thermoquad/uartbench/pkg/errlog"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Read the board's error log",
	Long: fmt.Sprintf(`Read every error log slot (errlog %d through errlog %d) and print each
command with the board's reply.

A slot that fails or answers NG does not stop the read; the remaining slots
are still collected.

Exit codes:
  0 - All slots read
  1 - One or more slots failed
  2 - Connection error`, errlog.FirstSlot, errlog.LastSlot),
	RunE: runLogs,
}

var clearLogsCmd = &cobra.Command{
	Use:   "clear-logs",
	Short: "Clear the board's error log",
	Long: `Send "errlog clear" and print the board's reply.

Exit codes:
  0 - Board acknowledged
  1 - Command failed or board answered NG
  2 - Connection error`,
	RunE: runClearLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(clearLogsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	wb, info := connectOrExit()
	defer wb.Close()

	fmt.Printf("uartbench - Error Log\n")
	fmt.Printf("Connection: %s\n\n", info)

	report, err := wb.CollectLogs()
	if err != nil {
		return err
	}

	fmt.Print(report.String())

	if report.PartialFailure {
		fmt.Fprintf(os.Stderr, "%s\n", wb.Status())
		wb.Close()
		os.Exit(exitFailed)
	}
	return nil
}

func runClearLogs(cmd *cobra.Command, args []string) error {
	wb, _ := connectOrExit()
	defer wb.Close()

	response, err := wb.ClearLogs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", wb.Status())
		wb.Close()
		os.Exit(exitFailed)
	}

	fmt.Println(response)
	if errlog.IsFailure(response) {
		wb.Close()
		os.Exit(exitFailed)
	}
	return nil
}
