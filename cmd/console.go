// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"

	"github.com/Thermoquad/uartbench/pkg/uart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive UART console",
	Long: `Interactive console for the debug UART.

The left panel lists serial ports; press Enter on one to connect. Type a raw
command (for example "errlog 0") and press Enter to send it. Lines starting
with "/" are console commands:

  /ports            Refresh the port list
  /connect [port]   Connect to the selected (or given) port
  /disconnect       Close the port
  /logs             Read the whole error log
  /clear            Clear the error log
  /lookup <code>    Resolve a code in the local database
  /online <code>    Resolve a code online
  /refresh          Download the error code database
  /stats            Show exchange statistics
  /quit             Exit

Long operations run in the background; the status line shows the latest
outcome.`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	wb := newWorkbench()
	defer wb.Close()

	if name := target(); name != "" {
		// The TUI owns the terminal once it starts
		if uart.IsBridgeURL(name) && settings.Bridge.Username != "" {
			if _, err := resolveBridgePassword(); err != nil {
				return err
			}
		}
		wb.SelectPort(name)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, unsubscribe := wb.Events(64)

	m := initialConsoleModel(ctx, wb)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Forward workbench events into the UI loop
	go func() {
		for e := range events {
			p.Send(eventMsg(e))
		}
	}()

	_, err := p.Run()
	unsubscribe()
	if err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}
