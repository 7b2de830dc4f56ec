// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/Thermoquad/uartbench/pkg/errdb"
	"github.com/Thermoquad/uartbench/pkg/uart"
	"github.com/Thermoquad/uartbench/pkg/workbench"
	"golang.org/x/term"
)

// Exit codes shared by the commands
const (
	exitFailed          = 1
	exitConnectionError = 2
)

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	// First check environment variable
	if pw := os.Getenv("UARTBENCH_PASSWORD"); pw != "" {
		return pw, nil
	}

	// Prompt user for password (hide input)
	fmt.Fprint(os.Stderr, "Password: ")

	// Read password without echo
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr) // newline after password
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr) // newline after password
	return string(passwordBytes), nil
}

// bridgePassword is cached after the first prompt
var bridgePassword string

// resolveBridgePassword prompts once for the bridge password
func resolveBridgePassword() (string, error) {
	if bridgePassword == "" {
		pw, err := GetPassword()
		if err != nil {
			return "", err
		}
		bridgePassword = pw
	}
	return bridgePassword, nil
}

// bridgeOpener opens bridge URLs and serial devices. The password prompt
// is deferred until a bridge that needs it is actually dialed.
func bridgeOpener() uart.Opener {
	return func(name string) (uart.Port, error) {
		cfg := uart.BridgeConfig{
			Username:      settings.Bridge.Username,
			SkipTLSVerify: settings.Bridge.NoSSLVerify,
		}
		if uart.IsBridgeURL(name) && cfg.Username != "" {
			pw, err := resolveBridgePassword()
			if err != nil {
				return nil, err
			}
			cfg.Password = pw
		}
		return uart.DialOpener(cfg)(name)
	}
}

// newWorkbench builds a workbench from the merged settings without opening
// a port
func newWorkbench() *workbench.Workbench {
	dir := errdb.New(settings.Snapshot,
		errdb.WithServiceURL(settings.ServiceURL),
		errdb.WithLogger(logger.With().Str("component", "errdb").Logger()),
	)

	return workbench.New(dir,
		workbench.WithLogger(logger.With().Str("component", "workbench").Logger()),
		workbench.WithSessionOptions(uart.WithOpener(bridgeOpener())),
	)
}

// target returns the port to open: the bridge URL wins over the serial port
func target() string {
	if settings.Bridge.URL != "" {
		return settings.Bridge.URL
	}
	return settings.Port
}

// connInfo describes the open connection for command headers
func connInfo(name string) string {
	if uart.IsBridgeURL(name) {
		return fmt.Sprintf("WebSocket: %s", name)
	}
	return fmt.Sprintf("Serial: %s @ %d baud", name, uart.BaudRate)
}

// openWorkbench builds a workbench and connects it. Without a configured
// port the first enumerated port is used.
func openWorkbench() (*workbench.Workbench, string, error) {
	wb := newWorkbench()

	if name := target(); name != "" {
		wb.SelectPort(name)
	} else if _, err := wb.ListPorts(); err != nil {
		wb.Close()
		return nil, "", err
	}

	if err := wb.Connect(); err != nil {
		wb.Close()
		return nil, "", err
	}

	return wb, connInfo(wb.Session().PortName()), nil
}

// connectOrExit opens the workbench or exits with the connection error code
func connectOrExit() (*workbench.Workbench, string) {
	wb, info, err := openWorkbench()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(exitConnectionError)
	}
	return wb, info
}
