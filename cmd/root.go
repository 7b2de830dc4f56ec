// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/uartbench/pkg/config"
	"github.com/Thermoquad/uartbench/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string

	// WebSocket bridge flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Directory flags
	snapshotPath string
	serviceURL   string

	configPath string
	logLevel   string

	settings config.Config
	logger   zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "uartbench",
	Short: "PS5 debug UART workbench",
	Long: `uartbench - A CLI tool for the PS5 motherboard debug UART.

Sends checksummed commands to the board, collects and clears its error log,
resolves error codes against the uartcodes.com directory (offline snapshot or
online query), and round-trips NOR dump files through an editable hex view.

Connection modes:
  Serial:    --port /dev/ttyUSB0 (115200 8N1)
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the UARTBENCH_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.

Settings are read from the config file (default: <user config dir>/uartbench/config.toml).
Flags override the file.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket bridge URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Directory flags
	rootCmd.PersistentFlags().StringVar(&snapshotPath, "db", "", "Path to the local error code database (errorDB.xml)")
	rootCmd.PersistentFlags().StringVar(&serviceURL, "service", "", "Error code directory service URL")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error, off)")
}

// loadSettings merges the config file under the command-line flags
func loadSettings(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if portName != "" {
		cfg.Port = portName
	}
	if wsURL != "" {
		cfg.Bridge.URL = wsURL
	}
	if wsUsername != "" {
		cfg.Bridge.Username = wsUsername
	}
	if wsNoSSLVerify {
		cfg.Bridge.NoSSLVerify = true
	}
	if snapshotPath != "" {
		cfg.Snapshot = snapshotPath
	}
	if serviceURL != "" {
		cfg.ServiceURL = serviceURL
	}
	if cfg.Snapshot == "" {
		return fmt.Errorf("no database path: set --db or snapshot in %s", path)
	}

	settings = cfg
	logger = logging.New(logging.Options{FlagLevel: logLevel, ConfigLevel: cfg.LogLevel})
	logger.Debug().Str("config", path).Str("db", cfg.Snapshot).Msg("settings loaded")
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
