// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads the optional uartbench.toml settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Thermoquad/uartbench/pkg/errdb"
)

// FileName is the config file inside the per-user app directory
const FileName = "config.toml"

// Config holds settings read from disk. Command-line flags override it.
type Config struct {
	Port       string
	ServiceURL string
	Snapshot   string
	LogLevel   string
	Bridge     Bridge
}

// Bridge configures the WebSocket serial bridge
type Bridge struct {
	URL         string
	Username    string
	NoSSLVerify bool
}

type fileConfig struct {
	Port       string     `toml:"port"`
	ServiceURL string     `toml:"service_url"`
	Snapshot   string     `toml:"snapshot"`
	LogLevel   string     `toml:"log_level"`
	Bridge     fileBridge `toml:"bridge"`
}

type fileBridge struct {
	URL         string `toml:"url"`
	Username    string `toml:"username"`
	NoSSLVerify bool   `toml:"no_ssl_verify"`
}

// Default returns the built-in settings
func Default() Config {
	cfg := Config{ServiceURL: errdb.DefaultServiceURL}
	if path, err := errdb.DefaultSnapshotPath(); err == nil {
		cfg.Snapshot = path
	}
	return cfg
}

// DefaultPath returns {UserConfigDir}/uartbench/config.toml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, errdb.AppDir, FileName), nil
}

// Load reads path over the defaults. A missing file yields the defaults;
// only keys present in the file override them.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}

	if meta.IsDefined("port") {
		cfg.Port = strings.TrimSpace(raw.Port)
	}
	if meta.IsDefined("service_url") {
		if v := strings.TrimSpace(raw.ServiceURL); v != "" {
			cfg.ServiceURL = v
		}
	}
	if meta.IsDefined("snapshot") {
		if v := strings.TrimSpace(raw.Snapshot); v != "" {
			cfg.Snapshot = expandHome(v)
		}
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("bridge", "url") {
		cfg.Bridge.URL = strings.TrimSpace(raw.Bridge.URL)
	}
	if meta.IsDefined("bridge", "username") {
		cfg.Bridge.Username = strings.TrimSpace(raw.Bridge.Username)
	}
	if meta.IsDefined("bridge", "no_ssl_verify") {
		cfg.Bridge.NoSSLVerify = raw.Bridge.NoSSLVerify
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}

	return cfg, nil
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
