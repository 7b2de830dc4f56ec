// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Thermoquad/uartbench/pkg/errdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, errdb.DefaultServiceURL, cfg.ServiceURL)
}

func TestLoad_OverridesOnlyDefinedKeys(t *testing.T) {
	path := writeConfig(t, `
port = "/dev/ttyUSB1"
log_level = "debug"

[bridge]
url = "wss://bench.local/uart"
username = "bench"
no_ssl_verify = true
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB1", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, errdb.DefaultServiceURL, cfg.ServiceURL)
	assert.Equal(t, Default().Snapshot, cfg.Snapshot)
	assert.Equal(t, Bridge{URL: "wss://bench.local/uart", Username: "bench", NoSSLVerify: true}, cfg.Bridge)
}

func TestLoad_ServiceAndSnapshot(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	path := writeConfig(t, `
service_url = "http://localhost:8080/xml.php"
snapshot = "~/dumps/errorDB.xml"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/xml.php", cfg.ServiceURL)
	assert.Equal(t, filepath.Join(home, "dumps", "errorDB.xml"), cfg.Snapshot)
}

func TestLoad_EmptyServiceURLKeepsDefault(t *testing.T) {
	cfg, err := Load(writeConfig(t, `service_url = ""`))

	require.NoError(t, err)
	assert.Equal(t, errdb.DefaultServiceURL, cfg.ServiceURL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax error", `port = `, "load config"},
		{"unknown key", `baud = 9600`, `unknown key "baud"`},
		{"wrong type", `port = 3`, "load config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
