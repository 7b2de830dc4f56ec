// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// uartbench - debug UART workbench
//
// A CLI tool for talking to a console's debug UART, reading and clearing its
// error log, resolving error codes and editing NOR dumps.

package main

import (
	"os"

	"github.com/Thermoquad/uartbench/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
