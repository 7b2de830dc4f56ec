// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	"github.com/Thermoquad/uartbench/pkg/uart"
	"github.com/spf13/cobra"
)

var portsDetails bool

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Long: `List the serial ports available on this machine.

With --details, USB ports also show their VID:PID, serial number and product
name, which helps tell several adapters apart.`,
	RunE: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
	portsCmd.Flags().BoolVar(&portsDetails, "details", false, "Show USB details")
}

func runPorts(cmd *cobra.Command, args []string) error {
	if portsDetails {
		return printDetailedPorts()
	}

	wb := newWorkbench()
	defer wb.Close()

	ports, err := wb.ListPorts()
	if err != nil {
		return err
	}

	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}

	for _, name := range ports {
		marker := " "
		if name == wb.Session().Selected() {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, name)
	}
	return nil
}

func printDetailedPorts() error {
	ports, err := uart.DetailedPorts()
	if err != nil {
		return err
	}

	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}

	for _, p := range ports {
		fmt.Printf("%s\n", p.Name)
		if !p.IsUSB {
			continue
		}
		fmt.Printf("  USB ID:  %s:%s\n", p.VID, p.PID)
		if p.SerialNumber != "" {
			fmt.Printf("  Serial:  %s\n", p.SerialNumber)
		}
		if p.Product != "" {
			fmt.Printf("  Product: %s\n", p.Product)
		}
	}

	fmt.Fprintf(os.Stderr, "\n%d port(s)\n", len(ports))
	return nil
}
