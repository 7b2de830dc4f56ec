// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Thermoquad/uartbench/pkg/hexcodec"
	"github.com/Thermoquad/uartbench/pkg/norfile"
	"github.com/spf13/cobra"
)

var (
	norCanonical bool
	norMods      norfile.Modifications
)

var norCmd = &cobra.Command{
	Use:   "nor",
	Short: "NOR dump file commands",
	Long: `Inspect and edit NOR dump files through a hex view.

Typical round trip:
  uartbench nor dump nor.bin > nor.hex
  $EDITOR nor.hex
  uartbench nor save nor.hex nor-edited.bin`,
}

var norDumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print a dump as space-separated hex",
	Args:  cobra.ExactArgs(1),
	RunE:  runNorDump,
}

var norSaveCmd = &cobra.Command{
	Use:   "save <hex-file|-> <output>",
	Short: "Write hex text back to a binary file",
	Long: `Decode hex text (whitespace is ignored) and write the bytes to output.

Malformed hex is rejected before anything is written, so an existing output
file is left untouched.`,
	Args: cobra.ExactArgs(2),
	RunE: runNorSave,
}

var norPatchCmd = &cobra.Command{
	Use:   "patch <original> <output>",
	Short: "Apply field edits to a dump and write the result",
	Long: `Read original, apply the requested field edits and write output.

Field offsets for the NOR layout are not known yet, so edits are accepted but
the dump is written unchanged.`,
	Args: cobra.ExactArgs(2),
	RunE: runNorPatch,
}

func init() {
	rootCmd.AddCommand(norCmd)
	norCmd.AddCommand(norDumpCmd)
	norCmd.AddCommand(norSaveCmd)
	norCmd.AddCommand(norPatchCmd)

	norDumpCmd.Flags().BoolVarP(&norCanonical, "canonical", "C", false, "Offset/hex/ASCII view (read-only)")

	norPatchCmd.Flags().StringVar(&norMods.Model, "model", "", "Console model")
	norPatchCmd.Flags().StringVar(&norMods.Serial, "serial", "", "Console serial number")
	norPatchCmd.Flags().StringVar(&norMods.BoardSerial, "board-serial", "", "Motherboard serial number")
	norPatchCmd.Flags().StringVar(&norMods.WiFiMAC, "wifi-mac", "", "WiFi MAC address")
	norPatchCmd.Flags().StringVar(&norMods.EthernetMAC, "ethernet-mac", "", "Ethernet MAC address")
	norPatchCmd.Flags().StringVar(&norMods.BoardVariant, "board-variant", "", "Board variant")
}

func runNorDump(cmd *cobra.Command, args []string) error {
	wb := newWorkbench()
	defer wb.Close()

	buf, err := wb.LoadFile(args[0])
	if err != nil {
		return errors.New(wb.Status())
	}

	fmt.Fprint(os.Stderr, buf.Details.String()+"\n")

	if norCanonical {
		fmt.Print(hexcodec.Dump(buf.Data))
		return nil
	}
	fmt.Println(buf.Hex)
	return nil
}

func runNorSave(cmd *cobra.Command, args []string) error {
	var text []byte
	var err error
	if args[0] == "-" {
		text, err = io.ReadAll(os.Stdin)
	} else {
		text, err = os.ReadFile(norfile.CleanPath(args[0]))
	}
	if err != nil {
		return fmt.Errorf("failed to read hex text: %w", err)
	}

	wb := newWorkbench()
	defer wb.Close()

	if err := wb.SaveFile(args[1], string(text)); err != nil {
		return errors.New(wb.Status())
	}
	fmt.Println(wb.Status())
	return nil
}

func runNorPatch(cmd *cobra.Command, args []string) error {
	wb := newWorkbench()
	defer wb.Close()

	if norMods.IsEmpty() {
		fmt.Fprintln(os.Stderr, "No field edits given; writing an unchanged copy")
	}

	if err := wb.SaveModified(args[1], args[0], norMods); err != nil {
		return errors.New(wb.Status())
	}
	fmt.Println(wb.Status())
	return nil
}
