// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Thermoquad/uartbench/pkg/frame"
	"github.com/Thermoquad/uartbench/pkg/hexcodec"
	"github.com/spf13/cobra"
)

var (
	sendStats     bool
	sendShowFrame bool
	sendCount     int
	sendInterval  int
)

var sendCmd = &cobra.Command{
	Use:   "send <command>",
	Short: "Send a raw command to the board",
	Long: `Send one command over the debug UART and print the board's reply.

The command is framed as "<command>:<checksum>\n", where the checksum is the
low byte of the sum of the command's characters in uppercase hex. For example
"errlog 0" goes out as "errlog 0:DB".

Use --count to repeat the command (useful for checking link stability) and
--stats to print exchange statistics at the end.

Exit codes:
  0 - Every command was answered
  1 - One or more commands failed
  2 - Connection error`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().BoolVar(&sendStats, "stats", false, "Print exchange statistics")
	sendCmd.Flags().BoolVar(&sendShowFrame, "show-frame", false, "Print the framed command and its bytes")
	sendCmd.Flags().IntVar(&sendCount, "count", 1, "Number of times to send the command")
	sendCmd.Flags().IntVar(&sendInterval, "interval", 100, "Delay between repeated commands in milliseconds")
}

func runSend(cmd *cobra.Command, args []string) error {
	command := strings.Join(args, " ")

	if sendShowFrame {
		wire := frame.Encode(command)
		fmt.Printf("Frame: %s\n", strings.TrimSuffix(string(wire), "\n"))
		fmt.Printf("Bytes: %s\n\n", hexcodec.Encode(wire))
	}

	wb, info := connectOrExit()
	defer wb.Close()

	fmt.Fprintf(os.Stderr, "Connection: %s\n", info)

	failCount := 0
	for i := 1; i <= sendCount; i++ {
		response, err := wb.Send(command)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", wb.Status())
			failCount++
		} else {
			fmt.Println(response)
		}

		// Small delay between repeats
		if i < sendCount {
			time.Sleep(time.Duration(sendInterval) * time.Millisecond)
		}
	}

	if sendStats {
		fmt.Print("\n" + wb.Session().Statistics().String())
	}

	if failCount > 0 {
		wb.Close()
		os.Exit(exitFailed)
	}
	return nil
}
