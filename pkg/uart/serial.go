// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package uart

import (
	"sort"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// SerialPort wraps a go.bug.st/serial port
type SerialPort struct {
	port serial.Port
}

func (s *SerialPort) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *SerialPort) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *SerialPort) Close() error {
	return s.port.Close()
}

func (s *SerialPort) SetReadTimeout(timeout time.Duration) error {
	return s.port.SetReadTimeout(timeout)
}

func (s *SerialPort) Drain() error {
	return s.port.Drain()
}

// SerialOpener opens a local serial device at 115200 8N1 with no flow control
func SerialOpener(name string) (Port, error) {
	mode := &serial.Mode{
		BaudRate: BaudRate,
		DataBits: DataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	// go.bug.st/serial never enables RTS/CTS or XON/XOFF, which is what the
	// debug header expects
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}

	return &SerialPort{port: port}, nil
}

// SerialEnumerator lists local serial devices, sorted by name
func SerialEnumerator() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}
	sort.Strings(ports)
	return ports, nil
}

// PortInfo describes a local serial device
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// DetailedPorts lists local serial devices with USB identification where
// the OS provides it
func DetailedPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	infos := make([]PortInfo, 0, len(details))
	for _, d := range details {
		infos = append(infos, PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}
