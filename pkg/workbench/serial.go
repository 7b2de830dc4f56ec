// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package workbench

import (
	"errors"
	"strings"

	"github.com/Thermoquad/uartbench/pkg/notify"
	"github.com/Thermoquad/uartbench/pkg/uart"
)

// ListPorts refreshes the available serial ports
func (w *Workbench) ListPorts() ([]string, error) {
	ports, err := w.session.ListPorts()
	if err != nil {
		message := "Failed to list serial ports: " + err.Error()
		w.setStatus(message, false)
		w.raise("Serial Port Error", message)
		return nil, err
	}

	w.publish(notify.PortsChanged, strings.Join(ports, "\n"), true)
	w.setStatus("Serial ports refreshed.", true)
	return ports, nil
}

// SelectPort sets the port used by Connect
func (w *Workbench) SelectPort(name string) {
	w.session.Select(name)
}

// Connect opens the selected port
func (w *Workbench) Connect() error {
	name := w.session.Selected()
	if name == "" {
		w.setStatus("No serial port selected.", false)
		w.raise("Serial Port Error", "No serial port selected.")
		return w.session.Connect()
	}

	if w.session.IsOpen() && w.session.PortName() == name {
		w.setStatus("Already connected to "+name, true)
		return nil
	}

	if err := w.session.Connect(); err != nil {
		detail := err.Error()
		var pue *uart.PortUnavailableError
		if errors.As(err, &pue) && pue.Err != nil {
			detail = pue.Err.Error()
		}
		w.setStatus("Error connecting to "+name+": "+detail, false)
		w.raise("Serial Connection Failed", "Could not connect to "+name+": "+detail)
		w.publish(notify.ConnectionChanged, name, false)
		return err
	}

	w.setStatus("Connected to "+name, true)
	w.publish(notify.ConnectionChanged, name, true)
	return nil
}

// Disconnect closes the open port
func (w *Workbench) Disconnect() error {
	if !w.session.IsOpen() {
		w.setStatus("No serial port is currently connected.", true)
		return nil
	}

	name := w.session.PortName()
	err := w.session.Close()
	w.setStatus("Disconnected from serial port.", true)
	w.publish(notify.ConnectionChanged, name, false)
	return err
}

// Send exchanges one raw command and returns the reply
func (w *Workbench) Send(command string) (string, error) {
	response, err := w.session.Exchange(command)
	switch {
	case err == nil:
		w.setStatus("Command sent. Response: "+response, true)
	case errors.Is(err, uart.ErrNotConnected):
		w.setStatus("Serial port not connected.", false)
		w.raise("Serial Command Error", "Serial port is not connected.")
	case errors.Is(err, uart.ErrNoResponse):
		w.setStatus("No response from serial device.", false)
		w.raise("Serial Command Error", "No response from serial device for command: "+command)
	case errors.Is(err, uart.ErrWriteTimeout):
		w.setStatus("Timeout writing to serial port.", false)
		w.raise("Serial Command Error", "Timeout writing to serial port for command: "+command)
	default:
		// I/O faults already reached the transport error handler
		w.setStatus("Serial port error: "+err.Error(), false)
	}
	return response, err
}
