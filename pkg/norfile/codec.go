// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package norfile

import "fmt"

// Details are the fields a codec could read from a dump. Only Size is known
// without a NOR layout; the rest stay empty until a layout-aware codec
// exists.
type Details struct {
	Size         int
	Model        string
	Serial       string
	BoardSerial  string
	WiFiMAC      string
	EthernetMAC  string
	BoardVariant string
}

// String renders the details for display
func (d Details) String() string {
	field := func(v string) string {
		if v == "" {
			return "-"
		}
		return v
	}
	return fmt.Sprintf("Size: %d bytes\nModel: %s\nSerial: %s\nBoard Serial: %s\nWiFi MAC: %s\nEthernet MAC: %s\nBoard Variant: %s\n",
		d.Size, field(d.Model), field(d.Serial), field(d.BoardSerial),
		field(d.WiFiMAC), field(d.EthernetMAC), field(d.BoardVariant))
}

// Modifications are field edits requested by the user. Empty fields mean
// "leave unchanged".
type Modifications struct {
	Model        string
	Serial       string
	BoardSerial  string
	WiFiMAC      string
	EthernetMAC  string
	BoardVariant string
}

// IsEmpty reports whether no field edit was requested
func (m Modifications) IsEmpty() bool {
	return m == Modifications{}
}

// Codec reads and writes NOR fields
type Codec interface {
	Details(data []byte) (Details, error)
	Apply(data []byte, mods Modifications) ([]byte, error)
}

// Passthrough knows no NOR layout: it reports the size and returns data
// unchanged
type Passthrough struct{}

func (Passthrough) Details(data []byte) (Details, error) {
	return Details{Size: len(data)}, nil
}

func (Passthrough) Apply(data []byte, _ Modifications) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
