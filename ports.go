// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Serial port abstraction and OS port enumeration.
package gonor

import (
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

//go:generate mockgen -destination=mocks/port.go -package=mocks github.com/google/gonor PortInterface
type PortInterface interface {
	io.Reader
	io.Writer
	io.Closer
	// Sets the read timeout of the underlying transport.
	SetReadTimeout(t time.Duration) error
}

// PortOpener opens a named OS serial port. Overridable for tests.
type PortOpener func(name string, baudRate int) (PortInterface, error)

func openSerialPort(name string, baudRate int) (PortInterface, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return port, nil
}

// PortInfo describes one enumerated serial port.
type PortInfo struct {
	// OS device identifier, e.g. COM3 or /dev/ttyUSB0.
	Device string
	// Best-effort human-friendly label. Falls back to Device when the
	// platform lookup has nothing better.
	FriendlyName string
}

// ListPorts enumerates OS-visible serial ports with friendly names.
// Failure to resolve a friendly name is never an error.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, wrapError(KindIOFailure, err, "failed to enumerate serial ports")
	}
	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortInfo{d.Name, friendlyName(d)})
	}
	glog.V(1).Infof("[port-list]: %d ports", len(ports))
	return ports, nil
}

func friendlyName(d *enumerator.PortDetails) string {
	if !d.IsUSB {
		return d.Name
	}
	if d.Product != "" {
		return fmt.Sprintf("%s (%s)", d.Product, d.Name)
	}
	if d.VID != "" && d.PID != "" {
		return fmt.Sprintf("USB %s:%s (%s)", d.VID, d.PID, d.Name)
	}
	return d.Name
}
