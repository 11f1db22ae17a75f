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

// UART command protocol.
// Requests are "<text>:<2-hex-digit checksum>\n"; responses are single
// LF-terminated lines. A response line starting with "ERROR:" carries
// comma-separated 8-hex-digit error codes.
package gonor

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"
)

const DefaultBaudRate = 115200

const (
	cmdGetErrorCodes   = "get_error_codes"
	cmdClearErrorCodes = "clear_error_codes"
)

// UnknownDescription is the sentinel for codes with no known description.
// It is a normal outcome, not a failure.
const UnknownDescription = "Unknown error"

var readTimeout = 750 * time.Millisecond

// DescriptionResolver resolves an error code into a human description.
type DescriptionResolver interface {
	ErrorDescription(code string) (string, error)
}

// Uart drives a single serial connection to the target device.
// At most one connection is active at a time; port == nil means
// disconnected.
type Uart struct {
	// Open and List are overridable for tests.
	Open PortOpener
	List func() ([]PortInfo, error)

	resolver DescriptionResolver
	port     PortInterface
	rd       *bufio.Reader
}

// NewUart returns a disconnected Uart. resolver may be nil, in which case
// error responses are formatted with the unknown-description sentinel.
func NewUart(resolver DescriptionResolver) *Uart {
	return &Uart{Open: openSerialPort, List: ListPorts, resolver: resolver}
}

func (u *Uart) Connected() bool {
	return u.port != nil
}

// Connect opens portName at baudRate (DefaultBaudRate when <= 0).
// The port must be present among currently enumerated ports.
// An existing connection is closed first.
func (u *Uart) Connect(portName string, baudRate int) error {
	var err error
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	if u.port != nil {
		if err = u.Disconnect(); err != nil {
			return err
		}
	}

	var ports []PortInfo
	if ports, err = u.List(); err != nil {
		return wrapError(KindInvalidPort, err, "cannot validate port %s", portName)
	}
	found := false
	for _, p := range ports {
		if p.Device == portName {
			found = true
			break
		}
	}
	if !found {
		return newError(KindInvalidPort, "invalid port name: %s", portName)
	}

	var port PortInterface
	if port, err = u.Open(portName, baudRate); err != nil {
		return wrapError(KindConnectFailure, err, "failed to connect to %s", portName)
	}
	if err = port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return wrapError(KindConnectFailure, err, "failed to set read timeout on %s", portName)
	}
	glog.Infof("Connected to %s at %d baud", portName, baudRate)
	u.port = port
	u.rd = bufio.NewReader(port)
	return nil
}

// Disconnect closes the connection. Idempotent; the session is forced to
// disconnected even when the underlying close fails.
func (u *Uart) Disconnect() error {
	if u.port == nil {
		return nil
	}
	err := u.port.Close()
	u.port = nil
	u.rd = nil
	if err != nil {
		return wrapError(KindIOFailure, err, "failed to close serial port")
	}
	glog.V(1).Infof("[uart]: disconnected")
	return nil
}

// ChecksumFrame appends the sum-mod-256 of the command bytes as two
// uppercase hex digits, colon-separated.
func ChecksumFrame(command string) string {
	var sum int
	for _, c := range []byte(command) {
		sum += int(c)
	}
	return fmt.Sprintf("%s:%02X", command, sum&0xff)
}

// roundTrip frames command, writes it, and reads one raw response line.
func (u *Uart) roundTrip(command string) (string, error) {
	var err error
	if u.port == nil {
		return "", newError(KindNotConnected, "not connected to UART device")
	}
	if command == "" || strings.Contains(command, "\n") {
		return "", newError(KindInvalidCommand, "invalid command format: %q", command)
	}

	framed := ChecksumFrame(command) + "\n"
	glog.V(1).Infof("[uart-write]: %q", framed)
	if _, err = u.port.Write([]byte(framed)); err != nil {
		u.dropSession()
		return "", wrapError(KindIOFailure, err, "failed to send UART command")
	}
	var line string
	if line, err = u.rd.ReadString('\n'); err != nil {
		u.dropSession()
		return "", wrapError(KindIOFailure, err, "failed to read UART response")
	}
	line = strings.TrimRight(line, "\r\n")
	glog.V(1).Infof("[uart-read]: %q", line)
	return line, nil
}

// Irrecoverable I/O failure destroys the session.
func (u *Uart) dropSession() {
	if u.port != nil {
		u.port.Close()
		u.port = nil
		u.rd = nil
	}
}

// SendCommand sends one framed command and returns the response after
// error-response handling.
func (u *Uart) SendCommand(command string) (string, error) {
	raw, err := u.roundTrip(command)
	if err != nil {
		return "", err
	}
	return u.HandleErrorResponse(raw), nil
}

// SendCustomCommand sends a caller-supplied command. Same framing and
// validation as SendCommand.
func (u *Uart) SendCustomCommand(command string) (string, error) {
	return u.SendCommand(command)
}

// HandleErrorResponse formats an "ERROR:" response into per-code blocks of
// "Error code: <code>\nDescription: <description>", joined by blank lines.
// Codes failing validation are dropped. Non-error responses pass through
// unchanged.
func (u *Uart) HandleErrorResponse(response string) string {
	if !strings.HasPrefix(response, "ERROR:") {
		return response
	}
	var blocks []string
	for _, code := range strings.Split(response[len("ERROR:"):], ",") {
		code = strings.TrimSpace(code)
		if !ValidateErrorCode(code) {
			continue
		}
		desc := u.describe(code)
		blocks = append(blocks, fmt.Sprintf("Error code: %s\nDescription: %s", code, desc))
	}
	return strings.Join(blocks, "\n\n")
}

// describe degrades to the sentinel rather than failing; formatting a device
// response must not abort the serial round-trip.
func (u *Uart) describe(code string) string {
	if u.resolver == nil {
		return UnknownDescription
	}
	desc, err := u.resolver.ErrorDescription(code)
	if err != nil {
		glog.Warningf("Failed to resolve %s: %v", code, err)
		return UnknownDescription
	}
	return desc
}

// GetErrorCodes queries the device for stored error codes. Invalid entries
// are dropped; order is preserved. A non-error response yields an empty
// list.
func (u *Uart) GetErrorCodes() ([]string, error) {
	raw, err := u.roundTrip(cmdGetErrorCodes)
	if err != nil {
		return nil, wrapError(errKind(err), err, "failed to get error codes")
	}
	if !strings.HasPrefix(raw, "ERROR:") {
		return nil, nil
	}
	var codes []string
	for _, code := range strings.Split(raw[len("ERROR:"):], ",") {
		code = strings.TrimSpace(code)
		if ValidateErrorCode(code) {
			codes = append(codes, code)
		}
	}
	return codes, nil
}

// ClearErrorCodes asks the device to clear stored error codes. The bool is
// the device acknowledgement: true iff the response is exactly "OK".
func (u *Uart) ClearErrorCodes() (bool, error) {
	raw, err := u.roundTrip(cmdClearErrorCodes)
	if err != nil {
		return false, wrapError(errKind(err), err, "failed to clear error codes")
	}
	return raw == "OK", nil
}
