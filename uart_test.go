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

package gonor_test

import (
	"errors"
	"testing"

	"github.com/google/gonor"
	"github.com/google/gonor/mocks"

	"github.com/golang/mock/gomock"
)

type fakeResolver map[string]string

func (f fakeResolver) ErrorDescription(code string) (string, error) {
	desc, ok := f[code]
	if !ok {
		return "", errors.New("no such code")
	}
	return desc, nil
}

// connectedUart wires a Uart to a mock port, bypassing OS enumeration.
func connectedUart(t *testing.T, ctrl *gomock.Controller, resolver gonor.DescriptionResolver) (*gonor.Uart, *mocks.MockPortInterface) {
	t.Helper()
	port := mocks.NewMockPortInterface(ctrl)
	port.EXPECT().SetReadTimeout(gomock.Any()).Return(nil)

	u := gonor.NewUart(resolver)
	u.List = func() ([]gonor.PortInfo, error) {
		return []gonor.PortInfo{{Device: "COM7", FriendlyName: "USB Serial (COM7)"}}, nil
	}
	u.Open = func(name string, baudRate int) (gonor.PortInterface, error) {
		if name != "COM7" || baudRate != gonor.DefaultBaudRate {
			t.Errorf("Open(%q, %d): unexpected arguments", name, baudRate)
		}
		return port, nil
	}
	if err := u.Connect("COM7", 0); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	return u, port
}

// expectRoundTrip queues one framed write and one line response on the port.
func expectRoundTrip(port *mocks.MockPortInterface, framed, response string) {
	gomock.InOrder(
		port.EXPECT().Write([]byte(framed)).Return(len(framed), nil),
		port.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
			return copy(p, response), nil
		}),
	)
}

func TestChecksumFrame(t *testing.T) {
	cases := []struct{ command, want string }{
		// Hand-computed: sum of byte values mod 256.
		{"get_error_codes", "get_error_codes:36"},
		{"clear_error_codes", "clear_error_codes:FD"},
		{"A", "A:41"},
	}
	for _, c := range cases {
		if got := gonor.ChecksumFrame(c.command); got != c.want {
			t.Errorf("ChecksumFrame(%q) = %q, want %q", c.command, got, c.want)
		}
	}
}

func TestSendCommandNotConnected(t *testing.T) {
	u := gonor.NewUart(nil)
	for _, command := range []string{"get_error_codes", "", "x\ny"} {
		_, err := u.SendCommand(command)
		if !gonor.IsKind(err, gonor.KindNotConnected) {
			t.Errorf("SendCommand(%q): expected NotConnected, got %v", command, err)
		}
	}
}

func TestConnectRejectsUnknownPort(t *testing.T) {
	u := gonor.NewUart(nil)
	u.List = func() ([]gonor.PortInfo, error) {
		return []gonor.PortInfo{{Device: "COM1", FriendlyName: "COM1"}}, nil
	}
	err := u.Connect("COM9", 0)
	if !gonor.IsKind(err, gonor.KindInvalidPort) {
		t.Errorf("Expected InvalidPort, got %v", err)
	}
	if u.Connected() {
		t.Errorf("Uart connected after failed Connect")
	}
}

func TestConnectFailure(t *testing.T) {
	u := gonor.NewUart(nil)
	u.List = func() ([]gonor.PortInfo, error) {
		return []gonor.PortInfo{{Device: "COM7", FriendlyName: "COM7"}}, nil
	}
	u.Open = func(name string, baudRate int) (gonor.PortInterface, error) {
		return nil, errors.New("port busy")
	}
	err := u.Connect("COM7", 0)
	if !gonor.IsKind(err, gonor.KindConnectFailure) {
		t.Errorf("Expected ConnectFailure, got %v", err)
	}
}

func TestSendCommandRejectsInvalidText(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	// No Write expected: validation fails before any I/O.
	u, _ := connectedUart(t, mockCtrl, nil)
	for _, command := range []string{"", "get\nerrors"} {
		_, err := u.SendCommand(command)
		if !gonor.IsKind(err, gonor.KindInvalidCommand) {
			t.Errorf("SendCommand(%q): expected InvalidCommand, got %v", command, err)
		}
	}
}

func TestSendCommandFramesAndStripsTerminator(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	u, port := connectedUart(t, mockCtrl, nil)
	expectRoundTrip(port, "get_error_codes:36\n", "NOERR\r\n")

	res, err := u.SendCommand("get_error_codes")
	if err != nil {
		t.Fatalf("SendCommand failed: %v", err)
	}
	if res != "NOERR" {
		t.Errorf("Response = %q, want %q", res, "NOERR")
	}
}

func TestSendCommandFormatsErrorResponse(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	resolver := fakeResolver{"DEADBEEF": "X", "CAFEF00D": "Y"}
	u, port := connectedUart(t, mockCtrl, resolver)
	expectRoundTrip(port, "custom_cmd:2E\n", "ERROR:DEADBEEF\n")

	res, err := u.SendCustomCommand("custom_cmd")
	if err != nil {
		t.Fatalf("SendCustomCommand failed: %v", err)
	}
	want := "Error code: DEADBEEF\nDescription: X"
	if res != want {
		t.Errorf("Response = %q, want %q", res, want)
	}
}

func TestHandleErrorResponseDropsInvalidCodes(t *testing.T) {
	resolver := fakeResolver{"DEADBEEF": "X", "CAFEF00D": "Y"}
	u := gonor.NewUart(resolver)

	got := u.HandleErrorResponse("ERROR:DEADBEEF,badcode,CAFEF00D")
	want := "Error code: DEADBEEF\nDescription: X\n\nError code: CAFEF00D\nDescription: Y"
	if got != want {
		t.Errorf("HandleErrorResponse = %q, want %q", got, want)
	}
}

func TestHandleErrorResponsePassesThroughNonError(t *testing.T) {
	u := gonor.NewUart(nil)
	const response = "system ready"
	if got := u.HandleErrorResponse(response); got != response {
		t.Errorf("Pass-through mangled response: %q", got)
	}
}

func TestHandleErrorResponseUnresolvedCode(t *testing.T) {
	u := gonor.NewUart(fakeResolver{})
	got := u.HandleErrorResponse("ERROR:DEADBEEF")
	want := "Error code: DEADBEEF\nDescription: Unknown error"
	if got != want {
		t.Errorf("HandleErrorResponse = %q, want %q", got, want)
	}
}

func TestGetErrorCodes(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	u, port := connectedUart(t, mockCtrl, nil)
	expectRoundTrip(port, "get_error_codes:36\n", "ERROR:DEADBEEF, badcode ,CAFEF00D\n")

	codes, err := u.GetErrorCodes()
	if err != nil {
		t.Fatalf("GetErrorCodes failed: %v", err)
	}
	if len(codes) != 2 || codes[0] != "DEADBEEF" || codes[1] != "CAFEF00D" {
		t.Errorf("GetErrorCodes = %v", codes)
	}
}

func TestGetErrorCodesNoErrors(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	u, port := connectedUart(t, mockCtrl, nil)
	expectRoundTrip(port, "get_error_codes:36\n", "NOERR\n")

	codes, err := u.GetErrorCodes()
	if err != nil {
		t.Fatalf("GetErrorCodes failed: %v", err)
	}
	if len(codes) != 0 {
		t.Errorf("GetErrorCodes = %v, want empty", codes)
	}
}

func TestClearErrorCodes(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	u, port := connectedUart(t, mockCtrl, nil)
	expectRoundTrip(port, "clear_error_codes:FD\n", "OK\n")

	ok, err := u.ClearErrorCodes()
	if err != nil {
		t.Fatalf("ClearErrorCodes failed: %v", err)
	}
	if !ok {
		t.Errorf("ClearErrorCodes not acknowledged")
	}
}

func TestClearErrorCodesRejected(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	u, port := connectedUart(t, mockCtrl, nil)
	expectRoundTrip(port, "clear_error_codes:FD\n", "BUSY\n")

	ok, err := u.ClearErrorCodes()
	if err != nil {
		t.Fatalf("ClearErrorCodes failed: %v", err)
	}
	if ok {
		t.Errorf("ClearErrorCodes acknowledged on non-OK response")
	}
}

func TestDisconnectIsIdempotent(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	u := gonor.NewUart(nil)
	if err := u.Disconnect(); err != nil {
		t.Errorf("Disconnect on disconnected Uart failed: %v", err)
	}

	u, port := connectedUart(t, mockCtrl, nil)
	port.EXPECT().Close().Return(errors.New("close failed"))

	// Close failure is reported but the session still ends.
	if err := u.Disconnect(); err == nil {
		t.Errorf("Disconnect expected to report close failure")
	}
	if u.Connected() {
		t.Errorf("Uart still connected after Disconnect")
	}
	if err := u.Disconnect(); err != nil {
		t.Errorf("Second Disconnect failed: %v", err)
	}
}

func TestReadFailureDropsSession(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	u, port := connectedUart(t, mockCtrl, nil)
	gomock.InOrder(
		port.EXPECT().Write(gomock.Any()).Return(19, nil),
		port.EXPECT().Read(gomock.Any()).Return(0, errors.New("device unplugged")),
		port.EXPECT().Close().Return(nil),
	)

	_, err := u.SendCommand("get_error_codes")
	if !gonor.IsKind(err, gonor.KindIOFailure) {
		t.Errorf("Expected IOFailure, got %v", err)
	}
	if u.Connected() {
		t.Errorf("Session survived irrecoverable read failure")
	}
}
