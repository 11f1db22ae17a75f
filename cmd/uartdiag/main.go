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

// Talks to a PS5 over its UART port: reads and clears stored error codes,
// resolves descriptions against the local/remote error-code database.
//
// $ go run ./cmd/uartdiag -list
// $ go run ./cmd/uartdiag -port /dev/ttyUSB0 -get-errors -logtostderr
package main

import (
	"flag"
	"fmt"

	"github.com/google/gonor"

	"github.com/golang/glog"
)

var (
	listFlag     = flag.Bool("list", false, "List available serial ports")
	portFlag     = flag.String("port", "", "Serial port device, e.g. COM3 or /dev/ttyUSB0")
	baudFlag     = flag.Int("baud", gonor.DefaultBaudRate, "Baud rate")
	getFlag      = flag.Bool("get-errors", false, "Read stored error codes")
	clearFlag    = flag.Bool("clear-errors", false, "Clear stored error codes")
	commandFlag  = flag.String("command", "", "Send a custom command")
	lookupFlag   = flag.String("lookup", "", "Resolve a single 8-hex-digit error code")
	downloadFlag = flag.Bool("download-db", false, "Re-download the full error-code database")
	dbFlag       = flag.String("db", "resources/error_codes.xml", "Error-code database file")
	serviceFlag  = flag.String("service", gonor.DefaultServiceURL, "Remote lookup service URL")
)

func init() {
	flag.Parse()
}

func main() {
	var err error
	defer glog.Flush()

	if *listFlag {
		var ports []gonor.PortInfo
		if ports, err = gonor.ListPorts(); err != nil {
			glog.Fatalf("Failed to list ports: %v", err)
		}
		for _, p := range ports {
			fmt.Printf("%-16s %s\n", p.Device, p.FriendlyName)
		}
		return
	}

	db := gonor.NewErrorDatabase(*dbFlag)
	resolver := gonor.NewResolver(db, gonor.NewUartCodesClient(*serviceFlag))
	if err = resolver.Initialize(); err != nil {
		glog.Warningf("Error database unavailable: %v", err)
	}

	if *downloadFlag {
		var ok bool
		if ok, err = resolver.DownloadDatabase(); err != nil {
			glog.Fatalf("Failed to download error database: %v", err)
		}
		if !ok {
			glog.Fatal("Lookup service returned no database")
		}
		glog.Infof("Database refreshed: %d codes", db.Len())
	}

	if *lookupFlag != "" {
		var desc string
		if desc, err = resolver.ErrorDescription(*lookupFlag); err != nil {
			glog.Fatalf("Lookup failed: %v", err)
		}
		fmt.Printf("Error code: %s\nDescription: %s\n", *lookupFlag, desc)
	}

	if !*getFlag && !*clearFlag && *commandFlag == "" {
		return
	}
	if *portFlag == "" {
		glog.Fatal("-port is required for device commands")
	}

	uart := gonor.NewUart(resolver)
	if err = uart.Connect(*portFlag, *baudFlag); err != nil {
		glog.Fatalf("Failed to connect: %v", err)
	}
	defer uart.Disconnect()

	if *getFlag {
		var codes []string
		if codes, err = uart.GetErrorCodes(); err != nil {
			glog.Fatalf("Failed to get error codes: %v", err)
		}
		if len(codes) == 0 {
			fmt.Println("No error codes stored")
		}
		for _, code := range codes {
			var desc string
			if desc, err = resolver.ErrorDescription(code); err != nil {
				glog.Warningf("Failed to resolve %s: %v", code, err)
				desc = gonor.UnknownDescription
			}
			fmt.Printf("Error code: %s\nDescription: %s\n\n", code, desc)
		}
	}

	if *clearFlag {
		var ok bool
		if ok, err = uart.ClearErrorCodes(); err != nil {
			glog.Fatalf("Failed to clear error codes: %v", err)
		}
		if !ok {
			glog.Fatal("Device did not acknowledge clear request")
		}
		fmt.Println("Error codes cleared")
	}

	if *commandFlag != "" {
		var res string
		if res, err = uart.SendCustomCommand(*commandFlag); err != nil {
			glog.Fatalf("Command failed: %v", err)
		}
		fmt.Println(res)
	}
}
