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

// Inspects and edits PS5 NOR dumps.
//
// $ go run ./cmd/nortool -image dump.bin -logtostderr
// $ go run ./cmd/nortool -image dump.hex -hex -set-serial AB1234567CD89012 -out dump-out.bin
package main

import (
	"flag"
	"fmt"

	"github.com/google/gonor"
	"github.com/google/gonor/util"

	"github.com/golang/glog"
)

var (
	imageFlag   = flag.String("image", "", "NOR dump file to load")
	hexFlag     = flag.Bool("hex", false, "Input is an Intel HEX export")
	outFlag     = flag.String("out", "", "Write the (possibly modified) dump to this file")
	serialFlag  = flag.String("set-serial", "", "Overwrite the console serial number (16 ASCII chars)")
	editionFlag = flag.String("set-edition", "", "Set edition flags: disc or digital")
	digitalFlag = flag.Bool("convert-digital", false, "Override the variant string with DIGITAL")
	patternFlag = flag.String("find-pattern", "", "Hex byte pattern to locate in the dump")
)

func init() {
	flag.Parse()
}

func loadImage() (*gonor.NorImage, error) {
	if !*hexFlag {
		return gonor.LoadNorImage(*imageFlag)
	}
	seg, err := util.LoadIntelHexFile(*imageFlag)
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("Intel HEX base address 0x%x, %d bytes", seg.Address, len(seg.Data))
	return gonor.NewNorImage(seg.Data)
}

func printInfo(img *gonor.NorImage) {
	show := func(name string, value string, err error) {
		if err != nil {
			glog.Warningf("Failed to read %s: %v", name, err)
			return
		}
		fmt.Printf("%-20s %s\n", name+":", value)
	}
	serial, err := img.SerialNumber()
	show("Serial number", serial, err)
	mobo, err := img.MotherboardSerial()
	show("Motherboard serial", mobo, err)
	wifi, err := img.WifiMac()
	show("WiFi MAC", wifi, err)
	lan, err := img.LanMac()
	show("LAN MAC", lan, err)
	variant, err := img.Variant()
	show("Variant", variant, err)
	fmt.Printf("%-20s %s\n", "Edition:", img.Edition())
}

func main() {
	var err error
	defer glog.Flush()

	if *imageFlag == "" {
		glog.Fatal("-image is required")
	}

	var img *gonor.NorImage
	if img, err = loadImage(); err != nil {
		glog.Fatalf("Failed to load image: %v", err)
	}
	if err = img.CheckLayout(); err != nil {
		glog.Warningf("Image smaller than the expected NOR layout: %v", err)
	}

	if *patternFlag != "" {
		var pattern []byte
		if pattern, err = util.HexStringToBytes(*patternFlag); err != nil {
			glog.Fatalf("Invalid -find-pattern: %v", err)
		}
		for _, off := range util.FindPattern(img.Bytes(), pattern) {
			fmt.Printf("Pattern at offset 0x%x\n", off)
		}
	}

	modified := false
	if *serialFlag != "" {
		if err = img.SetSerialNumber(*serialFlag); err != nil {
			glog.Fatalf("Failed to set serial number: %v", err)
		}
		modified = true
	}
	switch *editionFlag {
	case "":
	case "disc":
		if err = img.SetEdition(gonor.EditionDisc); err != nil {
			glog.Fatalf("Failed to set edition: %v", err)
		}
		modified = true
	case "digital":
		if err = img.SetEdition(gonor.EditionDigital); err != nil {
			glog.Fatalf("Failed to set edition: %v", err)
		}
		modified = true
	default:
		glog.Fatalf("Unknown edition %q (want disc or digital)", *editionFlag)
	}
	if *digitalFlag {
		if err = img.ConvertToDigital(); err != nil {
			glog.Fatalf("Failed to convert variant: %v", err)
		}
		modified = true
	}

	printInfo(img)

	if *outFlag != "" {
		if err = img.Save(*outFlag); err != nil {
			glog.Fatalf("Failed to save image: %v", err)
		}
		glog.Infof("Saved %d bytes to %s", img.Len(), *outFlag)
	} else if modified {
		glog.Warning("Image modified but no -out given; changes discarded")
	}
}
