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

// Fixed field layout of the PS5 NOR dump.
// Offsets are an externally-fixed contract with the firmware image, so don't
// change these.
package gonor

type Encoding uint8

const (
	// ASCII bytes, right-padded with NUL to the field length.
	EncodingASCIIPadded Encoding = iota
	// Raw bytes, rendered as lowercase colon-separated hex pairs.
	EncodingRawHex
	// Single ASCII digit used as a boolean flag.
	EncodingDigitFlag
)

type FieldSpec struct {
	Name   string
	Offset int
	Length int
	Enc    Encoding
}

// NOR dump offsets.
const (
	offsetEditionFlagA = 0x1c7010
	offsetEditionFlagB = 0x1c7030
	offsetWifiMac      = 0x1c73c0
	offsetLanMac       = 0x1c4020
	offsetSerial       = 0x1c7210
	offsetVariant      = 0x1c7226
	offsetMoboSerial   = 0x1c7200

	serialLength      = 16
	shortSerialLength = 10
	macLength         = 6
	variantLength     = 16
)

var (
	FieldSerialNumber    = FieldSpec{"serial-number", offsetSerial, serialLength, EncodingASCIIPadded}
	FieldSerialShort     = FieldSpec{"serial-number-short", offsetSerial, shortSerialLength, EncodingASCIIPadded}
	FieldMoboSerial      = FieldSpec{"motherboard-serial", offsetMoboSerial, serialLength, EncodingASCIIPadded}
	FieldMoboSerialShort = FieldSpec{"motherboard-serial-short", offsetMoboSerial, shortSerialLength, EncodingASCIIPadded}
	FieldWifiMac         = FieldSpec{"wifi-mac", offsetWifiMac, macLength, EncodingRawHex}
	FieldLanMac          = FieldSpec{"lan-mac", offsetLanMac, macLength, EncodingRawHex}
	FieldEditionFlagA    = FieldSpec{"edition-flag-a", offsetEditionFlagA, 1, EncodingDigitFlag}
	FieldEditionFlagB    = FieldSpec{"edition-flag-b", offsetEditionFlagB, 1, EncodingDigitFlag}
	FieldVariant         = FieldSpec{"variant", offsetVariant, variantLength, EncodingASCIIPadded}
)

// Catalog lists every editable field by name. Read-only.
var Catalog = []FieldSpec{
	FieldSerialNumber,
	FieldSerialShort,
	FieldMoboSerial,
	FieldMoboSerialShort,
	FieldWifiMac,
	FieldLanMac,
	FieldEditionFlagA,
	FieldEditionFlagB,
	FieldVariant,
}
