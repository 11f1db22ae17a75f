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

// Hex-string conversion helpers for poking at dump contents.
package util

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// HexStringToBytes decodes a hex string into bytes. The string must be
// non-empty with an even number of digits.
func HexStringToBytes(s string) ([]byte, error) {
	if s == "" || len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid hex string %q", s)
	}
	return hex.DecodeString(s)
}

// HexStringToString decodes a hex string into its ASCII text.
func HexStringToString(s string) (string, error) {
	b, err := HexStringToBytes(s)
	if err != nil {
		return "", err
	}
	for _, c := range b {
		if c > unicode.MaxASCII {
			return "", fmt.Errorf("non-ASCII byte 0x%02x in hex string", c)
		}
	}
	return string(b), nil
}

// StringToHexString encodes text as uppercase hex digits.
func StringToHexString(s string) string {
	return strings.ToUpper(hex.EncodeToString([]byte(s)))
}

// FindPattern returns every offset of pattern within source, in order.
func FindPattern(source, pattern []byte) []int {
	var offsets []int
	if len(pattern) == 0 {
		return nil
	}
	for i := 0; i+len(pattern) <= len(source); {
		j := bytes.Index(source[i:], pattern)
		if j < 0 {
			break
		}
		offsets = append(offsets, i+j)
		i += j + 1
	}
	return offsets
}
