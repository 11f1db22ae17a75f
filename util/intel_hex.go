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

package util

import (
	"fmt"
	"os"

	"github.com/marcinbor85/gohex"
)

// Segment is one contiguous byte range extracted from an Intel HEX dump.
type Segment struct {
	Address uint32
	Data    []byte
}

// LoadIntelHexFile parses a NOR dump exported in Intel HEX format.
// Flasher tools commonly export either a single contiguous segment or a
// sparse set of segments; sparse dumps are flattened into one buffer with
// 0xFF gap fill (erased-NOR state).
func LoadIntelHexFile(filename string) (*Segment, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	mem := gohex.NewMemory()
	if err = mem.ParseIntelHex(file); err != nil {
		return nil, err
	}

	segments := mem.GetDataSegments()
	if len(segments) == 0 {
		return nil, fmt.Errorf("no data segments in %s", filename)
	}

	base := segments[0].Address
	end := base
	for _, s := range segments {
		if s.Address < base {
			base = s.Address
		}
		if top := s.Address + uint32(len(s.Data)); top > end {
			end = top
		}
	}

	data := make([]byte, end-base)
	for i := range data {
		data[i] = 0xff
	}
	for _, s := range segments {
		copy(data[s.Address-base:], s.Data)
	}
	return &Segment{base, data}, nil
}
