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

// NOR dump accessor. Field reads/writes are bounds-checked against the
// loaded buffer; the buffer is never resized by a field write.
package gonor

import (
	"encoding/hex"
	"os"
	"strings"
	"unicode"

	"github.com/golang/glog"
)

// NorImage owns the mutable byte buffer of one loaded NOR dump.
type NorImage struct {
	data []byte
}

// NewNorImage wraps an in-memory dump. The buffer is owned by the image
// afterwards.
func NewNorImage(data []byte) (*NorImage, error) {
	if len(data) == 0 {
		return nil, newError(KindEmptyImage, "image buffer is empty")
	}
	return &NorImage{data}, nil
}

// LoadNorImage reads a full NOR dump from disk.
func LoadNorImage(path string) (*NorImage, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, newError(KindNotFound, "NOR file not found: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapError(KindIOFailure, err, "failed to read NOR file %s", path)
	}
	if len(data) == 0 {
		return nil, newError(KindEmptyImage, "loaded NOR file is empty: %s", path)
	}
	glog.V(1).Infof("[nor-load]: path = %s, size = %d", path, len(data))
	return &NorImage{data}, nil
}

// Save writes the buffer verbatim.
func (n *NorImage) Save(path string) error {
	if n == nil || len(n.data) == 0 {
		return newError(KindNoImageLoaded, "no NOR data to save")
	}
	glog.V(1).Infof("[nor-save]: path = %s, size = %d", path, len(n.data))
	if err := os.WriteFile(path, n.data, 0644); err != nil {
		return wrapError(KindIOFailure, err, "failed to write NOR file %s", path)
	}
	return nil
}

func (n *NorImage) Len() int {
	return len(n.data)
}

// Bytes exposes the underlying buffer. Callers must not resize it.
func (n *NorImage) Bytes() []byte {
	return n.data
}

func (n *NorImage) checkBounds(spec FieldSpec) error {
	if spec.Offset < 0 || spec.Offset+spec.Length > len(n.data) {
		return newError(KindOutOfBounds,
			"field %s: offset 0x%x length %d exceeds image size %d",
			spec.Name, spec.Offset, spec.Length, len(n.data))
	}
	return nil
}

// decodeASCII drops non-ASCII bytes and strips all trailing NULs.
func decodeASCII(raw []byte) string {
	var b strings.Builder
	for _, c := range raw {
		if c <= unicode.MaxASCII {
			b.WriteByte(c)
		}
	}
	return strings.TrimRight(b.String(), "\x00")
}

// ReadField decodes one catalog field from the image.
func (n *NorImage) ReadField(spec FieldSpec) (string, error) {
	var err error
	if err = n.checkBounds(spec); err != nil {
		return "", err
	}
	raw := n.data[spec.Offset : spec.Offset+spec.Length]
	switch spec.Enc {
	case EncodingRawHex:
		pairs := make([]string, len(raw))
		for i, c := range raw {
			pairs[i] = hex.EncodeToString([]byte{c})
		}
		return strings.Join(pairs, ":"), nil
	default:
		return decodeASCII(raw), nil
	}
}

// WriteField encodes value into the field's byte range in place.
// ASCII values shorter than the field are right-padded with NULs.
func (n *NorImage) WriteField(spec FieldSpec, value string) error {
	var err error
	if err = n.checkBounds(spec); err != nil {
		return err
	}
	for _, r := range value {
		if r > unicode.MaxASCII {
			return newError(KindEncodingError,
				"field %s: value %q contains non-ASCII characters", spec.Name, value)
		}
	}
	encoded := []byte(value)
	if len(encoded) > spec.Length {
		return newError(KindValueTooLong,
			"field %s: value length %d exceeds field length %d",
			spec.Name, len(encoded), spec.Length)
	}
	glog.V(1).Infof("[nor-write]: field = %s, offset = 0x%x, len = %d",
		spec.Name, spec.Offset, spec.Length)
	copy(n.data[spec.Offset:spec.Offset+spec.Length], encoded)
	for i := spec.Offset + len(encoded); i < spec.Offset+spec.Length; i++ {
		n.data[i] = 0
	}
	return nil
}

// SerialNumber reads the console serial number field.
func (n *NorImage) SerialNumber() (string, error) {
	s, err := n.ReadField(FieldSerialNumber)
	if err != nil {
		return "", wrapError(errKind(err), err, "failed to read serial number")
	}
	return s, nil
}

// SetSerialNumber overwrites the console serial number. The value must be
// exactly the field length; no padding or truncation on this path.
func (n *NorImage) SetSerialNumber(serial string) error {
	if len(serial) != FieldSerialNumber.Length {
		return newError(KindInvalidLength,
			"serial number length %d != %d", len(serial), FieldSerialNumber.Length)
	}
	if err := n.WriteField(FieldSerialNumber, serial); err != nil {
		return wrapError(errKind(err), err, "failed to set serial number")
	}
	return nil
}

// SerialNumberShort reads the 10-byte short form of the serial number.
func (n *NorImage) SerialNumberShort() (string, error) {
	return n.ReadField(FieldSerialShort)
}

// MotherboardSerial reads the motherboard serial number field.
func (n *NorImage) MotherboardSerial() (string, error) {
	s, err := n.ReadField(FieldMoboSerial)
	if err != nil {
		return "", wrapError(errKind(err), err, "failed to read motherboard serial")
	}
	return s, nil
}

// MotherboardSerialShort reads the 10-byte short form.
func (n *NorImage) MotherboardSerialShort() (string, error) {
	return n.ReadField(FieldMoboSerialShort)
}

// WifiMac returns the WiFi MAC as lowercase colon-separated hex pairs.
func (n *NorImage) WifiMac() (string, error) {
	s, err := n.ReadField(FieldWifiMac)
	if err != nil {
		return "", wrapError(errKind(err), err, "failed to read WiFi MAC")
	}
	return s, nil
}

// LanMac returns the LAN MAC as lowercase colon-separated hex pairs.
func (n *NorImage) LanMac() (string, error) {
	s, err := n.ReadField(FieldLanMac)
	if err != nil {
		return "", wrapError(errKind(err), err, "failed to read LAN MAC")
	}
	return s, nil
}

// Variant reads the console variant string.
func (n *NorImage) Variant() (string, error) {
	return n.ReadField(FieldVariant)
}

type Edition int

const (
	EditionUnknown Edition = iota
	EditionDisc
	EditionDigital
)

func (e Edition) String() string {
	switch e {
	case EditionDisc:
		return "Disc Edition"
	case EditionDigital:
		return "Digital Edition"
	default:
		return "Unknown"
	}
}

// Edition derives the console edition from the two flag fields.
// Anything but a matching pair of flags, including unreadable flags, is
// Unknown. Never fails.
func (n *NorImage) Edition() Edition {
	a, errA := n.ReadField(FieldEditionFlagA)
	b, errB := n.ReadField(FieldEditionFlagB)
	if errA != nil || errB != nil {
		return EditionUnknown
	}
	switch {
	case a == "1" && b == "1":
		return EditionDisc
	case a == "0" && b == "0":
		return EditionDigital
	default:
		return EditionUnknown
	}
}

// SetEdition writes both flag fields.
func (n *NorImage) SetEdition(e Edition) error {
	var flag string
	switch e {
	case EditionDisc:
		flag = "1"
	case EditionDigital:
		flag = "0"
	default:
		return newError(KindEncodingError, "cannot write edition %q", e)
	}
	var err error
	if err = n.WriteField(FieldEditionFlagA, flag); err != nil {
		return wrapError(errKind(err), err, "failed to set edition flag A")
	}
	if err = n.WriteField(FieldEditionFlagB, flag); err != nil {
		return wrapError(errKind(err), err, "failed to set edition flag B")
	}
	return nil
}

// ConvertToDigital overrides the variant string with the digital-edition
// marker. Flag fields are left alone; use SetEdition for those.
func (n *NorImage) ConvertToDigital() error {
	if err := n.WriteField(FieldVariant, "DIGITAL"); err != nil {
		return wrapError(errKind(err), err, "failed to override variant")
	}
	return nil
}

// CheckLayout reports whether every catalog field lies inside the image.
func (n *NorImage) CheckLayout() error {
	for _, spec := range Catalog {
		if err := n.checkBounds(spec); err != nil {
			return err
		}
	}
	return nil
}

// errKind extracts the kind for re-wrapping; composite accessors keep the
// low-level kind while adding context.
func errKind(err error) ErrorKind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindIOFailure
}
