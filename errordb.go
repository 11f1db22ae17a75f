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

// Local error-code database, persisted as the same XML document shape the
// uartcodes service returns.
package gonor

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
)

// CodeEntry is one (code, description) record. Shared by the persistence
// document and the remote service payload.
type CodeEntry struct {
	Code        string `xml:"ErrorCode"`
	Description string `xml:"Description"`
}

type codeDocument struct {
	XMLName xml.Name    `xml:"errorCodes"`
	Entries []CodeEntry `xml:"errorCode"`
}

// ErrorDatabase maps 8-hex-digit uppercase codes to descriptions.
// Document order is preserved across load/save cycles.
type ErrorDatabase struct {
	path  string
	codes map[string]string
	order []string
}

func NewErrorDatabase(path string) *ErrorDatabase {
	return &ErrorDatabase{path: path, codes: map[string]string{}}
}

// Path returns the on-disk location of the database.
func (db *ErrorDatabase) Path() string {
	return db.path
}

// Exists reports whether a persisted database file is present.
func (db *ErrorDatabase) Exists() bool {
	_, err := os.Stat(db.path)
	return err == nil
}

func (db *ErrorDatabase) Len() int {
	return len(db.codes)
}

// Get looks up a description. The code is normalized to uppercase.
func (db *ErrorDatabase) Get(code string) (string, bool) {
	desc, ok := db.codes[strings.ToUpper(code)]
	return desc, ok
}

// Put inserts or overwrites one entry, preserving first-insert order.
func (db *ErrorDatabase) Put(code, description string) {
	code = strings.ToUpper(code)
	if _, ok := db.codes[code]; !ok {
		db.order = append(db.order, code)
	}
	db.codes[code] = description
}

// Replace drops all entries and repopulates from entries, keeping their
// order. Entries with invalid codes are dropped, not stored.
func (db *ErrorDatabase) Replace(entries []CodeEntry) {
	db.codes = map[string]string{}
	db.order = nil
	for _, e := range entries {
		if !ValidateErrorCode(e.Code) {
			glog.V(1).Infof("[errordb]: dropping malformed code %q", e.Code)
			continue
		}
		db.Put(e.Code, e.Description)
	}
}

// Entries returns all records in document order.
func (db *ErrorDatabase) Entries() []CodeEntry {
	entries := make([]CodeEntry, 0, len(db.order))
	for _, code := range db.order {
		entries = append(entries, CodeEntry{code, db.codes[code]})
	}
	return entries
}

// Load reads the persisted database. A missing file is an empty database,
// not an error; unparseable content fails with CorruptDatabase.
func (db *ErrorDatabase) Load() error {
	data, err := os.ReadFile(db.path)
	if os.IsNotExist(err) {
		glog.V(1).Infof("[errordb]: no database at %s, starting empty", db.path)
		return nil
	}
	if err != nil {
		return wrapError(KindIOFailure, err, "failed to read error database %s", db.path)
	}
	var doc codeDocument
	if err = xml.Unmarshal(data, &doc); err != nil {
		return wrapError(KindCorruptDatabase, err, "invalid error database format: %s", db.path)
	}
	db.codes = map[string]string{}
	db.order = nil
	for _, e := range doc.Entries {
		db.Put(e.Code, e.Description)
	}
	glog.V(1).Infof("[errordb]: loaded %d codes from %s", db.Len(), db.path)
	return nil
}

// Save rewrites the full database, creating parent directories as needed.
func (db *ErrorDatabase) Save() error {
	var err error
	if dir := filepath.Dir(db.path); dir != "." {
		if err = os.MkdirAll(dir, 0755); err != nil {
			return wrapError(KindIOFailure, err, "failed to create database directory %s", dir)
		}
	}
	doc := codeDocument{Entries: db.Entries()}
	var data []byte
	if data, err = xml.MarshalIndent(doc, "", "  "); err != nil {
		return wrapError(KindIOFailure, err, "failed to encode error database")
	}
	data = append([]byte(xml.Header), data...)
	if err = os.WriteFile(db.path, data, 0644); err != nil {
		return wrapError(KindIOFailure, err, "failed to write error database %s", db.path)
	}
	glog.V(1).Infof("[errordb]: saved %d codes to %s", db.Len(), db.path)
	return nil
}
