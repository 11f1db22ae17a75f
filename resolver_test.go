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
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/gonor"
	"github.com/google/gonor/mocks"

	"github.com/golang/mock/gomock"
)

func TestValidateErrorCode(t *testing.T) {
	cases := []struct {
		code string
		want bool
	}{
		{"DEADBEEF", true},
		{"deadbeef", true},
		{"00112233", true},
		{"DEADBEE", false},  // 7 chars
		{"DEADBEEG", false}, // non-hex
		{"DEADBEEF0", false},
		{"", false},
	}
	for _, c := range cases {
		if got := gonor.ValidateErrorCode(c.code); got != c.want {
			t.Errorf("ValidateErrorCode(%q) = %v, want %v", c.code, got, c.want)
		}
	}
}

func newTestResolver(t *testing.T, remote gonor.RemoteLookupInterface) (*gonor.Resolver, *gonor.ErrorDatabase) {
	t.Helper()
	db := gonor.NewErrorDatabase(filepath.Join(t.TempDir(), "error_codes.xml"))
	return gonor.NewResolver(db, remote), db
}

func TestErrorDescriptionRejectsInvalidCode(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	r, _ := newTestResolver(t, mocks.NewMockRemoteLookupInterface(mockCtrl))
	_, err := r.ErrorDescription("nothex")
	if !gonor.IsKind(err, gonor.KindInvalidCode) {
		t.Errorf("Expected InvalidCode, got %v", err)
	}
}

func TestErrorDescriptionCacheHitSkipsRemote(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	// No FetchCode expectation: a cache hit must not touch the network.
	r, db := newTestResolver(t, mocks.NewMockRemoteLookupInterface(mockCtrl))
	db.Put("DEADBEEF", "cached description")

	desc, err := r.ErrorDescription("deadbeef")
	if err != nil {
		t.Fatalf("ErrorDescription failed: %v", err)
	}
	if desc != "cached description" {
		t.Errorf("Description = %q", desc)
	}
}

func TestErrorDescriptionRemoteHitWritesBack(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	remote := mocks.NewMockRemoteLookupInterface(mockCtrl)
	remote.EXPECT().FetchCode("AABBCCDD").Return(
		[]gonor.CodeEntry{{Code: "AABBCCDD", Description: "remote description"}}, nil)

	r, db := newTestResolver(t, remote)
	desc, err := r.ErrorDescription("AABBCCDD")
	if err != nil {
		t.Fatalf("ErrorDescription failed: %v", err)
	}
	if desc != "remote description" {
		t.Errorf("Description = %q", desc)
	}
	if cached, ok := db.Get("AABBCCDD"); !ok || cached != "remote description" {
		t.Errorf("Remote result not written back: (%q, %v)", cached, ok)
	}
	if !db.Exists() {
		t.Errorf("Write-back not persisted to disk")
	}

	// Second lookup is a cache hit; no further remote call expected.
	if _, err = r.ErrorDescription("AABBCCDD"); err != nil {
		t.Errorf("Cached lookup failed: %v", err)
	}
}

func TestErrorDescriptionNoMatchIsNotAFailure(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	remote := mocks.NewMockRemoteLookupInterface(mockCtrl)
	remote.EXPECT().FetchCode("AABBCCDD").Return(nil, nil)

	r, db := newTestResolver(t, remote)
	desc, err := r.ErrorDescription("AABBCCDD")
	if err != nil {
		t.Fatalf("ErrorDescription failed: %v", err)
	}
	if desc != gonor.UnknownDescription {
		t.Errorf("Description = %q, want sentinel", desc)
	}
	if db.Len() != 0 {
		t.Errorf("Sentinel result must not be cached")
	}
}

func TestErrorDescriptionTransportFailure(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	remote := mocks.NewMockRemoteLookupInterface(mockCtrl)
	remote.EXPECT().FetchCode("AABBCCDD").Return(nil,
		&gonor.Error{Kind: gonor.KindLookupFailure, Msg: "connection refused"})

	r, _ := newTestResolver(t, remote)
	_, err := r.ErrorDescription("AABBCCDD")
	if !gonor.IsKind(err, gonor.KindLookupFailure) {
		t.Errorf("Expected LookupFailure, got %v", err)
	}
}

func TestDownloadDatabaseFullyReplaces(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	remote := mocks.NewMockRemoteLookupInterface(mockCtrl)
	remote.EXPECT().FetchAll().Return([]gonor.CodeEntry{
		{Code: "AABBCCDD", Description: "new 1"},
		{Code: "malformed", Description: "dropped"},
		{Code: "CAFEF00D", Description: "new 2"},
	}, nil)

	r, db := newTestResolver(t, remote)
	db.Put("11223344", "stale entry")

	ok, err := r.DownloadDatabase()
	if err != nil {
		t.Fatalf("DownloadDatabase failed: %v", err)
	}
	if !ok {
		t.Fatalf("DownloadDatabase reported failure")
	}
	if _, found := db.Get("11223344"); found {
		t.Errorf("Stale entry survived full replace")
	}
	if db.Len() != 2 {
		t.Errorf("Database has %d codes, want 2", db.Len())
	}
	if !db.Exists() {
		t.Errorf("Replaced database not persisted")
	}
}

func TestDownloadDatabaseEmptyRemote(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	remote := mocks.NewMockRemoteLookupInterface(mockCtrl)
	remote.EXPECT().FetchAll().Return(nil, nil)

	r, _ := newTestResolver(t, remote)
	ok, err := r.DownloadDatabase()
	if err != nil {
		t.Fatalf("DownloadDatabase failed: %v", err)
	}
	if ok {
		t.Errorf("Empty remote payload reported as success")
	}
}

func TestInitializeDownloadsWhenNoFile(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	remote := mocks.NewMockRemoteLookupInterface(mockCtrl)
	remote.EXPECT().FetchAll().Return(
		[]gonor.CodeEntry{{Code: "AABBCCDD", Description: "seeded"}}, nil)

	r, db := newTestResolver(t, remote)
	if err := r.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if _, ok := db.Get("AABBCCDD"); !ok {
		t.Errorf("Initialize did not seed the database")
	}
}

func TestInitializeLoadsExistingFile(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	path := filepath.Join(t.TempDir(), "error_codes.xml")
	seed := gonor.NewErrorDatabase(path)
	seed.Put("DEADBEEF", "persisted")
	if err := seed.Save(); err != nil {
		t.Fatal(err)
	}

	// No FetchAll expectation: an existing file is loaded as-is.
	db := gonor.NewErrorDatabase(path)
	r := gonor.NewResolver(db, mocks.NewMockRemoteLookupInterface(mockCtrl))
	if err := r.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if desc, ok := db.Get("DEADBEEF"); !ok || desc != "persisted" {
		t.Errorf("Initialize did not load the existing file: (%q, %v)", desc, ok)
	}
}

const testServicePayload = `<?xml version="1.0" encoding="utf-8"?>
<errorCodes>
  <errorCode>
    <ErrorCode>DEADBEEF</ErrorCode>
    <Description>Thermal shutdown</Description>
  </errorCode>
</errorCodes>`

func TestUartCodesClientFetchCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("errorCode"); got != "DEADBEEF" {
			t.Errorf("errorCode query = %q", got)
		}
		w.Write([]byte(testServicePayload))
	}))
	defer srv.Close()

	client := gonor.NewUartCodesClient(srv.URL)
	entries, err := client.FetchCode("DEADBEEF")
	if err != nil {
		t.Fatalf("FetchCode failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Code != "DEADBEEF" || entries[0].Description != "Thermal shutdown" {
		t.Errorf("FetchCode = %v", entries)
	}
}

func TestUartCodesClientNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	client := gonor.NewUartCodesClient(srv.URL)
	entries, err := client.FetchAll()
	if err != nil {
		t.Fatalf("Non-2xx status must not be a transport failure: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("FetchAll = %v, want empty", entries)
	}
}

func TestUartCodesClientMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<errorCodes><unclosed"))
	}))
	defer srv.Close()

	client := gonor.NewUartCodesClient(srv.URL)
	_, err := client.FetchAll()
	if !gonor.IsKind(err, gonor.KindLookupFailure) {
		t.Errorf("Expected LookupFailure, got %v", err)
	}
}

func TestUartCodesClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := gonor.NewUartCodesClient(srv.URL)
	_, err := client.FetchCode("DEADBEEF")
	if !gonor.IsKind(err, gonor.KindLookupFailure) {
		t.Errorf("Expected LookupFailure, got %v", err)
	}
}
