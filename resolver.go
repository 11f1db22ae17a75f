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

// Two-tier error-code resolution: local database first, then the remote
// uartcodes service with write-back caching.
package gonor

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/golang/glog"
)

// DefaultServiceURL is the public uartcodes lookup endpoint.
const DefaultServiceURL = "http://uartcodes.com/xml.php"

var errorCodePattern = regexp.MustCompile(`^[0-9A-F]{8}$`)

// ValidateErrorCode reports whether code is exactly 8 hex digits.
// Case-insensitive; storage normalizes to uppercase.
func ValidateErrorCode(code string) bool {
	return errorCodePattern.MatchString(strings.ToUpper(code))
}

//go:generate mockgen -destination=mocks/remote.go -package=mocks github.com/google/gonor RemoteLookupInterface
type RemoteLookupInterface interface {
	// Fetches entries matching a single code. An answered-but-empty result
	// (non-2xx status or no match) is (nil, nil); transport failure or a
	// malformed body is a LookupFailure error.
	FetchCode(code string) ([]CodeEntry, error)
	// Fetches the entire remote catalog under the same conventions.
	FetchAll() ([]CodeEntry, error)
}

// UartCodesClient queries the uartcodes XML service.
type UartCodesClient struct {
	base   string
	client *http.Client
}

// NewUartCodesClient targets base, or DefaultServiceURL when base is empty.
func NewUartCodesClient(base string) *UartCodesClient {
	if base == "" {
		base = DefaultServiceURL
	}
	return &UartCodesClient{base, http.DefaultClient}
}

func (c *UartCodesClient) fetch(u string) ([]CodeEntry, error) {
	glog.V(1).Infof("[uartcodes]: GET %s", u)
	resp, err := c.client.Get(u)
	if err != nil {
		return nil, wrapError(KindLookupFailure, err, "failed to reach lookup service")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		glog.V(1).Infof("[uartcodes]: status %d", resp.StatusCode)
		return nil, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapError(KindLookupFailure, err, "failed to read lookup response")
	}
	var doc codeDocument
	if err = xml.Unmarshal(body, &doc); err != nil {
		return nil, wrapError(KindLookupFailure, err, "malformed lookup response")
	}
	return doc.Entries, nil
}

func (c *UartCodesClient) FetchCode(code string) ([]CodeEntry, error) {
	return c.fetch(fmt.Sprintf("%s?errorCode=%s", c.base, url.QueryEscape(code)))
}

func (c *UartCodesClient) FetchAll() ([]CodeEntry, error) {
	return c.fetch(c.base)
}

// Resolver resolves error codes against the local database, falling back to
// the remote service and writing successful results back.
type Resolver struct {
	db     *ErrorDatabase
	remote RemoteLookupInterface
}

func NewResolver(db *ErrorDatabase, remote RemoteLookupInterface) *Resolver {
	return &Resolver{db, remote}
}

// ErrorDescription implements DescriptionResolver.
// Lookup order: local database, then one remote query. A remote hit is
// inserted into the database and persisted. No match at all yields the
// UnknownDescription sentinel, which is not a failure.
func (r *Resolver) ErrorDescription(code string) (string, error) {
	if !ValidateErrorCode(code) {
		return "", newError(KindInvalidCode, "invalid error code format: %q", code)
	}
	code = strings.ToUpper(code)

	if desc, ok := r.db.Get(code); ok {
		return desc, nil
	}

	entries, err := r.remote.FetchCode(code)
	if err != nil {
		return "", wrapError(errKind(err), err, "failed to fetch description for %s", code)
	}
	for _, e := range entries {
		if strings.ToUpper(e.Code) != code {
			continue
		}
		r.db.Put(code, e.Description)
		if err = r.db.Save(); err != nil {
			// Keep the answer; the cache write-back is best effort.
			glog.Warningf("Failed to persist error database: %v", err)
		}
		return e.Description, nil
	}
	return UnknownDescription, nil
}

// DownloadDatabase fetches the entire remote catalog and fully replaces the
// local database with the validated entries, then persists it. The bool
// reports whether the fetch+replace succeeded; an answered-but-empty remote
// response is (false, nil).
func (r *Resolver) DownloadDatabase() (bool, error) {
	entries, err := r.remote.FetchAll()
	if err != nil {
		return false, wrapError(errKind(err), err, "failed to download error database")
	}
	if len(entries) == 0 {
		return false, nil
	}
	r.db.Replace(entries)
	if err = r.db.Save(); err != nil {
		return false, wrapError(errKind(err), err, "failed to persist error database")
	}
	glog.Infof("Downloaded error database: %d codes", r.db.Len())
	return true, nil
}

// Initialize prepares the local database at startup: load the persisted file
// if one exists, otherwise download the full catalog. No freshness check.
func (r *Resolver) Initialize() error {
	if r.db.Exists() {
		return r.db.Load()
	}
	if _, err := r.DownloadDatabase(); err != nil {
		return wrapError(errKind(err), err, "failed to initialize error database")
	}
	return nil
}
