// Copyright 2023 VMware, Inc.
//
// This product is licensed to you under the BSD-2 license (the "License").
// You may not use this product except in compliance with the BSD-2 License.
// This product may include a number of subcomponents with separate copyright
// notices and license terms. Your use of these subcomponents is subject to
// the terms and conditions of the subcomponent's license, as noted in the
// LICENSE file.
//
// SPDX-License-Identifier: BSD-2-Clause

// Package credentials reads the credentials archive handed out by the OTA
// platform.
package credentials

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/otaplus/ota-cli/ota"
)

// Well-known entries of the credentials archive
const (
	TreehubEntry = "treehub.json"
	TufRepoEntry = "tufrepo.url"
)

// Credentials is the parsed content of a credentials archive
type Credentials struct {
	NoAuth     *bool   `json:"no_auth,omitempty"`
	OAuth2     *OAuth2 `json:"oauth2,omitempty"`
	Ostree     Ostree  `json:"ostree"`
	Reposerver string  `json:"-"`
}

// OAuth2 holds the client credentials used against Auth+
type OAuth2 struct {
	Server       string `json:"server"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type Ostree struct {
	Server string `json:"server"`
}

// String keeps the client secret out of logs and error messages
func (o OAuth2) String() string {
	return fmt.Sprintf("OAuth2{Server: %s, ClientID: %s, ClientSecret: <redacted>}", o.Server, o.ClientID)
}

func (o OAuth2) GoString() string {
	return o.String()
}

// IsNoAuth reports whether the archive disables authentication
func (c *Credentials) IsNoAuth() bool {
	return c.NoAuth != nil && *c.NoAuth
}

// Validate checks that exactly one authentication path is usable
func (c *Credentials) Validate() error {
	switch {
	case c.IsNoAuth() && c.OAuth2 != nil:
		return ota.ErrAuth{Msg: "credentials enable both no_auth and oauth2"}
	case c.IsNoAuth():
		return nil
	case c.OAuth2 == nil:
		return ota.ErrAuth{Msg: "no parseable auth method in credentials"}
	case c.OAuth2.Server == "" || c.OAuth2.ClientID == "":
		return ota.ErrAuth{Msg: "oauth2 credentials need a server and a client id"}
	}
	return nil
}

// Parse reads treehub.json and tufrepo.url from the archive at path
func Parse(path string) (*Credentials, error) {
	ota.GetLogger().Info("Reading credentials archive", "path", path)
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, ota.ErrCredentials{Msg: fmt.Sprintf("opening %s", path), Err: err}
	}
	defer archive.Close()

	data, err := readEntry(&archive.Reader, TreehubEntry)
	if err != nil {
		return nil, err
	}
	creds := &Credentials{}
	if err := json.Unmarshal(data, creds); err != nil {
		return nil, ota.ErrCredentials{Msg: fmt.Sprintf("decoding %s", TreehubEntry), Err: err}
	}
	if creds.Ostree.Server == "" {
		return nil, ota.ErrCredentials{Msg: fmt.Sprintf("%s has no ostree server", TreehubEntry)}
	}
	if _, err := parseAbsURL(creds.Ostree.Server); err != nil {
		return nil, ota.ErrCredentials{Msg: "invalid ostree server", Err: err}
	}

	creds.Reposerver, err = reposerverURL(&archive.Reader)
	if err != nil {
		return nil, err
	}
	return creds, nil
}

// ReposerverURL reads only the tufrepo.url entry of the archive at path
func ReposerverURL(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", ota.ErrCredentials{Msg: fmt.Sprintf("opening %s", path), Err: err}
	}
	defer archive.Close()
	return reposerverURL(&archive.Reader)
}

func reposerverURL(r *zip.Reader) (string, error) {
	data, err := readEntry(r, TufRepoEntry)
	if err != nil {
		return "", err
	}
	u, err := parseAbsURL(strings.TrimSpace(string(data)))
	if err != nil {
		return "", ota.ErrCredentials{Msg: fmt.Sprintf("invalid %s", TufRepoEntry), Err: err}
	}
	return u.String(), nil
}

func readEntry(r *zip.Reader, name string) ([]byte, error) {
	f, err := r.Open(name)
	if err != nil {
		return nil, ota.ErrCredentials{Msg: fmt.Sprintf("missing %s", name), Err: err}
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, ota.ErrCredentials{Msg: fmt.Sprintf("reading %s", name), Err: err}
	}
	return data, nil
}

func parseAbsURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%q is not an absolute url", raw)
	}
	return u, nil
}
