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

package helpers

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Test credentials
const (
	ClientID     = "ota-client"
	ClientSecret = "s3cr3t-client-secret"
	OstreeServer = "https://treehub.example.com/api/v3"
	TufRepoURL   = "https://reposerver.example.com/"
)

// OAuth2Treehub returns a treehub.json using the client credentials grant
// against server.
func OAuth2Treehub(server string) string {
	return fmt.Sprintf(`{
  "oauth2": {"server": %q, "client_id": %q, "client_secret": %q},
  "ostree": {"server": %q}
}`, server, ClientID, ClientSecret, OstreeServer)
}

// NoAuthTreehub returns a treehub.json disabling authentication
func NoAuthTreehub() string {
	return fmt.Sprintf(`{"no_auth": true, "ostree": {"server": %q}}`, OstreeServer)
}

// WriteZip creates an archive named name in dir holding entries
func WriteZip(t *testing.T, dir, name string, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for entry, content := range entries {
		w, err := zw.Create(entry)
		if err != nil {
			t.Fatalf("creating entry %s: %v", entry, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("writing entry %s: %v", entry, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing %s: %v", path, err)
	}
	return path
}

// WriteCredentials creates a credentials.zip with the given treehub.json
// and the default tufrepo.url.
func WriteCredentials(t *testing.T, dir, treehub string) string {
	t.Helper()
	return WriteZip(t, dir, "credentials.zip", map[string]string{
		"treehub.json": treehub,
		"tufrepo.url":  TufRepoURL + "\n",
	})
}

// SHA256Hex returns the hex encoded sha256 digest of data
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// AuthServer emulates the Auth+ token endpoint
type AuthServer struct {
	*httptest.Server
	Hits atomic.Int32
}

// NewAuthServer serves POST /token, answering with response (JSON encoded)
// when the client credentials match.
func NewAuthServer(t *testing.T, response any) *AuthServer {
	t.Helper()
	body, err := json.Marshal(response)
	if err != nil {
		t.Fatalf("encoding token response: %v", err)
	}
	as := &AuthServer{}
	r := chi.NewRouter()
	r.Post("/token", func(w http.ResponseWriter, req *http.Request) {
		as.Hits.Add(1)
		id, secret, ok := req.BasicAuth()
		if !ok || id != ClientID || secret != ClientSecret {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := req.ParseForm(); err != nil || req.PostForm.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if !strings.HasPrefix(req.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})
	as.Server = httptest.NewServer(r)
	t.Cleanup(as.Close)
	return as
}
