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

package ota

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sha256Hash = strings.Repeat("ab", 32)
	sha512Hash = strings.Repeat("cd", 64)
)

func mustHex(t *testing.T, s string) HexBytes {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func imgSpec(t *testing.T, length uint64) TargetSpec {
	return TargetSpec{
		Name:    "img",
		Version: "1.0",
		Length:  TargetLength(length),
		Hash:    mustHex(t, sha256Hash),
		Method:  SHA256,
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func TestCompileEndToEnd(t *testing.T) {
	updates, err := Compile(TargetRequests{
		Requests: []TargetRequest{{
			HardwareID: "ecu-1",
			Format:     Binary,
			To:         imgSpec(t, 1024),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, &TufUpdates{
		Targets: map[string]TufUpdate{
			"ecu-1": {
				To: TufTarget{
					Target:   "img-1.0",
					Length:   1024,
					Checksum: Checksum{Method: SHA256, Hash: mustHex(t, sha256Hash)},
				},
				Format:       Binary,
				GenerateDiff: false,
			},
		},
	}, updates)
}

func TestCompileLengthRules(t *testing.T) {
	for _, tt := range []struct {
		name    string
		format  TargetFormat
		length  uint64
		wantErr bool
	}{
		{name: "binary with zero length", format: Binary, length: 0, wantErr: true},
		{name: "binary with length", format: Binary, length: 1},
		{name: "ostree with zero length", format: Ostree, length: 0},
		{name: "ostree with length", format: Ostree, length: 4096},
	} {
		t.Run(tt.name, func(t *testing.T) {
			updates, err := Compile(TargetRequests{
				Requests: []TargetRequest{{HardwareID: "ecu-1", Format: tt.format, To: imgSpec(t, tt.length)}},
			})
			if tt.wantErr {
				assert.IsType(t, ErrValidation{}, err)
				assert.Nil(t, updates)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.length, updates.Targets["ecu-1"].To.Length)
		})
	}
}

func TestCompileBinaryFromTargetNeedsLength(t *testing.T) {
	from := imgSpec(t, 0)
	from.Version = "0.9"
	_, err := Compile(TargetRequests{
		Requests: []TargetRequest{{HardwareID: "ecu-1", Format: Binary, From: &from, To: imgSpec(t, 10)}},
	})
	assert.IsType(t, ErrValidation{}, err)
}

func TestCompileDuplicateHardwareID(t *testing.T) {
	_, err := Compile(TargetRequests{
		Requests: []TargetRequest{
			{HardwareID: "ecu-1", To: imgSpec(t, 1)},
			{HardwareID: "ecu-1", To: imgSpec(t, 2)},
		},
	})
	if assert.IsType(t, ErrValidation{}, err) {
		assert.Contains(t, err.Error(), "duplicate hardware id ecu-1")
	}
}

func TestCompileNoPartialOutput(t *testing.T) {
	updates, err := Compile(TargetRequests{
		Requests: []TargetRequest{
			{HardwareID: "ecu-1", Format: Binary, To: imgSpec(t, 1)},
			{HardwareID: "ecu-2", Format: Binary, To: imgSpec(t, 0)},
		},
	})
	assert.Error(t, err)
	assert.Nil(t, updates)
}

func TestCompileDefaults(t *testing.T) {
	spec := imgSpec(t, 0)
	spec.Method = ""
	updates, err := Compile(TargetRequests{
		Requests: []TargetRequest{{HardwareID: "ecu-1", To: spec}},
	})
	require.NoError(t, err)
	update := updates.Targets["ecu-1"]
	assert.Equal(t, SHA256, update.To.Checksum.Method)
	assert.False(t, update.GenerateDiff)
	assert.Equal(t, Ostree, update.Format)
	assert.Nil(t, update.From)
}

func TestCompileFormatPrecedence(t *testing.T) {
	updates, err := Compile(TargetRequests{
		Format: Binary,
		Requests: []TargetRequest{
			{HardwareID: "ecu-1", To: imgSpec(t, 1)},
			{HardwareID: "ecu-2", Format: Ostree, To: imgSpec(t, 0)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, Binary, updates.Targets["ecu-1"].Format)
	assert.Equal(t, Ostree, updates.Targets["ecu-2"].Format)

	// the file-wide default applies to the length rule too
	_, err = Compile(TargetRequests{
		Format:   Binary,
		Requests: []TargetRequest{{HardwareID: "ecu-1", To: imgSpec(t, 0)}},
	})
	assert.IsType(t, ErrValidation{}, err)
}

func TestCompileGenerateDiffAndFrom(t *testing.T) {
	from := imgSpec(t, 512)
	from.Version = "0.9"
	from.Method = SHA512
	from.Hash = mustHex(t, sha512Hash)
	updates, err := Compile(TargetRequests{
		Requests: []TargetRequest{{
			HardwareID:   "ecu-1",
			Format:       Binary,
			From:         &from,
			To:           imgSpec(t, 1024),
			GenerateDiff: boolPtr(true),
		}},
	})
	require.NoError(t, err)
	update := updates.Targets["ecu-1"]
	assert.True(t, update.GenerateDiff)
	if assert.NotNil(t, update.From) {
		assert.Equal(t, "img-0.9", update.From.Target)
		assert.Equal(t, SHA512, update.From.Checksum.Method)
	}
}

func TestCompileRejectsInvalidTargets(t *testing.T) {
	for _, tt := range []struct {
		name   string
		mutate func(req *TargetRequest)
	}{
		{name: "missing hardware id", mutate: func(req *TargetRequest) { req.HardwareID = "" }},
		{name: "missing name", mutate: func(req *TargetRequest) { req.To.Name = "" }},
		{name: "missing version", mutate: func(req *TargetRequest) { req.To.Version = "" }},
		{name: "missing hash", mutate: func(req *TargetRequest) { req.To.Hash = nil }},
		{name: "hash size mismatch", mutate: func(req *TargetRequest) { req.To.Method = SHA512 }},
		{name: "unresolved payload path", mutate: func(req *TargetRequest) { req.To.Path = "img.bin" }},
		{name: "unknown format", mutate: func(req *TargetRequest) { req.Format = "SQUASHFS" }},
	} {
		t.Run(tt.name, func(t *testing.T) {
			req := TargetRequest{HardwareID: "ecu-1", Format: Ostree, To: imgSpec(t, 1)}
			tt.mutate(&req)
			_, err := Compile(TargetRequests{Requests: []TargetRequest{req}})
			assert.IsType(t, ErrValidation{}, err)
		})
	}
}

func TestTufUpdatesWireFormat(t *testing.T) {
	updates, err := Compile(TargetRequests{
		Requests: []TargetRequest{{HardwareID: "ecu-1", Format: Binary, To: imgSpec(t, 1024)}},
	})
	require.NoError(t, err)

	data, err := updates.MarshalCanonical()
	require.NoError(t, err)
	want := `{"targets":{"ecu-1":{"generateDiff":false,"targetFormat":"BINARY","to":{"checksum":{"hash":"` +
		sha256Hash + `","method":"sha256"},"target":"img-1.0","targetLength":1024}}}}`
	assert.Equal(t, want, string(data))

	var decoded TufUpdates
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, updates, &decoded)
}

func TestHardwareIDsSorted(t *testing.T) {
	updates := &TufUpdates{Targets: map[string]TufUpdate{"b": {}, "c": {}, "a": {}}}
	assert.Equal(t, []string{"a", "b", "c"}, updates.HardwareIDs())
}

var updateFile = `
target_format = "binary"

[ecu-2]
target_format = "ostree"
  [ecu-2.to]
  name = "rootfs"
  version = "2.1"
  hash = "` + sha256Hash + `"

[ecu-1]
generate_diff = true
  [ecu-1.from]
  name = "img"
  version = "0.9"
  length = 512
  hash = "` + sha256Hash + `"
  [ecu-1.to]
  name = "img"
  version = "1.0"
  length = 1024
  hash = "` + sha512Hash + `"
  method = "SHA512"
`

func TestParseTargetRequests(t *testing.T) {
	requests, err := ParseTargetRequests([]byte(updateFile))
	require.NoError(t, err)
	assert.Equal(t, Binary, requests.Format)
	require.Len(t, requests.Requests, 2)

	// file order is preserved
	assert.Equal(t, "ecu-2", requests.Requests[0].HardwareID)
	assert.Equal(t, Ostree, requests.Requests[0].Format)
	assert.Equal(t, "ecu-1", requests.Requests[1].HardwareID)
	assert.Equal(t, TargetFormat(""), requests.Requests[1].Format)
	if assert.NotNil(t, requests.Requests[1].GenerateDiff) {
		assert.True(t, *requests.Requests[1].GenerateDiff)
	}
	require.NotNil(t, requests.Requests[1].From)
	assert.Equal(t, TargetLength(512), requests.Requests[1].From.Length)
	assert.Equal(t, SHA512, requests.Requests[1].To.Method)

	updates, err := Compile(*requests)
	require.NoError(t, err)
	assert.Equal(t, Binary, updates.Targets["ecu-1"].Format)
	assert.Equal(t, "img-1.0", updates.Targets["ecu-1"].To.Target)
	assert.Equal(t, SHA512, updates.Targets["ecu-1"].To.Checksum.Method)
	assert.Equal(t, SHA256, updates.Targets["ecu-1"].From.Checksum.Method)
	assert.Equal(t, Ostree, updates.Targets["ecu-2"].Format)
	assert.Equal(t, "rootfs-2.1", updates.Targets["ecu-2"].To.Target)
}

func TestParseTargetRequestsImplicitTables(t *testing.T) {
	data := "[ecu-b.to]\nname = \"b\"\n[ecu-a.to]\nname = \"a\"\n"
	requests, err := ParseTargetRequests([]byte(data))
	require.NoError(t, err)
	require.Len(t, requests.Requests, 2)
	assert.Equal(t, "ecu-b", requests.Requests[0].HardwareID)
	assert.Equal(t, "a", requests.Requests[1].To.Name)
}

func TestParseTargetRequestsErrors(t *testing.T) {
	for _, tt := range []struct {
		name string
		data string
	}{
		{name: "malformed toml", data: `[ecu-1`},
		{name: "unknown format", data: "[ecu-1]\ntarget_format = \"squashfs\"\n"},
		{name: "unknown top-level format", data: "target_format = \"zip\"\n"},
		{name: "unknown method", data: "[ecu-1.to]\nmethod = \"md5\"\n"},
		{name: "non hex hash", data: "[ecu-1.to]\nhash = \"zz\"\n"},
		{name: "negative length", data: "[ecu-1.to]\nlength = -1\n"},
		{name: "fractional length", data: "[ecu-1.to]\nlength = 1.5\n"},
		{name: "string length", data: "[ecu-1.to]\nlength = \"1024\"\n"},
		{name: "duplicate table", data: "[ecu-1]\n[ecu-1]\n"},
		{name: "scalar entry", data: "ecu-1 = 3\n"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTargetRequests([]byte(tt.data))
			assert.IsType(t, ErrParse{}, err)
		})
	}
}

func TestParseTargetRequestsRejectsNegativeLength(t *testing.T) {
	data := "target_format = \"binary\"\n[ecu-1]\nto = { name = \"img\", version = \"1.0\", length = -1, hash = \"" + sha256Hash + "\" }\n"
	requests, err := ParseTargetRequests([]byte(data))
	assert.IsType(t, ErrParse{}, err)
	assert.Nil(t, requests)

	requests, err = ParseTargetRequests([]byte(strings.Replace(data, "-1", "4096", 1)))
	require.NoError(t, err)
	updates, err := Compile(*requests)
	require.NoError(t, err)
	assert.Equal(t, uint64(4096), updates.Targets["ecu-1"].To.Length)
}

func TestTargetLengthUnmarshalTOML(t *testing.T) {
	for _, tt := range []struct {
		name    string
		data    any
		want    TargetLength
		wantErr bool
	}{
		{name: "zero", data: int64(0), want: 0},
		{name: "positive", data: int64(1024), want: 1024},
		{name: "negative", data: int64(-1), wantErr: true},
		{name: "float", data: 1.5, wantErr: true},
		{name: "string", data: "1024", wantErr: true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var l TargetLength
			err := l.UnmarshalTOML(tt.data)
			if tt.wantErr {
				assert.IsType(t, ErrParse{}, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, l)
		})
	}
}

func TestLoadTargetRequestsResolvesPayloads(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("firmware image contents")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img.bin"), payload, 0644))
	spec := `
[ecu-1]
target_format = "binary"
  [ecu-1.to]
  name = "img"
  version = "1.0"
  path = "img.bin"
`
	specPath := filepath.Join(dir, "update.toml")
	require.NoError(t, os.WriteFile(specPath, []byte(spec), 0644))

	requests, err := LoadTargetRequests(specPath)
	require.NoError(t, err)
	to := requests.Requests[0].To
	assert.Equal(t, "", to.Path)
	assert.Equal(t, TargetLength(len(payload)), to.Length)
	assert.Equal(t, SHA256, to.Method)

	info, err := PayloadFromFile(filepath.Join(dir, "img.bin"), SHA256)
	require.NoError(t, err)
	assert.Equal(t, info.Hash, to.Hash)

	_, err = Compile(*requests)
	assert.NoError(t, err)
}

func TestLoadTargetRequestsErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadTargetRequests(filepath.Join(dir, "missing.toml"))
	assert.IsType(t, ErrIO{}, err)

	conflicting := "[ecu-1.to]\nname = \"img\"\nversion = \"1\"\nlength = 3\npath = \"img.bin\"\n"
	p := filepath.Join(dir, "conflict.toml")
	require.NoError(t, os.WriteFile(p, []byte(conflicting), 0644))
	_, err = LoadTargetRequests(p)
	assert.IsType(t, ErrValidation{}, err)

	missingPayload := "[ecu-1.to]\nname = \"img\"\nversion = \"1\"\npath = \"nope.bin\"\n"
	p = filepath.Join(dir, "missing-payload.toml")
	require.NoError(t, os.WriteFile(p, []byte(missingPayload), 0644))
	_, err = LoadTargetRequests(p)
	assert.IsType(t, ErrIO{}, err)
}
