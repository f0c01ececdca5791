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
	"net/url"
)

// TargetSeparator joins a target name and version into the composite
// target identifier the director and reposerver expect ("img-1.0").
const TargetSeparator = "-"

// TargetFormat is the payload format of an update target.
type TargetFormat string

// Define the supported target formats (wire representation)
const (
	Binary TargetFormat = "BINARY"
	Ostree TargetFormat = "OSTREE"
)

// DefaultTargetFormat applies when neither an entry nor its file sets one.
const DefaultTargetFormat = Ostree

// ChecksumMethod is the hashing algorithm of a target checksum.
type ChecksumMethod string

// Define the supported checksum methods
const (
	SHA256 ChecksumMethod = "sha256"
	SHA512 ChecksumMethod = "sha512"
)

// DefaultChecksumMethod applies when a target spec leaves the method out.
const DefaultChecksumMethod = SHA256

type HexBytes []byte

// TargetLength is the payload length of a TargetSpec. Negative values are
// rejected while decoding.
type TargetLength uint64

// Checksum of a TufTarget
type Checksum struct {
	Method ChecksumMethod `json:"method"`
	Hash   HexBytes       `json:"hash"`
}

// TufTarget identifies one TUF target an ECU is moved to (or from).
type TufTarget struct {
	Target   string   `json:"target"`
	Length   uint64   `json:"targetLength"`
	Checksum Checksum `json:"checksum"`
}

// TufUpdate is the update request for a single hardware class.
type TufUpdate struct {
	// From optionally pins the target currently installed
	From         *TufTarget   `json:"from,omitempty"`
	To           TufTarget    `json:"to"`
	Format       TargetFormat `json:"targetFormat"`
	GenerateDiff bool         `json:"generateDiff"`
}

// TufUpdates is the body of a multi-target update request, keyed by
// hardware identifier.
type TufUpdates struct {
	Targets map[string]TufUpdate `json:"targets"`
}

// TargetSpec is the human-authored description of a target.
type TargetSpec struct {
	Name    string         `toml:"name"`
	Version string         `toml:"version"`
	Length  TargetLength   `toml:"length"`
	Hash    HexBytes       `toml:"hash"`
	Method  ChecksumMethod `toml:"method"`
	// Path points at a local copy of the payload. The loader replaces it
	// with the payload's length and hash.
	Path string `toml:"path"`
}

// TargetRequest is the human-authored update of one hardware class.
type TargetRequest struct {
	HardwareID   string       `toml:"-"`
	Format       TargetFormat `toml:"target_format"`
	From         *TargetSpec  `toml:"from"`
	To           TargetSpec   `toml:"to"`
	GenerateDiff *bool        `toml:"generate_diff"`
}

// TargetRequests is a parsed update file: an optional default format and
// one request per hardware class, in file order.
type TargetRequests struct {
	Format   TargetFormat
	Requests []TargetRequest
}

// PackageSpec is the human-authored description of a package upload.
type PackageSpec struct {
	Name     string       `toml:"name"`
	Version  string       `toml:"version"`
	Hardware []string     `toml:"hardware"`
	Format   TargetFormat `toml:"target_format"`
	Path     string       `toml:"path"`
	URL      string       `toml:"url"`
}

// PackageSource locates package contents. Exactly one field is set.
type PackageSource struct {
	Path string
	URL  *url.URL
}

// TufPackage is a validated package ready for the reposerver.
type TufPackage struct {
	Name        string
	Version     string
	HardwareIDs []string
	Format      TargetFormat
	Source      PackageSource
}
