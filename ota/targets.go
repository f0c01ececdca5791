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
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/secure-systems-lab/go-securesystemslib/cjson"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// formatKey is the top-level key holding the default target format of an
// update file. It can't be used as a hardware identifier.
const formatKey = "target_format"

// TargetID joins a name and version into a composite target identifier
func TargetID(name, version string) string {
	return name + TargetSeparator + version
}

// Compile validates the requests and converts them into a multi-target
// update. It does no I/O, and nothing is returned unless every request
// compiles.
func Compile(requests TargetRequests) (*TufUpdates, error) {
	defaultFormat := DefaultTargetFormat
	if requests.Format != "" {
		defaultFormat = requests.Format
	}
	updates := &TufUpdates{Targets: make(map[string]TufUpdate, len(requests.Requests))}
	for _, req := range requests.Requests {
		if req.HardwareID == "" {
			return nil, ErrValidation{Msg: "target request without a hardware id"}
		}
		if _, ok := updates.Targets[req.HardwareID]; ok {
			return nil, ErrValidation{Msg: fmt.Sprintf("duplicate hardware id %s", req.HardwareID)}
		}
		format := defaultFormat
		if req.Format != "" {
			format = req.Format
		}
		if format != Binary && format != Ostree {
			return nil, ErrValidation{Msg: fmt.Sprintf("%s: unsupported target format %q", req.HardwareID, format)}
		}
		to, err := compileTarget(req.HardwareID, "to", req.To, format)
		if err != nil {
			return nil, err
		}
		update := TufUpdate{
			To:     *to,
			Format: format,
		}
		if req.From != nil {
			update.From, err = compileTarget(req.HardwareID, "from", *req.From, format)
			if err != nil {
				return nil, err
			}
		}
		if req.GenerateDiff != nil {
			update.GenerateDiff = *req.GenerateDiff
		}
		updates.Targets[req.HardwareID] = update
	}
	log.Info("Compiled multi-target update", "hardware_ids", updates.HardwareIDs())
	return updates, nil
}

func compileTarget(hwID, role string, spec TargetSpec, format TargetFormat) (*TufTarget, error) {
	if spec.Path != "" {
		return nil, ErrValidation{Msg: fmt.Sprintf("%s: %s payload %s was not resolved", hwID, role, spec.Path)}
	}
	if spec.Name == "" || spec.Version == "" {
		return nil, ErrValidation{Msg: fmt.Sprintf("%s: %s target needs a name and a version", hwID, role)}
	}
	if format == Binary && spec.Length == 0 {
		return nil, ErrValidation{Msg: fmt.Sprintf("%s: %s binary target %s has zero length", hwID, role, TargetID(spec.Name, spec.Version))}
	}
	method := DefaultChecksumMethod
	if spec.Method != "" {
		method = spec.Method
	}
	if method.Size() == 0 {
		return nil, ErrValidation{Msg: fmt.Sprintf("%s: unsupported checksum method %q", hwID, method)}
	}
	if len(spec.Hash) != method.Size() {
		return nil, ErrValidation{Msg: fmt.Sprintf("%s: %s hash has %d bytes, %s needs %d", hwID, role, len(spec.Hash), method, method.Size())}
	}
	return &TufTarget{
		Target: TargetID(spec.Name, spec.Version),
		Length: uint64(spec.Length),
		Checksum: Checksum{
			Method: method,
			Hash:   slices.Clone(spec.Hash),
		},
	}, nil
}

// HardwareIDs returns the hardware identifiers in sorted order
func (u *TufUpdates) HardwareIDs() []string {
	ids := maps.Keys(u.Targets)
	slices.Sort(ids)
	return ids
}

// MarshalCanonical encodes the update as canonical JSON
func (u *TufUpdates) MarshalCanonical() ([]byte, error) {
	return cjson.EncodeCanonical(u)
}

// ParseTargetRequests decodes an update file. The optional top-level
// target_format sets the default format; every table is the request of the
// hardware class named by its key.
func ParseTargetRequests(data []byte) (*TargetRequests, error) {
	var raw map[string]toml.Primitive
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, ErrParse{Msg: fmt.Sprintf("update file: %v", err)}
	}
	requests := &TargetRequests{}
	for _, name := range topLevelKeys(md, raw) {
		if name == formatKey {
			if err := md.PrimitiveDecode(raw[name], &requests.Format); err != nil {
				return nil, ErrParse{Msg: fmt.Sprintf("update file: %s: %v", formatKey, err)}
			}
			continue
		}
		req := TargetRequest{HardwareID: name}
		if err := md.PrimitiveDecode(raw[name], &req); err != nil {
			return nil, ErrParse{Msg: fmt.Sprintf("update file: %s: %v", name, err)}
		}
		requests.Requests = append(requests.Requests, req)
	}
	warnUndecoded("update file", md)
	return requests, nil
}

// LoadTargetRequests reads and parses an update file, then resolves any
// local payload paths relative to the file's directory.
func LoadTargetRequests(path string) (*TargetRequests, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrIO{Msg: fmt.Sprintf("reading update file %s", path), Err: err}
	}
	requests, err := ParseTargetRequests(data)
	if err != nil {
		return nil, err
	}
	if err := requests.ResolvePayloads(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return requests, nil
}

// ResolvePayloads fills length and hash of every target spec that points
// at a local payload file.
func (r *TargetRequests) ResolvePayloads(baseDir string) error {
	for i := range r.Requests {
		req := &r.Requests[i]
		if err := resolvePayload(baseDir, req.HardwareID, &req.To); err != nil {
			return err
		}
		if req.From != nil {
			if err := resolvePayload(baseDir, req.HardwareID, req.From); err != nil {
				return err
			}
		}
	}
	return nil
}

func resolvePayload(baseDir, hwID string, spec *TargetSpec) error {
	if spec.Path == "" {
		return nil
	}
	if spec.Length != 0 || len(spec.Hash) != 0 {
		return ErrValidation{Msg: fmt.Sprintf("%s: path %s can't be combined with length or hash", hwID, spec.Path)}
	}
	method := DefaultChecksumMethod
	if spec.Method != "" {
		method = spec.Method
	}
	path := spec.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	info, err := PayloadFromFile(path, method)
	if err != nil {
		return err
	}
	spec.Length = TargetLength(info.Length)
	spec.Hash = info.Hash
	spec.Method = method
	spec.Path = ""
	return nil
}

// topLevelKeys lists the keys of raw in file order. Tables only defined
// implicitly through a dotted header are placed where first referenced.
func topLevelKeys(md toml.MetaData, raw map[string]toml.Primitive) []string {
	keys := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, key := range md.Keys() {
		if len(key) == 0 || seen[key[0]] {
			continue
		}
		if _, ok := raw[key[0]]; !ok {
			continue
		}
		seen[key[0]] = true
		keys = append(keys, key[0])
	}
	rest := make([]string, 0)
	for name := range raw {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	return append(keys, rest...)
}

func warnUndecoded(what string, md toml.MetaData) {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	log.Info("Ignoring unknown keys", "file", what, "keys", keys)
}
