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
	"errors"
	"fmt"
	"strings"
)

// ParseTargetFormat accepts "binary" or "ostree" in any case.
func ParseTargetFormat(s string) (TargetFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "binary":
		return Binary, nil
	case "ostree":
		return Ostree, nil
	default:
		return "", ErrParse{Msg: fmt.Sprintf("unknown target format %q", s)}
	}
}

func (f *TargetFormat) UnmarshalText(text []byte) error {
	format, err := ParseTargetFormat(string(text))
	if err != nil {
		return err
	}
	*f = format
	return nil
}

func (f TargetFormat) String() string {
	return string(f)
}

// ParseChecksumMethod accepts "sha256" or "sha512" in any case.
func ParseChecksumMethod(s string) (ChecksumMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sha256":
		return SHA256, nil
	case "sha512":
		return SHA512, nil
	default:
		return "", ErrParse{Msg: fmt.Sprintf("unknown checksum method %q", s)}
	}
}

func (m *ChecksumMethod) UnmarshalText(text []byte) error {
	method, err := ParseChecksumMethod(string(text))
	if err != nil {
		return err
	}
	*m = method
	return nil
}

// Size returns the digest size in bytes
func (m ChecksumMethod) Size() int {
	switch m {
	case SHA256:
		return 32
	case SHA512:
		return 64
	default:
		return 0
	}
}

// UnmarshalTOML implements toml.Unmarshaler
func (l *TargetLength) UnmarshalTOML(data any) error {
	n, ok := data.(int64)
	if !ok {
		return ErrParse{Msg: fmt.Sprintf("length must be an integer, got %T", data)}
	}
	if n < 0 {
		return ErrParse{Msg: fmt.Sprintf("length must not be negative, got %d", n)}
	}
	*l = TargetLength(n)
	return nil
}

func (b *HexBytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || len(data)%2 != 0 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("ota: invalid JSON hex bytes")
	}
	return b.UnmarshalText(data[1 : len(data)-1])
}

func (b HexBytes) MarshalJSON() ([]byte, error) {
	res := make([]byte, hex.EncodedLen(len(b))+2)
	res[0] = '"'
	res[len(res)-1] = '"'
	hex.Encode(res[1:], b)
	return res, nil
}

// UnmarshalText decodes hex text as found in TOML specs
func (b *HexBytes) UnmarshalText(text []byte) error {
	res := make([]byte, hex.DecodedLen(len(text)))
	_, err := hex.Decode(res, text)
	if err != nil {
		return ErrParse{Msg: fmt.Sprintf("invalid hex hash %q: %v", text, err)}
	}
	*b = res
	return nil
}

func (b HexBytes) String() string {
	return hex.EncodeToString(b)
}
