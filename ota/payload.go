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
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"os"
)

// PayloadInfo is the length and digest of a local target payload
type PayloadInfo struct {
	Length uint64
	Hash   HexBytes
	Method ChecksumMethod
}

// PayloadFromFile generates PayloadInfo from file
func PayloadFromFile(localPath string, method ChecksumMethod) (*PayloadInfo, error) {
	log.Info("Hashing local payload", "path", localPath, "method", method)
	in, err := os.Open(localPath)
	if err != nil {
		return nil, ErrIO{Msg: fmt.Sprintf("opening payload %s", localPath), Err: err}
	}
	defer in.Close()
	info, err := PayloadFromReader(in, method)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// PayloadFromReader generates PayloadInfo from the bytes read from r
func PayloadFromReader(r io.Reader, method ChecksumMethod) (*PayloadInfo, error) {
	var hasher hash.Hash
	switch method {
	case SHA256:
		hasher = sha256.New()
	case SHA512:
		hasher = sha512.New()
	default:
		return nil, ErrValidation{Msg: fmt.Sprintf("unsupported checksum method %q", method)}
	}
	n, err := io.Copy(hasher, r)
	if err != nil {
		return nil, ErrIO{Msg: "reading payload", Err: err}
	}
	return &PayloadInfo{
		Length: uint64(n),
		Hash:   hasher.Sum(nil),
		Method: method,
	}, nil
}
