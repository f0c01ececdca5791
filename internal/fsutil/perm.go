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

//go:build !windows
// +build !windows

package fsutil

import (
	"io/fs"
	"os"
)

// EnsureMaxPermissions tests the provided file info, returning an error if
// the file's permission bits contain excess permissions not set in maxPerms.
//
// For example, a file with permissions -rw------- will successfully validate
// with maxPerms -rw-r--r-- or -rw-rw-r--, but would not successfully
// validate with maxPerms -r--------.
func EnsureMaxPermissions(fi os.FileInfo, maxPerms os.FileMode) error {
	// Clear all bits which are not related to the permission.
	mode := fi.Mode() & fs.ModePerm
	mask := ^(maxPerms & fs.ModePerm)
	if (mode & mask) != 0 {
		return ErrPermission
	}

	return nil
}
