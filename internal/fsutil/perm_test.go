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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureMaxPermissions(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "ota.conf")

	// Start with 0644 and change using os.Chmod so umask doesn't interfere.
	err := os.WriteFile(p, []byte(`{}`), 0644)
	assert.NoError(t, err)

	for _, tt := range []struct {
		name     string
		mode     os.FileMode
		maxPerms os.FileMode
		wantErr  bool
	}{
		{name: "exact match", mode: 0600, maxPerms: 0600},
		{name: "more restrictive file", mode: 0400, maxPerms: 0600},
		{name: "file mode bits ignored", mode: 0600, maxPerms: os.ModeSymlink | os.ModeAppend | 0600},
		{name: "group readable", mode: 0640, maxPerms: 0600, wantErr: true},
		{name: "world readable", mode: 0604, maxPerms: 0600, wantErr: true},
		{name: "owner executable", mode: 0700, maxPerms: 0600, wantErr: true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			err := os.Chmod(p, tt.mode)
			assert.NoError(t, err)
			fi, err := os.Stat(p)
			assert.NoError(t, err)
			err = EnsureMaxPermissions(fi, tt.maxPerms)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrPermission)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAtomicallyWriteFile(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "ota.conf")

	err := AtomicallyWriteFile(p, []byte(`{"a":1}`), 0600)
	assert.NoError(t, err)
	err = AtomicallyWriteFile(p, []byte(`{"a":2}`), 0600)
	assert.NoError(t, err)

	data, err := os.ReadFile(p)
	assert.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(data))

	fi, err := os.Stat(p)
	assert.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), fi.Mode().Perm())

	// no temporary files are left behind
	entries, err := os.ReadDir(tmp)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}
