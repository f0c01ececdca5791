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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otaplus/ota-cli/ota"
)

func TestLoadEnvDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, key := range []string{"OTA_CONFIG", "OTA_LOG_LEVEL", "OTA_OUTPUT", "OTA_HTTP_TIMEOUT"} {
		unsetenv(t, key)
	}

	e, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DefaultFileName), e.ConfigPath)
	assert.Equal(t, "info", e.LogLevel)
	assert.Equal(t, "json", e.Output)
	assert.Equal(t, time.Duration(0), e.HTTPTimeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OTA_CONFIG", "/etc/ota.conf")
	t.Setenv("OTA_LOG_LEVEL", "debug")
	t.Setenv("OTA_OUTPUT", "yaml")
	t.Setenv("OTA_HTTP_TIMEOUT", "30s")

	e, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, &Env{
		ConfigPath:  "/etc/ota.conf",
		LogLevel:    "debug",
		Output:      "yaml",
		HTTPTimeout: 30 * time.Second,
	}, e)
}

func TestLoadEnvErrors(t *testing.T) {
	for _, timeout := range []string{"soon", "-1s"} {
		t.Run(timeout, func(t *testing.T) {
			t.Setenv("OTA_HTTP_TIMEOUT", timeout)
			_, err := LoadEnv()
			assert.IsType(t, ota.ErrParse{}, err)
		})
	}
}

// unsetenv removes key for the duration of the test
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}
