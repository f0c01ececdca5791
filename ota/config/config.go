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
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/otaplus/ota-cli/internal/fsutil"
	"github.com/otaplus/ota-cli/ota"
	"github.com/otaplus/ota-cli/ota/credentials"
	"github.com/otaplus/ota-cli/ota/token"
)

// DefaultFileName is the name of the config file in the home directory
const DefaultFileName = ".ota.conf"

// filePerm keeps the stored access token private to the user
const filePerm os.FileMode = 0600

// Config is the local state shared by every invocation: service URLs, the
// credentials archive and the last access token.
type Config struct {
	CredentialsZip string             `json:"credentials_zip"`
	Token          *token.AccessToken `json:"token,omitempty"`
	Campaigner     string             `json:"campaigner"`
	Director       string             `json:"director"`
	Registry       string             `json:"registry"`
	Reposerver     string             `json:"reposerver"`

	path string
}

// DefaultPath returns ~/.ota.conf
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", ota.ErrIO{Msg: "determining home directory", Err: err}
	}
	return filepath.Join(home, DefaultFileName), nil
}

// New creates a config stored at path. The reposerver URL is read from the
// credentials archive.
func New(path, credentialsZip, campaigner, director, registry string) (*Config, error) {
	for name, raw := range map[string]string{
		"campaigner": campaigner,
		"director":   director,
		"registry":   registry,
	} {
		if err := validateURL(name, raw); err != nil {
			return nil, err
		}
	}
	absZip, err := filepath.Abs(credentialsZip)
	if err != nil {
		return nil, ota.ErrIO{Msg: fmt.Sprintf("resolving %s", credentialsZip), Err: err}
	}
	reposerver, err := credentials.ReposerverURL(absZip)
	if err != nil {
		return nil, err
	}
	return &Config{
		CredentialsZip: absZip,
		Campaigner:     campaigner,
		Director:       director,
		Registry:       registry,
		Reposerver:     reposerver,
		path:           path,
	}, nil
}

// Load reads a previously saved config
func Load(path string) (*Config, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ota.ErrIO{Msg: fmt.Sprintf("no config at %s, run `ota init` first", path), Err: err}
		}
		return nil, ota.ErrIO{Msg: fmt.Sprintf("reading config %s", path), Err: err}
	}
	if err := fsutil.EnsureMaxPermissions(fi, filePerm); err != nil {
		ota.GetLogger().Info("Config file is accessible by other users, recommended mode is 0600", "path", path, "mode", fi.Mode().Perm().String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ota.ErrIO{Msg: fmt.Sprintf("reading config %s", path), Err: err}
	}
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, ota.ErrParse{Msg: fmt.Sprintf("config %s: %v", path, err)}
	}
	cfg.path = path
	return cfg, nil
}

// Path returns the location the config is saved to
func (c *Config) Path() string {
	return c.path
}

// Save writes the config to its path
func (c *Config) Save() error {
	if c.path == "" {
		return ota.ErrIO{Msg: "config has no path"}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return ota.ErrParse{Msg: fmt.Sprintf("encoding config: %v", err)}
	}
	if err := fsutil.AtomicallyWriteFile(c.path, data, filePerm); err != nil {
		return ota.ErrIO{Msg: fmt.Sprintf("writing config %s", c.path), Err: err}
	}
	return nil
}

// SaveToken implements token.Store
func (c *Config) SaveToken(tok *token.AccessToken) error {
	c.Token = tok
	return c.Save()
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ota.ErrParse{Msg: fmt.Sprintf("%s url: %v", name, err)}
	}
	if u.Scheme == "" || u.Host == "" {
		return ota.ErrParse{Msg: fmt.Sprintf("%s url %q is not absolute", name, raw)}
	}
	return nil
}
