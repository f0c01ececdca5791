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
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/otaplus/ota-cli/ota"
)

// Env holds the settings that can be overridden from the environment
type Env struct {
	// Location of the config file. Defaults to ~/.ota.conf
	ConfigPath string `env:"OTA_CONFIG"`

	LogLevel string `env:"OTA_LOG_LEVEL" envDefault:"info"`
	Output   string `env:"OTA_OUTPUT" envDefault:"json"`

	// Zero leaves requests to the transport defaults
	HTTPTimeout time.Duration `env:"OTA_HTTP_TIMEOUT" envDefault:"0s"`
}

// LoadEnv reads the environment, after loading a .env file if present
func LoadEnv() (*Env, error) {
	_ = godotenv.Load()

	e := &Env{}
	if err := env.Parse(e); err != nil {
		return nil, ota.ErrParse{Msg: fmt.Sprintf("environment: %v", err)}
	}
	if e.HTTPTimeout < 0 {
		return nil, ota.ErrParse{Msg: "OTA_HTTP_TIMEOUT must not be negative"}
	}
	if e.ConfigPath == "" {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		e.ConfigPath = path
	}
	return e, nil
}
