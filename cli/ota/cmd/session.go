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

package cmd

import (
	"net/http"

	"github.com/otaplus/ota-cli/ota/api"
	"github.com/otaplus/ota-cli/ota/config"
	"github.com/otaplus/ota-cli/ota/dispatch"
	"github.com/otaplus/ota-cli/ota/token"
)

const userAgent = "ota-cli"

// openSession loads the local config and returns a client for the
// configured services. A token obtained during the session is written back
// to the config.
func openSession() (*config.Config, *api.Client, error) {
	cfg, err := config.Load(env.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	client := &http.Client{Timeout: env.HTTPTimeout}
	tokens := token.NewCache(&token.Archive{Path: cfg.CredentialsZip, Client: client}, cfg, cfg.Token)
	services := api.Services{
		Campaigner: cfg.Campaigner,
		Director:   cfg.Director,
		Registry:   cfg.Registry,
		Reposerver: cfg.Reposerver,
	}
	return cfg, api.New(services, tokens, &dispatch.DefaultDispatcher{Client: client, UserAgent: userAgent}), nil
}
