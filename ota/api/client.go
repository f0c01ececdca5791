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

// Package api makes authenticated calls to the campaigner, director and
// reposerver services. Every call returns the raw response; checking its
// status is left to the caller.
package api

import (
	"net/http"

	"github.com/otaplus/ota-cli/ota/dispatch"
	"github.com/otaplus/ota-cli/ota/token"
)

// Services holds the base URLs of the backend services
type Services struct {
	Campaigner string
	Director   string
	Registry   string
	Reposerver string
}

// Client sends requests to the backend services with the token of a
// token.Cache.
type Client struct {
	services   Services
	tokens     *token.Cache
	dispatcher dispatch.Dispatcher
}

// New creates a Client. A nil dispatcher uses dispatch.DefaultDispatcher.
func New(services Services, tokens *token.Cache, dispatcher dispatch.Dispatcher) *Client {
	if dispatcher == nil {
		dispatcher = &dispatch.DefaultDispatcher{}
	}
	return &Client{
		services:   services,
		tokens:     tokens,
		dispatcher: dispatcher,
	}
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	tok, err := c.tokens.Token(req.Context())
	if err != nil {
		return nil, err
	}
	return c.dispatcher.Send(req, tok)
}
