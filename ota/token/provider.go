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

package token

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/otaplus/ota-cli/ota"
	"github.com/otaplus/ota-cli/ota/credentials"
)

// maxTokenResponseLength bounds the Auth+ response body (bytes)
const maxTokenResponseLength = 1 << 20

// Provider obtains an access token. A nil token with a nil error means
// requests are sent unauthenticated.
type Provider interface {
	Fetch(ctx context.Context) (*AccessToken, error)
}

// NoAuth implements Provider for platforms without authentication
type NoAuth struct{}

func (NoAuth) Fetch(ctx context.Context) (*AccessToken, error) {
	return nil, nil
}

// ClientCredentials implements Provider with the OAuth2 client
// credentials grant against Auth+.
type ClientCredentials struct {
	Server       string
	ClientID     string
	ClientSecret string
	Client       *http.Client
}

// Fetch exchanges the client credentials for an access token
func (c *ClientCredentials) Fetch(ctx context.Context) (*AccessToken, error) {
	tokenURL := strings.TrimSuffix(c.Server, "/") + "/token"
	ota.GetLogger().Info("Fetching access token", "server", c.Server)

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, ota.ErrHTTP{URL: tokenURL, Err: err}
	}
	req.SetBasicAuth(c.ClientID, c.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, ota.ErrHTTP{URL: tokenURL, Err: err}
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, ota.ErrHTTP{URL: tokenURL, StatusCode: res.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxTokenResponseLength))
	if err != nil {
		return nil, ota.ErrHTTP{URL: tokenURL, Err: err}
	}
	token := &AccessToken{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, ota.ErrParse{Msg: fmt.Sprintf("access token response: %v", err)}
	}
	if token.AccessToken == "" {
		return nil, ota.ErrParse{Msg: "access token response has no access_token"}
	}
	return token, nil
}

// NewProvider picks the Provider matching the authentication path of creds
func NewProvider(creds *credentials.Credentials, client *http.Client) (Provider, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if creds.IsNoAuth() {
		return NoAuth{}, nil
	}
	return &ClientCredentials{
		Server:       creds.OAuth2.Server,
		ClientID:     creds.OAuth2.ClientID,
		ClientSecret: creds.OAuth2.ClientSecret,
		Client:       client,
	}, nil
}

// Archive implements Provider on top of a credentials archive. The archive
// is parsed on the first Fetch and the resulting Provider is reused.
type Archive struct {
	Path   string
	Client *http.Client

	provider Provider
}

func (a *Archive) Fetch(ctx context.Context) (*AccessToken, error) {
	if a.provider == nil {
		creds, err := credentials.Parse(a.Path)
		if err != nil {
			return nil, err
		}
		provider, err := NewProvider(creds, a.Client)
		if err != nil {
			return nil, err
		}
		a.provider = provider
	}
	return a.provider.Fetch(ctx)
}
