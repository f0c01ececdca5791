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

package dispatch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/otaplus/ota-cli/ota"
	"github.com/otaplus/ota-cli/ota/token"
)

// NamespaceHeader carries the namespace claim of the bearer token
const NamespaceHeader = "x-ats-namespace"

// Dispatcher interface
type Dispatcher interface {
	Send(req *http.Request, tok *token.AccessToken) (*http.Response, error)
}

// DefaultDispatcher implements Dispatcher
type DefaultDispatcher struct {
	Client    *http.Client
	UserAgent string
}

// Send authenticates req with tok (if any) and sends it once. Transport
// failures are returned as ota.ErrHTTP; any response, whatever its
// status, is returned to the caller unchanged.
func (d *DefaultDispatcher) Send(req *http.Request, tok *token.AccessToken) (*http.Response, error) {
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}
	if tok != nil {
		req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
		// The namespace header is best effort, the bearer token is not.
		ns, err := tok.Namespace()
		if err != nil {
			ota.GetLogger().Error(err, "Sending request without namespace header", "scope", tok.Scope)
		} else {
			req.Header.Set(NamespaceHeader, ns)
		}
	}
	ota.GetLogger().Info("Sending request", "method", req.Method, "url", req.URL.String())

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, ota.ErrHTTP{URL: req.URL.String(), Err: err}
	}
	ota.GetLogger().Info("Received response", "status", res.StatusCode, "url", req.URL.String())
	return res, nil
}

// Endpoint joins path elements onto a service base URL and sets query
func Endpoint(base string, query url.Values, elem ...string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", ota.ErrParse{Msg: fmt.Sprintf("service url %q: %v", base, err)}
	}
	if u.Scheme == "" || u.Host == "" {
		return "", ota.ErrParse{Msg: fmt.Sprintf("service url %q is not absolute", base)}
	}
	u = u.JoinPath(elem...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// NewRequest builds a request to base joined with elem
func NewRequest(ctx context.Context, method, base string, body io.Reader, elem ...string) (*http.Request, error) {
	endpoint, err := Endpoint(base, nil, elem...)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, ota.ErrHTTP{URL: endpoint, Err: err}
	}
	return req, nil
}

// Success reports whether res carries a 2xx status
func Success(res *http.Response) bool {
	return res.StatusCode >= 200 && res.StatusCode <= 299
}
