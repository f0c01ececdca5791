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

// Package token exchanges credentials for bearer tokens and caches the
// result for the lifetime of a process.
package token

import (
	"fmt"
	"strings"

	"github.com/otaplus/ota-cli/ota"
)

// NamespacePrefix marks the scope entry naming the tenant of a token
const NamespacePrefix = "namespace."

// AccessToken is the Auth+ response to a client credentials exchange
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope"`
}

// Namespace returns the single namespace claim of the token scope, without
// its prefix.
func (t *AccessToken) Namespace() (string, error) {
	var namespaces []string
	for _, scope := range strings.Fields(t.Scope) {
		if ns, ok := strings.CutPrefix(scope, NamespacePrefix); ok {
			namespaces = append(namespaces, ns)
		}
	}
	switch len(namespaces) {
	case 1:
		if namespaces[0] == "" {
			return "", ota.ErrNamespace{Msg: "empty namespace in token scope"}
		}
		return namespaces[0], nil
	case 0:
		return "", ota.ErrNamespace{Msg: "namespace not found in token scope"}
	default:
		return "", ota.ErrNamespace{Msg: fmt.Sprintf("multiple namespaces found in token scope: %v", namespaces)}
	}
}

// String keeps the bearer value out of logs
func (t *AccessToken) String() string {
	return fmt.Sprintf("AccessToken{TokenType: %s, ExpiresIn: %d, Scope: %q}", t.TokenType, t.ExpiresIn, t.Scope)
}
