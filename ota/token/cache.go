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
)

// Store persists a freshly obtained token
type Store interface {
	SaveToken(token *AccessToken) error
}

// Cache holds the single token of a process invocation. The token is never
// refreshed on expiry: once resolved, every call returns the same value.
// A Cache is not safe for concurrent use.
type Cache struct {
	provider Provider
	store    Store

	token    *AccessToken
	resolved bool
}

// NewCache creates a Cache backed by provider. A non-nil cached token
// (e.g. loaded from the local config) is returned without asking the
// provider. store may be nil.
func NewCache(provider Provider, store Store, cached *AccessToken) *Cache {
	return &Cache{
		provider: provider,
		store:    store,
		token:    cached,
		resolved: cached != nil,
	}
}

// Token returns the cached token, fetching it from the provider on first
// use. A nil token means requests go out unauthenticated.
func (c *Cache) Token(ctx context.Context) (*AccessToken, error) {
	if c.resolved {
		return c.token, nil
	}
	token, err := c.provider.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.token, c.resolved = token, true
	if token != nil && c.store != nil {
		if err := c.store.SaveToken(token); err != nil {
			return nil, err
		}
	}
	return token, nil
}
