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

package ota

import (
	"fmt"
)

// Define the error types returned by the ota packages.
// The names chosen for error types should start in 'Err' except where
// there is a good reason not to, and provide that reason in those cases.

// Authorization errors

// ErrAuth - no usable authentication path, or a token that can't be used
// to scope requests
type ErrAuth struct {
	Msg string
}

func (e ErrAuth) Error() string {
	return fmt.Sprintf("authorization error: %s", e.Msg)
}

func (e ErrAuth) Is(target error) bool {
	_, ok := target.(ErrAuth)
	return ok
}

// ErrNamespace - an access token scope with zero or several namespace claims
type ErrNamespace struct {
	Msg string
}

func (e ErrNamespace) Error() string {
	return fmt.Sprintf("namespace error: %s", e.Msg)
}

// ErrNamespace is a subset of ErrAuth
func (e ErrNamespace) Is(target error) bool {
	switch target.(type) {
	case ErrAuth, ErrNamespace:
		return true
	default:
		return false
	}
}

// ErrCredentials - the credentials archive is missing, incomplete or malformed
type ErrCredentials struct {
	Msg string
	Err error
}

func (e ErrCredentials) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("credentials error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("credentials error: %s", e.Msg)
}

func (e ErrCredentials) Unwrap() error {
	return e.Err
}

func (e ErrCredentials) Is(target error) bool {
	_, ok := target.(ErrCredentials)
	return ok
}

// Input errors

// ErrParse - malformed TOML, JSON, URL, UUID, checksum method or target format
type ErrParse struct {
	Msg string
}

func (e ErrParse) Error() string {
	return fmt.Sprintf("parse error: %s", e.Msg)
}

func (e ErrParse) Is(target error) bool {
	_, ok := target.(ErrParse)
	return ok
}

// ErrValidation - well-formed input that breaks a target or package rule
type ErrValidation struct {
	Msg string
}

func (e ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s", e.Msg)
}

func (e ErrValidation) Is(target error) bool {
	_, ok := target.(ErrValidation)
	return ok
}

// Transport errors

// ErrHTTP - a request could not be completed. StatusCode is zero for
// transport failures and set when a response was deemed unusable.
type ErrHTTP struct {
	URL        string
	StatusCode int
	Err        error
}

func (e ErrHTTP) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("http error: request to %s failed: %v", e.URL, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("http error: request to %s failed, http status code: %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("http error: request to %s failed", e.URL)
	}
}

func (e ErrHTTP) Unwrap() error {
	return e.Err
}

func (e ErrHTTP) Is(target error) bool {
	_, ok := target.(ErrHTTP)
	return ok
}

// ErrIO - local filesystem access failed
type ErrIO struct {
	Msg string
	Err error
}

func (e ErrIO) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("i/o error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("i/o error: %s", e.Msg)
}

func (e ErrIO) Unwrap() error {
	return e.Err
}

func (e ErrIO) Is(target error) bool {
	_, ok := target.(ErrIO)
	return ok
}
