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

package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/otaplus/ota-cli/ota"
	"github.com/otaplus/ota-cli/ota/dispatch"
)

// AddPackage uploads a package to the user's TUF repository. Local
// contents are streamed as the "file" part, remote ones are referenced
// by the "fileUri" field.
func (c *Client) AddPackage(ctx context.Context, pkg ota.TufPackage) (*http.Response, error) {
	query := url.Values{
		"name":         {pkg.Name},
		"version":      {pkg.Version},
		"hardwareIds":  {strings.Join(pkg.HardwareIDs, ",")},
		"targetFormat": {pkg.Format.String()},
	}
	endpoint, err := dispatch.Endpoint(c.services.Reposerver, query, "api", "v1", "user_repo", "targets", pkg.Target())
	if err != nil {
		return nil, err
	}

	var file *os.File
	if pkg.Source.Path != "" {
		file, err = os.Open(pkg.Source.Path)
		if err != nil {
			return nil, ota.ErrIO{Msg: fmt.Sprintf("opening package %s", pkg.Source.Path), Err: err}
		}
		defer file.Close()
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writePackageForm(mw, pkg, file))
	}()
	defer pr.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, pr)
	if err != nil {
		return nil, ota.ErrHTTP{URL: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	ota.GetLogger().Info("Adding package", "target", pkg.Target(), "hardware_ids", pkg.HardwareIDs, "format", pkg.Format)
	return c.send(req)
}

func writePackageForm(mw *multipart.Writer, pkg ota.TufPackage, file *os.File) error {
	if file != nil {
		part, err := mw.CreateFormFile("file", filepath.Base(pkg.Source.Path))
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, file); err != nil {
			return err
		}
	} else if pkg.Source.URL != nil {
		if err := mw.WriteField("fileUri", pkg.Source.URL.String()); err != nil {
			return err
		}
	}
	return mw.Close()
}

// AddPackages uploads every package in order, handing each response to
// handle. It stops at the first error.
func (c *Client) AddPackages(ctx context.Context, pkgs []ota.TufPackage, handle func(ota.TufPackage, *http.Response) error) error {
	for _, pkg := range pkgs {
		res, err := c.AddPackage(ctx, pkg)
		if err != nil {
			return err
		}
		if err := handle(pkg, res); err != nil {
			return err
		}
	}
	return nil
}
