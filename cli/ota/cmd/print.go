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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/otaplus/ota-cli/ota"
	"github.com/otaplus/ota-cli/ota/dispatch"
)

// printResponse writes the body of res to w in the selected output format
// and returns the body. A non-2xx status is returned as ota.ErrHTTP once
// the body has been printed.
func printResponse(w io.Writer, res *http.Response) ([]byte, error) {
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, ota.ErrHTTP{URL: res.Request.URL.String(), Err: err}
	}
	log.WithField("status", res.StatusCode).Debug("Response received")

	out, err := formatBody(body, Output)
	if err != nil {
		return nil, err
	}
	if len(out) > 0 {
		if _, err := w.Write(out); err != nil {
			return nil, err
		}
	}
	if !dispatch.Success(res) {
		return body, ota.ErrHTTP{URL: res.Request.URL.String(), StatusCode: res.StatusCode}
	}
	return body, nil
}

// formatBody renders a JSON body as indented JSON or YAML. Anything that
// is not JSON is passed through unchanged.
func formatBody(body []byte, output string) ([]byte, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(body) {
		return append(body, '\n'), nil
	}
	if output == OutputYAML {
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, ota.ErrParse{Msg: fmt.Sprintf("response body: %v", err)}
		}
		return yaml.Marshal(v)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return nil, ota.ErrParse{Msg: fmt.Sprintf("response body: %v", err)}
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// createdID returns the identifier a create call answered with. Services
// reply either with a bare JSON string or with an object holding an id.
func createdID(body []byte) string {
	result := gjson.ParseBytes(body)
	if result.Type == gjson.String {
		return result.String()
	}
	return result.Get("id").String()
}
