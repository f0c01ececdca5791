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
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/otaplus/ota-cli/ota"
	"github.com/otaplus/ota-cli/ota/dispatch"
)

// CreateMTU registers a multi-target update with the director
func (c *Client) CreateMTU(ctx context.Context, updates *ota.TufUpdates) (*http.Response, error) {
	if updates == nil || len(updates.Targets) == 0 {
		return nil, ota.ErrValidation{Msg: "multi-target update has no targets"}
	}
	body, err := updates.MarshalCanonical()
	if err != nil {
		return nil, ota.ErrParse{Msg: fmt.Sprintf("encoding multi-target update: %v", err)}
	}
	ota.GetLogger().Info("Creating multi-target update", "hardware_ids", updates.HardwareIDs())
	req, err := dispatch.NewRequest(ctx, http.MethodPost, c.services.Director, bytes.NewReader(body), "api", "v1", "multi_target_updates")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req)
}

// LaunchMTU schedules a created multi-target update on a device
func (c *Client) LaunchMTU(ctx context.Context, update, device uuid.UUID) (*http.Response, error) {
	ota.GetLogger().Info("Launching multi-target update", "update", update, "device", device)
	req, err := dispatch.NewRequest(ctx, http.MethodPut, c.services.Director, nil,
		"api", "v1", "admin", "devices", device.String(), "multi_target_update", update.String())
	if err != nil {
		return nil, err
	}
	return c.send(req)
}
