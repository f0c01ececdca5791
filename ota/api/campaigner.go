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
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/otaplus/ota-cli/ota"
	"github.com/otaplus/ota-cli/ota/dispatch"
)

type campaignRequest struct {
	Update uuid.UUID   `json:"update"`
	Name   string      `json:"name"`
	Groups []uuid.UUID `json:"groups"`
}

// CreateCampaign creates a campaign rolling out update to groups
func (c *Client) CreateCampaign(ctx context.Context, update uuid.UUID, name string, groups []uuid.UUID) (*http.Response, error) {
	if name == "" {
		return nil, ota.ErrValidation{Msg: "campaign needs a name"}
	}
	if len(groups) == 0 {
		return nil, ota.ErrValidation{Msg: "campaign needs at least one group"}
	}
	body, err := json.Marshal(campaignRequest{Update: update, Name: name, Groups: groups})
	if err != nil {
		return nil, ota.ErrParse{Msg: fmt.Sprintf("encoding campaign: %v", err)}
	}
	ota.GetLogger().Info("Creating campaign", "name", name, "update", update, "groups", groups)
	req, err := dispatch.NewRequest(ctx, http.MethodPost, c.services.Campaigner, bytes.NewReader(body), "api", "v2", "campaigns")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req)
}

// LaunchCampaign starts a created campaign
func (c *Client) LaunchCampaign(ctx context.Context, campaign uuid.UUID) (*http.Response, error) {
	return c.campaignCall(ctx, http.MethodPost, campaign, "launch")
}

// CancelCampaign stops a launched campaign
func (c *Client) CancelCampaign(ctx context.Context, campaign uuid.UUID) (*http.Response, error) {
	return c.campaignCall(ctx, http.MethodPost, campaign, "cancel")
}

func (c *Client) CampaignInfo(ctx context.Context, campaign uuid.UUID) (*http.Response, error) {
	return c.campaignCall(ctx, http.MethodGet, campaign, "")
}

func (c *Client) CampaignStats(ctx context.Context, campaign uuid.UUID) (*http.Response, error) {
	return c.campaignCall(ctx, http.MethodGet, campaign, "stats")
}

func (c *Client) ListCampaigns(ctx context.Context) (*http.Response, error) {
	req, err := dispatch.NewRequest(ctx, http.MethodGet, c.services.Campaigner, nil, "api", "v2", "campaigns")
	if err != nil {
		return nil, err
	}
	return c.send(req)
}

func (c *Client) campaignCall(ctx context.Context, method string, campaign uuid.UUID, action string) (*http.Response, error) {
	elem := []string{"api", "v2", "campaigns", campaign.String()}
	if action != "" {
		elem = append(elem, action)
	}
	req, err := dispatch.NewRequest(ctx, method, c.services.Campaigner, nil, elem...)
	if err != nil {
		return nil, err
	}
	return c.send(req)
}
