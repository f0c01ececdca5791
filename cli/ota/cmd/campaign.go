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
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/otaplus/ota-cli/ota/api"
)

var (
	campaignAll    bool
	campaignID     string
	campaignStats  bool
	campaignUpdate string
	campaignName   string
	campaignGroups []string
)

var campaignCmd = &cobra.Command{
	Use:     "campaign",
	Aliases: []string{"c"},
	Short:   "Manage campaigns",
}

var campaignListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaign information",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return CampaignListCmd(cmd)
	},
}

var campaignCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a campaign rolling out a multi-target update to groups",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return CampaignCreateCmd(cmd)
	},
}

var campaignLaunchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch a created campaign",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return campaignAction(cmd, "launched", (*api.Client).LaunchCampaign)
	},
}

var campaignCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel a launched campaign",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return campaignAction(cmd, "cancelled", (*api.Client).CancelCampaign)
	},
}

func init() {
	campaignListCmd.Flags().BoolVarP(&campaignAll, "all", "a", false, "list all campaigns")
	campaignListCmd.Flags().StringVarP(&campaignID, "campaign", "c", "", "the campaign id")
	campaignListCmd.Flags().BoolVarP(&campaignStats, "stats", "s", false, "list campaign stats")
	campaignListCmd.MarkFlagsMutuallyExclusive("all", "campaign")
	campaignListCmd.MarkFlagsMutuallyExclusive("all", "stats")
	campaignListCmd.MarkFlagsOneRequired("all", "campaign")

	campaignCreateCmd.Flags().StringVarP(&campaignUpdate, "update", "u", "", "multi-target update id")
	campaignCreateCmd.Flags().StringVarP(&campaignName, "name", "n", "", "a campaign name")
	campaignCreateCmd.Flags().StringSliceVarP(&campaignGroups, "groups", "g", nil, "apply the campaign to these groups")
	for _, name := range []string{"update", "name", "groups"} {
		_ = campaignCreateCmd.MarkFlagRequired(name)
	}

	for _, c := range []*cobra.Command{campaignLaunchCmd, campaignCancelCmd} {
		c.Flags().StringVarP(&campaignID, "campaign", "c", "", "the campaign id")
		_ = c.MarkFlagRequired("campaign")
	}

	campaignCmd.AddCommand(campaignListCmd, campaignCreateCmd, campaignLaunchCmd, campaignCancelCmd)
	rootCmd.AddCommand(campaignCmd)
}

func CampaignListCmd(cmd *cobra.Command) error {
	_, client, err := openSession()
	if err != nil {
		return err
	}
	var res *http.Response
	switch {
	case campaignAll:
		res, err = client.ListCampaigns(cmd.Context())
	case campaignID != "":
		id, perr := parseUUID("campaign", campaignID)
		if perr != nil {
			return perr
		}
		if campaignStats {
			res, err = client.CampaignStats(cmd.Context(), id)
		} else {
			res, err = client.CampaignInfo(cmd.Context(), id)
		}
	default:
		return errors.New("either --all or --campaign is required")
	}
	if err != nil {
		return err
	}
	_, err = printResponse(cmd.OutOrStdout(), res)
	return err
}

func CampaignCreateCmd(cmd *cobra.Command) error {
	update, err := parseUUID("update", campaignUpdate)
	if err != nil {
		return err
	}
	groups, err := parseUUIDs("group", campaignGroups)
	if err != nil {
		return err
	}
	_, client, err := openSession()
	if err != nil {
		return err
	}
	res, err := client.CreateCampaign(cmd.Context(), update, campaignName, groups)
	if err != nil {
		return err
	}
	body, err := printResponse(cmd.OutOrStdout(), res)
	if err != nil {
		return err
	}
	log.WithField("campaign", createdID(body)).Info("Campaign created")
	return nil
}

type campaignCall func(c *api.Client, ctx context.Context, campaign uuid.UUID) (*http.Response, error)

func campaignAction(cmd *cobra.Command, done string, call campaignCall) error {
	id, err := parseUUID("campaign", campaignID)
	if err != nil {
		return err
	}
	_, client, err := openSession()
	if err != nil {
		return err
	}
	res, err := call(client, cmd.Context(), id)
	if err != nil {
		return err
	}
	if _, err := printResponse(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	log.WithField("campaign", id).Info("Campaign " + done)
	return nil
}
