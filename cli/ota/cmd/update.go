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
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/otaplus/ota-cli/ota"
)

var (
	targetsFile string
	updateID    string
	deviceID    string
)

var updateCmd = &cobra.Command{
	Use:     "update",
	Aliases: []string{"u"},
	Short:   "Manage multi-target updates",
}

var updateCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a multi-target update from a targets file",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return UpdateCreateCmd(cmd)
	},
}

var updateLaunchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch a multi-target update on a device",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return UpdateLaunchCmd(cmd)
	},
}

func init() {
	updateCreateCmd.Flags().StringVarP(&targetsFile, "targets", "t", "", "update targets file (TOML)")
	_ = updateCreateCmd.MarkFlagRequired("targets")

	updateLaunchCmd.Flags().StringVarP(&updateID, "update", "u", "", "multi-target update id")
	updateLaunchCmd.Flags().StringVarP(&deviceID, "device", "d", "", "apply to this device")
	_ = updateLaunchCmd.MarkFlagRequired("update")
	_ = updateLaunchCmd.MarkFlagRequired("device")

	updateCmd.AddCommand(updateCreateCmd, updateLaunchCmd)
	rootCmd.AddCommand(updateCmd)
}

func UpdateCreateCmd(cmd *cobra.Command) error {
	requests, err := ota.LoadTargetRequests(targetsFile)
	if err != nil {
		return err
	}
	updates, err := ota.Compile(*requests)
	if err != nil {
		return err
	}
	_, client, err := openSession()
	if err != nil {
		return err
	}
	res, err := client.CreateMTU(cmd.Context(), updates)
	if err != nil {
		return err
	}
	body, err := printResponse(cmd.OutOrStdout(), res)
	if err != nil {
		return err
	}
	log.WithField("update", createdID(body)).Info("Multi-target update created")
	return nil
}

func UpdateLaunchCmd(cmd *cobra.Command) error {
	update, err := parseUUID("update", updateID)
	if err != nil {
		return err
	}
	device, err := parseUUID("device", deviceID)
	if err != nil {
		return err
	}
	_, client, err := openSession()
	if err != nil {
		return err
	}
	res, err := client.LaunchMTU(cmd.Context(), update, device)
	if err != nil {
		return err
	}
	if _, err := printResponse(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	log.WithFields(log.Fields{"update": update, "device": device}).Info("Multi-target update launched")
	return nil
}

func parseUUID(name, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ota.ErrParse{Msg: fmt.Sprintf("%s id %q: %v", name, raw, err)}
	}
	return id, nil
}

func parseUUIDs(name string, raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := parseUUID(name, r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
