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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/otaplus/ota-cli/ota/config"
)

var (
	credentialsZip string
	campaignerURL  string
	directorURL    string
	registryURL    string
)

var initCmd = &cobra.Command{
	Use:     "init",
	Aliases: []string{"i"},
	Short:   "Store the credentials and service URLs for future commands",
	Args:    cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return InitializeCmd(cmd)
	},
}

func init() {
	initCmd.Flags().StringVarP(&credentialsZip, "credentials", "z", "", "path to credentials.zip")
	initCmd.Flags().StringVarP(&campaignerURL, "campaigner", "c", "", "campaigner URL")
	initCmd.Flags().StringVarP(&directorURL, "director", "d", "", "director URL")
	initCmd.Flags().StringVarP(&registryURL, "registry", "r", "", "device registry URL")
	for _, name := range []string{"credentials", "campaigner", "director", "registry"} {
		_ = initCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(initCmd)
}

func InitializeCmd(cmd *cobra.Command) error {
	cfg, err := config.New(env.ConfigPath, credentialsZip, campaignerURL, directorURL, registryURL)
	if err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	log.WithField("path", cfg.Path()).Debug("Config saved")
	fmt.Fprintf(cmd.OutOrStdout(), "Initialization successful, config written to %s\n", cfg.Path())
	return nil
}
