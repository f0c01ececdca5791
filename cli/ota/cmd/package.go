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
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/otaplus/ota-cli/ota"
)

var (
	packageName     string
	packageVersion  string
	packageHardware []string
	packagePath     string
	packageURL      string
	packageBinary   bool
	packageOstree   bool
	packagesFile    string
)

var packageCmd = &cobra.Command{
	Use:     "package",
	Aliases: []string{"p"},
	Short:   "Manage packages in the TUF repository",
}

var packageAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a package to the TUF repository",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return PackageAddCmd(cmd)
	},
}

var packageUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload every package described in a packages file",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return PackageUploadCmd(cmd)
	},
}

func init() {
	packageAddCmd.Flags().StringVarP(&packageName, "name", "n", "", "the package name")
	packageAddCmd.Flags().StringVarP(&packageVersion, "version", "v", "", "the package version")
	packageAddCmd.Flags().StringSliceVarP(&packageHardware, "hardware", "H", nil, "package works on these hardware ids")
	packageAddCmd.Flags().StringVarP(&packagePath, "path", "p", "", "path to package contents")
	packageAddCmd.Flags().StringVarP(&packageURL, "url", "u", "", "URL to package contents")
	packageAddCmd.Flags().BoolVarP(&packageBinary, "binary", "b", false, "binary package format")
	packageAddCmd.Flags().BoolVarP(&packageOstree, "ostree", "o", false, "OSTree package format")
	for _, name := range []string{"name", "version", "hardware"} {
		_ = packageAddCmd.MarkFlagRequired(name)
	}
	packageAddCmd.MarkFlagsMutuallyExclusive("path", "url")
	packageAddCmd.MarkFlagsOneRequired("path", "url")
	packageAddCmd.MarkFlagsMutuallyExclusive("binary", "ostree")

	packageUploadCmd.Flags().StringVarP(&packagesFile, "packages", "p", "", "package metadata file (TOML)")
	_ = packageUploadCmd.MarkFlagRequired("packages")

	packageCmd.AddCommand(packageAddCmd, packageUploadCmd)
	rootCmd.AddCommand(packageCmd)
}

func PackageAddCmd(cmd *cobra.Command) error {
	spec := ota.PackageSpec{
		Name:     packageName,
		Version:  packageVersion,
		Hardware: packageHardware,
		Path:     packagePath,
		URL:      packageURL,
	}
	switch {
	case packageBinary:
		spec.Format = ota.Binary
	case packageOstree:
		spec.Format = ota.Ostree
	}
	pkg, err := ota.CompilePackage(spec)
	if err != nil {
		return err
	}
	_, client, err := openSession()
	if err != nil {
		return err
	}
	res, err := client.AddPackage(cmd.Context(), *pkg)
	if err != nil {
		return err
	}
	if _, err := printResponse(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	log.WithField("target", pkg.Target()).Info("Package added")
	return nil
}

func PackageUploadCmd(cmd *cobra.Command) error {
	specs, err := ota.LoadPackageSpecs(packagesFile)
	if err != nil {
		return err
	}
	pkgs, err := ota.CompilePackages(specs)
	if err != nil {
		return err
	}
	_, client, err := openSession()
	if err != nil {
		return err
	}
	return client.AddPackages(cmd.Context(), pkgs, func(pkg ota.TufPackage, res *http.Response) error {
		if _, err := printResponse(cmd.OutOrStdout(), res); err != nil {
			return err
		}
		log.WithField("target", pkg.Target()).Info("Package uploaded")
		return nil
	})
}
