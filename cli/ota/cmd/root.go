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
	stdlog "log"
	"os"

	"github.com/go-logr/stdr"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/otaplus/ota-cli/ota"
	"github.com/otaplus/ota-cli/ota/config"
)

// Output formats of response bodies
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

var Level string
var Output string

// settings read from the environment before any command runs
var env *config.Env

var rootCmd = &cobra.Command{
	Use:   "ota",
	Short: "ota - manage over-the-air updates from the command line",
	Long: `ota is a CLI tool for an OTA update platform.

It creates multi-target updates from declarative target files, rolls them out
to devices or through campaigns, and uploads packages to the TUF repository.

Run "ota init" once with your credentials.zip before using other commands.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	Run: func(cmd *cobra.Command, args []string) {
		// show the help message if no command has been used
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&Level, "level", "l", "", "log level (panic, fatal, error, warn, info, debug, trace)")
	rootCmd.PersistentFlags().StringVar(&Output, "output", "", "output format of response bodies (json, yaml)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup reads the environment and configures logging. Flags take
// precedence over environment variables.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	env, err = config.LoadEnv()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("level") {
		Level = env.LogLevel
	}
	if !cmd.Flags().Changed("output") {
		Output = env.Output
	}
	if Level == "" {
		Level = log.InfoLevel.String()
	}
	if Output != OutputJSON && Output != OutputYAML {
		return fmt.Errorf("unsupported output format %q", Output)
	}

	level, err := log.ParseLevel(Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	// set logger and debug verbosity level
	if level >= log.DebugLevel {
		ota.SetLogger(stdr.New(stdlog.New(os.Stderr, "ota: ", stdlog.LstdFlags)))
		if level == log.TraceLevel {
			stdr.SetVerbosity(5)
		}
	} else {
		ota.SetLogger(logrusLogger{})
	}
	return nil
}

// logrusLogger surfaces errors of the ota packages as warnings and keeps
// their informational messages at debug level.
type logrusLogger struct{}

func (logrusLogger) Info(msg string, kv ...any) {
	log.WithFields(fields(kv)).Debug(msg)
}

func (logrusLogger) Error(err error, msg string, kv ...any) {
	log.WithFields(fields(kv)).WithError(err).Warn(msg)
}

func fields(kv []any) log.Fields {
	f := make(log.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}
