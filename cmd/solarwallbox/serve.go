package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/solarwallbox/solarwallbox/pkg/server"
	"github.com/solarwallbox/solarwallbox/pkg/version"
)

// NewServeCommand .
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Short:   "Run the solarwallbox server in the foreground",
		GroupID: gAdvanced,
		Long: `Run the solarwallbox server in the foreground.

The server polls the SENEC appliance and all wallboxes, drives automatic
charging and serves the dashboard on the listen address of the config file.
Send SIGHUP to reload the config file.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
			}).Info("solarwallbox server starting")
			return server.Run(configPath)
		},
	}
}
