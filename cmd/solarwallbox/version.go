package main

import (
	"github.com/spf13/cobra"

	"github.com/solarwallbox/solarwallbox/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

// getVersion returns the client and the server version.
func getVersion(cmd *cobra.Command) (string, string, error) {
	serverVersion, err := apiClient.GetVersion(cmd.Context())
	if err != nil {
		return version.Version, "", err
	}
	return version.Version, serverVersion, nil
}
