package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/solarwallbox/solarwallbox/pkg/config"
	"github.com/solarwallbox/solarwallbox/pkg/utils/service"
)

// NewInstallCommand .
func NewInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "install",
		Short:   "Install the solarwallbox server as a systemd service",
		GroupID: gInstallation,
		Long: `Install the solarwallbox server as a systemd service.

This makes the server run in the background and automatically start on boot. You must run this command as root.

The config file given by --config is created with default values if it does not exist yet.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				logrus.Infof("writing default config to %s", configPath)
				raw, err := config.NewRawFileConfigFromConfig(conf)
				if err != nil {
					return err
				}
				if err := config.NewFileFromConfig(raw, configPath).Save(); err != nil {
					return fmt.Errorf("failed to save config: %w", err)
				}
			}

			err = service.Install(configPath)
			if err != nil {
				// check if current user is root
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to install service: %v. Are you root?", err)
			}

			logrus.Infof("installation succeeded")
			return nil
		},
	}
}

// NewUninstallCommand .
func NewUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "uninstall",
		Short:   "Uninstall the solarwallbox systemd service",
		GroupID: gInstallation,
		Long: `Stop and remove the solarwallbox systemd service.

The config file is kept.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			err := service.Uninstall()
			if err != nil {
				return fmt.Errorf("failed to uninstall service: %w", err)
			}

			logrus.Infof("successfully uninstalled solarwallbox")
			return nil
		},
	}
}
