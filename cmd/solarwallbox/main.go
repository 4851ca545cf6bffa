package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/solarwallbox/solarwallbox/pkg/client"
)

var (
	logLevel   = "info"
	serverAddr = "localhost:8080"
	configPath = "/etc/solarwallbox.json"
	locale     = "en"
)

var apiClient *client.Client

var (
	gBasic        = "Basic:"
	gWallbox      = "Wallbox:"
	gAdvanced     = "Advanced:"
	gInstallation = "Installation:"
	commandGroups = []string{
		gBasic,
		gWallbox,
		gAdvanced,
		gInstallation,
	}
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	var me *client.MutationError
	if errors.Is(err, client.ErrServerNotRunning) {
		fmt.Fprintln(os.Stderr, "\nError: solarwallbox server is not running")
		fmt.Fprintf(os.Stderr, "Is the server running on %s? Start it with 'solarwallbox serve'.\n", serverAddr)
	} else if errors.As(err, &me) {
		fmt.Fprintf(os.Stderr, "\nError: the server rejected the change: %s\n", me.Msg)
	}
}

// envOr returns the value of the environment variable key, or def.
func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func main() {
	// A missing .env file is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	cmd := NewCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solarwallbox",
		Short: "solarwallbox shows PV production and controls go-eCharger wallboxes",
		Long: `solarwallbox shows PV production, home battery and house consumption of a
SENEC.Home V3 hybrid appliance, and controls go-eCharger wallboxes, charging
them automatically from excess solar power.

Run 'solarwallbox serve' to start the server, then use the other commands to
talk to it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			err := setupLogger()
			if err != nil {
				return err
			}

			apiClient = client.NewClient(serverAddr)

			if cmd.Name() == "serve" || cmd.GroupID == gInstallation {
				return nil
			}
			if clientVersion, serverVersion, err := getVersion(cmd); err == nil {
				if serverVersion != clientVersion {
					logrus.WithFields(logrus.Fields{
						"clientVersion": clientVersion,
						"serverVersion": serverVersion,
					}).Warn("Version mismatch between client and server. solarwallbox may not work as expected.")
				}
			} else if errors.Is(err, client.ErrNotFound) {
				logrus.Error("solarwallbox server is too old to report its version.")
			}

			return nil
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", envOr("SOLARWALLBOX_LOG_LEVEL", logLevel), "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", envOr("SOLARWALLBOX_CONFIG", configPath), "config file path (.json, .yaml or .yml)")
	globalFlags.StringVarP(&serverAddr, "server", "s", envOr("SOLARWALLBOX_SERVER", serverAddr), "solarwallbox server address")
	globalFlags.StringVar(&locale, "locale", envOr("SOLARWALLBOX_LOCALE", locale), "locale for formatted numbers, e.g. en or de")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewServeCommand(),
		NewVersionCommand(),
		NewStatusCommand(),
		NewWatchCommand(),
		NewSenecCommand(),
		NewExcessCommand(),
		NewPluginsCommand(),
		NewWallboxCommand(),
		NewAutoCommand(),
		NewInstallCommand(),
		NewUninstallCommand(),
	)

	return cmd
}
