package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/solarwallbox/solarwallbox/pkg/render"
)

func parseIntArg(arg string, valueName string) (int, error) {
	value, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", valueName, err)
	}

	return value, nil
}

// parseDeviceArg reads the 0-based wallbox index.
func parseDeviceArg(arg string) (int, error) {
	device, err := parseIntArg(arg, "device")
	if err != nil {
		return 0, err
	}
	if device < 0 {
		return 0, fmt.Errorf("invalid device: %d is negative", device)
	}
	return device, nil
}

// newRenderer formats with the --locale flag. The charging policy only
// matters for panels that derive the battery state on the client.
func newRenderer() *render.Renderer {
	return render.New(locale)
}

func newEnableDisableCommand(
	use, short, long string,
	enableFunc func(ctx context.Context) error,
	disableFunc func(ctx context.Context) error,
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Enable " + short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := enableFunc(cmd.Context()); err != nil {
					return fmt.Errorf("failed to enable %s: %w", use, err)
				}
				logrus.Infof("successfully enabled %s", use)
				return nil
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Disable " + short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := disableFunc(cmd.Context()); err != nil {
					return fmt.Errorf("failed to disable %s: %w", use, err)
				}
				logrus.Infof("successfully disabled %s", use)
				return nil
			},
		},
	)

	return cmd
}
