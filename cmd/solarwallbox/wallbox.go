package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/solarwallbox/solarwallbox/pkg/goecharger"
	"github.com/solarwallbox/solarwallbox/pkg/render"
)

func NewWallboxCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "wallbox",
		Short:   "Show or change a go-eCharger wallbox",
		GroupID: gWallbox,
		Long: `Show or change a go-eCharger wallbox.

Wallboxes are addressed by their 0-based index in the config file.`,
	}

	cmd.AddCommand(
		newWallboxStatusCommand(),
		newAllowChargingCommand("allow", "Allow a wallbox to charge", true),
		newAllowChargingCommand("deny", "Stop a wallbox from charging", false),
		newWallboxSelectCommand("max-ampere", "Set the maximum charging current (6 to 32 A)",
			"maxAmpereSelect", "max ampere", goecharger.SettingMaxAmpere),
		newWallboxSelectCommand("access", "Set the access control method (open, rfid or auto)",
			"unlockMethodSelect", "access control", goecharger.SettingAccessControl),
	)

	return cmd
}

func newWallboxStatusCommand() *cobra.Command {
	asJSON := false

	cmd := &cobra.Command{
		Use:   "status <device>",
		Short: "Show a wallbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			device, err := parseDeviceArg(args[0])
			if err != nil {
				return err
			}
			return printPanel(cmd, render.GoECharger, deviceQuery(device), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON")

	return cmd
}

func newAllowChargingCommand(use, short string, allow bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <device>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			device, err := parseDeviceArg(args[0])
			if err != nil {
				return err
			}

			d, err := apiClient.GetWallbox(cmd.Context(), device)
			if err != nil {
				return err
			}

			tg := render.NewToggle(fmt.Sprintf("wallbox%d_switch", device+1), func(ctx context.Context, on bool) error {
				return apiClient.SetAllowCharging(ctx, device, on)
			})
			tg.Sync(d.AccessControl.AllowCharging)
			if err := tg.Set(cmd.Context(), allow); err != nil {
				return fmt.Errorf("failed to %s charging: %w", use, err)
			}

			logrus.WithField("device", device).Infof("successfully set allow charging to %t", tg.Checked())
			return nil
		},
	}
}

func newWallboxSelectCommand(use, short, id, label string, setting goecharger.Setting) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <device> <value>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			device, err := parseDeviceArg(args[0])
			if err != nil {
				return err
			}
			value := args[1]
			if err := goecharger.Validate(setting, value); err != nil {
				return err
			}

			d, err := apiClient.GetWallbox(cmd.Context(), device)
			if err != nil {
				return err
			}

			sel := render.NewSelect(id, label, func(ctx context.Context, v string) error {
				return apiClient.SetWallbox(ctx, device, setting, v)
			})
			switch setting {
			case goecharger.SettingMaxAmpere:
				sel.Sync(fmt.Sprint(d.Charging.MaxAmpere))
			case goecharger.SettingAccessControl:
				sel.Sync(d.AccessControl.AccessMethod)
			}

			if err := sel.Choose(cmd.Context(), value); err != nil {
				return fmt.Errorf("failed to set %s, keeping %s: %w", label, sel.Value(), err)
			}
			return nil
		},
	}
}
