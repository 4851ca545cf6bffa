package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/solarwallbox/solarwallbox/pkg/config"
)

var modeDescriptions = map[config.ChargingMode]struct{ short, long string }{
	config.ModeAutomatic: {
		"automatic charging",
		`Master switch of sun charging. While enabled, wallboxes with sun charging enabled are allowed to charge only while excess solar power covers the minimum charging power.`,
	},
	config.ModeGarage: {
		"sun charging for the garage wallbox",
		`Let automatic charging switch the wallbox with the garage role.`,
	},
	config.ModeParking: {
		"sun charging for the parking wallbox",
		`Let automatic charging switch the wallbox with the parking role.`,
	},
	config.ModeForce: {
		"force charging",
		`Allow all wallboxes to charge regardless of excess solar power.`,
	},
}

func NewAutoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auto",
		Short:   "Switch automatic charging modes",
		GroupID: gWallbox,
		Long: `Switch automatic charging modes.

The modes are saved in the config file of the server.`,
	}

	for _, m := range config.ChargingModes {
		m := m
		d := modeDescriptions[m]
		cmd.AddCommand(newEnableDisableCommand(
			string(m),
			d.short,
			d.long,
			func(ctx context.Context) error { return apiClient.SetChargingMode(ctx, m, true) },
			func(ctx context.Context) error { return apiClient.SetChargingMode(ctx, m, false) },
		))
	}

	return cmd
}
