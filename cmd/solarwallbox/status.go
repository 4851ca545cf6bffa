package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/solarwallbox/solarwallbox/pkg/battery"
	"github.com/solarwallbox/solarwallbox/pkg/config"
	"github.com/solarwallbox/solarwallbox/pkg/dashboard"
	"github.com/solarwallbox/solarwallbox/pkg/render"
)

func NewStatusCommand() *cobra.Command {
	asJSON := false

	cmd := &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Show the dashboard",
		Long:    `Show PV production, house consumption, the home battery, both wallboxes and the automatic charging flags.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := apiClient.GetDashboard(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get dashboard: %w", err)
			}

			if asJSON {
				b, err := json.MarshalIndent(snap, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(b))
				return nil
			}

			t := &render.TextTarget{Title: bold("%s:", render.Dashboard.Title)}
			if err := newRenderer().RenderValue(render.Dashboard, snap, t); err != nil {
				return err
			}
			cmd.Print(t.String())
			cmd.Println()

			cmd.Println(bold("Battery status:"))
			cmd.Println("  " + batteryText(snap.BatteryState))
			cmd.Println()

			printChargingModes(cmd, snap)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the dashboard as JSON")

	return cmd
}

func printChargingModes(cmd *cobra.Command, snap *dashboard.Snapshot) {
	cmd.Println(bold("Automatic charging:"))

	cmd.Println("  Automatic charging: " + bool2Text(snap.AutomaticCharging))
	if snap.AutomaticCharging {
		cmd.Println("    Wallboxes with sun charging enabled charge from excess solar power only.")
	} else {
		cmd.Println("    Wallboxes are not switched by solarwallbox.")
	}
	cmd.Println("  Sun charging garage: " + bool2Text(snap.SunChargingGarage))
	cmd.Println("  Sun charging parking: " + bool2Text(snap.SunChargingParking))

	cmd.Println("  Force charging: " + bool2Text(snap.ForceCharging))
	if snap.ForceCharging {
		cmd.Println("    All wallboxes are allowed to charge regardless of excess power.")
	}

	cmd.Println()
	cmd.Printf("Change them with 'solarwallbox auto <%s|%s|%s|%s> enable|disable'.\n",
		config.ModeAutomatic, config.ModeGarage, config.ModeParking, config.ModeForce)
}

// batteryText describes the battery state in the color of its tier.
func batteryText(s *battery.State) string {
	if s == nil || s.Tier == battery.TierUnknown {
		return "unknown"
	}

	c := color.New(color.Bold)
	switch s.Color {
	case battery.ColorRed:
		c.Add(color.FgRed)
	case battery.ColorYellow:
		c.Add(color.FgYellow)
	case battery.ColorGreen:
		c.Add(color.FgGreen)
	}

	text := c.Sprintf("%s (%s)", s.Tier, s.Mode)
	if s.Mode == battery.Charging {
		return text
	}
	return text + ", remaining: " + s.Remaining.String()
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
