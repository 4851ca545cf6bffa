package dashboard

import (
	"github.com/solarwallbox/solarwallbox/pkg/battery"
	"github.com/solarwallbox/solarwallbox/pkg/config"
	"github.com/solarwallbox/solarwallbox/pkg/goecharger"
	"github.com/solarwallbox/solarwallbox/pkg/senec"
)

// Snapshot is the aggregated view served on /dashboard.
type Snapshot struct {
	House    *senec.Data      `json:"house"`
	Wallbox1 *goecharger.Data `json:"wallbox1"`
	Wallbox2 *goecharger.Data `json:"wallbox2"`

	AutomaticCharging  bool `json:"automaticCharging"`
	SunChargingGarage  bool `json:"sunChargingGarage"`
	SunChargingParking bool `json:"sunChargingParking"`
	ForceCharging      bool `json:"forceCharging"`

	// ExcessPower is pv - house - battery charge in W.
	ExcessPower float64 `json:"excessPower"`
	// HousePowerWithoutWallboxes subtracts the wallbox charging power from
	// the house consumption, which includes it.
	HousePowerWithoutWallboxes float64 `json:"housePowerWithoutWallboxes"`

	BatteryState *battery.State `json:"battery_state,omitempty"`
	// Timestamp is the unix time of the poll in milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// Wallbox returns the wallbox at index i (0 or 1).
func (s Snapshot) Wallbox(i int) *goecharger.Data {
	switch i {
	case 0:
		return s.Wallbox1
	case 1:
		return s.Wallbox2
	}
	return nil
}

// Mode returns the automatic charging flag m.
func (s Snapshot) Mode(m config.ChargingMode) bool {
	switch m {
	case config.ModeAutomatic:
		return s.AutomaticCharging
	case config.ModeGarage:
		return s.SunChargingGarage
	case config.ModeParking:
		return s.SunChargingParking
	case config.ModeForce:
		return s.ForceCharging
	}
	return false
}

func (s *Snapshot) setMode(m config.ChargingMode, b bool) {
	switch m {
	case config.ModeAutomatic:
		s.AutomaticCharging = b
	case config.ModeGarage:
		s.SunChargingGarage = b
	case config.ModeParking:
		s.SunChargingParking = b
	case config.ModeForce:
		s.ForceCharging = b
	}
}
