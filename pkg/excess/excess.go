// Package excess computes the photovoltaic power left over after the house
// and the home battery have taken their share.
package excess

import "github.com/solarwallbox/solarwallbox/pkg/senec"

// Data is served on /excess.
type Data struct {
	ExcessPower        float64 `json:"excessPower"`
	PVProduction       float64 `json:"pv_production"`
	HousePower         float64 `json:"house_power"`
	BatteryChargePower float64 `json:"battery_charge_power"`
}

// Compute returns pv - house - batteryCharge, all in W. A negative result
// means the house or battery draws from the grid.
func Compute(pv, house, batteryCharge float64) float64 {
	return pv - house - batteryCharge
}

// FromSenec derives the excess from a SENEC reading.
func FromSenec(d *senec.Data) Data {
	if d == nil {
		return Data{}
	}
	l := d.LiveData
	return Data{
		ExcessPower:        Compute(l.PVProduction, l.HousePower, l.BatteryChargePower),
		PVProduction:       l.PVProduction,
		HousePower:         l.HousePower,
		BatteryChargePower: l.BatteryChargePower,
	}
}
