package render

func wallboxPower(i string) Binding {
	return Binding{Target: "wallbox" + i, Label: "Wallbox " + i, Path: "wallbox" + i + ".charging.current_power", Format: KiloWatts}
}

func wallboxSwitch(i string) Binding {
	return Binding{Target: "wallbox" + i + "_switch", Label: "Wallbox " + i + " charging", Path: "wallbox" + i + ".access_control.allow_charging", Format: OnOff}
}

func minAvgMax(target, label, path string) []Binding {
	return []Binding{
		{Target: target, Label: label, Path: path, Format: Watts},
		{Target: target + "_min", Label: label + " min", Path: path + "_min", Format: Watts},
		{Target: target + "_avg", Label: label + " avg", Path: path + "_avg", Format: Watts},
		{Target: target + "_max", Label: label + " max", Path: path + "_max", Format: Watts},
	}
}

func totalAndToday(target, label, path string) []Binding {
	return []Binding{
		{Target: target + "Stats", Label: label, Path: path, Format: KWh},
		{Target: target + "_today", Label: label + " today", Path: path + "_today", Format: KWh},
	}
}

func concat(groups ...[]Binding) []Binding {
	var out []Binding
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var (
	Dashboard = Panel{
		ID:    "dashboard",
		Title: "Solar Dashboard",
		Href:  "/dashboard",
		Bindings: []Binding{
			{Target: "pvProduction", Label: "Production", Path: "house.live_data.pv_production", Format: Watts},
			{Target: "gridPower", Label: "Grid power", Path: "house.live_data.grid_power", Format: Watts},
			{Target: "batteryPower", Label: "Battery power", Path: "house.live_data.battery_charge_power", Format: Watts},
			{Target: "batteryChargeState", Label: "Battery", Path: "house.live_data.battery_percentage", Format: Percent},
			{Target: "batteryChargeStateIcon", Label: "Battery state", Path: "battery_state", Format: BatteryState},
			{Target: "batteryChargeStateIconHref", Label: "Battery icon", Path: "battery_state", Format: IconRef("dashboard")},
			{Target: "housePower", Label: "House", Path: "housePowerWithoutWallboxes", Format: Watts},
			wallboxPower("1"),
			wallboxSwitch("1"),
			wallboxPower("2"),
			wallboxSwitch("2"),
			{Target: "excessPower", Label: "Excess power", Path: "excessPower", Format: WattsAsKW},
			{Target: "automaticCharging_switch", Label: "Automatic charging", Path: "automaticCharging", Format: OnOff},
			{Target: "sunChargingGarage_switch", Label: "Sun charging garage", Path: "sunChargingGarage", Format: OnOff},
			{Target: "sunChargingParking_switch", Label: "Sun charging parking", Path: "sunChargingParking", Format: OnOff},
			{Target: "forceCharging_switch", Label: "Force charging", Path: "forceCharging", Format: OnOff},
		},
	}

	Senec = Panel{
		ID:    "senec",
		Title: "SENEC Home V3 Hybrid",
		Href:  "/senec",
		Bindings: concat(
			[]Binding{
				{Target: "currentState", Label: "State", Path: "general.current_state", Format: Integer},
				{Target: "opHours", Label: "Operating hours", Path: "general.hours_of_operation", Format: Hours},
				{Target: "batCycles", Label: "Battery cycles", Path: "battery_information.cycles", Format: Text},
				{Target: "batDesignCapacity", Label: "Design capacity", Path: "battery_information.design_capacity", Format: WattHours},
				{Target: "batMaxChargePower", Label: "Max charge power", Path: "battery_information.max_charge_power", Format: Watts},
				{Target: "batMaxDischargePower", Label: "Max discharge power", Path: "battery_information.max_discharge_power", Format: Watts},
			},
			minAvgMax("housePower", "House", "live_data.house_power"),
			minAvgMax("pvProduction", "Production", "live_data.pv_production"),
			minAvgMax("gridPower", "Grid", "live_data.grid_power"),
			minAvgMax("batteryPower", "Battery power", "live_data.battery_charge_power"),
			[]Binding{
				{Target: "batteryChargeStateIcon", Label: "Battery state", Path: "battery_state", Format: BatteryState},
				{Target: "batteryChargeStateIconHref", Label: "Battery icon", Path: "battery_state", Format: IconRef("senec")},
				{Target: "batteryRemainingTime", Label: "Remaining", Path: "battery_state", Format: Remaining},
				{Target: "batteryVoltage", Label: "Battery voltage", Path: "live_data.battery_voltage", Format: Volts},
				{Target: "batteryCurrent", Label: "Battery current", Path: "live_data.battery_charge_current", Format: Amperes},
				{Target: "batteryPercentage", Label: "Battery", Path: "live_data.battery_percentage", Format: Percent},
			},
			totalAndToday("houseConsumption", "House consumption", "statistics.house_consumption"),
			totalAndToday("pvProduction", "PV production", "statistics.pv_production"),
			totalAndToday("batteryCharged", "Battery charged", "statistics.battery_charged_energy"),
			totalAndToday("batteryDischarged", "Battery discharged", "statistics.battery_discharged_energy"),
			totalAndToday("gridExport", "Grid export", "statistics.grid_export"),
			totalAndToday("gridImport", "Grid import", "statistics.grid_import"),
		),
	}

	GoECharger = Panel{
		ID:    "go-echarger",
		Title: "go-eCharger",
		Href:  "/go-echarger",
		Bindings: []Binding{
			{Target: "chargingStatus", Label: "Status", Path: "charging.status", Format: Text},
			{Target: "allowChargingToggle", Label: "Allow charging", Path: "access_control.allow_charging", Format: OnOff},
			{Target: "unlockMethodSelect", Label: "Access method", Path: "access_control.access_method", Format: Text},
			{Target: "unlockedByUser", Label: "Unlocked by", Derive: UnlockedCard, Format: CardName},
			{Target: "userEnergy", Label: "User energy", Derive: UnlockedCard, Format: CardEnergy},
			{Target: "maxAmpereSelect", Label: "Max ampere", Path: "charging.max_ampere", Format: Integer},
			{Target: "chargingPower", Label: "Charging power", Path: "charging.current_power", Format: KiloWatts},
			{Target: "usedPhases", Label: "Phases", Path: "charging.pha_used", Format: Integer},
			{Target: "energyCharged", Label: "Energy charged", Path: "charging.energy", Format: KWh},
			{Target: "totalEnergyCharged", Label: "Total energy", Path: "energy_total", Format: TenthKWh},
			{Target: "serialNumber", Label: "Serial number", Path: "device_serial", Format: Text},
			{Target: "firmwareVersion", Label: "Firmware", Path: "fw_version", Format: Text},
			{Target: "ipAddress", Label: "IP address", Path: "device_ip", Format: Text},
			{Target: "errorStatus", Label: "Error", Path: "error_state", Format: Text},
		},
	}

	Excess = Panel{
		ID:    "pv-excess",
		Title: "PV Excess Power",
		Href:  "/excess",
		Bindings: []Binding{
			{Target: "excessPower", Label: "Excess power", Path: "excessPower", Format: WattsAsKW},
		},
	}
)

// Panels returns all panels in display order.
func Panels() []Panel {
	return []Panel{Dashboard, Senec, GoECharger, Excess}
}

// PanelByID returns the panel with id.
func PanelByID(id string) (Panel, bool) {
	for _, p := range Panels() {
		if p.ID == id {
			return p, true
		}
	}
	return Panel{}, false
}
