package senec

import "github.com/solarwallbox/solarwallbox/pkg/battery"

// Data is the normalized appliance reading served on /senec.
type Data struct {
	General            General            `json:"general"`
	LiveData           LiveData           `json:"live_data"`
	BatteryInformation BatteryInformation `json:"battery_information"`
	Statistics         Statistics         `json:"statistics"`
	// BatteryState is set by the dashboard runtime.
	BatteryState *battery.State `json:"battery_state,omitempty"`
}

type General struct {
	CurrentState     int     `json:"current_state"`
	HoursOfOperation float64 `json:"hours_of_operation"`
}

// LiveData holds instantaneous values in W, A, V and %.
// Grid power is positive when importing and negative when exporting.
// Battery charge power is positive when charging and negative when discharging.
type LiveData struct {
	HousePower           float64 `json:"house_power"`
	PVProduction         float64 `json:"pv_production"`
	GridPower            float64 `json:"grid_power"`
	BatteryChargePower   float64 `json:"battery_charge_power"`
	BatteryChargeCurrent float64 `json:"battery_charge_current"`
	BatteryVoltage       float64 `json:"battery_voltage"`
	BatteryPercentage    float64 `json:"battery_percentage"`

	HousePowerMin         float64 `json:"house_power_min"`
	HousePowerAvg         float64 `json:"house_power_avg"`
	HousePowerMax         float64 `json:"house_power_max"`
	PVProductionMin       float64 `json:"pv_production_min"`
	PVProductionAvg       float64 `json:"pv_production_avg"`
	PVProductionMax       float64 `json:"pv_production_max"`
	GridPowerMin          float64 `json:"grid_power_min"`
	GridPowerAvg          float64 `json:"grid_power_avg"`
	GridPowerMax          float64 `json:"grid_power_max"`
	BatteryChargePowerMin float64 `json:"battery_charge_power_min"`
	BatteryChargePowerAvg float64 `json:"battery_charge_power_avg"`
	BatteryChargePowerMax float64 `json:"battery_charge_power_max"`
}

type BatteryInformation struct {
	DesignCapacity    float64   `json:"design_capacity"`
	MaxChargePower    float64   `json:"max_charge_power"`
	MaxDischargePower float64   `json:"max_discharge_power"`
	Cycles            []float64 `json:"cycles"`
	ChargedEnergy     []float64 `json:"charged_energy"`
	DischargedEnergy  []float64 `json:"discharged_energy"`
}

// Statistics holds energy totals in kWh since installation, and since
// local midnight in the *Today fields.
type Statistics struct {
	Timestamp               int64   `json:"timestamp"`
	BatteryChargedEnergy    float64 `json:"battery_charged_energy"`
	BatteryDischargedEnergy float64 `json:"battery_discharged_energy"`
	GridExport              float64 `json:"grid_export"`
	GridImport              float64 `json:"grid_import"`
	HouseConsumption        float64 `json:"house_consumption"`
	PVProduction            float64 `json:"pv_production"`

	BatteryChargedEnergyToday    float64 `json:"battery_charged_energy_today"`
	BatteryDischargedEnergyToday float64 `json:"battery_discharged_energy_today"`
	GridExportToday              float64 `json:"grid_export_today"`
	GridImportToday              float64 `json:"grid_import_today"`
	HouseConsumptionToday        float64 `json:"house_consumption_today"`
	PVProductionToday            float64 `json:"pv_production_today"`
}

// request asks the appliance for the values mapped into Data.
var request = map[string]map[string]string{
	"ENERGY": {
		"STAT_STATE":               "",
		"GUI_BAT_DATA_POWER":       "",
		"GUI_INVERTER_POWER":       "",
		"GUI_HOUSE_POW":            "",
		"GUI_GRID_POW":             "",
		"GUI_BAT_DATA_FUEL_CHARGE": "",
		"GUI_BAT_DATA_CURRENT":     "",
		"GUI_BAT_DATA_VOLTAGE":     "",
		"STAT_HOURS_OF_OPERATION":  "",
	},
	"STATISTIC": {
		"CURRENT_STATE":             "",
		"MEASURE_TIME":              "",
		"LIVE_BAT_CHARGE_MASTER":    "",
		"LIVE_BAT_DISCHARGE_MASTER": "",
		"LIVE_GRID_EXPORT":          "",
		"LIVE_GRID_IMPORT":          "",
		"LIVE_HOUSE_CONS":           "",
		"LIVE_PV_GEN":               "",
	},
	"FACTORY": {
		"DESIGN_CAPACITY":        "",
		"MAX_CHARGE_POWER_DC":    "",
		"MAX_DISCHARGE_POWER_DC": "",
	},
	"BMS": {
		"CYCLES":            "",
		"CHARGED_ENERGY":    "",
		"DISCHARGED_ENERGY": "",
	},
}

func fromValues(v values, fallbackCapacity float64) *Data {
	d := &Data{
		General: General{
			CurrentState:     int(v.float("STATISTIC", "CURRENT_STATE")),
			HoursOfOperation: v.float("ENERGY", "STAT_HOURS_OF_OPERATION"),
		},
		LiveData: LiveData{
			HousePower:           v.float("ENERGY", "GUI_HOUSE_POW"),
			PVProduction:         v.float("ENERGY", "GUI_INVERTER_POWER"),
			GridPower:            v.float("ENERGY", "GUI_GRID_POW"),
			BatteryChargePower:   v.float("ENERGY", "GUI_BAT_DATA_POWER"),
			BatteryChargeCurrent: v.float("ENERGY", "GUI_BAT_DATA_CURRENT"),
			BatteryVoltage:       v.float("ENERGY", "GUI_BAT_DATA_VOLTAGE"),
			BatteryPercentage:    v.float("ENERGY", "GUI_BAT_DATA_FUEL_CHARGE"),
		},
		BatteryInformation: BatteryInformation{
			DesignCapacity:    v.float("FACTORY", "DESIGN_CAPACITY"),
			MaxChargePower:    v.float("FACTORY", "MAX_CHARGE_POWER_DC"),
			MaxDischargePower: v.float("FACTORY", "MAX_DISCHARGE_POWER_DC"),
			Cycles:            v.floats("BMS", "CYCLES"),
			ChargedEnergy:     v.floats("BMS", "CHARGED_ENERGY"),
			DischargedEnergy:  v.floats("BMS", "DISCHARGED_ENERGY"),
		},
		Statistics: Statistics{
			Timestamp:               int64(v.float("STATISTIC", "MEASURE_TIME")),
			BatteryChargedEnergy:    v.float("STATISTIC", "LIVE_BAT_CHARGE_MASTER"),
			BatteryDischargedEnergy: v.float("STATISTIC", "LIVE_BAT_DISCHARGE_MASTER"),
			GridExport:              v.float("STATISTIC", "LIVE_GRID_EXPORT"),
			GridImport:              v.float("STATISTIC", "LIVE_GRID_IMPORT"),
			HouseConsumption:        v.float("STATISTIC", "LIVE_HOUSE_CONS"),
			PVProduction:            v.float("STATISTIC", "LIVE_PV_GEN"),
		},
	}
	if d.BatteryInformation.DesignCapacity <= 0 {
		d.BatteryInformation.DesignCapacity = fallbackCapacity
	}
	return d
}
