package goecharger

// Data is the normalized wallbox status served on /go-echarger.
type Data struct {
	Charging      Charging      `json:"charging"`
	AccessControl AccessControl `json:"access_control"`
	DeviceSerial  string        `json:"device_serial"`
	FWVersion     string        `json:"fw_version"`
	DeviceIP      string        `json:"device_ip"`
	ErrorState    string        `json:"error_state"`
	// EnergyTotal is in 0.1 kWh, as reported by the device.
	EnergyTotal float64 `json:"energy_total"`
}

type Charging struct {
	Status string `json:"status"`
	// CurrentPower is in kW.
	CurrentPower float64 `json:"current_power"`
	PhaUsed      int     `json:"pha_used"`
	// Energy charged in the current session, in kWh.
	Energy        float64 `json:"energy"`
	MaxAmpere     int     `json:"max_ampere"`
	AllowCharging bool    `json:"allow_charging"`
}

type AccessControl struct {
	AllowCharging bool   `json:"allow_charging"`
	AccessMethod  string `json:"access_method"`
	// UnlockedBy is the 1-based index into RFIDCards, 0 if nobody.
	UnlockedBy int        `json:"unlocked_by"`
	RFIDCards  []RFIDCard `json:"rfid_cards"`
}

type RFIDCard struct {
	Name string `json:"name"`
	// Energy is in 0.1 kWh.
	Energy float64 `json:"energy"`
}

// UnlockedCard returns the card that unlocked the wallbox, if any.
func (a AccessControl) UnlockedCard() (RFIDCard, bool) {
	if a.UnlockedBy <= 0 || a.UnlockedBy > len(a.RFIDCards) {
		return RFIDCard{}, false
	}
	return a.RFIDCards[a.UnlockedBy-1], true
}

// CurrentPowerW returns the charging power in watts.
func (d *Data) CurrentPowerW() float64 {
	if d == nil {
		return 0
	}
	return d.Charging.CurrentPower * 1000
}

// Access methods.
const (
	AccessOpen = "open"
	AccessRFID = "rfid"
	AccessAuto = "auto"
)

var accessMethods = []string{AccessOpen, AccessRFID, AccessAuto}

var carStates = map[int]string{
	1: "ready, no vehicle",
	2: "charging",
	3: "waiting for vehicle",
	4: "charging finished",
}

var errorStates = map[int]string{
	0:  "none",
	1:  "RCCB",
	3:  "phase",
	8:  "no ground",
	10: "internal",
}

// Device keys of the ten RFID card slots.
var (
	cardNameKeys   = []string{"rna", "rnm", "rne", "rn4", "rn5", "rn6", "rn7", "rn8", "rn9", "rn1"}
	cardEnergyKeys = []string{"eca", "ecr", "ecd", "ec4", "ec5", "ec6", "ec7", "ec8", "ec9", "ec1"}
)
