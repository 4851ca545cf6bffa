package battery

import "fmt"

// Mode represents whether the battery is taking or giving energy.
type Mode int

const (
	// Discharging indicates the battery is discharging (or idle).
	Discharging Mode = iota
	// Charging indicates the battery is charging.
	Charging
)

func (m Mode) String() string {
	if m == Charging {
		return "charging"
	}
	return "discharging"
}

// MarshalText lets Mode appear as a string in JSON.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "charging":
		*m = Charging
	case "discharging":
		*m = Discharging
	default:
		return fmt.Errorf("unknown battery mode %q", string(b))
	}
	return nil
}

// Tier is the discrete charge level of the battery.
type Tier int

const (
	// TierUnknown is returned for percentages outside [0,100].
	TierUnknown Tier = iota
	// TierLow is below 20%.
	TierLow
	// TierMid is at least 20% and below 50%.
	TierMid
	// TierFull is at least 50% and at most 100%.
	TierFull
)

func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMid:
		return "mid"
	case TierFull:
		return "full"
	default:
		return "unknown"
	}
}

// MarshalText lets Tier appear as a string in JSON.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	for _, c := range []Tier{TierLow, TierMid, TierFull} {
		if c.String() == string(b) {
			*t = c
			return nil
		}
	}
	*t = TierUnknown
	return nil
}

// Color names understood by the panels.
const (
	ColorRed    = "red"
	ColorYellow = "yellow"
	ColorGreen  = "green"
)

// Icon names from the bootstrap icon sprite sheet.
const (
	IconCharging = "battery-charging"
	IconEmpty    = "battery"
	IconHalf     = "battery-half"
	IconFull     = "battery-full"
)

// ChargingPolicy decides at which power reading the battery counts as charging.
type ChargingPolicy string

const (
	// PolicyStrict treats only power > 0 as charging.
	PolicyStrict ChargingPolicy = "strict"
	// PolicyNonNegative treats power >= 0 as charging.
	PolicyNonNegative ChargingPolicy = "non-negative"
)

// Valid reports whether p is a known policy.
func (p ChargingPolicy) Valid() bool {
	return p == PolicyStrict || p == PolicyNonNegative
}

// State is the display state derived from a power and percentage reading.
type State struct {
	Mode  Mode   `json:"mode"`
	Tier  Tier   `json:"tier"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	// Remaining is the estimated time until the battery is empty.
	// It is unknown while charging or when nothing is drawn.
	Remaining Remaining `json:"remaining"`
}
