package battery

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	lowBelow = 20.0
	midBelow = 50.0
	maxPct   = 100.0
)

// Remaining is an estimated discharge duration. The zero value is unknown.
type Remaining struct {
	Hours float64
	Known bool
}

// Unknown is the sentinel for an unavailable estimate.
var Unknown = Remaining{}

// Duration converts the estimate to a time.Duration. It returns 0 if unknown.
func (r Remaining) Duration() time.Duration {
	if !r.Known {
		return 0
	}
	return time.Duration(r.Hours * float64(time.Hour))
}

// String formats the estimate the way the panels show it.
func (r Remaining) String() string {
	if !r.Known {
		return "-"
	}
	return fmt.Sprintf("%.2f h", r.Hours)
}

func (r Remaining) MarshalJSON() ([]byte, error) {
	if !r.Known {
		return []byte("null"), nil
	}
	return json.Marshal(r.Hours)
}

func (r *Remaining) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = Unknown
		return nil
	}
	var h float64
	if err := json.Unmarshal(b, &h); err != nil {
		return err
	}
	*r = Remaining{Hours: h, Known: true}
	return nil
}

// Classifier maps battery readings to display states.
type Classifier struct {
	Policy ChargingPolicy
}

// NewClassifier returns a Classifier using the given policy.
// An unknown policy falls back to PolicyStrict.
func NewClassifier(policy ChargingPolicy) Classifier {
	if !policy.Valid() {
		policy = PolicyStrict
	}
	return Classifier{Policy: policy}
}

// ModeOf returns the battery mode for a power reading in watts.
func (c Classifier) ModeOf(power float64) Mode {
	if c.Policy == PolicyNonNegative {
		if power >= 0 {
			return Charging
		}
		return Discharging
	}
	if power > 0 {
		return Charging
	}
	return Discharging
}

// TierOf returns the tier of a charge percentage. Percentages outside
// [0,100] (and NaN) give TierUnknown.
func TierOf(percentage float64) Tier {
	switch {
	case !(percentage >= 0):
		return TierUnknown
	case percentage < lowBelow:
		return TierLow
	case percentage < midBelow:
		return TierMid
	case percentage <= maxPct:
		return TierFull
	default:
		return TierUnknown
	}
}

// IconOf returns the icon name for a mode and tier.
func IconOf(mode Mode, tier Tier) string {
	if tier == TierUnknown {
		return ""
	}
	if mode == Charging {
		return IconCharging
	}
	switch tier {
	case TierLow:
		return IconEmpty
	case TierMid:
		return IconHalf
	default:
		return IconFull
	}
}

// ColorOf returns the color for a tier.
func ColorOf(tier Tier) string {
	switch tier {
	case TierLow:
		return ColorRed
	case TierMid:
		return ColorYellow
	case TierFull:
		return ColorGreen
	default:
		return ""
	}
}

// RemainingTime estimates how long the stored energy lasts at the current
// discharge rate: (percentage/100 * capacityWh) / dischargeW.
func RemainingTime(percentage, designCapacityWh, dischargeW float64) Remaining {
	if !(dischargeW > 0) || !(designCapacityWh > 0) || TierOf(percentage) == TierUnknown {
		return Unknown
	}
	return Remaining{
		Hours: (percentage / 100 * designCapacityWh) / dischargeW,
		Known: true,
	}
}

// Classify derives the display state. designCapacityWh may be 0 when no
// remaining time estimate is wanted.
func (c Classifier) Classify(power, percentage, designCapacityWh float64) State {
	mode := c.ModeOf(power)
	tier := TierOf(percentage)

	s := State{
		Mode:      mode,
		Tier:      tier,
		Icon:      IconOf(mode, tier),
		Color:     ColorOf(tier),
		Remaining: Unknown,
	}
	if mode == Discharging {
		s.Remaining = RemainingTime(percentage, designCapacityWh, -power)
	}
	return s
}

// IconHref returns the sprite sheet reference of an icon for a panel.
func IconHref(plugin, icon string) string {
	return "/static/" + plugin + "/icons/bootstrap-icons.svg#" + icon
}
