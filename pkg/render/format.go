package render

import (
	"fmt"
	"strings"

	"github.com/solarwallbox/solarwallbox/pkg/battery"
)

func number(v interface{}) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func unit(format string, scale float64) Formatter {
	return func(r *Renderer, v interface{}) string {
		f, ok := number(v)
		if !ok {
			return Text(r, v)
		}
		return r.Sprintf(format, f*scale)
	}
}

// Formatters shared by the panels.
var (
	Watts     = unit("%.2f W", 1)
	KiloWatts = unit("%.2f kW", 1)
	// WattsAsKW shows a W value in kW.
	WattsAsKW = unit("%.2f kW", 0.001)
	KWh       = unit("%.2f kWh", 1)
	// TenthKWh shows a value counted in 0.1 kWh.
	TenthKWh = unit("%.1f kWh", 0.1)
	WattHours = unit("%.0f Wh", 1)
	Volts     = unit("%.2f V", 1)
	Amperes   = unit("%.2f A", 1)
	Percent   = unit("%.2f %%", 1)
	Hours     = unit("%.0f h", 1)
	Integer   = unit("%.0f", 1)
)

// Text renders any value with %v; lists are joined with ", ".
func Text(r *Renderer, v interface{}) string {
	switch t := v.(type) {
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, Text(r, e))
		}
		return strings.Join(parts, ", ")
	case float64:
		return r.Sprintf("%v", t)
	default:
		return fmt.Sprint(t)
	}
}

// OnOff renders a toggle state.
func OnOff(_ *Renderer, v interface{}) string {
	if b, ok := v.(bool); ok && b {
		return "on"
	}
	return "off"
}

// BatteryState renders a battery_state object as icon, color and
// remaining time, e.g. "battery-half (yellow), 8.00 h".
func BatteryState(r *Renderer, v interface{}) string {
	m, ok := v.(map[string]interface{})
	if !ok {
		return Missing
	}
	icon, _ := m["icon"].(string)
	color, _ := m["color"].(string)
	if icon == "" {
		icon = "unknown"
	}
	s := icon
	if color != "" {
		s += " (" + color + ")"
	}
	return s + ", " + Remaining(r, m)
}

// IconRef renders the sprite reference of a battery_state icon for plugin.
func IconRef(plugin string) Formatter {
	return func(_ *Renderer, v interface{}) string {
		m, ok := v.(map[string]interface{})
		if !ok {
			return Missing
		}
		icon, _ := m["icon"].(string)
		if icon == "" {
			return Missing
		}
		return battery.IconHref(plugin, icon)
	}
}

// Remaining renders the remaining time of a battery_state object. While
// charging it shows "charging".
func Remaining(r *Renderer, v interface{}) string {
	m, ok := v.(map[string]interface{})
	if !ok {
		return Missing
	}
	if mode, _ := m["mode"].(string); mode == battery.Charging.String() {
		return "charging"
	}
	h, ok := number(m["remaining"])
	if !ok {
		return battery.Unknown.String()
	}
	return r.Sprintf("%.2f h", h)
}

// UnlockedCard derives the RFID card that unlocked a wallbox.
func UnlockedCard(_ *Renderer, doc interface{}) (interface{}, bool) {
	by, ok := Lookup(doc, "access_control.unlocked_by")
	if !ok {
		return nil, false
	}
	n, ok := number(by)
	if !ok || n < 1 {
		return "None", true
	}
	return Lookup(doc, fmt.Sprintf("access_control.rfid_cards.%d", int(n)-1))
}

// CardName renders the name of a card object.
func CardName(r *Renderer, v interface{}) string {
	if m, ok := v.(map[string]interface{}); ok {
		return Text(r, m["name"])
	}
	return Text(r, v)
}

// CardEnergy renders the energy of a card object.
func CardEnergy(r *Renderer, v interface{}) string {
	if m, ok := v.(map[string]interface{}); ok {
		return TenthKWh(r, m["energy"])
	}
	return "- kWh"
}
