package goecharger

import (
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Setting is a writable wallbox property.
type Setting string

const (
	SettingAllowCharging Setting = "allow_charging"
	SettingMaxAmpere     Setting = "max_ampere"
	SettingAccessControl Setting = "access_control"
)

const (
	minAmpere = 6
	maxAmpere = 32
)

// ParseSetting splits "allow_charging=1" into its setting and value.
func ParseSetting(expr string) (Setting, string, error) {
	k, v, ok := strings.Cut(expr, "=")
	if !ok || k == "" || v == "" {
		return "", "", pkgerrors.Errorf("invalid setting %q, expected <name>=<value>", expr)
	}
	return Setting(k), v, nil
}

// deviceCommand validates value and translates it into the device key and
// value of the go-eCharger API.
func deviceCommand(s Setting, value string) (string, string, error) {
	switch s {
	case SettingAllowCharging:
		switch strings.ToLower(value) {
		case "1", "true", "on":
			return "alw", "1", nil
		case "0", "false", "off":
			return "alw", "0", nil
		}
		return "", "", pkgerrors.Errorf("allow_charging must be 0 or 1, got %q", value)
	case SettingMaxAmpere:
		a, err := strconv.Atoi(value)
		if err != nil {
			return "", "", pkgerrors.Errorf("max_ampere must be a number, got %q", value)
		}
		if a < minAmpere || a > maxAmpere {
			return "", "", pkgerrors.Errorf("max_ampere must be between %d and %d, got %d", minAmpere, maxAmpere, a)
		}
		return "amp", strconv.Itoa(a), nil
	case SettingAccessControl:
		for i, m := range accessMethods {
			if value == m || value == strconv.Itoa(i) {
				return "acs", strconv.Itoa(i), nil
			}
		}
		return "", "", pkgerrors.Errorf("access_control must be one of %s, got %q", strings.Join(accessMethods, ", "), value)
	default:
		return "", "", pkgerrors.Errorf("unknown setting %q", s)
	}
}

// Validate checks value for s without contacting a device.
func Validate(s Setting, value string) error {
	_, _, err := deviceCommand(s, value)
	return err
}
