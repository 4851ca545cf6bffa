package config

import (
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ChargingMode names one of the switchable automatic charging flags.
type ChargingMode string

const (
	// ModeAutomatic is the master switch for sun charging.
	ModeAutomatic ChargingMode = "automatic"
	// ModeGarage enables sun charging for the garage wallbox.
	ModeGarage ChargingMode = "garage"
	// ModeParking enables sun charging for the parking wallbox.
	ModeParking ChargingMode = "parking"
	// ModeForce allows every wallbox to charge regardless of excess power.
	ModeForce ChargingMode = "force"
)

// ChargingModes lists all modes in display order.
var ChargingModes = []ChargingMode{ModeAutomatic, ModeGarage, ModeParking, ModeForce}

var modeNames = map[ChargingMode]struct{ key, query string }{
	ModeAutomatic: {"automaticCharging", "setAutomaticCharging"},
	ModeGarage:    {"sunChargingGarage", "setAutomaticChargingGarage"},
	ModeParking:   {"sunChargingParking", "setAutomaticChargingParking"},
	ModeForce:     {"forceCharging", "setForceCharging"},
}

// Key is the name of the flag in dashboard JSON and in config files.
func (m ChargingMode) Key() string { return modeNames[m].key }

// QueryParam is the /dashboard query parameter that sets the flag.
func (m ChargingMode) QueryParam() string { return modeNames[m].query }

// ParseChargingMode accepts the short name, the JSON key or the query
// parameter of a mode, case-insensitively.
func ParseChargingMode(s string) (ChargingMode, error) {
	for _, m := range ChargingModes {
		n := modeNames[m]
		if strings.EqualFold(s, string(m)) || strings.EqualFold(s, n.key) || strings.EqualFold(s, n.query) {
			return m, nil
		}
	}
	return "", pkgerrors.Errorf("unknown charging mode %q", s)
}

// Wallbox roles.
const (
	RoleParking = "parking"
	RoleGarage  = "garage"
)

// Wallbox describes one go-eCharger.
type Wallbox struct {
	Name string `json:"name" yaml:"name"`
	IP   string `json:"ip" yaml:"ip"`
	// Role is either "garage" or "parking" and selects the sun charging flag.
	Role string `json:"role" yaml:"role"`
}

type Config interface {
	ListenAddress() string
	PollInterval() time.Duration
	ChargingPolicy() string
	Locale() string

	SenecDeviceIP() string
	SenecAPIPath() string
	SenecDesignCapacityWh() float64

	Wallboxes() []Wallbox
	MinChargePowerW() float64
	ChargingMode(ChargingMode) bool
	SetChargingMode(ChargingMode, bool)

	DatabasePath() string
	MQTTServer() string
	MQTTClientID() string
	MQTTTopicPrefix() string
	KafkaBrokers() []string
	KafkaTopic() string

	LogrusFields() logrus.Fields

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
