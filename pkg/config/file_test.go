package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileDefaults(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", f.ListenAddress())
	assert.Equal(t, 2*time.Second, f.PollInterval())
	assert.Equal(t, "strict", f.ChargingPolicy())
	assert.Equal(t, "/lala.cgi", f.SenecAPIPath())
	assert.Equal(t, 10000.0, f.SenecDesignCapacityWh())
	assert.Len(t, f.Wallboxes(), 2)
	assert.False(t, f.ChargingMode(ModeAutomatic))
	assert.Empty(t, f.KafkaBrokers())
	assert.Equal(t, "solarwallbox.snapshots", f.KafkaTopic())
}

func TestFileLoadJSON(t *testing.T) {
	p := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(p, []byte(`{
  "pollIntervalMs": 100,
  "chargingPolicy": "non-negative",
  "senec": {"device_ip": "192.168.1.10"},
  "wallboxes": [{"name": "Garage", "ip": "192.168.1.20", "role": "garage"}],
  "automaticCharging": true
}`), 0644))

	f, err := NewFile(p)
	require.NoError(t, err)

	// Clamped to the lower bound.
	assert.Equal(t, 2*time.Second, f.PollInterval())
	assert.Equal(t, "non-negative", f.ChargingPolicy())
	assert.Equal(t, "192.168.1.10", f.SenecDeviceIP())
	// Unset nested fields still get their defaults.
	assert.Equal(t, "/lala.cgi", f.SenecAPIPath())
	require.Len(t, f.Wallboxes(), 1)
	assert.Equal(t, RoleGarage, f.Wallboxes()[0].Role)
	assert.True(t, f.ChargingMode(ModeAutomatic))
}

func TestFileLoadYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
pollIntervalMs: 9000
kafka:
  brokers: ["localhost:9092"]
mqtt:
  server: tcp://broker:1883
`), 0644))

	f, err := NewFile(p)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, f.PollInterval())
	assert.Equal(t, []string{"localhost:9092"}, f.KafkaBrokers())
	assert.Equal(t, "tcp://broker:1883", f.MQTTServer())
	assert.Equal(t, "solarwallbox", f.MQTTTopicPrefix())
}

func TestFileEmpty(t *testing.T) {
	p := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(p, []byte("  \n"), 0644))

	f, err := NewFile(p)
	require.NoError(t, err)
	assert.Equal(t, ":8080", f.ListenAddress())
}

func TestFileInvalid(t *testing.T) {
	p := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(p, []byte("{"), 0644))

	_, err := NewFile(p)
	assert.Error(t, err)
}

func TestFileSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"settings.json", "settings.yml"} {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), name)
			f, err := NewFile(p)
			require.NoError(t, err)

			f.SetChargingMode(ModeGarage, true)
			f.SetChargingMode(ModeForce, true)
			require.NoError(t, f.Save())

			g, err := NewFile(p)
			require.NoError(t, err)
			assert.True(t, g.ChargingMode(ModeGarage))
			assert.True(t, g.ChargingMode(ModeForce))
			assert.False(t, g.ChargingMode(ModeParking))
		})
	}
}

func TestNewRawFileConfigFromConfig(t *testing.T) {
	f := NewFileFromConfig(nil, "")
	f.SetChargingMode(ModeParking, true)

	raw, err := NewRawFileConfigFromConfig(f)
	require.NoError(t, err)
	require.NotNil(t, raw.SunChargingParking)
	assert.True(t, *raw.SunChargingParking)
	assert.Equal(t, 2000, *raw.PollIntervalMs)

	_, err = NewRawFileConfigFromConfig(nil)
	assert.Error(t, err)
}

func TestParseChargingMode(t *testing.T) {
	for in, want := range map[string]ChargingMode{
		"automatic":                   ModeAutomatic,
		"automaticCharging":           ModeAutomatic,
		"setAutomaticChargingGarage":  ModeGarage,
		"sunchargingparking":          ModeParking,
		"FORCE":                       ModeForce,
		"setForceCharging":            ModeForce,
	} {
		got, err := ParseChargingMode(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseChargingMode("turbo")
	assert.Error(t, err)

	assert.Equal(t, "sunChargingGarage", ModeGarage.Key())
	assert.Equal(t, "setForceCharging", ModeForce.QueryParam())
}
