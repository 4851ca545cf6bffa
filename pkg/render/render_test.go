package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solarwallbox/solarwallbox/pkg/battery"
	"github.com/solarwallbox/solarwallbox/pkg/goecharger"
	"github.com/solarwallbox/solarwallbox/pkg/senec"
)

func TestLookup(t *testing.T) {
	doc := map[string]interface{}{
		"a": map[string]interface{}{
			"b": []interface{}{
				map[string]interface{}{"c": 1.0},
				map[string]interface{}{"c": 2.0},
			},
		},
	}
	tests := []struct {
		path string
		want interface{}
		ok   bool
	}{
		{"a.b.0.c", 1.0, true},
		{"a.b.1.c", 2.0, true},
		{"a.b.2.c", nil, false},
		{"a.b.x", nil, false},
		{"a.missing", nil, false},
		{"a.b.0.c.d", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := Lookup(doc, tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocaleFormatting(t *testing.T) {
	en := New("en")
	de := New("de-DE")
	bad := New("not a locale")

	assert.Equal(t, "1,234.50 W", Watts(en, 1234.5))
	assert.Equal(t, "1.234,50 W", Watts(de, 1234.5))
	assert.Equal(t, "1,234.50 W", Watts(bad, 1234.5))
	assert.Equal(t, "1.50 kW", WattsAsKW(en, 1500.0))
	assert.Equal(t, "12.3 kWh", TenthKWh(en, 123.0))
}

func TestSenecPanel(t *testing.T) {
	r := New("en")
	d := &senec.Data{
		LiveData: senec.LiveData{
			HousePower:         800,
			BatteryChargePower: -1000,
			BatteryPercentage:  50,
		},
		BatteryInformation: senec.BatteryInformation{
			DesignCapacity: 10000,
			Cycles:         []float64{12, 13},
		},
	}
	state := battery.NewClassifier(battery.PolicyStrict).Classify(-1000, 50, 10000)
	d.BatteryState = &state

	m := NewMapTarget()
	require.NoError(t, r.RenderValue(Senec, d, m))

	assert.Equal(t, "800.00 W", m.Get("housePower"))
	assert.Equal(t, "12, 13", m.Get("batCycles"))
	assert.Equal(t, "50.00 %", m.Get("batteryPercentage"))
	assert.Equal(t, "battery-full (green), 5.00 h", m.Get("batteryChargeStateIcon"))
	assert.Equal(t, "5.00 h", m.Get("batteryRemainingTime"))
	assert.Equal(t, "/static/senec/icons/bootstrap-icons.svg#battery-full", m.Get("batteryChargeStateIconHref"))
}

func TestSenecPanelCharging(t *testing.T) {
	r := New("en")
	d := &senec.Data{LiveData: senec.LiveData{BatteryChargePower: 500, BatteryPercentage: 10}}
	state := battery.NewClassifier(battery.PolicyStrict).Classify(500, 10, 0)
	d.BatteryState = &state

	m := NewMapTarget()
	require.NoError(t, r.RenderValue(Senec, d, m))

	assert.Equal(t, "charging", m.Get("batteryRemainingTime"))
	assert.Equal(t, "battery-charging (red), charging", m.Get("batteryChargeStateIcon"))
}

func TestSenecPanelUsesServedState(t *testing.T) {
	r := New("en")
	d := &senec.Data{LiveData: senec.LiveData{BatteryChargePower: 0, BatteryPercentage: 60}}

	m := NewMapTarget()
	require.NoError(t, r.RenderValue(Senec, d, m))
	assert.Equal(t, Missing, m.Get("batteryChargeStateIcon"))
	assert.Equal(t, Missing, m.Get("batteryRemainingTime"))

	// Idle counts as charging under the non-negative policy.
	state := battery.NewClassifier(battery.PolicyNonNegative).Classify(0, 60, 10000)
	d.BatteryState = &state
	require.NoError(t, r.RenderValue(Senec, d, m))
	assert.Equal(t, "battery-charging (green), charging", m.Get("batteryChargeStateIcon"))
}

func TestGoEChargerPanel(t *testing.T) {
	r := New("en")
	d := &goecharger.Data{
		Charging: goecharger.Charging{Status: "charging", CurrentPower: 3.7, MaxAmpere: 16},
		AccessControl: goecharger.AccessControl{
			AllowCharging: true,
			AccessMethod:  goecharger.AccessRFID,
			UnlockedBy:    2,
			RFIDCards: []goecharger.RFIDCard{
				{Name: "Alice", Energy: 10},
				{Name: "Bob", Energy: 42},
			},
		},
		EnergyTotal: 1234,
	}

	m := NewMapTarget()
	require.NoError(t, r.RenderValue(GoECharger, d, m))

	assert.Equal(t, "on", m.Get("allowChargingToggle"))
	assert.Equal(t, "rfid", m.Get("unlockMethodSelect"))
	assert.Equal(t, "Bob", m.Get("unlockedByUser"))
	assert.Equal(t, "4.2 kWh", m.Get("userEnergy"))
	assert.Equal(t, "16", m.Get("maxAmpereSelect"))
	assert.Equal(t, "3.70 kW", m.Get("chargingPower"))
	assert.Equal(t, "123.4 kWh", m.Get("totalEnergyCharged"))

	d.AccessControl.UnlockedBy = 0
	require.NoError(t, r.RenderValue(GoECharger, d, m))
	assert.Equal(t, "None", m.Get("unlockedByUser"))
	assert.Equal(t, "- kWh", m.Get("userEnergy"))
}

func TestDashboardPanelMissing(t *testing.T) {
	r := New("en")
	doc := map[string]interface{}{
		"house":             nil,
		"wallbox1":          nil,
		"excessPower":       2500.0,
		"automaticCharging": true,
	}

	m := NewMapTarget()
	r.Render(Dashboard, doc, m)

	assert.Equal(t, Missing, m.Get("pvProduction"))
	assert.Equal(t, Missing, m.Get("wallbox1"))
	assert.Equal(t, Missing, m.Get("batteryChargeStateIcon"))
	assert.Equal(t, "2.50 kW", m.Get("excessPower"))
	assert.Equal(t, "on", m.Get("automaticCharging_switch"))
	assert.Equal(t, Missing, m.Get("forceCharging_switch"))
}

func TestPanelByID(t *testing.T) {
	for _, p := range Panels() {
		got, ok := PanelByID(p.ID)
		require.True(t, ok)
		assert.Equal(t, p.Href, got.Href)
	}
	_, ok := PanelByID("nope")
	assert.False(t, ok)
}

func TestTextTarget(t *testing.T) {
	r := New("en")
	tt := &TextTarget{Title: "PV Excess Power"}
	require.NoError(t, r.RenderValue(Excess, map[string]float64{"excessPower": 724}, tt))

	assert.Equal(t, "PV Excess Power\n  Excess power: 0.72 kW\n", tt.String())

	tt.Reset()
	tt.Set("a", "A", "1")
	tt.Set("b", "Longer", "2")
	lines := strings.Split(strings.TrimSpace(tt.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "  A:      1", lines[1])
	assert.Equal(t, "  Longer: 2", lines[2])
}

func TestToggleRevertsOnError(t *testing.T) {
	fail := errors.New("device unreachable")
	var calls []bool
	tg := NewToggle("wallbox1_switch", func(_ context.Context, on bool) error {
		calls = append(calls, on)
		if on {
			return fail
		}
		return nil
	})

	tg.Sync(false)
	assert.ErrorIs(t, tg.Set(context.Background(), true), fail)
	assert.False(t, tg.Checked())

	tg.Sync(true)
	require.NoError(t, tg.Set(context.Background(), false))
	assert.False(t, tg.Checked())
	assert.Equal(t, []bool{true, false}, calls)
}

func TestSelectKeepsValueOnError(t *testing.T) {
	s := NewSelect("maxAmpereSelect", "max ampere", func(_ context.Context, v string) error {
		if v == "40" {
			return errors.New("out of range")
		}
		return nil
	})
	s.Sync("16")

	assert.Error(t, s.Choose(context.Background(), "40"))
	assert.Equal(t, "16", s.Value())

	require.NoError(t, s.Choose(context.Background(), "20"))
	assert.Equal(t, "20", s.Value())
}
