package senec

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValue(t *testing.T) {
	tests := []struct {
		raw  string
		want interface{}
	}{
		{"fl_43C80000", 400.0},
		{"fl_C3FA0000", -500.0},
		{"u8_64", 100.0},
		{"i8_FF", -1.0},
		{"u1_0102", 258.0},
		{"i1_FFFE", -2.0},
		{"u3_0000000A", 10.0},
		{"i3_FFFFFF38", -200.0},
		{"u6_0000000000000100", 256.0},
		{"fl_7FC00000", 0.0},
		{"fl_7F800000", 0.0},
		{"st_HELLO", "HELLO"},
		{"plain", "plain"},
		{"xx_00", "xx_00"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := DecodeValue(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DecodeValue("fl_ZZ")
	assert.Error(t, err)
	_, err = DecodeValue("fl_0000")
	assert.Error(t, err)
}

func senecServer(t *testing.T, responses ...string) *httptest.Server {
	var calls int32
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/lala.cgi", r.URL.Path)

		var req map[string]map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req, "ENERGY")
		assert.Contains(t, req["STATISTIC"], "LIVE_PV_GEN")

		i := int(atomic.AddInt32(&calls, 1)) - 1
		if i >= len(responses) {
			i = len(responses) - 1
		}
		_, _ = w.Write([]byte(responses[i]))
	}))
}

const (
	senecFirst = `{
		"ENERGY": {
			"GUI_HOUSE_POW": "fl_43C80000",
			"GUI_INVERTER_POWER": "fl_44FA0000",
			"GUI_GRID_POW": "fl_C3480000",
			"GUI_BAT_DATA_POWER": "fl_C3FA0000",
			"GUI_BAT_DATA_FUEL_CHARGE": "fl_42480000"
		},
		"STATISTIC": {"CURRENT_STATE": "u8_0E", "LIVE_PV_GEN": "fl_41200000"},
		"FACTORY": {"DESIGN_CAPACITY": "fl_461C4000"},
		"BMS": {"CYCLES": ["u3_0000000A", "u3_00000014"]}
	}`
	senecSecond = `{
		"ENERGY": {"GUI_HOUSE_POW": "fl_44160000"},
		"STATISTIC": {"LIVE_PV_GEN": "fl_41400000"}
	}`
)

func TestClientFetch(t *testing.T) {
	srv := senecServer(t, senecFirst, senecSecond)
	defer srv.Close()

	c := NewClient(srv.URL, "", 5000)
	daily := NewDaily()

	d, err := c.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 14, d.General.CurrentState)
	assert.Equal(t, 400.0, d.LiveData.HousePower)
	assert.Equal(t, 2000.0, d.LiveData.PVProduction)
	assert.Equal(t, -200.0, d.LiveData.GridPower)
	assert.Equal(t, -500.0, d.LiveData.BatteryChargePower)
	assert.Equal(t, 50.0, d.LiveData.BatteryPercentage)
	assert.Equal(t, 10000.0, d.BatteryInformation.DesignCapacity)
	assert.Equal(t, []float64{10, 20}, d.BatteryInformation.Cycles)
	// Aggregates are only filled by Daily.
	assert.Zero(t, d.LiveData.HousePowerMax)

	daily.Observe(d)
	assert.Equal(t, 400.0, d.LiveData.HousePowerMax)
	assert.Equal(t, 0.0, d.Statistics.PVProductionToday)

	d, err = c.Fetch(context.Background())
	require.NoError(t, err)
	daily.Observe(d)

	assert.Equal(t, 400.0, d.LiveData.HousePowerMin)
	assert.Equal(t, 500.0, d.LiveData.HousePowerAvg)
	assert.Equal(t, 600.0, d.LiveData.HousePowerMax)
	assert.Equal(t, 2.0, d.Statistics.PVProductionToday)
	// Missing design capacity falls back to the configured value.
	assert.Equal(t, 5000.0, d.BatteryInformation.DesignCapacity)

	daily.Reset()
	d, err = c.Fetch(context.Background())
	require.NoError(t, err)
	daily.Observe(d)
	assert.Equal(t, 600.0, d.LiveData.HousePowerMin)
	assert.Equal(t, 0.0, d.Statistics.PVProductionToday)
}

func TestDailyFillDoesNotSample(t *testing.T) {
	daily := NewDaily()
	reading := func(house, pv float64) *Data {
		return &Data{
			LiveData:   LiveData{HousePower: house},
			Statistics: Statistics{PVProduction: pv},
		}
	}

	daily.Fill(reading(100, 1))
	daily.Observe(reading(400, 10))
	for i := 0; i < 5; i++ {
		daily.Fill(reading(1000, 12))
	}
	d := reading(600, 13)
	daily.Observe(d)

	assert.Equal(t, 400.0, d.LiveData.HousePowerMin)
	assert.Equal(t, 500.0, d.LiveData.HousePowerAvg)
	assert.Equal(t, 600.0, d.LiveData.HousePowerMax)
	assert.Equal(t, 3.0, d.Statistics.PVProductionToday)

	filled := reading(0, 14)
	daily.Fill(filled)
	assert.Equal(t, 500.0, filled.LiveData.HousePowerAvg)
	assert.Equal(t, 4.0, filled.Statistics.PVProductionToday)

	var none *Daily
	assert.NotPanics(t, func() { none.Observe(d); none.Fill(d) })
}

func TestClientFetchNonFiniteValues(t *testing.T) {
	srv := senecServer(t, `{
		"ENERGY": {
			"GUI_HOUSE_POW": "fl_43C80000",
			"GUI_BAT_DATA_VOLTAGE": "fl_7FC00000",
			"GUI_BAT_DATA_CURRENT": "fl_FF800000"
		}
	}`)
	defer srv.Close()

	d, err := NewClient(srv.URL, "", 0).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 400.0, d.LiveData.HousePower)
	assert.Zero(t, d.LiveData.BatteryVoltage)
	assert.Zero(t, d.LiveData.BatteryChargeCurrent)

	_, err = json.Marshal(d)
	assert.NoError(t, err)
}

func TestClientFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", 0).Fetch(context.Background())
	assert.Error(t, err)

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ENERGY": {"GUI_HOUSE_POW": "fl_XYZ"}}`))
	}))
	defer bad.Close()

	_, err = NewClient(bad.URL, "", 0).Fetch(context.Background())
	assert.Error(t, err)
}
