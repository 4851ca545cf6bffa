package goecharger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statusJSON = `{
	"car": "2", "amp": "16", "err": "0", "alw": "1", "acs": "1",
	"pha": "56", "dws": "720000", "eto": "120", "uby": "2",
	"nrg": [230, 231, 229, 0, 60, 61, 62, 14, 14, 14, 0, 420, 0, 0, 0, 0],
	"fwv": "040.0", "sse": "012345",
	"rna": "alice", "eca": "15", "rnm": "bob", "ecr": "42"
}`

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status", r.URL.Path)
		_, _ = w.Write([]byte(statusJSON))
	}))
	defer srv.Close()

	d, err := NewClient(srv.URL).Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "charging", d.Charging.Status)
	assert.InDelta(t, 4.2, d.Charging.CurrentPower, 1e-9)
	assert.InDelta(t, 4200, d.CurrentPowerW(), 1e-6)
	assert.Equal(t, 3, d.Charging.PhaUsed)
	assert.InDelta(t, 2.0, d.Charging.Energy, 1e-9)
	assert.Equal(t, 16, d.Charging.MaxAmpere)
	assert.True(t, d.Charging.AllowCharging)
	assert.True(t, d.AccessControl.AllowCharging)
	assert.Equal(t, AccessRFID, d.AccessControl.AccessMethod)
	assert.Equal(t, "012345", d.DeviceSerial)
	assert.Equal(t, "040.0", d.FWVersion)
	assert.Equal(t, srv.URL, d.DeviceIP)
	assert.Equal(t, "none", d.ErrorState)
	assert.Equal(t, 120.0, d.EnergyTotal)

	require.Len(t, d.AccessControl.RFIDCards, 10)
	card, ok := d.AccessControl.UnlockedCard()
	require.True(t, ok)
	assert.Equal(t, RFIDCard{Name: "bob", Energy: 42}, card)
}

func TestFetchNumbers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"car": 1, "err": 13, "acs": 7, "uby": 0}`))
	}))
	defer srv.Close()

	d, err := NewClient(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ready, no vehicle", d.Charging.Status)
	assert.Equal(t, "error 13", d.ErrorState)
	assert.Equal(t, "unknown", d.AccessControl.AccessMethod)
	assert.Equal(t, 0.0, d.Charging.CurrentPower)

	_, ok := d.AccessControl.UnlockedCard()
	assert.False(t, ok)
}

func TestSet(t *testing.T) {
	var payload atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mqtt", r.URL.Path)
		payload.Store(r.URL.Query().Get("payload"))
		_, _ = w.Write([]byte(`{"alw": "0", "amp": "10", "acs": "0"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	tests := []struct {
		setting Setting
		value   string
		payload string
	}{
		{SettingAllowCharging, "0", "alw=0"},
		{SettingAllowCharging, "true", "alw=1"},
		{SettingMaxAmpere, "10", "amp=10"},
		{SettingAccessControl, "open", "acs=0"},
		{SettingAccessControl, "2", "acs=2"},
	}
	for _, tt := range tests {
		t.Run(string(tt.setting)+"="+tt.value, func(t *testing.T) {
			d, err := c.Set(context.Background(), tt.setting, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.payload, payload.Load())
			assert.False(t, d.Charging.AllowCharging)
		})
	}
}

func TestSetRejectsBeforeIO(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	for _, tt := range []struct {
		setting Setting
		value   string
	}{
		{SettingAllowCharging, "maybe"},
		{SettingMaxAmpere, "5"},
		{SettingMaxAmpere, "33"},
		{SettingMaxAmpere, "ten"},
		{SettingAccessControl, "3"},
		{SettingAccessControl, "badge"},
		{"colour", "red"},
	} {
		_, err := c.Set(context.Background(), tt.setting, tt.value)
		assert.Error(t, err, "%s=%s", tt.setting, tt.value)
	}
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestParseSetting(t *testing.T) {
	s, v, err := ParseSetting("max_ampere=16")
	require.NoError(t, err)
	assert.Equal(t, SettingMaxAmpere, s)
	assert.Equal(t, "16", v)

	for _, expr := range []string{"", "max_ampere", "=16", "max_ampere="} {
		_, _, err := ParseSetting(expr)
		assert.Error(t, err, expr)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(SettingAllowCharging, "on"))
	assert.NoError(t, Validate(SettingAccessControl, "2"))
	assert.Error(t, Validate(SettingMaxAmpere, "5"))
	assert.Error(t, Validate(Setting("colour"), "red"))
}
