package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	mu       sync.Mutex
	mutation []string
	reject   string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	q := r.URL.Query()
	switch {
	case r.URL.Path == "/version":
		_, _ = w.Write([]byte(`"v0.0.0-dev"`))
	case q.Get("set") != "" || (r.URL.Path == "/dashboard" && q.Get("format") == ""):
		f.mutation = append(f.mutation, r.URL.RawQuery)
		if f.reject != "" {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"` + f.reject + `"}`))
			return
		}
		_, _ = w.Write([]byte(`{"msg":"success!"}`))
	case r.URL.Path == "/dashboard":
		_, _ = w.Write([]byte(`{"house":{"live_data":{"pv_production":5000,"battery_percentage":42}},
			"wallbox1":null,"wallbox2":null,"automaticCharging":true,"sunChargingGarage":false,
			"sunChargingParking":true,"forceCharging":false,"excessPower":1500,"housePowerWithoutWallboxes":700,
			"battery_state":{"mode":"discharging","tier":"mid","icon":"battery-half","color":"yellow","remaining":3.5}}`))
	case r.URL.Path == "/go-echarger":
		_, _ = w.Write([]byte(`{"charging":{"status":"charging","max_ampere":10},"access_control":{"allow_charging":false,"access_method":"open"}}`))
	case r.URL.Path == "/senec":
		_, _ = w.Write([]byte(`{"live_data":{"battery_charge_power":0,"battery_percentage":60},
			"battery_state":{"mode":"charging","tier":"full","icon":"battery-charging","color":"green","remaining":null}}`))
	case r.URL.Path == "/":
		_, _ = w.Write([]byte(`[{"id":"dashboard","title":"Solar Dashboard","href":"/dashboard"},
			{"id":"excess","title":"PV Excess","href":"/excess"}]`))
	case r.URL.Path == "/excess":
		_, _ = w.Write([]byte(`{"excessPower":1500}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append(args, "--server", srv.URL, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(&fakeServer{})
	defer srv.Close()

	out, err := run(t, srv, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "5,000.00 W")
	assert.Contains(t, out, "1.50 kW")
	assert.Contains(t, out, "remaining: 3.50 h")
	assert.Contains(t, out, "Sun charging parking")
}

func TestExcess(t *testing.T) {
	srv := httptest.NewServer(&fakeServer{})
	defer srv.Close()

	out, err := run(t, srv, "excess")
	require.NoError(t, err)
	assert.Contains(t, out, "Excess power: 1.50 kW")

	out, err = run(t, srv, "excess", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"excessPower":1500`)
}

func TestSenecShowsServedState(t *testing.T) {
	srv := httptest.NewServer(&fakeServer{})
	defer srv.Close()

	out, err := run(t, srv, "senec")
	require.NoError(t, err)
	assert.Contains(t, out, "battery-charging (green), charging")
}

func TestPlugins(t *testing.T) {
	srv := httptest.NewServer(&fakeServer{})
	defer srv.Close()

	out, err := run(t, srv, "plugins")
	require.NoError(t, err)
	assert.Contains(t, out, "Solar Dashboard: /dashboard")
	assert.Contains(t, out, "PV Excess:")
	assert.Contains(t, out, "/excess")
}

func TestWallboxCommands(t *testing.T) {
	f := &fakeServer{}
	srv := httptest.NewServer(f)
	defer srv.Close()

	_, err := run(t, srv, "wallbox", "allow", "1")
	require.NoError(t, err)
	_, err = run(t, srv, "wallbox", "max-ampere", "0", "16")
	require.NoError(t, err)
	_, err = run(t, srv, "wallbox", "access", "0", "rfid")
	require.NoError(t, err)
	_, err = run(t, srv, "auto", "garage", "enable")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"device=1&set=allow_charging%3D1",
		"device=0&set=max_ampere%3D16",
		"device=0&set=access_control%3Drfid",
		"setAutomaticChargingGarage=1",
	}, f.mutation)
}

func TestWallboxRejected(t *testing.T) {
	f := &fakeServer{reject: "wallbox unreachable"}
	srv := httptest.NewServer(f)
	defer srv.Close()

	_, err := run(t, srv, "wallbox", "deny", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wallbox unreachable")

	// Invalid values never reach the server.
	_, err = run(t, srv, "wallbox", "max-ampere", "0", "64")
	require.Error(t, err)
	assert.Len(t, f.mutation, 1)
}
