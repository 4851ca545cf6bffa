// Package metrics exposes live readings as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solarwallbox/solarwallbox/pkg/goecharger"
	"github.com/solarwallbox/solarwallbox/pkg/senec"
)

const namespace = "solarwallbox"

type Metrics struct {
	registry *prometheus.Registry

	power             *prometheus.GaugeVec
	batteryPercentage prometheus.Gauge
	excessPower       prometheus.Gauge
	wallboxPower      *prometheus.GaugeVec
	wallboxAllowed    *prometheus.GaugeVec
	fetchErrors       *prometheus.CounterVec
	polls             prometheus.Counter
}

// New creates the collectors on a private registry, so that several
// instances can coexist in one process.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		power: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "power_watts",
			Help:      "Live power of the SENEC appliance by source (house, pv, grid, battery).",
		}, []string{"source"}),
		batteryPercentage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "battery_percentage",
			Help:      "Home battery state of charge.",
		}),
		excessPower: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "excess_power_watts",
			Help:      "PV power left after house and battery.",
		}),
		wallboxPower: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "wallbox_power_watts",
			Help:      "Charging power by wallbox.",
		}, []string{"wallbox"}),
		wallboxAllowed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "wallbox_allow_charging",
			Help:      "1 if the wallbox is allowed to charge.",
		}, []string{"wallbox"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "device_fetch_errors_total",
			Help:      "Failed device reads by device.",
		}, []string{"device"}),
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_polls_total",
			Help:      "Completed dashboard poll cycles.",
		}),
	}

	m.registry.MustRegister(
		m.power,
		m.batteryPercentage,
		m.excessPower,
		m.wallboxPower,
		m.wallboxAllowed,
		m.fetchErrors,
		m.polls,
		prometheus.NewGoCollector(),
	)

	return m
}

func (m *Metrics) ObserveSenec(d *senec.Data) {
	if m == nil || d == nil {
		return
	}
	l := d.LiveData
	m.power.WithLabelValues("house").Set(l.HousePower)
	m.power.WithLabelValues("pv").Set(l.PVProduction)
	m.power.WithLabelValues("grid").Set(l.GridPower)
	m.power.WithLabelValues("battery").Set(l.BatteryChargePower)
	m.batteryPercentage.Set(l.BatteryPercentage)
}

func (m *Metrics) ObserveWallbox(name string, d *goecharger.Data) {
	if m == nil || d == nil {
		return
	}
	m.wallboxPower.WithLabelValues(name).Set(d.CurrentPowerW())
	allowed := 0.0
	if d.Charging.AllowCharging {
		allowed = 1
	}
	m.wallboxAllowed.WithLabelValues(name).Set(allowed)
}

func (m *Metrics) ObserveExcess(w float64) {
	if m == nil {
		return
	}
	m.excessPower.Set(w)
}

func (m *Metrics) FetchError(device string) {
	if m == nil {
		return
	}
	m.fetchErrors.WithLabelValues(device).Inc()
}

func (m *Metrics) PollDone() {
	if m == nil {
		return
	}
	m.polls.Inc()
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
