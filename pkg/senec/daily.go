package senec

import (
	"math"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type minAvgMax struct {
	min, max, sum float64
	n             int
}

func (m *minAvgMax) add(v float64) {
	if m.n == 0 {
		m.min, m.max = v, v
	}
	m.min = math.Min(m.min, v)
	m.max = math.Max(m.max, v)
	m.sum += v
	m.n++
}

func (m *minAvgMax) values() (float64, float64, float64) {
	if m.n == 0 {
		return 0, 0, 0
	}
	return m.min, m.sum / float64(m.n), m.max
}

// Daily aggregates live values since the last reset (local midnight) and
// remembers the energy totals of the first reading after it.
type Daily struct {
	mu sync.Mutex

	house, pv, grid, battery minAvgMax
	baseline                 *Statistics
}

func NewDaily() *Daily {
	return &Daily{}
}

// Observe records d as a new sample and fills its aggregates. Only the
// poll loop observes, so the sample count does not depend on how often
// readings are requested.
func (a *Daily) Observe(d *Data) {
	if a == nil || d == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	l := d.LiveData
	a.house.add(l.HousePower)
	a.pv.add(l.PVProduction)
	a.grid.add(l.GridPower)
	a.battery.add(l.BatteryChargePower)
	if a.baseline == nil {
		b := d.Statistics
		a.baseline = &b
	}
	a.fill(d)
}

// Fill sets the aggregates of d without recording it as a sample.
func (a *Daily) Fill(d *Data) {
	if a == nil || d == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fill(d)
}

func (a *Daily) fill(d *Data) {
	l := &d.LiveData
	l.HousePowerMin, l.HousePowerAvg, l.HousePowerMax = a.house.values()
	l.PVProductionMin, l.PVProductionAvg, l.PVProductionMax = a.pv.values()
	l.GridPowerMin, l.GridPowerAvg, l.GridPowerMax = a.grid.values()
	l.BatteryChargePowerMin, l.BatteryChargePowerAvg, l.BatteryChargePowerMax = a.battery.values()

	if a.baseline == nil {
		return
	}
	s := &d.Statistics
	s.BatteryChargedEnergyToday = s.BatteryChargedEnergy - a.baseline.BatteryChargedEnergy
	s.BatteryDischargedEnergyToday = s.BatteryDischargedEnergy - a.baseline.BatteryDischargedEnergy
	s.GridExportToday = s.GridExport - a.baseline.GridExport
	s.GridImportToday = s.GridImport - a.baseline.GridImport
	s.HouseConsumptionToday = s.HouseConsumption - a.baseline.HouseConsumption
	s.PVProductionToday = s.PVProduction - a.baseline.PVProduction
}

// Reset starts a new day.
func (a *Daily) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.house, a.pv, a.grid, a.battery = minAvgMax{}, minAvgMax{}, minAvgMax{}, minAvgMax{}
	a.baseline = nil
	logrus.Debug("daily senec statistics reset")
}

// Schedule registers a reset at every local midnight.
func (a *Daily) Schedule(c *cron.Cron) error {
	_, err := c.AddFunc("@midnight", a.Reset)
	return err
}
