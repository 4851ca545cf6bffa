// Package dashboard aggregates the SENEC appliance and the wallboxes into
// one snapshot and drives automatic (sun) charging.
package dashboard

import (
	"context"
	"strconv"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/solarwallbox/solarwallbox/pkg/battery"
	"github.com/solarwallbox/solarwallbox/pkg/config"
	"github.com/solarwallbox/solarwallbox/pkg/events"
	"github.com/solarwallbox/solarwallbox/pkg/excess"
	"github.com/solarwallbox/solarwallbox/pkg/goecharger"
	"github.com/solarwallbox/solarwallbox/pkg/metrics"
	"github.com/solarwallbox/solarwallbox/pkg/senec"
	"github.com/solarwallbox/solarwallbox/pkg/sink"
)

// ErrUnknownWallbox is returned for a device index without a wallbox.
var ErrUnknownWallbox = pkgerrors.New("unknown wallbox")

type SenecSource interface {
	Fetch(ctx context.Context) (*senec.Data, error)
}

type Wallbox interface {
	Fetch(ctx context.Context) (*goecharger.Data, error)
	Set(ctx context.Context, s goecharger.Setting, value string) (*goecharger.Data, error)
}

// Recorder persists readings.
type Recorder interface {
	InsertSenec(ctx context.Context, ts time.Time, d *senec.Data) error
	InsertWallbox(ctx context.Context, ts time.Time, name string, d *goecharger.Data) error
}

type Options struct {
	Config    config.Config
	Senec     SenecSource
	Wallboxes []Wallbox

	// Optional.
	Store   Recorder
	Sink    sink.Sink
	Hub     *events.EventHub
	Metrics *metrics.Metrics
	// Daily aggregates the SENEC readings of each poll.
	Daily *senec.Daily
}

// Runtime polls all devices in the background and keeps the latest
// snapshot.
type Runtime struct {
	conf      config.Config
	senec     SenecSource
	wallboxes []Wallbox
	store     Recorder
	sink      sink.Sink
	hub       *events.EventHub
	metrics   *metrics.Metrics
	daily     *senec.Daily
	polls     *PollLog
	now       func() time.Time

	mu       sync.RWMutex
	house    *senec.Data
	boxes    []*goecharger.Data
	snapshot Snapshot
}

func New(o Options) *Runtime {
	r := &Runtime{
		conf:      o.Config,
		senec:     o.Senec,
		wallboxes: o.Wallboxes,
		store:     o.Store,
		sink:      o.Sink,
		hub:       o.Hub,
		metrics:   o.Metrics,
		daily:     o.Daily,
		polls:     NewPollLog(60, o.Config.PollInterval()),
		now:       time.Now,
		boxes:     make([]*goecharger.Data, len(o.Wallboxes)),
	}
	r.snapshot = r.build()
	return r
}

// Run polls until ctx is done.
func (r *Runtime) Run(ctx context.Context) error {
	logrus.Debug("dashboard loop starts")
	for {
		r.Poll(ctx)

		interval := r.conf.PollInterval()
		r.polls.SetInterval(interval)

		select {
		case <-ctx.Done():
			logrus.Debug("dashboard loop stopped")
			return nil
		case <-time.After(interval):
		}
	}
}

// Hub returns the hub snapshots and changes are published to. It may be nil.
func (r *Runtime) Hub() *events.EventHub {
	return r.hub
}

// Metrics returns the metrics the runtime records into. It may be nil.
func (r *Runtime) Metrics() *metrics.Metrics {
	return r.metrics
}

// Polls returns the log of completed polls.
func (r *Runtime) Polls() *PollLog {
	return r.polls
}

func (r *Runtime) wallboxName(i int) string {
	wbs := r.conf.Wallboxes()
	if i < len(wbs) && wbs[i].Name != "" {
		return wbs[i].Name
	}
	return "wallbox" + strconv.Itoa(i+1)
}

func (r *Runtime) wallboxRole(i int) string {
	wbs := r.conf.Wallboxes()
	if i < len(wbs) {
		return wbs[i].Role
	}
	return ""
}

// classify sets the battery state of a fresh reading using the configured
// charging policy.
func (r *Runtime) classify(d *senec.Data) {
	l := d.LiveData
	state := battery.NewClassifier(battery.ChargingPolicy(r.conf.ChargingPolicy())).
		Classify(l.BatteryChargePower, l.BatteryPercentage, d.BatteryInformation.DesignCapacity)
	d.BatteryState = &state
}

func (r *Runtime) fetchFailed(device string, err error) {
	logrus.WithField("device", device).Warnf("failed to fetch: %v", err)
	r.metrics.FetchError(device)
}

// Poll fetches all devices concurrently, updates the snapshot and
// applies automatic charging. Devices that fail keep their previous data.
func (r *Runtime) Poll(ctx context.Context) Snapshot {
	start := r.now()
	var house *senec.Data
	boxes := make([]*goecharger.Data, len(r.wallboxes))
	// failed[0] is the SENEC, failed[i+1] wallbox i.
	failed := make([]string, len(r.wallboxes)+1)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := r.senec.Fetch(gctx)
		if err != nil {
			r.fetchFailed("senec", err)
			failed[0] = "senec"
			return nil
		}
		r.daily.Observe(d)
		r.classify(d)
		house = d
		return nil
	})
	for i, wb := range r.wallboxes {
		i, wb := i, wb
		g.Go(func() error {
			d, err := wb.Fetch(gctx)
			if err != nil {
				r.fetchFailed(r.wallboxName(i), err)
				failed[i+1] = r.wallboxName(i)
				return nil
			}
			boxes[i] = d
			return nil
		})
	}
	_ = g.Wait()

	ts := r.now()

	r.mu.Lock()
	if house != nil {
		r.house = house
	}
	for i, d := range boxes {
		if d != nil {
			r.boxes[i] = d
		}
	}
	snap := r.build()
	r.snapshot = snap
	r.mu.Unlock()

	r.control(ctx, snap)
	r.persist(ctx, ts, house, boxes)

	snap = r.Snapshot()
	r.publish(ctx, snap)
	rec := PollRecord{At: ts, Took: r.now().Sub(start)}
	for _, name := range failed {
		if name != "" {
			rec.Failed = append(rec.Failed, name)
		}
	}
	r.polls.Add(rec)
	r.metrics.PollDone()

	return snap
}

// build assembles a snapshot from the cached readings. Callers hold r.mu.
func (r *Runtime) build() Snapshot {
	s := Snapshot{
		House:     r.house,
		Timestamp: r.now().UnixMilli(),
	}
	if len(r.boxes) > 0 {
		s.Wallbox1 = r.boxes[0]
	}
	if len(r.boxes) > 1 {
		s.Wallbox2 = r.boxes[1]
	}
	for _, m := range config.ChargingModes {
		s.setMode(m, r.conf.ChargingMode(m))
	}

	if r.house != nil {
		l := r.house.LiveData
		s.ExcessPower = excess.FromSenec(r.house).ExcessPower

		s.HousePowerWithoutWallboxes = l.HousePower
		for _, b := range r.boxes {
			s.HousePowerWithoutWallboxes -= b.CurrentPowerW()
		}

		s.BatteryState = r.house.BatteryState
	}
	return s
}

// control allows or denies charging per wallbox. Only changes are sent.
func (r *Runtime) control(ctx context.Context, snap Snapshot) {
	flags := Flags{
		Automatic: snap.AutomaticCharging,
		Garage:    snap.SunChargingGarage,
		Parking:   snap.SunChargingParking,
		Force:     snap.ForceCharging,
	}
	if !flags.Force && !flags.Automatic {
		return
	}
	if snap.House == nil && !flags.Force {
		return
	}

	minCharge := r.conf.MinChargePowerW()
	for i := range r.wallboxes {
		r.mu.RLock()
		d := r.boxes[i]
		r.mu.RUnlock()

		dec := Decide(flags, r.wallboxRole(i), snap.ExcessPower, minCharge, d)
		if !dec.Managed || d.Charging.AllowCharging == dec.Allow {
			continue
		}

		value := "0"
		if dec.Allow {
			value = "1"
		}
		logrus.WithFields(logrus.Fields{
			"wallbox":     r.wallboxName(i),
			"excessPower": snap.ExcessPower,
			"allow":       dec.Allow,
		}).Info(dec.Reason)

		if err := r.setWallbox(ctx, i, goecharger.SettingAllowCharging, value, dec.Reason); err != nil {
			logrus.WithField("wallbox", r.wallboxName(i)).Errorf("automatic charging failed: %v", err)
		}
	}
}

func (r *Runtime) persist(ctx context.Context, ts time.Time, house *senec.Data, boxes []*goecharger.Data) {
	if r.store == nil {
		return
	}
	if house != nil {
		if err := r.store.InsertSenec(ctx, ts, house); err != nil {
			logrus.Errorf("failed to persist senec reading: %v", err)
		}
	}
	for i, d := range boxes {
		if d == nil {
			continue
		}
		if err := r.store.InsertWallbox(ctx, ts, r.wallboxName(i), d); err != nil {
			logrus.Errorf("failed to persist wallbox reading: %v", err)
		}
	}
}

func (r *Runtime) publish(ctx context.Context, snap Snapshot) {
	r.hub.Publish(events.DashboardSnapshot, snap)

	r.metrics.ObserveSenec(snap.House)
	r.metrics.ObserveExcess(snap.ExcessPower)
	r.mu.RLock()
	for i, d := range r.boxes {
		r.metrics.ObserveWallbox(r.wallboxName(i), d)
	}
	r.mu.RUnlock()

	if r.sink != nil {
		if err := sink.PublishJSON(ctx, r.sink, "dashboard", snap); err != nil {
			logrus.Debugf("failed to publish snapshot: %v", err)
		}
	}
}

// Snapshot returns the latest snapshot.
func (r *Runtime) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Senec reads the appliance directly.
func (r *Runtime) Senec(ctx context.Context) (*senec.Data, error) {
	d, err := r.senec.Fetch(ctx)
	if err != nil {
		r.fetchFailed("senec", err)
		return nil, err
	}
	r.daily.Fill(d)
	r.classify(d)
	r.mu.Lock()
	r.house = d
	r.snapshot = r.build()
	r.mu.Unlock()
	return d, nil
}

// Excess reads the appliance and derives the excess power.
func (r *Runtime) Excess(ctx context.Context) (excess.Data, error) {
	d, err := r.Senec(ctx)
	if err != nil {
		return excess.Data{}, err
	}
	return excess.FromSenec(d), nil
}

// Wallbox reads the wallbox at index device directly.
func (r *Runtime) Wallbox(ctx context.Context, device int) (*goecharger.Data, error) {
	if device < 0 || device >= len(r.wallboxes) {
		return nil, pkgerrors.Wrapf(ErrUnknownWallbox, "device %d", device)
	}
	d, err := r.wallboxes[device].Fetch(ctx)
	if err != nil {
		r.fetchFailed(r.wallboxName(device), err)
		return nil, err
	}
	r.mu.Lock()
	r.boxes[device] = d
	r.snapshot = r.build()
	r.mu.Unlock()
	return d, nil
}

// WallboxCount returns the number of configured wallboxes.
func (r *Runtime) WallboxCount() int {
	return len(r.wallboxes)
}

// SetWallbox changes a setting of the wallbox at index device.
func (r *Runtime) SetWallbox(ctx context.Context, device int, setting, value string) error {
	return r.setWallbox(ctx, device, goecharger.Setting(setting), value, "")
}

func (r *Runtime) setWallbox(ctx context.Context, device int, s goecharger.Setting, value, reason string) error {
	if device < 0 || device >= len(r.wallboxes) {
		return pkgerrors.Wrapf(ErrUnknownWallbox, "device %d", device)
	}

	d, err := r.wallboxes[device].Set(ctx, s, value)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.boxes[device] = d
	r.snapshot = r.build()
	r.mu.Unlock()

	r.hub.Publish(events.WallboxChanged, events.WallboxChangedEvent{
		Device:  device,
		Name:    r.wallboxName(device),
		Setting: string(s),
		Value:   value,
		Reason:  reason,
		Ts:      r.now().Unix(),
	})
	return nil
}

// SetChargingMode switches an automatic charging flag and persists the
// configuration. mode is parsed with config.ParseChargingMode.
func (r *Runtime) SetChargingMode(ctx context.Context, mode string, enabled bool) error {
	m, err := config.ParseChargingMode(mode)
	if err != nil {
		return err
	}

	r.conf.SetChargingMode(m, enabled)
	if err := r.conf.Save(); err != nil {
		logrus.Warnf("failed to persist charging mode: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"mode":    m.Key(),
		"enabled": enabled,
	}).Info("charging mode changed")

	r.mu.Lock()
	r.snapshot.setMode(m, enabled)
	snap := r.snapshot
	r.mu.Unlock()

	r.hub.Publish(events.ChargingModeChanged, events.ChargingModeChangedEvent{
		Mode:    m.Key(),
		Enabled: enabled,
		Ts:      r.now().Unix(),
	})

	r.control(ctx, snap)
	return nil
}
