// Package store persists SENEC and wallbox measurements in a sqlite file.
package store

import (
	"context"
	"database/sql"
	"strconv"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/solarwallbox/solarwallbox/pkg/goecharger"
	"github.com/solarwallbox/solarwallbox/pkg/senec"
)

// Schema versions in the order they were introduced.
const (
	VersionSenec   = "0.0.1"
	VersionWallbox = "0.0.2"

	CurrentVersion = VersionWallbox
)

var schemaSenec = []string{
	`CREATE TABLE IF NOT EXISTS db_info (version TEXT)`,
	`CREATE TABLE IF NOT EXISTS senec (
		ts TIMESTAMP,
		stats_current_state TEXT,
		stats_battery_charged_energy FLOAT,
		stats_battery_discharged_energy FLOAT,
		stats_grid_export FLOAT,
		stats_grid_import FLOAT,
		stats_house_consumption FLOAT,
		stats_pv_production FLOAT,
		live_house_power FLOAT,
		live_pv_production FLOAT,
		live_grid_power FLOAT,
		live_battery_charge_power FLOAT,
		live_battery_charge_current FLOAT,
		live_battery_voltage FLOAT,
		live_battery_percentage FLOAT
	)`,
}

var schemaWallbox = []string{
	`CREATE TABLE IF NOT EXISTS wallbox (
		ts TIMESTAMP,
		name TEXT,
		status TEXT,
		current_power FLOAT,
		energy FLOAT,
		allow_charging INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_wallbox_ts ON wallbox(ts)`,
}

// migrations upgrades a database from the key version to the next one.
var migrations = map[string]struct {
	to    string
	stmts []string
}{
	VersionSenec: {to: VersionWallbox, stmts: schemaWallbox},
}

// Measurement is one row of the senec table.
type Measurement struct {
	Timestamp time.Time `json:"timestamp"`

	CurrentState            int     `json:"current_state"`
	BatteryChargedEnergy    float64 `json:"battery_charged_energy"`
	BatteryDischargedEnergy float64 `json:"battery_discharged_energy"`
	GridExport              float64 `json:"grid_export"`
	GridImport              float64 `json:"grid_import"`
	HouseConsumption        float64 `json:"house_consumption"`
	PVProductionTotal       float64 `json:"pv_production_total"`

	HousePower           float64 `json:"house_power"`
	PVProduction         float64 `json:"pv_production"`
	GridPower            float64 `json:"grid_power"`
	BatteryChargePower   float64 `json:"battery_charge_power"`
	BatteryChargeCurrent float64 `json:"battery_charge_current"`
	BatteryVoltage       float64 `json:"battery_voltage"`
	BatteryPercentage    float64 `json:"battery_percentage"`
}

// Store provides sqlite persistence for measurements.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the database at path. Use ":memory:" for an
// in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open database %s", path)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, pkgerrors.Wrapf(err, "failed to migrate database %s", path)
	}
	return s, nil
}

// Version returns the schema version recorded in db_info.
func (s *Store) Version(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version(ctx)
}

func (s *Store) version(ctx context.Context) (string, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'db_info'`).Scan(&exists)
	if err != nil {
		return "", err
	}
	if exists == 0 {
		return "", nil
	}

	var v string
	err = s.db.QueryRowContext(ctx, `SELECT version FROM db_info`).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

func (s *Store) migrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.version(ctx)
	if err != nil {
		return err
	}

	if v == "" {
		logrus.Debug("empty database, creating schema")
		stmts := append(append([]string{}, schemaSenec...), schemaWallbox...)
		stmts = append(stmts, `INSERT INTO db_info VALUES ('`+CurrentVersion+`')`)
		return s.exec(ctx, stmts)
	}

	for v != CurrentVersion {
		m, ok := migrations[v]
		if !ok {
			return pkgerrors.Errorf("unsupported database version %s (expected %s)", v, CurrentVersion)
		}
		logrus.WithFields(logrus.Fields{
			"from": v,
			"to":   m.to,
		}).Info("migrating database")

		stmts := append(append([]string{}, m.stmts...), `UPDATE db_info SET version = '`+m.to+`'`)
		if err := s.exec(ctx, stmts); err != nil {
			return err
		}
		v = m.to
	}
	return nil
}

func (s *Store) exec(ctx context.Context, stmts []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertSenec records a SENEC reading taken at ts.
func (s *Store) InsertSenec(ctx context.Context, ts time.Time, d *senec.Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, l := d.Statistics, d.LiveData
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO senec VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.UTC(), strconv.Itoa(d.General.CurrentState),
		st.BatteryChargedEnergy, st.BatteryDischargedEnergy, st.GridExport, st.GridImport,
		st.HouseConsumption, st.PVProduction,
		l.HousePower, l.PVProduction, l.GridPower, l.BatteryChargePower,
		l.BatteryChargeCurrent, l.BatteryVoltage, l.BatteryPercentage,
	)
	return pkgerrors.Wrap(err, "failed to insert senec measurement")
}

// InsertWallbox records the state of a named wallbox at ts.
func (s *Store) InsertWallbox(ctx context.Context, ts time.Time, name string, d *goecharger.Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wallbox VALUES (?, ?, ?, ?, ?, ?)`,
		ts.UTC(), name, d.Charging.Status, d.Charging.CurrentPower, d.Charging.Energy, d.Charging.AllowCharging,
	)
	return pkgerrors.Wrap(err, "failed to insert wallbox measurement")
}

// Latest returns up to n SENEC measurements, newest first.
func (s *Store) Latest(ctx context.Context, n int) ([]Measurement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		n = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, stats_current_state,
		       stats_battery_charged_energy, stats_battery_discharged_energy,
		       stats_grid_export, stats_grid_import, stats_house_consumption, stats_pv_production,
		       live_house_power, live_pv_production, live_grid_power, live_battery_charge_power,
		       live_battery_charge_current, live_battery_voltage, live_battery_percentage
		FROM senec
		ORDER BY ts DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to query senec measurements")
	}
	defer rows.Close()

	var ms []Measurement
	for rows.Next() {
		var m Measurement
		var state string
		if err := rows.Scan(
			&m.Timestamp, &state,
			&m.BatteryChargedEnergy, &m.BatteryDischargedEnergy,
			&m.GridExport, &m.GridImport, &m.HouseConsumption, &m.PVProductionTotal,
			&m.HousePower, &m.PVProduction, &m.GridPower, &m.BatteryChargePower,
			&m.BatteryChargeCurrent, &m.BatteryVoltage, &m.BatteryPercentage,
		); err != nil {
			return nil, err
		}
		m.CurrentState, _ = strconv.Atoi(state)
		ms = append(ms, m)
	}
	return ms, rows.Err()
}
