package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solarwallbox/solarwallbox/pkg/goecharger"
	"github.com/solarwallbox/solarwallbox/pkg/senec"
)

func TestOpenCreatesSchema(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, v)
}

func TestInsertAndLatest(t *testing.T) {
	ctx := context.Background()
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		d := &senec.Data{
			General:    senec.General{CurrentState: 14},
			LiveData:   senec.LiveData{HousePower: float64(100 * (i + 1)), BatteryPercentage: 50},
			Statistics: senec.Statistics{PVProduction: 1000 + float64(i)},
		}
		require.NoError(t, s.InsertSenec(ctx, base.Add(time.Duration(i)*time.Minute), d))
	}

	ms, err := s.Latest(ctx, 2)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, 300.0, ms[0].HousePower)
	assert.Equal(t, 1002.0, ms[0].PVProductionTotal)
	assert.Equal(t, 14, ms[0].CurrentState)
	assert.Equal(t, base.Add(2*time.Minute).Unix(), ms[0].Timestamp.Unix())
	assert.Equal(t, 200.0, ms[1].HousePower)

	wb := &goecharger.Data{Charging: goecharger.Charging{Status: "charging", CurrentPower: 4.2, AllowCharging: true}}
	assert.NoError(t, s.InsertWallbox(ctx, base, "Garage", wb))
}

func createV1(t *testing.T, path, version string) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	for _, stmt := range schemaSenec {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	_, err = db.Exec(`INSERT INTO db_info VALUES (?)`, version)
	require.NoError(t, err)
}

func TestMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "senec.db")
	createV1(t, path, VersionSenec)

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, v)

	wb := &goecharger.Data{}
	assert.NoError(t, s.InsertWallbox(context.Background(), time.Now(), "Parkplatz", wb))
}

func TestOpenUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "senec.db")
	createV1(t, path, "9.9.9")

	_, err := Open(path)
	assert.Error(t, err)
}
