package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autogarden/thermctl/internal/climate"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadControlConfigEmpty(t *testing.T) {
	db := openTestDB(t)

	cfg, err := db.LoadControlConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg, "empty database yields nil config, not an error")
}

func TestControlConfigRoundTrip(t *testing.T) {
	db := openTestDB(t)

	cfg := climate.DefaultControlConfig()
	cfg.Targets.CoolTarget = 75.5
	cfg.ScheduleEnabled = true
	cfg.TempHoldDuration = 90 * time.Minute
	require.NoError(t, db.SaveControlConfig(&cfg))

	loaded, err := db.LoadControlConfig()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, cfg.Targets, loaded.Targets)
	assert.Equal(t, cfg.ScheduleEnabled, loaded.ScheduleEnabled)
	assert.Equal(t, cfg.Schedule, loaded.Schedule)
	assert.Equal(t, 90*time.Minute, loaded.TempHoldDuration)
}

func TestControlConfigReplacedWhole(t *testing.T) {
	db := openTestDB(t)

	first := climate.DefaultControlConfig()
	require.NoError(t, db.SaveControlConfig(&first))

	second := climate.DefaultControlConfig()
	second.Targets.CoolTarget = 72
	second.Targets.HeatTarget = 64
	second.Schedule[0].Name = "Dawn"
	require.NoError(t, db.SaveControlConfig(&second))

	loaded, err := db.LoadControlConfig()
	require.NoError(t, err)
	assert.Equal(t, 72.0, loaded.Targets.CoolTarget)
	assert.Equal(t, "Dawn", loaded.Schedule[0].Name)

	// Still exactly one row.
	var count int
	require.NoError(t, db.conn.QueryRow("SELECT COUNT(*) FROM control_config").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestEventLogInsertAndQuery(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.LogEvent(EventSourceController, EventTypeActuator, "cooling turned ON", map[string]interface{}{"on": true}))
	require.NoError(t, db.LogEvent(EventSourceSensor, EventTypeAlert, "high temperature", nil))
	require.NoError(t, db.LogEvent(EventSourceUser, EventTypeModeChange, "hold requested", nil))

	logs, err := db.GetEventLogs(EventLogFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 3)

	source := EventSourceSensor
	logs, err = db.GetEventLogs(EventLogFilter{Source: &source})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "high temperature", logs[0].Message)
	assert.Empty(t, logs[0].Details)

	eventType := EventTypeActuator
	logs, err = db.GetEventLogs(EventLogFilter{EventType: &eventType})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.JSONEq(t, `{"on": true}`, string(logs[0].Details))
}

func TestEventLogLimitOffset(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 10; i++ {
		require.NoError(t, db.LogEvent(EventSourceSystem, EventTypeInfo, "tick", nil))
	}

	logs, err := db.GetEventLogs(EventLogFilter{Limit: 4})
	require.NoError(t, err)
	assert.Len(t, logs, 4)

	logs, err = db.GetEventLogs(EventLogFilter{Limit: 4, Offset: 8})
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestPruneEventLogs(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.LogEvent(EventSourceSystem, EventTypeInfo, "old enough", nil))

	pruned, err := db.PruneEventLogs(time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	pruned, err = db.PruneEventLogs(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, pruned)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := openTestDB(t)

	version, err := GetMigrationVersion(db.conn)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	// Running again is a no-op, not an error.
	require.NoError(t, RunMigrations(db.conn))
}
