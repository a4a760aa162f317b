package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/autogarden/thermctl/internal/climate"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and runs migrations
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunMigrations(conn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// --- Control config ---

// SaveControlConfig replaces the singleton control config record. Partial
// writes are not possible; the whole row goes at once.
func (db *DB) SaveControlConfig(cfg *climate.ControlConfig) error {
	scheduleJSON, err := json.Marshal(cfg.Schedule)
	if err != nil {
		return fmt.Errorf("failed to marshal schedule: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO control_config (id, cool_target, heat_target, cool_swing, heat_swing, schedule_enabled, schedule, temp_hold_seconds, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			cool_target = excluded.cool_target,
			heat_target = excluded.heat_target,
			cool_swing = excluded.cool_swing,
			heat_swing = excluded.heat_swing,
			schedule_enabled = excluded.schedule_enabled,
			schedule = excluded.schedule,
			temp_hold_seconds = excluded.temp_hold_seconds,
			updated_at = excluded.updated_at
	`, cfg.Targets.CoolTarget, cfg.Targets.HeatTarget, cfg.Targets.CoolSwing, cfg.Targets.HeatSwing,
		cfg.ScheduleEnabled, string(scheduleJSON), int(cfg.TempHoldDuration.Seconds()), time.Now())

	if err != nil {
		return fmt.Errorf("failed to save control config: %w", err)
	}

	return nil
}

// LoadControlConfig retrieves the persisted control config. Returns nil
// without error when nothing has been saved yet.
func (db *DB) LoadControlConfig() (*climate.ControlConfig, error) {
	row := db.conn.QueryRow(`
		SELECT cool_target, heat_target, cool_swing, heat_swing, schedule_enabled, schedule, temp_hold_seconds
		FROM control_config WHERE id = 1
	`)

	var cfg climate.ControlConfig
	var scheduleJSON string
	var holdSeconds int
	err := row.Scan(
		&cfg.Targets.CoolTarget, &cfg.Targets.HeatTarget,
		&cfg.Targets.CoolSwing, &cfg.Targets.HeatSwing,
		&cfg.ScheduleEnabled, &scheduleJSON, &holdSeconds,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get control config: %w", err)
	}

	if err := json.Unmarshal([]byte(scheduleJSON), &cfg.Schedule); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule: %w", err)
	}
	cfg.TempHoldDuration = time.Duration(holdSeconds) * time.Second

	return &cfg, nil
}

// --- Event Log ---

// LogEvent records an event in the log
func (db *DB) LogEvent(source EventSource, eventType EventType, message string, details interface{}) error {
	var detailsJSON []byte
	if details != nil {
		var err error
		detailsJSON, err = json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to marshal event details: %w", err)
		}
	}

	_, err := db.conn.Exec(
		"INSERT INTO event_log (timestamp, source, event_type, message, details) VALUES (?, ?, ?, ?, ?)",
		time.Now(), source, eventType, message, detailsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to log event: %w", err)
	}

	return nil
}

// GetEventLogs retrieves events with optional filtering
func (db *DB) GetEventLogs(filter EventLogFilter) ([]EventLog, error) {
	query := "SELECT id, timestamp, source, event_type, message, details FROM event_log WHERE 1=1"
	args := []interface{}{}

	if filter.Source != nil {
		query += " AND source = ?"
		args = append(args, *filter.Source)
	}
	if filter.EventType != nil {
		query += " AND event_type = ?"
		args = append(args, *filter.EventType)
	}
	if filter.Since != nil {
		query += " AND timestamp >= ?"
		args = append(args, *filter.Since)
	}
	if filter.Until != nil {
		query += " AND timestamp <= ?"
		args = append(args, *filter.Until)
	}

	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query event logs: %w", err)
	}
	defer rows.Close()

	var logs []EventLog
	for rows.Next() {
		var log EventLog
		var details sql.NullString
		err := rows.Scan(&log.ID, &log.Timestamp, &log.Source, &log.EventType, &log.Message, &details)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event log: %w", err)
		}
		if details.Valid && details.String != "" {
			log.Details = json.RawMessage(details.String)
		}
		logs = append(logs, log)
	}

	return logs, nil
}

// PruneEventLogs removes old event logs
func (db *DB) PruneEventLogs(olderThan time.Time) (int64, error) {
	result, err := db.conn.Exec("DELETE FROM event_log WHERE timestamp < ?", olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to prune event logs: %w", err)
	}

	return result.RowsAffected()
}
