// Package database opens the application store and keeps its schema
// current. The app runs against a local SQLite file by default and
// against Postgres when DATABASE_URL is set, so every query in the repo
// is written with ? placeholders and passed through Rebind.
package database

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"

	_ "github.com/lib/pq"        // Postgres driver
	_ "modernc.org/sqlite"       // SQLite driver (pure Go)
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DB wraps sql.DB with the driver name so callers can rebind
// placeholders and pick engine-specific DDL.
type DB struct {
	*sql.DB
	Driver string
}

// Open connects to Postgres when databaseURL is non-empty, otherwise to
// the SQLite file at sqlitePath.
func Open(databaseURL, sqlitePath string) (*DB, error) {
	if databaseURL != "" {
		db, err := sql.Open("postgres", databaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return &DB{DB: db, Driver: DriverPostgres}, nil
	}
	if sqlitePath == "" {
		sqlitePath = "app.db"
	}
	db, err := sql.Open("sqlite", sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)
	return &DB{DB: db, Driver: DriverSQLite}, nil
}

// Rebind rewrites ? placeholders to $1..$n for Postgres. SQLite queries
// pass through untouched.
func Rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// Rebind rewrites placeholders for this connection's engine.
func (d *DB) Rebind(query string) string {
	return Rebind(d.Driver, query)
}

// EnsureSchema creates every table the app relies on. Idempotent; called
// once at startup.
func (d *DB) EnsureSchema() error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	timestamptz := "TIMESTAMP"
	if d.Driver == DriverPostgres {
		serial = "SERIAL PRIMARY KEY"
		timestamptz = "TIMESTAMP WITH TIME ZONE"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS id_sequences (
			name TEXT PRIMARY KEY,
			last_value INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS issues (
			id TEXT PRIMARY KEY,
			priority TEXT NOT NULL,
			date_logged %[1]s NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_updated %[1]s NOT NULL DEFAULT CURRENT_TIMESTAMP,
			area TEXT,
			equipment_location TEXT,
			description TEXT NOT NULL,
			notes TEXT,
			status TEXT NOT NULL,
			target_date DATE,
			assigned_to TEXT
		)`, timestamptz),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS games (
			id %s,
			name TEXT NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('Up', 'Down')),
			down_reason TEXT,
			updated_at %s DEFAULT CURRENT_TIMESTAMP
		)`, serial, timestamptz),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS pm_logs (
			id %s,
			game_name TEXT NOT NULL,
			performed_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
			performed_by TEXT,
			notes TEXT
		)`, serial, timestamptz),
		`CREATE TABLE IF NOT EXISTS tpt_reports (
			id ` + serial + `,
			created_at TEXT NOT NULL,
			avg_all REAL,
			below_count INTEGER,
			above_count INTEGER,
			json_path TEXT
		)`,
	}

	for _, stmt := range stmts {
		if _, err := d.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	log.Printf("[database] schema ready (%s)", d.Driver)
	return nil
}

// NextPaddedID atomically bumps the named sequence and returns the new
// value as a zero-padded, prefixed string ("IS-001", "IS-002", ...).
func (d *DB) NextPaddedID(entity, prefix string, width int) (string, error) {
	tx, err := d.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var next int
	if d.Driver == DriverPostgres {
		if _, err := tx.Exec(d.Rebind(
			`INSERT INTO id_sequences (name, last_value) VALUES (?, 0) ON CONFLICT (name) DO NOTHING`), entity); err != nil {
			return "", err
		}
		if err := tx.QueryRow(d.Rebind(
			`UPDATE id_sequences SET last_value = last_value + 1 WHERE name = ? RETURNING last_value`), entity).Scan(&next); err != nil {
			return "", err
		}
	} else {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO id_sequences (name, last_value) VALUES (?, 0)`, entity); err != nil {
			return "", err
		}
		var current int
		if err := tx.QueryRow(`SELECT last_value FROM id_sequences WHERE name = ?`, entity).Scan(&current); err != nil {
			return "", err
		}
		next = current + 1
		if _, err := tx.Exec(`UPDATE id_sequences SET last_value = ? WHERE name = ?`, next, entity); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%0*d", prefix, width, next), nil
}

// UpsertSetting writes a key/value pair into the settings table.
func (d *DB) UpsertSetting(key, value string) error {
	_, err := d.Exec(d.Rebind(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value`),
		key, value)
	return err
}

// Settings returns the whole settings table as a map.
func (d *DB) Settings() (map[string]string, error) {
	rows, err := d.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k string
		var v sql.NullString
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v.String
	}
	return out, rows.Err()
}
