package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SchemaVersion is recorded in schema_meta when the tables are created.
const SchemaVersion = "1"

// Keys of the schema_meta table.
const (
	metaKeySchemaVersion = "schema_version"
	metaKeySeeded        = "seeded"
	metaKeyMemberLock    = "member_number_lock"
)

// timeFormat is fixed width so that timestamps stored as text sort in time
// order under every database.
const timeFormat = "2006-01-02T15:04:05.000000Z"

// The tables, in the order they are created.  They are dropped in the
// reverse order.
var tableNames = []string{
	"schema_meta",
	"members",
	"friends",
	"teams",
	"players",
	"events",
	"administrators",
	"config_entries",
}

// The data tables emptied by ClearAllCollections.
var dataTableNames = []string{
	"members",
	"friends",
	"teams",
	"players",
	"events",
	"administrators",
	"config_entries",
}

// The table definitions.  The first %s is the id column, the second (if
// any) the floating point type.  Uniqueness is declared here so that the
// database enforces it.  NULL values don't clash, so optional unique
// fields are stored as NULL when empty.
var tableDefinitions = map[string]string{
	"schema_meta": `
		CREATE TABLE IF NOT EXISTS schema_meta (
			%s,
			meta_key VARCHAR(64) NOT NULL,
			meta_value VARCHAR(255) NOT NULL,
			UNIQUE (meta_key)
		)`,

	"members": `
		CREATE TABLE IF NOT EXISTS members (
			%s,
			uuid VARCHAR(36) NOT NULL,
			full_name VARCHAR(100) NOT NULL,
			surname VARCHAR(100) NOT NULL,
			phone VARCHAR(30) NOT NULL,
			email VARCHAR(254) NOT NULL DEFAULT '',
			national_id VARCHAR(30),
			birth_date VARCHAR(10) NOT NULL DEFAULT '',
			age INTEGER NOT NULL DEFAULT 0,
			membership_fee %s NOT NULL DEFAULT 0,
			member_number VARCHAR(20) NOT NULL,
			member_seq INTEGER NOT NULL,
			status VARCHAR(20) NOT NULL,
			registered_at VARCHAR(30) NOT NULL,
			validated_at VARCHAR(30) NOT NULL DEFAULT '',
			validated_by INTEGER NOT NULL DEFAULT 0,
			paid SMALLINT NOT NULL DEFAULT 0,
			UNIQUE (uuid),
			UNIQUE (national_id),
			UNIQUE (member_number)
		)`,

	"friends": `
		CREATE TABLE IF NOT EXISTS friends (
			%s,
			uuid VARCHAR(36) NOT NULL,
			full_name VARCHAR(100) NOT NULL,
			surname VARCHAR(100) NOT NULL,
			phone VARCHAR(30) NOT NULL,
			email VARCHAR(254) NOT NULL,
			national_id VARCHAR(30),
			status VARCHAR(20) NOT NULL,
			registered_at VARCHAR(30) NOT NULL,
			UNIQUE (uuid),
			UNIQUE (national_id)
		)`,

	"teams": `
		CREATE TABLE IF NOT EXISTS teams (
			%s,
			uuid VARCHAR(36) NOT NULL,
			name VARCHAR(100) NOT NULL,
			category VARCHAR(30) NOT NULL,
			description VARCHAR(255) NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL,
			created_at VARCHAR(30) NOT NULL,
			UNIQUE (uuid),
			UNIQUE (name)
		)`,

	"players": `
		CREATE TABLE IF NOT EXISTS players (
			%s,
			uuid VARCHAR(36) NOT NULL,
			full_name VARCHAR(100) NOT NULL,
			surname VARCHAR(100) NOT NULL,
			national_id VARCHAR(30) NOT NULL,
			phone VARCHAR(30) NOT NULL,
			birth_date VARCHAR(10) NOT NULL,
			age INTEGER NOT NULL DEFAULT 0,
			category VARCHAR(30),
			jersey_number INTEGER,
			status VARCHAR(20) NOT NULL,
			registered_at VARCHAR(30) NOT NULL,
			UNIQUE (uuid),
			UNIQUE (national_id),
			UNIQUE (jersey_number, category)
		)`,

	"events": `
		CREATE TABLE IF NOT EXISTS events (
			%s,
			uuid VARCHAR(36) NOT NULL,
			kind VARCHAR(10) NOT NULL,
			title VARCHAR(150) NOT NULL DEFAULT '',
			home_team VARCHAR(100) NOT NULL DEFAULT '',
			away_team VARCHAR(100) NOT NULL DEFAULT '',
			event_date VARCHAR(10) NOT NULL,
			event_time VARCHAR(5) NOT NULL DEFAULT '',
			venue VARCHAR(150) NOT NULL DEFAULT '',
			category VARCHAR(30) NOT NULL DEFAULT '',
			description VARCHAR(255) NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL,
			created_at VARCHAR(30) NOT NULL,
			UNIQUE (uuid)
		)`,

	"administrators": `
		CREATE TABLE IF NOT EXISTS administrators (
			%s,
			uuid VARCHAR(36) NOT NULL,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(254) NOT NULL,
			password_hash VARCHAR(100) NOT NULL,
			role VARCHAR(20) NOT NULL,
			status VARCHAR(20) NOT NULL,
			created_at VARCHAR(30) NOT NULL,
			UNIQUE (uuid),
			UNIQUE (email)
		)`,

	"config_entries": `
		CREATE TABLE IF NOT EXISTS config_entries (
			%s,
			entry_key VARCHAR(100) NOT NULL,
			entry_value VARCHAR(1000) NOT NULL,
			description VARCHAR(255) NOT NULL DEFAULT '',
			updated_at VARCHAR(30) NOT NULL,
			UNIQUE (entry_key)
		)`,
}

// idColumn returns the auto-incrementing primary key definition for the
// database type.
func idColumn(dbType string) string {
	switch dbType {
	case TypePostgres:
		return "id BIGSERIAL PRIMARY KEY"
	case TypeMySQL:
		return "id BIGINT AUTO_INCREMENT PRIMARY KEY"
	default:
		return "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}
}

func floatType(dbType string) string {
	switch dbType {
	case TypePostgres:
		return "DOUBLE PRECISION"
	case TypeMySQL:
		return "DOUBLE"
	default:
		return "REAL"
	}
}

// createTableSQL produces the create statement for the named table.
func createTableSQL(dbType, table string) string {
	definition := tableDefinitions[table]
	if strings.Count(definition, "%s") == 2 {
		return fmt.Sprintf(definition, idColumn(dbType), floatType(dbType))
	}
	return fmt.Sprintf(definition, idColumn(dbType))
}

// createSchema creates any missing tables and the schema_meta rows.
func (db *Database) createSchema(tx *Tx) error {

	for _, table := range tableNames {
		_, err := tx.Exec(createTableSQL(tx.dbType, table))
		if err != nil {
			return fmt.Errorf("creating table %s: %w", table, err)
		}
	}

	versionError := ensureMeta(tx, metaKeySchemaVersion, SchemaVersion)
	if versionError != nil {
		return versionError
	}

	// AddMember updates this row to serialise the allocation of member
	// numbers.
	return ensureMeta(tx, metaKeyMemberLock, "0")
}

// ensureMeta creates the schema_meta row with the given key unless it
// already exists.
func ensureMeta(tx *Tx, key, value string) error {

	_, found, err := getMeta(tx, key)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	const q = `INSERT INTO schema_meta (meta_key, meta_value) VALUES ($1, $2)`
	_, createError := tx.CreateRow(q, key, value)
	return createError
}

// getMeta gets the value of the schema_meta row with the given key.
func getMeta(tx *Tx, key string) (string, bool, error) {

	const q = `SELECT meta_value FROM schema_meta WHERE meta_key = $1`

	var value string
	err := tx.QueryRow(q, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}

	return value, true, nil
}

// DropSchema drops all of the tables, deleting all data, and marks the store
// as not ready.  Open creates the schema again.
func (db *Database) DropSchema(ctx context.Context) error {

	if db.Connection == nil {
		return ErrNotInitialized
	}

	db.ready.Store(false)

	return db.runTx(ctx, func(tx *Tx) error {
		for i := len(tableNames) - 1; i >= 0; i-- {
			_, err := tx.Exec("DROP TABLE IF EXISTS " + tableNames[i])
			if err != nil {
				return fmt.Errorf("dropping table %s: %w", tableNames[i], err)
			}
		}
		return nil
	})
}

// Reopen creates the schema and seeds it on an existing connection, for
// example after DropSchema.
func (db *Database) Reopen(ctx context.Context) error {

	if db.Connection == nil {
		return ErrNotInitialized
	}

	schemaError := db.runTx(ctx, db.createSchema)
	if schemaError != nil {
		return schemaError
	}

	seedError := db.SeedDefaults(ctx, db.Seed)
	if seedError != nil {
		return seedError
	}

	db.ready.Store(true)

	return nil
}

// ClearMembersAndResetCounter deletes all of the members.  Member numbers
// are allocated from the highest existing number so the next member gets
// number 1.
func (db *Database) ClearMembersAndResetCounter(ctx context.Context) error {
	return db.run(ctx, func(tx *Tx) error {
		_, err := tx.Exec("DELETE FROM members")
		return err
	})
}

// ClearAllCollections deletes the contents of all of the data tables.  The
// seeded marker is left alone, so the default data is not inserted again.
func (db *Database) ClearAllCollections(ctx context.Context) error {
	return db.run(ctx, func(tx *Tx) error {
		for _, table := range dataTableNames {
			_, err := tx.Exec("DELETE FROM " + table)
			if err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}
		return nil
	})
}

// formatTime produces the stored form of a timestamp.  The zero time is
// stored as an empty string.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeFormat)
}

// parseTime converts the stored form of a timestamp back to a time.
func parseTime(s string) (time.Time, error) {
	if len(s) == 0 {
		return time.Time{}, nil
	}
	return time.Parse(timeFormat, s)
}

// nullString converts an empty string to NULL for optional unique columns.
func nullString(s string) any {
	if len(s) == 0 {
		return nil
	}
	return s
}

// nullInt converts a zero to NULL for optional unique columns.
func nullInt(i int) any {
	if i == 0 {
		return nil
	}
	return i
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
