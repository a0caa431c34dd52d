package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const configEntryColumns = `entry_key, entry_value, description, updated_at`

// GetConfigEntry gets the config entry with the given key.  If there is
// none it returns ErrNotFound.
func (db *Database) GetConfigEntry(ctx context.Context, key string) (*ConfigEntry, error) {

	const q = "SELECT " + configEntryColumns + " FROM config_entries WHERE entry_key = $1"

	var entry *ConfigEntry
	err := db.run(ctx, func(tx *Tx) error {
		var scanError error
		entry, scanError = scanConfigEntry(tx.QueryRow(q, key))
		if errors.Is(scanError, sql.ErrNoRows) {
			return ErrNotFound
		}
		return scanError
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// UpsertConfigEntry creates the config entry or, if one with the same key
// exists, updates it.  It returns true if a new entry was created.  The
// update and the insert are in one transaction.  If another writer creates
// the key between the two, the insert fails on the unique constraint and
// the update is tried again.
func (db *Database) UpsertConfigEntry(ctx context.Context, entry *ConfigEntry) (bool, error) {

	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now()
	}

	created := false

	upsert := func(tx *Tx) error {
		created = false

		updated, updateError := updateConfigEntry(tx, entry)
		if updateError != nil {
			return updateError
		}
		if updated {
			return nil
		}

		_, insertError := insertConfigEntry(tx, entry, 0)
		if insertError != nil {
			return insertError
		}
		created = true
		return nil
	}

	err := db.run(ctx, upsert)

	var cve *ConstraintViolationError
	if errors.As(err, &cve) {
		db.Logger.Debug("UpsertConfigEntry: insert clashed, retrying", "key", entry.Key)
		err = db.run(ctx, upsert)
	}

	if err != nil {
		db.Logger.Error("UpsertConfigEntry: " + err.Error())
		return false, err
	}

	return created, nil
}

// updateConfigEntry updates the entry with the same key and returns true
// if there was one.
func updateConfigEntry(tx *Tx, entry *ConfigEntry) (bool, error) {

	// MySQL reports zero rows affected when nothing changes, so look for
	// the row rather than trusting the count.
	n, countError := count(tx, "SELECT COUNT(*) FROM config_entries WHERE entry_key = $1", entry.Key)
	if countError != nil {
		return false, countError
	}
	if n == 0 {
		return false, nil
	}

	const q = `UPDATE config_entries SET entry_value = $1, description = $2, updated_at = $3 WHERE entry_key = $4`
	_, err := tx.UpdateRow(q, entry.Value, entry.Description, formatTime(entry.UpdatedAt), entry.Key)
	if err != nil {
		return false, err
	}

	return true, nil
}

func insertConfigEntry(tx *Tx, entry *ConfigEntry, id int64) (int64, error) {
	columns := []string{"entry_key", "entry_value", "description", "updated_at"}
	values := []any{entry.Key, entry.Value, entry.Description, formatTime(entry.UpdatedAt)}
	return insertRow(tx, "config_entries", id, columns, values)
}

func scanConfigEntry(row scanner) (*ConfigEntry, error) {

	var e ConfigEntry
	var updatedAt string

	err := row.Scan(&e.Key, &e.Value, &e.Description, &updatedAt)
	if err != nil {
		return nil, err
	}

	var timeError error
	e.UpdatedAt, timeError = parseTime(updatedAt)
	if timeError != nil {
		return nil, timeError
	}

	return &e, nil
}

// getConfigEntries gets all of the config entries in key order.
func getConfigEntries(tx *Tx) ([]ConfigEntry, error) {
	const q = "SELECT " + configEntryColumns + " FROM config_entries ORDER BY entry_key"
	return queryList(tx, q, nil, scanConfigEntry)
}
