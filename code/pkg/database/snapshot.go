package database

import (
	"context"
	"fmt"
)

// Snapshot holds the contents of all of the collections.
type Snapshot struct {
	Members        []Member        `json:"members"`
	Friends        []Friend        `json:"friends"`
	Teams          []Team          `json:"teams"`
	Players        []Player        `json:"players"`
	Events         []Event         `json:"events"`
	Administrators []Administrator `json:"administrators"`
	ConfigEntries  []ConfigEntry   `json:"configEntries"`
}

// Export returns the contents of all of the collections, read in one
// transaction.
func (db *Database) Export(ctx context.Context) (*Snapshot, error) {

	var snap Snapshot

	err := db.run(ctx, func(tx *Tx) error {
		var err error

		snap.Members, err = queryList(tx,
			"SELECT "+memberColumns+" FROM members ORDER BY id", nil, scanMember)
		if err != nil {
			return err
		}
		snap.Friends, err = queryList(tx,
			"SELECT "+friendColumns+" FROM friends ORDER BY id", nil, scanFriend)
		if err != nil {
			return err
		}
		snap.Teams, err = queryList(tx,
			"SELECT "+teamColumns+" FROM teams ORDER BY id", nil, scanTeam)
		if err != nil {
			return err
		}
		snap.Players, err = queryList(tx,
			"SELECT "+playerColumns+" FROM players ORDER BY id", nil, scanPlayer)
		if err != nil {
			return err
		}
		snap.Events, err = queryList(tx,
			"SELECT "+eventColumns+" FROM events ORDER BY id", nil, scanEvent)
		if err != nil {
			return err
		}
		snap.Administrators, err = queryList(tx,
			"SELECT "+administratorColumns+" FROM administrators ORDER BY id", nil, scanAdministrator)
		if err != nil {
			return err
		}
		snap.ConfigEntries, err = getConfigEntries(tx)
		return err
	})

	if err != nil {
		db.Logger.Error("Export: " + err.Error())
		return nil, err
	}

	return &snap, nil
}

// Import replaces the contents of all of the collections with the snapshot.
// The records keep their ids and UUIDs.  It's all one transaction, so
// if any record can't be inserted nothing changes.
func (db *Database) Import(ctx context.Context, snap *Snapshot) error {

	err := db.run(ctx, func(tx *Tx) error {

		for _, table := range dataTableNames {
			_, err := tx.Exec("DELETE FROM " + table)
			if err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}

		for i := range snap.Members {
			if _, err := insertMember(tx, &snap.Members[i]); err != nil {
				return fmt.Errorf("importing member %s: %w", snap.Members[i].MemberNumber, err)
			}
		}
		for i := range snap.Friends {
			if _, err := insertFriend(tx, &snap.Friends[i]); err != nil {
				return fmt.Errorf("importing friend %d: %w", snap.Friends[i].ID, err)
			}
		}
		for i := range snap.Teams {
			if _, err := insertTeam(tx, &snap.Teams[i]); err != nil {
				return fmt.Errorf("importing team %s: %w", snap.Teams[i].Name, err)
			}
		}
		for i := range snap.Players {
			if _, err := insertPlayer(tx, &snap.Players[i]); err != nil {
				return fmt.Errorf("importing player %d: %w", snap.Players[i].ID, err)
			}
		}
		for i := range snap.Events {
			if _, err := insertEvent(tx, &snap.Events[i]); err != nil {
				return fmt.Errorf("importing event %d: %w", snap.Events[i].ID, err)
			}
		}
		for i := range snap.Administrators {
			if _, err := insertAdministrator(tx, &snap.Administrators[i]); err != nil {
				return fmt.Errorf("importing administrator %s: %w", snap.Administrators[i].Email, err)
			}
		}
		for i := range snap.ConfigEntries {
			if _, err := insertConfigEntry(tx, &snap.ConfigEntries[i], 0); err != nil {
				return fmt.Errorf("importing config entry %s: %w", snap.ConfigEntries[i].Key, err)
			}
		}

		return resyncSequences(tx)
	})

	if err != nil {
		db.Logger.Error("Import: " + err.Error())
		return err
	}

	db.Logger.Info("imported snapshot",
		"members", len(snap.Members), "friends", len(snap.Friends),
		"teams", len(snap.Teams), "players", len(snap.Players),
		"events", len(snap.Events), "administrators", len(snap.Administrators),
		"configEntries", len(snap.ConfigEntries))

	return nil
}

// resyncSequences moves the Postgres id sequences past the highest id in
// each table after rows have been inserted with explicit ids.  SQLite and
// MySQL do that themselves.
func resyncSequences(tx *Tx) error {

	if tx.dbType != TypePostgres {
		return nil
	}

	for _, table := range dataTableNames {
		q := fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %s`,
			table, table)
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("resetting the id sequence of %s: %w", table, err)
		}
	}

	return nil
}
