package database

import (
	"context"
	"time"
)

const teamColumns = `id, uuid, name, category, description, status, created_at`

// AddTeam adds a team and returns the new id.  Team names are unique.
func (db *Database) AddTeam(ctx context.Context, team *Team) (int64, error) {

	err := db.run(ctx, func(tx *Tx) error {
		team.ID = 0
		if len(team.Status) == 0 {
			team.Status = StatusActive
		}
		if team.CreatedAt.IsZero() {
			team.CreatedAt = time.Now()
		}

		id, insertError := insertTeam(tx, team)
		if insertError != nil {
			return insertError
		}
		team.ID = id
		return nil
	})

	if err != nil {
		db.Logger.Error("AddTeam: " + err.Error())
		return 0, err
	}

	return team.ID, nil
}

func insertTeam(tx *Tx, t *Team) (int64, error) {

	uuidError := ensureUuid(tx, "teams", &t.UUID)
	if uuidError != nil {
		return 0, uuidError
	}

	columns := []string{"uuid", "name", "category", "description", "status", "created_at"}
	values := []any{t.UUID, t.Name, t.Category, t.Description, t.Status, formatTime(t.CreatedAt)}

	return insertRow(tx, "teams", t.ID, columns, values)
}

func scanTeam(row scanner) (*Team, error) {

	var t Team
	var createdAt string

	err := row.Scan(&t.ID, &t.UUID, &t.Name, &t.Category, &t.Description, &t.Status, &createdAt)
	if err != nil {
		return nil, err
	}

	var timeError error
	t.CreatedAt, timeError = parseTime(createdAt)
	if timeError != nil {
		return nil, timeError
	}

	return &t, nil
}

// GetTeams gets all of the teams in id order.
func (db *Database) GetTeams(ctx context.Context) ([]Team, error) {

	const q = "SELECT " + teamColumns + " FROM teams ORDER BY id"

	var teams []Team
	err := db.run(ctx, func(tx *Tx) error {
		var listError error
		teams, listError = queryList(tx, q, nil, scanTeam)
		return listError
	})
	if err != nil {
		return nil, err
	}

	return teams, nil
}
