package database

import (
	"context"
	"database/sql"
	"time"
)

const playerColumns = `id, uuid, full_name, surname, national_id, phone, birth_date,
	age, category, jersey_number, status, registered_at`

// AddPlayer adds a player and returns the new id.  The national ID is
// unique, and so is the jersey number within a category.
func (db *Database) AddPlayer(ctx context.Context, player *Player) (int64, error) {

	err := db.run(ctx, func(tx *Tx) error {
		player.ID = 0
		if len(player.Status) == 0 {
			player.Status = StatusActive
		}
		if player.RegisteredAt.IsZero() {
			player.RegisteredAt = time.Now()
		}

		id, insertError := insertPlayer(tx, player)
		if insertError != nil {
			return insertError
		}
		player.ID = id
		return nil
	})

	if err != nil {
		db.Logger.Error("AddPlayer: " + err.Error())
		return 0, err
	}

	return player.ID, nil
}

func insertPlayer(tx *Tx, p *Player) (int64, error) {

	uuidError := ensureUuid(tx, "players", &p.UUID)
	if uuidError != nil {
		return 0, uuidError
	}

	columns := []string{
		"uuid", "full_name", "surname", "national_id", "phone", "birth_date",
		"age", "category", "jersey_number", "status", "registered_at",
	}
	values := []any{
		p.UUID, p.FullName, p.Surname, p.NationalID, p.Phone, p.BirthDate,
		p.Age, nullString(p.Category), nullInt(p.JerseyNumber), p.Status, formatTime(p.RegisteredAt),
	}

	return insertRow(tx, "players", p.ID, columns, values)
}

func scanPlayer(row scanner) (*Player, error) {

	var p Player
	var category sql.NullString
	var jersey sql.NullInt64
	var registeredAt string

	err := row.Scan(&p.ID, &p.UUID, &p.FullName, &p.Surname, &p.NationalID, &p.Phone,
		&p.BirthDate, &p.Age, &category, &jersey, &p.Status, &registeredAt)
	if err != nil {
		return nil, err
	}

	p.Category = category.String
	p.JerseyNumber = int(jersey.Int64)

	var timeError error
	p.RegisteredAt, timeError = parseTime(registeredAt)
	if timeError != nil {
		return nil, timeError
	}

	return &p, nil
}

// GetPlayers gets the players that match the filter, in id order.
func (db *Database) GetPlayers(ctx context.Context, filter PlayerFilter) ([]Player, error) {

	var c conditions
	c.addIfSet("category", filter.Category)
	c.addIfSet("national_id", filter.NationalID)
	if filter.JerseyNumber > 0 {
		c.add("jersey_number", "=", filter.JerseyNumber)
	}

	q := "SELECT " + playerColumns + " FROM players" + c.where() + " ORDER BY id"

	var players []Player
	err := db.run(ctx, func(tx *Tx) error {
		var listError error
		players, listError = queryList(tx, q, c.args, scanPlayer)
		return listError
	})
	if err != nil {
		return nil, err
	}

	return players, nil
}

// DeletePlayer deletes the player with the given id.
func (db *Database) DeletePlayer(ctx context.Context, id int64) error {
	return db.run(ctx, func(tx *Tx) error {
		return deleteByID(tx, "players", id)
	})
}
