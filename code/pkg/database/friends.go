package database

import (
	"context"
	"database/sql"
	"time"
)

const friendColumns = `id, uuid, full_name, surname, phone, email, national_id, status, registered_at`

// AddFriend adds a friend (supporter) and returns the new id.
func (db *Database) AddFriend(ctx context.Context, friend *Friend) (int64, error) {

	err := db.run(ctx, func(tx *Tx) error {
		friend.ID = 0
		if len(friend.Status) == 0 {
			friend.Status = StatusActive
		}
		if friend.RegisteredAt.IsZero() {
			friend.RegisteredAt = time.Now()
		}

		id, insertError := insertFriend(tx, friend)
		if insertError != nil {
			return insertError
		}
		friend.ID = id
		return nil
	})

	if err != nil {
		db.Logger.Error("AddFriend: " + err.Error())
		return 0, err
	}

	return friend.ID, nil
}

func insertFriend(tx *Tx, f *Friend) (int64, error) {

	uuidError := ensureUuid(tx, "friends", &f.UUID)
	if uuidError != nil {
		return 0, uuidError
	}

	columns := []string{
		"uuid", "full_name", "surname", "phone", "email", "national_id",
		"status", "registered_at",
	}
	values := []any{
		f.UUID, f.FullName, f.Surname, f.Phone, f.Email, nullString(f.NationalID),
		f.Status, formatTime(f.RegisteredAt),
	}

	return insertRow(tx, "friends", f.ID, columns, values)
}

func scanFriend(row scanner) (*Friend, error) {

	var f Friend
	var nationalID sql.NullString
	var registeredAt string

	err := row.Scan(&f.ID, &f.UUID, &f.FullName, &f.Surname, &f.Phone, &f.Email,
		&nationalID, &f.Status, &registeredAt)
	if err != nil {
		return nil, err
	}

	f.NationalID = nationalID.String

	var timeError error
	f.RegisteredAt, timeError = parseTime(registeredAt)
	if timeError != nil {
		return nil, timeError
	}

	return &f, nil
}

// GetFriends gets the friends that match the filter, in id order.
func (db *Database) GetFriends(ctx context.Context, filter FriendFilter) ([]Friend, error) {

	var c conditions
	c.addIfSet("status", filter.Status)
	c.addIfSet("national_id", filter.NationalID)
	c.addIfSet("email", filter.Email)

	q := "SELECT " + friendColumns + " FROM friends" + c.where() + " ORDER BY id"

	var friends []Friend
	err := db.run(ctx, func(tx *Tx) error {
		var listError error
		friends, listError = queryList(tx, q, c.args, scanFriend)
		return listError
	})
	if err != nil {
		return nil, err
	}

	return friends, nil
}

// DeleteFriend deletes the friend with the given id.
func (db *Database) DeleteFriend(ctx context.Context, id int64) error {
	return db.run(ctx, func(tx *Tx) error {
		return deleteByID(tx, "friends", id)
	})
}
