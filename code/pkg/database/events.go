package database

import (
	"context"
	"time"
)

const eventColumns = `id, uuid, kind, title, home_team, away_team, event_date, event_time,
	venue, category, description, status, created_at`

// AddEvent adds an event or a match and returns the new id.
func (db *Database) AddEvent(ctx context.Context, event *Event) (int64, error) {

	err := db.run(ctx, func(tx *Tx) error {
		event.ID = 0
		if len(event.Kind) == 0 {
			event.Kind = KindEvent
		}
		if len(event.Status) == 0 {
			event.Status = StatusScheduled
		}
		if event.CreatedAt.IsZero() {
			event.CreatedAt = time.Now()
		}

		id, insertError := insertEvent(tx, event)
		if insertError != nil {
			return insertError
		}
		event.ID = id
		return nil
	})

	if err != nil {
		db.Logger.Error("AddEvent: " + err.Error())
		return 0, err
	}

	return event.ID, nil
}

func insertEvent(tx *Tx, e *Event) (int64, error) {

	uuidError := ensureUuid(tx, "events", &e.UUID)
	if uuidError != nil {
		return 0, uuidError
	}

	columns := []string{
		"uuid", "kind", "title", "home_team", "away_team", "event_date", "event_time",
		"venue", "category", "description", "status", "created_at",
	}
	values := []any{
		e.UUID, e.Kind, e.Title, e.HomeTeam, e.AwayTeam, e.Date, e.Time,
		e.Venue, e.Category, e.Description, e.Status, formatTime(e.CreatedAt),
	}

	return insertRow(tx, "events", e.ID, columns, values)
}

func scanEvent(row scanner) (*Event, error) {

	var e Event
	var createdAt string

	err := row.Scan(&e.ID, &e.UUID, &e.Kind, &e.Title, &e.HomeTeam, &e.AwayTeam,
		&e.Date, &e.Time, &e.Venue, &e.Category, &e.Description, &e.Status, &createdAt)
	if err != nil {
		return nil, err
	}

	var timeError error
	e.CreatedAt, timeError = parseTime(createdAt)
	if timeError != nil {
		return nil, timeError
	}

	return &e, nil
}

// GetEvents gets the events selected by the query, in date and time order.
// Dates are stored as YYYY-MM-DD so string comparison gives date order.
func (db *Database) GetEvents(ctx context.Context, query EventQuery) ([]Event, error) {

	var c conditions
	c.addIfSet("kind", query.Kind)
	c.addIfSet("category", query.Category)
	if len(query.FromDate) > 0 {
		c.add("event_date", ">=", query.FromDate)
	}

	order := " ORDER BY event_date, event_time, id"
	if query.Descending {
		order = " ORDER BY event_date DESC, event_time DESC, id DESC"
	}

	q := "SELECT " + eventColumns + " FROM events" + c.where() + order

	var events []Event
	err := db.run(ctx, func(tx *Tx) error {
		var listError error
		events, listError = queryList(tx, q, c.args, scanEvent)
		return listError
	})
	if err != nil {
		return nil, err
	}

	return events, nil
}

// DeleteEvent deletes the event with the given id.
func (db *Database) DeleteEvent(ctx context.Context, id int64) error {
	return db.run(ctx, func(tx *Tx) error {
		return deleteByID(tx, "events", id)
	})
}
