package database

import "context"

// GetStatistics counts the records in each collection.  The counts are
// taken in one transaction.
func (db *Database) GetStatistics(ctx context.Context) (*Statistics, error) {

	var stats Statistics

	queries := []struct {
		target *int
		q      string
		args   []any
	}{
		{&stats.Members, "SELECT COUNT(*) FROM members", nil},
		{&stats.PendingMembers, "SELECT COUNT(*) FROM members WHERE status = $1", []any{StatusPending}},
		{&stats.ValidatedMembers, "SELECT COUNT(*) FROM members WHERE status = $1", []any{StatusValidated}},
		{&stats.PaidMembers, "SELECT COUNT(*) FROM members WHERE paid = $1", []any{1}},
		{&stats.Friends, "SELECT COUNT(*) FROM friends", nil},
		{&stats.ActiveFriends, "SELECT COUNT(*) FROM friends WHERE status = $1", []any{StatusActive}},
		{&stats.Teams, "SELECT COUNT(*) FROM teams", nil},
		{&stats.Players, "SELECT COUNT(*) FROM players", nil},
		{&stats.ActivePlayers, "SELECT COUNT(*) FROM players WHERE status = $1", []any{StatusActive}},
		{&stats.Events, "SELECT COUNT(*) FROM events", nil},
		{&stats.Matches, "SELECT COUNT(*) FROM events WHERE kind = $1", []any{KindMatch}},
		{&stats.ScheduledEvents, "SELECT COUNT(*) FROM events WHERE status = $1", []any{StatusScheduled}},
		{&stats.Administrators, "SELECT COUNT(*) FROM administrators", nil},
	}

	err := db.run(ctx, func(tx *Tx) error {
		for _, query := range queries {
			n, err := count(tx, query.q, query.args...)
			if err != nil {
				return err
			}
			*query.target = n
		}
		return nil
	})

	if err != nil {
		db.Logger.Error("GetStatistics: " + err.Error())
		return nil, err
	}

	return &stats, nil
}
