package clubdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/goblimey/go-club-manager/code/pkg/database"
	"github.com/goblimey/go-club-manager/code/pkg/legacy"
)

// MigrationReport describes what happened to one legacy key.
type MigrationReport struct {
	Key      string `json:"key"`
	Found    int    `json:"found"`    // The number of items in the key.
	Migrated int    `json:"migrated"` // The number that were added to the store.
	Failed   int    `json:"failed"`   // The number that the store rejected.
}

// migrate moves the data for each legacy key into the store and then
// deletes the key.  An item that the store rejects is logged and counted
// and the rest carry on.  There's no rollback.  A key that can't be parsed
// is logged and left alone.
func (c *Club) migrate(ctx context.Context) ([]MigrationReport, error) {

	if c.legacy == nil {
		return nil, nil
	}

	reports := make([]MigrationReport, 0, len(legacy.Keys))

	for _, key := range legacy.Keys {

		value, found, getError := c.legacy.Get(key)
		if getError != nil {
			c.logger.Error("migrate: " + getError.Error())
			return reports, fmt.Errorf("error reading legacy key %s: %w", key, getError)
		}
		if !found {
			continue
		}

		report, migrateError := c.migrateKey(ctx, key, value)
		if migrateError != nil {
			// Keep the key so that the data isn't lost.
			c.logger.Error("migrate: " + migrateError.Error())
			continue
		}

		deleteError := c.legacy.Delete(key)
		if deleteError != nil {
			c.logger.Error("migrate: " + deleteError.Error())
			return reports, fmt.Errorf("error deleting legacy key %s: %w", key, deleteError)
		}

		c.logger.Info("migrated legacy data",
			"key", key, "found", report.Found, "migrated", report.Migrated, "failed", report.Failed)

		reports = append(reports, *report)
	}

	return reports, nil
}

func (c *Club) migrateKey(ctx context.Context, key, value string) (*MigrationReport, error) {

	report := MigrationReport{Key: key}

	// Each item is submitted separately.
	add := func(err error) {
		report.Found++
		if err != nil {
			c.logger.Error("migrate "+key+": "+err.Error(), "item", report.Found)
			report.Failed++
			return
		}
		report.Migrated++
	}

	switch key {

	case legacy.KeyMembers:
		var members []database.Member
		if err := unmarshalLegacy(key, value, &members); err != nil {
			return nil, err
		}
		for i := range members {
			m := c.prepareLegacyMember(members[i])
			_, err := c.store.AddMember(ctx, &m)
			add(err)
		}

	case legacy.KeyFriends:
		var friends []database.Friend
		if err := unmarshalLegacy(key, value, &friends); err != nil {
			return nil, err
		}
		for i := range friends {
			f := friends[i]
			f.ID = 0
			if len(f.Status) == 0 {
				f.Status = database.StatusActive
			}
			if f.RegisteredAt.IsZero() {
				f.RegisteredAt = c.clock.Now()
			}
			_, err := c.store.AddFriend(ctx, &f)
			add(err)
		}

	case legacy.KeyEvents:
		var events []database.Event
		if err := unmarshalLegacy(key, value, &events); err != nil {
			return nil, err
		}
		for i := range events {
			e := events[i]
			e.ID = 0
			if len(e.Kind) == 0 && len(e.HomeTeam) > 0 {
				e.Kind = database.KindMatch
			}
			if e.CreatedAt.IsZero() {
				e.CreatedAt = c.clock.Now()
			}
			_, err := c.store.AddEvent(ctx, &e)
			add(err)
		}
	}

	return &report, nil
}

// prepareLegacyMember fills in the values that old member records may
// lack.  The member number is always assigned afresh.
func (c *Club) prepareLegacyMember(m database.Member) database.Member {

	m.ID = 0
	m.MemberNumber = ""
	m.MemberSeq = 0

	if len(m.Status) == 0 {
		m.Status = database.StatusPending
	}
	if m.RegisteredAt.IsZero() {
		m.RegisteredAt = c.clock.Now()
	}

	var birth time.Time
	if len(m.BirthDate) > 0 {
		d, err := time.Parse(dateLayout, m.BirthDate)
		if err == nil {
			birth = d
		}
	}

	if m.Age == 0 && !birth.IsZero() {
		m.Age = ageOn(birth, c.todayDate())
	}
	if m.MembershipFee == 0 {
		m.MembershipFee = c.fee(m.Age, !birth.IsZero())
	}

	return m
}

func unmarshalLegacy(key, value string, target any) error {
	if len(value) == 0 {
		return nil
	}
	err := json.Unmarshal([]byte(value), target)
	if err != nil {
		return fmt.Errorf("error parsing legacy key %s: %w", key, err)
	}
	return nil
}
