package clubdata

import (
	"context"
	"fmt"

	"github.com/goblimey/go-club-manager/code/pkg/database"
	"github.com/goblimey/go-club-manager/code/pkg/legacy"
)

// PruneStalePendingMembers deletes the members that are still pending and
// registered before the cutoff, which is the stale pending age before now.
// The members are deleted one at a time.  It returns the number deleted.
// If a deletion fails it stops and returns the count so far with the error.
func (c *Club) PruneStalePendingMembers(ctx context.Context) (int, error) {

	cutoff := c.clock.Now().Add(-c.stale)

	pending, err := c.store.GetMembers(ctx, database.MemberFilter{Status: database.StatusPending})
	if err != nil {
		c.logger.Error("PruneStalePendingMembers: " + err.Error())
		return 0, fmt.Errorf("error pruning pending members: %w", err)
	}

	pruned := 0
	for _, m := range pending {
		if !m.RegisteredAt.Before(cutoff) {
			continue
		}

		deleteError := c.store.DeleteMember(ctx, m.ID)
		if deleteError != nil {
			c.logger.Error("PruneStalePendingMembers: " + deleteError.Error())
			return pruned, fmt.Errorf("error pruning member %s: %w", m.MemberNumber, deleteError)
		}
		pruned++
	}

	c.logger.Info("pruned stale pending members", "count", pruned, "cutoff", cutoff)

	return pruned, nil
}

// ResetDatabase deletes everything.  It drops the tables, deletes the
// legacy keys and then creates the tables again with the seed data.
func (c *Club) ResetDatabase(ctx context.Context) error {

	dropError := c.store.DropSchema(ctx)
	if dropError != nil {
		c.logger.Error("ResetDatabase: " + dropError.Error())
		return fmt.Errorf("error resetting database: %w", dropError)
	}

	if c.legacy != nil {
		for _, key := range legacy.Keys {
			if err := c.legacy.Delete(key); err != nil {
				c.logger.Error("ResetDatabase: " + err.Error())
				return fmt.Errorf("error resetting database: %w", err)
			}
		}
	}

	reopenError := c.store.Reopen(ctx)
	if reopenError != nil {
		c.logger.Error("ResetDatabase: " + reopenError.Error())
		return fmt.Errorf("error resetting database: %w", reopenError)
	}

	c.logger.Warn("database reset")

	return nil
}

// ResetMembers deletes all members, resets the member number counter and
// deletes the legacy members key.
func (c *Club) ResetMembers(ctx context.Context) error {

	err := c.store.ClearMembersAndResetCounter(ctx)
	if err != nil {
		c.logger.Error("ResetMembers: " + err.Error())
		return fmt.Errorf("error resetting members: %w", err)
	}

	if c.legacy != nil {
		if err := c.legacy.Delete(legacy.KeyMembers); err != nil {
			c.logger.Error("ResetMembers: " + err.Error())
			return fmt.Errorf("error resetting members: %w", err)
		}
	}

	c.logger.Warn("members reset")

	return nil
}
