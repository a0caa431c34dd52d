package clubdata

import (
	"context"
	"fmt"

	"github.com/goblimey/go-club-manager/code/pkg/database"
)

// Statistics is the summary of the club's data.
type Statistics struct {
	database.Statistics
	PlayersByCategory map[string]int `json:"playersByCategory"`
	UpcomingMatches   int            `json:"upcomingMatches"`
}

// GetStatistics counts the members, friends, players, teams and events.
// Players are also counted per category, and matches from today onwards.
func (c *Club) GetStatistics(ctx context.Context) (*Statistics, error) {

	counts, err := c.store.GetStatistics(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting statistics: %w", err)
	}

	stats := Statistics{
		Statistics:        *counts,
		PlayersByCategory: make(map[string]int, len(database.Categories)),
	}

	for _, category := range database.Categories {
		players, err := c.store.GetPlayers(ctx, database.PlayerFilter{Category: category})
		if err != nil {
			return nil, fmt.Errorf("error getting statistics: %w", err)
		}
		stats.PlayersByCategory[category] = len(players)
	}

	upcoming, err := c.ListUpcomingMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting statistics: %w", err)
	}
	stats.UpcomingMatches = len(upcoming)

	return &stats, nil
}
