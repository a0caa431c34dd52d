package clubdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/goblimey/go-club-manager/code/pkg/database"
	"github.com/goblimey/go-club-manager/code/pkg/forms"
)

// TeamInput is the data for a new team.
type TeamInput struct {
	Name        string
	Category    string
	Description string
}

// MatchInput is the data for a match.  All fields except the description
// are mandatory.
type MatchInput struct {
	HomeTeam    string
	AwayTeam    string
	Date        string // YYYY-MM-DD
	Time        string // HH:MM
	Venue       string
	Category    string
	Description string
}

// EventInput is the data for a club event other than a match.
type EventInput struct {
	Title       string
	Date        string // YYYY-MM-DD
	Time        string // HH:MM, optional
	Venue       string
	Category    string // optional
	Description string
}

// AddTeam validates the input and adds a team.  Team names are unique.
func (c *Club) AddTeam(ctx context.Context, in TeamInput) (*database.Team, error) {

	form := forms.TeamForm{Name: in.Name, Category: in.Category, Description: in.Description}
	if !form.Validate() {
		return nil, fieldError("add team", form.Errors())
	}

	team := database.Team{
		Name:        form.Name,
		Category:    form.Category,
		Description: form.Description,
		Status:      database.StatusActive,
		CreatedAt:   c.clock.Now(),
	}

	_, err := c.store.AddTeam(ctx, &team)
	if err != nil {
		c.logger.Error("AddTeam: " + err.Error())
		return nil, fmt.Errorf("error adding team: %w", err)
	}

	return &team, nil
}

// AddMatch validates the input and adds a match.
func (c *Club) AddMatch(ctx context.Context, in MatchInput) (*database.Event, error) {

	form := forms.MatchForm{
		HomeTeam:    in.HomeTeam,
		AwayTeam:    in.AwayTeam,
		Date:        in.Date,
		Time:        in.Time,
		Venue:       in.Venue,
		Category:    in.Category,
		Description: in.Description,
	}
	if !form.Validate() {
		return nil, fieldError("add match", form.Errors())
	}

	match := database.Event{
		Kind:        database.KindMatch,
		Title:       form.HomeTeam + " v " + form.AwayTeam,
		HomeTeam:    form.HomeTeam,
		AwayTeam:    form.AwayTeam,
		Date:        form.Date,
		Time:        form.Time,
		Venue:       form.Venue,
		Category:    form.Category,
		Description: form.Description,
		Status:      database.StatusScheduled,
		CreatedAt:   c.clock.Now(),
	}

	_, err := c.store.AddEvent(ctx, &match)
	if err != nil {
		c.logger.Error("AddMatch: " + err.Error())
		return nil, fmt.Errorf("error adding match: %w", err)
	}

	return &match, nil
}

// AddEvent validates the input and adds an event.
func (c *Club) AddEvent(ctx context.Context, in EventInput) (*database.Event, error) {

	form := forms.EventForm{
		Title:       in.Title,
		Date:        in.Date,
		Time:        in.Time,
		Venue:       in.Venue,
		Category:    in.Category,
		Description: in.Description,
	}
	if !form.Validate() {
		return nil, fieldError("add event", form.Errors())
	}

	event := database.Event{
		Kind:        database.KindEvent,
		Title:       form.Title,
		Date:        form.Date,
		Time:        form.Time,
		Venue:       form.Venue,
		Category:    form.Category,
		Description: form.Description,
		Status:      database.StatusScheduled,
		CreatedAt:   c.clock.Now(),
	}

	_, err := c.store.AddEvent(ctx, &event)
	if err != nil {
		c.logger.Error("AddEvent: " + err.Error())
		return nil, fmt.Errorf("error adding event: %w", err)
	}

	return &event, nil
}

func (c *Club) ListTeams(ctx context.Context) ([]database.Team, error) {
	teams, err := c.store.GetTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing teams: %w", err)
	}
	return teams, nil
}

// ListEvents returns the events and matches selected by the query.
func (c *Club) ListEvents(ctx context.Context, query database.EventQuery) ([]database.Event, error) {
	events, err := c.store.GetEvents(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}
	return events, nil
}

// ListUpcomingMatches returns the matches from today onwards, earliest
// first.
func (c *Club) ListUpcomingMatches(ctx context.Context) ([]database.Event, error) {
	query := database.EventQuery{Kind: database.KindMatch, FromDate: c.today()}
	matches, err := c.store.GetEvents(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing upcoming matches: %w", err)
	}
	return matches, nil
}

// GetConfig returns the value of a config entry.  The bool is false if
// there is no such entry.
func (c *Club) GetConfig(ctx context.Context, key string) (string, bool, error) {

	entry, err := c.store.GetConfigEntry(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error getting config %s: %w", key, err)
	}

	return entry.Value, true, nil
}

// SetConfig creates or updates a config entry.
func (c *Club) SetConfig(ctx context.Context, key, value, description string) error {

	if len(key) == 0 {
		return fieldError("set config", map[string]string{"key": forms.RequiredMessage})
	}

	entry := database.ConfigEntry{
		Key:         key,
		Value:       value,
		Description: description,
		UpdatedAt:   c.clock.Now(),
	}

	created, err := c.store.UpsertConfigEntry(ctx, &entry)
	if err != nil {
		c.logger.Error("SetConfig: " + err.Error())
		return fmt.Errorf("error setting config %s: %w", key, err)
	}

	c.logger.Info("config set", "key", key, "created", created)

	return nil
}
