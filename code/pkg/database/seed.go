package database

import (
	"context"
	"fmt"
	"time"
)

// Seed is the default data inserted when the store is first created.
type Seed struct {
	Teams  []Team          `yaml:"teams"`
	Admins []Administrator `yaml:"admins"`
}

// DefaultSeed returns the standard default data: one team in each category
// and two administrators, a super administrator and an ordinary one.  The
// administrators are created with locked passwords.
func DefaultSeed() Seed {

	teamNames := map[string]string{
		"pre-youth": "Pre-youth",
		"youth":     "Youth",
		"junior":    "Junior",
		"cadet":     "Cadet",
		"adult":     "Senior",
	}

	seed := Seed{
		Teams: make([]Team, 0, len(Categories)),
		Admins: []Administrator{
			{Name: "Super Administrator", Email: "superadmin@club.invalid", Role: RoleSuperAdmin},
			{Name: "Administrator", Email: "admin@club.invalid", Role: RoleAdmin},
		},
	}

	for _, category := range Categories {
		team := Team{
			Name:        teamNames[category],
			Category:    category,
			Description: teamNames[category] + " team",
		}
		seed.Teams = append(seed.Teams, team)
	}

	return seed
}

// WithAdminEmails returns a copy of the seed with the administrators'
// email addresses replaced, in order.  Empty strings leave the default
// address alone.
func (s Seed) WithAdminEmails(emails []string) Seed {
	admins := make([]Administrator, len(s.Admins))
	copy(admins, s.Admins)
	for i := range admins {
		if i < len(emails) && len(emails[i]) > 0 {
			admins[i].Email = emails[i]
		}
	}
	s.Admins = admins
	return s
}

// SeedDefaults inserts the given default data unless the store has already
// been seeded.  Seeding is recorded in schema_meta so it only happens once,
// even if the collections are cleared later.
func (db *Database) SeedDefaults(ctx context.Context, seed Seed) error {

	seeded := false

	err := db.runTx(ctx, func(tx *Tx) error {

		_, found, getError := getMeta(tx, metaKeySeeded)
		if getError != nil {
			return getError
		}
		if found {
			return nil
		}

		now := time.Now()

		for i := range seed.Teams {
			team := seed.Teams[i]
			team.CreatedAt = now
			if len(team.Status) == 0 {
				team.Status = StatusActive
			}
			if _, teamError := insertTeam(tx, &team); teamError != nil {
				return fmt.Errorf("seeding team %s: %w", team.Name, teamError)
			}
		}

		for i := range seed.Admins {
			admin := seed.Admins[i]
			admin.CreatedAt = now
			if len(admin.PasswordHash) == 0 {
				admin.PasswordHash = LockedPassword
			}
			if len(admin.Status) == 0 {
				admin.Status = StatusActive
			}
			if _, adminError := insertAdministrator(tx, &admin); adminError != nil {
				return fmt.Errorf("seeding administrator %s: %w", admin.Email, adminError)
			}
		}

		const q = `INSERT INTO schema_meta (meta_key, meta_value) VALUES ($1, $2)`
		_, markError := tx.CreateRow(q, metaKeySeeded, formatTime(now))
		if markError != nil {
			return markError
		}

		seeded = true
		return nil
	})

	if err != nil {
		return err
	}

	if seeded {
		db.Logger.Info("seeded default data",
			"teams", len(seed.Teams), "administrators", len(seed.Admins))
	}

	return nil
}
