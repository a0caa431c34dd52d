package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goblimey/go-club-manager/code/pkg/database"
)

// seedFile is the layout of the optional seed file, eg:
//
//	teams:
//	  - name: Seniors
//	    category: adult
//	    description: First team
//	admins:
//	  - name: Secretary
//	    email: secretary@example.com
//	    role: super_admin
//
// The administrators are always created with locked passwords.
type seedFile struct {
	Teams []struct {
		Name        string `yaml:"name"`
		Category    string `yaml:"category"`
		Description string `yaml:"description"`
	} `yaml:"teams"`
	Admins []struct {
		Name  string `yaml:"name"`
		Email string `yaml:"email"`
		Role  string `yaml:"role"`
	} `yaml:"admins"`
}

// loadSeed returns the seed data.  If path is empty the default data is
// used.  If emails are given they replace the administrators' addresses.
func loadSeed(path string, emails []string) (database.Seed, error) {

	seed := database.DefaultSeed()

	if len(path) > 0 {
		data, readError := os.ReadFile(path)
		if readError != nil {
			return seed, fmt.Errorf("failed to read seed file: %w", readError)
		}

		var sf seedFile
		if err := yaml.Unmarshal(data, &sf); err != nil {
			return seed, fmt.Errorf("failed to parse seed file: %w", err)
		}

		// Each section replaces the default if it's given.
		if len(sf.Teams) > 0 {
			seed.Teams = make([]database.Team, 0, len(sf.Teams))
			for _, t := range sf.Teams {
				if !database.IsCategory(t.Category) {
					return seed, fmt.Errorf("seed file: team %s: unknown category %q", t.Name, t.Category)
				}
				seed.Teams = append(seed.Teams,
					database.Team{Name: t.Name, Category: t.Category, Description: t.Description})
			}
		}

		if len(sf.Admins) > 0 {
			seed.Admins = make([]database.Administrator, 0, len(sf.Admins))
			for _, a := range sf.Admins {
				role := a.Role
				if len(role) == 0 {
					role = database.RoleAdmin
				}
				seed.Admins = append(seed.Admins,
					database.Administrator{Name: a.Name, Email: a.Email, Role: role})
			}
		}
	}

	return seed.WithAdminEmails(emails), nil
}
