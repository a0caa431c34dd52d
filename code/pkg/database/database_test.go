package database

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"
)

// databaseList is a list of database types that will be used in
// integration tests.
var databaseList = DatabaseTypesForTesting()

func TestConnectSQLite(t *testing.T) {

	db := New(&DBConfig{Type: TypeSQLite, Logger: createLoggerForTesting()})

	err := db.Open(context.Background())
	if err != nil {
		t.Error(err)
		return
	}

	defer db.CloseAndDelete()

	if !db.Ready() {
		t.Error("want ready after Open")
	}

	if db.Fallback() {
		t.Error("want no fallback")
	}
}

// TestOpenKeepsWorkingDirectory checks that opening a temporary SQLite
// store doesn't change the working directory, so relative paths such as
// the legacy store file still work, and that Close removes the store.
func TestOpenKeepsWorkingDirectory(t *testing.T) {

	before, wdError := os.Getwd()
	if wdError != nil {
		t.Fatal(wdError)
	}

	db := New(&DBConfig{Type: TypeSQLite, Logger: createLoggerForTesting()})

	openError := db.Open(context.Background())
	if openError != nil {
		t.Fatal(openError)
	}

	after, _ := os.Getwd()
	if after != before {
		t.Errorf("want working directory %s got %s", before, after)
	}

	dir := db.SQLiteTempDir
	if len(dir) == 0 {
		t.Fatal("want a temporary directory")
	}
	if _, statError := os.Stat(dir); statError != nil {
		t.Error(statError)
	}

	db.Close()

	if _, statError := os.Stat(dir); !os.IsNotExist(statError) {
		t.Errorf("want %s removed", dir)
	}
}

// TestOpenSeedFailureCloses checks that when seeding fails Open closes
// the connection and removes the temporary store.
func TestOpenSeedFailureCloses(t *testing.T) {

	db := New(&DBConfig{Type: TypeSQLite, Logger: createLoggerForTesting()})
	// Team names must be unique.
	db.Seed = Seed{Teams: []Team{
		{Name: "Senior", Category: "adult"},
		{Name: "Senior", Category: "adult"},
	}}

	openError := db.Open(context.Background())
	if openError == nil {
		db.Close()
		t.Fatal("want an error")
	}

	if db.Ready() {
		t.Error("want not ready")
	}
	if db.Connection != nil {
		t.Error("want the connection closed")
	}
	if len(db.SQLiteTempDir) != 0 {
		t.Errorf("want the temporary store removed, got %s", db.SQLiteTempDir)
	}
}

// TestPostgresParamsToSQLiteParams checks the postgresParamsToSQLiteParams.
func TestPostgresParamsToSQLiteParams(t *testing.T) {

	const multilineQuery = `abc$21
		def$21`
	const multilineResult = `abc?
		def?`

	var testData = []struct {
		query string
		want  string
	}{
		{"abc$1def$2", "abc?def?"},
		{"$1$2$3", "???"},
		{"noparams", "noparams"},
		{"abc$21def$21", "abc?def?"},
		{multilineQuery, multilineResult},
	}

	for _, td := range testData {
		got := postgresParamsToSQLiteParams(td.query)
		if got != td.want {
			t.Errorf("got %s want %s", got, td.want)
		}
	}
}

// TestNotInitialized checks that the collection operations fail until Open
// has been called.
func TestNotInitialized(t *testing.T) {

	db := New(&DBConfig{Type: TypeSQLite, Logger: createLoggerForTesting()})

	ctx := context.Background()

	_, err1 := db.AddMember(ctx, &Member{FullName: "a", Surname: "b", Phone: "1"})
	if !errors.Is(err1, ErrNotInitialized) {
		t.Errorf("AddMember: want ErrNotInitialized got %v", err1)
	}

	_, err2 := db.GetTeams(ctx)
	if !errors.Is(err2, ErrNotInitialized) {
		t.Errorf("GetTeams: want ErrNotInitialized got %v", err2)
	}

	_, err3 := db.GetStatistics(ctx)
	if !errors.Is(err3, ErrNotInitialized) {
		t.Errorf("GetStatistics: want ErrNotInitialized got %v", err3)
	}

	err4 := db.ClearAllCollections(ctx)
	if !errors.Is(err4, ErrNotInitialized) {
		t.Errorf("ClearAllCollections: want ErrNotInitialized got %v", err4)
	}
}

// TestOpenFailure checks that Open returns a StorageUnavailableError when
// the database can't be reached and fallback is off.
func TestOpenFailure(t *testing.T) {

	config := DBConfig{
		Type:   TypePostgres,
		Host:   "127.0.0.1",
		Port:   "1",
		User:   "nobody",
		Name:   "nothing",
		Logger: createLoggerForTesting(),
	}

	db := New(&config)

	err := db.Open(context.Background())
	if err == nil {
		db.Close()
		t.Error("want an error")
		return
	}

	var sue *StorageUnavailableError
	if !errors.As(err, &sue) {
		t.Errorf("want StorageUnavailableError got %v", err)
		return
	}

	if sue.Type != TypePostgres {
		t.Errorf("want %s got %s", TypePostgres, sue.Type)
	}

	if db.Ready() {
		t.Error("want not ready")
	}
}

// TestOpenFallback checks that Open switches to a temporary SQLite store
// when the database can't be reached and fallback is on.
func TestOpenFallback(t *testing.T) {

	config := DBConfig{
		Type:                TypePostgres,
		Host:                "127.0.0.1",
		Port:                "1",
		User:                "nobody",
		Name:                "nothing",
		Logger:              createLoggerForTesting(),
		FallbackToTemporary: true,
	}

	db := New(&config)

	err := db.Open(context.Background())
	if err != nil {
		t.Error(err)
		return
	}
	defer db.CloseAndDelete()

	if !db.Fallback() {
		t.Error("want fallback")
	}

	if db.Type() != TypeSQLite {
		t.Errorf("want %s got %s", TypeSQLite, db.Type())
	}

	if !db.Ready() {
		t.Error("want ready")
	}
}

// TestListTables checks that Open creates all of the tables.
func TestListTables(t *testing.T) {

	want := []string{
		"administrators", "config_entries", "events", "friends",
		"members", "players", "schema_meta", "teams",
	}

	for _, dbType := range databaseList {

		db, connError := OpenDBForTesting(dbType)
		if connError != nil {
			t.Error(connError)
			return
		}
		defer db.CloseAndDelete()

		got, err := db.ListTables(context.Background())
		if err != nil {
			t.Error(err)
			continue
		}

		if !reflect.DeepEqual(want, got) {
			t.Errorf("%s: want %v got %v", dbType, want, got)
		}
	}
}

// TestSeed checks that a new store gets the five teams and two
// administrators, and that seeding again does nothing.
func TestSeed(t *testing.T) {

	for _, dbType := range databaseList {

		db, connError := OpenDBForTesting(dbType)
		if connError != nil {
			t.Error(connError)
			return
		}
		defer db.CloseAndDelete()

		ctx := context.Background()

		// Seed again.  It should have no effect.
		seedError := db.SeedDefaults(ctx, DefaultSeed())
		if seedError != nil {
			t.Error(seedError)
			continue
		}

		teams, teamsError := db.GetTeams(ctx)
		if teamsError != nil {
			t.Error(teamsError)
			continue
		}

		if len(teams) != len(Categories) {
			t.Errorf("%s: want %d teams got %d", dbType, len(Categories), len(teams))
			continue
		}

		for i, team := range teams {
			if team.Category != Categories[i] {
				t.Errorf("%s: want category %s got %s", dbType, Categories[i], team.Category)
			}
			if team.Status != StatusActive {
				t.Errorf("%s: want status %s got %s", dbType, StatusActive, team.Status)
			}
		}

		admins, adminsError := db.GetAdministrators(ctx)
		if adminsError != nil {
			t.Error(adminsError)
			continue
		}

		if len(admins) != 2 {
			t.Errorf("%s: want 2 administrators got %d", dbType, len(admins))
			continue
		}

		if admins[0].Role != RoleSuperAdmin {
			t.Errorf("%s: want %s got %s", dbType, RoleSuperAdmin, admins[0].Role)
		}

		for _, admin := range admins {
			if admin.PasswordHash != LockedPassword {
				t.Errorf("%s: want locked password got %s", dbType, admin.PasswordHash)
			}
		}
	}
}

// TestSeedNotRepeatedAfterClear checks that clearing the collections
// doesn't cause the default data to come back when the store is reopened.
func TestSeedNotRepeatedAfterClear(t *testing.T) {

	db, connError := OpenDBForTesting(TypeSQLite)
	if connError != nil {
		t.Error(connError)
		return
	}
	defer db.CloseAndDelete()

	ctx := context.Background()

	clearError := db.ClearAllCollections(ctx)
	if clearError != nil {
		t.Error(clearError)
		return
	}

	reopenError := db.Reopen(ctx)
	if reopenError != nil {
		t.Error(reopenError)
		return
	}

	stats, statsError := db.GetStatistics(ctx)
	if statsError != nil {
		t.Error(statsError)
		return
	}

	if stats.Teams != 0 {
		t.Errorf("want 0 teams got %d", stats.Teams)
	}
	if stats.Administrators != 0 {
		t.Errorf("want 0 administrators got %d", stats.Administrators)
	}
}

func TestWithAdminEmails(t *testing.T) {

	var testData = []struct {
		description string
		emails      []string
		want        []string
	}{
		{"none", nil, []string{"superadmin@club.invalid", "admin@club.invalid"}},
		{"first", []string{"boss@example.com"}, []string{"boss@example.com", "admin@club.invalid"}},
		{"second", []string{"", "sec@example.com"}, []string{"superadmin@club.invalid", "sec@example.com"}},
		{"both", []string{"a@example.com", "b@example.com"}, []string{"a@example.com", "b@example.com"}},
	}

	for _, td := range testData {

		original := DefaultSeed()
		seed := original.WithAdminEmails(td.emails)

		for i, want := range td.want {
			if seed.Admins[i].Email != want {
				t.Errorf("%s: want %s got %s", td.description, want, seed.Admins[i].Email)
			}
		}

		// The original should not be changed.
		if original.Admins[0].Email != "superadmin@club.invalid" {
			t.Errorf("%s: original seed changed", td.description)
		}
	}
}

// TestDropSchema checks that DropSchema removes everything and Reopen puts
// back the tables and the default data.
func TestDropSchema(t *testing.T) {

	for _, dbType := range databaseList {

		db, connError := OpenDBForTesting(dbType)
		if connError != nil {
			t.Error(connError)
			return
		}
		defer db.CloseAndDelete()

		ctx := context.Background()

		_, addError := db.AddMember(ctx, &Member{FullName: "Ann", Surname: "Smith", Phone: "1"})
		if addError != nil {
			t.Error(addError)
			continue
		}

		dropError := db.DropSchema(ctx)
		if dropError != nil {
			t.Error(dropError)
			continue
		}

		if db.Ready() {
			t.Errorf("%s: want not ready after DropSchema", dbType)
		}

		tables, listError := db.ListTables(ctx)
		if listError != nil {
			t.Error(listError)
			continue
		}
		if len(tables) != 0 {
			t.Errorf("%s: want no tables got %v", dbType, tables)
		}

		reopenError := db.Reopen(ctx)
		if reopenError != nil {
			t.Error(reopenError)
			continue
		}

		stats, statsError := db.GetStatistics(ctx)
		if statsError != nil {
			t.Error(statsError)
			continue
		}

		if stats.Members != 0 {
			t.Errorf("%s: want 0 members got %d", dbType, stats.Members)
		}
		if stats.Teams != 5 {
			t.Errorf("%s: want 5 teams got %d", dbType, stats.Teams)
		}
		if stats.Administrators != 2 {
			t.Errorf("%s: want 2 administrators got %d", dbType, stats.Administrators)
		}
	}
}

func TestCreateUuid(t *testing.T) {

	for _, dbType := range databaseList {

		db, connError := OpenDBForTesting(dbType)
		if connError != nil {
			t.Error(connError)
			return
		}
		defer db.CloseAndDelete()

		var uid string
		err := db.run(context.Background(), func(tx *Tx) error {
			var uidError error
			uid, uidError = CreateUuid(tx, "members")
			return uidError
		})
		if err != nil {
			t.Error(err)
			continue
		}

		if len(uid) != 36 {
			t.Errorf("want a uuid got %s", uid)
		}
	}
}

func TestDBConfigString(t *testing.T) {

	var testData = []struct {
		config DBConfig
		want   string
	}{
		{
			DBConfig{Type: "postgres", User: "u", Pass: "secret", Host: "h", Port: "5432", Name: "n"},
			"Type: postgres, User: u, Host: h, Port: 5432, Name: n, Path: , Pass: ****",
		},
		{
			DBConfig{Type: "sqlite", Path: "/tmp/club.db"},
			"Type: sqlite, User: , Host: , Port: , Name: , Path: /tmp/club.db, Pass: ",
		},
	}

	for _, td := range testData {
		got := td.config.String()
		if got != td.want {
			t.Errorf("want %s got %s", td.want, got)
		}
	}
}
