package database

import (
	"context"
	"log/slog"
	"os"

	"github.com/goblimey/go-tools/dailylogger"
)

// DBConfigForTestingWithPostgres is used when CLUB_TEST_POSTGRES is set.
// The database must already exist.  The tests drop and re-create the
// tables.
var DBConfigForTestingWithPostgres DBConfig

// DBConfigForTestingWithSQLite uses a temporary SQLite database.
var DBConfigForTestingWithSQLite DBConfig

func init() {

	logger := createLoggerForTesting()

	DBConfigForTestingWithPostgres = DBConfig{
		Type:   TypePostgres,
		Host:   "localhost",
		Port:   "5432",
		User:   "postgres",
		Name:   "clubtest",
		Pass:   "secret",
		Logger: logger,
	}
	DBConfigForTestingWithSQLite = DBConfig{
		Type:   TypeSQLite,
		Logger: logger,
	}
}

// DatabaseTypesForTesting returns the database types that integration tests run
// against.  SQLite is always used.  Postgres is added if the environment
// variable CLUB_TEST_POSTGRES is set.
func DatabaseTypesForTesting() []string {
	list := []string{TypeSQLite}
	if len(os.Getenv("CLUB_TEST_POSTGRES")) > 0 {
		list = append(list, TypePostgres)
	}
	return list
}

// OpenDBForTesting opens an empty, seeded store of the given type.  An
// SQLite store is created in a temporary directory which CloseAndDelete
// removes.  A Postgres store has its tables dropped and re-created.
func OpenDBForTesting(dbType string) (*Database, error) {

	var config DBConfig
	if dbType == TypePostgres {
		config = DBConfigForTestingWithPostgres
	} else {
		config = DBConfigForTestingWithSQLite
	}

	db := New(&config)

	ctx := context.Background()

	openError := db.Open(ctx)
	if openError != nil {
		return nil, openError
	}

	if dbType == TypeSQLite {
		return db, nil
	}

	// The postgres test DB is permanent, so start each test from scratch.
	dropError := db.DropSchema(ctx)
	if dropError != nil {
		db.Close()
		return nil, dropError
	}

	reopenError := db.Reopen(ctx)
	if reopenError != nil {
		db.Close()
		return nil, reopenError
	}

	return db, nil
}

// CloseAndDelete closes the database connection and deletes the temporary
// directory where an SQLite database is stored.
func (db *Database) CloseAndDelete() error {
	return db.Close()
}

func createLoggerForTesting() *slog.Logger {
	dailyLogWriter := dailylogger.New(os.TempDir(), "clubtest.", ".log")

	// Create a structured logger that writes to the dailyLogWriter.
	logger := slog.New(slog.NewTextHandler(dailyLogWriter, nil))

	return logger
}
