// database is the club's local store.  It keeps the collections (members,
// friends, teams, players, events, administrators and config entries) in a
// SQL database, postgres, sqlite, mysql and potentially others.  Each
// collection has an auto-incrementing ID and the uniqueness rules are
// declared as constraints when the schema is created, so the database
// engine enforces them.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync/atomic"

	// Database drivers.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// The supported database types.
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeMySQL    = "mysql"
)

var regExpForPostgresParamsToSQLiteParams = regexp.MustCompile(`\$[0-9]+`)

type DBConfig struct {
	Type   string // The type of database, "sqlite" (the default), "postgres" or "mysql".
	User   string // The user connecting to the database.
	Pass   string // the password of the user connecting.
	Host   string // The host machine running the database.
	Port   string // The port on the host machine that the database uses.
	Name   string // the name of the database (AKA "schema")
	Path   string // The SQLite database file.  If empty, a temporary directory is used.
	Logger *slog.Logger

	// FallbackToTemporary makes Open switch to a temporary SQLite store
	// if the configured database can't be opened.
	FallbackToTemporary bool
}

// GetDBConfigFromTheEnvironment gets the database settings from the
// environment variables DBType, DBUser, DBPassword, DBHost, DBPort,
// DBDatabase and DBPath.
func GetDBConfigFromTheEnvironment() DBConfig {

	config := DBConfig{
		Type: os.Getenv("DBType"),
		User: os.Getenv("DBUser"),
		Pass: os.Getenv("DBPassword"),
		Host: os.Getenv("DBHost"),
		Port: os.Getenv("DBPort"),
		Name: os.Getenv("DBDatabase"),
		Path: os.Getenv("DBPath"),
	}

	return config
}

// String returns the config as a string, hiding the password.
func (dbc *DBConfig) String() string {
	pass := ""
	if len(dbc.Pass) > 0 {
		pass = "****"
	}
	return fmt.Sprintf(
		"Type: %s, User: %s, Host: %s, Port: %s, Name: %s, Path: %s, Pass: %s",
		dbc.Type, dbc.User, dbc.Host, dbc.Port, dbc.Name, dbc.Path, pass)
}

// Database is the local store.  Create it with New, then call Open.  All
// of the collection operations return ErrNotInitialized until Open has
// succeeded.
type Database struct {
	Config        *DBConfig    // The database config.
	Connection    *sql.DB      // The database connection pool.
	SQLiteTempDir string       // The directory in /tmp used to store a temporary SQLite DB.
	Logger        *slog.Logger // The structured logger.
	Seed          Seed         // The default data inserted when the store is first created.

	dbType   string // The type in use, which differs from the config after a fallback.
	fallback bool
	ready    atomic.Bool
}

// New creates a database object using the given configuration.
func New(config *DBConfig) *Database {

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dbType := config.Type
	if len(dbType) == 0 {
		dbType = TypeSQLite
	}

	db := Database{
		Config: config,
		Logger: logger,
		Seed:   DefaultSeed(),
		dbType: dbType,
	}
	return &db
}

// Type returns the type of the database in use.
func (db *Database) Type() string {
	return db.dbType
}

// Ready is true once Open has succeeded and until Close is called.
func (db *Database) Ready() bool {
	return db.ready.Load()
}

// Fallback is true if Open could not use the configured database and
// switched to a temporary SQLite store.
func (db *Database) Fallback() bool {
	return db.fallback
}

// Open connects to the database, creates any missing tables, inserts the
// default data if that has not already been done and marks the store as
// ready.
func (db *Database) Open(ctx context.Context) error {

	connectError := db.Connect(ctx)
	if connectError != nil {
		if !db.Config.FallbackToTemporary {
			return &StorageUnavailableError{Type: db.dbType, Err: connectError}
		}

		db.Logger.Warn("Open: cannot open the configured database, using a temporary store",
			"type", db.dbType, "error", connectError.Error())

		db.dbType = TypeSQLite
		db.fallback = true
		fallbackError := db.connectToTemporarySQLite(ctx)
		if fallbackError != nil {
			return &StorageUnavailableError{Type: TypeSQLite, Err: fallbackError}
		}
	}

	schemaError := db.runTx(ctx, db.createSchema)
	if schemaError != nil {
		db.Logger.Error("Open: creating schema - " + schemaError.Error())
		db.Close()
		return schemaError
	}

	seedError := db.SeedDefaults(ctx, db.Seed)
	if seedError != nil {
		db.Logger.Error("Open: seeding - " + seedError.Error())
		db.Close()
		return seedError
	}

	db.ready.Store(true)
	db.Logger.Info("store ready", "type", db.dbType, "fallback", db.fallback)

	return nil
}

// Connect connects to the given database and sets the connection in the object.
func (db *Database) Connect(ctx context.Context) error {

	switch db.dbType {
	case TypePostgres:
		var err error
		db.Connection, err = ConnectToPostgres(ctx, db.Config)
		if err != nil {
			db.Logger.Error("Connect: " + err.Error())
			return err
		}

	case TypeMySQL:
		var err error
		db.Connection, err = ConnectToMySQL(ctx, db.Config)
		if err != nil {
			db.Logger.Error("Connect: " + err.Error())
			return err
		}

	case TypeSQLite:
		if len(db.Config.Path) == 0 {
			return db.connectToTemporarySQLite(ctx)
		}

		var connErr error
		db.Connection, connErr = ConnectToSQLite(ctx, sqliteConnectionDetails(db.Config.Path))
		if connErr != nil {
			db.Logger.Error("Connect: " + connErr.Error())
			return connErr
		}

	default:
		return errors.New("no database config for type " + db.dbType)
	}

	return nil
}

// connectToTemporarySQLite creates a directory in the system's temporary
// directory and an SQLite database file inside it.  The working directory
// is not changed.  Close removes the directory.
func (db *Database) connectToTemporarySQLite(ctx context.Context) error {

	// Attempts to use an in-memory database produced random failures
	// due to the database being closed and cleared down prematurely
	// after various queries had run.  Instead we use a file database.
	var dirErr error
	db.SQLiteTempDir, dirErr = os.MkdirTemp("", "club-")
	if dirErr != nil {
		return dirErr
	}

	var connErr error
	db.Connection, connErr = ConnectToSQLite(ctx, sqliteConnectionDetails(filepath.Join(db.SQLiteTempDir, "club.db")))
	if connErr != nil {
		db.removeTempDir()
		return connErr
	}

	return nil
}

func (db *Database) removeTempDir() {
	if len(db.SQLiteTempDir) == 0 {
		return
	}
	removeError := os.RemoveAll(db.SQLiteTempDir)
	if removeError != nil {
		db.Logger.Error("removing temporary store: " + removeError.Error())
	}
	db.SQLiteTempDir = ""
}

// Close closes the database connection.  A temporary SQLite database is
// removed.
func (db *Database) Close() error {

	db.ready.Store(false)

	if db.Connection == nil {
		return nil
	}

	closeError := db.Connection.Close()
	db.Connection = nil

	// Whether the close worked or not, we must remove the DB file.
	db.removeTempDir()

	return closeError
}

// run runs fn in a transaction once the store is ready.
func (db *Database) run(ctx context.Context, fn func(tx *Tx) error) error {
	if !db.Ready() {
		return ErrNotInitialized
	}
	return db.runTx(ctx, fn)
}

// runTx starts a transaction, runs fn and commits.  If fn returns an error
// the transaction is rolled back and the error is returned.  Driver errors
// that report a broken constraint are converted to ConstraintViolationError.
func (db *Database) runTx(ctx context.Context, fn func(tx *Tx) error) error {

	sqlTx, beginError := db.Connection.BeginTx(ctx, nil)
	if beginError != nil {
		return beginError
	}

	tx := Tx{ctx: ctx, dbType: db.dbType, tx: sqlTx}

	fnError := fn(&tx)
	if fnError != nil {
		sqlTx.Rollback()
		return classifyError(fnError)
	}

	commitError := sqlTx.Commit()
	if commitError != nil {
		return classifyError(commitError)
	}

	return nil
}

// Tx is a transaction against one of the supported databases.  Queries are
// written with Postgres-style placeholders ($1, $2 ...) and massaged into
// the correct form for the database.
type Tx struct {
	ctx    context.Context
	dbType string
	tx     *sql.Tx
}

func (t *Tx) fixQuery(query string) string {
	if t.dbType == TypePostgres {
		return query
	}
	return postgresParamsToSQLiteParams(query)
}

// Query executes the given query and returns the rows.
func (t *Tx) Query(query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(t.ctx, t.fixQuery(query), args...)
}

// QueryRow executes a query that is expected to return at most one row.
func (t *Tx) QueryRow(query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(t.ctx, t.fixQuery(query), args...)
}

// Exec executes an SQL statement such as a create table.
func (t *Tx) Exec(query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(t.ctx, t.fixQuery(query), args...)
}

// CreateRow executes the given insert and returns the id of the new row.
func (t *Tx) CreateRow(query string, args ...any) (int64, error) {

	var id int64

	switch t.dbType {
	case TypePostgres:
		// Postgres doesn't support LastInsertID so the ID is produced by a
		// RETURNING clause.
		err := t.tx.QueryRowContext(t.ctx, query+" RETURNING id", args...).Scan(&id)
		if err != nil {
			return 0, err
		}

	default:
		// Databases such as SQLite and MySQL supply the ID via LastInsertID.
		res, err := t.tx.ExecContext(t.ctx, t.fixQuery(query), args...)
		if err != nil {
			return 0, err
		}
		var err2 error
		id, err2 = res.LastInsertId()
		if err2 != nil {
			return 0, err2
		}
	}

	return id, nil
}

// UpdateRow executes the given update and returns the number of rows affected.
func (t *Tx) UpdateRow(query string, args ...any) (int64, error) {

	res, err := t.tx.ExecContext(t.ctx, t.fixQuery(query), args...)
	if err != nil {
		return 0, err
	}

	rows, rError := res.RowsAffected()
	if rError != nil {
		return 0, rError
	}
	return rows, nil
}

// DeleteRow executes a query which should be a delete and returns the
// number of rows deleted.
func (t *Tx) DeleteRow(query string, args ...any) (int64, error) {

	res, err1 := t.tx.ExecContext(t.ctx, t.fixQuery(query), args...)
	if err1 != nil {
		return 0, err1
	}

	numRows, err2 := res.RowsAffected()
	if err2 != nil {
		return 0, err2
	}

	return numRows, nil
}

// ListTables returns the names of the tables in the database.
// (Used for debugging and testing.)
func (db *Database) ListTables(ctx context.Context) ([]string, error) {

	var q string
	switch db.dbType {
	case TypePostgres:
		q = `SELECT tablename FROM pg_catalog.pg_tables WHERE schemaname = current_schema() ORDER BY tablename`
	case TypeMySQL:
		q = `SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name`
	default:
		q = `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
	}

	rows, getNamesError := db.Connection.QueryContext(ctx, q)
	if getNamesError != nil {
		return nil, getNamesError
	}
	defer rows.Close()

	result := make([]string, 0)
	for rows.Next() {
		var table string
		err := rows.Scan(&table)
		if err != nil {
			return nil, err
		}

		result = append(result, table)
	}

	return result, rows.Err()
}

// ConnectToPostgres connects to the postgres database specified in the config.
func ConnectToPostgres(ctx context.Context, dbConfig *DBConfig) (*sql.DB, error) {

	var connectionStr string
	if len(dbConfig.Pass) == 0 {
		// If the password is empty, don't supply "password=".
		connectionStr = fmt.Sprintf(
			"host=%s port=%s user=%s dbname=%s sslmode=disable",
			dbConfig.Host, dbConfig.Port, dbConfig.User, dbConfig.Name)
	} else {
		connectionStr = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			dbConfig.Host, dbConfig.Port, dbConfig.User, dbConfig.Pass, dbConfig.Name)
	}

	return openAndPing(ctx, TypePostgres, connectionStr)
}

// ConnectToMySQL connects to the MySQL database specified in the config.
func ConnectToMySQL(ctx context.Context, dbConfig *DBConfig) (*sql.DB, error) {

	host := dbConfig.Host
	if len(host) == 0 {
		host = "127.0.0.1"
	}
	port := dbConfig.Port
	if len(port) == 0 {
		port = "3306"
	}

	connectionStr := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4",
		dbConfig.User, dbConfig.Pass, host, port, dbConfig.Name)

	return openAndPing(ctx, TypeMySQL, connectionStr)
}

// ConnectToSQLite connects to the SQLite database file in the connection
// details.
func ConnectToSQLite(ctx context.Context, connectionDetails string) (*sql.DB, error) {

	slog.Debug("ConnectToSQLite: " + connectionDetails)

	// The "modernc.org/sqlite" driver registers itself as "sqlite".
	return openAndPing(ctx, TypeSQLite, connectionDetails)
}

func openAndPing(ctx context.Context, driverName, connectionStr string) (*sql.DB, error) {

	// This checks the connection details, but doesn't open a connection!
	conn, errConn := sql.Open(driverName, connectionStr)
	if errConn != nil {
		return nil, errConn
	}

	// Ping actually opens the database connection.
	errPing := conn.PingContext(ctx)
	if errPing != nil {
		conn.Close()
		return nil, errPing
	}

	return conn, nil
}

// sqliteConnectionDetails produces the connection string for an SQLite
// file.  Write transactions take the lock when they start and wait for a
// busy database rather than failing.
func sqliteConnectionDetails(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(10000)&_txlock=immediate"
}

// postgresParamsToSQLiteParams takes a query string and converts any
// Postgres-style parameter placeholders ('$1', '$2' etc) to sqlite-style
// placeholders ('?'), which MySQL also uses.  It uses a simple regular
// expression replacement so it can be defeated, for example by what looks
// like a placeholder within an SQL string - "select '$1' from foo where bar=$1".
func postgresParamsToSQLiteParams(query string) string {
	resultBytes := regExpForPostgresParamsToSQLiteParams.
		ReplaceAll([]byte(query), []byte("?"))
	result := string(resultBytes)
	return result
}
