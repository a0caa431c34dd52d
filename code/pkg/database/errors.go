package database

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrNotInitialized is returned by every collection operation until Open
// has succeeded.
var ErrNotInitialized = errors.New("database not initialized")

// ErrNotFound is returned when an update or delete names a row that does
// not exist.
var ErrNotFound = errors.New("record not found")

// ErrBadMemberNumber is returned when a member number isn't of the form
// "SOC-0042".
var ErrBadMemberNumber = errors.New("bad member number")

// ConstraintViolationError is returned when the database engine rejects a
// change because it breaks a uniqueness (or other) constraint.  Err is the
// driver's error.
type ConstraintViolationError struct {
	Err error
}

func (e *ConstraintViolationError) Error() string {
	return "constraint violation: " + e.Err.Error()
}

func (e *ConstraintViolationError) Unwrap() error {
	return e.Err
}

// StorageUnavailableError is returned by Open when the database can't be
// opened.
type StorageUnavailableError struct {
	Type string
	Err  error
}

func (e *StorageUnavailableError) Error() string {
	return "storage unavailable (" + e.Type + "): " + e.Err.Error()
}

func (e *StorageUnavailableError) Unwrap() error {
	return e.Err
}

// isConstraintViolation checks the driver error types of the three
// supported databases.
func isConstraintViolation(err error) bool {

	var sqliteError *sqlite.Error
	if errors.As(err, &sqliteError) {
		// The code may be an extended code, which keeps the primary
		// code in the low byte.
		return sqliteError.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}

	var pqError *pq.Error
	if errors.As(err, &pqError) {
		// Class 23 is "integrity constraint violation".
		return pqError.Code.Class() == "23"
	}

	var mysqlError *mysql.MySQLError
	if errors.As(err, &mysqlError) {
		switch mysqlError.Number {
		case 1062, 1169: // duplicate entry, duplicate unique key
			return true
		}
	}

	return false
}

// classifyError wraps constraint violations in a ConstraintViolationError
// and returns any other error unchanged.
func classifyError(err error) error {

	var cve *ConstraintViolationError
	if errors.As(err, &cve) {
		return err
	}

	if isConstraintViolation(err) {
		return &ConstraintViolationError{Err: err}
	}

	return err
}
