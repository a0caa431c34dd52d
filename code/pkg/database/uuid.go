package database

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// CreateUuid creates and returns a UUID which is unique in the uuid column
// of the given table.
func CreateUuid(tx *Tx, table string) (string, error) {

	// Do this up to ten times until you get a UUID that's not already
	// used.  Each attempt is very unlikely to fail.
	for i := 0; i < 10; i++ {

		uid := uuid.New().String()

		q := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE uuid = $1", table)

		var n int
		err := tx.QueryRow(q, uid).Scan(&n)
		if err != nil {
			em := fmt.Sprintf("createUuid: %s %s", table, err.Error())
			return "", errors.New(em)
		}

		if n == 0 {
			// Success!
			return uid, nil
		}
	}

	// All attempts have failed.  This is very very unlikely but
	// possible.
	return "", errors.New("CreateUuid: clash creating ID for table " + table)
}

// ensureUuid sets a UUID if the record doesn't already have one (imported
// records keep theirs).
func ensureUuid(tx *Tx, table string, id *string) error {
	if len(*id) > 0 {
		return nil
	}
	var err error
	*id, err = CreateUuid(tx, table)
	return err
}
