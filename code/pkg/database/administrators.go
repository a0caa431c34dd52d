package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const administratorColumns = `id, uuid, name, email, password_hash, role, status, created_at`

// AddAdministrator adds an administrator and returns the new id.  If no
// password hash is given the account is locked.
func (db *Database) AddAdministrator(ctx context.Context, admin *Administrator) (int64, error) {

	err := db.run(ctx, func(tx *Tx) error {
		admin.ID = 0
		if len(admin.PasswordHash) == 0 {
			admin.PasswordHash = LockedPassword
		}
		if len(admin.Role) == 0 {
			admin.Role = RoleAdmin
		}
		if len(admin.Status) == 0 {
			admin.Status = StatusActive
		}
		if admin.CreatedAt.IsZero() {
			admin.CreatedAt = time.Now()
		}

		id, insertError := insertAdministrator(tx, admin)
		if insertError != nil {
			return insertError
		}
		admin.ID = id
		return nil
	})

	if err != nil {
		db.Logger.Error("AddAdministrator: " + err.Error())
		return 0, err
	}

	return admin.ID, nil
}

func insertAdministrator(tx *Tx, a *Administrator) (int64, error) {

	uuidError := ensureUuid(tx, "administrators", &a.UUID)
	if uuidError != nil {
		return 0, uuidError
	}

	columns := []string{"uuid", "name", "email", "password_hash", "role", "status", "created_at"}
	values := []any{a.UUID, a.Name, a.Email, a.PasswordHash, a.Role, a.Status, formatTime(a.CreatedAt)}

	return insertRow(tx, "administrators", a.ID, columns, values)
}

func scanAdministrator(row scanner) (*Administrator, error) {

	var a Administrator
	var createdAt string

	err := row.Scan(&a.ID, &a.UUID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.Status, &createdAt)
	if err != nil {
		return nil, err
	}

	var timeError error
	a.CreatedAt, timeError = parseTime(createdAt)
	if timeError != nil {
		return nil, timeError
	}

	return &a, nil
}

// GetAdministrators gets all of the administrators in id order.
func (db *Database) GetAdministrators(ctx context.Context) ([]Administrator, error) {

	const q = "SELECT " + administratorColumns + " FROM administrators ORDER BY id"

	var admins []Administrator
	err := db.run(ctx, func(tx *Tx) error {
		var listError error
		admins, listError = queryList(tx, q, nil, scanAdministrator)
		return listError
	})
	if err != nil {
		return nil, err
	}

	return admins, nil
}

// GetAdministratorByEmail gets the administrator with the given email
// address.  If there is none it returns ErrNotFound.
func (db *Database) GetAdministratorByEmail(ctx context.Context, email string) (*Administrator, error) {

	const q = "SELECT " + administratorColumns + " FROM administrators WHERE email = $1"

	var admin *Administrator
	err := db.run(ctx, func(tx *Tx) error {
		var scanError error
		admin, scanError = scanAdministrator(tx.QueryRow(q, email))
		if errors.Is(scanError, sql.ErrNoRows) {
			return ErrNotFound
		}
		return scanError
	})
	if err != nil {
		return nil, err
	}

	return admin, nil
}

// SetAdministratorPassword sets the password hash of the administrator
// with the given id.
func (db *Database) SetAdministratorPassword(ctx context.Context, id int64, hash string) error {

	const q = `UPDATE administrators SET password_hash = $1 WHERE id = $2`

	return db.run(ctx, func(tx *Tx) error {
		n, countError := count(tx, "SELECT COUNT(*) FROM administrators WHERE id = $1", id)
		if countError != nil {
			return countError
		}
		if n == 0 {
			return ErrNotFound
		}

		_, err := tx.UpdateRow(q, hash, id)
		return err
	})
}
