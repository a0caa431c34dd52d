package clubdata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/goblimey/go-club-manager/code/pkg/database"
)

// MinPasswordLength is the shortest administrator password accepted.
const MinPasswordLength = 8

// ShortPasswordMessage is the error message for a password that's too short.
const ShortPasswordMessage = "must be at least 8 characters"

// SetAdministratorPassword sets the password of the administrator with the
// given email address.  Only the bcrypt hash is stored.
func (c *Club) SetAdministratorPassword(ctx context.Context, email, password string) error {

	const op = "set administrator password"

	email = strings.TrimSpace(email)
	fields := make(map[string]string)
	if len(email) == 0 {
		fields["email"] = "required"
	}
	if len(password) < MinPasswordLength {
		fields["password"] = ShortPasswordMessage
	}
	if len(fields) > 0 {
		return fieldError(op, fields)
	}

	admin, getError := c.store.GetAdministratorByEmail(ctx, email)
	if getError != nil {
		c.logger.Error("SetAdministratorPassword: " + getError.Error())
		return fmt.Errorf("error setting administrator password: %w", getError)
	}

	hash, hashError := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if hashError != nil {
		return fmt.Errorf("error setting administrator password: %w", hashError)
	}

	setError := c.store.SetAdministratorPassword(ctx, admin.ID, string(hash))
	if setError != nil {
		c.logger.Error("SetAdministratorPassword: " + setError.Error())
		return fmt.Errorf("error setting administrator password: %w", setError)
	}

	c.logger.Info("administrator password set", "email", email)

	return nil
}

// CheckAdministratorPassword returns true if the password is right for the
// administrator with the given email address.  An unknown address, a
// locked account or an inactive account gives false.
func (c *Club) CheckAdministratorPassword(ctx context.Context, email, password string) (bool, error) {

	admin, err := c.store.GetAdministratorByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error checking administrator password: %w", err)
	}

	if admin.PasswordHash == database.LockedPassword || admin.Status != database.StatusActive {
		return false, nil
	}

	compareError := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password))

	return compareError == nil, nil
}
