package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const memberColumns = `id, uuid, full_name, surname, phone, email, national_id,
	birth_date, age, membership_fee, member_number, member_seq, status,
	registered_at, validated_at, validated_by, paid`

// AddMember adds a member and returns the new id.  The member is given a
// UUID, a registration timestamp, the status "pending" unless one is set,
// and the next member number.  The number is allocated in the same
// transaction as the insert, with the member number lock row held, so two
// members can't get the same number.
func (db *Database) AddMember(ctx context.Context, member *Member) (int64, error) {

	err := db.run(ctx, func(tx *Tx) error {

		// Take the lock.  It's held until the transaction ends.
		const lock = `UPDATE schema_meta SET meta_value = meta_value WHERE meta_key = $1`
		_, lockError := tx.UpdateRow(lock, metaKeyMemberLock)
		if lockError != nil {
			return lockError
		}

		var maxSeq sql.NullInt64
		const q = `SELECT MAX(member_seq) FROM members`
		seqError := tx.QueryRow(q).Scan(&maxSeq)
		if seqError != nil {
			return seqError
		}

		member.ID = 0
		member.MemberSeq = maxSeq.Int64 + 1
		member.MemberNumber = FormatMemberNumber(member.MemberSeq)
		if len(member.Status) == 0 {
			member.Status = StatusPending
		}
		if member.RegisteredAt.IsZero() {
			member.RegisteredAt = time.Now()
		}

		var id int64
		var insertError error
		id, insertError = insertMember(tx, member)
		if insertError != nil {
			return insertError
		}
		member.ID = id

		return nil
	})

	if err != nil {
		db.Logger.Error("AddMember: " + err.Error())
		return 0, err
	}

	return member.ID, nil
}

// insertMember inserts a member without allocating a number.  Used by
// AddMember and Import.  If the numeric part isn't set it's taken from the
// member number, so that numbering carries on from the highest.
func insertMember(tx *Tx, m *Member) (int64, error) {

	if m.MemberSeq == 0 {
		seq, parseError := ParseMemberNumber(m.MemberNumber)
		if parseError != nil {
			return 0, parseError
		}
		m.MemberSeq = seq
	}

	uuidError := ensureUuid(tx, "members", &m.UUID)
	if uuidError != nil {
		return 0, uuidError
	}

	columns := []string{
		"uuid", "full_name", "surname", "phone", "email", "national_id",
		"birth_date", "age", "membership_fee", "member_number", "member_seq",
		"status", "registered_at", "validated_at", "validated_by", "paid",
	}
	values := []any{
		m.UUID, m.FullName, m.Surname, m.Phone, m.Email, nullString(m.NationalID),
		m.BirthDate, m.Age, m.MembershipFee, m.MemberNumber, m.MemberSeq,
		m.Status, formatTime(m.RegisteredAt), formatTime(m.ValidatedAt), m.ValidatedBy, boolToInt(m.Paid),
	}

	return insertRow(tx, "members", m.ID, columns, values)
}

func scanMember(row scanner) (*Member, error) {

	var m Member
	var nationalID sql.NullString
	var registeredAt, validatedAt string
	var paid int

	err := row.Scan(&m.ID, &m.UUID, &m.FullName, &m.Surname, &m.Phone, &m.Email,
		&nationalID, &m.BirthDate, &m.Age, &m.MembershipFee, &m.MemberNumber,
		&m.MemberSeq, &m.Status, &registeredAt, &validatedAt, &m.ValidatedBy, &paid)
	if err != nil {
		return nil, err
	}

	m.NationalID = nationalID.String
	m.Paid = paid != 0

	var timeError error
	m.RegisteredAt, timeError = parseTime(registeredAt)
	if timeError != nil {
		return nil, timeError
	}
	m.ValidatedAt, timeError = parseTime(validatedAt)
	if timeError != nil {
		return nil, timeError
	}

	return &m, nil
}

// GetMembers gets the members that match the filter, in member number
// order.
func (db *Database) GetMembers(ctx context.Context, filter MemberFilter) ([]Member, error) {

	var c conditions
	c.addIfSet("status", filter.Status)
	c.addIfSet("national_id", filter.NationalID)
	if filter.Paid != nil {
		c.add("paid", "=", boolToInt(*filter.Paid))
	}

	q := "SELECT " + memberColumns + " FROM members" + c.where() + " ORDER BY member_seq"

	var members []Member
	err := db.run(ctx, func(tx *Tx) error {
		var listError error
		members, listError = queryList(tx, q, c.args, scanMember)
		return listError
	})
	if err != nil {
		return nil, err
	}

	return members, nil
}

// GetMember gets the member with the given id.  If there is no such member
// it returns ErrNotFound.
func (db *Database) GetMember(ctx context.Context, id int64) (*Member, error) {

	q := "SELECT " + memberColumns + " FROM members WHERE id = $1"

	var member *Member
	err := db.run(ctx, func(tx *Tx) error {
		var scanError error
		member, scanError = scanMember(tx.QueryRow(q, id))
		if errors.Is(scanError, sql.ErrNoRows) {
			return ErrNotFound
		}
		return scanError
	})
	if err != nil {
		return nil, err
	}

	return member, nil
}

// UpdateMemberValidation sets the member's status to "validated" and
// records who validated it and when.
func (db *Database) UpdateMemberValidation(ctx context.Context, id, adminID int64, at time.Time) error {

	const q = `UPDATE members SET status = $1, validated_at = $2, validated_by = $3 WHERE id = $4`

	return db.run(ctx, func(tx *Tx) error {
		n, err := tx.UpdateRow(q, StatusValidated, formatTime(at), adminID, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SetMemberPaid sets or clears the member's paid flag.
func (db *Database) SetMemberPaid(ctx context.Context, id int64, paid bool) error {

	return db.run(ctx, func(tx *Tx) error {
		// MySQL reports zero rows affected when the value doesn't change,
		// so check that the member exists first.
		n, countError := count(tx, "SELECT COUNT(*) FROM members WHERE id = $1", id)
		if countError != nil {
			return countError
		}
		if n == 0 {
			return ErrNotFound
		}

		_, err := tx.UpdateRow("UPDATE members SET paid = $1 WHERE id = $2", boolToInt(paid), id)
		return err
	})
}

// DeleteMember deletes the member with the given id.
func (db *Database) DeleteMember(ctx context.Context, id int64) error {
	return db.run(ctx, func(tx *Tx) error {
		return deleteByID(tx, "members", id)
	})
}
