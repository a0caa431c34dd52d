package database

import (
	"fmt"
	"strings"
)

// conditions builds the where clause of a select from optional filter
// fields.  Placeholders are numbered in the order the conditions are added.
type conditions struct {
	clauses []string
	args    []any
}

// add adds the condition "column op $n" with the given value.
func (c *conditions) add(column, op string, value any) {
	c.args = append(c.args, value)
	c.clauses = append(c.clauses, fmt.Sprintf("%s %s $%d", column, op, len(c.args)))
}

// addIfSet adds "column = $n" unless the value is empty.
func (c *conditions) addIfSet(column, value string) {
	if len(value) > 0 {
		c.add(column, "=", value)
	}
}

// where returns the where clause, or an empty string if there are no
// conditions.
func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// queryList runs the query and converts each row using the scan function.
func queryList[T any](tx *Tx, q string, args []any, scan func(scanner) (*T, error)) ([]T, error) {

	rows, err := tx.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]T, 0)
	for rows.Next() {
		item, scanError := scan(rows)
		if scanError != nil {
			return nil, scanError
		}
		result = append(result, *item)
	}

	return result, rows.Err()
}

// deleteByID deletes the row with the given id from the table.
func deleteByID(tx *Tx, table string, id int64) error {
	n, err := tx.DeleteRow("DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// count runs a "SELECT COUNT(*)" query.
func count(tx *Tx, q string, args ...any) (int, error) {
	var n int
	err := tx.QueryRow(q, args...).Scan(&n)
	return n, err
}

// insertRow inserts a row into the table and returns its id.  If id is
// not zero the row is given that id, otherwise the database allocates one.
func insertRow(tx *Tx, table string, id int64, columns []string, values []any) (int64, error) {

	if id > 0 {
		columns = append([]string{"id"}, columns...)
		values = append([]any{id}, values...)
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	return tx.CreateRow(q, values...)
}
