// csvimport reads members or players from a CSV file, for example an
// extract from a spreadsheet kept by the club secretary, and registers
// each one.
package csvimport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/goblimey/go-club-manager/code/pkg/clubdata"
	"github.com/goblimey/go-club-manager/code/pkg/database"
)

// The kinds of file that can be imported.
const (
	KindMembers = "members"
	KindPlayers = "players"
)

// The columns of a members file, in order.  The email address, the
// national ID and the birth date may be empty.
var memberColumns = []string{"fullName", "surname", "phone", "email", "nationalId", "birthDate"}

// The columns of a players file, in order.  The category and the jersey
// number may be empty.
var playerColumns = []string{"fullName", "surname", "nationalId", "phone", "birthDate", "category", "jerseyNumber"}

// Line holds one line of the CSV file.
type Line struct {
	Number int // The line number in the file, starting at 1.
	Member clubdata.MemberInput
	Player clubdata.PlayerInput
}

// Registrar does the registrations.  *clubdata.Club satisfies it.
type Registrar interface {
	RegisterMember(ctx context.Context, in clubdata.MemberInput) (*database.Member, error)
	RegisterPlayer(ctx context.Context, in clubdata.PlayerInput) (*database.Player, error)
}

// Result summarises an import.
type Result struct {
	Added  int
	Failed int
}

// Columns returns the expected column headings for the kind of file.
func Columns(kind string) ([]string, error) {
	switch kind {
	case KindMembers:
		return memberColumns, nil
	case KindPlayers:
		return playerColumns, nil
	default:
		return nil, fmt.Errorf("unknown import kind %q - want %s or %s", kind, KindMembers, KindPlayers)
	}
}

// Read reads the CSV data.  If the first line is the column headings it's
// skipped.  A line with the wrong number of fields is logged and skipped.
func Read(r io.Reader, kind string, logger *slog.Logger) ([]Line, error) {

	if logger == nil {
		logger = slog.Default()
	}

	columns, kindError := Columns(kind)
	if kindError != nil {
		return nil, kindError
	}

	// Open a reader reading the CSV file.  The field count is checked
	// here rather than by the reader.
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	fieldLists, readError := reader.ReadAll()
	if readError != nil {
		return nil, fmt.Errorf("error reading CSV data: %w", readError)
	}

	lines := make([]Line, 0, len(fieldLists))

	for i, fields := range fieldLists {

		// i starts at 0, not 1.
		number := i + 1

		if i == 0 && isHeading(fields, columns) {
			continue
		}

		line, lineError := getLine(number, fields, kind, len(columns))
		if lineError != nil {
			logger.Error(fmt.Sprintf("line %d: %v: %s", number, lineError, strings.Join(fields, ",")))
			continue
		}

		lines = append(lines, *line)
	}

	return lines, nil
}

func isHeading(fields, columns []string) bool {
	return len(fields) > 0 && strings.EqualFold(strings.TrimSpace(fields[0]), columns[0])
}

func getLine(number int, field []string, kind string, expectedNumberOfFields int) (*Line, error) {

	if len(field) != expectedNumberOfFields {
		return nil, fmt.Errorf("expected %d fields, got %d", expectedNumberOfFields, len(field))
	}

	// Trim leading and trailing white space from all fields.
	for i := range field {
		//  Must use the real field, not a copy.
		field[i] = strings.TrimSpace(field[i])
	}

	line := Line{Number: number}

	switch kind {
	case KindMembers:
		line.Member = clubdata.MemberInput{
			FullName:   field[0],
			Surname:    field[1],
			Phone:      field[2],
			Email:      field[3],
			NationalID: field[4],
			BirthDate:  field[5],
		}

	case KindPlayers:
		jersey := 0
		if len(field[6]) > 0 {
			var err error
			jersey, err = strconv.Atoi(field[6])
			if err != nil {
				return nil, errors.New("jersey number is not a number")
			}
		}
		line.Player = clubdata.PlayerInput{
			FullName:     field[0],
			Surname:      field[1],
			NationalID:   field[2],
			Phone:        field[3],
			BirthDate:    field[4],
			Category:     field[5],
			JerseyNumber: jersey,
		}
	}

	return &line, nil
}

// Process registers each line, one at a time.  A line that's rejected is
// logged and counted and the rest carry on.  It stops early if the context
// is cancelled.
func Process(ctx context.Context, registrar Registrar, kind string, lines []Line, logger *slog.Logger) (*Result, error) {

	if logger == nil {
		logger = slog.Default()
	}

	if _, kindError := Columns(kind); kindError != nil {
		return nil, kindError
	}

	var result Result

	for _, line := range lines {

		if err := ctx.Err(); err != nil {
			return &result, err
		}

		var err error
		switch kind {
		case KindMembers:
			var member *database.Member
			member, err = registrar.RegisterMember(ctx, line.Member)
			if err == nil {
				logger.Info("imported member",
					"line", line.Number, "memberNumber", member.MemberNumber, "surname", member.Surname)
			}
		case KindPlayers:
			var player *database.Player
			player, err = registrar.RegisterPlayer(ctx, line.Player)
			if err == nil {
				logger.Info("imported player", "line", line.Number, "id", player.ID, "surname", player.Surname)
			}
		}

		if err != nil {
			logger.Error(fmt.Sprintf("line %d: %v", line.Number, err))
			result.Failed++
			continue
		}

		result.Added++
	}

	return &result, nil
}
