// forms contains the structures used to validate the input for
// registrations, teams, matches and events.  Each form holds the raw input,
// the values produced by validation and an error message per field.
package forms

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/goblimey/go-club-manager/code/pkg/database"
)

// DateLayout is the layout of a date input, eg "2024-03-01".
const DateLayout = "2006-01-02"

// TimeLayout is the layout of a time input, eg "18:30".
const TimeLayout = "15:04"

// MaxJerseyNumber is the highest jersey number allowed.
const MaxJerseyNumber = 99

// Error messages.
const (
	RequiredMessage    = "required"
	BadDateMessage     = "must be a date, YYYY-MM-DD"
	FutureDateMessage  = "must not be in the future"
	BadTimeMessage     = "must be a time, HH:MM"
	BadEmailMessage    = "must be a valid email address"
	BadCategoryMessage = "must be one of " + categoryList
	BadJerseyMessage   = "must be between 1 and 99"
	SameTeamsMessage   = "must be different from the home team"
	categoryList       = "pre-youth, youth, junior, cadet, adult"
)

// MemberForm holds the data for a member registration.
type MemberForm struct {

	// Valid is set false during validation if the form data is invalid.
	Valid bool

	// Data for validation.
	FullName       string
	Surname        string
	Phone          string
	Email          string // optional
	NationalID     string // optional
	BirthDateInput string // optional, YYYY-MM-DD

	// Values set during validation.
	BirthDate time.Time // The zero time if no birth date was given.

	// Error messages set if the form data is invalid.
	FullNameErrorMessage   string
	SurnameErrorMessage    string
	PhoneErrorMessage      string
	EmailErrorMessage      string
	BirthDateErrorMessage  string
	NationalIDErrorMessage string
}

// Validate trims the input, checks it and sets the error messages.  It
// returns the resulting Valid flag.  today is used to reject birth dates
// in the future.
func (f *MemberForm) Validate(today time.Time) bool {
	f.Valid = true

	f.FullName = strings.TrimSpace(f.FullName)
	f.Surname = strings.TrimSpace(f.Surname)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Email = strings.TrimSpace(f.Email)
	f.NationalID = strings.TrimSpace(f.NationalID)
	f.BirthDateInput = strings.TrimSpace(f.BirthDateInput)

	f.FullNameErrorMessage = required(f.FullName)
	f.SurnameErrorMessage = required(f.Surname)
	f.PhoneErrorMessage = required(f.Phone)
	if len(f.Email) > 0 {
		f.EmailErrorMessage = checkEmail(f.Email)
	}
	if len(f.BirthDateInput) > 0 {
		f.BirthDate, f.BirthDateErrorMessage = checkBirthDate(f.BirthDateInput, today)
	}

	f.Valid = noErrors(f.Errors())
	return f.Valid
}

// Errors returns the error messages that are set, keyed by field name.
func (f *MemberForm) Errors() map[string]string {
	return collect(map[string]string{
		"fullName":   f.FullNameErrorMessage,
		"surname":    f.SurnameErrorMessage,
		"phone":      f.PhoneErrorMessage,
		"email":      f.EmailErrorMessage,
		"birthDate":  f.BirthDateErrorMessage,
		"nationalId": f.NationalIDErrorMessage,
	})
}

// FriendForm holds the data for a friend (supporter) registration.
type FriendForm struct {
	Valid bool

	FullName   string
	Surname    string
	Phone      string
	Email      string
	NationalID string // optional

	FullNameErrorMessage   string
	SurnameErrorMessage    string
	PhoneErrorMessage      string
	EmailErrorMessage      string
	NationalIDErrorMessage string
}

// Validate trims and checks the input.  The email address is mandatory.
func (f *FriendForm) Validate() bool {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Surname = strings.TrimSpace(f.Surname)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Email = strings.TrimSpace(f.Email)
	f.NationalID = strings.TrimSpace(f.NationalID)

	f.FullNameErrorMessage = required(f.FullName)
	f.SurnameErrorMessage = required(f.Surname)
	f.PhoneErrorMessage = required(f.Phone)
	f.EmailErrorMessage = required(f.Email)
	if len(f.EmailErrorMessage) == 0 {
		f.EmailErrorMessage = checkEmail(f.Email)
	}

	f.Valid = noErrors(f.Errors())
	return f.Valid
}

func (f *FriendForm) Errors() map[string]string {
	return collect(map[string]string{
		"fullName":   f.FullNameErrorMessage,
		"surname":    f.SurnameErrorMessage,
		"phone":      f.PhoneErrorMessage,
		"email":      f.EmailErrorMessage,
		"nationalId": f.NationalIDErrorMessage,
	})
}

// PlayerForm holds the data for a player registration.
type PlayerForm struct {
	Valid bool

	FullName       string
	Surname        string
	NationalID     string
	Phone          string
	BirthDateInput string
	Category       string // optional
	JerseyNumber   int    // optional, 0 means none

	BirthDate time.Time

	FullNameErrorMessage     string
	SurnameErrorMessage      string
	NationalIDErrorMessage   string
	PhoneErrorMessage        string
	BirthDateErrorMessage    string
	CategoryErrorMessage     string
	JerseyNumberErrorMessage string
}

// Validate trims and checks the input.  The national ID and the birth
// date are mandatory for players.
func (f *PlayerForm) Validate(today time.Time) bool {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Surname = strings.TrimSpace(f.Surname)
	f.NationalID = strings.TrimSpace(f.NationalID)
	f.Phone = strings.TrimSpace(f.Phone)
	f.BirthDateInput = strings.TrimSpace(f.BirthDateInput)
	f.Category = strings.TrimSpace(f.Category)

	f.FullNameErrorMessage = required(f.FullName)
	f.SurnameErrorMessage = required(f.Surname)
	f.NationalIDErrorMessage = required(f.NationalID)
	f.PhoneErrorMessage = required(f.Phone)
	f.BirthDateErrorMessage = required(f.BirthDateInput)
	if len(f.BirthDateErrorMessage) == 0 {
		f.BirthDate, f.BirthDateErrorMessage = checkBirthDate(f.BirthDateInput, today)
	}
	if len(f.Category) > 0 {
		f.CategoryErrorMessage = checkCategory(f.Category)
	}
	if f.JerseyNumber < 0 || f.JerseyNumber > MaxJerseyNumber {
		f.JerseyNumberErrorMessage = BadJerseyMessage
	}

	f.Valid = noErrors(f.Errors())
	return f.Valid
}

func (f *PlayerForm) Errors() map[string]string {
	return collect(map[string]string{
		"fullName":     f.FullNameErrorMessage,
		"surname":      f.SurnameErrorMessage,
		"nationalId":   f.NationalIDErrorMessage,
		"phone":        f.PhoneErrorMessage,
		"birthDate":    f.BirthDateErrorMessage,
		"category":     f.CategoryErrorMessage,
		"jerseyNumber": f.JerseyNumberErrorMessage,
	})
}

// TeamForm holds the data for a new team.
type TeamForm struct {
	Valid bool

	Name        string
	Category    string
	Description string

	NameErrorMessage     string
	CategoryErrorMessage string
}

func (f *TeamForm) Validate() bool {
	f.Name = strings.TrimSpace(f.Name)
	f.Category = strings.TrimSpace(f.Category)
	f.Description = strings.TrimSpace(f.Description)

	f.NameErrorMessage = required(f.Name)
	f.CategoryErrorMessage = required(f.Category)
	if len(f.CategoryErrorMessage) == 0 {
		f.CategoryErrorMessage = checkCategory(f.Category)
	}

	f.Valid = noErrors(f.Errors())
	return f.Valid
}

func (f *TeamForm) Errors() map[string]string {
	return collect(map[string]string{
		"name":     f.NameErrorMessage,
		"category": f.CategoryErrorMessage,
	})
}

// MatchForm holds the data for a match.  All of the fields except the
// description are mandatory.
type MatchForm struct {
	Valid bool

	HomeTeam    string
	AwayTeam    string
	Date        string
	Time        string
	Venue       string
	Category    string
	Description string

	HomeTeamErrorMessage string
	AwayTeamErrorMessage string
	DateErrorMessage     string
	TimeErrorMessage     string
	VenueErrorMessage    string
	CategoryErrorMessage string
}

func (f *MatchForm) Validate() bool {
	f.HomeTeam = strings.TrimSpace(f.HomeTeam)
	f.AwayTeam = strings.TrimSpace(f.AwayTeam)
	f.Date = strings.TrimSpace(f.Date)
	f.Time = strings.TrimSpace(f.Time)
	f.Venue = strings.TrimSpace(f.Venue)
	f.Category = strings.TrimSpace(f.Category)
	f.Description = strings.TrimSpace(f.Description)

	f.HomeTeamErrorMessage = required(f.HomeTeam)
	f.AwayTeamErrorMessage = required(f.AwayTeam)
	if len(f.AwayTeamErrorMessage) == 0 && strings.EqualFold(f.HomeTeam, f.AwayTeam) {
		f.AwayTeamErrorMessage = SameTeamsMessage
	}
	f.DateErrorMessage = required(f.Date)
	if len(f.DateErrorMessage) == 0 {
		f.DateErrorMessage = checkDate(f.Date)
	}
	f.TimeErrorMessage = required(f.Time)
	if len(f.TimeErrorMessage) == 0 {
		f.TimeErrorMessage = checkTime(f.Time)
	}
	f.VenueErrorMessage = required(f.Venue)
	f.CategoryErrorMessage = required(f.Category)
	if len(f.CategoryErrorMessage) == 0 {
		f.CategoryErrorMessage = checkCategory(f.Category)
	}

	f.Valid = noErrors(f.Errors())
	return f.Valid
}

func (f *MatchForm) Errors() map[string]string {
	return collect(map[string]string{
		"homeTeam": f.HomeTeamErrorMessage,
		"awayTeam": f.AwayTeamErrorMessage,
		"date":     f.DateErrorMessage,
		"time":     f.TimeErrorMessage,
		"venue":    f.VenueErrorMessage,
		"category": f.CategoryErrorMessage,
	})
}

// EventForm holds the data for a club event other than a match.  The
// title and the date are mandatory.
type EventForm struct {
	Valid bool

	Title       string
	Date        string
	Time        string // optional
	Venue       string
	Category    string // optional
	Description string

	TitleErrorMessage    string
	DateErrorMessage     string
	TimeErrorMessage     string
	CategoryErrorMessage string
}

func (f *EventForm) Validate() bool {
	f.Title = strings.TrimSpace(f.Title)
	f.Date = strings.TrimSpace(f.Date)
	f.Time = strings.TrimSpace(f.Time)
	f.Venue = strings.TrimSpace(f.Venue)
	f.Category = strings.TrimSpace(f.Category)
	f.Description = strings.TrimSpace(f.Description)

	f.TitleErrorMessage = required(f.Title)
	f.DateErrorMessage = required(f.Date)
	if len(f.DateErrorMessage) == 0 {
		f.DateErrorMessage = checkDate(f.Date)
	}
	if len(f.Time) > 0 {
		f.TimeErrorMessage = checkTime(f.Time)
	}
	if len(f.Category) > 0 {
		f.CategoryErrorMessage = checkCategory(f.Category)
	}

	f.Valid = noErrors(f.Errors())
	return f.Valid
}

func (f *EventForm) Errors() map[string]string {
	return collect(map[string]string{
		"title":    f.TitleErrorMessage,
		"date":     f.DateErrorMessage,
		"time":     f.TimeErrorMessage,
		"category": f.CategoryErrorMessage,
	})
}

// FeeForDisplay formats a fee to two decimal places, eg "20.00".
func FeeForDisplay(fee float64) string {
	return fmt.Sprintf("%.2f", fee)
}

func required(s string) string {
	if len(s) == 0 {
		return RequiredMessage
	}
	return ""
}

func checkEmail(s string) string {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return BadEmailMessage
	}
	return ""
}

func checkDate(s string) string {
	_, err := time.Parse(DateLayout, s)
	if err != nil {
		return BadDateMessage
	}
	return ""
}

// checkBirthDate parses a birth date, which must not be after today.
func checkBirthDate(s string, today time.Time) (time.Time, string) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, BadDateMessage
	}
	y, m, day := today.Date()
	if d.After(time.Date(y, m, day, 0, 0, 0, 0, time.UTC)) {
		return time.Time{}, FutureDateMessage
	}
	return d, ""
}

func checkTime(s string) string {
	_, err := time.Parse(TimeLayout, s)
	if err != nil || len(s) != len(TimeLayout) {
		return BadTimeMessage
	}
	return ""
}

func checkCategory(s string) string {
	if !database.IsCategory(s) {
		return BadCategoryMessage
	}
	return ""
}

// collect returns the messages that are not empty.
func collect(messages map[string]string) map[string]string {
	result := make(map[string]string)
	for field, message := range messages {
		if len(message) > 0 {
			result[field] = message
		}
	}
	return result
}

func noErrors(errors map[string]string) bool {
	return len(errors) == 0
}
