package database

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Values for the status fields.
const (
	StatusPending   = "pending"
	StatusValidated = "validated"
	StatusActive    = "active"
	StatusScheduled = "scheduled"
)

// Values for the kind field of an event.
const (
	KindMatch = "match"
	KindEvent = "event"
)

// Administrator roles.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
)

// LockedPassword is stored in the password hash of an administrator who
// has not yet had a password set.  It's not a valid bcrypt hash so no
// password ever matches it.
const LockedPassword = "*LK*"

// MemberNumberPrefix is the leading part of a member number, eg "SOC-0042".
const MemberNumberPrefix = "SOC-"

// Categories are the player categories, youngest first.
var Categories = []string{"pre-youth", "youth", "junior", "cadet", "adult"}

// IsCategory is true if c is one of the player categories.
func IsCategory(c string) bool {
	for _, cat := range Categories {
		if c == cat {
			return true
		}
	}
	return false
}

// FormatMemberNumber formats the numeric part of a member number:
// 7 gives "SOC-0007".
func FormatMemberNumber(seq int64) string {
	return fmt.Sprintf("%s%04d", MemberNumberPrefix, seq)
}

// ParseMemberNumber returns the numeric part of a member number:
// "SOC-0007" gives 7.
func ParseMemberNumber(number string) (int64, error) {
	digits, found := strings.CutPrefix(number, MemberNumberPrefix)
	if !found {
		return 0, fmt.Errorf("%w %q", ErrBadMemberNumber, number)
	}
	seq, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || seq <= 0 {
		return 0, fmt.Errorf("%w %q", ErrBadMemberNumber, number)
	}
	return seq, nil
}

// Member holds a row from the members table - a paying club member (a
// "socio").
type Member struct {
	ID            int64     `json:"id"`
	UUID          string    `json:"uuid"`
	FullName      string    `json:"fullName"`
	Surname       string    `json:"surname"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email,omitempty"`
	NationalID    string    `json:"nationalId,omitempty"`
	BirthDate     string    `json:"birthDate,omitempty"` // YYYY-MM-DD
	Age           int       `json:"age"`                 // Age at registration, 0 if no birth date.
	MembershipFee float64   `json:"membershipFee"`
	MemberNumber  string    `json:"memberNumber"` // "SOC-0001" etc.
	MemberSeq     int64     `json:"memberSeq"`    // The numeric part of the member number.
	Status        string    `json:"status"`       // "pending" or "validated"
	RegisteredAt  time.Time `json:"registeredAt"`
	ValidatedAt   time.Time `json:"validatedAt"`
	ValidatedBy   int64     `json:"validatedBy"` // The ID of the validating administrator.
	Paid          bool      `json:"paid"`
}

// Friend holds a row from the friends table - a supporter (an "amigo").
type Friend struct {
	ID           int64     `json:"id"`
	UUID         string    `json:"uuid"`
	FullName     string    `json:"fullName"`
	Surname      string    `json:"surname"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	NationalID   string    `json:"nationalId,omitempty"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Team holds a row from the teams table.
type Team struct {
	ID          int64     `json:"id"`
	UUID        string    `json:"uuid"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Player holds a row from the players table.
type Player struct {
	ID           int64     `json:"id"`
	UUID         string    `json:"uuid"`
	FullName     string    `json:"fullName"`
	Surname      string    `json:"surname"`
	NationalID   string    `json:"nationalId"`
	Phone        string    `json:"phone"`
	BirthDate    string    `json:"birthDate"`
	Age          int       `json:"age"`
	Category     string    `json:"category,omitempty"`
	JerseyNumber int       `json:"jerseyNumber,omitempty"` // 0 means no number.
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Event holds a row from the events table.  A match is an event of kind
// "match" with home and away teams.
type Event struct {
	ID          int64     `json:"id"`
	UUID        string    `json:"uuid"`
	Kind        string    `json:"kind"` // "match" or "event"
	Title       string    `json:"title,omitempty"`
	HomeTeam    string    `json:"homeTeam,omitempty"`
	AwayTeam    string    `json:"awayTeam,omitempty"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Time        string    `json:"time"` // HH:MM
	Venue       string    `json:"venue"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Administrator holds a row from the administrators table.
type Administrator struct {
	ID           int64     `json:"id"`
	UUID         string    `json:"uuid"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ConfigEntry holds a row from the config_entries table.
type ConfigEntry struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MemberFilter selects members.  Empty fields match everything.
type MemberFilter struct {
	Status     string
	NationalID string
	Paid       *bool
}

// FriendFilter selects friends.  Empty fields match everything.
type FriendFilter struct {
	Status     string
	NationalID string
	Email      string
}

// PlayerFilter selects players.  Empty fields match everything.
type PlayerFilter struct {
	Category     string
	NationalID   string
	JerseyNumber int
}

// EventQuery selects events.  FromDate is inclusive.  The result is in
// date and time order, earliest first unless Descending is set.
type EventQuery struct {
	Kind       string
	Category   string
	FromDate   string // YYYY-MM-DD
	Descending bool
}

// Statistics holds counts taken from the collections.
type Statistics struct {
	Members          int `json:"members"`
	PendingMembers   int `json:"pendingMembers"`
	ValidatedMembers int `json:"validatedMembers"`
	PaidMembers      int `json:"paidMembers"`
	Friends          int `json:"friends"`
	ActiveFriends    int `json:"activeFriends"`
	Teams            int `json:"teams"`
	Players          int `json:"players"`
	ActivePlayers    int `json:"activePlayers"`
	Events           int `json:"events"`
	Matches          int `json:"matches"`
	ScheduledEvents  int `json:"scheduledEvents"`
	Administrators   int `json:"administrators"`
}
