package clubdata

import (
	"context"
	"fmt"

	"github.com/goblimey/go-club-manager/code/pkg/database"
	"github.com/goblimey/go-club-manager/code/pkg/forms"
)

// Messages for business rule failures.
const (
	DuplicateNationalIDMessage = "is already registered"
	DuplicateJerseyMessage     = "is already taken in this category"
	NotPendingReason           = "member is not pending validation"
)

// MemberInput is the data for a member registration.
type MemberInput struct {
	FullName   string
	Surname    string
	Phone      string
	Email      string
	NationalID string
	BirthDate  string // YYYY-MM-DD, optional
}

// FriendInput is the data for a friend (supporter) registration.
type FriendInput struct {
	FullName   string
	Surname    string
	Phone      string
	Email      string
	NationalID string
}

// PlayerInput is the data for a player registration.
type PlayerInput struct {
	FullName     string
	Surname      string
	NationalID   string
	Phone        string
	BirthDate    string // YYYY-MM-DD
	Category     string // optional
	JerseyNumber int    // optional, 0 means none
}

// RegisterMember validates the input and adds a pending member.  The age
// and the fee are worked out from the birth date.  The member is given the
// next member number.
func (c *Club) RegisterMember(ctx context.Context, in MemberInput) (*database.Member, error) {

	const op = "register member"

	form := forms.MemberForm{
		FullName:       in.FullName,
		Surname:        in.Surname,
		Phone:          in.Phone,
		Email:          in.Email,
		NationalID:     in.NationalID,
		BirthDateInput: in.BirthDate,
	}

	today := c.todayDate()
	if !form.Validate(today) {
		return nil, fieldError(op, form.Errors())
	}

	if len(form.NationalID) > 0 {
		existing, err := c.store.GetMembers(ctx, database.MemberFilter{NationalID: form.NationalID})
		if err != nil {
			c.logger.Error("RegisterMember: " + err.Error())
			return nil, fmt.Errorf("error registering member: %w", err)
		}
		if len(existing) > 0 {
			return nil, fieldError(op, map[string]string{"nationalId": DuplicateNationalIDMessage})
		}
	}

	member := database.Member{
		FullName:     form.FullName,
		Surname:      form.Surname,
		Phone:        form.Phone,
		Email:        form.Email,
		NationalID:   form.NationalID,
		BirthDate:    form.BirthDateInput,
		Status:       database.StatusPending,
		RegisteredAt: c.clock.Now(),
	}

	knownBirthDate := !form.BirthDate.IsZero()
	if knownBirthDate {
		member.Age = ageOn(form.BirthDate, today)
	}
	member.MembershipFee = c.fee(member.Age, knownBirthDate)

	_, err := c.store.AddMember(ctx, &member)
	if err != nil {
		c.logger.Error("RegisterMember: " + err.Error())
		return nil, fmt.Errorf("error registering member: %w", err)
	}

	c.logger.Info("registered member", "memberNumber", member.MemberNumber, "id", member.ID)

	return &member, nil
}

// RegisterFriend validates the input and adds a friend.  The email
// address is mandatory.  Duplicate national IDs are rejected by the store.
func (c *Club) RegisterFriend(ctx context.Context, in FriendInput) (*database.Friend, error) {

	form := forms.FriendForm{
		FullName:   in.FullName,
		Surname:    in.Surname,
		Phone:      in.Phone,
		Email:      in.Email,
		NationalID: in.NationalID,
	}

	if !form.Validate() {
		return nil, fieldError("register friend", form.Errors())
	}

	friend := database.Friend{
		FullName:     form.FullName,
		Surname:      form.Surname,
		Phone:        form.Phone,
		Email:        form.Email,
		NationalID:   form.NationalID,
		Status:       database.StatusActive,
		RegisteredAt: c.clock.Now(),
	}

	_, err := c.store.AddFriend(ctx, &friend)
	if err != nil {
		c.logger.Error("RegisterFriend: " + err.Error())
		return nil, fmt.Errorf("error registering friend: %w", err)
	}

	return &friend, nil
}

// RegisterPlayer validates the input and adds a player.  The national ID
// must not already be registered and, if a jersey number and a category
// are given, the number must not be taken in that category.
func (c *Club) RegisterPlayer(ctx context.Context, in PlayerInput) (*database.Player, error) {

	const op = "register player"

	form := forms.PlayerForm{
		FullName:       in.FullName,
		Surname:        in.Surname,
		NationalID:     in.NationalID,
		Phone:          in.Phone,
		BirthDateInput: in.BirthDate,
		Category:       in.Category,
		JerseyNumber:   in.JerseyNumber,
	}

	today := c.todayDate()
	if !form.Validate(today) {
		return nil, fieldError(op, form.Errors())
	}

	sameID, err := c.store.GetPlayers(ctx, database.PlayerFilter{NationalID: form.NationalID})
	if err != nil {
		c.logger.Error("RegisterPlayer: " + err.Error())
		return nil, fmt.Errorf("error registering player: %w", err)
	}
	if len(sameID) > 0 {
		return nil, fieldError(op, map[string]string{"nationalId": DuplicateNationalIDMessage})
	}

	if form.JerseyNumber > 0 && len(form.Category) > 0 {
		filter := database.PlayerFilter{Category: form.Category, JerseyNumber: form.JerseyNumber}
		sameNumber, err := c.store.GetPlayers(ctx, filter)
		if err != nil {
			c.logger.Error("RegisterPlayer: " + err.Error())
			return nil, fmt.Errorf("error registering player: %w", err)
		}
		if len(sameNumber) > 0 {
			return nil, fieldError(op, map[string]string{"jerseyNumber": DuplicateJerseyMessage})
		}
	}

	player := database.Player{
		FullName:     form.FullName,
		Surname:      form.Surname,
		NationalID:   form.NationalID,
		Phone:        form.Phone,
		BirthDate:    form.BirthDateInput,
		Age:          ageOn(form.BirthDate, today),
		Category:     form.Category,
		JerseyNumber: form.JerseyNumber,
		Status:       database.StatusActive,
		RegisteredAt: c.clock.Now(),
	}

	_, addError := c.store.AddPlayer(ctx, &player)
	if addError != nil {
		c.logger.Error("RegisterPlayer: " + addError.Error())
		return nil, fmt.Errorf("error registering player: %w", addError)
	}

	return &player, nil
}

// ValidateMember moves a pending member to validated, recording the
// administrator and the time.
func (c *Club) ValidateMember(ctx context.Context, memberID, adminID int64) error {

	member, err := c.store.GetMember(ctx, memberID)
	if err != nil {
		c.logger.Error("ValidateMember: " + err.Error())
		return fmt.Errorf("error validating member: %w", err)
	}

	if member.Status != database.StatusPending {
		return reasonError("validate member", NotPendingReason)
	}

	updateError := c.store.UpdateMemberValidation(ctx, memberID, adminID, c.clock.Now())
	if updateError != nil {
		c.logger.Error("ValidateMember: " + updateError.Error())
		return fmt.Errorf("error validating member: %w", updateError)
	}

	c.logger.Info("validated member", "memberNumber", member.MemberNumber, "admin", adminID)

	return nil
}

// MarkMemberPaid records that the member has paid the fee.
func (c *Club) MarkMemberPaid(ctx context.Context, memberID int64) error {
	err := c.store.SetMemberPaid(ctx, memberID, true)
	if err != nil {
		c.logger.Error("MarkMemberPaid: " + err.Error())
		return fmt.Errorf("error marking member paid: %w", err)
	}
	return nil
}

// GetMember gets the member with the given id.
func (c *Club) GetMember(ctx context.Context, memberID int64) (*database.Member, error) {
	member, err := c.store.GetMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("error getting member: %w", err)
	}
	return member, nil
}

func (c *Club) RemoveMember(ctx context.Context, memberID int64) error {
	if err := c.store.DeleteMember(ctx, memberID); err != nil {
		c.logger.Error("RemoveMember: " + err.Error())
		return fmt.Errorf("error removing member: %w", err)
	}
	return nil
}

func (c *Club) RemoveFriend(ctx context.Context, friendID int64) error {
	if err := c.store.DeleteFriend(ctx, friendID); err != nil {
		c.logger.Error("RemoveFriend: " + err.Error())
		return fmt.Errorf("error removing friend: %w", err)
	}
	return nil
}

func (c *Club) RemovePlayer(ctx context.Context, playerID int64) error {
	if err := c.store.DeletePlayer(ctx, playerID); err != nil {
		c.logger.Error("RemovePlayer: " + err.Error())
		return fmt.Errorf("error removing player: %w", err)
	}
	return nil
}

func (c *Club) RemoveEvent(ctx context.Context, eventID int64) error {
	if err := c.store.DeleteEvent(ctx, eventID); err != nil {
		c.logger.Error("RemoveEvent: " + err.Error())
		return fmt.Errorf("error removing event: %w", err)
	}
	return nil
}

// ListMembers returns the members that match the filter.
func (c *Club) ListMembers(ctx context.Context, filter database.MemberFilter) ([]database.Member, error) {
	members, err := c.store.GetMembers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing members: %w", err)
	}
	return members, nil
}

// ListFriends returns the friends that match the filter.
func (c *Club) ListFriends(ctx context.Context, filter database.FriendFilter) ([]database.Friend, error) {
	friends, err := c.store.GetFriends(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing friends: %w", err)
	}
	return friends, nil
}

// ListPlayers returns the players that match the filter.
func (c *Club) ListPlayers(ctx context.Context, filter database.PlayerFilter) ([]database.Player, error) {
	players, err := c.store.GetPlayers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing players: %w", err)
	}
	return players, nil
}
